package dialogue

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"ledgerbot/internal/amount"
	"ledgerbot/internal/domain"
	"ledgerbot/internal/extractor"
)

func (c *Controller) handleText(ctx context.Context, st *domain.ChatState, ev domain.Event) error {
	text := strings.TrimSpace(ev.Text)

	if ev.IsStart() || text == btnRestart {
		st.Restart()
		return c.showProjects(ctx, st, msgWelcome)
	}
	if st.Step == domain.StepConfirmation {
		return c.promptStep(ctx, st)
	}
	if text == btnCreateProject {
		st.Pending = nil
		st.Step = domain.StepProjectName
		return c.say(ctx, st.ChatID, msgProjectNamePrompt)
	}
	if name, ok := strings.CutPrefix(text, strings.TrimSpace(projectPrefix)); ok {
		return c.selectProject(ctx, st, name)
	}

	switch st.Step {
	case domain.StepProjectName:
		return c.createProject(ctx, st, text)
	case domain.StepProjectSelection:
		return c.showProjects(ctx, st, msgChooseProject)
	case domain.StepEntryType:
		return c.promptStep(ctx, st)
	case domain.StepExpenseCategory, domain.StepExpenseAmount, domain.StepExpenseComment:
		return c.expenseStep(ctx, st, text)
	case domain.StepIncomeInfo, domain.StepIncomeAmount:
		return c.incomeStep(ctx, st, text)
	case domain.StepRequestFIO, domain.StepRequestRole, domain.StepRequestQuantity,
		domain.StepRequestAmount, domain.StepRequestPeriod:
		return c.requestStep(ctx, st, text)
	case domain.StepAIText:
		return c.extract(ctx, st, text, c.cfg.FinanceSchema)
	case domain.StepRequestAIText:
		return c.extract(ctx, st, text, c.cfg.RequestSchema)
	default:
		return c.say(ctx, st.ChatID, msgNeedStart)
	}
}

func (c *Controller) expenseStep(ctx context.Context, st *domain.ChatState, text string) error {
	d, ok := st.Pending.(*domain.ExpenseDraft)
	if !ok {
		return c.lost(ctx, st)
	}
	switch st.Step {
	case domain.StepExpenseCategory:
		if text == "" {
			return c.send(ctx, st.ChatID, msgExpenseCategoryPrompt, categoryKeyboard())
		}
		d.Category = text
		st.Step = domain.StepExpenseAmount
	case domain.StepExpenseAmount:
		a, ok := c.parseAmounts(text)
		if !ok {
			return c.say(ctx, st.ChatID, msgInvalidAmount)
		}
		d.Amounts = &a
		st.Step = domain.StepExpenseComment
	case domain.StepExpenseComment:
		comment := text
		if comment == "-" {
			comment = ""
		}
		d.Comment = &comment
		return c.confirm(ctx, st, d)
	}
	return c.promptStep(ctx, st)
}

func (c *Controller) incomeStep(ctx context.Context, st *domain.ChatState, text string) error {
	d, ok := st.Pending.(*domain.IncomeDraft)
	if !ok {
		return c.lost(ctx, st)
	}
	switch st.Step {
	case domain.StepIncomeInfo:
		if text == "" {
			return c.say(ctx, st.ChatID, msgEmptyValue)
		}
		d.Info = text
		st.Step = domain.StepIncomeAmount
	case domain.StepIncomeAmount:
		a, ok := c.parseAmounts(text)
		if !ok {
			return c.say(ctx, st.ChatID, msgInvalidAmount)
		}
		d.Amounts = &a
		return c.confirm(ctx, st, d)
	}
	return c.promptStep(ctx, st)
}

func (c *Controller) requestStep(ctx context.Context, st *domain.ChatState, text string) error {
	d, ok := st.Pending.(*domain.RequestDraft)
	if !ok {
		return c.lost(ctx, st)
	}
	switch st.Step {
	case domain.StepRequestFIO:
		if text == "" {
			return c.say(ctx, st.ChatID, msgEmptyValue)
		}
		d.FIO = text
		st.Step = domain.StepRequestRole
	case domain.StepRequestRole:
		if text == "" {
			return c.say(ctx, st.ChatID, msgEmptyValue)
		}
		d.Role = text
		st.Step = domain.StepRequestQuantity
	case domain.StepRequestQuantity:
		n, err := amount.ParseNumber(text)
		if err != nil {
			return c.say(ctx, st.ChatID, msgInvalidQuantity)
		}
		qty, err := amount.Quantity(n)
		if err != nil {
			return c.say(ctx, st.ChatID, msgInvalidQuantity)
		}
		d.Quantity = &qty
		st.Step = domain.StepRequestAmount
	case domain.StepRequestAmount:
		v, err := amount.ParseNumber(text)
		if err != nil || !v.IsPositive() {
			return c.say(ctx, st.ChatID, msgInvalidAmount)
		}
		v = v.Round(2)
		d.Amount = &v
		st.Step = domain.StepRequestPeriod
	case domain.StepRequestPeriod:
		if text == "" {
			return c.say(ctx, st.ChatID, msgEmptyValue)
		}
		d.Period = text
		return c.confirm(ctx, st, d)
	}
	return c.promptStep(ctx, st)
}

// parseAmounts normalizes a typed sum. Zero and unparseable input are rejected.
func (c *Controller) parseAmounts(text string) (domain.Amounts, bool) {
	a, err := amount.Normalize(text, c.cfg.VATRate)
	if err != nil || !a.Incl.IsPositive() {
		return domain.Amounts{}, false
	}
	return a, true
}

// extract runs free text through the model. The draft is only stored once the
// reply has been decoded, so a failure leaves the chat on the same step.
func (c *Controller) extract(ctx context.Context, st *domain.ChatState, text string, schema *extractor.Schema) error {
	if text == "" {
		return c.promptStep(ctx, st)
	}

	start := time.Now()
	d, err := c.extractor.Extract(ctx, text, schema)
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.ExtractionLatency.WithLabelValues(string(schema.Kind), status).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.ExtractionFailures.WithLabelValues(failureReason(err)).Inc()
		c.log.Warn("dialogue.Controller.extract: extraction failed",
			zap.Int64("chat_id", st.ChatID), zap.String("schema", string(schema.Kind)), zap.Error(err))
		msg := failureMessage(err, msgAIFailed)
		if kind, ok := extractor.KindOf(err); ok && kind == extractor.KindMalformedOutput && schema.Kind == extractor.SchemaRequest {
			msg = msgRequestAIMalformed
		}
		return c.say(ctx, st.ChatID, msg)
	}
	return c.confirm(ctx, st, d)
}

// lost recovers from a step that does not match the pending draft.
func (c *Controller) lost(ctx context.Context, st *domain.ChatState) error {
	c.log.Error("dialogue.Controller: step does not match draft",
		zap.Int64("chat_id", st.ChatID), zap.String("step", string(st.Step)))
	if err := c.say(ctx, st.ChatID, msgUnknownBranch); err != nil {
		return err
	}
	return c.showMenu(ctx, st)
}
