// Package dialogue runs the per-chat data-entry conversation: password gate,
// project choice, manual or free-text entry, confirmation and commit.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ledgerbot/internal/amount"
	"ledgerbot/internal/domain"
	"ledgerbot/internal/extractor"
	"ledgerbot/internal/metrics"
	"ledgerbot/internal/port"
	"ledgerbot/internal/service"
	"ledgerbot/internal/state"
)

// Extractor turns free text into a complete draft.
type Extractor interface {
	Extract(ctx context.Context, text string, schema *extractor.Schema) (domain.Draft, error)
}

// PasswordChecker validates the shared access secret.
type PasswordChecker interface {
	Check(text string) bool
}

// Config holds the schemas and the tax rate used by the controller.
type Config struct {
	VATRate       decimal.Decimal
	FinanceSchema *extractor.Schema
	RequestSchema *extractor.Schema
}

// Controller routes chat events through the conversation steps.
type Controller struct {
	store     *state.Store
	gate      PasswordChecker
	ledger    service.LedgerService
	exports   service.ExportService
	extractor Extractor
	messenger port.Messenger
	cfg       Config
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

// NewController creates a Controller. A zero VAT rate means amount.DefaultVATRate.
func NewController(
	store *state.Store,
	gate PasswordChecker,
	ledger service.LedgerService,
	exports service.ExportService,
	ext Extractor,
	messenger port.Messenger,
	cfg Config,
	m *metrics.Metrics,
	log *zap.Logger,
) *Controller {
	if cfg.VATRate.IsZero() {
		cfg.VATRate = amount.DefaultVATRate
	}
	return &Controller{
		store:     store,
		gate:      gate,
		ledger:    ledger,
		exports:   exports,
		extractor: ext,
		messenger: messenger,
		cfg:       cfg,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

// WithClock replaces the clock that dates new drafts.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// Handle processes one event while holding the chat's state. Failures of
// collaborators are reported to the user; the returned error is only set when
// the reply itself could not be delivered.
func (c *Controller) Handle(ctx context.Context, ev domain.Event) error {
	st, release := c.store.Acquire(ev.ChatID)
	defer release()

	evType := "message"
	if ev.IsAction() {
		evType = "action"
	}
	c.metrics.Events.WithLabelValues(evType).Inc()

	if ev.CallbackID != "" {
		if err := c.messenger.AnswerCallback(ctx, ev.CallbackID); err != nil {
			c.log.Warn("dialogue.Controller.Handle: answer callback failed", zap.Int64("chat_id", ev.ChatID), zap.Error(err))
		}
	}

	c.log.Debug("dialogue.Controller.Handle: event",
		zap.Int64("chat_id", ev.ChatID),
		zap.String("type", evType),
		zap.String("step", string(st.Step)),
		zap.String("action", ev.Action))

	if !st.Authorized {
		return c.authorize(ctx, st, ev)
	}
	if ev.IsAction() {
		return c.handleAction(ctx, st, ev.Action)
	}
	return c.handleText(ctx, st, ev)
}

func (c *Controller) authorize(ctx context.Context, st *domain.ChatState, ev domain.Event) error {
	if ev.IsAction() || ev.IsStart() {
		c.log.Debug("dialogue.Controller.authorize: event before password",
			zap.Int64("chat_id", st.ChatID), zap.Error(domain.ErrAuthRequired))
		return c.say(ctx, st.ChatID, failureMessage(domain.ErrAuthRequired, msgPasswordPrompt))
	}
	if !c.gate.Check(ev.Text) {
		c.log.Info("dialogue.Controller.authorize: wrong password", zap.Int64("chat_id", st.ChatID))
		return c.say(ctx, st.ChatID, msgWrongPassword)
	}

	st.Authorized = true
	c.log.Info("dialogue.Controller.authorize: chat unlocked", zap.Int64("chat_id", st.ChatID))
	if ev.MessageID != 0 {
		if err := c.messenger.DeleteMessage(ctx, st.ChatID, ev.MessageID); err != nil {
			c.log.Warn("dialogue.Controller.authorize: could not delete password message", zap.Error(err))
		}
	}
	return c.showProjects(ctx, st, msgPasswordAccepted)
}

// showProjects lists projects as a reply keyboard and waits for a choice.
func (c *Controller) showProjects(ctx context.Context, st *domain.ChatState, text string) error {
	projects, err := c.ledger.Projects(ctx)
	if err != nil {
		c.log.Error("dialogue.Controller.showProjects: listing failed", zap.Int64("chat_id", st.ChatID), zap.Error(err))
		return c.say(ctx, st.ChatID, msgProjectsFailed)
	}
	st.Pending = nil
	st.Step = domain.StepProjectSelection
	return c.send(ctx, st.ChatID, text, projectsReplyKeyboard(projects))
}

func (c *Controller) showProjectsInline(ctx context.Context, st *domain.ChatState, text string) error {
	projects, err := c.ledger.Projects(ctx)
	if err != nil {
		c.log.Error("dialogue.Controller.showProjectsInline: listing failed", zap.Int64("chat_id", st.ChatID), zap.Error(err))
		return c.say(ctx, st.ChatID, msgProjectsFailed)
	}
	st.Pending = nil
	st.Step = domain.StepProjectSelection
	return c.send(ctx, st.ChatID, text, projectsInlineKeyboard(projects))
}

func (c *Controller) showMenu(ctx context.Context, st *domain.ChatState) error {
	st.ResetToMenu()
	return c.send(ctx, st.ChatID, msgMenu, menuKeyboard())
}

func (c *Controller) selectProject(ctx context.Context, st *domain.ChatState, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return c.showProjectsInline(ctx, st, msgChooseProject)
	}
	st.Project = name
	st.LastCommitted = nil
	c.log.Info("dialogue.Controller.selectProject: project selected", zap.Int64("chat_id", st.ChatID), zap.String("project", name))
	if err := c.say(ctx, st.ChatID, fmt.Sprintf(msgProjectSelected, name)); err != nil {
		return err
	}
	return c.showMenu(ctx, st)
}

func (c *Controller) createProject(ctx context.Context, st *domain.ChatState, text string) error {
	name, err := c.ledger.CreateProject(ctx, text)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEmptyProjectName), errors.Is(err, domain.ErrDuplicateSheet):
		return c.say(ctx, st.ChatID, failureMessage(err, msgProjectCreateFail))
	case errors.Is(err, domain.ErrConfiguration):
		c.log.Error("dialogue.Controller.createProject: template unavailable", zap.Error(err))
		if sendErr := c.say(ctx, st.ChatID, failureMessage(err, msgProjectCreateFail)); sendErr != nil {
			return sendErr
		}
		return c.showMenu(ctx, st)
	default:
		c.log.Error("dialogue.Controller.createProject: create failed", zap.Error(err))
		return c.say(ctx, st.ChatID, msgProjectCreateFail)
	}

	st.Project = name
	st.LastCommitted = nil
	if err := c.say(ctx, st.ChatID, fmt.Sprintf(msgProjectCreated, name)); err != nil {
		return err
	}
	return c.showMenu(ctx, st)
}

// startEntry seeds a draft for branch and asks for its first field.
func (c *Controller) startEntry(ctx context.Context, st *domain.ChatState, branch domain.EntryType) error {
	if !domain.ValidEntryTypes[branch] {
		return c.say(ctx, st.ChatID, msgUnknownBranch)
	}
	if branch.NeedsProject() && st.Project == "" {
		if err := c.say(ctx, st.ChatID, msgChooseProjectFirst); err != nil {
			return err
		}
		return c.showProjectsInline(ctx, st, msgChooseProject)
	}
	st.StartDraft(branch, c.now())
	return c.promptStep(ctx, st)
}

// promptStep asks for the input the current step expects.
func (c *Controller) promptStep(ctx context.Context, st *domain.ChatState) error {
	switch st.Step {
	case domain.StepExpenseCategory:
		return c.send(ctx, st.ChatID, msgExpenseCategoryPrompt, categoryKeyboard())
	case domain.StepExpenseAmount, domain.StepIncomeAmount:
		return c.say(ctx, st.ChatID, msgAmountPrompt)
	case domain.StepExpenseComment:
		return c.say(ctx, st.ChatID, msgCommentPrompt)
	case domain.StepIncomeInfo:
		return c.say(ctx, st.ChatID, msgIncomeInfoPrompt)
	case domain.StepRequestFIO:
		return c.say(ctx, st.ChatID, msgRequestFIOPrompt)
	case domain.StepRequestRole:
		return c.say(ctx, st.ChatID, msgRequestRolePrompt)
	case domain.StepRequestQuantity:
		return c.say(ctx, st.ChatID, msgRequestQuantityPrompt)
	case domain.StepRequestAmount:
		return c.say(ctx, st.ChatID, msgRequestAmountPrompt)
	case domain.StepRequestPeriod:
		return c.say(ctx, st.ChatID, msgRequestPeriodPrompt)
	case domain.StepAIText:
		return c.say(ctx, st.ChatID, msgAIPrompt)
	case domain.StepRequestAIText:
		return c.say(ctx, st.ChatID, msgRequestAIPrompt)
	case domain.StepConfirmation:
		return c.send(ctx, st.ChatID, summary(st.Pending), confirmKeyboard())
	case domain.StepEntryType:
		return c.send(ctx, st.ChatID, msgMenu, menuKeyboard())
	default:
		return c.say(ctx, st.ChatID, msgNeedStart)
	}
}

// confirm moves a complete draft to the confirmation step. An incomplete one
// is dropped and the user goes back to the menu.
func (c *Controller) confirm(ctx context.Context, st *domain.ChatState, d domain.Draft) error {
	if missing := d.Missing(); len(missing) > 0 {
		c.log.Error("dialogue.Controller.confirm: draft incomplete",
			zap.Int64("chat_id", st.ChatID), zap.Strings("missing", missing))
		if err := c.say(ctx, st.ChatID, msgIncomplete); err != nil {
			return err
		}
		return c.showMenu(ctx, st)
	}
	st.Pending = d
	st.Step = domain.StepConfirmation
	return c.promptStep(ctx, st)
}

func (c *Controller) say(ctx context.Context, chatID int64, text string) error {
	return c.send(ctx, chatID, text, nil)
}

func (c *Controller) send(ctx context.Context, chatID int64, text string, kb *port.Keyboard) error {
	if err := c.messenger.Send(ctx, chatID, port.OutgoingMessage{Text: text, Keyboard: kb}); err != nil {
		c.log.Error("dialogue.Controller.send: reply not delivered", zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}
	return nil
}
