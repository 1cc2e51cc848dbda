package dialogue

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/port"
)

func (c *Controller) handleAction(ctx context.Context, st *domain.ChatState, action string) error {
	a := domain.Action(action)
	if st.Step == domain.StepConfirmation && a != domain.ActionKeep && a != domain.ActionDelete {
		return c.promptStep(ctx, st)
	}

	if branch, ok := strings.CutPrefix(action, domain.ActionInputPrefix); ok {
		return c.startEntry(ctx, st, domain.EntryType(branch))
	}
	if name, ok := strings.CutPrefix(action, domain.ActionProjectPrefix); ok {
		return c.selectProject(ctx, st, name)
	}

	switch a {
	case domain.ActionCreateProject:
		st.Pending = nil
		st.Step = domain.StepProjectName
		return c.say(ctx, st.ChatID, msgProjectNamePrompt)
	case domain.ActionBackToProjects:
		return c.showProjectsInline(ctx, st, msgChooseProject)
	case domain.ActionBackToMenu:
		return c.showMenu(ctx, st)
	case domain.ActionKeep:
		return c.keep(ctx, st)
	case domain.ActionDelete:
		st.Discard()
		if err := c.say(ctx, st.ChatID, msgDeleted); err != nil {
			return err
		}
		return c.showMenu(ctx, st)
	case domain.ActionStartOver:
		if st.Branch == "" {
			return c.say(ctx, st.ChatID, msgUnknownBranch)
		}
		return c.startEntry(ctx, st, st.Branch)
	case domain.ActionPreview:
		return c.preview(ctx, st)
	case domain.ActionDownload:
		return c.download(ctx, st)
	case domain.ActionDone:
		st.Restart()
		return c.say(ctx, st.ChatID, msgDone)
	default:
		c.log.Warn("dialogue.Controller.handleAction: unknown action",
			zap.Int64("chat_id", st.ChatID), zap.String("action", action))
		return c.promptStep(ctx, st)
	}
}

// keep commits the confirmed draft. On failure the chat stays on the
// confirmation step so the user can try again or discard.
func (c *Controller) keep(ctx context.Context, st *domain.ChatState) error {
	if st.Step != domain.StepConfirmation || st.Pending == nil {
		return c.say(ctx, st.ChatID, msgNothingToSave)
	}
	ref, err := c.ledger.Commit(ctx, st.Project, st.Pending)
	if err != nil {
		c.log.Error("dialogue.Controller.keep: commit failed", zap.Int64("chat_id", st.ChatID), zap.Error(err))
		if errors.Is(err, domain.ErrIncompleteRecord) {
			st.Discard()
		}
		return c.say(ctx, st.ChatID, failureMessage(err, msgSaveFailed))
	}

	st.ResetToMenu()
	st.LastCommitted = ref
	text := msgSaved
	if ref.Kind == domain.KindRequest {
		text = msgRequestSaved
	}
	return c.send(ctx, st.ChatID, text, afterSaveKeyboard(ref.Kind))
}

func (c *Controller) preview(ctx context.Context, st *domain.ChatState) error {
	rows, err := c.ledger.Recent(ctx, st.Project)
	if err != nil {
		if !errors.Is(err, domain.ErrProjectRequired) {
			c.log.Error("dialogue.Controller.preview: read failed", zap.Int64("chat_id", st.ChatID), zap.Error(err))
		}
		return c.say(ctx, st.ChatID, failureMessage(err, msgPreviewFailed))
	}
	if len(rows) == 0 {
		return c.say(ctx, st.ChatID, msgNoRecords)
	}
	return c.send(ctx, st.ChatID, preview(rows), inline([]port.Button{button("🔙 В меню", domain.ActionBackToMenu)}))
}

func (c *Controller) download(ctx context.Context, st *domain.ChatState) error {
	res, err := c.exports.Export(ctx)
	if err != nil {
		c.log.Error("dialogue.Controller.download: export failed", zap.Int64("chat_id", st.ChatID), zap.Error(err))
		return c.say(ctx, st.ChatID, msgDownloadFailed)
	}
	err = c.messenger.SendDocument(ctx, st.ChatID, port.Document{
		FileName: res.FileName,
		Data:     res.Data,
		Caption:  res.URL,
	})
	if err != nil {
		c.log.Error("dialogue.Controller.download: document not delivered", zap.Int64("chat_id", st.ChatID), zap.Error(err))
		return err
	}
	return nil
}
