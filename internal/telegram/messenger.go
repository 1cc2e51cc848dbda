// Package telegram adapts the Telegram Bot API to the messenger port and
// converts updates into dialogue events.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/port"
)

// botAPI is the part of *tgbotapi.BotAPI the messenger needs.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Messenger sends replies through the Bot API.
type Messenger struct {
	api botAPI
	log *zap.Logger
}

var _ port.Messenger = (*Messenger)(nil)

// NewMessenger creates a Messenger on top of a bot client.
func NewMessenger(api botAPI, log *zap.Logger) *Messenger {
	return &Messenger{api: api, log: log}
}

func (m *Messenger) Send(_ context.Context, chatID int64, msg port.OutgoingMessage) error {
	out := tgbotapi.NewMessage(chatID, msg.Text)
	if msg.Keyboard != nil {
		out.ReplyMarkup = markup(msg.Keyboard)
	}
	if _, err := m.api.Send(out); err != nil {
		return fmt.Errorf("%w: telegram send: %v", domain.ErrExternalService, err)
	}
	return nil
}

func (m *Messenger) SendDocument(_ context.Context, chatID int64, doc port.Document) error {
	out := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: doc.FileName, Bytes: doc.Data})
	out.Caption = doc.Caption
	if _, err := m.api.Send(out); err != nil {
		return fmt.Errorf("%w: telegram send document: %v", domain.ErrExternalService, err)
	}
	return nil
}

func (m *Messenger) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	if _, err := m.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("%w: telegram delete message: %v", domain.ErrExternalService, err)
	}
	return nil
}

func (m *Messenger) AnswerCallback(_ context.Context, callbackID string) error {
	if _, err := m.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("%w: telegram answer callback: %v", domain.ErrExternalService, err)
	}
	return nil
}

func markup(kb *port.Keyboard) any {
	if kb.Inline {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Rows))
		for _, r := range kb.Rows {
			row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
			for _, b := range r {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
			rows = append(rows, row)
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
	for _, r := range kb.Rows {
		row := make([]tgbotapi.KeyboardButton, 0, len(r))
		for _, b := range r {
			row = append(row, tgbotapi.NewKeyboardButton(b.Text))
		}
		rows = append(rows, row)
	}
	reply := tgbotapi.NewReplyKeyboard(rows...)
	reply.ResizeKeyboard = true
	reply.OneTimeKeyboard = true
	return reply
}
