package telegram

import (
	"context"
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ledgerbot/internal/config"
	"ledgerbot/internal/domain"
)

// DecodeUpdate parses a raw webhook payload.
func DecodeUpdate(raw []byte) (tgbotapi.Update, error) {
	var u tgbotapi.Update
	if err := json.Unmarshal(raw, &u); err != nil {
		return tgbotapi.Update{}, fmt.Errorf("%w: decoding update: %v", domain.ErrValidation, err)
	}
	return u, nil
}

// ToEvent converts a text message or a button press. ok is false for every
// other update kind.
func ToEvent(u tgbotapi.Update) (ev domain.Event, ok bool) {
	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		if cq.Message == nil || cq.Message.Chat == nil {
			return domain.Event{}, false
		}
		return domain.Event{
			ChatID:     cq.Message.Chat.ID,
			MessageID:  cq.Message.MessageID,
			Action:     cq.Data,
			CallbackID: cq.ID,
		}, true
	case u.Message != nil && u.Message.Chat != nil && u.Message.Text != "":
		return domain.Event{
			ChatID:    u.Message.Chat.ID,
			MessageID: u.Message.MessageID,
			Text:      u.Message.Text,
		}, true
	default:
		return domain.Event{}, false
	}
}

// NewBotAPI connects to the Bot API with the configured token.
func NewBotAPI(cfg *config.TelegramConfig, log *zap.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to telegram: %v", domain.ErrConfiguration, err)
	}
	log.Info("telegram.NewBotAPI: authorized", zap.String("username", api.Self.UserName))
	return api, nil
}

// SetWebhook points the bot at url. secret is echoed back by Telegram in the
// X-Telegram-Bot-Api-Secret-Token header.
func SetWebhook(api *tgbotapi.BotAPI, url, secret string, dropPending bool) error {
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)
	params.AddBool("drop_pending_updates", dropPending)
	if _, err := api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("%w: set webhook: %v", domain.ErrExternalService, err)
	}
	return nil
}

// Poll long-polls for updates and emits the ones that map to events. The
// channel is closed after ctx is canceled.
func Poll(ctx context.Context, api *tgbotapi.BotAPI, timeout int, log *zap.Logger) (<-chan domain.Event, error) {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return nil, fmt.Errorf("%w: delete webhook: %v", domain.ErrExternalService, err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout
	updates := api.GetUpdatesChan(u)

	events := make(chan domain.Event)
	go func() {
		defer close(events)
		defer api.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				ev, ok := ToEvent(upd)
				if !ok {
					log.Debug("telegram.Poll: skipping update", zap.Int("update_id", upd.UpdateID))
					continue
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}
