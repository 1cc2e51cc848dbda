// Package webhook turns raw platform deliveries into dialogue events and
// produces the acknowledgement returned to the platform.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/metrics"
	"ledgerbot/internal/service"
	"ledgerbot/internal/telegram"
)

// Ack is the response of the cloud-function runtime.
type Ack struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

var (
	// AckOK tells the platform the update was consumed.
	AckOK = Ack{StatusCode: 200, Body: "ok"}
	// AckFailed makes the platform redeliver the update.
	AckFailed = Ack{StatusCode: 500, Body: "Internal Server Error"}
)

var errNoBody = fmt.Errorf("%w: envelope has no body", domain.ErrValidation)

// DefaultTimeout bounds the handling of one update.
const DefaultTimeout = time.Minute

// UnwrapEnvelope returns the update carried in a cloud-function envelope. The
// body may be a JSON string or an embedded object.
func UnwrapEnvelope(raw []byte) ([]byte, error) {
	var env struct {
		Body json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: decoding envelope: %v", domain.ErrValidation, err)
	}
	body := bytes.TrimSpace(env.Body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, errNoBody
	}
	if body[0] == '"' {
		var s string
		if err := json.Unmarshal(body, &s); err != nil {
			return nil, fmt.Errorf("%w: decoding body string: %v", domain.ErrValidation, err)
		}
		if s == "" {
			return nil, errNoBody
		}
		return []byte(s), nil
	}
	return body, nil
}

// Processor feeds updates to the dialogue and reports how it went.
type Processor struct {
	handler service.EventHandler
	timeout time.Duration
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewProcessor creates a Processor. A zero timeout means DefaultTimeout.
func NewProcessor(handler service.EventHandler, timeout time.Duration, m *metrics.Metrics, log *zap.Logger) *Processor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Processor{handler: handler, timeout: timeout, metrics: m, log: log}
}

// ProcessEnvelope handles a cloud-function invocation.
func (p *Processor) ProcessEnvelope(ctx context.Context, raw []byte) Ack {
	update, err := UnwrapEnvelope(raw)
	if err != nil {
		p.log.Warn("webhook.Processor.ProcessEnvelope: bad envelope", zap.Error(err))
		return p.ack(AckFailed)
	}
	return p.ProcessUpdate(ctx, update)
}

// ProcessUpdate handles one update payload. Malformed input and panics yield
// AckFailed. Updates that are not text or button presses are acknowledged
// without reaching the dialogue. A reply that could not be delivered is
// logged and still acknowledged: redelivery would replay a state change.
func (p *Processor) ProcessUpdate(ctx context.Context, payload []byte) (ack Ack) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("webhook.Processor.ProcessUpdate: panic recovered",
				zap.Any("panic", r), zap.Stack("stack"))
			ack = p.ack(AckFailed)
		}
	}()

	update, err := telegram.DecodeUpdate(payload)
	if err != nil {
		p.log.Warn("webhook.Processor.ProcessUpdate: bad update", zap.Error(err))
		return p.ack(AckFailed)
	}
	ev, ok := telegram.ToEvent(update)
	if !ok {
		p.log.Debug("webhook.Processor.ProcessUpdate: update ignored", zap.Int("update_id", update.UpdateID))
		return p.ack(AckOK)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.handler.Handle(ctx, ev); err != nil {
		level := zap.ErrorLevel
		if errors.Is(err, context.DeadlineExceeded) {
			level = zap.WarnLevel
		}
		p.log.Log(level, "webhook.Processor.ProcessUpdate: handling failed",
			zap.Int("update_id", update.UpdateID), zap.Int64("chat_id", ev.ChatID), zap.Error(err))
	}
	return p.ack(AckOK)
}

func (p *Processor) ack(a Ack) Ack {
	p.metrics.WebhookResponses.WithLabelValues(strconv.Itoa(a.StatusCode)).Inc()
	return a
}
