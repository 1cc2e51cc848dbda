package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"ledgerbot/internal/domain"
)

// EventHandler processes one chat event.
type EventHandler interface {
	Handle(ctx context.Context, ev domain.Event) error
}

// PollerConfig holds settings for the update poller.
type PollerConfig struct {
	Concurrency   int
	HandleTimeout time.Duration
}

// UpdatePoller dispatches events from a long-polling source to a bounded pool of handlers.
type UpdatePoller struct {
	handler EventHandler
	cfg     PollerConfig
	log     *zap.Logger
	wg      sync.WaitGroup
}

// NewUpdatePoller creates a new UpdatePoller.
func NewUpdatePoller(handler EventHandler, cfg PollerConfig, log *zap.Logger) *UpdatePoller {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.HandleTimeout <= 0 {
		cfg.HandleTimeout = time.Minute
	}
	return &UpdatePoller{handler: handler, cfg: cfg, log: log}
}

// Run consumes events until ctx is canceled or the channel is closed. It blocks
// until all in-flight handlers have finished.
func (p *UpdatePoller) Run(ctx context.Context, events <-chan domain.Event) {
	sem := make(chan struct{}, p.cfg.Concurrency)

	p.log.Info("service.UpdatePoller: started", zap.Int("concurrency", p.cfg.Concurrency))
	defer func() {
		p.log.Info("service.UpdatePoller: shutting down, waiting for in-flight events")
		p.wg.Wait()
		p.log.Info("service.UpdatePoller: shutdown complete")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				defer func() { <-sem }()

				// In-flight events finish even during shutdown.
				handleCtx, cancel := context.WithTimeout(context.Background(), p.cfg.HandleTimeout)
				defer cancel()

				if err := p.handler.Handle(handleCtx, ev); err != nil {
					p.log.Error("service.UpdatePoller: handle failed", zap.Int64("chat_id", ev.ChatID), zap.Error(err))
				}
			}()
		}
	}
}
