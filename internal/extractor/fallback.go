package extractor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"ledgerbot/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) openUntil(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) trip(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackCompleter tries providers in order, skipping those still rate limited.
// A deadline on ctx stops the chain: the remaining providers are not tried.
type FallbackCompleter struct {
	completers []port.Completer
	circuits   []*circuitState
	names      []string
	log        *zap.Logger
	now        func() time.Time
}

// NewFallbackCompleter creates a FallbackCompleter from an ordered list of providers and their names.
func NewFallbackCompleter(completers []port.Completer, names []string, log *zap.Logger) *FallbackCompleter {
	circuits := make([]*circuitState, len(completers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackCompleter{
		completers: completers,
		circuits:   circuits,
		names:      names,
		log:        log,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for circuit timing.
func (f *FallbackCompleter) WithClock(now func() time.Time) *FallbackCompleter {
	f.now = now
	return f
}

func (f *FallbackCompleter) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	now := f.now()
	var lastErr error
	var earliestReset time.Time
	allRateLimited := true

	noteReset := func(t time.Time) {
		if earliestReset.IsZero() || t.Before(earliestReset) {
			earliestReset = t
		}
	}

	for i, c := range f.completers {
		if resetAt, open := f.circuits[i].openUntil(now); open {
			f.log.Debug("extractor.FallbackCompleter: skipping provider",
				zap.String("provider", f.names[i]), zap.Time("until", resetAt))
			noteReset(resetAt)
			continue
		}

		out, err := c.Complete(ctx, input)
		if err == nil {
			return out, nil
		}
		f.log.Warn("extractor.FallbackCompleter: provider failed",
			zap.String("provider", f.names[i]), zap.Error(err))
		lastErr = err

		if ctx.Err() != nil {
			return nil, err
		}

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].trip(resetAt)
			noteReset(resetAt)
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all providers rate limited"), int(retryAfter.Seconds()))
	}
	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}
