// Package extractor turns free text into drafts with the help of a language model.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ledgerbot/internal/amount"
	"ledgerbot/internal/domain"
	"ledgerbot/internal/port"
)

// DefaultTimeout bounds one extraction when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Options tune the completion request.
type Options struct {
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	VATRate     decimal.Decimal
}

// Adapter asks the model to fill a schema and turns the reply into a draft.
// It never writes to the record sink.
type Adapter struct {
	completer port.Completer
	opts      Options
	log       *zap.Logger
	now       func() time.Time
}

// NewAdapter creates an Adapter. Zero options fall back to defaults.
func NewAdapter(completer port.Completer, opts Options, log *zap.Logger) *Adapter {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}
	if opts.VATRate.IsZero() {
		opts.VATRate = amount.DefaultVATRate
	}
	return &Adapter{completer: completer, opts: opts, log: log, now: time.Now}
}

// WithClock replaces the clock used for default dates.
func (a *Adapter) WithClock(now func() time.Time) *Adapter {
	a.now = now
	return a
}

// Extract sends text to the model and decodes the reply into a complete draft.
// Failures are *ExtractionError, or wrap domain.ErrExternalService when the
// provider itself failed.
func (a *Adapter) Extract(ctx context.Context, text string, schema *Schema) (domain.Draft, error) {
	now := a.now()
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	start := time.Now()
	out, err := a.completer.Complete(ctx, port.CompletionInput{
		System:      schema.System,
		Prompt:      BuildPrompt(schema, text, now),
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return nil, newExtractionError(KindTimeout, err)
		}
		return nil, fmt.Errorf("%w: completion: %w", domain.ErrExternalService, err)
	}
	a.log.Debug("extractor.Adapter.Extract: reply received",
		zap.String("schema", string(schema.Kind)),
		zap.String("model", out.ModelUsed),
		zap.Duration("took", time.Since(start)),
		zap.String("reply", truncate(out.Text, 500)))

	raw, err := extractJSON(out.Text)
	if err != nil {
		return nil, newExtractionError(KindMalformedOutput, err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, newExtractionError(KindMalformedOutput, err)
	}

	switch schema.Kind {
	case SchemaFinance:
		return a.financeDraft(raw, now)
	case SchemaRequest:
		return a.requestDraft(raw, now)
	default:
		return nil, fmt.Errorf("unknown schema kind %q", schema.Kind)
	}
}

type financeReply struct {
	Type          string     `json:"type"`
	Category      string     `json:"category"`
	Amount        flexNumber `json:"amount"`
	AmountWithVAT flexNumber `json:"amount_with_vat"`
	Date          string     `json:"date"`
	Comment       string     `json:"comment"`
	Description   string     `json:"description"`
}

func (a *Adapter) financeDraft(raw []byte, now time.Time) (domain.Draft, error) {
	var r financeReply
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, newExtractionError(KindMalformedOutput, err)
	}

	var amounts domain.Amounts
	switch {
	case r.Amount.value != nil:
		amounts = amount.FromExclusive(*r.Amount.value, a.opts.VATRate)
	case r.AmountWithVAT.value != nil:
		amounts = amount.FromInclusive(*r.AmountWithVAT.value, a.opts.VATRate)
	default:
		return nil, newExtractionError(KindMalformedOutput, ErrNoAmount)
	}
	if !amounts.Incl.IsPositive() {
		return nil, newExtractionError(KindMalformedOutput, ErrNonPositiveAmount)
	}

	date, ok := parseDate(r.Date, now.Location())
	if !ok {
		date = domain.Today(now)
	}

	switch strings.ToLower(strings.TrimSpace(r.Type)) {
	case "доход", "income":
		info := strings.TrimSpace(r.Description)
		if info == "" {
			info = domain.DefaultAIIncomeInfo
		}
		return &domain.IncomeDraft{Date: date, Info: info, Amounts: &amounts}, nil
	case "расход", "expense":
		category := strings.TrimSpace(r.Category)
		if category == "" {
			category = domain.DefaultAICategory
		}
		comment := strings.TrimSpace(r.Comment)
		return &domain.ExpenseDraft{Date: date, Category: category, Amounts: &amounts, Comment: &comment}, nil
	default:
		return nil, newExtractionError(KindUnclassifiedType, fmt.Errorf("type %q", r.Type))
	}
}

type requestReply struct {
	FIO    string     `json:"fio"`
	Role   string     `json:"role"`
	Lights flexNumber `json:"lights"`
	Amount flexNumber `json:"amount"`
	Period string     `json:"period"`
}

func (a *Adapter) requestDraft(raw []byte, now time.Time) (domain.Draft, error) {
	var r requestReply
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, newExtractionError(KindMalformedOutput, err)
	}

	d := &domain.RequestDraft{
		Date:   domain.Today(now),
		FIO:    strings.TrimSpace(r.FIO),
		Role:   strings.TrimSpace(r.Role),
		Period: strings.TrimSpace(r.Period),
	}
	if r.Amount.value != nil {
		v := r.Amount.value.Round(2)
		if !v.IsPositive() {
			return nil, newExtractionError(KindMalformedOutput, ErrNonPositiveAmount)
		}
		d.Amount = &v
	}
	if r.Lights.value != nil {
		qty, err := amount.Quantity(*r.Lights.value)
		if err != nil {
			return nil, newExtractionError(KindMalformedOutput, err)
		}
		d.Quantity = &qty
	}
	if missing := d.Missing(); len(missing) > 0 {
		return nil, newExtractionError(KindMalformedOutput, fmt.Errorf("missing %s", strings.Join(missing, ", ")))
	}
	return d, nil
}
