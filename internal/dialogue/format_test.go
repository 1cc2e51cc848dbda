package dialogue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/extractor"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"833.3", "833,3"},
		{"833.30", "833,3"},
		{"4166.67", "4\u00a0166,67"},
		{"5000", "5\u00a0000"},
		{"1000000", "1\u00a0000\u00a0000"},
		{"-1234.5", "-1\u00a0234,5"},
		{"12.345", "12,35"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMoney(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "4\u00a0166,67", formatCell("4166.67"))
	assert.Equal(t, "1\u00a0000,5", formatCell("1000,5"))
	assert.Equal(t, "нет", formatCell("нет"))
	assert.Equal(t, "", formatCell(""))
}

func TestSummary_Request(t *testing.T) {
	qty := 3
	sum := decimal.RequireFromString("15000.5")
	d := &domain.RequestDraft{
		Date:     time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		FIO:      "Петров П.П.",
		Role:     "монтажник",
		Quantity: &qty,
		Amount:   &sum,
		Period:   "апрель 2025",
	}

	got := summary(d)

	assert.Equal(t, msgConfirmHeader+"\n\n"+
		"📅 Дата внесения: 2025-05-01\n"+
		"👤 Петров П.П.\n"+
		"💼 монтажник\n"+
		"💡 3 светильников\n"+
		"💰 15\u00a0000,5\n"+
		"📆 апрель 2025", got)
}

func TestPreview_PadsShortRows(t *testing.T) {
	got := preview([][]string{
		{"2025-05-14", "Проживание", "100", "120", "20"},
		{"2025-05-15"},
	})

	assert.Equal(t, "Запись 1:\n"+
		"📅 Дата внесения: 2025-05-14\n"+
		"📂 Категория: Проживание\n"+
		"💵 Сумма без НДС: р.100\n"+
		"💰 Сумма с НДС: р.120\n"+
		"🧾 НДС: р.20\n"+
		"📝 Комментарий: —\n\n"+
		"Запись 2:\n"+
		"📅 Дата внесения: 2025-05-15\n"+
		"📂 Категория: \n"+
		"💵 Сумма без НДС: р.\n"+
		"💰 Сумма с НДС: р.\n"+
		"🧾 НДС: р.\n"+
		"📝 Комментарий: —", got)
}

func TestFailureMessage(t *testing.T) {
	const fallback = "fallback"
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", &extractor.ExtractionError{Kind: extractor.KindTimeout}, msgAITimeout},
		{"no amount", &extractor.ExtractionError{Kind: extractor.KindMalformedOutput, Err: extractor.ErrNoAmount}, msgAINoAmount},
		{"non-positive amount", &extractor.ExtractionError{Kind: extractor.KindMalformedOutput, Err: extractor.ErrNonPositiveAmount}, msgAIBadAmount},
		{"unclassified", &extractor.ExtractionError{Kind: extractor.KindUnclassifiedType}, msgAIUnclassified},
		{"auth required", fmt.Errorf("%w: chat 1", domain.ErrAuthRequired), msgPasswordPrompt},
		{"malformed", &extractor.ExtractionError{Kind: extractor.KindMalformedOutput}, fallback},
		{"rate limit", extractor.NewRateLimitError("gemini", errors.New("429"), 5), msgAIRateLimited},
		{"project", domain.ErrProjectRequired, msgChooseProjectFirst},
		{"empty name", domain.ErrEmptyProjectName, msgEmptyProjectName},
		{"duplicate", fmt.Errorf("wrap: %w", domain.ErrDuplicateSheet), msgProjectCreateFail},
		{"template", fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, "x"), msgTemplateMissing},
		{"incomplete", fmt.Errorf("%w: amount", domain.ErrIncompleteRecord), msgIncomplete},
		{"external", fmt.Errorf("%w: boom", domain.ErrExternalService), fallback},
		{"canceled", context.Canceled, fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failureMessage(tt.err, fallback))
		})
	}
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "timeout", failureReason(&extractor.ExtractionError{Kind: extractor.KindTimeout}))
	assert.Equal(t, "rate_limited", failureReason(fmt.Errorf("x: %w", extractor.NewRateLimitError("deepseek", nil, 0))))
	assert.Equal(t, "provider_error", failureReason(errors.New("boom")))
}
