package extractor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"ledgerbot/internal/amount"
)

var fenceRe = regexp.MustCompile("```(?:json|JSON)?")

var dateLayouts = []string{"2006-01-02", "02.01.2006", "2006/01/02"}

// extractJSON strips code fences and returns the outermost JSON object in reply.
func extractJSON(reply string) ([]byte, error) {
	cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(reply, ""))
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in reply: %s", truncate(cleaned, 200))
	}
	raw := []byte(cleaned[start : end+1])
	if !json.Valid(raw) {
		return nil, fmt.Errorf("invalid JSON in reply: %s", truncate(cleaned, 200))
	}
	return raw, nil
}

// flexNumber decodes a JSON number or a string such as "10к" or "12 000 руб".
// It stays nil when nothing numeric was given.
type flexNumber struct {
	value *decimal.Decimal
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if !strings.HasPrefix(s, `"`) {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		n.value = &d
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	d, ok := parseSpokenNumber(str)
	if ok {
		n.value = &d
	}
	return nil
}

func parseSpokenNumber(s string) (decimal.Decimal, bool) {
	s = strings.ToLower(s)
	compact := strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(s)
	d, err := amount.ParseNumber(compact)
	if err != nil {
		return decimal.Zero, false
	}
	switch {
	case strings.Contains(s, "млн"):
		d = d.Mul(decimal.NewFromInt(1_000_000))
	case strings.Contains(s, "тыс"), strings.HasSuffix(compact, "к"), strings.HasSuffix(compact, "k"):
		d = d.Mul(decimal.NewFromInt(1_000))
	}
	return d, true
}

// parseDate accepts the layouts models tend to produce. ok is false for anything else.
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// truncate cuts s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
