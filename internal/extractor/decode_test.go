package extractor

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"upper fence", "```JSON\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Конечно! {\"a\":{\"b\":2}} Готово.", `{"a":{"b":2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.reply)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestExtractJSON_Invalid(t *testing.T) {
	for _, reply := range []string{"", "нет данных", "} {", `{"a":}`} {
		_, err := extractJSON(reply)
		assert.Error(t, err, reply)
	}
}

func TestFlexNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`1500`, "1500"},
		{`1500.5`, "1500.5"},
		{`"1 500,50"`, "1500.5"},
		{`"10к"`, "10000"},
		{`"2.5 тыс"`, "2500"},
		{`"1 млн"`, "1000000"},
		{`"12 000 руб"`, "12000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var n flexNumber
			require.NoError(t, json.Unmarshal([]byte(tt.in), &n))
			require.NotNil(t, n.value)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(*n.value), n.value.String())
		})
	}
}

func TestFlexNumber_Empty(t *testing.T) {
	for _, in := range []string{`null`, `""`, `"нет"`} {
		var n flexNumber
		require.NoError(t, json.Unmarshal([]byte(in), &n))
		assert.Nil(t, n.value, in)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, 5, 14, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-05-14", "14.05.2025", "2025/05/14", " 2025-05-14 "} {
		got, ok := parseDate(in, time.UTC)
		require.True(t, ok, in)
		assert.Equal(t, want, got)
	}

	_, ok := parseDate("сегодня", time.UTC)
	assert.False(t, ok)
	_, ok = parseDate("", time.UTC)
	assert.False(t, ok)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))

	// "Привет" is two bytes per letter; byte 5 falls inside "и".
	got := truncate("Привет", 5)
	assert.True(t, utf8.ValidString(got), got)
	assert.Equal(t, "Пр...", got)
}

func TestExtractJSON_ErrorStaysValidUTF8(t *testing.T) {
	reply := strings.Repeat("я", 150)

	_, err := extractJSON(reply)

	require.Error(t, err)
	assert.True(t, utf8.ValidString(err.Error()))
}
