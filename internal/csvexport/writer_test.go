package csvexport

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_ExpenseRows(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, SectionExpense)
	require.NoError(t, err)

	require.NoError(t, w.WriteHeader(SectionExpense))
	n, err := w.WriteRows([][]string{
		{"2025-05-14", "Проживание", "100", "120", "20"},
		{"", " ", ""},
		{"2025-05-15", "Лизинг", "10", "12", "2", "аванс; июнь"},
	})
	w.Flush()

	require.NoError(t, err)
	require.NoError(t, w.Error())
	assert.Equal(t, 2, n)
	assert.Equal(t, string(BOM)+
		"Дата;Категория;Сумма без НДС;Сумма с НДС;НДС;Комментарий\n"+
		"2025-05-14;Проживание;100;120;20;\n"+
		"2025-05-15;Лизинг;10;12;2;\"аванс; июнь\"\n",
		buf.String())
}

func TestWriter_RowsCutToWidth(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, SectionIncome)
	require.NoError(t, err)

	_, err = w.WriteRows([][]string{{"2025-05-14", "оплата", "1000", "1200", "200", "лишнее"}})
	w.Flush()

	require.NoError(t, err)
	assert.Equal(t, string(BOM)+"2025-05-14;оплата;1000;1200;200\n", buf.String())
}

func TestNewWriter_UnknownSection(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, Section("payroll"))

	assert.Error(t, err)
	assert.Nil(t, Columns(Section("payroll")))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Проект 1 (АмурМинералс)", "Проект_1_АмурМинералс"},
		{"  склад / север  ", "склад_север"},
		{"a__b", "a_b"},
		{"!!!", "ledger"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilename_Truncates(t *testing.T) {
	long := string(bytes.Repeat([]byte("я"), 150))

	assert.Len(t, []rune(SanitizeFilename(long)), 100)
}

func TestBuildFilename(t *testing.T) {
	got := BuildFilename("Объект 7", SectionIncome, time.Date(2025, 5, 14, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "Объект_7_income_2025-05-14.csv", got)
}
