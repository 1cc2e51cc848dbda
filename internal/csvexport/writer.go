// Package csvexport writes ledger rows as CSV for spreadsheet tools.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Section names a block of columns in the ledger.
type Section string

const (
	SectionExpense Section = "expense"
	SectionIncome  Section = "income"
	SectionRequest Section = "request"
)

var columns = map[Section][]string{
	SectionExpense: {"Дата", "Категория", "Сумма без НДС", "Сумма с НДС", "НДС", "Комментарий"},
	SectionIncome:  {"Дата", "Сведения", "Сумма без НДС", "Сумма с НДС", "НДС"},
	SectionRequest: {"ФИО", "Должность", "Кол-во светильников", "Сумма", "", "Дата", "Период"},
}

// Columns returns the header of a section, or nil for an unknown one.
func Columns(s Section) []string {
	return columns[s]
}

// Writer wraps csv.Writer for exporting ledger rows.
type Writer struct {
	csv   *csv.Writer
	width int
}

// NewWriter creates a Writer for the given section. It writes the BOM
// immediately so the file opens with the right encoding.
func NewWriter(w io.Writer, s Section) (*Writer, error) {
	cols, ok := columns[s]
	if !ok {
		return nil, fmt.Errorf("unknown section %q", s)
	}
	if _, err := w.Write(BOM); err != nil {
		return nil, err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return &Writer{csv: cw, width: len(cols)}, nil
}

// WriteHeader writes the section's header row.
func (w *Writer) WriteHeader(s Section) error {
	return w.csv.Write(columns[s])
}

// WriteRows writes rows padded or cut to the section width. Blank rows are skipped.
func (w *Writer) WriteRows(rows [][]string) (int, error) {
	written := 0
	for _, r := range rows {
		if isBlank(r) {
			continue
		}
		row := make([]string, w.width)
		copy(row, r)
		if err := w.csv.Write(row); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func isBlank(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// nonWord matches anything but letters, digits, hyphen and underscore.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename turns a sheet title into a file name stem. Cyrillic letters
// are kept; the result is at most 100 runes.
func SanitizeFilename(name string) string {
	s := nonWord.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}
	if s == "" {
		return "ledger"
	}
	return s
}

// BuildFilename returns {project}_{section}_{YYYY-MM-DD}.csv.
func BuildFilename(project string, s Section, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.csv", SanitizeFilename(project), s, now.Format("2006-01-02"))
}
