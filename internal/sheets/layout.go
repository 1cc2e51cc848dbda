// Package sheets describes where records live in the ledger spreadsheet.
// The column layout is shared with people editing the sheet by hand and must not drift.
package sheets

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ledgerbot/internal/domain"
)

const (
	// ExpenseRange covers date, category, excl, incl, tax, comment.
	ExpenseRange = "A1:F1"
	// IncomeRange covers date, info, excl, incl, tax.
	IncomeRange = "H1:L1"
	// RequestRange covers fio, role, quantity, amount, blank, date, period.
	RequestRange = "A1:G1"

	// ExpenseRows and IncomeRows hold the records below each header.
	ExpenseRows = "A2:F"
	IncomeRows  = "H2:L"
	// RequestRows covers the whole intake sheet, which has no header.
	RequestRows = "A1:G"

	PreviewRange = ExpenseRows
	PreviewRows  = 5

	DateLayout = "2006-01-02"
)

// TemplateClearRanges are emptied after a project is copied from the template:
// expenses, income and the comparison block.
var TemplateClearRanges = []string{"A2:F", "H2:L", "N2:U"}

var updatedRowRe = regexp.MustCompile(`!(?:[A-Z]+)(\d+)`)

// QuoteSheet quotes a sheet title for use in A1 notation.
func QuoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// A1 joins a sheet title and a range, e.g. 'Проект 1'!A1:F1.
func A1(sheet, rng string) string {
	return QuoteSheet(sheet) + "!" + rng
}

// ParseUpdatedRow extracts the first row number from an updated range such as
// 'Sheet'!A12:F12.
func ParseUpdatedRow(updatedRange string) (int, error) {
	m := updatedRowRe.FindStringSubmatch(updatedRange)
	if m == nil {
		return 0, fmt.Errorf("no row in updated range %q", updatedRange)
	}
	return strconv.Atoi(m[1])
}

// Placement is the destination and cell values of a finished draft.
type Placement struct {
	Sheet     string
	RangeHint string
	Row       []any
}

// Place lays out a complete draft. Expense and income rows go to the project
// sheet; payout requests go to requestSheet.
func Place(d domain.Draft, project, requestSheet string) (Placement, error) {
	if missing := d.Missing(); len(missing) > 0 {
		return Placement{}, fmt.Errorf("%w: %s", domain.ErrIncompleteRecord, strings.Join(missing, ", "))
	}
	switch r := d.(type) {
	case *domain.ExpenseDraft:
		if project == "" {
			return Placement{}, domain.ErrProjectRequired
		}
		return Placement{
			Sheet:     project,
			RangeHint: ExpenseRange,
			Row: []any{
				r.Date.Format(DateLayout),
				r.Category,
				r.Amounts.Excl.InexactFloat64(),
				r.Amounts.Incl.InexactFloat64(),
				r.Amounts.Tax.InexactFloat64(),
				*r.Comment,
			},
		}, nil
	case *domain.IncomeDraft:
		if project == "" {
			return Placement{}, domain.ErrProjectRequired
		}
		return Placement{
			Sheet:     project,
			RangeHint: IncomeRange,
			Row: []any{
				r.Date.Format(DateLayout),
				r.Info,
				r.Amounts.Excl.InexactFloat64(),
				r.Amounts.Incl.InexactFloat64(),
				r.Amounts.Tax.InexactFloat64(),
			},
		}, nil
	case *domain.RequestDraft:
		return Placement{
			Sheet:     requestSheet,
			RangeHint: RequestRange,
			Row: []any{
				r.FIO,
				r.Role,
				*r.Quantity,
				r.Amount.InexactFloat64(),
				"",
				r.Date.Format(DateLayout),
				r.Period,
			},
		}, nil
	default:
		return Placement{}, fmt.Errorf("unsupported draft %T", d)
	}
}
