package dialogue

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/sheets"
)

const groupSeparator = "\u00a0"

// formatMoney renders v the way ru-RU locale does: non-breaking space between
// thousands, comma before kopecks, no trailing zeros.
func formatMoney(v decimal.Decimal) string {
	s := v.Round(2).String()
	var b strings.Builder
	if strings.HasPrefix(s, "-") {
		b.WriteByte('-')
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(groupSeparator)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(",")
		b.WriteString(frac)
	}
	return b.String()
}

// formatCell formats a numeric spreadsheet cell as money and leaves anything else untouched.
func formatCell(cell string) string {
	v, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(cell), ",", "."))
	if err != nil {
		return cell
	}
	return formatMoney(v)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

// summary describes a complete draft for the confirmation step.
func summary(d domain.Draft) string {
	var b strings.Builder
	b.WriteString(msgConfirmHeader)
	b.WriteString("\n\n")
	switch r := d.(type) {
	case *domain.ExpenseDraft:
		comment := ""
		if r.Comment != nil {
			comment = *r.Comment
		}
		writeExpense(&b, r.Date.Format(sheets.DateLayout), r.Category,
			formatMoney(r.Amounts.Excl), formatMoney(r.Amounts.Incl), formatMoney(r.Amounts.Tax), comment)
	case *domain.IncomeDraft:
		fmt.Fprintf(&b, "📅 Дата внесения: %s\n", r.Date.Format(sheets.DateLayout))
		fmt.Fprintf(&b, "🧾 Сведения о доходе: %s\n", r.Info)
		fmt.Fprintf(&b, "💰 Пришло с НДС: р.%s\n", formatMoney(r.Amounts.Incl))
		fmt.Fprintf(&b, "💵 Без НДС: р.%s\n", formatMoney(r.Amounts.Excl))
		fmt.Fprintf(&b, "🧾 НДС: р.%s", formatMoney(r.Amounts.Tax))
	case *domain.RequestDraft:
		fmt.Fprintf(&b, "📅 Дата внесения: %s\n", r.Date.Format(sheets.DateLayout))
		fmt.Fprintf(&b, "👤 %s\n", r.FIO)
		fmt.Fprintf(&b, "💼 %s\n", r.Role)
		fmt.Fprintf(&b, "💡 %d светильников\n", *r.Quantity)
		fmt.Fprintf(&b, "💰 %s\n", formatMoney(*r.Amount))
		fmt.Fprintf(&b, "📆 %s", r.Period)
	}
	return b.String()
}

func writeExpense(b *strings.Builder, date, category, excl, incl, tax, comment string) {
	fmt.Fprintf(b, "📅 Дата внесения: %s\n", date)
	fmt.Fprintf(b, "📂 Категория: %s\n", category)
	fmt.Fprintf(b, "💵 Сумма без НДС: р.%s\n", excl)
	fmt.Fprintf(b, "💰 Сумма с НДС: р.%s\n", incl)
	fmt.Fprintf(b, "🧾 НДС: р.%s\n", tax)
	fmt.Fprintf(b, "📝 Комментарий: %s", orDash(comment))
}

// preview renders expense rows as numbered records. Short rows are padded.
func preview(rows [][]string) string {
	parts := make([]string, 0, len(rows))
	for i, r := range rows {
		cells := make([]string, 6)
		copy(cells, r)
		var b strings.Builder
		fmt.Fprintf(&b, "Запись %d:\n", i+1)
		writeExpense(&b, cells[0], cells[1], formatCell(cells[2]), formatCell(cells[3]), formatCell(cells[4]), cells[5])
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n")
}
