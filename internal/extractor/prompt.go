package extractor

import (
	"fmt"
	"strings"
	"time"
)

// BuildPrompt embeds the schema fields, today's date and the user's raw text.
func BuildPrompt(s *Schema, text string, today time.Time) string {
	var b strings.Builder
	b.WriteString("Преобразуй текст в JSON с полями:\n{\n")
	for i, f := range s.Fields {
		sep := ","
		if i == len(s.Fields)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  %q: %q%s\n", f.Name, f.Description, sep)
	}
	b.WriteString("}\n")
	fmt.Fprintf(&b, "Сегодня %s.\n", today.Format("2006-01-02"))
	fmt.Fprintf(&b, "Пример ответа: %s\n", s.Example)
	fmt.Fprintf(&b, "Возвращай ТОЛЬКО JSON без пояснений. Вот текст: %q", text)
	return b.String()
}
