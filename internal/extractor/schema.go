package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaKind selects which draft a schema produces.
type SchemaKind string

const (
	SchemaFinance SchemaKind = "finance"
	SchemaRequest SchemaKind = "request"
)

// Field is one key the model is asked to fill, with its instruction.
type Field struct {
	Name        string
	Description string
}

// Schema describes the JSON object expected back from the model.
type Schema struct {
	Kind   SchemaKind
	System string
	Fields []Field
	// Example is shown to the model as the expected reply shape.
	Example string

	compiled *jsonschema.Schema
}

// Validate checks a decoded reply against the schema.
func (s *Schema) Validate(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal reply: %w", err)
	}
	if err := s.compiled.Validate(v); err != nil {
		return fmt.Errorf("reply does not match schema: %w", err)
	}
	return nil
}

// FinanceSchema asks for one expense or income entry. categories constrains the
// expense category the model may choose.
func FinanceSchema(categories []string) (*Schema, error) {
	catDesc := "категория расхода, одна из списка"
	for i, c := range categories {
		catDesc += fmt.Sprintf(" %d. %s", i+1, c)
	}
	s := &Schema{
		Kind:   SchemaFinance,
		System: "Ты помощник по заполнению финансовых записей. Отвечай только JSON.",
		Fields: []Field{
			{"type", "Доход или Расход"},
			{"category", catDesc},
			{"amount", "сумма без НДС (только число). Если написано 10к, то это 10000, 1 млн - это 1000000"},
			{"amount_with_vat", "сумма с НДС (только число), если в тексте указана сумма с НДС"},
			{"date", "дата в формате ГГГГ-ММ-ДД. Если указано \"сегодня\", укажи текущую дату"},
			{"comment", "комментарий (если есть)"},
			{"description", "сведения о доходе (если это доход)"},
		},
	}
	js := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type":            map[string]any{"type": "string"},
			"category":        nullable("string"),
			"amount":          numberish(),
			"amount_with_vat": numberish(),
			"date":            nullable("string"),
			"comment":         nullable("string"),
			"description":     nullable("string"),
		},
		"required": []string{"type"},
	}
	return compile(s, js)
}

// RequestSchema asks for one payout request for the intake sheet.
func RequestSchema() (*Schema, error) {
	s := &Schema{
		Kind:   SchemaRequest,
		System: "Ты помощник для заполнения заявок в формате JSON.",
		Fields: []Field{
			{"fio", "ФИО"},
			{"role", "роль (например: инженер, ИТР, монтажник)"},
			{"lights", "количество светильников (только число)"},
			{"amount", "сумма выплаты, ЗП без НДФЛ (только число)"},
			{"period", "период, например: май 2025"},
		},
	}
	js := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"fio":    map[string]any{"type": "string", "minLength": 1},
			"role":   map[string]any{"type": "string", "minLength": 1},
			"lights": numberish(),
			"amount": numberish(),
			"period": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"fio", "role", "lights", "amount", "period"},
	}
	return compile(s, js)
}

func nullable(typ string) map[string]any {
	return map[string]any{"type": []string{typ, "null"}}
}

// numberish accepts a JSON number or a numeric-looking string; models mix both.
func numberish() map[string]any {
	return map[string]any{"type": []string{"number", "string", "null"}}
}

func compile(s *Schema, js map[string]any) (*Schema, error) {
	b, err := json.Marshal(js)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	name := string(s.Kind) + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	s.compiled = compiled

	example := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		example[f.Name] = "..."
	}
	ex, _ := json.Marshal(example)
	s.Example = string(ex)
	return s, nil
}
