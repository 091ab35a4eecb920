// Package normalize is the single choke point between untrusted schema
// payloads and the typed form model. Everything that reaches the editor, the
// filler, or a renderer went through Normalize first, so downstream code can
// assume every option is a plain string and every field kind is a member of
// the enumeration.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-promptform/pkg/model"
)

// Normalize converts raw JSON text, typically oracle output or a stored
// document, into a well-formed FormSchema. It is lenient about missing
// name/label/required attributes: the job here is to make the schema
// renderable, not semantically complete. The input is never mutated.
func Normalize(raw []byte) (model.FormSchema, error) {
	text := strings.TrimSpace(string(raw))

	if strings.HasPrefix(text, "<") || strings.Contains(text, "<html") {
		return model.FormSchema{}, &SchemaError{Kind: SchemaHTMLWrapped}
	}
	if strings.Contains(text, "```") {
		return model.FormSchema{}, &SchemaError{Kind: SchemaMarkdownWrapped}
	}

	var payload any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return model.FormSchema{}, &SchemaError{Kind: SchemaInvalidJSON, Err: err}
	}

	return fromDocument(payload)
}

// fromDocument applies the structural rules shared by the JSON and YAML entry
// points.
func fromDocument(payload any) (model.FormSchema, error) {
	doc, ok := payload.(map[string]any)
	if !ok {
		return model.FormSchema{}, &SchemaError{Kind: SchemaNotAnObject}
	}

	rawFields, ok := doc["fields"].([]any)
	if !ok {
		return model.FormSchema{}, &SchemaError{Kind: SchemaFieldsNotArray}
	}

	schema := model.FormSchema{
		ID:          readString(doc, "id"),
		Title:       sanitizeText(readString(doc, "title")),
		Description: sanitizeText(readString(doc, "description")),
		Fields:      make([]model.FieldDefinition, 0, len(rawFields)),
	}

	for _, entry := range rawFields {
		schema.Fields = append(schema.Fields, normalizeField(entry))
	}
	return schema, nil
}

func normalizeField(entry any) model.FieldDefinition {
	raw, ok := entry.(map[string]any)
	if !ok {
		// Keep a placeholder so field order survives; it will surface as a
		// filling problem, not a normalization failure.
		return model.FieldDefinition{ID: uuid.NewString(), Kind: model.KindText}
	}

	options, hasOptions := normalizeOptions(raw["options"])
	kind := model.ParseKind(readString(raw, "type"), hasOptions)

	field := model.FieldDefinition{
		ID:       readString(raw, "id"),
		Name:     readString(raw, "name"),
		Label:    sanitizeText(readString(raw, "label")),
		Kind:     kind,
		Required: readBool(raw["required"]),
	}
	if field.ID == "" {
		field.ID = uuid.NewString()
	}

	if model.IsOptionBearing(kind) {
		if options == nil {
			options = []string{}
		}
		field.Options = options
	}

	if kind == model.KindFile {
		field.Accept = readString(raw, "accept")
		field.MaxSizeMB = readFloat(raw["maxSizeMB"])
	}

	return field
}

// normalizeOptions coerces every option element to a plain string.
// Object-shaped options reduce via label, then value, then a structural JSON
// dump; everything else is stringified directly.
func normalizeOptions(raw any) ([]string, bool) {
	list, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, optionString(item))
	}
	return out, true
}

func optionString(item any) string {
	switch v := item.(type) {
	case string:
		return sanitizeText(v)
	case map[string]any:
		if label := readString(v, "label"); label != "" {
			return sanitizeText(label)
		}
		if value := readString(v, "value"); value != "" {
			return sanitizeText(value)
		}
		dump, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(dump)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func readString(m map[string]any, key string) string {
	value, ok := m[key].(string)
	if !ok {
		return ""
	}
	return value
}

func readBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

func readFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
