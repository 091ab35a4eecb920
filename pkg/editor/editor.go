// Package editor provides the structural operations used while authoring a
// form schema. Every operation is a pure transformation: the input schema is
// never mutated, so readers holding the previous value are unaffected, and
// the caller owns persisting the returned schema.
package editor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/goliatone/go-promptform/pkg/model"
)

// Direction selects which neighbour MoveField swaps with.
type Direction string

const (
	MoveUp   Direction = "up"
	MoveDown Direction = "down"
)

// AddField appends draft to the schema with a freshly assigned ID. Option and
// file attributes inapplicable to the draft's kind are cleared, keeping the
// schema self-healing rather than trusting the caller.
func AddField(schema model.FormSchema, draft model.FieldDefinition) (model.FormSchema, error) {
	if err := validateName(schema, draft.Name, -1); err != nil {
		return model.FormSchema{}, err
	}

	field := conformField(draft)
	field.ID = uuid.NewString()

	out := schema.Clone()
	out.Fields = append(out.Fields, field)
	return out, nil
}

// UpdateField replaces the field at index with draft, preserving the existing
// field's ID. The same attribute-clearing rule as AddField applies.
func UpdateField(schema model.FormSchema, index int, draft model.FieldDefinition) (model.FormSchema, error) {
	if index < 0 || index >= len(schema.Fields) {
		return model.FormSchema{}, &IndexError{Index: index, Length: len(schema.Fields)}
	}
	if err := validateName(schema, draft.Name, index); err != nil {
		return model.FormSchema{}, err
	}

	field := conformField(draft)
	field.ID = schema.Fields[index].ID

	out := schema.Clone()
	out.Fields[index] = field
	return out, nil
}

// DeleteField removes the field at index.
func DeleteField(schema model.FormSchema, index int) (model.FormSchema, error) {
	if index < 0 || index >= len(schema.Fields) {
		return model.FormSchema{}, &IndexError{Index: index, Length: len(schema.Fields)}
	}

	out := schema.Clone()
	out.Fields = append(out.Fields[:index], out.Fields[index+1:]...)
	return out, nil
}

// MoveField swaps the field at index with its neighbour in the given
// direction. Moving the first field up or the last field down is a no-op,
// not an error, so repeated moves at the boundary are idempotent.
func MoveField(schema model.FormSchema, index int, dir Direction) (model.FormSchema, error) {
	if index < 0 || index >= len(schema.Fields) {
		return model.FormSchema{}, &IndexError{Index: index, Length: len(schema.Fields)}
	}

	var neighbour int
	switch dir {
	case MoveUp:
		neighbour = index - 1
	case MoveDown:
		neighbour = index + 1
	default:
		return model.FormSchema{}, fmt.Errorf("editor: unknown direction %q", dir)
	}

	if neighbour < 0 || neighbour >= len(schema.Fields) {
		return schema, nil
	}

	out := schema.Clone()
	out.Fields[index], out.Fields[neighbour] = out.Fields[neighbour], out.Fields[index]
	return out, nil
}

// conformField clears attributes that do not apply to the draft's kind:
// options survive only on option-bearing kinds (nil options become an empty
// list there), accept and maxSizeMB only on file fields.
func conformField(draft model.FieldDefinition) model.FieldDefinition {
	field := draft.Clone()

	if model.IsOptionBearing(field.Kind) {
		if field.Options == nil {
			field.Options = []string{}
		}
	} else {
		field.Options = nil
	}

	if field.Kind != model.KindFile {
		field.Accept = ""
		field.MaxSizeMB = 0
	}
	return field
}

// validateName enforces the answer-key invariants: non-empty, no whitespace,
// unique within the schema. skipIndex identifies the field being replaced so
// an update does not collide with itself.
func validateName(schema model.FormSchema, name string, skipIndex int) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Name: name, Reason: NameEmpty}
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return &ValidationError{Name: name, Reason: NameHasWhitespace}
	}
	for i, field := range schema.Fields {
		if i == skipIndex {
			continue
		}
		if field.Name == name {
			return &ValidationError{Name: name, Reason: NameDuplicate}
		}
	}
	return nil
}
