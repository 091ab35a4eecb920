package fill

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-promptform/pkg/model"
)

// behavior bundles the per-kind rules the collector consults: the zero value
// a field starts from, how raw text input is coerced, and what counts as
// "unanswered" for the required check. Keeping them in one table makes kind
// handling exhaustive: an enum member without an entry fails at package init
// instead of silently falling through a switch.
type behavior struct {
	zero    func() Value
	coerce  func(field model.FieldDefinition, raw string) (string, error)
	isEmpty func(v Value) bool
}

func textZero() Value       { return Value{} }
func textEmpty(v Value) bool { return v.Text == "" }

func identity(_ model.FieldDefinition, raw string) (string, error) {
	return raw, nil
}

func numeric(field model.FieldDefinition, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
		return "", &ValueError{Field: field.Name, Value: raw, Reason: NotANumber}
	}
	return trimmed, nil
}

// membership accepts only configured options (or the empty "no selection").
func membership(field model.FieldDefinition, raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if !field.HasOption(raw) {
		return "", &ValueError{Field: field.Name, Value: raw, Reason: UnknownOption}
	}
	return raw, nil
}

var behaviors = map[model.FieldKind]behavior{
	model.KindText:     {zero: textZero, coerce: identity, isEmpty: textEmpty},
	model.KindEmail:    {zero: textZero, coerce: identity, isEmpty: textEmpty},
	model.KindNumber:   {zero: textZero, coerce: numeric, isEmpty: textEmpty},
	model.KindTextarea: {zero: textZero, coerce: identity, isEmpty: textEmpty},
	model.KindDate:     {zero: textZero, coerce: identity, isEmpty: textEmpty},
	model.KindSelect:   {zero: textZero, coerce: membership, isEmpty: textEmpty},
	model.KindRadio:    {zero: textZero, coerce: membership, isEmpty: textEmpty},
	model.KindCheckbox: {
		zero: textZero,
		// A required toggle is satisfied only when checked.
		isEmpty: func(v Value) bool { return !v.Checked },
	},
	model.KindCheckboxGroup: {
		zero:    func() Value { return Value{Selected: []string{}} },
		isEmpty: func(v Value) bool { return len(v.Selected) == 0 },
	},
	model.KindFile: {
		zero:    textZero,
		isEmpty: func(v Value) bool { return v.File == nil },
	},
}

func init() {
	for _, kind := range model.Kinds() {
		entry, ok := behaviors[kind]
		if !ok {
			panic(fmt.Sprintf("fill: no behavior registered for field kind %q", kind))
		}
		if entry.zero == nil || entry.isEmpty == nil {
			panic(fmt.Sprintf("fill: incomplete behavior for field kind %q", kind))
		}
	}
}
