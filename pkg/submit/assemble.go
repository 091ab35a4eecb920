// Package submit turns a completed answer set into the payload shape a
// transport can carry: JSON-encoded text values on one side, raw file
// attachments on the other.
package submit

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-promptform/pkg/fill"
	"github.com/goliatone/go-promptform/pkg/model"
)

// Payload is an assembled submission. Values holds one JSON document per
// answered non-file field, keyed by field name; Files holds the binary
// attachments. The two key sets never overlap.
type Payload struct {
	FormID string
	Values map[string]string
	Files  map[string]fill.Attachment
}

// Assemble validates the answer set and partitions it into a Payload.
// Required-field violations surface as the collector's MissingFieldsError so
// the caller can send the user back to the form with every gap listed.
func Assemble(set *fill.AnswerSet) (Payload, error) {
	if err := set.ValidateRequired(); err != nil {
		return Payload{}, err
	}

	schema := set.Schema()
	payload := Payload{
		FormID: schema.ID,
		Values: make(map[string]string, len(schema.Fields)),
		Files:  make(map[string]fill.Attachment),
	}

	for _, field := range schema.Fields {
		if field.Name == "" {
			continue
		}
		value, ok := set.Value(field.Name)
		if !ok {
			continue
		}

		if field.Kind == model.KindFile {
			if value.File != nil {
				payload.Files[field.Name] = *value.File
			}
			continue
		}

		doc, err := encodeValue(field.Kind, value)
		if err != nil {
			return Payload{}, fmt.Errorf("submit: encode %q: %w", field.Name, err)
		}
		payload.Values[field.Name] = doc
	}
	return payload, nil
}

// encodeValue renders the JSON document for one answer. The document type
// follows the kind: strings for text-like fields, a boolean for the toggle,
// an array for checkbox groups.
func encodeValue(kind model.FieldKind, value fill.Value) (string, error) {
	var doc any
	switch kind {
	case model.KindCheckbox:
		doc = value.Checked
	case model.KindCheckboxGroup:
		selected := value.Selected
		if selected == nil {
			selected = []string{}
		}
		doc = selected
	default:
		doc = value.Text
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
