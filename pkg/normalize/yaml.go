package normalize

import (
	"github.com/goliatone/go-promptform/pkg/model"
	"gopkg.in/yaml.v3"
)

// NormalizeYAML decodes a YAML schema document and runs it through the same
// structural rules as Normalize. Used for file-based import, where authors
// often keep schemas in YAML.
func NormalizeYAML(raw []byte) (model.FormSchema, error) {
	var payload any
	if err := yaml.Unmarshal(raw, &payload); err != nil {
		return model.FormSchema{}, &SchemaError{Kind: SchemaInvalidJSON, Err: err}
	}
	return fromDocument(payload)
}
