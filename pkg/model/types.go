package model

import "strings"

// FieldKind is the closed enumeration of input kinds a form field can take.
type FieldKind string

const (
	KindText          FieldKind = "text"
	KindEmail         FieldKind = "email"
	KindNumber        FieldKind = "number"
	KindTextarea      FieldKind = "textarea"
	KindSelect        FieldKind = "select"
	KindRadio         FieldKind = "radio"
	KindCheckbox      FieldKind = "checkbox"
	KindCheckboxGroup FieldKind = "checkboxGroup"
	KindDate          FieldKind = "date"
	KindFile          FieldKind = "file"
)

// DefaultMaxSizeMB is the upload cap applied when a file field does not set
// its own limit.
const DefaultMaxSizeMB = 5.0

// Kinds returns every FieldKind in declaration order.
func Kinds() []FieldKind {
	return []FieldKind{
		KindText, KindEmail, KindNumber, KindTextarea, KindSelect,
		KindRadio, KindCheckbox, KindCheckboxGroup, KindDate, KindFile,
	}
}

// IsOptionBearing reports whether the kind carries a closed, ordered list of
// choices.
func IsOptionBearing(kind FieldKind) bool {
	switch kind {
	case KindSelect, KindRadio, KindCheckboxGroup:
		return true
	default:
		return false
	}
}

// ParseKind maps an external kind spelling to the internal enumeration. The
// legacy spelling "checkbox" is ambiguous: with options present it means a
// multi-select group, without options a boolean toggle. hasOptions settles the
// ambiguity once, at the boundary, so nothing downstream re-inspects option
// presence to infer behaviour. Unknown spellings degrade to KindText so a
// schema stays renderable.
func ParseKind(raw string, hasOptions bool) FieldKind {
	switch strings.TrimSpace(raw) {
	case "text":
		return KindText
	case "email":
		return KindEmail
	case "number":
		return KindNumber
	case "textarea":
		return KindTextarea
	case "select":
		return KindSelect
	case "radio":
		return KindRadio
	case "checkbox":
		if hasOptions {
			return KindCheckboxGroup
		}
		return KindCheckbox
	case "checkboxGroup", "checkbox-group", "checkboxgroup":
		return KindCheckboxGroup
	case "date":
		return KindDate
	case "file":
		return KindFile
	default:
		return KindText
	}
}

// FieldDefinition models one input inside a form schema. Struct fields carry
// the wire spelling used by the generative oracle and the document store.
type FieldDefinition struct {
	// ID is assigned once when the field is created and never changes, even
	// across renames and reorders.
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name"`
	Label    string    `json:"label,omitempty"`
	Kind     FieldKind `json:"type"`
	Required bool      `json:"required"`
	// Options is nil for kinds that do not carry choices; an empty non-nil
	// slice means "applicable but unconfigured".
	Options []string `json:"options,omitempty"`
	// Accept is a comma-separated MIME-type/extension allow-list for file
	// fields. Empty means any type.
	Accept    string  `json:"accept,omitempty"`
	MaxSizeMB float64 `json:"maxSizeMB,omitempty"`
}

// MaxFileBytes returns the byte budget for a file field, falling back to
// DefaultMaxSizeMB when the definition does not set a positive limit.
func (f FieldDefinition) MaxFileBytes() int64 {
	size := f.MaxSizeMB
	if size <= 0 {
		size = DefaultMaxSizeMB
	}
	return int64(size * 1024 * 1024)
}

// EffectiveMaxSizeMB is the limit reported in user-facing messages.
func (f FieldDefinition) EffectiveMaxSizeMB() float64 {
	if f.MaxSizeMB <= 0 {
		return DefaultMaxSizeMB
	}
	return f.MaxSizeMB
}

// DisplayLabel returns the label, falling back to the name so error messages
// never reference a blank field.
func (f FieldDefinition) DisplayLabel() string {
	if strings.TrimSpace(f.Label) != "" {
		return f.Label
	}
	return f.Name
}

// Clone returns a deep copy of the definition.
func (f FieldDefinition) Clone() FieldDefinition {
	out := f
	if f.Options != nil {
		out.Options = append([]string(nil), f.Options...)
	}
	return out
}

// HasOption reports whether value is one of the configured options.
func (f FieldDefinition) HasOption(value string) bool {
	for _, opt := range f.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// FormSchema is the ordered field definitions describing a form's shape. The
// ID is assigned by the document store, not by this package.
type FormSchema struct {
	ID          string            `json:"id,omitempty"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Fields      []FieldDefinition `json:"fields"`
}

// Clone returns a deep copy of the schema. Editor operations use it so
// concurrent readers of the original never observe partial mutations.
func (s FormSchema) Clone() FormSchema {
	out := s
	if s.Fields != nil {
		out.Fields = make([]FieldDefinition, len(s.Fields))
		for i, field := range s.Fields {
			out.Fields[i] = field.Clone()
		}
	}
	return out
}

// FieldByName returns the definition whose Name matches, if any.
func (s FormSchema) FieldByName(name string) (FieldDefinition, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldDefinition{}, false
}
