// Package fill interprets a form schema to collect, coerce, and validate
// end-user input. Each in-progress submission owns its AnswerSet exclusively;
// there is no internal locking because no two logical operations ever contend
// over the same set.
package fill

import (
	"strings"

	"github.com/goliatone/go-promptform/pkg/model"
)

// Value holds one collected answer. Which member is meaningful follows the
// field kind: Text for text-like kinds and single selections, Checked for the
// boolean toggle, Selected for checkbox groups, File for attachments.
type Value struct {
	Text     string
	Checked  bool
	Selected []string
	File     *Attachment
}

// Attachment is a collected file answer. Size falls back to len(Data) when
// the caller does not set it.
type Attachment struct {
	Filename string
	MIMEType string
	Size     int64
	Data     []byte
}

func (a Attachment) size() int64 {
	if a.Size > 0 {
		return a.Size
	}
	return int64(len(a.Data))
}

// IsImage reports whether the attachment should produce a preview.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.MIMEType, "image/")
}

// AnswerSet is the live, per-session mapping of field name to the current
// user-entered value. The schema is consumed read-only.
type AnswerSet struct {
	schema   model.FormSchema
	values   map[string]Value
	previews map[string][]byte
	seqs     map[string]uint64
}

// NewAnswerSet seeds every named field with its kind-appropriate zero value.
func NewAnswerSet(schema model.FormSchema) *AnswerSet {
	set := &AnswerSet{
		schema:   schema,
		values:   make(map[string]Value, len(schema.Fields)),
		previews: make(map[string][]byte),
		seqs:     make(map[string]uint64),
	}
	for _, field := range schema.Fields {
		if field.Name == "" {
			// A nameless field has no answer key; it surfaces as a
			// validation problem at submit time, not here.
			continue
		}
		set.values[field.Name] = behaviors[field.Kind].zero()
	}
	return set
}

// Schema returns the schema this answer set was built from.
func (s *AnswerSet) Schema() model.FormSchema { return s.schema }

// Value returns the current answer for a field name.
func (s *AnswerSet) Value(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// SetScalar records a text-like answer (text, email, number, textarea, date,
// select, radio) after coercing it through the kind's behavior.
func (s *AnswerSet) SetScalar(name, raw string) error {
	field, err := s.fieldFor(name)
	if err != nil {
		return err
	}
	entry := behaviors[field.Kind]
	if entry.coerce == nil {
		return &ValueError{Field: name, Reason: KindMismatch}
	}
	coerced, err := entry.coerce(field, raw)
	if err != nil {
		return err
	}
	s.values[name] = Value{Text: coerced}
	return nil
}

// SetBool records the boolean toggle answer for a bare checkbox field.
func (s *AnswerSet) SetBool(name string, checked bool) error {
	field, err := s.fieldFor(name)
	if err != nil {
		return err
	}
	if field.Kind != model.KindCheckbox {
		return &ValueError{Field: name, Reason: KindMismatch}
	}
	s.values[name] = Value{Checked: checked}
	return nil
}

// ToggleOption adds or removes option from a checkbox group's selection set.
// Toggling to the membership state the option is already in is a no-op.
func (s *AnswerSet) ToggleOption(name, option string, included bool) error {
	field, err := s.fieldFor(name)
	if err != nil {
		return err
	}
	if field.Kind != model.KindCheckboxGroup {
		return &ValueError{Field: name, Reason: KindMismatch}
	}
	if !field.HasOption(option) {
		return &ValueError{Field: name, Value: option, Reason: UnknownOption}
	}

	current := s.values[name].Selected
	idx := -1
	for i, member := range current {
		if member == option {
			idx = i
			break
		}
	}

	switch {
	case included && idx < 0:
		next := make([]string, 0, len(current)+1)
		next = append(next, current...)
		next = append(next, option)
		s.values[name] = Value{Selected: next}
	case !included && idx >= 0:
		next := make([]string, 0, len(current)-1)
		next = append(next, current[:idx]...)
		next = append(next, current[idx+1:]...)
		s.values[name] = Value{Selected: next}
	}
	return nil
}

// AttachFile validates an attachment against the field's size and type
// constraints and stores it. On rejection the prior state is retained
// unchanged. The returned sequence number identifies this attach for
// AcceptPreview, so a stale asynchronous preview can never overwrite a newer
// selection.
func (s *AnswerSet) AttachFile(name string, att Attachment) (uint64, error) {
	field, err := s.fieldFor(name)
	if err != nil {
		return 0, err
	}
	if field.Kind != model.KindFile {
		return 0, &ValueError{Field: name, Reason: KindMismatch}
	}

	if att.size() > field.MaxFileBytes() {
		return 0, &FileError{
			Field:     name,
			Reason:    FileTooLarge,
			MaxSizeMB: field.EffectiveMaxSizeMB(),
			SizeBytes: att.size(),
		}
	}
	if !acceptAllows(field.Accept, att.MIMEType, att.Filename) {
		return 0, &FileError{
			Field:    name,
			Reason:   FileTypeNotAllowed,
			Accept:   field.Accept,
			MIMEType: att.MIMEType,
		}
	}

	s.seqs[name]++
	seq := s.seqs[name]
	s.values[name] = Value{File: &att}
	delete(s.previews, name)
	return seq, nil
}

// AcceptPreview stores decoded preview data for a field if seq still
// identifies the latest attachment. Last write wins per field: previews for
// superseded attachments are dropped.
func (s *AnswerSet) AcceptPreview(name string, seq uint64, data []byte) bool {
	if s.seqs[name] != seq {
		return false
	}
	s.previews[name] = data
	return true
}

// Preview returns the preview side channel for a field, if one was accepted.
func (s *AnswerSet) Preview(name string) ([]byte, bool) {
	data, ok := s.previews[name]
	return data, ok
}

// ValidateRequired checks every required field and aggregates all violations
// into a single MissingFieldsError, labels in schema order. The answer set is
// preserved for correction.
func (s *AnswerSet) ValidateRequired() error {
	var missing []string
	for _, field := range s.schema.Fields {
		if !field.Required {
			continue
		}
		value, ok := s.values[field.Name]
		if !ok || behaviors[field.Kind].isEmpty(value) {
			missing = append(missing, field.DisplayLabel())
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Labels: missing}
	}
	return nil
}

func (s *AnswerSet) fieldFor(name string) (model.FieldDefinition, error) {
	field, ok := s.schema.FieldByName(name)
	if !ok || name == "" {
		return model.FieldDefinition{}, &ValueError{Field: name, Reason: UnknownField}
	}
	return field, nil
}

// acceptAllows evaluates a comma-separated allow-list against a MIME type
// and filename. Entries may be exact MIME types, type/* wildcards, or .ext
// filename suffixes. An empty list allows any file.
func acceptAllows(accept, mimeType, filename string) bool {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return true
	}

	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	filename = strings.ToLower(strings.TrimSpace(filename))

	for _, entry := range strings.Split(accept, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		switch {
		case entry == "":
			continue
		case entry == "*" || entry == "*/*":
			return true
		case strings.HasPrefix(entry, "."):
			if strings.HasSuffix(filename, entry) {
				return true
			}
		case strings.HasSuffix(entry, "/*"):
			if strings.HasPrefix(mimeType, strings.TrimSuffix(entry, "*")) {
				return true
			}
		default:
			if mimeType == entry {
				return true
			}
		}
	}
	return false
}
