package editor

import "fmt"

// NameErrorReason identifies why a field name was rejected.
type NameErrorReason string

const (
	NameEmpty         NameErrorReason = "empty"
	NameHasWhitespace NameErrorReason = "whitespace"
	NameDuplicate     NameErrorReason = "duplicate"
)

// ValidationError reports a rejected field draft. The offending name travels
// with the error so callers can render a specific message.
type ValidationError struct {
	Name   string
	Reason NameErrorReason
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case NameEmpty:
		return "editor: field name must not be empty"
	case NameHasWhitespace:
		return fmt.Sprintf("editor: field name %q must not contain whitespace", e.Name)
	case NameDuplicate:
		return fmt.Sprintf("editor: field name %q is already used by another field", e.Name)
	default:
		return fmt.Sprintf("editor: field name %q is invalid", e.Name)
	}
}

// IndexError reports an operation aimed outside the field sequence.
type IndexError struct {
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("editor: index %d out of bounds for %d fields", e.Index, e.Length)
}
