package fill

import (
	"fmt"
	"strings"
)

// FileErrorReason identifies which guard rejected an attachment.
type FileErrorReason string

const (
	FileTooLarge       FileErrorReason = "too_large"
	FileTypeNotAllowed FileErrorReason = "type_not_allowed"
)

// FileError reports a rejected attachment. The attach that raised it leaves
// the answer set untouched; the caller prompts for a new file.
type FileError struct {
	Field     string
	Reason    FileErrorReason
	MaxSizeMB float64
	SizeBytes int64
	Accept    string
	MIMEType  string
}

func (e *FileError) Error() string {
	switch e.Reason {
	case FileTooLarge:
		return fmt.Sprintf("fill: file for %q is too large: max size %gMB", e.Field, e.MaxSizeMB)
	case FileTypeNotAllowed:
		return fmt.Sprintf("fill: file type %q not allowed for %q: allowed %s", e.MIMEType, e.Field, e.Accept)
	default:
		return fmt.Sprintf("fill: file rejected for %q", e.Field)
	}
}

// ValueErrorReason identifies why a scalar write was rejected.
type ValueErrorReason string

const (
	UnknownField  ValueErrorReason = "unknown_field"
	KindMismatch  ValueErrorReason = "kind_mismatch"
	NotANumber    ValueErrorReason = "not_a_number"
	UnknownOption ValueErrorReason = "unknown_option"
)

// ValueError reports a rejected answer write.
type ValueError struct {
	Field  string
	Value  string
	Reason ValueErrorReason
}

func (e *ValueError) Error() string {
	switch e.Reason {
	case UnknownField:
		return fmt.Sprintf("fill: no field named %q in schema", e.Field)
	case KindMismatch:
		return fmt.Sprintf("fill: operation does not match the kind of field %q", e.Field)
	case NotANumber:
		return fmt.Sprintf("fill: value %q for field %q is not a number", e.Value, e.Field)
	case UnknownOption:
		return fmt.Sprintf("fill: %q is not an option of field %q", e.Value, e.Field)
	default:
		return fmt.Sprintf("fill: invalid value for field %q", e.Field)
	}
}

// MissingFieldsError aggregates every required field left unanswered, in
// schema order, so the caller can show one consolidated message instead of
// stopping at the first violation.
type MissingFieldsError struct {
	Labels []string
}

func (e *MissingFieldsError) Error() string {
	return "fill: missing required fields: " + strings.Join(e.Labels, ", ")
}
