package normalize

import "fmt"

// SchemaErrorKind identifies which structural guard rejected the payload.
type SchemaErrorKind string

const (
	// SchemaMarkdownWrapped means the oracle wrapped its answer in a fenced
	// code block instead of returning bare JSON.
	SchemaMarkdownWrapped SchemaErrorKind = "markdown_wrapped"
	// SchemaHTMLWrapped means the oracle returned an HTML document.
	SchemaHTMLWrapped SchemaErrorKind = "html_wrapped"
	// SchemaInvalidJSON means the payload passed the wrapper guards but could
	// not be parsed as JSON.
	SchemaInvalidJSON SchemaErrorKind = "invalid_json"
	// SchemaNotAnObject means the parsed document is not a JSON object.
	SchemaNotAnObject SchemaErrorKind = "not_an_object"
	// SchemaFieldsNotArray means the document has no fields array.
	SchemaFieldsNotArray SchemaErrorKind = "fields_not_array"
)

// SchemaError reports why a raw payload could not be normalized into a form
// schema. Kind drives programmatic handling; Hint carries a user-actionable
// suggestion for prompt authors.
type SchemaError struct {
	Kind SchemaErrorKind
	Err  error
}

func (e *SchemaError) Error() string {
	switch e.Kind {
	case SchemaMarkdownWrapped:
		return "normalize: oracle returned markdown-fenced output instead of bare JSON"
	case SchemaHTMLWrapped:
		return "normalize: oracle returned HTML instead of JSON"
	case SchemaInvalidJSON:
		return fmt.Sprintf("normalize: payload is not valid JSON: %v", e.Err)
	case SchemaNotAnObject:
		return "normalize: payload is not a JSON object"
	case SchemaFieldsNotArray:
		return "normalize: payload has no fields array"
	default:
		return "normalize: malformed payload"
	}
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Hint returns guidance the caller can surface next to the error.
func (e *SchemaError) Hint() string {
	switch e.Kind {
	case SchemaMarkdownWrapped:
		return `ask for "ONLY pure JSON without any markdown formatting"`
	case SchemaHTMLWrapped:
		return "rephrase the prompt to request only JSON output"
	case SchemaInvalidJSON:
		return `add "Return ONLY valid JSON without any additional text" to the prompt`
	case SchemaFieldsNotArray:
		return `the schema must carry a top-level "fields" array`
	default:
		return ""
	}
}
