// Package oracle talks to the language model that drafts form schemas from
// natural-language prompts. It returns the model's raw text untouched;
// turning that text into a schema is the normalizer's job.
package oracle

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by NewGemini when no credential is configured.
var ErrMissingAPIKey = errors.New("oracle: api key is required")

// Generator produces the raw schema text for a form description prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// StatusError reports a non-2xx reply from the model endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("oracle: unexpected status %d from model endpoint", e.StatusCode)
}
