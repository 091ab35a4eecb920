// Package store persists generated forms and their submitted responses.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-promptform/pkg/model"
)

var ErrNotFound = errors.New("store: not found")

// FormRecord is a persisted form: the prompt that produced it and the
// normalized schema.
type FormRecord struct {
	ID        string
	Prompt    string
	Schema    model.FormSchema
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResponseRecord is one submitted fill of a form. Values holds the
// JSON-encoded answer documents keyed by field name.
type ResponseRecord struct {
	ID          string
	FormID      string
	Values      map[string]string
	Status      string
	SubmittedAt time.Time
}

// AttachmentRecord is a file part of a response.
type AttachmentRecord struct {
	ID         string
	ResponseID string
	Field      string
	Filename   string
	MIMEType   string
	Size       int64
	Data       []byte
}

// Store is the persistence boundary the server and CLI share.
type Store interface {
	SaveForm(ctx context.Context, rec FormRecord) error
	GetForm(ctx context.Context, id string) (FormRecord, error)
	ListForms(ctx context.Context) ([]FormRecord, error)
	UpdateFormSchema(ctx context.Context, id string, schema model.FormSchema) error
	DeleteForm(ctx context.Context, id string) error

	SaveResponse(ctx context.Context, rec ResponseRecord, files []AttachmentRecord) error
	ListResponses(ctx context.Context, formID string) ([]ResponseRecord, error)
	ListAttachments(ctx context.Context, responseID string) ([]AttachmentRecord, error)
}
