package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-promptform/internal/store"
	"github.com/goliatone/go-promptform/pkg/editor"
	"github.com/goliatone/go-promptform/pkg/model"
	"github.com/goliatone/go-promptform/pkg/normalize"
)

// FormResponse is the wire shape of a stored form.
type FormResponse struct {
	ID        string           `json:"id"`
	Prompt    string           `json:"prompt,omitempty"`
	Schema    model.FormSchema `json:"schema"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// ResponseEnvelope is the wire shape of a stored submission.
type ResponseEnvelope struct {
	ID          string            `json:"id"`
	FormID      string            `json:"formId"`
	Values      map[string]string `json:"values"`
	Status      string            `json:"status"`
	SubmittedAt time.Time         `json:"submittedAt"`
}

func formResponse(rec store.FormRecord) FormResponse {
	return FormResponse{
		ID:        rec.ID,
		Prompt:    rec.Prompt,
		Schema:    rec.Schema,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func (s *service) registerForms(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "generate-form",
		Method:        http.MethodPost,
		Path:          "/forms/generate",
		Summary:       "Generate a form schema from a prompt",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusBadGateway},
	}, func(ctx context.Context, input *struct {
		Body struct {
			Prompt string `json:"prompt"`
		} `json:"body"`
	}) (*struct {
		Body FormResponse `json:"body"`
	}, error) {
		prompt := strings.TrimSpace(input.Body.Prompt)
		if prompt == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request",
				"please provide a text prompt describing your form requirements", nil)
		}

		text, err := s.generator.Generate(ctx, prompt)
		if err != nil {
			return nil, handleError(err)
		}
		schema, err := normalize.Normalize([]byte(text))
		if err != nil {
			return nil, handleError(err)
		}

		now := time.Now().UTC()
		rec := store.FormRecord{
			ID:        uuid.NewString(),
			Prompt:    prompt,
			Schema:    schema,
			CreatedAt: now,
			UpdatedAt: now,
		}
		rec.Schema.ID = rec.ID
		if err := s.store.SaveForm(ctx, rec); err != nil {
			return nil, handleError(err)
		}
		s.log.Info("form generated",
			zap.String("form_id", rec.ID),
			zap.Int("fields", len(rec.Schema.Fields)))
		return &struct {
			Body FormResponse `json:"body"`
		}{Body: formResponse(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-forms",
		Method:      http.MethodGet,
		Path:        "/forms",
		Summary:     "List stored forms",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []FormResponse `json:"body"`
	}, error) {
		records, err := s.store.ListForms(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]FormResponse, 0, len(records))
		for _, rec := range records {
			out = append(out, formResponse(rec))
		}
		return &struct {
			Body []FormResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-form",
		Method:      http.MethodGet,
		Path:        "/forms/{id}",
		Summary:     "Get one form",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body FormResponse `json:"body"`
	}, error) {
		rec, err := s.store.GetForm(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body FormResponse `json:"body"`
		}{Body: formResponse(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "replace-form-schema",
		Method:      http.MethodPatch,
		Path:        "/forms/{id}",
		Summary:     "Replace a form's schema",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body struct {
			Schema json.RawMessage `json:"schema"`
		} `json:"body"`
	}) (*struct {
		Body FormResponse `json:"body"`
	}, error) {
		// The replacement document runs through the same normalization as
		// model output, so hand-edited schemas get the same guarantees.
		schema, err := normalize.Normalize(input.Body.Schema)
		if err != nil {
			return nil, handleError(err)
		}
		schema.ID = input.ID
		if err := s.store.UpdateFormSchema(ctx, input.ID, schema); err != nil {
			return nil, handleError(err)
		}
		rec, err := s.store.GetForm(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body FormResponse `json:"body"`
		}{Body: formResponse(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-form",
		Method:        http.MethodDelete,
		Path:          "/forms/{id}",
		Summary:       "Delete a form and its responses",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := s.store.DeleteForm(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-responses",
		Method:      http.MethodGet,
		Path:        "/forms/{id}/responses",
		Summary:     "List responses for a form",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body []ResponseEnvelope `json:"body"`
	}, error) {
		if _, err := s.store.GetForm(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		records, err := s.store.ListResponses(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]ResponseEnvelope, 0, len(records))
		for _, rec := range records {
			out = append(out, ResponseEnvelope{
				ID:          rec.ID,
				FormID:      rec.FormID,
				Values:      rec.Values,
				Status:      rec.Status,
				SubmittedAt: rec.SubmittedAt,
			})
		}
		return &struct {
			Body []ResponseEnvelope `json:"body"`
		}{Body: out}, nil
	})
}

func (s *service) registerFields(api huma.API) {
	// Every field operation loads the stored schema, applies one editor
	// operation, and persists the result.
	apply := func(ctx context.Context, formID string, op func(model.FormSchema) (model.FormSchema, error)) (FormResponse, error) {
		rec, err := s.store.GetForm(ctx, formID)
		if err != nil {
			return FormResponse{}, err
		}
		next, err := op(rec.Schema)
		if err != nil {
			return FormResponse{}, err
		}
		if err := s.store.UpdateFormSchema(ctx, formID, next); err != nil {
			return FormResponse{}, err
		}
		rec, err = s.store.GetForm(ctx, formID)
		if err != nil {
			return FormResponse{}, err
		}
		return formResponse(rec), nil
	}

	huma.Register(api, huma.Operation{
		OperationID:   "add-field",
		Method:        http.MethodPost,
		Path:          "/forms/{id}/fields",
		Summary:       "Append a field",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string                `path:"id"`
		Body model.FieldDefinition `json:"body"`
	}) (*struct {
		Body FormResponse `json:"body"`
	}, error) {
		out, err := apply(ctx, input.ID, func(schema model.FormSchema) (model.FormSchema, error) {
			return editor.AddField(schema, input.Body)
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body FormResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-field",
		Method:      http.MethodPatch,
		Path:        "/forms/{id}/fields/{index}",
		Summary:     "Update a field in place",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID    string                `path:"id"`
		Index int                   `path:"index"`
		Body  model.FieldDefinition `json:"body"`
	}) (*struct {
		Body FormResponse `json:"body"`
	}, error) {
		out, err := apply(ctx, input.ID, func(schema model.FormSchema) (model.FormSchema, error) {
			return editor.UpdateField(schema, input.Index, input.Body)
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body FormResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-field",
		Method:      http.MethodDelete,
		Path:        "/forms/{id}/fields/{index}",
		Summary:     "Delete a field",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID    string `path:"id"`
		Index int    `path:"index"`
	}) (*struct {
		Body FormResponse `json:"body"`
	}, error) {
		out, err := apply(ctx, input.ID, func(schema model.FormSchema) (model.FormSchema, error) {
			return editor.DeleteField(schema, input.Index)
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body FormResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "move-field",
		Method:      http.MethodPost,
		Path:        "/forms/{id}/fields/{index}/move",
		Summary:     "Move a field up or down",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID    string `path:"id"`
		Index int    `path:"index"`
		Body  struct {
			Direction string `json:"direction" enum:"up,down"`
		} `json:"body"`
	}) (*struct {
		Body FormResponse `json:"body"`
	}, error) {
		out, err := apply(ctx, input.ID, func(schema model.FormSchema) (model.FormSchema, error) {
			return editor.MoveField(schema, input.Index, editor.Direction(input.Body.Direction))
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body FormResponse `json:"body"`
		}{Body: out}, nil
	})
}
