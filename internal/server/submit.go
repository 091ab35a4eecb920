package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-promptform/internal/store"
	"github.com/goliatone/go-promptform/pkg/fill"
	"github.com/goliatone/go-promptform/pkg/model"
	"github.com/goliatone/go-promptform/pkg/submit"
)

const maxSubmissionMemory = 32 << 20

// handlePreview renders the stored schema as an HTML page. This endpoint
// bypasses huma because it serves a non-JSON body.
func (s *service) handlePreview(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetForm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, handleError(err))
		return
	}
	page, err := s.preview.Render(rec.Schema)
	if err != nil {
		s.writeError(w, handleError(err))
		return
	}
	w.Header().Set("Content-Type", s.preview.ContentType())
	_, _ = w.Write(page)
}

// handleSubmit accepts a multipart submission: each non-file part carries a
// JSON document for its field, file parts carry the raw bytes.
func (s *service) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	formID := chi.URLParam(r, "id")

	rec, err := s.store.GetForm(ctx, formID)
	if err != nil {
		s.writeError(w, handleError(err))
		return
	}
	if err := r.ParseMultipartForm(maxSubmissionMemory); err != nil {
		s.writeError(w, newAPIError(http.StatusBadRequest, "bad_request",
			"request body must be multipart/form-data", nil))
		return
	}

	set := fill.NewAnswerSet(rec.Schema)
	for _, field := range rec.Schema.Fields {
		if field.Name == "" {
			continue
		}
		if field.Kind == model.KindFile {
			if err := attachPart(r, set, field.Name); err != nil {
				s.writeError(w, handleError(err))
				return
			}
			continue
		}
		if err := applyPart(r, set, field); err != nil {
			s.writeError(w, handleError(err))
			return
		}
	}

	payload, err := submit.Assemble(set)
	if err != nil {
		s.writeError(w, handleError(err))
		return
	}

	resp := store.ResponseRecord{
		ID:          uuid.NewString(),
		FormID:      formID,
		Values:      payload.Values,
		Status:      "completed",
		SubmittedAt: time.Now().UTC(),
	}
	var files []store.AttachmentRecord
	for name, att := range payload.Files {
		files = append(files, store.AttachmentRecord{
			ID:         uuid.NewString(),
			ResponseID: resp.ID,
			Field:      name,
			Filename:   att.Filename,
			MIMEType:   att.MIMEType,
			Size:       att.Size,
			Data:       att.Data,
		})
	}
	if err := s.store.SaveResponse(ctx, resp, files); err != nil {
		s.writeError(w, handleError(err))
		return
	}

	s.log.Info("response recorded",
		zap.String("form_id", formID),
		zap.String("response_id", resp.ID),
		zap.Int("files", len(files)))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(ResponseEnvelope{
		ID:          resp.ID,
		FormID:      resp.FormID,
		Values:      resp.Values,
		Status:      resp.Status,
		SubmittedAt: resp.SubmittedAt,
	})
}

// applyPart decodes one non-file part and records it. Parts are JSON
// documents; a part that is not valid JSON is treated as a plain string so
// simple clients can post unquoted text.
func applyPart(r *http.Request, set *fill.AnswerSet, field model.FieldDefinition) error {
	values, ok := r.MultipartForm.Value[field.Name]
	if !ok || len(values) == 0 {
		return nil
	}
	raw := values[len(values)-1]

	switch field.Kind {
	case model.KindCheckbox:
		var checked bool
		if err := json.Unmarshal([]byte(raw), &checked); err != nil {
			return &fill.ValueError{Field: field.Name, Value: raw, Reason: fill.KindMismatch}
		}
		return set.SetBool(field.Name, checked)

	case model.KindCheckboxGroup:
		var selected []string
		if err := json.Unmarshal([]byte(raw), &selected); err != nil {
			return &fill.ValueError{Field: field.Name, Value: raw, Reason: fill.KindMismatch}
		}
		for _, option := range selected {
			if err := set.ToggleOption(field.Name, option, true); err != nil {
				return err
			}
		}
		return nil

	default:
		var text string
		if err := json.Unmarshal([]byte(raw), &text); err != nil {
			text = raw
		}
		return set.SetScalar(field.Name, text)
	}
}

// attachPart reads the uploaded file for a field, if one was sent.
func attachPart(r *http.Request, set *fill.AnswerSet, name string) error {
	headers, ok := r.MultipartForm.File[name]
	if !ok || len(headers) == 0 {
		return nil
	}
	header := headers[len(headers)-1]

	part, err := header.Open()
	if err != nil {
		return err
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return err
	}
	_, err = set.AttachFile(name, fill.Attachment{
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Size:     int64(len(data)),
		Data:     data,
	})
	return err
}

func (s *service) writeError(w http.ResponseWriter, herr error) {
	var envelope *apiError
	if !errors.As(herr, &envelope) {
		envelope = &apiError{
			status: http.StatusInternalServerError,
			Body:   apiErrorBody{Code: "internal_error", Message: "internal error"},
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(envelope.status)
	_ = json.NewEncoder(w).Encode(envelope)
}
