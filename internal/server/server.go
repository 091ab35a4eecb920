// Package server exposes the form service over HTTP: generation, schema
// editing, HTML preview, and response collection.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-promptform/internal/store"
	"github.com/goliatone/go-promptform/pkg/editor"
	"github.com/goliatone/go-promptform/pkg/fill"
	"github.com/goliatone/go-promptform/pkg/normalize"
	"github.com/goliatone/go-promptform/pkg/oracle"
	"github.com/goliatone/go-promptform/pkg/render/preview"
)

// Config for the HTTP API handler.
type Config struct {
	Store     store.Store
	Generator oracle.Generator
	Preview   *preview.Renderer
	BasePath  string
	Logger    *zap.Logger
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"invalid_schema"`
	Message string         `json:"message" example:"schema text is wrapped in a markdown code fence"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError is the error envelope every endpoint returns.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns the HTTP handler for the form service.
func New(cfg Config) (http.Handler, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v1"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}

	router := chi.NewRouter()
	router.Use(requestLogger(cfg.Logger))

	hcfg := huma.DefaultConfig("Promptform API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	s := &service{
		store:     cfg.Store,
		generator: cfg.Generator,
		preview:   cfg.Preview,
		log:       cfg.Logger,
	}

	registerHealth(group)
	s.registerForms(group)
	s.registerFields(group)

	router.Get(basePath+"/forms/{id}/preview", s.handlePreview)
	router.Post(basePath+"/forms/{id}/responses", s.handleSubmit)

	return router, nil
}

type service struct {
	store     store.Store
	generator oracle.Generator
	preview   *preview.Renderer
	log       *zap.Logger
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// handleError maps domain errors onto the envelope and an HTTP status.
func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}

	var serr *normalize.SchemaError
	if errors.As(err, &serr) {
		return newAPIError(http.StatusBadRequest, "invalid_schema", serr.Error(), map[string]any{
			"kind": string(serr.Kind),
			"hint": serr.Hint(),
		})
	}
	var verr *editor.ValidationError
	if errors.As(err, &verr) {
		return newAPIError(http.StatusBadRequest, "invalid_field_name", verr.Error(), map[string]any{
			"name":   verr.Name,
			"reason": string(verr.Reason),
		})
	}
	var ierr *editor.IndexError
	if errors.As(err, &ierr) {
		return newAPIError(http.StatusBadRequest, "index_out_of_range", ierr.Error(), nil)
	}
	var missing *fill.MissingFieldsError
	if errors.As(err, &missing) {
		return newAPIError(http.StatusUnprocessableEntity, "missing_required_fields", missing.Error(), map[string]any{
			"fields": missing.Labels,
		})
	}
	var ferr *fill.FileError
	if errors.As(err, &ferr) {
		return newAPIError(http.StatusUnprocessableEntity, "file_rejected", ferr.Error(), map[string]any{
			"field":  ferr.Field,
			"reason": string(ferr.Reason),
		})
	}
	var valErr *fill.ValueError
	if errors.As(err, &valErr) {
		return newAPIError(http.StatusBadRequest, "invalid_value", valErr.Error(), map[string]any{
			"field":  valErr.Field,
			"reason": string(valErr.Reason),
		})
	}
	var upstream *oracle.StatusError
	if errors.As(err, &upstream) {
		return newAPIError(http.StatusBadGateway, "upstream_error", upstream.Error(), nil)
	}
	if errors.Is(err, store.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", nil)
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusBadGateway:
		return "upstream_error"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("elapsed", time.Since(started)))
		})
	}
}
