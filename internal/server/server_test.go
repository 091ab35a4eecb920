package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-promptform/internal/store"
	"github.com/goliatone/go-promptform/pkg/model"
	"github.com/goliatone/go-promptform/pkg/render/preview"
)

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

func newTestServer(t *testing.T, gen *fakeGenerator) (*httptest.Server, *store.SQLite) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	renderer, err := preview.New()
	if err != nil {
		t.Fatalf("preview renderer: %v", err)
	}
	handler, err := New(Config{Store: st, Generator: gen, Preview: renderer})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts, st
}

func decodeForm(t *testing.T, resp *http.Response) FormResponse {
	t.Helper()
	defer resp.Body.Close()
	var out FormResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode form response: %v", err)
	}
	return out
}

func decodeErrorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var out struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return out.Error.Code
}

const generatedSchema = `{
	"title": "Contact",
	"fields": [
		{"name": "full_name", "label": "Full Name", "type": "text", "required": true},
		{"name": "topics", "label": "Topics", "type": "checkbox", "options": ["Sales", "Support"]},
		{"name": "cv", "label": "CV", "type": "file", "accept": "application/pdf", "maxSizeMB": 1}
	]
}`

func generateForm(t *testing.T, ts *httptest.Server) FormResponse {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/forms/generate", "application/json",
		strings.NewReader(`{"prompt":"a contact form"}`))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("generate status %d", resp.StatusCode)
	}
	return decodeForm(t, resp)
}

func TestGenerateForm(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGenerator{text: generatedSchema})

	form := generateForm(t, ts)
	if form.ID == "" || form.Schema.ID != form.ID {
		t.Fatalf("form id not assigned: %+v", form)
	}
	if len(form.Schema.Fields) != 3 {
		t.Fatalf("unexpected fields: %+v", form.Schema.Fields)
	}
	// checkbox with options becomes a checkbox group during normalization
	if form.Schema.Fields[1].Kind != model.KindCheckboxGroup {
		t.Fatalf("expected checkbox group, got %q", form.Schema.Fields[1].Kind)
	}
}

func TestGenerateForm_MarkdownWrapped(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGenerator{text: "```json\n{}\n```"})

	resp, err := http.Post(ts.URL+"/v1/forms/generate", "application/json",
		strings.NewReader(`{"prompt":"a form"}`))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if code := decodeErrorCode(t, resp); code != "invalid_schema" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestGenerateForm_EmptyPrompt(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGenerator{text: generatedSchema})

	resp, err := http.Post(ts.URL+"/v1/forms/generate", "application/json",
		strings.NewReader(`{"prompt":"  "}`))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestGetForm_NotFound(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGenerator{})

	resp, err := http.Get(ts.URL + "/v1/forms/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if code := decodeErrorCode(t, resp); code != "not_found" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestFieldOperations(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGenerator{text: generatedSchema})
	form := generateForm(t, ts)
	base := fmt.Sprintf("%s/v1/forms/%s", ts.URL, form.ID)

	// append a field
	resp, err := http.Post(base+"/fields", "application/json",
		strings.NewReader(`{"name":"email","label":"Email","type":"email","required":true}`))
	if err != nil {
		t.Fatalf("add field: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add field status %d", resp.StatusCode)
	}
	updated := decodeForm(t, resp)
	if len(updated.Schema.Fields) != 4 || updated.Schema.Fields[3].Name != "email" {
		t.Fatalf("field not appended: %+v", updated.Schema.Fields)
	}

	// duplicate name fails fast
	resp, err = http.Post(base+"/fields", "application/json",
		strings.NewReader(`{"name":"email","type":"text"}`))
	if err != nil {
		t.Fatalf("add duplicate: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate name, got %d", resp.StatusCode)
	}
	if code := decodeErrorCode(t, resp); code != "invalid_field_name" {
		t.Fatalf("unexpected error code %q", code)
	}

	// boundary move is a no-op
	resp, err = http.Post(base+"/fields/0/move", "application/json",
		strings.NewReader(`{"direction":"up"}`))
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("move status %d", resp.StatusCode)
	}
	moved := decodeForm(t, resp)
	if moved.Schema.Fields[0].Name != "full_name" {
		t.Fatalf("boundary move should not reorder: %+v", moved.Schema.Fields)
	}

	// delete the appended field
	req, _ := http.NewRequest(http.MethodDelete, base+"/fields/3", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete field: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete field status %d", resp.StatusCode)
	}
	trimmed := decodeForm(t, resp)
	if len(trimmed.Schema.Fields) != 3 {
		t.Fatalf("field not deleted: %+v", trimmed.Schema.Fields)
	}
}

func TestPreview(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGenerator{text: generatedSchema})
	form := generateForm(t, ts)

	resp, err := http.Get(fmt.Sprintf("%s/v1/forms/%s/preview", ts.URL, form.ID))
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("preview status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), `name="full_name"`) {
		t.Fatalf("preview missing field markup")
	}
}

func buildSubmission(t *testing.T, fields map[string]string, filename string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="cv"; filename=%q`, filename))
		header.Set("Content-Type", "application/pdf")
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(fileData); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestSubmitResponse(t *testing.T) {
	ts, st := newTestServer(t, &fakeGenerator{text: generatedSchema})
	form := generateForm(t, ts)

	body, contentType := buildSubmission(t, map[string]string{
		"full_name": `"Ada Lovelace"`,
		"topics":    `["Sales"]`,
	}, "cv.pdf", []byte("%PDF-1.4"))

	resp, err := http.Post(fmt.Sprintf("%s/v1/forms/%s/responses", ts.URL, form.ID), contentType, body)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status %d", resp.StatusCode)
	}
	var envelope ResponseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp.Body.Close()
	if envelope.Status != "completed" || envelope.Values["full_name"] != `"Ada Lovelace"` {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}

	responses, err := st.ListResponses(context.Background(), form.ID)
	if err != nil {
		t.Fatalf("list responses: %v", err)
	}
	if len(responses) != 1 {
		t.Fatalf("response not persisted")
	}
	atts, err := st.ListAttachments(context.Background(), responses[0].ID)
	if err != nil {
		t.Fatalf("list attachments: %v", err)
	}
	if len(atts) != 1 || atts[0].Filename != "cv.pdf" {
		t.Fatalf("attachment not persisted: %+v", atts)
	}
}

func TestSubmitResponse_MissingRequired(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGenerator{text: generatedSchema})
	form := generateForm(t, ts)

	body, contentType := buildSubmission(t, map[string]string{"topics": `["Sales"]`}, "", nil)
	resp, err := http.Post(fmt.Sprintf("%s/v1/forms/%s/responses", ts.URL, form.ID), contentType, body)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if code := decodeErrorCode(t, resp); code != "missing_required_fields" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestSubmitResponse_OversizeFile(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGenerator{text: generatedSchema})
	form := generateForm(t, ts)

	body, contentType := buildSubmission(t, map[string]string{
		"full_name": `"Ada"`,
	}, "big.pdf", make([]byte, 2*1024*1024)) // cv field caps at 1 MB

	resp, err := http.Post(fmt.Sprintf("%s/v1/forms/%s/responses", ts.URL, form.ID), contentType, body)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if code := decodeErrorCode(t, resp); code != "file_rejected" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestReplaceFormSchema(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGenerator{text: generatedSchema})
	form := generateForm(t, ts)

	doc := `{"schema": {"title": "Renamed", "fields": [{"name": "email", "type": "email", "required": true}]}}`
	req, _ := http.NewRequest(http.MethodPatch,
		fmt.Sprintf("%s/v1/forms/%s", ts.URL, form.ID), strings.NewReader(doc))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replace status %d", resp.StatusCode)
	}
	replaced := decodeForm(t, resp)
	if replaced.Schema.Title != "Renamed" || len(replaced.Schema.Fields) != 1 {
		t.Fatalf("schema not replaced: %+v", replaced.Schema)
	}
	if replaced.Schema.ID != form.ID {
		t.Fatalf("schema id must stay pinned to the form: %q", replaced.Schema.ID)
	}
}

func TestDeleteForm(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGenerator{text: generatedSchema})
	form := generateForm(t, ts)

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/v1/forms/%s", ts.URL, form.ID), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err = http.Get(fmt.Sprintf("%s/v1/forms/%s", ts.URL, form.ID))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
