// Package preview renders a form schema as a standalone HTML page so a form
// can be inspected in a browser before it is published.
package preview

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-promptform/pkg/model"
)

//go:embed templates/*.html
var templates embed.FS

// Renderer renders schemas through a pongo2 template set. The zero value is
// not usable; construct with New.
type Renderer struct {
	mu   sync.Mutex
	tmpl *pongo2.Template
}

// New loads the embedded form template.
func New() (*Renderer, error) {
	set := pongo2.NewSet("promptform", pongo2.NewFSLoader(templates))
	tmpl, err := set.FromFile("templates/form.html")
	if err != nil {
		return nil, fmt.Errorf("preview: load template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// ContentType reports the MIME type of rendered output.
func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

// Render produces the HTML page for one schema.
func (r *Renderer) Render(schema model.FormSchema) ([]byte, error) {
	ctx, err := schemaContext(schema)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	r.mu.Lock()
	err = r.tmpl.ExecuteWriter(ctx, &buf)
	r.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("preview: execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// schemaContext flattens the schema to plain maps via its JSON form, so the
// template sees the same keys the wire format uses.
func schemaContext(schema model.FormSchema) (pongo2.Context, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("preview: encode schema: %w", err)
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("preview: decode schema: %w", err)
	}
	if _, ok := doc["fields"]; !ok {
		doc["fields"] = []any{}
	}
	return pongo2.Context(doc), nil
}
