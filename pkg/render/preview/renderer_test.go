package preview

import (
	"strings"
	"testing"

	"github.com/goliatone/go-promptform/pkg/model"
)

func TestRender_AllKinds(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	schema := model.FormSchema{
		Title:       "Job Application",
		Description: "Tell us about yourself",
		Fields: []model.FieldDefinition{
			{Name: "full_name", Label: "Full Name", Kind: model.KindText, Required: true},
			{Name: "bio", Label: "Bio", Kind: model.KindTextarea},
			{Name: "role", Label: "Role", Kind: model.KindSelect, Options: []string{"Engineer", "Designer"}},
			{Name: "seniority", Label: "Seniority", Kind: model.KindRadio, Options: []string{"Junior", "Senior"}},
			{Name: "stack", Label: "Stack", Kind: model.KindCheckboxGroup, Options: []string{"Go", "Rust"}},
			{Name: "remote", Label: "Remote OK", Kind: model.KindCheckbox},
			{Name: "cv", Label: "CV", Kind: model.KindFile, Accept: "application/pdf", MaxSizeMB: 5},
		},
	}

	out, err := r.Render(schema)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(out)

	for _, want := range []string{
		"<title>Job Application</title>",
		"Tell us about yourself",
		`name="full_name"`,
		`<span class="required">*</span>`,
		"<textarea",
		`<option value="Engineer">`,
		`type="radio" name="seniority" value="Senior"`,
		`type="checkbox" name="stack" value="Go"`,
		`type="checkbox" name="remote"`,
		`type="file" id="cv"`,
		`accept="application/pdf"`,
		"Max size: 5",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("rendered page missing %q:\n%s", want, page)
		}
	}
}

func TestRender_FallbackTitleAndLabel(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := r.Render(model.FormSchema{
		Fields: []model.FieldDefinition{
			{Name: "email", Kind: model.KindEmail},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(out)
	if !strings.Contains(page, "<title>Form Preview</title>") {
		t.Fatalf("missing fallback title:\n%s", page)
	}
	if !strings.Contains(page, `type="email"`) {
		t.Fatalf("email kind should render a typed input:\n%s", page)
	}
}

func TestRender_EmptySchema(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := r.Render(model.FormSchema{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), "<form") {
		t.Fatalf("expected a form element even with no fields")
	}
}

func TestContentType(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := r.ContentType(); got != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", got)
	}
}
