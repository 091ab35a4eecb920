package editor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-promptform/pkg/model"
)

func sampleSchema() model.FormSchema {
	return model.FormSchema{
		ID:    "form-1",
		Title: "Sample",
		Fields: []model.FieldDefinition{
			{ID: "a", Name: "full_name", Label: "Full Name", Kind: model.KindText, Required: true},
			{ID: "b", Name: "meal", Label: "Meal", Kind: model.KindSelect, Options: []string{"Veg", "Fish"}},
			{ID: "c", Name: "notes", Label: "Notes", Kind: model.KindTextarea},
		},
	}
}

func TestAddField_AssignsIDAndAppends(t *testing.T) {
	schema := sampleSchema()

	out, err := AddField(schema, model.FieldDefinition{Name: "email", Label: "Email", Kind: model.KindEmail})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(out.Fields) != 4 {
		t.Fatalf("expected 4 fields, got %d", len(out.Fields))
	}
	added := out.Fields[3]
	if added.ID == "" {
		t.Fatalf("added field needs a fresh ID")
	}
	if added.Name != "email" {
		t.Fatalf("unexpected appended field: %+v", added)
	}
	if len(schema.Fields) != 3 {
		t.Fatalf("input schema was mutated")
	}
}

func TestAddField_OptionsRule(t *testing.T) {
	schema := sampleSchema()

	out, err := AddField(schema, model.FieldDefinition{Name: "color", Kind: model.KindRadio})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := out.Fields[3].Options; got == nil || len(got) != 0 {
		t.Fatalf("option-bearing kind should get empty options, got %#v", got)
	}

	out, err = AddField(schema, model.FieldDefinition{Name: "age", Kind: model.KindNumber, Options: []string{"junk"}})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if out.Fields[3].Options != nil {
		t.Fatalf("scalar kind must have options cleared, got %#v", out.Fields[3].Options)
	}
}

func TestAddField_NameValidation(t *testing.T) {
	schema := sampleSchema()

	cases := []struct {
		name   string
		reason NameErrorReason
	}{
		{"", NameEmpty},
		{"   ", NameEmpty},
		{"first name", NameHasWhitespace},
		{"tab\tname", NameHasWhitespace},
		{"meal", NameDuplicate},
	}
	for _, tc := range cases {
		_, err := AddField(schema, model.FieldDefinition{Name: tc.name, Kind: model.KindText})
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Reason != tc.reason {
			t.Fatalf("name %q: expected %s validation error, got %v", tc.name, tc.reason, err)
		}
	}
}

func TestUpdateField_KeepsIDAndHealsAttributes(t *testing.T) {
	schema := sampleSchema()

	draft := model.FieldDefinition{
		ID:        "should-be-ignored",
		Name:      "meal_choice",
		Label:     "Meal Choice",
		Kind:      model.KindText,
		Options:   []string{"stale"},
		Accept:    "image/*",
		MaxSizeMB: 3,
	}
	out, err := UpdateField(schema, 1, draft)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	updated := out.Fields[1]
	if updated.ID != "b" {
		t.Fatalf("update must preserve the field ID, got %q", updated.ID)
	}
	if updated.Options != nil || updated.Accept != "" || updated.MaxSizeMB != 0 {
		t.Fatalf("inapplicable attributes not cleared: %+v", updated)
	}
	if schema.Fields[1].Name != "meal" {
		t.Fatalf("input schema was mutated")
	}
}

func TestUpdateField_AllowsKeepingOwnName(t *testing.T) {
	schema := sampleSchema()

	if _, err := UpdateField(schema, 1, model.FieldDefinition{Name: "meal", Kind: model.KindSelect}); err != nil {
		t.Fatalf("renaming a field to its current name must not collide: %v", err)
	}
}

func TestUpdateField_OutOfBounds(t *testing.T) {
	schema := sampleSchema()

	for _, index := range []int{-1, 3, 99} {
		_, err := UpdateField(schema, index, model.FieldDefinition{Name: "x", Kind: model.KindText})
		var ierr *IndexError
		if !errors.As(err, &ierr) {
			t.Fatalf("index %d: expected IndexError, got %v", index, err)
		}
	}
}

func TestDeleteField(t *testing.T) {
	schema := sampleSchema()

	out, err := DeleteField(schema, 1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(out.Fields) != 2 || out.Fields[0].Name != "full_name" || out.Fields[1].Name != "notes" {
		t.Fatalf("unexpected fields after delete: %+v", out.Fields)
	}

	_, err = DeleteField(schema, 3)
	var ierr *IndexError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected IndexError, got %v", err)
	}
}

func TestMoveField_SwapsNeighbours(t *testing.T) {
	schema := sampleSchema()

	out, err := MoveField(schema, 2, MoveUp)
	if err != nil {
		t.Fatalf("move up: %v", err)
	}
	if out.Fields[1].Name != "notes" || out.Fields[2].Name != "meal" {
		t.Fatalf("unexpected order: %+v", out.Fields)
	}

	out, err = MoveField(schema, 0, MoveDown)
	if err != nil {
		t.Fatalf("move down: %v", err)
	}
	if out.Fields[0].Name != "meal" || out.Fields[1].Name != "full_name" {
		t.Fatalf("unexpected order: %+v", out.Fields)
	}
}

func TestMoveField_BoundaryIsIdempotent(t *testing.T) {
	schema := sampleSchema()

	top, err := MoveField(schema, 0, MoveUp)
	if err != nil {
		t.Fatalf("move first up: %v", err)
	}
	if diff := cmp.Diff(schema, top); diff != "" {
		t.Fatalf("moving first field up must be a no-op (-want +got):\n%s", diff)
	}

	last := len(schema.Fields) - 1
	bottom, err := MoveField(schema, last, MoveDown)
	if err != nil {
		t.Fatalf("move last down: %v", err)
	}
	if diff := cmp.Diff(schema, bottom); diff != "" {
		t.Fatalf("moving last field down must be a no-op (-want +got):\n%s", diff)
	}
}

func TestMoveField_UnknownDirection(t *testing.T) {
	if _, err := MoveField(sampleSchema(), 1, Direction("sideways")); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
}
