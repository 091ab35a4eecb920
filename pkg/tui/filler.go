package tui

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-promptform/pkg/fill"
	"github.com/goliatone/go-promptform/pkg/model"
)

const skipChoice = "(skip)"

// Filler walks a schema field by field, prompting through the driver and
// recording answers into a collector set. Rejected answers re-prompt; the
// user escapes only by answering validly or interrupting.
type Filler struct {
	driver PromptDriver
}

// NewFiller builds a Filler on the given driver.
func NewFiller(driver PromptDriver) *Filler {
	return &Filler{driver: driver}
}

// Fill prompts for every named field and returns the completed answer set.
// After the first pass, fields still missing are prompted again until the
// required check passes.
func (f *Filler) Fill(ctx context.Context, schema model.FormSchema) (*fill.AnswerSet, error) {
	set := fill.NewAnswerSet(schema)

	for _, field := range schema.Fields {
		if field.Name == "" {
			continue
		}
		if err := f.promptField(ctx, set, field); err != nil {
			return nil, err
		}
	}

	for {
		err := set.ValidateRequired()
		if err == nil {
			return set, nil
		}
		var missing *fill.MissingFieldsError
		if !errors.As(err, &missing) {
			return nil, err
		}
		if err := f.driver.Info(ctx, "Missing required fields: "+strings.Join(missing.Labels, ", ")); err != nil {
			return nil, err
		}
		for _, field := range unansweredRequired(schema, set) {
			if err := f.promptField(ctx, set, field); err != nil {
				return nil, err
			}
		}
	}
}

func (f *Filler) promptField(ctx context.Context, set *fill.AnswerSet, field model.FieldDefinition) error {
	label := field.DisplayLabel()
	if field.Required {
		label += " *"
	}

	switch field.Kind {
	case model.KindCheckbox:
		checked, err := f.driver.Confirm(ctx, ConfirmConfig{Message: label})
		if err != nil {
			return err
		}
		return set.SetBool(field.Name, checked)

	case model.KindCheckboxGroup:
		picked, err := f.driver.MultiSelect(ctx, SelectConfig{Message: label, Options: field.Options})
		if err != nil {
			return err
		}
		for _, idx := range picked {
			if idx < 0 || idx >= len(field.Options) {
				continue
			}
			if err := set.ToggleOption(field.Name, field.Options[idx], true); err != nil {
				return err
			}
		}
		return nil

	case model.KindSelect, model.KindRadio:
		options := field.Options
		if !field.Required {
			options = append([]string{skipChoice}, options...)
		}
		idx, err := f.driver.Select(ctx, SelectConfig{Message: label, Options: options})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) || options[idx] == skipChoice {
			return nil
		}
		return set.SetScalar(field.Name, options[idx])

	case model.KindTextarea:
		text, err := f.driver.TextArea(ctx, InputConfig{Message: label})
		if err != nil {
			return err
		}
		return set.SetScalar(field.Name, text)

	case model.KindFile:
		return f.promptFile(ctx, set, field, label)

	default:
		return f.promptScalar(ctx, set, field, label)
	}
}

// promptScalar re-prompts until the collector accepts the value, surfacing
// each rejection as an info line.
func (f *Filler) promptScalar(ctx context.Context, set *fill.AnswerSet, field model.FieldDefinition, label string) error {
	for {
		text, err := f.driver.Input(ctx, InputConfig{Message: label})
		if err != nil {
			return err
		}
		err = set.SetScalar(field.Name, text)
		if err == nil {
			return nil
		}
		var verr *fill.ValueError
		if !errors.As(err, &verr) {
			return err
		}
		if err := f.driver.Info(ctx, verr.Error()); err != nil {
			return err
		}
	}
}

// promptFile reads the file at the entered path and attaches it, re-prompting
// on size or type rejections. An empty path skips an optional field.
func (f *Filler) promptFile(ctx context.Context, set *fill.AnswerSet, field model.FieldDefinition, label string) error {
	hint := fmt.Sprintf("path to file, max %g MB", field.EffectiveMaxSizeMB())
	if field.Accept != "" {
		hint += ", accepts " + field.Accept
	}

	for {
		path, err := f.driver.Input(ctx, InputConfig{Message: label, Help: hint})
		if err != nil {
			return err
		}
		path = strings.TrimSpace(path)
		if path == "" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if err := f.driver.Info(ctx, fmt.Sprintf("cannot read %s: %v", path, err)); err != nil {
				return err
			}
			continue
		}

		att := fill.Attachment{
			Filename: filepath.Base(path),
			MIMEType: mime.TypeByExtension(filepath.Ext(path)),
			Size:     int64(len(data)),
			Data:     data,
		}
		_, err = set.AttachFile(field.Name, att)
		if err == nil {
			return nil
		}
		var ferr *fill.FileError
		if !errors.As(err, &ferr) {
			return err
		}
		if err := f.driver.Info(ctx, ferr.Error()); err != nil {
			return err
		}
	}
}

func unansweredRequired(schema model.FormSchema, set *fill.AnswerSet) []model.FieldDefinition {
	var out []model.FieldDefinition
	err := set.ValidateRequired()
	var missing *fill.MissingFieldsError
	if !errors.As(err, &missing) {
		return nil
	}
	labels := make(map[string]struct{}, len(missing.Labels))
	for _, l := range missing.Labels {
		labels[l] = struct{}{}
	}
	for _, field := range schema.Fields {
		if !field.Required {
			continue
		}
		if _, ok := labels[field.DisplayLabel()]; ok {
			out = append(out, field)
		}
	}
	return out
}
