package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":8080" || cfg.LogLevel != "info" || cfg.Database.Path != "promptform.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	doc := `
listen: ":9000"
log_level: debug
database:
  path: /tmp/forms.db
gemini:
  api_key: file-key
  model: gemini-1.5-pro
`
	if err := os.WriteFile(filepath.Join(dir, "promptform.yml"), []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":9000" || cfg.LogLevel != "debug" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Database.Path != "/tmp/forms.db" {
		t.Fatalf("database path not applied: %q", cfg.Database.Path)
	}
	if cfg.Gemini.APIKey != "file-key" || cfg.Gemini.Model != "gemini-1.5-pro" {
		t.Fatalf("gemini values not applied: %+v", cfg.Gemini)
	}
}

func TestLoad_EnvOverridesAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Fatalf("env key not applied: %q", cfg.Gemini.APIKey)
	}
}

func TestFromYAML_Validation(t *testing.T) {
	cases := []struct {
		doc  string
		want string
	}{
		{"listen: \"\"\n", "listen address"},
		{"base_path: forms\n", "base_path"},
		{"log_level: loud\n", "log_level"},
		{"database:\n  path: \"\"\n", "database.path"},
	}
	for _, tc := range cases {
		_, err := FromYAML([]byte(tc.doc))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("doc %q: expected %q error, got %v", tc.doc, tc.want, err)
		}
	}
}
