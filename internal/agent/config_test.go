package agent

import (
	"os"
	"path/filepath"
	"testing"
)

func writeAgentYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeAgentYAML(t, `
agent:
  name: book-id
  model:
    type: gemini-2.0-flash
    temperature: 0.2
    max_output_tokens: 2048
  system_prompt: "You are a book identification expert."
  user_prompt: "Identify the attached book."
  image_dir: ./photos
  response_mime_type: application/json
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "book-id" || cfg.Model.Type != "gemini-2.0-flash" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Model.Temperature == nil || *cfg.Model.Temperature != 0.2 {
		t.Fatalf("temperature = %v", cfg.Model.Temperature)
	}
	if cfg.Model.MaxOutputTokens != 2048 {
		t.Fatalf("max tokens = %d", cfg.Model.MaxOutputTokens)
	}
	if cfg.ImageDir != "./photos" {
		t.Fatalf("image dir = %q", cfg.ImageDir)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeAgentYAML(t, `
agent:
  model:
    type: gemini-2.0-flash
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UserPrompt == "" {
		t.Fatal("user prompt fallback missing")
	}
	if cfg.ResponseMIME != "application/json" {
		t.Fatalf("mime = %q", cfg.ResponseMIME)
	}
	if cfg.Model.Temperature != nil {
		t.Fatalf("temperature = %v, want unset", cfg.Model.Temperature)
	}
}

func TestLoadConfigRequiresModelType(t *testing.T) {
	path := writeAgentYAML(t, `
agent:
  name: incomplete
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for missing model type")
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
