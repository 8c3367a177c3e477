package summarizer_test

import (
	"errors"
	"os"
	"path/filepath"
	"ringkas/internal/summarizer"
	"slices"
	"strings"
	"testing"
)

func TestDefaultTemplatesContainPlaceholder(t *testing.T) {
	templates := summarizer.DefaultTemplates()

	want := []string{summarizer.TemplateDefault, summarizer.TemplateDetailed, summarizer.TemplateShort}
	if got := templates.Names(); !slices.Equal(got, want) {
		t.Fatalf("unexpected template names: %v", got)
	}

	for name, body := range templates {
		if !strings.Contains(body, "{text}") {
			t.Fatalf("template %q has no placeholder", name)
		}
	}
}

func TestRender(t *testing.T) {
	prompt, err := summarizer.DefaultTemplates().Render(summarizer.TemplateShort, "Isi berita.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(prompt, "Berita:\nIsi berita.\n") {
		t.Fatalf("expected text in prompt, got %q", prompt)
	}

	if strings.Contains(prompt, "{text}") {
		t.Fatalf("expected placeholder to be replaced")
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := summarizer.DefaultTemplates().Render("missing", "x")
	if !errors.Is(err, summarizer.ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestLoadTemplatesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	content := "templates:\n" +
		"  bullet: |\n" +
		"    Ringkas dalam satu kalimat: {text}\n" +
		"  default: \"Override {text}\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	templates, err := summarizer.LoadTemplates(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt, err := templates.Render(summarizer.TemplateDefault, "x")
	if err != nil || prompt != "Override x" {
		t.Fatalf("unexpected overridden prompt: %q, %v", prompt, err)
	}

	if _, ok := templates["bullet"]; !ok {
		t.Fatalf("expected added template")
	}

	if _, ok := templates[summarizer.TemplateDetailed]; !ok {
		t.Fatalf("expected built-in templates to be kept")
	}
}

func TestLoadTemplatesRequiresPlaceholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("templates:\n  bad: no placeholder\n"), 0o644); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	if _, err := summarizer.LoadTemplates(path); !errors.Is(err, summarizer.ErrMissingPlaceholder) {
		t.Fatalf("expected ErrMissingPlaceholder, got %v", err)
	}
}

func TestLoadTemplatesEmptyPath(t *testing.T) {
	templates, err := summarizer.LoadTemplates("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(templates) != 3 {
		t.Fatalf("expected built-in templates only, got %v", templates.Names())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		text string
		max  int
		want string
	}{
		{"abcdef", 3, "abc..."},
		{"abc", 3, "abc"},
		{"abc", 0, "abc"},
		{"éééé", 2, "éé..."},
	}

	for _, tt := range tests {
		if got := summarizer.Truncate(tt.text, tt.max); got != tt.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
		}
	}
}
