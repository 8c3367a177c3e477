package summarizer

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

const (
	TemplateDefault  = "default"
	TemplateShort    = "short"
	TemplateDetailed = "detailed"

	textPlaceholder = "{text}"
	truncatedSuffix = "..."

	systemPrompt = "Kamu adalah asisten yang meringkas berita berbahasa Indonesia. " +
		"Jawab hanya dengan ringkasan dalam bahasa Indonesia, tanpa judul, daftar, atau tautan."
)

var (
	ErrUnknownTemplate    = errors.New("unknown prompt template")
	ErrMissingPlaceholder = errors.New("prompt template has no {text} placeholder")
)

// Templates maps a template name to its prompt body.
type Templates map[string]string

func DefaultTemplates() Templates {
	return Templates{
		TemplateDefault: `Buatlah ringkasan singkat dari berita berikut dalam bahasa Indonesia. Ringkasan harus mencakup informasi penting dan ditulis dalam 2-3 kalimat.

Berita:
{text}

Ringkasan:`,
		TemplateShort: `Ringkaslah berita berikut dalam 1-2 kalimat yang informatif dan mudah dipahami. Fokus pada informasi utama dan fakta penting.

Berita:
{text}

Ringkasan singkat:`,
		TemplateDetailed: `Buatlah ringkasan lengkap dari berita berikut dalam bahasa Indonesia. Ringkasan harus mencakup:
1. Siapa (who) - tokoh utama
2. Apa (what) - peristiwa utama
3. Kapan (when) - waktu kejadian
4. Di mana (where) - lokasi kejadian
5. Mengapa (why) - alasan/konteks
6. Bagaimana (how) - cara/akibat

Berita:
{text}

Ringkasan lengkap:`,
	}
}

type templatesFile struct {
	Templates map[string]string `yaml:"templates"`
}

// LoadTemplates returns the built-in templates overlaid with the ones from
// the YAML file at path. An empty path returns the built-ins.
func LoadTemplates(path string) (Templates, error) {
	templates := DefaultTemplates()
	if path == "" {
		return templates, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates file: %w", err)
	}

	var file templatesFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse templates file: %w", err)
	}

	for name, body := range file.Templates {
		if !strings.Contains(body, textPlaceholder) {
			return nil, fmt.Errorf("%w: %s", ErrMissingPlaceholder, name)
		}
		templates[strings.TrimSpace(name)] = body
	}

	return templates, nil
}

func (t Templates) Names() []string {
	return slices.Sorted(maps.Keys(t))
}

// Render substitutes text into the named template.
func (t Templates) Render(name, text string) (string, error) {
	body, ok := t[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	return strings.ReplaceAll(body, textPlaceholder, text), nil
}

// Truncate cuts text to maxRunes runes and marks the cut with an ellipsis.
// maxRunes <= 0 disables truncation.
func Truncate(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)

	return string(runes[:maxRunes]) + truncatedSuffix
}
