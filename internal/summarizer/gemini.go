package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiConfig struct {
	APIKey       string
	Model        string
	Template     string
	Templates    Templates
	MaxInputRune int
}

// GeminiSummarizer calls the Gemini generateContent API.
type GeminiSummarizer struct {
	client       *genai.Client
	model        string
	template     string
	templates    Templates
	maxInputRune int
}

func NewGeminiSummarizer(ctx context.Context, cfg GeminiConfig) (*GeminiSummarizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}

	templates := cfg.Templates
	if templates == nil {
		templates = DefaultTemplates()
	}
	if _, ok := templates[cfg.Template]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, cfg.Template)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiSummarizer{
		client:       client,
		model:        strings.TrimSpace(cfg.Model),
		template:     cfg.Template,
		templates:    templates,
		maxInputRune: cfg.MaxInputRune,
	}, nil
}

func (s *GeminiSummarizer) Close() error {
	return s.client.Close()
}

func (s *GeminiSummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", ErrEmptyInput
	}

	userPrompt, err := s.templates.Render(s.template, Truncate(text, s.maxInputRune))
	if err != nil {
		return "", err
	}

	m := s.client.GenerativeModel(s.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(float32(input.Temperature)),
	}
	if input.TopP > 0 {
		m.GenerationConfig.TopP = ptrFloat32(float32(input.TopP))
	}
	if input.MaxNewTokens > 0 {
		m.GenerationConfig.MaxOutputTokens = ptrInt32(int32(input.MaxNewTokens))
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	summary := Clean(firstText(resp))
	if summary == "" {
		return "", ErrEmptyOutput
	}

	return summary, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}

	return ""
}

func ptrFloat32(v float32) *float32 { return &v }

func ptrInt32(v int32) *int32 { return &v }
