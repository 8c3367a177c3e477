package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIConfig selects the model and endpoint. BaseURL points the client at
// any OpenAI-compatible server, such as a vLLM instance serving Gemma.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Template     string
	Templates    Templates
	MaxInputRune int
}

// OpenAISummarizer calls the Chat Completions API to produce summaries.
type OpenAISummarizer struct {
	client       openai.Client
	model        string
	template     string
	templates    Templates
	maxInputRune int
}

// NewOpenAISummarizer builds a new summarizer instance.
func NewOpenAISummarizer(cfg OpenAIConfig) (*OpenAISummarizer, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("model is empty")
	}

	templates := cfg.Templates
	if templates == nil {
		templates = DefaultTemplates()
	}
	if _, ok := templates[cfg.Template]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, cfg.Template)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAISummarizer{
		client:       openai.NewClient(opts...),
		model:        cfg.Model,
		template:     cfg.Template,
		templates:    templates,
		maxInputRune: cfg.MaxInputRune,
	}, nil
}

// Summarize produces a single cleaned summary for the article text.
func (s *OpenAISummarizer) Summarize(
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

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(input.Temperature),
	}
	if input.MaxNewTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(input.MaxNewTokens))
	}
	if input.TopP > 0 {
		params.TopP = openai.Float(input.TopP)
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrEmptyOutput)
	}

	// A "length" finish reason means the output hit MaxNewTokens; the
	// truncated text is still a usable candidate.
	summary := Clean(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("%w (finishReason = %s)", ErrEmptyOutput, resp.Choices[0].FinishReason)
	}

	return summary, nil
}
