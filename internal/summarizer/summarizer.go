// Package summarizer produces candidate summaries with remote language
// models and drives batch generation over a dataset.
package summarizer

import (
	"context"
	"errors"
)

var (
	ErrEmptyInput  = errors.New("input is empty")
	ErrEmptyOutput = errors.New("output text is missing")
)

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the flattened article text to summarise.
	Text string
	// SourceURL is optional metadata that helps the model reference the origin.
	SourceURL string
	// MaxNewTokens caps the generated output. Zero means the backend default.
	MaxNewTokens int
	Temperature  float64
	// TopP is the nucleus-sampling threshold. Zero means the backend default.
	TopP float64
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}
