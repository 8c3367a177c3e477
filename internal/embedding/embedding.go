// Package embedding turns sentences into dense vectors for semantic
// similarity scoring.
package embedding

import (
	"context"
	"errors"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

var ErrCountMismatch = errors.New("embedding count does not match input count")

// Embedder returns one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
