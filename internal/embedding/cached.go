package embedding

import (
	"context"
	"fmt"
	"sync"
)

const DefaultBatchSize = 16

// Cached deduplicates texts, remembers their vectors for the lifetime of
// the run and sends the rest to the wrapped embedder in fixed-size batches.
type Cached struct {
	next      Embedder
	batchSize int

	mu    sync.Mutex
	store map[string][]float64
}

func NewCached(next Embedder, batchSize int) *Cached {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Cached{
		next:      next,
		batchSize: batchSize,
		store:     make(map[string][]float64),
	}
}

func (c *Cached) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	missing := c.missing(texts)

	for start := 0; start < len(missing); start += c.batchSize {
		end := min(start+c.batchSize, len(missing))
		chunk := missing[start:end]

		vectors, err := c.next.Embed(ctx, chunk)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(chunk) {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrCountMismatch, len(vectors), len(chunk))
		}

		c.mu.Lock()
		for i, text := range chunk {
			c.store[text] = vectors[i]
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = c.store[text]
	}

	return out, nil
}

func (c *Cached) missing(texts []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, len(texts))
	var missing []string
	for _, text := range texts {
		if _, ok := c.store[text]; ok {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		missing = append(missing, text)
	}

	return missing
}
