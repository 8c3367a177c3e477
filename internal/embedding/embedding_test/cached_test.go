package embedding_test

import (
	"context"
	"errors"
	"ringkas/internal/embedding"
	"sync"
	"testing"
)

type countingEmbedder struct {
	mu      sync.Mutex
	batches [][]string
	err     error
}

func (e *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.batches = append(e.batches, append([]string(nil), texts...))
	if e.err != nil {
		return nil, e.err
	}

	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = []float64{float64(len(text)), 1}
	}

	return out, nil
}

func TestCachedDeduplicatesAndBatches(t *testing.T) {
	stub := &countingEmbedder{}
	cached := embedding.NewCached(stub, 2)

	texts := []string{"a", "bb", "a", "ccc", "dddd"}
	vectors, err := cached.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}

	for i, text := range texts {
		if vectors[i][0] != float64(len(text)) {
			t.Fatalf("unexpected vector for %q: %v", text, vectors[i])
		}
	}

	if len(stub.batches) != 2 {
		t.Fatalf("expected 2 batches, got %v", stub.batches)
	}

	if _, err = cached.Embed(context.Background(), []string{"bb", "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stub.batches) != 2 {
		t.Fatalf("expected cached texts to skip the embedder, got %v", stub.batches)
	}
}

func TestCachedPropagatesErrors(t *testing.T) {
	errBoom := errors.New("boom")
	cached := embedding.NewCached(&countingEmbedder{err: errBoom}, 0)

	if _, err := cached.Embed(context.Background(), []string{"a"}); !errors.Is(err, errBoom) {
		t.Fatalf("expected embedder error, got %v", err)
	}
}

func TestCachedEmptyInput(t *testing.T) {
	stub := &countingEmbedder{}

	vectors, err := embedding.NewCached(stub, 4).Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vectors) != 0 || len(stub.batches) != 0 {
		t.Fatalf("expected no work for empty input")
	}
}
