package summarizer_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"ringkas/internal/domain"
	"ringkas/internal/summarizer"
	"strings"
	"sync"
	"testing"
)

var errBoom = errors.New("boom")

type echoCountingSummarizer struct {
	mu     sync.Mutex
	calls  int
	inputs []summarizer.Input
	failOn string
}

func (s *echoCountingSummarizer) Summarize(
	_ context.Context,
	input summarizer.Input,
) (string, error) {
	s.mu.Lock()
	s.calls++
	s.inputs = append(s.inputs, input)
	s.mu.Unlock()

	if s.failOn != "" && input.Text == s.failOn {
		return "", errBoom
	}

	return "ringkasan " + input.Text, nil
}

func (s *echoCountingSummarizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

func records(texts ...string) []domain.NormalizedRecord {
	out := make([]domain.NormalizedRecord, len(texts))
	for i, text := range texts {
		out[i] = domain.NormalizedRecord{ID: fmt.Sprintf("id-%d", i), FullText: text}
	}

	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestBatchGeneratePreservesOrder(t *testing.T) {
	var texts []string
	for i := range 25 {
		texts = append(texts, fmt.Sprintf("berita %d", i))
	}

	stub := &echoCountingSummarizer{}
	batch := summarizer.NewBatch(stub, summarizer.BatchConfig{Concurrency: 4}, discardLogger())

	outcomes := batch.Generate(context.Background(), records(texts...))
	if len(outcomes) != len(texts) {
		t.Fatalf("expected %d outcomes, got %d", len(texts), len(outcomes))
	}

	for i, o := range outcomes {
		if o.Err != nil {
			t.Fatalf("unexpected error at %d: %v", i, o.Err)
		}
		if want := "ringkasan " + texts[i]; o.Summary != want {
			t.Fatalf("unexpected summary at %d: got %q want %q", i, o.Summary, want)
		}
	}
}

func TestBatchGenerateIsolatesFailures(t *testing.T) {
	stub := &echoCountingSummarizer{failOn: "gagal"}
	batch := summarizer.NewBatch(stub, summarizer.BatchConfig{Concurrency: 2}, discardLogger())

	outcomes := batch.Generate(context.Background(), records("satu", "gagal", "tiga"))

	if !errors.Is(outcomes[1].Err, errBoom) || outcomes[1].Summary != "" {
		t.Fatalf("expected failed outcome, got %+v", outcomes[1])
	}

	if outcomes[0].Err != nil || outcomes[2].Err != nil {
		t.Fatalf("expected other records to succeed, got %+v", outcomes)
	}
}

func TestBatchGenerateUsesCacheForDuplicates(t *testing.T) {
	stub := &echoCountingSummarizer{}
	batch := summarizer.NewBatch(stub, summarizer.BatchConfig{Concurrency: 1}, discardLogger())

	outcomes := batch.Generate(context.Background(), records("sama", "lain", "sama"))

	if stub.callCount() != 2 {
		t.Fatalf("expected 2 summarizer calls, got %d", stub.callCount())
	}

	if outcomes[0].Summary != outcomes[2].Summary {
		t.Fatalf("expected cached summary to be reused")
	}
}

func TestBatchGenerateSkipsEmptyText(t *testing.T) {
	stub := &echoCountingSummarizer{}
	batch := summarizer.NewBatch(stub, summarizer.BatchConfig{}, discardLogger())

	outcomes := batch.Generate(context.Background(), records("  "))

	if !errors.Is(outcomes[0].Err, summarizer.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", outcomes[0].Err)
	}

	if stub.callCount() != 0 {
		t.Fatalf("expected no summarizer calls for empty text")
	}
}

func TestBatchGeneratePassesParameters(t *testing.T) {
	stub := &echoCountingSummarizer{}
	cfg := summarizer.BatchConfig{MaxNewTokens: 128, Temperature: 0.3, TopP: 0.8}

	summarizer.NewBatch(stub, cfg, discardLogger()).Generate(context.Background(), records("x"))

	in := stub.inputs[0]
	if in.MaxNewTokens != 128 || in.Temperature != 0.3 || in.TopP != 0.8 {
		t.Fatalf("unexpected input parameters: %+v", in)
	}
}

func TestAttach(t *testing.T) {
	recs := records("a", "b")
	outcomes := []summarizer.Outcome{
		{Summary: "ringkas a"},
		{Summary: "ignored", Err: errBoom},
	}

	scored := summarizer.Attach(recs, outcomes)

	if scored[0].GeneratedSummary != "ringkas a" || scored[0].GenerationError != "" {
		t.Fatalf("unexpected first record: %+v", scored[0])
	}

	if scored[1].GeneratedSummary != "" || !strings.Contains(scored[1].GenerationError, "boom") {
		t.Fatalf("unexpected failed record: %+v", scored[1])
	}
}

func TestRateLimitedDisabled(t *testing.T) {
	stub := &echoCountingSummarizer{}

	if got := summarizer.NewRateLimited(stub, 0); got != summarizer.Summarizer(stub) {
		t.Fatalf("expected summarizer to be returned unchanged")
	}
}

func TestRateLimitedHonoursContext(t *testing.T) {
	stub := &echoCountingSummarizer{}
	limited := summarizer.NewRateLimited(stub, 60)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := limited.Summarize(ctx, summarizer.Input{Text: "x"}); err == nil {
		t.Fatalf("expected error for cancelled context")
	}

	if stub.callCount() != 0 {
		t.Fatalf("expected no calls after cancellation")
	}
}
