package summarizer

import (
	"context"
	"log/slog"
	"ringkas/internal/domain"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	defaultConcurrency   = 1
	defaultProgressEvery = 10
)

type BatchConfig struct {
	Concurrency   int
	MaxNewTokens  int
	Temperature   float64
	TopP          float64
	ProgressEvery int
	CacheSize     int
}

// Outcome is the result for one record. A failed generation has an empty
// Summary and a non-nil Err.
type Outcome struct {
	Summary string
	Err     error
}

// Batch generates summaries for many records with a fixed worker pool.
type Batch struct {
	summarizer Summarizer
	cfg        BatchConfig
	cache      *summaryCache
	log        *slog.Logger
}

func NewBatch(s Summarizer, cfg BatchConfig, log *slog.Logger) *Batch {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = defaultProgressEvery
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = summaryCacheMaxEntries
	}

	return &Batch{
		summarizer: s,
		cfg:        cfg,
		cache:      newSummaryCache(cfg.CacheSize),
		log:        log,
	}
}

// Generate returns one Outcome per record, in record order. A failure on one
// record never stops the others.
func (b *Batch) Generate(
	ctx context.Context,
	records []domain.NormalizedRecord,
) []Outcome {
	outcomes := make([]Outcome, len(records))
	if len(records) == 0 {
		return outcomes
	}

	workerCount := min(b.cfg.Concurrency, len(records))

	type task struct {
		resultIndex int
		record      domain.NormalizedRecord
	}

	tasks := make(chan task)
	var (
		wg       sync.WaitGroup
		done     atomic.Int64
		failures atomic.Int64
	)

	for range workerCount {
		wg.Go(func() {
			for t := range tasks {
				outcome := b.generateOne(ctx, t.record)
				outcomes[t.resultIndex] = outcome

				if outcome.Err != nil {
					failures.Add(1)
				}

				if n := done.Add(1); n%int64(b.cfg.ProgressEvery) == 0 || n == int64(len(records)) {
					b.log.InfoContext(ctx, "Generation progress",
						"done", n,
						"total", len(records),
						"failures", failures.Load())
				}
			}
		})
	}

	for i := range records {
		tasks <- task{
			resultIndex: i,
			record:      records[i],
		}
	}

	close(tasks)
	wg.Wait()

	return outcomes
}

func (b *Batch) generateOne(ctx context.Context, record domain.NormalizedRecord) Outcome {
	text := strings.TrimSpace(record.FullText)
	if text == "" {
		b.log.WarnContext(ctx, "Article text is empty", "id", record.ID)
		return Outcome{Err: ErrEmptyInput}
	}

	cacheKey := summaryCacheKey(text)
	if summary, ok := b.cache.get(cacheKey); ok {
		return Outcome{Summary: summary}
	}

	if err := ctx.Err(); err != nil {
		return Outcome{Err: err}
	}

	summary, err := b.summarizer.Summarize(ctx, Input{
		Text:         text,
		SourceURL:    record.SourceURL,
		MaxNewTokens: b.cfg.MaxNewTokens,
		Temperature:  b.cfg.Temperature,
		TopP:         b.cfg.TopP,
	})
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to generate summary",
			"id", record.ID,
			"error", err)
		return Outcome{Err: err}
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		b.log.WarnContext(ctx, "Generated summary is empty", "id", record.ID)
		return Outcome{Err: ErrEmptyOutput}
	}

	b.cache.set(cacheKey, summary)

	return Outcome{Summary: summary}
}

// Attach pairs records with their outcomes. Failed outcomes keep an empty
// generated summary and carry the error text.
func Attach(records []domain.NormalizedRecord, outcomes []Outcome) []domain.ScoredRecord {
	scored := make([]domain.ScoredRecord, len(records))
	for i, record := range records {
		scored[i].NormalizedRecord = record
		if i >= len(outcomes) {
			continue
		}

		scored[i].GeneratedSummary = outcomes[i].Summary
		if outcomes[i].Err != nil {
			scored[i].GeneratedSummary = ""
			scored[i].GenerationError = outcomes[i].Err.Error()
		}
	}

	return scored
}
