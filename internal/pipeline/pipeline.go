// Package pipeline runs one evaluation end to end: load, normalize, sample,
// generate, score, report, persist and notify.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"ringkas/internal/database"
	"ringkas/internal/dataset"
	"ringkas/internal/domain"
	"ringkas/internal/metrics"
	"ringkas/internal/report"
	"ringkas/internal/summarizer"
	"time"
)

var ErrNoGenerator = errors.New("no generator configured and no saved summaries to resume from")

type Generator interface {
	Generate(ctx context.Context, records []domain.NormalizedRecord) []summarizer.Outcome
}

type RunStore interface {
	SaveRun(ctx context.Context, run database.Run) error
}

// StoreOpener opens the run store. It is called only once scoring has
// finished, so a failed run leaves no store file behind. The returned close
// function may be nil.
type StoreOpener func(ctx context.Context) (RunStore, func() error, error)

type Notifier interface {
	NotifyRun(ctx context.Context, info report.RunInfo, r metrics.AggregateReport) error
}

type Options struct {
	DataDir    string
	OutputDir  string
	SampleSize int
	Seed       uint64
	Reference  domain.ReferenceKind
	Resume     bool
	Info       report.RunInfo

	// Config is embedded verbatim into final_report.json.
	Config any
}

// Collaborators that may be nil: Generator when only resuming, Semantic,
// OpenStore and Notifier.
type Collaborators struct {
	Generator Generator
	Semantic  *metrics.SemanticScorer
	OpenStore StoreOpener
	Notifier  Notifier
}

type Result struct {
	Records []domain.ScoredRecord
	Report  metrics.AggregateReport
	Files   []string
}

type Pipeline struct {
	opts   Options
	deps   Collaborators
	log    *slog.Logger
	now    func() time.Time
	loader *dataset.Loader
}

func New(opts Options, deps Collaborators, log *slog.Logger) *Pipeline {
	if opts.Reference == "" {
		opts.Reference = domain.ReferenceAbstractive
	}

	return &Pipeline{
		opts:   opts,
		deps:   deps,
		log:    log,
		now:    time.Now,
		loader: dataset.NewLoader(opts.DataDir, log),
	}
}

func (p *Pipeline) checkpointPath() string {
	return filepath.Join(p.opts.OutputDir, report.FileResultsSummaries)
}

// Run returns an error only for whole-run failures, which happen before
// any output file is written. Failures of single items, artifacts, the run
// store or notifications are logged and do not fail the run.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := p.now()

	info := p.opts.Info
	if info.GeneratedAt == "" {
		info.GeneratedAt = start.UTC().Format(time.RFC3339)
	}
	if info.Reference == "" {
		info.Reference = string(p.opts.Reference)
	}

	records, prewritten, err := p.scoredRecords(ctx)
	if err != nil {
		return Result{}, err
	}

	agg := metrics.NewAggregator(p.deps.Semantic, p.log)
	for _, r := range records {
		agg.Add(metrics.Item{
			ID:        r.ID,
			Category:  r.Category,
			Source:    r.Source,
			Reference: r.Reference(p.opts.Reference),
			Candidate: r.GeneratedSummary,
		})
	}

	aggregate := agg.Report(ctx)

	writer := report.NewWriter(p.opts.OutputDir, p.log)
	files, err := writer.WriteAll(ctx, report.Input{
		Info:       info,
		Config:     p.opts.Config,
		Report:     aggregate,
		Dataset:    DescribeDataset(records, p.opts.Reference),
		Prewritten: prewritten,
	})
	if err != nil {
		p.log.ErrorContext(ctx, "Some artifacts were not written",
			"error", err,
			"outputDir", p.opts.OutputDir,
			"writtenCount", len(files))
	}

	p.saveRun(ctx, info, start, aggregate)

	if p.deps.Notifier != nil {
		if err = p.deps.Notifier.NotifyRun(ctx, info, aggregate); err != nil {
			p.log.WarnContext(ctx, "Run summary notification failed",
				"error", err,
				"runID", info.RunID)
		}
	}

	p.log.InfoContext(ctx, "Run is finished",
		"runID", info.RunID,
		"totalItems", aggregate.TotalItems,
		"successfulSummaries", aggregate.SuccessfulSummaries,
		"filesCount", len(files),
		"durationSeconds", p.now().Sub(start).Seconds())

	return Result{
		Records: records,
		Report:  aggregate,
		Files:   files,
	}, nil
}

// scoredRecords resumes from a saved checkpoint when asked to, otherwise it
// loads the dataset and generates summaries. It returns the files it wrote.
func (p *Pipeline) scoredRecords(ctx context.Context) ([]domain.ScoredRecord, []string, error) {
	if p.opts.Resume {
		records, err := dataset.ReadScoredJSONL(p.checkpointPath())
		switch {
		case err == nil:
			p.log.InfoContext(ctx, "Saved summaries are reused",
				"path", p.checkpointPath(),
				"recordCount", len(records))

			return records, []string{report.FileResultsSummaries}, nil
		case errors.Is(err, os.ErrNotExist):
			p.log.WarnContext(ctx, "No saved summaries to resume from",
				"path", p.checkpointPath())
		default:
			return nil, nil, fmt.Errorf("read saved summaries: %w", err)
		}
	}

	if p.deps.Generator == nil {
		return nil, nil, ErrNoGenerator
	}

	raws, err := p.loader.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load dataset: %w", err)
	}

	normalized := dataset.NewNormalizer(p.log).NormalizeAll(ctx, raws)

	sampled := dataset.Sample(normalized, p.opts.SampleSize, p.opts.Seed)
	if len(sampled) != len(normalized) {
		p.log.InfoContext(ctx, "Dataset is sampled",
			"sampleSize", len(sampled),
			"totalArticles", len(normalized),
			"seed", p.opts.Seed)
	}

	if err = os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create output directory: %w", err)
	}

	outcomes := p.deps.Generator.Generate(ctx, sampled)
	records := summarizer.Attach(sampled, outcomes)

	if err = dataset.SaveJSONL(p.checkpointPath(), records); err != nil {
		p.log.ErrorContext(ctx, "Failed to save summaries",
			"error", err,
			"path", p.checkpointPath())

		return records, nil, nil
	}

	return records, []string{report.FileResultsSummaries}, nil
}

func (p *Pipeline) saveRun(
	ctx context.Context,
	info report.RunInfo,
	start time.Time,
	aggregate metrics.AggregateReport,
) {
	if p.deps.OpenStore == nil {
		return
	}

	store, closeStore, err := p.deps.OpenStore(ctx)
	if err != nil {
		p.log.WarnContext(ctx, "Failed to open run store so the run will not be stored",
			"error", err,
			"runID", info.RunID)

		return
	}
	if closeStore != nil {
		defer func() {
			if closeErr := closeStore(); closeErr != nil {
				p.log.ErrorContext(ctx, "Failed to close run store",
					"error", closeErr,
					"runID", info.RunID)
			}
		}()
	}

	err = store.SaveRun(ctx, database.Run{
		ID:         info.RunID,
		CreatedAt:  start,
		Provider:   info.Provider,
		Model:      info.Model,
		Reference:  info.Reference,
		Template:   info.Template,
		DataDir:    p.opts.DataDir,
		SampleSize: p.opts.SampleSize,
		Report:     aggregate,
	})
	if err != nil {
		p.log.ErrorContext(ctx, "Failed to save run",
			"error", err,
			"runID", info.RunID)

		return
	}

	p.log.InfoContext(ctx, "Run is saved",
		"runID", info.RunID)
}

// DescribeDataset summarizes the evaluated records for final_report.json.
// Lengths are word counts.
func DescribeDataset(records []domain.ScoredRecord, kind domain.ReferenceKind) report.DatasetInfo {
	info := report.DatasetInfo{TotalArticles: len(records)}
	if len(records) == 0 {
		return info
	}

	categories := make(map[string]struct{})
	sources := make(map[string]struct{})
	var textWords, summaryWords int

	for _, r := range records {
		categories[r.Category] = struct{}{}
		sources[r.Source] = struct{}{}
		textWords += metrics.WordCount(r.FullText)
		summaryWords += metrics.WordCount(r.Reference(kind))
	}

	info.Categories = len(categories)
	info.Sources = len(sources)
	info.AvgTextLength = float64(textWords) / float64(len(records))
	info.AvgSummaryLength = float64(summaryWords) / float64(len(records))

	return info
}
