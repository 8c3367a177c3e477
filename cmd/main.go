package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"ringkas/internal/config"
	"ringkas/internal/database"
	"ringkas/internal/dataset"
	"ringkas/internal/domain"
	"ringkas/internal/embedding"
	"ringkas/internal/metrics"
	"ringkas/internal/notifier"
	"ringkas/internal/pipeline"
	"ringkas/internal/report"
	"ringkas/internal/summarizer"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
)

const (
	envFile       = ".env"
	listRunsCmd   = "runs"
	listRunsLimit = 20
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runID string
	listRuns := len(args) > 0 && args[0] == listRunsCmd
	if listRuns {
		args = args[1:]
		if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
			runID, args = args[0], args[1:]
		}
	}

	cfg, err := config.Load(envFile, args)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).ErrorContext(ctx, "Failed to load config",
			"error", err)

		return 1
	}

	log := newLogger(cfg)
	slog.SetDefault(log)

	if listRuns {
		return printRuns(ctx, cfg, runID, log)
	}

	if err = cfg.Validate(); err != nil {
		log.ErrorContext(ctx, "Config is invalid",
			"error", err)

		return 1
	}

	if !cfg.Resume {
		if err = dataset.NewLoader(cfg.DataDir, log).CheckDir(); err != nil {
			log.ErrorContext(ctx, "Data directory is unusable",
				"error", err,
				"dataDir", cfg.DataDir)

			return 1
		}
	}

	if cfg.Device != "auto" {
		log.InfoContext(ctx, "Device hint is ignored by remote providers",
			"device", cfg.Device)
	}

	info := report.RunInfo{
		RunID:     newRunID(),
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		Reference: cfg.Reference,
		Template:  cfg.Template,
	}
	log = log.With("runID", info.RunID)

	templates, err := summarizer.LoadTemplates(cfg.PromptsPath)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load prompt templates",
			"error", err,
			"path", cfg.PromptsPath)

		return 1
	}

	var generator pipeline.Generator
	sum, closeSummarizer, err := initSummarizer(ctx, cfg, templates)
	switch {
	case err == nil:
		defer closeSummarizer()

		generator = summarizer.NewBatch(
			summarizer.NewRateLimited(sum, cfg.RequestsPerMinute),
			summarizer.BatchConfig{
				Concurrency:   cfg.Concurrency,
				MaxNewTokens:  cfg.MaxLength,
				Temperature:   cfg.Temperature,
				TopP:          cfg.TopP,
				ProgressEvery: cfg.SaveInterval,
			},
			log)

		log.InfoContext(ctx, "Summarizer is initialized",
			"provider", cfg.Provider,
			"model", cfg.Model,
			"template", cfg.Template,
			"concurrency", cfg.Concurrency,
			"requestsPerMinute", cfg.RequestsPerMinute)
	case cfg.Resume:
		log.WarnContext(ctx, "Summarizer is unavailable, only saved summaries can be scored",
			"error", err,
			"provider", cfg.Provider)
	default:
		log.ErrorContext(ctx, "Failed to initialize summarizer",
			"error", err,
			"provider", cfg.Provider,
			"model", cfg.Model)

		return 1
	}

	embedder, closeEmbedder, err := initEmbedder(ctx, cfg)
	if err != nil {
		log.WarnContext(ctx, "Failed to initialize embedder so semantic similarity is disabled",
			"error", err,
			"embeddingProvider", cfg.EmbeddingProvider)
	} else {
		defer closeEmbedder()
	}

	deps := pipeline.Collaborators{
		Generator: generator,
		Semantic:  metrics.NewSemanticScorer(embedder, log),
	}

	if dbPath := cfg.ResolvedDBPath(); dbPath != "" {
		deps.OpenStore = func(ctx context.Context) (pipeline.RunStore, func() error, error) {
			db, err := initDatabase(ctx, dbPath, log)
			if err != nil {
				return nil, nil, err
			}
			return db, db.Close, nil
		}
	}

	if cfg.NotificationsEnabled() {
		sender, senderErr := notifier.NewTelegramSender(cfg.TelegramToken)
		if senderErr != nil {
			log.WarnContext(ctx, "Failed to initialize Telegram notifier",
				"error", senderErr)
		} else {
			deps.Notifier = notifier.New(sender, cfg.TelegramChatIDs, log)
		}
	}

	p := pipeline.New(pipeline.Options{
		DataDir:    cfg.DataDir,
		OutputDir:  cfg.OutputDir,
		SampleSize: cfg.SampleSize,
		Seed:       cfg.Seed,
		Reference:  domain.ReferenceKind(cfg.Reference),
		Resume:     cfg.Resume,
		Info:       info,
		Config:     cfg,
	}, deps, log)

	result, err := p.Run(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Run failed",
			"error", err,
			"dataDir", cfg.DataDir)

		return 1
	}

	log.InfoContext(ctx, "Evaluation is complete",
		"outputDir", cfg.OutputDir,
		"files", result.Files,
		"rouge1", result.Report.Summary.Rouge1,
		"rouge2", result.Report.Summary.Rouge2,
		"rougeL", result.Report.Summary.RougeL,
		"bleu", result.Report.Summary.BLEU,
		"semanticF1", result.Report.Summary.SemanticF1)

	return 0
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	if cfg.LogFormat == "text" {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		}))
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// newRunID prefers time-ordered IDs so stored runs sort by creation.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func initSummarizer(
	ctx context.Context,
	cfg config.Config,
	templates summarizer.Templates,
) (summarizer.Summarizer, func(), error) {
	noop := func() {}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		s, err := summarizer.NewOpenAISummarizer(summarizer.OpenAIConfig{
			APIKey:       cfg.OpenAIAPIKey,
			BaseURL:      cfg.OpenAIBaseURL,
			Model:        cfg.Model,
			Template:     cfg.Template,
			Templates:    templates,
			MaxInputRune: cfg.MaxInputChars,
		})
		return s, noop, err
	case config.ProviderGemini:
		s, err := summarizer.NewGeminiSummarizer(ctx, summarizer.GeminiConfig{
			APIKey:       cfg.GeminiAPIKey,
			Model:        cfg.Model,
			Template:     cfg.Template,
			Templates:    templates,
			MaxInputRune: cfg.MaxInputChars,
		})
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.Provider)
	}
}

// initEmbedder returns a nil embedder when semantic scoring is disabled.
func initEmbedder(ctx context.Context, cfg config.Config) (embedding.Embedder, func(), error) {
	noop := func() {}

	switch cfg.EmbeddingProvider {
	case embedding.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
			return nil, noop, fmt.Errorf("%w: OPENAI_API_KEY", config.ErrMissingAPIKey)
		}
		e := embedding.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel)
		return embedding.NewCached(e, cfg.EmbeddingBatchSize), noop, nil
	case embedding.ProviderGemini:
		e, err := embedding.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
		if err != nil {
			return nil, noop, err
		}
		return embedding.NewCached(e, cfg.EmbeddingBatchSize), func() { _ = e.Close() }, nil
	default:
		return nil, noop, nil
	}
}

func initDatabase(ctx context.Context, dbPath string, log *slog.Logger) (*database.Database, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := database.New(ctx, dbPath, log)
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "DB is initialized",
		"dbPath", dbPath)

	return db, nil
}

// printRuns lists recent runs, or the per-item rows of one run when runID
// is set.
func printRuns(ctx context.Context, cfg config.Config, runID string, log *slog.Logger) int {
	dbPath := cfg.ResolvedDBPath()
	if dbPath == "" {
		log.ErrorContext(ctx, "Run store is disabled",
			"envVar", "DB_PATH")

		return 1
	}

	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		log.ErrorContext(ctx, "Run store does not exist",
			"dbPath", dbPath)

		return 1
	}

	db, err := database.New(ctx, dbPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", dbPath)

		return 1
	}
	defer db.Close()

	if runID != "" {
		items, itemsErr := db.RunItems(ctx, runID)
		if itemsErr != nil {
			log.ErrorContext(ctx, "Failed to read run items",
				"error", itemsErr,
				"runID", runID)

			return 1
		}

		for _, it := range items {
			fmt.Printf("%-24s %-16s %-20s generated=%-5t rouge1=%.4f rouge2=%.4f rougeL=%.4f compression=%.4f\n",
				it.ID, it.Category, it.Source, it.Generated,
				it.Rouge1, it.Rouge2, it.RougeL, it.CompressionRatio)
		}

		return 0
	}

	runs, err := db.ListRuns(ctx, listRunsLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list runs",
			"error", err,
			"dbPath", dbPath)

		return 1
	}

	for _, r := range runs {
		fmt.Printf("%s  %s  %-8s %-24s %-11s items=%-5s rouge1=%.4f rouge2=%.4f rougeL=%.4f bleu=%.2f\n",
			r.CreatedAt.Format(time.DateTime),
			r.ID,
			r.Provider,
			r.Model,
			r.Reference,
			strconv.Itoa(r.TotalItems),
			r.Headline.Rouge1,
			r.Headline.Rouge2,
			r.Headline.RougeL,
			r.Headline.BLEU)
	}

	return 0
}
