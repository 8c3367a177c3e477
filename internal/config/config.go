// Package config reads run settings from the environment, an optional .env
// file and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"ringkas/internal/domain"
	"ringkas/internal/embedding"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/subosito/gotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-1.5-flash"

	// DBPathOff disables the run store.
	DBPathOff = "off"

	dbFileName = "runs.sqlite"
)

var (
	ErrMissingDataDir           = errors.New("data directory is required")
	ErrInvalidMaxLength         = errors.New("max length must be positive")
	ErrInvalidTemperature       = errors.New("temperature must be within [0, 2]")
	ErrInvalidTopP              = errors.New("top-p must be within (0, 1]")
	ErrInvalidSampleSize        = errors.New("sample size must not be negative")
	ErrInvalidConcurrency       = errors.New("concurrency must be positive")
	ErrUnknownProvider          = errors.New("unknown provider")
	ErrUnknownEmbeddingProvider = errors.New("unknown embedding provider")
	ErrUnknownReference         = errors.New("unknown reference kind")
	ErrUnknownDevice            = errors.New("unknown device")
	ErrUnknownLogLevel          = errors.New("unknown log level")
	ErrUnknownLogFormat         = errors.New("unknown log format")
	ErrMissingAPIKey            = errors.New("api key is required")
)

var (
	devices    = []string{"auto", "cpu", "cuda", "mps"}
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// Config is also written into final_report.json, so secrets are excluded
// from JSON.
type Config struct {
	DataDir     string  `env:"DATA_DIR"        envDefault:"data/indosum" json:"data_dir"`
	Provider    string  `env:"PROVIDER"        envDefault:"openai"       json:"provider"`
	Model       string  `env:"MODEL"                                     json:"model"`
	Device      string  `env:"DEVICE"          envDefault:"auto"         json:"device"`
	MaxLength   int     `env:"MAX_LENGTH"      envDefault:"256"          json:"max_length"`
	Temperature float64 `env:"TEMPERATURE"     envDefault:"0.7"          json:"temperature"`
	TopP        float64 `env:"TOP_P"           envDefault:"0.9"          json:"top_p"`
	SampleSize  int     `env:"SAMPLE_SIZE"     envDefault:"0"            json:"sample_size"`
	Seed        uint64  `env:"SEED"            envDefault:"42"           json:"seed"`
	OutputDir   string  `env:"OUTPUT_DIR"      envDefault:"results"      json:"output_dir"`
	Reference   string  `env:"REFERENCE"       envDefault:"abstractive"  json:"reference"`
	Template    string  `env:"PROMPT_TEMPLATE" envDefault:"default"      json:"template"`
	PromptsPath string  `env:"PROMPTS_PATH"                              json:"prompts_path,omitempty"`
	Resume      bool    `env:"RESUME"                                    json:"resume"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"  json:"-"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" json:"openai_base_url,omitempty"`
	GeminiAPIKey  string `env:"GEMINI_API_KEY"  json:"-"`

	Concurrency       int `env:"GENERATION_CONCURRENCY" envDefault:"1"    json:"concurrency"`
	RequestsPerMinute int `env:"REQUESTS_PER_MINUTE"    envDefault:"0"    json:"requests_per_minute"`
	SaveInterval      int `env:"SAVE_INTERVAL"          envDefault:"10"   json:"save_interval"`
	MaxInputChars     int `env:"MAX_INPUT_CHARS"        envDefault:"2000" json:"max_input_chars"`

	EmbeddingProvider  string `env:"EMBEDDING_PROVIDER"   envDefault:"none" json:"embedding_provider"`
	EmbeddingModel     string `env:"EMBEDDING_MODEL"                        json:"embedding_model,omitempty"`
	EmbeddingBatchSize int    `env:"EMBEDDING_BATCH_SIZE" envDefault:"16"   json:"embedding_batch_size"`

	DBPath string `env:"DB_PATH" json:"db_path,omitempty"`

	TelegramToken   string  `env:"TELEGRAM_TOKEN"    json:"-"`
	TelegramChatIDs []int64 `env:"TELEGRAM_CHAT_IDS" json:"-"`

	LogFormat string `env:"LOG_FORMAT" envDefault:"json" json:"-"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info" json:"-"`
}

// Load reads envFile when it exists, parses the environment and applies
// flag overrides from args. The result is not validated.
func Load(envFile string, args []string) (Config, error) {
	if envFile != "" {
		if err := gotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.parseFlags(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) parseFlags(args []string) error {
	flags := flag.NewFlagSet("ringkas", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	flags.StringVar(&c.DataDir, "data-dir", c.DataDir, "directory with train.*.jsonl shards")
	flags.StringVar(&c.Provider, "provider", c.Provider, "summarizer provider: openai or gemini")
	flags.StringVar(&c.Model, "model", c.Model, "model identifier")
	flags.StringVar(&c.Device, "device", c.Device, "device hint: auto, cpu, cuda or mps")
	flags.IntVar(&c.MaxLength, "max-length", c.MaxLength, "maximum generated tokens")
	flags.Float64Var(&c.Temperature, "temperature", c.Temperature, "sampling temperature")
	flags.Float64Var(&c.TopP, "top-p", c.TopP, "nucleus sampling probability")
	flags.IntVar(&c.SampleSize, "sample-size", c.SampleSize, "number of articles to evaluate, 0 for all")
	flags.Uint64Var(&c.Seed, "seed", c.Seed, "sampling seed")
	flags.StringVar(&c.OutputDir, "output-dir", c.OutputDir, "directory for reports")
	flags.StringVar(&c.Reference, "reference", c.Reference, "reference summary: abstractive or extractive")
	flags.StringVar(&c.Template, "template", c.Template, "prompt template name")
	flags.IntVar(&c.Concurrency, "concurrency", c.Concurrency, "parallel generation requests")
	flags.BoolVar(&c.Resume, "resume", c.Resume, "reuse summaries saved in the output directory")

	return flags.Parse(args)
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		switch c.Provider {
		case ProviderOpenAI:
			c.Model = DefaultOpenAIModel
		case ProviderGemini:
			c.Model = DefaultGeminiModel
		}
	}

	if c.EmbeddingModel == "" {
		switch c.EmbeddingProvider {
		case embedding.ProviderOpenAI:
			c.EmbeddingModel = embedding.DefaultOpenAIModel
		case embedding.ProviderGemini:
			c.EmbeddingModel = embedding.DefaultGeminiModel
		}
	}

	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

// Validate checks every setting that can be checked without touching the
// network or the filesystem.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, ErrMissingDataDir)
	}
	if c.MaxLength <= 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidMaxLength, c.MaxLength))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidTemperature, c.Temperature))
	}
	if c.TopP <= 0 || c.TopP > 1 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidTopP, c.TopP))
	}
	if c.SampleSize < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidSampleSize, c.SampleSize))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidConcurrency, c.Concurrency))
	}
	if !slices.Contains(devices, c.Device) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownDevice, c.Device))
	}
	if !domain.ReferenceKind(c.Reference).Valid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownReference, c.Reference))
	}
	if !slices.Contains(logLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownLogLevel, c.LogLevel))
	}
	if !slices.Contains(logFormats, c.LogFormat) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownLogFormat, c.LogFormat))
	}

	switch c.Provider {
	case ProviderOpenAI:
		// OpenAI-compatible servers often run without a key.
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" && !c.Resume {
			errs = append(errs, fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingAPIKey))
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" && !c.Resume {
			errs = append(errs, fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingAPIKey))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider))
	}

	switch c.EmbeddingProvider {
	case embedding.ProviderNone, embedding.ProviderOpenAI, embedding.ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownEmbeddingProvider, c.EmbeddingProvider))
	}

	return errors.Join(errs...)
}

// ResolvedDBPath returns the run store location, or "" when it is disabled.
func (c Config) ResolvedDBPath() string {
	switch strings.TrimSpace(c.DBPath) {
	case DBPathOff:
		return ""
	case "":
		return filepath.Join(c.OutputDir, dbFileName)
	default:
		return c.DBPath
	}
}

// NotificationsEnabled reports whether Telegram settings are complete.
func (c Config) NotificationsEnabled() bool {
	return c.TelegramToken != "" && len(c.TelegramChatIDs) > 0
}
