package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"ringkas/internal/domain"
	"slices"
	"strings"
)

const (
	DefaultShardPrefix = "train."
	DefaultShardSuffix = ".jsonl"
)

var (
	ErrDirNotFound = errors.New("data directory not found")
	ErrNotADir     = errors.New("data path is not a directory")
)

// Loader reads newline-delimited JSON shards named <Prefix>NN<Suffix>.
type Loader struct {
	dir    string
	prefix string
	suffix string
	log    *slog.Logger
}

func NewLoader(dir string, log *slog.Logger) *Loader {
	return &Loader{
		dir:    dir,
		prefix: DefaultShardPrefix,
		suffix: DefaultShardSuffix,
		log:    log,
	}
}

// WithPattern overrides the shard naming convention.
func (l *Loader) WithPattern(prefix, suffix string) *Loader {
	l.prefix = prefix
	l.suffix = suffix
	return l
}

// CheckDir reports ErrDirNotFound or ErrNotADir for an unusable data
// directory.
func (l *Loader) CheckDir() error {
	info, err := os.Stat(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDirNotFound, l.dir)
		}
		return fmt.Errorf("stat data directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADir, l.dir)
	}

	return nil
}

// ShardFiles returns the matching shard names sorted lexicographically.
func (l *Loader) ShardFiles() ([]string, error) {
	if err := l.CheckDir(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, l.prefix) && strings.HasSuffix(name, l.suffix) {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names, nil
}

// Load reads every shard in file order, preserving the record order inside
// each file. A line that is not valid JSON aborts the whole load.
func (l *Loader) Load(ctx context.Context) ([]domain.RawArticle, error) {
	names, err := l.ShardFiles()
	if err != nil {
		return nil, err
	}

	l.log.InfoContext(ctx, "Shards are discovered",
		"dataDir", l.dir,
		"shardCount", len(names),
		"shards", names)

	var articles []domain.RawArticle
	for _, name := range names {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		shard, loadErr := LoadFile(filepath.Join(l.dir, name))
		if loadErr != nil {
			return nil, fmt.Errorf("load shard %s: %w", name, loadErr)
		}

		l.log.DebugContext(ctx, "Shard is loaded",
			"shard", name,
			"articleCount", len(shard))

		articles = append(articles, shard...)
	}

	l.log.InfoContext(ctx, "Dataset is loaded",
		"dataDir", l.dir,
		"articleCount", len(articles))

	return articles, nil
}

// LoadFile reads one JSONL file of raw articles.
func LoadFile(path string) ([]domain.RawArticle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return ReadJSONL[domain.RawArticle](f)
}

// ReadJSONL decodes one value per non-blank line.
func ReadJSONL[T any](r io.Reader) ([]T, error) {
	reader := bufio.NewReader(r)

	var (
		values []T
		lineNo int
	)

	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			lineNo++

			trimmed := bytes.TrimSpace(line)
			if len(trimmed) > 0 {
				var v T
				if decodeErr := json.Unmarshal(trimmed, &v); decodeErr != nil {
					return nil, fmt.Errorf("decode line %d: %w", lineNo, decodeErr)
				}
				values = append(values, v)
			}
		}

		if errors.Is(err, io.EOF) {
			return values, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", lineNo+1, err)
		}
	}
}
