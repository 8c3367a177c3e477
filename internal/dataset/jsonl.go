package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"ringkas/internal/domain"
)

// WriteJSONL encodes one value per line. HTML escaping is disabled so
// non-ASCII text and markup characters stay readable.
func WriteJSONL[T any](w io.Writer, values []T) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for i := range values {
		if err := enc.Encode(values[i]); err != nil {
			return fmt.Errorf("encode line %d: %w", i+1, err)
		}
	}

	return nil
}

// SaveJSONL writes values to path, creating parent directories.
func SaveJSONL[T any](path string, values []T) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close file: %w", closeErr)
		}
	}()

	w := bufio.NewWriter(f)
	if err = WriteJSONL(w, values); err != nil {
		return err
	}

	return w.Flush()
}

// ReadScoredJSONL reads a previously saved results_with_summaries.jsonl.
func ReadScoredJSONL(path string) ([]domain.ScoredRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return ReadJSONL[domain.ScoredRecord](f)
}
