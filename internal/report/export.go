package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"ringkas/internal/metrics"
	"strconv"
)

var csvHeader = []string{
	"id",
	"category",
	"source",
	"reference_length",
	"prediction_length",
	"rouge1",
	"rouge2",
	"rougeL",
	"compression_ratio",
	"word_overlap",
}

func writeCSV(w io.Writer, rows []metrics.ItemScore) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.ID,
			row.Category,
			row.Source,
			strconv.Itoa(row.ReferenceLength),
			strconv.Itoa(row.PredictionLength),
			strconv.FormatFloat(row.Rouge1, 'g', -1, 64),
			strconv.FormatFloat(row.Rouge2, 'g', -1, 64),
			strconv.FormatFloat(row.RougeL, 'g', -1, 64),
			strconv.FormatFloat(row.CompressionRatio, 'g', -1, 64),
			strconv.FormatFloat(row.WordOverlap, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", row.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// marshalJSON indents and keeps non-ASCII text and markup unescaped.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
