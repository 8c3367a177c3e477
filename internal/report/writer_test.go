package report_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"ringkas/internal/metrics"
	"ringkas/internal/report"
	"slices"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func aggregate() metrics.AggregateReport {
	agg := metrics.NewAggregator(metrics.NewSemanticScorer(nil, discardLogger()), discardLogger())
	agg.Add(
		metrics.Item{ID: "1", Category: "politik", Source: "kompas", Reference: "presiden meresmikan jalan tol", Candidate: "presiden meresmikan tol"},
		metrics.Item{ID: "2", Category: "olahraga", Source: "detik", Reference: "timnas menang dua gol", Candidate: ""},
		metrics.Item{ID: "3", Category: "politik", Source: "detik", Reference: "harga beras naik", Candidate: "harga beras naik lagi"},
	)

	return agg.Report(context.Background())
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	w := report.NewWriter(dir, discardLogger())

	written, err := w.WriteAll(context.Background(), report.Input{
		Info:       report.RunInfo{RunID: "run-1", Provider: "openai", Model: "gpt-4o-mini"},
		Config:     map[string]string{"model": "gpt-4o-mini"},
		Report:     aggregate(),
		Prewritten: []string{report.FileResultsSummaries},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{
		report.FileEvaluationResults,
		report.FileEvaluationTable,
		report.FileMetricsComparison,
		report.FileCategoryAnalysis,
		report.FileSourceAnalysis,
		report.FileLengthAnalysis,
		report.FileSummaryReport,
		report.FileSummaryReportHTML,
		report.FileFinalReport,
	} {
		if _, statErr := os.Stat(filepath.Join(dir, name)); statErr != nil {
			t.Fatalf("expected %s to exist: %v", name, statErr)
		}
		if !slices.Contains(written, name) {
			t.Fatalf("expected %s in written files %v", name, written)
		}
	}

	if !slices.Contains(written, report.FileResultsSummaries) {
		t.Fatalf("expected prewritten file to be listed")
	}
}

func TestWriteAllCSV(t *testing.T) {
	dir := t.TempDir()
	if _, err := report.NewWriter(dir, discardLogger()).WriteAll(context.Background(), report.Input{Report: aggregate()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, report.FileEvaluationTable))
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("unexpected csv error: %v", err)
	}

	if len(rows) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(rows))
	}

	want := "id,category,source,reference_length,prediction_length,rouge1,rouge2,rougeL,compression_ratio,word_overlap"
	if got := strings.Join(rows[0], ","); got != want {
		t.Fatalf("unexpected header: %s", got)
	}

	if rows[2][0] != "2" || rows[2][5] != "0" {
		t.Fatalf("expected failed row with zero rouge1, got %v", rows[2])
	}
}

func TestWriteAllFinalReport(t *testing.T) {
	dir := t.TempDir()
	dataset := report.DatasetInfo{
		TotalArticles:    3,
		Categories:       2,
		Sources:          2,
		AvgTextLength:    120.5,
		AvgSummaryLength: 30.25,
	}

	in := report.Input{Report: aggregate(), Dataset: dataset}
	if _, err := report.NewWriter(dir, discardLogger()).WriteAll(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, report.FileFinalReport))
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}

	var final report.FinalReport
	if err = json.Unmarshal(data, &final); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if final.DatasetInfo != dataset {
		t.Fatalf("expected dataset info to be written unchanged, got %+v", final.DatasetInfo)
	}

	if final.EvaluationResults.SuccessfulSummaries != 2 {
		t.Fatalf("unexpected evaluation results: %+v", final.EvaluationResults)
	}

	if !slices.Contains(final.FilesGenerated, report.FileFinalReport) {
		t.Fatalf("expected final report to list itself: %v", final.FilesGenerated)
	}
}

func TestWriteAllIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the file makes that one write fail.
	if err := os.Mkdir(filepath.Join(dir, report.FileMetricsComparison), 0o755); err != nil {
		t.Fatalf("unexpected mkdir error: %v", err)
	}

	written, err := report.NewWriter(dir, discardLogger()).WriteAll(context.Background(), report.Input{Report: aggregate()})
	if err == nil {
		t.Fatalf("expected error for blocked artifact")
	}

	if !strings.Contains(err.Error(), report.FileMetricsComparison) {
		t.Fatalf("expected error to name the artifact, got %v", err)
	}

	if slices.Contains(written, report.FileMetricsComparison) {
		t.Fatalf("expected failed artifact to be left out")
	}

	if !slices.Contains(written, report.FileSummaryReportHTML) || !slices.Contains(written, report.FileFinalReport) {
		t.Fatalf("expected other artifacts to be written, got %v", written)
	}
}
