// Package report renders an evaluation run into markdown, HTML, JSON and
// CSV artifacts.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"ringkas/internal/metrics"
)

const (
	FileEvaluationResults = "evaluation_results.json"
	FileResultsSummaries  = "results_with_summaries.jsonl"
	FileEvaluationTable   = "evaluation_dataframe.csv"
	FileMetricsComparison = "metrics_comparison.md"
	FileCategoryAnalysis  = "category_analysis.md"
	FileSourceAnalysis    = "source_analysis.md"
	FileLengthAnalysis    = "length_analysis.md"
	FileSummaryReport     = "summary_report.md"
	FileSummaryReportHTML = "summary_report.html"
	FileFinalReport       = "final_report.json"
)

type DatasetInfo struct {
	TotalArticles    int     `json:"total_articles"`
	Categories       int     `json:"categories"`
	Sources          int     `json:"sources"`
	AvgTextLength    float64 `json:"avg_text_length"`
	AvgSummaryLength float64 `json:"avg_summary_length"`
}

type FinalReport struct {
	Config            any                     `json:"config"`
	DatasetInfo       DatasetInfo             `json:"dataset_info"`
	EvaluationResults metrics.AggregateReport `json:"evaluation_results"`
	FilesGenerated    []string                `json:"files_generated"`
}

type Input struct {
	Info   RunInfo
	Config any
	Report metrics.AggregateReport

	// Dataset describes the evaluated articles and is written as is.
	Dataset DatasetInfo

	// Prewritten lists files the caller already placed in the output
	// directory, such as the generation checkpoint.
	Prewritten []string
}

type Writer struct {
	dir string
	log *slog.Logger
}

func NewWriter(dir string, log *slog.Logger) *Writer {
	return &Writer{dir: dir, log: log}
}

func (w *Writer) Dir() string {
	return w.dir
}

type artifact struct {
	name   string
	render func() ([]byte, error)
}

// WriteAll writes every artifact. A failing artifact is logged and skipped;
// the others are still written. The returned names are the files that were
// written, and the error joins every failure.
func (w *Writer) WriteAll(ctx context.Context, in Input) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	byCategory := metrics.BreakdownBy(in.Report.Items, metrics.ByCategory)
	bySource := metrics.BreakdownBy(in.Report.Items, metrics.BySource)
	summaryMarkdown := summaryReport(in.Report, in.Info, byCategory, bySource)

	artifacts := []artifact{
		{FileEvaluationResults, func() ([]byte, error) {
			return marshalJSON(in.Report)
		}},
		{FileEvaluationTable, func() ([]byte, error) {
			var buf bytes.Buffer
			err := writeCSV(&buf, in.Report.Items)
			return buf.Bytes(), err
		}},
		{FileMetricsComparison, func() ([]byte, error) {
			return []byte(metricsComparison(in.Report)), nil
		}},
		{FileCategoryAnalysis, func() ([]byte, error) {
			return []byte(groupAnalysis("Category analysis", "Category", byCategory)), nil
		}},
		{FileSourceAnalysis, func() ([]byte, error) {
			return []byte(groupAnalysis("Source analysis", "Source", bySource)), nil
		}},
		{FileLengthAnalysis, func() ([]byte, error) {
			return []byte(lengthAnalysis(in.Report)), nil
		}},
		{FileSummaryReport, func() ([]byte, error) {
			return []byte(summaryMarkdown), nil
		}},
		{FileSummaryReportHTML, func() ([]byte, error) {
			return renderHTML("Summarization evaluation report", summaryMarkdown), nil
		}},
	}

	written := append([]string(nil), in.Prewritten...)
	var errs []error

	for _, a := range artifacts {
		if err := w.write(a); err != nil {
			w.log.ErrorContext(ctx, "Failed to write artifact",
				"file", a.name,
				"error", err)
			errs = append(errs, fmt.Errorf("write %s: %w", a.name, err))
			continue
		}
		written = append(written, a.name)
	}

	final := FinalReport{
		Config:            in.Config,
		DatasetInfo:       in.Dataset,
		EvaluationResults: in.Report,
		FilesGenerated:    append(append([]string(nil), written...), FileFinalReport),
	}
	if err := w.write(artifact{FileFinalReport, func() ([]byte, error) {
		return marshalJSON(final)
	}}); err != nil {
		w.log.ErrorContext(ctx, "Failed to write artifact",
			"file", FileFinalReport,
			"error", err)
		errs = append(errs, fmt.Errorf("write %s: %w", FileFinalReport, err))
	} else {
		written = append(written, FileFinalReport)
	}

	w.log.InfoContext(ctx, "Report artifacts are written",
		"outputDir", w.dir,
		"files", written,
		"failures", len(errs))

	return written, errors.Join(errs...)
}

func (w *Writer) write(a artifact) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()

	data, err := a.render()
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(w.dir, a.name), data, 0o644)
}
