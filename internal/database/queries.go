package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"ringkas/internal/metrics"
	"strings"
	"time"
)

// Run is one completed evaluation.
type Run struct {
	ID         string
	CreatedAt  time.Time
	Provider   string
	Model      string
	Reference  string
	Template   string
	DataDir    string
	SampleSize int
	Report     metrics.AggregateReport
}

// RunSummary is the headline view of a stored run.
type RunSummary struct {
	ID                  string
	CreatedAt           time.Time
	Provider            string
	Model               string
	Reference           string
	TotalItems          int
	SuccessfulSummaries int
	Headline            metrics.Headline
}

// SaveRun stores the run and its per-item rows in one transaction.
func (d *Database) SaveRun(ctx context.Context, run Run) (err error) {
	run.ID = strings.TrimSpace(run.ID)
	if run.ID == "" {
		return errors.New("run ID is empty")
	}

	reportJSON, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				d.log.ErrorContext(ctx, "Failed to roll back transaction",
					"error", rollbackErr,
					"runID", run.ID)
			}
		}
	}()

	query := `insert into runs (
		id, created_at, provider, model, reference, template, data_dir, sample_size,
		total_items, successful_summaries, rouge1, rouge2, rouge_l, bleu, semantic_f1, report_json
	) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	headline := run.Report.Summary
	if _, err = tx.ExecContext(ctx, query,
		run.ID,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
		run.Provider,
		run.Model,
		run.Reference,
		run.Template,
		run.DataDir,
		run.SampleSize,
		run.Report.TotalItems,
		run.Report.SuccessfulSummaries,
		headline.Rouge1,
		headline.Rouge2,
		headline.RougeL,
		headline.BLEU,
		headline.SemanticF1,
		string(reportJSON),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `insert into run_items (
		run_id, position, item_id, category, source, generated, reference_length,
		prediction_length, rouge1, rouge2, rouge_l, compression_ratio, word_overlap
	) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare item insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range run.Report.Items {
		if _, err = stmt.ExecContext(ctx,
			run.ID,
			i,
			item.ID,
			item.Category,
			item.Source,
			item.Generated,
			item.ReferenceLength,
			item.PredictionLength,
			item.Rouge1,
			item.Rouge2,
			item.RougeL,
			item.CompressionRatio,
			item.WordOverlap,
		); err != nil {
			return fmt.Errorf("insert item %s: %w", item.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	d.log.InfoContext(ctx, "Run is saved",
		"runID", run.ID,
		"itemCount", len(run.Report.Items))

	return nil
}

// ListRuns returns the most recent runs first.
func (d *Database) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `select id, created_at, provider, model, reference, total_items,
		successful_summaries, rouge1, rouge2, rouge_l, bleu, semantic_f1
		from runs order by created_at desc, id limit ?`

	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "ListRuns")
		}
	}()

	var runs []RunSummary
	for rows.Next() {
		var (
			r         RunSummary
			createdAt string
		)
		if err = rows.Scan(
			&r.ID,
			&createdAt,
			&r.Provider,
			&r.Model,
			&r.Reference,
			&r.TotalItems,
			&r.SuccessfulSummaries,
			&r.Headline.Rouge1,
			&r.Headline.Rouge2,
			&r.Headline.RougeL,
			&r.Headline.BLEU,
			&r.Headline.SemanticF1,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}

		runs = append(runs, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return runs, nil
}

// RunItems returns the per-item rows of a run in their original order.
func (d *Database) RunItems(ctx context.Context, runID string) ([]metrics.ItemScore, error) {
	query := `select item_id, category, source, generated, reference_length, prediction_length,
		rouge1, rouge2, rouge_l, compression_ratio, word_overlap
		from run_items where run_id = ? order by position`

	rows, err := d.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"runID", runID,
				"operation", "RunItems")
		}
	}()

	var items []metrics.ItemScore
	for rows.Next() {
		var item metrics.ItemScore
		if err = rows.Scan(
			&item.ID,
			&item.Category,
			&item.Source,
			&item.Generated,
			&item.ReferenceLength,
			&item.PredictionLength,
			&item.Rouge1,
			&item.Rouge2,
			&item.RougeL,
			&item.CompressionRatio,
			&item.WordOverlap,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return items, nil
}
