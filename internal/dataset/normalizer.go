// Package dataset loads news shards and turns the nested
// paragraph/sentence/token records into flat text records.
package dataset

import (
	"context"
	"log/slog"
	"ringkas/internal/domain"
	"strings"
)

const paragraphSeparator = "\n\n"

// Flatten joins tokens and sentences with single spaces and paragraphs with
// a blank line. The result is trimmed.
func Flatten(doc domain.Document) string {
	paragraphs := make([]string, 0, len(doc))
	for _, p := range doc.Paragraphs() {
		paragraphs = append(paragraphs, p.Text())
	}

	return strings.TrimSpace(strings.Join(paragraphs, paragraphSeparator))
}

// ExtractGoldSummary returns the label-selected sentences joined with single
// spaces, without paragraph separators.
func ExtractGoldSummary(doc domain.Document, labels domain.Labels) string {
	summary, _ := ExtractGoldSummaryWithReport(doc, labels)
	return summary
}

// ExtractGoldSummaryWithReport is ExtractGoldSummary that also returns the
// indices of paragraphs whose label row does not match their sentence count.
// Those paragraphs contribute nothing: the row is not zipped against the
// sentences, so no aligned prefix is kept. Paragraphs beyond the shorter of
// doc and labels are dropped silently.
func ExtractGoldSummaryWithReport(doc domain.Document, labels domain.Labels) (string, []int) {
	var (
		selected   []string
		mismatched []int
	)

	n := min(len(doc), len(labels))
	for i := range n {
		paragraph := doc[i]
		row := labels[i]

		if len(paragraph) != len(row) {
			mismatched = append(mismatched, i)
			continue
		}

		for j, sentence := range paragraph.Sentences() {
			if row[j] {
				selected = append(selected, sentence.Text())
			}
		}
	}

	return strings.Join(selected, " "), mismatched
}

// Normalize flattens a raw article into a NormalizedRecord.
func Normalize(raw domain.RawArticle) domain.NormalizedRecord {
	record, _ := normalize(raw)
	return record
}

func normalize(raw domain.RawArticle) (domain.NormalizedRecord, []int) {
	gold, mismatched := ExtractGoldSummaryWithReport(raw.Paragraphs, raw.GoldLabels)

	return domain.NormalizedRecord{
		ID:              raw.ID,
		Category:        raw.Category,
		Source:          raw.Source,
		SourceURL:       raw.SourceURL,
		FullText:        Flatten(raw.Paragraphs),
		GoldSummary:     gold,
		OriginalSummary: Flatten(raw.Summary),
	}, mismatched
}

type Normalizer struct {
	log *slog.Logger
}

func NewNormalizer(log *slog.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// NormalizeAll normalizes every record in order and logs label rows that
// had to be ignored.
func (n *Normalizer) NormalizeAll(
	ctx context.Context,
	raws []domain.RawArticle,
) []domain.NormalizedRecord {
	records := make([]domain.NormalizedRecord, 0, len(raws))
	mismatchedArticles := 0

	for _, raw := range raws {
		record, mismatched := normalize(raw)
		if len(mismatched) > 0 || len(raw.Paragraphs) != len(raw.GoldLabels) {
			mismatchedArticles++
			n.log.DebugContext(ctx, "Gold labels are misaligned",
				"id", raw.ID,
				"paragraphCount", len(raw.Paragraphs),
				"labelRowCount", len(raw.GoldLabels),
				"ignoredParagraphs", mismatched)
		}

		records = append(records, record)
	}

	if mismatchedArticles > 0 {
		n.log.WarnContext(ctx, "Some articles have misaligned gold labels",
			"articleCount", mismatchedArticles,
			"totalArticles", len(raws))
	}

	return records
}
