package metrics

import (
	"context"
	"log/slog"
	"strings"
)

// Item is one reference/candidate pair with its identifying metadata.
type Item struct {
	ID        string
	Category  string
	Source    string
	Reference string
	Candidate string
}

// ItemScore is one row of the per-item score table.
type ItemScore struct {
	ID               string  `json:"id"`
	Category         string  `json:"category"`
	Source           string  `json:"source"`
	Generated        bool    `json:"generated"`
	ReferenceLength  int     `json:"reference_length"`
	PredictionLength int     `json:"prediction_length"`
	Rouge1           float64 `json:"rouge1"`
	Rouge2           float64 `json:"rouge2"`
	RougeL           float64 `json:"rougeL"`
	CompressionRatio float64 `json:"compression_ratio"`
	WordOverlap      float64 `json:"word_overlap"`
}

type NGramReport struct {
	Precision Stat `json:"precision"`
	Recall    Stat `json:"recall"`
	F1        Stat `json:"f1"`
}

type RougeReport struct {
	Rouge1 NGramReport `json:"rouge1"`
	Rouge2 NGramReport `json:"rouge2"`
	RougeL NGramReport `json:"rougeL"`
}

// DescriptiveReport is computed over items with a generated summary.
type DescriptiveReport struct {
	ReferenceLength  Stat `json:"reference_length"`
	PredictionLength Stat `json:"prediction_length"`
	CompressionRatio Stat `json:"compression_ratio"`
	WordOverlap      Stat `json:"word_overlap"`
}

// Headline exposes one number per metric family.
type Headline struct {
	Rouge1     float64 `json:"rouge1"`
	Rouge2     float64 `json:"rouge2"`
	RougeL     float64 `json:"rougeL"`
	BLEU       float64 `json:"bleu"`
	SemanticF1 float64 `json:"semantic_f1"`
}

type AggregateReport struct {
	TotalItems          int               `json:"total_items"`
	SuccessfulSummaries int               `json:"successful_summaries"`
	SuccessRate         float64           `json:"success_rate"`
	Rouge               RougeReport       `json:"rouge"`
	BLEU                BLEUResult        `json:"bleu"`
	Semantic            SemanticResult    `json:"semantic"`
	Descriptive         DescriptiveReport `json:"descriptive"`
	Summary             Headline          `json:"summary"`
	Items               []ItemScore       `json:"items"`
}

// Aggregator buffers items in the order they are added and reduces them
// to an AggregateReport.
type Aggregator struct {
	semantic *SemanticScorer
	log      *slog.Logger
	items    []Item
}

func NewAggregator(semantic *SemanticScorer, log *slog.Logger) *Aggregator {
	return &Aggregator{semantic: semantic, log: log}
}

func (a *Aggregator) Add(items ...Item) {
	a.items = append(a.items, items...)
}

func (a *Aggregator) Len() int {
	return len(a.items)
}

// Report scores every buffered item. Lexical statistics cover all items,
// with failed generations scoring zero. BLEU, semantic and descriptive
// statistics cover only items with a generated summary.
func (a *Aggregator) Report(ctx context.Context) AggregateReport {
	report := AggregateReport{
		TotalItems: len(a.items),
		Items:      make([]ItemScore, 0, len(a.items)),
	}

	var (
		r1p, r1r, r1f []float64
		r2p, r2r, r2f []float64
		rlp, rlr, rlf []float64

		refLen, predLen, compression, wordOverlap []float64

		refs, cands []string
	)

	for _, item := range a.items {
		scores := Score(item.Reference, item.Candidate)
		generated := strings.TrimSpace(item.Candidate) != ""

		lex := scores.Lexical
		r1p, r1r, r1f = append(r1p, lex.Rouge1.Precision), append(r1r, lex.Rouge1.Recall), append(r1f, lex.Rouge1.F1)
		r2p, r2r, r2f = append(r2p, lex.Rouge2.Precision), append(r2r, lex.Rouge2.Recall), append(r2f, lex.Rouge2.F1)
		rlp, rlr, rlf = append(rlp, lex.RougeL.Precision), append(rlr, lex.RougeL.Recall), append(rlf, lex.RougeL.F1)

		desc := scores.Descriptive
		if generated {
			report.SuccessfulSummaries++
			refLen = append(refLen, float64(desc.ReferenceLength))
			predLen = append(predLen, float64(desc.PredictionLength))
			compression = append(compression, desc.CompressionRatio)
			wordOverlap = append(wordOverlap, desc.WordOverlap)
			refs = append(refs, item.Reference)
			cands = append(cands, item.Candidate)
		}

		report.Items = append(report.Items, ItemScore{
			ID:               item.ID,
			Category:         item.Category,
			Source:           item.Source,
			Generated:        generated,
			ReferenceLength:  desc.ReferenceLength,
			PredictionLength: desc.PredictionLength,
			Rouge1:           lex.Rouge1.F1,
			Rouge2:           lex.Rouge2.F1,
			RougeL:           lex.RougeL.F1,
			CompressionRatio: desc.CompressionRatio,
			WordOverlap:      desc.WordOverlap,
		})
	}

	report.SuccessRate = ratio(report.SuccessfulSummaries, report.TotalItems)

	report.Rouge = RougeReport{
		Rouge1: NGramReport{Precision: Summarize(r1p), Recall: Summarize(r1r), F1: Summarize(r1f)},
		Rouge2: NGramReport{Precision: Summarize(r2p), Recall: Summarize(r2r), F1: Summarize(r2f)},
		RougeL: NGramReport{Precision: Summarize(rlp), Recall: Summarize(rlr), F1: Summarize(rlf)},
	}
	report.Descriptive = DescriptiveReport{
		ReferenceLength:  Summarize(refLen),
		PredictionLength: Summarize(predLen),
		CompressionRatio: Summarize(compression),
		WordOverlap:      Summarize(wordOverlap),
	}

	report.BLEU = CorpusBLEU(refs, cands)
	report.Semantic = a.semantic.Score(ctx, refs, cands)

	report.Summary = Headline{
		Rouge1:     report.Rouge.Rouge1.F1.Mean,
		Rouge2:     report.Rouge.Rouge2.F1.Mean,
		RougeL:     report.Rouge.RougeL.F1.Mean,
		BLEU:       report.BLEU.Score,
		SemanticF1: report.Semantic.F1.Mean,
	}

	a.log.InfoContext(ctx, "Aggregate report is computed",
		"totalItems", report.TotalItems,
		"successfulSummaries", report.SuccessfulSummaries,
		"rouge1", report.Summary.Rouge1,
		"rouge2", report.Summary.Rouge2,
		"rougeL", report.Summary.RougeL,
		"bleu", report.Summary.BLEU,
		"semanticF1", report.Summary.SemanticF1)

	return report
}
