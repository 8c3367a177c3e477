package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"ringkas/internal/embedding"
	"strings"
)

var sentenceBoundaryRe = regexp.MustCompile(`([.!?]+)\s+|\n+`)

// SemanticResult holds embedding-similarity scores averaged over items.
type SemanticResult struct {
	Available bool   `json:"available"`
	Precision Stat   `json:"precision"`
	Recall    Stat   `json:"recall"`
	F1        Stat   `json:"f1"`
	Count     int    `json:"count"`
	Error     string `json:"error,omitempty"`
	Scores    []PRF  `json:"-"`
}

// SemanticScorer compares sentences by the cosine similarity of their
// embeddings. Each candidate sentence is matched to its closest reference
// sentence for precision and vice versa for recall.
type SemanticScorer struct {
	embedder embedding.Embedder
	log      *slog.Logger
}

// NewSemanticScorer returns a scorer. A nil embedder disables semantic
// scoring and every result is zero.
func NewSemanticScorer(embedder embedding.Embedder, log *slog.Logger) *SemanticScorer {
	return &SemanticScorer{embedder: embedder, log: log}
}

// Score evaluates pairs whose candidate is not blank. Any embedding failure
// yields an all-zero result.
func (s *SemanticScorer) Score(ctx context.Context, references, candidates []string) SemanticResult {
	if s == nil || s.embedder == nil {
		return SemanticResult{}
	}

	type pair struct{ ref, cand []string }

	var (
		pairs []pair
		texts []string
		seen  = make(map[string]struct{})
	)

	add := func(sentences []string) {
		for _, sentence := range sentences {
			if _, ok := seen[sentence]; !ok {
				seen[sentence] = struct{}{}
				texts = append(texts, sentence)
			}
		}
	}

	for i := range min(len(references), len(candidates)) {
		if strings.TrimSpace(candidates[i]) == "" {
			continue
		}

		p := pair{ref: splitSentences(references[i]), cand: splitSentences(candidates[i])}
		add(p.ref)
		add(p.cand)
		pairs = append(pairs, p)
	}

	if len(pairs) == 0 {
		return SemanticResult{Available: true}
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err == nil && len(vectors) != len(texts) {
		err = fmt.Errorf("%w: got %d, want %d", embedding.ErrCountMismatch, len(vectors), len(texts))
	}
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to compute semantic similarity", "error", err)
		return SemanticResult{Available: true, Error: err.Error()}
	}

	index := make(map[string][]float64, len(texts))
	for i, text := range texts {
		index[text] = vectors[i]
	}

	lookup := func(sentences []string) [][]float64 {
		out := make([][]float64, len(sentences))
		for i, sentence := range sentences {
			out[i] = index[sentence]
		}
		return out
	}

	result := SemanticResult{Available: true, Count: len(pairs)}
	precisions := make([]float64, 0, len(pairs))
	recalls := make([]float64, 0, len(pairs))
	f1s := make([]float64, 0, len(pairs))

	for _, p := range pairs {
		refVecs := lookup(p.ref)
		candVecs := lookup(p.cand)

		precision := greedyMatch(candVecs, refVecs)
		recall := greedyMatch(refVecs, candVecs)
		score := PRF{Precision: precision, Recall: recall, F1: f1(precision, recall)}

		result.Scores = append(result.Scores, score)
		precisions = append(precisions, score.Precision)
		recalls = append(recalls, score.Recall)
		f1s = append(f1s, score.F1)
	}

	result.Precision = Summarize(precisions)
	result.Recall = Summarize(recalls)
	result.F1 = Summarize(f1s)

	return result
}

// greedyMatch averages, over from, the best cosine similarity in to.
func greedyMatch(from, to [][]float64) float64 {
	if len(from) == 0 || len(to) == 0 {
		return 0
	}

	sum := 0.0
	for _, a := range from {
		best := 0.0
		for _, b := range to {
			best = max(best, cosine(a, b))
		}
		sum += best
	}

	return sum / float64(len(from))
}

func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}

	if na == 0 || nb == 0 {
		return 0
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func splitSentences(text string) []string {
	marked := sentenceBoundaryRe.ReplaceAllString(strings.TrimSpace(text), "${1}\x00")

	var sentences []string
	for _, part := range strings.Split(marked, "\x00") {
		if part = strings.TrimSpace(part); part != "" {
			sentences = append(sentences, part)
		}
	}

	return sentences
}
