package metrics

type DescriptiveScore struct {
	ReferenceLength  int     `json:"reference_length"`
	PredictionLength int     `json:"prediction_length"`
	CompressionRatio float64 `json:"compression_ratio"`
	WordOverlap      float64 `json:"word_overlap"`
}

// Descriptive computes word-count statistics. CompressionRatio is candidate
// words over reference words; WordOverlap is the share of distinct folded
// reference words that also occur in the candidate. Both are zero when the
// reference has no words.
func Descriptive(reference, candidate string) DescriptiveScore {
	refWords := WordCount(reference)
	candWords := WordCount(candidate)

	refSet := ngramSet(Tokens(reference), 1)
	candSet := ngramSet(Tokens(candidate), 1)

	return DescriptiveScore{
		ReferenceLength:  refWords,
		PredictionLength: candWords,
		CompressionRatio: ratio(candWords, refWords),
		WordOverlap:      ratio(overlap(refSet, candSet), len(refSet)),
	}
}
