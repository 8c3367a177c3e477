package metrics

// MetricSet holds every per-item score.
type MetricSet struct {
	Lexical     LexicalScore     `json:"lexical"`
	Descriptive DescriptiveScore `json:"descriptive"`
}

func Score(reference, candidate string) MetricSet {
	return MetricSet{
		Lexical:     Lexical(reference, candidate),
		Descriptive: Descriptive(reference, candidate),
	}
}
