// Package metrics scores candidate summaries against references and
// reduces per-item scores to corpus-level reports.
package metrics

import (
	"strings"

	"golang.org/x/text/cases"
)

// Tokens splits text on whitespace after Unicode case folding.
func Tokens(text string) []string {
	// A Caser keeps state between calls and must not be shared.
	return strings.Fields(cases.Fold().String(text))
}

// WordCount counts whitespace-separated words without folding.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func ngramSet(tokens []string, n int) map[string]struct{} {
	set := make(map[string]struct{})
	for i := 0; i+n <= len(tokens); i++ {
		set[strings.Join(tokens[i:i+n], " ")] = struct{}{}
	}

	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}

	count := 0
	for k := range a {
		if _, ok := b[k]; ok {
			count++
		}
	}

	return count
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}

	return float64(num) / float64(den)
}

func f1(p, r float64) float64 {
	if p+r <= 0 {
		return 0
	}

	return 2 * p * r / (p + r)
}
