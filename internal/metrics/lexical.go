package metrics

import "strings"

// PRF is a precision/recall/F1 triple.
type PRF struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

type LexicalScore struct {
	Rouge1 PRF `json:"rouge1"`
	Rouge2 PRF `json:"rouge2"`
	RougeL PRF `json:"rougeL"`
}

// Lexical computes ROUGE-1 and ROUGE-2 over n-gram sets, so repeated words
// and phrases count once, and ROUGE-L over the longest common subsequence
// of the token sequences. An empty candidate scores zero everywhere.
func Lexical(reference, candidate string) LexicalScore {
	if strings.TrimSpace(candidate) == "" {
		return LexicalScore{}
	}

	ref := Tokens(reference)
	cand := Tokens(candidate)

	return LexicalScore{
		Rouge1: ngramPRF(ref, cand, 1),
		Rouge2: ngramPRF(ref, cand, 2),
		RougeL: lcsPRF(ref, cand),
	}
}

func ngramPRF(ref, cand []string, n int) PRF {
	refSet := ngramSet(ref, n)
	candSet := ngramSet(cand, n)
	common := overlap(refSet, candSet)

	p := ratio(common, len(candSet))
	r := ratio(common, len(refSet))

	return PRF{Precision: p, Recall: r, F1: f1(p, r)}
}

func lcsPRF(ref, cand []string) PRF {
	l := lcsLength(ref, cand)

	p := ratio(l, len(cand))
	r := ratio(l, len(ref))

	return PRF{Precision: p, Recall: r, F1: f1(p, r)}
}

func lcsLength(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
