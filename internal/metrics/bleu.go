package metrics

import (
	"math"
	"regexp"
	"strings"
)

const bleuMaxOrder = 4

// BLEUResult is a corpus BLEU score on the 0-100 scale.
type BLEUResult struct {
	Score      float64               `json:"bleu"`
	Precisions [bleuMaxOrder]float64 `json:"precisions"`
	BP         float64               `json:"bp"`
	SysLen     int                   `json:"sys_len"`
	RefLen     int                   `json:"ref_len"`
	Count      int                   `json:"count"`
}

var bleuTokenRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`([{-~\[-\x60 -&(-+:-@/])`), " ${1} "},
	{regexp.MustCompile(`([^0-9])([.,])`), "${1} ${2} "},
	{regexp.MustCompile(`([.,])([^0-9])`), " ${1} ${2}"},
	{regexp.MustCompile(`([0-9])(-)`), "${1} ${2} "},
}

var bleuEntities = strings.NewReplacer(
	"&quot;", `"`,
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
)

// bleuTokens applies the mteval-v13a tokenization. Case is preserved.
func bleuTokens(line string) []string {
	line = strings.ReplaceAll(line, "<skipped>", "")
	line = strings.ReplaceAll(line, "-\n", "")
	line = strings.ReplaceAll(line, "\n", " ")
	if strings.Contains(line, "&") {
		line = bleuEntities.Replace(line)
	}

	line = " " + line + " "
	for _, rule := range bleuTokenRules {
		line = rule.re.ReplaceAllString(line, rule.repl)
	}

	return strings.Fields(line)
}

func ngramCounts(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], " ")]++
	}

	return counts
}

// CorpusBLEU scores candidates against one reference each. Pairs whose
// candidate is blank are excluded; with no pair left the score is zero.
func CorpusBLEU(references, candidates []string) BLEUResult {
	var (
		correct [bleuMaxOrder]int
		total   [bleuMaxOrder]int
		result  BLEUResult
	)

	for i := range min(len(references), len(candidates)) {
		if strings.TrimSpace(candidates[i]) == "" {
			continue
		}
		result.Count++

		hyp := bleuTokens(candidates[i])
		ref := bleuTokens(references[i])
		result.SysLen += len(hyp)
		result.RefLen += len(ref)

		for n := 1; n <= bleuMaxOrder; n++ {
			refCounts := ngramCounts(ref, n)
			for gram, count := range ngramCounts(hyp, n) {
				correct[n-1] += min(count, refCounts[gram])
				total[n-1] += count
			}
		}
	}

	if result.Count == 0 {
		return result
	}

	result.BP = 1
	if result.SysLen < result.RefLen {
		result.BP = 0
		if result.SysLen > 0 {
			result.BP = math.Exp(1 - float64(result.RefLen)/float64(result.SysLen))
		}
	}

	smooth := 1.0
	for n := range bleuMaxOrder {
		if total[n] == 0 {
			break
		}

		if correct[n] == 0 {
			smooth *= 2
			result.Precisions[n] = 100 / (smooth * float64(total[n]))
			continue
		}

		result.Precisions[n] = 100 * float64(correct[n]) / float64(total[n])
	}

	logSum := 0.0
	for _, p := range result.Precisions {
		logSum += bleuLog(p)
	}

	result.Score = result.BP * math.Exp(logSum/bleuMaxOrder)

	return result
}

func bleuLog(x float64) float64 {
	if x == 0 {
		return -9999999999
	}

	return math.Log(x)
}
