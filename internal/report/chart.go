package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"
	"gonum.org/v1/gonum/stat"
)

const (
	barWidth   = 40
	barRune    = "█"
	histBins   = 10
	chartLabel = 24
)

type bar struct {
	label string
	value float64
}

// barChart draws horizontal bars scaled to the largest value, or to scale
// when it is positive.
func barChart(bars []bar, scale float64) string {
	if scale <= 0 {
		for _, b := range bars {
			scale = max(scale, b.value)
		}
	}

	labelWidth := 0
	for _, b := range bars {
		labelWidth = max(labelWidth, runewidth.StringWidth(b.label))
	}
	labelWidth = min(labelWidth, chartLabel)

	var sb strings.Builder
	sb.WriteString("```\n")
	for _, b := range bars {
		n := 0
		if scale > 0 && b.value > 0 {
			n = int(b.value / scale * barWidth)
			n = min(max(n, 1), barWidth)
		}

		label := runewidth.Truncate(b.label, labelWidth, "…")
		fmt.Fprintf(&sb, "%s │%s %.4f\n",
			runewidth.FillRight(label, labelWidth),
			strings.Repeat(barRune, n),
			b.value)
	}
	sb.WriteString("```\n")

	return sb.String()
}

// histogram buckets values into equal-width bins between their minimum and
// maximum.
func histogram(values []float64, bins int) []bar {
	if len(values) == 0 || bins <= 0 {
		return nil
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []bar{{label: formatRange(lo, hi), value: float64(len(sorted))}}
	}

	dividers := make([]float64, bins+1)
	step := (hi - lo) / float64(bins)
	for i := range dividers {
		dividers[i] = lo + float64(i)*step
	}
	// The last divider must exceed the maximum for it to be counted.
	dividers[bins] = hi + step*1e-9

	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]bar, len(counts))
	for i, c := range counts {
		out[i] = bar{label: formatRange(dividers[i], dividers[i]+step), value: c}
	}

	return out
}

func formatRange(lo, hi float64) string {
	return fmt.Sprintf("%.2f-%.2f", lo, hi)
}
