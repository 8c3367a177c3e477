package metrics

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Stat summarises a sample. Std is the population standard deviation.
type Stat struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Count  int     `json:"count"`
}

// Summarize reduces values to a Stat. Values are sorted first so the result
// does not depend on their order, down to the last floating-point bit.
func Summarize(values []float64) Stat {
	if len(values) == 0 {
		return Stat{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)

	return Stat{
		Mean:   mean,
		Std:    std,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Count:  len(sorted),
	}
}
