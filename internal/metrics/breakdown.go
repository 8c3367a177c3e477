package metrics

import (
	"cmp"
	"slices"
)

// Group holds the per-item statistics of one category or source.
type Group struct {
	Key              string `json:"key"`
	Count            int    `json:"count"`
	Generated        int    `json:"generated"`
	Rouge1           Stat   `json:"rouge1"`
	Rouge2           Stat   `json:"rouge2"`
	RougeL           Stat   `json:"rougeL"`
	CompressionRatio Stat   `json:"compression_ratio"`
	PredictionLength Stat   `json:"prediction_length"`
}

func ByCategory(row ItemScore) string { return row.Category }

func BySource(row ItemScore) string { return row.Source }

// BreakdownBy groups rows by key and returns the groups sorted by key.
func BreakdownBy(rows []ItemScore, key func(ItemScore) string) []Group {
	grouped := make(map[string][]ItemScore)
	for _, row := range rows {
		k := key(row)
		grouped[k] = append(grouped[k], row)
	}

	groups := make([]Group, 0, len(grouped))
	for k, members := range grouped {
		var r1, r2, rl, compression, predLen []float64
		generated := 0

		for _, m := range members {
			r1 = append(r1, m.Rouge1)
			r2 = append(r2, m.Rouge2)
			rl = append(rl, m.RougeL)
			if m.Generated {
				generated++
				compression = append(compression, m.CompressionRatio)
				predLen = append(predLen, float64(m.PredictionLength))
			}
		}

		groups = append(groups, Group{
			Key:              k,
			Count:            len(members),
			Generated:        generated,
			Rouge1:           Summarize(r1),
			Rouge2:           Summarize(r2),
			RougeL:           Summarize(rl),
			CompressionRatio: Summarize(compression),
			PredictionLength: Summarize(predLen),
		})
	}

	slices.SortFunc(groups, func(a, b Group) int {
		return cmp.Compare(a.Key, b.Key)
	})

	return groups
}
