package dataset

import (
	"math/rand/v2"
	"slices"
)

const DefaultSampleSeed = 42

// Sample picks n items with a seeded generator and returns them in their
// original order. n <= 0 or n >= len(items) returns items unchanged.
func Sample[T any](items []T, n int, seed uint64) []T {
	if n <= 0 || n >= len(items) {
		return items
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	picked := rng.Perm(len(items))[:n]
	slices.Sort(picked)

	sampled := make([]T, 0, n)
	for _, i := range picked {
		sampled = append(sampled, items[i])
	}

	return sampled
}
