package mcmc

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// HDI computes the empirical highest-density interval containing the given
// probability mass: the shortest window over the sorted draws. No
// distributional assumption is made. Returns (NaN, NaN) for empty input.
func HDI(draws []float64, mass float64) (low, high float64) {
	if len(draws) == 0 {
		return math.NaN(), math.NaN()
	}
	if mass <= 0 || mass > 1 {
		mass = 0.95
	}

	sorted := append([]float64(nil), draws...)
	sort.Float64s(sorted)

	window := int(math.Ceil(mass * float64(len(sorted))))
	if window < 1 {
		window = 1
	}
	if window >= len(sorted) {
		return sorted[0], sorted[len(sorted)-1]
	}

	bestLow, bestHigh := sorted[0], sorted[window-1]
	bestWidth := bestHigh - bestLow
	for i := 1; i+window <= len(sorted); i++ {
		w := sorted[i+window-1] - sorted[i]
		if w < bestWidth {
			bestWidth = w
			bestLow, bestHigh = sorted[i], sorted[i+window-1]
		}
	}
	return bestLow, bestHigh
}

// Quantile returns the empirical p-quantile of draws.
func Quantile(draws []float64, p float64) float64 {
	if len(draws) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), draws...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}
