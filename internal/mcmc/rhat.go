// Package mcmc provides posterior-sample math shared by the sampler,
// diagnostics and estimate extraction: split-R-hat, effective sample size,
// highest-density intervals and quantiles.
package mcmc

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/omics-group/dynamics-cli/internal/model"
)

// SplitRHat computes the split-R-hat convergence diagnostic: each chain is
// split in half and between-half variance is compared to within-half
// variance. Values near 1 indicate agreement. Returns NaN when there are
// fewer than 4 draws per chain or no variation at all.
func SplitRHat(draws model.ChainDraws) float64 {
	var halves [][]float64
	for _, ch := range draws {
		if len(ch) < 4 {
			return math.NaN()
		}
		mid := len(ch) / 2
		halves = append(halves, ch[:mid], ch[mid:mid*2])
	}
	if len(halves) < 2 {
		return math.NaN()
	}

	n := float64(len(halves[0]))

	means := make([]float64, len(halves))
	vars := make([]float64, len(halves))
	for i, h := range halves {
		means[i], vars[i] = stat.MeanVariance(h, nil)
	}

	w := stat.Mean(vars, nil)
	b := n * stat.Variance(means, nil)
	if w == 0 {
		if b == 0 {
			return math.NaN()
		}
		return math.Inf(1)
	}

	varPlus := (n-1)/n*w + b/n
	return math.Sqrt(varPlus / w)
}
