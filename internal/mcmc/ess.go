package mcmc

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/omics-group/dynamics-cli/internal/model"
)

// EffectiveSampleSize estimates the number of independent-equivalent draws
// across chains using Geyer's initial positive sequence on the chain-averaged
// autocorrelation function. Returns 0 when the draws carry no information
// (no draws, or zero variance in every chain).
func EffectiveSampleSize(draws model.ChainDraws) float64 {
	var chains [][]float64
	minLen := math.MaxInt
	for _, ch := range draws {
		if len(ch) == 0 {
			continue
		}
		chains = append(chains, ch)
		if len(ch) < minLen {
			minLen = len(ch)
		}
	}
	if len(chains) == 0 || minLen < 4 {
		return 0
	}

	total := float64(len(chains) * minLen)

	// Chain-averaged autocovariance at each lag.
	varsSum := 0.0
	for _, ch := range chains {
		varsSum += stat.Variance(ch[:minLen], nil)
	}
	if varsSum == 0 {
		return 0
	}

	acov := func(lag int) float64 {
		var sum float64
		for _, ch := range chains {
			mean := stat.Mean(ch[:minLen], nil)
			var c float64
			for i := 0; i+lag < minLen; i++ {
				c += (ch[i] - mean) * (ch[i+lag] - mean)
			}
			sum += c / float64(minLen)
		}
		return sum / float64(len(chains))
	}

	c0 := acov(0)
	if c0 == 0 {
		return 0
	}

	// Sum paired autocorrelations while the pair sums stay positive.
	var rhoSum float64
	for lag := 1; lag+1 < minLen; lag += 2 {
		pair := (acov(lag) + acov(lag+1)) / c0
		if pair <= 0 {
			break
		}
		rhoSum += pair
	}

	ess := total / (1 + 2*rhoSum)
	if ess > total {
		ess = total
	}
	if ess < 0 || math.IsNaN(ess) {
		return 0
	}
	return ess
}
