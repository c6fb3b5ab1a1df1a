package mcmc

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/omics-group/dynamics-cli/internal/model"
)

func iidChains(t *testing.T, chains, n int, mean, sd float64, seed uint64) model.ChainDraws {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	out := make(model.ChainDraws, chains)
	for c := range out {
		out[c] = make([]float64, n)
		for i := range out[c] {
			out[c][i] = mean + sd*rng.NormFloat64()
		}
	}
	return out
}

func TestSplitRHat(t *testing.T) {
	t.Parallel()

	t.Run("iid chains converge to one", func(t *testing.T) {
		t.Parallel()
		draws := iidChains(t, 4, 1000, 0, 1, 7)
		r := SplitRHat(draws)
		assert.InDelta(t, 1.0, r, 0.02)
	})

	t.Run("shifted chain flagged", func(t *testing.T) {
		t.Parallel()
		draws := iidChains(t, 4, 1000, 0, 1, 11)
		for i := range draws[0] {
			draws[0][i] += 5
		}
		r := SplitRHat(draws)
		assert.Greater(t, r, 1.01)
	})

	t.Run("too few draws", func(t *testing.T) {
		t.Parallel()
		r := SplitRHat(model.ChainDraws{{1, 2, 3}})
		assert.True(t, math.IsNaN(r))
	})

	t.Run("constant chains", func(t *testing.T) {
		t.Parallel()
		r := SplitRHat(model.ChainDraws{{2, 2, 2, 2}, {2, 2, 2, 2}})
		assert.True(t, math.IsNaN(r))
	})
}

func TestEffectiveSampleSize(t *testing.T) {
	t.Parallel()

	t.Run("iid draws keep most of the sample", func(t *testing.T) {
		t.Parallel()
		draws := iidChains(t, 4, 500, 0, 1, 3)
		ess := EffectiveSampleSize(draws)
		assert.Greater(t, ess, 1000.0)
		assert.LessOrEqual(t, ess, 2000.0)
	})

	t.Run("autocorrelated draws shrink", func(t *testing.T) {
		t.Parallel()
		rng := rand.New(rand.NewSource(5))
		draws := make(model.ChainDraws, 2)
		for c := range draws {
			draws[c] = make([]float64, 1000)
			x := 0.0
			for i := range draws[c] {
				x = 0.95*x + 0.1*rng.NormFloat64()
				draws[c][i] = x
			}
		}
		iid := iidChains(t, 2, 1000, 0, 1, 5)
		assert.Less(t, EffectiveSampleSize(draws), EffectiveSampleSize(iid)/4)
	})

	t.Run("degenerate input", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0.0, EffectiveSampleSize(nil))
		assert.Equal(t, 0.0, EffectiveSampleSize(model.ChainDraws{{1, 1, 1, 1}}))
	})
}

func TestHDI(t *testing.T) {
	t.Parallel()

	t.Run("covers the bulk of a normal sample", func(t *testing.T) {
		t.Parallel()
		rng := rand.New(rand.NewSource(17))
		draws := make([]float64, 20000)
		for i := range draws {
			draws[i] = 2 + 0.5*rng.NormFloat64()
		}
		low, high := HDI(draws, 0.95)
		// Closed form for N(2, 0.5): 2 +/- 1.96*0.5.
		assert.InDelta(t, 2-1.96*0.5, low, 0.05)
		assert.InDelta(t, 2+1.96*0.5, high, 0.05)
	})

	t.Run("shortest window on a skewed sample", func(t *testing.T) {
		t.Parallel()
		rng := rand.New(rand.NewSource(23))
		draws := make([]float64, 20000)
		for i := range draws {
			draws[i] = rng.ExpFloat64()
		}
		low, high := HDI(draws, 0.9)
		// For an exponential the HDI hugs zero, unlike the central interval.
		assert.Less(t, low, 0.02)
		assert.Less(t, high, 2.6)
		assert.Greater(t, high, 2.0)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		low, high := HDI(nil, 0.95)
		assert.True(t, math.IsNaN(low))
		assert.True(t, math.IsNaN(high))
	})
}

func TestQuantile(t *testing.T) {
	t.Parallel()

	draws := make([]float64, 101)
	for i := range draws {
		draws[i] = float64(i)
	}
	rand.New(rand.NewSource(1)).Shuffle(len(draws), func(i, j int) {
		draws[i], draws[j] = draws[j], draws[i]
	})

	q := Quantile(draws, 0.5)
	require.False(t, math.IsNaN(q))
	assert.InDelta(t, 50, q, 1)

	sorted := append([]float64(nil), draws...)
	sort.Float64s(sorted)
	assert.GreaterOrEqual(t, Quantile(draws, 0.975), sorted[95])
}
