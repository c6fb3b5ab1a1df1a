package estimates

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/omics-group/dynamics-cli/internal/model"
)

// normalChains draws chains of iid N(mean, sd) values.
func normalChains(seed uint64, chains, n int, mean, sd float64) model.ChainDraws {
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

func fitWith(means map[model.ParamKey]model.ChainDraws, tps ...model.TimepointID) *model.GroupFit {
	return &model.GroupFit{
		Condition:  "ctrl",
		Timepoints: tps,
		Means:      means,
	}
}

func TestExtractEstimatesAndProfiles(t *testing.T) {
	t.Parallel()

	k1 := model.ParamKey{Metabolite: "ala", Timepoint: "t1"}
	k2 := model.ParamKey{Metabolite: "ala", Timepoint: "t2"}
	fit := fitWith(map[model.ParamKey]model.ChainDraws{
		k1: normalChains(1, 4, 2000, -0.5, 0.1),
		k2: normalChains(2, 4, 2000, 1.0, 0.1),
	}, "t1", "t2")

	set, err := Extract(map[model.ConditionID]*model.GroupFit{"ctrl": fit}, 0)
	require.NoError(t, err)

	require.Len(t, set.Estimates, 2)
	e1, e2 := set.Estimates[0], set.Estimates[1]
	assert.Equal(t, model.TimepointID("t1"), e1.Timepoint)
	assert.InDelta(t, -0.5, e1.Mean, 0.02)
	assert.Less(t, e1.HDILow, e1.Mean)
	assert.Greater(t, e1.HDIHigh, e1.Mean)
	assert.Equal(t, model.TrendDecrease, e1.Trend)
	assert.Equal(t, model.TrendIncrease, e2.Trend)

	require.Len(t, set.Profiles, 1)
	p := set.Profiles[0]
	assert.Equal(t, []model.TimepointID{"t1", "t2"}, p.Timepoints)
	require.Len(t, p.Values, 2)
	assert.Equal(t, e1.Mean, p.Values[0])
	assert.Equal(t, e2.Mean, p.Values[1])
}

func TestExtractDrawwiseDifference(t *testing.T) {
	t.Parallel()

	// Perfectly correlated parameters: t2 = t1 + 0.7 draw for draw. The
	// draw-wise difference is exactly 0.7 with zero width, which marginal
	// summaries would never show.
	base := normalChains(3, 2, 1000, 0, 1)
	shifted := make(model.ChainDraws, len(base))
	for c := range base {
		shifted[c] = make([]float64, len(base[c]))
		for i := range base[c] {
			shifted[c][i] = base[c][i] + 0.7
		}
	}

	k1 := model.ParamKey{Metabolite: "ala", Timepoint: "t1"}
	k2 := model.ParamKey{Metabolite: "ala", Timepoint: "t2"}
	fit := fitWith(map[model.ParamKey]model.ChainDraws{k1: base, k2: shifted}, "t1", "t2")

	set, err := Extract(map[model.ConditionID]*model.GroupFit{"ctrl": fit}, 0)
	require.NoError(t, err)

	require.Len(t, set.Differences, 1)
	d := set.Differences[0]
	assert.Equal(t, model.TimepointPair{From: "t1", To: "t2"}, d.Pair)
	assert.InDelta(t, 0.7, d.Mean, 1e-12)
	assert.InDelta(t, 0.7, d.HDILow, 1e-12)
	assert.InDelta(t, 0.7, d.HDIHigh, 1e-12)
	assert.Equal(t, model.TrendIncrease, d.Trend)
}

func TestExtractDifferenceTrendNone(t *testing.T) {
	t.Parallel()

	k1 := model.ParamKey{Metabolite: "ala", Timepoint: "t1"}
	k2 := model.ParamKey{Metabolite: "ala", Timepoint: "t2"}
	fit := fitWith(map[model.ParamKey]model.ChainDraws{
		k1: normalChains(5, 2, 2000, 0.3, 1),
		k2: normalChains(6, 2, 2000, 0.3, 1),
	}, "t1", "t2")

	set, err := Extract(map[model.ConditionID]*model.GroupFit{"ctrl": fit}, 0)
	require.NoError(t, err)
	require.Len(t, set.Differences, 1)
	assert.Equal(t, model.TrendNone, set.Differences[0].Trend)
}

func TestExtractIndependentDifferenceWidth(t *testing.T) {
	t.Parallel()

	// Independent parameters with equal sd: the draw-wise difference is
	// N(mu2-mu1, sqrt(2)*sd), so the 95% interval width is close to the
	// closed form 2*1.96*sqrt(2)*sd.
	const sd = 0.5
	k1 := model.ParamKey{Metabolite: "ala", Timepoint: "t1"}
	k2 := model.ParamKey{Metabolite: "ala", Timepoint: "t2"}
	fit := fitWith(map[model.ParamKey]model.ChainDraws{
		k1: normalChains(11, 4, 4000, 1.0, sd),
		k2: normalChains(12, 4, 4000, 1.8, sd),
	}, "t1", "t2")

	set, err := Extract(map[model.ConditionID]*model.GroupFit{"ctrl": fit}, 0)
	require.NoError(t, err)
	require.Len(t, set.Differences, 1)

	d := set.Differences[0]
	assert.InDelta(t, 0.8, d.Mean, 0.05)
	want := 2 * 1.96 * math.Sqrt2 * sd
	assert.InDelta(t, want, d.HDIHigh-d.HDILow, 0.15)
}

func TestExtractChainMismatch(t *testing.T) {
	t.Parallel()

	k1 := model.ParamKey{Metabolite: "ala", Timepoint: "t1"}
	k2 := model.ParamKey{Metabolite: "ala", Timepoint: "t2"}
	fit := fitWith(map[model.ParamKey]model.ChainDraws{
		k1: normalChains(7, 2, 100, 0, 1),
		k2: normalChains(8, 4, 100, 0, 1),
	}, "t1", "t2")

	_, err := Extract(map[model.ConditionID]*model.GroupFit{"ctrl": fit}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chain count mismatch")
}

func TestExtractThinning(t *testing.T) {
	t.Parallel()

	k := model.ParamKey{Metabolite: "ala", Timepoint: "t1"}
	fit := fitWith(map[model.ParamKey]model.ChainDraws{
		k: normalChains(9, 4, 2000, 1.0, 0.2),
	}, "t1")

	full, err := Extract(map[model.ConditionID]*model.GroupFit{"ctrl": fit}, 0)
	require.NoError(t, err)
	thinned, err := Extract(map[model.ConditionID]*model.GroupFit{"ctrl": fit}, 500)
	require.NoError(t, err)

	assert.InDelta(t, full.Estimates[0].Mean, thinned.Estimates[0].Mean, 0.05)
}

func TestExtractEmpty(t *testing.T) {
	t.Parallel()

	_, err := Extract(nil, 0)
	require.Error(t, err)
}
