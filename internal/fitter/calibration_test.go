package fitter

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/omics-group/dynamics-cli/internal/cluster"
	"github.com/omics-group/dynamics-cli/internal/estimates"
	"github.com/omics-group/dynamics-cli/internal/mcmc"
	"github.com/omics-group/dynamics-cli/internal/model"
	"github.com/omics-group/dynamics-cli/internal/observations"
	"github.com/omics-group/dynamics-cli/internal/sampler"
)

// TestCalibrationEndToEnd fits the real engine on synthetic data with known
// group trajectories, checks interval coverage of the true means, and checks
// that clustering the fitted profiles recovers the true groups.
func TestCalibrationEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("calibration fit is slow")
	}
	t.Parallel()

	const (
		nGroups  = 8
		perGroup = 3 // metabolites per true group
		nTps     = 4
		nReps    = 3
		noise    = 0.25
	)

	rng := rand.New(rand.NewSource(2024))
	conditions := []model.ConditionID{"c0", "c1", "c2"}

	// One trajectory per true group, shared by its metabolites; trajectories
	// are spread out so groups are recoverable.
	trajectories := make([][]float64, nGroups)
	for g := range trajectories {
		trajectories[g] = make([]float64, nTps)
		for tp := range trajectories[g] {
			trajectories[g][tp] = 3*float64(g-nGroups/2) + 0.5*rng.NormFloat64()
		}
	}

	truthGroup := make(map[model.MetaboliteID]int)
	truth := make(map[model.ConditionID]map[model.ParamKey]float64)
	var rows []model.Observation
	for _, cond := range conditions {
		truth[cond] = make(map[model.ParamKey]float64)
		for g := 0; g < nGroups; g++ {
			for m := 0; m < perGroup; m++ {
				met := model.MetaboliteID(fmt.Sprintf("met%d_%d", g, m))
				truthGroup[met] = g
				for tp := 0; tp < nTps; tp++ {
					tpID := model.TimepointID(fmt.Sprintf("t%d", tp))
					mean := trajectories[g][tp]
					truth[cond][model.ParamKey{Metabolite: met, Timepoint: tpID}] = mean
					for r := 0; r < nReps; r++ {
						val := mean + noise*rng.NormFloat64()
						rows = append(rows, model.Observation{
							Metabolite: met,
							Condition:  cond,
							Timepoint:  tpID,
							Replicate:  model.ReplicateID(fmt.Sprintf("r%d", r)),
							Raw:        1,
							Log:        val,
							Scaled:     val,
						})
					}
				}
			}
		}
	}

	tab, err := observations.New(rows)
	require.NoError(t, err)

	cfg := sampler.Default()
	cfg.Iter = 1000
	cfg.Chains = 2
	cfg.Cores = 2

	res, err := FitDynamics(context.Background(), tab, sampler.NewGibbs(777), cfg)
	require.NoError(t, err)
	require.Len(t, res.Fits, len(conditions))
	require.Empty(t, res.Failed)

	// Calibration: the reported 95% intervals cover the true means in at
	// least 90% of cases, counted per (metabolite, timepoint) parameter.
	covered, total := 0, 0
	for _, cond := range conditions {
		fit := res.Fits[cond]
		for key, want := range truth[cond] {
			draws, ok := fit.Means[key]
			require.True(t, ok, "missing draws for %s/%s", cond, key)
			low, high := mcmc.HDI(draws.Flatten(), 0.95)
			total++
			if want >= low && want <= high {
				covered++
			}
		}
	}
	assert.GreaterOrEqual(t, float64(covered)/float64(total), 0.90,
		"interval coverage %d/%d", covered, total)

	// Group recovery: clustering the fitted profiles of one condition into
	// the true group count agrees with the true labels.
	est, err := estimates.Extract(res.Fits, 0)
	require.NoError(t, err)

	var profiles []model.Profile
	for _, p := range est.Profiles {
		if p.Condition == "c0" {
			profiles = append(profiles, p)
		}
	}
	require.Len(t, profiles, nGroups*perGroup)

	assignments, err := cluster.AverageLinkage{}.Cluster(profiles, nGroups)
	require.NoError(t, err)

	var trueLabels, gotLabels []int
	for _, p := range profiles {
		trueLabels = append(trueLabels, truthGroup[p.Metabolite])
		gotLabels = append(gotLabels, assignments[p.Metabolite])
	}
	ari := adjustedRandIndex(trueLabels, gotLabels)
	assert.GreaterOrEqual(t, ari, 0.7, "adjusted Rand index")
}

// adjustedRandIndex measures chance-corrected agreement between two
// labelings of the same items; 1 is identical, 0 is chance level.
func adjustedRandIndex(a, b []int) float64 {
	n := len(a)
	contingency := make(map[[2]int]int)
	rowSums := make(map[int]int)
	colSums := make(map[int]int)
	for i := 0; i < n; i++ {
		contingency[[2]int{a[i], b[i]}]++
		rowSums[a[i]]++
		colSums[b[i]]++
	}

	choose2 := func(x int) float64 { return float64(x*(x-1)) / 2 }

	var sumCells, sumRows, sumCols float64
	for _, c := range contingency {
		sumCells += choose2(c)
	}
	for _, c := range rowSums {
		sumRows += choose2(c)
	}
	for _, c := range colSums {
		sumCols += choose2(c)
	}

	expected := sumRows * sumCols / choose2(n)
	maxIndex := (sumRows + sumCols) / 2
	if maxIndex == expected {
		return 0
	}
	return (sumCells - expected) / (maxIndex - expected)
}
