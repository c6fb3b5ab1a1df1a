// Package estimates derives posterior mean/HDI tables, consecutive-timepoint
// difference estimates, and dynamic profile vectors from group fits.
package estimates

import (
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"

	"github.com/omics-group/dynamics-cli/internal/mcmc"
	"github.com/omics-group/dynamics-cli/internal/model"
)

// hdiMass is the credible mass of every reported interval.
const hdiMass = 0.95

// Extract summarizes every mean parameter of every fit: posterior mean with
// an empirical 95% HDI, draw-wise consecutive-timepoint differences, and
// per-metabolite dynamic profiles. drawsPerParam thins to at most that many
// draws per parameter (0 keeps all). Pure function: identical inputs yield
// identical tables.
func Extract(fits map[model.ConditionID]*model.GroupFit, drawsPerParam int) (*model.EstimateSet, error) {
	if len(fits) == 0 {
		return nil, eris.New("estimates: no fits to extract from")
	}

	set := &model.EstimateSet{}

	for _, cond := range sortedConditions(fits) {
		fit := fits[cond]

		for _, met := range fit.Metabolites() {
			profile := model.Profile{
				Condition:  cond,
				Metabolite: met,
				Timepoints: append([]model.TimepointID(nil), fit.Timepoints...),
			}

			for i, tp := range fit.Timepoints {
				k := model.ParamKey{Metabolite: met, Timepoint: tp}
				draws := thin(fit.Means[k].Flatten(), drawsPerParam)
				if len(draws) == 0 {
					return nil, eris.Errorf("estimates: %s/%s has no posterior draws", cond, k)
				}

				mean := stat.Mean(draws, nil)
				lo, hi := mcmc.HDI(draws, hdiMass)
				set.Estimates = append(set.Estimates, model.Estimate{
					Condition:  cond,
					Metabolite: met,
					Timepoint:  tp,
					Mean:       mean,
					HDILow:     lo,
					HDIHigh:    hi,
					Trend:      trend(lo, hi),
				})
				profile.Values = append(profile.Values, mean)

				if i == 0 {
					continue
				}
				prev := model.ParamKey{Metabolite: met, Timepoint: fit.Timepoints[i-1]}
				diff, err := drawwiseDifference(fit.Means[k], fit.Means[prev])
				if err != nil {
					return nil, eris.Wrapf(err, "estimates: %s/%s", cond, met)
				}
				diff = thin(diff, drawsPerParam)
				dMean := stat.Mean(diff, nil)
				dLo, dHi := mcmc.HDI(diff, hdiMass)
				set.Differences = append(set.Differences, model.DifferenceEstimate{
					Condition:  cond,
					Metabolite: met,
					Pair:       model.TimepointPair{From: fit.Timepoints[i-1], To: tp},
					Mean:       dMean,
					HDILow:     dLo,
					HDIHigh:    dHi,
					Trend:      trend(dLo, dHi),
				})
			}

			set.Profiles = append(set.Profiles, profile)
		}
	}

	return set, nil
}

// drawwiseDifference subtracts posterior draws of the earlier timepoint from
// the later one draw-for-draw, matched by draw index within a chain, so the
// posterior correlation between the two parameters is preserved. Summarizing
// the two margins first and subtracting afterwards would discard it.
func drawwiseDifference(to, from model.ChainDraws) ([]float64, error) {
	if len(to) != len(from) {
		return nil, eris.Errorf("chain count mismatch: %d vs %d", len(to), len(from))
	}
	var out []float64
	for c := range to {
		if len(to[c]) != len(from[c]) {
			return nil, eris.Errorf("chain %d draw count mismatch: %d vs %d", c, len(to[c]), len(from[c]))
		}
		for i := range to[c] {
			out = append(out, to[c][i]-from[c][i])
		}
	}
	return out, nil
}

// trend flags an interval that credibly excludes zero.
func trend(lo, hi float64) model.Trend {
	switch {
	case lo > 0:
		return model.TrendIncrease
	case hi < 0:
		return model.TrendDecrease
	default:
		return model.TrendNone
	}
}

// thin keeps at most n evenly spaced draws (n <= 0 keeps all).
func thin(draws []float64, n int) []float64 {
	if n <= 0 || len(draws) <= n {
		return draws
	}
	out := make([]float64, 0, n)
	stride := float64(len(draws)) / float64(n)
	for i := 0; i < n; i++ {
		out = append(out, draws[int(float64(i)*stride)])
	}
	return out
}

func sortedConditions(fits map[model.ConditionID]*model.GroupFit) []model.ConditionID {
	out := make([]model.ConditionID, 0, len(fits))
	for c := range fits {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
