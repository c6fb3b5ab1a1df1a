// Package diagnostics aggregates sampler convergence diagnostics across many
// independent group fits into summary and plot-ready tables.
package diagnostics

import (
	"math"
	"sort"

	"github.com/omics-group/dynamics-cli/internal/model"
)

// Thresholds for the convergence rule. RHat and ESS bounds follow the usual
// split-R-hat / bulk-ESS guidance.
const (
	MaxRHat       = 1.01
	DefaultMinESS = 400
)

// Summarize derives the diagnostics summary for a set of completed fits. It
// is a pure function of its input: repeated calls yield identical tables.
// Parameters with zero effective samples are reported with ESS 0 and
// converged=false, never dropped.
func Summarize(fits map[model.ConditionID]*model.GroupFit, minESS float64) model.DiagnosticsSummary {
	if minESS <= 0 {
		minESS = DefaultMinESS
	}

	var summary model.DiagnosticsSummary

	for _, cond := range sortedConditions(fits) {
		fit := fits[cond]

		var rhats, esss []float64
		for _, met := range fit.Metabolites() {
			for _, tp := range fit.Timepoints {
				k := model.ParamKey{Metabolite: met, Timepoint: tp}
				if _, ok := fit.Means[k]; !ok {
					continue
				}
				rhat := fit.RHat[k]
				ess := fit.ESS[k]

				row := model.DiagnosticsRow{
					Condition:         cond,
					Metabolite:        met,
					Timepoint:         tp,
					RHat:              rhat,
					ESS:               ess,
					Divergences:       fit.Meta.Divergences(),
					TreedepthExceeded: fit.Meta.TreedepthExceeded(),
				}
				row.Converged = !math.IsNaN(rhat) && rhat <= MaxRHat &&
					ess >= minESS && row.Divergences == 0
				summary.Rows = append(summary.Rows, row)

				rhats = append(rhats, rhat)
				esss = append(esss, ess)
			}
		}

		summary.DivergencesByGroup = append(summary.DivergencesByGroup,
			model.GroupCount{Condition: cond, Count: fit.Meta.Divergences()})
		summary.TreedepthByGroup = append(summary.TreedepthByGroup,
			model.GroupCount{Condition: cond, Count: fit.Meta.TreedepthExceeded()})
		summary.RHatByGroup = append(summary.RHatByGroup,
			model.GroupValues{Condition: cond, Values: rhats})
		summary.ESSByGroup = append(summary.ESSByGroup,
			model.GroupValues{Condition: cond, Values: esss})
	}

	return summary
}

func sortedConditions(fits map[model.ConditionID]*model.GroupFit) []model.ConditionID {
	out := make([]model.ConditionID, 0, len(fits))
	for c := range fits {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
