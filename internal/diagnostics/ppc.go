package diagnostics

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/omics-group/dynamics-cli/internal/model"
	"github.com/omics-group/dynamics-cli/internal/observations"
)

// ppcSeed fixes the simulation stream so the check is a pure function of its
// inputs.
const ppcSeed = 0x70c5

// PosteriorPredictive simulates draws-per-parameter observations from the
// fitted per-(metabolite,timepoint) normal and pairs them with the real
// observations of the group. The table is meant for distribution plots, not
// for a pass/fail decision.
func PosteriorPredictive(fit *model.GroupFit, tab *observations.Table, draws int) []model.PPCRow {
	if fit == nil || tab == nil || draws <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(ppcSeed))

	var rows []model.PPCRow
	for _, met := range fit.Metabolites() {
		for _, tp := range fit.Timepoints {
			k := model.ParamKey{Metabolite: met, Timepoint: tp}
			mus := fit.Means[k].Flatten()
			sigmas := fit.Scales[k].Flatten()
			if len(mus) == 0 || len(sigmas) == 0 {
				continue
			}

			// Evenly spaced posterior draws keep mean and scale from the
			// same joint draw index.
			sim := make([]float64, 0, draws)
			stride := len(mus) / draws
			if stride < 1 {
				stride = 1
			}
			for i := 0; i < len(mus) && len(sim) < draws; i += stride {
				j := i
				if j >= len(sigmas) {
					j = len(sigmas) - 1
				}
				sim = append(sim, distuv.Normal{Mu: mus[i], Sigma: sigmas[j], Src: rng}.Rand())
			}

			rows = append(rows, model.PPCRow{
				Condition:  fit.Condition,
				Metabolite: met,
				Timepoint:  tp,
				Simulated:  sim,
				Observed:   tab.Scaled(fit.Condition, k),
			})
		}
	}
	return rows
}
