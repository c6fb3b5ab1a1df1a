// Package fitter organizes per-condition hierarchical model fits as
// independent inference jobs and assembles posterior-sample bundles.
package fitter

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/omics-group/dynamics-cli/internal/mcmc"
	"github.com/omics-group/dynamics-cli/internal/model"
	"github.com/omics-group/dynamics-cli/internal/observations"
	"github.com/omics-group/dynamics-cli/internal/sampler"
)

// Result holds the partial outcome of a multi-group fit: one GroupFit per
// condition that sampled successfully, and the error for each condition that
// did not. Callers must not assume one fit per requested condition.
type Result struct {
	Fits   map[model.ConditionID]*model.GroupFit
	Failed map[model.ConditionID]error
}

// FitDynamics fits the two-level hierarchy for every condition in the table.
// Conditions are independent jobs on a pool bounded by cfg.Cores; a failed
// condition is logged and recorded in Result.Failed without aborting its
// siblings. Only configuration validation is a fatal error.
func FitDynamics(ctx context.Context, tab *observations.Table, s sampler.Sampler, cfg sampler.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "fitter: config")
	}
	if tab == nil || tab.Len() == 0 {
		return nil, eris.New("fitter: no observations")
	}

	res := &Result{
		Fits:   make(map[model.ConditionID]*model.GroupFit),
		Failed: make(map[model.ConditionID]error),
	}
	var mu sync.Mutex

	// One job per condition; the pool, not the job count, bounds parallelism.
	// Chains inside one job run sequentially so the configured degree is a
	// global bound.
	jobCfg := cfg
	jobCfg.Cores = 1

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Cores)

	for _, cond := range tab.Conditions() {
		g.Go(func() error {
			log := zap.L().With(zap.String("condition", string(cond)))

			data := sampler.HierarchyData{
				Condition:    cond,
				Timepoints:   tab.Timepoints(cond),
				Observations: make(map[model.ParamKey][]float64),
			}
			for _, met := range tab.Metabolites(cond) {
				for _, tp := range data.Timepoints {
					k := model.ParamKey{Metabolite: met, Timepoint: tp}
					data.Observations[k] = tab.Scaled(cond, k)
				}
			}

			post, err := s.FitHierarchy(gCtx, data, jobCfg)
			if err != nil {
				log.Error("fitter: group fit failed", zap.Error(err))
				mu.Lock()
				res.Failed[cond] = err
				mu.Unlock()
				return nil // sibling groups keep running
			}

			fit := assemble(cond, data.Timepoints, post, cfg)
			log.Info("fitter: group fit complete",
				zap.Int("parameters", len(fit.Means)),
				zap.Int("divergences", fit.Meta.Divergences()),
			)

			mu.Lock()
			res.Fits[cond] = fit
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "fitter: wait")
	}

	zap.L().Info("fitter: all groups done",
		zap.Int("fitted", len(res.Fits)),
		zap.Int("failed", len(res.Failed)),
	)
	return res, nil
}

// assemble builds the immutable GroupFit from a posterior, computing
// per-parameter split-R-hat and effective sample size.
func assemble(cond model.ConditionID, tps []model.TimepointID, post *sampler.HierarchyPosterior, cfg sampler.Config) *model.GroupFit {
	fit := &model.GroupFit{
		Condition:  cond,
		Timepoints: tps,
		Means:      post.Means,
		Scales:     post.Scales,
		RHat:       make(map[model.ParamKey]float64, len(post.Means)),
		ESS:        make(map[model.ParamKey]float64, len(post.Means)),
		Meta: model.SamplerMeta{
			Chains:             cfg.Chains,
			Iterations:         cfg.Iter,
			Warmup:             cfg.Warmup(),
			DivergencesByChain: post.DivergencesByChain,
			TreedepthByChain:   post.TreedepthByChain,
		},
	}
	for k, draws := range post.Means {
		fit.RHat[k] = mcmc.SplitRHat(draws)
		fit.ESS[k] = mcmc.EffectiveSampleSize(draws)
	}
	return fit
}
