// Package compare estimates how similar discovered clusters are across
// conditions: a Bayesian distance model over member dynamic profiles and a
// Jaccard similarity over member sets.
package compare

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/omics-group/dynamics-cli/internal/model"
	"github.com/omics-group/dynamics-cli/internal/sampler"
)

// Dynamics compares every unordered cluster pair across all conditions
// (pairs within one condition included). For each pair it collects the full
// cross-member Euclidean distance set and fits a one-group location/scale
// model to it, reporting the posterior mean and standard deviation of the
// typical pairwise distance rather than a centroid distance. Pair fits are
// independent jobs bounded by cfg.Cores. A pair with no distance
// observations is reported unavailable, never a fault.
func Dynamics(ctx context.Context, clusters model.ClusterSet, s sampler.Sampler, cfg sampler.Config) ([]model.DynamicsComparison, error) {
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "compare: config")
	}
	sorted := clusters.Sorted()
	if len(sorted) < 2 {
		return nil, eris.New("compare: need at least two clusters")
	}

	type job struct {
		pair      model.ClusterPair
		distances []float64
	}
	var jobs []job
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			jobs = append(jobs, job{
				pair:      model.NewClusterPair(sorted[i].Key(), sorted[j].Key()),
				distances: crossDistances(sorted[i], sorted[j]),
			})
		}
	}

	results := make([]model.DynamicsComparison, len(jobs))
	var mu sync.Mutex

	jobCfg := cfg
	jobCfg.Cores = 1

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Cores)

	for idx, jb := range jobs {
		g.Go(func() error {
			if len(jb.distances) == 0 {
				zap.L().Warn("compare: pair has no distance observations, skipping",
					zap.String("a", fmt.Sprintf("%s/%d", jb.pair.A.Condition, jb.pair.A.ID)),
					zap.String("b", fmt.Sprintf("%s/%d", jb.pair.B.Condition, jb.pair.B.ID)),
				)
				mu.Lock()
				results[idx] = model.DynamicsComparison{Pair: jb.pair, Available: false}
				mu.Unlock()
				return nil
			}

			post, err := s.FitLocationScale(gCtx, jb.distances, jobCfg)
			if err != nil {
				return eris.Wrapf(err, "compare: pair %s-%s", jb.pair.A.Condition, jb.pair.B.Condition)
			}

			loc := post.Location.Flatten()
			mean, sd := stat.MeanStdDev(loc, nil)
			mu.Lock()
			results[idx] = model.DynamicsComparison{
				Pair:          jb.pair,
				Distances:     len(jb.distances),
				PosteriorMean: mean,
				PosteriorSD:   sd,
				Available:     true,
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// crossDistances returns every member-to-member Euclidean distance between
// two clusters. Profiles of mismatched length contribute nothing, so a pair
// whose conditions disagree on timepoint count ends up unavailable.
func crossDistances(a, b model.Cluster) []float64 {
	var out []float64
	for _, ma := range sortedMembers(a) {
		pa := a.Profiles[ma]
		for _, mb := range sortedMembers(b) {
			pb := b.Profiles[mb]
			if len(pa) == 0 || len(pa) != len(pb) {
				continue
			}
			var ss float64
			for i := range pa {
				d := pa[i] - pb[i]
				ss += d * d
			}
			out = append(out, math.Sqrt(ss))
		}
	}
	return out
}

func sortedMembers(c model.Cluster) []model.MetaboliteID {
	out := append([]model.MetaboliteID(nil), c.Members...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
