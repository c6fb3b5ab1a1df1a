package sampler

import (
	"context"
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/omics-group/dynamics-cli/internal/model"
)

const (
	// meanPriorSD is the weak normal prior scale on per-timepoint means.
	meanPriorSD = 5.0
	// rateHyper is the rate of the exponential hyperprior on the
	// metabolite-level scale rate.
	rateHyper = 1.0
	// scalePriorRate is the exponential prior rate on the distance model's
	// scale parameter.
	scalePriorRate = 1.0
	// locationPriorSD is the prior scale on the distance model's location.
	locationPriorSD = 10.0
)

// Gibbs is the built-in sampling engine: conjugate Gibbs updates for means
// and metabolite-level rates, a Metropolis step on the log noise scale with
// acceptance-rate adaptation during warmup. Deterministic for a fixed seed.
// It has no trajectory tree, so Config.MaxTreedepth is ignored and the
// reported treedepth counts stay zero; the knob applies to external engines
// implementing Sampler.
type Gibbs struct {
	Seed uint64
}

// NewGibbs returns an engine seeded for reproducible draws.
func NewGibbs(seed uint64) *Gibbs {
	return &Gibbs{Seed: seed}
}

// FitHierarchy implements Sampler.
func (g *Gibbs) FitHierarchy(ctx context.Context, data HierarchyData, cfg Config) (*HierarchyPosterior, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(data.Observations) == 0 {
		return nil, eris.Errorf("sampler: condition %s has no observations", data.Condition)
	}
	for k, obs := range data.Observations {
		if len(obs) == 0 {
			return nil, eris.Errorf("sampler: condition %s: %s has no replicates", data.Condition, k)
		}
	}

	keys := paramKeys(data)
	byMet := make(map[model.MetaboliteID][]model.ParamKey)
	for _, k := range keys {
		byMet[k.Metabolite] = append(byMet[k.Metabolite], k)
	}

	retained := cfg.Iter - cfg.Warmup()
	post := &HierarchyPosterior{
		Means:              make(map[model.ParamKey]model.ChainDraws, len(keys)),
		Scales:             make(map[model.ParamKey]model.ChainDraws, len(keys)),
		DivergencesByChain: make([]int, cfg.Chains),
		TreedepthByChain:   make([]int, cfg.Chains),
	}
	for _, k := range keys {
		post.Means[k] = make(model.ChainDraws, cfg.Chains)
		post.Scales[k] = make(model.ChainDraws, cfg.Chains)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Cores)

	for chain := 0; chain < cfg.Chains; chain++ {
		eg.Go(func() error {
			rng := rand.New(rand.NewSource(g.Seed + uint64(chain)*0x9e3779b9))

			mu := make(map[model.ParamKey]float64, len(keys))
			sigma := make(map[model.ParamKey]float64, len(keys))
			step := make(map[model.ParamKey]float64, len(keys))
			lambda := make(map[model.MetaboliteID]float64, len(byMet))

			for _, k := range keys {
				obs := data.Observations[k]
				m, sd := stat.MeanStdDev(obs, nil)
				if math.IsNaN(sd) || sd <= 0 {
					sd = 1
				}
				mu[k] = m
				sigma[k] = sd
				step[k] = 0.5
			}
			for met, ks := range byMet {
				var sum float64
				for _, k := range ks {
					sum += sigma[k]
				}
				lambda[met] = float64(len(ks)) / sum
			}

			for iter := 0; iter < cfg.Iter; iter++ {
				if iter%64 == 0 {
					if err := egCtx.Err(); err != nil {
						return err
					}
				}
				warm := iter < cfg.Warmup()

				for _, k := range keys {
					obs := data.Observations[k]
					n := float64(len(obs))

					// Conjugate normal update for the mean.
					s2 := sigma[k] * sigma[k]
					prec := n/s2 + 1/(meanPriorSD*meanPriorSD)
					var sum float64
					for _, y := range obs {
						sum += y
					}
					postMean := (sum / s2) / prec
					mu[k] = distuv.Normal{Mu: postMean, Sigma: math.Sqrt(1 / prec), Src: rng}.Rand()

					// Metropolis step on log sigma.
					rate := lambda[k.Metabolite]
					cur := sigma[k]
					prop := cur * math.Exp(step[k]*rng.NormFloat64())
					lpCur := scaleLogPost(obs, mu[k], cur, rate)
					lpProp := scaleLogPost(obs, mu[k], prop, rate)
					if math.IsNaN(lpProp) || math.IsInf(lpProp, 0) {
						post.DivergencesByChain[chain]++
					} else if math.Log(rng.Float64()) < lpProp-lpCur {
						sigma[k] = prop
						if warm {
							step[k] *= 1.05
						}
					} else if warm {
						// Shrink toward the target acceptance probability.
						step[k] *= math.Pow(0.97, cfg.AdaptDelta/0.8)
					}
					if step[k] < 1e-3 {
						step[k] = 1e-3
					}
				}

				// Conjugate gamma update for each metabolite-level rate.
				for met, ks := range byMet {
					var sum float64
					for _, k := range ks {
						sum += sigma[k]
					}
					lambda[met] = distuv.Gamma{
						Alpha: 1 + float64(len(ks)),
						Beta:  rateHyper + sum,
						Src:   rng,
					}.Rand()
				}

				if !warm {
					for _, k := range keys {
						post.Means[k][chain] = append(post.Means[k][chain], mu[k])
						post.Scales[k][chain] = append(post.Scales[k][chain], sigma[k])
					}
				}
			}

			// Preallocate check: retained draws per chain.
			for _, k := range keys {
				if len(post.Means[k][chain]) != retained {
					return eris.Errorf("sampler: chain %d retained %d draws, want %d",
						chain, len(post.Means[k][chain]), retained)
				}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, eris.Wrapf(err, "sampler: condition %s", data.Condition)
	}
	return post, nil
}

// FitLocationScale implements Sampler.
func (g *Gibbs) FitLocationScale(ctx context.Context, obs []float64, cfg Config) (*LocationScalePosterior, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		return nil, eris.New("sampler: location-scale fit needs at least one observation")
	}

	post := &LocationScalePosterior{
		Location: make(model.ChainDraws, cfg.Chains),
		Scale:    make(model.ChainDraws, cfg.Chains),
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Cores)

	for chain := 0; chain < cfg.Chains; chain++ {
		eg.Go(func() error {
			rng := rand.New(rand.NewSource(g.Seed + 0x51ed2701 + uint64(chain)*0x9e3779b9))

			m, sd := stat.MeanStdDev(obs, nil)
			if math.IsNaN(sd) || sd <= 0 {
				sd = math.Max(math.Abs(m)/10, 1e-6)
			}
			mu, sigma, step := math.Max(m, 0), sd, 0.5
			n := float64(len(obs))
			var sum float64
			for _, y := range obs {
				sum += y
			}

			for iter := 0; iter < cfg.Iter; iter++ {
				if iter%64 == 0 {
					if err := egCtx.Err(); err != nil {
						return err
					}
				}
				warm := iter < cfg.Warmup()

				// Conjugate normal update, rejected below zero: the location
				// is a distance and must stay non-negative.
				s2 := sigma * sigma
				prec := n/s2 + 1/(locationPriorSD*locationPriorSD)
				postMean := (sum / s2) / prec
				dist := distuv.Normal{Mu: postMean, Sigma: math.Sqrt(1 / prec), Src: rng}
				draw := dist.Rand()
				for tries := 0; draw < 0 && tries < 100; tries++ {
					draw = dist.Rand()
				}
				if draw < 0 {
					draw = 0
				}
				mu = draw

				// Metropolis step on log sigma with an exponential prior.
				prop := sigma * math.Exp(step*rng.NormFloat64())
				lpCur := scaleLogPost(obs, mu, sigma, scalePriorRate)
				lpProp := scaleLogPost(obs, mu, prop, scalePriorRate)
				if !math.IsNaN(lpProp) && !math.IsInf(lpProp, 0) && math.Log(rng.Float64()) < lpProp-lpCur {
					sigma = prop
					if warm {
						step *= 1.05
					}
				} else if warm {
					step *= math.Pow(0.97, cfg.AdaptDelta/0.8)
				}
				if step < 1e-3 {
					step = 1e-3
				}

				if !warm {
					post.Location[chain] = append(post.Location[chain], mu)
					post.Scale[chain] = append(post.Scale[chain], sigma)
				}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, eris.Wrap(err, "sampler: location-scale fit")
	}
	return post, nil
}

// scaleLogPost is the unnormalized log posterior of a noise scale under a
// normal likelihood and exponential prior, including the log-scale Jacobian.
func scaleLogPost(obs []float64, mu, sigma, rate float64) float64 {
	if sigma <= 0 {
		return math.Inf(-1)
	}
	var ss float64
	for _, y := range obs {
		d := y - mu
		ss += d * d
	}
	n := float64(len(obs))
	return -n*math.Log(sigma) - ss/(2*sigma*sigma) - rate*sigma + math.Log(sigma)
}

// paramKeys returns the parameter keys of the data in a deterministic
// (metabolite, timepoint-order) sequence.
func paramKeys(data HierarchyData) []model.ParamKey {
	mets := make(map[model.MetaboliteID]struct{})
	for k := range data.Observations {
		mets[k.Metabolite] = struct{}{}
	}
	var sorted []model.MetaboliteID
	for m := range mets {
		sorted = append(sorted, m)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var keys []model.ParamKey
	for _, m := range sorted {
		for _, tp := range data.Timepoints {
			k := model.ParamKey{Metabolite: m, Timepoint: tp}
			if _, ok := data.Observations[k]; ok {
				keys = append(keys, k)
			}
		}
	}
	return keys
}
