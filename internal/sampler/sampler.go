// Package sampler defines the opaque sampling capability consumed by the
// fitter and the cluster comparator, plus a built-in Gibbs engine so the CLI
// runs without an external inference server. Callers depend only on the
// Sampler interface.
package sampler

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/omics-group/dynamics-cli/internal/model"
)

// Config holds the recognized sampler options. Zero values are rejected by
// Validate; use Default for sensible starting values.
type Config struct {
	Iter         int     `yaml:"iter" mapstructure:"iter"`                   // total draws per chain, warmup included
	Chains       int     `yaml:"chains" mapstructure:"chains"`               // independent chains
	WarmupFrac   float64 `yaml:"warmup_frac" mapstructure:"warmup_frac"`     // fraction of iter discarded
	MaxTreedepth int     `yaml:"max_treedepth" mapstructure:"max_treedepth"` // sampler search depth bound
	AdaptDelta   float64 `yaml:"adapt_delta" mapstructure:"adapt_delta"`     // target acceptance probability
	Cores        int     `yaml:"cores" mapstructure:"cores"`                 // parallelism degree
}

// Default returns the default sampler configuration.
func Default() Config {
	return Config{
		Iter:         2000,
		Chains:       4,
		WarmupFrac:   0.5,
		MaxTreedepth: 10,
		AdaptDelta:   0.8,
		Cores:        4,
	}
}

// Validate checks every recognized option; an invalid configuration is a
// fatal input error, reported before any sampling starts.
func (c Config) Validate() error {
	switch {
	case c.Iter <= 0:
		return eris.Errorf("sampler: iter must be > 0, got %d", c.Iter)
	case c.Chains < 1:
		return eris.Errorf("sampler: chains must be >= 1, got %d", c.Chains)
	case c.WarmupFrac <= 0 || c.WarmupFrac >= 1:
		return eris.Errorf("sampler: warmup_frac must be in (0,1), got %g", c.WarmupFrac)
	case c.MaxTreedepth < 1:
		return eris.Errorf("sampler: max_treedepth must be >= 1, got %d", c.MaxTreedepth)
	case c.AdaptDelta <= 0 || c.AdaptDelta >= 1:
		return eris.Errorf("sampler: adapt_delta must be in (0,1), got %g", c.AdaptDelta)
	case c.Cores < 1:
		return eris.Errorf("sampler: cores must be >= 1, got %d", c.Cores)
	}
	return nil
}

// Warmup returns the number of per-chain draws discarded as warmup.
func (c Config) Warmup() int {
	w := int(float64(c.Iter) * c.WarmupFrac)
	if w >= c.Iter {
		w = c.Iter - 1
	}
	return w
}

// HierarchyData is the input to the two-level group model: per-(metabolite,
// timepoint) replicate observations on the standardized log scale, with the
// condition's timepoint order carried explicitly.
type HierarchyData struct {
	Condition    model.ConditionID
	Timepoints   []model.TimepointID
	Observations map[model.ParamKey][]float64
}

// HierarchyPosterior holds chain-structured posterior draws for every mean
// and noise-scale parameter of one group, plus per-chain pathology counts.
type HierarchyPosterior struct {
	Means              map[model.ParamKey]model.ChainDraws
	Scales             map[model.ParamKey]model.ChainDraws
	DivergencesByChain []int
	TreedepthByChain   []int
}

// LocationScalePosterior holds posterior draws for the one-group distance
// model: a non-negative location and a positive scale.
type LocationScalePosterior struct {
	Location model.ChainDraws
	Scale    model.ChainDraws
}

// Sampler is the opaque inference capability.
type Sampler interface {
	// FitHierarchy draws from the two-level hierarchy: observation-level
	// normal likelihood, per-(metabolite,timepoint) mean with a weak normal
	// prior, per-(metabolite,timepoint) noise scale with an exponential
	// prior whose rate is a metabolite-level exponential hyperprior.
	FitHierarchy(ctx context.Context, data HierarchyData, cfg Config) (*HierarchyPosterior, error)

	// FitLocationScale draws from a one-group normal model over positive
	// observations with the location constrained non-negative.
	FitLocationScale(ctx context.Context, obs []float64, cfg Config) (*LocationScalePosterior, error)
}
