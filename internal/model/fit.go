package model

import "sort"

// ChainDraws holds posterior draws for one parameter, one slice per chain.
// Draw order within a chain is the sampler's iteration order, so draws at the
// same index across two parameters belong to the same joint draw.
type ChainDraws [][]float64

// Flatten concatenates all chains into a single draw sequence.
func (c ChainDraws) Flatten() []float64 {
	var n int
	for _, ch := range c {
		n += len(ch)
	}
	out := make([]float64, 0, n)
	for _, ch := range c {
		out = append(out, ch...)
	}
	return out
}

// Draws reports the total number of retained draws across chains.
func (c ChainDraws) Draws() int {
	var n int
	for _, ch := range c {
		n += len(ch)
	}
	return n
}

// SamplerMeta records the sampler run shape and per-chain pathology counts
// for one group fit.
type SamplerMeta struct {
	Chains             int   `json:"chains"`
	Iterations         int   `json:"iterations"` // total draws per chain, warmup included
	Warmup             int   `json:"warmup"`     // discarded draws per chain
	DivergencesByChain []int `json:"divergences_by_chain"`
	TreedepthByChain   []int `json:"treedepth_by_chain"`
}

// Divergences sums divergence counts across chains.
func (m SamplerMeta) Divergences() int {
	var n int
	for _, d := range m.DivergencesByChain {
		n += d
	}
	return n
}

// TreedepthExceeded sums max-treedepth-hit counts across chains.
func (m SamplerMeta) TreedepthExceeded() int {
	var n int
	for _, d := range m.TreedepthByChain {
		n += d
	}
	return n
}

// GroupFit is the posterior-sample bundle for one condition. It is created by
// a fit call and immutable thereafter; diagnostics and estimate extraction
// only read it.
type GroupFit struct {
	Condition  ConditionID   `json:"condition"`
	Timepoints []TimepointID `json:"timepoints"` // defined profile order

	// Means and Scales hold posterior draws for the per-(metabolite,
	// timepoint) mean and noise-scale parameters.
	Means  map[ParamKey]ChainDraws `json:"-"`
	Scales map[ParamKey]ChainDraws `json:"-"`

	// RHat and ESS are per-mean-parameter convergence diagnostics computed
	// when the fit is assembled.
	RHat map[ParamKey]float64 `json:"-"`
	ESS  map[ParamKey]float64 `json:"-"`

	Meta SamplerMeta `json:"meta"`
}

// Metabolites returns the sorted distinct metabolites covered by the fit.
func (f *GroupFit) Metabolites() []MetaboliteID {
	seen := make(map[MetaboliteID]struct{}, len(f.Means))
	var out []MetaboliteID
	for k := range f.Means {
		if _, ok := seen[k.Metabolite]; !ok {
			seen[k.Metabolite] = struct{}{}
			out = append(out, k.Metabolite)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
