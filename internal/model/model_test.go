package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChainDraws(t *testing.T) {
	t.Parallel()

	draws := ChainDraws{{1, 2}, {3, 4, 5}}
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, draws.Flatten())
	assert.Equal(t, 5, draws.Draws())

	var empty ChainDraws
	assert.Empty(t, empty.Flatten())
	assert.Zero(t, empty.Draws())
}

func TestSamplerMetaCounts(t *testing.T) {
	t.Parallel()

	meta := SamplerMeta{
		DivergencesByChain: []int{0, 2, 1},
		TreedepthByChain:   []int{0, 0, 3},
	}
	assert.Equal(t, 3, meta.Divergences())
	assert.Equal(t, 3, meta.TreedepthExceeded())
}

func TestGroupFitMetabolites(t *testing.T) {
	t.Parallel()

	fit := &GroupFit{
		Means: map[ParamKey]ChainDraws{
			{Metabolite: "gly", Timepoint: "t1"}: nil,
			{Metabolite: "ala", Timepoint: "t1"}: nil,
			{Metabolite: "ala", Timepoint: "t2"}: nil,
		},
	}
	assert.Equal(t, []MetaboliteID{"ala", "gly"}, fit.Metabolites())
}

func TestNewClusterPairCanonical(t *testing.T) {
	t.Parallel()

	a := ClusterKey{Condition: "ctrl", ID: 2}
	b := ClusterKey{Condition: "ctrl", ID: 1}
	pair := NewClusterPair(a, b)
	assert.Equal(t, b, pair.A)
	assert.Equal(t, a, pair.B)
	assert.Equal(t, pair, NewClusterPair(b, a))

	c := ClusterKey{Condition: "heat", ID: 1}
	pair = NewClusterPair(c, b)
	assert.Equal(t, b, pair.A)
	assert.Equal(t, c, pair.B)
}

func TestClusterSetSorted(t *testing.T) {
	t.Parallel()

	set := ClusterSet{Clusters: []Cluster{
		{Condition: "heat", ID: 1},
		{Condition: "ctrl", ID: 2},
		{Condition: "ctrl", ID: 1},
	}}
	sorted := set.Sorted()
	assert.Equal(t, ClusterKey{Condition: "ctrl", ID: 1}, sorted[0].Key())
	assert.Equal(t, ClusterKey{Condition: "ctrl", ID: 2}, sorted[1].Key())
	assert.Equal(t, ClusterKey{Condition: "heat", ID: 1}, sorted[2].Key())

	// Sorted copies; the original order is untouched.
	assert.Equal(t, ClusterKey{Condition: "heat", ID: 1}, set.Clusters[0].Key())
}

func TestParamKeyString(t *testing.T) {
	t.Parallel()

	k := ParamKey{Metabolite: "ala", Timepoint: "t3"}
	assert.Equal(t, "ala@t3", k.String())

	p := TimepointPair{From: "t1", To: "t2"}
	assert.Equal(t, "t1->t2", p.String())
}
