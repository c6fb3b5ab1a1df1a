package model

// ClusterPair is an unordered pair of clusters; A sorts before B by
// (condition, id) so the pair key is canonical.
type ClusterPair struct {
	A ClusterKey `json:"a"`
	B ClusterKey `json:"b"`
}

// NewClusterPair builds the canonical unordered pair for two cluster keys.
func NewClusterPair(a, b ClusterKey) ClusterPair {
	if b.Condition < a.Condition || (b.Condition == a.Condition && b.ID < a.ID) {
		a, b = b, a
	}
	return ClusterPair{A: a, B: b}
}

// DynamicsComparison summarizes the typical pairwise Euclidean distance
// between two clusters' member profiles: posterior mean and standard
// deviation of the distance model's location parameter. Available is false
// when the pair had no distance observations and was skipped.
type DynamicsComparison struct {
	Pair          ClusterPair `json:"pair"`
	Distances     int         `json:"distances"` // size of the cross-member distance set
	PosteriorMean float64     `json:"posterior_mean"`
	PosteriorSD   float64     `json:"posterior_sd"`
	Available     bool        `json:"available"`
}

// CompositionComparison is the Jaccard similarity of two clusters' member
// sets; a point statistic with no uncertainty model.
type CompositionComparison struct {
	Pair    ClusterPair `json:"pair"`
	Jaccard float64     `json:"jaccard"`
}
