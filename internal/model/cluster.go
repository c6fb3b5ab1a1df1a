package model

import "sort"

// Cluster is one discovered grouping of metabolites within a condition,
// produced by an external clustering capability. Profiles holds each member's
// dynamic profile vector in the order given by Timepoints.
type Cluster struct {
	Condition  ConditionID                `json:"condition"`
	ID         int                        `json:"id"`
	Members    []MetaboliteID             `json:"members"`
	Timepoints []TimepointID              `json:"timepoints"`
	Profiles   map[MetaboliteID][]float64 `json:"profiles"`
}

// Key identifies a cluster by (condition, cluster id).
type ClusterKey struct {
	Condition ConditionID `json:"condition"`
	ID        int         `json:"id"`
}

// Key returns the cluster's identifying key.
func (c Cluster) Key() ClusterKey {
	return ClusterKey{Condition: c.Condition, ID: c.ID}
}

// MemberSet returns the membership as a set.
func (c Cluster) MemberSet() map[MetaboliteID]struct{} {
	set := make(map[MetaboliteID]struct{}, len(c.Members))
	for _, m := range c.Members {
		set[m] = struct{}{}
	}
	return set
}

// ClusterSet holds clusterings across one or more conditions with a defined
// iteration order (condition, then cluster id).
type ClusterSet struct {
	Clusters []Cluster `json:"clusters"`
}

// Sorted returns the clusters ordered by (condition, id).
func (s ClusterSet) Sorted() []Cluster {
	out := make([]Cluster, len(s.Clusters))
	copy(out, s.Clusters)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Condition != out[j].Condition {
			return out[i].Condition < out[j].Condition
		}
		return out[i].ID < out[j].ID
	})
	return out
}
