// Package cluster defines the external clustering capability consumed by the
// comparison and enrichment steps, plus an average-linkage adapter so the CLI
// works out of the box. Core components only depend on the Clusterer
// interface and the assignments it returns.
package cluster

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/omics-group/dynamics-cli/internal/model"
)

// Clusterer groups dynamic profiles into targetK clusters. Implementations
// decide distance and linkage; callers only rely on the assignment map.
type Clusterer interface {
	Cluster(profiles []model.Profile, targetK int) (map[model.MetaboliteID]int, error)
}

// Build assembles a ClusterSet for one condition from an assignment map and
// the profiles it was computed from.
func Build(cond model.ConditionID, profiles []model.Profile, assignments map[model.MetaboliteID]int) (model.ClusterSet, error) {
	byID := make(map[int]*model.Cluster)
	for _, p := range profiles {
		if p.Condition != cond {
			continue
		}
		id, ok := assignments[p.Metabolite]
		if !ok {
			return model.ClusterSet{}, eris.Errorf("cluster: metabolite %s has no assignment", p.Metabolite)
		}
		c := byID[id]
		if c == nil {
			c = &model.Cluster{
				Condition:  cond,
				ID:         id,
				Timepoints: p.Timepoints,
				Profiles:   make(map[model.MetaboliteID][]float64),
			}
			byID[id] = c
		}
		c.Members = append(c.Members, p.Metabolite)
		c.Profiles[p.Metabolite] = p.Values
	}

	var set model.ClusterSet
	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		c := byID[id]
		sort.Slice(c.Members, func(i, j int) bool { return c.Members[i] < c.Members[j] })
		set.Clusters = append(set.Clusters, *c)
	}
	return set, nil
}
