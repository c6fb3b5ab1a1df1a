package cluster

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/omics-group/dynamics-cli/internal/model"
)

// AverageLinkage is the default Clusterer: agglomerative hierarchical
// clustering with Euclidean distance and average linkage, cut at targetK.
type AverageLinkage struct{}

// Cluster implements Clusterer.
func (AverageLinkage) Cluster(profiles []model.Profile, targetK int) (map[model.MetaboliteID]int, error) {
	n := len(profiles)
	if n == 0 {
		return nil, eris.New("cluster: no profiles")
	}
	if targetK < 1 || targetK > n {
		return nil, eris.Errorf("cluster: target k %d out of range for %d profiles", targetK, n)
	}
	dim := len(profiles[0].Values)
	for _, p := range profiles {
		if len(p.Values) != dim {
			return nil, eris.Errorf("cluster: profile %s has %d values, want %d", p.Metabolite, len(p.Values), dim)
		}
	}

	// Pairwise distance matrix.
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := euclidean(profiles[i].Values, profiles[j].Values)
			dist[i][j], dist[j][i] = d, d
		}
	}

	// groups holds the active cluster memberships as profile indices.
	groups := make([][]int, n)
	for i := range groups {
		groups[i] = []int{i}
	}

	// Merge the closest pair (average linkage) until targetK remain.
	for len(groups) > targetK {
		bestI, bestJ, best := -1, -1, math.Inf(1)
		for i := 0; i < len(groups); i++ {
			for j := i + 1; j < len(groups); j++ {
				d := averageLink(groups[i], groups[j], dist)
				if d < best {
					best, bestI, bestJ = d, i, j
				}
			}
		}
		groups[bestI] = append(groups[bestI], groups[bestJ]...)
		groups = append(groups[:bestJ], groups[bestJ+1:]...)
	}

	out := make(map[model.MetaboliteID]int, n)
	for id, g := range groups {
		for _, idx := range g {
			out[profiles[idx].Metabolite] = id + 1
		}
	}
	return out, nil
}

func averageLink(a, b []int, dist [][]float64) float64 {
	var sum float64
	for _, i := range a {
		for _, j := range b {
			sum += dist[i][j]
		}
	}
	return sum / float64(len(a)*len(b))
}

func euclidean(a, b []float64) float64 {
	var ss float64
	for i := range a {
		d := a[i] - b[i]
		ss += d * d
	}
	return math.Sqrt(ss)
}
