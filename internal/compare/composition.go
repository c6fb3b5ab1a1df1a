package compare

import (
	"github.com/rotisserie/eris"

	"github.com/omics-group/dynamics-cli/internal/model"
)

// Composition computes the Jaccard similarity of metabolite membership for
// every unordered cluster pair. Pure set arithmetic, no stochastic component.
func Composition(clusters model.ClusterSet) ([]model.CompositionComparison, error) {
	sorted := clusters.Sorted()
	if len(sorted) < 2 {
		return nil, eris.New("compare: need at least two clusters")
	}

	var out []model.CompositionComparison
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			out = append(out, model.CompositionComparison{
				Pair:    model.NewClusterPair(sorted[i].Key(), sorted[j].Key()),
				Jaccard: Jaccard(sorted[i].MemberSet(), sorted[j].MemberSet()),
			})
		}
	}
	return out, nil
}

// Jaccard returns intersection over union of the two sets. Two empty sets
// are identical and compare as 1, keeping the identity property even though
// clusters never arrive empty from upstream.
func Jaccard(a, b map[model.MetaboliteID]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	var inter int
	for m := range a {
		if _, ok := b[m]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
