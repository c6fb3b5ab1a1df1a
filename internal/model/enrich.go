package model

// CategoryID identifies a functional annotation category.
type CategoryID string

// HierarchyLevel selects which level of the annotation hierarchy is tested.
// Categories at different levels are distinct tests, not nested ones.
type HierarchyLevel string

const (
	MiddleHierarchy HierarchyLevel = "middle_hierarchy"
	LowerHierarchy  HierarchyLevel = "lower_hierarchy"
)

// CategoryKey addresses a category at a specific hierarchy level.
type CategoryKey struct {
	Category CategoryID     `json:"category"`
	Level    HierarchyLevel `json:"level"`
}

// AnnotationTable maps each metabolite to the categories it is annotated to.
type AnnotationTable map[MetaboliteID][]CategoryKey

// Categories returns the annotation keys for a metabolite at one level.
func (t AnnotationTable) Categories(m MetaboliteID, level HierarchyLevel) []CategoryKey {
	var out []CategoryKey
	for _, k := range t[m] {
		if k.Level == level {
			out = append(out, k)
		}
	}
	return out
}

// Background describes the reference population: the total metabolite count
// and, per category, the number of population metabolites annotated to it.
type Background struct {
	Total  int                 `json:"total"`
	Counts map[CategoryKey]int `json:"counts"`
}

// EnrichmentStatus is the three-valued over-representation call.
type EnrichmentStatus string

const (
	OverRepresented  EnrichmentStatus = "over_represented"
	UnderRepresented EnrichmentStatus = "under_represented"
	NotSignificant   EnrichmentStatus = "not_significant"
)

// EnrichmentResult quantifies one cluster x category test under the
// hypergeometric null.
type EnrichmentResult struct {
	Cluster      ClusterKey       `json:"cluster"`
	Category     CategoryKey      `json:"category"`
	Observed     int              `json:"observed"`
	Expected     float64          `json:"expected"`
	LogRatio     float64          `json:"log_ratio"`
	IntervalLow  float64          `json:"interval_low"`
	IntervalHigh float64          `json:"interval_high"`
	Status       EnrichmentStatus `json:"status"`
}
