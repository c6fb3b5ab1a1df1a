package model

// Trend classifies whether an HDI credibly excludes zero.
type Trend string

const (
	TrendIncrease Trend = "increase" // HDI entirely above zero
	TrendDecrease Trend = "decrease" // HDI entirely below zero
	TrendNone     Trend = "none"     // HDI straddles zero
)

// Estimate is the posterior summary for one per-timepoint mean.
type Estimate struct {
	Condition  ConditionID  `json:"condition"`
	Metabolite MetaboliteID `json:"metabolite"`
	Timepoint  TimepointID  `json:"timepoint"`
	Mean       float64      `json:"mean"`
	HDILow     float64      `json:"hdi_low"`
	HDIHigh    float64      `json:"hdi_high"`
	Trend      Trend        `json:"trend"`
}

// DifferenceEstimate summarizes the draw-wise difference between the
// posteriors of two consecutive timepoints (To minus From).
type DifferenceEstimate struct {
	Condition  ConditionID   `json:"condition"`
	Metabolite MetaboliteID  `json:"metabolite"`
	Pair       TimepointPair `json:"pair"`
	Mean       float64       `json:"mean"`
	HDILow     float64       `json:"hdi_low"`
	HDIHigh    float64       `json:"hdi_high"`
	Trend      Trend         `json:"trend"`
}

// Profile is one metabolite's dynamic profile in a condition: the vector of
// per-timepoint posterior means, in the order given by Timepoints. The
// explicit timepoint list makes length and order an invariant of the value
// rather than a naming convention.
type Profile struct {
	Condition  ConditionID   `json:"condition"`
	Metabolite MetaboliteID  `json:"metabolite"`
	Timepoints []TimepointID `json:"timepoints"`
	Values     []float64     `json:"values"`
}

// EstimateSet bundles the extractor outputs for a set of group fits.
type EstimateSet struct {
	Estimates   []Estimate           `json:"estimates"`
	Differences []DifferenceEstimate `json:"differences"`
	Profiles    []Profile            `json:"profiles"`
}
