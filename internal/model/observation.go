package model

// Observation is one measured value of a metabolite at a timepoint in a
// condition and replicate. Raw is the instrument value, Log its log
// transform, and Scaled the per-(metabolite, condition) standardized value
// (mean 0, unit variance across time x replicate).
type Observation struct {
	Metabolite MetaboliteID `json:"metabolite"`
	Condition  ConditionID  `json:"condition"`
	Timepoint  TimepointID  `json:"timepoint"`
	Replicate  ReplicateID  `json:"replicate"`
	Raw        float64      `json:"raw"`
	Log        float64      `json:"log"`
	Scaled     float64      `json:"scaled"`
}
