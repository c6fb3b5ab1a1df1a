package model

// DiagnosticsRow holds convergence diagnostics for one fitted mean parameter.
type DiagnosticsRow struct {
	Condition         ConditionID  `json:"condition"`
	Metabolite        MetaboliteID `json:"metabolite"`
	Timepoint         TimepointID  `json:"timepoint"`
	RHat              float64      `json:"rhat"`
	ESS               float64      `json:"ess"`
	Divergences       int          `json:"divergences"`
	TreedepthExceeded int          `json:"treedepth_exceeded"`
	Converged         bool         `json:"converged"`
}

// GroupCount is a plot-ready (group, count) pair.
type GroupCount struct {
	Condition ConditionID `json:"condition"`
	Count     int         `json:"count"`
}

// GroupValues is a plot-ready per-group value distribution.
type GroupValues struct {
	Condition ConditionID `json:"condition"`
	Values    []float64   `json:"values"`
}

// PPCRow pairs simulated and observed values for one metabolite/timepoint,
// used for posterior-predictive plots.
type PPCRow struct {
	Condition  ConditionID  `json:"condition"`
	Metabolite MetaboliteID `json:"metabolite"`
	Timepoint  TimepointID  `json:"timepoint"`
	Simulated  []float64    `json:"simulated"`
	Observed   []float64    `json:"observed"`
}

// DiagnosticsSummary is the read-only aggregate over a set of group fits.
type DiagnosticsSummary struct {
	Rows []DiagnosticsRow `json:"rows"`

	// Plot-ready tables by group.
	DivergencesByGroup []GroupCount  `json:"divergences_by_group"`
	TreedepthByGroup   []GroupCount  `json:"treedepth_by_group"`
	RHatByGroup        []GroupValues `json:"rhat_by_group"`
	ESSByGroup         []GroupValues `json:"ess_by_group"`
}

// ConvergedCount reports how many rows passed the convergence rule.
func (s DiagnosticsSummary) ConvergedCount() int {
	var n int
	for _, r := range s.Rows {
		if r.Converged {
			n++
		}
	}
	return n
}
