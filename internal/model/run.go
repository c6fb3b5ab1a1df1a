package model

import "time"

// RunStatus represents the current state of a pipeline run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusFitting    RunStatus = "fitting"
	RunStatusDiagnosing RunStatus = "diagnosing"
	RunStatusEstimating RunStatus = "estimating"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// Run is one recorded invocation of the fit pipeline.
type Run struct {
	ID        string     `json:"id"`
	Input     string     `json:"input"` // observation table source
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult summarizes a completed pipeline run.
type RunResult struct {
	ConditionsRequested int           `json:"conditions_requested"`
	ConditionsFitted    int           `json:"conditions_fitted"`
	ConditionsFailed    []ConditionID `json:"conditions_failed,omitempty"`
	ParametersTotal     int           `json:"parameters_total"`
	ParametersConverged int           `json:"parameters_converged"`
	Estimates           int           `json:"estimates"`
	DurationMS          int64         `json:"duration_ms"`
}
