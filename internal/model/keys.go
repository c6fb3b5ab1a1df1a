// Package model defines the domain types shared across the dynamics pipeline.
package model

import "fmt"

// MetaboliteID identifies a measured metabolite.
type MetaboliteID string

// ConditionID identifies an experimental condition (one fitted group).
type ConditionID string

// TimepointID identifies a sampling timepoint within a condition.
type TimepointID string

// ReplicateID identifies a biological or technical replicate.
type ReplicateID string

// ParamKey addresses one mean/scale parameter inside a group fit.
type ParamKey struct {
	Metabolite MetaboliteID `json:"metabolite"`
	Timepoint  TimepointID  `json:"timepoint"`
}

func (k ParamKey) String() string {
	return fmt.Sprintf("%s@%s", k.Metabolite, k.Timepoint)
}

// TimepointPair names an ordered consecutive-timepoint transition (From -> To).
type TimepointPair struct {
	From TimepointID `json:"from"`
	To   TimepointID `json:"to"`
}

func (p TimepointPair) String() string {
	return fmt.Sprintf("%s->%s", p.From, p.To)
}
