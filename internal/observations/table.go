// Package observations provides the validated in-memory observation table
// consumed by the model fitter.
package observations

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"

	"github.com/omics-group/dynamics-cli/internal/model"
)

// Table is a validated, immutable observation table. Construct it with New;
// all accessors iterate in sorted key order.
type Table struct {
	rows []model.Observation

	conditions []model.ConditionID
	// timepoints per condition, sorted; identical for every metabolite in the
	// condition (rectangularity invariant).
	timepoints  map[model.ConditionID][]model.TimepointID
	metabolites map[model.ConditionID][]model.MetaboliteID
	// scaled values indexed by condition then param key, replicate order.
	scaled map[model.ConditionID]map[model.ParamKey][]float64
}

// New validates rows and builds a Table. Validation errors are fatal: no
// partially valid table is ever returned.
func New(rows []model.Observation) (*Table, error) {
	if len(rows) == 0 {
		return nil, eris.New("observations: empty table")
	}

	for i, r := range rows {
		if r.Metabolite == "" || r.Condition == "" || r.Timepoint == "" || r.Replicate == "" {
			return nil, eris.Errorf("observations: row %d has an empty identifier", i)
		}
		for _, v := range []float64{r.Raw, r.Log, r.Scaled} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, eris.Errorf("observations: row %d (%s, %s, %s) has a non-finite value",
					i, r.Metabolite, r.Condition, r.Timepoint)
			}
		}
	}

	t := &Table{
		rows:        append([]model.Observation(nil), rows...),
		timepoints:  make(map[model.ConditionID][]model.TimepointID),
		metabolites: make(map[model.ConditionID][]model.MetaboliteID),
		scaled:      make(map[model.ConditionID]map[model.ParamKey][]float64),
	}

	// Index by condition.
	type metKey struct {
		cond model.ConditionID
		met  model.MetaboliteID
	}
	tpByMet := make(map[metKey]map[model.TimepointID]struct{})
	condSet := make(map[model.ConditionID]struct{})

	for _, r := range t.rows {
		condSet[r.Condition] = struct{}{}
		mk := metKey{r.Condition, r.Metabolite}
		if tpByMet[mk] == nil {
			tpByMet[mk] = make(map[model.TimepointID]struct{})
		}
		tpByMet[mk][r.Timepoint] = struct{}{}

		if t.scaled[r.Condition] == nil {
			t.scaled[r.Condition] = make(map[model.ParamKey][]float64)
		}
		pk := model.ParamKey{Metabolite: r.Metabolite, Timepoint: r.Timepoint}
		t.scaled[r.Condition][pk] = append(t.scaled[r.Condition][pk], r.Scaled)
	}

	for c := range condSet {
		t.conditions = append(t.conditions, c)
	}
	sort.Slice(t.conditions, func(i, j int) bool { return t.conditions[i] < t.conditions[j] })

	// Rectangularity: within a condition, every metabolite carries the same
	// timepoint set. A missing combination is a validation error, never a
	// silent drop.
	for _, c := range t.conditions {
		var mets []model.MetaboliteID
		var ref map[model.TimepointID]struct{}
		var refMet model.MetaboliteID
		for mk, tps := range tpByMet {
			if mk.cond != c {
				continue
			}
			mets = append(mets, mk.met)
			if ref == nil {
				ref, refMet = tps, mk.met
			}
		}
		sort.Slice(mets, func(i, j int) bool { return mets[i] < mets[j] })
		for _, m := range mets {
			tps := tpByMet[metKey{c, m}]
			if len(tps) != len(ref) {
				return nil, eris.Errorf("observations: condition %s: metabolite %s has %d timepoints, %s has %d",
					c, m, len(tps), refMet, len(ref))
			}
			for tp := range ref {
				if _, ok := tps[tp]; !ok {
					return nil, eris.Errorf("observations: condition %s: metabolite %s is missing timepoint %s",
						c, m, tp)
				}
			}
		}
		t.metabolites[c] = mets

		var tps []model.TimepointID
		for tp := range ref {
			tps = append(tps, tp)
		}
		sort.Slice(tps, func(i, j int) bool { return tps[i] < tps[j] })
		t.timepoints[c] = tps
	}

	return t, nil
}

// Conditions returns the sorted condition identifiers.
func (t *Table) Conditions() []model.ConditionID {
	return append([]model.ConditionID(nil), t.conditions...)
}

// Timepoints returns the sorted timepoint identifiers of a condition.
func (t *Table) Timepoints(c model.ConditionID) []model.TimepointID {
	return append([]model.TimepointID(nil), t.timepoints[c]...)
}

// Metabolites returns the sorted metabolite identifiers of a condition.
func (t *Table) Metabolites(c model.ConditionID) []model.MetaboliteID {
	return append([]model.MetaboliteID(nil), t.metabolites[c]...)
}

// Scaled returns the standardized replicate values for one condition,
// metabolite and timepoint.
func (t *Table) Scaled(c model.ConditionID, k model.ParamKey) []float64 {
	return append([]float64(nil), t.scaled[c][k]...)
}

// Rows returns a copy of all observation rows.
func (t *Table) Rows() []model.Observation {
	return append([]model.Observation(nil), t.rows...)
}

// Len reports the number of observation rows.
func (t *Table) Len() int { return len(t.rows) }

// Standardize fills the Scaled field of rows from their Log values, per
// (metabolite, condition): mean 0, unit variance across time x replicate.
// Constant series (zero variance) are centered only.
func Standardize(rows []model.Observation) []model.Observation {
	type groupKey struct {
		met  model.MetaboliteID
		cond model.ConditionID
	}
	groups := make(map[groupKey][]int)
	for i, r := range rows {
		k := groupKey{r.Metabolite, r.Condition}
		groups[k] = append(groups[k], i)
	}

	out := append([]model.Observation(nil), rows...)
	for _, idx := range groups {
		vals := make([]float64, len(idx))
		for i, j := range idx {
			vals[i] = rows[j].Log
		}
		mean, sd := stat.MeanStdDev(vals, nil)
		for _, j := range idx {
			if sd > 0 && !math.IsNaN(sd) {
				out[j].Scaled = (rows[j].Log - mean) / sd
			} else {
				out[j].Scaled = rows[j].Log - mean
			}
		}
	}
	return out
}
