package main

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/omics-group/dynamics-cli/internal/model"
	"github.com/omics-group/dynamics-cli/internal/observations"
)

// header indexes a CSV header row by column name.
type header map[string]int

func readCSV(path string) (header, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, eris.Wrapf(err, "read %s", path)
	}
	if len(records) < 2 {
		return nil, nil, eris.Errorf("%s: no data rows", path)
	}

	h := make(header, len(records[0]))
	for i, name := range records[0] {
		h[name] = i
	}
	return h, records[1:], nil
}

func (h header) col(row []string, name string) (string, error) {
	i, ok := h[name]
	if !ok {
		return "", eris.Errorf("unknown column name %q", name)
	}
	return row[i], nil
}

func (h header) colFloat(row []string, name string) (float64, error) {
	s, err := h.col(row, name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "column %q", name)
	}
	return v, nil
}

// loadObservations reads the recognized observation columns into a validated
// table. When the scaled column is absent, standardization is applied from
// the log column per (metabolite, condition).
func loadObservations(path string) (*observations.Table, error) {
	h, records, err := readCSV(path)
	if err != nil {
		return nil, eris.Wrap(err, "observations")
	}

	_, hasScaled := h["scaled"]

	rows := make([]model.Observation, 0, len(records))
	for i, rec := range records {
		o, err := parseObservation(h, rec, hasScaled)
		if err != nil {
			return nil, eris.Wrapf(err, "observations row %d", i+1)
		}
		rows = append(rows, o)
	}

	if !hasScaled {
		rows = observations.Standardize(rows)
	}
	return observations.New(rows)
}

func parseObservation(h header, rec []string, hasScaled bool) (model.Observation, error) {
	var o model.Observation

	for _, f := range []struct {
		name string
		set  func(string)
	}{
		{"metabolite", func(s string) { o.Metabolite = model.MetaboliteID(s) }},
		{"condition", func(s string) { o.Condition = model.ConditionID(s) }},
		{"time", func(s string) { o.Timepoint = model.TimepointID(s) }},
		{"replicate", func(s string) { o.Replicate = model.ReplicateID(s) }},
	} {
		s, err := h.col(rec, f.name)
		if err != nil {
			return model.Observation{}, err
		}
		f.set(s)
	}

	var err error
	if o.Raw, err = h.colFloat(rec, "raw"); err != nil {
		return model.Observation{}, err
	}
	if o.Log, err = h.colFloat(rec, "log"); err != nil {
		return model.Observation{}, err
	}
	if hasScaled {
		if o.Scaled, err = h.colFloat(rec, "scaled"); err != nil {
			return model.Observation{}, err
		}
	}
	return o, nil
}

// loadClusters reads cluster assignments plus profile vectors. dynamics is
// the ordered list of timepoint-mean column names defining the profile; the
// order is carried explicitly, never inferred from naming.
func loadClusters(path string, dynamics []string) (model.ClusterSet, error) {
	h, records, err := readCSV(path)
	if err != nil {
		return model.ClusterSet{}, eris.Wrap(err, "clusters")
	}

	tps := make([]model.TimepointID, len(dynamics))
	for i, d := range dynamics {
		tps[i] = model.TimepointID(d)
	}

	byKey := make(map[model.ClusterKey]*model.Cluster)
	var order []model.ClusterKey
	for i, rec := range records {
		condStr, err := h.col(rec, "condition")
		if err != nil {
			return model.ClusterSet{}, eris.Wrapf(err, "clusters row %d", i+1)
		}
		idStr, err := h.col(rec, "cluster")
		if err != nil {
			return model.ClusterSet{}, eris.Wrapf(err, "clusters row %d", i+1)
		}
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return model.ClusterSet{}, eris.Wrapf(err, "clusters row %d: cluster id", i+1)
		}
		metStr, err := h.col(rec, "metabolite")
		if err != nil {
			return model.ClusterSet{}, eris.Wrapf(err, "clusters row %d", i+1)
		}

		profile := make([]float64, len(dynamics))
		for j, dcol := range dynamics {
			profile[j], err = h.colFloat(rec, dcol)
			if err != nil {
				return model.ClusterSet{}, eris.Wrapf(err, "clusters row %d", i+1)
			}
		}

		key := model.ClusterKey{Condition: model.ConditionID(condStr), ID: id}
		c := byKey[key]
		if c == nil {
			c = &model.Cluster{
				Condition:  key.Condition,
				ID:         key.ID,
				Timepoints: tps,
				Profiles:   make(map[model.MetaboliteID][]float64),
			}
			byKey[key] = c
			order = append(order, key)
		}
		met := model.MetaboliteID(metStr)
		c.Members = append(c.Members, met)
		c.Profiles[met] = profile
	}

	var set model.ClusterSet
	for _, key := range order {
		set.Clusters = append(set.Clusters, *byKey[key])
	}
	return set, nil
}

// loadAnnotations reads (metabolite, category, level) rows.
func loadAnnotations(path string) (model.AnnotationTable, error) {
	h, records, err := readCSV(path)
	if err != nil {
		return nil, eris.Wrap(err, "annotations")
	}

	table := make(model.AnnotationTable)
	for i, rec := range records {
		met, err := h.col(rec, "metabolite")
		if err != nil {
			return nil, eris.Wrapf(err, "annotations row %d", i+1)
		}
		cat, err := h.col(rec, "category")
		if err != nil {
			return nil, eris.Wrapf(err, "annotations row %d", i+1)
		}
		level, err := h.col(rec, "level")
		if err != nil {
			return nil, eris.Wrapf(err, "annotations row %d", i+1)
		}
		m := model.MetaboliteID(met)
		table[m] = append(table[m], model.CategoryKey{
			Category: model.CategoryID(cat),
			Level:    model.HierarchyLevel(level),
		})
	}
	return table, nil
}

// loadBackground reads (category, level, count) rows; population is the
// total size of the reference population.
func loadBackground(path string, population int) (model.Background, error) {
	h, records, err := readCSV(path)
	if err != nil {
		return model.Background{}, eris.Wrap(err, "background")
	}
	if population <= 0 {
		return model.Background{}, eris.New("background: population size must be positive")
	}

	bg := model.Background{Total: population, Counts: make(map[model.CategoryKey]int)}
	for i, rec := range records {
		cat, err := h.col(rec, "category")
		if err != nil {
			return model.Background{}, eris.Wrapf(err, "background row %d", i+1)
		}
		level, err := h.col(rec, "level")
		if err != nil {
			return model.Background{}, eris.Wrapf(err, "background row %d", i+1)
		}
		countStr, err := h.col(rec, "count")
		if err != nil {
			return model.Background{}, eris.Wrapf(err, "background row %d", i+1)
		}
		count, err := strconv.Atoi(countStr)
		if err != nil {
			return model.Background{}, eris.Wrapf(err, "background row %d: count", i+1)
		}
		bg.Counts[model.CategoryKey{
			Category: model.CategoryID(cat),
			Level:    model.HierarchyLevel(level),
		}] = count
	}
	return bg, nil
}
