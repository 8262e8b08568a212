package score

import (
	"math"
	"strings"
)

// InterceptKey is the reserved table entry holding the model intercept.
const InterceptKey = "intercept"

// Coefficient is a single named weight.
type Coefficient struct {
	Feature string  `json:"feature" yaml:"feature"`
	Weight  float64 `json:"weight" yaml:"weight"`
}

// Contribution is the weighted term a single feature adds to a score.
type Contribution struct {
	Feature string  `json:"feature" yaml:"feature"`
	Weight  float64 `json:"weight" yaml:"weight"`
	Value   float64 `json:"value" yaml:"value"`
	Term    float64 `json:"term" yaml:"term"`
}

// Record maps feature names to input values for a single scoring request.
type Record map[string]float64

// Table is an immutable coefficient table. The zero value is not usable,
// use NewTable. A *Table is safe for concurrent use.
type Table struct {
	name      string
	intercept float64
	entries   []Coefficient
	features  []Coefficient
	index     map[string]int
}

// NewTable validates entries and builds a table from them. Entries must be
// non-empty, contain exactly one InterceptKey entry, have unique non-empty
// feature names and finite weights. Declared order is preserved.
func NewTable(name string, entries []Coefficient) (*Table, error) {
	if len(entries) == 0 {
		return nil, configErrorf("coefficient table is empty")
	}

	t := &Table{
		name:     name,
		entries:  make([]Coefficient, 0, len(entries)),
		features: make([]Coefficient, 0, len(entries)),
		index:    make(map[string]int, len(entries)),
	}

	hasIntercept := false
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		f := strings.TrimSpace(e.Feature)
		if f == "" {
			return nil, configErrorf("coefficient %d has no feature name", i)
		}
		if seen[f] {
			return nil, configErrorf("duplicate coefficient: %q", f)
		}
		seen[f] = true

		if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			return nil, configErrorf("coefficient %q is not a finite number", f)
		}

		c := Coefficient{Feature: f, Weight: e.Weight}
		t.entries = append(t.entries, c)

		if f == InterceptKey {
			hasIntercept = true
			t.intercept = e.Weight
			continue
		}

		t.index[f] = len(t.features)
		t.features = append(t.features, c)
	}

	if !hasIntercept {
		return nil, configErrorf("coefficient table has no %q entry", InterceptKey)
	}

	return t, nil
}

// Name returns the model name the table was loaded with.
func (t *Table) Name() string {
	return t.name
}

// Intercept returns the intercept term.
func (t *Table) Intercept() float64 {
	return t.intercept
}

// Len returns the number of features, not counting the intercept.
func (t *Table) Len() int {
	return len(t.features)
}

// Features returns feature names in declared order, without the intercept.
func (t *Table) Features() []string {
	list := make([]string, len(t.features))
	for i, c := range t.features {
		list[i] = c.Feature
	}
	return list
}

// Entries returns every coefficient, intercept included, in declared order.
func (t *Table) Entries() []Coefficient {
	list := make([]Coefficient, len(t.entries))
	copy(list, t.entries)
	return list
}

// Weight returns the weight of a feature and whether the table declares it.
func (t *Table) Weight(feature string) (float64, bool) {
	if feature == InterceptKey {
		return t.intercept, true
	}
	i, ok := t.index[feature]
	if !ok {
		return 0, false
	}
	return t.features[i].Weight, true
}

// Has reports whether the table declares the feature.
func (t *Table) Has(feature string) bool {
	_, ok := t.Weight(feature)
	return ok
}

// Without returns a copy of the table with the listed features removed.
// The intercept can not be removed.
func (t *Table) Without(features ...string) (*Table, error) {
	drop := make(map[string]bool, len(features))
	for _, f := range features {
		if f == InterceptKey {
			return nil, configErrorf("can not remove %q from coefficient table", InterceptKey)
		}
		drop[f] = true
	}

	kept := make([]Coefficient, 0, len(t.entries))
	for _, c := range t.entries {
		if !drop[c.Feature] {
			kept = append(kept, c)
		}
	}
	return NewTable(t.name, kept)
}

// Score returns the intercept plus the weighted sum of the record values,
// summed in declared order. Every table feature must be present in the
// record; keys the table does not declare are ignored.
func (t *Table) Score(r Record) (float64, error) {
	if err := t.check(r); err != nil {
		return 0, err
	}

	sum := t.intercept
	for _, c := range t.features {
		sum += c.Weight * r[c.Feature]
	}
	return sum, nil
}

// Contributions returns the weighted term of each feature in declared order.
func (t *Table) Contributions(r Record) ([]Contribution, error) {
	if err := t.check(r); err != nil {
		return nil, err
	}

	list := make([]Contribution, len(t.features))
	for i, c := range t.features {
		v := r[c.Feature]
		list[i] = Contribution{
			Feature: c.Feature,
			Weight:  c.Weight,
			Value:   v,
			Term:    c.Weight * v,
		}
	}
	return list, nil
}

func (t *Table) check(r Record) error {
	for _, c := range t.features {
		if _, ok := r[c.Feature]; !ok {
			return &MissingFeatureError{Feature: c.Feature}
		}
	}
	return nil
}

// Score computes the linear prediction of record under table.
func Score(r Record, t *Table) (float64, error) {
	if t == nil {
		return 0, configErrorf("coefficient table required")
	}
	return t.Score(r)
}
