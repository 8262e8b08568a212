package score

import (
	"slices"
	"strings"
)

// Category is a categorical attribute with a fixed enumeration of values.
// Every value except the baseline is one-hot encoded as its own indicator
// feature; the baseline effect is folded into the intercept.
type Category struct {
	name     string
	values   []string
	baseline string
}

// NewCategory validates and creates a category. The baseline must be one of
// the values and is never inferred.
func NewCategory(name string, values []string, baseline string) (Category, error) {
	if strings.TrimSpace(name) == "" {
		return Category{}, configErrorf("category name required")
	}
	if len(values) == 0 {
		return Category{}, configErrorf("category %s has no values", name)
	}

	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v == "" {
			return Category{}, configErrorf("category %s has an empty value", name)
		}
		if seen[v] {
			return Category{}, configErrorf("category %s has duplicate value: %q", name, v)
		}
		seen[v] = true
	}

	if baseline == "" {
		return Category{}, configErrorf("category %s baseline required", name)
	}
	if !seen[baseline] {
		return Category{}, configErrorf("category %s baseline %q is not one of: %s",
			name, baseline, strings.Join(values, ", "))
	}

	return Category{
		name:     name,
		values:   slices.Clone(values),
		baseline: baseline,
	}, nil
}

func (c Category) Name() string {
	return c.name
}

func (c Category) Baseline() string {
	return c.baseline
}

// Values returns the enumeration in declared order.
func (c Category) Values() []string {
	return slices.Clone(c.values)
}

// Contains reports whether v is part of the enumeration.
func (c Category) Contains(v string) bool {
	return slices.Contains(c.values, v)
}

// Feature returns the indicator feature name for a value, e.g.
// ocean_proximity_INLAND.
func (c Category) Feature(v string) string {
	return c.name + "_" + v
}

// IndicatorFeatures returns the indicator names of every non-baseline value.
func (c Category) IndicatorFeatures() []string {
	list := make([]string, 0, len(c.values)-1)
	for _, v := range c.values {
		if v != c.baseline {
			list = append(list, c.Feature(v))
		}
	}
	return list
}

// Expand writes the one-hot indicators of v into r: 1 for the matching
// value, 0 for every other non-baseline value.
func (c Category) Expand(v string, r Record) error {
	if !c.Contains(v) {
		return &UnknownCategoryError{Category: c.name, Value: v, Known: c.Values()}
	}
	for _, val := range c.values {
		if val == c.baseline {
			continue
		}
		x := 0.0
		if val == v {
			x = 1.0
		}
		r[c.Feature(val)] = x
	}
	return nil
}

// Check verifies t declares an indicator for every non-baseline value and
// none for the baseline.
func (c Category) Check(t *Table) error {
	if t == nil {
		return configErrorf("coefficient table required")
	}
	if b := c.Feature(c.baseline); t.Has(b) {
		return configErrorf("baseline %s must not have a coefficient, found %q", c.name, b)
	}
	for _, f := range c.IndicatorFeatures() {
		if !t.Has(f) {
			return configErrorf("coefficient table has no indicator %q", f)
		}
	}
	return nil
}
