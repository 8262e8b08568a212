package housing

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mchmarny/houseval/pkg/score"
	"github.com/samber/lo"
)

// Encoder turns an Input into a score.Record for a specific coefficient
// table and baseline. Construction verifies the table declares exactly the
// expected features, so a record built by Encode always scores.
type Encoder struct {
	table    *score.Table
	category score.Category
}

// NewEncoder validates table against the housing schema with the given
// ocean_proximity baseline.
func NewEncoder(table *score.Table, baseline string) (*Encoder, error) {
	if table == nil {
		return nil, &score.ConfigurationError{Reason: "coefficient table required"}
	}

	c, err := score.NewCategory(OceanProximity, ProximityValues, baseline)
	if err != nil {
		return nil, err
	}
	if err := c.Check(table); err != nil {
		return nil, err
	}

	expected := append(slices.Clone(NumericFeatures), c.IndicatorFeatures()...)
	missing, extra := lo.Difference(expected, table.Features())
	if len(missing) > 0 {
		return nil, &score.ConfigurationError{
			Reason: "coefficient table is missing features: " + strings.Join(missing, ", "),
		}
	}
	if len(extra) > 0 {
		return nil, &score.ConfigurationError{
			Reason: "coefficient table has unexpected features: " + strings.Join(extra, ", "),
		}
	}

	return &Encoder{table: table, category: c}, nil
}

// Table returns the coefficient table the encoder was built for.
func (e *Encoder) Table() *score.Table {
	return e.table
}

// Baseline returns the ocean_proximity baseline.
func (e *Encoder) Baseline() string {
	return e.category.Baseline()
}

// Encode validates in and expands it into a record.
func (e *Encoder) Encode(in Input) (score.Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	r := score.Record(in.Numeric())
	if err := e.category.Expand(in.OceanProximity, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Estimate returns the predicted median house value for in.
func (e *Encoder) Estimate(in Input) (float64, error) {
	r, err := e.Encode(in)
	if err != nil {
		return 0, err
	}
	v, err := e.table.Score(r)
	if err != nil {
		return 0, fmt.Errorf("scoring input: %w", err)
	}
	if !isFinite(v) {
		return 0, fmt.Errorf("%w: estimate overflows (%v)", ErrInvalidInput, v)
	}
	return v, nil
}

// Explain returns the per-feature terms behind an estimate.
func (e *Encoder) Explain(in Input) ([]score.Contribution, error) {
	r, err := e.Encode(in)
	if err != nil {
		return nil, err
	}
	return e.table.Contributions(r)
}
