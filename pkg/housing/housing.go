// Package housing maps California housing block attributes onto the
// linear price model in [score].
package housing

import (
	_ "embed"
	"fmt"

	"github.com/mchmarny/houseval/pkg/score"
)

const (
	FeatureLongitude        = "longitude"
	FeatureLatitude         = "latitude"
	FeatureHousingMedianAge = "housing_median_age"
	FeatureTotalRooms       = "total_rooms"
	FeatureTotalBedrooms    = "total_bedrooms"
	FeaturePopulation       = "population"
	FeatureHouseholds       = "households"
	FeatureMedianIncome     = "median_income"

	// OceanProximity is the categorical attribute name.
	OceanProximity = "ocean_proximity"

	ProximityUnderHour = "<1H OCEAN"
	ProximityInland    = "INLAND"
	ProximityIsland    = "ISLAND"
	ProximityNearBay   = "NEAR BAY"
	ProximityNearOcean = "NEAR OCEAN"

	// DefaultBaseline is the ocean_proximity value with no indicator in the
	// shipped configuration.
	DefaultBaseline = ProximityUnderHour

	// DefaultModelName names the embedded coefficient table.
	DefaultModelName = "california-housing-ols"
)

var (
	// NumericFeatures lists the raw numeric inputs in model order.
	NumericFeatures = []string{
		FeatureLongitude,
		FeatureLatitude,
		FeatureHousingMedianAge,
		FeatureTotalRooms,
		FeatureTotalBedrooms,
		FeaturePopulation,
		FeatureHouseholds,
		FeatureMedianIncome,
	}

	// ProximityValues is the ocean_proximity enumeration.
	ProximityValues = []string{
		ProximityUnderHour,
		ProximityInland,
		ProximityIsland,
		ProximityNearBay,
		ProximityNearOcean,
	}

	//go:embed coefficients.yaml
	defaultCoefficients []byte
)

// DefaultTable returns the embedded coefficient table. It still declares an
// indicator for every ocean_proximity value, see TrimBaseline.
func DefaultTable() (*score.Table, error) {
	t, err := score.ParseTable(DefaultModelName, defaultCoefficients)
	if err != nil {
		return nil, fmt.Errorf("loading embedded coefficients: %w", err)
	}
	return t, nil
}

// TrimBaseline removes the baseline indicator from t when t declares one
// and returns the removed coefficient, nil when t was already trimmed.
// The fitted weight of the removed indicator is dropped, not folded into the
// intercept: estimates for the baseline value change by minus that weight.
// With DefaultBaseline this reproduces the shipped model's behavior.
func TrimBaseline(t *score.Table, baseline string) (*score.Table, *score.Coefficient, error) {
	c, err := score.NewCategory(OceanProximity, ProximityValues, baseline)
	if err != nil {
		return nil, nil, err
	}

	f := c.Feature(baseline)
	w, ok := t.Weight(f)
	if !ok {
		return t, nil, nil
	}

	trimmed, err := t.Without(f)
	if err != nil {
		return nil, nil, err
	}
	return trimmed, &score.Coefficient{Feature: f, Weight: w}, nil
}
