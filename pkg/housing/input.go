package housing

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput is returned when an Input fails validation.
var ErrInvalidInput = errors.New("invalid input")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// rejects NaN and +/-Inf, which pass the range tags
	if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		return isFinite(fl.Field().Float())
	}); err != nil {
		panic(err)
	}
	return v
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Input is a single block of houses to estimate the price for.
type Input struct {
	Longitude        float64 `json:"longitude" yaml:"longitude" validate:"finite,gte=-180,lte=180"`
	Latitude         float64 `json:"latitude" yaml:"latitude" validate:"finite,gte=-90,lte=90"`
	HousingMedianAge float64 `json:"housing_median_age" yaml:"housing_median_age" validate:"finite,gte=0"`
	TotalRooms       float64 `json:"total_rooms" yaml:"total_rooms" validate:"finite,gte=0"`
	TotalBedrooms    float64 `json:"total_bedrooms" yaml:"total_bedrooms" validate:"finite,gte=0"`
	Population       float64 `json:"population" yaml:"population" validate:"finite,gte=0"`
	Households       float64 `json:"households" yaml:"households" validate:"finite,gte=0"`
	MedianIncome     float64 `json:"median_income" yaml:"median_income" validate:"finite,gte=0"`
	OceanProximity   string  `json:"ocean_proximity" yaml:"ocean_proximity" validate:"required"`
}

// DefaultInput returns the sample block used as form defaults.
func DefaultInput() Input {
	return Input{
		Longitude:        -122.23,
		Latitude:         37.88,
		HousingMedianAge: 41,
		TotalRooms:       880,
		TotalBedrooms:    129,
		Population:       322,
		Households:       126,
		MedianIncome:     8.3252,
		OceanProximity:   ProximityNearBay,
	}
}

// Validate checks value ranges. The ocean_proximity enumeration is checked
// by the Encoder.
func (in Input) Validate() error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// Numeric returns the raw numeric values keyed by feature name.
func (in Input) Numeric() map[string]float64 {
	return map[string]float64{
		FeatureLongitude:        in.Longitude,
		FeatureLatitude:         in.Latitude,
		FeatureHousingMedianAge: in.HousingMedianAge,
		FeatureTotalRooms:       in.TotalRooms,
		FeatureTotalBedrooms:    in.TotalBedrooms,
		FeaturePopulation:       in.Population,
		FeatureHouseholds:       in.Households,
		FeatureMedianIncome:     in.MedianIncome,
	}
}
