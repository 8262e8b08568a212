package housing

import (
	"testing"

	"github.com/mchmarny/houseval/pkg/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "longitude": -122.23,
  "latitude": 37.88,
  "housing_median_age": 41,
  "total_rooms": 880,
  "total_bedrooms": 129,
  "population": 322,
  "households": 126,
  "median_income": 8.3252,
  "median_house_value": 452600,
  "ocean_proximity": "NEAR BAY"
}`

func TestDecodeInput(t *testing.T) {
	in, err := DecodeInput([]byte(sampleJSON))
	require.NoError(t, err)
	assert.Equal(t, DefaultInput(), in)
}

func TestDecodeInput_Missing(t *testing.T) {
	doc := `
longitude: -122.23
latitude: 37.88
housing_median_age: 41
total_rooms: 880
total_bedrooms: 129
population: 322
median_income: 8.3252
ocean_proximity: INLAND
`
	_, err := DecodeInput([]byte(doc))
	require.Error(t, err)

	var mfe *score.MissingFeatureError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, FeatureHouseholds, mfe.Feature)
}

func TestDecodeInput_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"list", "[1, 2]"},
		{"scalar", "hello"},
		{"syntax", "{"},
		{"wrong type", `{"longitude": "west", "latitude": 1, "housing_median_age": 1, "total_rooms": 1,
			"total_bedrooms": 1, "population": 1, "households": 1, "median_income": 1, "ocean_proximity": "INLAND"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeInput([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestDecodeInputs(t *testing.T) {
	doc := "[" + sampleJSON + "," + sampleJSON + "]"
	list, err := DecodeInputs([]byte(doc))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, DefaultInput(), list[1])

	_, err = DecodeInputs([]byte(sampleJSON))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = DecodeInputs([]byte(" "))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = DecodeInputs([]byte(`[{"longitude": 1}]`))
	assert.ErrorIs(t, err, score.ErrMissingFeature)
	assert.ErrorContains(t, err, "input 0")
}
