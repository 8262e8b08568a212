package housing

import (
	"math"
	"testing"

	"github.com/mchmarny/houseval/pkg/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultEncoder(t *testing.T, baseline string) *Encoder {
	t.Helper()
	tbl, err := DefaultTable()
	require.NoError(t, err)
	tbl, _, err = TrimBaseline(tbl, baseline)
	require.NoError(t, err)
	enc, err := NewEncoder(tbl, baseline)
	require.NoError(t, err)
	return enc
}

func TestDefaultTable(t *testing.T) {
	tbl, err := DefaultTable()
	require.NoError(t, err)
	assert.Equal(t, DefaultModelName, tbl.Name())
	assert.Equal(t, 13, tbl.Len())
	assert.Equal(t, "ocean_proximity_ISLAND", tbl.Features()[0])
	assert.InEpsilon(t, -2247165.771408345, tbl.Intercept(), 1e-12)
}

func TestTrimBaseline(t *testing.T) {
	tbl, err := DefaultTable()
	require.NoError(t, err)

	trimmed, dropped, err := TrimBaseline(tbl, ProximityInland)
	require.NoError(t, err)
	require.NotNil(t, dropped)
	assert.Equal(t, "ocean_proximity_INLAND", dropped.Feature)
	assert.InEpsilon(t, -62072.64491968309, dropped.Weight, 1e-12)
	assert.False(t, trimmed.Has("ocean_proximity_INLAND"))
	assert.Equal(t, tbl.Len()-1, trimmed.Len())
	assert.Equal(t, tbl.Intercept(), trimmed.Intercept())

	again, dropped, err := TrimBaseline(trimmed, ProximityInland)
	require.NoError(t, err)
	assert.Nil(t, dropped)
	assert.Same(t, trimmed, again)

	_, _, err = TrimBaseline(tbl, "MARS")
	assert.ErrorIs(t, err, score.ErrConfiguration)
}

func TestTrimBaseline_ChangesBaselineEstimates(t *testing.T) {
	in := DefaultInput()
	in.OceanProximity = ProximityInland

	def, err := defaultEncoder(t, DefaultBaseline).Estimate(in)
	require.NoError(t, err)
	inland, err := defaultEncoder(t, ProximityInland).Estimate(in)
	require.NoError(t, err)

	// the INLAND weight is dropped, not absorbed into the intercept
	assert.InDelta(t, 62072.64491968309, inland-def, 1e-6)

	in.OceanProximity = ProximityNearBay
	def, err = defaultEncoder(t, DefaultBaseline).Estimate(in)
	require.NoError(t, err)
	nearBay, err := defaultEncoder(t, ProximityInland).Estimate(in)
	require.NoError(t, err)
	assert.InDelta(t, def, nearBay, 1e-6)
}

func TestNewEncoder_Untrimmed(t *testing.T) {
	tbl, err := DefaultTable()
	require.NoError(t, err)

	_, err = NewEncoder(tbl, DefaultBaseline)
	assert.ErrorIs(t, err, score.ErrConfiguration)
}

func TestNewEncoder_Schema(t *testing.T) {
	base := func() []score.Coefficient {
		list := []score.Coefficient{}
		for _, f := range NumericFeatures {
			list = append(list, score.Coefficient{Feature: f, Weight: 1})
		}
		for _, v := range ProximityValues[1:] {
			list = append(list, score.Coefficient{Feature: OceanProximity + "_" + v, Weight: 1})
		}
		return append(list, score.Coefficient{Feature: score.InterceptKey, Weight: 0})
	}

	tbl, err := score.NewTable("ok", base())
	require.NoError(t, err)
	_, err = NewEncoder(tbl, ProximityUnderHour)
	assert.NoError(t, err)

	tbl, err = score.NewTable("extra", append(base(), score.Coefficient{Feature: "median_house_value", Weight: 1}))
	require.NoError(t, err)
	_, err = NewEncoder(tbl, ProximityUnderHour)
	assert.ErrorIs(t, err, score.ErrConfiguration)
	assert.ErrorContains(t, err, "median_house_value")

	tbl, err = score.NewTable("missing", base()[1:])
	require.NoError(t, err)
	_, err = NewEncoder(tbl, ProximityUnderHour)
	assert.ErrorIs(t, err, score.ErrConfiguration)
	assert.ErrorContains(t, err, FeatureLongitude)

	_, err = NewEncoder(nil, ProximityUnderHour)
	assert.ErrorIs(t, err, score.ErrConfiguration)

	_, err = NewEncoder(tbl, "")
	assert.ErrorIs(t, err, score.ErrConfiguration)
}

func TestEncoder_Encode(t *testing.T) {
	enc := defaultEncoder(t, ProximityUnderHour)
	assert.Equal(t, ProximityUnderHour, enc.Baseline())

	r, err := enc.Encode(DefaultInput())
	require.NoError(t, err)
	assert.Len(t, r, len(NumericFeatures)+len(ProximityValues)-1)
	assert.Equal(t, 1.0, r["ocean_proximity_NEAR BAY"])
	assert.Equal(t, 0.0, r["ocean_proximity_INLAND"])
	assert.Equal(t, 8.3252, r[FeatureMedianIncome])
	assert.NotContains(t, r, "ocean_proximity_<1H OCEAN")
}

func TestEncoder_Estimate(t *testing.T) {
	enc := defaultEncoder(t, ProximityUnderHour)

	got, err := enc.Estimate(DefaultInput())
	require.NoError(t, err)
	assert.InEpsilon(t, 410542.8963352735, got, 1e-9)

	in := DefaultInput()
	in.OceanProximity = ProximityUnderHour
	got, err = enc.Estimate(in)
	require.NoError(t, err)
	assert.InEpsilon(t, 437285.2926848512, got, 1e-9)
}

func TestEncoder_BaselineIsIntercept(t *testing.T) {
	for _, b := range ProximityValues {
		t.Run(b, func(t *testing.T) {
			enc := defaultEncoder(t, b)
			got, err := enc.Estimate(Input{OceanProximity: b})
			require.NoError(t, err)
			assert.Equal(t, enc.Table().Intercept(), got)
		})
	}
}

func TestEncoder_UnknownCategory(t *testing.T) {
	enc := defaultEncoder(t, ProximityUnderHour)

	in := DefaultInput()
	in.OceanProximity = "NEAR LAKE"
	_, err := enc.Estimate(in)
	assert.ErrorIs(t, err, score.ErrUnknownCategory)
}

func TestEncoder_InvalidInput(t *testing.T) {
	enc := defaultEncoder(t, ProximityUnderHour)

	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"longitude", func(in *Input) { in.Longitude = -200 }},
		{"latitude", func(in *Input) { in.Latitude = 91 }},
		{"rooms", func(in *Input) { in.TotalRooms = -1 }},
		{"income", func(in *Input) { in.MedianIncome = -0.5 }},
		{"no proximity", func(in *Input) { in.OceanProximity = "" }},
		{"infinite rooms", func(in *Input) { in.TotalRooms = math.Inf(1) }},
		{"negative infinite longitude", func(in *Input) { in.Longitude = math.Inf(-1) }},
		{"nan income", func(in *Input) { in.MedianIncome = math.NaN() }},
		{"overflowing sum", func(in *Input) { in.TotalBedrooms = 1e307 }},
		{"overflowing term", func(in *Input) { in.TotalRooms = math.MaxFloat64 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultInput()
			tt.mutate(&in)
			_, err := enc.Estimate(in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestEncoder_Explain(t *testing.T) {
	enc := defaultEncoder(t, ProximityUnderHour)

	list, err := enc.Explain(DefaultInput())
	require.NoError(t, err)
	assert.Len(t, list, enc.Table().Len())

	sum := enc.Table().Intercept()
	for _, c := range list {
		sum += c.Term
	}
	want, err := enc.Estimate(DefaultInput())
	require.NoError(t, err)
	assert.Equal(t, want, sum)
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{452600, "$452,600.00"},
		{410542.8963352735, "$410,542.90"},
		{0, "$0.00"},
		{999.999, "$1,000.00"},
		{-1200.5, "-$1,200.50"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice(tt.in))
		})
	}
}
