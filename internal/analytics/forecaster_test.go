package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callpulse/internal/dataprocessing"
	"callpulse/pkg/contracts/domain"
)

func TestForecastRegression(t *testing.T) {
	f := NewForecaster(testHorizon())

	series := []domain.MonthlyCount{
		{Month: "Aug", Count: 100},
		{Month: "Sep", Count: 120},
		{Month: "Oct", Count: 150},
	}

	got := f.Forecast(series)
	assert.Equal(t, domain.ForecastMethodRegression, got.Method)
	assert.Equal(t, "Nov", got.NextMonth)

	require.NotNil(t, got.Predicted)
	require.NotNil(t, got.Lower)
	require.NotNil(t, got.Upper)

	// Slope of the fit is 25/month; the prediction lands near 175.
	assert.InDelta(t, 175, *got.Predicted, 5)
	assert.Less(t, *got.Lower, *got.Predicted)
	assert.Greater(t, *got.Upper, *got.Predicted)
	assert.GreaterOrEqual(t, *got.Lower, 0)
}

func TestForecastLastDeltaFallback(t *testing.T) {
	f := NewForecaster(testHorizon())
	f.UseRegression = false

	series := []domain.MonthlyCount{
		{Month: "Aug", Count: 100},
		{Month: "Sep", Count: 120},
		{Month: "Oct", Count: 150},
	}

	got := f.Forecast(series)
	assert.Equal(t, domain.ForecastMethodLastDelta, got.Method)
	assert.Equal(t, "Nov", got.NextMonth)

	require.NotNil(t, got.Predicted)
	assert.Equal(t, 180, *got.Predicted)
	assert.Nil(t, got.Lower)
	assert.Nil(t, got.Upper)
}

func TestForecastInsufficientData(t *testing.T) {
	f := NewForecaster(testHorizon())

	tests := []struct {
		name   string
		series []domain.MonthlyCount
	}{
		{name: "empty series", series: nil},
		{name: "single point", series: []domain.MonthlyCount{{Month: "Oct", Count: 50}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Forecast(tt.series)
			assert.Equal(t, domain.ForecastMethodNone, got.Method)
			assert.Nil(t, got.Predicted)
			assert.Nil(t, got.Lower)
			assert.Nil(t, got.Upper)
			assert.False(t, got.HasPrediction())
		})
	}
}

func TestForecastSinglePointKeepsNextMonthLabel(t *testing.T) {
	f := NewForecaster(testHorizon())

	got := f.Forecast([]domain.MonthlyCount{{Month: "Oct", Count: 50}})
	assert.Equal(t, "Nov", got.NextMonth)
	assert.False(t, got.HasPrediction())
}

func TestForecastDecemberWrapsToJanuary(t *testing.T) {
	// A horizon extending to December labels the successor January even
	// though January is outside the horizon.
	f := NewForecaster(dataprocessing.NewHorizon([]string{"Aug", "Sep", "Oct", "Nov", "Dec"}))

	got := f.Forecast([]domain.MonthlyCount{
		{Month: "Nov", Count: 80},
		{Month: "Dec", Count: 90},
	})
	assert.Equal(t, "Jan", got.NextMonth)
}

func TestForecastDeterministic(t *testing.T) {
	f := NewForecaster(testHorizon())

	series := []domain.MonthlyCount{
		{Month: "Aug", Count: 73},
		{Month: "Sep", Count: 121},
		{Month: "Oct", Count: 98},
		{Month: "Nov", Count: 140},
	}

	first := f.Forecast(series)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, f.Forecast(series))
	}
}
