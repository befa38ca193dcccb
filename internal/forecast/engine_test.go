package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/timeseries"
)

func monthlySeries(values []float64) []timeseries.Point {
	points := make([]timeseries.Point, len(values))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		period := start.AddDate(0, i, 0)
		points[i] = timeseries.Point{
			PeriodStart: period,
			Value:       v,
			Label:       timeseries.Month.Label(period),
		}
	}
	return points
}

func TestForecastTooShortSeries(t *testing.T) {
	engine := NewEngine(nil, 0)

	tests := []struct {
		name   string
		series []timeseries.Point
	}{
		{name: "empty", series: nil},
		{name: "single point", series: monthlySeries([]float64{100})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Forecast(tt.series, 3, timeseries.Month)

			assert.Len(t, result.History, len(tt.series), "history passes through unchanged")
			assert.Empty(t, result.Future)
			assert.Nil(t, result.Metrics)
			for i, p := range result.History {
				assert.Equal(t, tt.series[i].Value, p.Actual)
				assert.Equal(t, tt.series[i].Label, p.Label)
			}
		})
	}
}

// n = 2 fits exactly: standard error 0, R² defined, zero-width future
// intervals.
func TestForecastDegenerateTwoPoints(t *testing.T) {
	engine := NewEngine(nil, 0)
	result := engine.Forecast(monthlySeries([]float64{100, 110}), 2, timeseries.Month)

	require.NotNil(t, result.Metrics)
	assert.Equal(t, 0.0, result.Metrics.StandardError)
	assert.Equal(t, 1.0, result.Metrics.RSquared)
	assert.InDelta(t, 10.0, result.Metrics.Slope, 1e-9)

	require.Len(t, result.Future, 2)
	for _, p := range result.Future {
		assert.Equal(t, p.Forecast, p.Lower, "half-width is 0 when n <= 2")
		assert.Equal(t, p.Forecast, p.Upper)
	}
	assert.InDelta(t, 120.0, result.Future[0].Forecast, 1e-9)
	assert.InDelta(t, 130.0, result.Future[1].Forecast, 1e-9)
}

func TestForecastZeroVariance(t *testing.T) {
	engine := NewEngine(nil, 0)
	result := engine.Forecast(monthlySeries([]float64{50, 50, 50, 50}), 1, timeseries.Month)

	require.NotNil(t, result.Metrics)
	assert.Equal(t, 0.0, result.Metrics.RSquared, "r_squared is defined as 0 when total variance is 0")
	assert.Equal(t, 0.0, result.Metrics.Slope)
	assert.InDelta(t, 50.0, result.Future[0].Forecast, 1e-9)
}

// Scenario: 12 monotonically increasing monthly revenues forecast 3
// months ahead.
func TestForecastIncreasingTrend(t *testing.T) {
	values := make([]float64, 12)
	for i := range values {
		values[i] = 100 + float64(i)*(70.0/11.0) // 100 .. 170
	}
	engine := NewEngine(nil, 0)
	result := engine.Forecast(monthlySeries(values), 3, timeseries.Month)

	require.NotNil(t, result.Metrics)
	assert.Greater(t, result.Metrics.Slope, 0.0)

	lastTrend := result.History[len(result.History)-1].Trend
	require.Len(t, result.Future, 3)
	for _, p := range result.Future {
		assert.GreaterOrEqual(t, p.Forecast, lastTrend, "forecasts continue above the last trend value")
		assert.GreaterOrEqual(t, p.Forecast, 0.0)
		assert.GreaterOrEqual(t, p.Lower, 0.0)
	}

	// Future periods advance month by month from the last observed one.
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), result.Future[0].PeriodStart)
	assert.Equal(t, "Jan 2025", result.Future[0].Label)
	assert.Equal(t, "Mar 2025", result.Future[2].Label)
}

// Interval half-width grows strictly with forecast distance when the
// fit has residual noise.
func TestForecastIntervalMonotonicity(t *testing.T) {
	// Noisy upward series so SEE > 0.
	values := []float64{100, 130, 110, 150, 135, 170, 160, 190}
	engine := NewEngine(nil, 0)
	result := engine.Forecast(monthlySeries(values), 5, timeseries.Month)

	require.NotNil(t, result.Metrics)
	require.Greater(t, result.Metrics.StandardError, 0.0)

	prevWidth := 0.0
	for i, p := range result.Future {
		width := p.Upper - p.Forecast
		if i > 0 {
			assert.Greater(t, width, prevWidth, "interval must widen with distance (step %d)", i)
		} else {
			assert.Greater(t, width, 0.0)
		}
		prevWidth = width
	}
}

func TestForecastHistoryBandConstantWidth(t *testing.T) {
	values := []float64{100, 130, 110, 150, 135}
	engine := NewEngine(nil, 0)
	result := engine.Forecast(monthlySeries(values), 1, timeseries.Month)

	require.NotNil(t, result.Metrics)
	margin := 2 * result.Metrics.StandardError
	for _, p := range result.History {
		assert.InDelta(t, p.Trend-margin, p.Lower, 1e-9)
		assert.InDelta(t, p.Trend+margin, p.Upper, 1e-9)
	}
}

func TestForecastFloorsAtZero(t *testing.T) {
	// Steeply decreasing series drives the projection negative.
	engine := NewEngine(nil, 0)
	result := engine.Forecast(monthlySeries([]float64{100, 60, 20}), 4, timeseries.Month)

	require.Len(t, result.Future, 4)
	for _, p := range result.Future {
		assert.GreaterOrEqual(t, p.Forecast, 0.0)
		assert.GreaterOrEqual(t, p.Lower, 0.0)
	}
	last := result.Future[3]
	assert.Equal(t, 0.0, last.Forecast, "projection far below zero is floored")
}

// When the projection floors at zero, the interval is anchored at the
// floored forecast: Upper sits a full half-width above zero rather
// than tracking the negative fitted line downward.
func TestForecastNegativeTrendUpperBound(t *testing.T) {
	engine := NewEngine(nil, 0)
	// Fit: slope -29, intercept 91, SEE = sqrt(35). Projections at
	// t=4 and t=5 are -25 and -54, both floored.
	result := engine.Forecast(monthlySeries([]float64{90, 60, 40, 0}), 2, timeseries.Month)

	require.Len(t, result.Future, 2)
	for _, p := range result.Future {
		assert.Equal(t, 0.0, p.Forecast)
		assert.Equal(t, 0.0, p.Lower)
	}

	// Half-widths: 2*sqrt(35)*sqrt(1 + 1/4 + (t-1.5)^2/5).
	assert.InDelta(t, 18.7083, result.Future[0].Upper, 1e-3)
	assert.InDelta(t, 22.7596, result.Future[1].Upper, 1e-3)
}

func TestForecastQuarterAndYearOffsets(t *testing.T) {
	start := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	series := []timeseries.Point{
		{PeriodStart: start.AddDate(0, -3, 0), Value: 10, Label: "Q3 2024"},
		{PeriodStart: start, Value: 20, Label: "Q4 2024"},
	}

	engine := NewEngine(nil, 0)
	result := engine.Forecast(series, 2, timeseries.Quarter)

	require.Len(t, result.Future, 2)
	assert.Equal(t, "Q1 2025", result.Future[0].Label)
	assert.Equal(t, "Q2 2025", result.Future[1].Label)
}

func TestFitLine(t *testing.T) {
	// Perfect line y = 2t + 1.
	series := monthlySeries([]float64{1, 3, 5, 7})
	slope, intercept := fitLine(series)

	assert.InDelta(t, 2.0, slope, 1e-9)
	assert.InDelta(t, 1.0, intercept, 1e-9)
}
