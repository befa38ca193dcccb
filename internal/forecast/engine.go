// Package forecast fits a linear trend to an aggregated series and
// projects future periods with prediction intervals.
package forecast

import (
	"log/slog"
	"math"
	"time"

	"salespulse/internal/timeseries"
)

// Metrics is the fit-quality bundle for a trend model over the integer
// time index 0..n-1.
type Metrics struct {
	Slope         float64 `json:"slope"`
	Intercept     float64 `json:"intercept"`
	RSquared      float64 `json:"r_squared"`
	StandardError float64 `json:"standard_error"`
	SampleSize    int     `json:"sample_size"`
}

// HistoryPoint is an observed period annotated with the fitted trend
// and its confidence band.
type HistoryPoint struct {
	PeriodStart time.Time `json:"period_start"`
	Actual      float64   `json:"actual"`
	Trend       float64   `json:"trend"`
	Lower       float64   `json:"lower"`
	Upper       float64   `json:"upper"`
	Label       string    `json:"label"`
}

// Point is a projected future period with its prediction interval.
// Forecast and Lower are floored at zero; Upper is not.
type Point struct {
	PeriodStart time.Time `json:"period_start"`
	Forecast    float64   `json:"forecast"`
	Lower       float64   `json:"lower"`
	Upper       float64   `json:"upper"`
	Label       string    `json:"label"`
}

// Result bundles the annotated history, the future projection and the
// fit metrics. Metrics is nil when the series was too short to fit.
type Result struct {
	History []HistoryPoint `json:"history"`
	Future  []Point        `json:"future"`
	Metrics *Metrics       `json:"metrics,omitempty"`
}

// Engine produces linear-trend forecasts. The confidence band uses a
// fixed multiplier in place of a sample-size-dependent critical value;
// this constant-width approximation is intentional and part of the
// output contract.
type Engine struct {
	logger         *slog.Logger
	bandMultiplier float64
}

// NewEngine creates a forecast engine. A nil logger uses
// slog.Default(); a zero band multiplier defaults to 2.
func NewEngine(logger *slog.Logger, bandMultiplier float64) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if bandMultiplier == 0 {
		bandMultiplier = 2
	}
	return &Engine{logger: logger, bandMultiplier: bandMultiplier}
}

// Forecast fits an ordinary least-squares line over the series and
// projects horizon future periods at the given granularity. A series
// shorter than two points is returned unchanged as history with no
// future points and no metrics: forecasting is impossible there, not
// an error.
func (e *Engine) Forecast(series []timeseries.Point, horizon int, period timeseries.Period) Result {
	n := len(series)
	if n < 2 {
		history := make([]HistoryPoint, n)
		for i, p := range series {
			history[i] = HistoryPoint{
				PeriodStart: p.PeriodStart,
				Actual:      p.Value,
				Label:       p.Label,
			}
		}
		return Result{History: history}
	}

	slope, intercept := fitLine(series)

	// Fit quality over the historical index.
	var ssRes, ssTot float64
	mean := 0.0
	for _, p := range series {
		mean += p.Value
	}
	mean /= float64(n)
	for i, p := range series {
		fitted := slope*float64(i) + intercept
		ssRes += (p.Value - fitted) * (p.Value - fitted)
		ssTot += (p.Value - mean) * (p.Value - mean)
	}

	rSquared := 0.0
	if ssTot != 0 {
		rSquared = 1 - ssRes/ssTot
	}
	see := 0.0
	if n > 2 {
		see = math.Sqrt(ssRes / float64(n-2))
	}

	// Historical band: trend +/- multiplier*SEE, constant width.
	margin := e.bandMultiplier * see
	history := make([]HistoryPoint, n)
	for i, p := range series {
		trend := slope*float64(i) + intercept
		history[i] = HistoryPoint{
			PeriodStart: p.PeriodStart,
			Actual:      p.Value,
			Trend:       trend,
			Lower:       trend - margin,
			Upper:       trend + margin,
			Label:       p.Label,
		}
	}

	// Future projection with the widening prediction interval.
	tMean := float64(n-1) / 2
	sxx := 0.0
	for i := 0; i < n; i++ {
		d := float64(i) - tMean
		sxx += d * d
	}

	future := make([]Point, 0, horizon)
	periodStart := series[n-1].PeriodStart
	for step := 0; step < horizon; step++ {
		t := float64(n + step)
		periodStart = period.Next(periodStart)

		predicted := math.Max(0, slope*t+intercept)
		halfWidth := e.intervalHalfWidth(t, see, n, tMean, sxx)

		future = append(future, Point{
			PeriodStart: periodStart,
			Forecast:    predicted,
			Lower:       math.Max(0, predicted-halfWidth),
			Upper:       predicted + halfWidth,
			Label:       period.Label(periodStart),
		})
	}

	metrics := &Metrics{
		Slope:         slope,
		Intercept:     intercept,
		RSquared:      rSquared,
		StandardError: see,
		SampleSize:    n,
	}

	e.logger.Debug("trend fitted",
		slog.Float64("slope", slope),
		slog.Float64("r_squared", rSquared),
		slog.Int("sample_size", n),
		slog.Int("horizon", horizon))

	return Result{History: history, Future: future, Metrics: metrics}
}

// fitLine computes the closed-form least-squares slope and intercept
// over (i, value) pairs with i = 0..n-1.
func fitLine(series []timeseries.Point) (slope, intercept float64) {
	n := float64(len(series))
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range series {
		x := float64(i)
		sumX += x
		sumY += p.Value
		sumXY += x * p.Value
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// intervalHalfWidth computes the prediction-interval half-width for a
// future index: multiplier*SEE*sqrt(1 + 1/n + (t-tMean)^2/Sxx). It is
// 0 when n <= 2 or Sxx is 0, and grows monotonically with the distance
// of t from the historical mean index.
func (e *Engine) intervalHalfWidth(t, see float64, n int, tMean, sxx float64) float64 {
	if n <= 2 || sxx == 0 {
		return 0
	}
	d := t - tMean
	return e.bandMultiplier * see * math.Sqrt(1+1/float64(n)+d*d/sxx)
}
