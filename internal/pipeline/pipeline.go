// Package pipeline orchestrates the full analysis flow: schema
// validation, cleaning, period aggregation, trend forecasting and
// KPIs. Each stage consumes an immutable snapshot and returns a new
// structure, so independent runs are safe to execute concurrently; the
// pipeline itself is single-threaded and performs no I/O.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"salespulse/internal/cleaning"
	"salespulse/internal/dataset"
	"salespulse/internal/errors"
	"salespulse/internal/forecast"
	"salespulse/internal/kpi"
	"salespulse/internal/schema"
	"salespulse/internal/timeseries"
)

// Options controls a single pipeline run.
type Options struct {
	// Period granularity for aggregation and forecasting.
	Period timeseries.Period
	// Horizon is the number of future periods to project.
	Horizon int
	// ExistingSignature is the previously stored schema signature, if
	// any. Informational: schema differences are logged, not rejected.
	ExistingSignature string
}

// Bundle is the structured output of one run, handed to callers for
// storage or display.
type Bundle struct {
	RunID           string              `json:"run_id"`
	SchemaSignature string              `json:"schema_signature"`
	CoreColumns     schema.CoreColumns  `json:"core_columns"`
	Cleaned         *dataset.Table      `json:"-"`
	Report          []string            `json:"report"`
	Series          []timeseries.Point  `json:"series"`
	Forecast        forecast.Result     `json:"forecast"`
	KPIs            kpi.Basic           `json:"kpis"`
}

// Pipeline runs the stages in fixed order. Construct once and reuse;
// all stages are stateless between runs.
type Pipeline struct {
	validator *schema.Validator
	cleaner   *cleaning.Cleaner
	engine    *forecast.Engine
	logger    *slog.Logger
}

// New creates a pipeline from its stages. Nil stages get defaults; a
// nil logger uses slog.Default().
func New(validator *schema.Validator, cleaner *cleaning.Cleaner, engine *forecast.Engine, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = schema.NewValidator(nil, logger)
	}
	if cleaner == nil {
		cleaner = cleaning.NewCleaner(nil, logger, cleaning.DefaultConfig())
	}
	if engine == nil {
		engine = forecast.NewEngine(logger, 0)
	}
	return &Pipeline{validator: validator, cleaner: cleaner, engine: engine, logger: logger}
}

// Run executes validate → clean → aggregate → forecast → KPIs over a
// raw table. Validation failures are hard stops; an aggregated series
// shorter than two periods yields a history-only forecast result
// rather than an error.
func (p *Pipeline) Run(ctx context.Context, raw *dataset.Table, opts Options) (*Bundle, error) {
	runID := uuid.NewString()
	logger := p.logger.With(slog.String("run_id", runID))

	if opts.Horizon <= 0 {
		return nil, errors.NewInvalidParameter("forecast horizon must be positive")
	}

	normalized := p.validator.Normalize(raw)
	signature, core, err := p.validator.Validate(normalized, opts.ExistingSignature)
	if err != nil {
		logger.WarnContext(ctx, "dataset rejected", slog.Any("error", err))
		return nil, err
	}
	logger.InfoContext(ctx, "schema validated",
		slog.String("date_col", core.DateCol),
		slog.String("qty_col", core.QtyCol),
		slog.String("price_col", core.PriceCol))

	cleaned, report := p.cleaner.Clean(normalized)
	logger.InfoContext(ctx, "dataset cleaned",
		slog.Int("rows", cleaned.NumRows()),
		slog.Int("report_entries", report.Len()))

	// The cleaner derives Revenue when quantity and price resolve; it
	// is the value column for the trend. Fall back to the resolved
	// price column if a pre-existing Revenue column was absent.
	valueCol := "Revenue"
	if !cleaned.HasColumn(valueCol) {
		valueCol = core.PriceCol
	}

	series := timeseries.Aggregate(cleaned, core.DateCol, valueCol, opts.Period)
	result := p.engine.Forecast(series, opts.Horizon, opts.Period)
	if result.Metrics == nil {
		logger.InfoContext(ctx, "insufficient periods for forecast", slog.Int("periods", len(series)))
	}

	indicators := kpi.Compute(cleaned, core.QtyCol, core.PriceCol)

	return &Bundle{
		RunID:           runID,
		SchemaSignature: signature,
		CoreColumns:     core,
		Cleaned:         cleaned,
		Report:          report.Entries(),
		Series:          series,
		Forecast:        result,
		KPIs:            indicators,
	}, nil
}
