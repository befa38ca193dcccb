// Package exporter writes pipeline outputs as CSV for download and
// spreadsheet use.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"salespulse/internal/forecast"
)

// Forecast export column layout.
var forecastHeader = []string{"Date", "Actual Revenue", "Forecast Revenue", "Lower CI", "Upper CI", "Trend"}

// CSVWriter renders pipeline outputs as CSV.
type CSVWriter struct {
	logger *slog.Logger
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// NewCSVWriter creates a CSV writer. A nil logger uses slog.Default().
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteForecast writes the forecast bundle as a tabular export:
// history rows carry actuals, trend and band; future rows carry the
// forecast and its interval.
func (w *CSVWriter) WriteForecast(out io.Writer, result forecast.Result) error {
	if w.BOMPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	defer writer.Flush()

	if err := writer.Write(forecastHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, p := range result.History {
		record := []string{
			p.PeriodStart.Format("2006-01-02"),
			formatValue(p.Actual),
			"",
			formatValue(p.Lower),
			formatValue(p.Upper),
			formatValue(p.Trend),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write history record: %w", err)
		}
	}

	for _, p := range result.Future {
		record := []string{
			p.PeriodStart.Format("2006-01-02"),
			"",
			formatValue(p.Forecast),
			formatValue(p.Lower),
			formatValue(p.Upper),
			"",
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write forecast record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush forecast CSV: %w", err)
	}

	w.logger.Info("wrote forecast CSV",
		slog.Int("history_rows", len(result.History)),
		slog.Int("forecast_rows", len(result.Future)))
	return nil
}

// WriteReport writes the cleaning change log, one entry per line.
func (w *CSVWriter) WriteReport(out io.Writer, entries []string) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if err := writer.Write([]string{"Change"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, entry := range entries {
		if err := writer.Write([]string{entry}); err != nil {
			return fmt.Errorf("write entry: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatValue(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
