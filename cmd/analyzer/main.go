package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"salespulse/internal/cleaning"
	"salespulse/internal/config"
	"salespulse/internal/exporter"
	"salespulse/internal/forecast"
	"salespulse/internal/infrastructure"
	"salespulse/internal/loader"
	"salespulse/internal/pipeline"
	"salespulse/internal/schema"
	"salespulse/internal/timeseries"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	outDir := flag.String("out", "", "output directory for CSV exports (defaults to configured reports dir)")
	periodFlag := flag.String("period", "", "aggregation period: month, quarter or year (defaults to configured period)")
	horizon := flag.Int("horizon", 0, "number of future periods to forecast (defaults to configured horizon)")
	workers := flag.Int("workers", 4, "maximum concurrent files")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: analyzer [flags] <file.csv|file.xlsx> ...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if *outDir == "" {
		*outDir = cfg.Paths.ReportsDir
	}
	if *periodFlag == "" {
		*periodFlag = cfg.Forecast.Period
	}
	if *horizon == 0 {
		*horizon = cfg.Forecast.Horizon
	}

	period, err := timeseries.ParsePeriod(*periodFlag)
	if err != nil {
		logger.Error("Invalid period", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("Failed to create output directory", "dir", *outDir, "error", err)
		os.Exit(1)
	}

	resolver := schema.NewResolver(nil)
	pipe := pipeline.New(
		schema.NewValidator(resolver, logger),
		cleaning.NewCleaner(resolver, logger, cleaning.Config{
			IQRMultiplier: cfg.Cleaning.IQRMultiplier,
			Sentinel:      cfg.Cleaning.Sentinel,
		}),
		forecast.NewEngine(logger, cfg.Forecast.BandMultiplier),
		logger,
	)

	// Each file is an independent pipeline run; the core holds no
	// shared mutable state, so runs fan out freely.
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*workers)

	for _, path := range flag.Args() {
		path := path
		g.Go(func() error {
			return processFile(ctx, logger, pipe, path, *outDir, period, *horizon)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Analysis failed", "error", err)
		os.Exit(1)
	}
	logger.Info("All files processed", "count", flag.NArg())
}

func processFile(ctx context.Context, logger *slog.Logger, pipe *pipeline.Pipeline, path, outDir string, period timeseries.Period, horizon int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	table, err := loader.NewLoader(logger).Read(path, data)
	if err != nil {
		return err
	}

	bundle, err := pipe.Run(ctx, table, pipeline.Options{
		Period:  period,
		Horizon: horizon,
	})
	if err != nil {
		return fmt.Errorf("analyze %s: %w", path, err)
	}

	for _, entry := range bundle.Report {
		logger.Info("Cleaning change", "file", filepath.Base(path), "change", entry)
	}
	if m := bundle.Forecast.Metrics; m != nil {
		logger.Info("Trend fitted",
			"file", filepath.Base(path),
			"slope", m.Slope,
			"r_squared", m.RSquared,
			"periods", m.SampleSize)
	}
	logger.Info("KPIs computed",
		"file", filepath.Base(path),
		"total_revenue", bundle.KPIs.TotalRevenue,
		"total_rows", bundle.KPIs.TotalRows)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(outDir, base+"_forecast.csv")
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer out.Close()

	writer := exporter.NewCSVWriter(logger)
	writer.BOMPrefix = true
	if err := writer.WriteForecast(out, bundle.Forecast); err != nil {
		return fmt.Errorf("export %s: %w", outPath, err)
	}

	logger.Info("Forecast exported", "file", outPath)
	return nil
}
