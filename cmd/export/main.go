// Command export writes the merged call table and its aggregate summary
// to CSV files without starting the HTTP server. It is meant for sharing
// snapshots of the dashboard data with teams that work in spreadsheets.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"callpulse/internal/analytics"
	"callpulse/internal/config"
	"callpulse/internal/exporter"
	"callpulse/internal/infrastructure"
	"callpulse/internal/services"
)

func main() {
	var (
		dataDir = flag.String("data", "", "data directory holding the source workbooks (defaults to the configured path)")
		outDir  = flag.String("out", ".", "directory to write records.csv and summary.csv into")
		source  = flag.String("source", "", "restrict the export to one source")
		month   = flag.String("month", "", "restrict the export to one month token, e.g. Oct")
		week    = flag.String("week", "", "restrict the export to one week label, e.g. 05/10 - 11/10")
	)
	flag.Parse()

	if err := run(*dataDir, *outDir, analytics.Scope{Source: *source, Month: *month, Week: *week}); err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
}

func run(dataDir, outDir string, scope analytics.Scope) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg.Logging.Output = "stdout"
	if dataDir != "" {
		cfg.Paths.DataDir = dataDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	ctx := context.Background()
	data := services.NewDataService(cfg, nil, logger)
	reports := services.NewReportService(data, logger)

	records, report, err := reports.Scoped(ctx, scope)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	logger.Info("table loaded",
		"rows", report.RowsTotal,
		"skipped", report.RowsSkipped,
		"excluded", report.RowsExcluded,
		"exported", len(records),
	)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := writeFile(filepath.Join(outDir, "records.csv"), func(f *os.File) error {
		return exporter.WriteRecords(f, records)
	}); err != nil {
		return err
	}

	// The forecast runs over the full source scope, never the month or
	// week narrowing, so it sees the complete monthly series.
	forecast, err := reports.Forecast(ctx, scope.Source)
	if err != nil {
		return fmt.Errorf("forecast: %w", err)
	}

	agg := reports.Aggregator()
	summary := exporter.SummaryInput{
		Series:   agg.MonthlySeries(records),
		Regions:  agg.CountBy(records, analytics.DimRegion),
		Types:    agg.CountBy(records, analytics.DimServiceType),
		Forecast: forecast,
	}
	if err := writeFile(filepath.Join(outDir, "summary.csv"), func(f *os.File) error {
		return exporter.WriteSummary(f, summary)
	}); err != nil {
		return err
	}

	fmt.Printf("wrote %d records to %s\n", len(records), outDir)
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	return nil
}
