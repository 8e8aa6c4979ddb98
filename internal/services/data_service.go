package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"callpulse/internal/analytics"
	"callpulse/internal/config"
	"callpulse/internal/dataprocessing"
	"callpulse/internal/files"
	"callpulse/internal/infrastructure"
	"callpulse/pkg/contracts/domain"
)

// DataService owns the ingestion pipeline and the table cache. One load
// cycle scans the data directory, parses every source file, normalizes
// and buckets the rows, and merges the per-source tables; results are
// memoized until the TTL elapses or a manual reload invalidates them.
type DataService struct {
	cfg       *config.Config
	discovery *files.Discovery
	parser    *dataprocessing.Parser
	norm      *dataprocessing.Normalizer
	bucketer  *dataprocessing.Bucketer
	merger    *dataprocessing.Merger
	cache     *TableCache
	metrics   *infrastructure.Metrics
	logger    *slog.Logger
}

// NewDataService wires the pipeline from configuration.
func NewDataService(cfg *config.Config, metrics *infrastructure.Metrics, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "data_service"))

	horizon := dataprocessing.NewHorizon(cfg.Reporting.Months)
	ds := &DataService{
		cfg:       cfg,
		discovery: files.NewDiscovery(cfg.GetDataDir()),
		parser:    dataprocessing.NewParser(cfg.Reporting.SheetName, cfg.Reporting.HeaderRowOffset, logger),
		norm:      dataprocessing.NewNormalizer(cfg.Reporting.Year, horizon, logger),
		bucketer:  dataprocessing.NewBucketer(cfg.Reporting.WeekLengthDays),
		merger: dataprocessing.NewMerger(
			cfg.Reporting.DenySource,
			cfg.Reporting.DenyPhoneLow,
			cfg.Reporting.DenyPhoneHigh,
			logger),
		metrics: metrics,
		logger:  logger,
	}
	ds.cache = NewTableCache(cfg.Reporting.CacheTTL, ds.loadCycle)

	logger.Info("data service initialized",
		slog.String("data_dir", cfg.GetDataDir()),
		slog.Any("months", cfg.Reporting.Months),
		slog.Int("week_length_days", cfg.Reporting.WeekLengthDays))

	return ds
}

// Horizon returns the active reporting horizon.
func (ds *DataService) Horizon() *dataprocessing.Horizon {
	return dataprocessing.NewHorizon(ds.cfg.Reporting.Months)
}

// Table returns the merged table, re-scanning the data directory when
// the cached value expired.
func (ds *DataService) Table(ctx context.Context) (*LoadedTable, error) {
	return ds.cache.GetOrRefresh(ctx)
}

// Reload invalidates the cache and runs a fresh load cycle.
func (ds *DataService) Reload(ctx context.Context) (*LoadedTable, error) {
	ds.cache.Invalidate()
	return ds.cache.GetOrRefresh(ctx)
}

// CacheStats exposes cache hit/miss counters for the health endpoint.
func (ds *DataService) CacheStats() (hits, misses int64) {
	return ds.cache.Stats()
}

// loadCycle is the LoadFunc behind the cache: one full pass over the
// data directory. File-level failures skip that source and continue;
// only an unreadable directory fails the cycle.
func (ds *DataService) loadCycle(ctx context.Context) (*LoadedTable, error) {
	loadID := uuid.New().String()
	started := time.Now()
	logger := ds.logger.With(slog.String("load_id", loadID))

	sourceFiles, err := ds.discovery.FindSourceFiles(".")
	if err != nil {
		ds.observeFailure()
		return nil, fmt.Errorf("data directory scan failed: %w", err)
	}

	report := domain.LoadReport{LoadID: loadID, LoadedAt: started}
	var tables []domain.SourceTable

	for _, file := range sourceFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		parsed, err := ds.parser.ParseFile(file.Path)
		if err != nil {
			logger.Warn("source file skipped",
				slog.String("file", file.Name),
				slog.String("error", err.Error()))
			report.SourcesFailed = append(report.SourcesFailed, file.Name)
			ds.observeFailure()
			continue
		}

		table := domain.SourceTable{
			SourceID:    file.SourceID,
			Records:     make([]domain.CallRecord, 0, len(parsed.Rows)),
			RowsSkipped: parsed.RowsSkipped,
		}
		for _, raw := range parsed.Rows {
			table.Records = append(table.Records, ds.norm.Normalize(file.SourceID, raw))
		}

		report.SourcesLoaded++
		report.RowsSkipped += parsed.RowsSkipped
		tables = append(tables, table)
	}

	merged := ds.merger.Merge(tables)
	records := ds.bucketer.Bucket(merged.Records)

	report.RowsTotal = len(records)
	report.RowsExcluded = merged.RowsExcluded

	ds.observeCycle(&report, time.Since(started))
	logger.Info("load cycle complete",
		slog.Int("sources_loaded", report.SourcesLoaded),
		slog.Int("sources_failed", len(report.SourcesFailed)),
		slog.Int("rows_total", report.RowsTotal),
		slog.Int("rows_skipped", report.RowsSkipped),
		slog.Int("rows_excluded", report.RowsExcluded),
		slog.Duration("elapsed", time.Since(started)))

	return &LoadedTable{Records: records, Report: report}, nil
}

func (ds *DataService) observeCycle(report *domain.LoadReport, elapsed time.Duration) {
	if ds.metrics == nil {
		return
	}
	ds.metrics.LoadCycles.Inc()
	ds.metrics.LoadDuration.Observe(elapsed.Seconds())
	ds.metrics.RowsParsed.Add(float64(report.RowsTotal))
	ds.metrics.RowsSkipped.Add(float64(report.RowsSkipped))
	ds.metrics.RowsExcluded.Add(float64(report.RowsExcluded))
}

func (ds *DataService) observeFailure() {
	if ds.metrics == nil {
		return
	}
	ds.metrics.SourcesFailed.Inc()
}

// ReportService composes aggregation, forecasting and narrative output
// on top of the data service.
type ReportService struct {
	data       *DataService
	aggregator *analytics.Aggregator
	forecaster *analytics.Forecaster
	logger     *slog.Logger
}

// NewReportService creates a ReportService sharing the data service's
// horizon.
func NewReportService(data *DataService, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	horizon := data.Horizon()
	return &ReportService{
		data:       data,
		aggregator: analytics.NewAggregator(horizon),
		forecaster: analytics.NewForecaster(horizon),
		logger:     logger.With(slog.String("component", "report_service")),
	}
}

// Aggregator exposes the shared aggregator for handlers.
func (rs *ReportService) Aggregator() *analytics.Aggregator {
	return rs.aggregator
}

// Records returns the full merged table with its load report.
func (rs *ReportService) Records(ctx context.Context) ([]domain.CallRecord, *domain.LoadReport, error) {
	table, err := rs.data.Table(ctx)
	if err != nil {
		return nil, nil, err
	}
	return table.Records, &table.Report, nil
}

// Scoped returns the merged table narrowed to a scope.
func (rs *ReportService) Scoped(ctx context.Context, scope analytics.Scope) ([]domain.CallRecord, *domain.LoadReport, error) {
	table, err := rs.data.Table(ctx)
	if err != nil {
		return nil, nil, err
	}
	return rs.aggregator.Filter(table.Records, scope), &table.Report, nil
}

// Forecast predicts next-month volume for a source scope. The series is
// always built from the full month range of that source, not from any
// month/week narrowing.
func (rs *ReportService) Forecast(ctx context.Context, source string) (domain.Forecast, error) {
	scoped, _, err := rs.Scoped(ctx, analytics.Scope{Source: source})
	if err != nil {
		return domain.Forecast{}, err
	}
	series := rs.aggregator.MonthlySeries(scoped)
	return rs.forecaster.Forecast(series), nil
}
