package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callpulse/internal/analytics"
	"callpulse/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Reporting.CacheTTL = time.Hour
	return cfg
}

func writeSourceCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDataServiceLoadCycle(t *testing.T) {
	cfg := testConfig(t)

	writeSourceCSV(t, cfg.Paths.DataDir, "Dana - October.csv",
		"الشهر,التاريخ ,المنطقة,نوع الخدمة\n"+
			"Oct,6/10/2025,منطقة الرياض,استفسار\n"+
			"Oct,14/10/2025,منطقة مكة,شكوى\n")
	writeSourceCSV(t, cfg.Paths.DataDir, "Shouq - October.csv",
		"الشهر,التاريخ ,رقم الجوال ,المنطقة\n"+
			"Oct,7/10/2025,599940931,منطقة الرياض\n"+
			"Oct,8/10/2025,555000111,منطقة الرياض\n")

	ds := NewDataService(cfg, nil, nil)
	table, err := ds.Table(context.Background())
	require.NoError(t, err)

	// Denylisted Shouq fixture row is excluded from the merged table.
	assert.Len(t, table.Records, 3)
	assert.Equal(t, 2, table.Report.SourcesLoaded)
	assert.Equal(t, 1, table.Report.RowsExcluded)
	assert.Empty(t, table.Report.SourcesFailed)
	assert.NotEmpty(t, table.Report.LoadID)

	for _, rec := range table.Records {
		assert.Equal(t, "Oct", rec.Month)
		require.NotNil(t, rec.WeekStart)
		assert.Equal(t, time.Sunday, rec.WeekStart.Weekday())
		assert.NotZero(t, rec.WeekRank)
	}
}

func TestDataServiceSkipsUnreadableSource(t *testing.T) {
	cfg := testConfig(t)

	writeSourceCSV(t, cfg.Paths.DataDir, "Dana - October.csv",
		"الشهر,التاريخ \nOct,6/10/2025\n")
	// An xlsx that is not a zip archive fails at open.
	writeSourceCSV(t, cfg.Paths.DataDir, "Broken - October.xlsx", "not a workbook")

	ds := NewDataService(cfg, nil, nil)
	table, err := ds.Table(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, table.Report.SourcesLoaded)
	assert.Equal(t, []string{"Broken - October.xlsx"}, table.Report.SourcesFailed)
	assert.Len(t, table.Records, 1)
}

func TestDataServiceReloadPicksUpNewFiles(t *testing.T) {
	cfg := testConfig(t)

	writeSourceCSV(t, cfg.Paths.DataDir, "Dana - October.csv",
		"الشهر,التاريخ \nOct,6/10/2025\n")

	ds := NewDataService(cfg, nil, nil)
	table, err := ds.Table(context.Background())
	require.NoError(t, err)
	require.Len(t, table.Records, 1)

	writeSourceCSV(t, cfg.Paths.DataDir, "Rahaf - October.csv",
		"الشهر,التاريخ \nOct,7/10/2025\n")

	// Cached table does not see the new file until reload.
	table, err = ds.Table(context.Background())
	require.NoError(t, err)
	assert.Len(t, table.Records, 1)

	table, err = ds.Reload(context.Background())
	require.NoError(t, err)
	assert.Len(t, table.Records, 2)
}

func TestDataServiceMissingDataDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(t.TempDir(), "missing")

	ds := NewDataService(cfg, nil, nil)
	_, err := ds.Table(context.Background())
	assert.Error(t, err)
}

func TestReportServiceForecastFromSourceScope(t *testing.T) {
	cfg := testConfig(t)

	rows := "الشهر,التاريخ \n"
	for i := 0; i < 2; i++ {
		rows += "Aug,4/8/2025\n"
	}
	for i := 0; i < 4; i++ {
		rows += "Sep,2/9/2025\n"
	}
	for i := 0; i < 6; i++ {
		rows += "Oct,6/10/2025\n"
	}
	writeSourceCSV(t, cfg.Paths.DataDir, "Dana - all.csv", rows)

	ds := NewDataService(cfg, nil, nil)
	rs := NewReportService(ds, nil)

	forecast, err := rs.Forecast(context.Background(), "Dana")
	require.NoError(t, err)
	assert.Equal(t, "Nov", forecast.NextMonth)
	require.NotNil(t, forecast.Predicted)
	// Perfectly linear series: the fit predicts the next step exactly.
	assert.Equal(t, 8, *forecast.Predicted)

	// Unknown source has no rows and therefore no prediction.
	forecast, err = rs.Forecast(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.False(t, forecast.HasPrediction())
}

func TestReportServiceScoped(t *testing.T) {
	cfg := testConfig(t)

	writeSourceCSV(t, cfg.Paths.DataDir, "Dana - October.csv",
		"الشهر,التاريخ \nOct,6/10/2025\nSep,2/9/2025\n")

	ds := NewDataService(cfg, nil, nil)
	rs := NewReportService(ds, nil)

	scoped, report, err := rs.Scoped(context.Background(), analytics.Scope{Month: "Oct"})
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Len(t, scoped, 1)
	assert.Equal(t, "Oct", scoped[0].Month)
}
