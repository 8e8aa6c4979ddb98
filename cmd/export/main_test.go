package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callpulse/internal/analytics"
)

func writeSourceFile(t *testing.T, dataDir string) {
	t.Helper()
	content := "Month,Date,Customer Name,Phone,Region,City,Company,Provider,Service Type,Service Description,Notes\n" +
		"Aug,3/8/2025,Huda,599000001,الرياض,الرياض,Alpha,Dana,استفسار,سؤال عام,\n" +
		"Aug,10/8/2025,Omar,599000002,الرياض,الرياض,Alpha,Dana,شكوى,تأخر الرد,\n" +
		"Aug,17/8/2025,Sara,599000003,الرياض,الرياض,Beta,Dana,استفسار,سؤال عام,\n" +
		"Sep,7/9/2025,Lina,599000004,الرياض,الرياض,Alpha,Dana,استفسار,سؤال عام,\n" +
		"Sep,8/9/2025,Nora,599000005,الرياض,الرياض,Beta,Dana,شكوى,تأخر الرد,\n" +
		"Sep,14/9/2025,Rania,599000006,الرياض,الرياض,Alpha,Dana,استفسار,سؤال عام,\n" +
		"Sep,15/9/2025,Maha,599000007,الرياض,الرياض,Alpha,Dana,استفسار,سؤال عام,\n" +
		"Sep,21/9/2025,Dina,599000008,الرياض,الرياض,Beta,Dana,شكوى,تأخر الرد,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "Dana-2025.csv"), []byte(content), 0o644))
}

func forecastRowFromSummary(t *testing.T, outDir string) []string {
	t.Helper()

	raw, err := os.ReadFile(filepath.Join(outDir, "summary.csv"))
	require.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(raw), "\uFEFF")))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	require.NoError(t, err)

	for i, row := range rows {
		if len(row) > 0 && row[0] == "NextMonth" {
			require.Greater(t, len(rows), i+1, "forecast header has no data row")
			return rows[i+1]
		}
	}
	t.Fatal("summary.csv has no forecast section")
	return nil
}

func TestRun_ForecastWrittenWithoutSourceFlag(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()
	writeSourceFile(t, dataDir)

	require.NoError(t, run(dataDir, outDir, analytics.Scope{}))

	// Aug=3, Sep=5 fits exactly, so the next month predicts 7 with a
	// collapsed band.
	row := forecastRowFromSummary(t, outDir)
	assert.Equal(t, "Oct", row[0])
	assert.Equal(t, "7", row[1])
	assert.Equal(t, "7", row[2])
	assert.Equal(t, "7", row[3])
	assert.Equal(t, "regression", row[4])
}

func TestRun_ForecastIgnoresMonthNarrowing(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()
	writeSourceFile(t, dataDir)

	// Narrowing the export to one month must not shrink the series the
	// forecaster sees.
	require.NoError(t, run(dataDir, outDir, analytics.Scope{Source: "Dana", Month: "Sep"}))

	row := forecastRowFromSummary(t, outDir)
	assert.Equal(t, "Oct", row[0])
	assert.Equal(t, "7", row[1])
	assert.Equal(t, "regression", row[4])
}

func TestRun_RecordsScopedByMonth(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()
	writeSourceFile(t, dataDir)

	require.NoError(t, run(dataDir, outDir, analytics.Scope{Month: "Aug"}))

	raw, err := os.ReadFile(filepath.Join(outDir, "records.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Huda")
	assert.NotContains(t, string(raw), "Lina")
}
