package exporter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callpulse/internal/analytics"
	"callpulse/pkg/contracts/domain"
)

func TestWriteRecords(t *testing.T) {
	date := time.Date(2025, time.October, 6, 0, 0, 0, 0, time.UTC)
	start := time.Date(2025, time.October, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.October, 11, 0, 0, 0, 0, time.UTC)

	records := []domain.CallRecord{
		{
			SourceID:  "Dana",
			Month:     "Oct",
			EventDate: &date,
			WeekStart: &start,
			WeekEnd:   &end,
			WeekRank:  1,
			Region:    "منطقة الرياض",
			Company:   "ACME",
		},
		{SourceID: "Shouq", Month: "Sep"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF"))

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(out, "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Source")
	assert.Contains(t, lines[0], "WeekRank")
	assert.Contains(t, lines[1], "Dana")
	assert.Contains(t, lines[1], "06/10/2025")
	assert.Contains(t, lines[1], "05/10 - 11/10")
	assert.Contains(t, lines[2], "Shouq")
}

func TestWriteRecordsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, nil))

	// Header only, after the BOM.
	out := strings.TrimPrefix(buf.String(), "\xEF\xBB\xBF")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 1)
}

func TestWriteSummary(t *testing.T) {
	predicted, lower, upper := 180, 160, 200
	input := SummaryInput{
		Series: []domain.MonthlyCount{
			{Month: "Sep", Count: 120},
			{Month: "Oct", Count: 150},
		},
		Regions: []analytics.CategoryCount{{Value: "منطقة الرياض", Count: 90}},
		Types:   []analytics.CategoryCount{{Value: "استفسار", Count: 70}},
		Forecast: domain.Forecast{
			NextMonth: "Nov",
			Predicted: &predicted,
			Lower:     &lower,
			Upper:     &upper,
			Method:    domain.ForecastMethodRegression,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, input))

	out := buf.String()
	assert.Contains(t, out, "Month,Calls")
	assert.Contains(t, out, "Oct,150")
	assert.Contains(t, out, "منطقة الرياض,90")
	assert.Contains(t, out, "NextMonth,Predicted,Lower,Upper,Method")
	assert.Contains(t, out, "Nov,180,160,200,regression")
}

func TestWriteSummaryNoForecast(t *testing.T) {
	input := SummaryInput{
		Forecast: domain.Forecast{NextMonth: "Nov", Method: domain.ForecastMethodNone},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, input))
	assert.Contains(t, buf.String(), "Nov,,,,none")
}
