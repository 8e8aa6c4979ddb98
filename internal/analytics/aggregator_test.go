package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callpulse/internal/dataprocessing"
	"callpulse/pkg/contracts/domain"
)

func testHorizon() *dataprocessing.Horizon {
	return dataprocessing.NewHorizon([]string{"Aug", "Sep", "Oct", "Nov"})
}

func rec(source, month string, day int) domain.CallRecord {
	r := domain.CallRecord{SourceID: source, Month: month}
	if day > 0 {
		date := time.Date(2025, time.Month(dataprocessing.MonthNumber(month)), day, 0, 0, 0, 0, time.UTC)
		r.EventDate = &date
	}
	return r
}

// bucketed builds a dated, week-bucketed table for aggregate tests.
func bucketed(records ...domain.CallRecord) []domain.CallRecord {
	return dataprocessing.NewBucketer(7).Bucket(records)
}

func TestFilterConjunctive(t *testing.T) {
	a := NewAggregator(testHorizon())

	table := bucketed(
		rec("Dana", "Oct", 6),
		rec("Dana", "Oct", 14),
		rec("Dana", "Sep", 3),
		rec("Shouq", "Oct", 6),
	)

	bySource := a.Filter(table, Scope{Source: "Dana"})
	assert.Len(t, bySource, 3)

	byMonth := a.Filter(table, Scope{Source: "Dana", Month: "Oct"})
	assert.Len(t, byMonth, 2)

	week := byMonth[0].WeekLabel()
	byWeek := a.Filter(table, Scope{Source: "Dana", Month: "Oct", Week: week})
	assert.Len(t, byWeek, 1)

	assert.Len(t, a.Filter(table, Scope{}), 4)
}

func TestCountByMergedScopeIgnoresSourceSplit(t *testing.T) {
	a := NewAggregator(testHorizon())

	var table []domain.CallRecord
	for i := 0; i < 5; i++ {
		table = append(table, rec("Dana", "Oct", 0))
		table = append(table, rec("Shouq", "Oct", 0))
	}

	counts := a.CountBy(a.Filter(table, Scope{Month: "Oct"}), DimMonth)
	require.Len(t, counts, 1)
	assert.Equal(t, CategoryCount{Value: "Oct", Count: 10}, counts[0])
}

func TestCountBySortedDescending(t *testing.T) {
	a := NewAggregator(testHorizon())

	table := []domain.CallRecord{
		{SourceID: "Dana", Region: "منطقة الرياض"},
		{SourceID: "Dana", Region: "منطقة الرياض"},
		{SourceID: "Dana", Region: "منطقة مكة"},
		{SourceID: "Dana", Region: ""},
	}

	counts := a.CountBy(table, DimRegion)
	require.Len(t, counts, 2)
	assert.Equal(t, "منطقة الرياض", counts[0].Value)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, "منطقة مكة", counts[1].Value)
}

func TestMonthlySeriesCanonicalOrder(t *testing.T) {
	a := NewAggregator(testHorizon())

	table := []domain.CallRecord{
		rec("Dana", "Oct", 0),
		rec("Dana", "Aug", 0),
		rec("Dana", "Oct", 0),
		rec("Dana", "Nov", 0),
	}

	series := a.MonthlySeries(table)
	assert.Equal(t, []domain.MonthlyCount{
		{Month: "Aug", Count: 1},
		{Month: "Oct", Count: 2},
		{Month: "Nov", Count: 1},
	}, series)
}

func TestAverageThreeTiers(t *testing.T) {
	a := NewAggregator(testHorizon())

	// Oct: 7 records in week of 5 Oct, 2 in week of 12 Oct; Sep: 3 records.
	var records []domain.CallRecord
	for i := 0; i < 7; i++ {
		records = append(records, rec("Dana", "Oct", 6))
	}
	records = append(records, rec("Dana", "Oct", 14), rec("Dana", "Oct", 15))
	records = append(records, rec("Dana", "Sep", 3), rec("Dana", "Sep", 4), rec("Dana", "Sep", 10))
	table := bucketed(records...)

	// Week selected: mean daily count over the 7-day bucket.
	weekLabel := table[0].WeekLabel()
	avg, ok := a.Average(table, Scope{Month: "Oct", Week: weekLabel})
	require.True(t, ok)
	assert.InDelta(t, 1.0, avg, 1e-9)

	// Month selected: mean weekly count over 2 observed weeks.
	avg, ok = a.Average(table, Scope{Month: "Oct"})
	require.True(t, ok)
	assert.InDelta(t, 4.5, avg, 1e-9)

	// No month or week: mean monthly count over 2 observed months.
	avg, ok = a.Average(table, Scope{})
	require.True(t, ok)
	assert.InDelta(t, 6.0, avg, 1e-9)
}

func TestAverageExcludesUnplaceableRecords(t *testing.T) {
	a := NewAggregator(testHorizon())

	var records []domain.CallRecord
	for i := 0; i < 7; i++ {
		records = append(records, rec("Dana", "Oct", 6))
	}
	records = append(records, rec("Dana", "Oct", 14), rec("Dana", "Oct", 15))
	records = append(records, rec("Dana", "Sep", 3), rec("Dana", "Sep", 4), rec("Dana", "Sep", 10))
	// Rows that cannot be placed in a month or week bucket must not
	// enter the numerator of a mean they are absent from below.
	records = append(records, rec("Dana", "", 0), rec("Dana", "", 0))
	records = append(records, rec("Dana", "Oct", 0))
	table := bucketed(records...)

	avg, ok := a.Average(table, Scope{Month: "Oct"})
	require.True(t, ok)
	assert.InDelta(t, 4.5, avg, 1e-9)

	avg, ok = a.Average(table, Scope{})
	require.True(t, ok)
	assert.InDelta(t, 6.5, avg, 1e-9)
}

func TestAverageEmptyScope(t *testing.T) {
	a := NewAggregator(testHorizon())

	_, ok := a.Average(nil, Scope{})
	assert.False(t, ok)

	_, ok = a.Average(bucketed(rec("Dana", "Oct", 6)), Scope{Month: "Nov"})
	assert.False(t, ok)
}

func TestDelta(t *testing.T) {
	a := NewAggregator(testHorizon())

	var table []domain.CallRecord
	for i := 0; i < 4; i++ {
		table = append(table, rec("Dana", "Sep", 0))
	}
	for i := 0; i < 6; i++ {
		table = append(table, rec("Dana", "Oct", 0))
	}
	table = append(table, rec("Shouq", "Oct", 0))

	// Explicit month scope.
	delta, ok := a.Delta(table, Scope{Month: "Oct"})
	require.True(t, ok)
	assert.Equal(t, 3, delta)

	// Latest month in scope when no month selected.
	delta, ok = a.Delta(table, Scope{Source: "Dana"})
	require.True(t, ok)
	assert.Equal(t, 2, delta)

	// No preceding month for the first horizon month.
	_, ok = a.Delta(table, Scope{Month: "Aug"})
	assert.False(t, ok)

	// Previous month empty within the source scope.
	_, ok = a.Delta(table, Scope{Source: "Shouq", Month: "Oct"})
	assert.False(t, ok)
}

func TestTopMonth(t *testing.T) {
	a := NewAggregator(testHorizon())

	table := []domain.CallRecord{
		rec("Dana", "Sep", 0),
		rec("Dana", "Oct", 0),
		rec("Dana", "Oct", 0),
		rec("Shouq", "Nov", 0),
	}

	month, count, ok := a.TopMonth(table, Scope{})
	require.True(t, ok)
	assert.Equal(t, "Oct", month)
	assert.Equal(t, 2, count)

	month, count, ok = a.TopMonth(table, Scope{Source: "Shouq"})
	require.True(t, ok)
	assert.Equal(t, "Nov", month)
	assert.Equal(t, 1, count)

	_, _, ok = a.TopMonth(nil, Scope{})
	assert.False(t, ok)
}

func TestMonthsAndSources(t *testing.T) {
	a := NewAggregator(testHorizon())

	table := []domain.CallRecord{
		rec("Shouq", "Oct", 0),
		rec("Dana", "Aug", 0),
		rec("Dana", "", 0),
	}

	assert.Equal(t, []string{"Aug", "Oct"}, a.Months(table))
	assert.Equal(t, []string{"Dana", "Shouq"}, a.Sources(table))
}

func TestWeeksForMonthRankOrder(t *testing.T) {
	a := NewAggregator(testHorizon())

	table := bucketed(
		rec("Dana", "Oct", 20),
		rec("Dana", "Oct", 6),
		rec("Dana", "Oct", 14),
	)

	weeks := a.WeeksForMonth(table, Scope{Month: "Oct"})
	assert.Equal(t, []string{"05/10 - 11/10", "12/10 - 18/10", "19/10 - 25/10"}, weeks)
}

func TestSearch(t *testing.T) {
	a := NewAggregator(testHorizon())

	table := []domain.CallRecord{
		{SourceID: "Dana", CustomerName: "Ahmed Ali", Company: "ACME"},
		{SourceID: "Dana", CustomerName: "Sara", City: "جدة"},
	}

	assert.Len(t, a.Search(table, "acme"), 1)
	assert.Len(t, a.Search(table, "جدة"), 1)
	assert.Len(t, a.Search(table, ""), 2)
	assert.Empty(t, a.Search(table, "nope"))
}
