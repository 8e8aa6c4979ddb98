package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callpulse/pkg/contracts/domain"
)

func monthRows(source, month string, n int) []domain.CallRecord {
	rows := make([]domain.CallRecord, n)
	for i := range rows {
		rows[i] = domain.CallRecord{SourceID: source, Month: month}
	}
	return rows
}

func TestMergeConcatenatesSources(t *testing.T) {
	m := NewMerger("Shouq", 599940931, 599940952, nil)

	result := m.Merge([]domain.SourceTable{
		{SourceID: "Dana", Records: monthRows("Dana", "Oct", 5)},
		{SourceID: "Rahaf", Records: monthRows("Rahaf", "Oct", 5)},
	})

	require.Len(t, result.Records, 10)
	assert.Zero(t, result.RowsExcluded)

	// source order preserved, rows within a source in file order
	assert.Equal(t, "Dana", result.Records[0].SourceID)
	assert.Equal(t, "Rahaf", result.Records[9].SourceID)

	octCount := 0
	for _, rec := range result.Records {
		if rec.Month == "Oct" {
			octCount++
		}
	}
	assert.Equal(t, 10, octCount)
}

func TestMergeDropsDenylistedFixtureRows(t *testing.T) {
	m := NewMerger("Shouq", 599940931, 599940952, nil)

	result := m.Merge([]domain.SourceTable{
		{SourceID: "Shouq", Records: []domain.CallRecord{
			{SourceID: "Shouq", Phone: "599940931"},
			{SourceID: "Shouq", Phone: "599940952"},
			{SourceID: "Shouq", Phone: "599940953"},
			{SourceID: "Shouq", Phone: "555000111"},
		}},
		{SourceID: "Dana", Records: []domain.CallRecord{
			// same number from another source is kept
			{SourceID: "Dana", Phone: "599940931"},
		}},
	})

	assert.Equal(t, 2, result.RowsExcluded)
	require.Len(t, result.Records, 3)
	for _, rec := range result.Records {
		if rec.SourceID == "Shouq" {
			assert.NotContains(t, []string{"599940931", "599940952"}, rec.Phone)
		}
	}
}

func TestMergeNonNumericPhoneKept(t *testing.T) {
	m := NewMerger("Shouq", 599940931, 599940952, nil)

	result := m.Merge([]domain.SourceTable{
		{SourceID: "Shouq", Records: []domain.CallRecord{
			{SourceID: "Shouq", Phone: ""},
			{SourceID: "Shouq", Phone: "05x99"},
		}},
	})

	assert.Len(t, result.Records, 2)
	assert.Zero(t, result.RowsExcluded)
}

func TestMergeEmptyInput(t *testing.T) {
	m := NewMerger("Shouq", 599940931, 599940952, nil)

	result := m.Merge(nil)
	assert.Empty(t, result.Records)
	assert.Zero(t, result.RowsExcluded)
}
