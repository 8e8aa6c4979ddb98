package dataprocessing

import (
	"log/slog"
	"strconv"

	"callpulse/pkg/contracts/domain"
)

// Merger concatenates per-source tables into the combined table. Source
// order follows the order tables arrive in (lexicographic by source
// identifier, from file discovery); row order within a source is file
// row order.
//
// One known source seeded its export with test-fixture rows carrying
// phone numbers from a fixed range; those rows are dropped here by an
// explicit denylist, not by general deduplication.
type Merger struct {
	denySource    string
	denyPhoneLow  int64
	denyPhoneHigh int64
	logger        *slog.Logger
}

// NewMerger creates a Merger with the test-fixture denylist.
func NewMerger(denySource string, denyPhoneLow, denyPhoneHigh int64, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{
		denySource:    denySource,
		denyPhoneLow:  denyPhoneLow,
		denyPhoneHigh: denyPhoneHigh,
		logger:        logger.With(slog.String("component", "merger")),
	}
}

// MergeResult is the combined table plus exclusion accounting.
type MergeResult struct {
	Records      []domain.CallRecord
	RowsExcluded int
}

// Merge unions the per-source tables into one combined table, dropping
// denylisted test-fixture rows.
func (m *Merger) Merge(tables []domain.SourceTable) *MergeResult {
	total := 0
	for _, t := range tables {
		total += len(t.Records)
	}

	result := &MergeResult{Records: make([]domain.CallRecord, 0, total)}
	for _, table := range tables {
		for _, rec := range table.Records {
			if m.denied(&rec) {
				result.RowsExcluded++
				continue
			}
			result.Records = append(result.Records, rec)
		}
	}

	if result.RowsExcluded > 0 {
		m.logger.Info("excluded test-fixture rows",
			slog.String("source", m.denySource),
			slog.Int("rows", result.RowsExcluded))
	}

	return result
}

func (m *Merger) denied(rec *domain.CallRecord) bool {
	if m.denySource == "" || rec.SourceID != m.denySource {
		return false
	}
	phone, err := strconv.ParseInt(rec.Phone, 10, 64)
	if err != nil {
		return false
	}
	return phone >= m.denyPhoneLow && phone <= m.denyPhoneHigh
}
