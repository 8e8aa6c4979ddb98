package dataprocessing

import (
	"sort"
	"time"

	"callpulse/pkg/contracts/domain"
)

// Bucketer assigns week buckets to records with resolved dates. Weeks
// start on Sunday and span a fixed number of calendar days (5 for a
// Sun-Thu business week, 7 for a full Sun-Sat week).
type Bucketer struct {
	weekLengthDays int
}

// NewBucketer creates a Bucketer with the configured week span.
func NewBucketer(weekLengthDays int) *Bucketer {
	return &Bucketer{weekLengthDays: weekLengthDays}
}

// WeekStart returns the most recent Sunday on or before the given date.
func WeekStart(date time.Time) time.Time {
	offset := int(date.Weekday())
	return date.AddDate(0, 0, -offset)
}

// Bucket populates week fields on every record with a defined event
// date, then assigns week ranks per month.
//
// Rank numbering is deliberately scoped to the currently loaded table:
// all distinct week starts observed for a month, across whatever sources
// are loaded, sort ascending and take ranks 1..N. The same physical week
// can therefore carry a different rank when the loaded source set
// differs; the rank means "week N within what is currently visible for
// this month", not a globally stable number.
func (b *Bucketer) Bucket(records []domain.CallRecord) []domain.CallRecord {
	out := make([]domain.CallRecord, len(records))
	copy(out, records)

	// Distinct week starts per month, collected while stamping the
	// week range on each dated record.
	weeksByMonth := make(map[string]map[time.Time]bool)
	for i := range out {
		rec := &out[i]
		if rec.EventDate == nil {
			continue
		}

		start := WeekStart(*rec.EventDate)
		end := start.AddDate(0, 0, b.weekLengthDays-1)
		rec.WeekStart = &start
		rec.WeekEnd = &end

		// Ranks are defined per month; a dated record whose month could
		// not be resolved keeps its week range but stays unranked.
		if rec.Month == "" {
			continue
		}
		if weeksByMonth[rec.Month] == nil {
			weeksByMonth[rec.Month] = make(map[time.Time]bool)
		}
		weeksByMonth[rec.Month][start] = true
	}

	ranks := make(map[string]map[time.Time]int, len(weeksByMonth))
	for month, weeks := range weeksByMonth {
		starts := make([]time.Time, 0, len(weeks))
		for start := range weeks {
			starts = append(starts, start)
		}
		sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

		ranks[month] = make(map[time.Time]int, len(starts))
		for i, start := range starts {
			ranks[month][start] = i + 1
		}
	}

	for i := range out {
		rec := &out[i]
		if rec.WeekStart == nil {
			continue
		}
		rec.WeekRank = ranks[rec.Month][*rec.WeekStart]
	}

	return out
}

// WeekSpanDays returns the configured bucket length in days.
func (b *Bucketer) WeekSpanDays() int {
	return b.weekLengthDays
}
