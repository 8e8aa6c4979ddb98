package dataprocessing

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"callpulse/pkg/contracts/domain"
)

// regionSpellings canonicalizes region names the agents type with
// inconsistent taa-marbuta spelling.
var regionSpellings = map[string]string{
	"المنطقه الشرقيه": "المنطقة الشرقية",
}

// dayFirstLayouts are the accepted day-first date layouts for slash or
// hyphen separated date cells.
var dayFirstLayouts = []string{
	"2/1/2006",
	"02/01/2006",
	"2/1/06",
	"2-1-2006",
	"02-01-2006",
	"2-1-06",
}

// Normalizer turns raw rows into canonical call records. It never rejects
// a record for unresolvable fields: those fields stay undefined and the
// record is retained.
type Normalizer struct {
	year    int
	horizon *Horizon
	logger  *slog.Logger
}

// NewNormalizer creates a Normalizer for a fixed reporting year and
// month horizon.
func NewNormalizer(year int, horizon *Horizon, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		year:    year,
		horizon: horizon,
		logger:  logger.With(slog.String("component", "normalizer")),
	}
}

// Normalize converts one raw row into a CallRecord tagged with sourceID.
// The input map is not mutated.
func (n *Normalizer) Normalize(sourceID string, raw domain.RawRecord) domain.CallRecord {
	rec := domain.CallRecord{
		SourceID:     sourceID,
		CustomerName: cleanField(raw.Get(ColCustomerName)),
		Phone:        cleanField(raw.Get(ColPhone)),
		Region:       canonicalRegion(cleanField(raw.Get(ColRegion))),
		City:         cleanField(raw.Get(ColCity)),
		Company:      cleanField(raw.Get(ColCompany)),
		Provider:     cleanField(raw.Get(ColProvider)),
		ServiceType:  cleanField(raw.Get(ColServiceType)),
		ServiceDesc:  cleanField(raw.Get(ColServiceDesc)),
		Notes:        cleanField(raw.Get(ColNotes)),
	}
	if rec.Provider == "" {
		rec.Provider = sourceID
	}

	month, monthOK := ResolveMonthToken(raw.Get(ColMonth))
	rec.EventDate = n.resolveDate(raw.Get(ColDate), month, monthOK)

	// Date-derived month is the fallback when the month cell is blank
	// or unrecognizable.
	if !monthOK && rec.EventDate != nil {
		month = MonthToken(rec.EventDate.Month())
		monthOK = true
	}

	// Out-of-horizon months are dropped to undefined, not kept.
	if monthOK && n.horizon.Contains(month) {
		rec.Month = month
	}

	return rec
}

// resolveDate parses the date cell. Slash or hyphen cells parse as
// day-first calendar dates; bare numeric cells combine with the resolved
// month and the fixed reporting year. Failures yield nil, never an error.
func (n *Normalizer) resolveDate(rawDate, month string, monthOK bool) *time.Time {
	value := cleanField(rawDate)
	if value == "" {
		return nil
	}

	if strings.ContainsAny(value, "/-") {
		for _, layout := range dayFirstLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
				return &t
			}
		}
		return nil
	}

	if !monthOK {
		return nil
	}

	day, ok := parseDay(value)
	if !ok {
		return nil
	}

	m := time.Month(MonthNumber(month))
	t := time.Date(n.year, m, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != m {
		// Day overflowed the month (e.g. Feb 31); treat as unresolvable.
		return nil
	}
	return &t
}

// parseDay reads a day-of-month from a numeric cell, tolerating float
// formatting ("15.0") and clamping into [1,31].
func parseDay(value string) (int, bool) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	day := int(f)
	if day < 1 {
		day = 1
	}
	if day > 31 {
		day = 31
	}
	return day, true
}

// cleanField trims a raw cell and collapses missing-value tokens to "".
func cleanField(value string) string {
	trimmed := strings.TrimSpace(value)
	switch strings.ToLower(trimmed) {
	case "", "nan", "none", "null":
		return ""
	}
	return trimmed
}

func canonicalRegion(region string) string {
	if canonical, ok := regionSpellings[region]; ok {
		return canonical
	}
	return region
}
