package analytics

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"callpulse/internal/dataprocessing"
	"callpulse/pkg/contracts/domain"
)

// Scope is the conjunction of source, month and week filters applied to
// the merged table. Empty elements are no-ops.
type Scope struct {
	Source string
	Month  string
	Week   string
}

// IsZero reports whether no filter element is set.
func (s Scope) IsZero() bool {
	return s.Source == "" && s.Month == "" && s.Week == ""
}

// Grouping dimensions accepted by CountBy.
const (
	DimRegion      = "region"
	DimCity        = "city"
	DimCompany     = "company"
	DimProvider    = "provider"
	DimServiceType = "service_type"
	DimMonth       = "month"
	DimWeek        = "week"
)

// CategoryCount is one grouped-count row.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Aggregator produces scoped counts, averages and deltas over the merged
// table. Every operation derives a new view; the base table is never
// mutated.
type Aggregator struct {
	horizon *dataprocessing.Horizon
}

// NewAggregator creates an Aggregator over the given reporting horizon.
func NewAggregator(horizon *dataprocessing.Horizon) *Aggregator {
	return &Aggregator{horizon: horizon}
}

// Filter narrows the table to the scope: source AND month AND week, in
// that order. The week element matches the record's week label.
func (a *Aggregator) Filter(records []domain.CallRecord, scope Scope) []domain.CallRecord {
	out := records
	if scope.Source != "" {
		out = lo.Filter(out, func(r domain.CallRecord, _ int) bool {
			return r.SourceID == scope.Source
		})
	}
	if scope.Month != "" {
		out = lo.Filter(out, func(r domain.CallRecord, _ int) bool {
			return r.Month == scope.Month
		})
	}
	if scope.Week != "" {
		out = lo.Filter(out, func(r domain.CallRecord, _ int) bool {
			return r.WeekLabel() == scope.Week
		})
	}
	return out
}

// CountBy groups the records by a categorical dimension and counts
// non-empty values, sorted descending by count (ties alphabetical).
func (a *Aggregator) CountBy(records []domain.CallRecord, dimension string) []CategoryCount {
	counts := make(map[string]int)
	for i := range records {
		value := dimensionValue(&records[i], dimension)
		if value == "" {
			continue
		}
		counts[value]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for value, count := range counts {
		out = append(out, CategoryCount{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// MonthlySeries counts records per month in canonical month order.
// Months with zero observations are dropped, not zero-filled.
func (a *Aggregator) MonthlySeries(records []domain.CallRecord) []domain.MonthlyCount {
	counts := lo.CountValuesBy(records, func(r domain.CallRecord) string {
		return r.Month
	})

	out := make([]domain.MonthlyCount, 0, len(counts))
	for _, month := range a.horizon.Months() {
		if n := counts[month]; n > 0 {
			out = append(out, domain.MonthlyCount{Month: month, Count: n})
		}
	}
	return out
}

// Average computes the scope-dependent mean volume. With a week selected
// it is the mean daily count within that week; with a month but no week,
// the mean weekly count within the month; otherwise the mean monthly
// count across the whole scope. The boolean is false when the scoped set
// is empty.
func (a *Aggregator) Average(records []domain.CallRecord, scope Scope) (float64, bool) {
	scoped := a.Filter(records, scope)
	if len(scoped) == 0 {
		return 0, false
	}

	switch {
	case scope.Week != "":
		days := weekSpanDays(scoped)
		return float64(len(scoped)) / float64(days), true

	case scope.Month != "":
		// Only records that landed in a week bucket contribute; rows
		// without a resolved date would inflate the mean otherwise.
		bucketed := lo.Filter(scoped, func(r domain.CallRecord, _ int) bool {
			return r.WeekLabel() != ""
		})
		weeks := lo.Uniq(lo.Map(bucketed, func(r domain.CallRecord, _ int) string {
			return r.WeekLabel()
		}))
		if len(weeks) == 0 {
			return 0, false
		}
		return float64(len(bucketed)) / float64(len(weeks)), true

	default:
		dated := lo.Filter(scoped, func(r domain.CallRecord, _ int) bool {
			return r.Month != ""
		})
		months := lo.Uniq(lo.Map(dated, func(r domain.CallRecord, _ int) string {
			return r.Month
		}))
		if len(months) == 0 {
			return 0, false
		}
		return float64(len(dated)) / float64(len(months)), true
	}
}

// weekSpanDays reads the bucket length off the scoped records, capped to
// the actual bucket range. Records in one week share one bucket.
func weekSpanDays(scoped []domain.CallRecord) int {
	for i := range scoped {
		if scoped[i].WeekStart != nil && scoped[i].WeekEnd != nil {
			return int(scoped[i].WeekEnd.Sub(*scoped[i].WeekStart).Hours()/24) + 1
		}
	}
	return 1
}

// Delta compares the current month's row count to the immediately
// preceding horizon month within the same source scope. The current
// month is the scope's month when set, otherwise the latest month
// present in scope. The boolean is false when either month has zero rows
// or no preceding month exists.
func (a *Aggregator) Delta(records []domain.CallRecord, scope Scope) (int, bool) {
	sourceScoped := a.Filter(records, Scope{Source: scope.Source})

	current := scope.Month
	if current == "" {
		present := a.monthsPresent(sourceScoped)
		if len(present) == 0 {
			return 0, false
		}
		current = present[len(present)-1]
	}

	previous, ok := a.horizon.Previous(current)
	if !ok {
		return 0, false
	}

	currentCount := len(a.Filter(sourceScoped, Scope{Month: current}))
	previousCount := len(a.Filter(sourceScoped, Scope{Month: previous}))
	if currentCount == 0 || previousCount == 0 {
		return 0, false
	}
	return currentCount - previousCount, true
}

// TopMonth returns the month with the highest row count in the source
// scope, with ties broken by canonical month order.
func (a *Aggregator) TopMonth(records []domain.CallRecord, scope Scope) (string, int, bool) {
	sourceScoped := a.Filter(records, Scope{Source: scope.Source})
	series := a.MonthlySeries(sourceScoped)
	if len(series) == 0 {
		return "", 0, false
	}

	top := series[0]
	for _, point := range series[1:] {
		if point.Count > top.Count {
			top = point
		}
	}
	return top.Month, top.Count, true
}

// Months lists the horizon months present in the table, in canonical
// order.
func (a *Aggregator) Months(records []domain.CallRecord) []string {
	return a.monthsPresent(records)
}

// Sources lists the distinct source identifiers present in the table,
// sorted alphabetically.
func (a *Aggregator) Sources(records []domain.CallRecord) []string {
	sources := lo.Uniq(lo.Map(records, func(r domain.CallRecord, _ int) string {
		return r.SourceID
	}))
	sort.Strings(sources)
	return sources
}

// WeeksForMonth lists the distinct week labels observed for a month, in
// week-rank order.
func (a *Aggregator) WeeksForMonth(records []domain.CallRecord, scope Scope) []string {
	scoped := a.Filter(records, Scope{Source: scope.Source, Month: scope.Month})

	type week struct {
		label string
		rank  int
	}
	seen := make(map[string]int)
	for i := range scoped {
		label := scoped[i].WeekLabel()
		if label == "" {
			continue
		}
		seen[label] = scoped[i].WeekRank
	}

	weeks := make([]week, 0, len(seen))
	for label, rank := range seen {
		weeks = append(weeks, week{label: label, rank: rank})
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].rank < weeks[j].rank })

	return lo.Map(weeks, func(w week, _ int) string { return w.label })
}

// Search returns records whose display fields contain the query,
// case-insensitively. An empty query returns the input unchanged.
func (a *Aggregator) Search(records []domain.CallRecord, query string) []domain.CallRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}

	return lo.Filter(records, func(r domain.CallRecord, _ int) bool {
		for _, field := range []string{
			r.Month, r.CustomerName, r.Phone, r.Region, r.City,
			r.Company, r.Provider, r.ServiceType, r.ServiceDesc, r.Notes,
		} {
			if strings.Contains(strings.ToLower(field), q) {
				return true
			}
		}
		return false
	})
}

func (a *Aggregator) monthsPresent(records []domain.CallRecord) []string {
	present := lo.Uniq(lo.FilterMap(records, func(r domain.CallRecord, _ int) (string, bool) {
		return r.Month, r.Month != ""
	}))
	return a.horizon.SortTokens(present)
}

func dimensionValue(rec *domain.CallRecord, dimension string) string {
	switch dimension {
	case DimRegion:
		return rec.Region
	case DimCity:
		return rec.City
	case DimCompany:
		return rec.Company
	case DimProvider:
		return rec.Provider
	case DimServiceType:
		return rec.ServiceType
	case DimMonth:
		return rec.Month
	case DimWeek:
		return rec.WeekLabel()
	default:
		return ""
	}
}
