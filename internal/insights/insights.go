// Package insights renders the Arabic narrative performance summary
// shown under the dashboard charts.
package insights

import (
	"fmt"
	"strings"

	"callpulse/internal/analytics"
	"callpulse/pkg/contracts/domain"
)

// Summary is the narrative plus the figures it was built from, so the
// presentation layer can restyle individual numbers.
type Summary struct {
	Text       string `json:"text"`
	TotalCalls int    `json:"total_calls"`

	TopRegion      string `json:"top_region,omitempty"`
	TopServiceType string `json:"top_service_type,omitempty"`
	TopCompany     string `json:"top_company,omitempty"`

	// Trend fields compare the last two observed months in scope.
	TrendDelta   int    `json:"trend_delta"`
	TrendLabel   string `json:"trend_label,omitempty"`
	HasTrend     bool   `json:"has_trend"`
}

// Builder composes narrative summaries from scoped tables.
type Builder struct {
	aggregator *analytics.Aggregator
}

// NewBuilder creates a summary Builder on top of an Aggregator.
func NewBuilder(aggregator *analytics.Aggregator) *Builder {
	return &Builder{aggregator: aggregator}
}

// Build produces the Arabic narrative for an already-filtered table. An
// empty table yields a fixed "no data in scope" sentence.
func (b *Builder) Build(scoped []domain.CallRecord) Summary {
	if len(scoped) == 0 {
		return Summary{Text: "لا تتوفر بيانات ضمن النطاق المحدد."}
	}

	summary := Summary{TotalCalls: len(scoped)}
	parts := []string{fmt.Sprintf("إجمالي الاتصالات في النطاق الحالي بلغ %d اتصالًا.", len(scoped))}

	if top := b.aggregator.CountBy(scoped, analytics.DimRegion); len(top) > 0 {
		summary.TopRegion = top[0].Value
		parts = append(parts, fmt.Sprintf("الأكثر نشاطًا: %s.", top[0].Value))
	}
	if top := b.aggregator.CountBy(scoped, analytics.DimServiceType); len(top) > 0 {
		summary.TopServiceType = top[0].Value
		parts = append(parts, fmt.Sprintf("أشيع نوع اتصال: %s.", top[0].Value))
	}
	if top := b.aggregator.CountBy(scoped, analytics.DimCompany); len(top) > 0 {
		summary.TopCompany = top[0].Value
		parts = append(parts, fmt.Sprintf("الشركة الأبرز تواصلًا: %s.", top[0].Value))
	}

	if series := b.aggregator.MonthlySeries(scoped); len(series) >= 2 {
		delta := series[len(series)-1].Count - series[len(series)-2].Count
		summary.TrendDelta = delta
		summary.HasTrend = true
		summary.TrendLabel = trendLabel(delta)
		parts = append(parts, fmt.Sprintf("الاتجاه: %s بمقدار %d مقارنةً بالشهر السابق.",
			summary.TrendLabel, abs(delta)))
	}

	summary.Text = strings.Join(parts, " ")
	return summary
}

func trendLabel(delta int) string {
	switch {
	case delta > 0:
		return "ارتفاع"
	case delta < 0:
		return "انخفاض"
	default:
		return "ثبات"
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
