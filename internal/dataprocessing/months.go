package dataprocessing

import (
	"strings"
	"time"
)

// calendarOrder is the plain Jan..Dec cycle. It backs synonym resolution
// and calendar-successor lookups; the reporting horizon is a separate,
// configured subset (see Horizon).
var calendarOrder = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var calendarIndex = func() map[string]int {
	m := make(map[string]int, len(calendarOrder))
	for i, token := range calendarOrder {
		m[token] = i
	}
	return m
}()

// monthSynonyms maps lowercased month spellings onto canonical tokens:
// full English names, and Arabic month names with and without the common
// spelling variants the agents use.
var monthSynonyms = map[string]string{
	"january":   "Jan",
	"february":  "Feb",
	"march":     "Mar",
	"april":     "Apr",
	"may":       "May",
	"june":      "Jun",
	"july":      "Jul",
	"august":    "Aug",
	"september": "Sep",
	"october":   "Oct",
	"november":  "Nov",
	"december":  "Dec",

	"يناير":  "Jan",
	"فبراير": "Feb",
	"مارس":   "Mar",
	"أبريل":  "Apr",
	"ابريل":  "Apr",
	"مايو":   "May",
	"يونيو":  "Jun",
	"يوليو":  "Jul",
	"أغسطس":  "Aug",
	"اغسطس":  "Aug",
	"سبتمبر": "Sep",
	"أكتوبر": "Oct",
	"اكتوبر": "Oct",
	"نوفمبر": "Nov",
	"ديسمبر": "Dec",
}

// MonthToken returns the canonical token for a Go time.Month.
func MonthToken(m time.Month) string {
	return calendarOrder[int(m)-1]
}

// MonthNumber returns the 1-12 calendar number for a canonical token,
// or 0 when the token is unknown.
func MonthNumber(token string) int {
	if idx, ok := calendarIndex[token]; ok {
		return idx + 1
	}
	return 0
}

// NextMonth returns the calendar successor of a canonical month token,
// wrapping December to January. The successor is a pure calendar lookup
// and may fall outside the active reporting horizon.
func NextMonth(token string) (string, bool) {
	idx, ok := calendarIndex[token]
	if !ok {
		return "", false
	}
	return calendarOrder[(idx+1)%len(calendarOrder)], true
}

// ResolveMonthToken maps a raw month value onto a canonical token without
// any horizon check. Resolution order: synonym table match, then a
// first-three-letters match against the canonical abbreviations. Trailing
// punctuation is ignored.
func ResolveMonthToken(raw string) (string, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimRight(cleaned, ".،,")
	if cleaned == "" {
		return "", false
	}

	lower := strings.ToLower(cleaned)
	if token, ok := monthSynonyms[lower]; ok {
		return token, true
	}

	if len(lower) >= 3 {
		prefix := strings.ToUpper(lower[:1]) + lower[1:3]
		if _, ok := calendarIndex[prefix]; ok {
			return prefix, true
		}
	}

	return "", false
}

// Horizon is the ordered set of months the dashboard currently reports
// on. Month tokens resolving outside it are forced to undefined, and its
// order drives time-series sorting and month-over-month deltas.
type Horizon struct {
	months []string
	index  map[string]int
}

// NewHorizon builds a Horizon from an ordered month-token list.
func NewHorizon(months []string) *Horizon {
	h := &Horizon{
		months: make([]string, len(months)),
		index:  make(map[string]int, len(months)),
	}
	copy(h.months, months)
	for i, token := range months {
		h.index[token] = i
	}
	return h
}

// Months returns the horizon's month tokens in reporting order.
func (h *Horizon) Months() []string {
	out := make([]string, len(h.months))
	copy(out, h.months)
	return out
}

// Contains reports whether a canonical token is inside the horizon.
func (h *Horizon) Contains(token string) bool {
	_, ok := h.index[token]
	return ok
}

// Index returns a token's position in reporting order, or -1 when the
// token is outside the horizon.
func (h *Horizon) Index(token string) int {
	if idx, ok := h.index[token]; ok {
		return idx
	}
	return -1
}

// Previous returns the horizon month immediately before the given one in
// reporting order. The first month has no predecessor.
func (h *Horizon) Previous(token string) (string, bool) {
	idx, ok := h.index[token]
	if !ok || idx == 0 {
		return "", false
	}
	return h.months[idx-1], true
}

// SortTokens orders canonical tokens by reporting order, dropping any
// outside the horizon.
func (h *Horizon) SortTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, m := range h.months {
		for _, t := range tokens {
			if t == m {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
