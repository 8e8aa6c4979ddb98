package domain

import (
	"time"
)

// RawRecord is one row of a source file after column-name resolution:
// canonical column name -> raw cell text. Columns missing from the source
// are simply absent from the map.
type RawRecord map[string]string

// Get returns the raw value for a canonical column, or "" when absent.
func (r RawRecord) Get(col string) string {
	return r[col]
}

// CallRecord is a single normalized call-center record. String fields are
// trimmed; an empty string means the field is undefined. Date and week
// fields are nil when unresolvable. SourceID is assigned once at parse
// time and never changes.
type CallRecord struct {
	SourceID string `json:"source_id" csv:"Source"`

	// Month is a canonical short month token (e.g. "Oct") from the active
	// reporting horizon, or "" when unresolvable.
	Month string `json:"month" csv:"Month"`

	EventDate *time.Time `json:"event_date,omitempty" csv:"Date"`

	// Week bucket fields, derived from EventDate. WeekRank is 1-based
	// within (loaded scope, Month); 0 means unassigned.
	WeekStart *time.Time `json:"week_start,omitempty" csv:"WeekStart"`
	WeekEnd   *time.Time `json:"week_end,omitempty" csv:"WeekEnd"`
	WeekRank  int        `json:"week_rank,omitempty" csv:"WeekRank"`

	CustomerName string `json:"customer_name,omitempty" csv:"CustomerName"`
	Phone        string `json:"phone,omitempty" csv:"Phone"`
	Region       string `json:"region,omitempty" csv:"Region"`
	City         string `json:"city,omitempty" csv:"City"`
	Company      string `json:"company,omitempty" csv:"Company"`
	Provider     string `json:"provider,omitempty" csv:"Provider"`
	ServiceType  string `json:"service_type,omitempty" csv:"ServiceType"`
	ServiceDesc  string `json:"service_desc,omitempty" csv:"ServiceDesc"`
	Notes        string `json:"notes,omitempty" csv:"Notes"`
}

// WeekLabel returns the display label for the record's week bucket
// ("DD/MM - DD/MM"), or "" when the week is undefined. Scope week filters
// match on this label.
func (c *CallRecord) WeekLabel() string {
	if c.WeekStart == nil || c.WeekEnd == nil {
		return ""
	}
	return c.WeekStart.Format("02/01") + " - " + c.WeekEnd.Format("02/01")
}

// HasDate reports whether the record carries a resolved event date.
func (c *CallRecord) HasDate() bool {
	return c.EventDate != nil
}

// SourceTable is the set of normalized records parsed from one source file.
type SourceTable struct {
	SourceID string       `json:"source_id"`
	Records  []CallRecord `json:"records"`

	// RowsSkipped counts malformed rows dropped during parsing.
	RowsSkipped int `json:"rows_skipped"`
}
