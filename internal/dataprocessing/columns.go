package dataprocessing

import "strings"

// Canonical column names used by RawRecord. Source files label these
// columns inconsistently (trailing spaces, Arabic/English variants), so
// every header cell goes through ResolveColumn before field access.
const (
	ColMonth        = "month"
	ColDate         = "date"
	ColCustomerName = "customer_name"
	ColPhone        = "phone"
	ColRegion       = "region"
	ColCity         = "city"
	ColCompany      = "company"
	ColProvider     = "provider"
	ColServiceType  = "service_type"
	ColServiceDesc  = "service_desc"
	ColNotes        = "notes"
)

// columnSynonyms maps trimmed, lowercased header variants onto canonical
// column names. The Arabic entries mirror the headers the agents' workbook
// template actually produces, including its spelling quirks.
var columnSynonyms = map[string]string{
	"الشهر": ColMonth,
	"month": ColMonth,

	"التاريخ":      ColDate,
	"التاريخ/date": ColDate,
	"date":         ColDate,

	"اسم العميل":    ColCustomerName,
	"customer name": ColCustomerName,
	"customer":      ColCustomerName,

	"رقم الجوال": ColPhone,
	"phone":      ColPhone,
	"mobile":     ColPhone,

	"المنطقة": ColRegion,
	"المنطقه": ColRegion,
	"region":  ColRegion,

	"المدينه": ColCity,
	"المدينة": ColCity,
	"city":    ColCity,

	"الشركة": ColCompany,
	"الشركه": ColCompany,
	"company": ColCompany,

	"مقدم الخدمة":       ColProvider,
	"مقدم الخدمه":       ColProvider,
	"مقدم الخدمة (ملف)": ColProvider,
	"provider":          ColProvider,
	"agent":             ColProvider,

	"نوع الخدمة":   ColServiceType,
	"نوع الخدمه":   ColServiceType,
	"service type": ColServiceType,

	"الخدمه المطلوبه": ColServiceDesc,
	"الخدمة المطلوبة": ColServiceDesc,
	"requested service": ColServiceDesc,

	"الملاحظات": ColNotes,
	"ملاحظات":   ColNotes,
	"notes":     ColNotes,
}

// ExpectedSchema is the positional column order of a headerless export,
// used when the two-attempt CSV parse falls back to positional assignment.
var ExpectedSchema = []string{
	ColMonth,
	ColDate,
	ColCustomerName,
	ColPhone,
	ColRegion,
	ColCity,
	ColCompany,
	ColProvider,
	ColServiceType,
	ColServiceDesc,
	ColNotes,
}

// ResolveColumn maps a raw header cell onto its canonical column name.
// Unrecognized headers pass through trimmed and lowercased so the raw
// value stays addressable.
func ResolveColumn(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	if canonical, ok := columnSynonyms[key]; ok {
		return canonical
	}
	return key
}

// IsKnownColumn reports whether a raw header cell resolves to a canonical
// column name.
func IsKnownColumn(header string) bool {
	_, ok := columnSynonyms[strings.ToLower(strings.TrimSpace(header))]
	return ok
}
