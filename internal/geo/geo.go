// Package geo maps city and region names onto coordinates for the
// call-distribution map.
package geo

import (
	"sort"
	"strings"

	"callpulse/pkg/contracts/domain"
)

// LatLon is a WGS84 coordinate pair.
type LatLon struct {
	Lat float64
	Lon float64
}

// cityCoords covers the cities the agents actually record.
var cityCoords = map[string]LatLon{
	"الرياض":  {24.7136, 46.6753},
	"جدة":     {21.4858, 39.1925},
	"مكة":     {21.3891, 39.8579},
	"المدينة": {24.5247, 39.5692},
	"الدمام":  {26.3927, 49.9777},
	"الخبر":   {26.2794, 50.2083},
	"الطائف":  {21.2703, 40.4158},
	"أبها":    {18.2465, 42.5117},
	"حائل":    {27.5114, 41.7208},
	"تبوك":    {28.3838, 36.5662},
	"جازان":   {16.8892, 42.5700},
}

// regionCoords approximates each administrative region by a centroid.
var regionCoords = map[string]LatLon{
	"المنطقة الشرقية": {26.5, 49.8},
	"منطقة الرياض":    {24.7, 46.7},
	"منطقة مكة":       {21.4, 40.7},
	"منطقة المدينة":   {24.6, 39.6},
	"منطقة القصيم":    {26.3, 43.96},
	"منطقة تبوك":      {28.4, 36.6},
	"منطقة حائل":      {27.5, 41.7},
	"منطقة جازان":     {16.9, 42.6},
	"منطقة نجران":     {17.6, 44.4},
	"منطقة عسير":      {18.2, 42.5},
	"منطقة الجوف":     {29.97, 40.2},
	"الحدود الشمالية": {30.0, 41.0},
	"منطقة الباحة":    {20.0, 41.45},
	"منطقة الطائف":    {21.27, 40.42},
}

// CityCoords looks up a city by name.
func CityCoords(name string) (LatLon, bool) {
	ll, ok := cityCoords[strings.TrimSpace(name)]
	return ll, ok
}

// RegionCoords looks up a region by name.
func RegionCoords(name string) (LatLon, bool) {
	ll, ok := regionCoords[strings.TrimSpace(name)]
	return ll, ok
}

// BuildMapPoints aggregates records into map bubbles. City-level points
// are preferred; only when no record maps to a known city does it fall
// back to region centroids. Points sort descending by count.
func BuildMapPoints(records []domain.CallRecord) []domain.MapPoint {
	points := countKnown(records, func(r *domain.CallRecord) string { return r.City }, cityCoords)
	if len(points) == 0 {
		points = countKnown(records, func(r *domain.CallRecord) string { return r.Region }, regionCoords)
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Count != points[j].Count {
			return points[i].Count > points[j].Count
		}
		return points[i].Label < points[j].Label
	})
	return points
}

func countKnown(records []domain.CallRecord, field func(*domain.CallRecord) string, coords map[string]LatLon) []domain.MapPoint {
	counts := make(map[string]int)
	for i := range records {
		name := strings.TrimSpace(field(&records[i]))
		if name == "" {
			continue
		}
		if _, ok := coords[name]; !ok {
			continue
		}
		counts[name]++
	}

	points := make([]domain.MapPoint, 0, len(counts))
	for name, count := range counts {
		ll := coords[name]
		points = append(points, domain.MapPoint{Label: name, Lat: ll.Lat, Lon: ll.Lon, Count: count})
	}
	return points
}
