// Package exporter writes dashboard data to CSV, both for the download
// endpoints and the offline export command.
//
// All writers emit a UTF-8 BOM so Excel renders the Arabic text
// correctly.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"callpulse/internal/analytics"
	"callpulse/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// recordRow is the flat CSV shape of one call record; dates render as
// day-first strings to match the source files.
type recordRow struct {
	Source       string `csv:"Source"`
	Month        string `csv:"Month"`
	Date         string `csv:"Date"`
	Week         string `csv:"Week"`
	WeekRank     string `csv:"WeekRank"`
	CustomerName string `csv:"CustomerName"`
	Phone        string `csv:"Phone"`
	Region       string `csv:"Region"`
	City         string `csv:"City"`
	Company      string `csv:"Company"`
	Provider     string `csv:"Provider"`
	ServiceType  string `csv:"ServiceType"`
	ServiceDesc  string `csv:"ServiceDesc"`
	Notes        string `csv:"Notes"`
}

// WriteRecords streams the merged table as CSV.
func WriteRecords(w io.Writer, records []domain.CallRecord) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	rows := make([]recordRow, 0, len(records))
	for i := range records {
		rec := &records[i]
		row := recordRow{
			Source:       rec.SourceID,
			Month:        rec.Month,
			Week:         rec.WeekLabel(),
			CustomerName: rec.CustomerName,
			Phone:        rec.Phone,
			Region:       rec.Region,
			City:         rec.City,
			Company:      rec.Company,
			Provider:     rec.Provider,
			ServiceType:  rec.ServiceType,
			ServiceDesc:  rec.ServiceDesc,
			Notes:        rec.Notes,
		}
		if rec.EventDate != nil {
			row.Date = rec.EventDate.Format("02/01/2006")
		}
		if rec.WeekRank > 0 {
			row.WeekRank = strconv.Itoa(rec.WeekRank)
		}
		rows = append(rows, row)
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	return nil
}

// SummaryInput collects the aggregate sections of the summary export.
type SummaryInput struct {
	Series   []domain.MonthlyCount
	Regions  []analytics.CategoryCount
	Types    []analytics.CategoryCount
	Forecast domain.Forecast
}

// WriteSummary writes the aggregate summary as three labelled CSV
// sections: the monthly series, the per-category counts, and the
// forecast line.
func WriteSummary(w io.Writer, input SummaryInput) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	writeSection := func(header []string, rows [][]string) error {
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, row := range rows {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		// blank line between sections
		return cw.Write([]string{""})
	}

	monthRows := make([][]string, 0, len(input.Series))
	for _, point := range input.Series {
		monthRows = append(monthRows, []string{point.Month, strconv.Itoa(point.Count)})
	}
	if err := writeSection([]string{"Month", "Calls"}, monthRows); err != nil {
		return fmt.Errorf("failed to write monthly section: %w", err)
	}

	regionRows := make([][]string, 0, len(input.Regions))
	for _, c := range input.Regions {
		regionRows = append(regionRows, []string{c.Value, strconv.Itoa(c.Count)})
	}
	if err := writeSection([]string{"Region", "Calls"}, regionRows); err != nil {
		return fmt.Errorf("failed to write region section: %w", err)
	}

	typeRows := make([][]string, 0, len(input.Types))
	for _, c := range input.Types {
		typeRows = append(typeRows, []string{c.Value, strconv.Itoa(c.Count)})
	}
	if err := writeSection([]string{"ServiceType", "Calls"}, typeRows); err != nil {
		return fmt.Errorf("failed to write service-type section: %w", err)
	}

	forecastRow := []string{input.Forecast.NextMonth, "", "", "", string(input.Forecast.Method)}
	if input.Forecast.Predicted != nil {
		forecastRow[1] = strconv.Itoa(*input.Forecast.Predicted)
	}
	if input.Forecast.Lower != nil {
		forecastRow[2] = strconv.Itoa(*input.Forecast.Lower)
	}
	if input.Forecast.Upper != nil {
		forecastRow[3] = strconv.Itoa(*input.Forecast.Upper)
	}
	if err := cw.Write([]string{"NextMonth", "Predicted", "Lower", "Upper", "Method"}); err != nil {
		return fmt.Errorf("failed to write forecast header: %w", err)
	}
	if err := cw.Write(forecastRow); err != nil {
		return fmt.Errorf("failed to write forecast row: %w", err)
	}

	return nil
}
