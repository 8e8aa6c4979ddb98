package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "callpulse/internal/errors"
	"callpulse/pkg/contracts/domain"
)

// Parser reads one agent export into raw rows. Excel workbooks carry the
// data block on a named sheet below a fixed header offset; CSV exports go
// through a two-attempt parse with a positional fallback for headerless
// files.
type Parser struct {
	sheetName       string
	headerRowOffset int
	logger          *slog.Logger
}

// NewParser creates a Parser locating the Excel data block at the given
// sheet and header row offset (zero-based).
func NewParser(sheetName string, headerRowOffset int, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		sheetName:       sheetName,
		headerRowOffset: headerRowOffset,
		logger:          logger.With(slog.String("component", "parser")),
	}
}

// ParseResult is the raw outcome of parsing one source file.
type ParseResult struct {
	Rows        []domain.RawRecord
	RowsSkipped int
}

// ParseFile dispatches on the file extension. A file that cannot be read
// at all returns a parsing error; the caller skips that source and
// continues with the rest.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return p.parseExcel(path)
	case ".csv":
		return p.parseCSV(path)
	default:
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("unsupported source file type: %s", filepath.Base(path)), nil)
	}
}

func (p *Parser) parseExcel(path string) (*ParseResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("failed to open workbook %s", filepath.Base(path)), err)
	}
	defer f.Close()

	rows, sheetName, err := p.findDataSheet(f)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("found data sheet",
		slog.String("file", filepath.Base(path)),
		slog.String("sheet", sheetName),
		slog.Int("total_rows", len(rows)))

	if len(rows) <= p.headerRowOffset {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("sheet %s has no rows below the header offset", sheetName), nil)
	}

	headers := resolveHeaders(rows[p.headerRowOffset])
	return p.collectRows(headers, rows[p.headerRowOffset+1:]), nil
}

// findDataSheet returns the rows of the configured sheet, or falls back
// to scanning every sheet for one whose header offset row resolves to
// known columns.
func (p *Parser) findDataSheet(f *excelize.File) ([][]string, string, error) {
	if rows, err := f.GetRows(p.sheetName); err == nil && len(rows) > p.headerRowOffset {
		return rows, p.sheetName, nil
	}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) <= p.headerRowOffset {
			continue
		}
		known := 0
		for _, cell := range rows[p.headerRowOffset] {
			if IsKnownColumn(cell) {
				known++
			}
		}
		if known >= 2 {
			return rows, name, nil
		}
	}

	return nil, "", apperrors.NewParsingError("no sheet contains the expected data block", nil)
}

// parseCSV implements the two-attempt strategy: parse with the first row
// as a header, check the header is plausible, and on failure re-read the
// rows headerless with the expected schema assigned positionally.
func (p *Parser) parseCSV(path string) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("failed to open %s", filepath.Base(path)), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("%s contains no parseable rows", filepath.Base(path)), nil)
	}

	var firstData []string
	if len(rows) > 1 {
		firstData = rows[1]
	}

	if HeaderPlausible(rows[0], firstData) {
		headers := resolveHeaders(rows[0])
		result := p.collectRows(headers, rows[1:])
		result.RowsSkipped += skipped
		return result, nil
	}

	p.logger.Warn("header row not plausible, assigning expected schema positionally",
		slog.String("file", filepath.Base(path)))
	result := p.collectRows(ExpectedSchema, rows)
	result.RowsSkipped += skipped
	return result, nil
}

// HeaderPlausible decides whether the first row of a delimited file is a
// header. It is a pure function of the candidate header cells and the
// first data row: a plausible header resolves at least two known columns
// and contains no cell that itself looks like data (a date or a month).
func HeaderPlausible(header []string, firstData []string) bool {
	if len(header) == 0 {
		return false
	}

	known := 0
	for _, cell := range header {
		trimmed := strings.TrimSpace(cell)
		if trimmed == "" {
			continue
		}
		if strings.ContainsAny(trimmed, "/-") && looksLikeDate(trimmed) {
			return false
		}
		if _, ok := ResolveMonthToken(trimmed); ok {
			return false
		}
		if IsKnownColumn(trimmed) {
			known++
		}
	}
	if known < 2 {
		return false
	}

	// A header narrower than the data suggests the file is headerless
	// and the first row is a short record.
	if len(firstData) > len(header)+2 {
		return false
	}

	return true
}

func looksLikeDate(value string) bool {
	digits := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 4
}

// resolveHeaders maps a raw header row onto canonical column names.
func resolveHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, cell := range row {
		headers[i] = ResolveColumn(cell)
	}
	return headers
}

// collectRows zips data rows against resolved headers, dropping fully
// empty rows and counting malformed ones.
func (p *Parser) collectRows(headers []string, rows [][]string) *ParseResult {
	result := &ParseResult{}
	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}

		raw := make(domain.RawRecord, len(headers))
		for i, header := range headers {
			if header == "" || i >= len(row) {
				continue
			}
			raw[header] = row[i]
		}
		if len(raw) == 0 {
			result.RowsSkipped++
			continue
		}
		result.Rows = append(result.Rows, raw)
	}
	return result
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
