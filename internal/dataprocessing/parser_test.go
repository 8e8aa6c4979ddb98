package dataprocessing

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestHeaderPlausible(t *testing.T) {
	tests := []struct {
		name      string
		header    []string
		firstData []string
		want      bool
	}{
		{
			name:      "arabic template header",
			header:    []string{"الشهر", "التاريخ ", "اسم العميل ", "المنطقة"},
			firstData: []string{"Oct", "15/10/2025", "Ahmed", "منطقة الرياض"},
			want:      true,
		},
		{
			name:      "english header",
			header:    []string{"Month", "Date", "Region", "Company"},
			firstData: []string{"Sep", "3/9/2025", "منطقة مكة", "ACME"},
			want:      true,
		},
		{
			name:   "headerless file starts with data row",
			header: []string{"Oct", "15/10/2025", "Ahmed", "0551234567"},
			want:   false,
		},
		{
			name:   "date cell in header row",
			header: []string{"الشهر", "15/10/2025"},
			want:   false,
		},
		{
			name:   "too few known columns",
			header: []string{"colA", "colB", "الشهر"},
			want:   false,
		},
		{
			name:      "header much narrower than data",
			header:    []string{"الشهر", "التاريخ "},
			firstData: []string{"Oct", "15", "a", "b", "c", "d"},
			want:      false,
		},
		{
			name:   "empty row",
			header: nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HeaderPlausible(tt.header, tt.firstData))
		})
	}
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Dana - October.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseCSVWithHeader(t *testing.T) {
	p := NewParser("الرئيسة", 11, nil)

	path := writeCSV(t, "الشهر,التاريخ ,المنطقة,الشركة\n"+
		"Oct,15/10/2025,منطقة الرياض,ACME\n"+
		"Oct,16/10/2025,منطقة مكة,Beta\n"+
		",,,\n")

	result, err := p.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Zero(t, result.RowsSkipped)

	assert.Equal(t, "Oct", result.Rows[0].Get(ColMonth))
	assert.Equal(t, "15/10/2025", result.Rows[0].Get(ColDate))
	assert.Equal(t, "ACME", result.Rows[0].Get(ColCompany))
}

func TestParseCSVPositionalFallback(t *testing.T) {
	p := NewParser("الرئيسة", 11, nil)

	// No header row at all; columns follow the expected export order.
	path := writeCSV(t, "Oct,15/10/2025,Ahmed,0551234567,منطقة الرياض,الرياض,ACME,Dana,استفسار,سؤال عام,\n"+
		"Oct,16/10/2025,Sara,0557654321,منطقة مكة,جدة,Beta,Dana,شكوى,تأخير,\n")

	result, err := p.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)

	assert.Equal(t, "Oct", result.Rows[0].Get(ColMonth))
	assert.Equal(t, "Ahmed", result.Rows[0].Get(ColCustomerName))
	assert.Equal(t, "استفسار", result.Rows[0].Get(ColServiceType))
}

func TestParseCSVEmptyFile(t *testing.T) {
	p := NewParser("الرئيسة", 11, nil)

	path := writeCSV(t, "")
	_, err := p.ParseFile(path)
	assert.Error(t, err)
}

func TestParseFileUnsupportedExtension(t *testing.T) {
	p := NewParser("الرئيسة", 11, nil)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := p.ParseFile(path)
	assert.Error(t, err)
}

func TestParseFileMissing(t *testing.T) {
	p := NewParser("الرئيسة", 11, nil)

	_, err := p.ParseFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

// writeWorkbook builds an xlsx file with the header row at the given
// zero-based offset, mirroring the agent export template where rows 1-11
// hold a title block.
func writeWorkbook(t *testing.T, sheet string, headerOffset int, headers []string, data [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	require.NoError(t, f.SetCellValue(sheet, "A1", "تقرير الاتصالات"))
	require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", headerOffset+1), &headers))
	for i, row := range data {
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", headerOffset+2+i), &row))
	}

	path := filepath.Join(t.TempDir(), "Dana - October.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParseExcelConfiguredSheet(t *testing.T) {
	p := NewParser("الرئيسة", 11, nil)

	path := writeWorkbook(t, "الرئيسة", 11,
		[]string{"الشهر", "التاريخ ", "اسم العميل ", "المنطقه", "الشركة"},
		[][]string{
			{"Oct", "15/10/2025", "Ahmed", "منطقة الرياض", "ACME"},
			{"Oct", "16/10/2025", "Sara", "منطقة مكة", "Beta"},
			{"", "", "", "", ""},
		})

	result, err := p.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Zero(t, result.RowsSkipped)

	assert.Equal(t, "Oct", result.Rows[0].Get(ColMonth))
	assert.Equal(t, "15/10/2025", result.Rows[0].Get(ColDate))
	assert.Equal(t, "Ahmed", result.Rows[0].Get(ColCustomerName))
	assert.Equal(t, "Beta", result.Rows[1].Get(ColCompany))
}

func TestParseExcelSheetFallbackScan(t *testing.T) {
	p := NewParser("الرئيسة", 11, nil)

	// The configured sheet is absent; the scan must locate the sheet
	// whose header offset row resolves known columns.
	path := writeWorkbook(t, "Data2025", 11,
		[]string{"Month", "Date", "Customer Name", "Region", "Company"},
		[][]string{
			{"Sep", "3/9/2025", "Huda", "منطقة الرياض", "ACME"},
		})

	result, err := p.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Sep", result.Rows[0].Get(ColMonth))
	assert.Equal(t, "Huda", result.Rows[0].Get(ColCustomerName))
}

func TestParseExcelNoDataBlock(t *testing.T) {
	p := NewParser("الرئيسة", 11, nil)

	// Unrecognized headers on an unrecognized sheet leave nothing for
	// the fallback scan to find.
	path := writeWorkbook(t, "Notes", 11,
		[]string{"colA", "colB"},
		[][]string{{"x", "y"}})

	_, err := p.ParseFile(path)
	assert.Error(t, err)
}

func TestCollectRowsSkipsEmptyAndCountsMalformed(t *testing.T) {
	p := NewParser("الرئيسة", 11, nil)

	result := p.collectRows([]string{ColMonth, ColDate}, [][]string{
		{"Oct", "15/10/2025"},
		{"", ""},
		{"Nov", "3/11/2025", "extra cell ignored"},
	})

	require.Len(t, result.Rows, 2)
	assert.Zero(t, result.RowsSkipped)
	assert.Equal(t, "Nov", result.Rows[1].Get(ColMonth))
}
