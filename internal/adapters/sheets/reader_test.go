package sheets

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/canary-hr/attendance-reconciler/internal/domain/attendance"
)

func workbookBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, ref, &r))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestReadXLSX_HeaderRow(t *testing.T) {
	// Arrange
	data := workbookBytes(t, [][]interface{}{
		{"الكود", "الاسم", "غ", "ر"},
		{"101", "أحمد علي", 2, 1},
		{"102", "سارة محمد", 0, 0},
	})

	// Act
	table, err := Read(bytes.NewReader(data), "primary.xlsx", Options{})

	// Assert
	require.NoError(t, err)
	assert.False(t, table.Headerless)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "101", table.Rows[0].Values["الكود"])
	assert.Equal(t, "أحمد علي", table.Rows[0].Values["الاسم"])

	rec := attendance.MapRow(table.Rows[0], attendance.Primary)
	assert.Equal(t, 2.0, rec.G)
	assert.Equal(t, 1.0, rec.R)
}

func TestReadXLSX_Headerless(t *testing.T) {
	// Arrange
	data := workbookBytes(t, [][]interface{}{
		{1, "201", "خالد", 3, 0},
		{2, "202", "منى", 1, 2},
	})

	// Act
	table, err := Read(bytes.NewReader(data), "manual.xlsx", Options{})

	// Assert
	require.NoError(t, err)
	assert.True(t, table.Headerless)
	require.Len(t, table.Rows, 2)

	rec := attendance.MapRow(table.Rows[1], attendance.Secondary)
	assert.Equal(t, "202", rec.Code)
	assert.Equal(t, "منى", rec.Name)
	assert.Equal(t, 1.0, rec.G)
	assert.Equal(t, 2.0, rec.R)
}

func TestReadXLSX_StrictHeadersMissing(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{
		{"الكود", "الاسم"},
		{"101", "أحمد"},
	})

	_, err := Read(bytes.NewReader(data), "primary.xlsx", Options{StrictHeaders: true})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingHeaders)
	assert.Contains(t, err.Error(), "g")
}

func TestFromGrid_PartialHeaderRowIsRejected(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		missing string
	}{
		{"counters unrecognised", []string{"الكود", "اسم الموظف", "الغياب", "الراحة"}, "g, r"},
		{"code unrecognised", []string{"رقم", "الاسم", "غ", "ر"}, "code"},
		{"only r", []string{"x", "y", "z", "ر"}, "code, g"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := [][]string{tt.header, {"101", "أحمد", "5", "2"}}

			_, err := FromGrid(grid, Options{})

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingHeaders)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestFromGrid_NameColumnIsOptional(t *testing.T) {
	grid := [][]string{
		{"الكود", "القسم", "غ", "ر"},
		{"101", "المبيعات", "5", "2"},
	}

	table, err := FromGrid(grid, Options{})

	require.NoError(t, err)
	rec := attendance.MapRow(table.Rows[0], attendance.Primary)
	assert.Equal(t, attendance.Record{Code: "101", G: 5, R: 2}, rec)
}

func TestFromGrid_RowsKeepColumnOrder(t *testing.T) {
	grid := [][]string{
		{"CODE", "Code", "الاسم", "غ", "ر"},
		{"2", "1", "أحمد", "0", "0"},
	}

	table, err := FromGrid(grid, Options{})

	require.NoError(t, err)
	assert.Equal(t, []string{"CODE", "Code", "الاسم", "غ", "ر"}, table.Rows[0].Headers)
	assert.Equal(t, "2", attendance.MapRow(table.Rows[0], attendance.Primary).Code)
}

func TestReadXLSX_NotAWorkbook(t *testing.T) {
	_, err := Read(strings.NewReader("not a zip"), "broken.xlsx", Options{})

	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRead_UnsupportedExtension(t *testing.T) {
	_, err := Read(strings.NewReader("x"), "report.pdf", Options{})

	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadCSV_SniffsDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"comma", "الكود,الاسم,غ,ر\n101,أحمد,2,1\n"},
		{"semicolon", "الكود;الاسم;غ;ر\n101;أحمد;2;1\n"},
		{"tab", "الكود\tالاسم\tغ\tر\n101\tأحمد\t2\t1\n"},
		{"bom", "\ufeffالكود,الاسم,غ,ر\n101,أحمد,2,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadCSV(strings.NewReader(tt.input), Options{StrictHeaders: true})

			require.NoError(t, err)
			require.Len(t, table.Rows, 1)
			rec := attendance.MapRow(table.Rows[0], attendance.Primary)
			assert.Equal(t, "101", rec.Code)
			assert.Equal(t, "أحمد", rec.Name)
			assert.Equal(t, 2.0, rec.G)
			assert.Equal(t, 1.0, rec.R)
		})
	}
}

func TestFromGrid_SkipsBlankRows(t *testing.T) {
	grid := [][]string{
		{"", ""},
		{"الكود", "الاسم", "غ", "ر"},
		{"101", "أحمد", "1", "0"},
		{" ", ""},
		{"102", "سارة", "0", "0"},
	}

	table, err := FromGrid(grid, Options{})

	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

func TestFromGrid_ShortRowsPadWithEmpty(t *testing.T) {
	grid := [][]string{
		{"الكود", "الاسم", "غ", "ر"},
		{"101", "أحمد"},
	}

	table, err := FromGrid(grid, Options{})

	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "", table.Rows[0].Values["غ"])
}

func TestFromGrid_FirstDuplicateHeaderWins(t *testing.T) {
	grid := [][]string{
		{"الكود", "الاسم", "غ", "غ"},
		{"101", "أحمد", "4", "9"},
	}

	table, err := FromGrid(grid, Options{})

	require.NoError(t, err)
	assert.Equal(t, "4", table.Rows[0].Values["غ"])
}

func TestFromGrid_Empty(t *testing.T) {
	_, err := FromGrid([][]string{{"", " "}}, Options{})

	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestReadFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "manual.csv")
	require.NoError(t, os.WriteFile(path, []byte("الكود (يدوي),الاسم (يدوي),غ (يدوي),ر (يدوي)\n7,ليلى,31,0\n"), 0o600))

	// Act
	table, err := ReadFile(path, Options{StrictHeaders: true})

	// Assert
	require.NoError(t, err)
	rec := attendance.MapRow(table.Rows[0], attendance.Secondary)
	assert.Equal(t, "7", rec.Code)
	assert.Equal(t, 30.0, rec.G)
}
