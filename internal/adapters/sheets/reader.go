// Package sheets reads attendance exports into raw rows and writes the
// reconciled report as a workbook.
//
// Supported inputs are .xlsx/.xlsm (first sheet) and delimited text
// (.csv, .tsv, .txt). The first non-blank row is the header row when it
// names at least one known column; such a row must then name code, G and
// R. A row naming no known column makes the sheet headerless, with columns
// B..E holding code, name, G and R, unless strict headers are requested,
// in which case all four columns must be named.
package sheets

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/canary-hr/attendance-reconciler/internal/domain/attendance"
)

var (
	// ErrUnsupportedFormat is returned for files that are not a workbook
	// or delimited text.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrMissingHeaders is returned when a header row leaves out a
	// required column, or any column under strict headers.
	ErrMissingHeaders = errors.New("required columns not found")
	// ErrEmptySheet is returned when the file holds no rows at all.
	ErrEmptySheet = errors.New("sheet has no rows")
)

// positionalOffset is the column index of code in headerless sheets (B).
const positionalOffset = 1

// Options controls header handling.
type Options struct {
	StrictHeaders bool
}

// Table is a parsed sheet.
type Table struct {
	Headers    []string
	Rows       []attendance.RawRow
	Headerless bool
}

// ReadFile opens path and reads it according to its extension.
func ReadFile(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return Read(f, filepath.Base(path), opts)
}

// Read parses r, choosing the format from name's extension.
func Read(r io.Reader, name string, opts Options) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r, opts)
	case ".csv", ".tsv", ".txt":
		return ReadCSV(r, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ReadXLSX reads the first sheet of a workbook. Cell values are taken raw,
// without number formats applied.
func ReadXLSX(r io.Reader, opts Options) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrEmptySheet
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	return FromGrid(rows, opts)
}

// ReadCSV reads delimited text. The delimiter is sniffed from the first
// line among comma, semicolon and tab.
func ReadCSV(r io.Reader, opts Options) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	return FromGrid(rows, opts)
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// FromGrid turns a grid of cells into a Table.
func FromGrid(grid [][]string, opts Options) (*Table, error) {
	start := firstNonBlank(grid)
	if start < 0 {
		return nil, ErrEmptySheet
	}

	header := grid[start]
	found := recognizedFields(header)

	required := requiredFields
	if opts.StrictHeaders {
		required = attendance.Fields
	}

	if len(found) == 0 && !opts.StrictHeaders {
		return positionalTable(grid[start:]), nil
	}

	if missing := missingFields(found, required); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(missing, ", "))
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	table := &Table{Headers: headers}
	for _, row := range grid[start+1:] {
		if isBlank(row) {
			continue
		}
		var raw attendance.RawRow
		for i, h := range headers {
			if h == "" {
				continue
			}
			raw.Add(h, cell(row, i))
		}
		table.Rows = append(table.Rows, raw)
	}

	return table, nil
}

func positionalTable(grid [][]string) *Table {
	headers := []string{attendance.LabelCode, attendance.LabelName, attendance.LabelG, attendance.LabelR}

	table := &Table{Headers: headers, Headerless: true}
	for _, row := range grid {
		if isBlank(row) {
			continue
		}
		var raw attendance.RawRow
		for i, h := range headers {
			raw.Add(h, cell(row, positionalOffset+i))
		}
		table.Rows = append(table.Rows, raw)
	}
	return table
}

func recognizedFields(header []string) map[attendance.Field]bool {
	found := make(map[attendance.Field]bool)
	for _, h := range header {
		if f, ok := attendance.FieldFor(h); ok {
			found[f] = true
		}
	}
	return found
}

// requiredFields must be named by any header row. A missing name column
// only blanks names.
var requiredFields = []attendance.Field{attendance.FieldCode, attendance.FieldG, attendance.FieldR}

func missingFields(found map[attendance.Field]bool, required []attendance.Field) []string {
	var missing []string
	for _, f := range required {
		if !found[f] {
			missing = append(missing, f.String())
		}
	}
	return missing
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func firstNonBlank(grid [][]string) int {
	for i, row := range grid {
		if !isBlank(row) {
			return i
		}
	}
	return -1
}
