package sheets

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/canary-hr/attendance-reconciler/internal/domain/attendance"
	"github.com/canary-hr/attendance-reconciler/internal/domain/reconciler"
)

const (
	// ReportSheet is the name of the single sheet in the exported workbook.
	ReportSheet = "نتيجة المطابقة"
	// DefaultReportFile is the file name offered for downloads.
	DefaultReportFile = "canary_monthly_result.xlsx"
)

// ReportHeaders is the header row of the exported report.
var ReportHeaders = []string{
	"م",
	attendance.LabelCode + attendance.SuffixPrimary,
	attendance.LabelName + attendance.SuffixPrimary,
	attendance.LabelG + attendance.SuffixPrimary,
	attendance.LabelR + attendance.SuffixPrimary,
	attendance.LabelCode + attendance.SuffixSecondary,
	attendance.LabelName + attendance.SuffixSecondary,
	attendance.LabelG + attendance.SuffixSecondary,
	attendance.LabelR + attendance.SuffixSecondary,
	"نتيجة غ",
	"نتيجة ر",
	"الملاحظة",
	"مطابقة الاسم",
}

// Status columns (1-based) get a fill matching their classification.
const (
	colGStatus = 10
	colRStatus = 11
)

var statusFills = map[reconciler.Status]string{
	reconciler.StatusMatched:    "#C6EFCE",
	reconciler.StatusMismatched: "#FFC7CE",
	reconciler.StatusIncomplete: "#FFEB9C",
}

// BuildReport renders results into a new workbook, one row per result in
// the given order. The caller owns the returned file and must Close it.
func BuildReport(results []reconciler.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), ReportSheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	rtl := true
	if err := f.SetSheetView(ReportSheet, -1, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		_ = f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	statusStyles := make(map[reconciler.Status]int, len(statusFills))
	for status, color := range statusFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		statusStyles[status] = id
	}

	header := make([]interface{}, len(ReportHeaders))
	for i, h := range ReportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(ReportSheet, "A1", &header); err != nil {
		_ = f.Close()
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(ReportHeaders))
	if err := f.SetCellStyle(ReportSheet, "A1", lastCol+"1", headerStyle); err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, r := range results {
		row := i + 2
		cellName, _ := excelize.CoordinatesToCellName(1, row)
		values := reportRow(i+1, r)
		if err := f.SetSheetRow(ReportSheet, cellName, &values); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}

		for col, status := range map[int]reconciler.Status{colGStatus: r.GStatus, colRStatus: r.RStatus} {
			style, ok := statusStyles[status]
			if !ok {
				continue
			}
			ref, _ := excelize.CoordinatesToCellName(col, row)
			if err := f.SetCellStyle(ReportSheet, ref, ref, style); err != nil {
				_ = f.Close()
				return nil, err
			}
		}
	}

	_ = f.SetColWidth(ReportSheet, "C", "C", 28)
	_ = f.SetColWidth(ReportSheet, "G", "G", 28)
	_ = f.SetColWidth(ReportSheet, "L", "L", 60)
	_ = f.SetColWidth(ReportSheet, "M", "M", 20)

	return f, nil
}

// reportRow flattens a result into report cells. A missing side renders as
// empty cells. The last cell marks fuzzy and code-only pairings, which a
// fully matched row otherwise shows no trace of.
func reportRow(n int, r reconciler.Result) []interface{} {
	row := make([]interface{}, 0, len(ReportHeaders))
	row = append(row, n)
	row = append(row, sideCells(r.Primary)...)
	row = append(row, sideCells(r.Secondary)...)
	row = append(row, r.GStatus.Label(), r.RStatus.Label(), r.Note, r.MatchKind.Label())
	return row
}

func sideCells(rec *attendance.Record) []interface{} {
	if rec == nil {
		return []interface{}{"", "", "", ""}
	}
	return []interface{}{rec.Code, rec.Name, rec.G, rec.R}
}

// WriteReport builds the report and writes it to w.
func WriteReport(w io.Writer, results []reconciler.Result) error {
	f, err := BuildReport(results)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return f.Write(w)
}

// SaveReport builds the report and saves it at path.
func SaveReport(path string, results []reconciler.Result) error {
	f, err := BuildReport(results)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return f.SaveAs(path)
}
