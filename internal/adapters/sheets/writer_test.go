package sheets

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/canary-hr/attendance-reconciler/internal/domain/attendance"
	"github.com/canary-hr/attendance-reconciler/internal/domain/matcher"
	"github.com/canary-hr/attendance-reconciler/internal/domain/reconciler"
)

func sampleResults() []reconciler.Result {
	return []reconciler.Result{
		{
			Index:     0,
			Primary:   &attendance.Record{Code: "101", Name: "أحمد علي", G: 2, R: 1},
			Secondary: &attendance.Record{Code: "101", Name: "أحمد علي", G: 2, R: 1},
			GStatus:   reconciler.StatusMatched,
			RStatus:   reconciler.StatusMatched,
		},
		{
			Index:   1,
			Primary: &attendance.Record{Code: "102", Name: "سارة", G: 1.5, R: 0},
			GStatus: reconciler.StatusIncomplete,
			RStatus: reconciler.StatusIncomplete,
			Note:    "غير موجود في الكشف اليدوي",
		},
	}
}

func TestWriteReport_Layout(t *testing.T) {
	// Arrange
	var buf bytes.Buffer

	// Act
	require.NoError(t, WriteReport(&buf, sampleResults()))

	// Assert
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{ReportSheet}, f.GetSheetList())

	rows, err := f.GetRows(ReportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ReportHeaders, rows[0])

	assert.Equal(t, []string{"1", "101", "أحمد علي", "2", "1", "101", "أحمد علي", "2", "1", "مطابق", "مطابق"}, rows[1])

	second := rows[2]
	assert.Equal(t, "2", second[0])
	assert.Equal(t, "102", second[1])
	assert.Equal(t, "1.5", second[3])
	assert.Equal(t, "", second[5])
	assert.Equal(t, "", second[6])
	assert.Equal(t, "ناقص", second[9])
	assert.Equal(t, "غير موجود في الكشف اليدوي", second[11])
}

func TestWriteReport_MarksNameFallbackPairings(t *testing.T) {
	// Arrange
	results := []reconciler.Result{
		{
			Primary:   &attendance.Record{Code: "7", Name: "محمد احمد", G: 1},
			Secondary: &attendance.Record{Code: "7", Name: "محمد أحمد علي", G: 1},
			GStatus:   reconciler.StatusMatched,
			RStatus:   reconciler.StatusMatched,
			MatchKind: matcher.KindFuzzy,
		},
		{
			Primary:   &attendance.Record{Code: "8", Name: "هدى", G: 2},
			Secondary: &attendance.Record{Code: "8", Name: "سامي", G: 2},
			GStatus:   reconciler.StatusMatched,
			RStatus:   reconciler.StatusMatched,
			MatchKind: matcher.KindCodeOnly,
		},
	}
	var buf bytes.Buffer

	// Act
	require.NoError(t, WriteReport(&buf, results))

	// Assert
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(ReportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Len(t, rows[1], len(ReportHeaders))
	assert.Equal(t, "", rows[1][11], "fully matched rows keep an empty note")
	assert.Equal(t, matcher.KindFuzzy.Label(), rows[1][12])
	assert.Equal(t, matcher.KindCodeOnly.Label(), rows[2][12])
}

func TestWriteReport_RightToLeft(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	view, err := f.GetSheetView(ReportSheet, -1)
	require.NoError(t, err)
	require.NotNil(t, view.RightToLeft)
	assert.True(t, *view.RightToLeft)

	rows, err := f.GetRows(ReportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSaveReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultReportFile)

	require.NoError(t, SaveReport(path, sampleResults()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	v, err := f.GetCellValue(ReportSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "أحمد علي", v)
}
