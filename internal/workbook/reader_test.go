package workbook_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"surveydq/internal/domain"
	"surveydq/internal/tabular"
	"surveydq/internal/workbook"
)

func buildFixture(t *testing.T) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	require.NoError(t, f.SetSheetName("Sheet1", "P"))
	require.NoError(t, f.SetSheetRow("P", "A1", &[]any{"FarmerID", "Age", "VisitDate", "Comment", 1}))
	require.NoError(t, f.SetSheetRow("P", "A2", &[]any{"F001", 42, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "  ", "x"}))
	require.NoError(t, f.SetSheetRow("P", "A3", &[]any{"F002", "5", "15-03-2024", "ok"}))
	require.NoError(t, f.SetSheetRow("P", "A4", &[]any{nil, 2.5}))
	// Trailing blank rows are dropped.
	require.NoError(t, f.SetCellValue("P", "A6", ""))

	_, err := f.NewSheet("Empty")
	require.NoError(t, err)

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestSheet_NormalizesCells(t *testing.T) {
	wb, err := workbook.Open(buildFixture(t), "data.xlsx")
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	assert.Equal(t, []string{"P", "Empty"}, wb.Sheets())

	tbl, err := wb.Sheet("P")
	require.NoError(t, err)
	require.NotNil(t, tbl)

	assert.Equal(t, []string{"FarmerID", "Age", "VisitDate", "Comment", "1"}, tbl.Columns)
	require.Equal(t, 3, tbl.Len())

	assert.Equal(t, tabular.Text, tbl.Cell(0, "FarmerID").Kind)
	assert.Equal(t, tabular.Number, tbl.Cell(0, "Age").Kind)
	assert.Equal(t, "42", tbl.Cell(0, "Age").String())

	date := tbl.Cell(0, "VisitDate")
	assert.Equal(t, tabular.Date, date.Kind)
	assert.Equal(t, "15-03-2024", date.String())

	assert.True(t, tbl.Cell(0, "Comment").IsBlank())
	assert.Equal(t, tabular.Text, tbl.Cell(1, "Age").Kind)
	assert.Equal(t, "5", tbl.Cell(1, "Age").String())
	assert.Equal(t, tabular.Text, tbl.Cell(1, "VisitDate").Kind)

	assert.True(t, tbl.Cell(2, "FarmerID").IsBlank())
	assert.Equal(t, "2.5", tbl.Cell(2, "Age").String())
}

func TestSheet_MissingAndEmpty(t *testing.T) {
	wb, err := workbook.Open(buildFixture(t), "data.xlsx")
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	tbl, err := wb.Sheet("D")
	require.NoError(t, err)
	assert.Nil(t, tbl)
	assert.False(t, wb.HasSheet("D"))

	empty, err := wb.Sheet("Empty")
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.True(t, empty.Empty())
}

func TestSheetOrFirst(t *testing.T) {
	wb, err := workbook.Open(buildFixture(t), "key.xlsx")
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	tbl, err := wb.SheetOrFirst("description")
	require.NoError(t, err)
	require.NotNil(t, tbl)
	assert.Equal(t, "P", tbl.Name)
}

func TestOpen_NotAWorkbook(t *testing.T) {
	_, err := workbook.Open(strings.NewReader("not a zip"), "bad.xlsx")
	assert.ErrorIs(t, err, domain.ErrDataRead)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, os.WriteFile(path, buildFixture(t).Bytes(), 0o600))

	wb, err := workbook.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()
	assert.Equal(t, "data.xlsx", wb.Name)

	_, err = workbook.OpenFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, domain.ErrDataRead)
}

func TestIsDateFormat(t *testing.T) {
	code := func(s string) *string { return &s }

	assert.True(t, workbook.IsDateFormat(14, nil))
	assert.True(t, workbook.IsDateFormat(22, nil))
	assert.False(t, workbook.IsDateFormat(0, nil))
	assert.False(t, workbook.IsDateFormat(2, nil))
	assert.True(t, workbook.IsDateFormat(164, code("dd-mm-yyyy")))
	assert.False(t, workbook.IsDateFormat(164, code(`0.00" days"`)))
	assert.False(t, workbook.IsDateFormat(164, code("[Red]0.00")))
	assert.False(t, workbook.IsDateFormat(164, code("hh:mm:ss")))
}
