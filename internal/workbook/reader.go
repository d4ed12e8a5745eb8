// Package workbook reads xlsx workbooks into normalized tables.
package workbook

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"surveydq/internal/domain"
	"surveydq/internal/tabular"
)

// Workbook is an opened spreadsheet. It is not safe for concurrent use; read
// every sheet first and share the resulting tables instead.
type Workbook struct {
	Name string

	f         *excelize.File
	date1904  bool
	dateStyle map[int]bool
}

// Open reads a workbook from r. Any failure is an ErrDataRead.
func Open(r io.Reader, name string) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrDataRead, name, err)
	}
	return newWorkbook(f, name), nil
}

// OpenFile reads the workbook at path.
func OpenFile(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrDataRead, path, err)
	}
	return newWorkbook(f, filepath.Base(path)), nil
}

func newWorkbook(f *excelize.File, name string) *Workbook {
	w := &Workbook{Name: name, f: f, dateStyle: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		w.date1904 = *props.Date1904
	}
	return w
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Sheets returns the sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return w.f.GetSheetList()
}

// HasSheet reports whether the workbook contains sheet.
func (w *Workbook) HasSheet(sheet string) bool {
	idx, err := w.f.GetSheetIndex(sheet)
	return err == nil && idx >= 0
}

// Sheet reads sheet as a table whose first row is the header. It returns
// (nil, nil) when the sheet does not exist.
func (w *Workbook) Sheet(sheet string) (*tabular.Table, error) {
	if !w.HasSheet(sheet) {
		return nil, nil
	}
	rows, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %s of %s: %v", domain.ErrDataRead, sheet, w.Name, err)
	}
	if len(rows) == 0 {
		return tabular.NewTable(sheet, nil, nil), nil
	}

	header := make([]string, len(rows[0]))
	for j, raw := range rows[0] {
		c, err := w.cell(sheet, 0, j, raw)
		if err != nil {
			return nil, err
		}
		header[j] = c.String()
	}

	data := make([][]tabular.Cell, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := make([]tabular.Cell, len(rows[i]))
		for j, raw := range rows[i] {
			c, err := w.cell(sheet, i, j, raw)
			if err != nil {
				return nil, err
			}
			row[j] = c
		}
		data = append(data, row)
	}
	return tabular.NewTable(sheet, header, trimTrailingBlank(data)), nil
}

// SheetOrFirst reads sheet, falling back to the first sheet of the workbook.
func (w *Workbook) SheetOrFirst(sheet string) (*tabular.Table, error) {
	if w.HasSheet(sheet) {
		return w.Sheet(sheet)
	}
	names := w.Sheets()
	if len(names) == 0 {
		return nil, nil
	}
	return w.Sheet(names[0])
}

// cell converts a raw value at zero-based (row, col) into a tagged cell.
func (w *Workbook) cell(sheet string, row, col int, raw string) (tabular.Cell, error) {
	if strings.TrimSpace(raw) == "" {
		return tabular.BlankCell(), nil
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return tabular.Cell{}, fmt.Errorf("%w: %v", domain.ErrDataRead, err)
	}
	typ, err := w.f.GetCellType(sheet, axis)
	if err != nil {
		return tabular.Cell{}, fmt.Errorf("%w: cell %s!%s: %v", domain.ErrDataRead, sheet, axis, err)
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return tabular.TextCell(raw), nil
	case excelize.CellTypeBool:
		if raw == "1" {
			return tabular.TextCell("TRUE"), nil
		}
		return tabular.TextCell("FALSE"), nil
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return tabular.DateCell(t), nil
		}
		return tabular.TextCell(raw), nil
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return tabular.TextCell(raw), nil
	}
	isDate, err := w.isDateStyled(sheet, axis)
	if err != nil {
		return tabular.Cell{}, err
	}
	if isDate {
		if t, err := excelize.ExcelDateToTime(v, w.date1904); err == nil {
			return tabular.DateCell(t), nil
		}
	}
	return tabular.NumberCell(v), nil
}

func (w *Workbook) isDateStyled(sheet, axis string) (bool, error) {
	id, err := w.f.GetCellStyle(sheet, axis)
	if err != nil {
		return false, fmt.Errorf("%w: style of %s!%s: %v", domain.ErrDataRead, sheet, axis, err)
	}
	if v, ok := w.dateStyle[id]; ok {
		return v, nil
	}
	// Workbooks written by some exporters carry no cell formats at all.
	v := false
	if style, err := w.f.GetStyle(id); err == nil {
		v = IsDateFormat(style.NumFmt, style.CustomNumFmt)
	}
	w.dateStyle[id] = v
	return v, nil
}

// IsDateFormat reports whether a number format displays a calendar date:
// built-in formats 14-22, 27-36 and 50-58, or a custom code with day, month
// or year tokens outside quoted literals.
func IsDateFormat(numFmt int, custom *string) bool {
	if custom != nil && *custom != "" {
		return customHasDateTokens(*custom)
	}
	switch {
	case numFmt >= 14 && numFmt <= 22:
		return true
	case numFmt >= 27 && numFmt <= 36:
		return true
	case numFmt >= 50 && numFmt <= 58:
		return true
	}
	return false
}

func customHasDateTokens(code string) bool {
	quoted, bracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		case r == 'd' || r == 'y':
			return true
		case r == 'm' && !strings.ContainsAny(code, "hHsS"):
			return true
		}
	}
	return false
}

// trimTrailingBlank drops fully blank rows at the end of a sheet, which
// spreadsheets commonly carry from cleared formatting.
func trimTrailingBlank(rows [][]tabular.Cell) [][]tabular.Cell {
	end := len(rows)
	for end > 0 && blankRow(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func blankRow(row []tabular.Cell) bool {
	for _, c := range row {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}
