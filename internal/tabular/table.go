package tabular

import "strings"

// Table is a named sheet: a header row plus data rows of normalized cells.
// Every row has exactly len(Columns) cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]Cell

	index map[string]int
}

// NewTable builds a table, padding short rows with blanks and truncating long ones.
// Header names are trimmed; when a header repeats, the first occurrence wins lookups.
func NewTable(name string, columns []string, rows [][]Cell) *Table {
	cols := make([]string, len(columns))
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		c = strings.TrimSpace(c)
		cols[i] = c
		if _, dup := idx[c]; !dup && c != "" {
			idx[c] = i
		}
	}

	fixed := make([][]Cell, len(rows))
	for i, r := range rows {
		row := make([]Cell, len(cols))
		copy(row, r)
		fixed[i] = row
	}

	return &Table{Name: name, Columns: cols, Rows: fixed, index: idx}
}

// FromStrings builds a table from raw strings, normalizing every cell.
func FromStrings(name string, columns []string, rows [][]string) *Table {
	cells := make([][]Cell, len(rows))
	for i, r := range rows {
		row := make([]Cell, len(r))
		for j, v := range r {
			row[j] = Normalize(v)
		}
		cells[i] = row
	}
	return NewTable(name, columns, cells)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool { return len(t.Rows) == 0 }

// Has reports whether the table has a column named col.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// ColumnIndex returns the position of col.
func (t *Table) ColumnIndex(col string) (int, bool) {
	i, ok := t.index[col]
	return i, ok
}

// Cell returns the cell at (row, col), or a blank cell when col does not exist.
func (t *Table) Cell(row int, col string) Cell {
	i, ok := t.index[col]
	if !ok || row < 0 || row >= len(t.Rows) {
		return BlankCell()
	}
	return t.Rows[row][i]
}

// Column returns a copy of every cell in col, in row order.
func (t *Table) Column(col string) []Cell {
	i, ok := t.index[col]
	if !ok {
		return nil
	}
	out := make([]Cell, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// DropBlank returns a copy without rows and columns whose cells are all blank.
func (t *Table) DropBlank() *Table {
	keepCol := make([]bool, len(t.Columns))
	var rows [][]Cell
	for _, row := range t.Rows {
		blank := true
		for j, c := range row {
			if !c.IsBlank() {
				blank = false
				keepCol[j] = true
			}
		}
		if !blank {
			rows = append(rows, row)
		}
	}

	var cols []string
	var pos []int
	for j, c := range t.Columns {
		if keepCol[j] {
			cols = append(cols, c)
			pos = append(pos, j)
		}
	}

	out := make([][]Cell, len(rows))
	for i, row := range rows {
		r := make([]Cell, len(pos))
		for k, j := range pos {
			r[k] = row[j]
		}
		out[i] = r
	}
	return NewTable(t.Name, cols, out)
}
