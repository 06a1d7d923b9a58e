package dataset

import (
	"fmt"
)

// Cell is a single table value. A cell that is not Valid is null, which
// is distinct from a valid empty string.
type Cell struct {
	Value string
	Valid bool
}

// String returns a non-null cell holding v
func String(v string) Cell {
	return Cell{Value: v, Valid: true}
}

// Null returns a null cell
func Null() Cell {
	return Cell{}
}

// Table is an in-memory table whose rows all share one ordered column set.
// Tables with different column sets are combined with Concat, which fills
// the columns a source table lacks with nulls.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Cell
}

// New creates an empty table with the given columns
func New(columns ...string) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// Columns returns a copy of the column names in order
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// ColumnIndex returns the position of a column
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the table has the named column
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// AddColumn appends a column filled with nulls and returns its index.
// Adding a column that already exists returns the existing index.
func (t *Table) AddColumn(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	t.columns = append(t.columns, name)
	i := len(t.columns) - 1
	t.index[name] = i
	for r := range t.rows {
		t.rows[r] = append(t.rows[r], Null())
	}
	return i
}

// AppendConstant adds (or overwrites) a column holding c in every row
func (t *Table) AppendConstant(name string, c Cell) {
	i := t.AddColumn(name)
	for r := range t.rows {
		t.rows[r][i] = c
	}
}

// Append adds a row. The row must have exactly one cell per column.
func (t *Table) Append(row []Cell) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.columns))
	}
	cp := make([]Cell, len(row))
	copy(cp, row)
	t.rows = append(t.rows, cp)
	return nil
}

// Row returns a copy of row i
func (t *Table) Row(i int) []Cell {
	out := make([]Cell, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Cell returns the value of column name in row i
func (t *Table) Cell(i int, name string) (Cell, bool) {
	c, ok := t.index[name]
	if !ok || i < 0 || i >= len(t.rows) {
		return Null(), false
	}
	return t.rows[i][c], true
}

// Column returns a copy of every cell in the named column
func (t *Table) Column(name string) ([]Cell, bool) {
	c, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]Cell, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[c]
	}
	return out, true
}

// UpdateColumn rewrites every cell of the named column with fn. The first
// error returned by fn stops the update; rows already visited keep their
// new values.
func (t *Table) UpdateColumn(name string, fn func(row int, c Cell) (Cell, error)) error {
	c, ok := t.index[name]
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	for r, row := range t.rows {
		v, err := fn(r, row[c])
		if err != nil {
			return err
		}
		row[c] = v
	}
	return nil
}

// Concat stacks tables row-wise. The result holds the union of all column
// sets in first-appearance order; cells for columns a source table does
// not have are null. Nil tables are skipped.
func Concat(tables ...*Table) *Table {
	out := New()
	total := 0
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.columns {
			out.AddColumn(c)
		}
		total += len(t.rows)
	}
	out.rows = make([][]Cell, 0, total)

	for _, t := range tables {
		if t == nil {
			continue
		}
		mapping := make([]int, len(t.columns))
		for i, c := range t.columns {
			mapping[i] = out.index[c]
		}
		for _, row := range t.rows {
			merged := make([]Cell, len(out.columns))
			for i, v := range row {
				merged[mapping[i]] = v
			}
			out.rows = append(out.rows, merged)
		}
	}
	return out
}
