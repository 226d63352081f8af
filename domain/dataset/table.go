package dataset

import (
	"fmt"

	"dataportal/domain/core"
)

// Table is an immutable rectangular dataset with named, typed columns.
// Every operation returns a new Table or a plain value.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable builds a table from columns of equal length with unique names
func NewTable(columns []*Column) (*Table, error) {
	if len(columns) == 0 {
		return nil, core.ErrEmptyTable
	}

	t := &Table{
		columns: make([]*Column, len(columns)),
		index:   make(map[string]int, len(columns)),
		rows:    columns[0].Len(),
	}
	for i, col := range columns {
		if col.Len() != t.rows {
			return nil, fmt.Errorf("%w: %q has %d rows, expected %d", core.ErrRaggedTable, col.Name, col.Len(), t.rows)
		}
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		t.index[col.Name] = i
		t.columns[i] = col
	}
	return t, nil
}

// Shape returns the row and column counts
func (t *Table) Shape() (rows, cols int) {
	return t.rows, len(t.columns)
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	return t.rows
}

// Column looks up a column by name
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, core.NewUnknownColumnError(name)
	}
	return t.columns[i], nil
}

// HasColumn reports whether the table has a column with the given name
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Columns returns the columns in order
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnNames returns the ordered column names
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// DTypes returns the inferred type of every column, in order
func (t *Table) DTypes() []ColumnType {
	types := make([]ColumnType, len(t.columns))
	for i, col := range t.columns {
		types[i] = ColumnType{Name: col.Name, DType: col.DType(), Kind: col.Kind}
	}
	return types
}

// ClampRows limits n to [1, rows]; an empty table clamps to 0
func (t *Table) ClampRows(n int) int {
	if t.rows == 0 {
		return 0
	}
	if n < 1 {
		return 1
	}
	if n > t.rows {
		return t.rows
	}
	return n
}

// Head returns the first n rows in original order
func (t *Table) Head(n int) *Table {
	return t.Slice(0, t.ClampRows(n))
}

// Tail returns the last n rows in original order
func (t *Table) Tail(n int) *Table {
	n = t.ClampRows(n)
	return t.Slice(t.rows-n, t.rows)
}

// Slice returns rows [from, to) as a new table; bounds are clipped
func (t *Table) Slice(from, to int) *Table {
	if from < 0 {
		from = 0
	}
	if to > t.rows {
		to = t.rows
	}
	if to < from {
		to = from
	}
	cols := make([]*Column, len(t.columns))
	for i, col := range t.columns {
		cols[i] = col.slice(from, to)
	}
	return &Table{columns: cols, index: t.index, rows: to - from}
}

// Row returns the cells of row i in column order
func (t *Table) Row(i int) []Cell {
	row := make([]Cell, len(t.columns))
	for j, col := range t.columns {
		row[j] = col.Cells[i]
	}
	return row
}

// Records renders rows [from, to) as display strings
func (t *Table) Records(from, to int) [][]string {
	view := t.Slice(from, to)
	out := make([][]string, view.rows)
	for i := range out {
		row := make([]string, len(view.columns))
		for j, col := range view.columns {
			row[j] = col.Cells[i].String()
		}
		out[i] = row
	}
	return out
}

// TableView is the JSON shape of a table: ordered column types plus row-major cells
type TableView struct {
	Columns []ColumnType `json:"columns"`
	Rows    [][]Cell     `json:"rows"`
}

// View renders the whole table for JSON responses
func (t *Table) View() TableView {
	view := TableView{Columns: t.DTypes(), Rows: make([][]Cell, t.rows)}
	for i := range view.Rows {
		view.Rows[i] = t.Row(i)
	}
	return view
}
