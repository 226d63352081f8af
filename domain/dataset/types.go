package dataset

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"dataportal/domain/core"
)

// Kind is the inferred scalar type of a column, decided once at load time
type Kind string

const (
	KindNumeric  Kind = "numeric"
	KindBoolean  Kind = "boolean"
	KindTemporal Kind = "temporal"
	KindText     Kind = "text"
)

// IsNumeric reports whether numeric reducers may be applied to the kind
func (k Kind) IsNumeric() bool {
	return k == KindNumeric
}

// Format identifies the file format a dataset was read from
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
)

// Cell holds one value of a column. Only the payload matching the column's
// Kind is meaningful.
type Cell struct {
	Null bool      `json:"-"`
	Num  float64   `json:"-"`
	Bool bool      `json:"-"`
	Time time.Time `json:"-"`
	Str  string    `json:"-"`
	kind Kind
}

// NullCell returns a missing value
func NullCell(kind Kind) Cell {
	return Cell{Null: true, Num: math.NaN(), kind: kind}
}

// NumberCell returns a numeric value
func NumberCell(v float64) Cell {
	if math.IsNaN(v) {
		return NullCell(KindNumeric)
	}
	return Cell{Num: v, kind: KindNumeric}
}

// BoolCell returns a boolean value
func BoolCell(v bool) Cell {
	return Cell{Bool: v, kind: KindBoolean}
}

// TimeCell returns a temporal value
func TimeCell(v time.Time) Cell {
	return Cell{Time: v, kind: KindTemporal}
}

// TextCell returns a text value
func TextCell(v string) Cell {
	return Cell{Str: v, kind: KindText}
}

// Kind returns the kind the cell was created with
func (c Cell) Kind() Kind {
	return c.kind
}

// String renders the cell for display and grouping
func (c Cell) String() string {
	if c.Null {
		return ""
	}
	switch c.kind {
	case KindNumeric:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case KindBoolean:
		if c.Bool {
			return "True"
		}
		return "False"
	case KindTemporal:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 && c.Time.Nanosecond() == 0 {
			return c.Time.Format("2006-01-02")
		}
		return c.Time.Format("2006-01-02 15:04:05")
	default:
		return c.Str
	}
}

// Value returns the cell as a plain Go value: nil, float64, bool or string
func (c Cell) Value() interface{} {
	if c.Null {
		return nil
	}
	switch c.kind {
	case KindNumeric:
		return c.Num
	case KindBoolean:
		return c.Bool
	case KindTemporal:
		return c.Time.Format(time.RFC3339)
	default:
		return c.Str
	}
}

// MarshalJSON encodes missing values as null
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value())
}

// Compare orders two cells of the same kind. Nulls sort last.
func Compare(a, b Cell) int {
	switch {
	case a.Null && b.Null:
		return 0
	case a.Null:
		return 1
	case b.Null:
		return -1
	}
	switch a.kind {
	case KindNumeric:
		return cmpOrdered(a.Num, b.Num)
	case KindBoolean:
		return cmpOrdered(boolRank(a.Bool), boolRank(b.Bool))
	case KindTemporal:
		return a.Time.Compare(b.Time)
	default:
		return cmpOrdered(a.Str, b.Str)
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func cmpOrdered[T int | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Column is a named, typed sequence of cells
type Column struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	Integral bool   `json:"integral"` // numeric, no missing values and every value whole
	Cells    []Cell `json:"-"`
}

// NewColumn builds a column and derives its Integral flag from the cells
func NewColumn(name string, kind Kind, cells []Cell) *Column {
	integral := kind == KindNumeric && len(cells) > 0
	for _, cell := range cells {
		if !integral {
			break
		}
		if cell.Null || cell.Num != math.Trunc(cell.Num) {
			integral = false
		}
	}
	return &Column{Name: name, Kind: kind, Integral: integral, Cells: cells}
}

// Len returns the number of cells
func (c *Column) Len() int {
	return len(c.Cells)
}

// DType returns the dtype label shown to users
func (c *Column) DType() string {
	switch c.Kind {
	case KindNumeric:
		if c.Integral {
			return "int64"
		}
		return "float64"
	case KindBoolean:
		return "bool"
	case KindTemporal:
		return "datetime64[ns]"
	default:
		return "object"
	}
}

// Floats returns the non-null numeric values of the column
func (c *Column) Floats() []float64 {
	values := make([]float64, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if !cell.Null && cell.kind == KindNumeric {
			values = append(values, cell.Num)
		}
	}
	return values
}

// NonNullCount returns the number of present values
func (c *Column) NonNullCount() int {
	n := 0
	for _, cell := range c.Cells {
		if !cell.Null {
			n++
		}
	}
	return n
}

func (c *Column) slice(from, to int) *Column {
	cells := make([]Cell, to-from)
	copy(cells, c.Cells[from:to])
	return &Column{Name: c.Name, Kind: c.Kind, Integral: c.Integral, Cells: cells}
}

// ColumnType pairs a column name with its dtype label
type ColumnType struct {
	Name  string `json:"name"`
	DType string `json:"dtype"`
	Kind  Kind   `json:"kind"`
}

// Dataset is an uploaded table plus the facts about where it came from
type Dataset struct {
	SessionID core.SessionID `json:"session_id"`
	Filename  string         `json:"filename"`
	Format    Format         `json:"format"`
	FileSize  int64          `json:"file_size"`
	Checksum  core.Hash      `json:"checksum"`
	LoadedAt  time.Time      `json:"loaded_at"`
	Table     *Table         `json:"-"`
}
