package analysis

import (
	"slices"
	"strings"

	"dataportal/domain/dataset"
	"dataportal/internal/errors"
)

// ResultColumn is the name given to the aggregated value column
const ResultColumn = "newcol"

// AggregationRow is one distinct key tuple and its reduced value
type AggregationRow struct {
	Key   []dataset.Cell `json:"key"`
	Value Number         `json:"value"`
}

// AggregationTable is the result of grouping a table by key columns
type AggregationTable struct {
	Keys     []string         `json:"keys"`
	Column   string           `json:"column"`
	Reducer  Reducer          `json:"reducer"`
	Rows     []AggregationRow `json:"rows"`
	keyKinds []dataset.Kind
}

// GroupAggregate groups t by the key columns and reduces column within each
// group. Rows with a null key are dropped and groups come out sorted by key.
// The column must be numeric whatever the reducer.
func GroupAggregate(t *dataset.Table, keys []string, column, reducer string) (*AggregationTable, error) {
	if len(keys) == 0 {
		return nil, errors.InvalidInput("select at least one column to group by")
	}
	r, err := ParseReducer(reducer)
	if err != nil {
		return nil, err
	}

	keyCols := make([]*dataset.Column, len(keys))
	kinds := make([]dataset.Kind, len(keys))
	for i, name := range keys {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		keyCols[i] = col
		kinds[i] = col.Kind
	}
	valueCol, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	if !valueCol.Kind.IsNumeric() {
		return nil, errors.NonNumericColumn(column, string(r))
	}

	type group struct {
		key    []dataset.Cell
		values []float64
	}
	index := make(map[string]*group)
	var groups []*group

rows:
	for row := 0; row < t.NumRows(); row++ {
		key := make([]dataset.Cell, len(keyCols))
		parts := make([]string, len(keyCols))
		for i, col := range keyCols {
			cell := col.Cells[row]
			if cell.Null {
				continue rows
			}
			key[i] = cell
			parts[i] = groupKey(cell)
		}

		id := strings.Join(parts, "\x1f")
		g, ok := index[id]
		if !ok {
			g = &group{key: key}
			index[id] = g
			groups = append(groups, g)
		}
		if cell := valueCol.Cells[row]; !cell.Null {
			g.values = append(g.values, cell.Num)
		}
	}

	slices.SortFunc(groups, func(a, b *group) int {
		return compareKeys(a.key, b.key)
	})

	result := &AggregationTable{
		Keys:     slices.Clone(keys),
		Column:   column,
		Reducer:  r,
		Rows:     make([]AggregationRow, len(groups)),
		keyKinds: kinds,
	}
	for i, g := range groups {
		result.Rows[i] = AggregationRow{Key: g.key, Value: Number(r.Apply(g.values))}
	}
	return result, nil
}

func compareKeys(a, b []dataset.Cell) int {
	for i := range a {
		if c := dataset.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Table converts the aggregation into a table of the key columns followed
// by the "newcol" result column
func (a *AggregationTable) Table() (*dataset.Table, error) {
	names := uniqueNames(append(slices.Clone(a.Keys), ResultColumn)...)

	columns := make([]*dataset.Column, 0, len(names))
	for i := range a.Keys {
		cells := make([]dataset.Cell, len(a.Rows))
		for r, row := range a.Rows {
			cells[r] = row.Key[i]
		}
		columns = append(columns, dataset.NewColumn(names[i], a.keyKind(i), cells))
	}

	values := make([]dataset.Cell, len(a.Rows))
	for r, row := range a.Rows {
		values[r] = dataset.NumberCell(float64(row.Value))
	}
	columns = append(columns, dataset.NewColumn(names[len(names)-1], dataset.KindNumeric, values))

	return dataset.NewTable(columns)
}

func (a *AggregationTable) keyKind(i int) dataset.Kind {
	if i < len(a.keyKinds) {
		return a.keyKinds[i]
	}
	if len(a.Rows) > 0 {
		return a.Rows[0].Key[i].Kind()
	}
	return dataset.KindText
}
