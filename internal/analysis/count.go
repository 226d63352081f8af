package analysis

import (
	"slices"
	"strconv"

	"dataportal/domain/dataset"
	"dataportal/internal/errors"
)

// FrequencyEntry is one distinct value and how often it occurs
type FrequencyEntry struct {
	Value dataset.Cell `json:"value"`
	Count int          `json:"count"`
}

// FrequencyTable is the value count of one column, most frequent first
type FrequencyTable struct {
	Column  string           `json:"column"`
	Kind    dataset.Kind     `json:"kind"`
	Entries []FrequencyEntry `json:"entries"`
}

// Count tallies the distinct non-null values of column, sorted by count
// descending with ties in first-occurrence order, keeping the topN largest
func Count(t *dataset.Table, column string, topN int) (*FrequencyTable, error) {
	if topN < 1 {
		return nil, errors.InvalidInput("top must be at least 1")
	}
	col, err := t.Column(column)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var entries []FrequencyEntry
	for _, cell := range col.Cells {
		if cell.Null {
			continue
		}
		key := groupKey(cell)
		if i, ok := index[key]; ok {
			entries[i].Count++
			continue
		}
		index[key] = len(entries)
		entries = append(entries, FrequencyEntry{Value: cell, Count: 1})
	}

	slices.SortStableFunc(entries, func(a, b FrequencyEntry) int {
		return b.Count - a.Count
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}

	return &FrequencyTable{Column: col.Name, Kind: col.Kind, Entries: entries}, nil
}

// Table converts the frequency table into a two-column table: the values
// and their "count"
func (f *FrequencyTable) Table() (*dataset.Table, error) {
	values := make([]dataset.Cell, len(f.Entries))
	counts := make([]dataset.Cell, len(f.Entries))
	for i, e := range f.Entries {
		values[i] = e.Value
		counts[i] = dataset.NumberCell(float64(e.Count))
	}

	names := uniqueNames(f.Column, "count")
	return dataset.NewTable([]*dataset.Column{
		dataset.NewColumn(names[0], f.Kind, values),
		dataset.NewColumn(names[1], dataset.KindNumeric, counts),
	})
}

// groupKey identifies equal values within one column
func groupKey(c dataset.Cell) string {
	if c.Kind() == dataset.KindNumeric && c.Num == 0 {
		return "0"
	}
	return c.String()
}

// uniqueNames keeps names distinct by suffixing repeats with ".1", ".2", ...
func uniqueNames(names ...string) []string {
	out := make([]string, len(names))
	taken := make(map[string]bool, len(names))
	for i, name := range names {
		candidate := name
		for n := 1; taken[candidate]; n++ {
			candidate = name + "." + strconv.Itoa(n)
		}
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}
