package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"dataportal/domain/core"
	"dataportal/domain/dataset"
	"dataportal/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(values ...string) []dataset.Cell {
	cells := make([]dataset.Cell, len(values))
	for i, v := range values {
		if v == "" {
			cells[i] = dataset.NullCell(dataset.KindText)
			continue
		}
		cells[i] = dataset.TextCell(v)
	}
	return cells
}

func nums(values ...float64) []dataset.Cell {
	cells := make([]dataset.Cell, len(values))
	for i, v := range values {
		cells[i] = dataset.NumberCell(v)
	}
	return cells
}

func newTable(t *testing.T, cols ...*dataset.Column) *dataset.Table {
	t.Helper()
	tbl, err := dataset.NewTable(cols)
	require.NoError(t, err)
	return tbl
}

func salesTable(t *testing.T) *dataset.Table {
	return newTable(t,
		dataset.NewColumn("city", dataset.KindText, text("A", "A", "B")),
		dataset.NewColumn("amount", dataset.KindNumeric, nums(10, 20, 5)),
	)
}

func TestDescribe_Numeric(t *testing.T) {
	summary := Describe(salesTable(t))

	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, 2, summary.Columns)
	require.Len(t, summary.Numeric, 1)
	assert.Empty(t, summary.Categorical)

	s := summary.Numeric[0]
	assert.Equal(t, "amount", s.Column)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 11.666667, float64(s.Mean), 1e-6)
	assert.InDelta(t, 7.637626, float64(s.Std), 1e-6)
	assert.Equal(t, Number(5), s.Min)
	assert.Equal(t, Number(7.5), s.Q25)
	assert.Equal(t, Number(10), s.Median)
	assert.Equal(t, Number(15), s.Q75)
	assert.Equal(t, Number(20), s.Max)
}

func TestDescribe_SingleValueHasUndefinedStd(t *testing.T) {
	summary := Describe(newTable(t, dataset.NewColumn("x", dataset.KindNumeric, nums(4))))

	s := summary.Numeric[0]
	assert.Equal(t, 1, s.Count)
	assert.True(t, s.Std.IsNaN())
	assert.Equal(t, Number(4), s.Q25)
	assert.Equal(t, Number(4), s.Q75)
}

func TestDescribe_AllNullColumn(t *testing.T) {
	summary := Describe(newTable(t, dataset.NewColumn("x", dataset.KindNumeric, nums(math.NaN(), math.NaN()))))

	s := summary.Numeric[0]
	assert.Equal(t, 0, s.Count)
	assert.True(t, s.Mean.IsNaN())
	assert.True(t, s.Max.IsNaN())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mean":null`)
}

func TestDescribe_CategoricalWhenNoNumeric(t *testing.T) {
	summary := Describe(newTable(t, dataset.NewColumn("city", dataset.KindText, text("A", "B", "B", ""))))

	assert.Empty(t, summary.Numeric)
	require.Len(t, summary.Categorical, 1)
	assert.Equal(t, CategoricalSummary{Column: "city", Count: 3, Unique: 2, Top: "B", Freq: 2}, summary.Categorical[0])

	grid := summary.Grid()
	assert.Equal(t, []string{"", "city"}, grid.Header)
	assert.Equal(t, []string{"top", "B"}, grid.Rows[2])
}

func TestSummaryGrid_Numeric(t *testing.T) {
	grid := Describe(salesTable(t)).Grid()

	assert.Equal(t, []string{"", "amount"}, grid.Header)
	require.Len(t, grid.Rows, 8)
	assert.Equal(t, []string{"count", "3.000000"}, grid.Rows[0])
	assert.Equal(t, []string{"max", "20.000000"}, grid.Rows[7])
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.75, quantile(sorted, 0.25))
	assert.Equal(t, 2.5, quantile(sorted, 0.5))
	assert.Equal(t, 3.25, quantile(sorted, 0.75))
	assert.True(t, math.IsNaN(quantile(nil, 0.5)))
}

func TestCount_SortsByFrequency(t *testing.T) {
	freq, err := Count(salesTable(t), "city", 10)
	require.NoError(t, err)

	require.Len(t, freq.Entries, 2)
	assert.Equal(t, "A", freq.Entries[0].Value.String())
	assert.Equal(t, 2, freq.Entries[0].Count)
	assert.Equal(t, "B", freq.Entries[1].Value.String())
	assert.Equal(t, 1, freq.Entries[1].Count)
}

func TestCount_TiesKeepFirstOccurrence(t *testing.T) {
	tbl := newTable(t, dataset.NewColumn("c", dataset.KindText, text("z", "y", "x", "y", "z", "", "w")))

	freq, err := Count(tbl, "c", 3)
	require.NoError(t, err)

	var got []string
	for _, e := range freq.Entries {
		got = append(got, e.Value.String())
	}
	assert.Equal(t, []string{"z", "y", "x"}, got)
}

func TestCount_Errors(t *testing.T) {
	tbl := salesTable(t)

	_, err := Count(tbl, "city", 0)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = Count(tbl, "missing", 5)
	assert.ErrorIs(t, err, core.ErrUnknownColumn)
}

func TestFrequencyTable_Table(t *testing.T) {
	freq, err := Count(salesTable(t), "amount", 5)
	require.NoError(t, err)

	tbl, err := freq.Table()
	require.NoError(t, err)
	assert.Equal(t, []string{"amount", "count"}, tbl.ColumnNames())
	assert.Equal(t, "int64", tbl.DTypes()[1].DType)
}

func TestGroupAggregate_Sum(t *testing.T) {
	agg, err := GroupAggregate(salesTable(t), []string{"city"}, "amount", "sum")
	require.NoError(t, err)

	require.Len(t, agg.Rows, 2)
	assert.Equal(t, "A", agg.Rows[0].Key[0].String())
	assert.Equal(t, Number(30), agg.Rows[0].Value)
	assert.Equal(t, "B", agg.Rows[1].Key[0].String())
	assert.Equal(t, Number(5), agg.Rows[1].Value)

	tbl, err := agg.Table()
	require.NoError(t, err)
	assert.Equal(t, []string{"city", ResultColumn}, tbl.ColumnNames())
}

func TestGroupAggregate_Reducers(t *testing.T) {
	tbl := newTable(t,
		dataset.NewColumn("k", dataset.KindText, text("a", "a", "a", "b")),
		dataset.NewColumn("v", dataset.KindNumeric, nums(1, 4, math.NaN(), math.NaN())),
	)

	tests := []struct {
		reducer string
		a       float64
		bNaN    bool
		b       float64
	}{
		{"sum", 5, false, 0},
		{"max", 4, true, 0},
		{"min", 1, true, 0},
		{"mean", 2.5, true, 0},
		{"median", 2.5, true, 0},
		{"count", 2, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.reducer, func(t *testing.T) {
			agg, err := GroupAggregate(tbl, []string{"k"}, "v", tt.reducer)
			require.NoError(t, err)
			require.Len(t, agg.Rows, 2)

			assert.Equal(t, Number(tt.a), agg.Rows[0].Value)
			if tt.bNaN {
				assert.True(t, agg.Rows[1].Value.IsNaN())
			} else {
				assert.Equal(t, Number(tt.b), agg.Rows[1].Value)
			}
		})
	}
}

func TestGroupAggregate_MultiKeySortedAndNullKeysDropped(t *testing.T) {
	tbl := newTable(t,
		dataset.NewColumn("region", dataset.KindText, text("N", "S", "N", "", "S")),
		dataset.NewColumn("year", dataset.KindNumeric, nums(2021, 2020, 2020, 2020, 2020)),
		dataset.NewColumn("v", dataset.KindNumeric, nums(1, 2, 3, 4, 5)),
	)

	agg, err := GroupAggregate(tbl, []string{"region", "year"}, "v", "count")
	require.NoError(t, err)

	var keys [][]string
	for _, row := range agg.Rows {
		keys = append(keys, []string{row.Key[0].String(), row.Key[1].String()})
	}
	assert.Equal(t, [][]string{{"N", "2020"}, {"N", "2021"}, {"S", "2020"}}, keys)
	assert.Equal(t, Number(2), agg.Rows[2].Value)

	out, err := agg.Table()
	require.NoError(t, err)
	assert.Equal(t, "int64", out.DTypes()[1].DType)
}

func TestGroupAggregate_NumericKeysSortNumerically(t *testing.T) {
	tbl := newTable(t,
		dataset.NewColumn("n", dataset.KindNumeric, nums(10, 9, 100)),
		dataset.NewColumn("v", dataset.KindNumeric, nums(1, 1, 1)),
	)

	agg, err := GroupAggregate(tbl, []string{"n"}, "v", "sum")
	require.NoError(t, err)
	assert.Equal(t, "9", agg.Rows[0].Key[0].String())
	assert.Equal(t, "100", agg.Rows[2].Key[0].String())
}

func TestGroupAggregate_RejectsNonNumericColumn(t *testing.T) {
	for _, reducer := range Reducers {
		t.Run(string(reducer), func(t *testing.T) {
			agg, err := GroupAggregate(salesTable(t), []string{"amount"}, "city", string(reducer))
			require.Error(t, err)
			assert.Nil(t, agg)
			assert.Equal(t, errors.CodeNonNumericColumn, errors.GetCode(err))
			assert.Equal(t,
				"The selected column 'city' is not numeric. '"+string(reducer)+"' operation cannot be applied.",
				err.Error())
		})
	}
}

func TestGroupAggregate_ValidatesInput(t *testing.T) {
	tbl := salesTable(t)

	_, err := GroupAggregate(tbl, nil, "amount", "sum")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = GroupAggregate(tbl, []string{"city"}, "amount", "mode")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = GroupAggregate(tbl, []string{"nope"}, "amount", "sum")
	assert.ErrorIs(t, err, core.ErrUnknownColumn)

	_, err = GroupAggregate(tbl, []string{"city"}, "nope", "sum")
	assert.ErrorIs(t, err, core.ErrUnknownColumn)
}

func TestParseReducer(t *testing.T) {
	r, err := ParseReducer(" Mean ")
	require.NoError(t, err)
	assert.Equal(t, ReducerMean, r)

	_, err = ParseReducer("avg")
	assert.Error(t, err)
}
