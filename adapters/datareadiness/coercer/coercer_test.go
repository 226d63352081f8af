package coercer

import (
	"math"
	"testing"
	"time"

	"dataportal/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferColumn_Kinds(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		name     string
		values   []string
		kind     dataset.Kind
		integral bool
		dtype    string
	}{
		{"integers", []string{"10", "20", "5"}, dataset.KindNumeric, true, "int64"},
		{"floats", []string{"1.5", "2", "-3e2"}, dataset.KindNumeric, false, "float64"},
		{"integers with gap", []string{"1", "", "3"}, dataset.KindNumeric, false, "float64"},
		{"booleans", []string{"True", "false", "TRUE"}, dataset.KindBoolean, false, "bool"},
		{"dates", []string{"2024-01-01", "2024-02-15", "NA"}, dataset.KindTemporal, false, "datetime64[ns]"},
		{"text", []string{"A", "A", "B"}, dataset.KindText, false, "object"},
		{"mostly numeric", []string{"1", "2", "three"}, dataset.KindText, false, "object"},
		{"all missing", []string{"", "NaN", "null"}, dataset.KindNumeric, false, "float64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := c.InferColumn("col", tt.values)
			assert.Equal(t, tt.kind, col.Kind)
			assert.Equal(t, tt.integral, col.Integral)
			assert.Equal(t, tt.dtype, col.DType())
			assert.Len(t, col.Cells, len(tt.values))
		})
	}
}

func TestInferColumn_ConvertsValues(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	col := c.InferColumn("amount", []string{" 10 ", "", "2.5"})
	require.Equal(t, dataset.KindNumeric, col.Kind)
	assert.Equal(t, 10.0, col.Cells[0].Num)
	assert.True(t, col.Cells[1].Null)
	assert.True(t, math.IsNaN(col.Cells[1].Num))
	assert.Equal(t, []float64{10, 2.5}, col.Floats())

	dates := c.InferColumn("when", []string{"2024-03-01 10:30:00"})
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), dates.Cells[0].Time)
}

func TestThresholdAllowsNoisyNumericColumns(t *testing.T) {
	cfg := DefaultCoercionConfig()
	cfg.NumericThreshold = 0.6
	c := NewTypeCoercer(cfg)

	col := c.InferColumn("score", []string{"1", "2", "oops"})
	assert.Equal(t, dataset.KindNumeric, col.Kind)
	assert.True(t, col.Cells[2].Null, "unparseable values become missing")
}

func TestLenientNumbers(t *testing.T) {
	strict := NewTypeCoercer(DefaultCoercionConfig())
	cfg := DefaultCoercionConfig()
	cfg.Lenient = true
	lenient := NewTypeCoercer(cfg)

	values := []string{"$1,200.50", "(300)", "45%", "1.234,5"}
	assert.Equal(t, dataset.KindText, strict.InferColumn("v", values).Kind)

	col := lenient.InferColumn("v", values)
	require.Equal(t, dataset.KindNumeric, col.Kind)
	assert.Equal(t, []float64{1200.5, -300, 45, 1234.5}, col.Floats())
}

func TestAnalyzeTypeDistribution(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	analysis := c.AnalyzeTypeDistribution([]string{"1", "2.5", "", "x"})
	assert.Equal(t, 4, analysis.TotalCount)
	assert.Equal(t, 3, analysis.ValidCount)
	assert.Equal(t, 2, analysis.NumericCount)
	assert.Equal(t, 1, analysis.FractionalCount)
	assert.InDelta(t, 2.0/3.0, analysis.NumericRatio, 1e-9)
	assert.Equal(t, dataset.KindText, analysis.RecommendedKind)
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "  ", "NA", "n/a", "NaN", "NULL", "None", "#N/A"} {
		assert.True(t, IsMissing(v), "%q should be missing", v)
	}
	assert.False(t, IsMissing("0"))
	assert.False(t, IsMissing("nothing"))
}

func TestInferKind(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	assert.Equal(t, dataset.KindNumeric, c.InferKind([]string{"1", "", "2.5"}))
	assert.Equal(t, dataset.KindBoolean, c.InferKind([]string{"true", "False"}))
	assert.Equal(t, dataset.KindText, c.InferKind([]string{"1", "x"}))
	assert.Equal(t, dataset.KindNumeric, c.InferKind([]string{"", ""}))
}
