package chart

import (
	"testing"

	"dataportal/domain/core"
	"dataportal/domain/dataset"
	"dataportal/internal/analysis"
	"dataportal/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func text(values ...string) []dataset.Cell {
	cells := make([]dataset.Cell, len(values))
	for i, v := range values {
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

// regionTable is a group-by result: region, year and the aggregated newcol
func regionTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.NewTable([]*dataset.Column{
		dataset.NewColumn("region", dataset.KindText, text("N", "N", "S", "S")),
		dataset.NewColumn("year", dataset.KindNumeric, nums(2020, 2021, 2020, 2021)),
		dataset.NewColumn("product", dataset.KindText, text("a", "b", "a", "b")),
		dataset.NewColumn(analysis.ResultColumn, dataset.KindNumeric, nums(10, 20, 30, 40)),
	})
	require.NoError(t, err)
	return tbl
}

func figureJSON(t *testing.T, fig *Figure) string {
	t.Helper()
	data, err := fig.JSON()
	require.NoError(t, err)
	return string(data)
}

func TestBuild_LineWithoutColor(t *testing.T) {
	fig, err := Build(regionTable(t), Spec{Kind: KindLine, Mapping: Mapping{X: "year", Y: "newcol"}})
	require.NoError(t, err)

	js := figureJSON(t, fig)
	assert.Equal(t, int64(1), gjson.Get(js, "data.#").Int())
	assert.Equal(t, "scatter", gjson.Get(js, "data.0.type").String())
	assert.Equal(t, "lines+markers", gjson.Get(js, "data.0.mode").String())
	assert.Equal(t, `[2020,2021,2020,2021]`, gjson.Get(js, "data.0.x").Raw)
	assert.Equal(t, "year", gjson.Get(js, "layout.xaxis.title.text").String())
	assert.Equal(t, "newcol", gjson.Get(js, "layout.yaxis.title.text").String())
}

func TestBuild_ColorSplitsTracesInFirstOccurrenceOrder(t *testing.T) {
	fig, err := Build(regionTable(t), Spec{Kind: KindLine, Mapping: Mapping{X: "year", Y: "newcol", Color: "region"}})
	require.NoError(t, err)

	js := figureJSON(t, fig)
	assert.Equal(t, int64(2), gjson.Get(js, "data.#").Int())
	assert.Equal(t, "N", gjson.Get(js, "data.0.name").String())
	assert.Equal(t, `[10,20]`, gjson.Get(js, "data.0.y").Raw)
	assert.Equal(t, "S", gjson.Get(js, "data.1.name").String())
	assert.Equal(t, palette[1], gjson.Get(js, "data.1.marker.color").String())
	assert.Equal(t, "region", gjson.Get(js, "layout.legend.title.text").String())
}

func TestBuild_BarWithFacet(t *testing.T) {
	fig, err := Build(regionTable(t), Spec{
		Kind:    KindBar,
		Mapping: Mapping{X: "product", Y: "newcol", Color: "year", Facet: "region"},
	})
	require.NoError(t, err)

	js := figureJSON(t, fig)
	assert.Equal(t, "group", gjson.Get(js, "layout.barmode").String())
	assert.Equal(t, int64(4), gjson.Get(js, "data.#").Int())

	// second facet traces live on the second axis pair
	assert.False(t, gjson.Get(js, "data.0.xaxis").Exists())
	assert.Equal(t, "x2", gjson.Get(js, "data.2.xaxis").String())
	assert.Equal(t, "y2", gjson.Get(js, "data.2.yaxis").String())
	assert.Equal(t, "y", gjson.Get(js, "layout.yaxis2.matches").String())
	assert.Equal(t, float64(1), gjson.Get(js, "layout.xaxis2.domain.1").Float())

	// legend entries only once per color
	assert.True(t, gjson.Get(js, "data.0.showlegend").Bool())
	assert.False(t, gjson.Get(js, "data.2.showlegend").Bool())
	assert.Equal(t, gjson.Get(js, "data.0.marker.color").String(), gjson.Get(js, "data.2.marker.color").String())

	assert.Equal(t, "region=N", gjson.Get(js, "layout.annotations.0.text").String())
	assert.Equal(t, "region=S", gjson.Get(js, "layout.annotations.1.text").String())
}

func TestBuild_ScatterSize(t *testing.T) {
	fig, err := Build(regionTable(t), Spec{Kind: KindScatter, Mapping: Mapping{X: "year", Y: "newcol", Size: "newcol"}})
	require.NoError(t, err)

	js := figureJSON(t, fig)
	assert.Equal(t, "markers", gjson.Get(js, "data.0.mode").String())
	assert.Equal(t, `[10,20,30,40]`, gjson.Get(js, "data.0.marker.size").Raw)
	assert.Equal(t, "area", gjson.Get(js, "data.0.marker.sizemode").String())
	assert.InDelta(t, 2*40.0/1600, gjson.Get(js, "data.0.marker.sizeref").Float(), 1e-9)

	_, err = Build(regionTable(t), Spec{Kind: KindScatter, Mapping: Mapping{X: "year", Y: "newcol", Size: "region"}})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestBuild_Pie(t *testing.T) {
	fig, err := Build(regionTable(t), Spec{Kind: KindPie, Mapping: Mapping{Names: "product", Values: "newcol"}})
	require.NoError(t, err)

	js := figureJSON(t, fig)
	assert.Equal(t, "pie", gjson.Get(js, "data.0.type").String())
	assert.Equal(t, `["a","b","a","b"]`, gjson.Get(js, "data.0.labels").Raw)
	assert.Equal(t, `[10,20,30,40]`, gjson.Get(js, "data.0.values").Raw)

	_, err = Build(regionTable(t), Spec{Kind: KindPie, Mapping: Mapping{Names: "newcol", Values: "product"}})
	assert.Error(t, err)
}

func TestBuild_Sunburst(t *testing.T) {
	fig, err := Build(regionTable(t), Spec{Kind: KindSunburst, Mapping: Mapping{Path: []string{"region", "product"}}})
	require.NoError(t, err)

	js := figureJSON(t, fig)
	assert.Equal(t, "sunburst", gjson.Get(js, "data.0.type").String())
	assert.Equal(t, "total", gjson.Get(js, "data.0.branchvalues").String())
	assert.Equal(t, `["N","N/a","N/b","S","S/a","S/b"]`, gjson.Get(js, "data.0.ids").Raw)
	assert.Equal(t, `["","N","N","","S","S"]`, gjson.Get(js, "data.0.parents").Raw)
	assert.Equal(t, `[30,10,20,70,30,40]`, gjson.Get(js, "data.0.values").Raw)
}

func stringsAt(js, path string) []string {
	var out []string
	for _, v := range gjson.Get(js, path).Array() {
		out = append(out, v.String())
	}
	return out
}

func TestBuild_SunburstLabelsContainingSeparator(t *testing.T) {
	tbl, err := dataset.NewTable([]*dataset.Column{
		dataset.NewColumn("a", dataset.KindText, text("x/y", "x")),
		dataset.NewColumn("b", dataset.KindText, text("z", "y/z")),
		dataset.NewColumn(analysis.ResultColumn, dataset.KindNumeric, nums(1, 2)),
	})
	require.NoError(t, err)

	fig, err := Build(tbl, Spec{Kind: KindSunburst, Mapping: Mapping{Path: []string{"a", "b"}}})
	require.NoError(t, err)

	js := figureJSON(t, fig)
	assert.Equal(t, []string{`x\/y`, `x\/y/z`, "x", `x/y\/z`}, stringsAt(js, "data.0.ids"))
	assert.Equal(t, []string{"x/y", "z", "x", "y/z"}, stringsAt(js, "data.0.labels"))
	assert.Equal(t, []string{"", `x\/y`, "", "x"}, stringsAt(js, "data.0.parents"))
	assert.Equal(t, `[1,1,2,2]`, gjson.Get(js, "data.0.values").Raw)
}

func TestBuild_SunburstDefaultsToResultColumn(t *testing.T) {
	src, err := dataset.NewTable([]*dataset.Column{
		dataset.NewColumn("newcol", dataset.KindText, text("p", "q", "p")),
		dataset.NewColumn("amount", dataset.KindNumeric, nums(1, 2, 3)),
	})
	require.NoError(t, err)
	agg, err := analysis.GroupAggregate(src, []string{"newcol"}, "amount", "sum")
	require.NoError(t, err)
	tbl, err := agg.Table()
	require.NoError(t, err)
	require.Equal(t, []string{"newcol", "newcol.1"}, tbl.ColumnNames())

	fig, err := Build(tbl, Spec{Kind: KindSunburst, Mapping: Mapping{Path: []string{"newcol"}}})
	require.NoError(t, err)

	js := figureJSON(t, fig)
	assert.Equal(t, []string{"p", "q"}, stringsAt(js, "data.0.ids"))
	assert.Equal(t, `[4,2]`, gjson.Get(js, "data.0.values").Raw)
}

func TestBuild_Errors(t *testing.T) {
	tbl := regionTable(t)

	tests := []struct {
		name string
		spec Spec
		code string
	}{
		{"unknown kind", Spec{Kind: "heatmap", Mapping: Mapping{X: "year", Y: "newcol"}}, errors.CodeInvalidInput},
		{"missing x", Spec{Kind: KindBar, Mapping: Mapping{Y: "newcol"}}, errors.CodeInvalidInput},
		{"missing y", Spec{Kind: KindLine, Mapping: Mapping{X: "year"}}, errors.CodeInvalidInput},
		{"missing pie names", Spec{Kind: KindPie, Mapping: Mapping{Values: "newcol"}}, errors.CodeInvalidInput},
		{"empty path", Spec{Kind: KindSunburst}, errors.CodeInvalidInput},
		{"unknown template", Spec{Kind: KindBar, Mapping: Mapping{X: "year", Y: "newcol"}, Template: "seaborn"}, errors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tbl, tt.spec)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}

	_, err := Build(tbl, Spec{Kind: KindBar, Mapping: Mapping{X: "nope", Y: "newcol"}})
	assert.ErrorIs(t, err, core.ErrUnknownColumn)
}

func TestCountCharts(t *testing.T) {
	tbl, err := dataset.NewTable([]*dataset.Column{
		dataset.NewColumn("city", dataset.KindText, text("A", "A", "B")),
	})
	require.NoError(t, err)
	freq, err := analysis.Count(tbl, "city", 5)
	require.NoError(t, err)

	figs, err := CountCharts(freq)
	require.NoError(t, err)
	require.Len(t, figs, 3)

	bar := figureJSON(t, figs[0])
	assert.Equal(t, "bar", gjson.Get(bar, "data.0.type").String())
	assert.Equal(t, `["A","B"]`, gjson.Get(bar, "data.0.x").Raw)
	assert.Equal(t, `[2,1]`, gjson.Get(bar, "data.0.y").Raw)
	assert.Equal(t, `["2","1"]`, gjson.Get(bar, "data.0.text").Raw)
	assert.Equal(t, "white", gjson.Get(bar, "layout.template.layout.plot_bgcolor").String())

	line := figureJSON(t, figs[1])
	assert.Equal(t, "lines+markers+text", gjson.Get(line, "data.0.mode").String())

	pie := figureJSON(t, figs[2])
	assert.Equal(t, `["A","B"]`, gjson.Get(pie, "data.0.labels").Raw)
	assert.False(t, gjson.Get(pie, "layout.template").Exists())
}
