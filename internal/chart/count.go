package chart

import (
	"dataportal/internal/analysis"
)

// CountCharts renders a value count as the bar, line and pie charts shown
// under the count table
func CountCharts(freq *analysis.FrequencyTable) ([]*Figure, error) {
	t, err := freq.Table()
	if err != nil {
		return nil, err
	}
	names := t.ColumnNames()
	value, count := names[0], names[1]

	specs := []Spec{
		{Kind: KindBar, Mapping: Mapping{X: value, Y: count, Text: count}, Template: TemplateWhite},
		{Kind: KindLine, Mapping: Mapping{X: value, Y: count, Text: count}, Template: TemplateWhite},
		{Kind: KindPie, Mapping: Mapping{Names: value, Values: count}},
	}

	figures := make([]*Figure, 0, len(specs))
	for _, spec := range specs {
		fig, err := Build(t, spec)
		if err != nil {
			return nil, err
		}
		figures = append(figures, fig)
	}
	return figures, nil
}
