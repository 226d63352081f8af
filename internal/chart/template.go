package chart

import (
	"fmt"

	"dataportal/internal/errors"
)

// palette is plotly's default qualitative colorway, assigned to color
// groups in first-occurrence order so a value keeps its color across facets
var palette = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

func colorAt(i int) string {
	return palette[i%len(palette)]
}

const (
	TemplateDefault = "plotly"
	TemplateWhite   = "plotly_white"
)

// template returns the plotly template object for a named template. The
// default template is plotly.js's own, so it needs no object.
func template(name string) (map[string]interface{}, error) {
	switch name {
	case "", TemplateDefault:
		return nil, nil
	case TemplateWhite:
		axis := map[string]interface{}{
			"gridcolor":     "#EBF0F8",
			"linecolor":     "#EBF0F8",
			"zerolinecolor": "#EBF0F8",
			"ticks":         "",
			"automargin":    true,
		}
		return map[string]interface{}{
			"layout": map[string]interface{}{
				"paper_bgcolor": "white",
				"plot_bgcolor":  "white",
				"colorway":      palette,
				"xaxis":         axis,
				"yaxis":         axis,
			},
		}, nil
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown template %q", name))
	}
}
