// Package chart turns tables into plotly figure specifications. The JSON
// produced by a Figure is passed straight to Plotly.newPlot in the page.
package chart

import (
	"encoding/json"

	"dataportal/domain/dataset"
)

// Kind names a chart type
type Kind string

const (
	KindLine     Kind = "line"
	KindBar      Kind = "bar"
	KindScatter  Kind = "scatter"
	KindPie      Kind = "pie"
	KindSunburst Kind = "sunburst"
)

// Kinds lists the chart types in the order they are offered
var Kinds = []Kind{KindLine, KindBar, KindScatter, KindPie, KindSunburst}

// Mapping assigns table columns to visual roles. Which roles are read
// depends on the chart kind; the rest are ignored.
type Mapping struct {
	X      string   `json:"x,omitempty" form:"x"`
	Y      string   `json:"y,omitempty" form:"y"`
	Color  string   `json:"color,omitempty" form:"color"`
	Facet  string   `json:"facet,omitempty" form:"facet"`   // bar only
	Size   string   `json:"size,omitempty" form:"size"`     // scatter only
	Text   string   `json:"text,omitempty" form:"text"`     // bar and line
	Names  string   `json:"names,omitempty" form:"names"`   // pie
	Values string   `json:"values,omitempty" form:"values"` // pie and sunburst
	Path   []string `json:"path,omitempty" form:"path"`     // sunburst
}

// Spec is a chart request: a kind, a mapping and optional decorations
type Spec struct {
	Kind     Kind    `json:"kind" form:"kind"`
	Mapping  Mapping `json:"mapping"`
	Title    string  `json:"title,omitempty" form:"title"`
	Template string  `json:"template,omitempty" form:"template"`
}

// Figure is a plotly figure: traces plus layout
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// JSON encodes the figure for Plotly.newPlot
func (f *Figure) JSON() ([]byte, error) {
	return json.Marshal(f)
}

// Trace is one plotly trace. Cartesian traces use X/Y, pie uses
// Labels/Values and sunburst IDs/Labels/Parents/Values.
type Trace struct {
	Type          string         `json:"type"`
	Name          string         `json:"name,omitempty"`
	Mode          string         `json:"mode,omitempty"`
	X             []dataset.Cell `json:"x,omitempty"`
	Y             []dataset.Cell `json:"y,omitempty"`
	Text          []string       `json:"text,omitempty"`
	TextPosition  string         `json:"textposition,omitempty"`
	IDs           []string       `json:"ids,omitempty"`
	Labels        []string       `json:"labels,omitempty"`
	Parents       []string       `json:"parents,omitempty"`
	Values        []float64      `json:"values,omitempty"`
	BranchValues  string         `json:"branchvalues,omitempty"`
	Marker        *Marker        `json:"marker,omitempty"`
	XAxis         string         `json:"xaxis,omitempty"`
	YAxis         string         `json:"yaxis,omitempty"`
	LegendGroup   string         `json:"legendgroup,omitempty"`
	ShowLegend    *bool          `json:"showlegend,omitempty"`
	AlignmentGrp  string         `json:"alignmentgroup,omitempty"`
	OffsetGroup   string         `json:"offsetgroup,omitempty"`
	HoverTemplate string         `json:"hovertemplate,omitempty"`
}

// Marker styles points and bars
type Marker struct {
	Color    string    `json:"color,omitempty"`
	Size     []float64 `json:"size,omitempty"`
	SizeMode string    `json:"sizemode,omitempty"`
	SizeRef  float64   `json:"sizeref,omitempty"`
}

// Axis configures one cartesian axis
type Axis struct {
	Title          *Title    `json:"title,omitempty"`
	Domain         []float64 `json:"domain,omitempty"`
	Anchor         string    `json:"anchor,omitempty"`
	Matches        string    `json:"matches,omitempty"`
	ShowTickLabels *bool     `json:"showticklabels,omitempty"`
}

// Title is a plotly title object
type Title struct {
	Text string `json:"text"`
}

// Annotation is a text label placed on the figure, used for facet headers
type Annotation struct {
	Text      string  `json:"text"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	ShowArrow bool    `json:"showarrow"`
	XAnchor   string  `json:"xanchor,omitempty"`
	YAnchor   string  `json:"yanchor,omitempty"`
}

// Legend configures the legend
type Legend struct {
	Title         *Title `json:"title,omitempty"`
	TraceGroupGap int    `json:"tracegroupgap,omitempty"`
}

// Layout is the plotly layout. Axes holds xaxis, yaxis, xaxis2, ... keyed
// by their plotly names and is flattened into the layout object.
type Layout struct {
	Title       *Title                 `json:"title,omitempty"`
	Template    map[string]interface{} `json:"template,omitempty"`
	BarMode     string                 `json:"barmode,omitempty"`
	Legend      *Legend                `json:"legend,omitempty"`
	Annotations []Annotation           `json:"annotations,omitempty"`
	Axes        map[string]Axis        `json:"-"`
}

// MarshalJSON flattens Axes into the layout object
func (l Layout) MarshalJSON() ([]byte, error) {
	type plain Layout
	base, err := json.Marshal(plain(l))
	if err != nil {
		return nil, err
	}
	if len(l.Axes) == 0 {
		return base, nil
	}

	merged := make(map[string]json.RawMessage, len(l.Axes)+6)
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for name, axis := range l.Axes {
		raw, err := json.Marshal(axis)
		if err != nil {
			return nil, err
		}
		merged[name] = raw
	}
	return json.Marshal(merged)
}

func boolPtr(b bool) *bool {
	return &b
}
