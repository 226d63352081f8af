package chart

import (
	"fmt"
	"strings"

	"dataportal/domain/dataset"
	"dataportal/internal/errors"
)

const facetGap = 0.03

// Build renders a table as a figure. Errors name the offending field or
// column and are meant to be shown to the user as they are.
func Build(t *dataset.Table, spec Spec) (*Figure, error) {
	tmpl, err := template(spec.Template)
	if err != nil {
		return nil, err
	}

	var fig *Figure
	switch spec.Kind {
	case KindLine, KindBar, KindScatter:
		fig, err = buildCartesian(t, spec)
	case KindPie:
		fig, err = buildPie(t, spec.Mapping)
	case KindSunburst:
		fig, err = buildSunburst(t, spec.Mapping)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown chart kind %q: use one of line, bar, scatter, pie, sunburst", spec.Kind))
	}
	if err != nil {
		return nil, err
	}

	fig.Layout.Template = tmpl
	if spec.Title != "" {
		fig.Layout.Title = &Title{Text: spec.Title}
	}
	return fig, nil
}

func required(kind Kind, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.InvalidInput(fmt.Sprintf("%s chart requires %s", kind, field))
	}
	return nil
}

// optionalColumn looks up a column when a name is given
func optionalColumn(t *dataset.Table, name string) (*dataset.Column, error) {
	if name == "" {
		return nil, nil
	}
	return t.Column(name)
}

func numericColumn(t *dataset.Table, name, role string) (*dataset.Column, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if !col.Kind.IsNumeric() {
		return nil, errors.InvalidInput(fmt.Sprintf("column '%s' is not numeric and cannot be used as %s", name, role))
	}
	return col, nil
}

// group is a set of row indexes sharing one value of a column
type group struct {
	label string
	rows  []int
}

// splitRows partitions rows by the values of col in first-occurrence
// order. Rows where col is null are left out. A nil col yields one group.
func splitRows(col *dataset.Column, rows []int) []group {
	if col == nil {
		return []group{{rows: rows}}
	}
	index := make(map[string]int)
	var groups []group
	for _, r := range rows {
		cell := col.Cells[r]
		if cell.Null {
			continue
		}
		label := cell.String()
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, group{label: label})
		}
		groups[i].rows = append(groups[i].rows, r)
	}
	return groups
}

func allRows(t *dataset.Table) []int {
	rows := make([]int, t.NumRows())
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func pick(col *dataset.Column, rows []int) []dataset.Cell {
	cells := make([]dataset.Cell, len(rows))
	for i, r := range rows {
		cells[i] = col.Cells[r]
	}
	return cells
}

func pickText(col *dataset.Column, rows []int) []string {
	text := make([]string, len(rows))
	for i, r := range rows {
		text[i] = col.Cells[r].String()
	}
	return text
}

func buildCartesian(t *dataset.Table, spec Spec) (*Figure, error) {
	m := spec.Mapping
	if err := required(spec.Kind, "x", m.X); err != nil {
		return nil, err
	}
	if err := required(spec.Kind, "y", m.Y); err != nil {
		return nil, err
	}

	x, err := t.Column(m.X)
	if err != nil {
		return nil, err
	}
	y, err := t.Column(m.Y)
	if err != nil {
		return nil, err
	}
	color, err := optionalColumn(t, m.Color)
	if err != nil {
		return nil, err
	}

	var text, facet, size *dataset.Column
	if spec.Kind != KindScatter {
		if text, err = optionalColumn(t, m.Text); err != nil {
			return nil, err
		}
	}
	if spec.Kind == KindBar {
		if facet, err = optionalColumn(t, m.Facet); err != nil {
			return nil, err
		}
	}
	if spec.Kind == KindScatter && m.Size != "" {
		if size, err = numericColumn(t, m.Size, "size"); err != nil {
			return nil, err
		}
	}

	rows := allRows(t)
	colors := splitRows(color, rows)
	colorIndex := make(map[string]int, len(colors))
	for i, g := range colors {
		colorIndex[g.label] = i
	}
	facets := splitRows(facet, rows)

	var sizeRef float64
	if size != nil {
		maxSize := 0.0
		for _, v := range size.Floats() {
			if v > maxSize {
				maxSize = v
			}
		}
		if maxSize > 0 {
			sizeRef = 2 * maxSize / (40 * 40)
		}
	}

	fig := &Figure{Layout: Layout{Axes: map[string]Axis{}}}
	for fi, fg := range facets {
		xRef, yRef := axisRefs(fi)
		for _, cg := range splitRows(color, fg.rows) {
			trace := Trace{
				Type: traceType(spec.Kind),
				X:    pick(x, cg.rows),
				Y:    pick(y, cg.rows),
			}
			if fi > 0 {
				trace.XAxis, trace.YAxis = xRef, yRef
			}

			switch spec.Kind {
			case KindLine:
				trace.Mode = "lines+markers"
				if text != nil {
					trace.Mode = "lines+markers+text"
					trace.TextPosition = "top center"
				}
			case KindScatter:
				trace.Mode = "markers"
			case KindBar:
				trace.TextPosition = "auto"
			}
			if text != nil {
				trace.Text = pickText(text, cg.rows)
			}

			if color != nil {
				trace.Name = cg.label
				trace.LegendGroup = cg.label
				trace.ShowLegend = boolPtr(fi == 0)
				trace.Marker = &Marker{Color: colorAt(colorIndex[cg.label])}
				if spec.Kind == KindBar {
					trace.OffsetGroup = cg.label
					trace.AlignmentGrp = "True"
				}
			} else {
				trace.ShowLegend = boolPtr(false)
			}

			if size != nil {
				if trace.Marker == nil {
					trace.Marker = &Marker{}
				}
				trace.Marker.Size = sizes(size, cg.rows)
				trace.Marker.SizeMode = "area"
				trace.Marker.SizeRef = sizeRef
			}

			fig.Data = append(fig.Data, trace)
		}
	}

	layoutCartesian(&fig.Layout, spec.Kind, m, facet, facets)
	if color != nil {
		fig.Layout.Legend = &Legend{Title: &Title{Text: m.Color}}
	}
	return fig, nil
}

func traceType(kind Kind) string {
	if kind == KindBar {
		return "bar"
	}
	return "scatter"
}

func axisRefs(facet int) (string, string) {
	if facet == 0 {
		return "x", "y"
	}
	return fmt.Sprintf("x%d", facet+1), fmt.Sprintf("y%d", facet+1)
}

// axisName maps a trace axis reference (x2) to its layout key (xaxis2)
func axisName(ref string) string {
	return ref[:1] + "axis" + ref[1:]
}

func sizes(col *dataset.Column, rows []int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		if cell := col.Cells[r]; !cell.Null {
			out[i] = cell.Num
		}
	}
	return out
}

func layoutCartesian(l *Layout, kind Kind, m Mapping, facet *dataset.Column, facets []group) {
	if kind == KindBar {
		l.BarMode = "group"
	}

	n := len(facets)
	if facet == nil || n <= 1 {
		l.Axes["xaxis"] = Axis{Title: &Title{Text: m.X}}
		l.Axes["yaxis"] = Axis{Title: &Title{Text: m.Y}}
		if facet != nil && n == 1 {
			l.Annotations = append(l.Annotations, facetAnnotation(m.Facet, facets[0].label, 0.5))
		}
		return
	}

	width := (1 - facetGap*float64(n-1)) / float64(n)
	for i, fg := range facets {
		xRef, yRef := axisRefs(i)
		start := float64(i) * (width + facetGap)
		end := start + width
		if i == n-1 {
			end = 1
		}

		l.Axes[axisName(xRef)] = Axis{
			Title:  &Title{Text: m.X},
			Domain: []float64{start, end},
			Anchor: yRef,
		}
		y := Axis{Anchor: xRef}
		if i == 0 {
			y.Title = &Title{Text: m.Y}
		} else {
			y.Matches = "y"
			y.ShowTickLabels = boolPtr(false)
		}
		l.Axes[axisName(yRef)] = y

		l.Annotations = append(l.Annotations, facetAnnotation(m.Facet, fg.label, (start+end)/2))
	}
}

func facetAnnotation(column, value string, x float64) Annotation {
	return Annotation{
		Text:    fmt.Sprintf("%s=%s", column, value),
		X:       x,
		Y:       1,
		XRef:    "paper",
		YRef:    "paper",
		XAnchor: "center",
		YAnchor: "bottom",
	}
}

func buildPie(t *dataset.Table, m Mapping) (*Figure, error) {
	if err := required(KindPie, "values", m.Values); err != nil {
		return nil, err
	}
	if err := required(KindPie, "names", m.Names); err != nil {
		return nil, err
	}
	values, err := numericColumn(t, m.Values, "values")
	if err != nil {
		return nil, err
	}
	names, err := t.Column(m.Names)
	if err != nil {
		return nil, err
	}

	trace := Trace{Type: "pie"}
	for r := 0; r < t.NumRows(); r++ {
		label, value := names.Cells[r], values.Cells[r]
		if label.Null || value.Null {
			continue
		}
		trace.Labels = append(trace.Labels, label.String())
		trace.Values = append(trace.Values, value.Num)
	}

	return &Figure{Data: []Trace{trace}}, nil
}

func buildSunburst(t *dataset.Table, m Mapping) (*Figure, error) {
	if len(m.Path) == 0 {
		return nil, errors.InvalidInput("sunburst chart requires path")
	}
	// an aggregation table ends with its result column
	valueName := m.Values
	if names := t.ColumnNames(); valueName == "" && len(names) > 0 {
		valueName = names[len(names)-1]
	}

	path := make([]*dataset.Column, len(m.Path))
	for i, name := range m.Path {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		path[i] = col
	}
	values, err := numericColumn(t, valueName, "values")
	if err != nil {
		return nil, err
	}

	trace := Trace{Type: "sunburst", BranchValues: "total"}
	index := make(map[string]int)

rows:
	for r := 0; r < t.NumRows(); r++ {
		value := values.Cells[r]
		if value.Null {
			continue
		}
		labels := make([]string, len(path))
		for d, col := range path {
			cell := col.Cells[r]
			if cell.Null {
				continue rows
			}
			labels[d] = cell.String()
		}

		parent := ""
		for d := range labels {
			id := nodeID(parent, labels[d])
			i, ok := index[id]
			if !ok {
				i = len(trace.IDs)
				index[id] = i
				trace.IDs = append(trace.IDs, id)
				trace.Labels = append(trace.Labels, labels[d])
				trace.Parents = append(trace.Parents, parent)
				trace.Values = append(trace.Values, 0)
			}
			trace.Values[i] += value.Num
			parent = id
		}
	}

	return &Figure{Data: []Trace{trace}}, nil
}

var idEscaper = strings.NewReplacer(`\`, `\\`, "/", `\/`)

// nodeID appends label to the parent id. Separators inside labels are
// escaped so distinct paths never share an id.
func nodeID(parent, label string) string {
	label = idEscaper.Replace(label)
	if parent == "" {
		return label
	}
	return parent + "/" + label
}
