// Package analysis computes the derived tables shown for an uploaded
// dataset: summary statistics, value counts and group-by aggregations.
// Every function is pure and recomputes from the table it is given.
package analysis

import (
	"math"
	"slices"
	"strconv"

	"dataportal/domain/dataset"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// NumericSummary holds the describe statistics of one numeric column
type NumericSummary struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
	Mean   Number `json:"mean"`
	Std    Number `json:"std"`
	Min    Number `json:"min"`
	Q25    Number `json:"25%"`
	Median Number `json:"50%"`
	Q75    Number `json:"75%"`
	Max    Number `json:"max"`
}

// CategoricalSummary describes a non-numeric column
type CategoricalSummary struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
	Unique int    `json:"unique"`
	Top    string `json:"top"`
	Freq   int    `json:"freq"`
}

// Summary is the describe result for a table. Numeric is filled when the
// table has numeric columns; otherwise Categorical covers every column.
type Summary struct {
	Rows        int                  `json:"rows"`
	Columns     int                  `json:"columns"`
	Numeric     []NumericSummary     `json:"numeric,omitempty"`
	Categorical []CategoricalSummary `json:"categorical,omitempty"`
}

// Describe summarizes every numeric column of t, or every column when none
// is numeric
func Describe(t *dataset.Table) Summary {
	rows, cols := t.Shape()
	summary := Summary{Rows: rows, Columns: cols}

	for _, col := range t.Columns() {
		if col.Kind.IsNumeric() {
			summary.Numeric = append(summary.Numeric, describeNumeric(col))
		}
	}
	if len(summary.Numeric) > 0 {
		return summary
	}

	for _, col := range t.Columns() {
		summary.Categorical = append(summary.Categorical, describeCategorical(col))
	}
	return summary
}

func describeNumeric(col *dataset.Column) NumericSummary {
	values := col.Floats()
	s := NumericSummary{Column: col.Name, Count: len(values)}
	if len(values) == 0 {
		nan := Number(math.NaN())
		s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = math.NaN()
	}
	minimum, _ := stats.Min(values)
	maximum, _ := stats.Max(values)
	median, _ := stats.Median(values)

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	s.Mean = Number(mean)
	s.Std = Number(std)
	s.Min = Number(minimum)
	s.Q25 = Number(quantile(sorted, 0.25))
	s.Median = Number(median)
	s.Q75 = Number(quantile(sorted, 0.75))
	s.Max = Number(maximum)
	return s
}

// quantile interpolates linearly between the closest ranks of sorted
// values: position p*(n-1), the default of common dataframe tools
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func describeCategorical(col *dataset.Column) CategoricalSummary {
	s := CategoricalSummary{Column: col.Name}

	counts := make(map[string]int)
	var order []string
	for _, cell := range col.Cells {
		if cell.Null {
			continue
		}
		s.Count++
		key := cell.String()
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	s.Unique = len(order)
	for _, key := range order {
		if counts[key] > s.Freq {
			s.Top, s.Freq = key, counts[key]
		}
	}
	return s
}

// Grid is a rendered table of strings: a header row and labelled body rows
type Grid struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Grid lays the summary out with one column per described column and one
// row per statistic
func (s Summary) Grid() Grid {
	if len(s.Numeric) > 0 {
		g := Grid{Header: []string{""}}
		labels := []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}
		g.Rows = make([][]string, len(labels))
		for i, label := range labels {
			g.Rows[i] = []string{label}
		}
		for _, n := range s.Numeric {
			g.Header = append(g.Header, n.Column)
			values := []Number{Number(n.Count), n.Mean, n.Std, n.Min, n.Q25, n.Median, n.Q75, n.Max}
			for i, v := range values {
				g.Rows[i] = append(g.Rows[i], v.Fixed())
			}
		}
		return g
	}

	g := Grid{
		Header: []string{""},
		Rows:   [][]string{{"count"}, {"unique"}, {"top"}, {"freq"}},
	}
	for _, c := range s.Categorical {
		g.Header = append(g.Header, c.Column)
		g.Rows[0] = append(g.Rows[0], strconv.Itoa(c.Count))
		g.Rows[1] = append(g.Rows[1], strconv.Itoa(c.Unique))
		g.Rows[2] = append(g.Rows[2], c.Top)
		g.Rows[3] = append(g.Rows[3], strconv.Itoa(c.Freq))
	}
	return g
}
