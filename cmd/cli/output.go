package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"dataportal/domain/dataset"
	"dataportal/internal/analysis"

	"github.com/spf13/cobra"
)

func runDescribe(cmd *cobra.Command, t *dataset.Table, head, tail int) error {
	out := cmd.OutOrStdout()
	rows, cols := t.Shape()

	fmt.Fprintf(out, "There are %d rows and %d columns in the dataset\n\n", rows, cols)

	fmt.Fprintln(out, "Statistical Summary")
	if err := printGrid(out, analysis.Describe(t).Grid()); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTop %d Rows\n", t.ClampRows(head))
	if err := printIndexed(out, t.Head(head), 0); err != nil {
		return err
	}

	n := t.ClampRows(tail)
	fmt.Fprintf(out, "\nBottom %d Rows\n", n)
	if err := printIndexed(out, t.Tail(tail), rows-n); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nData Types of Columns")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, ct := range t.DTypes() {
		fmt.Fprintf(w, "%s\t%s\n", ct.Name, ct.DType)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	quoted := make([]string, 0, cols)
	for _, name := range t.ColumnNames() {
		quoted = append(quoted, "'"+name+"'")
	}
	fmt.Fprintf(out, "\nColumn Names in Dataset\n[%s]\n", strings.Join(quoted, ", "))
	return nil
}

func printGrid(out io.Writer, g analysis.Grid) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, strings.Join(g.Header, "\t")+"\t")
	for _, row := range g.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t")+"\t")
	}
	return w.Flush()
}

// printIndexed prints rows labelled with their position in the source table
func printIndexed(out io.Writer, t *dataset.Table, offset int) error {
	g := analysis.Grid{Header: append([]string{""}, t.ColumnNames()...)}
	for i := 0; i < t.NumRows(); i++ {
		row := []string{strconv.Itoa(offset + i)}
		for _, c := range t.Row(i) {
			row = append(row, cellText(c))
		}
		g.Rows = append(g.Rows, row)
	}
	return printGrid(out, g)
}

func printTable(out io.Writer, t *dataset.Table) error {
	return printIndexed(out, t, 0)
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cellText(c dataset.Cell) string {
	if !c.Null {
		return c.String()
	}
	if c.Kind() == dataset.KindNumeric {
		return "NaN"
	}
	return "None"
}
