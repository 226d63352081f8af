package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"dataportal/adapters/datareadiness/coercer"
	"dataportal/adapters/excel"
	"dataportal/app"
	"dataportal/domain/dataset"
	"dataportal/internal"
	"dataportal/internal/analysis"
	"dataportal/internal/chart"
	datasetloader "dataportal/internal/dataset"

	"github.com/spf13/cobra"
)

type loadOptions struct {
	maxRows int
	lenient bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts loadOptions

	rootCmd := &cobra.Command{
		Use:           "dataportal-cli",
		Short:         "Explore CSV and Excel files from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().IntVar(&opts.maxRows, "max-rows", excel.DefaultReaderConfig().MaxRows, "Refuse files with more data rows than this")
	rootCmd.PersistentFlags().BoolVar(&opts.lenient, "lenient", false, "Parse currency, percent and (123) negatives as numbers")

	rootCmd.AddCommand(
		newDescribeCmd(&opts),
		newCountCmd(&opts),
		newGroupCmd(&opts),
		newChartCmd(&opts),
	)
	return rootCmd
}

func newDescribeCmd(opts *loadOptions) *cobra.Command {
	var head, tail int

	cmd := &cobra.Command{
		Use:   "describe [file]",
		Short: "Print shape, summary statistics, head, tail and dtypes",
		Long: `Print the basic information of a dataset: its shape, the statistical
summary of its numeric columns (or a categorical summary when there are none),
the first and last rows, the column dtypes and the column names.

Example: dataportal-cli describe sales.csv --head 10 --tail 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTable(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			return runDescribe(cmd, t, head, tail)
		},
	}

	cmd.Flags().IntVar(&head, "head", 5, "Number of top rows to print")
	cmd.Flags().IntVar(&tail, "tail", 5, "Number of bottom rows to print")
	return cmd
}

func newCountCmd(opts *loadOptions) *cobra.Command {
	var column string
	var top int

	cmd := &cobra.Command{
		Use:   "count [file]",
		Short: "Count the values of a column",
		Long: `Count the distinct values of a column, most frequent first.

Example: dataportal-cli count sales.csv --column city --top 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTable(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			freq, err := analysis.Count(t, column, top)
			if err != nil {
				return err
			}
			result, err := freq.Table()
			if err != nil {
				return err
			}
			return printTable(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "Column to count")
	cmd.Flags().IntVar(&top, "top", 1, "Number of most frequent values to keep")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func groupFlags(cmd *cobra.Command, req *app.GroupRequest) {
	cmd.Flags().StringSliceVar(&req.Keys, "by", nil, "Columns to group by (comma separated)")
	cmd.Flags().StringVar(&req.Column, "column", "", "Numeric column to aggregate")
	cmd.Flags().StringVar(&req.Reducer, "op", string(analysis.ReducerSum), "Operation: sum|max|min|mean|median|count")
	_ = cmd.MarkFlagRequired("by")
	_ = cmd.MarkFlagRequired("column")
}

func newGroupCmd(opts *loadOptions) *cobra.Command {
	var req app.GroupRequest

	cmd := &cobra.Command{
		Use:   "group [file]",
		Short: "Aggregate a numeric column by one or more key columns",
		Long: `Group rows by the key columns and reduce a numeric column in each group.
The result column is named newcol.

Example: dataportal-cli group sales.csv --by city,product --column amount --op mean`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTable(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			agg, err := analysis.GroupAggregate(t, req.Keys, req.Column, req.Reducer)
			if err != nil {
				return err
			}
			result, err := agg.Table()
			if err != nil {
				return err
			}
			return printTable(cmd.OutOrStdout(), result)
		},
	}

	groupFlags(cmd, &req)
	return cmd
}

func newChartCmd(opts *loadOptions) *cobra.Command {
	var req app.GroupRequest
	var spec chart.Spec
	var kind string

	cmd := &cobra.Command{
		Use:   "chart [file]",
		Short: "Aggregate and print the plotly figure JSON of the result",
		Long: `Aggregate like the group command, then chart the aggregation table.
The figure is printed as plotly JSON, ready for Plotly.newPlot.

Example: dataportal-cli chart sales.csv --by city --column amount --op sum --kind bar --x city --y newcol`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTable(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			agg, err := analysis.GroupAggregate(t, req.Keys, req.Column, req.Reducer)
			if err != nil {
				return err
			}
			result, err := agg.Table()
			if err != nil {
				return err
			}

			spec.Kind = chart.Kind(strings.ToLower(kind))
			fig, err := chart.Build(result, spec)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), fig)
		},
	}

	groupFlags(cmd, &req)
	cmd.Flags().StringVar(&kind, "kind", string(chart.KindBar), "Chart kind: line|bar|scatter|pie|sunburst")
	cmd.Flags().StringVar(&spec.Mapping.X, "x", "", "X axis column")
	cmd.Flags().StringVar(&spec.Mapping.Y, "y", "", "Y axis column")
	cmd.Flags().StringVar(&spec.Mapping.Color, "color", "", "Column that splits traces by color")
	cmd.Flags().StringVar(&spec.Mapping.Facet, "facet", "", "Column that splits a bar chart into subplots")
	cmd.Flags().StringVar(&spec.Mapping.Size, "size", "", "Numeric column for scatter marker size")
	cmd.Flags().StringVar(&spec.Mapping.Names, "names", "", "Pie label column")
	cmd.Flags().StringVar(&spec.Mapping.Values, "values", "", "Pie or sunburst value column")
	cmd.Flags().StringSliceVar(&spec.Mapping.Path, "path", nil, "Sunburst path columns, outermost first")
	cmd.Flags().StringVar(&spec.Title, "title", "", "Figure title")
	cmd.Flags().StringVar(&spec.Template, "template", "", "Layout template: plotly|plotly_white")
	return cmd
}

func loadTable(ctx context.Context, opts *loadOptions, path string) (*dataset.Table, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	coercion := coercer.DefaultCoercionConfig()
	coercion.Lenient = opts.lenient
	logger := internal.NewLoggerTo(os.Stderr, internal.LogLevelWarn)
	loader := datasetloader.NewLoader(
		excel.NewDataReader(excel.ReaderConfig{MaxRows: opts.maxRows}, logger),
		coercer.NewTypeCoercer(coercion),
		logger,
	)

	t, _, err := loader.Load(ctx, path, f)
	return t, err
}
