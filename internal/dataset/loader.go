// Package dataset turns uploaded files into typed tables.
//
// A file is read once into raw cell text by the excel adapter, then every
// column is coerced to its inferred kind. The resulting Table is immutable;
// all later analysis works from it without re-reading the file.
package dataset

import (
	"context"
	"fmt"
	"io"
	"time"

	"dataportal/adapters/datareadiness/coercer"
	"dataportal/adapters/excel"
	"dataportal/domain/core"
	"dataportal/domain/dataset"
	"dataportal/internal"

	"golang.org/x/sync/errgroup"
)

// maxColumnWorkers bounds how many columns are coerced at once for one file
const maxColumnWorkers = 8

// Loader reads upload bytes into a typed table
type Loader struct {
	reader  *excel.DataReader
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewLoader creates a loader from a reader and a coercer
func NewLoader(reader *excel.DataReader, typeCoercer *coercer.TypeCoercer, logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Loader{reader: reader, coercer: typeCoercer, logger: logger}
}

// Load reads filename from src and infers column types
func (l *Loader) Load(ctx context.Context, filename string, src io.Reader) (*dataset.Table, dataset.Format, error) {
	start := time.Now()
	raw, err := l.reader.Read(filename, src)
	if err != nil {
		return nil, "", err
	}

	table, err := l.FromRaw(ctx, raw)
	if err != nil {
		return nil, "", err
	}

	rows, cols := table.Shape()
	l.logger.Info("[DatasetLoader] Loaded %s: %d rows, %d columns in %s", filename, rows, cols, internal.Since(start))
	return table, raw.Format, nil
}

// FromRaw coerces raw rows into a table. Columns are independent, so they
// are inferred concurrently.
func (l *Loader) FromRaw(ctx context.Context, raw *excel.RawData) (*dataset.Table, error) {
	if len(raw.Headers) == 0 {
		return nil, core.ErrEmptyTable
	}

	columns := make([]*dataset.Column, len(raw.Headers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxColumnWorkers)
	for i, name := range raw.Headers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			columns[i] = l.coercer.InferColumn(name, raw.Column(i))
			l.logger.Trace("[DatasetLoader] column %q inferred as %s", name, columns[i].DType())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load cancelled: %w", err)
	}

	return dataset.NewTable(columns)
}
