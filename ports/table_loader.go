package ports

import (
	"context"
	"io"

	"dataportal/domain/dataset"
)

// TableLoader reads an uploaded file into a typed table
type TableLoader interface {
	Load(ctx context.Context, filename string, src io.Reader) (*dataset.Table, dataset.Format, error)
}
