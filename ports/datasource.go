package ports

import (
	"context"

	"autotable/domain/dataset"
)

// DataSource loads a tabular dataset. ref is source specific: a file path
// for the file reader, a SQL query for the database source.
type DataSource interface {
	Load(ctx context.Context, ref string) (*dataset.Frame, error)
}
