package internal

import (
	"context"
	"io"
)

// Repository is write-only durable storage for collection artifacts (batch
// reports, run catalogs, parquet files). Keys are slash-separated relative
// paths; the repository decides where they land.
type Repository interface {
	Write(ctx context.Context, key string, reader io.Reader) error
}
