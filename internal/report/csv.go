// Package report renders completed batches into the file artifacts operators
// consume: a CSV summary and a raw JSON dump per batch, plus the console
// views of array status.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/sanwatch/rdfmon/internal"
	"github.com/sanwatch/rdfmon/internal/collector"
)

// CSVHeader is the fixed column set of the batch summary file.
var CSVHeader = []string{"Storage Group", "RDFG Number", "State", "Mode", "Status"}

type CSVOption func(*CSV)

func WithCSVLogger(logger *zap.Logger) CSVOption {
	return func(c *CSV) {
		c.logger = logger
	}
}

// CSV writes one summary file per batch: one row per RDF pairing of every
// storage group that answered. Failed targets carry no rows; they appear in
// the JSON report instead.
type CSV struct {
	logger     *zap.Logger
	repository internal.Repository
}

func NewCSV(repository internal.Repository, opts ...CSVOption) *CSV {
	c := &CSV{
		repository: repository,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CSV) Report(ctx context.Context, batch *collector.Batch) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return err
	}
	for _, record := range batch.Records {
		row := []string{
			record.StorageGroup,
			strconv.Itoa(record.RDFGroupNumber),
			record.State,
			record.Mode,
			record.Status,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	key := fmt.Sprintf("rdf_summary_%d_%s.csv", batch.Number, batch.Timestamp())
	c.logger.Debug("writing batch summary",
		zap.String("key", key),
		zap.Int("rows", len(batch.Records)),
	)
	return c.repository.Write(ctx, key, &buf)
}
