// Package parquet preserves collection runs as parquet artifacts written
// through a repository.
package parquet

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"

	"github.com/sanwatch/rdfmon/internal"
	"github.com/sanwatch/rdfmon/internal/collector"
)

const DefaultBatchSizeNumRecords = 10000

type Option func(*Preserver)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Preserver) {
		p.logger = logger
	}
}

func WithSchema(schema Schema) Option {
	return func(p *Preserver) {
		p.schema = schema
	}
}

func WithRepository(repository internal.Repository) Option {
	return func(p *Preserver) {
		p.repository = repository
	}
}

// WithBatchSizeNumRecords caps how many records land in a single parquet
// artifact; a run with more records is split into numbered parts.
func WithBatchSizeNumRecords(n int) Option {
	return func(p *Preserver) {
		p.batchSize = n
	}
}

type Preserver struct {
	logger     *zap.Logger
	schema     Schema
	repository internal.Repository
	batchSize  int
}

func New(opts ...Option) (*Preserver, error) {
	p := &Preserver{
		logger:    zap.NewNop(),
		batchSize: DefaultBatchSizeNumRecords,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.repository == nil {
		return nil, fmt.Errorf("parquet: repository is required")
	}
	if len(p.schema) == 0 {
		p.schema = StatusSchema()
	}
	if p.batchSize <= 0 {
		p.batchSize = DefaultBatchSizeNumRecords
	}

	return p, nil
}

// Preserve writes the run's records as one or more parquet artifacts named
// rdf_status_<ts>_<part>.parquet.
func (p *Preserver) Preserve(ctx context.Context, run *collector.Run) error {
	records := run.Records()
	if len(records) == 0 {
		p.logger.Info("no records to preserve",
			zap.String("run_id", run.ID),
		)
		return nil
	}

	part := 0
	for start := 0; start < len(records); start += p.batchSize {
		end := start + p.batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := p.writePart(ctx, run, records[start:end], part); err != nil {
			return fmt.Errorf("parquet part %d: %w", part, err)
		}
		part++
	}

	p.logger.Info("preserved run to parquet",
		zap.String("run_id", run.ID),
		zap.Int("records", len(records)),
		zap.Int("parts", part),
	)
	return nil
}

func (p *Preserver) Close(ctx context.Context) error {
	return nil
}

func (p *Preserver) writePart(ctx context.Context, run *collector.Run, records []collector.Record, part int) error {
	fw := buffer.NewBufferFile()
	pw, err := writer.NewCSVWriter(p.schema.ToGoParquetSchema(), fw, 4)
	if err != nil {
		return err
	}

	for _, record := range records {
		row, err := record.Row()
		if err != nil {
			return err
		}
		values, err := p.schema.RecordToParquetRow(row)
		if err != nil {
			return err
		}
		if err := pw.Write(values); err != nil {
			return err
		}
	}

	if err := pw.WriteStop(); err != nil {
		return err
	}
	if err := fw.Close(); err != nil {
		return err
	}

	key := fmt.Sprintf("rdf_status_%s_%04d.parquet",
		run.StartTime.Format(collector.TimestampLayout),
		part,
	)
	return p.repository.Write(ctx, key, bytes.NewReader(fw.Bytes()))
}
