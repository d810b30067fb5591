// Package postgres preserves replication status records in a relational
// table. The table and its indexes are owned by the tool and bootstrapped
// with idempotent DDL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/sanwatch/rdfmon/internal/collector"
)

const DefaultTable = "rdf_status"

// statusColumnsDDL matches collector.RecordFields column for column.
const statusColumnsDDL = `
	collection_time TIMESTAMP NOT NULL,
	symmetrix_id VARCHAR(32) NOT NULL,
	storage_group VARCHAR(255) NOT NULL,
	rdf_group_number INTEGER,
	rdf_state VARCHAR(64),
	rdf_mode VARCHAR(64),
	rdf_status VARCHAR(64),
	volume_config VARCHAR(128),
	ra_group VARCHAR(64),
	ra_capacity FLOAT,
	consistency_state VARCHAR(64),
	last_sync_time TIMESTAMP,
	is_protected BOOLEAN,
	is_consistent BOOLEAN
`

// indexColumns are the timestamp and identifier columns the status table is
// queried by.
var indexColumns = []string{
	"collection_time",
	"symmetrix_id",
	"storage_group",
}

// CreateTableDDL returns the idempotent bootstrap statement for the status
// table.
func CreateTableDDL(table string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, statusColumnsDDL)
}

// CreateIndexDDLs returns the idempotent index statements for the status
// table, named idx_<table>_<column>.
func CreateIndexDDLs(table string) []string {
	ddls := make([]string, len(indexColumns))
	for i, column := range indexColumns {
		ddls[i] = fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)",
			table, column, table, column,
		)
	}
	return ddls
}

func insertSQL(table string) string {
	placeholders := make([]string, len(collector.RecordFields))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(collector.RecordFields, ", "),
		strings.Join(placeholders, ", "),
	)
}

type Option func(*Preserver)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Preserver) {
		p.logger = logger
	}
}

func WithTable(table string) Option {
	return func(p *Preserver) {
		p.table = table
	}
}

type Preserver struct {
	logger  *zap.Logger
	connStr string
	table   string
	conn    *pgx.Conn
	insert  string
}

func New(connStr string, opts ...Option) (*Preserver, error) {
	p := &Preserver{
		logger:  zap.NewNop(),
		connStr: connStr,
		table:   DefaultTable,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.connStr == "" {
		return nil, fmt.Errorf("postgres: connection string is required")
	}
	p.insert = insertSQL(p.table)

	return p, nil
}

func (p *Preserver) Connect(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, p.connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return fmt.Errorf("failed to ping postgres: %w", err)
	}
	p.conn = conn
	return nil
}

// InitSchema creates the status table and its indexes if they do not exist.
// Safe to call on every startup.
func (p *Preserver) InitSchema(ctx context.Context) error {
	if p.conn == nil {
		return fmt.Errorf("postgres: not connected")
	}

	if _, err := p.conn.Exec(ctx, CreateTableDDL(p.table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", p.table, err)
	}
	for _, ddl := range CreateIndexDDLs(p.table) {
		if _, err := p.conn.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	p.logger.Info("status table initialized", zap.String("table", p.table))
	return nil
}

// Preserve inserts one row per record. Every insert commits on its own, so a
// failed record costs only that record and a crash mid-run keeps everything
// already written.
func (p *Preserver) Preserve(ctx context.Context, run *collector.Run) error {
	if p.conn == nil {
		return fmt.Errorf("postgres: not connected")
	}

	var inserted int
	var errs []error
	for _, record := range run.Records() {
		row, err := record.Row()
		if err != nil {
			p.logger.Warn("skipping unconvertible record",
				zap.String("run_id", run.ID),
				zap.String("storage_group", record.StorageGroup),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}

		if _, err := p.conn.Exec(ctx, p.insert, row.Values()...); err != nil {
			p.logger.Warn("insert failed",
				zap.String("run_id", run.ID),
				zap.String("storage_group", record.StorageGroup),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("insert %s: %w", record.StorageGroup, err))
			continue
		}
		inserted++
	}

	p.logger.Info("preserved run to postgres",
		zap.String("run_id", run.ID),
		zap.String("table", p.table),
		zap.Int("inserted", inserted),
		zap.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}

func (p *Preserver) Close(ctx context.Context) error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close(ctx)
}
