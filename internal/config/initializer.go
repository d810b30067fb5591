package config

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/sanwatch/rdfmon/internal"
	"github.com/sanwatch/rdfmon/internal/collector"
	"github.com/sanwatch/rdfmon/internal/integrations/kafka"
	"github.com/sanwatch/rdfmon/internal/integrations/mongo"
	"github.com/sanwatch/rdfmon/internal/integrations/postgres"
	"github.com/sanwatch/rdfmon/internal/local"
	"github.com/sanwatch/rdfmon/internal/parquet"
	"github.com/sanwatch/rdfmon/internal/preserver"
	"github.com/sanwatch/rdfmon/internal/report"
	"github.com/sanwatch/rdfmon/internal/s3"
	"github.com/sanwatch/rdfmon/pkg/unisphere"
)

// InitializeClient builds the Unisphere client from its config block.
func InitializeClient(rdfmon *RDFMon, logger *zap.Logger) (*unisphere.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	u := rdfmon.Collector.Unisphere
	return unisphere.New(unisphere.Config{
		Endpoint:           u.Endpoint,
		Username:           u.Username,
		Password:           u.Password,
		Version:            u.Version,
		InsecureSkipVerify: u.InsecureSkipVerify,
		Timeout:            time.Duration(u.Timeout) * time.Second,
	}, unisphere.WithLogger(logger))
}

// InitializeCollector wires a collector from its config: Unisphere client,
// artifact repository, reporters and preservers. Preservers that hold
// connections are connected (and the postgres schema bootstrapped) before
// the collector is returned.
func InitializeCollector(ctx context.Context, rdfmon *RDFMon, logger *zap.Logger) (*collector.Collector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := rdfmon.Collector

	client, err := InitializeClient(rdfmon, logger)
	if err != nil {
		return nil, err
	}

	var repository internal.Repository
	if needsRepository(c) {
		repository, err = initializeRepository(c, logger)
		if err != nil {
			return nil, err
		}
	}

	var reporters []collector.Reporter
	if c.Reports.CSV {
		reporters = append(reporters, report.NewCSV(repository, report.WithCSVLogger(logger)))
	}
	if c.Reports.JSON {
		reporters = append(reporters, report.NewJSON(repository, report.WithJSONLogger(logger)))
	}

	preservers, err := initializePreservers(ctx, c, repository, logger)
	if err != nil {
		return nil, err
	}

	opts := []collector.Option{
		collector.WithLogger(logger),
		collector.WithSource(client),
		collector.WithName(c.Name),
		collector.WithSymmetrixID(c.Unisphere.ArrayID),
		collector.WithSchedule(collector.Schedule{
			BatchSize:  c.Schedule.BatchSize,
			MaxWorkers: c.Schedule.MaxWorkers,
			BatchDelay: time.Duration(c.Schedule.BatchDelay) * time.Second,
			Interval:   time.Duration(c.Schedule.Interval) * time.Second,
		}),
		collector.WithReporters(reporters...),
		collector.WithPreservers(preservers...),
	}
	if c.Reports.Catalog {
		opts = append(opts, collector.WithCatalogRepository(repository))
	}

	return collector.New(opts...)
}

// needsRepository reports whether any configured output lands in the
// artifact repository.
func needsRepository(c Collector) bool {
	if c.Reports.CSV || c.Reports.JSON || c.Reports.Catalog {
		return true
	}
	for _, p := range c.Preservers {
		if p.Type == "parquet" {
			return true
		}
	}
	return false
}

func initializeRepository(c Collector, logger *zap.Logger) (internal.Repository, error) {
	switch c.Repository.Type {
	case "local":
		return local.New(
			c.Repository.Local.Path,
			local.WithLogger(logger),
		), nil
	case "s3":
		return s3.New(
			s3.WithLogger(logger),
			s3.WithRegion(c.Repository.S3.Region),
			s3.WithBucket(c.Repository.S3.Bucket),
			s3.WithEndpoint(c.Repository.S3.Endpoint),
			s3.WithPrefix(c.Repository.S3.Prefix),
			s3.WithForcePathStyle(c.Repository.S3.ForcePathStyle),
		), nil
	default:
		return nil, fmt.Errorf("unknown repository type: %q", c.Repository.Type)
	}
}

func initializePreservers(ctx context.Context, c Collector, repository internal.Repository, logger *zap.Logger) ([]collector.Preserver, error) {
	var preservers []collector.Preserver
	for _, p := range c.Preservers {
		switch p.Type {
		case "postgres":
			opts := []postgres.Option{postgres.WithLogger(logger)}
			if p.Table != "" {
				opts = append(opts, postgres.WithTable(p.Table))
			}
			pg, err := postgres.New(p.ConnectionString, opts...)
			if err != nil {
				return nil, err
			}
			if err := pg.Connect(ctx); err != nil {
				return nil, err
			}
			if err := pg.InitSchema(ctx); err != nil {
				return nil, err
			}
			preservers = append(preservers, pg)
		case "mongo":
			opts := []mongo.Option{mongo.WithLogger(logger)}
			if p.Database != "" {
				opts = append(opts, mongo.WithDatabase(p.Database))
			}
			if p.Collection != "" {
				opts = append(opts, mongo.WithCollection(p.Collection))
			}
			m, err := mongo.New(p.URI, opts...)
			if err != nil {
				return nil, err
			}
			if err := m.Connect(ctx); err != nil {
				return nil, err
			}
			preservers = append(preservers, m)
		case "kafka":
			u, err := url.Parse(p.URI)
			if err != nil {
				return nil, fmt.Errorf("kafka preserver: %w", err)
			}
			k, err := kafka.New(u, kafka.WithLogger(logger))
			if err != nil {
				return nil, err
			}
			if err := k.Connect(ctx); err != nil {
				return nil, err
			}
			preservers = append(preservers, k)
		case "parquet":
			opts := []parquet.Option{
				parquet.WithLogger(logger),
				parquet.WithRepository(repository),
			}
			if len(p.Schema) > 0 {
				opts = append(opts, parquet.WithSchema(ParquetFields(p.Schema)))
			}
			if p.BatchSize > 0 {
				opts = append(opts, parquet.WithBatchSizeNumRecords(p.BatchSize))
			}
			pq, err := parquet.New(opts...)
			if err != nil {
				return nil, err
			}
			preservers = append(preservers, pq)
		case "stdout":
			preservers = append(preservers, preserver.NewStdout())
		default:
			return nil, fmt.Errorf("unknown preserver type: %q", p.Type)
		}
	}
	return preservers, nil
}
