package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanwatch/rdfmon/internal"
	"github.com/sanwatch/rdfmon/internal/catalog"
	"github.com/sanwatch/rdfmon/pkg/unisphere"
)

// Source is the slice of the Unisphere API the collector consumes.
type Source interface {
	RDFStorageGroupNames(ctx context.Context, symmetrixID string) ([]string, error)
	StorageGroupRDF(ctx context.Context, symmetrixID, storageGroup string) (json.RawMessage, error)
}

// Reporter renders one completed batch into a durable artifact.
type Reporter interface {
	Report(ctx context.Context, batch *Batch) error
}

// Preserver durably stores the records of one collection pass.
type Preserver interface {
	Preserve(ctx context.Context, run *Run) error
	Close(ctx context.Context) error
}

// recentRunLimit bounds how many run catalogs are kept for the admin API.
const recentRunLimit = 32

type Option func(*Collector)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

func WithSource(source Source) Option {
	return func(c *Collector) {
		c.source = source
	}
}

func WithSymmetrixID(id string) Option {
	return func(c *Collector) {
		c.symmetrixID = id
	}
}

func WithName(name string) Option {
	return func(c *Collector) {
		c.name = name
	}
}

func WithSchedule(schedule Schedule) Option {
	return func(c *Collector) {
		c.schedule = schedule
	}
}

func WithReporters(reporters ...Reporter) Option {
	return func(c *Collector) {
		c.reporters = append(c.reporters, reporters...)
	}
}

func WithPreservers(preservers ...Preserver) Option {
	return func(c *Collector) {
		c.preservers = append(c.preservers, preservers...)
	}
}

// WithCatalogRepository enables writing a run catalog after every pass.
func WithCatalogRepository(repository internal.Repository) Option {
	return func(c *Collector) {
		c.catalogRepo = repository
	}
}

// Collector drives periodic collection of replication status from a single
// array: inventory, batched parallel fetch, reporting and preservation.
type Collector struct {
	logger      *zap.Logger
	source      Source
	name        string
	symmetrixID string
	schedule    Schedule
	reporters   []Reporter
	preservers  []Preserver
	catalogRepo internal.Repository

	stats statsTracker
}

func New(opts ...Option) (*Collector, error) {
	c := &Collector{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.source == nil {
		return nil, fmt.Errorf("collector: source is required")
	}
	if c.symmetrixID == "" {
		return nil, fmt.Errorf("collector: symmetrix id is required")
	}
	if c.name == "" {
		c.name = c.symmetrixID
	}
	c.schedule = c.schedule.withDefaults()

	return c, nil
}

// Name identifies the collector in logs and the admin API.
func (c *Collector) Name() string {
	return c.name
}

// SymmetrixID is the array this collector polls.
func (c *Collector) SymmetrixID() string {
	return c.symmetrixID
}

// Inventory lists the replicated storage groups to poll. It is fetched once
// at startup; an inventory failure is fatal since there is nothing to poll.
func (c *Collector) Inventory(ctx context.Context) ([]string, error) {
	names, err := c.source.RDFStorageGroupNames(ctx, c.symmetrixID)
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Collect performs one full polling pass over storageGroups: partition into
// batches, fetch each batch with bounded concurrency, report every batch and
// hand the completed run to each preserver. A failing target never aborts
// the pass; a failing reporter does, since its artifact would be lost.
func (c *Collector) Collect(ctx context.Context, storageGroups []string) (*Run, error) {
	run := &Run{
		ID:            uuid.Must(uuid.NewUUID()).String(),
		Name:          c.name,
		SymmetrixID:   c.symmetrixID,
		StartTime:     time.Now().UTC(),
		StorageGroups: storageGroups,
	}

	batches := Partition(storageGroups, c.schedule.BatchSize)
	c.logger.Info("starting collection pass",
		zap.String("run_id", run.ID),
		zap.String("symmetrix_id", c.symmetrixID),
		zap.Int("storage_groups", len(storageGroups)),
		zap.Int("batches", len(batches)),
	)

	for i, targets := range batches {
		if err := ctx.Err(); err != nil {
			return run, err
		}

		c.logger.Info("processing batch",
			zap.String("run_id", run.ID),
			zap.Int("batch", i+1),
			zap.Int("total", len(batches)),
			zap.Int("size", len(targets)),
		)

		batch := &Batch{
			RunID:       run.ID,
			Number:      i + 1,
			Total:       len(batches),
			CollectedAt: time.Now().UTC(),
		}
		batch.Results = c.fetchBatch(ctx, targets)
		batch.Records = c.extractRecords(run, batch)
		run.Batches = append(run.Batches, batch)

		for _, reporter := range c.reporters {
			if err := reporter.Report(ctx, batch); err != nil {
				return run, fmt.Errorf("report batch %d: %w", batch.Number, err)
			}
		}

		c.logger.Info("batch complete",
			zap.String("run_id", run.ID),
			zap.Int("batch", batch.Number),
			zap.Int("records", len(batch.Records)),
			zap.Int("failures", batch.NumFailures()),
		)

		// The delay paces the array's management interface. Skip it after
		// the final batch.
		if i < len(batches)-1 && c.schedule.BatchDelay > 0 {
			timer := time.NewTimer(c.schedule.BatchDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return run, ctx.Err()
			case <-timer.C:
			}
		}
	}

	run.EndTime = time.Now().UTC()
	run.Completed = true

	var errs []error
	for _, preserver := range c.preservers {
		if err := preserver.Preserve(ctx, run); err != nil {
			// One sink failing must not starve the others.
			c.logger.Error("preserve failed",
				zap.String("run_id", run.ID),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}

	if c.catalogRepo != nil {
		if err := c.writeCatalog(ctx, run); err != nil {
			c.logger.Error("catalog write failed",
				zap.String("run_id", run.ID),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	c.stats.recordRun(run, err)

	return run, err
}

// Close releases every preserver.
func (c *Collector) Close(ctx context.Context) error {
	var errs []error
	for _, preserver := range c.preservers {
		if err := preserver.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stats returns a copy of the collector's counters.
func (c *Collector) Stats() Stats {
	return c.stats.snapshot()
}

// RecentRuns returns catalogs of the most recent passes, newest first.
func (c *Collector) RecentRuns() []*catalog.Catalog {
	return c.stats.recentRuns()
}

func (c *Collector) writeCatalog(ctx context.Context, run *Run) error {
	bs, err := json.MarshalIndent(run.Catalog(), "", "  ")
	if err != nil {
		return err
	}
	key := fmt.Sprintf("catalog_%s.json", run.StartTime.Format(TimestampLayout))
	return c.catalogRepo.Write(ctx, key, bytes.NewReader(bs))
}

// extractRecords flattens the batch's raw results into one record per RDF
// pairing. Failed targets and responses without rdfGroupInfo are logged and
// skipped; they still appear in the batch's raw results.
func (c *Collector) extractRecords(run *Run, batch *Batch) []Record {
	var records []Record
	for _, result := range batch.Results {
		if result.Err != nil {
			c.logger.Warn("storage group collection failed",
				zap.String("run_id", run.ID),
				zap.String("storage_group", result.StorageGroup),
				zap.Error(result.Err),
			)
			continue
		}

		var info unisphere.RDFInfo
		if err := json.Unmarshal(result.Raw, &info); err != nil {
			c.logger.Warn("undecodable rdf document",
				zap.String("run_id", run.ID),
				zap.String("storage_group", result.StorageGroup),
				zap.Error(err),
			)
			continue
		}

		if len(info.RDFGroupInfo) == 0 {
			c.logger.Warn("no rdfGroupInfo in response",
				zap.String("run_id", run.ID),
				zap.String("storage_group", result.StorageGroup),
			)
			continue
		}

		for _, pairing := range info.RDFGroupInfo {
			records = append(records, Record{
				CollectionTime: run.StartTime,
				SymmetrixID:    run.SymmetrixID,
				StorageGroup:   result.StorageGroup,
				RDFGroupInfo:   pairing,
			})
		}
	}
	return records
}
