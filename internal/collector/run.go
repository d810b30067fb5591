package collector

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sanwatch/rdfmon/internal"
	"github.com/sanwatch/rdfmon/internal/catalog"
	"github.com/sanwatch/rdfmon/pkg/unisphere"
)

// TimestampLayout tags report artifacts, e.g. rdf_summary_1_20240301_143045.csv.
const TimestampLayout = "20060102_150405"

// RecordFields is the flattened record layout, one column per field. The
// relational and parquet sinks depend on this order.
var RecordFields = []string{
	"collection_time",
	"symmetrix_id",
	"storage_group",
	"rdf_group_number",
	"rdf_state",
	"rdf_mode",
	"rdf_status",
	"volume_config",
	"ra_group",
	"ra_capacity",
	"consistency_state",
	"last_sync_time",
	"is_protected",
	"is_consistent",
}

// TargetResult is the raw outcome of polling one storage group. Exactly one
// of Raw and Err is set. Results are aligned with the batch's input order.
type TargetResult struct {
	StorageGroup string
	Raw          json.RawMessage
	Err          error
}

// Record is one row of replication status: a single RDF pairing of a storage
// group at one collection time. Records are written once and never mutated.
type Record struct {
	CollectionTime time.Time
	SymmetrixID    string
	StorageGroup   string
	unisphere.RDFGroupInfo
}

// Row flattens the record into the RecordFields layout. The last sync time
// is parsed here so sinks receive a real timestamp (nil when never synced).
func (r Record) Row() (*internal.Record, error) {
	lastSync, err := r.SyncTime()
	if err != nil {
		return nil, fmt.Errorf("storage group %s: %w", r.StorageGroup, err)
	}

	return internal.NewRecord(RecordFields, []any{
		r.CollectionTime,
		r.SymmetrixID,
		r.StorageGroup,
		r.RDFGroupNumber,
		r.State,
		r.Mode,
		r.Status,
		r.VolumeConfig,
		r.RAGroup,
		r.RACapacity,
		r.ConsistencyState,
		lastSync,
		r.Protected,
		r.Consistent,
	}), nil
}

// Batch is the outcome of one batch of the pass: raw per-target results plus
// the records extracted from them.
type Batch struct {
	RunID       string
	Number      int // 1-based
	Total       int
	CollectedAt time.Time
	Results     []TargetResult
	Records     []Record
}

// Timestamp renders CollectedAt in the artifact naming layout.
func (b *Batch) Timestamp() string {
	return b.CollectedAt.Format(TimestampLayout)
}

// NumFailures counts targets that did not answer.
func (b *Batch) NumFailures() int {
	n := 0
	for _, result := range b.Results {
		if result.Err != nil {
			n++
		}
	}
	return n
}

// Run is one complete collection pass.
type Run struct {
	ID            string
	Name          string
	SymmetrixID   string
	StartTime     time.Time
	EndTime       time.Time
	StorageGroups []string
	Batches       []*Batch
	Completed     bool
}

// Records returns every record of the pass, in batch order.
func (r *Run) Records() []Record {
	var records []Record
	for _, batch := range r.Batches {
		records = append(records, batch.Records...)
	}
	return records
}

// NumFailures counts targets that did not answer across all batches.
func (r *Run) NumFailures() int {
	n := 0
	for _, batch := range r.Batches {
		n += batch.NumFailures()
	}
	return n
}

// Catalog summarizes the run for auditing and the admin API.
func (r *Run) Catalog() *catalog.Catalog {
	c := &catalog.Catalog{
		RunID:            r.ID,
		Name:             r.Name,
		SymmetrixID:      r.SymmetrixID,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		NumStorageGroups: len(r.StorageGroups),
		NumBatches:       len(r.Batches),
		Completed:        r.Completed,
	}
	for _, batch := range r.Batches {
		c.NumRecords += len(batch.Records)
		c.NumFailures += batch.NumFailures()
		c.Batches = append(c.Batches, catalog.Batch{
			Number:      batch.Number,
			NumTargets:  len(batch.Results),
			NumRecords:  len(batch.Records),
			NumFailures: batch.NumFailures(),
			CollectedAt: batch.CollectedAt,
		})
	}
	return c
}
