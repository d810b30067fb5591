package catalog

import "time"

/*
The catalog is a record of what a collection pass produced.
The catalog is a primitive for verifying, inventorying and auditing
collection runs.
*/

// Catalog summarizes one collection pass.
type Catalog struct {
	RunID            string    `json:"run_id"`
	Name             string    `json:"name"`
	SymmetrixID      string    `json:"symmetrix_id"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	NumStorageGroups int       `json:"num_storage_groups"`
	NumBatches       int       `json:"num_batches"`
	NumRecords       int       `json:"num_records"`
	NumFailures      int       `json:"num_failures"`
	Completed        bool      `json:"completed"`
	Batches          []Batch   `json:"batches,omitempty"`
}

// Batch summarizes one batch of a pass.
type Batch struct {
	Number      int       `json:"number"`
	NumTargets  int       `json:"num_targets"`
	NumRecords  int       `json:"num_records"`
	NumFailures int       `json:"num_failures"`
	CollectedAt time.Time `json:"collected_at"`
}
