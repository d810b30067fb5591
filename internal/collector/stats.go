package collector

import (
	"sync"
	"time"

	"github.com/sanwatch/rdfmon/internal/catalog"
)

// Stats are the collector's lifetime counters, exposed by the admin API.
type Stats struct {
	Passes          int64     `json:"passes"`
	TotalTargets    int64     `json:"total_targets"`
	TotalRecords    int64     `json:"total_records"`
	TotalFailures   int64     `json:"total_failures"`
	LastPassAt      time.Time `json:"last_pass_at,omitempty"`
	LastPassSeconds float64   `json:"last_pass_seconds"`
	LastError       string    `json:"last_error,omitempty"`
}

type statsTracker struct {
	mu    sync.RWMutex
	stats Stats
	runs  []*catalog.Catalog
}

func (t *statsTracker) recordRun(run *Run, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Passes++
	t.stats.TotalTargets += int64(len(run.StorageGroups))
	t.stats.TotalRecords += int64(len(run.Records()))
	t.stats.TotalFailures += int64(run.NumFailures())
	t.stats.LastPassAt = run.StartTime
	t.stats.LastPassSeconds = run.EndTime.Sub(run.StartTime).Seconds()
	if err != nil {
		t.stats.LastError = err.Error()
	} else {
		t.stats.LastError = ""
	}

	t.runs = append([]*catalog.Catalog{run.Catalog()}, t.runs...)
	if len(t.runs) > recentRunLimit {
		t.runs = t.runs[:recentRunLimit]
	}
}

func (t *statsTracker) snapshot() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

func (t *statsTracker) recentRuns() []*catalog.Catalog {
	t.mu.RLock()
	defer t.mu.RUnlock()

	runs := make([]*catalog.Catalog, len(t.runs))
	copy(runs, t.runs)
	return runs
}
