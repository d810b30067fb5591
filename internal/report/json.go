package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanwatch/rdfmon/internal"
	"github.com/sanwatch/rdfmon/internal/collector"
	"github.com/sanwatch/rdfmon/pkg/unisphere"
)

type JSONOption func(*JSON)

func WithJSONLogger(logger *zap.Logger) JSONOption {
	return func(j *JSON) {
		j.logger = logger
	}
}

// JSON writes one detail file per batch: an array of single-key objects
// mapping each storage group, in input order, to either the verbatim array
// response or an error string.
type JSON struct {
	logger     *zap.Logger
	repository internal.Repository
}

func NewJSON(repository internal.Repository, opts ...JSONOption) *JSON {
	j := &JSON{
		repository: repository,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *JSON) Report(ctx context.Context, batch *collector.Batch) error {
	entries := make([]map[string]any, 0, len(batch.Results))
	for _, result := range batch.Results {
		if result.Err != nil {
			entries = append(entries, map[string]any{
				result.StorageGroup: errorString(result.Err),
			})
			continue
		}
		entries = append(entries, map[string]any{
			result.StorageGroup: result.Raw,
		})
	}

	bs, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	key := fmt.Sprintf("rdf_batch_%d_%s.json", batch.Number, batch.Timestamp())
	j.logger.Debug("writing batch detail",
		zap.String("key", key),
		zap.Int("targets", len(batch.Results)),
	)
	return j.repository.Write(ctx, key, bytes.NewReader(bs))
}

// errorString keeps the historical report vocabulary: HTTP failures carry
// the status code, everything else the underlying cause.
func errorString(err error) string {
	var apiErr *unisphere.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("Error: %d", apiErr.StatusCode)
	}
	return fmt.Sprintf("Exception: %v", err)
}
