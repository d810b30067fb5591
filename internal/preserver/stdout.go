// Package preserver holds sinks with no external system behind them.
package preserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sanwatch/rdfmon/internal/collector"
)

// Stdout prints one JSON line per record. Useful for piping a run into jq or
// a log shipper without standing up a real sink.
type Stdout struct {
	w io.Writer
}

func NewStdout() *Stdout {
	return &Stdout{w: os.Stdout}
}

// NewStdoutWriter redirects output, primarily for tests.
func NewStdoutWriter(w io.Writer) *Stdout {
	return &Stdout{w: w}
}

func (s *Stdout) Preserve(ctx context.Context, run *collector.Run) error {
	enc := json.NewEncoder(s.w)
	for _, record := range run.Records() {
		row, err := record.Row()
		if err != nil {
			return err
		}

		payload := row.Map()
		payload["run_id"] = run.ID
		if err := enc.Encode(payload); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	}
	return nil
}

func (s *Stdout) Close(ctx context.Context) error {
	return nil
}
