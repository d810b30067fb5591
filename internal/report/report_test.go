package report

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanwatch/rdfmon/internal/collector"
	"github.com/sanwatch/rdfmon/internal/local"
	"github.com/sanwatch/rdfmon/pkg/unisphere"
)

func testBatch() *collector.Batch {
	collectedAt := time.Date(2024, 3, 1, 14, 30, 45, 0, time.UTC)
	return &collector.Batch{
		RunID:       "run-1",
		Number:      1,
		Total:       2,
		CollectedAt: collectedAt,
		Results: []collector.TargetResult{
			{
				StorageGroup: "SG_PROD_01",
				Raw:          json.RawMessage(`{"storageGroupName": "SG_PROD_01", "rdfGroupInfo": [{"rdfgNumber": 12, "state": "Synchronized", "mode": "Synchronous", "status": "Online"}]}`),
			},
			{
				StorageGroup: "SG_PROD_02",
				Err:          &unisphere.APIError{StatusCode: http.StatusInternalServerError, Endpoint: "/x"},
			},
			{
				StorageGroup: "SG_PROD_03",
				Raw:          json.RawMessage(`{"storageGroupName": "SG_PROD_03", "rdfGroupInfo": [{"rdfgNumber": 14, "state": "Suspended", "mode": "Asynchronous", "status": "Offline"}]}`),
			},
		},
		Records: []collector.Record{
			{
				CollectionTime: collectedAt,
				SymmetrixID:    "000197900111",
				StorageGroup:   "SG_PROD_01",
				RDFGroupInfo: unisphere.RDFGroupInfo{
					RDFGroupNumber: 12,
					State:          "Synchronized",
					Mode:           "Synchronous",
					Status:         "Online",
				},
			},
			{
				CollectionTime: collectedAt,
				SymmetrixID:    "000197900111",
				StorageGroup:   "SG_PROD_03",
				RDFGroupInfo: unisphere.RDFGroupInfo{
					RDFGroupNumber: 14,
					State:          "Suspended",
					Mode:           "Asynchronous",
					Status:         "Offline",
				},
			},
		},
	}
}

func TestCSVReport(t *testing.T) {
	dir := t.TempDir()
	reporter := NewCSV(local.New(dir))

	require.NoError(t, reporter.Report(context.Background(), testBatch()))

	bs, err := os.ReadFile(filepath.Join(dir, "rdf_summary_1_20240301_143045.csv"))
	require.NoError(t, err)

	expected := "Storage Group,RDFG Number,State,Mode,Status\n" +
		"SG_PROD_01,12,Synchronized,Synchronous,Online\n" +
		"SG_PROD_03,14,Suspended,Asynchronous,Offline\n"
	assert.Equal(t, expected, string(bs))
}

func TestCSVReportEmptyBatch(t *testing.T) {
	dir := t.TempDir()
	reporter := NewCSV(local.New(dir))

	batch := testBatch()
	batch.Records = nil

	require.NoError(t, reporter.Report(context.Background(), batch))

	bs, err := os.ReadFile(filepath.Join(dir, "rdf_summary_1_20240301_143045.csv"))
	require.NoError(t, err)

	// Header only.
	assert.Equal(t, "Storage Group,RDFG Number,State,Mode,Status\n", string(bs))
}

func TestJSONReport(t *testing.T) {
	dir := t.TempDir()
	reporter := NewJSON(local.New(dir))

	require.NoError(t, reporter.Report(context.Background(), testBatch()))

	bs, err := os.ReadFile(filepath.Join(dir, "rdf_batch_1_20240301_143045.json"))
	require.NoError(t, err)

	var entries []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(bs, &entries))
	require.Len(t, entries, 3)

	// Entries follow the batch's input order, one key per target.
	raw, ok := entries[0]["SG_PROD_01"]
	require.True(t, ok)

	var info unisphere.RDFInfo
	require.NoError(t, json.Unmarshal(raw, &info))
	require.Len(t, info.RDFGroupInfo, 1)
	assert.Equal(t, 12, info.RDFGroupInfo[0].RDFGroupNumber)

	var errEntry string
	require.NoError(t, json.Unmarshal(entries[1]["SG_PROD_02"], &errEntry))
	assert.Equal(t, "Error: 500", errEntry)

	_, ok = entries[2]["SG_PROD_03"]
	assert.True(t, ok)
}

func TestErrorString(t *testing.T) {
	t.Run("api errors carry the status code", func(t *testing.T) {
		err := &unisphere.APIError{StatusCode: http.StatusBadGateway, Endpoint: "/x"}
		assert.Equal(t, "Error: 502", errorString(err))
	})

	t.Run("transport errors carry the cause", func(t *testing.T) {
		err := &unisphere.TransportError{Endpoint: "/x", Err: context.DeadlineExceeded}
		assert.Contains(t, errorString(err), "Exception: ")
		assert.Contains(t, errorString(err), "deadline exceeded")
	})
}
