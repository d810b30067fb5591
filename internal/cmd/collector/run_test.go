package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"text/template"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sanwatch/rdfmon/internal/catalog"
	"github.com/sanwatch/rdfmon/internal/testutil"
)

// TestIntegrationCollectorRun exercises the run command end to end: a mock
// Unisphere answers the inventory and three storage group documents, the
// batch reports land on disk and the flattened records land in postgres.
func TestIntegrationCollectorRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16",
		postgres.WithDatabase("powermax_monitoring"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate pgContainer: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	const arrayID = "000197900123"
	storageGroups := []string{"SG_PROD", "SG_HR", "SG_DR"}

	mock := testutil.NewMockUnisphere()
	defer mock.Close()

	mock.SetResponse(
		testutil.APIPath("90", "replication", "symmetrix", arrayID, "storagegroup"),
		testutil.NewJSONResponse(`{"name": ["SG_PROD", "SG_HR", "SG_DR"]}`),
	)
	for i, sg := range storageGroups {
		doc := fmt.Sprintf(`{
			"storageGroupName": %q,
			"symmetrixId": %q,
			"rdfGroupInfo": [{
				"rdfgNumber": %d,
				"state": "Synchronized",
				"mode": "Synchronous",
				"status": "Normal",
				"volumeConfig": "RDF1+TDEV",
				"raGroup": "RA-Grp-1",
				"raCapacity": 512.25,
				"consistencyState": "CONSISTENT",
				"lastSyncTime": "2024-02-29 23:59:59",
				"protected": true,
				"consistent": true
			}]
		}`, sg, arrayID, i+10)
		mock.SetResponse(
			testutil.StorageGroupRDFPath("90", arrayID, sg),
			testutil.NewJSONResponse(doc),
		)
	}

	tempDir := t.TempDir()
	reportsDir := filepath.Join(tempDir, "reports")

	configTemplate := `
global:
  logger:
    level: error

collector:
  name: e2e
  unisphere:
    endpoint: "{{.Endpoint}}"
    username: smc
    password: smc
    array_id: "000197900123"
    version: "90"
  schedule:
    batch_size: 2
    max_workers: 2
    batch_delay: -1
    interval: 2400
  repository:
    type: local
    local:
      path: "{{.ReportsDir}}"
  reports:
    csv: true
    json: true
    catalog: true
  preservers:
    - type: postgres
      connection_string: "{{.ConnStr}}"
`

	tmpl, err := template.New("config").Parse(configTemplate)
	require.NoError(t, err)

	configPath := filepath.Join(tempDir, "config.yml")
	configFile, err := os.Create(configPath)
	require.NoError(t, err)
	defer configFile.Close()

	err = tmpl.Execute(configFile, struct {
		Endpoint   string
		ReportsDir string
		ConnStr    string
	}{
		Endpoint:   mock.URL(),
		ReportsDir: reportsDir,
		ConnStr:    connStr,
	})
	require.NoError(t, err)

	cmd := newRunCommand()
	cmd.SetArgs([]string{"--config", configPath})
	err = cmd.ExecuteContext(ctx)
	require.NoError(t, err)

	// Batch size 2 over three storage groups: two batches, each with a CSV
	// summary and a JSON detail file, plus one run catalog.
	csvs, err := filepath.Glob(filepath.Join(reportsDir, "rdf_summary_*.csv"))
	require.NoError(t, err)
	assert.Len(t, csvs, 2)

	jsons, err := filepath.Glob(filepath.Join(reportsDir, "rdf_batch_*.json"))
	require.NoError(t, err)
	assert.Len(t, jsons, 2)

	catalogs, err := filepath.Glob(filepath.Join(reportsDir, "catalog_*.json"))
	require.NoError(t, err)
	require.Len(t, catalogs, 1)

	data, err := os.ReadFile(catalogs[0])
	require.NoError(t, err)

	var log catalog.Catalog
	err = json.Unmarshal(data, &log)
	require.NoError(t, err)

	assert.Equal(t, true, log.Completed)
	assert.Equal(t, arrayID, log.SymmetrixID)
	assert.Equal(t, 3, log.NumStorageGroups)
	assert.Equal(t, 2, log.NumBatches)
	assert.Equal(t, 3, log.NumRecords)
	assert.Equal(t, 0, log.NumFailures)

	conn, err := pgx.Connect(ctx, connStr)
	require.NoError(t, err)
	defer conn.Close(ctx)

	var count int
	err = conn.QueryRow(ctx, "SELECT COUNT(*) FROM rdf_status").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	var state string
	var rdfg int
	err = conn.QueryRow(ctx,
		"SELECT rdf_state, rdf_group_number FROM rdf_status WHERE storage_group = $1",
		"SG_PROD",
	).Scan(&state, &rdfg)
	require.NoError(t, err)
	assert.Equal(t, "Synchronized", state)
	assert.Equal(t, 10, rdfg)
}
