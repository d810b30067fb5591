package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRDFMon(t *testing.T) *RDFMon {
	return &RDFMon{
		Collector: Collector{
			Name: "test-array",
			Unisphere: Unisphere{
				Endpoint: "https://unisphere.example.com:8443",
				Username: "smc",
				Password: "smc",
				ArrayID:  "000197900123",
			},
			Schedule: Schedule{
				BatchSize:  2,
				BatchDelay: -1,
			},
			Repository: Repository{
				Type:  "local",
				Local: Local{Path: t.TempDir()},
			},
			Reports: Reports{CSV: true, JSON: true, Catalog: true},
			Preservers: []Preserver{
				{Type: "stdout"},
				{Type: "parquet", BatchSize: 100},
			},
		},
	}
}

func TestInitializeCollector(t *testing.T) {
	c, err := InitializeCollector(context.Background(), testRDFMon(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "test-array", c.Name())
	assert.Equal(t, "000197900123", c.SymmetrixID())
}

func TestInitializeCollectorUnknownRepositoryType(t *testing.T) {
	rdfmon := testRDFMon(t)
	rdfmon.Collector.Repository.Type = "gcs"
	_, err := InitializeCollector(context.Background(), rdfmon, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown repository type")
}

func TestInitializeCollectorUnknownPreserverType(t *testing.T) {
	rdfmon := testRDFMon(t)
	rdfmon.Collector.Preservers = []Preserver{{Type: "carrier-pigeon"}}
	_, err := InitializeCollector(context.Background(), rdfmon, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown preserver type")
}

func TestInitializeCollectorRequiresEndpoint(t *testing.T) {
	rdfmon := testRDFMon(t)
	rdfmon.Collector.Unisphere.Endpoint = ""
	_, err := InitializeCollector(context.Background(), rdfmon, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint is required")
}

func TestInitializeCollectorRequiresArrayID(t *testing.T) {
	rdfmon := testRDFMon(t)
	rdfmon.Collector.Unisphere.ArrayID = ""
	_, err := InitializeCollector(context.Background(), rdfmon, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symmetrix id is required")
}
