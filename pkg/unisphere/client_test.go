package unisphere

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanwatch/rdfmon/internal/testutil"
)

func newTestClient(t *testing.T, mock *testutil.MockUnisphere) *Client {
	t.Helper()
	client, err := New(Config{
		Endpoint: mock.URL(),
		Username: "smc",
		Password: "smc",
	})
	require.NoError(t, err)
	return client
}

func TestNewValidatesConfig(t *testing.T) {
	t.Run("endpoint required", func(t *testing.T) {
		_, err := New(Config{Username: "smc"})
		assert.Error(t, err)
	})

	t.Run("username required", func(t *testing.T) {
		_, err := New(Config{Endpoint: "https://unisphere:8443"})
		assert.Error(t, err)
	})

	t.Run("defaults applied", func(t *testing.T) {
		client, err := New(Config{
			Endpoint: "https://unisphere:8443/",
			Username: "smc",
			Password: "smc",
		})
		require.NoError(t, err)
		assert.Equal(t, DefaultVersion, client.Version())
		assert.Equal(t, "https://unisphere:8443", client.Endpoint())
	})
}

func TestClientSendsAuthAndVersionHeaders(t *testing.T) {
	mock := testutil.NewMockUnisphere()
	defer mock.Close()

	var (
		gotUser, gotPass string
		gotOK            bool
	)
	mock.SetHandler(testutil.APIPath("90", "system", "symmetrix"), func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotOK = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symmetrixId": ["000197900111"]}`))
	})

	client := newTestClient(t, mock)
	arrays, err := client.Arrays(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"000197900111"}, arrays)
	assert.True(t, gotOK)
	assert.Equal(t, "smc", gotUser)
	assert.Equal(t, "smc", gotPass)
	assert.Equal(t, "application/json", mock.LastRequestHeader.Get("Accept"))
	assert.Equal(t, "application/json", mock.LastRequestHeader.Get("Content-Type"))
	assert.Equal(t, "90", mock.LastRequestHeader.Get("version"))
}

func TestClientErrors(t *testing.T) {
	mock := testutil.NewMockUnisphere()
	defer mock.Close()

	path := testutil.APIPath("90", "system", "symmetrix")

	t.Run("server error becomes APIError", func(t *testing.T) {
		mock.SetResponse(path, testutil.NewServerErrorResponse())

		client := newTestClient(t, mock)
		_, err := client.Arrays(context.Background())
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Contains(t, apiErr.Error(), path)
		assert.False(t, IsUnauthorized(err))
	})

	t.Run("401 is unauthorized", func(t *testing.T) {
		mock.SetResponse(path, testutil.NewUnauthorizedResponse())

		client := newTestClient(t, mock)
		_, err := client.Arrays(context.Background())
		require.Error(t, err)
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("404 is not found", func(t *testing.T) {
		client := newTestClient(t, mock)
		_, err := client.ArrayHealth(context.Background(), "000000000000")
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})

	t.Run("unreachable server becomes TransportError", func(t *testing.T) {
		dead := testutil.NewMockUnisphere()
		client := newTestClient(t, dead)
		dead.Close()

		_, err := client.Arrays(context.Background())
		require.Error(t, err)

		var transportErr *TransportError
		assert.ErrorAs(t, err, &transportErr)
	})

	t.Run("context cancellation propagates", func(t *testing.T) {
		mock.SetResponse(path, testutil.MockResponse{
			StatusCode: http.StatusOK,
			Body:       `{"symmetrixId": []}`,
			Delay:      200 * time.Millisecond,
		})

		client := newTestClient(t, mock)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := client.Arrays(ctx)
		require.Error(t, err)

		var transportErr *TransportError
		assert.ErrorAs(t, err, &transportErr)
	})
}

func TestRDFStorageGroupNames(t *testing.T) {
	mock := testutil.NewMockUnisphere()
	defer mock.Close()

	path := testutil.APIPath("90", "replication", "symmetrix", "000197900111", "storagegroup")

	t.Run("returns inventory and requests rdf only", func(t *testing.T) {
		var gotRDF string
		mock.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
			gotRDF = r.URL.Query().Get("rdf")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"name": ["SG_PROD_01", "SG_PROD_02"]}`))
		})

		client := newTestClient(t, mock)
		names, err := client.RDFStorageGroupNames(context.Background(), "000197900111")
		require.NoError(t, err)

		assert.Equal(t, "true", gotRDF)
		assert.Equal(t, []string{"SG_PROD_01", "SG_PROD_02"}, names)
	})

	t.Run("missing name key yields empty inventory", func(t *testing.T) {
		mock.SetResponse(path, testutil.NewJSONResponse(`{}`))

		client := newTestClient(t, mock)
		names, err := client.RDFStorageGroupNames(context.Background(), "000197900111")
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}

func TestStorageGroupRDF(t *testing.T) {
	mock := testutil.NewMockUnisphere()
	defer mock.Close()

	body := `{"storageGroupName": "SG_PROD_01", "rdfGroupInfo": [{"rdfgNumber": 12, "state": "Synchronized", "mode": "Synchronous", "status": "Online"}]}`
	mock.SetResponse(
		testutil.StorageGroupRDFPath("90", "000197900111", "SG_PROD_01"),
		testutil.NewJSONResponse(body),
	)

	client := newTestClient(t, mock)
	raw, err := client.StorageGroupRDF(context.Background(), "000197900111", "SG_PROD_01")
	require.NoError(t, err)

	assert.JSONEq(t, body, string(raw))

	var info RDFInfo
	require.NoError(t, json.Unmarshal(raw, &info))
	require.Len(t, info.RDFGroupInfo, 1)
	assert.Equal(t, 12, info.RDFGroupInfo[0].RDFGroupNumber)
	assert.Equal(t, "Synchronized", info.RDFGroupInfo[0].State)
}

func TestArrayCapacity(t *testing.T) {
	mock := testutil.NewMockUnisphere()
	defer mock.Close()

	path := testutil.APIPath("90", "sloprovisioning", "symmetrix", "000197900111")

	t.Run("decodes first symmetrix entry", func(t *testing.T) {
		mock.SetResponse(path, testutil.NewJSONResponse(`{
			"symmetrix": [{
				"symmetrixId": "000197900111",
				"total_cap_gb": 2048.5,
				"used_cap_gb": 1024.25,
				"free_cap_gb": 1024.25,
				"subscribed_cap_gb": 3072.75
			}]
		}`))

		client := newTestClient(t, mock)
		capacity, err := client.ArrayCapacity(context.Background(), "000197900111")
		require.NoError(t, err)

		assert.Equal(t, 2048.5, capacity.TotalCapGB)
		assert.Equal(t, 1024.25, capacity.UsedCapGB)
		assert.Equal(t, 1024.25, capacity.FreeCapGB)
		assert.Equal(t, 3072.75, capacity.SubscribedCapGB)
	})

	t.Run("empty symmetrix list is an error", func(t *testing.T) {
		mock.SetResponse(path, testutil.NewJSONResponse(`{"symmetrix": []}`))

		client := newTestClient(t, mock)
		_, err := client.ArrayCapacity(context.Background(), "000197900111")
		assert.Error(t, err)
	})
}

func TestArrayHealth(t *testing.T) {
	mock := testutil.NewMockUnisphere()
	defer mock.Close()

	mock.SetResponse(
		testutil.APIPath("90", "system", "symmetrix", "000197900111", "health"),
		testutil.NewJSONResponse(`{
			"health": {
				"health_score": {"symmetrix_health": 95.0},
				"num_failed_components": 1,
				"component_health": [
					{"name": "SYSTEM_UTILIZATION", "status": "Normal"},
					{"name": "CONFIGURATION", "status": "Degraded"}
				]
			}
		}`))

	client := newTestClient(t, mock)
	health, err := client.ArrayHealth(context.Background(), "000197900111")
	require.NoError(t, err)

	assert.Equal(t, 95.0, health.HealthScore.SymmetrixHealth)
	assert.Equal(t, 1, health.NumFailedComponents)
	require.Len(t, health.ComponentHealth, 2)
	assert.Equal(t, "CONFIGURATION", health.ComponentHealth[1].Name)
	assert.Equal(t, "Degraded", health.ComponentHealth[1].Status)
}

func TestRDFGroupDetails(t *testing.T) {
	mock := testutil.NewMockUnisphere()
	defer mock.Close()

	mock.SetResponse(
		testutil.APIPath("90", "replication", "symmetrix", "000197900111", "rdf_group", "12"),
		testutil.NewJSONResponse(`{
			"rdfgNumber": 12,
			"label": "PROD_DR",
			"type": "Dynamic",
			"remoteSymmetrix": "000197900222",
			"numDevices": 42,
			"states": {"state": "Synchronized"},
			"modes": {"mode": "Synchronous"}
		}`))

	client := newTestClient(t, mock)
	details, err := client.RDFGroup(context.Background(), "000197900111", 12)
	require.NoError(t, err)

	assert.Equal(t, 12, details.RDFGroupNumber)
	assert.Equal(t, "PROD_DR", details.Label)
	assert.Equal(t, "000197900222", details.RemoteSymmetrix)
	assert.Equal(t, 42, details.NumDevices)
	assert.Equal(t, "Synchronized", details.State())
	assert.Equal(t, "Synchronous", details.Mode())
}

func TestSyncTime(t *testing.T) {
	t.Run("parses the unisphere layout", func(t *testing.T) {
		g := RDFGroupInfo{LastSyncTime: "2024-03-01 14:30:45"}
		ts, err := g.SyncTime()
		require.NoError(t, err)
		require.NotNil(t, ts)
		assert.Equal(t, time.Date(2024, 3, 1, 14, 30, 45, 0, time.UTC), *ts)
	})

	t.Run("never synced", func(t *testing.T) {
		ts, err := RDFGroupInfo{}.SyncTime()
		require.NoError(t, err)
		assert.Nil(t, ts)
	})

	t.Run("garbage is an error", func(t *testing.T) {
		_, err := RDFGroupInfo{LastSyncTime: "not a time"}.SyncTime()
		assert.Error(t, err)
	})
}

func TestIsNotFoundOnWrappedError(t *testing.T) {
	err := fmt.Errorf("collect SG_PROD_01: %w", &APIError{StatusCode: http.StatusNotFound, Endpoint: "/x"})
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
}
