package unisphere

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanwatch/rdfmon/internal/testutil"
)

func TestRDFGroupsFollowsPageCursor(t *testing.T) {
	mock := testutil.NewMockUnisphere()
	defer mock.Close()

	path := testutil.APIPath("90", "replication", "symmetrix", "000197900111", "rdf_group")

	var pageSizes []string
	mock.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		pageSizes = append(pageSizes, r.URL.Query().Get("pageSize"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Query().Get("pageKey") {
		case "":
			fmt.Fprint(w, `{"resultList": {
				"result": [
					{"rdfgNumber": 1, "label": "DR_A"},
					{"rdfgNumber": 2, "label": "DR_B"}
				],
				"nextPageKey": "page-2"
			}}`)
		case "page-2":
			fmt.Fprint(w, `{"resultList": {
				"result": [
					{"rdfgNumber": 3, "label": "DR_C"},
					{"rdfgNumber": 4, "label": "DR_D"}
				],
				"nextPageKey": "page-3"
			}}`)
		case "page-3":
			fmt.Fprint(w, `{"resultList": {
				"result": [{"rdfgNumber": 5, "label": "DR_E"}]
			}}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	client := newTestClient(t, mock)
	groups, err := client.RDFGroups(context.Background(), "000197900111")
	require.NoError(t, err)

	// Every page's items, in page order, with no duplicates.
	require.Len(t, groups, 5)
	for i, g := range groups {
		assert.Equal(t, i+1, g.RDFGroupNumber)
	}

	assert.Equal(t, 3, mock.Requests(path))
	assert.Equal(t, []string{"1000", "1000", "1000"}, pageSizes)
}

func TestRDFGroupsWithoutPageEnvelope(t *testing.T) {
	mock := testutil.NewMockUnisphere()
	defer mock.Close()

	path := testutil.APIPath("90", "replication", "symmetrix", "000197900111", "rdf_group")
	mock.SetResponse(path, testutil.NewJSONResponse(`{
		"rdfGroupID": [
			{"rdfgNumber": 7, "label": "DR_X", "type": "Dynamic"}
		]
	}`))

	client := newTestClient(t, mock)
	groups, err := client.RDFGroups(context.Background(), "000197900111")
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, 7, groups[0].RDFGroupNumber)
	assert.Equal(t, "DR_X", groups[0].Label)
	assert.Equal(t, 1, mock.Requests(path))
}

func TestReplicatedStorageGroups(t *testing.T) {
	mock := testutil.NewMockUnisphere()
	defer mock.Close()

	path := testutil.APIPath("90", "replication", "symmetrix", "000197900111", "storagegroup")

	t.Run("paged listing decodes protection attributes", func(t *testing.T) {
		mock.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")

			if r.URL.Query().Get("pageKey") == "" {
				fmt.Fprint(w, `{"resultList": {
					"result": [{
						"storageGroupId": "SG_PROD_01",
						"srp": "SRP_1",
						"service_level": "Diamond",
						"rdfgs": [12, 13],
						"replication_mode": "Synchronous"
					}],
					"nextPageKey": "next"
				}}`)
				return
			}
			fmt.Fprint(w, `{"resultList": {
				"result": [{
					"storageGroupId": "SG_PROD_02",
					"srp": "SRP_1",
					"service_level": "Gold",
					"rdfgs": [14],
					"replication_mode": "Asynchronous"
				}]
			}}`)
		})

		client := newTestClient(t, mock)
		groups, err := client.ReplicatedStorageGroups(context.Background(), "000197900111")
		require.NoError(t, err)

		require.Len(t, groups, 2)
		assert.Equal(t, "SG_PROD_01", groups[0].StorageGroupID)
		assert.Equal(t, []int{12, 13}, groups[0].RDFGroups)
		assert.Equal(t, "Diamond", groups[0].ServiceLevel)
		assert.Equal(t, "SG_PROD_02", groups[1].StorageGroupID)
		assert.Equal(t, "Asynchronous", groups[1].ReplicationMode)
	})

	t.Run("flat listing only names the groups", func(t *testing.T) {
		mock.SetResponse(path, testutil.NewJSONResponse(`{"name": ["SG_A", "SG_B"]}`))

		client := newTestClient(t, mock)
		groups, err := client.ReplicatedStorageGroups(context.Background(), "000197900111")
		require.NoError(t, err)

		require.Len(t, groups, 2)
		assert.Equal(t, "SG_A", groups[0].StorageGroupID)
		assert.Empty(t, groups[0].ServiceLevel)
	})
}

func TestPageEnvelopeDroppedMidListing(t *testing.T) {
	mock := testutil.NewMockUnisphere()
	defer mock.Close()

	path := testutil.APIPath("90", "replication", "symmetrix", "000197900111", "rdf_group")
	mock.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("pageKey") == "" {
			fmt.Fprint(w, `{"resultList": {"result": [{"rdfgNumber": 1}], "nextPageKey": "more"}}`)
			return
		}
		fmt.Fprint(w, `{"rdfGroupID": []}`)
	})

	client := newTestClient(t, mock)
	_, err := client.RDFGroups(context.Background(), "000197900111")
	assert.Error(t, err)
}
