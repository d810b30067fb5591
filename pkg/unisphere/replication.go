package unisphere

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// RDFStorageGroupNames returns the names of every storage group on the array
// that participates in SRDF replication. This is the collection inventory.
func (c *Client) RDFStorageGroupNames(ctx context.Context, symmetrixID string) ([]string, error) {
	q := url.Values{}
	q.Set("rdf", "true")

	var out struct {
		Name []string `json:"name"`
	}
	if err := c.getJSON(ctx, c.path("replication", "symmetrix", symmetrixID, "storagegroup"), q, &out); err != nil {
		return nil, err
	}
	return out.Name, nil
}

// StorageGroupRDF fetches the SRDF detail document for one storage group.
// The body is returned verbatim so batch reports preserve exactly what the
// array answered; decode it into RDFInfo for the typed view.
func (c *Client) StorageGroupRDF(ctx context.Context, symmetrixID, storageGroup string) (json.RawMessage, error) {
	body, err := c.get(ctx, c.path("replication", "symmetrix", symmetrixID, "storagegroup", storageGroup, "rdf"), nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// RDFGroups lists the array's RDF groups. Some Unisphere builds page this
// listing, others answer with a flat rdfGroupID body; both are handled.
func (c *Client) RDFGroups(ctx context.Context, symmetrixID string) ([]RDFGroup, error) {
	path := c.path("replication", "symmetrix", symmetrixID, "rdf_group")
	items, raw, err := c.getPages(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	if raw != nil {
		var out struct {
			RDFGroupID []RDFGroup `json:"rdfGroupID"`
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("unisphere: decode %s: %w", path, err)
		}
		return out.RDFGroupID, nil
	}

	groups := make([]RDFGroup, 0, len(items))
	for _, item := range items {
		var g RDFGroup
		if err := json.Unmarshal(item, &g); err != nil {
			return nil, fmt.Errorf("unisphere: decode %s item: %w", path, err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// RDFGroup returns the detail view of a single RDF group.
func (c *Client) RDFGroup(ctx context.Context, symmetrixID string, number int) (*RDFGroupDetails, error) {
	var details RDFGroupDetails
	path := c.path("replication", "symmetrix", symmetrixID, "rdf_group", strconv.Itoa(number))
	if err := c.getJSON(ctx, path, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// ReplicatedStorageGroups lists every replicated storage group with its
// protection attributes. When the listing is not paged the body only names
// the groups, so entries carry the id alone.
func (c *Client) ReplicatedStorageGroups(ctx context.Context, symmetrixID string) ([]ReplicatedStorageGroup, error) {
	path := c.path("replication", "symmetrix", symmetrixID, "storagegroup")
	items, raw, err := c.getPages(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	if raw != nil {
		var out struct {
			Name []string `json:"name"`
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("unisphere: decode %s: %w", path, err)
		}
		groups := make([]ReplicatedStorageGroup, 0, len(out.Name))
		for _, name := range out.Name {
			groups = append(groups, ReplicatedStorageGroup{StorageGroupID: name})
		}
		return groups, nil
	}

	groups := make([]ReplicatedStorageGroup, 0, len(items))
	for _, item := range items {
		var sg ReplicatedStorageGroup
		if err := json.Unmarshal(item, &sg); err != nil {
			return nil, fmt.Errorf("unisphere: decode %s item: %w", path, err)
		}
		groups = append(groups, sg)
	}
	return groups, nil
}
