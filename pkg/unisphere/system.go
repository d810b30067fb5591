package unisphere

import (
	"context"
	"fmt"
)

// Arrays lists the symmetrix ids of every array this Unisphere manages.
func (c *Client) Arrays(ctx context.Context) ([]string, error) {
	var out struct {
		SymmetrixID []string `json:"symmetrixId"`
	}
	if err := c.getJSON(ctx, c.path("system", "symmetrix"), nil, &out); err != nil {
		return nil, err
	}
	return out.SymmetrixID, nil
}

// ArrayCapacity returns the provisioning capacity view of one array.
func (c *Client) ArrayCapacity(ctx context.Context, symmetrixID string) (*ArrayCapacity, error) {
	path := c.path("sloprovisioning", "symmetrix", symmetrixID)
	var out struct {
		Symmetrix []ArrayCapacity `json:"symmetrix"`
	}
	if err := c.getJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Symmetrix) == 0 {
		return nil, fmt.Errorf("unisphere: %s carried no symmetrix entry", path)
	}
	return &out.Symmetrix[0], nil
}

// ArrayHealth returns the health detail of one array.
func (c *Client) ArrayHealth(ctx context.Context, symmetrixID string) (*ArrayHealth, error) {
	var out struct {
		Health ArrayHealth `json:"health"`
	}
	if err := c.getJSON(ctx, c.path("system", "symmetrix", symmetrixID, "health"), nil, &out); err != nil {
		return nil, err
	}
	return &out.Health, nil
}
