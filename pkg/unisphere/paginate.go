package unisphere

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Unisphere list endpoints page large results. A paged body nests the page's
// items under resultList.result and carries a resultList.nextPageKey cursor
// while more pages remain. The cursor is opaque and is echoed back verbatim
// as the pageKey query parameter.
const defaultPageSize = 1000

type resultList struct {
	Result      []json.RawMessage `json:"result"`
	NextPageKey string            `json:"nextPageKey"`
}

type pagedBody struct {
	ResultList *resultList `json:"resultList"`
}

// getPages fetches path and follows the page cursor until it is exhausted,
// returning every page's items in page order. A body without the resultList
// envelope is not paged; it is returned verbatim in raw and items is nil.
func (c *Client) getPages(ctx context.Context, path string, query url.Values) (items []json.RawMessage, raw []byte, err error) {
	q := url.Values{}
	for k, vs := range query {
		q[k] = vs
	}
	q.Set("pageSize", strconv.Itoa(defaultPageSize))

	paged := false
	for {
		body, err := c.get(ctx, path, q)
		if err != nil {
			return nil, nil, err
		}

		var page pagedBody
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, nil, fmt.Errorf("unisphere: decode %s: %w", path, err)
		}

		if page.ResultList == nil {
			if paged {
				return nil, nil, fmt.Errorf("unisphere: %s dropped the page envelope mid listing", path)
			}
			return nil, body, nil
		}

		paged = true
		items = append(items, page.ResultList.Result...)

		if page.ResultList.NextPageKey == "" {
			return items, nil, nil
		}
		q.Set("pageKey", page.ResultList.NextPageKey)
	}
}
