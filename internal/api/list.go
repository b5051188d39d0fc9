package api

import (
	"context"
	"net/url"
)

// List is the envelope the API wraps collection responses in.
type List[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// GetList fetches a collection endpoint and unwraps its data field. A
// missing or null data field yields an empty, non-nil slice.
func GetList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var envelope List[T]
	if err := c.Get(ctx, path, query, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return []T{}, nil
	}
	return envelope.Data, nil
}
