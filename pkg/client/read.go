package client

import (
	"context"
	"fmt"

	"github.com/opcua-sdk/opcua-go/pkg/channel"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// ReadAttributes reads a batch of node attributes in one service call.
//
// The result slice has exactly one entry per requested item, in
// request order. Per-item failures are bad status codes on the entry's
// value; the returned error is non-nil only when the call as a whole
// failed and no item was read.
func (c *Client) ReadAttributes(ctx context.Context, items []ua.ReadValueID) ([]ua.ReadResult, error) {
	if len(items) == 0 {
		return nil, ErrBatchEmpty
	}
	if len(items) > c.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%d items, maximum %d: %w", len(items), c.cfg.MaxBatchSize, ErrBatchTooLarge)
	}

	req := &channel.ReadRequest{
		TimestampsToReturn: ua.TimestampsBoth,
		NodesToRead:        items,
	}
	resp, err := c.invoke(ctx, "Read", len(items), req)
	if err != nil {
		return nil, err
	}
	rr, ok := resp.(*channel.ReadResponse)
	if !ok || len(rr.Results) != len(items) {
		return nil, fmt.Errorf("read returned %d results for %d items: %w", resultCount(rr), len(items), ErrUnexpectedResponse)
	}

	results := make([]ua.ReadResult, len(items))
	for i, item := range items {
		results[i] = ua.ReadResult{
			NodeID:      item.NodeID,
			AttributeID: item.AttributeID,
			Value:       rr.Results[i],
		}
	}
	return results, nil
}

func resultCount(rr *channel.ReadResponse) int {
	if rr == nil {
		return 0
	}
	return len(rr.Results)
}

// ReadAttribute reads a single attribute of a single node. Bad
// per-item status is reported on the result value, not as an error.
func (c *Client) ReadAttribute(ctx context.Context, node ua.NodeID, attr ua.AttributeID) (ua.ReadResult, error) {
	results, err := c.ReadAttributes(ctx, []ua.ReadValueID{{NodeID: node, AttributeID: attr}})
	if err != nil {
		return ua.ReadResult{}, err
	}
	return results[0], nil
}

// ReadValue reads the Value attribute of a node. Unlike ReadAttribute
// it folds a bad item status into the returned error, so a nil error
// always means a usable value.
func (c *Client) ReadValue(ctx context.Context, node ua.NodeID) (ua.DataValue, error) {
	result, err := c.ReadAttribute(ctx, node, ua.AttributeIDValue)
	if err != nil {
		return ua.DataValue{}, err
	}
	if err := result.Value.Err(); err != nil {
		return result.Value, fmt.Errorf("read %s: %w", node, err)
	}
	return result.Value, nil
}
