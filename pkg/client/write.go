package client

import (
	"context"
	"fmt"

	"github.com/opcua-sdk/opcua-go/pkg/channel"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// WriteAttributes writes a batch of node attributes in one service
// call. The result slice has one status code per written item, in
// request order.
func (c *Client) WriteAttributes(ctx context.Context, items []channel.WriteValue) ([]ua.StatusCode, error) {
	if len(items) == 0 {
		return nil, ErrBatchEmpty
	}
	if len(items) > c.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%d items, maximum %d: %w", len(items), c.cfg.MaxBatchSize, ErrBatchTooLarge)
	}

	req := &channel.WriteRequest{NodesToWrite: items}
	resp, err := c.invoke(ctx, "Write", len(items), req)
	if err != nil {
		return nil, err
	}
	wr, ok := resp.(*channel.WriteResponse)
	if !ok || len(wr.Results) != len(items) {
		return nil, fmt.Errorf("write returned wrong result count: %w", ErrUnexpectedResponse)
	}
	return wr.Results, nil
}

// WriteAttribute writes one attribute of one node. A bad item status
// is folded into the returned error.
func (c *Client) WriteAttribute(ctx context.Context, node ua.NodeID, attr ua.AttributeID, value ua.DataValue) error {
	results, err := c.WriteAttributes(ctx, []channel.WriteValue{{
		NodeID:      node,
		AttributeID: attr,
		Value:       value,
	}})
	if err != nil {
		return err
	}
	if results[0].IsBad() {
		return fmt.Errorf("write %s: %w", node, results[0])
	}
	return nil
}

// WriteValue writes the Value attribute of a node.
func (c *Client) WriteValue(ctx context.Context, node ua.NodeID, value ua.Variant) error {
	return c.WriteAttribute(ctx, node, ua.AttributeIDValue, ua.DataValue{
		Value:  value,
		Status: ua.Good,
	})
}
