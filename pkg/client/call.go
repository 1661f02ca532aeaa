package client

import (
	"context"
	"fmt"

	"github.com/opcua-sdk/opcua-go/pkg/channel"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// CallMethod invokes a method on an object and returns its output
// arguments. A bad method status is folded into the returned error;
// when individual input arguments were rejected the error lists their
// positions.
func (c *Client) CallMethod(ctx context.Context, objectID, methodID ua.NodeID, inputs []ua.Variant) ([]ua.Variant, error) {
	req := &channel.CallRequest{
		MethodsToCall: []channel.CallMethodRequest{{
			ObjectID:       objectID,
			MethodID:       methodID,
			InputArguments: inputs,
		}},
	}
	resp, err := c.invoke(ctx, "Call", 1, req)
	if err != nil {
		return nil, err
	}
	cr, ok := resp.(*channel.CallResponse)
	if !ok || len(cr.Results) != 1 {
		return nil, fmt.Errorf("call returned wrong result count: %w", ErrUnexpectedResponse)
	}

	result := cr.Results[0]
	if result.StatusCode.IsBad() {
		if bad := badArgumentPositions(result.InputArgumentResults); len(bad) > 0 {
			return nil, fmt.Errorf("call %s on %s: arguments %v rejected: %w", methodID, objectID, bad, result.StatusCode)
		}
		return nil, fmt.Errorf("call %s on %s: %w", methodID, objectID, result.StatusCode)
	}
	return result.OutputArguments, nil
}

func badArgumentPositions(results []ua.StatusCode) []int {
	var bad []int
	for i, sc := range results {
		if sc.IsBad() {
			bad = append(bad, i)
		}
	}
	return bad
}
