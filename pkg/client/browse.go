package client

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/opcua-sdk/opcua-go/pkg/channel"
	"github.com/opcua-sdk/opcua-go/pkg/continuation"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// BrowseOptions controls reference selection and paging. A nil options
// value browses hierarchical references and their subtypes in the
// forward direction. In an explicit options value a nil
// ReferenceTypeID matches every reference type.
type BrowseOptions struct {
	ReferenceTypeID ua.NodeID
	Direction       ua.BrowseDirection
	IncludeSubtypes bool

	// NodeClassMask filters targets by node class; zero admits all.
	NodeClassMask ua.NodeClass

	// MaxReferences caps each result page. Zero leaves the page size
	// to the server.
	MaxReferences uint32
}

// DefaultBrowseOptions returns the options a nil value stands for.
func DefaultBrowseOptions() *BrowseOptions {
	return &BrowseOptions{
		ReferenceTypeID: ua.HierarchicalReferences,
		Direction:       ua.BrowseDirectionForward,
		IncludeSubtypes: true,
	}
}

func (o *BrowseOptions) withDefaults() *BrowseOptions {
	if o == nil {
		return DefaultBrowseOptions()
	}
	return o
}

// BrowseResult is one page of references. A nonzero Continuation means
// the server holds more references; pass the handle to BrowseNext to
// fetch them or to BrowseRelease to discard the server-side cursor.
type BrowseResult struct {
	References   []ua.ReferenceDescription
	Continuation continuation.Handle
}

// More reports whether a further page is available.
func (r BrowseResult) More() bool { return r.Continuation != 0 }

// BrowseEntry is one node's outcome in a BrowseMany call. Err is set
// when the node itself failed; the other entries are unaffected.
type BrowseEntry struct {
	NodeID ua.NodeID
	Result BrowseResult
	Err    error
}

// Browse returns the first page of references of one node.
func (c *Client) Browse(ctx context.Context, node ua.NodeID, opts *BrowseOptions) (BrowseResult, error) {
	entries, err := c.BrowseMany(ctx, []ua.NodeID{node}, opts)
	if err != nil {
		return BrowseResult{}, err
	}
	return entries[0].Result, entries[0].Err
}

// BrowseMany browses several nodes in one service call. The entry
// slice has exactly one entry per node, in request order; a failing
// node sets its entry's Err and never aborts the others.
func (c *Client) BrowseMany(ctx context.Context, nodes []ua.NodeID, opts *BrowseOptions) ([]BrowseEntry, error) {
	if len(nodes) == 0 {
		return nil, ErrBatchEmpty
	}
	if len(nodes) > c.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%d nodes, maximum %d: %w", len(nodes), c.cfg.MaxBatchSize, ErrBatchTooLarge)
	}
	sessionID, ok := c.sessions.ActiveSession()
	if !ok {
		return nil, ErrNotConnected
	}

	o := opts.withDefaults()
	descs := make([]channel.BrowseDescription, len(nodes))
	for i, node := range nodes {
		descs[i] = channel.BrowseDescription{
			NodeID:          node,
			Direction:       o.Direction,
			ReferenceTypeID: o.ReferenceTypeID,
			IncludeSubtypes: o.IncludeSubtypes,
			NodeClassMask:   o.NodeClassMask,
		}
	}
	req := &channel.BrowseRequest{
		RequestedMaxReferencesPerNode: o.MaxReferences,
		NodesToBrowse:                 descs,
	}
	resp, err := c.invoke(ctx, "Browse", len(nodes), req)
	if err != nil {
		return nil, err
	}
	br, ok := resp.(*channel.BrowseResponse)
	if !ok || len(br.Results) != len(nodes) {
		return nil, fmt.Errorf("browse returned wrong result count: %w", ErrUnexpectedResponse)
	}

	entries := make([]BrowseEntry, len(nodes))
	for i, node := range nodes {
		entries[i] = c.browseEntry(sessionID, node, br.Results[i])
	}
	return entries, nil
}

// browseEntry converts one raw result slot, issuing a continuation
// handle when the server reported more references.
func (c *Client) browseEntry(sessionID uuid.UUID, node ua.NodeID, r channel.BrowseResult) BrowseEntry {
	if r.StatusCode.IsBad() {
		return BrowseEntry{NodeID: node, Err: serviceStatusErr("Browse", r.StatusCode)}
	}
	result := BrowseResult{References: r.References}
	if !r.ContinuationPoint.IsEmpty() {
		result.Continuation = c.continuations.Issue(sessionID, r.ContinuationPoint)
	}
	return BrowseEntry{NodeID: node, Result: result}
}

// BrowseNext fetches the next page for a continuation handle. The
// handle is consumed whatever the outcome; a further page yields a
// fresh handle on the result.
func (c *Client) BrowseNext(ctx context.Context, handle continuation.Handle) (BrowseResult, error) {
	sessionID, ok := c.sessions.ActiveSession()
	if !ok {
		return BrowseResult{}, ErrNotConnected
	}
	cp, err := c.continuations.Consume(sessionID, handle)
	if err != nil {
		return BrowseResult{}, err
	}

	req := &channel.BrowseNextRequest{
		ContinuationPoints: []ua.ContinuationPoint{cp},
	}
	resp, err := c.invoke(ctx, "BrowseNext", 1, req)
	if err != nil {
		return BrowseResult{}, err
	}
	bn, ok := resp.(*channel.BrowseNextResponse)
	if !ok || len(bn.Results) != 1 {
		return BrowseResult{}, fmt.Errorf("browse-next returned wrong result count: %w", ErrUnexpectedResponse)
	}

	r := bn.Results[0]
	if r.StatusCode.IsBad() {
		return BrowseResult{}, serviceStatusErr("BrowseNext", r.StatusCode)
	}
	result := BrowseResult{References: r.References}
	if !r.ContinuationPoint.IsEmpty() {
		result.Continuation = c.continuations.Issue(sessionID, r.ContinuationPoint)
	}
	return result, nil
}

// BrowseRelease consumes a continuation handle and tells the server to
// release the cursor without fetching the remaining references.
func (c *Client) BrowseRelease(ctx context.Context, handle continuation.Handle) error {
	sessionID, ok := c.sessions.ActiveSession()
	if !ok {
		return ErrNotConnected
	}
	cp, err := c.continuations.Consume(sessionID, handle)
	if err != nil {
		return err
	}

	req := &channel.BrowseNextRequest{
		ReleaseContinuationPoints: true,
		ContinuationPoints:        []ua.ContinuationPoint{cp},
	}
	resp, err := c.invoke(ctx, "BrowseNext", 1, req)
	if err != nil {
		return err
	}
	bn, ok := resp.(*channel.BrowseNextResponse)
	if !ok || len(bn.Results) != 1 {
		return fmt.Errorf("browse-next returned wrong result count: %w", ErrUnexpectedResponse)
	}
	if sc := bn.Results[0].StatusCode; sc.IsBad() {
		return serviceStatusErr("BrowseNext", sc)
	}
	return nil
}

// BrowseAll follows continuations to exhaustion and returns the merged
// reference list of one node. The raw continuation points never enter
// the handle store; a failure mid-way returns the error without the
// partial list.
func (c *Client) BrowseAll(ctx context.Context, node ua.NodeID, opts *BrowseOptions) ([]ua.ReferenceDescription, error) {
	o := opts.withDefaults()
	req := &channel.BrowseRequest{
		RequestedMaxReferencesPerNode: o.MaxReferences,
		NodesToBrowse: []channel.BrowseDescription{{
			NodeID:          node,
			Direction:       o.Direction,
			ReferenceTypeID: o.ReferenceTypeID,
			IncludeSubtypes: o.IncludeSubtypes,
			NodeClassMask:   o.NodeClassMask,
		}},
	}
	resp, err := c.invoke(ctx, "Browse", 1, req)
	if err != nil {
		return nil, err
	}
	br, ok := resp.(*channel.BrowseResponse)
	if !ok || len(br.Results) != 1 {
		return nil, fmt.Errorf("browse returned wrong result count: %w", ErrUnexpectedResponse)
	}
	r := br.Results[0]
	if r.StatusCode.IsBad() {
		return nil, serviceStatusErr("Browse", r.StatusCode)
	}

	refs := r.References
	cp := r.ContinuationPoint
	for !cp.IsEmpty() {
		next := &channel.BrowseNextRequest{
			ContinuationPoints: []ua.ContinuationPoint{cp},
		}
		resp, err := c.invoke(ctx, "BrowseNext", 1, next)
		if err != nil {
			return nil, err
		}
		bn, ok := resp.(*channel.BrowseNextResponse)
		if !ok || len(bn.Results) != 1 {
			return nil, fmt.Errorf("browse-next returned wrong result count: %w", ErrUnexpectedResponse)
		}
		r := bn.Results[0]
		if r.StatusCode.IsBad() {
			return nil, serviceStatusErr("BrowseNext", r.StatusCode)
		}
		refs = append(refs, r.References...)
		cp = r.ContinuationPoint
	}
	return refs, nil
}
