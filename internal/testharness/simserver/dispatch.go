package simserver

import (
	"github.com/opcua-sdk/opcua-go/pkg/channel"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// dispatch routes one request to its service handler.
func (s *Server) dispatch(req channel.Request) (channel.Response, error) {
	switch r := req.(type) {
	case *channel.ReadRequest:
		return s.handleRead(r), nil
	case *channel.WriteRequest:
		return s.handleWrite(r), nil
	case *channel.BrowseRequest:
		return s.handleBrowse(r), nil
	case *channel.BrowseNextRequest:
		return s.handleBrowseNext(r), nil
	case *channel.CallRequest:
		return s.handleCall(r), nil
	case *channel.CreateSubscriptionRequest:
		return s.handleCreateSubscription(r), nil
	case *channel.DeleteSubscriptionsRequest:
		return s.handleDeleteSubscriptions(r), nil
	case *channel.CreateMonitoredItemsRequest:
		return s.handleCreateMonitoredItems(r), nil
	case *channel.DeleteMonitoredItemsRequest:
		return s.handleDeleteMonitoredItems(r), nil
	default:
		return faultResponse(req, ua.BadNotImplemented), nil
	}
}

// respHeader builds a response header echoing the request handle.
func respHeader(req channel.Request, result ua.StatusCode) channel.ResponseHeader {
	return channel.ResponseHeader{
		RequestHandle: req.Header().RequestHandle,
		Timestamp:     ua.DateTimeNow(),
		ServiceResult: result,
	}
}

// faultResponse builds an empty response of the matching type whose
// service result is the given status.
func faultResponse(req channel.Request, status ua.StatusCode) channel.Response {
	hdr := respHeader(req, status)
	switch req.(type) {
	case *channel.ReadRequest:
		return &channel.ReadResponse{ResponseHeader: hdr}
	case *channel.WriteRequest:
		return &channel.WriteResponse{ResponseHeader: hdr}
	case *channel.BrowseRequest:
		return &channel.BrowseResponse{ResponseHeader: hdr}
	case *channel.BrowseNextRequest:
		return &channel.BrowseNextResponse{ResponseHeader: hdr}
	case *channel.CallRequest:
		return &channel.CallResponse{ResponseHeader: hdr}
	case *channel.CreateSubscriptionRequest:
		return &channel.CreateSubscriptionResponse{ResponseHeader: hdr}
	case *channel.DeleteSubscriptionsRequest:
		return &channel.DeleteSubscriptionsResponse{ResponseHeader: hdr}
	case *channel.CreateMonitoredItemsRequest:
		return &channel.CreateMonitoredItemsResponse{ResponseHeader: hdr}
	case *channel.DeleteMonitoredItemsRequest:
		return &channel.DeleteMonitoredItemsResponse{ResponseHeader: hdr}
	default:
		return &channel.ReadResponse{ResponseHeader: hdr}
	}
}

func (s *Server) handleRead(r *channel.ReadRequest) *channel.ReadResponse {
	if len(r.NodesToRead) == 0 {
		return &channel.ReadResponse{ResponseHeader: respHeader(r, ua.BadNothingToDo)}
	}

	results := make([]ua.DataValue, len(r.NodesToRead))
	for i, slot := range r.NodesToRead {
		dv := s.space.ReadAttribute(slot.NodeID, slot.AttributeID)
		results[i] = filterTimestamps(dv, r.TimestampsToReturn)
	}
	return &channel.ReadResponse{
		ResponseHeader: respHeader(r, ua.Good),
		Results:        results,
	}
}

// filterTimestamps strips the timestamps the request did not ask for.
func filterTimestamps(dv ua.DataValue, mode ua.TimestampsToReturn) ua.DataValue {
	switch mode {
	case ua.TimestampsSource:
		dv.ServerTimestamp = 0
	case ua.TimestampsServer:
		dv.SourceTimestamp = 0
	case ua.TimestampsNeither:
		dv.SourceTimestamp = 0
		dv.ServerTimestamp = 0
	}
	return dv
}

func (s *Server) handleWrite(r *channel.WriteRequest) *channel.WriteResponse {
	if len(r.NodesToWrite) == 0 {
		return &channel.WriteResponse{ResponseHeader: respHeader(r, ua.BadNothingToDo)}
	}

	results := make([]ua.StatusCode, len(r.NodesToWrite))
	for i, slot := range r.NodesToWrite {
		results[i] = s.space.WriteAttribute(slot.NodeID, slot.AttributeID, slot.Value)
	}
	return &channel.WriteResponse{
		ResponseHeader: respHeader(r, ua.Good),
		Results:        results,
	}
}

func (s *Server) handleBrowse(r *channel.BrowseRequest) *channel.BrowseResponse {
	if len(r.NodesToBrowse) == 0 {
		return &channel.BrowseResponse{ResponseHeader: respHeader(r, ua.BadNothingToDo)}
	}

	s.mu.Lock()
	ceiling := s.pageCap
	s.mu.Unlock()

	max := r.RequestedMaxReferencesPerNode
	if max == 0 || max > ceiling {
		max = ceiling
	}

	results := make([]channel.BrowseResult, len(r.NodesToBrowse))
	for i, desc := range r.NodesToBrowse {
		results[i] = s.space.Browse(desc, max)
	}
	return &channel.BrowseResponse{
		ResponseHeader: respHeader(r, ua.Good),
		Results:        results,
	}
}

func (s *Server) handleBrowseNext(r *channel.BrowseNextRequest) *channel.BrowseNextResponse {
	if len(r.ContinuationPoints) == 0 {
		return &channel.BrowseNextResponse{ResponseHeader: respHeader(r, ua.BadNothingToDo)}
	}

	results := make([]channel.BrowseResult, len(r.ContinuationPoints))
	for i, cp := range r.ContinuationPoints {
		results[i] = s.space.BrowseNext(cp, r.ReleaseContinuationPoints)
	}
	return &channel.BrowseNextResponse{
		ResponseHeader: respHeader(r, ua.Good),
		Results:        results,
	}
}

func (s *Server) handleCall(r *channel.CallRequest) *channel.CallResponse {
	if len(r.MethodsToCall) == 0 {
		return &channel.CallResponse{ResponseHeader: respHeader(r, ua.BadNothingToDo)}
	}

	results := make([]channel.CallMethodResult, len(r.MethodsToCall))
	for i, call := range r.MethodsToCall {
		out, status := s.space.Call(call.ObjectID, call.MethodID, call.InputArguments)
		results[i] = channel.CallMethodResult{
			StatusCode:      status,
			OutputArguments: out,
		}
	}
	return &channel.CallResponse{
		ResponseHeader: respHeader(r, ua.Good),
		Results:        results,
	}
}
