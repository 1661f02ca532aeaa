package channel

import (
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// RequestHeader holds the fields common to every service request.
type RequestHeader struct {
	// RequestHandle is echoed in the response header. Zero lets the
	// transport assign one.
	RequestHandle uint32

	// Timestamp is when the request was created.
	Timestamp ua.DateTime
}

// Header returns the embedded request header.
func (h *RequestHeader) Header() *RequestHeader { return h }

// ResponseHeader holds the fields common to every service response.
type ResponseHeader struct {
	RequestHandle uint32
	Timestamp     ua.DateTime

	// ServiceResult is the status of the service call as a whole.
	// Per-operation failures live in the result slots instead.
	ServiceResult ua.StatusCode
}

// Header returns the embedded response header.
func (h *ResponseHeader) Header() *ResponseHeader { return h }

// Request is a service request accepted by Transport.Invoke.
type Request interface {
	Header() *RequestHeader
}

// Response is a service response returned by Transport.Invoke.
type Response interface {
	Header() *ResponseHeader
}

// ReadRequest reads attributes from one or more nodes in a single
// service call.
type ReadRequest struct {
	RequestHeader

	// MaxAge is the oldest acceptable cached value in milliseconds;
	// zero forces a device read.
	MaxAge             float64
	TimestampsToReturn ua.TimestampsToReturn
	NodesToRead        []ua.ReadValueID
}

// ReadResponse carries one DataValue per requested slot, in request
// order. Per-slot failures are bad status codes on the value.
type ReadResponse struct {
	ResponseHeader
	Results []ua.DataValue
}

// WriteValue names one attribute of one node and the value to write.
type WriteValue struct {
	NodeID      ua.NodeID
	AttributeID ua.AttributeID
	Value       ua.DataValue
}

// WriteRequest writes attribute values to one or more nodes.
type WriteRequest struct {
	RequestHeader
	NodesToWrite []WriteValue
}

// WriteResponse carries one status code per written slot, in request
// order.
type WriteResponse struct {
	ResponseHeader
	Results []ua.StatusCode
}

// BrowseDescription selects the references to return for one node.
type BrowseDescription struct {
	NodeID          ua.NodeID
	Direction       ua.BrowseDirection
	ReferenceTypeID ua.NodeID
	IncludeSubtypes bool

	// NodeClassMask filters targets by node class; zero admits all.
	NodeClassMask ua.NodeClass

	// ResultMask selects the reference description fields to fill;
	// zero fills all of them.
	ResultMask ua.BrowseResultMask
}

// BrowseRequest browses the references of one or more nodes.
type BrowseRequest struct {
	RequestHeader

	// RequestedMaxReferencesPerNode caps each node's first page. Zero
	// leaves the page size to the server.
	RequestedMaxReferencesPerNode uint32
	NodesToBrowse                 []BrowseDescription
}

// BrowseResult is one node's slot in a browse or browse-next response.
// A non-empty ContinuationPoint means more references are pending on
// the server.
type BrowseResult struct {
	StatusCode        ua.StatusCode
	ContinuationPoint ua.ContinuationPoint
	References        []ua.ReferenceDescription
}

// BrowseResponse carries one BrowseResult per browsed node, in request
// order.
type BrowseResponse struct {
	ResponseHeader
	Results []BrowseResult
}

// BrowseNextRequest resumes paginated browses from their continuation
// points, or releases the points without fetching when
// ReleaseContinuationPoints is set.
type BrowseNextRequest struct {
	RequestHeader
	ReleaseContinuationPoints bool
	ContinuationPoints        []ua.ContinuationPoint
}

// BrowseNextResponse carries one BrowseResult per continuation point,
// in request order.
type BrowseNextResponse struct {
	ResponseHeader
	Results []BrowseResult
}

// CallMethodRequest names one method to invoke on one object.
type CallMethodRequest struct {
	ObjectID       ua.NodeID
	MethodID       ua.NodeID
	InputArguments []ua.Variant
}

// CallMethodResult is one method's slot in a call response.
type CallMethodResult struct {
	StatusCode           ua.StatusCode
	InputArgumentResults []ua.StatusCode
	OutputArguments      []ua.Variant
}

// CallRequest invokes one or more methods in a single service call.
type CallRequest struct {
	RequestHeader
	MethodsToCall []CallMethodRequest
}

// CallResponse carries one CallMethodResult per invoked method, in
// request order.
type CallResponse struct {
	ResponseHeader
	Results []CallMethodResult
}

// CreateSubscriptionRequest creates a server-side subscription.
// Intervals are in milliseconds, following the protocol's Duration
// encoding.
type CreateSubscriptionRequest struct {
	RequestHeader
	RequestedPublishingInterval float64
	RequestedLifetimeCount      uint32
	RequestedMaxKeepAliveCount  uint32
	MaxNotificationsPerPublish  uint32
	PublishingEnabled           bool
	Priority                    uint8
}

// CreateSubscriptionResponse reports the server-assigned subscription
// ID and the revised timing parameters.
type CreateSubscriptionResponse struct {
	ResponseHeader
	SubscriptionID            uint32
	RevisedPublishingInterval float64
	RevisedLifetimeCount      uint32
	RevisedMaxKeepAliveCount  uint32
}

// DeleteSubscriptionsRequest deletes server-side subscriptions.
type DeleteSubscriptionsRequest struct {
	RequestHeader
	SubscriptionIDs []uint32
}

// DeleteSubscriptionsResponse carries one status code per deleted
// subscription, in request order.
type DeleteSubscriptionsResponse struct {
	ResponseHeader
	Results []ua.StatusCode
}

// MonitoringParameters configures sampling and queueing for one
// monitored item.
type MonitoringParameters struct {
	// ClientHandle is the caller-assigned identifier echoed in every
	// notification for this item.
	ClientHandle     uint32
	SamplingInterval float64
	QueueSize        uint32
	DiscardOldest    bool
}

// MonitoredItemCreateRequest adds one attribute to a subscription.
type MonitoredItemCreateRequest struct {
	ItemToMonitor       ua.ReadValueID
	RequestedParameters MonitoringParameters
}

// MonitoredItemCreateResult is one item's slot in a create-monitored-
// items response.
type MonitoredItemCreateResult struct {
	StatusCode              ua.StatusCode
	MonitoredItemID         uint32
	RevisedSamplingInterval float64
	RevisedQueueSize        uint32
}

// CreateMonitoredItemsRequest adds monitored items to a subscription.
type CreateMonitoredItemsRequest struct {
	RequestHeader
	SubscriptionID     uint32
	TimestampsToReturn ua.TimestampsToReturn
	ItemsToCreate      []MonitoredItemCreateRequest
}

// CreateMonitoredItemsResponse carries one result per created item, in
// request order.
type CreateMonitoredItemsResponse struct {
	ResponseHeader
	Results []MonitoredItemCreateResult
}

// DeleteMonitoredItemsRequest removes monitored items from a
// subscription.
type DeleteMonitoredItemsRequest struct {
	RequestHeader
	SubscriptionID   uint32
	MonitoredItemIDs []uint32
}

// DeleteMonitoredItemsResponse carries one status code per removed
// item, in request order.
type DeleteMonitoredItemsResponse struct {
	ResponseHeader
	Results []ua.StatusCode
}

// Compile-time interface satisfaction checks.
var (
	_ Request = (*ReadRequest)(nil)
	_ Request = (*WriteRequest)(nil)
	_ Request = (*BrowseRequest)(nil)
	_ Request = (*BrowseNextRequest)(nil)
	_ Request = (*CallRequest)(nil)
	_ Request = (*CreateSubscriptionRequest)(nil)
	_ Request = (*DeleteSubscriptionsRequest)(nil)
	_ Request = (*CreateMonitoredItemsRequest)(nil)
	_ Request = (*DeleteMonitoredItemsRequest)(nil)

	_ Response = (*ReadResponse)(nil)
	_ Response = (*WriteResponse)(nil)
	_ Response = (*BrowseResponse)(nil)
	_ Response = (*BrowseNextResponse)(nil)
	_ Response = (*CallResponse)(nil)
	_ Response = (*CreateSubscriptionResponse)(nil)
	_ Response = (*DeleteSubscriptionsResponse)(nil)
	_ Response = (*CreateMonitoredItemsResponse)(nil)
	_ Response = (*DeleteMonitoredItemsResponse)(nil)
)
