package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/opcua-sdk/opcua-go/pkg/channel"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// Subscription defaults.
const (
	DefaultPublishingInterval = 500 * time.Millisecond
	DefaultLifetimeCount      = 2400
	DefaultMaxKeepAliveCount  = 10

	DefaultSamplingInterval = 250 * time.Millisecond
	DefaultQueueSize        = 10
	DefaultChangeBuffer     = 16
)

// SubscriptionOptions configures a server-side subscription. A nil
// options value uses the defaults.
type SubscriptionOptions struct {
	// PublishingInterval is the requested notification cycle. The
	// server may revise it; see Subscription.PublishingInterval.
	PublishingInterval time.Duration

	// LifetimeCount is the number of publishing cycles the server
	// keeps the subscription alive without client contact.
	LifetimeCount uint32

	// MaxKeepAliveCount is the number of empty cycles before the
	// server sends a keep-alive notification.
	MaxKeepAliveCount uint32

	// MaxNotificationsPerPublish caps one publish response. Zero means
	// unlimited.
	MaxNotificationsPerPublish uint32

	Priority uint8
}

// DefaultSubscriptionOptions returns the options a nil value stands
// for.
func DefaultSubscriptionOptions() *SubscriptionOptions {
	return &SubscriptionOptions{
		PublishingInterval: DefaultPublishingInterval,
		LifetimeCount:      DefaultLifetimeCount,
		MaxKeepAliveCount:  DefaultMaxKeepAliveCount,
	}
}

// MonitorOptions configures one monitored item. A nil options value
// monitors the Value attribute at the default sampling interval with
// a drop-oldest queue.
type MonitorOptions struct {
	// Attribute selects the monitored attribute.
	Attribute ua.AttributeID

	// SamplingInterval is the requested server-side sampling cycle.
	SamplingInterval time.Duration

	// QueueSize is the server-side queue depth between publishes.
	QueueSize uint32

	// DiscardOldest drops the oldest queued value on server-side
	// overflow instead of the newest.
	DiscardOldest bool

	// ChangeBuffer is the capacity of the client-side Changes channel.
	ChangeBuffer int
}

// DefaultMonitorOptions returns the options a nil value stands for.
func DefaultMonitorOptions() *MonitorOptions {
	return &MonitorOptions{
		Attribute:        ua.AttributeIDValue,
		SamplingInterval: DefaultSamplingInterval,
		QueueSize:        DefaultQueueSize,
		DiscardOldest:    true,
		ChangeBuffer:     DefaultChangeBuffer,
	}
}

func (o *SubscriptionOptions) withDefaults() *SubscriptionOptions {
	if o == nil {
		return DefaultSubscriptionOptions()
	}
	return o
}

func (o *MonitorOptions) withDefaults() *MonitorOptions {
	if o == nil {
		return DefaultMonitorOptions()
	}
	out := *o
	if out.ChangeBuffer <= 0 {
		out.ChangeBuffer = DefaultChangeBuffer
	}
	return &out
}

// Subscription is a server-side subscription with client-side routing
// of its data change notifications.
type Subscription struct {
	client             *Client
	id                 uint32
	publishingInterval time.Duration

	mu     sync.RWMutex
	items  map[uint32]*MonitoredItem // keyed by client handle
	closed bool
}

// CreateSubscription registers a subscription on the server and
// installs its notification routing.
func (c *Client) CreateSubscription(ctx context.Context, opts *SubscriptionOptions) (*Subscription, error) {
	o := opts.withDefaults()
	req := &channel.CreateSubscriptionRequest{
		RequestedPublishingInterval: float64(o.PublishingInterval) / float64(time.Millisecond),
		RequestedLifetimeCount:      o.LifetimeCount,
		RequestedMaxKeepAliveCount:  o.MaxKeepAliveCount,
		MaxNotificationsPerPublish:  o.MaxNotificationsPerPublish,
		PublishingEnabled:           true,
		Priority:                    o.Priority,
	}
	resp, err := c.invoke(ctx, "CreateSubscription", 1, req)
	if err != nil {
		return nil, err
	}
	cr, ok := resp.(*channel.CreateSubscriptionResponse)
	if !ok {
		return nil, fmt.Errorf("create-subscription response: %w", ErrUnexpectedResponse)
	}

	sub := &Subscription{
		client:             c,
		id:                 cr.SubscriptionID,
		publishingInterval: time.Duration(cr.RevisedPublishingInterval * float64(time.Millisecond)),
		items:              make(map[uint32]*MonitoredItem),
	}
	c.subMu.Lock()
	c.subs[sub.id] = sub
	c.subMu.Unlock()
	return sub, nil
}

// ID returns the server-assigned subscription ID.
func (s *Subscription) ID() uint32 { return s.id }

// PublishingInterval returns the server-revised publishing interval.
func (s *Subscription) PublishingInterval() time.Duration { return s.publishingInterval }

// MonitorValue adds a monitored item for one node and returns the item
// whose Changes channel delivers its data changes.
func (s *Subscription) MonitorValue(ctx context.Context, node ua.NodeID, opts *MonitorOptions) (*MonitoredItem, error) {
	o := opts.withDefaults()

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrSubscriptionClosed
	}

	handle := s.client.nextClientHandle.Add(1)
	req := &channel.CreateMonitoredItemsRequest{
		SubscriptionID:     s.id,
		TimestampsToReturn: ua.TimestampsBoth,
		ItemsToCreate: []channel.MonitoredItemCreateRequest{{
			ItemToMonitor: ua.ReadValueID{NodeID: node, AttributeID: o.Attribute},
			RequestedParameters: channel.MonitoringParameters{
				ClientHandle:     handle,
				SamplingInterval: float64(o.SamplingInterval) / float64(time.Millisecond),
				QueueSize:        o.QueueSize,
				DiscardOldest:    o.DiscardOldest,
			},
		}},
	}
	resp, err := s.client.invoke(ctx, "CreateMonitoredItems", 1, req)
	if err != nil {
		return nil, err
	}
	cr, ok := resp.(*channel.CreateMonitoredItemsResponse)
	if !ok || len(cr.Results) != 1 {
		return nil, fmt.Errorf("create-monitored-items returned wrong result count: %w", ErrUnexpectedResponse)
	}
	result := cr.Results[0]
	if result.StatusCode.IsBad() {
		return nil, serviceStatusErr("CreateMonitoredItems", result.StatusCode)
	}

	item := &MonitoredItem{
		sub:          s,
		id:           result.MonitoredItemID,
		clientHandle: handle,
		node:         node,
		ch:           make(chan ua.DataValue, o.ChangeBuffer),
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		item.closeLocal()
		return nil, ErrSubscriptionClosed
	}
	s.items[handle] = item
	s.mu.Unlock()
	return item, nil
}

// Close deletes the subscription on the server and closes all item
// channels. When the session is already gone the server side died with
// it and only the local cleanup runs.
func (s *Subscription) Close(ctx context.Context) error {
	if !s.teardown() {
		return nil
	}
	s.client.removeSubscription(s.id)

	req := &channel.DeleteSubscriptionsRequest{SubscriptionIDs: []uint32{s.id}}
	resp, err := s.client.invoke(ctx, "DeleteSubscriptions", 1, req)
	if err != nil {
		if errors.Is(err, ErrNotConnected) {
			return nil
		}
		return err
	}
	dr, ok := resp.(*channel.DeleteSubscriptionsResponse)
	if !ok || len(dr.Results) != 1 {
		return fmt.Errorf("delete-subscriptions returned wrong result count: %w", ErrUnexpectedResponse)
	}
	if sc := dr.Results[0]; sc.IsBad() {
		return serviceStatusErr("DeleteSubscriptions", sc)
	}
	return nil
}

// teardown closes the subscription locally. It reports whether this
// call was the one that closed it.
func (s *Subscription) teardown() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true
	items := make([]*MonitoredItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	s.items = make(map[uint32]*MonitoredItem)
	s.mu.Unlock()

	for _, item := range items {
		item.closeLocal()
	}
	return true
}

// dispatch routes one notification to its monitored item.
func (s *Subscription) dispatch(n channel.Notification) {
	s.mu.RLock()
	item := s.items[n.ClientHandle]
	s.mu.RUnlock()
	if item == nil {
		return
	}
	item.deliver(n.Value)
}

func (s *Subscription) itemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// removeItem detaches an item and deletes it on the server.
func (s *Subscription) removeItem(ctx context.Context, m *MonitoredItem) error {
	s.mu.Lock()
	_, present := s.items[m.clientHandle]
	delete(s.items, m.clientHandle)
	s.mu.Unlock()

	m.closeLocal()
	if !present {
		return nil
	}

	req := &channel.DeleteMonitoredItemsRequest{
		SubscriptionID:   s.id,
		MonitoredItemIDs: []uint32{m.id},
	}
	resp, err := s.client.invoke(ctx, "DeleteMonitoredItems", 1, req)
	if err != nil {
		if errors.Is(err, ErrNotConnected) {
			return nil
		}
		return err
	}
	dr, ok := resp.(*channel.DeleteMonitoredItemsResponse)
	if !ok || len(dr.Results) != 1 {
		return fmt.Errorf("delete-monitored-items returned wrong result count: %w", ErrUnexpectedResponse)
	}
	if sc := dr.Results[0]; sc.IsBad() {
		return serviceStatusErr("DeleteMonitoredItems", sc)
	}
	return nil
}

// teardownSubscriptions closes every subscription locally. Called on
// disconnect; the server-side state died with the session.
func (c *Client) teardownSubscriptions() {
	c.subMu.Lock()
	subs := c.subs
	c.subs = make(map[uint32]*Subscription)
	c.subMu.Unlock()

	for _, s := range subs {
		s.teardown()
	}
}

func (c *Client) removeSubscription(id uint32) {
	c.subMu.Lock()
	delete(c.subs, id)
	c.subMu.Unlock()
}

// MonitoredItem is one monitored attribute. Data changes arrive on the
// Changes channel.
type MonitoredItem struct {
	sub          *Subscription
	id           uint32
	clientHandle uint32
	node         ua.NodeID

	mu     sync.Mutex
	ch     chan ua.DataValue
	closed bool
}

// ID returns the server-assigned monitored item ID.
func (m *MonitoredItem) ID() uint32 { return m.id }

// NodeID returns the monitored node.
func (m *MonitoredItem) NodeID() ua.NodeID { return m.node }

// Changes returns the data change channel. The channel is closed when
// the item, its subscription, or the session goes away.
func (m *MonitoredItem) Changes() <-chan ua.DataValue { return m.ch }

// Close stops monitoring and deletes the item on the server.
func (m *MonitoredItem) Close(ctx context.Context) error {
	return m.sub.removeItem(ctx, m)
}

// deliver queues a value, dropping the oldest queued value when the
// consumer has fallen behind.
func (m *MonitoredItem) deliver(v ua.DataValue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	for {
		select {
		case m.ch <- v:
			return
		default:
		}
		select {
		case <-m.ch:
		default:
		}
	}
}

func (m *MonitoredItem) closeLocal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.ch)
}
