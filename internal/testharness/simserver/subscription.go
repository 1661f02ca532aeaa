package simserver

import (
	"reflect"
	"slices"
	"time"

	"github.com/opcua-sdk/opcua-go/pkg/channel"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// Publishing interval bounds in milliseconds.
const (
	minPublishingInterval     = 10.0
	defaultPublishingInterval = 500.0
)

// subscription is one server-side subscription with its monitored
// items.
type subscription struct {
	id       uint32
	interval float64
	enabled  bool

	items map[uint32]*monitoredItem

	// stop ends the pump goroutine. Nil when publishing is disabled
	// and samples flow through Publish only.
	stop chan struct{}
}

func (sub *subscription) stopPump() {
	if sub.stop != nil {
		close(sub.stop)
		sub.stop = nil
	}
}

// monitoredItem tracks one sampled attribute. The last value is kept
// so only changes are reported.
type monitoredItem struct {
	id           uint32
	clientHandle uint32
	nodeID       ua.NodeID
	attributeID  ua.AttributeID
	timestamps   ua.TimestampsToReturn

	last    ua.DataValue
	sampled bool
}

func (s *Server) handleCreateSubscription(r *channel.CreateSubscriptionRequest) *channel.CreateSubscriptionResponse {
	interval := r.RequestedPublishingInterval
	if interval <= 0 {
		interval = defaultPublishingInterval
	}
	if interval < minPublishingInterval {
		interval = minPublishingInterval
	}

	keepAlive := r.RequestedMaxKeepAliveCount
	if keepAlive == 0 {
		keepAlive = 10
	}
	lifetime := r.RequestedLifetimeCount
	if lifetime < 3*keepAlive {
		lifetime = 3 * keepAlive
	}

	s.mu.Lock()
	s.nextSubID++
	sub := &subscription{
		id:       s.nextSubID,
		interval: interval,
		enabled:  r.PublishingEnabled,
		items:    make(map[uint32]*monitoredItem),
	}
	s.subs[sub.id] = sub
	if sub.enabled {
		sub.stop = make(chan struct{})
		go s.pump(sub, sub.stop)
	}
	s.mu.Unlock()

	return &channel.CreateSubscriptionResponse{
		ResponseHeader:            respHeader(r, ua.Good),
		SubscriptionID:            sub.id,
		RevisedPublishingInterval: interval,
		RevisedLifetimeCount:      lifetime,
		RevisedMaxKeepAliveCount:  keepAlive,
	}
}

func (s *Server) handleDeleteSubscriptions(r *channel.DeleteSubscriptionsRequest) *channel.DeleteSubscriptionsResponse {
	if len(r.SubscriptionIDs) == 0 {
		return &channel.DeleteSubscriptionsResponse{ResponseHeader: respHeader(r, ua.BadNothingToDo)}
	}

	results := make([]ua.StatusCode, len(r.SubscriptionIDs))
	s.mu.Lock()
	for i, id := range r.SubscriptionIDs {
		sub, ok := s.subs[id]
		if !ok {
			results[i] = ua.BadSubscriptionIDInvalid
			continue
		}
		sub.stopPump()
		delete(s.subs, id)
		results[i] = ua.Good
	}
	s.mu.Unlock()

	return &channel.DeleteSubscriptionsResponse{
		ResponseHeader: respHeader(r, ua.Good),
		Results:        results,
	}
}

func (s *Server) handleCreateMonitoredItems(r *channel.CreateMonitoredItemsRequest) *channel.CreateMonitoredItemsResponse {
	s.mu.Lock()
	sub, ok := s.subs[r.SubscriptionID]
	if !ok {
		s.mu.Unlock()
		return &channel.CreateMonitoredItemsResponse{ResponseHeader: respHeader(r, ua.BadSubscriptionIDInvalid)}
	}
	if len(r.ItemsToCreate) == 0 {
		s.mu.Unlock()
		return &channel.CreateMonitoredItemsResponse{ResponseHeader: respHeader(r, ua.BadNothingToDo)}
	}

	results := make([]channel.MonitoredItemCreateResult, len(r.ItemsToCreate))
	for i, create := range r.ItemsToCreate {
		slot := create.ItemToMonitor
		if probe := s.space.ReadAttribute(slot.NodeID, slot.AttributeID); probe.Status.IsBad() {
			results[i] = channel.MonitoredItemCreateResult{StatusCode: probe.Status}
			continue
		}

		interval := create.RequestedParameters.SamplingInterval
		if interval <= 0 {
			interval = sub.interval
		}
		queue := create.RequestedParameters.QueueSize
		if queue == 0 {
			queue = 1
		}

		s.nextItem++
		item := &monitoredItem{
			id:           s.nextItem,
			clientHandle: create.RequestedParameters.ClientHandle,
			nodeID:       slot.NodeID,
			attributeID:  slot.AttributeID,
			timestamps:   r.TimestampsToReturn,
		}
		sub.items[item.id] = item
		results[i] = channel.MonitoredItemCreateResult{
			StatusCode:              ua.Good,
			MonitoredItemID:         item.id,
			RevisedSamplingInterval: interval,
			RevisedQueueSize:        queue,
		}
	}
	s.mu.Unlock()

	return &channel.CreateMonitoredItemsResponse{
		ResponseHeader: respHeader(r, ua.Good),
		Results:        results,
	}
}

func (s *Server) handleDeleteMonitoredItems(r *channel.DeleteMonitoredItemsRequest) *channel.DeleteMonitoredItemsResponse {
	s.mu.Lock()
	sub, ok := s.subs[r.SubscriptionID]
	if !ok {
		s.mu.Unlock()
		return &channel.DeleteMonitoredItemsResponse{ResponseHeader: respHeader(r, ua.BadSubscriptionIDInvalid)}
	}
	if len(r.MonitoredItemIDs) == 0 {
		s.mu.Unlock()
		return &channel.DeleteMonitoredItemsResponse{ResponseHeader: respHeader(r, ua.BadNothingToDo)}
	}

	results := make([]ua.StatusCode, len(r.MonitoredItemIDs))
	for i, id := range r.MonitoredItemIDs {
		if _, ok := sub.items[id]; !ok {
			results[i] = ua.BadMonitoredItemIDInvalid
			continue
		}
		delete(sub.items, id)
		results[i] = ua.Good
	}
	s.mu.Unlock()

	return &channel.DeleteMonitoredItemsResponse{
		ResponseHeader: respHeader(r, ua.Good),
		Results:        results,
	}
}

// Publish samples every monitored item once and delivers a
// notification for each changed value. The first sample of an item
// always notifies. Tests drive this directly for deterministic
// delivery; enabled subscriptions also run it on their publishing
// interval.
func (s *Server) Publish() int {
	s.mu.Lock()
	ids := make([]uint32, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var pending []channel.Notification
	for _, id := range ids {
		pending = append(pending, s.sampleLocked(s.subs[id])...)
	}
	notify := s.onNotify
	s.mu.Unlock()

	if notify != nil {
		for _, n := range pending {
			notify(n)
		}
	}
	return len(pending)
}

// pump drives one enabled subscription at its publishing interval.
func (s *Server) pump(sub *subscription, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Duration(sub.interval * float64(time.Millisecond)))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if _, ok := s.subs[sub.id]; !ok {
				s.mu.Unlock()
				return
			}
			pending := s.sampleLocked(sub)
			notify := s.onNotify
			s.mu.Unlock()

			if notify != nil {
				for _, n := range pending {
					notify(n)
				}
			}
		}
	}
}

// sampleLocked reads every item of one subscription in item order and
// collects notifications for changed values. Callers hold mu.
func (s *Server) sampleLocked(sub *subscription) []channel.Notification {
	ids := make([]uint32, 0, len(sub.items))
	for id := range sub.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var pending []channel.Notification
	for _, id := range ids {
		item := sub.items[id]
		dv := s.space.ReadAttribute(item.nodeID, item.attributeID)
		if item.sampled && !valueChanged(item.last, dv) {
			continue
		}
		item.last = dv
		item.sampled = true
		pending = append(pending, channel.Notification{
			SubscriptionID: sub.id,
			ClientHandle:   item.clientHandle,
			Value:          filterTimestamps(dv, item.timestamps),
		})
	}
	return pending
}

// valueChanged compares samples by value and status. Timestamps alone
// do not constitute a change.
func valueChanged(old, cur ua.DataValue) bool {
	return old.Status != cur.Status || !reflect.DeepEqual(old.Value, cur.Value)
}
