package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

func TestEventCBORRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 11, 10, 15, 32, 123456789, time.UTC)
	original := Event{
		Timestamp:   ts,
		SessionID:   "abc12345-def6-7890-abcd-ef1234567890",
		EndpointURL: "opc.tcp://plc1:4840",
		Direction:   DirectionOut,
		Category:    CategoryService,
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, original.Timestamp)
	}
	if decoded.SessionID != original.SessionID {
		t.Errorf("SessionID: got %q, want %q", decoded.SessionID, original.SessionID)
	}
	if decoded.EndpointURL != original.EndpointURL {
		t.Errorf("EndpointURL: got %q, want %q", decoded.EndpointURL, original.EndpointURL)
	}
	if decoded.Direction != original.Direction {
		t.Errorf("Direction: got %v, want %v", decoded.Direction, original.Direction)
	}
	if decoded.Category != original.Category {
		t.Errorf("Category: got %v, want %v", decoded.Category, original.Category)
	}
}

func TestServiceEventCBORRoundTrip(t *testing.T) {
	status := ua.Good
	roundTrip := 2 * time.Millisecond

	original := Event{
		Timestamp: time.Now(),
		Direction: DirectionIn,
		Category:  CategoryService,
		Service: &ServiceEvent{
			Name:          "Browse",
			RequestHandle: 100,
			Operations:    3,
			ServiceResult: &status,
			RoundTrip:     &roundTrip,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Service == nil {
		t.Fatal("Service is nil")
	}
	if decoded.Service.Name != "Browse" {
		t.Errorf("Service.Name: got %q", decoded.Service.Name)
	}
	if decoded.Service.RequestHandle != 100 {
		t.Errorf("Service.RequestHandle: got %d", decoded.Service.RequestHandle)
	}
	if decoded.Service.Operations != 3 {
		t.Errorf("Service.Operations: got %d", decoded.Service.Operations)
	}
	if decoded.Service.ServiceResult == nil || *decoded.Service.ServiceResult != ua.Good {
		t.Errorf("Service.ServiceResult: got %v", decoded.Service.ServiceResult)
	}
	if decoded.Service.RoundTrip == nil || *decoded.Service.RoundTrip != roundTrip {
		t.Errorf("Service.RoundTrip: got %v", decoded.Service.RoundTrip)
	}
}

func TestStateChangeEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp: time.Now(),
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			OldState: "CONNECTED",
			NewState: "SESSION_ACTIVATED",
			Reason:   "activation complete",
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.StateChange == nil {
		t.Fatal("StateChange is nil")
	}
	if decoded.StateChange.OldState != "CONNECTED" ||
		decoded.StateChange.NewState != "SESSION_ACTIVATED" ||
		decoded.StateChange.Reason != "activation complete" {
		t.Errorf("StateChange: got %+v", decoded.StateChange)
	}
}

func TestDiscoveryEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp: time.Now(),
		Category:  CategoryDiscovery,
		Discovery: &DiscoveryEvent{
			Instance: "plant-sim",
			Host:     "plc1.local.",
			Port:     4840,
			Removed:  true,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Discovery == nil {
		t.Fatal("Discovery is nil")
	}
	if *decoded.Discovery != *original.Discovery {
		t.Errorf("Discovery: got %+v, want %+v", decoded.Discovery, original.Discovery)
	}
}

func TestSubscriptionEventCBORRoundTrip(t *testing.T) {
	status := ua.BadNodeIDUnknown

	original := Event{
		Timestamp: time.Now(),
		Direction: DirectionIn,
		Category:  CategorySubscription,
		Subscription: &SubscriptionEvent{
			SubscriptionID: 7,
			ClientHandle:   12,
			Status:         &status,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Subscription == nil {
		t.Fatal("Subscription is nil")
	}
	if decoded.Subscription.SubscriptionID != 7 || decoded.Subscription.ClientHandle != 12 {
		t.Errorf("Subscription: got %+v", decoded.Subscription)
	}
	if decoded.Subscription.Status == nil || *decoded.Subscription.Status != ua.BadNodeIDUnknown {
		t.Errorf("Subscription.Status: got %v", decoded.Subscription.Status)
	}
}

func TestErrorEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp: time.Now(),
		Category:  CategoryError,
		Error: &ErrorEventData{
			Message: "request timed out",
			Context: "Read",
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Error == nil {
		t.Fatal("Error is nil")
	}
	if *decoded.Error != *original.Error {
		t.Errorf("Error: got %+v, want %+v", decoded.Error, original.Error)
	}
}

func TestEncodingDeterministic(t *testing.T) {
	event := Event{
		Timestamp:   time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC),
		SessionID:   "session-1",
		EndpointURL: "opc.tcp://plc1:4840",
		Category:    CategoryState,
		StateChange: &StateChangeEvent{NewState: "CONNECTING"},
	}

	a, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	b, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	if !bytes.Equal(a, b) {
		t.Error("identical events encoded to different bytes")
	}
}
