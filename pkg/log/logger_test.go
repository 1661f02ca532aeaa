package log

import (
	"testing"
	"time"
)

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	logger := NoopLogger{}

	event := Event{
		Timestamp: time.Now(),
		SessionID: "test-session",
		Category:  CategoryService,
	}
	logger.Log(event)

	event.Service = &ServiceEvent{Name: "Read", RequestHandle: 1}
	logger.Log(event)

	event.Service = nil
	event.StateChange = &StateChangeEvent{NewState: "CONNECTED"}
	logger.Log(event)

	event.StateChange = nil
	event.Error = &ErrorEventData{Message: "test error"}
	logger.Log(event)
}

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
}

func TestOrNoop(t *testing.T) {
	if OrNoop(nil) == nil {
		t.Error("OrNoop(nil) = nil")
	}

	mock := &mockLogger{}
	if OrNoop(mock) != Logger(mock) {
		t.Error("OrNoop did not pass through a non-nil logger")
	}
}
