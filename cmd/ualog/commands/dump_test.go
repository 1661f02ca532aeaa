package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opcua-sdk/opcua-go/pkg/log"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

var testBase = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

// testEvents is a short client run: connect and activate, one read
// round trip, a notification, a discovery and an error.
func testEvents() []log.Event {
	status := ua.Good
	rtt := 5 * time.Millisecond
	return []log.Event{
		{
			Timestamp:   testBase,
			EndpointURL: "opc.tcp://plc1:4840",
			Category:    log.CategoryState,
			StateChange: &log.StateChangeEvent{OldState: "CONNECTING", NewState: "CONNECTED"},
		},
		{
			Timestamp:   testBase.Add(5 * time.Millisecond),
			SessionID:   "sess-a",
			EndpointURL: "opc.tcp://plc1:4840",
			Category:    log.CategoryState,
			StateChange: &log.StateChangeEvent{OldState: "CONNECTED", NewState: "ACTIVATED"},
		},
		{
			Timestamp: testBase.Add(10 * time.Millisecond),
			SessionID: "sess-a",
			Direction: log.DirectionOut,
			Category:  log.CategoryService,
			Service:   &log.ServiceEvent{Name: "Read", RequestHandle: 1, Operations: 2},
		},
		{
			Timestamp: testBase.Add(15 * time.Millisecond),
			SessionID: "sess-a",
			Direction: log.DirectionIn,
			Category:  log.CategoryService,
			Service:   &log.ServiceEvent{Name: "Read", RequestHandle: 1, ServiceResult: &status, RoundTrip: &rtt},
		},
		{
			Timestamp:    testBase.Add(20 * time.Millisecond),
			SessionID:    "sess-a",
			Direction:    log.DirectionIn,
			Category:     log.CategorySubscription,
			Subscription: &log.SubscriptionEvent{SubscriptionID: 1, ClientHandle: 9},
		},
		{
			Timestamp: testBase.Add(25 * time.Millisecond),
			Category:  log.CategoryDiscovery,
			Discovery: &log.DiscoveryEvent{Instance: "plc1", Host: "plc1.local", Port: 4840},
		},
		{
			Timestamp: testBase.Add(30 * time.Millisecond),
			SessionID: "sess-a",
			Category:  log.CategoryError,
			Error:     &log.ErrorEventData{Message: "request timed out", Context: "Read"},
		},
	}
}

// writeTestLog writes the test events into a fresh log file.
func writeTestLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.ualog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("create log: %v", err)
	}
	for _, event := range testEvents() {
		logger.Log(event)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("close log: %v", err)
	}
	return path
}

func TestRunDump(t *testing.T) {
	path := writeTestLog(t)

	var buf bytes.Buffer
	if err := RunDump(path, DumpOptions{}, &buf); err != nil {
		t.Fatalf("dump: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "STATE CONNECTING -> CONNECTED") {
		t.Errorf("missing state line in:\n%s", output)
	}
	if !strings.Contains(output, "OUT  Read ops=2 handle=1") {
		t.Errorf("missing request line in:\n%s", output)
	}
	if !strings.Contains(output, "status=Good") {
		t.Errorf("missing response status in:\n%s", output)
	}
	if !strings.Contains(output, "NOTIFICATION sub=1 handle=9") {
		t.Errorf("missing notification line in:\n%s", output)
	}
	if !strings.Contains(output, "DISCOVERY found plc1") {
		t.Errorf("missing discovery line in:\n%s", output)
	}
	if !strings.HasSuffix(output, "7 events\n") {
		t.Errorf("missing event count in:\n%s", output)
	}
}

func TestRunDumpFiltered(t *testing.T) {
	path := writeTestLog(t)
	service := log.CategoryService

	var buf bytes.Buffer
	opts := DumpOptions{Filter: log.Filter{Category: &service}}
	if err := RunDump(path, opts, &buf); err != nil {
		t.Fatalf("dump: %v", err)
	}
	output := buf.String()

	if !strings.HasSuffix(output, "2 events\n") {
		t.Errorf("service filter should keep 2 events, got:\n%s", output)
	}
	if strings.Contains(output, "STATE") || strings.Contains(output, "DISCOVERY") {
		t.Errorf("filtered dump leaked other categories:\n%s", output)
	}
}

func TestRunDumpHideHandles(t *testing.T) {
	path := writeTestLog(t)

	var buf bytes.Buffer
	if err := RunDump(path, DumpOptions{HideHandles: true}, &buf); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if strings.Contains(buf.String(), "handle=1") {
		t.Errorf("handles should be hidden:\n%s", buf.String())
	}
}

func TestRunDumpMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := RunDump(filepath.Join(t.TempDir(), "absent.ualog"), DumpOptions{}, &buf); err == nil {
		t.Fatal("dump of a missing file should fail")
	}
}

func TestParseDirectionFlag(t *testing.T) {
	tests := []struct {
		input   string
		want    log.Direction
		wantErr bool
	}{
		{"in", log.DirectionIn, false},
		{"OUT", log.DirectionOut, false},
		{"sideways", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDirectionFlag(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDirectionFlag(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseDirectionFlag(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseCategoryFlag(t *testing.T) {
	tests := []struct {
		input   string
		want    log.Category
		wantErr bool
	}{
		{"service", log.CategoryService, false},
		{"State", log.CategoryState, false},
		{"discovery", log.CategoryDiscovery, false},
		{"subscription", log.CategorySubscription, false},
		{"error", log.CategoryError, false},
		{"message", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseCategoryFlag(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCategoryFlag(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseCategoryFlag(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
