package inspect

import (
	"strings"
	"testing"
	"time"

	"github.com/opcua-sdk/opcua-go/pkg/log"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

func TestFormatEventService(t *testing.T) {
	f := NewFormatter()

	tests := []struct {
		name     string
		event    log.Event
		expected string
	}{
		{
			name:     "request with operations",
			event:    serviceOut(0, "sess-1", "Read", 7, 3),
			expected: "09:30:00.000 OUT  Read ops=3 handle=7",
		},
		{
			name:     "response with status and rtt",
			event:    serviceIn(0, "sess-1", "Read", 7, ua.Good, 5*time.Millisecond),
			expected: "09:30:00.000 IN   Read status=Good rtt=5.0ms handle=7",
		},
		{
			name:     "failed response",
			event:    serviceIn(0, "sess-1", "Browse", 2, ua.BadTimeout, 1500*time.Millisecond),
			expected: "09:30:00.000 IN   Browse status=BadTimeout rtt=1.50s handle=2",
		},
		{
			name:     "request without handle",
			event:    serviceOut(0, "", "FindServers", 0, 0),
			expected: "09:30:00.000 OUT  FindServers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.FormatEvent(tt.event)
			if got != tt.expected {
				t.Errorf("FormatEvent = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFormatEventServiceHideHandles(t *testing.T) {
	f := NewFormatter()
	f.ShowHandles = false

	got := f.FormatEvent(serviceOut(0, "sess-1", "Read", 7, 3))
	if strings.Contains(got, "handle=") {
		t.Errorf("handle should be hidden, got %q", got)
	}
}

func TestFormatEventState(t *testing.T) {
	f := NewFormatter()

	got := f.FormatEvent(stateEvent(0, "", "CONNECTING", "CONNECTED", ""))
	want := "09:30:00.000 ---  STATE CONNECTING -> CONNECTED"
	if got != want {
		t.Errorf("FormatEvent = %q, want %q", got, want)
	}

	got = f.FormatEvent(stateEvent(0, "", "SESSION_ACTIVATED", "DISCONNECTED", "connection lost"))
	want = "09:30:00.000 ---  STATE SESSION_ACTIVATED -> DISCONNECTED (connection lost)"
	if got != want {
		t.Errorf("FormatEvent with reason = %q, want %q", got, want)
	}
}

func TestFormatEventDiscovery(t *testing.T) {
	f := NewFormatter()

	got := f.FormatEvent(discoveryEvent(0, "plc-1", false))
	want := "09:30:00.000 IN   DISCOVERY found plc-1 at plc1.local:4840"
	if got != want {
		t.Errorf("FormatEvent = %q, want %q", got, want)
	}

	got = f.FormatEvent(discoveryEvent(0, "plc-1", true))
	want = "09:30:00.000 IN   DISCOVERY removed plc-1"
	if got != want {
		t.Errorf("FormatEvent removed = %q, want %q", got, want)
	}
}

func TestFormatEventSubscription(t *testing.T) {
	f := NewFormatter()

	got := f.FormatEvent(notification(0, "sess-1", 3, 12))
	want := "09:30:00.000 IN   NOTIFICATION sub=3 handle=12"
	if got != want {
		t.Errorf("FormatEvent = %q, want %q", got, want)
	}

	event := notification(0, "sess-1", 3, 12)
	status := ua.BadNodeIDUnknown
	event.Subscription.Status = &status
	got = f.FormatEvent(event)
	if !strings.HasSuffix(got, "status=BadNodeIDUnknown") {
		t.Errorf("FormatEvent with status = %q, want status suffix", got)
	}
}

func TestFormatEventError(t *testing.T) {
	f := NewFormatter()

	got := f.FormatEvent(errorEvent(0, "", "timeout expired", "Read"))
	want := "09:30:00.000 ---  ERROR Read: timeout expired"
	if got != want {
		t.Errorf("FormatEvent = %q, want %q", got, want)
	}

	got = f.FormatEvent(errorEvent(0, "", "timeout expired", ""))
	want = "09:30:00.000 ---  ERROR timeout expired"
	if got != want {
		t.Errorf("FormatEvent without context = %q, want %q", got, want)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{0, "-"},
		{250 * time.Microsecond, "250us"},
		{999 * time.Microsecond, "999us"},
		{time.Millisecond, "1.0ms"},
		{12500 * time.Microsecond, "12.5ms"},
		{999 * time.Millisecond, "999.0ms"},
		{1500 * time.Millisecond, "1.50s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Minute, "2m0s"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := FormatDuration(tt.d)
			if got != tt.expected {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.expected)
			}
		})
	}
}

func TestFormatterIndent(t *testing.T) {
	f := &Formatter{}

	got := f.Indent(2, "hello")
	if !strings.HasPrefix(got, "    ") {
		t.Errorf("Indent should add 4 spaces at depth 2, got %q", got)
	}
	if !strings.HasSuffix(got, "hello") {
		t.Errorf("Indent should preserve content, got %q", got)
	}

	f.IndentWidth = 4
	got = f.Indent(1, "x")
	if got != "    x" {
		t.Errorf("Indent with width 4 = %q, want 4 spaces", got)
	}
}

func testTimeline() *SessionTimeline {
	return &SessionTimeline{
		SessionID:   "sess-1",
		EndpointURL: "opc.tcp://plc1.local:4840",
		First:       testBase,
		Last:        testBase.Add(500 * time.Millisecond),
		Transitions: []Transition{
			{Time: testBase, OldState: "DISCONNECTED", NewState: "CONNECTING"},
			{Time: testBase.Add(30 * time.Millisecond), OldState: "CONNECTED", NewState: "SESSION_ACTIVATED"},
			{Time: testBase.Add(500 * time.Millisecond), OldState: "SESSION_CLOSING", NewState: "DISCONNECTED", Reason: "client close"},
		},
		ServiceCalls:  4,
		Notifications: 2,
		Errors:        1,
	}
}

func TestFormatTimeline(t *testing.T) {
	f := NewFormatter()

	got := f.FormatTimeline(testTimeline())

	if !strings.Contains(got, "Session sess-1") {
		t.Errorf("missing session header in %q", got)
	}
	if !strings.Contains(got, "opc.tcp://plc1.local:4840") {
		t.Errorf("missing endpoint in %q", got)
	}
	if !strings.Contains(got, "500.0ms, 4 calls, 2 notifications, 1 errors") {
		t.Errorf("missing counters in %q", got)
	}
	if !strings.Contains(got, "  09:30:00.000 DISCONNECTED -> CONNECTING\n") {
		t.Errorf("missing indented transition in %q", got)
	}
	if !strings.Contains(got, "(client close)") {
		t.Errorf("missing transition reason in %q", got)
	}

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("lines = %d, want header plus 3 transitions", len(lines))
	}
}

func TestFormatTimelineNoSession(t *testing.T) {
	f := NewFormatter()

	tl := testTimeline()
	tl.SessionID = ""
	got := f.FormatTimeline(tl)
	if !strings.Contains(got, "Session (no session)") {
		t.Errorf("missing placeholder for empty session ID in %q", got)
	}
}

func TestFormatTimelineHideEndpoints(t *testing.T) {
	f := NewFormatter()
	f.ShowEndpoints = false

	got := f.FormatTimeline(testTimeline())
	if strings.Contains(got, "opc.tcp://") {
		t.Errorf("endpoint should be hidden, got %q", got)
	}
}

func TestFormatServiceTable(t *testing.T) {
	f := NewFormatter()

	stats := []*ServiceStats{
		{
			Name:       "Browse",
			Requests:   1,
			Responses:  1,
			Operations: 1,
			MinRTT:     6 * time.Millisecond,
			MaxRTT:     6 * time.Millisecond,
			TotalRTT:   6 * time.Millisecond,
			RTTSamples: 1,
		},
		{
			Name:       "Read",
			Requests:   2,
			Responses:  2,
			Operations: 8,
			Failures:   1,
			MinRTT:     4 * time.Millisecond,
			MaxRTT:     8 * time.Millisecond,
			TotalRTT:   12 * time.Millisecond,
			RTTSamples: 2,
		},
	}

	got := f.FormatServiceTable(stats)

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header plus 2 rows", len(lines))
	}
	if !strings.Contains(lines[0], "SERVICE") || !strings.Contains(lines[0], "AVG RTT") {
		t.Errorf("header = %q, want column titles", lines[0])
	}
	if !strings.Contains(lines[2], "Read") {
		t.Errorf("row = %q, want Read row", lines[2])
	}
	if !strings.Contains(lines[2], "6.0ms") || !strings.Contains(lines[2], "8.0ms") {
		t.Errorf("row = %q, want avg 6.0ms and max 8.0ms", lines[2])
	}
}

func TestFormatServiceTableEmpty(t *testing.T) {
	f := NewFormatter()

	got := f.FormatServiceTable(nil)
	if got != "(no service calls)\n" {
		t.Errorf("FormatServiceTable(nil) = %q", got)
	}
}

func TestFormatReport(t *testing.T) {
	f := NewFormatter()

	r := &Report{
		Events:    12,
		TimeStart: testBase,
		TimeEnd:   testBase.Add(2 * time.Second),
		Sessions:  []*SessionTimeline{testTimeline()},
		Services: []*ServiceStats{
			{Name: "Read", Requests: 2, Responses: 2},
		},
		Notifications:     2,
		Discoveries:       1,
		DiscoveryRemovals: 0,
		Errors:            1,
	}

	got := f.FormatReport(r)

	for _, want := range []string{
		"Events: 12 over 2.00s (09:30:00.000 - 09:30:02.000)",
		"Sessions: 1  Notifications: 2  Discoveries: 1 (0 removed)  Errors: 1",
		"Session sess-1",
		"SERVICE",
		"Read",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
	if strings.Count(got, "---\n") != 2 {
		t.Errorf("report should separate sessions and services:\n%s", got)
	}
}

func TestFormatReportEmpty(t *testing.T) {
	f := NewFormatter()

	got := f.FormatReport(&Report{})
	if !strings.Contains(got, "Events: 0") {
		t.Errorf("empty report = %q", got)
	}
	if strings.Contains(got, "---") {
		t.Errorf("empty report should have no sections, got %q", got)
	}
}

func TestFormatReportFromAnalyzer(t *testing.T) {
	f := NewFormatter()

	events := lifecycleEvents("sess-1", 0)
	events = append(events,
		serviceOut(40*time.Millisecond, "sess-1", "Read", 1, 3),
		serviceIn(45*time.Millisecond, "sess-1", "Read", 1, ua.Good, 5*time.Millisecond),
	)

	report, err := Analyze(&eventSource{events: events})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	got := f.FormatReport(report)
	if !strings.Contains(got, "Session sess-1") {
		t.Errorf("report missing session timeline:\n%s", got)
	}
	if !strings.Contains(got, "Read") {
		t.Errorf("report missing service table row:\n%s", got)
	}
}
