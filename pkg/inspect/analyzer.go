package inspect

import (
	"errors"
	"io"
	"sort"
	"time"

	"github.com/opcua-sdk/opcua-go/pkg/log"
)

// EventSource yields log events in order. Implemented by log.Reader.
type EventSource interface {
	Next() (log.Event, error)
}

// Analyzer accumulates protocol log events into a Report. Events must
// be added in log order; session timelines are reconstructed from the
// event sequence.
type Analyzer struct {
	events        int
	timeStart     time.Time
	timeEnd       time.Time
	notifications int
	discoveries   int
	removals      int
	errors        int

	sessions []*SessionTimeline
	byID     map[string]*SessionTimeline
	current  *SessionTimeline

	services map[string]*ServiceStats
}

// NewAnalyzer creates an empty Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		byID:     make(map[string]*SessionTimeline),
		services: make(map[string]*ServiceStats),
	}
}

// Analyze drains an event source and returns the report.
func Analyze(source EventSource) (*Report, error) {
	a := NewAnalyzer()
	if err := a.AddAll(source); err != nil {
		return nil, err
	}
	return a.Report(), nil
}

// AddAll adds events from the source until it is exhausted.
func (a *Analyzer) AddAll(source EventSource) error {
	for {
		event, err := source.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		a.Add(event)
	}
}

// Add incorporates one event.
func (a *Analyzer) Add(event log.Event) {
	a.events++
	if a.timeStart.IsZero() || event.Timestamp.Before(a.timeStart) {
		a.timeStart = event.Timestamp
	}
	if event.Timestamp.After(a.timeEnd) {
		a.timeEnd = event.Timestamp
	}

	switch event.Category {
	case log.CategoryService:
		a.addService(event)
	case log.CategoryState:
		a.addStateChange(event)
	case log.CategorySubscription:
		a.notifications++
		if tl := a.timelineFor(event); tl != nil {
			tl.Notifications++
		}
	case log.CategoryDiscovery:
		if event.Discovery != nil && event.Discovery.Removed {
			a.removals++
		} else {
			a.discoveries++
		}
	case log.CategoryError:
		a.errors++
		if tl := a.timelineFor(event); tl != nil {
			tl.Errors++
		}
	}
}

// Report finalizes and returns the accumulated report.
func (a *Analyzer) Report() *Report {
	r := &Report{
		Events:            a.events,
		TimeStart:         a.timeStart,
		TimeEnd:           a.timeEnd,
		Sessions:          a.sessions,
		Notifications:     a.notifications,
		Discoveries:       a.discoveries,
		DiscoveryRemovals: a.removals,
		Errors:            a.errors,
	}

	names := make([]string, 0, len(a.services))
	for name := range a.services {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.Services = append(r.Services, a.services[name])
	}

	return r
}

func (a *Analyzer) addService(event log.Event) {
	if event.Service == nil {
		return
	}

	stats := a.services[event.Service.Name]
	if stats == nil {
		stats = &ServiceStats{Name: event.Service.Name}
		a.services[event.Service.Name] = stats
	}

	switch event.Direction {
	case log.DirectionOut:
		stats.Requests++
		stats.Operations += event.Service.Operations
	case log.DirectionIn:
		stats.Responses++
		if event.Service.ServiceResult != nil && event.Service.ServiceResult.IsBad() {
			stats.Failures++
		}
		if event.Service.RoundTrip != nil {
			rtt := *event.Service.RoundTrip
			stats.TotalRTT += rtt
			stats.RTTSamples++
			if stats.MinRTT == 0 || rtt < stats.MinRTT {
				stats.MinRTT = rtt
			}
			if rtt > stats.MaxRTT {
				stats.MaxRTT = rtt
			}
		}
	}

	if tl := a.timelineFor(event); tl != nil {
		tl.ServiceCalls++
		tl.touch(event.Timestamp)
	}
}

// addStateChange threads a transition into a session timeline. State
// events before session activation and after close carry no session
// ID, so the open timeline adopts the ID once one appears.
func (a *Analyzer) addStateChange(event log.Event) {
	if event.StateChange == nil {
		return
	}

	tl := a.current
	switch {
	case event.SessionID != "":
		if existing, ok := a.byID[event.SessionID]; ok {
			tl = existing
		} else if tl != nil && !tl.closed && tl.SessionID == "" {
			// Adopt the freshly activated session's ID
			tl.SessionID = event.SessionID
			a.byID[event.SessionID] = tl
		} else {
			tl = a.newTimeline(event)
			tl.SessionID = event.SessionID
			a.byID[event.SessionID] = tl
		}
	case tl == nil || tl.closed:
		tl = a.newTimeline(event)
	}

	a.current = tl
	tl.touch(event.Timestamp)
	if tl.EndpointURL == "" {
		tl.EndpointURL = event.EndpointURL
	}
	tl.Transitions = append(tl.Transitions, Transition{
		Time:     event.Timestamp,
		OldState: event.StateChange.OldState,
		NewState: event.StateChange.NewState,
		Reason:   event.StateChange.Reason,
	})
	if event.StateChange.NewState == "DISCONNECTED" {
		tl.closed = true
	}
}

func (a *Analyzer) newTimeline(event log.Event) *SessionTimeline {
	tl := &SessionTimeline{
		EndpointURL: event.EndpointURL,
		First:       event.Timestamp,
		Last:        event.Timestamp,
	}
	a.sessions = append(a.sessions, tl)
	return tl
}

// timelineFor resolves the timeline an event belongs to, or nil when
// it cannot be attributed to one.
func (a *Analyzer) timelineFor(event log.Event) *SessionTimeline {
	if event.SessionID != "" {
		if tl, ok := a.byID[event.SessionID]; ok {
			return tl
		}
		tl := a.newTimeline(event)
		tl.SessionID = event.SessionID
		a.byID[event.SessionID] = tl
		return tl
	}
	if a.current != nil && !a.current.closed {
		return a.current
	}
	return nil
}

// Report summarizes an event log.
type Report struct {
	// Events is the total number of events analyzed.
	Events int

	// TimeStart and TimeEnd bound the analyzed events.
	TimeStart time.Time
	TimeEnd   time.Time

	// Sessions lists reconstructed session timelines in order of
	// first appearance.
	Sessions []*SessionTimeline

	// Services lists per-service statistics ordered by name.
	Services []*ServiceStats

	// Notifications counts monitored-item notification events.
	Notifications int

	// Discoveries and DiscoveryRemovals count mDNS events.
	Discoveries       int
	DiscoveryRemovals int

	// Errors counts error events.
	Errors int
}

// Duration returns the time spanned by the analyzed events.
func (r *Report) Duration() time.Duration {
	if r.TimeStart.IsZero() {
		return 0
	}
	return r.TimeEnd.Sub(r.TimeStart)
}

// Session returns the timeline with the given session ID, or nil.
func (r *Report) Session(sessionID string) *SessionTimeline {
	for _, tl := range r.Sessions {
		if tl.SessionID == sessionID {
			return tl
		}
	}
	return nil
}

// Service returns the statistics for a service name, or nil.
func (r *Report) Service(name string) *ServiceStats {
	for _, stats := range r.Services {
		if stats.Name == name {
			return stats
		}
	}
	return nil
}

// SessionTimeline is the reconstructed history of one session, from
// the first connect transition to the final disconnect.
type SessionTimeline struct {
	// SessionID is the session's UUID, or "" when the connection
	// never reached activation.
	SessionID string

	// EndpointURL is the server endpoint, when the log recorded one.
	EndpointURL string

	// First and Last bound the timeline's events.
	First time.Time
	Last  time.Time

	// Transitions is the ordered state history.
	Transitions []Transition

	// ServiceCalls counts service request and response legs.
	ServiceCalls int

	// Notifications counts monitored-item notifications.
	Notifications int

	// Errors counts error events attributed to this session.
	Errors int

	closed bool
}

// Duration returns the lifetime covered by this timeline.
func (tl *SessionTimeline) Duration() time.Duration {
	return tl.Last.Sub(tl.First)
}

// FinalState returns the last recorded state, or "".
func (tl *SessionTimeline) FinalState() string {
	if len(tl.Transitions) == 0 {
		return ""
	}
	return tl.Transitions[len(tl.Transitions)-1].NewState
}

func (tl *SessionTimeline) touch(ts time.Time) {
	if tl.First.IsZero() || ts.Before(tl.First) {
		tl.First = ts
	}
	if ts.After(tl.Last) {
		tl.Last = ts
	}
}

// Transition is one state change in a session timeline.
type Transition struct {
	Time     time.Time
	OldState string
	NewState string
	Reason   string
}

// ServiceStats aggregates the request and response legs of one
// service.
type ServiceStats struct {
	// Name is the service name ("Read", "Browse", ...).
	Name string

	// Requests and Responses count the two legs.
	Requests  int
	Responses int

	// Operations is the total batch size across requests.
	Operations int

	// Failures counts responses with a bad service result.
	Failures int

	// Round-trip aggregates over responses that carried one.
	MinRTT     time.Duration
	MaxRTT     time.Duration
	TotalRTT   time.Duration
	RTTSamples int
}

// AvgRTT returns the mean round-trip time, or 0 without samples.
func (s *ServiceStats) AvgRTT() time.Duration {
	if s.RTTSamples == 0 {
		return 0
	}
	return s.TotalRTT / time.Duration(s.RTTSamples)
}
