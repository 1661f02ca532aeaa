package inspect

import (
	"fmt"
	"strings"
	"time"

	"github.com/opcua-sdk/opcua-go/pkg/log"
)

// timeLayout is the timestamp format for event lines.
const timeLayout = "15:04:05.000"

// Formatter formats analysis output.
type Formatter struct {
	// ShowHandles includes request handles on service lines
	ShowHandles bool

	// ShowEndpoints includes endpoint URLs on session headers
	ShowEndpoints bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowHandles:   true,
		ShowEndpoints: true,
		IndentWidth:   2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatEvent renders one event as a single line for log dumps.
func (f *Formatter) FormatEvent(event log.Event) string {
	ts := event.Timestamp.Format(timeLayout)

	switch event.Category {
	case log.CategoryService:
		return f.formatServiceLine(ts, event)

	case log.CategoryState:
		if event.StateChange == nil {
			return fmt.Sprintf("%s ---  STATE", ts)
		}
		line := fmt.Sprintf("%s ---  STATE %s -> %s", ts,
			event.StateChange.OldState, event.StateChange.NewState)
		if event.StateChange.Reason != "" {
			line += fmt.Sprintf(" (%s)", event.StateChange.Reason)
		}
		return line

	case log.CategoryDiscovery:
		if event.Discovery == nil {
			return fmt.Sprintf("%s %-4s DISCOVERY", ts, event.Direction)
		}
		if event.Discovery.Removed {
			return fmt.Sprintf("%s %-4s DISCOVERY removed %s", ts,
				event.Direction, event.Discovery.Instance)
		}
		return fmt.Sprintf("%s %-4s DISCOVERY found %s at %s:%d", ts,
			event.Direction, event.Discovery.Instance,
			event.Discovery.Host, event.Discovery.Port)

	case log.CategorySubscription:
		if event.Subscription == nil {
			return fmt.Sprintf("%s %-4s NOTIFICATION", ts, event.Direction)
		}
		line := fmt.Sprintf("%s %-4s NOTIFICATION sub=%d handle=%d", ts,
			event.Direction, event.Subscription.SubscriptionID,
			event.Subscription.ClientHandle)
		if event.Subscription.Status != nil {
			line += fmt.Sprintf(" status=%s", event.Subscription.Status)
		}
		return line

	case log.CategoryError:
		if event.Error == nil {
			return fmt.Sprintf("%s ---  ERROR", ts)
		}
		if event.Error.Context != "" {
			return fmt.Sprintf("%s ---  ERROR %s: %s", ts,
				event.Error.Context, event.Error.Message)
		}
		return fmt.Sprintf("%s ---  ERROR %s", ts, event.Error.Message)

	default:
		return fmt.Sprintf("%s ---  %s", ts, event.Category)
	}
}

func (f *Formatter) formatServiceLine(ts string, event log.Event) string {
	if event.Service == nil {
		return fmt.Sprintf("%s %-4s SERVICE", ts, event.Direction)
	}

	line := fmt.Sprintf("%s %-4s %s", ts, event.Direction, event.Service.Name)
	if event.Direction == log.DirectionOut && event.Service.Operations > 0 {
		line += fmt.Sprintf(" ops=%d", event.Service.Operations)
	}
	if event.Direction == log.DirectionIn {
		if event.Service.ServiceResult != nil {
			line += fmt.Sprintf(" status=%s", event.Service.ServiceResult)
		}
		if event.Service.RoundTrip != nil {
			line += fmt.Sprintf(" rtt=%s", FormatDuration(*event.Service.RoundTrip))
		}
	}
	if f.ShowHandles && event.Service.RequestHandle != 0 {
		line += fmt.Sprintf(" handle=%d", event.Service.RequestHandle)
	}
	return line
}

// FormatReport renders the full analysis summary.
func (f *Formatter) FormatReport(r *Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Events: %d", r.Events))
	if r.Events > 0 {
		sb.WriteString(fmt.Sprintf(" over %s (%s - %s)",
			FormatDuration(r.Duration()),
			r.TimeStart.Format(timeLayout),
			r.TimeEnd.Format(timeLayout)))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Sessions: %d  Notifications: %d  Discoveries: %d (%d removed)  Errors: %d\n",
		len(r.Sessions), r.Notifications, r.Discoveries, r.DiscoveryRemovals, r.Errors))

	if len(r.Sessions) > 0 {
		sb.WriteString("---\n")
		for _, tl := range r.Sessions {
			sb.WriteString(f.FormatTimeline(tl))
		}
	}

	if len(r.Services) > 0 {
		sb.WriteString("---\n")
		sb.WriteString(f.FormatServiceTable(r.Services))
	}

	return sb.String()
}

// FormatTimeline renders one session's header and state history.
func (f *Formatter) FormatTimeline(tl *SessionTimeline) string {
	var sb strings.Builder

	id := tl.SessionID
	if id == "" {
		id = "(no session)"
	}
	header := fmt.Sprintf("Session %s", id)
	if f.ShowEndpoints && tl.EndpointURL != "" {
		header += fmt.Sprintf(" %s", tl.EndpointURL)
	}
	header += fmt.Sprintf("  %s, %d calls, %d notifications, %d errors",
		FormatDuration(tl.Duration()), tl.ServiceCalls, tl.Notifications, tl.Errors)
	sb.WriteString(header + "\n")

	for _, tr := range tl.Transitions {
		line := fmt.Sprintf("%s %s -> %s",
			tr.Time.Format(timeLayout), tr.OldState, tr.NewState)
		if tr.Reason != "" {
			line += fmt.Sprintf(" (%s)", tr.Reason)
		}
		sb.WriteString(f.Indent(1, line) + "\n")
	}

	return sb.String()
}

// FormatServiceTable renders per-service statistics as a table.
func (f *Formatter) FormatServiceTable(stats []*ServiceStats) string {
	if len(stats) == 0 {
		return "(no service calls)\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-16s %6s %6s %6s %6s %10s %10s\n",
		"SERVICE", "REQ", "RESP", "OPS", "FAIL", "AVG RTT", "MAX RTT"))
	for _, s := range stats {
		sb.WriteString(fmt.Sprintf("%-16s %6d %6d %6d %6d %10s %10s\n",
			s.Name, s.Requests, s.Responses, s.Operations, s.Failures,
			FormatDuration(s.AvgRTT()), FormatDuration(s.MaxRTT)))
	}
	return sb.String()
}

// FormatDuration renders a duration compactly for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d == 0:
		return "-"
	case d < time.Millisecond:
		return fmt.Sprintf("%dus", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}
