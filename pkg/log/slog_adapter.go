package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger. Useful for
// development when you want to see protocol events in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given
// slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	}

	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}
	if event.EndpointURL != "" {
		attrs = append(attrs, slog.String("endpoint", event.EndpointURL))
	}

	// Add type-specific attributes
	switch {
	case event.Service != nil:
		attrs = append(attrs,
			slog.String("service", event.Service.Name),
			slog.Uint64("request_handle", uint64(event.Service.RequestHandle)),
		)
		if event.Service.Operations > 0 {
			attrs = append(attrs, slog.Int("operations", event.Service.Operations))
		}
		if event.Service.ServiceResult != nil {
			attrs = append(attrs, slog.String("service_result", event.Service.ServiceResult.String()))
		}
		if event.Service.RoundTrip != nil {
			attrs = append(attrs, slog.Duration("round_trip", *event.Service.RoundTrip))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Discovery != nil:
		attrs = append(attrs,
			slog.String("instance", event.Discovery.Instance),
			slog.String("host", event.Discovery.Host),
			slog.Int("port", event.Discovery.Port),
			slog.Bool("removed", event.Discovery.Removed),
		)
	case event.Subscription != nil:
		attrs = append(attrs,
			slog.Uint64("subscription_id", uint64(event.Subscription.SubscriptionID)),
			slog.Uint64("client_handle", uint64(event.Subscription.ClientHandle)),
		)
		if event.Subscription.Status != nil {
			attrs = append(attrs, slog.String("status", event.Subscription.Status.String()))
		}
	case event.Error != nil:
		attrs = append(attrs, slog.String("error_msg", event.Error.Message))
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
