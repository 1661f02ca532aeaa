// Package log provides structured protocol logging for the OPC UA
// client.
//
// This package defines the Logger interface and Event types for
// capturing client-side protocol events: service calls, session state
// changes, discovery results, and subscription traffic. It is separate
// from operational logging (slog) - protocol capture provides a
// complete machine-readable event trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/ua/client.ualog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    log.NewFileLogger("/var/log/ua/client.ualog"),
//	)
//
// # Event Categories
//
// Events carry one payload matching their category:
//   - Service: one service call leg (request out or response in)
//   - State: a session state transition
//   - Discovery: an mDNS discovery or removal
//   - Subscription: a monitored-item notification
//   - Error: failures at any layer
//
// # File Format
//
// Log files use CBOR encoding with .ualog extension. The ualog CLI
// tool provides viewing, filtering, and summary capabilities.
package log
