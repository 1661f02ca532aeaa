// Package channel defines the boundary between the client core and the
// secure-channel engine that carries OPC UA traffic.
//
// The package contains no networking. It declares the Transport
// interface the core talks to, the typed service payloads exchanged
// through it, and the connection lifecycle events the engine reports
// back. Concrete transports (a real secure-channel stack, or the
// in-memory simulator used in tests) live elsewhere and satisfy the
// interface.
//
// # Transports
//
// A Transport owns one secure channel and one session. Invoke sends a
// single service request and suspends until the response, the context
// deadline, or the request timeout. Transports deliver lifecycle events
// through the handler installed with SetEventHandler and subscription
// notifications through SetNotificationHandler; both handlers are
// called from the transport's delivery goroutine and must not block.
//
// # Services
//
// Service payloads mirror the OPC UA services the client core uses:
// Read, Write, Browse, BrowseNext, Call, and the subscription set. Each
// request embeds RequestHeader and each response embeds ResponseHeader;
// the response header's ServiceResult is the service-level status,
// separate from the per-operation status codes inside the results.
//
// # Events
//
// Events reflect confirmed transitions of the underlying channel and
// session: CONNECTING, CHANNEL_OPENED, SESSION_ACTIVATED (carrying the
// activation's session ID), SESSION_CLOSING, DISCONNECTED. The engine
// never predicts; an event is only emitted once the transition has
// happened.
package channel
