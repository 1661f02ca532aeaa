// Package session tracks the client's session state.
//
// The Tracker mirrors confirmed transport transitions into a snapshot
// readers can poll without blocking. It never predicts: state only
// moves when the transport delivers the corresponding lifecycle event,
// so the snapshot is always something the server actually confirmed.
//
// # States
//
// A session moves through five states:
//
//	DISCONNECTED -> CONNECTING -> CONNECTED -> SESSION_ACTIVATED
//	                                                 |
//	                               SESSION_CLOSING <-+
//	                                     |
//	                               DISCONNECTED
//
// A fault in any state drops straight to DISCONNECTED. Service calls
// require SESSION_ACTIVATED; everything else fails fast without
// touching the network.
//
// # Session identity
//
// Each activation gets its own session ID. Continuation points and
// subscriptions are scoped to that ID, so state left over from a
// previous activation can never leak into the next one.
package session
