// Package continuation tracks outstanding browse continuation points.
//
// Servers return continuation points as opaque byte tokens. Handing the
// raw bytes to callers invites reuse after consumption and reuse across
// sessions, both of which servers reject in unhelpful ways. The Store
// instead maps each token to a generated Handle scoped to the session
// that received it; callers pass handles around and the raw bytes stay
// inside the client.
//
// # Consume-once
//
// A handle resolves to its token exactly once. Concurrent consumers of
// the same handle race and exactly one wins; the others fail with
// ErrUnknownOrExpiredToken, as do handles from another session, handles
// already consumed, and handles whose tokens aged out.
//
// # Lifetime
//
// Tokens age out after a TTL, matching the server-side browse context
// they point into. Dropping a session invalidates all of its handles
// atomically, so a reconnect can never replay cursors from the previous
// activation.
package continuation
