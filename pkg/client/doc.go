// Package client provides the high-level OPC UA client API.
//
// A Client wraps a channel.Transport and adds session tracking, batch
// attribute reads and writes, paginated browsing with managed
// continuation handles, method calls, and data change subscriptions.
//
// # Basic Usage
//
//	c := client.New(transport, client.DefaultConfig())
//	if err := c.Connect(ctx); err != nil {
//		return err
//	}
//	defer c.Close(ctx)
//
//	result, err := c.ReadAttribute(ctx, ua.ServerStatusCurrentTime, ua.AttributeIDValue)
//	if err != nil {
//		return err
//	}
//	fmt.Println(result.Value.Value)
//
// # Sessions
//
// Every operation requires an activated session. When none is active
// the call fails fast with ErrNotConnected before any network I/O.
// Transport-level timeouts surface as ErrRequestTimeout, which also
// matches ErrNotConnected under errors.Is: after a timeout the caller
// cannot know whether the session survived, so both conditions demand
// the same recovery.
//
// # Browsing
//
// Browse returns at most one page of references. When the server holds
// more, the result carries a continuation handle; pass it to
// BrowseNext to fetch the next page, or BrowseRelease to discard the
// server-side cursor. Handles are single-use and bound to the session
// that issued them. BrowseAll follows continuations to exhaustion and
// returns the merged reference list.
//
// # Subscriptions
//
// CreateSubscription registers a server-side subscription; monitored
// items deliver data changes on a buffered channel that drops the
// oldest value when the consumer falls behind. All subscriptions are
// torn down when the session disconnects.
package client
