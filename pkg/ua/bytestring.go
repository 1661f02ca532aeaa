package ua

import "encoding/base64"

// ByteString holds opaque protocol bytes. Backing it with a string keeps
// it comparable and usable as a map key.
type ByteString string

// String returns the base64 form.
func (b ByteString) String() string {
	return base64.StdEncoding.EncodeToString([]byte(b))
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteString) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// ContinuationPoint is a server-issued browse cursor. The bytes are
// opaque to the client: they are only ever handed back to the same
// session's BrowseNext. An empty continuation point means "no more
// pages".
type ContinuationPoint ByteString

// IsEmpty reports whether the cursor is absent.
func (c ContinuationPoint) IsEmpty() bool { return len(c) == 0 }
