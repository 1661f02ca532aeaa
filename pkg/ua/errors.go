package ua

import "errors"

var (
	// ErrInvalidFormat indicates a malformed string or binary encoding of
	// a value type, such as a node ID string missing its identifier part.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidNodeID indicates a node ID that does not address an
	// existing node.
	ErrInvalidNodeID = errors.New("invalid node id")

	// ErrTimeOutOfRange indicates a timestamp outside the representable
	// DateTime range.
	ErrTimeOutOfRange = errors.New("time outside representable range")
)
