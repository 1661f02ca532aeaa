package ua

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NodeID identifies a node in an OPC UA address space. The four concrete
// types (NodeIDNumeric, NodeIDString, NodeIDGUID, NodeIDOpaque) are all
// comparable structs: two NodeID values are equal exactly when their
// namespace index, identifier kind, and identifier value are equal.
type NodeID interface {
	nodeID()

	// Namespace returns the namespace index.
	Namespace() uint16

	// String returns the "ns=<index>;<type>=<value>" form. The "ns=0;"
	// prefix is omitted for the standard namespace.
	String() string
}

// NodeIDNumeric is a NodeID with a numeric identifier.
type NodeIDNumeric struct {
	NamespaceIndex uint16
	ID             uint32
}

// NewNodeIDNumeric makes a NodeID with a numeric identifier.
func NewNodeIDNumeric(ns uint16, id uint32) NodeIDNumeric {
	return NodeIDNumeric{NamespaceIndex: ns, ID: id}
}

func (n NodeIDNumeric) nodeID() {}

// Namespace returns the namespace index.
func (n NodeIDNumeric) Namespace() uint16 { return n.NamespaceIndex }

// String returns a string form such as "i=85" or "ns=2;i=5001".
func (n NodeIDNumeric) String() string {
	if n.NamespaceIndex == 0 {
		return fmt.Sprintf("i=%d", n.ID)
	}
	return fmt.Sprintf("ns=%d;i=%d", n.NamespaceIndex, n.ID)
}

// MarshalText implements encoding.TextMarshaler.
func (n NodeIDNumeric) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// NodeIDString is a NodeID with a string identifier.
type NodeIDString struct {
	NamespaceIndex uint16
	ID             string
}

// NewNodeIDString makes a NodeID with a string identifier.
func NewNodeIDString(ns uint16, id string) NodeIDString {
	return NodeIDString{NamespaceIndex: ns, ID: id}
}

func (n NodeIDString) nodeID() {}

// Namespace returns the namespace index.
func (n NodeIDString) Namespace() uint16 { return n.NamespaceIndex }

// String returns a string form such as "ns=2;s=Demo.Static.Scalar.Float".
func (n NodeIDString) String() string {
	if n.NamespaceIndex == 0 {
		return fmt.Sprintf("s=%s", n.ID)
	}
	return fmt.Sprintf("ns=%d;s=%s", n.NamespaceIndex, n.ID)
}

// MarshalText implements encoding.TextMarshaler.
func (n NodeIDString) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// NodeIDGUID is a NodeID with a GUID identifier.
type NodeIDGUID struct {
	NamespaceIndex uint16
	ID             uuid.UUID
}

// NewNodeIDGUID makes a NodeID with a GUID identifier.
func NewNodeIDGUID(ns uint16, id uuid.UUID) NodeIDGUID {
	return NodeIDGUID{NamespaceIndex: ns, ID: id}
}

func (n NodeIDGUID) nodeID() {}

// Namespace returns the namespace index.
func (n NodeIDGUID) Namespace() uint16 { return n.NamespaceIndex }

// String returns a string form such as
// "ns=2;g=5ce9dbce-5d79-434c-9ac3-1cfba9a6e92c".
func (n NodeIDGUID) String() string {
	if n.NamespaceIndex == 0 {
		return fmt.Sprintf("g=%s", n.ID)
	}
	return fmt.Sprintf("ns=%d;g=%s", n.NamespaceIndex, n.ID)
}

// MarshalText implements encoding.TextMarshaler.
func (n NodeIDGUID) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// NodeIDOpaque is a NodeID with an opaque byte identifier.
type NodeIDOpaque struct {
	NamespaceIndex uint16
	ID             ByteString
}

// NewNodeIDOpaque makes a NodeID with an opaque byte identifier.
func NewNodeIDOpaque(ns uint16, id ByteString) NodeIDOpaque {
	return NodeIDOpaque{NamespaceIndex: ns, ID: id}
}

func (n NodeIDOpaque) nodeID() {}

// Namespace returns the namespace index.
func (n NodeIDOpaque) Namespace() uint16 { return n.NamespaceIndex }

// String returns a string form such as "ns=2;b=YWJjZA==" with the
// identifier bytes in base64.
func (n NodeIDOpaque) String() string {
	if n.NamespaceIndex == 0 {
		return fmt.Sprintf("b=%s", base64.StdEncoding.EncodeToString([]byte(n.ID)))
	}
	return fmt.Sprintf("ns=%d;b=%s", n.NamespaceIndex, base64.StdEncoding.EncodeToString([]byte(n.ID)))
}

// MarshalText implements encoding.TextMarshaler.
func (n NodeIDOpaque) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// ParseNodeID parses the "ns=<index>;<type>=<value>" string form:
//
//	ParseNodeID("i=85")                                     // numeric, ns=0
//	ParseNodeID("ns=2;s=Demo.Static.Scalar.Float")          // string
//	ParseNodeID("ns=2;g=5ce9dbce-5d79-434c-9ac3-1cfba9a6e92c") // GUID
//	ParseNodeID("ns=2;b=YWJjZA==")                          // opaque
//
// Malformed input fails with an error wrapping ErrInvalidFormat.
func ParseNodeID(s string) (NodeID, error) {
	orig := s
	var ns uint64
	if strings.HasPrefix(s, "ns=") {
		pos := strings.Index(s, ";")
		if pos == -1 {
			return nil, fmt.Errorf("node id %q: missing identifier after namespace: %w", orig, ErrInvalidFormat)
		}
		var err error
		ns, err = strconv.ParseUint(s[3:pos], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("node id %q: bad namespace index: %w", orig, ErrInvalidFormat)
		}
		s = s[pos+1:]
	}
	switch {
	case strings.HasPrefix(s, "i="):
		id, err := strconv.ParseUint(s[2:], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("node id %q: bad numeric identifier: %w", orig, ErrInvalidFormat)
		}
		return NodeIDNumeric{uint16(ns), uint32(id)}, nil
	case strings.HasPrefix(s, "s="):
		return NodeIDString{uint16(ns), s[2:]}, nil
	case strings.HasPrefix(s, "g="):
		id, err := uuid.Parse(s[2:])
		if err != nil {
			return nil, fmt.Errorf("node id %q: bad GUID identifier: %w", orig, ErrInvalidFormat)
		}
		return NodeIDGUID{uint16(ns), id}, nil
	case strings.HasPrefix(s, "b="):
		id, err := base64.StdEncoding.DecodeString(s[2:])
		if err != nil {
			return nil, fmt.Errorf("node id %q: bad base64 identifier: %w", orig, ErrInvalidFormat)
		}
		return NodeIDOpaque{uint16(ns), ByteString(id)}, nil
	}
	return nil, fmt.Errorf("node id %q: missing identifier type: %w", orig, ErrInvalidFormat)
}

// MustParseNodeID is ParseNodeID that panics on malformed input. Use only
// for literals known to be valid.
func MustParseNodeID(s string) NodeID {
	n, err := ParseNodeID(s)
	if err != nil {
		panic(err)
	}
	return n
}

// kind orders the identifier kinds for CompareNodeIDs.
func kind(n NodeID) int {
	switch n.(type) {
	case NodeIDNumeric:
		return 0
	case NodeIDString:
		return 1
	case NodeIDGUID:
		return 2
	case NodeIDOpaque:
		return 3
	default:
		return 4
	}
}

// CompareNodeIDs orders two node IDs structurally: by namespace index,
// then identifier kind, then identifier value. It returns -1, 0, or +1.
// A nil NodeID orders before everything else.
func CompareNodeIDs(a, b NodeID) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if an, bn := a.Namespace(), b.Namespace(); an != bn {
		if an < bn {
			return -1
		}
		return 1
	}
	if ak, bk := kind(a), kind(b); ak != bk {
		if ak < bk {
			return -1
		}
		return 1
	}
	switch an := a.(type) {
	case NodeIDNumeric:
		bn := b.(NodeIDNumeric)
		switch {
		case an.ID < bn.ID:
			return -1
		case an.ID > bn.ID:
			return 1
		}
		return 0
	case NodeIDString:
		return strings.Compare(an.ID, b.(NodeIDString).ID)
	case NodeIDGUID:
		return strings.Compare(an.ID.String(), b.(NodeIDGUID).ID.String())
	case NodeIDOpaque:
		return strings.Compare(string(an.ID), string(b.(NodeIDOpaque).ID))
	}
	return 0
}
