package ua

import (
	"fmt"
	"strconv"
	"strings"
)

// Variant holds any decoded attribute value.
type Variant = any

// QualifiedName is a namespace-qualified browse name.
type QualifiedName struct {
	NamespaceIndex uint16
	Name           string
}

// NewQualifiedName makes a QualifiedName.
func NewQualifiedName(ns uint16, name string) QualifiedName {
	return QualifiedName{NamespaceIndex: ns, Name: name}
}

// ParseQualifiedName parses the "<index>:<name>" form; a missing index
// means namespace 0. A non-numeric index fails with ErrInvalidFormat.
func ParseQualifiedName(s string) (QualifiedName, error) {
	pos := strings.Index(s, ":")
	if pos == -1 {
		return QualifiedName{0, s}, nil
	}
	ns, err := strconv.ParseUint(s[:pos], 10, 16)
	if err != nil {
		return QualifiedName{}, fmt.Errorf("qualified name %q: bad namespace index: %w", s, ErrInvalidFormat)
	}
	return QualifiedName{uint16(ns), s[pos+1:]}, nil
}

// String returns the "<index>:<name>" form, without the index for
// namespace 0.
func (q QualifiedName) String() string {
	if q.NamespaceIndex == 0 {
		return q.Name
	}
	return fmt.Sprintf("%d:%s", q.NamespaceIndex, q.Name)
}

// LocalizedText is human-readable text with an optional locale tag.
type LocalizedText struct {
	Text   string
	Locale string
}

// NewLocalizedText makes a LocalizedText without a locale.
func NewLocalizedText(text string) LocalizedText {
	return LocalizedText{Text: text}
}

func (l LocalizedText) String() string { return l.Text }

// NodeClass classifies a node. The values are single bits so a set of
// classes can be expressed as a mask; zero means "all classes" in
// filters.
type NodeClass uint32

const (
	NodeClassObject        NodeClass = 1
	NodeClassVariable      NodeClass = 2
	NodeClassMethod        NodeClass = 4
	NodeClassObjectType    NodeClass = 8
	NodeClassVariableType  NodeClass = 16
	NodeClassReferenceType NodeClass = 32
	NodeClassDataType      NodeClass = 64
	NodeClassView          NodeClass = 128
)

// Contains reports whether the mask admits the given class. A zero mask
// admits everything.
func (m NodeClass) Contains(c NodeClass) bool {
	return m == 0 || m&c != 0
}

func (m NodeClass) String() string {
	switch m {
	case NodeClassObject:
		return "Object"
	case NodeClassVariable:
		return "Variable"
	case NodeClassMethod:
		return "Method"
	case NodeClassObjectType:
		return "ObjectType"
	case NodeClassVariableType:
		return "VariableType"
	case NodeClassReferenceType:
		return "ReferenceType"
	case NodeClassDataType:
		return "DataType"
	case NodeClassView:
		return "View"
	default:
		return fmt.Sprintf("NODECLASS(%d)", uint32(m))
	}
}

// BrowseDirection selects which reference directions a browse follows.
type BrowseDirection uint32

const (
	BrowseDirectionForward BrowseDirection = 0
	BrowseDirectionInverse BrowseDirection = 1
	BrowseDirectionBoth    BrowseDirection = 2
)

func (d BrowseDirection) String() string {
	switch d {
	case BrowseDirectionForward:
		return "FORWARD"
	case BrowseDirectionInverse:
		return "INVERSE"
	case BrowseDirectionBoth:
		return "BOTH"
	default:
		return "INVALID"
	}
}

// BrowseResultMask selects which reference description fields a browse
// fills beyond the target node ID. Zero requests every field.
type BrowseResultMask uint32

const (
	ResultMaskReferenceType  BrowseResultMask = 1 << 0
	ResultMaskIsForward      BrowseResultMask = 1 << 1
	ResultMaskNodeClass      BrowseResultMask = 1 << 2
	ResultMaskBrowseName     BrowseResultMask = 1 << 3
	ResultMaskDisplayName    BrowseResultMask = 1 << 4
	ResultMaskTypeDefinition BrowseResultMask = 1 << 5

	// ResultMaskAll requests every reference description field.
	ResultMaskAll BrowseResultMask = 0x3F
)

// Includes reports whether the field is requested. The zero mask
// includes every field.
func (m BrowseResultMask) Includes(field BrowseResultMask) bool {
	return m == 0 || m&field != 0
}

// TimestampsToReturn selects which timestamps a read reports.
type TimestampsToReturn uint32

const (
	TimestampsSource  TimestampsToReturn = 0
	TimestampsServer  TimestampsToReturn = 1
	TimestampsBoth    TimestampsToReturn = 2
	TimestampsNeither TimestampsToReturn = 3
)

// DataValue is an attribute value with its quality and timestamps. A bad
// Status marks the slot as failed; Value is then meaningless.
type DataValue struct {
	Value           Variant
	Status          StatusCode
	SourceTimestamp DateTime
	ServerTimestamp DateTime
}

// NewDataValue makes a good-quality DataValue with a source timestamp.
func NewDataValue(v Variant, ts DateTime) DataValue {
	return DataValue{Value: v, Status: Good, SourceTimestamp: ts}
}

// Err returns the status as an error when it is bad, nil otherwise.
func (v DataValue) Err() error {
	if v.Status.IsBad() {
		return v.Status
	}
	return nil
}

// ReadValueID names one attribute of one node inside a read batch.
type ReadValueID struct {
	NodeID      NodeID
	AttributeID AttributeID
}

// ReadResult is one slot of a read batch: the identifiers it was
// requested for plus the value or per-item failure. Result ordering
// always matches the request batch.
type ReadResult struct {
	NodeID      NodeID
	AttributeID AttributeID
	Value       DataValue
}

// ExpandedNodeID extends a NodeID with an optional namespace URI and
// server index for references that may leave the local server.
type ExpandedNodeID struct {
	ServerIndex  uint32
	NamespaceURI string
	NodeID       NodeID
}

// NewExpandedNodeID wraps a local NodeID.
func NewExpandedNodeID(n NodeID) ExpandedNodeID {
	return ExpandedNodeID{NodeID: n}
}

// String returns the "svr=<n>;nsu=<uri>;<nodeid>" form, omitting unset
// parts.
func (e ExpandedNodeID) String() string {
	var sb strings.Builder
	if e.ServerIndex > 0 {
		fmt.Fprintf(&sb, "svr=%d;", e.ServerIndex)
	}
	if e.NamespaceURI != "" {
		fmt.Fprintf(&sb, "nsu=%s;", e.NamespaceURI)
	}
	if e.NodeID != nil {
		sb.WriteString(e.NodeID.String())
	}
	return sb.String()
}

// ReferenceDescription is one edge reported by a browse: the reference
// type, its direction as seen from the browsed node, and the target's
// identity.
type ReferenceDescription struct {
	ReferenceTypeID NodeID
	IsForward       bool
	NodeID          ExpandedNodeID
	BrowseName      QualifiedName
	DisplayName     LocalizedText
	NodeClass       NodeClass
	TypeDefinition  ExpandedNodeID
}
