// Package addrspace implements a deterministic in-memory OPC UA address
// space for tests and demos: nodes and references, attribute reads and
// writes, paginated browsing with server-side continuation points, and
// method dispatch.
package addrspace

import (
	"errors"
	"fmt"
	"sync"

	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// Errors reported by space construction.
var (
	ErrDuplicateNode = errors.New("node already exists")
	ErrUnknownNode   = errors.New("unknown node")
	ErrNotVariable   = errors.New("node is not a variable")
)

// Access level bits reported for variable nodes.
const (
	AccessLevelCurrentRead  uint8 = 1
	AccessLevelCurrentWrite uint8 = 2
)

// MethodFunc executes a method call. It receives the call's input
// arguments and returns the output arguments, or a bad status when the
// call fails.
type MethodFunc func(input []ua.Variant) ([]ua.Variant, ua.StatusCode)

// Node is one entry in the address space.
type Node struct {
	ID          ua.NodeID
	Class       ua.NodeClass
	BrowseName  ua.QualifiedName
	DisplayName ua.LocalizedText
	Description ua.LocalizedText

	// TypeDefinition is the node's type, reported in browse results.
	// Nil for nodes without one.
	TypeDefinition ua.NodeID

	// Value is the current value of a variable node.
	Value ua.DataValue

	// Writable permits writes to the value attribute.
	Writable bool

	// OnRead, when set, computes the value at read time instead of
	// returning the stored one.
	OnRead func() ua.Variant

	// Method handles calls on a method node.
	Method MethodFunc
}

// Reference is one directed edge between two nodes. Browsing forward
// follows Source to Target; browsing inverse follows Target to Source.
type Reference struct {
	Source ua.NodeID
	Type   ua.NodeID
	Target ua.NodeID
}

// Space is an in-memory address space. Safe for concurrent use.
type Space struct {
	mu    sync.RWMutex
	nodes map[string]*Node

	// Insertion order determines browse result order.
	refs []Reference

	cursors map[ua.ContinuationPoint]*browseCursor
}

// New creates an empty space.
func New() *Space {
	return &Space{
		nodes:   make(map[string]*Node),
		cursors: make(map[ua.ContinuationPoint]*browseCursor),
	}
}

// AddNode inserts a node. The node ID must be unused.
func (s *Space) AddNode(n *Node) error {
	if n == nil || n.ID == nil {
		return fmt.Errorf("add node: %w", ErrUnknownNode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := n.ID.String()
	if _, exists := s.nodes[key]; exists {
		return fmt.Errorf("add node %s: %w", key, ErrDuplicateNode)
	}
	s.nodes[key] = n
	return nil
}

// AddReference inserts an edge. Both endpoints must exist.
func (s *Space) AddReference(source, refType, target ua.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[source.String()]; !ok {
		return fmt.Errorf("reference source %s: %w", source, ErrUnknownNode)
	}
	if _, ok := s.nodes[target.String()]; !ok {
		return fmt.Errorf("reference target %s: %w", target, ErrUnknownNode)
	}
	s.refs = append(s.refs, Reference{Source: source, Type: refType, Target: target})
	return nil
}

// AddFolder inserts a folder object under a parent with an Organizes
// reference.
func (s *Space) AddFolder(parent, id ua.NodeID, name string) (*Node, error) {
	n := &Node{
		ID:             id,
		Class:          ua.NodeClassObject,
		BrowseName:     ua.NewQualifiedName(id.Namespace(), name),
		DisplayName:    ua.NewLocalizedText(name),
		TypeDefinition: ua.FolderType,
	}
	if err := s.AddNode(n); err != nil {
		return nil, err
	}
	if err := s.AddReference(parent, ua.Organizes, id); err != nil {
		return nil, err
	}
	return n, nil
}

// AddObject inserts an object under a parent with a HasComponent
// reference.
func (s *Space) AddObject(parent, id ua.NodeID, name string) (*Node, error) {
	n := &Node{
		ID:             id,
		Class:          ua.NodeClassObject,
		BrowseName:     ua.NewQualifiedName(id.Namespace(), name),
		DisplayName:    ua.NewLocalizedText(name),
		TypeDefinition: ua.BaseObjectType,
	}
	if err := s.AddNode(n); err != nil {
		return nil, err
	}
	if err := s.AddReference(parent, ua.HasComponent, id); err != nil {
		return nil, err
	}
	return n, nil
}

// AddVariable inserts a variable under a parent with a HasComponent
// reference and an initial value.
func (s *Space) AddVariable(parent, id ua.NodeID, name string, value ua.Variant) (*Node, error) {
	n := &Node{
		ID:             id,
		Class:          ua.NodeClassVariable,
		BrowseName:     ua.NewQualifiedName(id.Namespace(), name),
		DisplayName:    ua.NewLocalizedText(name),
		TypeDefinition: ua.BaseDataVariableType,
		Value:          ua.NewDataValue(value, ua.DateTimeNow()),
	}
	if err := s.AddNode(n); err != nil {
		return nil, err
	}
	if err := s.AddReference(parent, ua.HasComponent, id); err != nil {
		return nil, err
	}
	return n, nil
}

// AddMethod inserts a method node under a parent object with a
// HasComponent reference.
func (s *Space) AddMethod(parent, id ua.NodeID, name string, fn MethodFunc) (*Node, error) {
	n := &Node{
		ID:          id,
		Class:       ua.NodeClassMethod,
		BrowseName:  ua.NewQualifiedName(id.Namespace(), name),
		DisplayName: ua.NewLocalizedText(name),
		Method:      fn,
	}
	if err := s.AddNode(n); err != nil {
		return nil, err
	}
	if err := s.AddReference(parent, ua.HasComponent, id); err != nil {
		return nil, err
	}
	return n, nil
}

// Node returns the node with the given ID.
func (s *Space) Node(id ua.NodeID) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id.String()]
	return n, ok
}

// NumNodes returns the number of nodes in the space.
func (s *Space) NumNodes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// SetValue replaces a variable node's value, bypassing the Writable
// flag. The value simulator and tests use this to drive changes.
func (s *Space) SetValue(id ua.NodeID, value ua.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id.String()]
	if !ok {
		return fmt.Errorf("set value %s: %w", id, ErrUnknownNode)
	}
	if n.Class != ua.NodeClassVariable {
		return fmt.Errorf("set value %s: %w", id, ErrNotVariable)
	}
	now := ua.DateTimeNow()
	n.Value = ua.DataValue{
		Value:           value,
		Status:          ua.Good,
		SourceTimestamp: now,
		ServerTimestamp: now,
	}
	return nil
}

// ReadAttribute returns one attribute of one node. Failures are bad
// status codes on the returned value, never errors: the read service
// reports per-slot problems in the result slots.
func (s *Space) ReadAttribute(id ua.NodeID, attr ua.AttributeID) ua.DataValue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id == nil {
		return ua.DataValue{Status: ua.BadNodeIDInvalid}
	}
	n, ok := s.nodes[id.String()]
	if !ok {
		return ua.DataValue{Status: ua.BadNodeIDUnknown}
	}
	if !attr.Valid() {
		return ua.DataValue{Status: ua.BadAttributeIDInvalid}
	}

	now := ua.DateTimeNow()
	switch attr {
	case ua.AttributeIDNodeID:
		return ua.DataValue{Value: n.ID, Status: ua.Good, ServerTimestamp: now}
	case ua.AttributeIDNodeClass:
		return ua.DataValue{Value: n.Class, Status: ua.Good, ServerTimestamp: now}
	case ua.AttributeIDBrowseName:
		return ua.DataValue{Value: n.BrowseName, Status: ua.Good, ServerTimestamp: now}
	case ua.AttributeIDDisplayName:
		return ua.DataValue{Value: n.DisplayName, Status: ua.Good, ServerTimestamp: now}
	case ua.AttributeIDDescription:
		return ua.DataValue{Value: n.Description, Status: ua.Good, ServerTimestamp: now}
	case ua.AttributeIDValue:
		if n.Class != ua.NodeClassVariable {
			return ua.DataValue{Status: ua.BadAttributeIDInvalid}
		}
		if n.OnRead != nil {
			return ua.DataValue{
				Value:           n.OnRead(),
				Status:          ua.Good,
				SourceTimestamp: now,
				ServerTimestamp: now,
			}
		}
		v := n.Value
		v.ServerTimestamp = now
		return v
	case ua.AttributeIDAccessLevel, ua.AttributeIDUserAccessLevel:
		if n.Class != ua.NodeClassVariable {
			return ua.DataValue{Status: ua.BadAttributeIDInvalid}
		}
		level := AccessLevelCurrentRead
		if n.Writable {
			level |= AccessLevelCurrentWrite
		}
		return ua.DataValue{Value: level, Status: ua.Good, ServerTimestamp: now}
	case ua.AttributeIDExecutable, ua.AttributeIDUserExecutable:
		if n.Class != ua.NodeClassMethod {
			return ua.DataValue{Status: ua.BadAttributeIDInvalid}
		}
		return ua.DataValue{Value: n.Method != nil, Status: ua.Good, ServerTimestamp: now}
	default:
		return ua.DataValue{Status: ua.BadAttributeIDInvalid}
	}
}

// WriteAttribute writes one attribute of one node and returns the
// slot's status. Only the value attribute of writable variables
// accepts writes.
func (s *Space) WriteAttribute(id ua.NodeID, attr ua.AttributeID, value ua.DataValue) ua.StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == nil {
		return ua.BadNodeIDInvalid
	}
	n, ok := s.nodes[id.String()]
	if !ok {
		return ua.BadNodeIDUnknown
	}
	if !attr.Valid() {
		return ua.BadAttributeIDInvalid
	}
	if attr != ua.AttributeIDValue {
		return ua.BadNotWritable
	}
	if n.Class != ua.NodeClassVariable {
		return ua.BadAttributeIDInvalid
	}
	if !n.Writable {
		return ua.BadNotWritable
	}

	now := ua.DateTimeNow()
	source := value.SourceTimestamp
	if !source.IsSet() {
		source = now
	}
	n.Value = ua.DataValue{
		Value:           value.Value,
		Status:          ua.Good,
		SourceTimestamp: source,
		ServerTimestamp: now,
	}
	return ua.Good
}

// Call invokes a method on an object. The method must be a method node
// referenced from the object.
func (s *Space) Call(objectID, methodID ua.NodeID, input []ua.Variant) ([]ua.Variant, ua.StatusCode) {
	s.mu.RLock()

	if objectID == nil || methodID == nil {
		s.mu.RUnlock()
		return nil, ua.BadNodeIDInvalid
	}
	if _, ok := s.nodes[objectID.String()]; !ok {
		s.mu.RUnlock()
		return nil, ua.BadNodeIDUnknown
	}
	method, ok := s.nodes[methodID.String()]
	if !ok || method.Class != ua.NodeClassMethod {
		s.mu.RUnlock()
		return nil, ua.BadMethodInvalid
	}
	if !s.hasReferenceLocked(objectID, methodID) {
		s.mu.RUnlock()
		return nil, ua.BadMethodInvalid
	}
	fn := method.Method
	s.mu.RUnlock()

	if fn == nil {
		return nil, ua.BadNotImplemented
	}
	// Run outside the lock: handlers may read or write the space.
	return fn(input)
}

// hasReferenceLocked reports whether any edge connects source to target.
func (s *Space) hasReferenceLocked(source, target ua.NodeID) bool {
	for _, r := range s.refs {
		if sameNodeID(r.Source, source) && sameNodeID(r.Target, target) {
			return true
		}
	}
	return false
}

func sameNodeID(a, b ua.NodeID) bool {
	return ua.CompareNodeIDs(a, b) == 0
}
