package fixture

import "fmt"

// Document is the root of an address-space fixture file.
type Document struct {
	// Name identifies the fixture.
	Name string `yaml:"name"`

	// Nodes are created in file order, so parents must be declared
	// before their children.
	Nodes []NodeSpec `yaml:"nodes"`
}

// NodeSpec declares one node of the address space.
type NodeSpec struct {
	// ID is the node identifier (e.g. "ns=2;i=1001").
	ID string `yaml:"id"`

	// Class is one of folder, object, variable or method.
	Class string `yaml:"class"`

	// Name is used for both the browse name and the display name.
	Name string `yaml:"name"`

	// Description is optional display text.
	Description string `yaml:"description,omitempty"`

	// Parent is the node this one hangs under. Defaults to the
	// Objects folder.
	Parent string `yaml:"parent,omitempty"`

	// Reference selects the edge to the parent: organizes, component
	// or property. Folders default to organizes, everything else to
	// component.
	Reference string `yaml:"reference,omitempty"`

	// Value is the initial value of a variable.
	Value any `yaml:"value,omitempty"`

	// Writable permits client writes to the value.
	Writable bool `yaml:"writable,omitempty"`

	// Simulate attaches a random walk to a variable.
	Simulate *SimSpec `yaml:"simulate,omitempty"`
}

// SimSpec declares a random walk for one variable.
type SimSpec struct {
	// Mean is the value the walk reverts to.
	Mean float64 `yaml:"mean"`

	// Deviation bounds how far the walk drifts.
	Deviation float64 `yaml:"deviation"`

	// Period is the time between steps (e.g. "250ms"). Defaults to
	// one second.
	Period string `yaml:"period,omitempty"`

	// Seed fixes the walk's sequence for reproducible runs.
	Seed int64 `yaml:"seed,omitempty"`
}

// LoadError describes a fixture that could not be loaded.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Node identifies the node spec being processed, if any.
	Node string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Node != "" {
		msg = fmt.Sprintf("node %s: %s", e.Node, msg)
	}
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
