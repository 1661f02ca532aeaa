// Package fixture loads simulated address spaces from YAML files. A
// fixture file declares nodes hung under the standard namespace
// skeleton plus optional random-walk simulations for its variables.
package fixture

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opcua-sdk/opcua-go/internal/testharness/addrspace"
	"github.com/opcua-sdk/opcua-go/internal/testharness/simserver"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// DefaultSimPeriod is used when a simulation declares no period.
const DefaultSimPeriod = time.Second

// Fixture is a loaded address space plus the simulations declared for
// its variables.
type Fixture struct {
	Name        string
	Space       *addrspace.Space
	Simulations []Simulation
}

// Simulation names one variable to drive with a random walk.
type Simulation struct {
	NodeID    ua.NodeID
	Mean      float64
	Deviation float64
	Period    time.Duration
	Seed      int64
}

// Start wires every declared simulation into the server. The returned
// function stops them all.
func (f *Fixture) Start(srv *simserver.Server) func() {
	stops := make([]func(), 0, len(f.Simulations))
	for _, sim := range f.Simulations {
		w := simserver.NewWalker(sim.Mean, sim.Deviation, sim.Seed)
		stops = append(stops, srv.Simulate(sim.NodeID, w, sim.Period))
	}
	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}

// Parse builds a fixture from YAML bytes. The address space starts
// from the standard namespace skeleton; the document's nodes are added
// on top.
func Parse(data []byte) (*Fixture, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}
	if len(doc.Nodes) == 0 {
		return nil, &LoadError{
			Message: "fixture must declare at least one node",
		}
	}

	f := &Fixture{
		Name:  doc.Name,
		Space: addrspace.Default(),
	}
	for _, spec := range doc.Nodes {
		if err := f.addNode(spec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Load reads and parses one fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	f, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{
			File:    path,
			Message: err.Error(),
		}
	}
	return f, nil
}

// LoadDirectory loads every fixture in a directory. Only files with
// .yaml or .yml extensions are considered.
func LoadDirectory(dir string) ([]*Fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	var fixtures []*Fixture
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		f, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

// addNode validates one spec and inserts it into the space.
func (f *Fixture) addNode(spec NodeSpec) error {
	if spec.ID == "" {
		return &LoadError{Node: spec.Name, Message: "node ID is required"}
	}
	if spec.Name == "" {
		return &LoadError{Node: spec.ID, Message: "node name is required"}
	}

	id, err := ua.ParseNodeID(spec.ID)
	if err != nil {
		return &LoadError{Node: spec.ID, Message: "bad node ID", Cause: err}
	}

	parent := ua.NodeID(ua.ObjectsFolder)
	if spec.Parent != "" {
		parent, err = ua.ParseNodeID(spec.Parent)
		if err != nil {
			return &LoadError{Node: spec.ID, Message: "bad parent ID", Cause: err}
		}
	}

	n := &addrspace.Node{
		ID:          id,
		BrowseName:  ua.NewQualifiedName(id.Namespace(), spec.Name),
		DisplayName: ua.NewLocalizedText(spec.Name),
	}
	if spec.Description != "" {
		n.Description = ua.NewLocalizedText(spec.Description)
	}

	switch spec.Class {
	case "folder":
		n.Class = ua.NodeClassObject
		n.TypeDefinition = ua.FolderType
	case "object":
		n.Class = ua.NodeClassObject
		n.TypeDefinition = ua.BaseObjectType
	case "variable":
		n.Class = ua.NodeClassVariable
		n.TypeDefinition = ua.BaseDataVariableType
		n.Value = ua.NewDataValue(spec.Value, ua.DateTimeNow())
		n.Writable = spec.Writable
	case "method":
		// Methods from fixtures are browsable but carry no handler;
		// calling one reports BadNotImplemented.
		n.Class = ua.NodeClassMethod
	case "":
		return &LoadError{Node: spec.ID, Message: "node class is required"}
	default:
		return &LoadError{Node: spec.ID, Message: "unknown node class " + spec.Class}
	}

	refType, err := referenceType(spec)
	if err != nil {
		return err
	}
	if sameID(refType, ua.HasProperty) && n.Class == ua.NodeClassVariable {
		n.TypeDefinition = ua.PropertyType
	}

	if err := f.Space.AddNode(n); err != nil {
		return &LoadError{Node: spec.ID, Message: "duplicate node", Cause: err}
	}
	if err := f.Space.AddReference(parent, refType, id); err != nil {
		return &LoadError{Node: spec.ID, Message: "unknown parent " + parent.String(), Cause: err}
	}

	if spec.Simulate != nil {
		if n.Class != ua.NodeClassVariable {
			return &LoadError{Node: spec.ID, Message: "simulate requires a variable"}
		}
		sim := Simulation{
			NodeID:    id,
			Mean:      spec.Simulate.Mean,
			Deviation: spec.Simulate.Deviation,
			Period:    DefaultSimPeriod,
			Seed:      spec.Simulate.Seed,
		}
		if spec.Simulate.Period != "" {
			sim.Period, err = time.ParseDuration(spec.Simulate.Period)
			if err != nil {
				return &LoadError{Node: spec.ID, Message: "bad simulation period", Cause: err}
			}
			if sim.Period <= 0 {
				return &LoadError{Node: spec.ID, Message: "simulation period must be positive"}
			}
		}
		f.Simulations = append(f.Simulations, sim)
	}
	return nil
}

// referenceType resolves the parent edge for one spec.
func referenceType(spec NodeSpec) (ua.NodeID, error) {
	switch spec.Reference {
	case "":
		if spec.Class == "folder" {
			return ua.Organizes, nil
		}
		return ua.HasComponent, nil
	case "organizes":
		return ua.Organizes, nil
	case "component":
		return ua.HasComponent, nil
	case "property":
		return ua.HasProperty, nil
	default:
		return nil, &LoadError{Node: spec.ID, Message: "unknown reference type " + spec.Reference}
	}
}

func sameID(a, b ua.NodeID) bool {
	return ua.CompareNodeIDs(a, b) == 0
}
