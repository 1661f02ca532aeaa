package addrspace

import (
	"fmt"
	"testing"

	"github.com/opcua-sdk/opcua-go/pkg/channel"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

var lineID = ua.NewNodeIDNumeric(1, 2000)

// newBrowseSpace builds a line folder with a mix of reference types:
// two organized folders, a component variable and a property.
func newBrowseSpace(t *testing.T) *Space {
	t.Helper()
	s := New()

	if err := s.AddNode(&Node{
		ID:             lineID,
		Class:          ua.NodeClassObject,
		BrowseName:     ua.NewQualifiedName(1, "Line"),
		DisplayName:    ua.NewLocalizedText("Line"),
		TypeDefinition: ua.FolderType,
	}); err != nil {
		t.Fatalf("add line: %v", err)
	}

	if _, err := s.AddFolder(lineID, ua.NewNodeIDNumeric(1, 2001), "Cell1"); err != nil {
		t.Fatalf("add cell1: %v", err)
	}
	if _, err := s.AddFolder(lineID, ua.NewNodeIDNumeric(1, 2002), "Cell2"); err != nil {
		t.Fatalf("add cell2: %v", err)
	}
	if _, err := s.AddVariable(lineID, ua.NewNodeIDNumeric(1, 2003), "Speed", 1.0); err != nil {
		t.Fatalf("add speed: %v", err)
	}

	model := &Node{
		ID:             ua.NewNodeIDNumeric(1, 2004),
		Class:          ua.NodeClassVariable,
		BrowseName:     ua.NewQualifiedName(1, "Model"),
		DisplayName:    ua.NewLocalizedText("Model"),
		TypeDefinition: ua.PropertyType,
		Value:          ua.NewDataValue("L-9", ua.DateTimeNow()),
	}
	if err := s.AddNode(model); err != nil {
		t.Fatalf("add model: %v", err)
	}
	if err := s.AddReference(lineID, ua.HasProperty, model.ID); err != nil {
		t.Fatalf("add model reference: %v", err)
	}
	return s
}

func browseNames(refs []ua.ReferenceDescription) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.BrowseName.Name)
	}
	return names
}

func TestBrowseForward(t *testing.T) {
	s := newBrowseSpace(t)

	result := s.Browse(channel.BrowseDescription{NodeID: lineID}, 0)
	if result.StatusCode != ua.Good {
		t.Fatalf("browse status = %s, want Good", result.StatusCode)
	}
	if !result.ContinuationPoint.IsEmpty() {
		t.Error("unpaged browse should not issue a continuation point")
	}

	want := []string{"Cell1", "Cell2", "Speed", "Model"}
	got := browseNames(result.References)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("browse names = %v, want %v", got, want)
	}

	first := result.References[0]
	if !first.IsForward {
		t.Error("forward browse should mark references forward")
	}
	if first.NodeClass != ua.NodeClassObject {
		t.Errorf("first node class = %v, want Object", first.NodeClass)
	}
	if ua.CompareNodeIDs(first.ReferenceTypeID, ua.Organizes) != 0 {
		t.Errorf("first reference type = %v, want Organizes", first.ReferenceTypeID)
	}
	if ua.CompareNodeIDs(first.TypeDefinition.NodeID, ua.FolderType) != 0 {
		t.Errorf("first type definition = %v, want FolderType", first.TypeDefinition.NodeID)
	}
}

func TestBrowseInverse(t *testing.T) {
	s := newBrowseSpace(t)
	cell1 := ua.NewNodeIDNumeric(1, 2001)

	result := s.Browse(channel.BrowseDescription{
		NodeID:    cell1,
		Direction: ua.BrowseDirectionInverse,
	}, 0)
	if result.StatusCode != ua.Good {
		t.Fatalf("browse status = %s, want Good", result.StatusCode)
	}
	if len(result.References) != 1 {
		t.Fatalf("inverse references = %d, want 1", len(result.References))
	}

	ref := result.References[0]
	if ref.IsForward {
		t.Error("inverse browse should mark references inverse")
	}
	if ref.BrowseName.Name != "Line" {
		t.Errorf("inverse target = %s, want Line", ref.BrowseName.Name)
	}
}

func TestBrowseBoth(t *testing.T) {
	s := newBrowseSpace(t)
	cell1 := ua.NewNodeIDNumeric(1, 2001)

	if _, err := s.AddVariable(cell1, ua.NewNodeIDNumeric(1, 2010), "Count", int32(0)); err != nil {
		t.Fatalf("add count: %v", err)
	}

	result := s.Browse(channel.BrowseDescription{
		NodeID:    cell1,
		Direction: ua.BrowseDirectionBoth,
	}, 0)
	if len(result.References) != 2 {
		t.Fatalf("references = %d, want 2", len(result.References))
	}
	if !result.References[0].IsForward || result.References[1].IsForward {
		t.Error("both-direction browse should list the child forward and the parent inverse")
	}
}

func TestBrowseNodeClassMask(t *testing.T) {
	s := newBrowseSpace(t)

	result := s.Browse(channel.BrowseDescription{
		NodeID:        lineID,
		NodeClassMask: ua.NodeClassVariable,
	}, 0)

	want := []string{"Speed", "Model"}
	got := browseNames(result.References)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("masked names = %v, want %v", got, want)
	}
}

func TestBrowseReferenceTypeFilter(t *testing.T) {
	s := newBrowseSpace(t)

	tests := []struct {
		name            string
		refType         ua.NodeID
		includeSubtypes bool
		want            []string
	}{
		{"organizes exact", ua.Organizes, false, []string{"Cell1", "Cell2"}},
		{"has child exact", ua.HasChild, false, nil},
		{"has child subtypes", ua.HasChild, true, []string{"Speed", "Model"}},
		{"hierarchical subtypes", ua.HierarchicalReferences, true, []string{"Cell1", "Cell2", "Speed", "Model"}},
		{"non-hierarchical subtypes", ua.NonHierarchicalReferences, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.Browse(channel.BrowseDescription{
				NodeID:          lineID,
				ReferenceTypeID: tt.refType,
				IncludeSubtypes: tt.includeSubtypes,
			}, 0)
			got := browseNames(result.References)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("names = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBrowseUnknownNode(t *testing.T) {
	s := newBrowseSpace(t)

	result := s.Browse(channel.BrowseDescription{NodeID: ua.NewNodeIDNumeric(1, 9999)}, 0)
	if result.StatusCode != ua.BadNodeIDUnknown {
		t.Errorf("browse status = %s, want BadNodeIDUnknown", result.StatusCode)
	}
}

func TestBrowseInvalidDirection(t *testing.T) {
	s := newBrowseSpace(t)

	result := s.Browse(channel.BrowseDescription{
		NodeID:    lineID,
		Direction: ua.BrowseDirection(7),
	}, 0)
	if result.StatusCode != ua.BadBrowseDirectionInvalid {
		t.Errorf("browse status = %s, want BadBrowseDirectionInvalid", result.StatusCode)
	}
}

func TestBrowsePaging(t *testing.T) {
	s := New()
	root := ua.NewNodeIDNumeric(1, 3000)
	if err := s.AddNode(&Node{
		ID:          root,
		Class:       ua.NodeClassObject,
		BrowseName:  ua.NewQualifiedName(1, "Root"),
		DisplayName: ua.NewLocalizedText("Root"),
	}); err != nil {
		t.Fatalf("add root: %v", err)
	}
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("Child%02d", i)
		if _, err := s.AddFolder(root, ua.NewNodeIDNumeric(1, uint32(3001+i)), name); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	first := s.Browse(channel.BrowseDescription{NodeID: root}, 4)
	if len(first.References) != 4 {
		t.Fatalf("first page = %d references, want 4", len(first.References))
	}
	if first.ContinuationPoint.IsEmpty() {
		t.Fatal("first page should carry a continuation point")
	}
	if first.References[0].BrowseName.Name != "Child00" {
		t.Errorf("first page starts at %s, want Child00", first.References[0].BrowseName.Name)
	}

	second := s.BrowseNext(first.ContinuationPoint, false)
	if len(second.References) != 4 {
		t.Fatalf("second page = %d references, want 4", len(second.References))
	}
	if second.ContinuationPoint != first.ContinuationPoint {
		t.Error("continuation point should stay stable across pages")
	}
	if second.References[0].BrowseName.Name != "Child04" {
		t.Errorf("second page starts at %s, want Child04", second.References[0].BrowseName.Name)
	}

	third := s.BrowseNext(second.ContinuationPoint, false)
	if len(third.References) != 2 {
		t.Fatalf("third page = %d references, want 2", len(third.References))
	}
	if !third.ContinuationPoint.IsEmpty() {
		t.Error("exhausted browse should clear the continuation point")
	}
	if s.OpenCursors() != 0 {
		t.Errorf("open cursors after exhaustion = %d, want 0", s.OpenCursors())
	}

	if result := s.BrowseNext(first.ContinuationPoint, false); result.StatusCode != ua.BadContinuationPointInvalid {
		t.Errorf("re-used continuation point status = %s, want BadContinuationPointInvalid", result.StatusCode)
	}
}

func TestBrowseNextRelease(t *testing.T) {
	s := newBrowseSpace(t)

	first := s.Browse(channel.BrowseDescription{NodeID: lineID}, 2)
	if first.ContinuationPoint.IsEmpty() {
		t.Fatal("paged browse should carry a continuation point")
	}
	if s.OpenCursors() != 1 {
		t.Fatalf("open cursors = %d, want 1", s.OpenCursors())
	}

	released := s.BrowseNext(first.ContinuationPoint, true)
	if released.StatusCode != ua.Good {
		t.Fatalf("release status = %s, want Good", released.StatusCode)
	}
	if len(released.References) != 0 {
		t.Errorf("release returned %d references, want 0", len(released.References))
	}
	if s.OpenCursors() != 0 {
		t.Errorf("open cursors after release = %d, want 0", s.OpenCursors())
	}

	if result := s.BrowseNext(first.ContinuationPoint, false); result.StatusCode != ua.BadContinuationPointInvalid {
		t.Errorf("released continuation point status = %s, want BadContinuationPointInvalid", result.StatusCode)
	}
}

func TestBrowseNextUnknown(t *testing.T) {
	s := newBrowseSpace(t)

	result := s.BrowseNext(ua.ContinuationPoint("no-such-cursor"), false)
	if result.StatusCode != ua.BadContinuationPointInvalid {
		t.Errorf("browse next status = %s, want BadContinuationPointInvalid", result.StatusCode)
	}
}

func TestBrowseExactPageBoundary(t *testing.T) {
	s := newBrowseSpace(t)

	// Four references and a page size of four: everything fits, no
	// cursor must be left behind.
	result := s.Browse(channel.BrowseDescription{NodeID: lineID}, 4)
	if len(result.References) != 4 {
		t.Fatalf("references = %d, want 4", len(result.References))
	}
	if !result.ContinuationPoint.IsEmpty() {
		t.Error("exact-fit browse should not issue a continuation point")
	}
	if s.OpenCursors() != 0 {
		t.Errorf("open cursors = %d, want 0", s.OpenCursors())
	}
}
