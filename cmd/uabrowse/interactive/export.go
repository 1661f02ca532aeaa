package interactive

import (
	"context"

	"github.com/opcua-sdk/opcua-go/internal/testharness/fixture"
	"github.com/opcua-sdk/opcua-go/pkg/client"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// maxExportDepth bounds the walk; address spaces are graphs and may
// contain reference cycles the visited set alone cannot price in.
const maxExportDepth = 8

// ExportTree walks the hierarchy below root and renders it as a
// fixture document. Direct children of the root lose their parent
// reference so the document can be loaded as a standalone fixture,
// grafted under the Objects folder. Node classes the fixture schema
// cannot express (types, views) are skipped.
func ExportTree(ctx context.Context, cli *client.Client, root ua.NodeID, name string) (*fixture.Document, error) {
	doc := &fixture.Document{Name: name}
	visited := map[string]bool{root.String(): true}
	if err := exportChildren(ctx, cli, doc, root, "", visited, 0); err != nil {
		return nil, err
	}
	return doc, nil
}

func exportChildren(ctx context.Context, cli *client.Client, doc *fixture.Document, parent ua.NodeID, parentID string, visited map[string]bool, depth int) error {
	if depth >= maxExportDepth {
		return nil
	}

	refs, err := cli.BrowseAll(ctx, parent, nil)
	if err != nil {
		return err
	}

	for _, r := range refs {
		id := r.NodeID.NodeID
		if id == nil || visited[id.String()] {
			continue
		}
		visited[id.String()] = true

		spec, ok, err := exportNode(ctx, cli, r, parentID)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		doc.Nodes = append(doc.Nodes, spec)

		if err := exportChildren(ctx, cli, doc, id, id.String(), visited, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// exportNode renders one browsed reference as a node spec. The second
// return value is false for node classes outside the fixture schema.
func exportNode(ctx context.Context, cli *client.Client, r ua.ReferenceDescription, parentID string) (fixture.NodeSpec, bool, error) {
	id := r.NodeID.NodeID
	spec := fixture.NodeSpec{
		ID:        id.String(),
		Name:      r.BrowseName.Name,
		Parent:    parentID,
		Reference: referenceKind(r.ReferenceTypeID),
	}

	switch r.NodeClass {
	case ua.NodeClassObject:
		spec.Class = "object"
		if sameNodeID(r.TypeDefinition.NodeID, ua.FolderType) {
			spec.Class = "folder"
		}

	case ua.NodeClassVariable:
		spec.Class = "variable"
		results, err := cli.ReadAttributes(ctx, []ua.ReadValueID{
			{NodeID: id, AttributeID: ua.AttributeIDValue},
			{NodeID: id, AttributeID: ua.AttributeIDAccessLevel},
		})
		if err != nil {
			return fixture.NodeSpec{}, false, err
		}
		if dv := results[0].Value; !dv.Status.IsBad() {
			spec.Value = dv.Value
		}
		if dv := results[1].Value; !dv.Status.IsBad() {
			if access, ok := dv.Value.(uint8); ok {
				spec.Writable = access&0x2 != 0
			}
		}

	case ua.NodeClassMethod:
		spec.Class = "method"

	default:
		return fixture.NodeSpec{}, false, nil
	}

	desc, err := cli.ReadAttribute(ctx, id, ua.AttributeIDDescription)
	if err != nil {
		return fixture.NodeSpec{}, false, err
	}
	if dv := desc.Value; !dv.Status.IsBad() {
		if lt, ok := dv.Value.(ua.LocalizedText); ok {
			spec.Description = lt.Text
		}
	}

	return spec, true, nil
}

// referenceKind maps a reference type onto the fixture schema's
// reference names. Unmapped types fall back to the schema default.
func referenceKind(ref ua.NodeID) string {
	switch {
	case ref == nil:
		return ""
	case sameNodeID(ref, ua.Organizes):
		return "organizes"
	case sameNodeID(ref, ua.HasComponent):
		return "component"
	case sameNodeID(ref, ua.HasProperty):
		return "property"
	default:
		return ""
	}
}

func sameNodeID(a, b ua.NodeID) bool {
	return a != nil && b != nil && ua.CompareNodeIDs(a, b) == 0
}
