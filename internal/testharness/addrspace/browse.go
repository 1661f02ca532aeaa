package addrspace

import (
	"github.com/google/uuid"

	"github.com/opcua-sdk/opcua-go/pkg/channel"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// referenceSubtypes maps a namespace-zero reference type to its direct
// subtypes. Browsing with IncludeSubtypes expands the filter through
// this table.
var referenceSubtypes = map[uint32][]uint32{
	31: {32, 33},     // References > NonHierarchical, Hierarchical
	33: {34, 35, 48}, // HierarchicalReferences > HasChild, Organizes, HasNotifier
	34: {45, 46, 47}, // HasChild > HasSubtype, HasProperty, HasComponent
	32: {37, 40},     // NonHierarchicalReferences > HasModellingRule, HasTypeDefinition
}

// browseCursor holds the references left over from a paged browse.
type browseCursor struct {
	remaining []ua.ReferenceDescription
	pageSize  uint32
}

// Browse returns the references of one node, filtered by the
// description. When max is non-zero and more references match, the
// result carries a continuation point for BrowseNext. max of zero
// returns everything in one page.
func (s *Space) Browse(d channel.BrowseDescription, max uint32) channel.BrowseResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.NodeID == nil {
		return channel.BrowseResult{StatusCode: ua.BadNodeIDInvalid}
	}
	if _, ok := s.nodes[d.NodeID.String()]; !ok {
		return channel.BrowseResult{StatusCode: ua.BadNodeIDUnknown}
	}
	if d.Direction > ua.BrowseDirectionBoth {
		return channel.BrowseResult{StatusCode: ua.BadBrowseDirectionInvalid}
	}

	matchType := subtypeFilter(d.ReferenceTypeID, d.IncludeSubtypes)

	var refs []ua.ReferenceDescription
	for _, r := range s.refs {
		if !matchType(r.Type) {
			continue
		}
		if d.Direction != ua.BrowseDirectionInverse && sameNodeID(r.Source, d.NodeID) {
			if rd, ok := s.describeLocked(r, true); ok && d.NodeClassMask.Contains(rd.NodeClass) {
				refs = append(refs, rd)
			}
		}
		if d.Direction != ua.BrowseDirectionForward && sameNodeID(r.Target, d.NodeID) {
			if rd, ok := s.describeLocked(r, false); ok && d.NodeClassMask.Contains(rd.NodeClass) {
				refs = append(refs, rd)
			}
		}
	}

	result := channel.BrowseResult{StatusCode: ua.Good, References: refs}
	if max > 0 && uint32(len(refs)) > max {
		result.References = refs[:max]
		cp := ua.ContinuationPoint(uuid.NewString())
		s.cursors[cp] = &browseCursor{remaining: refs[max:], pageSize: max}
		result.ContinuationPoint = cp
	}
	return result
}

// BrowseNext continues a paged browse. With release set, the cursor is
// freed and no references are returned. The continuation point stays
// valid while pages remain and is reused on each response.
func (s *Space) BrowseNext(cp ua.ContinuationPoint, release bool) channel.BrowseResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	cursor, ok := s.cursors[cp]
	if !ok {
		return channel.BrowseResult{StatusCode: ua.BadContinuationPointInvalid}
	}
	if release {
		delete(s.cursors, cp)
		return channel.BrowseResult{StatusCode: ua.Good}
	}

	result := channel.BrowseResult{StatusCode: ua.Good}
	if uint32(len(cursor.remaining)) > cursor.pageSize {
		result.References = cursor.remaining[:cursor.pageSize]
		cursor.remaining = cursor.remaining[cursor.pageSize:]
		result.ContinuationPoint = cp
	} else {
		result.References = cursor.remaining
		delete(s.cursors, cp)
	}
	return result
}

// OpenCursors returns the number of unreleased continuation points.
func (s *Space) OpenCursors() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cursors)
}

// describeLocked builds the reference description for one edge. The
// other endpoint is the target when forward, the source when inverse.
func (s *Space) describeLocked(r Reference, forward bool) (ua.ReferenceDescription, bool) {
	endID := r.Target
	if !forward {
		endID = r.Source
	}
	end, ok := s.nodes[endID.String()]
	if !ok {
		return ua.ReferenceDescription{}, false
	}

	rd := ua.ReferenceDescription{
		ReferenceTypeID: r.Type,
		IsForward:       forward,
		NodeID:          ua.NewExpandedNodeID(end.ID),
		BrowseName:      end.BrowseName,
		DisplayName:     end.DisplayName,
		NodeClass:       end.Class,
	}
	if end.TypeDefinition != nil {
		rd.TypeDefinition = ua.NewExpandedNodeID(end.TypeDefinition)
	}
	return rd, true
}

// subtypeFilter returns a predicate matching reference types against
// the browse filter. A nil filter admits every reference type. Subtype
// expansion only covers the namespace-zero hierarchy table.
func subtypeFilter(filter ua.NodeID, includeSubtypes bool) func(ua.NodeID) bool {
	if filter == nil {
		return func(ua.NodeID) bool { return true }
	}
	if !includeSubtypes {
		return func(t ua.NodeID) bool { return sameNodeID(t, filter) }
	}

	admitted := map[uint32]bool{}
	if root, ok := numericZero(filter); ok {
		queue := []uint32{root}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			if admitted[id] {
				continue
			}
			admitted[id] = true
			queue = append(queue, referenceSubtypes[id]...)
		}
	}
	return func(t ua.NodeID) bool {
		if sameNodeID(t, filter) {
			return true
		}
		id, ok := numericZero(t)
		return ok && admitted[id]
	}
}

// numericZero extracts the numeric identifier of a namespace-zero node
// ID, the only form the subtype table covers.
func numericZero(id ua.NodeID) (uint32, bool) {
	n, ok := id.(ua.NodeIDNumeric)
	if !ok || n.NamespaceIndex != 0 {
		return 0, false
	}
	return n.ID, true
}
