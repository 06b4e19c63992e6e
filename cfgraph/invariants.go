// File: invariants.go
// Role: the testable structural properties from spec.md §8, exposed as a
// single CheckInvariants call so every pass can assert them at checkpoints
// without duplicating the traversal logic.
package cfgraph

import "fmt"

// CheckInvariants verifies:
//   - predecessor/successor symmetry for every node;
//   - at most one node has no incoming edges, and when there is one and an
//     entry is designated, it is that entry.
//
// It returns the first violation found, wrapped with enough context to
// locate it; callers treat a non-nil result as an InternalInvariant-class
// failure (rerrors.InternalInvariantError).
func (g *Graph) CheckInvariants() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	// predecessor/successor symmetry
	for a, edges := range g.succ {
		for _, e := range edges {
			if !containsID(g.pred[e.Dst], a) {
				return fmt.Errorf("cfgraph: invariant violation: %d->%d missing from predecessors(%d)", a, e.Dst, e.Dst)
			}
		}
	}
	for b, preds := range g.pred {
		for _, a := range preds {
			if !hasSuccTo(g.succ[a], b) {
				return fmt.Errorf("cfgraph: invariant violation: %d in predecessors(%d) but %d->%d missing from successors", a, b, a, b)
			}
		}
	}

	// single entry
	var noPred []NodeID
	for id := range g.nodes {
		if len(g.pred[id]) == 0 {
			noPred = append(noPred, id)
		}
	}
	if len(noPred) > 1 {
		return fmt.Errorf("cfgraph: %w: %v", ErrMultipleEntries, noPred)
	}
	if len(noPred) == 1 && g.entry != InvalidNode && noPred[0] != g.entry {
		return fmt.Errorf("cfgraph: invariant violation: sole predecessorless node %d does not match designated entry %d", noPred[0], g.entry)
	}

	return nil
}

func containsID(ids []NodeID, target NodeID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func hasSuccTo(edges []edgeRef, dst NodeID) bool {
	for _, e := range edges {
		if e.Dst == dst {
			return true
		}
	}
	return false
}
