// File: methods_edge.go
// Role: Edge lifecycle: AddEdge, MoveEdgeTarget, MarkEdgeInlined, adjacency
//       queries (Successors/Predecessors/LabeledSuccessors).
//
// Invariant (§8): for every A,B in the same graph, A is in predecessors(B)
// iff B is in successors(A). Every mutator below maintains both sides of
// that relation under a single write lock so no reader ever observes a
// partial update.
package cfgraph

import "fmt"

// AddEdge connects src->dst carrying info. Both endpoints must already be
// owned by g. Parallel edges between the same (src,dst) are permitted (the
// graph is a multigraph); each call appends a new edgeRef.
func (g *Graph) AddEdge(src, dst NodeID, info EdgeInfo) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[src]; !ok {
		return fmt.Errorf("cfgraph: AddEdge(%d,%d): src: %w", src, dst, ErrNodeNotFound)
	}
	if _, ok := g.nodes[dst]; !ok {
		return fmt.Errorf("cfgraph: AddEdge(%d,%d): dst: %w", src, dst, ErrNodeNotFound)
	}

	g.succ[src] = append(g.succ[src], edgeRef{Dst: dst, Info: info})
	g.pred[dst] = append(g.pred[dst], src)

	return nil
}

// MoveEdgeTarget retargets every src->oldDst edge to src->newDst, preserving
// each edge's EdgeInfo. It is idempotent if newDst already equals oldDst.
// Both adjacency sides are updated atomically under the write lock.
func (g *Graph) MoveEdgeTarget(src, oldDst, newDst NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if oldDst == newDst {
		return nil
	}
	if _, ok := g.nodes[newDst]; !ok {
		return fmt.Errorf("cfgraph: MoveEdgeTarget(%d,%d->%d): %w", src, oldDst, newDst, ErrNodeNotFound)
	}

	moved := 0
	edges := g.succ[src]
	for i, e := range edges {
		if e.Dst == oldDst {
			edges[i].Dst = newDst
			moved++
		}
	}
	if moved == 0 {
		return fmt.Errorf("cfgraph: MoveEdgeTarget(%d,%d->%d): %w", src, oldDst, newDst, ErrEdgeNotFound)
	}

	g.removePredN(oldDst, src, moved)
	for i := 0; i < moved; i++ {
		g.pred[newDst] = append(g.pred[newDst], src)
	}

	return nil
}

// MarkEdgeInlined sets Inlined=true on every src->dst edge. Used by
// untangle and inflate's dominated-arm blacklisting so dominance queries
// performed against the filtered post-dominator tree ignore these edges.
func (g *Graph) MarkEdgeInlined(src, dst NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	found := false
	for i, e := range g.succ[src] {
		if e.Dst == dst {
			g.succ[src][i].Info.Inlined = true
			found = true
		}
	}
	if !found {
		return fmt.Errorf("cfgraph: MarkEdgeInlined(%d,%d): %w", src, dst, ErrEdgeNotFound)
	}

	return nil
}

// RemoveEdge removes the first src->dst edge it finds (multigraphs may have
// more than one; callers that need to remove all of them call this in a
// loop guarded by HasEdge).
func (g *Graph) RemoveEdge(src, dst NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	edges := g.succ[src]
	for i, e := range edges {
		if e.Dst == dst {
			g.succ[src] = append(edges[:i], edges[i+1:]...)
			g.removePred(dst, src)
			return nil
		}
	}

	return fmt.Errorf("cfgraph: RemoveEdge(%d,%d): %w", src, dst, ErrEdgeNotFound)
}

// HasEdge reports whether at least one src->dst edge exists.
func (g *Graph) HasEdge(src, dst NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, e := range g.succ[src] {
		if e.Dst == dst {
			return true
		}
	}
	return false
}

// Successors returns the destination ids of id's outgoing edges, in
// declared (insertion) order. Parallel edges to the same destination
// produce repeated entries.
func (g *Graph) Successors(id NodeID) []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]NodeID, 0, len(g.succ[id]))
	for _, e := range g.succ[id] {
		out = append(out, e.Dst)
	}
	return out
}

// Predecessors returns the source ids of id's incoming edges, in discovery
// order (the order AddEdge/MoveEdgeTarget established them).
func (g *Graph) Predecessors(id NodeID) []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]NodeID, len(g.pred[id]))
	copy(out, g.pred[id])
	return out
}

// LabeledSuccessors returns (dst, EdgeInfo) pairs for id's outgoing edges in
// declared order, exposing case labels and the Inlined flag to callers that
// need them (inflate, weave, IDB).
func (g *Graph) LabeledSuccessors(id NodeID) []struct {
	Dst  NodeID
	Info EdgeInfo
} {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]struct {
		Dst  NodeID
		Info EdgeInfo
	}, len(g.succ[id]))
	for i, e := range g.succ[id] {
		out[i].Dst = e.Dst
		out[i].Info = e.Info
	}
	return out
}

// NonInlinedSuccessors returns only the successor ids whose edge is not
// marked Inlined, in declared order. Used throughout inflate to seed
// worklists.
func (g *Graph) NonInlinedSuccessors(id NodeID) []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []NodeID
	for _, e := range g.succ[id] {
		if !e.Info.Inlined {
			out = append(out, e.Dst)
		}
	}
	return out
}

//–– internal adjacency bookkeeping, write lock held by caller –––––––––––––

// removePred removes one occurrence of src from node's predecessor list.
func (g *Graph) removePred(node, src NodeID) {
	g.removePredN(node, src, 1)
}

// removePredN removes up to n occurrences of src from node's predecessor list.
func (g *Graph) removePredN(node, src NodeID, n int) {
	preds := g.pred[node]
	out := preds[:0]
	removed := 0
	for _, p := range preds {
		if p == src && removed < n {
			removed++
			continue
		}
		out = append(out, p)
	}
	g.pred[node] = out
}

// removeSuccTo removes every node->dst edge from node's successor list.
func (g *Graph) removeSuccTo(node, dst NodeID) {
	succs := g.succ[node]
	out := succs[:0]
	for _, e := range succs {
		if e.Dst == dst {
			continue
		}
		out = append(out, e)
	}
	g.succ[node] = out
}
