// File: methods_clone.go
// Role: whole-graph cloning, used by tests and by passes that need a
// snapshot to compare before/after (e.g. golden .dot dumps).
package cfgraph

// Clone returns a deep copy of g: every node (fresh struct, same id), every
// edge (same EdgeInfo), the designated entry, and the annotation table.
// Collapsed sub-graphs are shared by reference, mirroring CloneNode.
func (g *Graph) Clone() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := &Graph{
		nextID:      g.nextID,
		entry:       g.entry,
		funcName:    g.funcName,
		regionName:  g.regionName,
		nodes:       make(map[NodeID]*Node, len(g.nodes)),
		succ:        make(map[NodeID][]edgeRef, len(g.succ)),
		pred:        make(map[NodeID][]NodeID, len(g.pred)),
		annotations: make(map[NodeID]map[string]NodeID, len(g.annotations)),
	}

	for id, n := range g.nodes {
		cp := *n
		out.nodes[id] = &cp
	}
	for id, edges := range g.succ {
		cp := make([]edgeRef, len(edges))
		copy(cp, edges)
		out.succ[id] = cp
	}
	for id, preds := range g.pred {
		cp := make([]NodeID, len(preds))
		copy(cp, preds)
		out.pred[id] = cp
	}
	for id, tags := range g.annotations {
		cp := make(map[string]NodeID, len(tags))
		for k, v := range tags {
			cp[k] = v
		}
		out.annotations[id] = cp
	}

	return out
}
