// File: methods_node.go
// Role: Node lifecycle: AddNode, CloneNode, RemoveNode, queries, entry tracking.
//
// Determinism:
//   - NodeIDs() returns ids sorted ascending (monotone alloc order).
// Concurrency:
//   - All mutation under g.mu write lock; queries under read lock.
package cfgraph

import (
	"fmt"
	"sort"
)

// AddNode allocates a fresh node of the given kind with payload/name/weight
// and registers it. The first node ever added to a graph with no other
// entry set becomes the entry automatically; callers that want a specific
// entry should call SetEntry explicitly afterward.
func (g *Graph) AddNode(kind Kind, payload interface{}, name string, weight int) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	id := g.nextID
	g.nodes[id] = &Node{ID: id, Kind: kind, Payload: payload, Name: name, Weight: weight}
	g.succ[id] = nil
	g.pred[id] = nil

	if g.entry == InvalidNode {
		g.entry = id
	}

	return id
}

// AddArtificialNode allocates a node carrying no payload, named as given.
// Used by the single-exit enforcer, untangle's virtual sink, and inflate's
// switch-case dummy wrapping.
func (g *Graph) AddArtificialNode(kind Kind, name string) NodeID {
	return g.AddNode(kind, nil, name, 0)
}

// CloneNode copies kind, payload, weight, and flags from src into a fresh
// node with a new id. No edges are copied; Collapsed sub-graphs are shared
// by reference (cloning a collapsed region is not needed by any pass: the
// region is re-entered structurally, not duplicated).
func (g *Graph) CloneNode(src NodeID) (NodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[src]
	if !ok {
		return InvalidNode, fmt.Errorf("cfgraph: CloneNode(%d): %w", src, ErrNodeNotFound)
	}

	g.nextID++
	id := g.nextID
	g.nodes[id] = &Node{
		ID:        id,
		Kind:      n.Kind,
		Payload:   n.Payload,
		Name:      n.Name,
		Weight:    n.Weight,
		Flags:     n.Flags,
		Collapsed: n.Collapsed,
	}
	g.succ[id] = nil
	g.pred[id] = nil

	return id, nil
}

// RemoveNode deletes a node and detaches every incident edge (both
// directions). Any annotation pointing at the removed node, from any other
// node, is cleared first so the scope-closer invariant (§8: "no
// scope-closer points to a removed node") always holds after this returns.
func (g *Graph) RemoveNode(id NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("cfgraph: RemoveNode(%d): %w", id, ErrNodeNotFound)
	}

	// Detach outgoing edges: drop id from every successor's predecessor list.
	for _, e := range g.succ[id] {
		g.removePred(e.Dst, id)
	}
	delete(g.succ, id)

	// Detach incoming edges: drop id from every predecessor's successor list.
	for _, p := range g.pred[id] {
		g.removeSuccTo(p, id)
	}
	delete(g.pred, id)

	// Clear annotations owned by id, and any annotation elsewhere targeting id.
	delete(g.annotations, id)
	for _, tags := range g.annotations {
		for tag, target := range tags {
			if target == id {
				delete(tags, tag)
			}
		}
	}

	delete(g.nodes, id)

	if g.entry == id {
		g.entry = InvalidNode
	}

	return nil
}

// GetNode returns the Node record for id. The returned pointer is owned by
// the graph and must be treated as read-only except for Flags/Weight, which
// callers may mutate directly by convention (mirrors core.Vertex.Metadata).
func (g *Graph) GetNode(id NodeID) (*Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("cfgraph: GetNode(%d): %w", id, ErrNodeNotFound)
	}

	return n, nil
}

// HasNode reports whether id is owned by this graph.
func (g *Graph) HasNode(id NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// NodeIDs returns every node id in ascending (allocation) order.
func (g *Graph) NodeIDs() []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// SetEntry designates id as the unique entry node of the region.
func (g *Graph) SetEntry(id NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("cfgraph: SetEntry(%d): %w", id, ErrNodeNotFound)
	}
	g.entry = id
	return nil
}

// Entry returns the designated entry node.
func (g *Graph) Entry() (NodeID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.entry == InvalidNode {
		return InvalidNode, ErrNoEntry
	}
	return g.entry, nil
}
