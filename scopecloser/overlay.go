// Package scopecloser implements the "dashed successor" overlay of
// spec.md §4.2: a view over a *cfgraph.Graph that, for any node, yields the
// standard successors in declared order followed by the node's scope-closer
// target, if it has one.
//
// The marker itself lives in the graph's generic annotation table under the
// tag Tag, not in a process-wide pointer: any pass can read or write it
// through SetCloser/Closer without coordinating a global registration step.
package scopecloser

import "github.com/cfgforge/restructure/cfgraph"

// Tag is the annotation key the scope-closer marker is stored under.
const Tag = "scope-closer"

// SetCloser records that node's lexical scope is closed by target: IDB
// reads this to decide whether crossing an edge is a "divergent" exit.
// A node may hold at most one scope-closer target; calling this again
// overwrites the previous one.
func SetCloser(g *cfgraph.Graph, node, target cfgraph.NodeID) error {
	return g.SetAnnotation(node, Tag, target)
}

// Closer returns the scope-closer target of node, if one was set.
func Closer(g *cfgraph.Graph, node cfgraph.NodeID) (cfgraph.NodeID, bool) {
	return g.Annotation(node, Tag)
}

// ClearCloser removes node's scope-closer marker, if any.
func ClearCloser(g *cfgraph.Graph, node cfgraph.NodeID) {
	g.ClearAnnotation(node, Tag)
}

// Children returns the combined, finite sequence of node's graph successors
// followed by its scope-closer target (exactly once, if present). The
// sequence is freshly computed on every call; it is not a restartable
// iterator and holds no state between calls, matching the "lazy sequence,
// not a stackful coroutine" guidance for re-expressing the overlay.
func Children(g *cfgraph.Graph, node cfgraph.NodeID) []cfgraph.NodeID {
	succs := g.Successors(node)
	out := make([]cfgraph.NodeID, len(succs), len(succs)+1)
	copy(out, succs)
	if target, ok := Closer(g, node); ok {
		out = append(out, target)
	}
	return out
}

// IsDivergent reports whether taking the edge (cond, succ) crosses the
// scope boundary cond closes: succ is divergent iff it is not itself the
// scope-closer target of cond and is not reachable as a standard successor
// that stays within the scope cond closes. In this design the scope a node
// closes is exactly its scope-closer target, so a successor is divergent
// iff it differs from that target whenever cond has one set.
//
// A conditional with no scope-closer target never has divergent successors
// (there is no scope boundary to cross).
func IsDivergent(g *cfgraph.Graph, cond, succ cfgraph.NodeID) bool {
	target, ok := Closer(g, cond)
	if !ok {
		return false
	}
	return succ != target
}
