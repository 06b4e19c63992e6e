// File: graph.go
// Role: constructors that bind the generic fixpoint in tree.go to a
// cfgraph.Graph: forward dominance, post-dominance over a designated sink,
// and the filtered post-dominator tree that ignores Inlined edges.
package dominance

import "github.com/cfgforge/restructure/cfgraph"

// Dominators builds the dominator tree of g rooted at entry. Every edge is
// considered, including Inlined ones: dominance (forward) is never
// filtered, only post-dominance is (spec.md §2.3 names the filtered tree
// specifically as a post-dominator tree).
func Dominators(g *cfgraph.Graph, entry cfgraph.NodeID) *Tree {
	return build(entry, adjacency{preds: g.Predecessors, succs: g.Successors})
}

// PostDominators builds the post-dominator tree of g, rooted at sink. sink
// must already have an incoming edge from every node that has no other
// successors (the single-exit enforcer's job); callers that haven't run it
// yet should add a temporary virtual sink first, as untangle does.
func PostDominators(g *cfgraph.Graph, sink cfgraph.NodeID) *Tree {
	// Post-dominance is dominance on the reverse graph: a reversed successor
	// of b is an original predecessor of b, and vice versa.
	return build(sink, adjacency{preds: g.Successors, succs: g.Predecessors})
}

// FilteredPostDominators builds the IFPDT of spec.md §4.3: the
// post-dominator tree computed while ignoring every edge marked Inlined, in
// both directions of the traversal. This is what untangle and inflate
// actually query; the unfiltered PostDominators exists mainly for tests and
// for single-exit enforcement, which runs before any edge is ever inlined.
func FilteredPostDominators(g *cfgraph.Graph, sink cfgraph.NodeID) *Tree {
	// Reversed-graph successors of n are n's non-inlined predecessors in the
	// original graph, and reversed-graph predecessors of n are n's
	// non-inlined successors (same swap PostDominators does, but filtered).
	return build(sink, adjacency{
		preds: g.NonInlinedSuccessors,
		succs: func(n cfgraph.NodeID) []cfgraph.NodeID { return nonInlinedPredecessors(g, n) },
	})
}

// nonInlinedPredecessors returns n's predecessors excluding any source
// whose every edge to n is Inlined (a source with a mix of inlined and
// non-inlined edges to n still counts once, since at least one real path
// remains).
func nonInlinedPredecessors(g *cfgraph.Graph, n cfgraph.NodeID) []cfgraph.NodeID {
	preds := g.Predecessors(n)
	var out []cfgraph.NodeID
	for _, p := range preds {
		if hasNonInlinedEdge(g, p, n) {
			out = append(out, p)
		}
	}
	return out
}

func hasNonInlinedEdge(g *cfgraph.Graph, src, dst cfgraph.NodeID) bool {
	for _, e := range g.LabeledSuccessors(src) {
		if e.Dst == dst && !e.Info.Inlined {
			return true
		}
	}
	return false
}
