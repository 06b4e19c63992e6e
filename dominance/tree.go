// File: tree.go
// Role: the Cooper/Harvey/Kennedy iterative dominance algorithm, plus the
// Tree type exposing IDom/Dominates queries.
package dominance

import "github.com/cfgforge/restructure/cfgraph"

// Tree is an immutable snapshot of a (post-)dominator tree: it must be
// recomputed after any structural mutation of the graph it was built from
// (spec.md §5: "between recomputations, their results are treated as
// stale").
type Tree struct {
	root     cfgraph.NodeID
	idom     map[cfgraph.NodeID]cfgraph.NodeID
	rpoIndex map[cfgraph.NodeID]int
}

// Root returns the root of the tree (the entry for a dominator tree, the
// sink for a post-dominator tree).
func (t *Tree) Root() cfgraph.NodeID { return t.root }

// IDom returns the immediate dominator of n, and false if n is unreachable
// from the tree's root (including n == root, whose "immediate dominator"
// is itself by convention and is also reported as false since callers
// asking for a post-dominator almost always want nil for the root).
func (t *Tree) IDom(n cfgraph.NodeID) (cfgraph.NodeID, bool) {
	if n == t.root {
		return cfgraph.InvalidNode, false
	}
	d, ok := t.idom[n]
	return d, ok
}

// Dominates reports whether a dominates b (reflexively: a dominates a).
// Unreachable nodes are dominated by nothing and dominate nothing.
func (t *Tree) Dominates(a, b cfgraph.NodeID) bool {
	if _, ok := t.rpoIndex[a]; !ok {
		return false
	}
	cur := b
	for {
		if cur == a {
			return true
		}
		if cur == t.root {
			return a == t.root
		}
		next, ok := t.idom[cur]
		if !ok {
			return false
		}
		cur = next
	}
}

// buildAdjacency is the shape the fixpoint algorithm needs: for each node,
// its predecessors and successors in the direction being analyzed (forward
// for dominance, reversed for post-dominance).
type adjacency struct {
	preds func(cfgraph.NodeID) []cfgraph.NodeID
	succs func(cfgraph.NodeID) []cfgraph.NodeID
}

// build runs the iterative dominance fixpoint starting at root, visiting
// nodes in reverse postorder of succs until no idom changes.
func build(root cfgraph.NodeID, adj adjacency) *Tree {
	rpo := reversePostOrder(root, adj.succs)
	rpoIndex := make(map[cfgraph.NodeID]int, len(rpo))
	for i, n := range rpo {
		rpoIndex[n] = i
	}

	idom := make(map[cfgraph.NodeID]cfgraph.NodeID, len(rpo))
	idom[root] = root

	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == root {
				continue
			}
			var newIdom cfgraph.NodeID
			found := false
			for _, p := range adj.preds(b) {
				if _, ok := idom[p]; !ok {
					continue
				}
				if !found {
					newIdom = p
					found = true
					continue
				}
				newIdom = intersect(newIdom, p, idom, rpoIndex)
			}
			if !found {
				continue
			}
			if cur, ok := idom[b]; !ok || cur != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	return &Tree{root: root, idom: idom, rpoIndex: rpoIndex}
}

// intersect walks the idom chains of a and b upward until they meet,
// following Cooper/Harvey/Kennedy's "finger" procedure: at each step the
// finger with the larger (later) RPO index steps to its idom, since a
// larger RPO index means it was discovered later and is strictly "lower"
// in the tree being built so far.
func intersect(a, b cfgraph.NodeID, idom map[cfgraph.NodeID]cfgraph.NodeID, rpoIndex map[cfgraph.NodeID]int) cfgraph.NodeID {
	for a != b {
		for rpoIndex[a] > rpoIndex[b] {
			a = idom[a]
		}
		for rpoIndex[b] > rpoIndex[a] {
			b = idom[b]
		}
	}
	return a
}

// reversePostOrder runs a DFS from root using succ and returns nodes in
// reverse postorder (root first).
func reversePostOrder(root cfgraph.NodeID, succ func(cfgraph.NodeID) []cfgraph.NodeID) []cfgraph.NodeID {
	visited := make(map[cfgraph.NodeID]bool)
	var post []cfgraph.NodeID

	var visit func(cfgraph.NodeID)
	visit = func(n cfgraph.NodeID) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, s := range succ(n) {
			visit(s)
		}
		post = append(post, n)
	}
	visit(root)

	// reverse post in place
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}
