// File: untangle.go
// Role: the conditional-by-conditional weight comparison and the
// clone_until_exit rewrite it triggers.
package untangle

import (
	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/dominance"
	"github.com/cfgforge/restructure/rerrors"
)

// Config carries the §6 untangle.* tuning knobs.
type Config struct {
	// MultiplicativeFactor is untangle.multiplicative_factor: the split
	// triggers when CombingCost > MultiplicativeFactor*UntanglingCost.
	// Must be >= 1; DefaultConfig sets 1.
	MultiplicativeFactor int
}

// DefaultConfig returns the §6 default (multiplicative_factor=1).
func DefaultConfig() Config {
	return Config{MultiplicativeFactor: 1}
}

// Run applies untangle to every conditional of g reachable from entry, per
// spec.md §4.7. g must be a DAG; this is a StructureError, not an
// InternalInvariantError, since it is a property of the input region, not
// of untangle itself.
func Run(g *cfgraph.Graph, entry cfgraph.NodeID, cfg Config) error {
	if cfg.MultiplicativeFactor < 1 {
		cfg.MultiplicativeFactor = 1
	}
	if !isDAG(g, entry) {
		return rerrors.Structure("untangle.Run", rerrors.ErrNotDAG)
	}

	sink, err := addVirtualSink(g)
	if err != nil {
		return rerrors.Malformed("untangle.Run", err)
	}

	weight := computeWeights(g)

	for _, conditional := range conditionalsInRPO(g, entry) {
		if err := untangleOne(g, entry, sink, conditional, weight, cfg); err != nil {
			return err
		}
	}

	purgeVirtualSink(g, sink)
	return nil
}

// untangleOne evaluates one conditional against the current graph state and
// performs the split if the weight criterion fires. It is a no-op if the
// conditional no longer has exactly two successors (an earlier split in the
// same Run collapsed it away).
func untangleOne(
	g *cfgraph.Graph,
	entry, sink, conditional cfgraph.NodeID,
	weight map[cfgraph.NodeID]int,
	cfg Config,
) error {
	succs := g.Successors(conditional)
	if len(succs) != 2 {
		return nil
	}
	then, els := succs[0], succs[1]

	dt := dominance.Dominators(g, entry)
	ifpdt := dominance.FilteredPostDominators(g, sink)

	post, ok := ifpdt.IDom(conditional)
	if !ok {
		return rerrors.Internal("untangle.untangleOne", rerrors.ErrMissingPostDominator)
	}

	thenNodes := reachableStopAt(g, then, post)
	elseNodes := reachableStopAt(g, els, post)

	if edgeDominates(g, dt, conditional, els) {
		dropDominatedBy(dt, els, elseNodes)
	}
	if edgeDominates(g, dt, conditional, then) {
		dropDominatedBy(dt, then, thenNodes)
	}

	wThen := sumWeights(weight, thenNodes)
	wElse := sumWeights(weight, elseNodes)

	postToExit := reachableStopAt(g, post, cfgraph.InvalidNode)
	wPost := sumWeights(weight, postToExit)

	comb := wThen + wElse
	untangleThen := wThen + wPost
	untangleElse := wElse + wPost
	u := untangleElse
	if untangleThen < untangleElse {
		u = untangleThen
	}

	if comb <= cfg.MultiplicativeFactor*u {
		return nil
	}

	// Ties broken deterministically: prefer Else.
	arm := els
	if untangleThen < untangleElse {
		arm = then
	}

	clone, err := cloneUntilExit(g, arm, sink)
	if err != nil {
		return rerrors.Internal("untangle.untangleOne", err)
	}
	if err := g.MoveEdgeTarget(conditional, arm, clone); err != nil {
		return rerrors.Internal("untangle.untangleOne", err)
	}
	if err := g.MarkEdgeInlined(conditional, clone); err != nil {
		return rerrors.Internal("untangle.untangleOne", err)
	}

	removeDanglingNodes(g, entry)
	return nil
}

// reachableStopAt returns every node forward-reachable from start,
// including start itself, without expanding past stop (stop itself is
// excluded from the result). Passing cfgraph.InvalidNode as stop means
// "no stop": every reachable node is included.
func reachableStopAt(g *cfgraph.Graph, start, stop cfgraph.NodeID) map[cfgraph.NodeID]bool {
	visited := map[cfgraph.NodeID]bool{}
	if start == stop {
		return visited
	}
	stack := []cfgraph.NodeID{start}
	visited[start] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == stop {
			continue
		}
		for _, s := range g.Successors(n) {
			if visited[s] {
				continue
			}
			visited[s] = true
			stack = append(stack, s)
		}
	}
	delete(visited, stop)
	return visited
}

// edgeDominates reports whether the edge (src,dst) "dominates" dst: every
// predecessor of dst other than src (src counted at most once, covering a
// parallel edge) is itself dominated by dst. In a DAG this is only possible
// when dst has no real predecessor besides src.
func edgeDominates(g *cfgraph.Graph, dt *dominance.Tree, src, dst cfgraph.NodeID) bool {
	preds := g.Predecessors(dst)
	if len(preds) < 2 {
		return true
	}
	sawSrc := false
	for _, p := range preds {
		if p == src {
			if sawSrc {
				return false
			}
			sawSrc = true
			continue
		}
		if !dt.Dominates(dst, p) {
			return false
		}
	}
	return true
}

// dropDominatedBy removes from set every node dominated by head (per the
// ordinary, non-filtered dominator tree).
func dropDominatedBy(dt *dominance.Tree, head cfgraph.NodeID, set map[cfgraph.NodeID]bool) {
	for n := range set {
		if dt.Dominates(head, n) {
			delete(set, n)
		}
	}
}

func sumWeights(weight map[cfgraph.NodeID]int, set map[cfgraph.NodeID]bool) int {
	sum := 0
	for n := range set {
		sum += weight[n]
	}
	return sum
}

// cloneUntilExit deep-clones node and every node forward-reachable from it,
// dropping edges that targeted sink: the clone reaches real exits directly,
// bypassing whatever used to post-dominate node.
func cloneUntilExit(g *cfgraph.Graph, node, sink cfgraph.NodeID) (cfgraph.NodeID, error) {
	cloneOf := map[cfgraph.NodeID]cfgraph.NodeID{}
	clone, err := g.CloneNode(node)
	if err != nil {
		return cfgraph.InvalidNode, err
	}
	cloneOf[node] = clone

	processed := map[cfgraph.NodeID]bool{}
	stack := []cfgraph.NodeID{node}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if processed[cur] {
			continue
		}
		processed[cur] = true

		curClone := cloneOf[cur]
		for _, s := range g.LabeledSuccessors(cur) {
			if s.Dst == sink {
				continue
			}
			succClone, ok := cloneOf[s.Dst]
			if !ok {
				succClone, err = g.CloneNode(s.Dst)
				if err != nil {
					return cfgraph.InvalidNode, err
				}
				cloneOf[s.Dst] = succClone
			}
			if err := g.AddEdge(curClone, succClone, s.Info); err != nil {
				return cfgraph.InvalidNode, err
			}
			stack = append(stack, s.Dst)
		}
	}

	return clone, nil
}

// removeDanglingNodes repeatedly deletes any non-entry node left with no
// predecessor, a side effect of cloneUntilExit redirecting the only edge
// that used to reach some node in the untangled arm.
func removeDanglingNodes(g *cfgraph.Graph, entry cfgraph.NodeID) {
	for {
		removed := false
		for _, n := range g.NodeIDs() {
			if n == entry {
				continue
			}
			if len(g.Predecessors(n)) == 0 {
				g.RemoveNode(n)
				removed = true
				break
			}
		}
		if !removed {
			return
		}
	}
}

// addVirtualSink wires an edge from every successorless node to a fresh
// sink node, so post-dominance has a single, real convergence point.
func addVirtualSink(g *cfgraph.Graph) (cfgraph.NodeID, error) {
	var exits []cfgraph.NodeID
	for _, n := range g.NodeIDs() {
		if len(g.Successors(n)) == 0 {
			exits = append(exits, n)
		}
	}
	sink := g.AddArtificialNode(cfgraph.KindArtificialExit, "untangle_sink")
	for _, ex := range exits {
		if err := g.AddEdge(ex, sink, cfgraph.EdgeInfo{}); err != nil {
			return cfgraph.InvalidNode, err
		}
	}
	return sink, nil
}

// purgeVirtualSink removes sink and, transitively, every predecessor left
// with no payload and no remaining successor once sink itself is gone
// (mirrors findExits: once disconnected from sink, an artificial exit node
// is empty scaffolding, not region content).
func purgeVirtualSink(g *cfgraph.Graph, sink cfgraph.NodeID) {
	worklist := []cfgraph.NodeID{sink}
	for len(worklist) > 0 {
		n := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if !g.HasNode(n) || !isEmptyArtificial(g, n) {
			continue
		}
		preds := g.Predecessors(n)
		g.RemoveNode(n)
		worklist = append(worklist, preds...)
	}
}

// isEmptyArtificial reports whether n is a synthetic node (no payload) fit
// for removal once it has no remaining successor to justify its presence.
func isEmptyArtificial(g *cfgraph.Graph, n cfgraph.NodeID) bool {
	node, err := g.GetNode(n)
	if err != nil {
		return false
	}
	return node.Kind == cfgraph.KindArtificialExit && len(g.Successors(n)) == 0
}

// computeWeights returns every node's weight: its own, or for a collapsed
// node, the recursive sum of its nested content's weights.
func computeWeights(g *cfgraph.Graph) map[cfgraph.NodeID]int {
	weight := make(map[cfgraph.NodeID]int, g.NodeCount())
	for _, n := range g.NodeIDs() {
		weight[n] = nodeWeight(g, n)
	}
	return weight
}

func nodeWeight(g *cfgraph.Graph, n cfgraph.NodeID) int {
	node, err := g.GetNode(n)
	if err != nil {
		return 0
	}
	if node.Kind != cfgraph.KindCollapsed || node.Collapsed == nil {
		return node.Weight
	}
	sum := 0
	for _, inner := range node.Collapsed.NodeIDs() {
		sum += nodeWeight(node.Collapsed, inner)
	}
	return sum
}

// conditionalsInRPO collects every node with exactly two successors, in
// reverse post-order from entry, computed once before any mutation starts.
func conditionalsInRPO(g *cfgraph.Graph, entry cfgraph.NodeID) []cfgraph.NodeID {
	var conditionals []cfgraph.NodeID
	for _, n := range reversePostOrder(g, entry) {
		if len(g.Successors(n)) == 2 {
			conditionals = append(conditionals, n)
		}
	}
	return conditionals
}

func reversePostOrder(g *cfgraph.Graph, entry cfgraph.NodeID) []cfgraph.NodeID {
	visited := map[cfgraph.NodeID]bool{}
	var post []cfgraph.NodeID
	var visit func(cfgraph.NodeID)
	visit = func(n cfgraph.NodeID) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, s := range g.Successors(n) {
			visit(s)
		}
		post = append(post, n)
	}
	visit(entry)

	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}

// isDAG reports whether g has no cycle reachable from entry.
func isDAG(g *cfgraph.Graph, entry cfgraph.NodeID) bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[cfgraph.NodeID]int{}
	var visit func(cfgraph.NodeID) bool
	visit = func(n cfgraph.NodeID) bool {
		color[n] = gray
		for _, s := range g.Successors(n) {
			switch color[s] {
			case gray:
				return false
			case white:
				if !visit(s) {
					return false
				}
			}
		}
		color[n] = black
		return true
	}
	return visit(entry)
}
