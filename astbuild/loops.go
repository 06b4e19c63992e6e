// File: loops.go
// Role: finds natural loops and folds each one, innermost first, into a
// single KindCollapsed node owning a nested *cfgraph.Graph — the
// precondition the rest of astbuild needs: a loop-free DAG to structure.
package astbuild

import (
	"fmt"
	"sort"

	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/dominance"
	"github.com/cfgforge/restructure/rerrors"
)

// collapseLoops repeatedly finds the smallest (innermost) remaining
// natural loop reachable from entry and folds it away, until none remain.
// Smallest-body-first is a cheap, deterministic stand-in for a full
// dominator-tree-depth ordering: an inner loop's body can never be larger
// than the outer loop that contains it, since the outer body always
// contains the inner one in full plus its own header and exit plumbing.
func collapseLoops(g *cfgraph.Graph) error {
	for {
		entry, err := g.Entry()
		if err != nil {
			return fmt.Errorf("astbuild.collapseLoops: %w", err)
		}
		dt := dominance.Dominators(g, entry)
		header, body, ok := smallestNaturalLoop(g, entry, dt)
		if !ok {
			return nil
		}
		if err := collapseOneLoop(g, entry, header, body); err != nil {
			return fmt.Errorf("astbuild.collapseLoops: %w", err)
		}
	}
}

// smallestNaturalLoop finds every back edge reachable from entry, groups
// those sharing a header into one natural loop body, and returns the
// smallest such body (ties broken by lowest header id).
func smallestNaturalLoop(
	g *cfgraph.Graph,
	entry cfgraph.NodeID,
	dt *dominance.Tree,
) (header cfgraph.NodeID, body map[cfgraph.NodeID]bool, found bool) {
	backEdgesByHeader := map[cfgraph.NodeID][]cfgraph.NodeID{}
	for _, n := range reachable(g, entry) {
		for _, s := range g.Successors(n) {
			if dt.Dominates(s, n) {
				backEdgesByHeader[s] = append(backEdgesByHeader[s], n)
			}
		}
	}
	if len(backEdgesByHeader) == 0 {
		return cfgraph.InvalidNode, nil, false
	}

	var headers []cfgraph.NodeID
	for h := range backEdgesByHeader {
		headers = append(headers, h)
	}
	sort.Slice(headers, func(i, j int) bool { return headers[i] < headers[j] })

	var bestHeader cfgraph.NodeID
	var bestBody map[cfgraph.NodeID]bool
	for _, h := range headers {
		b := naturalLoopBody(g, h, backEdgesByHeader[h])
		if bestBody == nil || len(b) < len(bestBody) {
			bestHeader, bestBody = h, b
		}
	}
	return bestHeader, bestBody, true
}

// naturalLoopBody computes the standard natural-loop node set for header,
// given its back-edge sources tails: header itself, plus every node that
// can reach a tail walking predecessors without leaving through header.
func naturalLoopBody(g *cfgraph.Graph, header cfgraph.NodeID, tails []cfgraph.NodeID) map[cfgraph.NodeID]bool {
	body := map[cfgraph.NodeID]bool{header: true}
	var stack []cfgraph.NodeID
	for _, t := range tails {
		if !body[t] {
			body[t] = true
			stack = append(stack, t)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range g.Predecessors(n) {
			if !body[p] {
				body[p] = true
				stack = append(stack, p)
			}
		}
	}
	return body
}

// collapseOneLoop folds body (headed by header) into a single KindCollapsed
// node in g, replacing every back edge with an internal Continue marker and
// every edge leaving the body with an internal Break marker, labeling
// breaks only when the loop has more than one distinct external target.
func collapseOneLoop(
	g *cfgraph.Graph,
	entry, header cfgraph.NodeID,
	body map[cfgraph.NodeID]bool,
) error {
	shape, err := classifyLoopShape(g, header, body)
	if err != nil {
		return err
	}

	externalTargets := distinctExternalTargets(g, body)

	nested := cfgraph.NewGraph(g.FunctionName(), g.RegionName()+"-loop")
	mapped := map[cfgraph.NodeID]cfgraph.NodeID{}
	for _, n := range sortedIDs(body) {
		node, err := g.GetNode(n)
		if err != nil {
			return err
		}
		mapped[n] = nested.AddNode(node.Kind, node.Payload, node.Name, node.Weight)
	}
	if err := nested.SetEntry(mapped[header]); err != nil {
		return err
	}

	continueNode := nested.AddArtificialNode(cfgraph.KindContinue, "continue")

	breakNodeFor := map[cfgraph.NodeID]cfgraph.NodeID{}
	for i, t := range externalTargets {
		label := ""
		if len(externalTargets) > 1 {
			label = loopExitLabel(i)
		}
		breakNodeFor[t] = nested.AddNode(cfgraph.KindBreak, breakMeta{label: label, target: t}, "break", 0)
	}

	for _, n := range sortedIDs(body) {
		for _, e := range g.LabeledSuccessors(n) {
			switch {
			case e.Dst == header:
				if err := nested.AddEdge(mapped[n], continueNode, e.Info); err != nil {
					return err
				}
			case body[e.Dst]:
				if err := nested.AddEdge(mapped[n], mapped[e.Dst], e.Info); err != nil {
					return err
				}
			default:
				if err := nested.AddEdge(mapped[n], breakNodeFor[e.Dst], e.Info); err != nil {
					return err
				}
			}
		}
	}

	collapsed, err := newCollapsedNode(g, nested, shape)
	if err != nil {
		return err
	}

	for _, p := range g.Predecessors(header) {
		if body[p] {
			continue
		}
		if err := g.MoveEdgeTarget(p, header, collapsed); err != nil {
			return err
		}
	}
	for _, t := range externalTargets {
		if err := g.AddEdge(collapsed, t, cfgraph.EdgeInfo{}); err != nil {
			return err
		}
	}
	if entry == header {
		if err := g.SetEntry(collapsed); err != nil {
			return err
		}
	}

	for _, n := range sortedIDs(body) {
		if err := g.RemoveNode(n); err != nil {
			return err
		}
	}

	return nil
}

// newCollapsedNode allocates the outer KindCollapsed node, storing the
// classification this loop's shape/exit-target bookkeeping needs so Build
// doesn't have to recompute it from the folded graph.
func newCollapsedNode(
	g *cfgraph.Graph,
	nested *cfgraph.Graph,
	shape LoopShape,
) (cfgraph.NodeID, error) {
	id := g.AddNode(cfgraph.KindCollapsed, loopMeta{shape: shape}, "loop", 0)
	node, err := g.GetNode(id)
	if err != nil {
		return cfgraph.InvalidNode, rerrors.Internal("astbuild.newCollapsedNode", err)
	}
	node.Collapsed = nested
	return id, nil
}

// loopMeta is the Payload a collapsed loop node carries: astbuild's own
// bookkeeping, never an original instruction payload.
type loopMeta struct{ shape LoopShape }

// breakMeta is the Payload a loop-internal KindBreak marker carries: its
// rendered label (empty when the loop has only one exit target) and the
// external node it stands in for, so the outer graph's edge out of the
// KindCollapsed node can be matched back to the Break that should carry its
// label.
type breakMeta struct {
	label  string
	target cfgraph.NodeID
}

// classifyLoopShape reports whether header itself tests the loop exit
// (while), a back-edge source does (do_while), or neither (infinite).
func classifyLoopShape(g *cfgraph.Graph, header cfgraph.NodeID, body map[cfgraph.NodeID]bool) (LoopShape, error) {
	if isExitTest(g, header, body) {
		return LoopWhile, nil
	}
	for n := range body {
		for _, s := range g.Successors(n) {
			if s == header && isExitTest(g, n, body) {
				return LoopDoWhile, nil
			}
		}
	}
	return LoopInfinite, nil
}

// isExitTest reports whether n has exactly two successors, one inside
// body and one outside it.
func isExitTest(g *cfgraph.Graph, n cfgraph.NodeID, body map[cfgraph.NodeID]bool) bool {
	succs := g.Successors(n)
	if len(succs) != 2 {
		return false
	}
	return body[succs[0]] != body[succs[1]]
}

// loopExitLabel renders the label for the i'th (0-based) distinct external
// target in ascending-id order, matching the "L1", "L2", ... scheme used
// both for a collapsed loop's internal Break markers and for the Scope
// nodes build.go wraps its outer continuations in — the two must agree,
// since a label only means something if both ends use the same string.
func loopExitLabel(i int) string {
	return fmt.Sprintf("L%d", i+1)
}

// distinctExternalTargets returns, in ascending id order, every node
// outside body reached directly from some node inside it.
func distinctExternalTargets(g *cfgraph.Graph, body map[cfgraph.NodeID]bool) []cfgraph.NodeID {
	seen := map[cfgraph.NodeID]bool{}
	var out []cfgraph.NodeID
	for _, n := range sortedIDs(body) {
		for _, s := range g.Successors(n) {
			if body[s] || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedIDs(set map[cfgraph.NodeID]bool) []cfgraph.NodeID {
	out := make([]cfgraph.NodeID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func reachable(g *cfgraph.Graph, entry cfgraph.NodeID) []cfgraph.NodeID {
	visited := map[cfgraph.NodeID]bool{entry: true}
	order := []cfgraph.NodeID{entry}
	stack := []cfgraph.NodeID{entry}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, s := range g.Successors(n) {
			if !visited[s] {
				visited[s] = true
				order = append(order, s)
				stack = append(stack, s)
			}
		}
	}
	return order
}
