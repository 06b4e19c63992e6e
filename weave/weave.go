// File: weave.go
// Role: find candidate convergence nodes between each switch and its IFPDT
// post-dominator, and split off a sub-switch for every group of cases one
// of them post-dominates.
package weave

import (
	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/dominance"
	"github.com/cfgforge/restructure/rerrors"
)

// Run applies weave to every switch (a node with more than two successors)
// reachable from entry, per spec.md §4.9. g must already be a DAG; this is
// a StructureError rather than an InternalInvariantError, since it is a
// property of the input region rather than of weave itself.
func Run(g *cfgraph.Graph, entry cfgraph.NodeID) error {
	if !isDAG(g, entry) {
		return rerrors.Structure("weave.Run", rerrors.ErrNotDAG)
	}

	var switches []cfgraph.NodeID
	for _, n := range reversePostOrder(g, entry) {
		if len(dedupSuccessors(g, n)) > 2 {
			switches = append(switches, n)
		}
	}

	for _, sw := range switches {
		if err := weaveSwitch(g, sw); err != nil {
			return err
		}
	}

	return nil
}

// weaveSwitch evaluates one switch against the current graph, extracting
// as many nested sub-switches as its candidate nodes call for. The
// candidate list and the switch's own post-dominator are computed once, up
// front, against the pre-mutation graph (mirroring the single upfront RPO
// traversal the grounding implementation builds before its extraction
// loop); the filtered post-dominator tree is recomputed after every
// extraction, since dominance.Tree is a deliberately immutable snapshot
// rather than something this package patches incrementally.
func weaveSwitch(g *cfgraph.Graph, sw cfgraph.NodeID) error {
	ifpdt, err := filteredPostDominators(g)
	if err != nil {
		return err
	}

	postDom, ok := ifpdt.IDom(sw)
	if !ok {
		return rerrors.Internal("weave.weaveSwitch", rerrors.ErrMissingPostDominator)
	}
	candidates := rpoBounded(g, sw, postDom)

	caseSet := orderedSet(dedupSuccessors(g, sw))

	for _, n := range candidates {
		if n == sw || n == postDom {
			continue
		}
		if len(caseSet.order) < 2 {
			break
		}

		var postDominated []cfgraph.NodeID
		for _, c := range caseSet.order {
			if ifpdt.Dominates(n, c) {
				postDominated = append(postDominated, c)
			}
		}
		if len(postDominated) <= 1 || len(postDominated) >= len(caseSet.order) {
			continue
		}

		newSwitch, err := extractSubSwitch(g, sw, postDominated)
		if err != nil {
			return err
		}
		for _, c := range postDominated {
			caseSet.remove(c)
		}
		caseSet.add(newSwitch)

		ifpdt, err = filteredPostDominators(g)
		if err != nil {
			return err
		}
	}

	return nil
}

// extractSubSwitch moves the switch->case edges named in cases onto a
// fresh sub-switch node, then connects switch to that sub-switch with the
// union of the moved edges' labels (or the default sentinel, if any moved
// edge was the default). It returns the new sub-switch's id.
func extractSubSwitch(g *cfgraph.Graph, sw cfgraph.NodeID, cases []cfgraph.NodeID) (cfgraph.NodeID, error) {
	swNode, err := g.GetNode(sw)
	if err != nil {
		return cfgraph.InvalidNode, rerrors.Internal("weave.extractSubSwitch", err)
	}

	newSwitch := g.AddNode(swNode.Kind, swNode.Payload, swNode.Name+" weaved", 0)
	if nn, err := g.GetNode(newSwitch); err == nil {
		nn.Flags |= cfgraph.FlagWeaved
	}

	var labels cfgraph.CaseLabels
	weavingDefault := false

	for _, c := range cases {
		info, ok := edgeInfo(g, sw, c)
		if !ok {
			return cfgraph.InvalidNode, rerrors.Internal("weave.extractSubSwitch", rerrors.ErrDanglingEdge)
		}
		if err := g.RemoveEdge(sw, c); err != nil {
			return cfgraph.InvalidNode, rerrors.Internal("weave.extractSubSwitch", err)
		}

		if info.Labels.IsDefault() {
			weavingDefault = true
			labels = nil
		} else if !weavingDefault {
			labels = labels.Union(info.Labels)
		}

		if err := g.AddEdge(newSwitch, c, info); err != nil {
			return cfgraph.InvalidNode, rerrors.Internal("weave.extractSubSwitch", err)
		}
	}

	if err := g.AddEdge(sw, newSwitch, cfgraph.EdgeInfo{Labels: labels}); err != nil {
		return cfgraph.InvalidNode, rerrors.Internal("weave.extractSubSwitch", err)
	}

	return newSwitch, nil
}

func edgeInfo(g *cfgraph.Graph, src, dst cfgraph.NodeID) (cfgraph.EdgeInfo, bool) {
	for _, e := range g.LabeledSuccessors(src) {
		if e.Dst == dst {
			return e.Info, true
		}
	}
	return cfgraph.EdgeInfo{}, false
}

func dedupSuccessors(g *cfgraph.Graph, n cfgraph.NodeID) []cfgraph.NodeID {
	seen := map[cfgraph.NodeID]bool{}
	var out []cfgraph.NodeID
	for _, s := range g.Successors(n) {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// idSet is an insertion-ordered set of node ids, used to track a switch's
// live case targets as extraction narrows them.
type idSet struct {
	order []cfgraph.NodeID
	has   map[cfgraph.NodeID]bool
}

func orderedSet(ids []cfgraph.NodeID) *idSet {
	s := &idSet{has: map[cfgraph.NodeID]bool{}}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *idSet) add(id cfgraph.NodeID) {
	if s.has[id] {
		return
	}
	s.has[id] = true
	s.order = append(s.order, id)
}

func (s *idSet) remove(id cfgraph.NodeID) {
	if !s.has[id] {
		return
	}
	delete(s.has, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// filteredPostDominators builds the IFPDT over g using whichever sink
// dominance has available: the region's unique successorless node if
// there is one, falling back to the region's entry when there isn't
// (mirrors inflate.singleSink's same fallback for the same reason).
func filteredPostDominators(g *cfgraph.Graph) (*dominance.Tree, error) {
	sink, ok := singleSink(g)
	if !ok {
		entry, err := g.Entry()
		if err != nil {
			return nil, rerrors.Internal("weave.filteredPostDominators", err)
		}
		sink = entry
	}
	return dominance.FilteredPostDominators(g, sink), nil
}

func singleSink(g *cfgraph.Graph) (cfgraph.NodeID, bool) {
	var sink cfgraph.NodeID
	count := 0
	for _, n := range g.NodeIDs() {
		if len(g.Successors(n)) == 0 {
			sink = n
			count++
		}
	}
	return sink, count == 1
}

// rpoBounded returns the reverse-post-order DFS traversal rooted at start,
// never expanding past stop: stop itself, and anything only reachable
// through it, is excluded from the result entirely (mirrors the grounding
// implementation's ReversePostOrderTraversalExt bounded by the switch's own
// post-dominator).
func rpoBounded(g *cfgraph.Graph, start, stop cfgraph.NodeID) []cfgraph.NodeID {
	visited := map[cfgraph.NodeID]bool{}
	var post []cfgraph.NodeID
	var visit func(cfgraph.NodeID)
	visit = func(n cfgraph.NodeID) {
		if visited[n] {
			return
		}
		visited[n] = true
		if n == stop {
			return
		}
		for _, s := range g.Successors(n) {
			visit(s)
		}
		post = append(post, n)
	}
	visit(start)

	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
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
