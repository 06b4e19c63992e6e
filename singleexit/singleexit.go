// File: singleexit.go
// Role: exit discovery (successorless nodes + unescaping loop headers) and
// the sink rewiring that gives a region a single exit.
package singleexit

import (
	"fmt"

	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/dominance"
)

// Enforce locates every exit in g (per findExits) and, if more than one
// exists, creates a sink node and adds an edge from each exit to it. It
// reports the sink and true when a sink was created, or cfgraph.InvalidNode
// and false when the region already had at most one exit and nothing
// changed.
func Enforce(g *cfgraph.Graph, entry cfgraph.NodeID) (cfgraph.NodeID, bool, error) {
	exits := findExits(g, entry)
	if len(exits) <= 1 {
		return cfgraph.InvalidNode, false, nil
	}

	sink := g.AddArtificialNode(cfgraph.KindArtificialExit, "sink")
	for _, ex := range exits {
		if err := g.AddEdge(ex, sink, cfgraph.EdgeInfo{}); err != nil {
			return cfgraph.InvalidNode, false, fmt.Errorf("singleexit: Enforce: %w", err)
		}
	}
	return sink, true, nil
}

// InsertGatedEntry implements §4.5 step 5: a fresh virtual-entry node with
// two edges, one to the original entry and one to sink, becoming g's new
// entry. It is meant for callers that want a region with both a unique
// entry and a unique sink reachable from it directly (e.g. diagnostic
// tooling that wants to short-circuit straight to sink); ordinary pipeline
// use calls Enforce alone.
func InsertGatedEntry(g *cfgraph.Graph, entry, sink cfgraph.NodeID) (cfgraph.NodeID, error) {
	gated := g.AddArtificialNode(cfgraph.KindArtificialEntry, "gated_entry")
	if err := g.AddEdge(gated, entry, cfgraph.EdgeInfo{}); err != nil {
		return cfgraph.InvalidNode, fmt.Errorf("singleexit: InsertGatedEntry: %w", err)
	}
	if err := g.AddEdge(gated, sink, cfgraph.EdgeInfo{}); err != nil {
		return cfgraph.InvalidNode, fmt.Errorf("singleexit: InsertGatedEntry: %w", err)
	}
	if err := g.SetEntry(gated); err != nil {
		return cfgraph.InvalidNode, fmt.Errorf("singleexit: InsertGatedEntry: %w", err)
	}
	return gated, nil
}

// findExits returns every successorless node, in ascending node-id order,
// followed by every not-yet-listed loop header whose natural loop body
// never reaches outside itself, in the order their back edges are found.
func findExits(g *cfgraph.Graph, entry cfgraph.NodeID) []cfgraph.NodeID {
	seen := map[cfgraph.NodeID]bool{}
	var exits []cfgraph.NodeID

	for _, n := range g.NodeIDs() {
		if len(g.Successors(n)) == 0 && !seen[n] {
			seen[n] = true
			exits = append(exits, n)
		}
	}
	for _, h := range unescapingLoopHeaders(g, entry) {
		if !seen[h] {
			seen[h] = true
			exits = append(exits, h)
		}
	}
	return exits
}

// unescapingLoopHeaders finds every loop header (the target of a back edge
// per the dominator tree) whose natural loop body has no edge leaving the
// body: an infinite loop, which for §4.5's purposes "never returns" just
// as a successorless block does.
func unescapingLoopHeaders(g *cfgraph.Graph, entry cfgraph.NodeID) []cfgraph.NodeID {
	dt := dominance.Dominators(g, entry)

	body := map[cfgraph.NodeID]map[cfgraph.NodeID]bool{}
	var order []cfgraph.NodeID

	for _, n := range g.NodeIDs() {
		for _, h := range g.Successors(n) {
			if !dt.Dominates(h, n) {
				continue
			}
			b, ok := body[h]
			if !ok {
				b = map[cfgraph.NodeID]bool{h: true}
				body[h] = b
				order = append(order, h)
			}
			growNaturalLoop(g, h, n, b)
		}
	}

	var out []cfgraph.NodeID
	for _, h := range order {
		if !escapesBody(g, body[h]) {
			out = append(out, h)
		}
	}
	return out
}

// growNaturalLoop adds to body every node that can reach tail by walking
// predecessors without passing through header.
func growNaturalLoop(g *cfgraph.Graph, header, tail cfgraph.NodeID, body map[cfgraph.NodeID]bool) {
	if body[tail] {
		return
	}
	stack := []cfgraph.NodeID{tail}
	body[tail] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range g.Predecessors(n) {
			if p == header || body[p] {
				continue
			}
			body[p] = true
			stack = append(stack, p)
		}
	}
}

// escapesBody reports whether any node in body has a successor outside it.
func escapesBody(g *cfgraph.Graph, body map[cfgraph.NodeID]bool) bool {
	for n := range body {
		for _, s := range g.Successors(n) {
			if !body[s] {
				return true
			}
		}
	}
	return false
}
