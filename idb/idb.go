// File: idb.go
// Role: the per-divergent-edge clone-and-redirect rewrite.
package idb

import (
	"fmt"

	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/scopecloser"
)

// Run sweeps every node of g and inlines each of its divergent successor
// edges in turn. Nodes with no scope-closer marker have no notion of
// "divergent" and are skipped entirely (scopecloser.IsDivergent always
// reports false for them).
func Run(g *cfgraph.Graph) error {
	for _, n := range g.NodeIDs() {
		if _, ok := scopecloser.Closer(g, n); !ok {
			continue
		}
		for _, succ := range snapshotDivergent(g, n) {
			if err := inlineOne(g, n, succ); err != nil {
				return fmt.Errorf("idb: Run: %w", err)
			}
		}
	}
	return nil
}

// snapshotDivergent lists cond's currently-divergent successors before any
// mutation starts. A duplicate entry means cond has two parallel edges to
// the same divergent successor; both are processed, one per call.
func snapshotDivergent(g *cfgraph.Graph, cond cfgraph.NodeID) []cfgraph.NodeID {
	var out []cfgraph.NodeID
	for _, s := range g.LabeledSuccessors(cond) {
		if scopecloser.IsDivergent(g, cond, s.Dst) {
			out = append(out, s.Dst)
		}
	}
	return out
}

// inlineOne performs the five-step rewrite of spec.md §4.6 for one
// divergent edge (cond, succ):
//
//  1. Clone cond into cond'.
//  2. Redirect every current predecessor of cond to cond'.
//  3. Remove the divergent edge from cond.
//  4. Add cond' -> succ, carrying the original edge's case labels.
//  5. Add cond' -> cond, so non-divergent paths still originate from cond.
//
// cfgraph.CloneNode never copies edges, so step 4's "prune the
// non-divergent successors from cond'" has nothing to do: cond' starts
// with none and gains only the one edge this rewrite adds.
func inlineOne(g *cfgraph.Graph, cond, succ cfgraph.NodeID) error {
	info, ok := firstEdgeInfo(g, cond, succ)
	if !ok {
		return nil
	}

	condPrime, err := g.CloneNode(cond)
	if err != nil {
		return err
	}
	if target, ok := scopecloser.Closer(g, cond); ok {
		if err := scopecloser.SetCloser(g, condPrime, target); err != nil {
			return err
		}
	}

	for _, p := range g.Predecessors(cond) {
		if err := g.MoveEdgeTarget(p, cond, condPrime); err != nil {
			return err
		}
	}

	if err := g.RemoveEdge(cond, succ); err != nil {
		return err
	}
	if err := g.AddEdge(condPrime, succ, info); err != nil {
		return err
	}
	return g.AddEdge(condPrime, cond, cfgraph.EdgeInfo{})
}

// firstEdgeInfo returns the EdgeInfo of the first src->dst edge it finds.
func firstEdgeInfo(g *cfgraph.Graph, src, dst cfgraph.NodeID) (cfgraph.EdgeInfo, bool) {
	for _, s := range g.LabeledSuccessors(src) {
		if s.Dst == dst {
			return s.Info, true
		}
	}
	return cfgraph.EdgeInfo{}, false
}
