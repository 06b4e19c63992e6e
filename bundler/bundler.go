// File: bundler.go
// Role: the post-order sweep that bundles incoming and outgoing edges by
// cycle-equivalence class.
package bundler

import (
	"fmt"

	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/cycleeq"
)

// Bundle visits every node reachable from entry in post-order and, for
// each, partitions its incoming edges by class (creating one dispatcher
// predecessor per distinct class) and its outgoing edges by class
// (creating one dispatcher successor per distinct class). Edges with no
// recorded class (created after cycleeq.Analyze ran, never passed through
// Result.Insert) are left untouched.
func Bundle(g *cfgraph.Graph, entry cfgraph.NodeID, classes *cycleeq.Result) error {
	for _, n := range postOrder(g, entry) {
		if err := bundleIncoming(g, n, classes); err != nil {
			return err
		}
		if err := bundleOutgoing(g, n, classes); err != nil {
			return err
		}
	}
	return nil
}

type classedEdge struct {
	other cfgraph.NodeID
	info  cfgraph.EdgeInfo
}

// bundleIncoming groups n's incoming edges by class and, for every class,
// creates a dispatcher predecessor carrying all of that class's edges.
func bundleIncoming(g *cfgraph.Graph, n cfgraph.NodeID, classes *cycleeq.Result) error {
	byClass, order := snapshotIncoming(g, n, classes)

	for _, class := range order {
		edges := byClass[class]
		if len(edges) == 0 {
			continue
		}
		dispatcher := g.AddArtificialNode(cfgraph.KindDispatcher, dispatcherName(g, n, "pred", class))
		for _, e := range edges {
			if err := g.RemoveEdge(e.other, n); err != nil {
				return fmt.Errorf("bundler: bundleIncoming(%d): %w", n, err)
			}
			if err := g.AddEdge(e.other, dispatcher, e.info); err != nil {
				return fmt.Errorf("bundler: bundleIncoming(%d): %w", n, err)
			}
		}
		if err := g.AddEdge(dispatcher, n, cfgraph.EdgeInfo{}); err != nil {
			return fmt.Errorf("bundler: bundleIncoming(%d): %w", n, err)
		}
		classes.Insert(cycleeq.Edge{Src: dispatcher, Dst: n, Index: 0}, class)
	}
	return nil
}

// bundleOutgoing is bundleIncoming's mirror for n's outgoing edges.
func bundleOutgoing(g *cfgraph.Graph, n cfgraph.NodeID, classes *cycleeq.Result) error {
	byClass, order := snapshotOutgoing(g, n, classes)

	for _, class := range order {
		edges := byClass[class]
		if len(edges) == 0 {
			continue
		}
		dispatcher := g.AddArtificialNode(cfgraph.KindDispatcher, dispatcherName(g, n, "succ", class))
		for _, e := range edges {
			if err := g.RemoveEdge(n, e.other); err != nil {
				return fmt.Errorf("bundler: bundleOutgoing(%d): %w", n, err)
			}
			if err := g.AddEdge(dispatcher, e.other, e.info); err != nil {
				return fmt.Errorf("bundler: bundleOutgoing(%d): %w", n, err)
			}
		}
		if err := g.AddEdge(n, dispatcher, cfgraph.EdgeInfo{}); err != nil {
			return fmt.Errorf("bundler: bundleOutgoing(%d): %w", n, err)
		}
		classes.Insert(cycleeq.Edge{Src: n, Dst: dispatcher, Index: 0}, class)
	}
	return nil
}

// snapshotIncoming groups n's current incoming edges by class before any
// mutation starts, preserving first-seen class order for determinism.
func snapshotIncoming(g *cfgraph.Graph, n cfgraph.NodeID, classes *cycleeq.Result) (map[uint64][]classedEdge, []uint64) {
	byClass := map[uint64][]classedEdge{}
	var order []uint64
	for _, src := range g.NodeIDs() {
		for idx, s := range g.LabeledSuccessors(src) {
			if s.Dst != n {
				continue
			}
			class, ok := classes.ClassOf(cycleeq.Edge{Src: src, Dst: n, Index: idx})
			if !ok {
				continue
			}
			if _, seen := byClass[class]; !seen {
				order = append(order, class)
			}
			byClass[class] = append(byClass[class], classedEdge{other: src, info: s.Info})
		}
	}
	return byClass, order
}

// snapshotOutgoing is snapshotIncoming's mirror for n's outgoing edges.
func snapshotOutgoing(g *cfgraph.Graph, n cfgraph.NodeID, classes *cycleeq.Result) (map[uint64][]classedEdge, []uint64) {
	byClass := map[uint64][]classedEdge{}
	var order []uint64
	for idx, s := range g.LabeledSuccessors(n) {
		class, ok := classes.ClassOf(cycleeq.Edge{Src: n, Dst: s.Dst, Index: idx})
		if !ok {
			continue
		}
		if _, seen := byClass[class]; !seen {
			order = append(order, class)
		}
		byClass[class] = append(byClass[class], classedEdge{other: s.Dst, info: s.Info})
	}
	return byClass, order
}

// dispatcherName builds a debug-friendly node name mirroring the
// "<node>_pred_ceci_<class>" / "<node>_succ_ceci_<class>" convention the
// consumer of this analysis elsewhere in the decompiler uses.
func dispatcherName(g *cfgraph.Graph, n cfgraph.NodeID, side string, class uint64) string {
	name := fmt.Sprintf("n%d", n)
	if node, err := g.GetNode(n); err == nil && node.Name != "" {
		name = node.Name
	}
	return fmt.Sprintf("%s_%s_ceci_%d", name, side, class)
}

// postOrder returns the nodes reachable from entry in DFS post-order.
func postOrder(g *cfgraph.Graph, entry cfgraph.NodeID) []cfgraph.NodeID {
	visited := make(map[cfgraph.NodeID]bool)
	var out []cfgraph.NodeID

	var visit func(cfgraph.NodeID)
	visit = func(n cfgraph.NodeID) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, s := range g.Successors(n) {
			visit(s)
		}
		out = append(out, n)
	}
	visit(entry)
	return out
}
