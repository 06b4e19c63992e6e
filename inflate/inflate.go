// File: inflate.go
// Role: Run orchestrates untangle, arm blacklisting, switch-case wrapping,
// and the post-order comb walk; combwalk.go holds the walk itself.
package inflate

import (
	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/dominance"
	"github.com/cfgforge/restructure/rerrors"
	"github.com/cfgforge/restructure/untangle"
)

// Config carries the §6 inflate.* tuning knobs plus the untangle config it
// runs as a precondition.
type Config struct {
	Untangle untangle.Config
	// MaxDuplications is inflate.max_duplications: a hard ceiling on node
	// duplication events. Zero (the default) means unlimited.
	MaxDuplications int
}

// DefaultConfig returns the §6 defaults: untangle's default and an
// unlimited duplication budget.
func DefaultConfig() Config {
	return Config{Untangle: untangle.DefaultConfig()}
}

// Run applies inflate to g, per spec.md §4.8. Precondition: g is a DAG
// after untangle, which Run calls first.
func Run(g *cfgraph.Graph, entry cfgraph.NodeID, cfg Config) error {
	if err := untangle.Run(g, entry, cfg.Untangle); err != nil {
		return err
	}
	if !isDAG(g, entry) {
		return rerrors.Structure("inflate.Run", rerrors.ErrNotDAG)
	}

	exits := reachableExits(g)

	dt := dominance.Dominators(g, entry)
	ifpdt := dominance.FilteredPostDominators(g, entry)
	sink, hasSink := singleSink(g)
	if hasSink {
		ifpdt = dominance.FilteredPostDominators(g, sink)
	}

	conditionalSet := map[cfgraph.NodeID]bool{}
	combEnd := map[cfgraph.NodeID]cfgraph.NodeID{}
	var switches []cfgraph.NodeID

	for _, n := range g.NodeIDs() {
		switch len(g.Successors(n)) {
		case 0, 1:
			// not a conditional
		case 2:
			if err := blacklistIfDominated(g, dt, exits, n); err != nil {
				return err
			}
			conditionalSet[n] = true
			post, ok := ifpdt.IDom(n)
			if !ok {
				return rerrors.Internal("inflate.Run", rerrors.ErrMissingPostDominator)
			}
			combEnd[n] = post
		default:
			switches = append(switches, n)
		}
	}

	for _, sw := range switches {
		post, ok := ifpdt.IDom(sw)
		if !ok {
			return rerrors.Internal("inflate.Run", rerrors.ErrMissingPostDominator)
		}
		dummies, err := wrapSwitchCases(g, sw)
		if err != nil {
			return err
		}
		for _, d := range dummies {
			conditionalSet[d] = true
			combEnd[d] = post
		}
	}

	return combAll(g, entry, conditionalSet, combEnd, cfg.MaxDuplications)
}

// singleSink reports the region's unique successorless node, if there is
// exactly one; inflate is normally run after single-exit enforcement, so
// this is the common case and lets IFPDT be computed against the real
// exit rather than entry (whose FilteredPostDominators call above is only
// a placeholder default when no unique sink exists).
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

// blacklistIfDominated marks n's then/else edge Inlined when the
// conditional n entirely dominates the set of exits reachable from that
// arm: that arm can never require duplication, since it is either fully
// absorbed into the other arm or stands alone.
func blacklistIfDominated(
	g *cfgraph.Graph,
	dt *dominance.Tree,
	exits map[cfgraph.NodeID]map[cfgraph.NodeID]bool,
	n cfgraph.NodeID,
) error {
	succs := g.Successors(n)
	then, els := succs[0], succs[1]

	if allDominated(dt, n, exits[then]) {
		if err := g.MarkEdgeInlined(n, then); err != nil {
			return err
		}
	}
	if allDominated(dt, n, exits[els]) {
		if err := g.MarkEdgeInlined(n, els); err != nil {
			return err
		}
	}
	return nil
}

func allDominated(dt *dominance.Tree, n cfgraph.NodeID, exitSet map[cfgraph.NodeID]bool) bool {
	for e := range exitSet {
		if !dt.Dominates(n, e) {
			return false
		}
	}
	return true
}

// reachableExits maps every node to the set of "terminal" nodes (a
// successorless node, or one whose every outgoing edge is already
// Inlined) it can reach, computed by walking predecessors backward from
// each such terminal.
func reachableExits(g *cfgraph.Graph) map[cfgraph.NodeID]map[cfgraph.NodeID]bool {
	result := map[cfgraph.NodeID]map[cfgraph.NodeID]bool{}
	for _, n := range g.NodeIDs() {
		if !isTerminal(g, n) {
			continue
		}
		visited := map[cfgraph.NodeID]bool{n: true}
		stack := []cfgraph.NodeID{n}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if result[cur] == nil {
				result[cur] = map[cfgraph.NodeID]bool{}
			}
			result[cur][n] = true
			for _, p := range g.Predecessors(cur) {
				if visited[p] {
					continue
				}
				visited[p] = true
				stack = append(stack, p)
			}
		}
	}
	return result
}

func isTerminal(g *cfgraph.Graph, n cfgraph.NodeID) bool {
	for _, s := range g.LabeledSuccessors(n) {
		if !s.Info.Inlined {
			return false
		}
	}
	return true
}

// wrapSwitchCases inserts a fresh dummy predecessor between sw and each of
// its distinct case targets, so every arm of a switch shares the single-
// predecessor, single-successor shape a binary conditional's arm has. It
// returns the dummies created, in successor order, deduplicated by target.
func wrapSwitchCases(g *cfgraph.Graph, sw cfgraph.NodeID) ([]cfgraph.NodeID, error) {
	seen := map[cfgraph.NodeID]bool{}
	var dummies []cfgraph.NodeID
	for _, c := range g.Successors(sw) {
		if seen[c] {
			continue
		}
		seen[c] = true

		dummy := g.AddArtificialNode(cfgraph.KindDummyJoin, "switch_case")
		if err := g.MoveEdgeTarget(sw, c, dummy); err != nil {
			return nil, err
		}
		if err := g.AddEdge(dummy, c, cfgraph.EdgeInfo{}); err != nil {
			return nil, err
		}
		dummies = append(dummies, dummy)
	}
	return dummies, nil
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
