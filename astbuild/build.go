// File: build.go
// Role: the entry point: collapse every loop, then walk the remaining
// acyclic skeleton with a recursive-descent builder driven by the region's
// filtered post-dominator tree.
package astbuild

import (
	"sort"

	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/dominance"
	"github.com/cfgforge/restructure/rerrors"
)

// Build turns g into a structured scope tree rooted at entry, per spec.md
// §6. g is mutated in place by the loop-collapsing step; callers that need
// the original graph afterward should Clone it first.
func Build(g *cfgraph.Graph, _ cfgraph.NodeID) (Node, error) {
	if err := collapseLoops(g); err != nil {
		return nil, err
	}
	entry, err := g.Entry()
	if err != nil {
		return nil, rerrors.Internal("astbuild.Build", err)
	}

	sink, ok := singleSink(g)
	if !ok {
		sink = entry
	}
	ifpdt := dominance.FilteredPostDominators(g, sink)

	return structureFrom(g, entry, cfgraph.InvalidNode, ifpdt)
}

// structureFrom builds the scope tree for the straight-line/branching
// region starting at start, stopping (without descending into) stop. stop
// is cfgraph.InvalidNode when there is no bound (the outermost call).
func structureFrom(
	g *cfgraph.Graph,
	start, stop cfgraph.NodeID,
	ifpdt *dominance.Tree,
) (Node, error) {
	var seq []Node
	cur := start

	for cur != stop && cur != cfgraph.InvalidNode {
		node, err := g.GetNode(cur)
		if err != nil {
			return nil, rerrors.Internal("astbuild.structureFrom", err)
		}

		switch node.Kind {
		case cfgraph.KindBreak:
			meta, _ := node.Payload.(breakMeta)
			seq = append(seq, &Break{Label: meta.label})
			return finish(seq), nil

		case cfgraph.KindContinue:
			seq = append(seq, &Continue{})
			return finish(seq), nil

		case cfgraph.KindCollapsed:
			loop, err := structureLoop(node)
			if err != nil {
				return nil, err
			}
			seq = append(seq, loop)
			succs := dedupSuccessors(g, cur)
			switch len(succs) {
			case 0:
				return finish(seq), nil
			case 1:
				cur = succs[0]
				continue
			default:
				join, err := structureLoopExits(g, cur, succs, ifpdt, &seq)
				if err != nil {
					return nil, err
				}
				if join == cfgraph.InvalidNode {
					return finish(seq), nil
				}
				cur = join
				continue
			}
		}

		succs := dedupSuccessors(g, cur)
		switch len(succs) {
		case 0:
			seq = append(seq, &Leaf{NodeID: cur})
			return finish(seq), nil

		case 1:
			seq = append(seq, &Leaf{NodeID: cur})
			cur = succs[0]
			continue

		case 2:
			seq = append(seq, &Leaf{NodeID: cur})
			branch, join, err := structureIf(g, cur, ifpdt)
			if err != nil {
				return nil, err
			}
			seq = append(seq, branch)
			if join == cfgraph.InvalidNode {
				return finish(seq), nil
			}
			cur = join
			continue

		default:
			seq = append(seq, &Leaf{NodeID: cur})
			sw, join, err := structureSwitch(g, cur, ifpdt)
			if err != nil {
				return nil, err
			}
			seq = append(seq, sw)
			if join == cfgraph.InvalidNode {
				return finish(seq), nil
			}
			cur = join
			continue
		}
	}

	return finish(seq), nil
}

// finish wraps a built statement run in a Sequence, unless it collapses to
// exactly one statement.
func finish(seq []Node) Node {
	if len(seq) == 1 {
		return seq[0]
	}
	return &Sequence{Children: seq}
}

// structureIf builds the If for a two-successor node cond. The join is
// cond's IFPDT immediate post-dominator: the first point both branches are
// guaranteed to reach, where structuring resumes after the If.
func structureIf(
	g *cfgraph.Graph,
	cond cfgraph.NodeID,
	ifpdt *dominance.Tree,
) (Node, cfgraph.NodeID, error) {
	succs := dedupSuccessors(g, cond)
	join, ok := ifpdt.IDom(cond)
	if !ok {
		join = cfgraph.InvalidNode
	}

	thenNode, err := structureFrom(g, succs[0], join, ifpdt)
	if err != nil {
		return nil, cfgraph.InvalidNode, err
	}
	var elseNode Node
	if len(succs) > 1 {
		elseNode, err = structureFrom(g, succs[1], join, ifpdt)
		if err != nil {
			return nil, cfgraph.InvalidNode, err
		}
	}

	return &If{Cond: cond, Then: thenNode, Else: elseNode}, join, nil
}

// structureSwitch builds the Switch for a multi-successor node sw (already
// split by weave wherever its cases needed nested sub-switches). The join
// is sw's IFPDT immediate post-dominator.
func structureSwitch(
	g *cfgraph.Graph,
	sw cfgraph.NodeID,
	ifpdt *dominance.Tree,
) (Node, cfgraph.NodeID, error) {
	join, ok := ifpdt.IDom(sw)
	if !ok {
		join = cfgraph.InvalidNode
	}

	var cases []SwitchCase
	var defaultBody Node

	for _, e := range g.LabeledSuccessors(sw) {
		body, err := structureFrom(g, e.Dst, join, ifpdt)
		if err != nil {
			return nil, cfgraph.InvalidNode, err
		}
		if e.Info.Labels.IsDefault() {
			defaultBody = body
			continue
		}
		cases = append(cases, SwitchCase{Labels: e.Info.Labels, Body: body})
	}

	return &Switch{Scrutinee: sw, Cases: cases, Default: defaultBody}, join, nil
}

// structureLoopExits builds every exit target's continuation for a
// collapsed loop node with more than one distinct successor, the same way
// structureSwitch builds one independent body per case rather than
// following only the first: each successor is its own structured subtree
// up to the loop's shared IFPDT join, so every node reachable solely
// through a non-primary exit still ends up in exactly one Leaf position.
// Labels match loopExitLabel's "L1", "L2", ... scheme, so a label always
// names the same exit target on both the internal Break that raises it and
// the Scope build.go wraps its continuation in here. *seq is appended to
// in place (mirroring structureFrom's own accumulator) since this is a
// multi-body continuation, not a single Node to splice in like If/Switch.
func structureLoopExits(
	g *cfgraph.Graph,
	collapsed cfgraph.NodeID,
	succs []cfgraph.NodeID,
	ifpdt *dominance.Tree,
	seq *[]Node,
) (cfgraph.NodeID, error) {
	join, ok := ifpdt.IDom(collapsed)
	if !ok {
		join = cfgraph.InvalidNode
	}

	for i, s := range succs {
		body, err := structureFrom(g, s, join, ifpdt)
		if err != nil {
			return cfgraph.InvalidNode, err
		}
		*seq = append(*seq, &Scope{Label: loopExitLabel(i), Body: body})
	}

	return join, nil
}

// structureLoop turns a KindCollapsed node's nested graph into a Loop,
// recursively structuring its body and resolving which external node each
// of its Break markers stands in for.
func structureLoop(node *cfgraph.Node) (Node, error) {
	meta, _ := node.Payload.(loopMeta)
	nested := node.Collapsed

	entry, err := nested.Entry()
	if err != nil {
		return nil, rerrors.Internal("astbuild.structureLoop", err)
	}

	innerSink, ok := singleSink(nested)
	if !ok {
		innerSink = entry
	}
	innerIFPDT := dominance.FilteredPostDominators(nested, innerSink)

	body, err := structureFrom(nested, entry, cfgraph.InvalidNode, innerIFPDT)
	if err != nil {
		return nil, err
	}

	exitTargets := loopExitTargets(nested)

	return &Loop{Shape: meta.shape, Body: body, ExitTargets: exitTargets}, nil
}

// loopExitTargets recovers, in ascending label order, the external node ids
// a collapsed loop's Break markers stand in for. A loop with a single exit
// target carries its Break unlabeled; that target is still reported here
// (as the only entry), matching Loop.ExitTargets' documented contract that
// it lists every node reachable by an internal Break regardless of whether
// labels were needed to disambiguate them.
func loopExitTargets(nested *cfgraph.Graph) []cfgraph.NodeID {
	type labeled struct {
		label  string
		target cfgraph.NodeID
	}
	var out []labeled
	for _, id := range nested.NodeIDs() {
		n, err := nested.GetNode(id)
		if err != nil || n.Kind != cfgraph.KindBreak {
			continue
		}
		meta, _ := n.Payload.(breakMeta)
		out = append(out, labeled{label: meta.label, target: meta.target})
	}
	// Compare by length first so "L2" sorts before "L10".
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].label) != len(out[j].label) {
			return len(out[i].label) < len(out[j].label)
		}
		return out[i].label < out[j].label
	})
	ids := make([]cfgraph.NodeID, len(out))
	for i, l := range out {
		ids[i] = l.target
	}
	return ids
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
