package inflate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/inflate"
	"github.com/cfgforge/restructure/rerrors"
)

// diamondWithJoin builds a simple single-entry, single-exit diamond:
//
//	c -> then -> post
//	c -> else -> post
func diamondWithJoin(t *testing.T) (g *cfgraph.Graph, c, then, els, post cfgraph.NodeID) {
	t.Helper()
	g = cfgraph.NewGraph("f", "r")
	c = g.AddNode(cfgraph.KindCode, nil, "c", 1)
	then = g.AddNode(cfgraph.KindCode, nil, "then", 1)
	els = g.AddNode(cfgraph.KindCode, nil, "else", 1)
	post = g.AddNode(cfgraph.KindCode, nil, "post", 1)

	require.NoError(t, g.AddEdge(c, then, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(c, els, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(then, post, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(els, post, cfgraph.EdgeInfo{}))
	require.NoError(t, g.SetEntry(c))
	return g, c, then, els, post
}

func TestRun_PlainDiamondNeedsNoDuplication(t *testing.T) {
	// A single, privately-owned diamond is already reducible: both arms'
	// only route into post is through this one conditional, so combing it
	// is a no-op beyond the walk itself — no clone, no dummy.
	g, c, _, _, post := diamondWithJoin(t)
	before := len(g.NodeIDs())

	require.NoError(t, inflate.Run(g, c, inflate.DefaultConfig()))
	require.NoError(t, g.CheckInvariants())

	require.Len(t, g.NodeIDs(), before)
	require.Len(t, g.Predecessors(post), 2)
}

// crossingDiamonds chains two "crossing" shapes, each with a node reached
// both from within its own conditional's arm and from a sibling path
// entirely outside that conditional's reachable set — the case that
// actually forces inflate to duplicate a node, rather than just insert a
// dummy join. Two are chained so at least two duplications are guaranteed,
// regardless of how the two conditionals' own convergences are combed.
//
//	entry -> c1 -> t1 -> mid1 -> j1
//	entry -> outside1 -> mid1
//	c1 -> j1
//	j1 -> c2 -> t2 -> mid2 -> post
//	j1 -> outside2 -> mid2
//	c2 -> post
func crossingDiamonds(t *testing.T) (g *cfgraph.Graph, entry cfgraph.NodeID) {
	t.Helper()
	g = cfgraph.NewGraph("f", "r")
	entry = g.AddNode(cfgraph.KindCode, nil, "entry", 1)
	c1 := g.AddNode(cfgraph.KindCode, nil, "c1", 1)
	outside1 := g.AddNode(cfgraph.KindCode, nil, "outside1", 1)
	t1 := g.AddNode(cfgraph.KindCode, nil, "t1", 1)
	mid1 := g.AddNode(cfgraph.KindCode, nil, "mid1", 1)
	j1 := g.AddNode(cfgraph.KindCode, nil, "j1", 1)
	c2 := g.AddNode(cfgraph.KindCode, nil, "c2", 1)
	outside2 := g.AddNode(cfgraph.KindCode, nil, "outside2", 1)
	t2 := g.AddNode(cfgraph.KindCode, nil, "t2", 1)
	mid2 := g.AddNode(cfgraph.KindCode, nil, "mid2", 1)
	post := g.AddNode(cfgraph.KindCode, nil, "post", 1)

	require.NoError(t, g.AddEdge(entry, c1, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(entry, outside1, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(c1, t1, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(c1, j1, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(t1, mid1, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(outside1, mid1, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(mid1, j1, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(j1, c2, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(j1, outside2, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(c2, t2, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(c2, post, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(t2, mid2, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(outside2, mid2, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(mid2, post, cfgraph.EdgeInfo{}))
	require.NoError(t, g.SetEntry(entry))
	return g, entry
}

func TestRun_CrossingPathsForceDuplication(t *testing.T) {
	g, entry := crossingDiamonds(t)

	require.NoError(t, inflate.Run(g, entry, inflate.DefaultConfig()))
	require.NoError(t, g.CheckInvariants())

	require.GreaterOrEqual(t, countByName(g, "mid1"), 2)
	require.GreaterOrEqual(t, countByName(g, "mid2"), 2)
}

func countByName(g *cfgraph.Graph, name string) int {
	count := 0
	for _, n := range g.NodeIDs() {
		node, err := g.GetNode(n)
		if err == nil && node.Name == name {
			count++
		}
	}
	return count
}

func TestRun_PlainSwitchCombsCleanly(t *testing.T) {
	// Every case here is privately owned (single predecessor: the
	// switch's own per-case wrapping dummy), so it needs no further
	// duplication; the wrapping dummies purge back out as trivial once
	// the walk confirms no arm needs splitting, leaving the switch
	// pointing straight at its three cases again.
	g := cfgraph.NewGraph("f", "r")
	sw := g.AddNode(cfgraph.KindCode, nil, "switch", 1)
	a := g.AddNode(cfgraph.KindCode, nil, "a", 1)
	b := g.AddNode(cfgraph.KindCode, nil, "b", 1)
	c := g.AddNode(cfgraph.KindCode, nil, "c", 1)
	post := g.AddNode(cfgraph.KindCode, nil, "post", 1)

	require.NoError(t, g.AddEdge(sw, a, cfgraph.EdgeInfo{Labels: cfgraph.NewCaseLabels(0)}))
	require.NoError(t, g.AddEdge(sw, b, cfgraph.EdgeInfo{Labels: cfgraph.NewCaseLabels(1)}))
	require.NoError(t, g.AddEdge(sw, c, cfgraph.EdgeInfo{Labels: cfgraph.NewCaseLabels(2)}))
	require.NoError(t, g.AddEdge(a, post, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(b, post, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(c, post, cfgraph.EdgeInfo{}))
	require.NoError(t, g.SetEntry(sw))

	require.NoError(t, inflate.Run(g, sw, inflate.DefaultConfig()))
	require.NoError(t, g.CheckInvariants())

	require.ElementsMatch(t, []cfgraph.NodeID{a, b, c}, g.Successors(sw))
	require.ElementsMatch(t, []cfgraph.NodeID{a, b, c}, g.Predecessors(post))
}

func TestRun_UnlimitedBudgetByDefault(t *testing.T) {
	g, c, _, _, _ := diamondWithJoin(t)

	cfg := inflate.DefaultConfig()
	require.Zero(t, cfg.MaxDuplications)
	require.NoError(t, inflate.Run(g, c, cfg))
}

func TestRun_RejectsWhenDuplicationBudgetExceeded(t *testing.T) {
	g, entry := crossingDiamonds(t)

	cfg := inflate.DefaultConfig()
	cfg.MaxDuplications = 1

	err := inflate.Run(g, entry, cfg)
	require.Error(t, err)

	re, ok := rerrors.AsRegionError(err)
	require.True(t, ok)
	require.Equal(t, rerrors.KindBudgetExceeded, re.Kind)
}

func TestRun_RejectsNonDAG(t *testing.T) {
	g := cfgraph.NewGraph("f", "r")
	a := g.AddNode(cfgraph.KindCode, nil, "a", 1)
	b := g.AddNode(cfgraph.KindCode, nil, "b", 1)
	require.NoError(t, g.AddEdge(a, b, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(b, a, cfgraph.EdgeInfo{}))
	require.NoError(t, g.SetEntry(a))

	err := inflate.Run(g, a, inflate.DefaultConfig())
	require.Error(t, err)
}
