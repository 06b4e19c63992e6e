package untangle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/untangle"
)

// diamondWithOutsideEntry builds:
//
//	C -> T -> post
//	C -> E -> post
//	aux -> E   (aux has no predecessor; defeats edge-dominance for E)
//
// so that the then-arm is edge-dominated (and refines away to empty) while
// the else-arm keeps its own weight, and the weighted criterion can be
// tuned by the caller through wThen/wElse/wPost.
func diamondWithOutsideEntry(t *testing.T, wThen, wElse, wPost int) (g *cfgraph.Graph, c, then, els, post cfgraph.NodeID) {
	t.Helper()
	g = cfgraph.NewGraph("f", "r")
	c = g.AddNode(cfgraph.KindCode, nil, "c", 1)
	then = g.AddNode(cfgraph.KindCode, nil, "then", wThen)
	els = g.AddNode(cfgraph.KindCode, nil, "else", wElse)
	post = g.AddNode(cfgraph.KindCode, nil, "post", wPost)
	aux := g.AddNode(cfgraph.KindCode, nil, "aux", 0)

	require.NoError(t, g.AddEdge(c, then, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(c, els, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(then, post, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(els, post, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(aux, els, cfgraph.EdgeInfo{}))
	return g, c, then, els, post
}

func TestRun_SplitsCheaperArmWhenCombingDominates(t *testing.T) {
	g, c, then, els, post := diamondWithOutsideEntry(t, 1, 100, 1)

	require.NoError(t, untangle.Run(g, c, untangle.DefaultConfig()))
	require.NoError(t, g.CheckInvariants())

	require.True(t, g.HasEdge(c, els), "else arm is untouched")
	require.False(t, g.HasEdge(c, then), "then arm's original head is no longer a direct successor")

	succs := g.Successors(c)
	require.Len(t, succs, 2)
	var clone cfgraph.NodeID
	for _, s := range succs {
		if s != els {
			clone = s
		}
	}
	require.NotZero(t, clone)
	require.False(t, g.HasNode(then), "the original then-arm head is dangling and gets pruned")

	for _, s := range g.LabeledSuccessors(c) {
		if s.Dst == clone {
			require.True(t, s.Info.Inlined)
		}
	}

	// The clone reaches its own exit, distinct from the shared post node.
	cloneSuccs := g.Successors(clone)
	require.Len(t, cloneSuccs, 1)
	require.NotEqual(t, post, cloneSuccs[0])
	require.Empty(t, g.Successors(cloneSuccs[0]))

	// The virtual sink never survives.
	for _, n := range g.NodeIDs() {
		node, err := g.GetNode(n)
		require.NoError(t, err)
		require.NotEqual(t, cfgraph.KindArtificialExit, node.Kind)
	}
}

func TestRun_NoSplitWhenCombingIsCheaper(t *testing.T) {
	g, c, then, els, _ := diamondWithOutsideEntry(t, 1, 1, 1)
	before := len(g.NodeIDs())

	require.NoError(t, untangle.Run(g, c, untangle.DefaultConfig()))

	require.True(t, g.HasEdge(c, then))
	require.True(t, g.HasEdge(c, els))
	// Only the virtual sink (and nothing else) was ever added, and it was
	// removed again: node count is unchanged.
	require.Len(t, g.NodeIDs(), before)
}

func TestRun_RejectsNonDAG(t *testing.T) {
	g := cfgraph.NewGraph("f", "r")
	a := g.AddNode(cfgraph.KindCode, nil, "a", 1)
	b := g.AddNode(cfgraph.KindCode, nil, "b", 1)
	require.NoError(t, g.AddEdge(a, b, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(b, a, cfgraph.EdgeInfo{}))

	err := untangle.Run(g, a, untangle.DefaultConfig())
	require.Error(t, err)
}

func TestRun_MultiplicativeFactorRaisesTheBar(t *testing.T) {
	// Comb=100, U=1: with factor 1 this splits; with a high factor it must not.
	g, c, then, els, _ := diamondWithOutsideEntry(t, 1, 100, 1)
	require.NoError(t, untangle.Run(g, c, untangle.Config{MultiplicativeFactor: 1000}))

	require.True(t, g.HasEdge(c, then))
	require.True(t, g.HasEdge(c, els))
}
