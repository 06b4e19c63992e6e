package astbuild_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cfgforge/restructure/astbuild"
	"github.com/cfgforge/restructure/cfgraph"
)

// TestBuild_DiamondProducesIfWithNoRestructuring mirrors spec.md §8
// scenario 1: a plain diamond needs no restructuring, just an If wrapped
// in the surrounding sequence.
func TestBuild_DiamondProducesIfWithNoRestructuring(t *testing.T) {
	g := cfgraph.NewGraph("f", "r")
	entry := g.AddNode(cfgraph.KindCode, nil, "entry", 1)
	then := g.AddNode(cfgraph.KindCode, nil, "then", 1)
	els := g.AddNode(cfgraph.KindCode, nil, "else", 1)
	post := g.AddNode(cfgraph.KindCode, nil, "post", 1)

	require.NoError(t, g.AddEdge(entry, then, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(entry, els, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(then, post, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(els, post, cfgraph.EdgeInfo{}))
	require.NoError(t, g.SetEntry(entry))

	n, err := astbuild.Build(g, entry)
	require.NoError(t, err)

	seq, ok := n.(*astbuild.Sequence)
	require.True(t, ok, "expected a Sequence, got %T", n)
	require.Len(t, seq.Children, 3)

	leafEntry, ok := seq.Children[0].(*astbuild.Leaf)
	require.True(t, ok)
	require.Equal(t, entry, leafEntry.NodeID)

	ifNode, ok := seq.Children[1].(*astbuild.If)
	require.True(t, ok)
	require.Equal(t, entry, ifNode.Cond)
	require.Equal(t, &astbuild.Leaf{NodeID: then}, ifNode.Then)
	require.Equal(t, &astbuild.Leaf{NodeID: els}, ifNode.Else)

	leafPost, ok := seq.Children[2].(*astbuild.Leaf)
	require.True(t, ok)
	require.Equal(t, post, leafPost.NodeID)
}

// TestBuild_SingleExitWhileLoop builds a top-tested loop with a single exit
// target: header (h) branches to body (b) or exit; b unconditionally loops
// back to h. Per the natural-loop test (h dominates b, edge b->h is a back
// edge), this should collapse into a single Loop(while, ..., [exit]).
func TestBuild_SingleExitWhileLoop(t *testing.T) {
	g := cfgraph.NewGraph("f", "r")
	h := g.AddNode(cfgraph.KindCode, nil, "h", 1)
	b := g.AddNode(cfgraph.KindCode, nil, "b", 1)
	exit := g.AddNode(cfgraph.KindCode, nil, "exit", 1)

	require.NoError(t, g.AddEdge(h, b, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(h, exit, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(b, h, cfgraph.EdgeInfo{}))
	require.NoError(t, g.SetEntry(h))

	n, err := astbuild.Build(g, h)
	require.NoError(t, err)

	seq, ok := n.(*astbuild.Sequence)
	require.True(t, ok, "expected a Sequence, got %T", n)
	require.Len(t, seq.Children, 2)

	loop, ok := seq.Children[0].(*astbuild.Loop)
	require.True(t, ok)
	require.Equal(t, astbuild.LoopWhile, loop.Shape)
	require.Equal(t, []cfgraph.NodeID{exit}, loop.ExitTargets)

	// The loop's own test (h) has no separate Cond field on Loop, so it
	// surfaces inside Body as an If: take the body branch and continue, or
	// take the exit branch and break.
	bodySeq, ok := loop.Body.(*astbuild.Sequence)
	require.True(t, ok, "expected loop body Sequence, got %T", loop.Body)
	require.Len(t, bodySeq.Children, 2)

	headerLeaf, ok := bodySeq.Children[0].(*astbuild.Leaf)
	require.True(t, ok)
	require.Equal(t, h, headerLeaf.NodeID)

	testIf, ok := bodySeq.Children[1].(*astbuild.If)
	require.True(t, ok, "expected the header's test to surface as an If, got %T", bodySeq.Children[1])
	require.Equal(t, h, testIf.Cond)

	thenSeq, ok := testIf.Then.(*astbuild.Sequence)
	require.True(t, ok, "expected the in-loop branch to continue, got %T", testIf.Then)
	require.Len(t, thenSeq.Children, 2)
	bodyLeaf, ok := thenSeq.Children[0].(*astbuild.Leaf)
	require.True(t, ok)
	require.Equal(t, b, bodyLeaf.NodeID)
	_, isContinue := thenSeq.Children[1].(*astbuild.Continue)
	require.True(t, isContinue)

	brk, ok := testIf.Else.(*astbuild.Break)
	require.True(t, ok, "expected the exit branch to break, got %T", testIf.Else)
	require.Empty(t, brk.Label)

	leafExit, ok := seq.Children[1].(*astbuild.Leaf)
	require.True(t, ok)
	require.Equal(t, exit, leafExit.NodeID)
}

// TestBuild_InfiniteLoopHasNoTopOrBottomTest builds a loop with no exit
// test at either the header or the back-edge source, per spec.md §8
// scenario 6: the only way out is an internal branch partway through the
// body, which should surface as LoopInfinite with its single exit target.
func TestBuild_InfiniteLoopHasNoTopOrBottomTest(t *testing.T) {
	g := cfgraph.NewGraph("f", "r")
	h := g.AddNode(cfgraph.KindCode, nil, "h", 1)
	mid := g.AddNode(cfgraph.KindCode, nil, "mid", 1)
	tail := g.AddNode(cfgraph.KindCode, nil, "tail", 1)
	exit := g.AddNode(cfgraph.KindCode, nil, "exit", 1)

	require.NoError(t, g.AddEdge(h, mid, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(mid, tail, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(mid, exit, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(tail, h, cfgraph.EdgeInfo{}))
	require.NoError(t, g.SetEntry(h))

	n, err := astbuild.Build(g, h)
	require.NoError(t, err)

	seq, ok := n.(*astbuild.Sequence)
	require.True(t, ok, "expected a Sequence, got %T", n)
	require.Len(t, seq.Children, 2)

	loop, ok := seq.Children[0].(*astbuild.Loop)
	require.True(t, ok, "expected first statement to be a Loop, got %T", seq.Children[0])
	require.Equal(t, astbuild.LoopInfinite, loop.Shape)
	require.Equal(t, []cfgraph.NodeID{exit}, loop.ExitTargets)

	leafExit, ok := seq.Children[1].(*astbuild.Leaf)
	require.True(t, ok)
	require.Equal(t, exit, leafExit.NodeID)
}

// TestBuild_LoopWithTwoDistinctExitTargetsStructuresBoth builds a loop whose
// body branches to two different external nodes (e1, e2) that both flow on
// to a shared post node. Both exits must surface as their own Leaf, wrapped
// in a labeled Scope, rather than having one silently dropped.
func TestBuild_LoopWithTwoDistinctExitTargetsStructuresBoth(t *testing.T) {
	g := cfgraph.NewGraph("f", "r")
	h := g.AddNode(cfgraph.KindCode, nil, "h", 1)
	mid := g.AddNode(cfgraph.KindCode, nil, "mid", 1)
	e1 := g.AddNode(cfgraph.KindCode, nil, "e1", 1)
	e2 := g.AddNode(cfgraph.KindCode, nil, "e2", 1)
	post := g.AddNode(cfgraph.KindCode, nil, "post", 1)

	require.NoError(t, g.AddEdge(h, mid, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(mid, h, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(mid, e1, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(mid, e2, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(e1, post, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(e2, post, cfgraph.EdgeInfo{}))
	require.NoError(t, g.SetEntry(h))

	n, err := astbuild.Build(g, h)
	require.NoError(t, err)

	seq, ok := n.(*astbuild.Sequence)
	require.True(t, ok, "expected a Sequence, got %T", n)
	require.Len(t, seq.Children, 4)

	loop, ok := seq.Children[0].(*astbuild.Loop)
	require.True(t, ok, "expected first statement to be a Loop, got %T", seq.Children[0])
	require.Equal(t, astbuild.LoopInfinite, loop.Shape)
	require.Equal(t, []cfgraph.NodeID{e1, e2}, loop.ExitTargets)

	scope1, ok := seq.Children[1].(*astbuild.Scope)
	require.True(t, ok, "expected a Scope for the first exit, got %T", seq.Children[1])
	require.Equal(t, "L1", scope1.Label)
	leaf1, ok := scope1.Body.(*astbuild.Leaf)
	require.True(t, ok, "expected e1's continuation to be a Leaf, got %T", scope1.Body)
	require.Equal(t, e1, leaf1.NodeID)

	scope2, ok := seq.Children[2].(*astbuild.Scope)
	require.True(t, ok, "expected a Scope for the second exit, got %T", seq.Children[2])
	require.Equal(t, "L2", scope2.Label)
	leaf2, ok := scope2.Body.(*astbuild.Leaf)
	require.True(t, ok, "expected e2's continuation to be a Leaf, got %T", scope2.Body)
	require.Equal(t, e2, leaf2.NodeID)

	leafPost, ok := seq.Children[3].(*astbuild.Leaf)
	require.True(t, ok)
	require.Equal(t, post, leafPost.NodeID)
}
