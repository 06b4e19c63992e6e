package singleexit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/singleexit"
)

func TestEnforce_SingleExitUnchanged(t *testing.T) {
	g := cfgraph.NewGraph("f", "r")
	entry := g.AddNode(cfgraph.KindCode, nil, "entry", 1)
	exit := g.AddNode(cfgraph.KindArtificialExit, nil, "exit", 0)
	require.NoError(t, g.AddEdge(entry, exit, cfgraph.EdgeInfo{}))

	sink, created, err := singleexit.Enforce(g, entry)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, cfgraph.InvalidNode, sink)
	require.Len(t, g.NodeIDs(), 2) // sanity: no sink node was added
}

func TestEnforce_MultipleReturnsConverge(t *testing.T) {
	g := cfgraph.NewGraph("f", "r")
	entry := g.AddNode(cfgraph.KindCode, nil, "entry", 1)
	retA := g.AddNode(cfgraph.KindCode, nil, "retA", 0)
	retB := g.AddNode(cfgraph.KindCode, nil, "retB", 0)
	require.NoError(t, g.AddEdge(entry, retA, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(entry, retB, cfgraph.EdgeInfo{}))

	sink, created, err := singleexit.Enforce(g, entry)
	require.NoError(t, err)
	require.True(t, created)
	require.NotEqual(t, cfgraph.InvalidNode, sink)

	require.Equal(t, []cfgraph.NodeID{sink}, g.Successors(retA))
	require.Equal(t, []cfgraph.NodeID{sink}, g.Successors(retB))
	require.NoError(t, g.CheckInvariants())
}

func TestEnforce_InfiniteLoopTreatedAsExit(t *testing.T) {
	g := cfgraph.NewGraph("f", "r")
	entry := g.AddNode(cfgraph.KindCode, nil, "entry", 1)
	normalRet := g.AddNode(cfgraph.KindCode, nil, "ret", 0)
	loopHead := g.AddNode(cfgraph.KindCode, nil, "loopHead", 1)
	loopBody := g.AddNode(cfgraph.KindCode, nil, "loopBody", 1)
	require.NoError(t, g.AddEdge(entry, normalRet, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(entry, loopHead, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(loopHead, loopBody, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(loopBody, loopHead, cfgraph.EdgeInfo{}))

	sink, created, err := singleexit.Enforce(g, entry)
	require.NoError(t, err)
	require.True(t, created)

	// normalRet now points only at the sink; loopHead keeps its loop body
	// edge and additionally reaches the sink.
	require.Equal(t, []cfgraph.NodeID{sink}, g.Successors(normalRet))
	require.Contains(t, g.Successors(loopHead), sink)
	require.Contains(t, g.Successors(loopHead), loopBody)
	require.NoError(t, g.CheckInvariants())
}

func TestInsertGatedEntry(t *testing.T) {
	g := cfgraph.NewGraph("f", "r")
	entry := g.AddNode(cfgraph.KindCode, nil, "entry", 1)
	exit := g.AddNode(cfgraph.KindArtificialExit, nil, "exit", 0)
	require.NoError(t, g.AddEdge(entry, exit, cfgraph.EdgeInfo{}))

	gated, err := singleexit.InsertGatedEntry(g, entry, exit)
	require.NoError(t, err)

	got, err := g.Entry()
	require.NoError(t, err)
	require.Equal(t, gated, got)
	require.ElementsMatch(t, []cfgraph.NodeID{entry, exit}, g.Successors(gated))
}
