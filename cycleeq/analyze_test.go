package cycleeq_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/cycleeq"
)

// chain builds entry->a->b->exit, a straight-line acyclic region with a
// single exit.
func chain(t *testing.T) (*cfgraph.Graph, cfgraph.NodeID, cfgraph.NodeID) {
	t.Helper()
	g := cfgraph.NewGraph("f", "r")
	entry := g.AddNode(cfgraph.KindCode, nil, "entry", 1)
	a := g.AddNode(cfgraph.KindCode, nil, "a", 1)
	b := g.AddNode(cfgraph.KindCode, nil, "b", 1)
	exit := g.AddNode(cfgraph.KindArtificialExit, nil, "exit", 0)
	require.NoError(t, g.AddEdge(entry, a, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(a, b, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(b, exit, cfgraph.EdgeInfo{}))
	return g, entry, exit
}

func TestAnalyze_AcyclicChainSharesOneClass(t *testing.T) {
	g, entry, _ := chain(t)
	r := cycleeq.Analyze(g, entry)

	ids := g.NodeIDs()
	entryID, aID, bID, exitID := ids[0], ids[1], ids[2], ids[3]

	c1, ok := r.ClassOf(cycleeq.Edge{Src: entryID, Dst: aID, Index: 0})
	require.True(t, ok)
	c2, ok := r.ClassOf(cycleeq.Edge{Src: aID, Dst: bID, Index: 0})
	require.True(t, ok)
	c3, ok := r.ClassOf(cycleeq.Edge{Src: bID, Dst: exitID, Index: 0})
	require.True(t, ok)

	require.Equal(t, c1, c2)
	require.Equal(t, c2, c3)
}

// loop builds entry->body, body->entry (the back edge), body->exit.
func loop(t *testing.T) (*cfgraph.Graph, cfgraph.NodeID) {
	t.Helper()
	g := cfgraph.NewGraph("f", "r")
	entry := g.AddNode(cfgraph.KindCode, nil, "entry", 1)
	body := g.AddNode(cfgraph.KindCode, nil, "body", 1)
	exit := g.AddNode(cfgraph.KindArtificialExit, nil, "exit", 0)
	require.NoError(t, g.AddEdge(entry, body, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(body, entry, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(body, exit, cfgraph.EdgeInfo{}))
	return g, entry
}

func TestAnalyze_LoopEdgesShareClassDistinctFromExit(t *testing.T) {
	g, entry := loop(t)
	r := cycleeq.Analyze(g, entry)

	ids := g.NodeIDs()
	entryID, bodyID, exitID := ids[0], ids[1], ids[2]

	forward, ok := r.ClassOf(cycleeq.Edge{Src: entryID, Dst: bodyID, Index: 0})
	require.True(t, ok)
	back, ok := r.ClassOf(cycleeq.Edge{Src: bodyID, Dst: entryID, Index: 0})
	require.True(t, ok)
	toExit, ok := r.ClassOf(cycleeq.Edge{Src: bodyID, Dst: exitID, Index: 1})
	require.True(t, ok)

	require.Equal(t, forward, back, "the two edges spanning the loop's only cycle must share a class")
	require.NotEqual(t, forward, toExit, "the acyclic exit edge must not share the loop's class")
}

func TestAnalyze_SelfLoopGetsOwnClassIsolatedFromSurroundingEdges(t *testing.T) {
	g := cfgraph.NewGraph("f", "r")
	entry := g.AddNode(cfgraph.KindCode, nil, "entry", 1)
	exit := g.AddNode(cfgraph.KindArtificialExit, nil, "exit", 0)
	require.NoError(t, g.AddEdge(entry, entry, cfgraph.EdgeInfo{}))
	require.NoError(t, g.AddEdge(entry, exit, cfgraph.EdgeInfo{}))

	r := cycleeq.Analyze(g, entry)
	ids := g.NodeIDs()
	entryID, exitID := ids[0], ids[1]

	selfLoop, ok := r.ClassOf(cycleeq.Edge{Src: entryID, Dst: entryID, Index: 0})
	require.True(t, ok)
	toExit, ok := r.ClassOf(cycleeq.Edge{Src: entryID, Dst: exitID, Index: 1})
	require.True(t, ok)
	require.NotEqual(t, selfLoop, toExit)
}

func TestAnalyze_Idempotent(t *testing.T) {
	g, entry := loop(t)
	r1 := cycleeq.Analyze(g, entry)
	r2 := cycleeq.Analyze(g, entry)

	for _, n := range g.NodeIDs() {
		for idx, s := range g.LabeledSuccessors(n) {
			e := cycleeq.Edge{Src: n, Dst: s.Dst, Index: idx}
			c1, ok1 := r1.ClassOf(e)
			c2, ok2 := r2.ClassOf(e)
			require.Equal(t, ok1, ok2)
			require.Equal(t, c1, c2)
		}
	}
}

func TestResult_InsertExtendsDomainWithoutRenaming(t *testing.T) {
	g, entry := loop(t)
	r := cycleeq.Analyze(g, entry)

	ids := g.NodeIDs()
	entryID, bodyID := ids[0], ids[1]
	existing, ok := r.ClassOf(cycleeq.Edge{Src: entryID, Dst: bodyID, Index: 0})
	require.True(t, ok)

	newEdge := cycleeq.Edge{Src: bodyID, Dst: entryID, Index: 7}
	r.Insert(newEdge, existing)

	got, ok := r.ClassOf(newEdge)
	require.True(t, ok)
	require.Equal(t, existing, got)
}
