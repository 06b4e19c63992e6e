package jobrunner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/jobrunner"
	"github.com/cfgforge/restructure/rerrors"
	"github.com/cfgforge/restructure/restructure"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func diamondRegion(name string) jobrunner.Region {
	g := cfgraph.NewGraph(name, "r")
	entry := g.AddNode(cfgraph.KindCode, nil, "entry", 1)
	then := g.AddNode(cfgraph.KindCode, nil, "then", 1)
	els := g.AddNode(cfgraph.KindCode, nil, "else", 1)
	post := g.AddNode(cfgraph.KindCode, nil, "post", 1)

	_ = g.AddEdge(entry, then, cfgraph.EdgeInfo{})
	_ = g.AddEdge(entry, els, cfgraph.EdgeInfo{})
	_ = g.AddEdge(then, post, cfgraph.EdgeInfo{})
	_ = g.AddEdge(els, post, cfgraph.EdgeInfo{})
	_ = g.SetEntry(entry)

	return jobrunner.Region{Name: name, Graph: g, Entry: entry}
}

// cyclicRegion builds a two-node region whose two edges form a cycle, so
// untangle.Run's isDAG precondition fails with a StructureError.
func cyclicRegion(name string) jobrunner.Region {
	g := cfgraph.NewGraph(name, "r")
	entry := g.AddNode(cfgraph.KindCode, nil, "entry", 1)
	a := g.AddNode(cfgraph.KindCode, nil, "a", 1)

	_ = g.AddEdge(entry, a, cfgraph.EdgeInfo{})
	_ = g.AddEdge(a, entry, cfgraph.EdgeInfo{})
	_ = g.SetEntry(entry)

	return jobrunner.Region{Name: name, Graph: g, Entry: entry}
}

func TestRunAll_ProcessesIndependentRegionsConcurrently(t *testing.T) {
	regions := []jobrunner.Region{
		diamondRegion("f1"),
		diamondRegion("f2"),
		diamondRegion("f3"),
	}

	results, err := jobrunner.RunAll(context.Background(), regions, restructure.DefaultConfig(), 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		require.Equal(t, regions[i].Name, r.Region)
		require.NoError(t, r.Err)
		require.NotNil(t, r.Tree)
	}
}

func TestRunAll_RegionStructureErrorDoesNotAbortOthers(t *testing.T) {
	regions := []jobrunner.Region{
		diamondRegion("good1"),
		cyclicRegion("bad"),
		diamondRegion("good2"),
	}

	results, err := jobrunner.RunAll(context.Background(), regions, restructure.DefaultConfig(), 0)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Tree)

	require.Error(t, results[1].Err)
	re, ok := rerrors.AsRegionError(results[1].Err)
	require.True(t, ok, "expected a RegionError, got %v", results[1].Err)
	require.Equal(t, rerrors.KindStructure, re.Kind)

	require.NoError(t, results[2].Err)
	require.NotNil(t, results[2].Tree)
}
