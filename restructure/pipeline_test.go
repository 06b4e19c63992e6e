package restructure_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/cfgforge/restructure/astbuild"
	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/restructure"
)

func TestRun_PlainDiamondNeedsNoRewrite(t *testing.T) {
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

	ctx := restructure.WithRunID(context.Background(), "test-run")
	tree, err := restructure.Run(ctx, g, entry, restructure.DefaultConfig())
	require.NoError(t, err)

	seq, ok := tree.(*astbuild.Sequence)
	require.True(t, ok, "expected a Sequence, got %T", tree)
	require.Len(t, seq.Children, 3)

	ifNode, ok := seq.Children[1].(*astbuild.If)
	require.True(t, ok, "expected the middle statement to be an If, got %T", seq.Children[1])
	require.Equal(t, entry, ifNode.Cond)

	wantLeaves := []cfgraph.NodeID{entry, post}
	gotLeaves := []cfgraph.NodeID{
		seq.Children[0].(*astbuild.Leaf).NodeID,
		seq.Children[2].(*astbuild.Leaf).NodeID,
	}
	if diff := cmp.Diff(wantLeaves, gotLeaves); diff != "" {
		t.Errorf("leaf sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_MissingFileErrors(t *testing.T) {
	_, err := restructure.LoadConfig("/nonexistent/path/to/restructure.toml")
	require.Error(t, err)
}

func TestNewRestructureConfig_OptionsOverrideDefaults(t *testing.T) {
	cfg := restructure.NewRestructureConfig(
		restructure.WithUntangleFactor(4),
		restructure.WithMaxDuplications(7),
		restructure.WithDumpDots(true),
		restructure.WithLogChannel("custom"),
	)

	require.Equal(t, 4, cfg.Untangle.MultiplicativeFactor)
	require.Equal(t, 7, cfg.Inflate.MaxDuplications)
	require.True(t, cfg.Debug.DumpDots)
	require.Equal(t, "custom", cfg.Debug.LogChannel)
}

func TestDumpConfigYAML_RendersResolvedConfig(t *testing.T) {
	cfg := restructure.DefaultConfig()
	out, err := restructure.DumpConfigYAML(cfg)
	require.NoError(t, err)
	require.Contains(t, string(out), "untangle:")
	require.Contains(t, string(out), "debug:")
}
