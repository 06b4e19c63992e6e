// File: dump.go
// Role: the debug.dump_dots sink: render a graph's current DOT text to an
// SVG file on disk.
package restructure

import (
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/cfgforge/restructure/cfgraph"
)

// DumpDot renders g as title, parses it back through graphviz, and writes
// an SVG to path. It is advisory tooling only (spec.md §6 names
// debug.dump_dots as a debug aid, never part of restructuring semantics),
// so callers that only want the raw text should call g.DOT directly
// instead.
func DumpDot(g *cfgraph.Graph, title, path string) error {
	ctx := context.Background()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("restructure.DumpDot: %w", err)
	}
	defer gv.Close()

	graph, err := graphviz.ParseBytes([]byte(g.DOT(title)))
	if err != nil {
		return fmt.Errorf("restructure.DumpDot: parse: %w", err)
	}
	defer graph.Close()

	if err := gv.RenderFilename(ctx, graph, graphviz.SVG, path); err != nil {
		return fmt.Errorf("restructure.DumpDot: render: %w", err)
	}
	return nil
}
