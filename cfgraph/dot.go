// File: dot.go
// Role: render the current graph state as GraphViz DOT text. This is the
// advisory debug format named in spec.md §6; rendering to SVG/PNG and
// writing the file to disk is the caller's job (see restructure.DumpDot),
// this method only produces the text.
package cfgraph

import (
	"fmt"
	"sort"
	"strings"
)

// DOT renders the graph as "digraph <title> { ... }". Node labels include
// id, kind, and name; Inlined edges are rendered dashed gray and a node's
// scope closer annotation (tag "scope-closer") is rendered as a dashed blue
// edge labeled "scope", matching the "dashed successor" vocabulary of spec.md §4.2.
func (g *Graph) DOT(title string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", title)
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [fontname=\"monospace\", fontsize=10, shape=box];\n\n")

	ids := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		n := g.nodes[id]
		label := fmt.Sprintf("%d: %s", id, n.Kind)
		if n.Name != "" {
			label += "\\n" + n.Name
		}
		style := "solid"
		if id == g.entry {
			style = "bold"
		}
		fmt.Fprintf(&b, "  n%d [label=%q, style=%q];\n", id, label, style)
	}
	b.WriteString("\n")

	for _, id := range ids {
		for _, e := range g.succ[id] {
			attrs := ""
			if e.Info.Inlined {
				attrs = " [style=dashed, color=gray]"
			} else if !e.Info.Labels.IsDefault() {
				labels := make([]int, 0, len(e.Info.Labels))
				for l := range e.Info.Labels {
					labels = append(labels, l)
				}
				sort.Ints(labels)
				attrs = fmt.Sprintf(" [label=%q]", fmt.Sprint(labels))
			}
			fmt.Fprintf(&b, "  n%d -> n%d%s;\n", id, e.Dst, attrs)
		}
		if target, ok := g.annotations[id]["scope-closer"]; ok {
			fmt.Fprintf(&b, "  n%d -> n%d [style=dashed, color=blue, label=\"scope\"];\n", id, target)
		}
	}

	b.WriteString("}\n")
	return b.String()
}
