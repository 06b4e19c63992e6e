// File: errors.go
// Role: sentinel errors for the cfgraph package.
//
// Policy (matches the rest of this module): only package-level sentinels are
// exported; callers branch with errors.Is; implementations attach context
// with %w rather than inventing new error types per call site.
package cfgraph

import "errors"

var (
	// ErrNodeNotFound indicates an operation referenced a NodeID absent from
	// the graph's node catalog.
	ErrNodeNotFound = errors.New("cfgraph: node not found")

	// ErrForeignNode indicates an operation was given a NodeID that belongs
	// to a different *Graph instance. Per the design this is a programming
	// error and is fatal for the region.
	ErrForeignNode = errors.New("cfgraph: node not owned by this graph")

	// ErrEdgeNotFound indicates move_edge_target/mark_edge_inlined were given
	// a (src,dst) pair with no matching edge.
	ErrEdgeNotFound = errors.New("cfgraph: edge not found")

	// ErrNoEntry indicates Entry was queried on a graph with no nodes, or
	// the designated entry was removed without a replacement.
	ErrNoEntry = errors.New("cfgraph: graph has no entry node")

	// ErrMultipleEntries indicates an invariant check found more than one
	// node without incoming edges when exactly one was expected.
	ErrMultipleEntries = errors.New("cfgraph: more than one node has no predecessors")
)
