// Package cfgraph owns the mutable directed multigraph substrate that the
// rest of the restructuring core operates on: one CFG region per *Graph,
// with nodes carrying opaque payloads and edges carrying case labels plus
// an Inlined flag.
//
// The package intentionally does nothing clever: add/remove/clone/relink
// with strict ownership, deterministic enumeration, and a small generic
// annotation table that other passes (scope-closer, equivalence classes)
// use instead of reaching into package-global state.
//
//   - NodeID is a monotonically increasing identifier; ids of removed nodes
//     are never reused for the lifetime of a *Graph (§5 of the design).
//   - Successors/predecessors are tracked as ordered slices, not sets, so
//     that "declared order" (relied on by the scope-closer overlay) and
//     reverse-post-order tie-breaking (relied on by untangle/inflate) are
//     well-defined without a secondary sort.
//   - Operating on a node not owned by the receiver Graph is a programming
//     error: these methods return ErrNodeNotFound for an id absent from the
//     receiver rather than silently doing nothing, but callers in this
//     codebase are expected to treat it as fatal (see
//     rerrors.InternalInvariantError).
package cfgraph
