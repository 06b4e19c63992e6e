// Package cycleeq assigns every edge of a cfgraph.Graph an integer cycle-
// equivalence class: two edges share a class iff they belong to the same
// set of cycles in the underlying undirected multigraph.
//
// The algorithm is the classic bracket-list construction (Johnson/Pearson/
// Pingali-style program-structure-tree analysis, as cited informally by
// spec.md §4.3): an undirected DFS from a synthetic node wired to the
// region's entry and every exit, followed by a bottom-up sweep that tracks,
// for each node, the set of non-tree edges ("brackets") spanning across it.
// A tree edge's class is the identity of whichever bracket sits on top of
// its child's list at the moment the child is processed; a non-tree edge
// mints a class of its own. This repo does not implement the further
// recentSize/recentClass bracket-merging refinement some bracket-set
// papers add on top (it exists to collapse series-equivalent classes
// created by unrelated back edges); the edge bundler downstream only needs
// a class partition stable under re-analysis, which the plain construction
// already gives it.
package cycleeq
