// Package dominance computes dominator and post-dominator trees over a
// cfgraph.Graph, including a "filtered" post-dominator tree that ignores
// edges marked Inlined (spec.md §4.3's IFPDT).
//
// The algorithm is the iterative dataflow dominance computation of Cooper,
// Harvey & Kennedy ("A Simple, Fast Dominance Algorithm", 2001) rather than
// the classic Lengauer-Tarjan algorithm: CFG regions here are small (single
// functions), so the O(N^2) worst case of the iterative approach never
// matters in practice, and its fixpoint-over-reverse-postorder shape is far
// easier to keep correct under the graph's frequent structural mutation
// than maintaining Lengauer-Tarjan's semi-dominator forest incrementally.
// The public Tree type and its Dominates/IDom shape are grounded on
// gonum.org/v1/gonum/graph/path's DominatorTree.
package dominance
