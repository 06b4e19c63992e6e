// Package astbuild turns a restructured region — the DAG untangle, weave,
// and inflate leave behind — into the structured scope tree described by
// spec.md §6: Sequence, If, Loop, Switch, Scope, Break, Continue, and Leaf
// nodes.
//
// Build works in two passes. First, collapseLoops finds every natural loop
// still reachable from the region's entry and folds each one, innermost
// first, into a single KindCollapsed node owning a nested *cfgraph.Graph:
// every back edge inside the loop becomes an internal KindContinue marker,
// and every edge leaving the loop body becomes an internal KindBreak
// marker. Once every loop is gone, the remaining graph is a reducible DAG,
// and structureFrom walks it by recursive descent: a one-successor node
// extends the current statement run, a two-successor node becomes an If
// whose branches are each structured up to their shared IFPDT
// post-dominator, a node with more successors becomes a Switch over its
// case labels (wide switches having already been narrowed by weave into
// nested ones), and a KindCollapsed node is unfolded into a Loop by
// recursing into its nested graph.
package astbuild
