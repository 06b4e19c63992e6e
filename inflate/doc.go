// Package inflate implements spec.md §4.8: the central comb/inflate pass
// that turns a DAG with diamonds and switch fan-outs into a reducible graph
// where every conditional's arms converge exactly once, at its comb-end.
//
// Run first applies untangle (the arm-splitting preprocessing untangle
// itself exists for), then blacklists any conditional arm whose entire
// reachable exit set it already dominates (that arm can never need
// duplication), wraps every switch case in a dummy predecessor so binary
// conditionals and switch cases share one shape, and finally walks every
// conditional in post-order, duplicating or dummy-joining nodes along the
// way so that exactly one path reaches the comb-end per visit.
package inflate
