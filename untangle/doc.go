// Package untangle implements spec.md §4.7: weight-driven arm splitting.
//
// Before the central comb/inflate pass runs, untangle looks at every binary
// conditional and asks whether duplicating one arm all the way to the
// function exit is cheaper than letting inflate duplicate the shared
// postdominator region instead. When it is, the cheaper arm is cloned in
// full (clone_until_exit) and the conditional's edge is redirected to the
// clone and marked Inlined, so later dominance queries over the filtered
// post-dominator tree see a single, already-resolved path instead of a
// diamond.
//
// The weight comparison is run once per conditional, in reverse post-order,
// against a virtual sink wired to every exit of the region. Any node left
// predecessorless by a split is removed right after that split; the sink
// itself is removed once every conditional has been considered.
package untangle
