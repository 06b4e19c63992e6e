// Package weave splits a wide switch into nested switches wherever one of
// its cases' own control flow already re-converges before the switch's own
// exit, so that the convergent group can be expressed as a nested switch
// statement instead of duplicated goto-label plumbing.
//
// A switch with N cases normally needs no restructuring of its own: each
// case is just an arm, and they all meet again at the switch's immediate
// post-dominator. But if some node strictly between the switch and that
// post-dominator turns out to post-dominate more than one (and fewer than
// all) of the cases, those cases share a private sub-exit the rest of the
// switch does not: pulling them out into a synthetic inner switch node
// gives the AST builder a node it can render as `switch { case a, case b:
// <nested switch> }` rather than forcing inflate to duplicate the shared
// tail once per case.
//
// Run must see the same DAG shape untangle leaves behind (no back edges,
// IFPDT well-defined) and must run before inflate, which assumes any
// wide-fanout dispatch has already been reduced to binary-style arms it can
// comb one pair at a time.
package weave
