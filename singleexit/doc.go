// Package singleexit implements spec.md §4.5: it gives a region at most one
// exit node, creating a sink and rewiring every existing exit to reach it
// when more than one is found. An "exit" is either a successorless node or
// the header of a loop that never reaches outside itself (an infinite
// loop) — both read as "control never returns past this point" for the
// purpose of giving the rest of the pipeline a single place downstream
// passes can treat as the region's end.
//
// InsertGatedEntry implements the optional fifth step of §4.5 (a gated
// block before entry routing to either the original entry or the sink) as
// a separate, opt-in call rather than folding it into Enforce, since the
// spec marks it optional and most callers building a single well-formed
// region never need it.
package singleexit
