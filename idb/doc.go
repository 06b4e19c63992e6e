// Package idb implements spec.md §4.6, inline-divergent-branches: for every
// node carrying a scope-closer marker, any successor edge that crosses the
// scope it closes (per scopecloser.IsDivergent) is pulled out into a
// dedicated guard block cloned from the original node. The divergence then
// lives entirely in that guard, which the AST builder renders as an outer
// if wrapping the original node's normal scope.
package idb
