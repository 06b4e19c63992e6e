// Package bundler implements spec.md §4.4: given cycle-equivalence classes
// from cycleeq, it splits each node's predecessors and successors so that
// every edge sharing a class is routed through one dedicated dispatcher
// node, preserving class labels on the newly created edges. After
// bundling, every node's set of predecessors (resp. successors) is in
// bijection with its set of distinct incoming (resp. outgoing) classes,
// which makes region entries and exits identifiable cleanly. Bundle is a
// standalone pass: the restructure pipeline does not call it.
package bundler
