// File: edge.go
// Role: the Edge descriptor and the analysis Result it is keyed by.
package cycleeq

import (
	"sync"

	"github.com/cfgforge/restructure/cfgraph"
)

// Edge identifies one directed edge of a region graph precisely enough to
// survive parallel edges between the same pair of nodes: Index is the
// zero-based position of this edge among Src's declared successors, the
// same slot cfgraph.LabeledSuccessors(Src) would report it at.
type Edge struct {
	Src, Dst cfgraph.NodeID
	Index    int
}

// Result is the outcome of Analyze: a stable class id per edge, open to
// extension as the pipeline creates new edges (the edge bundler inserts
// entries for the dispatcher edges it creates after the original analysis).
type Result struct {
	mu      sync.RWMutex
	classes map[Edge]uint64
	next    uint64
}

func newResult() *Result {
	return &Result{classes: make(map[Edge]uint64)}
}

// ClassOf returns e's cycle-equivalence class id and true, or (0, false) if
// e has never been classified or inserted.
func (r *Result) ClassOf(e Edge) (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[e]
	return c, ok
}

// Insert records class as e's cycle-equivalence class id. Used by the edge
// bundler, which synthesizes new edges and needs them to carry on an
// existing class rather than mint a new one; it never
// renames an id already handed out by Analyze.
func (r *Result) Insert(e Edge, class uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[e] = class
}

// newClass mints a fresh, never-before-used class id.
func (r *Result) newClass() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	return r.next
}
