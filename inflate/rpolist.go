// File: rpolist.go
// Role: the mutable reverse-post-order list inflate walks per conditional,
// with O(1) insert-before/remove so dummy/clone insertion doesn't require
// recomputing the traversal.
package inflate

import (
	"container/list"

	"github.com/cfgforge/restructure/cfgraph"
)

// rpoList is a doubly linked view of a node order, letting the per-
// conditional walk splice in freshly created dummy and clone nodes at an
// exact position without disturbing the rest of the order.
type rpoList struct {
	l      *list.List
	elemOf map[cfgraph.NodeID]*list.Element
}

func newRPOList(order []cfgraph.NodeID) *rpoList {
	r := &rpoList{l: list.New(), elemOf: map[cfgraph.NodeID]*list.Element{}}
	for _, n := range order {
		r.elemOf[n] = r.l.PushBack(n)
	}
	return r
}

// insertBefore splices n into the list immediately before the element
// currently holding before, and returns n's new element.
func (r *rpoList) insertBefore(n, before cfgraph.NodeID) *list.Element {
	e := r.l.InsertBefore(n, r.elemOf[before])
	r.elemOf[n] = e
	return e
}

// remove drops n from the list entirely.
func (r *rpoList) remove(n cfgraph.NodeID) {
	if e, ok := r.elemOf[n]; ok {
		r.l.Remove(e)
		delete(r.elemOf, n)
	}
}

func (r *rpoList) element(n cfgraph.NodeID) *list.Element { return r.elemOf[n] }
