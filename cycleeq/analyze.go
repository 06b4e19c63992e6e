// File: analyze.go
// Role: the undirected DFS and bracket-list sweep behind Analyze.
package cycleeq

import "github.com/cfgforge/restructure/cfgraph"

// synthRoot is the traversal-only synthetic node spec.md §4.3 step 1 wires
// to entry and to every exit. cfgraph.InvalidNode (0) is safe to reuse
// here: it is never a value AddNode hands back, and it never crosses into
// a cfgraph.Graph call.
const synthRoot = cfgraph.InvalidNode

type arcKind int

const (
	arcReal arcKind = iota
	arcSynthetic
)

// halfEdge is one endpoint's view of an undirected traversal edge; the two
// halves of a real or synthetic edge share uid.
type halfEdge struct {
	to   cfgraph.NodeID
	kind arcKind
	edge Edge
	uid  int
}

// backEdge is a non-tree undirected edge, recorded once, owned by its
// deeper (descendant) endpoint: ancestor is the shallower endpoint it
// spans up to (itself, for a self-loop).
type backEdge struct {
	kind     arcKind
	edge     Edge
	ancestor cfgraph.NodeID
	selfLoop bool
}

type bracket struct {
	id       uint64
	closesAt cfgraph.NodeID
}

type dfsState struct {
	adj        map[cfgraph.NodeID][]halfEdge
	discovery  map[cfgraph.NodeID]int
	order      []cfgraph.NodeID // increasing discovery index
	parentEdge map[cfgraph.NodeID]halfEdge
	children   map[cfgraph.NodeID][]cfgraph.NodeID
	ownBack    map[cfgraph.NodeID][]backEdge
	seenUID    map[int]bool
}

// Analyze runs the bracket-list cycle-equivalence analysis over g, with
// the traversal rooted at a synthetic node wired to entry and to every
// successorless node. entry is usually the value of g.Entry(), but the
// pipeline may pass a different node while experimenting with a region's
// virtual entry.
func Analyze(g *cfgraph.Graph, entry cfgraph.NodeID) *Result {
	st := buildUndirected(g, entry)
	walk(st, synthRoot, -1)

	r := newResult()
	blOf := make(map[cfgraph.NodeID][]bracket, len(st.order))

	// Reverse discovery order: every child is discovered strictly after
	// its parent, so this guarantees each node's children are fully
	// processed (and their bracket lists ready to merge) first.
	for i := len(st.order) - 1; i >= 0; i-- {
		n := st.order[i]

		var bl []bracket
		for _, c := range st.children[n] {
			bl = append(bl, blOf[c]...)
			delete(blOf, c)
		}

		kept := bl[:0]
		for _, b := range bl {
			if b.closesAt == n {
				continue // this back edge's span ends exactly here
			}
			kept = append(kept, b)
		}
		bl = kept

		for _, be := range st.ownBack[n] {
			if be.selfLoop {
				// A self-loop's cycle never touches the tree edge above n,
				// so it gets its own class and never enters n's bracket
				// list.
				if be.kind == arcReal {
					r.Insert(be.edge, r.newClass())
				}
				continue
			}
			id := r.newClass()
			if be.kind == arcReal {
				r.Insert(be.edge, id)
			}
			bl = append(bl, bracket{id: id, closesAt: be.ancestor})
		}

		if n != synthRoot {
			var class uint64
			if len(bl) > 0 {
				class = bl[len(bl)-1].id
			} else {
				class = r.newClass()
			}
			if pe := st.parentEdge[n]; pe.kind == arcReal {
				r.Insert(pe.edge, class)
			}
		}

		blOf[n] = bl
	}

	return r
}

// buildUndirected constructs the undirected spanning-traversal view: every
// real directed edge contributes a half-edge pair, plus synthetic
// half-edges tying synthRoot to entry and to every node with no outgoing
// edges.
func buildUndirected(g *cfgraph.Graph, entry cfgraph.NodeID) *dfsState {
	st := &dfsState{
		adj:        make(map[cfgraph.NodeID][]halfEdge),
		discovery:  make(map[cfgraph.NodeID]int),
		parentEdge: make(map[cfgraph.NodeID]halfEdge),
		children:   make(map[cfgraph.NodeID][]cfgraph.NodeID),
		ownBack:    make(map[cfgraph.NodeID][]backEdge),
		seenUID:    make(map[int]bool),
	}

	uid := 0
	link := func(a, b cfgraph.NodeID, kind arcKind, e Edge) {
		st.adj[a] = append(st.adj[a], halfEdge{to: b, kind: kind, edge: e, uid: uid})
		st.adj[b] = append(st.adj[b], halfEdge{to: a, kind: kind, edge: e, uid: uid})
		uid++
	}

	var exits []cfgraph.NodeID
	for _, n := range g.NodeIDs() {
		succs := g.LabeledSuccessors(n)
		if len(succs) == 0 {
			exits = append(exits, n)
		}
		for idx, s := range succs {
			link(n, s.Dst, arcReal, Edge{Src: n, Dst: s.Dst, Index: idx})
		}
	}

	link(synthRoot, entry, arcSynthetic, Edge{})
	for _, ex := range exits {
		if ex == entry {
			continue
		}
		link(synthRoot, ex, arcSynthetic, Edge{})
	}

	return st
}

// walk runs the undirected DFS from n, having arrived via the edge with id
// parentUID (-1 for the root), populating discovery order, the spanning
// tree, and each node's owned back edges.
func walk(st *dfsState, n cfgraph.NodeID, parentUID int) {
	st.discovery[n] = len(st.order)
	st.order = append(st.order, n)

	for _, he := range st.adj[n] {
		if he.uid == parentUID {
			continue
		}
		if _, visited := st.discovery[he.to]; !visited {
			st.parentEdge[he.to] = he
			st.children[n] = append(st.children[n], he.to)
			walk(st, he.to, he.uid)
			continue
		}
		if st.seenUID[he.uid] {
			continue
		}
		if he.to == n {
			st.seenUID[he.uid] = true
			st.ownBack[n] = append(st.ownBack[n], backEdge{kind: he.kind, edge: he.edge, ancestor: n, selfLoop: true})
			continue
		}
		if st.discovery[he.to] < st.discovery[n] {
			st.seenUID[he.uid] = true
			st.ownBack[n] = append(st.ownBack[n], backEdge{kind: he.kind, edge: he.edge, ancestor: he.to})
		}
	}
}
