// File: combwalk.go
// Role: the mutable reverse-post-order walk that duplicates or dummy-joins
// nodes until every conditional's arms converge exactly once.
package inflate

import (
	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/rerrors"
)

// combAll processes every conditional in conditionalSet, in post-order
// (popped from the back of a stack seeded in reverse post-order), per
// spec.md §4.8 steps 1-2.
func combAll(
	g *cfgraph.Graph,
	entry cfgraph.NodeID,
	conditionalSet map[cfgraph.NodeID]bool,
	combEnd map[cfgraph.NodeID]cfgraph.NodeID,
	maxDuplications int,
) error {
	order := reversePostOrder(g, entry)
	rpo := newRPOList(order)

	equivClass := make(map[cfgraph.NodeID]map[cfgraph.NodeID]bool, len(order))
	cloneOrigin := make(map[cfgraph.NodeID]cfgraph.NodeID, len(order))
	for _, n := range order {
		equivClass[n] = map[cfgraph.NodeID]bool{n: true}
		cloneOrigin[n] = n
	}

	var conditionals []cfgraph.NodeID
	for _, n := range order {
		if conditionalSet[n] {
			conditionals = append(conditionals, n)
		}
	}

	duplications := 0

	for len(conditionals) > 0 {
		conditional := conditionals[len(conditionals)-1]
		conditionals = conditionals[:len(conditionals)-1]

		combEndNode, ok := combEnd[conditional]
		if !ok {
			return rerrors.Internal("inflate.combAll", rerrors.ErrInvariantBroken)
		}
		combEndSet := equivClass[combEndNode]

		worklist := map[cfgraph.NodeID]bool{}
		for _, s := range g.NonInlinedSuccessors(conditional) {
			worklist[s] = true
		}
		visited := map[cfgraph.NodeID]bool{conditional: true}

		elem := rpo.element(conditional)
		if elem == nil {
			return rerrors.Internal("inflate.combAll", rerrors.ErrInvariantBroken)
		}

		for {
			elem = elem.Next()
			if elem == nil || len(worklist) == 0 {
				break
			}
			candidate := elem.Value.(cfgraph.NodeID)
			if !worklist[candidate] {
				continue
			}

			allPredVisited := true
			for _, p := range g.Predecessors(candidate) {
				if !visited[p] {
					allPredVisited = false
					break
				}
			}
			delete(worklist, candidate)
			visited[candidate] = true

			isCombEnd := combEndSet[candidate]
			if !isCombEnd {
				for _, s := range g.NonInlinedSuccessors(candidate) {
					worklist[s] = true
				}
			}

			if allPredVisited {
				continue
			}

			if isCombEnd {
				var newDummyPreds []cfgraph.NodeID
				for _, p := range g.Predecessors(candidate) {
					if visited[p] {
						newDummyPreds = append(newDummyPreds, p)
					}
				}
				if len(newDummyPreds) < 2 {
					continue
				}

				dummy := g.AddArtificialNode(cfgraph.KindDummyJoin, "comb_join")
				for _, p := range newDummyPreds {
					if err := g.MoveEdgeTarget(p, candidate, dummy); err != nil {
						return rerrors.Internal("inflate.combAll", err)
					}
				}
				if err := g.AddEdge(dummy, candidate, cfgraph.EdgeInfo{}); err != nil {
					return rerrors.Internal("inflate.combAll", err)
				}

				delete(visited, candidate)
				cloneOrigin[dummy] = dummy

				combEnd[conditional] = dummy
				equivClass[dummy] = map[cfgraph.NodeID]bool{dummy: true}
				combEndSet = equivClass[dummy]

				worklist[dummy] = true

				prev := elem.Prev()
				rpo.insertBefore(dummy, candidate)
				elem = prev
				continue
			}

			duplications++
			if maxDuplications > 0 && duplications > maxDuplications {
				return rerrors.Budget("inflate.combAll", rerrors.ErrDuplicationBudgetBlown)
			}

			duplicate, err := g.CloneNode(candidate)
			if err != nil {
				return rerrors.Internal("inflate.combAll", err)
			}
			for _, s := range g.LabeledSuccessors(candidate) {
				if err := g.AddEdge(duplicate, s.Dst, s.Info); err != nil {
					return rerrors.Internal("inflate.combAll", err)
				}
			}

			var notVisitedPreds []cfgraph.NodeID
			for _, p := range g.Predecessors(candidate) {
				if !visited[p] {
					notVisitedPreds = append(notVisitedPreds, p)
				}
			}
			for _, p := range notVisitedPreds {
				if err := g.MoveEdgeTarget(p, candidate, duplicate); err != nil {
					return rerrors.Internal("inflate.combAll", err)
				}
			}

			origin := cloneOrigin[candidate]
			candidateNode, err := g.GetNode(candidate)
			if err != nil {
				return rerrors.Internal("inflate.combAll", err)
			}

			if candidateNode.Kind == cfgraph.KindDummyJoin {
				if !purgeIfTrivialDummy(g, duplicate) {
					cloneOrigin[duplicate] = origin
					equivClass[origin][duplicate] = true
					rpo.insertBefore(duplicate, candidate)
				}
				if purgeIfTrivialDummy(g, candidate) {
					delete(cloneOrigin, candidate)
					delete(equivClass[origin], candidate)
					delete(visited, candidate)
					prev := elem.Prev()
					rpo.remove(candidate)
					elem = prev
					continue
				}
			} else {
				cloneOrigin[duplicate] = origin
				equivClass[origin][duplicate] = true

				if end, ok := combEnd[candidate]; ok {
					combEnd[duplicate] = end
					conditionals = append(conditionals, duplicate)
				}
				rpo.insertBefore(duplicate, candidate)
			}
		}
	}

	purgeTrivialDummies(g)
	return nil
}

// purgeIfTrivialDummy removes n if it is a dummy join with exactly one
// predecessor and one successor, splicing that predecessor directly to
// that successor. Reports whether it removed n.
func purgeIfTrivialDummy(g *cfgraph.Graph, n cfgraph.NodeID) bool {
	node, err := g.GetNode(n)
	if err != nil || node.Kind != cfgraph.KindDummyJoin {
		return false
	}
	preds := g.Predecessors(n)
	succs := g.Successors(n)
	if len(preds) != 1 || len(succs) != 1 {
		return false
	}
	if err := g.MoveEdgeTarget(preds[0], n, succs[0]); err != nil {
		return false
	}
	g.RemoveNode(n)
	return true
}

// purgeTrivialDummies repeatedly purges every trivial dummy join left in g
// after the comb walk, per spec.md §4.8's final cleanup.
func purgeTrivialDummies(g *cfgraph.Graph) {
	for {
		removed := false
		for _, n := range g.NodeIDs() {
			if purgeIfTrivialDummy(g, n) {
				removed = true
				break
			}
		}
		if !removed {
			return
		}
	}
}
