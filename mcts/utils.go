package mcts

import (
	"sort"

	"github.com/gorgonia/wuziqi/game"
)

// fancySort sorts children best first: most visits, then (for unvisited nodes) the highest prior,
// then the best value for the player choosing among them.
type fancySort struct {
	l []naughty
	t *MCTS
}

func (l fancySort) Len() int      { return len(l.l) }
func (l fancySort) Swap(i, j int) { l.l[i], l.l[j] = l.l[j], l.l[i] }
func (l fancySort) Less(i, j int) bool {
	li := l.t.nodeFromNaughty(l.l[i])
	lj := l.t.nodeFromNaughty(l.l[j])

	liVisits := li.Visits()
	ljVisits := lj.Visits()
	if liVisits != ljVisits {
		return liVisits > ljVisits
	}

	// no visits, we sort on prior
	if liVisits == 0 {
		return li.Prior() > lj.Prior()
	}

	// same visit count. A low value for the child is good for the parent
	return li.Value() < lj.Value()
}

// bestChild returns the best child of a node, or nilNode if it has none.
func (t *MCTS) bestChild(of naughty) naughty {
	kids := t.children[of]
	if len(kids) == 0 {
		return nilNode
	}
	sorted := make([]naughty, len(kids))
	copy(sorted, kids)
	sort.Stable(fancySort{l: sorted, t: t})
	return sorted[0]
}

// PV returns the principal variation of the last search: the chain of best children from the root,
// stopping at the first unvisited node.
func (t *MCTS) PV() []game.Single {
	t.Lock()
	defer t.Unlock()

	var retVal []game.Single
	if !t.root.isValid() {
		return retVal
	}
	for n := t.bestChild(t.root); n.isValid(); n = t.bestChild(n) {
		node := t.nodeFromNaughty(n)
		if node.IsNotVisited() {
			break
		}
		retVal = append(retVal, node.move)
	}
	return retVal
}

// byMove sorts children by their move.
type byMove struct {
	t *MCTS
	l []naughty
}

func (l byMove) Len() int { return len(l.l) }
func (l byMove) Less(i, j int) bool {
	li := l.t.nodeFromNaughty(l.l[i])
	lj := l.t.nodeFromNaughty(l.l[j])
	return li.move < lj.move
}
func (l byMove) Swap(i, j int) {
	l.l[i], l.l[j] = l.l[j], l.l[i]
}
