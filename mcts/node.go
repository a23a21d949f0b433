package mcts

import (
	"fmt"

	"github.com/gorgonia/wuziqi/game"
)

type Status byte

const (
	Unexpanded Status = iota
	Expanded
	Won   // the move into this node completed five. The player to move has lost.
	Drawn // the move into this node filled the board
)

func (a Status) String() string {
	switch a {
	case Unexpanded:
		return "Unexpanded"
	case Expanded:
		return "Expanded"
	case Won:
		return "Won"
	case Drawn:
		return "Drawn"
	}
	return "UNKNOWN STATUS"
}

// IsTerminal returns true if the game is over at a node of this status.
func (a Status) IsTerminal() bool { return a == Won || a == Drawn }

// Node is a board position in the search tree.
type Node struct {
	move   game.Single // the move that led here
	player game.Player // the player to move at this node
	visits uint32      // N(s, a) in the literature
	total  float32     // accumulated value, from the point of view of player
	prior  float32     // P(s, a), from the parent's expansion
	status Status

	id     naughty
	parent naughty // for bookkeeping only; the parent owns its children
}

func (n *Node) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "{NodeID: %v Move: %v Player: %v Prior: %v Value: %v Visits: %v Status: %v}", n.id, n.move, n.player, n.prior, n.Value(), n.visits, n.status)
}

// Move gets the move associated with the node.
func (n *Node) Move() game.Single { return n.move }

func (n *Node) Player() game.Player { return n.player }

func (n *Node) Visits() uint32 { return n.visits }

// Prior returns the policy estimate for the move into this node.
func (n *Node) Prior() float32 { return n.prior }

func (n *Node) Status() Status { return n.status }

func (n *Node) ID() int { return int(n.id) }

// Value is the mean backed up value, from the point of view of the player to move. Unvisited nodes have a value of 0.
func (n *Node) Value() float32 {
	if n.visits == 0 {
		return 0
	}
	return n.total / float32(n.visits)
}

// IsNotVisited returns true if this node hasn't ever been visited.
func (n *Node) IsNotVisited() bool { return n.visits == 0 }

// update adds a visit and its value.
func (n *Node) update(value float32) {
	n.visits++
	n.total += value
}

func (n *Node) reset() {
	n.move = NoMove
	n.player = game.NoPlayer
	n.visits = 0
	n.total = 0
	n.prior = 0
	n.status = Unexpanded
	n.parent = nilNode
}
