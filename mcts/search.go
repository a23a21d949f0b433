package mcts

import (
	"context"

	"github.com/chewxy/math32"
	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/pkg/errors"
	"gorgonia.org/vecf32"
)

/*
Here lies the majority of the MCTS search code, while node.go and tree.go handles the data structure stuff.

Values are always from the point of view of the player to move at a node. A child is therefore scored
by its parent with the child's value negated.
*/

// Search runs NumSimulations simulations from b with player to move, and returns a distribution over
// every cell of the board: visit counts scaled by the temperature, 0 on occupied cells.
//
// b is not modified. If ctx is done the search stops after the last completed simulation; if no
// simulation completed, the root's priors are returned. A full board returns game.ErrNoLegalMoves.
func (t *MCTS) Search(ctx context.Context, b *gomoku.Board, player game.Player) ([]float32, error) {
	t.Lock()
	defer t.Unlock()

	if b.Size() != t.Size {
		return nil, errors.Errorf("Cannot search a %dx%d board with a MCTS configured for %dx%d", b.Size(), b.Size(), t.Size, t.Size)
	}
	if b.IsFull() {
		return nil, errors.WithStack(game.ErrNoLegalMoves)
	}
	if w, ok := b.Winner(); ok {
		return nil, errors.Wrapf(game.ErrGameOver, "%v has already won", w)
	}

	t.reset()
	t.board = b.Clone()
	t.root = t.alloc(int(NoMove), player, 1, nilNode)
	if _, err := t.expand(t.root, t.board); err != nil {
		return nil, err
	}

	scratch := gomoku.New(t.Size)
	var done int
	for i := 0; i < t.NumSimulations; i++ {
		if ctx.Err() != nil {
			t.log("Search stopped after %d of %d simulations: %v", done, t.NumSimulations, ctx.Err())
			break
		}
		t.board.CopyTo(scratch)
		if err := t.simulate(scratch); err != nil {
			return nil, err
		}
		done++
	}
	return t.policy(done), nil
}

// simulate runs one descent from the root on scratch, which must hold the root position.
func (t *MCTS) simulate(scratch *gomoku.Board) error {
	t.path = append(t.path[:0], t.root)
	current := t.root
	for t.nodeFromNaughty(current).status == Expanded {
		mover := t.nodeFromNaughty(current).player
		kid := t.selectChild(current)
		child := t.nodeFromNaughty(kid)
		move := game.Itol(child.move, t.Size)
		if err := scratch.Place(move, mover); err != nil {
			return errors.Wrapf(err, "Tree is inconsistent with the board at node %v", child)
		}
		if child.status == Unexpanded {
			if _, won := scratch.CheckWin(move); won {
				child.status = Won
			} else if scratch.IsFull() {
				child.status = Drawn
			}
		}
		t.path = append(t.path, kid)
		current = kid
	}

	leaf := t.nodeFromNaughty(current)
	var value float32
	switch leaf.status {
	case Won:
		value = -1
	case Drawn:
		value = 0
	default:
		var err error
		if value, err = t.expand(current, scratch); err != nil {
			return err
		}
	}
	t.backprop(t.nodeFromNaughty(current).player, value)
	return nil
}

// selectChild picks the child with the highest upper confidence bound:
//	-Q(s, a) + c * P(s, a) * sqrt(N(s)) / (1 + N(s, a))
// Unvisited children score +Inf; ties go to the higher prior, then to the first child.
func (t *MCTS) selectChild(of naughty) naughty {
	numerator := math32.Sqrt(float32(t.nodeFromNaughty(of).visits))

	best := nilNode
	bestScore := math32.Inf(-1)
	var bestPrior float32
	for _, kid := range t.children[of] {
		child := t.nodeFromNaughty(kid)
		usa := math32.Inf(1)
		if !child.IsNotVisited() {
			usa = -child.Value() + t.ExplorationConstant*child.prior*numerator/(1+float32(child.visits))
		}
		if best == nilNode || usa > bestScore || (usa == bestScore && child.prior > bestPrior) {
			best, bestScore, bestPrior = kid, usa, child.prior
		}
	}
	if best == nilNode {
		panic("Cannot return nil")
	}
	return best
}

// expand queries the predictor at a node and adds one child per empty cell. It returns the predicted value.
func (t *MCTS) expand(of naughty, b *gomoku.Board) (float32, error) {
	player := t.nodeFromNaughty(of).player
	logits, value, err := t.nn.Predict(b.Canonical(player))
	if err != nil {
		return 0, errors.Wrap(err, "Predictor failed")
	}
	cells := b.Cells()
	if len(logits) != len(cells) {
		return 0, errors.Errorf("Predictor returned %d logits for %d cells", len(logits), len(cells))
	}

	priors := maskedSoftmax(cells, logits)
	opp := player.Opponent()
	for i, p := range priors {
		if cells[i] != game.None {
			continue
		}
		kid := t.alloc(i, opp, p, of)
		t.children[of] = append(t.children[of], kid)
	}
	t.nodeFromNaughty(of).status = Expanded
	t.log("Expanded %v: %d children, value %v", t.nodeFromNaughty(of), len(t.children[of]), value)
	return value, nil
}

// backprop adds value to every node on the current path. value is from the point of view of leafPlayer.
func (t *MCTS) backprop(leafPlayer game.Player, value float32) {
	for _, n := range t.path {
		node := t.nodeFromNaughty(n)
		if node.player == leafPlayer {
			node.update(value)
		} else {
			node.update(-value)
		}
	}
}

// policy builds the output distribution from the root's children.
func (t *MCTS) policy(simulations int) []float32 {
	retVal := make([]float32, t.Size*t.Size)
	kids := t.children[t.root]
	if simulations == 0 {
		for _, kid := range kids {
			child := t.nodeFromNaughty(kid)
			retVal[child.move] = child.prior
		}
		return retVal
	}

	for _, kid := range kids {
		child := t.nodeFromNaughty(kid)
		retVal[child.move] = float32(child.visits)
	}
	if t.Temperature == 0 {
		best := vecf32.Argmax(retVal)
		for i := range retVal {
			retVal[i] = 0
		}
		retVal[best] = 1
		return retVal
	}
	if t.Temperature != 1 {
		// counts are scaled to (0, 1] first so the power cannot overflow
		vecf32.Scale(retVal, 1/retVal[vecf32.Argmax(retVal)])
		vecf32.PowOf(retVal, 1/t.Temperature)
	}
	vecf32.Scale(retVal, 1/vecf32.Sum(retVal))
	return retVal
}

// maskedSoftmax is the softmax of logits over the empty cells. Occupied cells get 0.
// If the result is degenerate the empty cells share the mass uniformly.
func maskedSoftmax(cells []game.Colour, logits []float32) []float32 {
	retVal := make([]float32, len(logits))
	top := math32.Inf(-1)
	for i, l := range logits {
		if cells[i] == game.None && l > top {
			top = l
		}
	}

	var sum float32
	for i, l := range logits {
		if cells[i] != game.None {
			continue
		}
		retVal[i] = math32.Exp(l - top)
		sum += retVal[i]
	}
	if sum > math32.SmallestNonzeroFloat32 && !math32.IsInf(sum, 0) && !math32.IsNaN(sum) {
		vecf32.Scale(retVal, 1/sum)
		return retVal
	}

	var legal int
	for _, cl := range cells {
		if cl == game.None {
			legal++
		}
	}
	for i, cl := range cells {
		if cl == game.None {
			retVal[i] = 1 / float32(legal)
		} else {
			retVal[i] = 0
		}
	}
	return retVal
}
