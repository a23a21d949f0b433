package gomoku

import (
	"fmt"

	"github.com/gorgonia/wuziqi/game"
	"github.com/pkg/errors"
)

// Game is a single game session: a board, the player to move and the history of moves.
// Player one (Black) always moves first and players alternate strictly after every legal placement.
type Game struct {
	board   *Board
	toMove  game.Player
	history []game.PlayerMove

	ended  bool
	winner game.Player
}

// NewGame creates a new game on an empty board of the given size.
func NewGame(size int) *Game {
	return &Game{
		board:   New(size),
		toMove:  game.PlayerOne,
		history: make([]game.PlayerMove, 0, size*size),
	}
}

func (g *Game) Format(s fmt.State, c rune) { g.board.Format(s, c) }

// Board returns the board of the game. Callers that mutate it (searches) must restore it before returning.
func (g *Game) Board() *Board { return g.board }

func (g *Game) Size() int { return g.board.size }

// ToMove returns the player whose turn it is.
func (g *Game) ToMove() game.Player { return g.toMove }

// MoveNumber returns the count of moves so far.
func (g *Game) MoveNumber() int { return len(g.history) }

// LastMove returns the last move that was made, if any.
func (g *Game) LastMove() (game.PlayerMove, bool) {
	if len(g.history) == 0 {
		return game.PlayerMove{}, false
	}
	return g.history[len(g.history)-1], true
}

// History returns a copy of the moves made so far.
func (g *Game) History() []game.PlayerMove {
	retVal := make([]game.PlayerMove, len(g.history))
	copy(retVal, g.history)
	return retVal
}

// Ended checks if the game has ended. If it has, who is the winner? A draw has no winner.
func (g *Game) Ended() (ended bool, winner game.Player) { return g.ended, g.winner }

// Apply places a stone for the player to move at c.
func (g *Game) Apply(c game.Coord) error { return g.Play(g.toMove, c) }

// Play places a stone for p at c. It is an error for p to move out of turn.
func (g *Game) Play(p game.Player, c game.Coord) error {
	if g.ended {
		return errors.WithStack(game.ErrGameOver)
	}
	if p != g.toMove {
		return errors.Wrapf(game.ErrInvalidMove, "it is %v's turn, not %v's", g.toMove, p)
	}
	if err := g.board.Place(c, p); err != nil {
		return err
	}
	g.history = append(g.history, game.PlayerMove{Player: p, Coord: c})
	if w, ok := g.board.CheckWin(c); ok {
		g.ended = true
		g.winner = w
	} else if g.board.IsFull() {
		g.ended = true
	}
	g.toMove = p.Opponent()
	return nil
}

// UndoLastMove takes back the last move. The player who made it is to move again.
func (g *Game) UndoLastMove() error {
	last, ok := g.LastMove()
	if !ok {
		return errors.New("No moves to undo")
	}
	g.board.Undo(last.Coord)
	g.history = g.history[:len(g.history)-1]
	g.toMove = last.Player
	g.ended = false
	g.winner = game.NoPlayer
	return nil
}

// Reset clears the board and starts a new game with player one to move.
func (g *Game) Reset() {
	g.board.Reset()
	g.history = g.history[:0]
	g.toMove = game.PlayerOne
	g.ended = false
	g.winner = game.NoPlayer
}
