// Package alphabeta implements a depth limited minimax search with alpha-beta pruning over gomoku boards.
//
// The search mutates the board it is given in place and restores every cell before returning,
// including when it is cancelled through its context.
package alphabeta

import (
	"context"
	"math"

	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/gorgonia/wuziqi/threat"
	"github.com/pkg/errors"
)

// Config configures a search.
type Config struct {
	Depth int // plies to search
}

// DefaultConfig searches two plies: a move for the AI and the opponent's reply.
func DefaultConfig() Config { return Config{Depth: 2} }

func (c Config) IsValid() bool { return c.Depth >= 1 }

// Result is the outcome of a search.
//
// HasMove is false when no candidate improved on the initial bound, which happens when every
// candidate loses by force, or when the search was cancelled before a candidate was fully searched.
type Result struct {
	Value   float64
	Move    game.Coord
	HasMove bool
	Nodes   int
}

// Search runs alpha-beta from the point of view of ai, who is to move on b.
// Wins for ai are +Inf, losses -Inf. Other leaves are scored with threat.EvaluateBoard.
//
// If ctx is cancelled the best move found so far is returned alongside ctx's error.
// A full board returns game.ErrNoLegalMoves.
func Search(ctx context.Context, b *gomoku.Board, ai game.Player, depth int) (Result, error) {
	if depth < 0 {
		return Result{}, errors.Errorf("Cannot search to a negative depth %d", depth)
	}
	s := &searcher{
		ctx: ctx,
		b:   b,
		ai:  ai,
		opp: ai.Opponent(),
	}

	if w, ok := b.Winner(); ok {
		return Result{Value: s.terminal(w), Nodes: 1}, nil
	}
	if b.IsFull() {
		return Result{Value: float64(threat.EvaluateBoard(b, ai)), Nodes: 1}, errors.WithStack(game.ErrNoLegalMoves)
	}

	value, move, ok, err := s.search(depth, math.Inf(-1), math.Inf(1), true, game.Coord{}, false)
	return Result{
		Value:   value,
		Move:    move,
		HasMove: ok,
		Nodes:   s.nodes,
	}, err
}

type searcher struct {
	ctx     context.Context
	b       *gomoku.Board
	ai, opp game.Player
	nodes   int
}

func (s *searcher) terminal(winner game.Player) float64 {
	if winner == s.ai {
		return math.Inf(1)
	}
	return math.Inf(-1)
}

// search is the recursive minimax. last is the most recent placement, if any.
func (s *searcher) search(depth int, alpha, beta float64, maximizing bool, last game.Coord, hasLast bool) (value float64, best game.Coord, ok bool, err error) {
	if err = s.ctx.Err(); err != nil {
		return 0, best, false, err
	}
	s.nodes++

	if hasLast {
		if w, won := s.b.CheckWin(last); won {
			return s.terminal(w), best, false, nil
		}
	}
	if depth == 0 {
		return float64(threat.EvaluateBoard(s.b, s.ai)), best, false, nil
	}

	moves := Candidates(s.b)
	if len(moves) == 0 {
		return float64(threat.EvaluateBoard(s.b, s.ai)), best, false, nil
	}

	player := s.opp
	value = math.Inf(1)
	if maximizing {
		player = s.ai
		value = math.Inf(-1)
	}

	for _, mv := range moves {
		var v float64
		if v, err = s.try(mv, player, depth, alpha, beta, maximizing); err != nil {
			return value, best, ok, err
		}

		if maximizing {
			if v > value {
				value, best, ok = v, mv, true
			}
			alpha = math.Max(alpha, v)
		} else {
			if v < value {
				value, best, ok = v, mv, true
			}
			beta = math.Min(beta, v)
		}
		if beta <= alpha {
			break
		}
	}
	return value, best, ok, nil
}

// try places mv for player, searches the reply and restores the cell on every exit path.
func (s *searcher) try(mv game.Coord, player game.Player, depth int, alpha, beta float64, maximizing bool) (float64, error) {
	if err := s.b.Place(mv, player); err != nil {
		return 0, err
	}
	defer s.b.Undo(mv)

	v, _, _, err := s.search(depth-1, alpha, beta, !maximizing, mv, true)
	return v, err
}
