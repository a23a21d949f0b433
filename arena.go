package wuziqi

import (
	"context"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/gorgonia/wuziqi/mcts"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"gorgonia.org/vecf32"
)

// greedyBelow is the temperature at or below which moves are picked greedily instead of sampled.
const greedyBelow = 0.1

// Arena plays self-play games. One MCTS searches for both sides, so the tree always belongs to the player to move.
type Arena struct {
	r    *rand.Rand
	game *gomoku.Game
	tree *mcts.MCTS
	aug  Augmenter

	// Temperature decides how moves are picked from the search distribution:
	// above 0.1 they are sampled, otherwise the most likely move is played.
	Temperature float32

	logger zerolog.Logger
}

// NewArena makes an arena for the board size in conf. It panics if conf is invalid.
func NewArena(conf mcts.Config, nn mcts.Predictor, temperature float32, seed uint64) *Arena {
	return &Arena{
		r:           rand.New(rand.NewSource(seed)),
		game:        gomoku.NewGame(conf.Size),
		tree:        mcts.New(conf, nn),
		aug:         Augment(conf.Size),
		Temperature: temperature,
		logger:      zerolog.Nop(),
	}
}

// WithLogger sets the logger used to trace the moves of each game.
func (a *Arena) WithLogger(l zerolog.Logger) *Arena {
	a.logger = l
	return a
}

// Play plays a game from an empty board to the end and returns the augmented training examples.
// Black moves first. A cancelled context abandons the game.
func (a *Arena) Play(ctx context.Context) (Episode, error) {
	a.game.Reset()
	defer a.game.Reset()

	type record struct {
		Example
		player game.Player
	}
	var records []record

	var ended bool
	var winner game.Player
	for ended, winner = a.game.Ended(); !ended; ended, winner = a.game.Ended() {
		if err := ctx.Err(); err != nil {
			return Episode{}, errors.WithStack(err)
		}

		board := a.game.Board()
		player := a.game.ToMove()
		policy, err := a.tree.Search(ctx, board, player)
		if err != nil {
			if errors.Is(err, game.ErrNoLegalMoves) {
				break
			}
			return Episode{}, errors.WithMessagef(err, "search at move %d", a.game.MoveNumber())
		}
		if !validPolicy(policy) {
			return Episode{}, errors.Errorf("invalid search distribution at move %d: %v", a.game.MoveNumber(), policy)
		}

		move := a.pick(policy)
		records = append(records, record{
			Example: Example{Board: board.Canonical(player), Policy: policy},
			player:  player,
		})

		c := game.Itol(move, a.game.Size())
		a.logger.Debug().Int("move", a.game.MoveNumber()).Str("player", fmt.Sprintf("%v", player)).Str("coord", fmt.Sprintf("%v", c)).Msg("play")
		if err = a.game.Apply(c); err != nil {
			return Episode{}, errors.WithMessagef(err, "playing %v", c)
		}
	}

	retVal := Episode{
		Winner: winner,
		Moves:  a.game.History(),
	}
	for _, r := range records {
		switch {
		case winner == game.NoPlayer:
			r.Value = 0
		case r.player == winner:
			r.Value = 1
		default:
			r.Value = -1
		}
		augmented, err := a.aug(r.Example)
		if err != nil {
			return Episode{}, err
		}
		retVal.Examples = append(retVal.Examples, augmented...)
	}
	a.logger.Debug().Str("winner", fmt.Sprintf("%v", winner)).Int("moves", len(retVal.Moves)).Msg("game over")
	return retVal, nil
}

// pick chooses a move from the search distribution.
func (a *Arena) pick(policy []float32) game.Single {
	if a.Temperature <= greedyBelow {
		return game.Single(vecf32.Argmax(policy))
	}
	p := a.r.Float32()
	var cumulative float32
	last := -1
	for i, v := range policy {
		if v <= 0 {
			continue
		}
		cumulative += v
		last = i
		if p < cumulative {
			return game.Single(i)
		}
	}
	// rounding left some mass unclaimed
	return game.Single(last)
}

func validPolicy(policy []float32) bool {
	var sum float32
	for _, v := range policy {
		if math32.IsInf(v, 0) || math32.IsNaN(v) || v < 0 {
			return false
		}
		sum += v
	}
	return sum > 0
}
