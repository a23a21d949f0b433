// Package selector picks the AI's move in interactive play with a fixed priority ladder.
//
// The stages, in order, are:
//	1. play an immediate win
//	2. block the opponent's immediate win
//	3. complete an open four
//	4. block the opponent's open four
//	5. extend an open three
//	6. cap the opponent's open three
//	7. alpha-beta search, committed at once if the move also defuses a strong opponent threat
//	8. ask the external oracle, if enabled, falling back to the stage 7 move
//
// The order is part of the behaviour: an earlier stage always wins over a later one.
package selector

import (
	"context"
	"fmt"

	"github.com/gorgonia/wuziqi/alphabeta"
	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/gorgonia/wuziqi/threat"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Oracle is an external move suggestion service.
type Oracle interface {
	Suggest(ctx context.Context, b *gomoku.Board, player game.Player) (game.Coord, error)
}

// Stage is the ladder stage that produced a move.
type Stage byte

const (
	NoStage Stage = iota
	Win
	Block
	OwnOpenFour
	OpponentOpenFour
	OwnOpenThree
	OpponentOpenThree
	Search
	OracleSuggestion
	Fallback // stage 7 move used after the oracle was skipped or failed
	Strategic
)

var stageNames = [...]string{
	"none",
	"win",
	"block",
	"own open four",
	"opponent open four",
	"own open three",
	"opponent open three",
	"search",
	"oracle",
	"fallback",
	"strategic",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", byte(s))
}

// Decision is a chosen move and the stage that chose it.
type Decision struct {
	Move  game.Coord
	Stage Stage
}

func (d Decision) Format(s fmt.State, c rune) { fmt.Fprintf(s, "%v (%v)", d.Move, d.Stage) }

// defenceWeight weighs blocking over attacking in the strategic fallback.
const defenceWeight = 1.2

// Selector runs the priority ladder.
type Selector struct {
	Config
	oracle Oracle
	logger zerolog.Logger
}

// New creates a selector. oracle may be nil, in which case stage 8 is never consulted.
func New(conf Config, oracle Oracle) *Selector {
	if !conf.IsValid() {
		panic("Invalid selector config")
	}
	return &Selector{
		Config: conf,
		oracle: oracle,
		logger: log.Logger,
	}
}

// WithLogger replaces the selector's logger.
func (s *Selector) WithLogger(l zerolog.Logger) *Selector {
	s.logger = l
	return s
}

// SelectMove picks a move for ai on b. The board is left as it was found.
//
// Cancelling ctx cuts the alpha-beta stage short; its best move so far is used.
// Oracle failures are logged and never returned.
// A full board returns game.ErrNoLegalMoves.
func (s *Selector) SelectMove(ctx context.Context, b *gomoku.Board, ai game.Player) (Decision, error) {
	if b.IsFull() {
		return Decision{}, errors.WithStack(game.ErrNoLegalMoves)
	}
	opp := ai.Opponent()

	if c, ok := winningCell(b, ai); ok {
		return s.decide(c, Win), nil
	}
	if c, ok := winningCell(b, opp); ok {
		return s.decide(c, Block), nil
	}

	if ok, cells := threat.DetectOpenFour(b, ai); ok {
		if c, ok := firstEmpty(b, cells); ok {
			return s.decide(c, OwnOpenFour), nil
		}
	}
	if ok, cells := threat.DetectOpenFour(b, opp); ok {
		if c, ok := firstEmpty(b, cells); ok {
			return s.decide(c, OpponentOpenFour), nil
		}
	}

	for _, c := range threat.DetectOpenThree(b, ai) {
		if threat.EvaluatePoint(b, c, ai) > s.AttackThreshold {
			return s.decide(c, OwnOpenThree), nil
		}
	}
	for _, c := range threat.DetectOpenThree(b, opp) {
		if threat.EvaluatePoint(b, c, ai) > s.SuppressThreshold {
			return s.decide(c, OpponentOpenThree), nil
		}
	}

	fallback := s.strategic(ctx, b, ai)
	if fallback.Stage == Search && threat.EvaluatePoint(b, fallback.Move, opp) >= s.StrongDefenseThreshold {
		return s.decide(fallback.Move, Search), nil
	}

	if !s.OracleEnabled || s.oracle == nil {
		return s.decide(fallback.Move, fallback.Stage), nil
	}
	c, err := s.oracle.Suggest(ctx, b, ai)
	switch {
	case err != nil:
		s.logger.Warn().Err(err).Msg("Oracle failed. Using search move")
	case !b.IsEmpty(c):
		s.logger.Warn().Msgf("Oracle suggested unplayable cell %v. Using search move", c)
	default:
		return s.decide(c, OracleSuggestion), nil
	}
	if fallback.Stage == Search {
		fallback.Stage = Fallback
	}
	return s.decide(fallback.Move, fallback.Stage), nil
}

func (s *Selector) decide(c game.Coord, stage Stage) Decision {
	s.logger.Debug().Str("stage", stage.String()).Int("row", c.Row).Int("col", c.Col).Msg("Move selected")
	return Decision{Move: c, Stage: stage}
}

// strategic runs the alpha-beta search. When it yields no move the empty cell with the best
// combined attack and defence score is used, the first such cell in row major order on ties.
func (s *Selector) strategic(ctx context.Context, b *gomoku.Board, ai game.Player) Decision {
	res, err := alphabeta.Search(ctx, b, ai, s.SearchDepth)
	if err != nil {
		s.logger.Debug().Err(err).Int("nodes", res.Nodes).Msg("Search cut short")
	}
	if res.HasMove {
		s.logger.Debug().Float64("value", res.Value).Int("nodes", res.Nodes).Msgf("Search found %v", res.Move)
		return Decision{Move: res.Move, Stage: Search}
	}

	// SelectMove has ruled out a full board, so there is at least one empty cell.
	opp := ai.Opponent()
	empties := b.Empties()
	best, bestScore := empties[0], -1.0
	for _, c := range empties {
		score := float64(threat.EvaluatePoint(b, c, ai)) + defenceWeight*float64(threat.EvaluatePoint(b, c, opp))
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return Decision{Move: best, Stage: Strategic}
}

// winningCell scans the empty cells in row major order for one that completes five for p.
func winningCell(b *gomoku.Board, p game.Player) (game.Coord, bool) {
	for _, c := range b.Empties() {
		if wins(b, c, p) {
			return c, true
		}
	}
	return game.Coord{}, false
}

func wins(b *gomoku.Board, c game.Coord, p game.Player) bool {
	if err := b.Place(c, p); err != nil {
		return false
	}
	defer b.Undo(c)
	w, ok := b.CheckWin(c)
	return ok && w == p
}

func firstEmpty(b *gomoku.Board, cells []game.Coord) (game.Coord, bool) {
	for _, c := range cells {
		if b.IsEmpty(c) {
			return c, true
		}
	}
	return game.Coord{}, false
}
