package server

import (
	"context"
	"sync"
	"time"

	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/gorgonia/wuziqi/selector"
	"github.com/gorgonia/wuziqi/threat"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// Human plays black and moves first.
	Human = game.PlayerOne
	// AI plays white.
	AI = game.PlayerTwo
)

// Tally counts the finished games of a session from the human's side.
type Tally struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

// MoveDTO is a move as sent over the wire.
type MoveDTO struct {
	Row    int `json:"row"`
	Col    int `json:"col"`
	Player int `json:"player"`
}

// Status is a snapshot of the session.
type Status struct {
	Size      int       `json:"size"`
	Board     [][]int   `json:"board"` // 0 empty, 1 black, 2 white
	ToMove    int       `json:"to_move"`
	Ended     bool      `json:"ended"`
	Winner    int       `json:"winner"`
	History   []MoveDTO `json:"history"`
	LastStage string    `json:"last_stage,omitempty"`
	Tally     Tally     `json:"tally"`
}

// Hint is the score of a cell for both players.
type Hint struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Black int `json:"black"`
	White int `json:"white"`
}

// Session is one human playing the AI. It is safe for concurrent use; the AI's search holds the session.
type Session struct {
	sync.Mutex
	game      *gomoku.Game
	sel       *selector.Selector
	timeout   time.Duration
	lastStage selector.Stage
	tally     Tally
	logger    zerolog.Logger
}

func NewSession(size int, sel *selector.Selector, timeout time.Duration, logger zerolog.Logger) *Session {
	return &Session{
		game:    gomoku.NewGame(size),
		sel:     sel,
		timeout: timeout,
		logger:  logger,
	}
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.Lock()
	defer s.Unlock()
	return s.status()
}

func (s *Session) status() Status {
	b := s.game.Board()
	size := b.Size()
	st := Status{
		Size:    size,
		Board:   make([][]int, size),
		ToMove:  int(s.game.ToMove()),
		History: make([]MoveDTO, 0, s.game.MoveNumber()),
		Tally:   s.tally,
	}
	for i := range st.Board {
		st.Board[i] = make([]int, size)
		for j := range st.Board[i] {
			st.Board[i][j] = int(b.At(game.Coord{Row: i, Col: j}))
		}
	}
	st.Ended, _ = s.game.Ended()
	if st.Ended {
		_, w := s.game.Ended()
		st.Winner = int(w)
	}
	for _, m := range s.game.History() {
		st.History = append(st.History, MoveDTO{Row: m.Row, Col: m.Col, Player: int(m.Player)})
	}
	if s.lastStage != selector.NoStage {
		st.LastStage = s.lastStage.String()
	}
	return st
}

// NewGame starts a new game. The tally is kept. A size of 0 keeps the current size.
func (s *Session) NewGame(size int) (Status, error) {
	s.Lock()
	defer s.Unlock()
	switch {
	case size == 0 || size == s.game.Size():
		s.game.Reset()
	case size < gomoku.WinLength:
		return Status{}, errors.Errorf("a %dx%d board cannot hold five in a row", size, size)
	default:
		s.game = gomoku.NewGame(size)
	}
	s.lastStage = selector.NoStage
	return s.status(), nil
}

// Move plays the human's move and, unless that ends the game, the AI's reply.
func (s *Session) Move(ctx context.Context, c game.Coord) (Status, error) {
	s.Lock()
	defer s.Unlock()

	if err := s.game.Play(Human, c); err != nil {
		return Status{}, err
	}
	s.lastStage = selector.NoStage
	if s.count() {
		return s.status(), nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	d, err := s.sel.SelectMove(ctx, s.game.Board(), AI)
	if err != nil {
		return Status{}, errors.WithMessage(err, "AI failed to move")
	}
	if err = s.game.Play(AI, d.Move); err != nil {
		return Status{}, errors.WithMessagef(err, "AI chose %v", d)
	}
	s.lastStage = d.Stage
	s.logger.Info().Int("row", d.Move.Row).Int("col", d.Move.Col).Str("stage", d.Stage.String()).Msg("AI moved")
	s.count()
	return s.status(), nil
}

// count updates the tally if the game has just ended.
func (s *Session) count() bool {
	ended, winner := s.game.Ended()
	if !ended {
		return false
	}
	switch winner {
	case Human:
		s.tally.Wins++
	case AI:
		s.tally.Losses++
	default:
		s.tally.Draws++
	}
	s.logger.Info().Interface("tally", s.tally).Msg("game over")
	return true
}

// Undo takes back the AI's reply, if any, and the human's move before it.
func (s *Session) Undo() (Status, error) {
	s.Lock()
	defer s.Unlock()
	last, ok := s.game.LastMove()
	if !ok {
		return Status{}, errors.New("No moves to undo")
	}
	if last.Player == AI {
		if err := s.game.UndoLastMove(); err != nil {
			return Status{}, err
		}
	}
	if err := s.game.UndoLastMove(); err != nil {
		return Status{}, err
	}
	s.lastStage = selector.NoStage
	return s.status(), nil
}

// Record returns the board size and the moves of the current game.
func (s *Session) Record() (size int, moves []game.PlayerMove) {
	s.Lock()
	defer s.Unlock()
	return s.game.Size(), s.game.History()
}

// Hint scores c for both players.
func (s *Session) Hint(c game.Coord) (Hint, error) {
	s.Lock()
	defer s.Unlock()
	b := s.game.Board()
	if !b.InBounds(c) {
		return Hint{}, errors.Wrapf(game.ErrInvalidMove, "%v is off the board", c)
	}
	return Hint{
		Row:   c.Row,
		Col:   c.Col,
		Black: threat.EvaluatePoint(b, c, game.PlayerOne),
		White: threat.EvaluatePoint(b, c, game.PlayerTwo),
	}, nil
}
