package game

import "github.com/pkg/errors"

var (
	// ErrInvalidMove is returned when a stone is placed out of bounds or on an occupied cell.
	ErrInvalidMove = errors.New("invalid move")

	// ErrNoLegalMoves is returned by searches when the board is full. Callers treat it as a draw.
	ErrNoLegalMoves = errors.New("no legal moves")

	// ErrGameOver is returned when a move is attempted after the game has ended.
	ErrGameOver = errors.New("game over")
)
