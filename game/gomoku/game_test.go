package gomoku

import (
	"testing"

	"github.com/gorgonia/wuziqi/game"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestGameAlternation(t *testing.T) {
	assert := assert.New(t)
	g := NewGame(9)

	err := g.Play(game.PlayerTwo, game.Coord{Row: 4, Col: 4})
	assert.True(errors.Is(err, game.ErrInvalidMove), "player two cannot move first")
	assert.Equal(0, g.MoveNumber())

	assert.NoError(g.Play(game.PlayerOne, game.Coord{Row: 4, Col: 4}))
	assert.Equal(game.PlayerTwo, g.ToMove())

	err = g.Apply(game.Coord{Row: 4, Col: 4})
	assert.True(errors.Is(err, game.ErrInvalidMove))
	assert.Equal(game.PlayerTwo, g.ToMove(), "a rejected move does not pass the turn")

	last, ok := g.LastMove()
	assert.True(ok)
	assert.Equal(game.PlayerMove{Player: game.PlayerOne, Coord: game.Coord{Row: 4, Col: 4}}, last)
}

func TestGameWinAndUndo(t *testing.T) {
	assert := assert.New(t)
	g := NewGame(9)
	moves := []game.Coord{
		{Row: 0, Col: 0}, {Row: 8, Col: 8},
		{Row: 0, Col: 1}, {Row: 8, Col: 7},
		{Row: 0, Col: 2}, {Row: 8, Col: 6},
		{Row: 0, Col: 3}, {Row: 8, Col: 5},
		{Row: 0, Col: 4},
	}
	for _, m := range moves {
		assert.NoError(g.Apply(m))
	}
	ended, winner := g.Ended()
	assert.True(ended)
	assert.Equal(game.PlayerOne, winner)

	err := g.Apply(game.Coord{Row: 5, Col: 5})
	assert.True(errors.Is(err, game.ErrGameOver))

	assert.NoError(g.UndoLastMove())
	ended, winner = g.Ended()
	assert.False(ended)
	assert.Equal(game.NoPlayer, winner)
	assert.Equal(game.PlayerOne, g.ToMove())
	assert.Equal(len(moves)-1, g.MoveNumber())
	assert.Equal(game.None, g.Board().At(game.Coord{Row: 0, Col: 4}))

	g.Reset()
	assert.Equal(0, g.MoveNumber())
	assert.Equal(0, g.Board().Stones())
	assert.Error(g.UndoLastMove())
}

func TestGameDraw(t *testing.T) {
	g := NewGame(2)
	for i := 0; i < 4; i++ {
		assert.NoError(t, g.Apply(game.Itol(game.Single(i), 2)))
	}
	ended, winner := g.Ended()
	assert.True(t, ended)
	assert.Equal(t, game.NoPlayer, winner)
}
