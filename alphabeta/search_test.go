package alphabeta

import (
	"context"
	"math"
	"testing"

	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	X = game.PlayerOne
	O = game.PlayerTwo
)

func TestCandidates(t *testing.T) {
	b := gomoku.New(gomoku.DefaultSize)
	assert.Equal(t, []game.Coord{{Row: 7, Col: 7}}, Candidates(b))

	require.NoError(t, b.Place(game.Coord{Row: 7, Col: 7}, X))
	got := Candidates(b)
	want := []game.Coord{
		{Row: 6, Col: 7}, {Row: 7, Col: 6}, {Row: 7, Col: 8}, {Row: 8, Col: 7},
		{Row: 6, Col: 6}, {Row: 6, Col: 8}, {Row: 8, Col: 6}, {Row: 8, Col: 8},
	}
	assert.Equal(t, want, got)

	full, err := gomoku.Parse("XO", "OX")
	require.NoError(t, err)
	assert.Empty(t, Candidates(full))
}

func TestSearchFindsWin(t *testing.T) {
	b, err := gomoku.Parse(
		"X.X......",
		".........",
		".........",
		".........",
		"..OOOO...",
		".........",
		".........",
		".........",
		"......X.X",
	)
	require.NoError(t, err)
	before := b.Clone()

	res, err := Search(context.Background(), b, O, 2)
	require.NoError(t, err)
	assert.True(t, res.HasMove)
	assert.True(t, math.IsInf(res.Value, 1), "value %v", res.Value)
	assert.Contains(t, []game.Coord{{Row: 4, Col: 1}, {Row: 4, Col: 6}}, res.Move)
	assert.Greater(t, res.Nodes, 0)
	assert.True(t, b.Eq(before), "board must be restored")
}

func TestSearchForcedLoss(t *testing.T) {
	b, err := gomoku.Parse(
		"........O",
		".........",
		".........",
		"..XXXX...",
		".........",
		".........",
		".........",
		"O.......O",
		"....O....",
	)
	require.NoError(t, err)

	res, err := Search(context.Background(), b, O, 2)
	require.NoError(t, err)
	assert.False(t, res.HasMove, "every move loses to the open four")
	assert.True(t, math.IsInf(res.Value, -1))
}

func TestSearchRestoresBoard(t *testing.T) {
	b := gomoku.New(gomoku.DefaultSize)
	for _, pm := range []game.PlayerMove{
		{Player: X, Coord: game.Coord{Row: 7, Col: 7}},
		{Player: O, Coord: game.Coord{Row: 7, Col: 8}},
		{Player: X, Coord: game.Coord{Row: 8, Col: 8}},
		{Player: O, Coord: game.Coord{Row: 6, Col: 6}},
	} {
		require.NoError(t, b.Place(pm.Coord, pm.Player))
	}
	before := b.Clone()

	for depth := 1; depth <= 3; depth++ {
		res, err := Search(context.Background(), b, X, depth)
		require.NoError(t, err)
		assert.True(t, res.HasMove)
		assert.True(t, b.IsEmpty(res.Move))
		assert.True(t, b.Eq(before), "board changed after depth %d", depth)
	}
}

func TestSearchCancelled(t *testing.T) {
	b := gomoku.New(gomoku.DefaultSize)
	require.NoError(t, b.Place(game.Coord{Row: 7, Col: 7}, X))
	before := b.Clone()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Search(ctx, b, O, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, res.HasMove)
	assert.True(t, b.Eq(before))
}

func TestSearchTerminalAndFull(t *testing.T) {
	b, err := gomoku.Parse(
		"XXXXX..",
		"OOOO...",
		".......",
		".......",
		".......",
		".......",
		".......",
	)
	require.NoError(t, err)
	res, err := Search(context.Background(), b, O, 2)
	require.NoError(t, err)
	assert.False(t, res.HasMove)
	assert.True(t, math.IsInf(res.Value, -1))

	full, err := gomoku.Parse("XO", "OX")
	require.NoError(t, err)
	_, err = Search(context.Background(), full, X, 2)
	assert.True(t, errors.Is(err, game.ErrNoLegalMoves))

	_, err = Search(context.Background(), gomoku.New(7), X, -1)
	assert.Error(t, err)
}
