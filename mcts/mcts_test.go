package mcts

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

type uniformNN struct{ calls int }

func (nn *uniformNN) Predict(board []float32) ([]float32, float32, error) {
	nn.calls++
	return make([]float32, len(board)), 0, nil
}

type randomNN struct{ r *rand.Rand }

func (nn randomNN) Predict(board []float32) ([]float32, float32, error) {
	logits := make([]float32, len(board))
	for i := range logits {
		logits[i] = float32(nn.r.NormFloat64() * 3)
	}
	return logits, float32(nn.r.Float64()*2 - 1), nil
}

type brokenNN struct {
	err    error
	logits int
}

func (nn brokenNN) Predict(board []float32) ([]float32, float32, error) {
	return make([]float32, nn.logits), 0, nn.err
}

func midgame(t *testing.T) *gomoku.Board {
	b, err := gomoku.Parse(
		"..........",
		"..........",
		"..........",
		"...XO.....",
		"....XO....",
		"....OX....",
		"..........",
		"..........",
		"..........",
		"..........",
	)
	require.NoError(t, err)
	return b
}

func sum(a []float32) (retVal float64) {
	for _, v := range a {
		retVal += float64(v)
	}
	return
}

func TestSearchDistribution(t *testing.T) {
	b := midgame(t)
	before := b.Clone()

	for seed := uint64(0); seed < 5; seed++ {
		conf := DefaultConfig(b.Size())
		conf.NumSimulations = 50
		tree := New(conf, randomNN{rand.New(rand.NewSource(seed))})

		policy, err := tree.Search(context.Background(), b, game.PlayerOne)
		require.NoError(t, err)
		require.Len(t, policy, b.Size()*b.Size())
		assert.InDelta(t, 1.0, sum(policy), 1e-5)
		for i, cl := range b.Cells() {
			if cl != game.None {
				assert.Zero(t, policy[i], "occupied cell %d", i)
			}
			assert.GreaterOrEqual(t, policy[i], float32(0))
		}
		assert.True(t, b.Eq(before), "board must not be modified")

		root, ok := tree.Root()
		require.True(t, ok)
		assert.Equal(t, uint32(conf.NumSimulations), root.Visits())
	}
}

func TestSearchTemperatureZero(t *testing.T) {
	b := midgame(t)
	conf := DefaultConfig(b.Size())
	conf.Temperature = 0
	tree := New(conf, randomNN{rand.New(rand.NewSource(1337))})

	policy, err := tree.Search(context.Background(), b, game.PlayerTwo)
	require.NoError(t, err)
	var ones int
	for _, p := range policy {
		switch p {
		case 0:
		case 1:
			ones++
		default:
			t.Fatalf("Expected a one-hot policy. Got %v", policy)
		}
	}
	assert.Equal(t, 1, ones)
}

func TestSearchFindsWin(t *testing.T) {
	b, err := gomoku.Parse(
		"XXXX..",
		"......",
		"......",
		"......",
		".....O",
		"OOO...",
	)
	require.NoError(t, err)

	conf := DefaultConfig(6)
	conf.NumSimulations = 100
	conf.Temperature = 0
	tree := New(conf, &uniformNN{})

	policy, err := tree.Search(context.Background(), b, game.PlayerOne)
	require.NoError(t, err)
	win := game.Ltoi(game.Coord{Row: 0, Col: 4}, 6)
	assert.Equal(t, float32(1), policy[win], "%v", policy)

	pv := tree.PV()
	require.NotEmpty(t, pv)
	assert.Equal(t, win, pv[0])
}

func TestSearchLowTemperature(t *testing.T) {
	b, err := gomoku.Parse(
		"XXXX..",
		"......",
		"......",
		"......",
		".....O",
		"OOO...",
	)
	require.NoError(t, err)
	win := game.Ltoi(game.Coord{Row: 0, Col: 4}, 6)

	for _, temp := range []float32{0.5, 0.05, 0.01} {
		conf := DefaultConfig(6)
		conf.NumSimulations = 800
		conf.Temperature = temp
		require.True(t, conf.IsValid())
		tree := New(conf, &uniformNN{})

		policy, err := tree.Search(context.Background(), b, game.PlayerOne)
		require.NoError(t, err)
		for i, p := range policy {
			require.False(t, math32.IsNaN(p) || math32.IsInf(p, 0), "temperature %v: cell %d is %v", temp, i, p)
			if b.Cells()[i] != game.None {
				assert.Zero(t, p, "temperature %v: occupied cell %d", temp, i)
			}
		}
		assert.InDelta(t, 1.0, sum(policy), 1e-5, "temperature %v", temp)
		assert.Equal(t, int(win), int(argmax(policy)), "temperature %v", temp)
	}
}

func argmax(a []float32) (retVal int) {
	for i, v := range a {
		if v > a[retVal] {
			retVal = i
		}
	}
	return
}

func TestSearchCancelled(t *testing.T) {
	b := midgame(t)
	before := b.Clone()
	nn := &uniformNN{}
	tree := New(DefaultConfig(b.Size()), nn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	policy, err := tree.Search(ctx, b, game.PlayerOne)
	require.NoError(t, err)
	assert.Equal(t, 1, nn.calls, "only the root is expanded")
	assert.InDelta(t, 1.0, sum(policy), 1e-5)

	legal := float32(len(b.Empties()))
	for i, cl := range b.Cells() {
		if cl == game.None {
			assert.InDelta(t, 1/legal, policy[i], 1e-6)
		} else {
			assert.Zero(t, policy[i])
		}
	}
	assert.True(t, b.Eq(before))
}

func TestSearchErrors(t *testing.T) {
	full, err := gomoku.Parse("XO", "OX")
	require.NoError(t, err)
	_, err = New(DefaultConfig(2), &uniformNN{}).Search(context.Background(), full, game.PlayerOne)
	assert.True(t, errors.Is(err, game.ErrNoLegalMoves))

	won, err := gomoku.Parse(
		"XXXXX.",
		"OOOO..",
		"......",
		"......",
		"......",
		"......",
	)
	require.NoError(t, err)
	_, err = New(DefaultConfig(6), &uniformNN{}).Search(context.Background(), won, game.PlayerTwo)
	assert.True(t, errors.Is(err, game.ErrGameOver))

	b := midgame(t)
	_, err = New(DefaultConfig(9), &uniformNN{}).Search(context.Background(), b, game.PlayerOne)
	assert.Error(t, err, "size mismatch")

	_, err = New(DefaultConfig(10), brokenNN{err: errors.New("boom"), logits: 100}).Search(context.Background(), b, game.PlayerOne)
	assert.Error(t, err)
	_, err = New(DefaultConfig(10), brokenNN{logits: 99}).Search(context.Background(), b, game.PlayerOne)
	assert.Error(t, err)

	assert.Panics(t, func() { New(Config{}, &uniformNN{}) })
}

func TestMaskedSoftmax(t *testing.T) {
	cells := []game.Colour{game.None, game.Black, game.None, game.White}

	got := maskedSoftmax(cells, []float32{0, 100, float32(math.Log(3)), -5})
	assert.InDelta(t, 0.25, got[0], 1e-6)
	assert.Zero(t, got[1])
	assert.InDelta(t, 0.75, got[2], 1e-6)
	assert.Zero(t, got[3])

	for _, logits := range [][]float32{
		{math32.Inf(-1), 0, math32.Inf(-1), 0},
		{math32.NaN(), 0, 1, 0},
		{math32.Inf(1), 0, 1, 0},
	} {
		got := maskedSoftmax(cells, logits)
		assert.Equal(t, []float32{0.5, 0, 0.5, 0}, got, "%v", logits)
	}
}

func TestToDot(t *testing.T) {
	b := midgame(t)
	conf := DefaultConfig(b.Size())
	conf.NumSimulations = 5
	tree := New(conf, &uniformNN{})
	assert.Contains(t, tree.ToDot(), "digraph")

	_, err := tree.Search(context.Background(), b, game.PlayerOne)
	require.NoError(t, err)
	dot := tree.ToDot()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(dot), "digraph G"))
	// the root and the five visited children
	assert.Equal(t, 6, strings.Count(dot, "Node ID"))
	assert.Equal(t, 5, strings.Count(dot, "->"))
}
