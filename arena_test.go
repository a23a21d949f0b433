package wuziqi

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/mcts"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig(size int) Config {
	conf := DefaultConfig(size)
	conf.MCTSConf.NumSimulations = 8
	conf.NNConf.BatchSize = 8
	conf.Workers = 2
	conf.Seed = 1337
	return conf
}

func checkEpisode(t *testing.T, ep Episode, size int) {
	require.NotEmpty(t, ep.Moves)
	require.Len(t, ep.Examples, NumSymmetries*len(ep.Moves), "every ply is recorded in all symmetries")

	for i, m := range ep.Moves {
		want := game.PlayerOne
		if i%2 == 1 {
			want = game.PlayerTwo
		}
		assert.Equal(t, want, m.Player, "players alternate, black first")

		ex := ep.Examples[NumSymmetries*i]
		idx := game.Ltoi(m.Coord, size)
		assert.Zero(t, ex.Board[idx], "move %d was played on an empty cell", i)
		assert.Greater(t, ex.Policy[idx], float32(0), "move %d was drawn from the search distribution", i)
		var sum float32
		for _, p := range ex.Policy {
			sum += p
		}
		assert.InDelta(t, 1, sum, 1e-4)

		switch {
		case ep.Winner == game.NoPlayer:
			assert.Zero(t, ex.Value)
		case m.Player == ep.Winner:
			assert.Equal(t, float32(1), ex.Value)
		default:
			assert.Equal(t, float32(-1), ex.Value)
		}
		for k := 1; k < NumSymmetries; k++ {
			assert.Equal(t, ex.Value, ep.Examples[NumSymmetries*i+k].Value)
		}
	}

	if ep.Winner != game.NoPlayer {
		last := ep.Moves[len(ep.Moves)-1]
		assert.Equal(t, ep.Winner, last.Player, "the last mover wins")
	} else {
		assert.Len(t, ep.Moves, size*size, "a draw fills the board")
	}
}

func TestArenaPlay(t *testing.T) {
	const size = 5
	conf := mcts.DefaultConfig(size)
	conf.NumSimulations = 10

	for _, temp := range []float32{1.0, 0.1} {
		a := NewArena(conf, dummyInferer{}, temp, 42)
		ep, err := a.Play(context.Background())
		require.NoError(t, err)
		checkEpisode(t, ep, size)

		// the arena is reusable
		ep2, err := a.Play(context.Background())
		require.NoError(t, err)
		checkEpisode(t, ep2, size)
	}
}

func TestArenaPlayGreedyIsDeterministic(t *testing.T) {
	const size = 5
	conf := mcts.DefaultConfig(size)
	conf.NumSimulations = 10

	ep1, err := NewArena(conf, dummyInferer{}, 0, 1).Play(context.Background())
	require.NoError(t, err)
	ep2, err := NewArena(conf, dummyInferer{}, 0, 2).Play(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff(ep1.Moves, ep2.Moves); diff != "" {
		t.Errorf("greedy games should not depend on the seed (-first +second):\n%s", diff)
	}
}

func TestArenaPlayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := NewArena(mcts.DefaultConfig(5), dummyInferer{}, 1, 42)
	_, err := a.Play(ctx)
	assert.True(t, errors.Is(err, context.Canceled), "%v", err)
}

type failingPredictor struct{}

func (failingPredictor) Predict(board []float32) ([]float32, float32, error) {
	return nil, 0, errors.New("no network")
}

func TestArenaPlayPredictorError(t *testing.T) {
	a := NewArena(mcts.DefaultConfig(5), failingPredictor{}, 1, 42)
	_, err := a.Play(context.Background())
	assert.Error(t, err)
}

func TestScheduledTemperature(t *testing.T) {
	var temps []float32
	for i := 0; i < 10; i++ {
		temps = append(temps, scheduledTemperature(i, 10))
	}
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1, 1, 1, 0.1, 0.1}, temps)
	assert.Equal(t, float32(1), scheduledTemperature(0, 1))
}

func TestGenerateSelfPlayGames(t *testing.T) {
	const size = 5
	conf := smallConfig(size)

	episodes, err := selfPlay(context.Background(), 3, dummyInferer{}, 6, conf)
	require.NoError(t, err)
	require.Len(t, episodes, 3)
	var total int
	for _, ep := range episodes {
		checkEpisode(t, ep, size)
		total += len(ep.Examples)
	}

	examples, err := GenerateSelfPlayGames(context.Background(), 3, dummyInferer{}, 6, conf)
	require.NoError(t, err)
	assert.Len(t, examples, total)
	want := episodes[0].Examples
	if diff := cmp.Diff(want, examples[:len(want)]); diff != "" {
		t.Errorf("the same seed should replay the same games (-want +got):\n%s", diff)
	}

	none, err := GenerateSelfPlayGames(context.Background(), 0, dummyInferer{}, 6, conf)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = GenerateSelfPlayGames(context.Background(), 1, dummyInferer{}, 0, conf)
	assert.Error(t, err)
	_, err = GenerateSelfPlayGames(context.Background(), 1, nil, 6, conf)
	assert.Error(t, err)
	_, err = GenerateSelfPlayGames(context.Background(), -1, dummyInferer{}, 6, conf)
	assert.Error(t, err)
	_, err = GenerateSelfPlayGames(context.Background(), 2, failingPredictor{}, 6, conf)
	assert.Error(t, err)
}
