package wuziqi

import (
	"context"
	"sync"

	"github.com/gorgonia/wuziqi/mcts"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"
)

// exploreFraction of the games in a batch are played with temperature 1. The rest are played greedily.
const exploreFraction = 0.8

// scheduledTemperature returns the temperature of the ith of count games.
func scheduledTemperature(i, count int) float32 {
	if float64(i) < exploreFraction*float64(count) {
		return 1.0
	}
	return greedyBelow
}

// GenerateSelfPlayGames plays count games with the predictor on both sides and returns their examples in game order.
// Each game searches simsPerMove simulations per move. Games run concurrently on conf.Workers goroutines,
// each with its own board and tree. A predictor that is not an *Agent is serialised.
func GenerateSelfPlayGames(ctx context.Context, count int, predictor mcts.Predictor, simsPerMove int, conf Config) ([]Example, error) {
	episodes, err := selfPlay(ctx, count, predictor, simsPerMove, conf)
	if err != nil {
		return nil, err
	}
	var retVal []Example
	for _, ep := range episodes {
		retVal = append(retVal, ep.Examples...)
	}
	return retVal, nil
}

func selfPlay(ctx context.Context, count int, predictor mcts.Predictor, simsPerMove int, conf Config) ([]Episode, error) {
	if count < 0 {
		return nil, errors.Errorf("Cannot play %d games", count)
	}
	if predictor == nil {
		return nil, errors.New("self play requires a predictor")
	}
	mconf := conf.MCTSConf
	mconf.NumSimulations = simsPerMove
	if !mconf.IsValid() {
		return nil, errors.Errorf("invalid search config %+v", mconf)
	}
	workers := conf.Workers
	if workers < 1 {
		workers = 1
	}
	if _, ok := predictor.(*Agent); !ok && workers > 1 {
		predictor = &syncPredictor{p: predictor}
	}
	seed := conf.Seed
	if seed == 0 {
		seed = frand.Uint64n(1<<63) + 1
	}

	episodes := make([]Episode, count)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			temp := scheduledTemperature(i, count)
			arena := NewArena(mconf, predictor, temp, seed+uint64(i)).
				WithLogger(log.With().Int("game", i).Logger())
			ep, err := arena.Play(ctx)
			if err != nil {
				return errors.WithMessagef(err, "game %d", i)
			}
			episodes[i] = ep
			log.Debug().Int("game", i).Float32("temperature", temp).Int("moves", len(ep.Moves)).Int("examples", len(ep.Examples)).Msg("self play")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return episodes, nil
}

// syncPredictor serialises calls to a predictor that is not safe for concurrent use.
type syncPredictor struct {
	sync.Mutex
	p mcts.Predictor
}

func (s *syncPredictor) Predict(board []float32) ([]float32, float32, error) {
	s.Lock()
	defer s.Unlock()
	return s.p.Predict(board)
}
