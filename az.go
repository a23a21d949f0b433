package wuziqi

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"

	dual "github.com/gorgonia/wuziqi/dualnet"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
	"lukechampine.com/frand"
)

// AZ is the top level structure and the entry point of the training API.
// It is a wrapper around self-play and the neural network that composes the algorithm.
// AZ stands for AlphaZero
type AZ struct {
	Statistics
	Config

	nn       *dual.Dual
	agent    *Agent
	examples []Example // the most recent examples, oldest first
	epoch    int
	useDummy bool
	r        *rand.Rand
}

// New creates an AZ with a freshly initialised network. It panics if the config is invalid.
func New(conf Config) *AZ {
	if !conf.IsValid() {
		panic("Config is not valid. Unable to proceed")
	}
	nn := dual.New(conf.NNConf)
	if err := nn.Init(); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	if conf.Seed == 0 {
		conf.Seed = frand.Uint64n(1<<63) + 1
	}
	return &AZ{
		Statistics: makeStatistics(),
		Config:     conf,
		nn:         nn,
		agent:      NewAgent(nn),
		useDummy:   true,
		r:          rand.New(rand.NewSource(conf.Seed)),
	}
}

// NN returns the network being trained.
func (a *AZ) NN() *dual.Dual { return a.nn }

// Epoch returns the number of epochs learnt so far.
func (a *AZ) Epoch() int { return a.epoch }

// NumExamples returns the number of examples kept for training.
func (a *AZ) NumExamples() int { return len(a.examples) }

func (a *AZ) setupSelfPlay() error {
	if a.epoch == 0 && a.useDummy {
		log.Info().Msg("using a uniform predictor for the first epoch")
		return a.agent.UseDummy(a.Workers)
	}
	a.agent.NN = a.nn
	return a.agent.SwitchToInference(a.Workers)
}

// Learn runs epochs rounds of self-play and training. Each round plays games self-play games with the current network,
// keeps the latest MaxExamples examples and trains the network on them for nniters iterations.
func (a *AZ) Learn(ctx context.Context, epochs, games, nniters int) error {
	defer a.agent.Close()
	for end := a.epoch + epochs; a.epoch < end; a.epoch++ {
		l := log.With().Int("epoch", a.epoch).Logger()
		if err := a.setupSelfPlay(); err != nil {
			return errors.WithMessage(err, "setting up self play")
		}

		conf := a.Config
		conf.Seed = a.r.Uint64() | 1
		episodes, err := selfPlay(ctx, games, a.agent, a.MCTSConf.NumSimulations, conf)
		if err != nil {
			return errors.WithMessagef(err, "self play for epoch %d", a.epoch)
		}
		var fresh int
		for _, ep := range episodes {
			a.examples = append(a.examples, ep.Examples...)
			fresh += len(ep.Examples)
		}
		if a.MaxExamples > 0 && len(a.examples) > a.MaxExamples {
			a.examples = append(a.examples[:0:0], a.examples[len(a.examples)-a.MaxExamples:]...)
		}
		l.Info().Int("games", len(episodes)).Int("new", fresh).Int("kept", len(a.examples)).Msg("self play done")

		Xs, policies, values, batches := a.prepareExamples(a.examples)
		if batches == 0 {
			l.Warn().Int("examples", len(a.examples)).Int("batch", a.NNConf.BatchSize).Msg("not enough examples to train")
			a.update(a.epoch, episodes, len(a.examples), 0)
			continue
		}
		if err = dual.Train(a.nn, Xs, policies, values, batches, nniters); err != nil {
			return errors.WithMessage(err, "Train fail")
		}
		cost := a.nn.Cost()
		l.Info().Int("batches", batches).Float32("cost", cost).Msg("trained")
		a.update(a.epoch, episodes, len(a.examples), cost)
		a.useDummy = false
	}
	return nil
}

// Save learning into filename
func (a *AZ) Save(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	enc := gob.NewEncoder(f)
	return enc.Encode(a.nn)
}

// Load the network from a file written by Save. Self-play uses it from the next epoch on.
func (a *AZ) Load(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	nn := dual.New(a.NNConf)
	dec := gob.NewDecoder(f)
	if err = dec.Decode(nn); err != nil {
		return errors.WithStack(err)
	}
	if nn.Width != a.Size || nn.Height != a.Size {
		return errors.Errorf("%s holds a network for a %dx%d board. Expected %dx%d", filename, nn.Width, nn.Height, a.Size, a.Size)
	}
	a.nn = nn
	a.NNConf = nn.Config
	a.useDummy = false
	return nil
}

// prepareExamples packs a shuffled copy of the examples into whole batches. Leftover examples are dropped.
func (a *AZ) prepareExamples(examples []Example) (Xs, Policies, Values *tensor.Dense, batches int) {
	shuffled := make([]Example, len(examples))
	copy(shuffled, examples)
	shuffleExamples(a.r, shuffled)

	batches = len(shuffled) / a.NNConf.BatchSize
	total := batches * a.NNConf.BatchSize
	if batches == 0 {
		return nil, nil, nil, 0
	}
	actionSpace := a.NNConf.ActionSpace
	boardSize := a.NNConf.Features * a.NNConf.Height * a.NNConf.Width
	XsBacking := make([]float32, 0, total*boardSize)
	PoliciesBacking := make([]float32, 0, total*actionSpace)
	ValuesBacking := make([]float32, 0, total)
	for _, ex := range shuffled[:total] {
		XsBacking = append(XsBacking, ex.Board...)
		PoliciesBacking = append(PoliciesBacking, ex.Policy...)
		ValuesBacking = append(ValuesBacking, ex.Value)
	}

	Xs = tensor.New(tensor.WithBacking(XsBacking), tensor.WithShape(total, a.NNConf.Features, a.NNConf.Height, a.NNConf.Width))
	Policies = tensor.New(tensor.WithBacking(PoliciesBacking), tensor.WithShape(total, actionSpace))
	Values = tensor.New(tensor.WithBacking(ValuesBacking), tensor.WithShape(total))
	return
}

func shuffleExamples(r *rand.Rand, examples []Example) {
	for i := range examples {
		j := r.Intn(i + 1)
		examples[i], examples[j] = examples[j], examples[i]
	}
}
