// Package wuziqi drives AlphaZero style self-play for gomoku.
//
// An Arena plays one game with a single MCTS for both sides and turns it into training examples.
// GenerateSelfPlayGames runs many arenas concurrently, and AZ closes the loop by training a dual network
// on the examples and using it as the predictor of the next round of self-play.
package wuziqi

import (
	"io"
	"runtime"

	dual "github.com/gorgonia/wuziqi/dualnet"
	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/mcts"
)

// Config configures self-play and training.
type Config struct {
	Name        string      `yaml:"name"`
	Size        int         `yaml:"size"`
	NNConf      dual.Config `yaml:"nn"`
	MCTSConf    mcts.Config `yaml:"mcts"`
	MaxExamples int         `yaml:"max_examples"` // maximum number of examples kept for training. 0 keeps all.

	Workers int    `yaml:"workers"` // concurrent self-play games
	Seed    uint64 `yaml:"seed"`    // 0 picks a random seed
}

// DefaultConfig returns the configuration used to train on a size x size board.
func DefaultConfig(size int) Config {
	return Config{
		Name:        "wuziqi",
		Size:        size,
		NNConf:      dual.DefaultConf(size),
		MCTSConf:    mcts.DefaultConfig(size),
		MaxExamples: 10000,
		Workers:     runtime.NumCPU(),
	}
}

func (c Config) IsValid() bool {
	return c.Size > 0 &&
		c.NNConf.IsValid() && c.NNConf.Width == c.Size && c.NNConf.Height == c.Size &&
		c.MCTSConf.IsValid() && c.MCTSConf.Size == c.Size &&
		c.MaxExamples >= 0 &&
		c.Workers >= 1
}

// Example is a training example: the canonical board of the player to move, the MCTS visit distribution
// and the outcome of the game for that player.
type Example struct {
	Board  []float32
	Policy []float32
	Value  float32
}

// Episode is one finished self-play game.
type Episode struct {
	Winner   game.Player // NoPlayer on a draw
	Moves    []game.PlayerMove
	Examples []Example // already augmented
}

// Augmenter takes an example, and creates more examples from it.
type Augmenter func(a Example) ([]Example, error)

// Dualer is an interface for anything that allows getting out a *Dual.
type Dualer interface {
	Dual() *dual.Dual
}

// Inferer is a predictor that holds resources.
type Inferer interface {
	mcts.Predictor
	io.Closer
}

// ExecLogger is anything that can return the execution log.
type ExecLogger interface {
	ExecLog() string
}
