// Package mcts implements a Monte Carlo tree search guided by a policy/value predictor.
//
// Every call to Search builds a fresh tree in an arena owned by the MCTS. Nodes refer to each other
// by index (naughty), never by pointer, so the arena can be reused across searches without
// reallocating.
package mcts

import "github.com/gorgonia/wuziqi/game"

// Predictor is essentially the neural network.
//
// The board is encoded from the point of view of the player to move (own stones 1, opponent's -1).
// logits must have one entry per cell, in row major order. value is in [-1, 1] and is from the
// point of view of the player to move. The search applies legality masking and softmax itself.
type Predictor interface {
	Predict(board []float32) (logits []float32, value float32, err error)
}

const (
	// NoMove is the move of the root node.
	NoMove game.Single = -1
)
