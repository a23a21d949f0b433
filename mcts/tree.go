package mcts

import (
	"sync"

	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
)

// Config is the structure to configure the MCTS.
type Config struct {
	// ExplorationConstant weighs the prior against the backed up value in the upper confidence bound.
	ExplorationConstant float32
	NumSimulations      int

	// Temperature is applied to the visit counts of the output distribution.
	// 0 is a one-hot on the most visited move; 1 is the normalised visit counts.
	Temperature float32

	Size int // side length of the board
}

func DefaultConfig(boardSize int) Config {
	return Config{
		ExplorationConstant: 2.0,
		NumSimulations:      25,
		Temperature:         1.0,
		Size:                boardSize,
	}
}

func (c Config) IsValid() bool {
	return c.ExplorationConstant > 0 && c.NumSimulations > 0 && c.Temperature >= 0 && c.Size > 0
}

// MCTS is essentially a "global" manager of sorts for the memories. The goal is to build MCTS without much pointer chasing.
//
// An MCTS runs one search at a time. Concurrent self-play uses one MCTS per worker.
type MCTS struct {
	sync.Mutex
	Config
	nn Predictor

	// memory related fields
	nodes    []Node
	children [][]naughty

	root  naughty
	board *gomoku.Board // the position searched from

	path []naughty // scratch space for the descent

	lumberjack
}

// New creates a MCTS. It panics if the config is invalid.
func New(conf Config, nn Predictor) *MCTS {
	if !conf.IsValid() {
		panic("Invalid MCTS config")
	}
	actionSpace := conf.Size * conf.Size
	return &MCTS{
		Config:     conf,
		nn:         nn,
		nodes:      make([]Node, 0, actionSpace+1),
		children:   make([][]naughty, 0, actionSpace+1),
		root:       nilNode,
		path:       make([]naughty, 0, actionSpace+1),
		lumberjack: makeLumberJack(),
	}
}

// SetPredictor replaces the predictor used by subsequent searches.
func (t *MCTS) SetPredictor(nn Predictor) {
	t.Lock()
	t.nn = nn
	t.Unlock()
}

// Nodes returns the number of nodes in the last search tree.
func (t *MCTS) Nodes() int { return len(t.nodes) }

// Root returns the root of the last search tree, if there is one.
func (t *MCTS) Root() (*Node, bool) {
	if !t.root.isValid() {
		return nil, false
	}
	return t.nodeFromNaughty(t.root), true
}

// Children returns the children of a node.
func (t *MCTS) Children(of naughty) []naughty { return t.children[of] }

func (t *MCTS) nodeFromNaughty(n naughty) *Node { return &t.nodes[int(n)] }

// alloc adds a node into the arena. The children slices of earlier searches are reused.
func (t *MCTS) alloc(move int, player game.Player, prior float32, parent naughty) naughty {
	id := naughty(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		move:   game.Single(move),
		player: player,
		prior:  prior,
		id:     id,
		parent: parent,
	})
	if int(id) < len(t.children) {
		t.children[id] = t.children[id][:0]
	} else {
		t.children = append(t.children, nil)
	}
	return id
}

// reset empties the arena while keeping its memory.
func (t *MCTS) reset() {
	for i := range t.nodes {
		t.nodes[i].reset()
	}
	t.nodes = t.nodes[:0]
	t.root = nilNode
	t.lumberjack.Reset()
}
