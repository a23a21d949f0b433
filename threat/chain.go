// Package threat scores cells and boards for gomoku using directional chain heuristics,
// and detects the open threes and open fours that drive the move selector.
package threat

import (
	"fmt"

	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
)

// End describes the cell immediately beyond one end of a chain.
type End uint8

const (
	Open End = iota
	Occupied
	OffBoard
)

func (e End) String() string {
	switch e {
	case Open:
		return "Open"
	case Occupied:
		return "Occupied"
	case OffBoard:
		return "OffBoard"
	}
	return "UNKNOWN END"
}

// Category is a named tactical category derived from a chain's length and its ends.
type Category int

const (
	Nothing Category = iota
	ClosedTwo
	OpenTwo
	ClosedThree
	OpenThree
	ClosedFour
	OpenFour
	Five
)

var categoryNames = [...]string{"Nothing", "ClosedTwo", "OpenTwo", "ClosedThree", "OpenThree", "ClosedFour", "OpenFour", "Five"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "UNKNOWN CATEGORY"
	}
	return categoryNames[c]
}

// Chain is the maximal contiguous run of one player's stones through an origin cell along a direction.
// Start is the end reached by walking against the direction, End the one reached by walking along it.
type Chain struct {
	Player     game.Player
	Dir        game.Coord
	Start, End game.Coord
	Length     int
	Before     End // the cell at Start - Dir
	After      End // the cell at End + Dir
}

func (ch Chain) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "{%v %d from %v to %v (%v, %v)}", ch.Player, ch.Length, ch.Start, ch.End, ch.Before, ch.After)
}

// Blocked counts the ends that are occupied or off the board.
func (ch Chain) Blocked() int {
	var retVal int
	if ch.Before != Open {
		retVal++
	}
	if ch.After != Open {
		retVal++
	}
	return retVal
}

// IsOpen returns true if both flanking cells are empty and on the board.
func (ch Chain) IsOpen() bool { return ch.Before == Open && ch.After == Open }

// Flanks returns the two cells immediately beyond the ends of the chain.
func (ch Chain) Flanks() (before, after game.Coord) {
	return ch.Start.Sub(ch.Dir), ch.End.Add(ch.Dir)
}

// Category classifies the chain.
func (ch Chain) Category() Category {
	if ch.Length >= gomoku.WinLength {
		return Five
	}
	blocked := ch.Blocked()
	if blocked >= 2 {
		return Nothing
	}
	switch ch.Length {
	case 4:
		if blocked == 0 {
			return OpenFour
		}
		return ClosedFour
	case 3:
		if blocked == 0 {
			return OpenThree
		}
		return ClosedThree
	case 2:
		if blocked == 0 {
			return OpenTwo
		}
		return ClosedTwo
	}
	return Nothing
}

// ChainAt walks outward from c in both polarities of dir, counting the contiguous stones of p.
// c itself is counted as p's stone whether or not it is occupied, so ChainAt can be used
// on a hypothetical placement without touching the board.
func ChainAt(b *gomoku.Board, c game.Coord, p game.Player, dir game.Coord) Chain {
	colour := game.Colour(p)
	ch := Chain{
		Player: p,
		Dir:    dir,
		Start:  c,
		End:    c,
		Length: 1,
	}
	for q := c.Sub(dir); b.InBounds(q) && b.At(q) == colour; q = q.Sub(dir) {
		ch.Start = q
		ch.Length++
	}
	for q := c.Add(dir); b.InBounds(q) && b.At(q) == colour; q = q.Add(dir) {
		ch.End = q
		ch.Length++
	}
	before, after := ch.Flanks()
	ch.Before = endOf(b, before)
	ch.After = endOf(b, after)
	return ch
}

func endOf(b *gomoku.Board, c game.Coord) End {
	switch {
	case !b.InBounds(c):
		return OffBoard
	case b.At(c) == game.None:
		return Open
	}
	return Occupied
}
