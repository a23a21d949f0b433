package gomoku

import (
	"fmt"
	"strings"

	"github.com/gorgonia/wuziqi/game"
	"github.com/pkg/errors"
	"gorgonia.org/vecf32"
)

const (
	// DefaultSize is the side length of a standard gomoku board.
	DefaultSize = 15

	// WinLength is the number of contiguous stones required to win. Longer runs also win.
	WinLength = 5
)

// Board is a square NxN grid of cells. The zero value is not usable; use New.
//
// Searches mutate a Board in place with Place and Undo, so a Board must only
// ever be owned by one search at a time.
type Board struct {
	cells  []game.Colour
	size   int
	stones int
}

// New creates a new empty board of size x size cells.
func New(size int) *Board {
	if size < 1 {
		panic(fmt.Sprintf("Cannot create a board of size %d", size))
	}
	return &Board{
		cells: make([]game.Colour, size*size),
		size:  size,
	}
}

// Parse creates a board from rows of glyphs ("." empty, "X" player one, "O" player two).
// Whitespace within a row is ignored. The number of rows defines the board size and every row must match it.
func Parse(rows ...string) (*Board, error) {
	if len(rows) == 0 {
		return nil, errors.New("Cannot parse a board with no rows")
	}
	b := New(len(rows))
	for i, row := range rows {
		glyphs := []rune(strings.Join(strings.Fields(row), ""))
		if len(glyphs) != len(rows) {
			return nil, errors.Errorf("Row %d has %d cells. Expected %d (boards must be square)", i, len(glyphs), len(rows))
		}
		for j, r := range glyphs {
			var c game.Colour
			switch r {
			case '.', '·':
				continue
			case 'X', 'x':
				c = game.Black
			case 'O', 'o':
				c = game.White
			default:
				return nil, errors.Errorf("Unknown glyph %q at %d,%d", r, i, j)
			}
			b.cells[i*b.size+j] = c
			b.stones++
		}
	}
	return b, nil
}

func (b *Board) Format(s fmt.State, c rune) {
	for i, cl := range b.cells {
		if i%b.size == 0 {
			fmt.Fprint(s, "⎢ ")
		}
		fmt.Fprintf(s, "%s ", cl)
		if (i+1)%b.size == 0 {
			fmt.Fprint(s, "⎥\n")
		}
	}
}

// Size returns the side length of the board.
func (b *Board) Size() int { return b.size }

// Cells returns the row major cells of the board. The returned slice must not be modified.
func (b *Board) Cells() []game.Colour { return b.cells }

// Stones returns the number of stones on the board.
func (b *Board) Stones() int { return b.stones }

// Center returns the centre cell.
func (b *Board) Center() game.Coord { return game.Coord{Row: b.size / 2, Col: b.size / 2} }

func (b *Board) InBounds(c game.Coord) bool {
	return c.Row >= 0 && c.Row < b.size && c.Col >= 0 && c.Col < b.size
}

// At returns the colour of the stone at c. c must be in bounds.
func (b *Board) At(c game.Coord) game.Colour { return b.cells[c.Row*b.size+c.Col] }

// IsEmpty returns true if c is in bounds and has no stone on it.
func (b *Board) IsEmpty(c game.Coord) bool { return b.InBounds(c) && b.At(c) == game.None }

// IsFull returns true when there are no empty cells left.
func (b *Board) IsFull() bool { return b.stones == len(b.cells) }

// Place places a stone of the given player at c.
func (b *Board) Place(c game.Coord, p game.Player) error {
	if p != game.PlayerOne && p != game.PlayerTwo {
		return errors.Wrapf(game.ErrInvalidMove, "%v is not a player", p)
	}
	if !b.InBounds(c) {
		return errors.Wrapf(game.ErrInvalidMove, "%v is out of bounds of a %dx%d board", c, b.size, b.size)
	}
	idx := c.Row*b.size + c.Col
	if b.cells[idx] != game.None {
		return errors.Wrapf(game.ErrInvalidMove, "%v is occupied by %v", c, b.cells[idx])
	}
	b.cells[idx] = game.Colour(p)
	b.stones++
	return nil
}

// Undo removes the stone at c. It must only be called on the most recently placed stone of a search branch.
func (b *Board) Undo(c game.Coord) {
	idx := c.Row*b.size + c.Col
	if b.cells[idx] == game.None {
		panic(fmt.Sprintf("Cannot undo %v: the cell is already empty", c))
	}
	b.cells[idx] = game.None
	b.stones--
}

// CheckWin scans the four lines through last. It returns the owner of the stone at last
// if any of those lines has WinLength or more contiguous stones of that owner.
func (b *Board) CheckWin(last game.Coord) (game.Player, bool) {
	if !b.InBounds(last) {
		return game.NoPlayer, false
	}
	colour := b.At(last)
	if colour == game.None {
		return game.NoPlayer, false
	}
	for _, dir := range game.Directions {
		if b.Run(last, dir) >= WinLength {
			return game.Player(colour), true
		}
	}
	return game.NoPlayer, false
}

// Run counts the contiguous stones of the colour at c along dir, in both polarities, including c itself.
func (b *Board) Run(c game.Coord, dir game.Coord) int {
	colour := b.At(c)
	count := 1
	for p := c.Add(dir); b.InBounds(p) && b.At(p) == colour; p = p.Add(dir) {
		count++
	}
	for p := c.Sub(dir); b.InBounds(p) && b.At(p) == colour; p = p.Sub(dir) {
		count++
	}
	return count
}

// Winner scans the whole board for a line of WinLength stones.
func (b *Board) Winner() (game.Player, bool) {
	for i, cl := range b.cells {
		if cl == game.None {
			continue
		}
		if p, ok := b.CheckWin(game.Itol(game.Single(i), b.size)); ok {
			return p, true
		}
	}
	return game.NoPlayer, false
}

// Empties returns every empty cell in row major order.
func (b *Board) Empties() []game.Coord {
	retVal := make([]game.Coord, 0, len(b.cells)-b.stones)
	for i, cl := range b.cells {
		if cl == game.None {
			retVal = append(retVal, game.Itol(game.Single(i), b.size))
		}
	}
	return retVal
}

func (b *Board) Reset() {
	for i := range b.cells {
		b.cells[i] = game.None
	}
	b.stones = 0
}

func (b *Board) Eq(other *Board) bool {
	if b.size != other.size {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

func (b *Board) Clone() *Board {
	retVal := New(b.size)
	copy(retVal.cells, b.cells)
	retVal.stones = b.stones
	return retVal
}

// CopyTo overwrites dst with b. Both boards must be the same size.
func (b *Board) CopyTo(dst *Board) {
	if dst.size != b.size {
		panic(fmt.Sprintf("Cannot copy a %dx%d board into a %dx%d board", b.size, b.size, dst.size, dst.size))
	}
	copy(dst.cells, b.cells)
	dst.stones = b.stones
}

// Canonical encodes the board from p's point of view: p's stones are 1, the opponent's -1 and empty cells 0.
func (b *Board) Canonical(p game.Player) []float32 {
	retVal := make([]float32, len(b.cells))
	for i, cl := range b.cells {
		retVal[i] = game.Player(cl).Sign()
	}
	if p == game.PlayerTwo {
		vecf32.Scale(retVal, -1)
	}
	return retVal
}
