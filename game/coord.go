package game

import "fmt"

// Coord represents a (row, col) coordinate.
//
// The Coord uses a standard computer cartesian coordinates
//		- (0, 0) represents the top left
//		- (14, 14) represents the bottom right of a 15x15 board
type Coord struct {
	Row, Col int
}

func (c Coord) Add(other Coord) Coord { return Coord{c.Row + other.Row, c.Col + other.Col} }

func (c Coord) Sub(other Coord) Coord { return Coord{c.Row - other.Row, c.Col - other.Col} }

func (c Coord) Eq(other Coord) bool { return c.Row == other.Row && c.Col == other.Col }

// Manhattan returns the manhattan distance between two coordinates.
func (c Coord) Manhattan(other Coord) int { return abs(c.Row-other.Row) + abs(c.Col-other.Col) }

// Format prints the coordinate in the "row,col" form used by the text protocols.
func (c Coord) Format(s fmt.State, r rune) { fmt.Fprintf(s, "%d,%d", c.Row, c.Col) }

// Single represents a coordinate as a single number, utilized in a rowmajor fashion.
//		- 0 represents the top left
//		- 14 represents the top right of a 15x15 board
//		- 15 represents (1, 0)
type Single int32

// Ltoi converts a coordinate into its row major index on a board of the given size.
func Ltoi(c Coord, size int) Single { return Single(c.Row*size + c.Col) }

// Itol converts a row major index back into a coordinate.
func Itol(s Single, size int) Coord { return Coord{int(s) / size, int(s) % size} }

// Directions are the four line axes: horizontal, vertical, diagonal and anti-diagonal.
// Each is explored in both polarities.
var Directions = [4]Coord{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// Neighbours is the 8-neighbourhood of a cell.
var Neighbours = [8]Coord{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
