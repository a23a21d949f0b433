package game

import (
	"fmt"
)

type Colour int32

const (
	None Colour = iota
	Black
	White
)

func (cl Colour) Format(s fmt.State, c rune) {
	switch c {
	case 'v': // used in debug
		switch cl {
		case None:
			fmt.Fprint(s, "None")
		case Black:
			fmt.Fprint(s, "Black")
		case White:
			fmt.Fprint(s, "White")
		}
	case 's': // used in board games
		fmt.Fprint(s, cl.Glyph())
	case 'd':
		fmt.Fprintf(s, "%d", int32(cl))
	}
}

// Glyph returns the single character used when a board is rendered as text:
// "." for an empty cell, "X" for Black and "O" for White.
func (cl Colour) Glyph() string {
	switch cl {
	case Black:
		return "X"
	case White:
		return "O"
	}
	return "."
}

// Player represents a player. It's also a colour.
//
// Black (player one, 'X') always moves first.
type Player Colour

const (
	NoPlayer  = Player(None)
	PlayerOne = Player(Black)
	PlayerTwo = Player(White)
)

func (p Player) Format(s fmt.State, c rune) { Colour(p).Format(s, c) }

// Opponent returns the other player. It panics if p is not a real player.
func (p Player) Opponent() Player {
	switch p {
	case PlayerOne:
		return PlayerTwo
	case PlayerTwo:
		return PlayerOne
	}
	panic("Unreachable")
}

// Sign is +1 for player one and -1 for player two. It is used to orient boards and outcomes.
func (p Player) Sign() float32 {
	switch p {
	case PlayerOne:
		return 1
	case PlayerTwo:
		return -1
	}
	return 0
}

// PlayerMove is a tuple indicating the player and the move to be made.
type PlayerMove struct {
	Player
	Coord
}

// Eq returns true if both are equal
func (p PlayerMove) Eq(other PlayerMove) bool {
	return p.Player == other.Player && p.Coord.Eq(other.Coord)
}

func (p PlayerMove) Format(s fmt.State, c rune) { fmt.Fprintf(s, "%v@%v", p.Player, p.Coord) }
