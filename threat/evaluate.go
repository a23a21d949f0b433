package threat

import (
	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
)

// Score magnitudes shared by both tables.
const (
	FiveScore  = 1000000
	FourScore  = 100000
	ThreeScore = 10000
	TwoScore   = 1000
)

// pointScore is the table used for scoring a hypothetical placement.
// A run of five or more is scored like any other length, and two blocked ends are worth nothing even for a five.
func pointScore(length, blocked int) int {
	switch blocked {
	case 0:
		switch {
		case length >= 5:
			return FiveScore
		case length == 4:
			return FourScore
		case length == 3:
			return ThreeScore
		case length == 2:
			return TwoScore
		}
	case 1:
		switch {
		case length >= 5:
			return FiveScore / 10
		case length == 4:
			return FourScore / 10
		case length == 3:
			return ThreeScore / 10
		case length == 2:
			return TwoScore / 10
		}
	}
	return 0
}

// boardScore is the table used for the whole board evaluation. Runs of five never reach it:
// EvaluateBoard short circuits on them.
func boardScore(length, blocked int) int {
	switch blocked {
	case 0:
		switch length {
		case 4:
			return FourScore
		case 3:
			return ThreeScore
		case 2:
			return TwoScore
		}
	case 1:
		switch length {
		case 4:
			return ThreeScore
		case 3:
			return TwoScore
		case 2:
			return TwoScore / 10
		}
	}
	return 0
}

// EvaluatePoint scores the desirability for p of placing a stone at c. Higher is better for p.
// The board is not mutated. Occupied or off board cells score 0.
func EvaluatePoint(b *gomoku.Board, c game.Coord, p game.Player) int {
	if !b.IsEmpty(c) {
		return 0
	}
	var score int
	for _, dir := range game.Directions {
		ch := ChainAt(b, c, p, dir)
		score += pointScore(ch.Length, ch.Blocked())
	}
	return score
}

// EvaluateBoard sums a positional score over every stone on the board, adding for ai's stones
// and subtracting for the opponent's. Any run of five or more short circuits to ±FiveScore.
func EvaluateBoard(b *gomoku.Board, ai game.Player) int {
	var total int
	size := b.Size()
	for i, cl := range b.Cells() {
		if cl == game.None {
			continue
		}
		p := game.Player(cl)
		c := game.Itol(game.Single(i), size)

		var score int
		for _, dir := range game.Directions {
			ch := ChainAt(b, c, p, dir)
			if ch.Length >= gomoku.WinLength {
				if p == ai {
					return FiveScore
				}
				return -FiveScore
			}
			score += boardScore(ch.Length, ch.Blocked())
		}
		if p == ai {
			total += score
		} else {
			total -= score
		}
	}
	return total
}
