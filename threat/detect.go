package threat

import (
	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
)

// DetectOpenThree returns the empty flanking cells of every open three of p, in discovery order and without duplicates.
func DetectOpenThree(b *gomoku.Board, p game.Player) []game.Coord {
	var retVal []game.Coord
	seen := make(map[game.Coord]struct{})
	scan(b, p, func(ch Chain) bool {
		if ch.Category() != OpenThree {
			return false
		}
		before, after := ch.Flanks()
		for _, c := range [2]game.Coord{before, after} {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				retVal = append(retVal, c)
			}
		}
		return false
	})
	return retVal
}

// DetectOpenFour reports whether p has an open four, and the two flanking cells of the first one found.
func DetectOpenFour(b *gomoku.Board, p game.Player) (bool, []game.Coord) {
	var retVal []game.Coord
	scan(b, p, func(ch Chain) bool {
		if ch.Category() != OpenFour {
			return false
		}
		before, after := ch.Flanks()
		retVal = []game.Coord{before, after}
		return true
	})
	return retVal != nil, retVal
}

// scan visits the chain through every stone of p in every direction, in row major order.
// It stops when fn returns true.
func scan(b *gomoku.Board, p game.Player, fn func(Chain) bool) {
	colour := game.Colour(p)
	size := b.Size()
	for i, cl := range b.Cells() {
		if cl != colour {
			continue
		}
		c := game.Itol(game.Single(i), size)
		for _, dir := range game.Directions {
			if fn(ChainAt(b, c, p, dir)) {
				return
			}
		}
	}
}
