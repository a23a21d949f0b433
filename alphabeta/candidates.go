package alphabeta

import (
	"sort"

	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
)

// window is the half width of the neighbourhood around the centre used when no cell touches a stone.
const window = 2

// Candidates returns the cells worth searching: the empty cells in the 8-neighbourhood of any stone,
// ordered by manhattan distance to the centre (closest first, row major among equals).
//
// An empty board has the centre as its only candidate. If no empty cell touches a stone,
// the empty cells around the centre are used instead. A full board has no candidates.
func Candidates(b *gomoku.Board) []game.Coord {
	if b.IsFull() {
		return nil
	}
	centre := b.Center()
	if b.Stones() == 0 {
		return []game.Coord{centre}
	}

	var retVal []game.Coord
	size := b.Size()
	for i, cl := range b.Cells() {
		if cl != game.None {
			continue
		}
		c := game.Itol(game.Single(i), size)
		if touchesStone(b, c) {
			retVal = append(retVal, c)
		}
	}

	if len(retVal) == 0 {
		for r := centre.Row - window; r <= centre.Row+window; r++ {
			for col := centre.Col - window; col <= centre.Col+window; col++ {
				c := game.Coord{Row: r, Col: col}
				if b.IsEmpty(c) {
					retVal = append(retVal, c)
				}
			}
		}
	}
	if len(retVal) == 0 && b.IsEmpty(centre) {
		retVal = append(retVal, centre)
	}

	sort.SliceStable(retVal, func(i, j int) bool {
		return retVal[i].Manhattan(centre) < retVal[j].Manhattan(centre)
	})
	return retVal
}

func touchesStone(b *gomoku.Board, c game.Coord) bool {
	for _, d := range game.Neighbours {
		n := c.Add(d)
		if b.InBounds(n) && b.At(n) != game.None {
			return true
		}
	}
	return false
}
