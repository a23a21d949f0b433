package oracle

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/pkg/errors"
)

const systemPrompt = "You are a professional gomoku engine: calm, precise and solid in defence. Reply only with row,col."

const userPrompt = `You are a world class gomoku player. You play '%[1]s', your opponent plays '%[2]s'.
The board is %[3]dx%[3]d and coordinates start at 0.

Current board:
%[4]s
It is your move. Reply with the best cell as row,col and follow these rules in order:
1. Defend: if the opponent can make an open four or a double three next move, block it now.
2. Attack: if you can make an open four, or a four plus an open three, do it.
3. Prefer a cell that blocks the opponent and builds your own line at the same time.
4. Diagonals matter as much as rows and columns.

Never ignore an open three of the opponent.
Answer with a single line such as "7,7" and nothing else.
`

// RenderBoard writes the board as one line per row, cells separated by spaces, using '.', 'X' and 'O'.
func RenderBoard(b *gomoku.Board) string {
	var buf strings.Builder
	size := b.Size()
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if c > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(b.At(game.Coord{Row: r, Col: c}).Glyph())
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

// Prompt is the user message asking for player's move on b.
func Prompt(b *gomoku.Board, player game.Player) string {
	me := game.Colour(player).Glyph()
	them := game.Colour(player.Opponent()).Glyph()
	return fmt.Sprintf(userPrompt, me, them, b.Size(), RenderBoard(b))
}

// ParseReply extracts a move from free text. The first line holding a comma separated pair of
// integers decides; spaces and parentheses are ignored. The move must be an empty cell of b.
func ParseReply(reply string, b *gomoku.Board) (game.Coord, error) {
	for _, line := range strings.Split(reply, "\n") {
		cleaned := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) || r == '(' || r == ')' {
				return -1
			}
			return r
		}, line)

		parts := strings.Split(cleaned, ",")
		if len(parts) != 2 {
			continue
		}
		row, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		col, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}

		c := game.Coord{Row: row, Col: col}
		if !b.IsEmpty(c) {
			return c, errors.Wrapf(game.ErrInvalidMove, "Oracle suggested %v which is not an empty cell", c)
		}
		return c, nil
	}
	return game.Coord{}, errors.Errorf("No row,col pair in reply %q", reply)
}
