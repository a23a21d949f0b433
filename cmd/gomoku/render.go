package main

import (
	"fmt"
	"strings"

	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/muesli/termenv"
)

// render draws the board with row and column numbers. The last move is highlighted.
func render(out *termenv.Output, g *gomoku.Game) string {
	b := g.Board()
	n := b.Size()
	last, hasLast := g.LastMove()

	var buf strings.Builder
	buf.WriteString("   ")
	for col := 0; col < n; col++ {
		fmt.Fprintf(&buf, "%3d", col)
	}
	buf.WriteByte('\n')
	for row := 0; row < n; row++ {
		fmt.Fprintf(&buf, "%3d", row)
		for col := 0; col < n; col++ {
			c := game.Coord{Row: row, Col: col}
			cl := b.At(c)
			st := out.String(cl.Glyph())
			switch cl {
			case game.Black:
				st = st.Foreground(out.Color("4")).Bold()
			case game.White:
				st = st.Foreground(out.Color("1")).Bold()
			default:
				st = st.Faint()
			}
			if hasLast && last.Coord.Eq(c) {
				st = st.Reverse()
			}
			fmt.Fprintf(&buf, "  %v", st)
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}
