// Package gif renders gomoku games as animated GIFs, one frame per position.
package gif

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"math"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

var regular *truetype.Font

const (
	dpi             = 144.0
	fontsize        = 12.0
	lineheight      = 1.2
	dummyLongString = `Move 625: White@24,24`

	finalDelay = 300 // hundredths of a second
)

func init() {
	var err error
	if regular, err = truetype.Parse(gomono.TTF); err != nil {
		panic(err)
	}
}

var globPalette = color.Palette{
	color.Gray{0},
	color.Gray{253},
}

// Encoder accumulates frames. The frame size is fixed by the first frame and capped at maxH x maxW.
type Encoder struct {
	H, W int
	font.Drawer

	out  *gif.GIF
	face font.Face

	maxH, maxW  int
	padH, padW  int
	delay       int
	initialized bool
}

// NewEncoder creates an encoder whose frames are at most h x w pixels and last delay hundredths of a second.
func NewEncoder(h, w, delay int) *Encoder {
	return &Encoder{
		H:     -1,
		W:     -1,
		maxH:  h,
		maxW:  w,
		padH:  10,
		padW:  10,
		delay: delay,

		Drawer: font.Drawer{
			Src: image.Black,
		},
		out: &gif.GIF{LoopCount: -1},
	}
}

// Frames returns the number of frames encoded so far.
func (enc *Encoder) Frames() int { return len(enc.out.Image) }

// Encode adds the current position of g as a frame.
func (enc *Encoder) Encode(g *gomoku.Game, title string) error {
	board := boardLines(g.Board())
	status := "Start"
	if last, ok := g.LastMove(); ok {
		status = fmt.Sprintf("Move %d: %v", g.MoveNumber(), last)
	}
	ended, winner := g.Ended()
	lines := make([]string, 0, len(board)+3)
	lines = append(lines, title)
	lines = append(lines, board...)
	lines = append(lines, status)
	if ended {
		if winner == game.NoPlayer {
			lines = append(lines, "Draw")
		} else {
			lines = append(lines, fmt.Sprintf("Winner: %v", winner))
		}
	}

	dy := int(math.Ceil(fontsize * lineheight * dpi / 72))
	if !enc.initialized {
		enc.face = truetype.NewFace(regular, &truetype.Options{
			Size:    fontsize,
			DPI:     dpi,
			Hinting: font.HintingFull,
		})
		enc.Drawer.Face = enc.face

		maxW := maxInt(font.MeasureString(enc.Face, board[0]).Ceil(), font.MeasureString(enc.Face, dummyLongString).Ceil())
		maxW = maxInt(maxW, font.MeasureString(enc.Face, title).Ceil())
		w := maxW + 2*enc.padW
		h := (len(board)+4)*dy + 2*enc.padH // title, status, winner and a spare line

		w = minInt(w, enc.maxW)
		h = minInt(h, enc.maxH)
		if w == enc.maxW {
			enc.padW = 0
		}
		if h == enc.maxH {
			enc.padH = 0
		}
		enc.H = h
		enc.W = w
		enc.initialized = true
	}

	im := image.NewPaletted(image.Rect(0, 0, enc.W, enc.H), globPalette)
	draw.Draw(im, im.Bounds(), image.White, image.Point{}, draw.Src)
	enc.Dst = im
	y := enc.padH + dy
	for _, s := range lines {
		enc.Dot = fixed.P(enc.padW, y)
		enc.DrawString(s)
		y += dy
	}

	delay := enc.delay
	if ended {
		delay = finalDelay
	}
	enc.out.Image = append(enc.out.Image, im)
	enc.out.Delay = append(enc.out.Delay, delay)
	return nil
}

// Flush writes the GIF into w.
func (enc *Encoder) Flush(w io.Writer) error {
	if len(enc.out.Image) == 0 {
		return errors.New("No frames to write")
	}
	return errors.WithStack(gif.EncodeAll(w, enc.out))
}

// Replay plays moves from an empty size x size board and writes every position, the empty board included, to w.
func Replay(w io.Writer, size int, moves []game.PlayerMove, title string) error {
	g := gomoku.NewGame(size)
	enc := NewEncoder(2048, 2048, 50)
	if err := enc.Encode(g, title); err != nil {
		return err
	}
	for i, m := range moves {
		if err := g.Play(m.Player, m.Coord); err != nil {
			return errors.WithMessagef(err, "replaying move %d", i+1)
		}
		if err := enc.Encode(g, title); err != nil {
			return err
		}
	}
	return enc.Flush(w)
}

func boardLines(b *gomoku.Board) []string {
	n := b.Size()
	lines := make([]string, n)
	glyphs := make([]string, n)
	for row := 0; row < n; row++ {
		for col := range glyphs {
			glyphs[col] = b.At(game.Coord{Row: row, Col: col}).Glyph()
		}
		lines[row] = strings.Join(glyphs, " ")
	}
	return lines
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
