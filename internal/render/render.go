// Package render draws attack sets as terminal grids and SVG boards.
package render

import (
	"strings"

	"github.com/fatih/color"

	"github.com/hailam/chessmagic/internal/board"
)

// Marks is what a diagram shows: a piece, the squares it reaches and the
// pieces around it. Origin may be board.NoSquare.
type Marks struct {
	Origin  board.Square
	Attacks board.Bitboard
	Friends board.Bitboard
	Enemies board.Bitboard
}

// Kind classifies a square of a diagram.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindOrigin
	KindAttacked
	KindFriend
	KindEnemy
	KindCapture
)

// KindOf returns how sq is drawn.
func (m Marks) KindOf(sq board.Square) Kind {
	switch {
	case sq == m.Origin:
		return KindOrigin
	case m.Attacks.IsSet(sq) && m.Enemies.IsSet(sq):
		return KindCapture
	case m.Attacks.IsSet(sq):
		return KindAttacked
	case m.Friends.IsSet(sq):
		return KindFriend
	case m.Enemies.IsSet(sq):
		return KindEnemy
	}
	return KindEmpty
}

var glyphs = [...]string{
	KindEmpty:    ".",
	KindOrigin:   "*",
	KindAttacked: "x",
	KindFriend:   "F",
	KindEnemy:    "E",
	KindCapture:  "X",
}

// Terminal renders diagrams with ANSI colours. Colour is dropped
// automatically when stdout is not a terminal.
type Terminal struct {
	colors [len(glyphs)]*color.Color
}

// NewTerminal returns a renderer with the default palette.
func NewTerminal() *Terminal {
	t := &Terminal{}
	t.colors[KindEmpty] = color.New(color.FgHiBlack)
	t.colors[KindOrigin] = color.New(color.FgHiYellow, color.Bold)
	t.colors[KindAttacked] = color.New(color.FgGreen)
	t.colors[KindFriend] = color.New(color.FgCyan)
	t.colors[KindEnemy] = color.New(color.FgRed)
	t.colors[KindCapture] = color.New(color.FgHiRed, color.Bold)
	return t
}

// DisableColor turns colour off regardless of the output.
func (t *Terminal) DisableColor() {
	for _, c := range t.colors {
		c.DisableColor()
	}
}

// Board returns the diagram with rank 8 on top and file letters below.
func (t *Terminal) Board(m Marks) string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteByte(' ')
		for file := 0; file < 8; file++ {
			k := m.KindOf(board.NewSquare(file, rank))
			sb.WriteByte(' ')
			sb.WriteString(t.colors[k].Sprint(glyphs[k]))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a b c d e f g h\n")
	return sb.String()
}

// Legend describes the glyphs.
func (t *Terminal) Legend() string {
	names := [...]string{"empty", "piece", "reachable", "friend", "enemy", "capture"}
	parts := make([]string, len(names))
	for k, name := range names {
		parts[k] = t.colors[k].Sprint(glyphs[k]) + " " + name
	}
	return strings.Join(parts, "  ")
}
