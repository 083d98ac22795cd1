package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/hailam/chessmagic/internal/board"
)

// SVGOptions controls the SVG board.
type SVGOptions struct {
	SquareSize int
	Title      string
	Light      string
	Dark       string
}

// DefaultSVGOptions returns a 48px board in the usual brown palette.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		SquareSize: 48,
		Light:      "#f0d9b5",
		Dark:       "#b58863",
	}
}

var svgFill = [...]string{
	KindOrigin:  "fill:#f6c342;stroke:#000;stroke-width:2",
	KindFriend:  "fill:#3c78d8;stroke:#000;stroke-width:1",
	KindEnemy:   "fill:#cc3333;stroke:#000;stroke-width:1",
	KindCapture: "fill:#cc3333;stroke:#7fff00;stroke-width:4",
}

// SVG writes the diagram as a standalone SVG document.
func SVG(w io.Writer, m Marks, opts SVGOptions) error {
	if opts.SquareSize <= 0 {
		return fmt.Errorf("render: square size %d", opts.SquareSize)
	}
	size := opts.SquareSize
	margin := size / 2
	side := 8*size + margin

	canvas := svg.New(w)
	canvas.Start(side, side)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}

	for sq := board.A1; sq <= board.H8; sq++ {
		x := margin + sq.File()*size
		y := (7 - sq.Rank()) * size
		fill := opts.Dark
		if (sq.File()+sq.Rank())%2 == 1 {
			fill = opts.Light
		}
		canvas.Rect(x, y, size, size, "fill:"+fill)

		cx, cy := x+size/2, y+size/2
		switch k := m.KindOf(sq); k {
		case KindAttacked:
			canvas.Circle(cx, cy, size/6, "fill:#2e8b57;fill-opacity:0.8")
		case KindOrigin, KindFriend, KindEnemy, KindCapture:
			canvas.Circle(cx, cy, size*3/8, svgFill[k])
		}
	}

	label := fmt.Sprintf("font-family:sans-serif;font-size:%dpx;text-anchor:middle", size/3)
	for i := 0; i < 8; i++ {
		canvas.Text(margin+i*size+size/2, 8*size+margin*3/4, string(rune('a'+i)), label)
		canvas.Text(margin/2, (7-i)*size+size/2+size/8, string(rune('1'+i)), label)
	}
	canvas.End()
	return nil
}
