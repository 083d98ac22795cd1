package query

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/subcommands"

	"github.com/hailam/chessmagic/cmd/internal/opt"
	"github.com/hailam/chessmagic/internal/attacks"
	"github.com/hailam/chessmagic/internal/board"
	"github.com/hailam/chessmagic/internal/render"
)

type Command struct {
	search   opt.Search
	piece    string
	square   string
	occupied string
	friends  string
	enemies  string
	svgOut   string
	noColor  bool
}

func (*Command) Name() string     { return "attacks" }
func (*Command) Synopsis() string { return "Show the squares a sliding piece attacks" }
func (*Command) Usage() string {
	return `attacks -piece queen -square a1 [-occupied SQUARES|-friends SQUARES -enemies SQUARES]

Boards are hex literals (0x...) or comma separated squares.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	c.search.AddFlags(flags)
	flags.StringVar(&c.piece, "piece", "queen", "rook, bishop or queen")
	flags.StringVar(&c.square, "square", "d4", "square of the piece")
	flags.StringVar(&c.occupied, "occupied", "", "occupied squares, colour blind")
	flags.StringVar(&c.friends, "friends", "", "squares held by the piece's side")
	flags.StringVar(&c.enemies, "enemies", "", "squares held by the other side")
	flags.StringVar(&c.svgOut, "svg", "", "also write an SVG diagram to this file")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colour output")
}

// Query is a parsed attacks request.
type Query struct {
	Piece    attacks.Slider
	Square   board.Square
	Occupied board.Bitboard
	Friends  board.Bitboard
	Enemies  board.Bitboard
	// Visible selects friend/enemy semantics over raw attacks.
	Visible bool
}

// Parse validates the command's flags.
func (c *Command) Parse() (*Query, error) {
	piece, err := attacks.ParseSlider(c.piece)
	if err != nil {
		return nil, err
	}
	sq, err := board.ParseSquare(c.square)
	if err != nil {
		return nil, err
	}
	q := &Query{Piece: piece, Square: sq}
	if q.Occupied, err = board.ParseBitboard(c.occupied); err != nil {
		return nil, fmt.Errorf("occupied: %w", err)
	}
	if q.Friends, err = board.ParseBitboard(c.friends); err != nil {
		return nil, fmt.Errorf("friends: %w", err)
	}
	if q.Enemies, err = board.ParseBitboard(c.enemies); err != nil {
		return nil, fmt.Errorf("enemies: %w", err)
	}
	q.Visible = c.friends != "" || c.enemies != ""
	if q.Visible && c.occupied != "" {
		return nil, fmt.Errorf("-occupied cannot be combined with -friends or -enemies")
	}
	return q, nil
}

// Run answers q and returns the diagram marks.
func (q *Query) Run(a *attacks.Attacks) render.Marks {
	m := render.Marks{Origin: q.Square}
	if q.Visible {
		m.Attacks = a.Visible(q.Piece, q.Square, q.Friends, q.Enemies)
		m.Friends = q.Friends.Clear(q.Square)
		m.Enemies = q.Enemies
	} else {
		m.Attacks = a.Sliding(q.Piece, q.Square, q.Occupied)
		m.Enemies = q.Occupied
	}
	return m
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	env := opt.FromArgs(args)
	q, err := c.Parse()
	if err != nil {
		log.Printf("attacks: %v", err)
		return subcommands.ExitUsageError
	}

	a, err := c.search.Attacks(ctx, env)
	if err != nil {
		log.Printf("attacks: %v", err)
		return subcommands.ExitFailure
	}

	m := q.Run(a)
	term := render.NewTerminal()
	if c.noColor {
		term.DisableColor()
	}
	fmt.Print(term.Board(m))
	fmt.Println(term.Legend())
	fmt.Printf("%s %s: %d squares %s %v\n", q.Piece, q.Square, m.Attacks.BitCount(), m.Attacks.Hex(), m.Attacks.Squares())

	if c.svgOut != "" {
		f, err := os.Create(c.svgOut)
		if err != nil {
			log.Printf("attacks: %v", err)
			return subcommands.ExitFailure
		}
		defer f.Close()
		opts := render.DefaultSVGOptions()
		opts.Title = fmt.Sprintf("%s on %s", q.Piece, q.Square)
		if err := render.SVG(f, m, opts); err != nil {
			log.Printf("attacks: %v", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
