// Package attacks answers sliding piece attack queries from magic tables.
//
// An Attacks value is built once, explicitly, and is read-only afterwards:
// it can be shared by any number of goroutines without locking.
package attacks

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/hailam/chessmagic/internal/board"
	"github.com/hailam/chessmagic/internal/magic"
)

// Slider is a sliding piece type.
type Slider uint8

const (
	Rook Slider = iota
	Bishop
	Queen
)

// Sliders lists every slider.
var Sliders = []Slider{Rook, Bishop, Queen}

var sliderNames = [...]string{"rook", "bishop", "queen"}

func (s Slider) String() string {
	if int(s) < len(sliderNames) {
		return sliderNames[s]
	}
	return fmt.Sprintf("slider(%d)", uint8(s))
}

// Directions returns the ray directions of the slider.
func (s Slider) Directions() []board.Direction {
	switch s {
	case Rook:
		return board.OrthogonalDirections
	case Bishop:
		return board.DiagonalDirections
	default:
		return board.AllDirections
	}
}

// ParseSlider parses a slider name or its one-letter abbreviation.
func ParseSlider(s string) (Slider, error) {
	switch strings.ToLower(s) {
	case "rook", "r":
		return Rook, nil
	case "bishop", "b":
		return Bishop, nil
	case "queen", "q":
		return Queen, nil
	}
	return 0, fmt.Errorf("unknown slider %q", s)
}

// Attacks holds the ray table and one magic table per piece class.
type Attacks struct {
	rays   *board.RayTable
	tables [magic.NumClasses]*magic.Table
	stats  [magic.NumClasses]*magic.Stats
}

// New builds the ray table, then the rook and bishop magic tables.
func New(ctx context.Context, cfg magic.Config, opts ...magic.Option) (*Attacks, error) {
	rays := board.NewRayTable()
	b, err := magic.NewBuilder(rays, cfg, opts...)
	if err != nil {
		return nil, err
	}

	a := &Attacks{rays: rays}
	for _, class := range magic.Classes {
		table, stats, err := b.Build(ctx, class)
		if err != nil {
			return nil, fmt.Errorf("build %s table: %w", class, err)
		}
		a.tables[class] = table
		a.stats[class] = stats
	}
	return a, nil
}

// FromTables wraps existing tables. Both must be present and of the right
// class.
func FromTables(rays *board.RayTable, rook, bishop *magic.Table) (*Attacks, error) {
	if rook == nil || rook.Class != magic.Rook {
		return nil, fmt.Errorf("rook table missing or wrong class")
	}
	if bishop == nil || bishop.Class != magic.Bishop {
		return nil, fmt.Errorf("bishop table missing or wrong class")
	}
	a := &Attacks{rays: rays}
	a.tables[magic.Rook] = rook
	a.tables[magic.Bishop] = bishop
	return a, nil
}

// Cache stores magic constants between runs.
type Cache interface {
	LoadMagics(class magic.Class, bits uint) ([64]uint64, error)
	SaveMagics(class magic.Class, bits uint, magics [64]uint64) error
}

// Load restores tables from cached constants, searching only the classes
// whose constants are missing or no longer verify. Fresh results are written
// back to the cache.
func Load(ctx context.Context, cfg magic.Config, cache Cache, log logr.Logger) (*Attacks, error) {
	rays := board.NewRayTable()
	b, err := magic.NewBuilder(rays, cfg, magic.WithLogger(log))
	if err != nil {
		return nil, err
	}

	a := &Attacks{rays: rays}
	for _, class := range magic.Classes {
		bits := cfg.IndexBits(class)
		if magics, err := cache.LoadMagics(class, bits); err == nil {
			table, err := b.Restore(class, magics)
			if err == nil {
				a.tables[class] = table
				continue
			}
			log.Info("cached magics rejected, searching again", "class", class.String(), "error", err.Error())
		} else {
			log.V(1).Info("no cached magics", "class", class.String(), "bits", bits, "reason", err.Error())
		}

		table, stats, err := b.Build(ctx, class)
		if err != nil {
			return nil, fmt.Errorf("build %s table: %w", class, err)
		}
		a.tables[class] = table
		a.stats[class] = stats
		if err := cache.SaveMagics(class, bits, table.Magics()); err != nil {
			log.Error(err, "saving magics", "class", class.String())
		}
	}
	return a, nil
}

// Rays returns the ray table the tables were built from.
func (a *Attacks) Rays() *board.RayTable { return a.rays }

// Table returns the magic table of a class.
func (a *Attacks) Table(class magic.Class) *magic.Table { return a.tables[class] }

// Stats returns the search statistics of a class, or nil when its table was
// restored rather than searched.
func (a *Attacks) Stats(class magic.Class) *magic.Stats { return a.stats[class] }

// Rook returns rook attacks from sq. The first blocker on each ray is
// included whatever its colour.
func (a *Attacks) Rook(sq board.Square, occupied board.Bitboard) board.Bitboard {
	return a.tables[magic.Rook].Attacks(sq, occupied)
}

// Bishop returns bishop attacks from sq.
func (a *Attacks) Bishop(sq board.Square, occupied board.Bitboard) board.Bitboard {
	return a.tables[magic.Bishop].Attacks(sq, occupied)
}

// Queen returns queen attacks from sq, the union of rook and bishop attacks.
func (a *Attacks) Queen(sq board.Square, occupied board.Bitboard) board.Bitboard {
	return a.Rook(sq, occupied) | a.Bishop(sq, occupied)
}

// Sliding dispatches on the slider type.
func (a *Attacks) Sliding(s Slider, sq board.Square, occupied board.Bitboard) board.Bitboard {
	switch s {
	case Rook:
		return a.Rook(sq, occupied)
	case Bishop:
		return a.Bishop(sq, occupied)
	case Queen:
		return a.Queen(sq, occupied)
	}
	panic(fmt.Sprintf("attacks: unknown slider %d", s))
}

// Visible returns the squares the slider can move to: its attacks minus
// squares held by friends. The origin is ignored if present in friends.
func (a *Attacks) Visible(s Slider, sq board.Square, friends, enemies board.Bitboard) board.Bitboard {
	friends = friends.Clear(sq)
	return a.Sliding(s, sq, friends|enemies) &^ friends
}

// Slow computes Visible by ray marching. It is the reference the tables are
// tested against.
func (a *Attacks) Slow(s Slider, sq board.Square, friends, enemies board.Bitboard) board.Bitboard {
	return board.ComputeVisible(sq, s.Directions(), a.rays, friends, enemies)
}

// Verify checks both tables exhaustively against ray marching.
func (a *Attacks) Verify() error {
	for _, class := range magic.Classes {
		if err := a.tables[class].Verify(a.rays); err != nil {
			return err
		}
	}
	return nil
}
