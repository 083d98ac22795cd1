// Package magic finds magic multipliers for sliding piece attack lookup and
// builds the per-square perfect hash tables they index.
//
// A table maps (square, occupancy) to the attack set of a rook or a bishop in
// constant time: the occupancy is restricted to the square's relevant mask,
// multiplied by the square's magic constant and the top bits of the product
// select a slot. Constants are found by randomized search at build time.
package magic

import (
	"fmt"
	"strings"

	"github.com/hailam/chessmagic/internal/board"
)

// Class is a tabulated sliding piece class. Queens are not a class; their
// attacks are the union of both tables.
type Class uint8

const (
	Rook Class = iota
	Bishop

	NumClasses = 2
)

// Classes lists every tabulated class in table order.
var Classes = []Class{Rook, Bishop}

// Directions returns the ray directions the class moves along.
func (c Class) Directions() []board.Direction {
	switch c {
	case Rook:
		return board.OrthogonalDirections
	case Bishop:
		return board.DiagonalDirections
	}
	panic(fmt.Sprintf("magic: unknown class %d", c))
}

func (c Class) String() string {
	switch c {
	case Rook:
		return "rook"
	case Bishop:
		return "bishop"
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// ParseClass parses "rook" or "bishop" (case insensitive).
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(s) {
	case "rook", "r":
		return Rook, nil
	case "bishop", "b":
		return Bishop, nil
	}
	return 0, fmt.Errorf("unknown piece class %q", s)
}
