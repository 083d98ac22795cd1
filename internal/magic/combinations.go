package magic

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/hailam/chessmagic/internal/board"
)

// MaxRelevantSquares bounds the subset enumeration (2^16 patterns).
const MaxRelevantSquares = 16

// ErrTooManySquares is returned when a combination set would be too large.
var ErrTooManySquares = errors.New("too many relevant squares")

// RelevantSquares lists the squares along dirs whose occupancy can change the
// attack set of a slider on sq. The last square of every ray is dropped: it
// is attacked whether or not it is occupied.
func RelevantSquares(rays *board.RayTable, sq board.Square, dirs []board.Direction) []board.Square {
	var squares []board.Square
	for _, d := range dirs {
		ray := rays.Ray(sq, d)
		if len(ray) > 1 {
			squares = append(squares, ray[:len(ray)-1]...)
		}
	}
	return squares
}

// Combinations enumerates every subset of squares as a bitboard, without
// duplicates, in ascending order.
func Combinations(squares []board.Square) ([]board.Bitboard, error) {
	if len(squares) > MaxRelevantSquares {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManySquares, len(squares), MaxRelevantSquares)
	}

	n := 1 << len(squares)
	occupancies := make([]board.Bitboard, 0, n)
	for i := 0; i < n; i++ {
		var occ board.Bitboard
		for j, sq := range squares {
			if i&(1<<j) != 0 {
				occ |= board.SquareBB(sq)
			}
		}
		occupancies = append(occupancies, occ)
	}

	// Repeated input squares produce repeated patterns.
	slices.Sort(occupancies)
	return slices.Compact(occupancies), nil
}
