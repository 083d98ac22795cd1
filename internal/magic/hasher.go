package magic

import (
	"fmt"

	"github.com/hailam/chessmagic/internal/board"
)

// Hasher holds the relevant occupancy masks of one piece class and maps an
// occupancy to a table index for a given magic constant.
type Hasher struct {
	class    Class
	bits     uint
	shift    uint
	masks    [64]board.Bitboard
	relevant [64][]board.Square
}

// NewHasher precomputes the masks of class for every square.
func NewHasher(rays *board.RayTable, class Class, indexBits uint) (*Hasher, error) {
	if indexBits < MinIndexBits || indexBits > MaxIndexBits {
		return nil, fmt.Errorf("%w: %s index bits %d outside [%d, %d]",
			ErrInvalidConfig, class, indexBits, MinIndexBits, MaxIndexBits)
	}

	h := &Hasher{
		class: class,
		bits:  indexBits,
		shift: 64 - indexBits,
	}
	dirs := class.Directions()
	for sq := board.A1; sq <= board.H8; sq++ {
		squares := RelevantSquares(rays, sq, dirs)
		h.relevant[sq] = squares
		h.masks[sq] = board.SquaresBB(squares...)
	}
	return h, nil
}

// Class returns the piece class the masks belong to.
func (h *Hasher) Class() Class { return h.class }

// Bits returns the index width.
func (h *Hasher) Bits() uint { return h.bits }

// Mask returns the relevant occupancy mask of sq.
func (h *Hasher) Mask(sq board.Square) board.Bitboard {
	return h.masks[sq]
}

// Relevant returns the squares making up the mask of sq, ray by ray.
func (h *Hasher) Relevant(sq board.Square) []board.Square {
	return h.relevant[sq]
}

// Index hashes occupancy for sq. Squares outside the mask do not affect the
// result, and the result is always below 2^Bits().
func (h *Hasher) Index(occupancy board.Bitboard, magic uint64, sq board.Square) uint64 {
	return index(occupancy, h.masks[sq], magic, h.shift)
}

func index(occupancy, mask board.Bitboard, magic uint64, shift uint) uint64 {
	return (uint64(occupancy&mask) * magic) >> shift
}
