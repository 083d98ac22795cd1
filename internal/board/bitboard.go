package board

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Bitboard represents a 64-bit board where each bit corresponds to a square.
// Bit 0 = A1, Bit 7 = H1, Bit 56 = A8, Bit 63 = H8 (Little-Endian Rank-File Mapping).
//
// Bitboard is a value type: every operation returns a new board and leaves the
// receiver untouched, so boards can be shared freely between goroutines.
type Bitboard uint64

// File masks
const (
	FileA Bitboard = 0x0101010101010101
	FileB Bitboard = 0x0202020202020202
	FileC Bitboard = 0x0404040404040404
	FileD Bitboard = 0x0808080808080808
	FileE Bitboard = 0x1010101010101010
	FileF Bitboard = 0x2020202020202020
	FileG Bitboard = 0x4040404040404040
	FileH Bitboard = 0x8080808080808080
)

// Rank masks
const (
	Rank1 Bitboard = 0x00000000000000FF
	Rank2 Bitboard = 0x000000000000FF00
	Rank3 Bitboard = 0x0000000000FF0000
	Rank4 Bitboard = 0x00000000FF000000
	Rank5 Bitboard = 0x000000FF00000000
	Rank6 Bitboard = 0x0000FF0000000000
	Rank7 Bitboard = 0x00FF000000000000
	Rank8 Bitboard = 0xFF00000000000000
)

// Special masks
const (
	Empty    Bitboard = 0
	Universe Bitboard = 0xFFFFFFFFFFFFFFFF
)

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

// SquaresBB returns a bitboard with every given square set.
func SquaresBB(squares ...Square) Bitboard {
	var b Bitboard
	for _, sq := range squares {
		b |= SquareBB(sq)
	}
	return b
}

// And returns the intersection of two boards.
func (b Bitboard) And(o Bitboard) Bitboard {
	return b & o
}

// Or returns the union of two boards.
func (b Bitboard) Or(o Bitboard) Bitboard {
	return b | o
}

// Xor returns the symmetric difference of two boards.
func (b Bitboard) Xor(o Bitboard) Bitboard {
	return b ^ o
}

// Not returns the complement of the board.
func (b Bitboard) Not() Bitboard {
	return ^b
}

// ShiftLeft shifts toward higher squares. Bits pushed past H8 are dropped.
func (b Bitboard) ShiftLeft(n uint) Bitboard {
	return b << n
}

// ShiftRight shifts toward lower squares. Bits pushed past A1 are dropped.
func (b Bitboard) ShiftRight(n uint) Bitboard {
	return b >> n
}

// Set sets a bit at the given square.
func (b Bitboard) Set(sq Square) Bitboard {
	return b | (1 << sq)
}

// Clear clears a bit at the given square.
func (b Bitboard) Clear(sq Square) Bitboard {
	return b &^ (1 << sq)
}

// IsSet returns true if the bit at the given square is set.
func (b Bitboard) IsSet(sq Square) bool {
	return b&(1<<sq) != 0
}

// BitCount returns the number of set bits (population count).
func (b Bitboard) BitCount() int {
	return bits.OnesCount64(uint64(b))
}

// IsPresent returns true if any bit is set.
func (b Bitboard) IsPresent() bool {
	return b != 0
}

// LastBit isolates the least significant set bit (b & -b).
// The empty board yields the empty board.
func (b Bitboard) LastBit() Bitboard {
	return b & -b
}

// TrailingZeros returns the index of the lowest set bit.
// The empty board returns 64, which is a sentinel and not a square; callers
// must handle the empty case before converting the result to a Square.
func (b Bitboard) TrailingZeros() int {
	return bits.TrailingZeros64(uint64(b))
}

// LeadingZeros returns the number of zero bits above the highest set bit
// (64 for the empty board).
func (b Bitboard) LeadingZeros() int {
	return bits.LeadingZeros64(uint64(b))
}

// LSB returns the least significant bit (lowest square index).
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB removes and returns the least significant bit.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1 // Clear the LSB
	return sq
}

// Squares returns a slice of all squares that are set.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.BitCount())
	for b != 0 {
		squares = append(squares, b.PopLSB())
	}
	return squares
}

const gridRule = "+---+---+---+---+---+---+---+---+"

// String renders the board as an 8x8 grid, rank 8 on top and file a on the
// left, one cell per square holding 1 or 0.
func (b Bitboard) String() string {
	var sb strings.Builder
	sb.WriteString(gridRule)
	sb.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			if b.IsSet(NewSquare(file, rank)) {
				sb.WriteString("| 1 ")
			} else {
				sb.WriteString("| 0 ")
			}
		}
		sb.WriteString("|\n")
		sb.WriteString(gridRule)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Hex returns the board as a 0x-prefixed, zero-padded hex literal.
func (b Bitboard) Hex() string {
	return fmt.Sprintf("%#016x", uint64(b))
}

// ParseBitboard accepts a hex literal with a 0x prefix or a list of squares
// as taken by ParseSquares. The empty string is the empty board.
func ParseBitboard(s string) (Bitboard, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return Empty, fmt.Errorf("parse bitboard %q: %w", s, err)
		}
		return Bitboard(v), nil
	}
	squares, err := ParseSquares(s)
	if err != nil {
		return Empty, err
	}
	return SquaresBB(squares...), nil
}
