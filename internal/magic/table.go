package magic

import (
	"errors"
	"fmt"

	"github.com/hailam/chessmagic/internal/board"
)

var (
	// ErrMissingSlot means a relevant occupancy hashed to a slot that was
	// never filled. It can only come from a table built incorrectly.
	ErrMissingSlot = errors.New("magic table slot missing")
	// ErrWrongAttack means a slot holds an attack set that disagrees with
	// ray marching.
	ErrWrongAttack = errors.New("magic table slot holds wrong attack set")
)

// Entry is the perfect hash table of one square.
type Entry struct {
	Magic   uint64
	Mask    board.Bitboard
	Shift   uint8
	Attacks []board.Bitboard
}

// Attack returns the stored attack set for occupancy.
func (e *Entry) Attack(occupancy board.Bitboard) board.Bitboard {
	return e.Attacks[index(occupancy, e.Mask, e.Magic, uint(e.Shift))]
}

// Table holds the 64 entries of one piece class. A Table is never modified
// after the Builder returns it.
type Table struct {
	Class   Class
	Bits    uint
	Entries [64]Entry
}

// Attacks returns the attack set of a slider of the table's class on sq.
// The set includes the first occupied square on each ray, whatever its
// colour; callers remove their own pieces.
func (t *Table) Attacks(sq board.Square, occupancy board.Bitboard) board.Bitboard {
	return t.Entries[sq].Attack(occupancy)
}

// Magics returns the magic constant of every square.
func (t *Table) Magics() [64]uint64 {
	var magics [64]uint64
	for sq := range t.Entries {
		magics[sq] = t.Entries[sq].Magic
	}
	return magics
}

// Slots returns the total number of attack slots across all squares.
func (t *Table) Slots() int {
	n := 0
	for sq := range t.Entries {
		n += len(t.Entries[sq].Attacks)
	}
	return n
}

// Bytes returns the memory held by the attack slots.
func (t *Table) Bytes() uint64 {
	return uint64(t.Slots()) * 8
}

// Verify checks every relevant occupancy of every square against ray
// marching.
func (t *Table) Verify(rays *board.RayTable) error {
	dirs := t.Class.Directions()
	for sq := board.A1; sq <= board.H8; sq++ {
		e := &t.Entries[sq]
		occupancies, err := Combinations(e.Mask.Squares())
		if err != nil {
			return fmt.Errorf("%s %v: %w", t.Class, sq, err)
		}
		for _, occ := range occupancies {
			want := board.SlidingAttacks(sq, dirs, rays, occ)
			got := e.Attack(occ)
			// Sliders always attack at least one square, so an empty slot
			// was never written.
			if got == board.Empty {
				return fmt.Errorf("%s %v occupancy %#x: %w", t.Class, sq, uint64(occ), ErrMissingSlot)
			}
			if got != want {
				return fmt.Errorf("%s %v occupancy %#x: %w", t.Class, sq, uint64(occ), ErrWrongAttack)
			}
		}
	}
	return nil
}
