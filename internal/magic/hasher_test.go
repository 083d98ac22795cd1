package magic

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/hailam/chessmagic/internal/board"
)

func TestMaskSizes(t *testing.T) {
	rays := board.NewRayTable()
	rook, err := NewHasher(rays, Rook, 12)
	if err != nil {
		t.Fatal(err)
	}
	bishop, err := NewHasher(rays, Bishop, 9)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		sq     board.Square
		rook   int
		bishop int
	}{
		{board.A1, 12, 6},
		{board.H8, 12, 6},
		{board.A4, 11, 5},
		{board.D1, 11, 5},
		{board.D4, 10, 9},
		{board.E5, 10, 9},
		{board.B2, 10, 5},
	}
	for _, tc := range tests {
		if got := rook.Mask(tc.sq).BitCount(); got != tc.rook {
			t.Errorf("rook mask %v has %d bits, want %d", tc.sq, got, tc.rook)
		}
		if got := bishop.Mask(tc.sq).BitCount(); got != tc.bishop {
			t.Errorf("bishop mask %v has %d bits, want %d", tc.sq, got, tc.bishop)
		}
	}

	if bishop.Mask(board.A1).BitCount() >= bishop.Mask(board.D4).BitCount() {
		t.Error("corner bishop mask not smaller than centre")
	}

	for sq := board.A1; sq <= board.H8; sq++ {
		for _, h := range []*Hasher{rook, bishop} {
			mask := h.Mask(sq)
			if mask.IsSet(sq) {
				t.Errorf("%s mask %v contains origin", h.Class(), sq)
			}

			// The mask is the class rays minus each ray's last square.
			var want board.Bitboard
			for _, d := range h.Class().Directions() {
				ray := rays.Ray(sq, d)
				if len(ray) > 0 {
					want |= rays.Mask(sq, d) &^ board.SquareBB(ray[len(ray)-1])
				}
			}
			if mask != want {
				t.Errorf("%s mask %v = %v, want %v", h.Class(), sq, mask.Squares(), want.Squares())
			}
		}
		if rook.Mask(sq).BitCount() <= bishop.Mask(sq).BitCount() {
			t.Errorf("rook mask %v not larger than bishop mask", sq)
		}
	}
}

func TestHasherIndex(t *testing.T) {
	rays := board.NewRayTable()
	rng := rand.New(rand.NewPCG(7, 11))

	for _, bits := range []uint{1, 6, 9, 12, 20} {
		h, err := NewHasher(rays, Rook, bits)
		if err != nil {
			t.Fatalf("NewHasher(%d): %v", bits, err)
		}
		for i := 0; i < 1000; i++ {
			sq := board.Square(rng.IntN(64))
			occ := board.Bitboard(rng.Uint64())
			magic := rng.Uint64() | 1

			idx := h.Index(occ, magic, sq)
			if idx >= 1<<bits {
				t.Fatalf("Index = %d, exceeds %d bits", idx, bits)
			}
			if again := h.Index(occ, magic, sq); again != idx {
				t.Fatalf("Index not stable: %d then %d", idx, again)
			}
			// Squares outside the mask never change the index.
			noise := board.Bitboard(rng.Uint64()) &^ h.Mask(sq)
			if got := h.Index(occ|noise, magic, sq); got != h.Index(occ&h.Mask(sq), magic, sq) {
				t.Fatalf("irrelevant occupancy changed index for %v", sq)
			}
		}
	}
}

func TestNewHasherRejectsBits(t *testing.T) {
	rays := board.NewRayTable()
	for _, bits := range []uint{0, MaxIndexBits + 1} {
		if _, err := NewHasher(rays, Bishop, bits); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("NewHasher(%d bits) error = %v, want ErrInvalidConfig", bits, err)
		}
	}
}
