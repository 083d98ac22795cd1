package board

import (
	"errors"
	"strings"
	"testing"
)

func TestBitboardOps(t *testing.T) {
	a := Bitboard(0b1100)
	b := Bitboard(0b1010)

	tests := []struct {
		name string
		got  Bitboard
		want Bitboard
	}{
		{"and", a.And(b), 0b1000},
		{"or", a.Or(b), 0b1110},
		{"xor", a.Xor(b), 0b0110},
		{"not", Empty.Not(), Universe},
		{"shift left", a.ShiftLeft(2), 0b110000},
		{"shift right", a.ShiftRight(2), 0b11},
		{"shift left past H8", SquareBB(H8).ShiftLeft(1), Empty},
		{"shift right past A1", SquareBB(A1).ShiftRight(1), Empty},
		{"last bit", a.LastBit(), 0b100},
		{"last bit of empty", Empty.LastBit(), Empty},
		{"last bit of H8", SquareBB(H8).LastBit(), SquareBB(H8)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %#x, want %#x", uint64(tc.got), uint64(tc.want))
			}
		})
	}

	// Operations never mutate the receiver.
	if a != 0b1100 {
		t.Errorf("receiver modified: %#x", uint64(a))
	}
}

func TestBitboardCounts(t *testing.T) {
	if got := Bitboard(8).TrailingZeros(); got != 3 {
		t.Errorf("TrailingZeros(8) = %d, want 3", got)
	}
	if got := Empty.TrailingZeros(); got != 64 {
		t.Errorf("TrailingZeros(empty) = %d, want 64", got)
	}
	if got := SquareBB(H8).LeadingZeros(); got != 0 {
		t.Errorf("LeadingZeros(h8) = %d, want 0", got)
	}
	if got := Empty.LeadingZeros(); got != 64 {
		t.Errorf("LeadingZeros(empty) = %d, want 64", got)
	}
	if got := (FileA | Rank1).BitCount(); got != 15 {
		t.Errorf("BitCount(fileA|rank1) = %d, want 15", got)
	}
	if Empty.IsPresent() {
		t.Error("empty board reported present")
	}
	if !SquareBB(D4).IsPresent() {
		t.Error("d4 board reported absent")
	}
}

func TestSquaresBB(t *testing.T) {
	b := SquaresBB(A1, H8)
	if uint64(b) != 1|1<<63 {
		t.Errorf("SquaresBB(a1, h8) = %#x", uint64(b))
	}

	got := SquaresBB(C3, A1, E5).Squares()
	want := []Square{A1, C3, E5}
	if len(got) != len(want) {
		t.Fatalf("Squares() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Squares()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBitboardString(t *testing.T) {
	b := SquaresBB(A1, B2, C3, D4, E5, F6, G7, H8)
	expected := `
+---+---+---+---+---+---+---+---+
| 0 | 0 | 0 | 0 | 0 | 0 | 0 | 1 |
+---+---+---+---+---+---+---+---+
| 0 | 0 | 0 | 0 | 0 | 0 | 1 | 0 |
+---+---+---+---+---+---+---+---+
| 0 | 0 | 0 | 0 | 0 | 1 | 0 | 0 |
+---+---+---+---+---+---+---+---+
| 0 | 0 | 0 | 0 | 1 | 0 | 0 | 0 |
+---+---+---+---+---+---+---+---+
| 0 | 0 | 0 | 1 | 0 | 0 | 0 | 0 |
+---+---+---+---+---+---+---+---+
| 0 | 0 | 1 | 0 | 0 | 0 | 0 | 0 |
+---+---+---+---+---+---+---+---+
| 0 | 1 | 0 | 0 | 0 | 0 | 0 | 0 |
+---+---+---+---+---+---+---+---+
| 1 | 0 | 0 | 0 | 0 | 0 | 0 | 0 |
+---+---+---+---+---+---+---+---+
`
	if got := b.String(); strings.TrimSpace(got) != strings.TrimSpace(expected) {
		t.Errorf("String() =\n%s\nwant\n%s", got, expected)
	}
}

func TestParseSquare(t *testing.T) {
	tests := []struct {
		in   string
		want Square
	}{
		{"a1", A1},
		{"h8", H8},
		{"E4", E4},
		{"g2", G2},
	}
	for _, tc := range tests {
		got, err := ParseSquare(tc.in)
		if err != nil {
			t.Errorf("ParseSquare(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseSquare(%q) = %v, want %v", tc.in, got, tc.want)
		}
		if got.String() != strings.ToLower(tc.in) {
			t.Errorf("%v.String() = %q", got, got.String())
		}
	}

	for _, bad := range []string{"", "i1", "a9", "a0", "e44"} {
		if _, err := ParseSquare(bad); !errors.Is(err, ErrInvalidSquare) {
			t.Errorf("ParseSquare(%q) error = %v, want ErrInvalidSquare", bad, err)
		}
	}
}

func TestSquareValidate(t *testing.T) {
	if err := H8.Validate(); err != nil {
		t.Errorf("h8 invalid: %v", err)
	}
	if err := NoSquare.Validate(); !errors.Is(err, ErrInvalidSquare) {
		t.Errorf("NoSquare.Validate() = %v, want ErrInvalidSquare", err)
	}
	if _, err := SquareFromIndex(64); !errors.Is(err, ErrInvalidSquare) {
		t.Errorf("SquareFromIndex(64) error = %v", err)
	}
	if _, err := SquareFromIndex(-1); !errors.Is(err, ErrInvalidSquare) {
		t.Errorf("SquareFromIndex(-1) error = %v", err)
	}
	if sq, err := SquareFromIndex(27); err != nil || sq != D4 {
		t.Errorf("SquareFromIndex(27) = %v, %v", sq, err)
	}
}

func TestParseSquares(t *testing.T) {
	got, err := ParseSquares("a1, b3,c3 d4")
	if err != nil {
		t.Fatalf("ParseSquares: %v", err)
	}
	if SquaresBB(got...) != SquaresBB(A1, B3, C3, D4) {
		t.Errorf("ParseSquares = %v", got)
	}
	if _, err := ParseSquares("a1,z9"); err == nil {
		t.Error("expected error for z9")
	}
}

func TestParseBitboard(t *testing.T) {
	tests := []struct {
		in   string
		want Bitboard
		ok   bool
	}{
		{"", Empty, true},
		{"0x0", Empty, true},
		{"0x8000000000000001", SquaresBB(A1, H8), true},
		{"0XFF", Rank1, true},
		{"e4,d5", SquaresBB(E4, D5), true},
		{"0xZZ", Empty, false},
		{"0x1ffffffffffffffff", Empty, false},
		{"e9", Empty, false},
	}
	for _, tc := range tests {
		got, err := ParseBitboard(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseBitboard(%q) = %v, %v, want %v", tc.in, got.Squares(), err, tc.want.Squares())
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseBitboard(%q) succeeded", tc.in)
		}
	}

	if got := SquaresBB(A1, H8).Hex(); got != "0x8000000000000001" {
		t.Errorf("Hex() = %s", got)
	}
	if got := SquareBB(B1).Hex(); got != "0x0000000000000002" {
		t.Errorf("Hex() = %s", got)
	}
}
