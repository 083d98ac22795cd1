package board

// RayTable holds, for every square and direction, the squares seen along the
// ray before the board edge, nearest first. It is built once and never
// modified, so a single table can back any number of readers.
type RayTable struct {
	rays  [64][NumDirections][]Square
	masks [64][NumDirections]Bitboard
}

// NewRayTable computes the ray for all 64 squares in all 8 directions.
func NewRayTable() *RayTable {
	t := &RayTable{}
	for sq := A1; sq <= H8; sq++ {
		for d := Direction(0); d < NumDirections; d++ {
			df, dr := d.Delta()
			var ray []Square
			var mask Bitboard
			for f, r := sq.File()+df, sq.Rank()+dr; f >= 0 && f <= 7 && r >= 0 && r <= 7; f, r = f+df, r+dr {
				s := NewSquare(f, r)
				ray = append(ray, s)
				mask |= SquareBB(s)
			}
			t.rays[sq][d] = ray
			t.masks[sq][d] = mask
		}
	}
	return t
}

// Ray returns the squares along direction d from sq, nearest first.
// The returned slice is shared and must not be modified.
func (t *RayTable) Ray(sq Square, d Direction) []Square {
	return t.rays[sq][d]
}

// Mask returns the union of the full rays from sq in the given directions.
// The origin square is never included.
func (t *RayTable) Mask(sq Square, dirs ...Direction) Bitboard {
	var mask Bitboard
	for _, d := range dirs {
		mask |= t.masks[sq][d]
	}
	return mask
}
