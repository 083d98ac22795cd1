package board

// SlidingAttacks ray-marches from sq along dirs. Each ray contributes every
// empty square and stops after the first occupied one, which is included
// whatever its colour.
//
// This is the slow reference used to fill and check the magic tables.
func SlidingAttacks(sq Square, dirs []Direction, rays *RayTable, occupied Bitboard) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		for _, s := range rays.Ray(sq, d) {
			attacks |= SquareBB(s)
			if occupied.IsSet(s) {
				break
			}
		}
	}
	return attacks
}

// ComputeVisible returns the squares a slider on sq can move to. Rays stop at
// the first occupied square; an enemy there is capturable and included, a
// friend is not. The origin square is ignored if present in friends.
func ComputeVisible(sq Square, dirs []Direction, rays *RayTable, friends, enemies Bitboard) Bitboard {
	friends = friends.Clear(sq)
	return SlidingAttacks(sq, dirs, rays, friends|enemies) &^ friends
}
