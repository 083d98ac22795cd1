package board

// Direction is one of the eight compass directions a ray can follow.
// The numeric order is fixed and shared by every table keyed on direction.
type Direction uint8

const (
	NorthEast Direction = iota
	NorthWest
	SouthEast
	SouthWest
	North
	South
	East
	West

	NumDirections = 8
)

// Direction groups for the sliding piece classes.
var (
	DiagonalDirections   = []Direction{NorthEast, NorthWest, SouthEast, SouthWest}
	OrthogonalDirections = []Direction{North, South, East, West}
	AllDirections        = []Direction{NorthEast, NorthWest, SouthEast, SouthWest, North, South, East, West}
)

var directionDeltas = [NumDirections][2]int{
	NorthEast: {1, 1},
	NorthWest: {-1, 1},
	SouthEast: {1, -1},
	SouthWest: {-1, -1},
	North:     {0, 1},
	South:     {0, -1},
	East:      {1, 0},
	West:      {-1, 0},
}

var directionNames = [NumDirections]string{
	"NE", "NW", "SE", "SW", "N", "S", "E", "W",
}

// Delta returns the file and rank step of one move along the direction.
func (d Direction) Delta() (df, dr int) {
	return directionDeltas[d][0], directionDeltas[d][1]
}

func (d Direction) String() string {
	if d >= NumDirections {
		return "?"
	}
	return directionNames[d]
}
