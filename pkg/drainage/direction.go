package drainage

import "fmt"

// Direction is a D8 flow code. Codes run counter-clockwise from east; Outlet
// marks the terminal cell of a network. The zero value means "no direction".
type Direction int

const (
	None      Direction = 0
	East      Direction = 1
	NorthEast Direction = 2
	North     Direction = 3
	NorthWest Direction = 4
	West      Direction = 5
	SouthWest Direction = 6
	South     Direction = 7
	SouthEast Direction = 8
	Outlet    Direction = 10
)

type offset struct{ dRow, dCol int }

// offsets is indexed by Direction. North is row-1.
var offsets = [...]offset{
	None:      {0, 0},
	East:      {0, 1},
	NorthEast: {-1, 1},
	North:     {-1, 0},
	NorthWest: {-1, -1},
	West:      {0, -1},
	SouthWest: {1, -1},
	South:     {1, 0},
	SouthEast: {1, 1},
}

// neighbours is the fixed enumeration order used whenever all eight
// neighbours of a cell are scanned.
var neighbours = [8]Direction{East, NorthEast, North, NorthWest, West, SouthWest, South, SouthEast}

// triangle is one facet of the 3×3 window: the centre, one cardinal and one
// diagonal neighbour. sigma is +1 when the diagonal lies counter-clockwise of
// the cardinal.
type triangle struct {
	cardinal, diagonal Direction
	sigma              int
}

var triangles = [8]triangle{
	{East, NorthEast, +1},
	{North, NorthEast, -1},
	{North, NorthWest, +1},
	{West, NorthWest, -1},
	{West, SouthWest, +1},
	{South, SouthWest, -1},
	{South, SouthEast, +1},
	{East, SouthEast, -1},
}

// IsFlow reports whether d points at a neighbour.
func (d Direction) IsFlow() bool { return d >= East && d <= SouthEast }

// Valid reports whether d is a flow code or the outlet code.
func (d Direction) Valid() bool { return d.IsFlow() || d == Outlet }

// Offset returns the (row, col) step for a flow direction and (0, 0) for
// anything else.
func (d Direction) Offset() (dRow, dCol int) {
	if !d.IsFlow() {
		return 0, 0
	}
	o := offsets[d]
	return o.dRow, o.dCol
}

// Opposite returns the direction pointing back along d. Non-flow codes are
// returned unchanged.
func (d Direction) Opposite() Direction {
	if !d.IsFlow() {
		return d
	}
	return Direction((int(d)-1+4)%8 + 1)
}

// IsDiagonal reports whether d is one of the four diagonal directions.
func (d Direction) IsDiagonal() bool { return d.IsFlow() && d%2 == 0 }

// Towards returns the direction of the step (dRow, dCol), or None if the step
// is not a single D8 move.
func Towards(dRow, dCol int) Direction {
	for _, d := range neighbours {
		if o := offsets[d]; o.dRow == dRow && o.dCol == dCol {
			return d
		}
	}
	return None
}

var directionNames = [...]string{
	None:      "none",
	East:      "E",
	NorthEast: "NE",
	North:     "N",
	NorthWest: "NW",
	West:      "W",
	SouthWest: "SW",
	South:     "S",
	SouthEast: "SE",
}

func (d Direction) String() string {
	switch {
	case d == Outlet:
		return "outlet"
	case d >= None && d <= SouthEast:
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}
