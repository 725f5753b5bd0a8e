// Package hexgrid provides the hex cell grid: directions, cube coordinates,
// geometry metrics, cells and the rectangular grid that wires their adjacency.
// Cells are laid out pointy-top in the XZ plane with Y as height.
package hexgrid

// Direction names one of the six edges of a cell, clockwise from the top-right.
type Direction uint8

const (
	NE Direction = iota
	E
	SE
	SW
	W
	NW
)

// Directions lists all directions in canonical (clockwise) order.
var Directions = [6]Direction{NE, E, SE, SW, W, NW}

// Opposite returns the direction rotated by three steps.
func (d Direction) Opposite() Direction {
	if d < 3 {
		return d + 3
	}
	return d - 3
}

// Previous returns the anticlockwise neighbor direction.
func (d Direction) Previous() Direction {
	if d == NE {
		return NW
	}
	return d - 1
}

// Next returns the clockwise neighbor direction.
func (d Direction) Next() Direction {
	if d == NW {
		return NE
	}
	return d + 1
}

// String returns the compass abbreviation.
func (d Direction) String() string {
	switch d {
	case NE:
		return "NE"
	case E:
		return "E"
	case SE:
		return "SE"
	case SW:
		return "SW"
	case W:
		return "W"
	case NW:
		return "NW"
	default:
		return "Unknown"
	}
}
