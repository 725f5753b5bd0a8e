package hexgrid

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Coordinates is a cube coordinate on the hex grid.
// Only X and Z are stored; Y is derived so that X + Y + Z == 0 always holds.
type Coordinates struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// directionOffsets are the cube (X, Z) steps for each Direction.
var directionOffsets = [6]Coordinates{
	NE: {X: 0, Z: 1},
	E:  {X: 1, Z: 0},
	SE: {X: 1, Z: -1},
	SW: {X: 0, Z: -1},
	W:  {X: -1, Z: 0},
	NW: {X: -1, Z: 1},
}

// NewCoordinates builds a cube coordinate from its stored components.
func NewCoordinates(x, z int) Coordinates {
	return Coordinates{X: x, Z: z}
}

// Y returns the derived third cube component.
func (c Coordinates) Y() int {
	return -c.X - c.Z
}

// FromOffsetCoordinates converts a column/row pair of the staggered grid.
// Each row is shifted half a cell, so X loses one unit every two rows.
func FromOffsetCoordinates(offsetX, offsetZ int) Coordinates {
	return Coordinates{X: offsetX - offsetZ/2, Z: offsetZ}
}

// Offset converts back to the column/row pair of the staggered grid.
func (c Coordinates) Offset() (x, z int) {
	return c.X + c.Z/2, c.Z
}

// FromPosition maps a point in grid-local space to the coordinates of the
// cell containing it. Rounding is half-to-even; when the three rounded
// components do not sum to zero, the component with the largest rounding
// error is rebuilt from the other two.
func FromPosition(p mgl32.Vec3, m *Metrics) Coordinates {
	x := float64(p.X()) / (float64(m.InnerRadius) * 2)
	y := -x

	// Every row up shifts the cube plane by half a step.
	offset := float64(p.Z()) / (float64(m.OuterRadius) * 3)
	x -= offset
	y -= offset

	ix := int(math.RoundToEven(x))
	iy := int(math.RoundToEven(y))
	iz := int(math.RoundToEven(-x - y))

	if ix+iy+iz != 0 {
		dx := math.Abs(x - float64(ix))
		dy := math.Abs(y - float64(iy))
		dz := math.Abs(-x - y - float64(iz))

		if dx > dy && dx > dz {
			ix = -iy - iz
		} else if dz > dy {
			iz = -ix - iy
		}
		// Otherwise Y absorbs the error; it is derived from X and Z anyway.
	}

	return Coordinates{X: ix, Z: iz}
}

// Neighbor returns the coordinates one step away in direction d.
func (c Coordinates) Neighbor(d Direction) Coordinates {
	o := directionOffsets[d]
	return Coordinates{X: c.X + o.X, Z: c.Z + o.Z}
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b Coordinates) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y() - b.Y())
	dz := abs(a.Z - b.Z)
	// Max of the three absolute differences in cube coordinates.
	d := dx
	if dy > d {
		d = dy
	}
	if dz > d {
		d = dz
	}
	return d
}

// String prints the coordinates as (x, y, z).
func (c Coordinates) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y(), c.Z)
}

// Label prints one component per line, as used for cell captions.
func (c Coordinates) Label() string {
	return fmt.Sprintf("%d\n%d\n%d", c.X, c.Y(), c.Z)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
