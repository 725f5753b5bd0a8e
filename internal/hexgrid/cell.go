package hexgrid

import "github.com/go-gl/mathgl/mgl32"

// noNeighbor marks a grid boundary in a cell's neighbor table.
const noNeighbor = -1

// Cell is a single hexagon of the grid. Neighbor links are indices into the
// owning Grid's cell arena, never pointers.
type Cell struct {
	index       int
	coordinates Coordinates
	color       mgl32.Vec4
	elevation   int
	position    mgl32.Vec3
	neighbors   [6]int
	metrics     *Metrics
}

func newCell(index int, coords Coordinates, position mgl32.Vec3, color mgl32.Vec4, m *Metrics) Cell {
	return Cell{
		index:       index,
		coordinates: coords,
		color:       color,
		position:    position,
		neighbors:   [6]int{noNeighbor, noNeighbor, noNeighbor, noNeighbor, noNeighbor, noNeighbor},
		metrics:     m,
	}
}

// Index returns the cell's slot in the grid arena.
func (c *Cell) Index() int { return c.index }

// Coordinates returns the cell's cube coordinates.
func (c *Cell) Coordinates() Coordinates { return c.coordinates }

// Color returns the RGBA color the cell is painted with.
func (c *Cell) Color() mgl32.Vec4 { return c.color }

// SetColor paints the cell.
func (c *Cell) SetColor(color mgl32.Vec4) { c.color = color }

// Elevation returns the cell's elevation in steps.
func (c *Cell) Elevation() int { return c.elevation }

// SetElevation changes the elevation and moves the cell center to match.
// Negative values are accepted as is.
func (c *Cell) SetElevation(elevation int) {
	c.elevation = elevation
	c.position[1] = c.metrics.Height(elevation)
}

// Position returns the grid-local center of the cell, including its height.
func (c *Cell) Position() mgl32.Vec3 { return c.position }

// Neighbor returns the arena index of the neighbor in direction d.
// The boolean is false at the grid boundary.
func (c *Cell) Neighbor(d Direction) (int, bool) {
	i := c.neighbors[d]
	return i, i != noNeighbor
}

// EdgeType classifies the transition from this cell to other.
func (c *Cell) EdgeType(other *Cell) EdgeType {
	return c.metrics.EdgeType(c.elevation, other.elevation)
}
