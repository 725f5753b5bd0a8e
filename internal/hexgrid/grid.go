package hexgrid

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidSize is returned for a grid with a non-positive dimension.
var ErrInvalidSize = errors.New("invalid grid size")

// Grid is a fixed rectangle of cells stored in a flat arena. Rows are
// staggered ("brick" layout): odd rows sit half a cell to the right.
type Grid struct {
	width   int
	height  int
	metrics *Metrics
	cells   []Cell
}

// NewGrid builds a width×height grid with every cell at elevation zero,
// painted defaultColor, and wires all neighbor links.
func NewGrid(width, height int, m *Metrics, defaultColor mgl32.Vec4) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	g := &Grid{
		width:   width,
		height:  height,
		metrics: m,
		cells:   make([]Cell, width*height),
	}

	for z, i := 0, 0; z < height; z++ {
		for x := 0; x < width; x++ {
			g.createCell(x, z, i, defaultColor)
			i++
		}
	}

	slog.Debug("hex grid built", "width", width, "height", height, "cells", len(g.cells))
	return g, nil
}

// createCell places the cell at offset (x, z) and links it to the cells
// already created to its west and in the row below.
func (g *Grid) createCell(x, z, i int, color mgl32.Vec4) {
	g.cells[i] = newCell(i, FromOffsetCoordinates(x, z), g.metrics.CellCenter(x, z), color, g.metrics)
	cell := &g.cells[i]

	if x > 0 {
		g.SetNeighbor(cell, W, &g.cells[i-1])
	}
	if z == 0 {
		return
	}

	w := g.width
	if z&1 == 0 {
		g.SetNeighbor(cell, SE, &g.cells[i-w])
		if x > 0 {
			g.SetNeighbor(cell, SW, &g.cells[i-w-1])
		}
	} else {
		g.SetNeighbor(cell, SW, &g.cells[i-w])
		if x < w-1 {
			g.SetNeighbor(cell, SE, &g.cells[i-w+1])
		}
	}
}

// SetNeighbor links cell to other in direction d and other back to cell in
// the opposite direction.
func (g *Grid) SetNeighbor(cell *Cell, d Direction, other *Cell) {
	cell.neighbors[d] = other.index
	other.neighbors[d.Opposite()] = cell.index
}

// Neighbor returns the neighbor of cell in direction d, or false at the boundary.
func (g *Grid) Neighbor(cell *Cell, d Direction) (*Cell, bool) {
	i, ok := cell.Neighbor(d)
	if !ok {
		return nil, false
	}
	return &g.cells[i], true
}

// EdgeType classifies the edge of cell in direction d. The boolean is false
// when there is no neighbor on that side.
func (g *Grid) EdgeType(cell *Cell, d Direction) (EdgeType, bool) {
	n, ok := g.Neighbor(cell, d)
	if !ok {
		return EdgeFlat, false
	}
	return cell.EdgeType(n), true
}

// Index returns the arena slot for cube coordinates, without bounds checks.
func (g *Grid) Index(c Coordinates) int {
	return c.X + c.Z*g.width + c.Z/2
}

// Contains reports whether the coordinates fall inside the grid rectangle.
func (g *Grid) Contains(c Coordinates) bool {
	x, z := c.Offset()
	return x >= 0 && x < g.width && z >= 0 && z < g.height
}

// CellAt returns the cell under a grid-local point, or false when the point
// lies outside the grid.
func (g *Grid) CellAt(p mgl32.Vec3) (*Cell, bool) {
	coords := FromPosition(p, g.metrics)
	if !g.Contains(coords) {
		return nil, false
	}
	return &g.cells[g.Index(coords)], true
}

// Cell returns the cell in arena slot i.
func (g *Grid) Cell(i int) *Cell {
	return &g.cells[i]
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	return len(g.cells)
}

// Cells returns the cell arena in creation order.
func (g *Grid) Cells() []Cell {
	return g.cells
}

// Width returns the number of cells per row.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Metrics returns the geometry the grid was built with.
func (g *Grid) Metrics() *Metrics { return g.metrics }

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, cells=%d)", g.width, g.height, len(g.cells))
}
