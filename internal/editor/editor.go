// Package editor applies paint and elevation edits to a hex grid and keeps
// the triangulated mesh in step with them.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/K1ngArtes/Hexagonal-grid/internal/hexgrid"
	"github.com/K1ngArtes/Hexagonal-grid/internal/mesh"
)

var (
	// ErrOutsideGrid is returned when an edit targets a point with no cell.
	ErrOutsideGrid = errors.New("point is outside the grid")
	// ErrUnknownColor is returned when selecting a palette slot that does not exist.
	ErrUnknownColor = errors.New("unknown palette color")
)

// Editor owns a grid and its current mesh. Edits and re-triangulation run
// under one lock, so readers only ever see a complete mesh.
type Editor struct {
	mu sync.Mutex

	grid    *hexgrid.Grid
	tri     *mesh.Triangulator
	palette []mgl32.Vec4

	activeColor     mgl32.Vec4
	activeElevation int

	current *mesh.Mesh
	version uint64
}

// New returns an editor for g and triangulates the initial mesh.
// The first palette entry is selected; an empty palette falls back to white.
func New(g *hexgrid.Grid, tri *mesh.Triangulator, palette []mgl32.Vec4) *Editor {
	if len(palette) == 0 {
		palette = []mgl32.Vec4{{1, 1, 1, 1}}
	}
	e := &Editor{
		grid:        g,
		tri:         tri,
		palette:     palette,
		activeColor: palette[0],
	}
	e.refresh()
	return e
}

// SelectColor makes palette entry i the paint for subsequent edits.
func (e *Editor) SelectColor(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if i < 0 || i >= len(e.palette) {
		return fmt.Errorf("%w: %d (palette has %d)", ErrUnknownColor, i, len(e.palette))
	}
	e.activeColor = e.palette[i]
	return nil
}

// SetElevation sets the elevation applied by subsequent edits.
func (e *Editor) SetElevation(elevation int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	slog.Debug("active elevation changed", "from", e.activeElevation, "to", elevation)
	e.activeElevation = elevation
}

// Active returns the current paint and elevation.
func (e *Editor) Active() (mgl32.Vec4, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeColor, e.activeElevation
}

// EditCell paints the cell and sets its elevation, then rebuilds the mesh.
func (e *Editor) EditCell(cell *hexgrid.Cell) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.apply(cell)
}

// EditAt edits the cell under a grid-local point with the active settings
// and returns its new state.
func (e *Editor) EditAt(p mgl32.Vec3) (CellInfo, error) {
	return e.Paint(p, Brush{})
}

// Brush optionally overrides the active color slot and elevation.
type Brush struct {
	ColorIndex *int
	Elevation  *int
}

// Paint edits the cell under p with b applied over the active settings, all
// under one lock so concurrent callers cannot interleave. The brush becomes
// the active setting only when the edit succeeds.
func (e *Editor) Paint(p mgl32.Vec3, b Brush) (CellInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	color, elevation := e.activeColor, e.activeElevation
	if b.ColorIndex != nil {
		i := *b.ColorIndex
		if i < 0 || i >= len(e.palette) {
			return CellInfo{}, fmt.Errorf("%w: %d (palette has %d)", ErrUnknownColor, i, len(e.palette))
		}
		color = e.palette[i]
	}
	if b.Elevation != nil {
		elevation = *b.Elevation
	}

	cell, ok := e.grid.CellAt(p)
	if !ok {
		return CellInfo{}, fmt.Errorf("%w: %v", ErrOutsideGrid, p)
	}
	e.activeColor, e.activeElevation = color, elevation
	e.apply(cell)
	return infoOf(cell), nil
}

// CellAt looks up the cell under a grid-local point.
func (e *Editor) CellAt(p mgl32.Vec3) (CellInfo, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cell, ok := e.grid.CellAt(p)
	if !ok {
		return CellInfo{}, false
	}
	return infoOf(cell), true
}

// Refresh rebuilds the mesh from the current cell state.
func (e *Editor) Refresh() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refresh()
}

// Mesh returns the latest mesh. Treat it as read-only; edits publish a new one.
func (e *Editor) Mesh() *mesh.Mesh {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Snapshot returns the latest mesh together with the pass that built it.
func (e *Editor) Snapshot() (*mesh.Mesh, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current, e.version
}

// Version counts completed triangulation passes.
func (e *Editor) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// Grid returns the edited grid. Mutating it directly bypasses the lock;
// call Refresh afterwards.
func (e *Editor) Grid() *hexgrid.Grid {
	return e.grid
}

func (e *Editor) apply(cell *hexgrid.Cell) {
	cell.SetColor(e.activeColor)
	cell.SetElevation(e.activeElevation)
	slog.Info("cell edited",
		"coords", cell.Coordinates().String(),
		"elevation", e.activeElevation,
	)
	e.refresh()
}

func (e *Editor) refresh() {
	e.current = e.tri.Triangulate(e.grid)
	e.version++
}

// CellInfo is a snapshot of one cell's editable state.
type CellInfo struct {
	Index       int                 `json:"index"`
	Coordinates hexgrid.Coordinates `json:"coordinates"`
	Cube        string              `json:"cube"`
	Elevation   int                 `json:"elevation"`
	Color       mgl32.Vec4          `json:"color"`
	Position    mgl32.Vec3          `json:"position"`
}

func infoOf(c *hexgrid.Cell) CellInfo {
	return CellInfo{
		Index:       c.Index(),
		Coordinates: c.Coordinates(),
		Cube:        c.Coordinates().String(),
		Elevation:   c.Elevation(),
		Color:       c.Color(),
		Position:    c.Position(),
	}
}
