package mesh

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/K1ngArtes/Hexagonal-grid/internal/hexgrid"
)

// Source is the set of cells to triangulate. *hexgrid.Grid implements it.
type Source interface {
	Len() int
	Cell(i int) *hexgrid.Cell
	Neighbor(c *hexgrid.Cell, d hexgrid.Direction) (*hexgrid.Cell, bool)
}

// Displacer moves a vertex after it has been placed, e.g. to add jitter.
type Displacer func(mgl32.Vec3) mgl32.Vec3

// Option configures a Triangulator.
type Option func(*Triangulator)

// WithDisplacer applies d to every emitted vertex.
func WithDisplacer(d Displacer) Option {
	return func(t *Triangulator) { t.displace = d }
}

// Triangulator builds meshes for a fixed geometry. It keeps working buffers
// between passes to avoid reallocating; it is not safe for concurrent use.
type Triangulator struct {
	metrics  *hexgrid.Metrics
	displace Displacer

	vertices  []mgl32.Vec3
	colors    []mgl32.Vec4
	triangles []Triangle
}

// NewTriangulator returns a triangulator for cells built with m.
func NewTriangulator(m *hexgrid.Metrics, opts ...Option) *Triangulator {
	t := &Triangulator{metrics: m}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Triangulate rebuilds the whole mesh from the current cell state.
// The returned buffers belong to the caller.
func (t *Triangulator) Triangulate(src Source) *Mesh {
	t.vertices = t.vertices[:0]
	t.colors = t.colors[:0]
	t.triangles = t.triangles[:0]

	for i := 0; i < src.Len(); i++ {
		t.triangulateCell(src, src.Cell(i))
	}

	out := &Mesh{
		Vertices:  make([]mgl32.Vec3, len(t.vertices)),
		Colors:    make([]mgl32.Vec4, len(t.colors)),
		Triangles: make([]Triangle, len(t.triangles)),
	}
	copy(out.Vertices, t.vertices)
	copy(out.Colors, t.colors)
	copy(out.Triangles, t.triangles)

	slog.Debug("mesh triangulated", "cells", src.Len(), "vertices", len(out.Vertices), "triangles", len(out.Triangles))
	return out
}

func (t *Triangulator) triangulateCell(src Source, cell *hexgrid.Cell) {
	for _, d := range hexgrid.Directions {
		t.triangulateDirection(src, d, cell)
	}
}

//	  v3--v4
//	  |    |     bridge towards the neighbor
//	  v1--v2
//	   \  /      solid wedge
//	  center
func (t *Triangulator) triangulateDirection(src Source, d hexgrid.Direction, cell *hexgrid.Cell) {
	center := cell.Position()
	v1 := center.Add(t.metrics.FirstSolidCorner(d))
	v2 := center.Add(t.metrics.SecondSolidCorner(d))

	t.addTriangle(center, v1, v2)
	t.addTriangleColor(cell.Color())

	// Each edge is shared by two cells; only the NE, E and SE sides build it.
	if d <= hexgrid.SE {
		t.triangulateConnection(src, d, cell, v1, v2)
	}
}

func (t *Triangulator) triangulateConnection(src Source, d hexgrid.Direction, cell *hexgrid.Cell, v1, v2 mgl32.Vec3) {
	neighbor, ok := src.Neighbor(cell, d)
	if !ok {
		return
	}

	bridge := t.metrics.Bridge(d)
	v3 := v1.Add(bridge)
	v4 := v2.Add(bridge)
	v3[1] = neighbor.Position().Y()
	v4[1] = v3[1]

	if cell.EdgeType(neighbor) == hexgrid.EdgeSlope {
		t.triangulateEdgeTerraces(v1, v2, cell, v3, v4, neighbor)
	} else {
		t.addQuad(v1, v2, v3, v4)
		t.addQuadColor2(cell.Color(), neighbor.Color())
	}

	// Each corner is shared by three cells; only the NE and E sides fill it.
	if d > hexgrid.E {
		return
	}
	next, ok := src.Neighbor(cell, d.Next())
	if !ok {
		return
	}

	v5 := v2.Add(t.metrics.Bridge(d.Next()))
	v5[1] = next.Position().Y()

	if cell.Elevation() <= neighbor.Elevation() {
		if cell.Elevation() <= next.Elevation() {
			t.triangulateCorner(v2, cell, v4, neighbor, v5, next)
		} else {
			t.triangulateCorner(v5, next, v2, cell, v4, neighbor)
		}
	} else if neighbor.Elevation() <= next.Elevation() {
		t.triangulateCorner(v4, neighbor, v5, next, v2, cell)
	} else {
		t.triangulateCorner(v5, next, v2, cell, v4, neighbor)
	}
}

func (t *Triangulator) triangulateEdgeTerraces(
	beginLeft, beginRight mgl32.Vec3, beginCell *hexgrid.Cell,
	endLeft, endRight mgl32.Vec3, endCell *hexgrid.Cell,
) {
	m := t.metrics
	v3 := m.TerraceLerp(beginLeft, endLeft, 1)
	v4 := m.TerraceLerp(beginRight, endRight, 1)
	c2 := m.TerraceColorLerp(beginCell.Color(), endCell.Color(), 1)

	t.addQuad(beginLeft, beginRight, v3, v4)
	t.addQuadColor2(beginCell.Color(), c2)

	for i := 2; i < m.TerraceSteps; i++ {
		v1, v2, c1 := v3, v4, c2
		v3 = m.TerraceLerp(beginLeft, endLeft, i)
		v4 = m.TerraceLerp(beginRight, endRight, i)
		c2 = m.TerraceColorLerp(beginCell.Color(), endCell.Color(), i)
		t.addQuad(v1, v2, v3, v4)
		t.addQuadColor2(c1, c2)
	}

	t.addQuad(v3, v4, endLeft, endRight)
	t.addQuadColor2(c2, endCell.Color())
}

// triangulateCorner fills the gap between three cells. bottom is the lowest
// of the three; left and right follow clockwise.
func (t *Triangulator) triangulateCorner(
	bottom mgl32.Vec3, bottomCell *hexgrid.Cell,
	left mgl32.Vec3, leftCell *hexgrid.Cell,
	right mgl32.Vec3, rightCell *hexgrid.Cell,
) {
	leftEdge := bottomCell.EdgeType(leftCell)
	rightEdge := bottomCell.EdgeType(rightCell)

	switch {
	case leftEdge == hexgrid.EdgeSlope && rightEdge == hexgrid.EdgeSlope:
		t.triangulateCornerTerraces(bottom, bottomCell, left, leftCell, right, rightCell)
	case leftEdge == hexgrid.EdgeSlope && rightEdge == hexgrid.EdgeFlat:
		t.triangulateCornerTerraces(left, leftCell, right, rightCell, bottom, bottomCell)
	case leftEdge == hexgrid.EdgeFlat && rightEdge == hexgrid.EdgeSlope:
		t.triangulateCornerTerraces(right, rightCell, bottom, bottomCell, left, leftCell)
	case leftEdge == hexgrid.EdgeSlope && rightEdge == hexgrid.EdgeCliff:
		t.triangulateCornerTerracesCliff(bottom, bottomCell, left, leftCell, right, rightCell)
	default:
		// Flat corners, cliffs on both sides, and a cliff on the left with a
		// slope on the right all close with one triangle.
		t.addTriangle(bottom, left, right)
		t.addTriangleColor3(bottomCell.Color(), leftCell.Color(), rightCell.Color())
	}
}

// triangulateCornerTerraces fans terraces out from begin towards both
// other corners.
func (t *Triangulator) triangulateCornerTerraces(
	begin mgl32.Vec3, beginCell *hexgrid.Cell,
	left mgl32.Vec3, leftCell *hexgrid.Cell,
	right mgl32.Vec3, rightCell *hexgrid.Cell,
) {
	m := t.metrics
	v3 := m.TerraceLerp(begin, left, 1)
	v4 := m.TerraceLerp(begin, right, 1)
	c3 := m.TerraceColorLerp(beginCell.Color(), leftCell.Color(), 1)
	c4 := m.TerraceColorLerp(beginCell.Color(), rightCell.Color(), 1)

	t.addTriangle(begin, v3, v4)
	t.addTriangleColor3(beginCell.Color(), c3, c4)

	for i := 2; i < m.TerraceSteps; i++ {
		v1, v2, c1, c2 := v3, v4, c3, c4
		v3 = m.TerraceLerp(begin, left, i)
		v4 = m.TerraceLerp(begin, right, i)
		c3 = m.TerraceColorLerp(beginCell.Color(), leftCell.Color(), i)
		c4 = m.TerraceColorLerp(beginCell.Color(), rightCell.Color(), i)
		t.addQuad(v1, v2, v3, v4)
		t.addQuadColor4(c1, c2, c3, c4)
	}

	t.addQuad(v3, v4, left, right)
	t.addQuadColor4(c3, c4, leftCell.Color(), rightCell.Color())
}

// triangulateCornerTerracesCliff handles a slope on the left and a cliff on
// the right. The slope meets the cliff at a single boundary point; the wall
// itself belongs to the bridge of the cliff edge.
func (t *Triangulator) triangulateCornerTerracesCliff(
	begin mgl32.Vec3, beginCell *hexgrid.Cell,
	left mgl32.Vec3, leftCell *hexgrid.Cell,
	right mgl32.Vec3, rightCell *hexgrid.Cell,
) {
	b := t.metrics.CliffBoundary(beginCell.Elevation(), rightCell.Elevation())
	boundary := hexgrid.Lerp(begin, right, b)
	boundaryColor := hexgrid.LerpColor(beginCell.Color(), rightCell.Color(), b)

	t.addTriangle(begin, left, boundary)
	t.addTriangleColor3(beginCell.Color(), leftCell.Color(), boundaryColor)
}

func (t *Triangulator) vertex(v mgl32.Vec3) mgl32.Vec3 {
	if t.displace != nil {
		return t.displace(v)
	}
	return v
}

func (t *Triangulator) addTriangle(v1, v2, v3 mgl32.Vec3) {
	base := len(t.vertices)
	t.vertices = append(t.vertices, t.vertex(v1), t.vertex(v2), t.vertex(v3))
	t.triangles = append(t.triangles, Triangle{base, base + 1, base + 2})
}

// addQuad adds v1 v2 (near edge) and v3 v4 (far edge) as two triangles.
func (t *Triangulator) addQuad(v1, v2, v3, v4 mgl32.Vec3) {
	base := len(t.vertices)
	t.vertices = append(t.vertices, t.vertex(v1), t.vertex(v2), t.vertex(v3), t.vertex(v4))
	t.triangles = append(t.triangles,
		Triangle{base, base + 2, base + 1},
		Triangle{base + 1, base + 2, base + 3},
	)
}

func (t *Triangulator) addTriangleColor(c mgl32.Vec4) {
	t.colors = append(t.colors, c, c, c)
}

func (t *Triangulator) addTriangleColor3(c1, c2, c3 mgl32.Vec4) {
	t.colors = append(t.colors, c1, c2, c3)
}

// addQuadColor2 paints the near edge c1 and the far edge c2.
func (t *Triangulator) addQuadColor2(c1, c2 mgl32.Vec4) {
	t.colors = append(t.colors, c1, c1, c2, c2)
}

func (t *Triangulator) addQuadColor4(c1, c2, c3, c4 mgl32.Vec4) {
	t.colors = append(t.colors, c1, c2, c3, c4)
}
