// Package mesh turns a grid of hex cells into renderable geometry:
// parallel vertex, color and triangle buffers.
package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Triangle holds three indices into Mesh.Vertices.
type Triangle [3]int

// Mesh is the output of one triangulation pass. Vertices and Colors always
// have the same length.
type Mesh struct {
	Vertices  []mgl32.Vec3 `json:"vertices"`
	Colors    []mgl32.Vec4 `json:"colors"`
	Triangles []Triangle   `json:"triangles"`
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// Indices flattens the triangle list, as most GPU index buffers expect.
func (m *Mesh) Indices() []uint32 {
	out := make([]uint32, 0, len(m.Triangles)*3)
	for _, t := range m.Triangles {
		out = append(out, uint32(t[0]), uint32(t[1]), uint32(t[2]))
	}
	return out
}

// Bounds returns the axis-aligned box around all vertices. An empty mesh
// returns two zero vectors.
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return lo, hi
	}
	inf := float32(math.Inf(1))
	lo = mgl32.Vec3{inf, inf, inf}
	hi = mgl32.Vec3{-inf, -inf, -inf}
	for _, v := range m.Vertices {
		for i := 0; i < 3; i++ {
			if v[i] < lo[i] {
				lo[i] = v[i]
			}
			if v[i] > hi[i] {
				hi[i] = v[i]
			}
		}
	}
	return lo, hi
}

// Clone returns a deep copy so the caller can keep it past the next pass.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices:  make([]mgl32.Vec3, len(m.Vertices)),
		Colors:    make([]mgl32.Vec4, len(m.Colors)),
		Triangles: make([]Triangle, len(m.Triangles)),
	}
	copy(c.Vertices, m.Vertices)
	copy(c.Colors, m.Colors)
	copy(c.Triangles, m.Triangles)
	return c
}
