package mesh

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestMeshIndices(t *testing.T) {
	m := &Mesh{Triangles: []Triangle{{0, 2, 1}, {1, 2, 3}}}
	want := []uint32{0, 2, 1, 1, 2, 3}
	got := m.Indices()
	if len(got) != len(want) {
		t.Fatalf("Indices() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Indices() = %v, want %v", got, want)
		}
	}
}

func TestMeshBounds(t *testing.T) {
	var empty Mesh
	if lo, hi := empty.Bounds(); lo != (mgl32.Vec3{}) || hi != (mgl32.Vec3{}) {
		t.Errorf("empty bounds = %v %v", lo, hi)
	}

	m := &Mesh{Vertices: []mgl32.Vec3{{1, -2, 3}, {-4, 5, 0}, {2, 0, -6}}}
	lo, hi := m.Bounds()
	if lo != (mgl32.Vec3{-4, -2, -6}) || hi != (mgl32.Vec3{2, 5, 3}) {
		t.Errorf("Bounds() = %v %v", lo, hi)
	}
}

func TestMeshClone(t *testing.T) {
	m := &Mesh{
		Vertices:  []mgl32.Vec3{{1, 2, 3}},
		Colors:    []mgl32.Vec4{{1, 1, 1, 1}},
		Triangles: []Triangle{{0, 0, 0}},
	}
	c := m.Clone()
	c.Vertices[0][0] = 9
	c.Colors[0][0] = 0
	c.Triangles[0][0] = 5
	if m.Vertices[0][0] != 1 || m.Colors[0][0] != 1 || m.Triangles[0][0] != 0 {
		t.Fatal("Clone shares buffers with the original")
	}
}

func TestNoiseDisplacer(t *testing.T) {
	const strength = 3.0
	d := NewNoiseDisplacer(7, strength, DefaultNoiseScale)
	again := NewNoiseDisplacer(7, strength, DefaultNoiseScale)

	moved := 0
	for x := float32(-50); x <= 50; x += 12.5 {
		for z := float32(-50); z <= 50; z += 12.5 {
			v := mgl32.Vec3{x, 1, z}
			got := d(v)
			if got != again(v) {
				t.Fatalf("same seed displaced %v differently", v)
			}
			off := got.Sub(v)
			// Height does not feed the noise, so vertices at any y move alike.
			upper := mgl32.Vec3{x, 20, z}
			if upOff := d(upper).Sub(upper); !upOff.ApproxEqualThreshold(off, 1e-4) {
				t.Fatalf("displacement at %v depends on height: %v vs %v", v, upOff, off)
			}
			for k := 0; k < 3; k++ {
				if math.Abs(float64(off[k])) > strength+1e-4 {
					t.Fatalf("offset %v exceeds strength %v", off, strength)
				}
			}
			if off != (mgl32.Vec3{}) {
				moved++
			}
		}
	}
	if moved == 0 {
		t.Fatal("no vertex was displaced")
	}
}
