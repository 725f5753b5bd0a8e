package editor

import (
	"errors"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/K1ngArtes/Hexagonal-grid/internal/hexgrid"
	"github.com/K1ngArtes/Hexagonal-grid/internal/mesh"
)

var (
	white  = mgl32.Vec4{1, 1, 1, 1}
	yellow = mgl32.Vec4{1, 1, 0, 1}
	blue   = mgl32.Vec4{0, 0, 1, 1}
)

func newEditor(t *testing.T) *Editor {
	t.Helper()
	m := hexgrid.DefaultMetrics()
	g, err := hexgrid.NewGrid(3, 3, m, white)
	if err != nil {
		t.Fatal(err)
	}
	return New(g, mesh.NewTriangulator(m), []mgl32.Vec4{yellow, blue})
}

func intPtr(v int) *int { return &v }

func TestNewTriangulatesImmediately(t *testing.T) {
	e := newEditor(t)
	if e.Version() != 1 {
		t.Errorf("Version() = %d, want 1", e.Version())
	}
	if e.Mesh() == nil || e.Mesh().TriangleCount() == 0 {
		t.Fatal("no initial mesh")
	}
	color, elevation := e.Active()
	if color != yellow || elevation != 0 {
		t.Errorf("Active() = %v, %d; want first palette entry at 0", color, elevation)
	}
}

func TestNewEmptyPaletteFallsBackToWhite(t *testing.T) {
	m := hexgrid.DefaultMetrics()
	g, _ := hexgrid.NewGrid(1, 1, m, blue)
	e := New(g, mesh.NewTriangulator(m), nil)
	if c, _ := e.Active(); c != white {
		t.Errorf("active color = %v, want white", c)
	}
}

func TestEditAt(t *testing.T) {
	e := newEditor(t)
	if err := e.SelectColor(1); err != nil {
		t.Fatal(err)
	}
	e.SetElevation(1)

	target := e.Grid().Cell(4)
	before := e.Mesh()
	info, err := e.EditAt(target.Position())
	if err != nil {
		t.Fatalf("EditAt: %v", err)
	}

	if info.Index != 4 || info.Elevation != 1 || info.Color != blue {
		t.Errorf("EditAt returned %+v", info)
	}
	if info.Position.Y() != 5 {
		t.Errorf("edited cell at y=%v, want 5", info.Position.Y())
	}
	if info.Cube != target.Coordinates().String() {
		t.Errorf("Cube = %q", info.Cube)
	}
	if e.Version() != 2 {
		t.Errorf("Version() = %d, want 2", e.Version())
	}
	if e.Mesh() == before || e.Mesh().TriangleCount() <= before.TriangleCount() {
		t.Errorf("mesh not rebuilt with terraces: %d -> %d triangles", before.TriangleCount(), e.Mesh().TriangleCount())
	}
}

func TestEditAtOutsideGrid(t *testing.T) {
	e := newEditor(t)
	_, err := e.EditAt(mgl32.Vec3{-100, 0, -100})
	if !errors.Is(err, ErrOutsideGrid) {
		t.Fatalf("error = %v, want ErrOutsideGrid", err)
	}
	if e.Version() != 1 {
		t.Errorf("failed edit bumped version to %d", e.Version())
	}
}

func TestSelectColorOutOfRange(t *testing.T) {
	e := newEditor(t)
	for _, i := range []int{-1, 2} {
		if err := e.SelectColor(i); !errors.Is(err, ErrUnknownColor) {
			t.Errorf("SelectColor(%d) error = %v, want ErrUnknownColor", i, err)
		}
	}
	if c, _ := e.Active(); c != yellow {
		t.Errorf("failed select changed the active color to %v", c)
	}
}

func TestPaintBrush(t *testing.T) {
	e := newEditor(t)
	p := e.Grid().Cell(0).Position()

	info, err := e.Paint(p, Brush{ColorIndex: intPtr(1), Elevation: intPtr(3)})
	if err != nil {
		t.Fatal(err)
	}
	if info.Color != blue || info.Elevation != 3 {
		t.Errorf("Paint returned %+v", info)
	}
	// The brush becomes the active setting.
	if c, el := e.Active(); c != blue || el != 3 {
		t.Errorf("Active() = %v, %d", c, el)
	}

	if _, err := e.Paint(p, Brush{ColorIndex: intPtr(9)}); !errors.Is(err, ErrUnknownColor) {
		t.Errorf("bad brush error = %v, want ErrUnknownColor", err)
	}
}

func TestPaintOutsideKeepsActiveSettings(t *testing.T) {
	e := newEditor(t)
	_, err := e.Paint(mgl32.Vec3{-100, 0, -100}, Brush{ColorIndex: intPtr(1), Elevation: intPtr(4)})
	if !errors.Is(err, ErrOutsideGrid) {
		t.Fatalf("error = %v, want ErrOutsideGrid", err)
	}
	if c, el := e.Active(); c != yellow || el != 0 {
		t.Errorf("Active() = %v, %d after a failed paint; want %v, 0", c, el, yellow)
	}
}

func TestSnapshotPairsMeshAndVersion(t *testing.T) {
	e := newEditor(t)
	if _, err := e.EditAt(e.Grid().Cell(0).Position()); err != nil {
		t.Fatal(err)
	}
	m, v := e.Snapshot()
	if m != e.Mesh() || v != 2 {
		t.Errorf("Snapshot() = %p, %d; want current mesh %p, 2", m, v, e.Mesh())
	}
}

func TestCellAt(t *testing.T) {
	e := newEditor(t)
	info, ok := e.CellAt(e.Grid().Cell(5).Position())
	if !ok || info.Index != 5 {
		t.Errorf("CellAt = %+v, %v", info, ok)
	}
	if _, ok := e.CellAt(mgl32.Vec3{1000, 0, 1000}); ok {
		t.Error("CellAt found a cell far outside the grid")
	}
}

func TestConcurrentEdits(t *testing.T) {
	e := newEditor(t)
	var wg sync.WaitGroup
	for i := 0; i < e.Grid().Len(); i++ {
		p := e.Grid().Cell(i).Position()
		wg.Add(1)
		go func(el int) {
			defer wg.Done()
			if _, err := e.Paint(p, Brush{Elevation: intPtr(el % 3)}); err != nil {
				t.Error(err)
			}
			_ = e.Mesh()
		}(i)
	}
	wg.Wait()
	if want := uint64(e.Grid().Len() + 1); e.Version() != want {
		t.Errorf("Version() = %d, want %d", e.Version(), want)
	}
}
