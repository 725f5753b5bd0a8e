package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/K1ngArtes/Hexagonal-grid/internal/editor"
	"github.com/K1ngArtes/Hexagonal-grid/internal/hexgrid"
	"github.com/K1ngArtes/Hexagonal-grid/internal/mesh"
	"github.com/K1ngArtes/Hexagonal-grid/internal/persistence"
)

const testKey = "secret"

func newTestServer(t *testing.T, withDB bool) *Server {
	t.Helper()
	m := hexgrid.DefaultMetrics()
	g, err := hexgrid.NewGrid(3, 2, m, mgl32.Vec4{1, 1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	palette := []mgl32.Vec4{{1, 1, 0, 1}, {0, 0, 1, 1}}
	s := &Server{
		Editor:   editor.New(g, mesh.NewTriangulator(m), palette),
		AdminKey: testKey,
	}
	if withDB {
		db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { db.Close() })
		s.DB = db
	}
	return s
}

func do(t *testing.T, h http.Handler, method, target, body, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestStatus(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/status", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body struct {
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Cells     int    `json:"cells"`
		Version   uint64 `json:"version"`
		Triangles int    `json:"triangles"`
		Snapshots bool   `json:"snapshots"`
	}
	decode(t, rec, &body)
	if body.Width != 3 || body.Height != 2 || body.Cells != 6 || body.Version != 1 {
		t.Errorf("status = %+v", body)
	}
	if body.Triangles != s.Editor.Mesh().TriangleCount() || body.Snapshots {
		t.Errorf("status = %+v", body)
	}
}

func TestMesh(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/mesh", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body struct {
		Vertices  []mgl32.Vec3    `json:"vertices"`
		Colors    []mgl32.Vec4    `json:"colors"`
		Triangles []mesh.Triangle `json:"triangles"`
	}
	decode(t, rec, &body)
	m := s.Editor.Mesh()
	if len(body.Vertices) != len(m.Vertices) || len(body.Colors) != len(m.Colors) || len(body.Triangles) != m.TriangleCount() {
		t.Errorf("mesh sizes %d/%d/%d, want %d/%d/%d",
			len(body.Vertices), len(body.Colors), len(body.Triangles),
			len(m.Vertices), len(m.Colors), m.TriangleCount())
	}
}

func TestCell(t *testing.T) {
	s := newTestServer(t, false)
	h := s.Handler()
	c := s.Editor.Grid().Cell(4)

	rec := do(t, h, http.MethodGet, fmt.Sprintf("/api/v1/cell?x=%v&z=%v", c.Position().X(), c.Position().Z()), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var info editor.CellInfo
	decode(t, rec, &info)
	if info.Index != 4 || info.Coordinates != c.Coordinates() {
		t.Errorf("cell = %+v", info)
	}

	if rec := do(t, h, http.MethodGet, "/api/v1/cell?x=-500&z=0", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("outside grid: status %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/cell?x=abc&z=0", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad query: status %d, want 400", rec.Code)
	}
}

func TestEditAuth(t *testing.T) {
	s := newTestServer(t, false)
	h := s.Handler()
	body := `{"x": 0, "z": 0, "elevation": 1}`

	tests := []struct {
		name   string
		method string
		key    string
		want   int
	}{
		{"get not allowed", http.MethodGet, testKey, http.StatusMethodNotAllowed},
		{"no token", http.MethodPost, "", http.StatusUnauthorized},
		{"wrong token", http.MethodPost, "nope", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if rec := do(t, h, tc.method, "/api/v1/edit", body, tc.key); rec.Code != tc.want {
				t.Errorf("status %d, want %d", rec.Code, tc.want)
			}
		})
	}

	s.AdminKey = ""
	if rec := do(t, s.Handler(), http.MethodPost, "/api/v1/edit", body, "anything"); rec.Code != http.StatusForbidden {
		t.Errorf("disabled admin: status %d, want 403", rec.Code)
	}
	if s.Editor.Version() != 1 {
		t.Errorf("rejected edits changed the mesh (version %d)", s.Editor.Version())
	}
}

func TestEdit(t *testing.T) {
	s := newTestServer(t, false)
	h := s.Handler()
	p := s.Editor.Grid().Cell(1).Position()

	rec := do(t, h, http.MethodPost, "/api/v1/edit",
		fmt.Sprintf(`{"x": %v, "z": %v, "color_index": 1, "elevation": 2}`, p.X(), p.Z()), testKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Cell    editor.CellInfo `json:"cell"`
		Version uint64          `json:"version"`
	}
	decode(t, rec, &resp)
	if resp.Cell.Index != 1 || resp.Cell.Elevation != 2 || resp.Cell.Color != (mgl32.Vec4{0, 0, 1, 1}) {
		t.Errorf("edited cell = %+v", resp.Cell)
	}
	if resp.Version != 2 {
		t.Errorf("version = %d, want 2", resp.Version)
	}

	errs := []struct {
		name, body string
		want       int
	}{
		{"invalid json", `{"x":`, http.StatusBadRequest},
		{"unknown color", `{"x": 0, "z": 0, "color_index": 7}`, http.StatusBadRequest},
		{"outside grid", `{"x": -500, "z": -500}`, http.StatusNotFound},
	}
	for _, tc := range errs {
		t.Run(tc.name, func(t *testing.T) {
			if rec := do(t, h, http.MethodPost, "/api/v1/edit", tc.body, testKey); rec.Code != tc.want {
				t.Errorf("status %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestEditRateLimited(t *testing.T) {
	s := newTestServer(t, false)
	s.EditRate = 2
	h := s.Handler()

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = do(t, h, http.MethodPost, "/api/v1/edit", `{"x": 0, "z": 0}`, testKey).Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want 200 200 429", codes)
	}
}

func TestSnapshots(t *testing.T) {
	s := newTestServer(t, false)
	if rec := do(t, s.Handler(), http.MethodPost, "/api/v1/snapshot", "", testKey); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("no db: status %d, want 503", rec.Code)
	}

	s = newTestServer(t, true)
	h := s.Handler()
	rec := do(t, h, http.MethodPost, "/api/v1/snapshot", "", testKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot: status %d: %s", rec.Code, rec.Body.String())
	}
	var saved map[string]string
	decode(t, rec, &saved)

	rec = do(t, h, http.MethodGet, "/api/v1/snapshots?limit=5", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	var list []persistence.SnapshotInfo
	decode(t, rec, &list)
	if len(list) != 1 || list[0].ID != saved["id"] {
		t.Errorf("list = %+v, want the saved snapshot %s", list, saved["id"])
	}
	if list[0].Version != 1 {
		t.Errorf("stored version %d, want 1", list[0].Version)
	}
	if list[0].TriangleCount != s.Editor.Mesh().TriangleCount() {
		t.Errorf("stored %d triangles, want %d", list[0].TriangleCount, s.Editor.Mesh().TriangleCount())
	}

	if rec := do(t, h, http.MethodGet, "/api/v1/snapshots?limit=0", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("limit=0: status %d, want 400", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, false)
	s.Origins = []string{"http://viewer.test"}
	h := s.Handler()

	tests := []struct {
		origin, want string
	}{
		{"http://viewer.test", "http://viewer.test"},
		{"http://elsewhere.test", ""},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/mesh", nil)
		req.Header.Set("Origin", tc.origin)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("%s: preflight status %d", tc.origin, rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
			t.Errorf("%s: allow-origin = %q, want %q", tc.origin, got, tc.want)
		}
	}
}

func TestMeshVersionMatchesMesh(t *testing.T) {
	s := newTestServer(t, false)
	h := s.Handler()
	if rec := do(t, h, http.MethodPost, "/api/v1/edit", `{"x": 0, "z": 0, "elevation": 1}`, testKey); rec.Code != http.StatusOK {
		t.Fatalf("edit: status %d", rec.Code)
	}
	var body struct {
		Version   uint64          `json:"version"`
		Triangles []mesh.Triangle `json:"triangles"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/v1/mesh", "", ""), &body)
	m, version := s.Editor.Snapshot()
	if body.Version != version || len(body.Triangles) != m.TriangleCount() {
		t.Errorf("mesh response version %d with %d triangles, want %d with %d",
			body.Version, len(body.Triangles), version, m.TriangleCount())
	}
}
