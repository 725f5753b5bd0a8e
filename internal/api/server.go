// Package api provides the HTTP API for fetching and editing the hex mesh.
// GET endpoints are public (read-only).
// POST endpoints require a bearer token (editing and snapshots).
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/K1ngArtes/Hexagonal-grid/internal/editor"
	"github.com/K1ngArtes/Hexagonal-grid/internal/persistence"
)

// Server serves the mesh over HTTP.
type Server struct {
	Editor   *editor.Editor
	DB       *persistence.DB // nil disables snapshot endpoints
	Port     int
	AdminKey string   // Bearer token for POST endpoints. Empty = POST disabled.
	EditRate int      // Edits per minute per client. 0 = unlimited.
	Origins  []string // Viewer origins allowed by CORS

	srv *http.Server
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/mesh", s.handleMesh)
	mux.HandleFunc("/api/v1/cell", s.handleCell)
	mux.HandleFunc("/api/v1/snapshots", s.handleSnapshots)

	// Admin endpoints (POST, require bearer token).
	edit := s.handleEdit
	if s.EditRate > 0 {
		edit = RateLimitMiddleware(NewRateLimiter(s.EditRate, time.Minute), edit)
	}
	mux.HandleFunc("/api/v1/edit", s.adminOnly(edit))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(s.Origins, mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "snapshots", s.DB != nil)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Stop closes the listener. Safe to call when Start was never called.
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Close()
}

// corsMiddleware lets browser viewers served from origins fetch the mesh and
// send edits. Preflight requests are answered here.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := allowed[r.Header.Get("Origin")]; ok {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", r.Header.Get("Origin"))
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// adminOnly requires POST and a matching bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled", http.StatusForbidden)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	g := s.Editor.Grid()
	m, version := s.Editor.Snapshot()

	writeJSON(w, map[string]any{
		"width":          g.Width(),
		"height":         g.Height(),
		"cells":          g.Len(),
		"version":        version,
		"vertices":       len(m.Vertices),
		"triangles":      m.TriangleCount(),
		"summary":        fmt.Sprintf("%s vertices, %s triangles", humanize.Comma(int64(len(m.Vertices))), humanize.Comma(int64(m.TriangleCount()))),
		"snapshots":      s.DB != nil,
		"terrace_steps":  g.Metrics().TerraceSteps,
		"elevation_step": g.Metrics().ElevationStep,
	})
}

// handleMesh returns the current vertex, color and triangle buffers.
func (s *Server) handleMesh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	m, version := s.Editor.Snapshot()
	lo, hi := m.Bounds()
	writeJSON(w, map[string]any{
		"version":   version,
		"vertices":  m.Vertices,
		"colors":    m.Colors,
		"triangles": m.Triangles,
		"bounds":    [2]mgl32.Vec3{lo, hi},
	})
}

// handleCell looks up the cell under a grid-local point: GET /api/v1/cell?x=..&z=..
func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p, err := pointFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	info, ok := s.Editor.CellAt(p)
	if !ok {
		http.Error(w, "no cell at point", http.StatusNotFound)
		return
	}
	writeJSON(w, info)
}

type editRequest struct {
	X          float32 `json:"x"`
	Z          float32 `json:"z"`
	ColorIndex *int    `json:"color_index,omitempty"`
	Elevation  *int    `json:"elevation,omitempty"`
}

// handleEdit applies the active (or given) color and elevation to the cell
// under a point and returns the cell's new state.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	brush := editor.Brush{ColorIndex: req.ColorIndex, Elevation: req.Elevation}
	info, err := s.Editor.Paint(mgl32.Vec3{req.X, 0, req.Z}, brush)
	switch {
	case errors.Is(err, editor.ErrUnknownColor):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, editor.ErrOutsideGrid):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"cell":    info,
		"version": s.Editor.Version(),
	})
}

// handleSnapshot stores the current mesh.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "snapshots disabled", http.StatusServiceUnavailable)
		return
	}
	g := s.Editor.Grid()
	m, version := s.Editor.Snapshot()
	id, err := s.DB.SaveSnapshot(m, g.Width(), g.Height(), version)
	if err != nil {
		slog.Error("snapshot failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"id": id})
}

// handleSnapshots lists stored snapshots: GET /api/v1/snapshots?limit=N
func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "snapshots disabled", http.StatusServiceUnavailable)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	infos, err := s.DB.ListSnapshots(limit)
	if err != nil {
		slog.Error("list snapshots failed", "error", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, infos)
}

func pointFromQuery(r *http.Request) (mgl32.Vec3, error) {
	q := r.URL.Query()
	x, err := strconv.ParseFloat(q.Get("x"), 32)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("invalid x: %q", q.Get("x"))
	}
	z, err := strconv.ParseFloat(q.Get("z"), 32)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("invalid z: %q", q.Get("z"))
	}
	return mgl32.Vec3{float32(x), 0, float32(z)}, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
