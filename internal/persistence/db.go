// Package persistence provides SQLite-based storage for triangulated mesh
// snapshots, so an external renderer or collider can pick up the latest
// geometry without re-running the triangulator. Cell state is not stored.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/K1ngArtes/Hexagonal-grid/internal/mesh"
)

// ErrSnapshotNotFound is returned when no snapshot matches a lookup.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// DB wraps a SQLite connection for mesh snapshot storage.
type DB struct {
	conn *sqlx.DB
}

// SnapshotInfo describes a stored snapshot without its buffers.
type SnapshotInfo struct {
	ID            string `db:"id" json:"id"`
	CreatedAt     int64  `db:"created_at" json:"created_at"` // Unix seconds
	GridWidth     int    `db:"grid_width" json:"grid_width"`
	GridHeight    int    `db:"grid_height" json:"grid_height"`
	Version       uint64 `db:"version" json:"version"`
	VertexCount   int    `db:"vertex_count" json:"vertex_count"`
	TriangleCount int    `db:"triangle_count" json:"triangle_count"`
}

type snapshotRow struct {
	SnapshotInfo
	VerticesJSON  string `db:"vertices_json"`
	ColorsJSON    string `db:"colors_json"`
	TrianglesJSON string `db:"triangles_json"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		grid_width INTEGER NOT NULL,
		grid_height INTEGER NOT NULL,
		version INTEGER NOT NULL,
		vertex_count INTEGER NOT NULL,
		triangle_count INTEGER NOT NULL,
		vertices_json TEXT NOT NULL,
		colors_json TEXT NOT NULL,
		triangles_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS mesh_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSnapshot stores m and returns the new snapshot's ID. width, height and
// version identify the grid and triangulation pass the mesh came from.
func (db *DB) SaveSnapshot(m *mesh.Mesh, width, height int, version uint64) (string, error) {
	verticesJSON, err := json.Marshal(m.Vertices)
	if err != nil {
		return "", fmt.Errorf("marshal vertices: %w", err)
	}
	colorsJSON, err := json.Marshal(m.Colors)
	if err != nil {
		return "", fmt.Errorf("marshal colors: %w", err)
	}
	trianglesJSON, err := json.Marshal(m.Triangles)
	if err != nil {
		return "", fmt.Errorf("marshal triangles: %w", err)
	}

	id := uuid.NewString()
	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO snapshots
		(id, created_at, grid_width, grid_height, version, vertex_count, triangle_count,
		 vertices_json, colors_json, triangles_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().Unix(), width, height, version,
		len(m.Vertices), m.TriangleCount(),
		string(verticesJSON), string(colorsJSON), string(trianglesJSON),
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot %s: %w", id, err)
	}
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO mesh_meta (key, value) VALUES (?, ?)",
		"last_snapshot", id,
	); err != nil {
		return "", fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	slog.Info("mesh snapshot saved", "id", id, "vertices", len(m.Vertices), "triangles", m.TriangleCount())
	return id, nil
}

// LoadSnapshot returns the stored mesh and its description.
func (db *DB) LoadSnapshot(id string) (*mesh.Mesh, SnapshotInfo, error) {
	var row snapshotRow
	err := db.conn.Get(&row, "SELECT * FROM snapshots WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, SnapshotInfo{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("load snapshot %s: %w", id, err)
	}

	m := &mesh.Mesh{}
	if err := json.Unmarshal([]byte(row.VerticesJSON), &m.Vertices); err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("unmarshal vertices: %w", err)
	}
	if err := json.Unmarshal([]byte(row.ColorsJSON), &m.Colors); err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("unmarshal colors: %w", err)
	}
	if err := json.Unmarshal([]byte(row.TrianglesJSON), &m.Triangles); err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("unmarshal triangles: %w", err)
	}
	return m, row.SnapshotInfo, nil
}

// LatestSnapshot returns the most recently saved snapshot.
func (db *DB) LatestSnapshot() (*mesh.Mesh, SnapshotInfo, error) {
	id, err := db.GetMeta("last_snapshot")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, SnapshotInfo{}, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, SnapshotInfo{}, err
	}
	return db.LoadSnapshot(id)
}

// ListSnapshots returns the most recent snapshots, newest first.
func (db *DB) ListSnapshots(limit int) ([]SnapshotInfo, error) {
	infos := []SnapshotInfo{}
	err := db.conn.Select(&infos,
		`SELECT id, created_at, grid_width, grid_height, version, vertex_count, triangle_count
		 FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	return infos, err
}

// SaveMeta stores a key-value pair in mesh metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO mesh_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM mesh_meta WHERE key = ?", key)
	return value, err
}
