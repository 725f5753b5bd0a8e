// Command hexmesh builds a hex terrain grid, triangulates it and serves the
// mesh over HTTP for an external viewer.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/K1ngArtes/Hexagonal-grid/internal/api"
	"github.com/K1ngArtes/Hexagonal-grid/internal/config"
	"github.com/K1ngArtes/Hexagonal-grid/internal/editor"
	"github.com/K1ngArtes/Hexagonal-grid/internal/hexgrid"
	"github.com/K1ngArtes/Hexagonal-grid/internal/mesh"
	"github.com/K1ngArtes/Hexagonal-grid/internal/persistence"
	"github.com/K1ngArtes/Hexagonal-grid/internal/terrain"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/hexmesh.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load configuration", "path", configPath, "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))
	slog.Info("configuration loaded", "path", configPath)

	// ── Geometry ─────────────────────────────────────────────────────
	metrics, err := hexgrid.NewMetrics(cfg.MetricsSettings())
	if err != nil {
		slog.Error("invalid metrics", "error", err)
		os.Exit(1)
	}
	slog.Info("cell geometry",
		"outer_radius", metrics.OuterRadius,
		"inner_radius", fmt.Sprintf("%.4f", metrics.InnerRadius),
		"elevation_step", metrics.ElevationStep,
		"terrace_steps", metrics.TerraceSteps,
	)

	grid, err := hexgrid.NewGrid(cfg.Grid.Width, cfg.Grid.Height, metrics, cfg.Grid.DefaultColor.Vec4())
	if err != nil {
		slog.Error("failed to build grid", "error", err)
		os.Exit(1)
	}
	slog.Info("grid built", "grid", grid.String())

	// ── Terrain ──────────────────────────────────────────────────────
	if cfg.Terrain.Enabled {
		biomes := terrain.Generate(grid, cfg.GenConfig())
		for b, c := range terrain.Counts(biomes) {
			slog.Info("terrain", "biome", b.String(), "cells", c)
		}
	}

	// ── Mesh ─────────────────────────────────────────────────────────
	var opts []mesh.Option
	if cfg.Perturb.Enabled {
		opts = append(opts, mesh.WithDisplacer(mesh.NewNoiseDisplacer(cfg.Perturb.Seed, cfg.Perturb.Strength, cfg.Perturb.Scale)))
		slog.Info("vertex perturbation enabled", "strength", cfg.Perturb.Strength, "scale", cfg.Perturb.Scale)
	}
	ed := editor.New(grid, mesh.NewTriangulator(metrics, opts...), cfg.Colors())

	m, version := ed.Snapshot()
	slog.Info("mesh ready",
		"vertices", humanize.Comma(int64(len(m.Vertices))),
		"triangles", humanize.Comma(int64(m.TriangleCount())),
	)

	// ── Snapshots ────────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.Storage.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
			slog.Error("failed to create storage directory", "error", err)
			os.Exit(1)
		}
		db, err = persistence.Open(cfg.Storage.Path)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database opened", "path", cfg.Storage.Path)

		if _, err := db.SaveSnapshot(m, grid.Width(), grid.Height(), version); err != nil {
			slog.Error("initial snapshot failed", "error", err)
		}
	}

	// ── HTTP API ─────────────────────────────────────────────────────
	if cfg.API.AdminKey == "" {
		slog.Warn("HEXMESH_ADMIN_KEY not set, edit and snapshot endpoints are disabled")
	}
	apiServer := &api.Server{
		Editor:   ed,
		DB:       db,
		Port:     cfg.API.Port,
		AdminKey: cfg.API.AdminKey,
		EditRate: cfg.API.EditRate,
		Origins:  cfg.API.CORSOrigins,
	}
	apiServer.Start()

	fmt.Printf("\nhexmesh: %dx%d cells, %s triangles.\n", grid.Width(), grid.Height(), humanize.Comma(int64(m.TriangleCount())))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	if err := apiServer.Stop(); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	if db != nil {
		final, version := ed.Snapshot()
		if _, err := db.SaveSnapshot(final, grid.Width(), grid.Height(), version); err != nil {
			slog.Error("final snapshot failed", "error", err)
		}
	}
}

// newLogger picks a text handler on a terminal and JSON otherwise, unless
// the configuration forces one.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	format := strings.ToLower(cfg.Format)
	if format == "auto" {
		format = "json"
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			format = "text"
		}
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
