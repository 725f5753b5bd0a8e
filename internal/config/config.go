// Package config loads the hexmesh YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/K1ngArtes/Hexagonal-grid/internal/hexgrid"
	"github.com/K1ngArtes/Hexagonal-grid/internal/terrain"
)

// Config holds all hexmesh configuration
type Config struct {
	Grid    GridConfig    `yaml:"grid"`
	Metrics MetricsConfig `yaml:"metrics"`
	Terrain TerrainConfig `yaml:"terrain"`
	Perturb PerturbConfig `yaml:"perturb"`
	Storage StorageConfig `yaml:"storage"`
	API     APIConfig     `yaml:"api"`
	Log     LogConfig     `yaml:"log"`
	Palette []Color       `yaml:"palette"`
}

// Color is an RGBA color written as a YAML list; alpha may be omitted.
type Color []float32

// GridConfig holds grid dimensions
type GridConfig struct {
	Width        int   `yaml:"width"`
	Height       int   `yaml:"height"`
	DefaultColor Color `yaml:"default_color"`
}

// MetricsConfig holds cell geometry settings
type MetricsConfig struct {
	OuterRadius      float32 `yaml:"outer_radius"`
	ElevationStep    float32 `yaml:"elevation_step"`
	TerracesPerSlope int     `yaml:"terraces_per_slope"`
	SolidFactor      float32 `yaml:"solid_factor"`
}

// TerrainConfig holds initial terrain seeding settings
type TerrainConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Seed         int64   `yaml:"seed"`
	MaxElevation int     `yaml:"max_elevation"`
	Frequency    float64 `yaml:"frequency"`
	Octaves      int     `yaml:"octaves"`
	Persistence  float64 `yaml:"persistence"`
	SeaLevel     float64 `yaml:"sea_level"`
}

// PerturbConfig holds vertex jitter settings
type PerturbConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Seed     int64   `yaml:"seed"`
	Strength float64 `yaml:"strength"`
	Scale    float64 `yaml:"scale"`
}

// StorageConfig holds snapshot database settings
type StorageConfig struct {
	Path string `yaml:"path"` // Empty disables snapshots
}

// APIConfig holds HTTP API settings
type APIConfig struct {
	Port     int    `yaml:"port"`
	AdminKey string `yaml:"admin_key"` // HEXMESH_ADMIN_KEY overrides
	EditRate int    `yaml:"edit_rate"` // edits per minute per client

	// Browser origins allowed to call the API. CORS_ORIGINS (comma-separated) adds more.
	CORSOrigins []string `yaml:"cors_origins"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json or auto
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyDefaults()
	if key := os.Getenv("HEXMESH_ADMIN_KEY"); key != "" {
		cfg.API.AdminKey = key
	}
	for _, origin := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.API.CORSOrigins = append(cfg.API.CORSOrigins, origin)
		}
	}

	for i, c := range cfg.Palette {
		if len(c) != 3 && len(c) != 4 {
			return nil, fmt.Errorf("palette color %d: want 3 or 4 components, got %d", i, len(c))
		}
	}
	if c := cfg.Grid.DefaultColor; len(c) != 3 && len(c) != 4 {
		return nil, fmt.Errorf("grid default color: want 3 or 4 components, got %d", len(c))
	}

	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Grid.Width == 0 {
		cfg.Grid.Width = 6
	}
	if cfg.Grid.Height == 0 {
		cfg.Grid.Height = 6
	}
	if len(cfg.Grid.DefaultColor) == 0 {
		cfg.Grid.DefaultColor = Color{1, 1, 1, 1}
	}

	def := hexgrid.DefaultMetricsConfig()
	if cfg.Metrics.OuterRadius == 0 {
		cfg.Metrics.OuterRadius = def.OuterRadius
	}
	if cfg.Metrics.ElevationStep == 0 {
		cfg.Metrics.ElevationStep = def.ElevationStep
	}
	if cfg.Metrics.TerracesPerSlope == 0 {
		cfg.Metrics.TerracesPerSlope = def.TerracesPerSlope
	}
	if cfg.Metrics.SolidFactor == 0 {
		cfg.Metrics.SolidFactor = def.SolidFactor
	}

	gen := terrain.DefaultGenConfig()
	if cfg.Terrain.MaxElevation == 0 {
		cfg.Terrain.MaxElevation = gen.MaxElevation
	}
	if cfg.Terrain.Frequency == 0 {
		cfg.Terrain.Frequency = gen.Frequency
	}
	if cfg.Terrain.Octaves == 0 {
		cfg.Terrain.Octaves = gen.Octaves
	}
	if cfg.Terrain.Persistence == 0 {
		cfg.Terrain.Persistence = gen.Persistence
	}
	if cfg.Terrain.SeaLevel == 0 {
		cfg.Terrain.SeaLevel = gen.SeaLevel
	}

	if cfg.Perturb.Strength == 0 {
		cfg.Perturb.Strength = 5
	}
	if cfg.Perturb.Scale == 0 {
		cfg.Perturb.Scale = 0.003
	}

	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}
	if cfg.API.EditRate == 0 {
		cfg.API.EditRate = 120
	}
	if len(cfg.API.CORSOrigins) == 0 {
		cfg.API.CORSOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "auto"
	}

	if len(cfg.Palette) == 0 {
		cfg.Palette = []Color{
			{1, 1, 0, 1},         // yellow
			{0, 1, 0, 1},         // green
			{0, 0, 1, 1},         // blue
			{1, 1, 1, 1},         // white
			{0.55, 0.35, 0.2, 1}, // brown
		}
	}
}

// MetricsSettings converts the metrics section for hexgrid.NewMetrics.
func (cfg *Config) MetricsSettings() hexgrid.MetricsConfig {
	return hexgrid.MetricsConfig{
		OuterRadius:      cfg.Metrics.OuterRadius,
		ElevationStep:    cfg.Metrics.ElevationStep,
		TerracesPerSlope: cfg.Metrics.TerracesPerSlope,
		SolidFactor:      cfg.Metrics.SolidFactor,
	}
}

// GenConfig converts the terrain section for terrain.Generate.
func (cfg *Config) GenConfig() terrain.GenConfig {
	return terrain.GenConfig{
		Seed:         cfg.Terrain.Seed,
		MaxElevation: cfg.Terrain.MaxElevation,
		Frequency:    cfg.Terrain.Frequency,
		Octaves:      cfg.Terrain.Octaves,
		Persistence:  cfg.Terrain.Persistence,
		SeaLevel:     cfg.Terrain.SeaLevel,
	}
}

// Colors returns the palette as RGBA vectors.
func (cfg *Config) Colors() []mgl32.Vec4 {
	out := make([]mgl32.Vec4, len(cfg.Palette))
	for i, c := range cfg.Palette {
		out[i] = c.Vec4()
	}
	return out
}

// Vec4 converts the color, defaulting alpha to 1.
func (c Color) Vec4() mgl32.Vec4 {
	v := mgl32.Vec4{0, 0, 0, 1}
	copy(v[:], c)
	return v
}
