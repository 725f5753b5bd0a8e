// Package terrain seeds a hex grid with elevations and colors using layered
// simplex noise, so a fresh map starts with hills and valleys instead of a
// flat plain.
package terrain

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/K1ngArtes/Hexagonal-grid/internal/hexgrid"
)

// GenConfig holds terrain generation parameters.
type GenConfig struct {
	Seed         int64   // Random seed (0 = random)
	MaxElevation int     // Highest elevation a cell can get
	Frequency    float64 // Base noise frequency in cycles per cell
	Octaves      int     // Noise layers summed for detail
	Persistence  float64 // Amplitude falloff per octave
	SeaLevel     float64 // Normalized height below which cells are water
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:         0,
		MaxElevation: 6,
		Frequency:    0.12,
		Octaves:      4,
		Persistence:  0.5,
		SeaLevel:     0.3,
	}
}

// SmallTestConfig returns a fixed-seed configuration for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Seed:         42,
		MaxElevation: 3,
		Frequency:    0.2,
		Octaves:      2,
		Persistence:  0.5,
		SeaLevel:     0.3,
	}
}

// Biome is the visual class of a cell, chosen from height and moisture.
type Biome uint8

const (
	BiomeWater Biome = iota
	BiomeSand
	BiomeGrass
	BiomeForest
	BiomeRock
	BiomeSnow
)

// Palette maps each biome to the color a cell of that biome is painted.
var Palette = map[Biome]mgl32.Vec4{
	BiomeWater:  {0.16, 0.38, 0.70, 1},
	BiomeSand:   {0.86, 0.80, 0.56, 1},
	BiomeGrass:  {0.44, 0.68, 0.28, 1},
	BiomeForest: {0.18, 0.45, 0.20, 1},
	BiomeRock:   {0.50, 0.48, 0.46, 1},
	BiomeSnow:   {0.95, 0.96, 0.98, 1},
}

// Generate assigns an elevation and biome color to every cell of g and
// returns the biome chosen for each cell, indexed like the grid arena.
// It is deterministic for a non-zero seed.
func Generate(g *hexgrid.Grid, cfg GenConfig) []Biome {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Independent layers for height and moisture.
	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	biomes := make([]Biome, g.Len())
	for i := 0; i < g.Len(); i++ {
		cell := g.Cell(i)
		x, z := cell.Coordinates().Offset()

		// Offset → continuous space: odd rows sit half a cell over and rows
		// are sqrt(3)/2 apart.
		fx := float64(x) + float64(z&1)*0.5
		fz := float64(z) * math.Sqrt(3.0) / 2.0

		elev := octaveNoise(elevNoise, fx, fz, cfg.Octaves, cfg.Frequency, cfg.Persistence)
		moist := octaveNoise(moistNoise, fx, fz, cfg.Octaves, cfg.Frequency*0.75, cfg.Persistence)

		biome := deriveBiome(elev, moist, cfg)
		biomes[i] = biome

		cell.SetElevation(quantize(elev, cfg))
		cell.SetColor(Palette[biome])
	}

	return biomes
}

// quantize maps a normalized height to an integer elevation. Everything at
// or below sea level is flattened to zero so water stays level.
func quantize(elev float64, cfg GenConfig) int {
	if elev <= cfg.SeaLevel || cfg.MaxElevation <= 0 {
		return 0
	}
	land := (elev - cfg.SeaLevel) / (1 - cfg.SeaLevel)
	e := int(math.Round(land * float64(cfg.MaxElevation)))
	if e > cfg.MaxElevation {
		e = cfg.MaxElevation
	}
	return e
}

// deriveBiome determines the biome from environmental parameters.
func deriveBiome(elev, moist float64, cfg GenConfig) Biome {
	if elev <= cfg.SeaLevel {
		return BiomeWater
	}
	land := (elev - cfg.SeaLevel) / (1 - cfg.SeaLevel)
	switch {
	case land > 0.85:
		return BiomeSnow
	case land > 0.65:
		return BiomeRock
	case land < 0.1:
		return BiomeSand
	case moist > 0.55:
		return BiomeForest
	default:
		return BiomeGrass
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// Counts returns a summary of biome distribution.
func Counts(biomes []Biome) map[Biome]int {
	counts := make(map[Biome]int)
	for _, b := range biomes {
		counts[b]++
	}
	return counts
}

// String returns a human-readable name for a biome.
func (b Biome) String() string {
	switch b {
	case BiomeWater:
		return "Water"
	case BiomeSand:
		return "Sand"
	case BiomeGrass:
		return "Grass"
	case BiomeForest:
		return "Forest"
	case BiomeRock:
		return "Rock"
	case BiomeSnow:
		return "Snow"
	default:
		return "Unknown"
	}
}
