package hexgrid

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidMetrics is returned when a MetricsConfig cannot describe a hexagon.
var ErrInvalidMetrics = errors.New("invalid hex metrics")

// innerToOuter is cos(30°), the ratio of edge-midpoint to corner distance.
const innerToOuter = 0.866025404

// EdgeType classifies the transition between two cells.
type EdgeType uint8

const (
	EdgeFlat  EdgeType = iota // Same elevation
	EdgeSlope                 // One elevation step, rendered as terraces
	EdgeCliff                 // Two or more steps, rendered as a wall
)

// String returns a human-readable name for an edge type.
func (t EdgeType) String() string {
	switch t {
	case EdgeFlat:
		return "Flat"
	case EdgeSlope:
		return "Slope"
	case EdgeCliff:
		return "Cliff"
	default:
		return "Unknown"
	}
}

// MetricsConfig holds the tunable inputs of the cell geometry.
type MetricsConfig struct {
	OuterRadius      float32 // Center to corner distance
	ElevationStep    float32 // World height of one elevation unit
	TerracesPerSlope int     // Flat terraces on a single-step slope
	SolidFactor      float32 // Share of the hexagon painted in the cell's own color
}

// DefaultMetricsConfig returns the reference cell geometry.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		OuterRadius:      10,
		ElevationStep:    5,
		TerracesPerSlope: 2,
		SolidFactor:      0.75,
	}
}

// Metrics is the immutable geometry of a cell. Build it once and share it
// by pointer; nothing mutates it after construction.
type Metrics struct {
	OuterRadius float32
	InnerRadius float32

	SolidFactor float32
	BlendFactor float32

	ElevationStep float32

	TerracesPerSlope          int
	TerraceSteps              int
	HorizontalTerraceStepSize float32
	VerticalTerraceStepSize   float32

	// Seven corners: the six of the hexagon plus the first one again,
	// so corner d+1 is always addressable.
	corners [7]mgl32.Vec3
}

// NewMetrics validates cfg and derives the full cell geometry from it.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if cfg.OuterRadius <= 0 {
		return nil, fmt.Errorf("%w: outer radius %v must be positive", ErrInvalidMetrics, cfg.OuterRadius)
	}
	if cfg.ElevationStep <= 0 {
		return nil, fmt.Errorf("%w: elevation step %v must be positive", ErrInvalidMetrics, cfg.ElevationStep)
	}
	if cfg.TerracesPerSlope < 1 {
		return nil, fmt.Errorf("%w: terraces per slope %d must be at least 1", ErrInvalidMetrics, cfg.TerracesPerSlope)
	}
	if cfg.SolidFactor <= 0 || cfg.SolidFactor >= 1 {
		return nil, fmt.Errorf("%w: solid factor %v must lie in (0, 1)", ErrInvalidMetrics, cfg.SolidFactor)
	}

	outer := cfg.OuterRadius
	inner := outer * innerToOuter
	steps := cfg.TerracesPerSlope*2 + 1

	m := &Metrics{
		OuterRadius:               outer,
		InnerRadius:               inner,
		SolidFactor:               cfg.SolidFactor,
		BlendFactor:               1 - cfg.SolidFactor,
		ElevationStep:             cfg.ElevationStep,
		TerracesPerSlope:          cfg.TerracesPerSlope,
		TerraceSteps:              steps,
		HorizontalTerraceStepSize: 1 / float32(steps),
		VerticalTerraceStepSize:   1 / float32(cfg.TerracesPerSlope+1),
		corners: [7]mgl32.Vec3{
			{0, 0, outer},
			{inner, 0, 0.5 * outer},
			{inner, 0, -0.5 * outer},
			{0, 0, -outer},
			{-inner, 0, -0.5 * outer},
			{-inner, 0, 0.5 * outer},
			{0, 0, outer},
		},
	}
	return m, nil
}

// DefaultMetrics returns metrics built from DefaultMetricsConfig.
func DefaultMetrics() *Metrics {
	m, err := NewMetrics(DefaultMetricsConfig())
	if err != nil {
		panic(err) // defaults are always valid
	}
	return m
}

// FirstCorner returns the corner where the edge in direction d starts.
func (m *Metrics) FirstCorner(d Direction) mgl32.Vec3 {
	return m.corners[d]
}

// SecondCorner returns the corner where the edge in direction d ends.
func (m *Metrics) SecondCorner(d Direction) mgl32.Vec3 {
	return m.corners[d+1]
}

// FirstSolidCorner is FirstCorner pulled in to the solid region.
func (m *Metrics) FirstSolidCorner(d Direction) mgl32.Vec3 {
	return m.corners[d].Mul(m.SolidFactor)
}

// SecondSolidCorner is SecondCorner pulled in to the solid region.
func (m *Metrics) SecondSolidCorner(d Direction) mgl32.Vec3 {
	return m.corners[d+1].Mul(m.SolidFactor)
}

// Bridge is the vector from a solid corner across the blend region to the
// matching solid corner of the neighbor in direction d.
func (m *Metrics) Bridge(d Direction) mgl32.Vec3 {
	return m.corners[d].Add(m.corners[d+1]).Mul(m.BlendFactor)
}

// Height returns the vertical offset of a cell at the given elevation.
func (m *Metrics) Height(elevation int) float32 {
	return float32(elevation) * m.ElevationStep
}

// CellCenter returns the grid-local center of the cell at an offset
// column/row, at zero elevation. Odd rows are shifted half a cell right.
func (m *Metrics) CellCenter(offsetX, offsetZ int) mgl32.Vec3 {
	x := (float32(offsetX) + float32(offsetZ)*0.5 - float32(offsetZ/2)) * (m.InnerRadius * 2)
	z := float32(offsetZ) * (m.OuterRadius * 1.5)
	return mgl32.Vec3{x, 0, z}
}

// EdgeType classifies the transition between two elevations.
func (m *Metrics) EdgeType(elevation1, elevation2 int) EdgeType {
	return ClassifyEdge(elevation1, elevation2)
}

// ClassifyEdge classifies the transition between two elevations.
// Equal is flat, one step is a slope, anything more is a cliff.
func ClassifyEdge(elevation1, elevation2 int) EdgeType {
	if elevation1 == elevation2 {
		return EdgeFlat
	}
	delta := elevation2 - elevation1
	if delta == 1 || delta == -1 {
		return EdgeSlope
	}
	return EdgeCliff
}

// TerraceLerp finds a point on the terraced path from a to b.
// X and Z advance evenly every step; Y only rises on odd steps, which is
// what turns a ramp into a staircase.
func (m *Metrics) TerraceLerp(a, b mgl32.Vec3, step int) mgl32.Vec3 {
	h := float32(step) * m.HorizontalTerraceStepSize
	a[0] += (b[0] - a[0]) * h
	a[2] += (b[2] - a[2]) * h

	v := float32((step+1)/2) * m.VerticalTerraceStepSize
	a[1] += (b[1] - a[1]) * v
	return a
}

// TerraceColorLerp blends colors along a terrace using the horizontal fraction.
func (m *Metrics) TerraceColorLerp(a, b mgl32.Vec4, step int) mgl32.Vec4 {
	return LerpColor(a, b, float32(step)*m.HorizontalTerraceStepSize)
}

// CliffBoundary returns the fraction along a cliff edge where a one-step
// slope starting at beginElevation meets the cliff reaching cliffElevation.
// The caller guarantees the two differ; a cliff always spans two or more steps.
func (m *Metrics) CliffBoundary(beginElevation, cliffElevation int) float32 {
	return 1 / float32(abs(cliffElevation-beginElevation))
}

// Lerp interpolates linearly between two points.
func Lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// LerpColor interpolates linearly between two colors.
func LerpColor(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}
