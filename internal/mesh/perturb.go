package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Reference jitter settings: strength in world units, scale in noise cycles
// per world unit.
const (
	DefaultPerturbStrength = 5.0
	DefaultNoiseScale      = 0.003
)

// NewNoiseDisplacer returns a Displacer that jitters each vertex by up to
// strength along every axis. The offset depends only on the vertex's XZ
// position, so vertices shared between cells move together.
func NewNoiseDisplacer(seed int64, strength, scale float64) Displacer {
	// One independent noise field per axis.
	nx := opensimplex.NewNormalized(seed)
	ny := opensimplex.NewNormalized(seed + 1)
	nz := opensimplex.NewNormalized(seed + 2)

	return func(v mgl32.Vec3) mgl32.Vec3 {
		sx := float64(v.X()) * scale
		sz := float64(v.Z()) * scale
		// * 2 - 1 lets the offset go both ways.
		v[0] += float32((nx.Eval2(sx, sz)*2 - 1) * strength)
		v[1] += float32((ny.Eval2(sx, sz)*2 - 1) * strength)
		v[2] += float32((nz.Eval2(sx, sz)*2 - 1) * strength)
		return v
	}
}
