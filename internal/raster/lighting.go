package raster

import (
	"math"

	"posecap/internal/mathutil"
)

// LightConfig holds precomputed lighting parameters for lit materials.
type LightConfig struct {
	LightDir mathutil.Vec3 // unit vector towards the directional light
	Ambient  float64
	Hemi     float64
	Direct   float64
	Exposure float64
	InvGamma float64
}

// DefaultLightConfig returns a white directional light in front of and
// above the rig, plus half-strength ambient fill.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		LightDir: mathutil.Vec3{0, 160, 1000}.Normalize(),
		Ambient:  0.5,
		Hemi:     0.25,
		Direct:   1.0,
		Exposure: 1.0,
		InvGamma: 1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a world-space face normal.
func (lc *LightConfig) ComputeShade(normal mathutil.Vec3) float64 {
	// Lambertian, abs for double-sided
	ndl := math.Abs(normal.Dot(lc.LightDir))

	// Hemisphere fill
	hemi := (1.0-math.Abs(normal[1]))*0.5 + 0.5

	return lc.Ambient + hemi*lc.Hemi + ndl*lc.Direct
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}
