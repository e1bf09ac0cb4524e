package raster

import (
	"image"
	"math"

	"posecap/internal/mathutil"
	"posecap/internal/scene"
)

// Vertex is a projected vertex: X, Y in pixels (Y down), Z in NDC depth [-1, 1].
type Vertex struct {
	X, Y, Z float64
	U, V    float64
}

// Shading carries the per-triangle material inputs. All lighting is
// flat-shaded (per-face, not per-pixel).
type Shading struct {
	Kind        scene.MaterialKind
	R, G, B, A  uint8
	Tex         *image.NRGBA  // optional, lit materials only
	WorldNormal mathutil.Vec3 // lighting
	ViewNormal  mathutil.Vec3 // normal encoding
	Light       *LightConfig
}

// RasterizeTriangle rasterizes a single triangle with z-buffer test, clipping
// fragments outside the [-1, 1] depth range.
//
// Hot path: no allocation in the pixel loop.
func RasterizeTriangle(fb *FrameBuffer, v0, v1, v2 Vertex, sh *Shading) {
	x0, y0, z0 := v0.X, v0.Y, v0.Z
	x1, y1, z1 := v1.X, v1.Y, v1.Z
	x2, y2, z2 := v2.X, v2.Y, v2.Z

	hasUV := sh.Kind == scene.MaterialLit && sh.Tex != nil

	// Constant color for the face, resolved once
	var baseR, baseG, baseB uint8
	var shade float64
	switch sh.Kind {
	case scene.MaterialNormal:
		n := sh.ViewNormal
		baseR = clamp255((n[0]*0.5 + 0.5) * 255)
		baseG = clamp255((n[1]*0.5 + 0.5) * 255)
		baseB = clamp255((n[2]*0.5 + 0.5) * 255)
	case scene.MaterialLit:
		shade = sh.Light.ComputeShade(sh.WorldNormal)
		if !hasUV {
			baseR, baseG, baseB = litColor(sh.R, sh.G, sh.B, shade, sh.Light)
		}
	default:
		baseR, baseG, baseB = sh.R, sh.G, sh.B
	}

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	// Pixel loop, sampled at pixel centers
	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			if z < -1 || z > 1 {
				continue
			}
			zIdx := rowOff + sx
			if z >= fb.Depth[zIdx] {
				continue
			}

			cr, cg, cb, ca := baseR, baseG, baseB, sh.A
			switch {
			case sh.Kind == scene.MaterialDepth:
				d := clamp255((1 - (z*0.5 + 0.5)) * 255)
				cr, cg, cb = d, d, d
			case hasUV:
				u := w0*v0.U + w1*v1.U + w2*v2.U
				v := w0*v0.V + w1*v1.V + w2*v2.V
				var tr, tg, tb uint8
				tr, tg, tb, ca = SampleTexture(sh.Tex, u, v)
				cr, cg, cb = litColor(tr, tg, tb, shade, sh.Light)
			}

			// Skip transparent texels
			if ca < 8 {
				continue
			}
			fb.Depth[zIdx] = z

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = cr
			fb.Color[pxIdx+1] = cg
			fb.Color[pxIdx+2] = cb
			fb.Color[pxIdx+3] = 255
		}
	}
}

// litColor applies shading and ACES tone mapping to an sRGB color.
func litColor(r, g, b uint8, shade float64, lc *LightConfig) (uint8, uint8, uint8) {
	// sRGB decode → linear (LUT), shade, tonemap, encode
	tr := ACESTonemap(srgbToLinear[r] * shade * lc.Exposure)
	tg := ACESTonemap(srgbToLinear[g] * shade * lc.Exposure)
	tb := ACESTonemap(srgbToLinear[b] * shade * lc.Exposure)
	return clamp255(math.Pow(tr, lc.InvGamma) * 255),
		clamp255(math.Pow(tg, lc.InvGamma) * 255),
		clamp255(math.Pow(tb, lc.InvGamma) * 255)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
