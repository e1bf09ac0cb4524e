package render

import (
	"image"
	"math"

	"posecap/internal/raster"
)

// DepthTarget is the auxiliary depth-texture wiring. When engaged, the
// final frame is composited from the diffuse output and the linearized depth
// buffer. It is off unless EnableDepthTarget is called and no capture mode
// relies on it.
type DepthTarget struct {
	// Uniforms, copied from the camera when the target is set up.
	CameraNear float64
	CameraFar  float64
}

// EnableDepthTarget engages the depth target using cam's current planes.
func (r *Renderer) EnableDepthTarget(cam *Camera) {
	r.depth = &DepthTarget{CameraNear: cam.Near, CameraFar: cam.Far}
}

// DisableDepthTarget disengages the depth target.
func (r *Renderer) DisableDepthTarget() {
	r.depth = nil
}

// DepthTargetEnabled reports whether the depth target is engaged.
func (r *Renderer) DepthTargetEnabled() bool { return r.depth != nil }

// LinearDepth maps an NDC depth to [0, 1] between the near and far planes.
// Empty pixels (+inf) map to 1.
func (t *DepthTarget) LinearDepth(ndc float64) float64 {
	if math.IsInf(ndc, 0) || math.IsNaN(ndc) {
		return 1
	}
	n, f := t.CameraNear, t.CameraFar
	viewZ := 2 * n * f / (f + n - ndc*(f-n))
	d := (viewZ - n) / (f - n)
	return math.Max(0, math.Min(1, d))
}

// Composite darkens the diffuse image by depth, sampling the depth buffer
// with nearest filtering when its resolution differs.
func (t *DepthTarget) Composite(diffuse *image.NRGBA, depth *raster.FrameBuffer) *image.NRGBA {
	b := diffuse.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 || depth.Width == 0 || depth.Height == 0 {
		return out
	}
	for y := 0; y < h; y++ {
		dy := y * depth.Height / h
		for x := 0; x < w; x++ {
			dx := x * depth.Width / w
			k := 1 - t.LinearDepth(depth.Depth[dy*depth.Width+dx])
			si := diffuse.PixOffset(x+b.Min.X, y+b.Min.Y)
			di := out.PixOffset(x, y)
			out.Pix[di] = uint8(float64(diffuse.Pix[si])*k + 0.5)
			out.Pix[di+1] = uint8(float64(diffuse.Pix[si+1])*k + 0.5)
			out.Pix[di+2] = uint8(float64(diffuse.Pix[si+2])*k + 0.5)
			out.Pix[di+3] = diffuse.Pix[si+3]
		}
	}
	return out
}
