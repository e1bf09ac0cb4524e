package raster

import (
	"image"
	"image/color"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	Depth  []float64 // NDC depth per pixel, len = W*H, smaller is closer
}

// NewFrameBuffer allocates a transparent color buffer and a +inf depth buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	n := w * h
	depth := make([]float64, n)
	for i := range depth {
		depth[i] = math.Inf(1)
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, n*4),
		Depth:  depth,
	}
}

// Clear fills the color buffer with c (fully opaque) and resets depth.
func (fb *FrameBuffer) Clear(c color.NRGBA) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i] = c.R
		fb.Color[i+1] = c.G
		fb.Color[i+2] = c.B
		fb.Color[i+3] = 255
	}
	for i := range fb.Depth {
		fb.Depth[i] = math.Inf(1)
	}
}

// Image copies the color buffer into a new NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}
