package render

import (
	"errors"
	"image"
	"image/color"
	"math"

	"posecap/internal/logx"
	"posecap/internal/postprocess"
	"posecap/internal/raster"
	"posecap/internal/scene"
)

// ErrSurfaceNotReady is returned by ReadPixels before the first frame or
// while the surface has no pixels.
var ErrSurfaceNotReady = errors.New("render: surface not ready")

// Surface is the output viewport: logical size plus device pixel ratio.
type Surface struct {
	Width      int
	Height     int
	PixelRatio float64
}

func (s Surface) ratio() float64 {
	if s.PixelRatio <= 0 {
		return 1
	}
	return s.PixelRatio
}

// PixelSize returns the surface size in device pixels.
func (s Surface) PixelSize() (int, int) {
	r := s.ratio()
	return int(math.Round(float64(s.Width) * r)), int(math.Round(float64(s.Height) * r))
}

// Renderer draws a scene either directly or through the edge composer.
// It is not safe for concurrent use; frames are rendered one at a time.
type Renderer struct {
	// Antialias is the supersampling factor; values below 2 disable it.
	Antialias int
	Light     raster.LightConfig

	surface        Surface
	clearColor     color.NRGBA
	enableComposer bool

	composer *Composer
	sobel    *SobelPass
	depth    *DepthTarget

	frame     *image.NRGBA
	lastDepth *raster.FrameBuffer
	frames    int
}

// New returns a renderer for the surface with the edge composer initialized
// and disabled.
func New(s Surface, clearColor color.NRGBA) *Renderer {
	r := &Renderer{
		Light:      raster.DefaultLightConfig(),
		surface:    s,
		clearColor: clearColor,
	}
	r.composer, r.sobel = newEdgeComposer(r.drawBase, s)
	return r
}

func (r *Renderer) ClearColor() color.NRGBA { return r.clearColor }

func (r *Renderer) SetClearColor(c color.NRGBA) { r.clearColor = c }

func (r *Renderer) ComposerEnabled() bool { return r.enableComposer }

func (r *Renderer) SetComposerEnabled(enable bool) { r.enableComposer = enable }

// Composer returns the edge-detection chain.
func (r *Renderer) Composer() *Composer { return r.composer }

// SobelResolution returns the current edge-detection resolution uniform.
func (r *Renderer) SobelResolution() [2]float64 { return r.sobel.Resolution }

// Surface returns the current output surface.
func (r *Renderer) Surface() Surface { return r.surface }

// Size returns the logical surface size.
func (r *Renderer) Size() (int, int) { return r.surface.Width, r.surface.Height }

// SetSize resizes the surface and keeps the composer resolution in sync.
// The previous frame is discarded.
func (r *Renderer) SetSize(width, height int) {
	r.surface.Width = width
	r.surface.Height = height
	r.frame = nil
	r.composer.SetSize(width, height, r.surface.ratio())
}

// SetPixelRatio changes the device pixel ratio and resyncs the composer.
func (r *Renderer) SetPixelRatio(ratio float64) {
	r.surface.PixelRatio = ratio
	r.SetSize(r.surface.Width, r.surface.Height)
}

// Frames returns the number of frames rendered so far.
func (r *Renderer) Frames() int { return r.frames }

// Render draws one frame of sc through cam and keeps it as the surface contents.
func (r *Renderer) Render(sc *scene.Scene, cam *Camera) {
	pw, ph := r.surface.PixelSize()
	if pw <= 0 || ph <= 0 {
		r.frame = nil
		return
	}

	var img *image.NRGBA
	if r.enableComposer {
		img = r.composer.Render(sc, cam)
	} else {
		img = r.drawBase(sc, cam)
	}

	if r.depth != nil && r.lastDepth != nil {
		img = r.depth.Composite(img, r.lastDepth)
	}

	r.frame = img
	r.frames++
}

// drawBase rasterizes the scene at device resolution, supersampled when
// Antialias is set.
func (r *Renderer) drawBase(sc *scene.Scene, cam *Camera) *image.NRGBA {
	pw, ph := r.surface.PixelSize()
	ss := r.Antialias
	if ss < 1 {
		ss = 1
	}

	fb := raster.NewFrameBuffer(pw*ss, ph*ss)
	fb.Clear(r.clearColor)
	tris := raster.DrawScene(fb, sc.Root, cam.View(), &r.Light)
	logx.Logger().Debug("render: frame drawn", "triangles", tris, "width", fb.Width, "height", fb.Height, "composer", r.enableComposer)

	r.lastDepth = fb
	img := fb.Image()
	if ss > 1 {
		img = postprocess.Downsample(img, pw, ph)
	}
	return img
}

// ReadPixels returns a copy of the last rendered frame.
func (r *Renderer) ReadPixels() (*image.NRGBA, error) {
	pw, ph := r.surface.PixelSize()
	if r.frame == nil || pw <= 0 || ph <= 0 {
		return nil, ErrSurfaceNotReady
	}
	out := image.NewNRGBA(r.frame.Rect)
	copy(out.Pix, r.frame.Pix)
	return out, nil
}
