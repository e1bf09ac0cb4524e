package render

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"

	"posecap/internal/postprocess"
	"posecap/internal/scene"
)

// Pass is one image stage of the post-processing chain.
type Pass interface {
	Name() string
	Apply(src *image.NRGBA) *image.NRGBA
}

// sizer is implemented by passes holding resolution-dependent uniforms.
type sizer interface {
	SetSize(width, height int, pixelRatio float64)
}

// RenderPass is the first stage of a composer: it rasterizes the scene.
type RenderPass struct {
	Scene  *scene.Scene
	Camera *Camera

	draw func(*scene.Scene, *Camera) *image.NRGBA
}

func (p *RenderPass) Name() string { return "render" }

// Render draws the base color image.
func (p *RenderPass) Render() *image.NRGBA {
	return p.draw(p.Scene, p.Camera)
}

// LuminosityPass converts color to grayscale.
type LuminosityPass struct{}

func (LuminosityPass) Name() string { return "luminosity" }

func (LuminosityPass) Apply(src *image.NRGBA) *image.NRGBA {
	return postprocess.ToNRGBA(effect.Grayscale(src))
}

// SobelPass detects edges. Resolution mirrors the shader uniform: it must
// track the output surface in device pixels, otherwise edges are computed
// on a resampled copy at the stale resolution.
type SobelPass struct {
	Resolution [2]float64
}

func (p *SobelPass) Name() string { return "sobel" }

// SetSize updates the resolution uniform from logical size and pixel ratio.
func (p *SobelPass) SetSize(width, height int, pixelRatio float64) {
	p.Resolution = [2]float64{float64(width) * pixelRatio, float64(height) * pixelRatio}
}

func (p *SobelPass) Apply(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	rw := int(math.Round(p.Resolution[0]))
	rh := int(math.Round(p.Resolution[1]))
	if rw <= 0 || rh <= 0 || (rw == b.Dx() && rh == b.Dy()) {
		return postprocess.ToNRGBA(effect.Sobel(src))
	}
	work := postprocess.Resample(src, rw, rh)
	edges := effect.Sobel(work)
	return postprocess.Resample(edges, b.Dx(), b.Dy())
}

// Composer runs a render pass followed by image passes in order.
type Composer struct {
	render *RenderPass
	passes []Pass
}

// newEdgeComposer builds the render → luminosity → Sobel chain.
func newEdgeComposer(draw func(*scene.Scene, *Camera) *image.NRGBA, s Surface) (*Composer, *SobelPass) {
	c := &Composer{render: &RenderPass{draw: draw}}
	c.AddPass(LuminosityPass{})
	sobel := &SobelPass{}
	sobel.SetSize(s.Width, s.Height, s.ratio())
	c.AddPass(sobel)
	return c, sobel
}

// AddPass appends an image pass.
func (c *Composer) AddPass(p Pass) {
	c.passes = append(c.passes, p)
}

// PassNames lists the stages in execution order, the render pass first.
func (c *Composer) PassNames() []string {
	names := []string{c.render.Name()}
	for _, p := range c.passes {
		names = append(names, p.Name())
	}
	return names
}

// SetSize forwards a resize to every resolution-dependent pass.
func (c *Composer) SetSize(width, height int, pixelRatio float64) {
	for _, p := range c.passes {
		if s, ok := p.(sizer); ok {
			s.SetSize(width, height, pixelRatio)
		}
	}
}

// Render runs the chain for one frame.
func (c *Composer) Render(sc *scene.Scene, cam *Camera) *image.NRGBA {
	c.render.Scene = sc
	c.render.Camera = cam
	img := c.render.Render()
	for _, p := range c.passes {
		img = p.Apply(img)
	}
	return img
}
