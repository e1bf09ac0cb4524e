package render

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posecap/internal/mathutil"
	"posecap/internal/raster"
	"posecap/internal/scene"
)

var gray = color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 255}

func testScene(kind scene.MaterialKind) (*scene.Scene, *Camera) {
	sc := scene.New()
	sc.Add(scene.NewMeshNode("box",
		scene.Box(mathutil.Vec3{20, 20, 20}, mathutil.Vec3{}),
		scene.NewColorMaterial(kind, color.NRGBA{R: 220, G: 40, B: 40, A: 255})))
	cam := NewCamera(60, 4.0/3.0, 10, 500)
	cam.Position = mathutil.Vec3{0, 0, 100}
	cam.LookAt(mathutil.Vec3{})
	return sc, cam
}

func TestReadPixelsBeforeRender(t *testing.T) {
	r := New(Surface{Width: 8, Height: 6}, gray)
	_, err := r.ReadPixels()
	assert.ErrorIs(t, err, ErrSurfaceNotReady)
}

func TestRenderClearColor(t *testing.T) {
	r := New(Surface{Width: 8, Height: 6, PixelRatio: 1}, gray)
	r.Render(scene.New(), NewCamera(60, 1, 1, 100))

	img, err := r.ReadPixels()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
	assert.Equal(t, gray, img.NRGBAAt(7, 5))
	assert.Equal(t, 1, r.Frames())

	r.SetClearColor(color.NRGBA{A: 255})
	r.Render(scene.New(), NewCamera(60, 1, 1, 100))
	img2, err := r.ReadPixels()
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{A: 255}, img2.NRGBAAt(0, 0))
	assert.Equal(t, gray, img.NRGBAAt(0, 0), "read back is a copy")
}

func TestRenderZeroSize(t *testing.T) {
	sc, cam := testScene(scene.MaterialBasic)
	r := New(Surface{Width: 8, Height: 6}, gray)
	r.Render(sc, cam)
	_, err := r.ReadPixels()
	require.NoError(t, err)

	r.SetSize(0, 6)
	_, err = r.ReadPixels()
	assert.ErrorIs(t, err, ErrSurfaceNotReady)
	r.Render(sc, cam)
	_, err = r.ReadPixels()
	assert.ErrorIs(t, err, ErrSurfaceNotReady)
}

func TestRenderAntialiasAndPixelRatio(t *testing.T) {
	sc, cam := testScene(scene.MaterialBasic)
	r := New(Surface{Width: 20, Height: 15, PixelRatio: 2}, gray)
	r.Antialias = 2
	r.Render(sc, cam)

	img, err := r.ReadPixels()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
	c := img.NRGBAAt(20, 15)
	assert.Greater(t, c.R, c.G)
}

func TestComposerPasses(t *testing.T) {
	r := New(Surface{Width: 40, Height: 30, PixelRatio: 1}, gray)
	assert.Equal(t, []string{"render", "luminosity", "sobel"}, r.Composer().PassNames())
	assert.False(t, r.ComposerEnabled())
	assert.Equal(t, [2]float64{40, 30}, r.SobelResolution())
}

func TestComposerOutputIsGrayscaleEdges(t *testing.T) {
	sc, cam := testScene(scene.MaterialBasic)
	r := New(Surface{Width: 40, Height: 30, PixelRatio: 1}, gray)
	r.SetComposerEnabled(true)
	r.Render(sc, cam)

	img, err := r.ReadPixels()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())

	edges := 0
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			c := img.NRGBAAt(x, y)
			require.Equal(t, c.R, c.G)
			require.Equal(t, c.R, c.B)
			if c.R > 64 {
				edges++
			}
		}
	}
	assert.Positive(t, edges, "box outline is detected")
	// flat interior and background have no edges
	assert.Less(t, img.NRGBAAt(20, 15).R, uint8(16))
	assert.Less(t, img.NRGBAAt(1, 1).R, uint8(16))
}

func TestSobelResolutionTracksResize(t *testing.T) {
	r := New(Surface{Width: 40, Height: 30, PixelRatio: 1}, gray)
	r.SetSize(100, 50)
	assert.Equal(t, [2]float64{100, 50}, r.SobelResolution())

	r.SetPixelRatio(1.5)
	assert.Equal(t, [2]float64{150, 75}, r.SobelResolution())
	w, h := r.Surface().PixelSize()
	assert.Equal(t, []int{150, 75}, []int{w, h})
	w, h = r.Size()
	assert.Equal(t, []int{100, 50}, []int{w, h})
}

func TestSobelStaleResolution(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	p := &SobelPass{}
	p.SetSize(40, 20, 1)
	out := p.Apply(src)
	assert.Equal(t, src.Bounds(), out.Bounds())
}

func TestDepthTarget(t *testing.T) {
	sc, cam := testScene(scene.MaterialBasic)
	r := New(Surface{Width: 40, Height: 30, PixelRatio: 1}, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	assert.False(t, r.DepthTargetEnabled())

	r.EnableDepthTarget(cam)
	require.True(t, r.DepthTargetEnabled())
	r.Render(sc, cam)
	img, err := r.ReadPixels()
	require.NoError(t, err)

	// empty pixels sit at the far plane and go black
	assert.Equal(t, color.NRGBA{A: 255}, img.NRGBAAt(0, 0))
	assert.Greater(t, img.NRGBAAt(20, 15).R, uint8(0))

	r.DisableDepthTarget()
	assert.False(t, r.DepthTargetEnabled())
}

func TestLinearDepth(t *testing.T) {
	d := &DepthTarget{CameraNear: 10, CameraFar: 500}
	assert.InDelta(t, 0, d.LinearDepth(-1), 1e-9)
	assert.InDelta(t, 1, d.LinearDepth(1), 1e-9)
	assert.Equal(t, 1.0, d.LinearDepth(math.Inf(1)))

	fb := raster.NewFrameBuffer(1, 1)
	fb.Depth[0] = -1
	diffuse := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range diffuse.Pix {
		diffuse.Pix[i] = 200
	}
	out := d.Composite(diffuse, fb)
	assert.Equal(t, color.NRGBA{R: 200, G: 200, B: 200, A: 200}, out.NRGBAAt(1, 1))
}

func TestCameraRay(t *testing.T) {
	cam := NewCamera(90, 2, 1, 100)
	cam.Position = mathutil.Vec3{0, 0, 10}
	cam.LookAt(mathutil.Vec3{})

	center := cam.Ray(0, 0)
	assert.InDelta(t, -1, center.Dir[2], 1e-12)

	// top right corner: tan(45°) = 1, times the aspect horizontally
	corner := cam.Ray(1, 1)
	want := mathutil.Vec3{2, 1, -1}.Normalize()
	for i := range want {
		assert.InDelta(t, want[i], corner.Dir[i], 1e-12)
	}
}
