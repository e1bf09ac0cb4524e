package capture

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posecap/internal/gizmo"
	"posecap/internal/mathutil"
	"posecap/internal/render"
	"posecap/internal/rig"
	"posecap/internal/scene"
	"posecap/internal/sink"
)

var clearGray = color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 255}

type fixture struct {
	ctx      *RenderContext
	renderer *render.Renderer
	body     *scene.Node
	patch    *scene.Node
	elbow    *scene.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sc := scene.New()
	body, err := rig.Build(rig.DefaultDefinition(), nil)
	require.NoError(t, err)
	sc.Add(body)

	grid := scene.NewGrid(800, 8)
	axes := scene.NewAxes(1000)
	sc.Add(grid)
	sc.Add(axes)

	cam := render.NewCamera(60, 4.0/3.0, 130, 600)
	cam.Position = mathutil.Vec3{0, 100, 200}
	cam.LookAt(mathutil.Vec3{0, 100, 0})

	r := render.New(render.Surface{Width: 40, Height: 30, PixelRatio: 1}, clearGray)
	g := gizmo.New()

	f := &fixture{
		ctx: &RenderContext{
			Scene:    sc,
			Camera:   cam,
			Renderer: r,
			Gizmo:    g,
			Helpers:  []*scene.Node{grid, axes},
		},
		renderer: r,
		body:     body,
	}
	body.Traverse(func(n *scene.Node) {
		switch {
		case n.Name == scene.SkinPatchName:
			f.patch = n
		case n.Name == "right_elbow" && n.Mesh == nil:
			f.elbow = n
		}
	})
	require.NotNil(t, f.patch)
	require.NotNil(t, f.elbow)

	// a posed elbow makes any transform drift visible
	f.elbow.Transform.Rotation = mathutil.EulerToQuat(0.4, 0.2, -0.7)
	g.SetMode(gizmo.Rotate)
	g.Attach(f.elbow)
	return f
}

func fixedClock() string { return "2024_01_02_03_04_05" }

func TestCaptureRestoresScene(t *testing.T) {
	for _, mode := range Modes {
		t.Run(mode.String(), func(t *testing.T) {
			f := newFixture(t)
			before := f.ctx.Scene.TakeSnapshot()
			p := New(f.ctx, Options{Clock: fixedClock})

			res, err := p.Capture(mode)
			require.NoError(t, err)
			require.NotNil(t, res.Image)
			assert.Equal(t, image.Rect(0, 0, 40, 30), res.Image.Bounds())
			assert.Equal(t, mode.String()+"_2024_01_02_03_04_05", res.FileName)

			assert.Equal(t, before, f.ctx.Scene.TakeSnapshot())
			assert.Same(t, f.elbow, f.patch.Parent)
			assert.Equal(t, clearGray, f.renderer.ClearColor())
			assert.False(t, f.renderer.ComposerEnabled())
			assert.Same(t, f.elbow, f.ctx.Gizmo.Object())
			assert.Equal(t, gizmo.Rotate, f.ctx.Gizmo.Mode())
			assert.False(t, p.Busy())
		})
	}
}

func TestCaptureIsRepeatable(t *testing.T) {
	f := newFixture(t)
	before := f.ctx.Scene.TakeSnapshot()
	p := New(f.ctx, Options{Clock: fixedClock})

	first, err := p.Capture(ModeDepth)
	require.NoError(t, err)
	second, err := p.Capture(ModeDepth)
	require.NoError(t, err)

	assert.Equal(t, first.Image.Pix, second.Image.Pix)
	assert.Equal(t, before, f.ctx.Scene.TakeSnapshot())
}

func TestCaptureClearsToBlack(t *testing.T) {
	f := newFixture(t)
	f.body.Visible = false
	p := New(f.ctx, Options{})

	res, err := p.Capture(ModePose)
	require.NoError(t, err)
	for i := 0; i < len(res.Image.Pix); i += 4 {
		require.Equal(t, []uint8{0, 0, 0, 255}, res.Image.Pix[i:i+4])
	}
	assert.False(t, f.body.Visible)
}

func TestCaptureHidesSkinInPose(t *testing.T) {
	f := newFixture(t)
	var seen bool
	f.ctx.Renderer = &hookSurface{Surface: f.renderer, onRender: func() {
		seen = true
		assert.False(t, f.patch.Visible)
		assert.Same(t, f.elbow, f.patch.Parent)
		assert.Nil(t, f.ctx.Gizmo.Object())
		for _, h := range f.ctx.Helpers {
			assert.False(t, h.Visible)
		}
	}}
	_, err := New(f.ctx, Options{}).Capture(ModePose)
	require.NoError(t, err)
	assert.True(t, seen)
	assert.True(t, f.patch.Visible)
}

func TestCaptureDetachesSkin(t *testing.T) {
	for _, tc := range []struct {
		mode     Mode
		kind     scene.MaterialKind
		composer bool
	}{
		{ModeDepth, scene.MaterialDepth, false},
		{ModeNormal, scene.MaterialNormal, false},
		{ModeCanny, scene.MaterialDepth, true},
	} {
		t.Run(tc.mode.String(), func(t *testing.T) {
			f := newFixture(t)
			f.renderer.SetComposerEnabled(!tc.composer)
			world := f.patch.WorldMatrix()

			var seen bool
			f.ctx.Renderer = &hookSurface{Surface: f.renderer, onRender: func() {
				seen = true
				assert.Same(t, f.ctx.Scene.Root, f.patch.Parent)
				assert.True(t, f.patch.Visible)
				assert.False(t, f.body.Visible)
				assert.Equal(t, tc.kind, f.patch.Material.Kind)
				assert.Equal(t, tc.composer, f.renderer.ComposerEnabled())
				got := f.patch.WorldMatrix()
				for i := range got {
					assert.InDelta(t, world[i], got[i], 1e-9)
				}
			}}
			_, err := New(f.ctx, Options{}).Capture(tc.mode)
			require.NoError(t, err)
			assert.True(t, seen)
			assert.Same(t, f.elbow, f.patch.Parent)
			assert.True(t, f.body.Visible)
			assert.Equal(t, !tc.composer, f.renderer.ComposerEnabled())
		})
	}
}

func TestCaptureReadBackFailureRestores(t *testing.T) {
	f := newFixture(t)
	before := f.ctx.Scene.TakeSnapshot()
	f.ctx.Renderer = &hookSurface{Surface: f.renderer, readErr: render.ErrSurfaceNotReady}
	p := New(f.ctx, Options{})

	_, err := p.Capture(ModeCanny)
	require.Error(t, err)
	assert.ErrorIs(t, err, render.ErrSurfaceNotReady)

	assert.Equal(t, before, f.ctx.Scene.TakeSnapshot())
	assert.Equal(t, clearGray, f.renderer.ClearColor())
	assert.False(t, f.renderer.ComposerEnabled())
	assert.Same(t, f.elbow, f.ctx.Gizmo.Object())
	assert.False(t, p.Busy())
}

func TestCaptureZeroSizeSurface(t *testing.T) {
	f := newFixture(t)
	f.renderer.SetSize(0, 0)
	before := f.ctx.Scene.TakeSnapshot()

	_, err := New(f.ctx, Options{}).Capture(ModeNormal)
	assert.ErrorIs(t, err, render.ErrSurfaceNotReady)
	assert.Equal(t, before, f.ctx.Scene.TakeSnapshot())
}

func TestCapturePanicRestores(t *testing.T) {
	f := newFixture(t)
	before := f.ctx.Scene.TakeSnapshot()
	f.ctx.Renderer = &hookSurface{Surface: f.renderer, onRender: func() { panic("device lost") }}
	p := New(f.ctx, Options{})

	assert.PanicsWithValue(t, "device lost", func() { _, _ = p.Capture(ModeDepth) })
	assert.Equal(t, before, f.ctx.Scene.TakeSnapshot())
	assert.Equal(t, clearGray, f.renderer.ClearColor())
	assert.False(t, p.Busy())
}

func TestCaptureRejectsReentry(t *testing.T) {
	f := newFixture(t)
	p := New(f.ctx, Options{})
	var inner error
	f.ctx.Renderer = &hookSurface{Surface: f.renderer, onRender: func() {
		assert.True(t, p.Busy())
		_, inner = p.Capture(ModePose)
	}}

	_, err := p.Capture(ModeDepth)
	require.NoError(t, err)
	assert.ErrorIs(t, inner, ErrCaptureInProgress)
}

func TestCaptureUnknownMode(t *testing.T) {
	f := newFixture(t)
	before := f.ctx.Scene.TakeSnapshot()
	_, err := New(f.ctx, Options{}).Capture(Mode(9))
	assert.ErrorContains(t, err, "unknown mode")
	assert.Equal(t, before, f.ctx.Scene.TakeSnapshot())
	assert.Same(t, f.elbow, f.ctx.Gizmo.Object())
}

func TestCaptureWithoutGizmoTarget(t *testing.T) {
	f := newFixture(t)
	f.ctx.Gizmo.Detach()
	_, err := New(f.ctx, Options{}).Capture(ModePose)
	require.NoError(t, err)
	assert.Nil(t, f.ctx.Gizmo.Object())
}

func TestMaterialRestoreByKind(t *testing.T) {
	f := newFixture(t)
	custom := scene.NewColorMaterial(scene.MaterialLit, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	f.patch.Material = custom

	_, err := New(f.ctx, Options{}).Capture(ModeNormal)
	require.NoError(t, err)
	assert.NotSame(t, custom, f.patch.Material)
	assert.Equal(t, scene.MaterialLit, f.patch.Material.Kind)
	assert.NotEqual(t, custom.Color, f.patch.Material.Color)
}

func TestMaterialRestoreExact(t *testing.T) {
	f := newFixture(t)
	custom := scene.NewColorMaterial(scene.MaterialLit, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	f.patch.Material = custom

	_, err := New(f.ctx, Options{ExactMaterialRestore: true}).Capture(ModeDepth)
	require.NoError(t, err)
	assert.Same(t, custom, f.patch.Material)
}

func TestCaptureStateConsumed(t *testing.T) {
	f := newFixture(t)
	before := f.ctx.Scene.TakeSnapshot()

	st := detachSkins(f.ctx.Scene)
	assert.Equal(t, 1, st.Len())
	assert.Same(t, f.ctx.Scene.Root, f.patch.Parent)
	assert.Empty(t, f.ctx.Scene.SkinPatches(), "detached patches are outside every body")

	st.Restore()
	assert.Equal(t, 0, st.Len())
	assert.Equal(t, before, f.ctx.Scene.TakeSnapshot())

	// a second restore must not move anything
	f.ctx.Scene.Attach(f.patch)
	st.Restore()
	assert.Same(t, f.ctx.Scene.Root, f.patch.Parent)
}

func TestCaptureStateKeepsSiblingOrder(t *testing.T) {
	f := newFixture(t)
	marker := scene.NewNode("marker")
	f.elbow.Add(marker)
	idx := f.patch.Index()

	st := detachSkins(f.ctx.Scene)
	st.Restore()
	assert.Equal(t, idx, f.patch.Index())
	assert.Same(t, marker, f.elbow.Children[len(f.elbow.Children)-1])
}

func TestMakeImages(t *testing.T) {
	f := newFixture(t)
	before := f.ctx.Scene.TakeSnapshot()
	var mem sink.MemorySink
	p := New(f.ctx, Options{Clock: fixedClock})

	results, err := p.MakeImages(&mem)
	require.NoError(t, err)
	require.Len(t, results, 4)
	require.Len(t, mem.Shots, 4)

	for i, want := range []string{"pose", "depth", "normal", "canny"} {
		assert.Equal(t, want, mem.Shots[i].Mode)
		assert.True(t, strings.HasPrefix(mem.Shots[i].FileName, want+"_"))
		assert.Equal(t, results[i].FileName, mem.Shots[i].FileName)
		assert.NotEmpty(t, mem.Shots[i].Data)
	}
	assert.Equal(t, before, f.ctx.Scene.TakeSnapshot())
	assert.Equal(t, clearGray, f.renderer.ClearColor())
	assert.Same(t, f.elbow, f.ctx.Gizmo.Object())
}

func TestMakeImagesContinuesAfterFailure(t *testing.T) {
	f := newFixture(t)
	s := &failingSink{fail: "depth"}

	results, err := New(f.ctx, Options{}).MakeImages(s)
	require.Error(t, err)
	assert.ErrorContains(t, err, "deliver depth")
	assert.Len(t, results, 3)
	assert.Equal(t, []string{"pose", "normal", "canny"}, s.modes)
}

func TestMakeImagesEncodeFailure(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")
	var mem sink.MemorySink
	p := New(f.ctx, Options{Encode: func(image.Image) ([]byte, error) { return nil, boom }})

	results, err := p.MakeImages(&mem)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, results)
	assert.Empty(t, mem.Shots)
}

func TestUndoStackOrder(t *testing.T) {
	var got []int
	var u undoStack
	u.push(func() { got = append(got, 1) })
	u.push(nil)
	u.push(func() { panic("restore failed") })
	u.push(func() { got = append(got, 3) })
	assert.Equal(t, 3, u.len())

	u.unwind()
	assert.Equal(t, []int{3, 1}, got)
	assert.Equal(t, 0, u.len())
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(strings.ToUpper(m.String()))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("sketch")
	assert.Error(t, err)
}

// hookSurface wraps a renderer to observe or break a capture mid-flight.
type hookSurface struct {
	Surface
	onRender func()
	readErr  error
}

func (h *hookSurface) Render(sc *scene.Scene, cam *render.Camera) {
	if h.onRender != nil {
		h.onRender()
	}
	h.Surface.Render(sc, cam)
}

func (h *hookSurface) ReadPixels() (*image.NRGBA, error) {
	if h.readErr != nil {
		return nil, h.readErr
	}
	return h.Surface.ReadPixels()
}

type failingSink struct {
	fail  string
	modes []string
}

func (s *failingSink) SetScreenShot(mode string, data []byte, fileName string) error {
	if mode == s.fail {
		return errors.New("disk full")
	}
	s.modes = append(s.modes, mode)
	return nil
}
