// Package editor ties the scene, renderer, gizmo, picking and capture
// pipeline together behind the operations a host UI calls.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"posecap/internal/capture"
	"posecap/internal/gizmo"
	"posecap/internal/logx"
	"posecap/internal/mathutil"
	"posecap/internal/picking"
	"posecap/internal/render"
	"posecap/internal/scene"
	"posecap/internal/sink"
)

// ErrNoTemplate is returned by CopyBody before a template body is loaded.
var ErrNoTemplate = errors.New("editor: no template body loaded")

// BodySpacing is the z distance between copied bodies.
const BodySpacing = 30

// Options configures a new Editor.
type Options struct {
	Width      int
	Height     int
	PixelRatio float64
	Antialias  int
	ClearColor color.NRGBA

	FOV  float64
	Near float64
	Far  float64

	MoveMode bool
	Capture  capture.Options
}

// DefaultOptions returns the stock viewport: 800×600 looking at the body
// from (0, 100, 200).
func DefaultOptions() Options {
	return Options{
		Width:      800,
		Height:     600,
		PixelRatio: 1,
		Antialias:  2,
		ClearColor: color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 255},
		FOV:        60,
		Near:       130,
		Far:        600,
	}
}

// Editor is the interactive pose editor. It is single-threaded: every
// method must be called from the goroutine running the loop.
type Editor struct {
	Scene    *scene.Scene
	Camera   *render.Camera
	Renderer *render.Renderer
	Gizmo    *gizmo.Gizmo
	Picker   *picking.Controller
	Pipeline *capture.Pipeline

	Grid *scene.Node
	Axes *scene.Node

	// MoveMode makes clicks grab whole bodies instead of joints.
	MoveMode bool
	// Solver, when set, runs before every frame.
	Solver PoseSolver

	template *scene.Node
	ticking  bool
	stats    Stats
}

// New builds an editor with helpers in place and no bodies.
func New(opts Options) *Editor {
	sc := scene.New()
	grid := scene.NewGrid(800, 40)
	axes := scene.NewAxes(1000)
	sc.Add(grid)
	sc.Add(axes)

	aspect := 1.0
	if opts.Height > 0 {
		aspect = float64(opts.Width) / float64(opts.Height)
	}
	cam := render.NewCamera(opts.FOV, aspect, opts.Near, opts.Far)
	cam.Position = mathutil.Vec3{0, 100, 200}
	cam.LookAt(mathutil.Vec3{0, 100, 0})

	r := render.New(render.Surface{Width: opts.Width, Height: opts.Height, PixelRatio: opts.PixelRatio}, opts.ClearColor)
	r.Antialias = opts.Antialias

	g := gizmo.New()
	e := &Editor{
		Scene:    sc,
		Camera:   cam,
		Renderer: r,
		Gizmo:    g,
		Picker:   &picking.Controller{Scene: sc, Camera: cam, Gizmo: g, Viewport: r},
		Grid:     grid,
		Axes:     axes,
		MoveMode: opts.MoveMode,
	}
	e.Pipeline = capture.New(&capture.RenderContext{
		Scene:    sc,
		Camera:   cam,
		Renderer: r,
		Gizmo:    g,
		Helpers:  []*scene.Node{grid, axes},
	}, opts.Capture)
	return e
}

// LoadBody installs template as the body used by CopyBody and adds a first
// copy to the scene.
func (e *Editor) LoadBody(template *scene.Node) (*scene.Node, error) {
	if template == nil || template.Name != scene.BodyRootName {
		return nil, fmt.Errorf("editor: template root must be named %q", scene.BodyRootName)
	}
	body, err := template.Clone()
	if err != nil {
		return nil, fmt.Errorf("editor: load body: %w", err)
	}
	e.template = template
	e.Scene.Add(body)
	logx.Logger().Info("editor: body loaded", "bodies", len(e.Scene.Bodies()))
	return body, nil
}

// Template returns the loaded template body, or nil.
func (e *Editor) Template() *scene.Node { return e.template }

// CopyBody adds a new body in front of the frontmost centered one. Bodies
// on the x = 0 line are slotted every BodySpacing units along z; the copy
// goes one slot before the lowest occupied slot. With no centered bodies
// the copy keeps the template position.
func (e *Editor) CopyBody() (*scene.Node, error) {
	if e.template == nil {
		return nil, ErrNoTemplate
	}
	body, err := e.template.Clone()
	if err != nil {
		return nil, fmt.Errorf("editor: copy body: %w", err)
	}

	found := false
	minSlot := 0.0
	for _, b := range e.Scene.Bodies() {
		if b.Transform.Position[0] != 0 {
			continue
		}
		slot := math.Ceil(b.Transform.Position[2] / BodySpacing)
		if !found || slot < minSlot {
			minSlot = slot
			found = true
		}
	}
	if found {
		// along the body's own z axis
		dz := (minSlot - 1) * BodySpacing
		offset := body.Transform.Rotation.Rotate(mathutil.Vec3{0, 0, dz})
		body.Transform.Position = body.Transform.Position.Add(offset)
	}

	e.Scene.Add(body)
	logx.Logger().Debug("editor: body copied", "z", body.Transform.Position[2], "bodies", len(e.Scene.Bodies()))
	return body, nil
}

// RemoveBody deletes the body the gizmo is attached to and detaches the
// gizmo. Returns nil when nothing was removed.
func (e *Editor) RemoveBody() *scene.Node {
	obj := e.Gizmo.Object()
	if obj == nil {
		return nil
	}
	body := scene.BodyRoot(obj)
	if body == nil {
		return nil
	}
	body.RemoveFromParent()
	e.Gizmo.Detach()
	logx.Logger().Debug("editor: body removed", "bodies", len(e.Scene.Bodies()))
	return body
}

// Resize updates the camera aspect, the surface and the composer resolution.
func (e *Editor) Resize(width, height int) {
	if height > 0 {
		e.Camera.Aspect = float64(width) / float64(height)
	}
	e.Renderer.SetSize(width, height)
}

// Width returns the logical viewport width.
func (e *Editor) Width() int {
	w, _ := e.Renderer.Size()
	return w
}

// Height returns the logical viewport height.
func (e *Editor) Height() int {
	_, h := e.Renderer.Size()
	return h
}

func (e *Editor) CameraNear() float64 { return e.Camera.Near }

func (e *Editor) SetCameraNear(v float64) { e.Camera.Near = v }

func (e *Editor) CameraFar() float64 { return e.Camera.Far }

func (e *Editor) SetCameraFar(v float64) { e.Camera.Far = v }

// PointerDown, PointerMove and PointerUp feed viewport pointer events.
func (e *Editor) PointerDown() { e.Picker.PointerDown() }

func (e *Editor) PointerMove() { e.Picker.PointerMove() }

func (e *Editor) PointerUp(x, y float64) (picking.Result, bool) {
	return e.Picker.PointerUp(x, y, e.MoveMode)
}

// Tick advances the solver and renders one frame. A tick requested while
// another is running is dropped.
func (e *Editor) Tick() {
	if e.ticking {
		return
	}
	e.ticking = true
	defer func() { e.ticking = false }()

	start := time.Now()
	if e.Solver != nil {
		e.Solver.Update()
	}
	e.Renderer.Render(e.Scene, e.Camera)

	e.stats.LastFrame = time.Since(start)
	e.stats.Total += e.stats.LastFrame
	e.stats.Frames++
}

// Run drives Tick from s until ctx is done.
func (e *Editor) Run(ctx context.Context, s Scheduler) error {
	return s.Run(ctx, e.Tick)
}

// Stats returns the frame counters.
func (e *Editor) Stats() Stats { return e.stats }

// Capture renders a single export image.
func (e *Editor) Capture(mode capture.Mode) (capture.Result, error) {
	return e.Pipeline.Capture(mode)
}

// MakeImages exports pose, depth, normal and canny images to s.
func (e *Editor) MakeImages(s sink.Sink) ([]capture.Result, error) {
	return e.Pipeline.MakeImages(s)
}
