// Package capture renders the export images of a scene. Every capture
// temporarily mutates the shared scene and renderer state and restores it
// before returning, on success and failure alike.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"posecap/internal/gizmo"
	"posecap/internal/logx"
	"posecap/internal/render"
	"posecap/internal/scene"
	"posecap/internal/sink"
)

// ErrCaptureInProgress is returned when a capture is started while another
// one has not restored the scene yet.
var ErrCaptureInProgress = errors.New("capture: capture already in progress")

// Surface is the renderer state a capture mutates and reads back.
// *render.Renderer implements it.
type Surface interface {
	Render(sc *scene.Scene, cam *render.Camera)
	ReadPixels() (*image.NRGBA, error)
	ClearColor() color.NRGBA
	SetClearColor(c color.NRGBA)
	ComposerEnabled() bool
	SetComposerEnabled(enable bool)
}

// RenderContext is the shared state captures operate on.
type RenderContext struct {
	Scene    *scene.Scene
	Camera   *render.Camera
	Renderer Surface
	Gizmo    *gizmo.Gizmo
	// Helpers are overlays (grid, axes) hidden in every export.
	Helpers []*scene.Node
}

// Options tune the pipeline.
type Options struct {
	// ExactMaterialRestore puts the original skin material instances back
	// after depth and normal captures instead of fresh materials of the
	// prior kind.
	ExactMaterialRestore bool
	// Clock returns the timestamp used in file names. Defaults to Timestamp.
	Clock func() string
	// Encode turns frames into sink bytes. Defaults to PNG.
	Encode sink.Encoder
}

// Result is one captured export image.
type Result struct {
	Mode     Mode
	Image    *image.NRGBA
	FileName string
}

// Pipeline captures export images from a RenderContext.
type Pipeline struct {
	ctx  *RenderContext
	opts Options
	busy bool
}

// Timestamp formats the current local time for file names.
func Timestamp() string {
	return time.Now().Format("2006_01_02_15_04_05")
}

// New returns a pipeline over ctx.
func New(ctx *RenderContext, opts Options) *Pipeline {
	if opts.Clock == nil {
		opts.Clock = Timestamp
	}
	if opts.Encode == nil {
		opts.Encode = sink.EncodePNG
	}
	return &Pipeline{ctx: ctx, opts: opts}
}

// Busy reports whether a capture is between setup and restore.
func (p *Pipeline) Busy() bool { return p.busy }

// Capture renders one export image for mode. The scene, renderer and gizmo
// are left exactly as they were before the call, including when rendering
// or read-back fails or panics.
func (p *Pipeline) Capture(mode Mode) (Result, error) {
	if p.busy {
		return Result{}, ErrCaptureInProgress
	}
	p.busy = true
	defer func() { p.busy = false }()

	var undo undoStack
	defer undo.unwind()

	ctx := p.ctx
	log := logx.Logger().With("mode", mode.String())

	undo.push(detachGizmo(ctx.Gizmo))
	undo.push(setVisible(ctx.Helpers, false))
	undo.push(setClearColor(ctx.Renderer, color.NRGBA{A: 255}))
	if err := p.prepare(mode, &undo); err != nil {
		return Result{}, err
	}
	log.Debug("capture: scene prepared", "restoreSteps", undo.len())

	ctx.Renderer.Render(ctx.Scene, ctx.Camera)
	img, err := ctx.Renderer.ReadPixels()
	if err != nil {
		return Result{}, fmt.Errorf("capture: read back %s: %w", mode, err)
	}

	res := Result{Mode: mode, Image: img, FileName: mode.String() + "_" + p.opts.Clock()}
	log.Debug("capture: frame read back", "file", res.FileName, "bounds", img.Bounds().String())
	return res, nil
}

// prepare applies the mode-specific mutations.
func (p *Pipeline) prepare(mode Mode, undo *undoStack) error {
	sc := p.ctx.Scene
	r := p.ctx.Renderer
	switch mode {
	case ModePose:
		undo.push(setVisible(sc.SkinPatches(), false))
	case ModeDepth, ModeNormal:
		kind := scene.MaterialDepth
		if mode == ModeNormal {
			kind = scene.MaterialNormal
		}
		undo.push(swapMaterial(sc.SkinPatches(), kind, p.opts.ExactMaterialRestore))
		undo.push(detachSkins(sc).Restore)
		undo.push(setComposer(r, false))
	case ModeCanny:
		undo.push(detachSkins(sc).Restore)
		undo.push(setComposer(r, true))
	default:
		return fmt.Errorf("capture: unknown mode %s", mode)
	}
	return nil
}

// MakeImages captures Pose, Depth, Normal and Canny in that order and hands
// each encoded image to s. A failing mode is reported in the joined error
// and the export moves on to the next one. The successful results are
// returned in order.
func (p *Pipeline) MakeImages(s sink.Sink) ([]Result, error) {
	var (
		results []Result
		errs    []error
	)
	for _, mode := range Modes {
		res, err := p.Capture(mode)
		if err == nil {
			err = p.deliver(s, res)
		}
		if err != nil {
			logx.Logger().Warn("capture: mode failed", "mode", mode.String(), "err", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func (p *Pipeline) deliver(s sink.Sink, res Result) error {
	data, err := p.opts.Encode(res.Image)
	if err != nil {
		return fmt.Errorf("capture: encode %s: %w", res.Mode, err)
	}
	if err := s.SetScreenShot(res.Mode.String(), data, res.FileName); err != nil {
		return fmt.Errorf("capture: deliver %s: %w", res.Mode, err)
	}
	return nil
}
