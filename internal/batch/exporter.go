// Package batch exports many pose presets concurrently. Every preset gets
// its own editor, so workers share nothing but the read-only template body.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"posecap/internal/editor"
	"posecap/internal/logx"
	"posecap/internal/pose"
	"posecap/internal/scene"
	"posecap/internal/sink"
)

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir string
	Format    sink.Format
	Template  *scene.Node
	Options   editor.Options
	// Bodies is the minimum number of bodies in every scene. Presets that
	// describe more bodies get more.
	Bodies  int
	Workers int
	// Progress is the reporting interval. Defaults to two seconds.
	Progress time.Duration
}

// Result holds the outcome of exporting one pose.
type Result struct {
	Name    string
	Dir     string
	Images  []sink.ManifestEntry
	Success bool
	Error   string
}

// Run exports every pose using a worker pool. Results keep the input order.
// Poses not started before ctx is done are reported as failed.
func Run(ctx context.Context, cfg Config, poses []pose.Pose) []Result {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Progress <= 0 {
		cfg.Progress = 2 * time.Second
	}
	total := len(poses)
	results := make([]Result, total)
	dirs := uniqueDirs(poses)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Progress)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					logx.Logger().Info("batch: progress", "done", p, "total", total, "poses_per_sec", rate)
				}
			}
		}
	}()

	// Worker pool
	poseChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range poseChan {
				results[idx] = exportPose(ctx, cfg, poses[idx], dirs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range poses {
		poseChan <- i
	}
	close(poseChan)

	wg.Wait()
	close(done)

	return results
}

func exportPose(ctx context.Context, cfg Config, p pose.Pose, dir string) Result {
	res := Result{Name: p.Name, Dir: dir}
	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}

	enc, err := sink.EncoderFor(cfg.Format)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	opts := cfg.Options
	opts.Capture.Encode = enc

	ed := editor.New(opts)
	if _, err := ed.LoadBody(cfg.Template); err != nil {
		res.Error = err.Error()
		return res
	}
	for len(ed.Scene.Bodies()) < max(cfg.Bodies, len(p.Bodies)) {
		if _, err := ed.CopyBody(); err != nil {
			res.Error = err.Error()
			return res
		}
	}
	if err := p.Apply(ed.Scene); err != nil {
		res.Error = err.Error()
		return res
	}
	ed.Tick()

	out, err := sink.NewDirSink(filepath.Join(cfg.OutputDir, res.Dir), cfg.Format)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	_, exportErr := ed.MakeImages(out)
	res.Images = out.Entries()
	if _, err := out.WriteManifest(); err != nil {
		res.Error = err.Error()
		return res
	}
	if exportErr != nil {
		res.Error = fmt.Sprintf("export: %v", exportErr)
		return res
	}

	res.Success = true
	logx.Logger().Info("batch: pose exported", "pose", p.Name, "images", len(res.Images))
	return res
}

// uniqueDirs assigns every pose its own sub-directory. Repeated names get
// _2, _3 and so on, in input order. Names differing only in case collide.
func uniqueDirs(poses []pose.Pose) []string {
	dirs := make([]string, len(poses))
	used := make(map[string]bool, len(poses))
	for i, p := range poses {
		base := DirName(p.Name)
		dir := base
		for n := 2; used[strings.ToLower(dir)]; n++ {
			dir = fmt.Sprintf("%s_%d", base, n)
		}
		used[strings.ToLower(dir)] = true
		dirs[i] = dir
	}
	return dirs
}

// DirName maps a pose name to its output sub-directory.
func DirName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "pose"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}
