package editor

import (
	"context"
	"time"
)

// PoseSolver advances procedural posing (IK) once per frame.
type PoseSolver interface {
	Update()
}

// Scheduler drives the render loop, calling tick once per frame until ctx
// is done.
type Scheduler interface {
	Run(ctx context.Context, tick func()) error
}

// TickerScheduler fires frames at a fixed interval.
type TickerScheduler struct {
	Interval time.Duration
}

// Run ticks until ctx is canceled and returns ctx.Err().
func (s TickerScheduler) Run(ctx context.Context, tick func()) error {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second / 60
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			tick()
		}
	}
}

// Stats counts frames the way an FPS panel would.
type Stats struct {
	Frames    int
	LastFrame time.Duration
	Total     time.Duration
}

// Average returns the mean frame time.
func (s Stats) Average() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Frames)
}
