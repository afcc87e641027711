package fractal

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"
)

var ErrInterval = errors.New("frame interval must be positive")

// Loop redraws the bulb on every tick until its context is cancelled.
// Every frame is a full re-evaluation of the latest params snapshot.
type Loop struct {
	// Interval between ticks. Frames that take longer delay the next tick.
	Interval time.Duration

	// Present receives each finished frame. The frame is not reused by the
	// loop. An error stops the loop.
	Present func(frame *image.RGBA) error

	params atomic.Pointer[Params]
	frames atomic.Uint64
}

// NewLoop returns a loop presenting frames of p every interval.
func NewLoop(p Params, interval time.Duration, present func(*image.RGBA) error) *Loop {
	l := &Loop{Interval: interval, Present: present}
	l.SetParams(p)
	return l
}

// SetParams replaces the snapshot used by the next frame. Safe to call while Run is active.
func (l *Loop) SetParams(p Params) {
	l.params.Store(&p)
}

// Params returns the current snapshot.
func (l *Loop) Params() Params {
	return *l.params.Load()
}

// Frames returns the number of frames presented so far.
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

// Run draws a frame immediately and then on every tick. It returns nil once
// ctx is cancelled and the error of Present otherwise. A non-positive
// Interval fails with ErrInterval before any frame is drawn.
func (l *Loop) Run(ctx context.Context) error {
	if l.Interval <= 0 {
		return fmt.Errorf("%w: %v", ErrInterval, l.Interval)
	}
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	log := Logger()
	log.Info("frame loop started", "interval", l.Interval)
	defer func() { log.Info("frame loop stopped", "frames", l.Frames()) }()

	for {
		if err := l.tick(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (l *Loop) tick(ctx context.Context) error {
	p := l.Params()
	start := time.Now()
	frame := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	RenderFrame(p, frame)

	// A frame finished after cancellation is dropped.
	if ctx.Err() != nil {
		return nil
	}
	if err := l.Present(frame); err != nil {
		return fmt.Errorf("present frame %d: %w", l.Frames(), err)
	}
	l.frames.Add(1)
	Logger().Debug("frame presented", "elapsed", time.Since(start))
	return nil
}
