package fractal

import (
	"bytes"
	"context"
	"errors"
	"image"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func farBulb(w, h int) Params {
	p := DefaultParams(KindMandelbulb)
	p.Width, p.Height = w, h
	p.CameraDistance = 1000
	return p
}

func TestLoopRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := 0
	loop := NewLoop(farBulb(4, 3), time.Millisecond, func(frame *image.RGBA) error {
		n++
		if frame.Bounds() != image.Rect(0, 0, 4, 3) {
			t.Errorf("frame bounds = %v", frame.Bounds())
		}
		if n == 3 {
			cancel()
		}
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
	if got := loop.Frames(); got != 3 {
		t.Errorf("Frames = %d, want 3", got)
	}
}

func TestLoopPresentErrorStops(t *testing.T) {
	errBoom := errors.New("boom")
	loop := NewLoop(farBulb(2, 2), time.Millisecond, func(*image.RGBA) error { return errBoom })
	err := loop.Run(context.Background())
	if !errors.Is(err, errBoom) {
		t.Errorf("Run = %v, want %v", err, errBoom)
	}
	if loop.Frames() != 0 {
		t.Errorf("Frames = %d, want 0", loop.Frames())
	}
}

func TestLoopPicksUpNewParams(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var loop *Loop
	var sizes []image.Rectangle
	loop = NewLoop(farBulb(2, 2), time.Millisecond, func(frame *image.RGBA) error {
		sizes = append(sizes, frame.Bounds())
		switch len(sizes) {
		case 1:
			loop.SetParams(farBulb(5, 4))
		case 2:
			cancel()
		}
		return nil
	})
	if err := loop.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if len(sizes) != 2 || sizes[1] != image.Rect(0, 0, 5, 4) {
		t.Errorf("frame sizes = %v", sizes)
	}
	if got := loop.Params().Width; got != 5 {
		t.Errorf("Params().Width = %d", got)
	}
}

func TestLoopCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loop := NewLoop(farBulb(2, 2), time.Hour, func(*image.RGBA) error {
		t.Error("frame presented after cancellation")
		return nil
	})
	if err := loop.Run(ctx); err != nil {
		t.Errorf("Run = %v", err)
	}
}

func TestLoopRejectsNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		loop := NewLoop(farBulb(2, 2), interval, func(*image.RGBA) error {
			t.Error("frame presented without a valid interval")
			return nil
		})
		if err := loop.Run(context.Background()); !errors.Is(err, ErrInterval) {
			t.Errorf("Run with interval %v = %v, want %v", interval, err, ErrInterval)
		}
	}
}

func TestLoopLogsFramesOnStop(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { SetLogger(nil) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n := 0
	loop := NewLoop(farBulb(2, 2), time.Millisecond, func(*image.RGBA) error {
		if n++; n == 3 {
			cancel()
		}
		return nil
	})
	if err := loop.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); !strings.Contains(out, `msg="frame loop stopped" frames=3`) {
		t.Errorf("log output = %q, want the stop record to count 3 frames", out)
	}
}
