// Package explore turns viewer gestures into parameter edits. It is shared by
// the window and terminal viewers so both behave the same.
package explore

import (
	"math"

	fractal "github.com/marben/dist_fractal"
)

const (
	// ZoomStep is the zoom factor of one wheel notch or key press.
	ZoomStep = 1.25

	// RotateStep is the camera rotation of one arrow key press, in radians.
	RotateStep = math.Pi / 36

	// dragRadians is the bulb rotation per dragged pixel.
	dragRadians = 0.01

	minBudget = 10
	maxBudget = 10000

	minDistance = 1.5
	maxDistance = 15

	// pitch stays short of the poles, where the look-at basis degenerates.
	maxPitch = math.Pi/2 - 0.01
)

// Explorer holds the frame being explored and whether it changed since the
// last render.
type Explorer struct {
	params fractal.Params
	dirty  bool
}

func New(p fractal.Params) *Explorer {
	return &Explorer{params: p, dirty: true}
}

// Params returns the current frame.
func (e *Explorer) Params() fractal.Params {
	return e.params
}

// TakeDirty reports whether the frame changed since the previous call.
func (e *Explorer) TakeDirty() bool {
	d := e.dirty
	e.dirty = false
	return d
}

func (e *Explorer) set(p fractal.Params) {
	if p != e.params {
		e.params = p
		e.dirty = true
	}
}

// Drag moves the view by a pointer drag of (dx, dy) pixels. 2D sets follow the
// pointer; the bulb turns around its target.
func (e *Explorer) Drag(dx, dy float64) {
	p := e.params
	switch {
	case p.Kind == fractal.KindMandelbulb:
		e.Rotate(-dx*dragRadians, dy*dragRadians)
	case p.Kind.EscapeTime():
		// plane units per pixel; both axes share the width-based scale
		x0, _ := fractal.ToPlane(0, 0, p.Width, p.Height, p.Zoom, 0, 0)
		x1, _ := fractal.ToPlane(1, 0, p.Width, p.Height, p.Zoom, 0, 0)
		unit := x1 - x0
		p.PanX += dx * unit
		p.PanY += dy * unit
		e.set(p)
	}
}

// ZoomAt zooms by factor keeping the point under pixel (px, py) in place.
// For the bulb it moves the camera closer by the same factor.
func (e *Explorer) ZoomAt(px, py int, factor float64) {
	if !(factor > 0) {
		return
	}
	p := e.params
	switch {
	case p.Kind == fractal.KindMandelbulb:
		p.CameraDistance = clamp(p.CameraDistance/factor, minDistance, maxDistance)
	case p.Kind.EscapeTime():
		ax, ay := fractal.ToPlane(px, py, p.Width, p.Height, p.Zoom, p.PanX, p.PanY)
		p.Zoom *= factor
		bx, by := fractal.ToPlane(px, py, p.Width, p.Height, p.Zoom, p.PanX, p.PanY)
		p.PanX += bx - ax
		p.PanY += by - ay
	default:
		return
	}
	e.set(p)
}

// Zoom zooms about the centre of the canvas.
func (e *Explorer) Zoom(factor float64) {
	e.ZoomAt(e.params.Width/2, e.params.Height/2, factor)
}

// Rotate turns the bulb camera. Pitch is clamped short of the poles.
func (e *Explorer) Rotate(dyaw, dpitch float64) {
	p := e.params
	if p.Kind != fractal.KindMandelbulb {
		return
	}
	p.Yaw = math.Mod(p.Yaw+dyaw, 2*math.Pi)
	p.Pitch = clamp(p.Pitch+dpitch, -maxPitch, maxPitch)
	e.set(p)
}

// SetKind switches to the defaults of kind, keeping the canvas size.
func (e *Explorer) SetKind(kind fractal.Kind) {
	if kind == e.params.Kind {
		return
	}
	p := fractal.DefaultParams(kind)
	p.Width, p.Height = e.params.Width, e.params.Height
	e.set(p)
}

// NextKind cycles through every kind.
func (e *Explorer) NextKind() {
	e.SetKind(fractal.Kinds[(int(e.params.Kind)+1)%len(fractal.Kinds)])
}

func (e *Explorer) NextPalette() {
	p := e.params
	p.Palette = p.Palette.Next()
	e.set(p)
}

// ScaleBudget doubles (up) or halves the iteration budget of the 2D sets or
// the step budget of the bulb.
func (e *Explorer) ScaleBudget(up bool) {
	p := e.params
	budget := &p.MaxIterations
	if p.Kind == fractal.KindMandelbulb {
		budget = &p.MaxSteps
	}
	if up {
		*budget *= 2
	} else {
		*budget /= 2
	}
	*budget = int(clamp(float64(*budget), minBudget, maxBudget))
	e.set(p)
}

// Resize changes the canvas, keeping the view centre.
func (e *Explorer) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	p := e.params
	p.Width, p.Height = w, h
	e.set(p)
}

// Budget returns the active iteration or step budget.
func (e *Explorer) Budget() int {
	if e.params.Kind == fractal.KindMandelbulb {
		return e.params.MaxSteps
	}
	return e.params.MaxIterations
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
