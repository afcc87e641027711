package fractal

import (
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestBulbDistanceOutsideBailout(t *testing.T) {
	d, r := Mandelbulb.Distance(mgl64.Vec3{3, 0, 0})
	if r != 3 {
		t.Errorf("radius = %v, want 3", r)
	}
	if want := 0.5 * 3 * math.Log(3); !approx(d, want, 1e-12) {
		t.Errorf("distance = %v, want %v", d, want)
	}
}

// The power map commutes with a reflection in y (atan2 is odd in y), so the
// estimate must be bit for bit identical for mirrored points.
func TestBulbDistanceMirrorSymmetry(t *testing.T) {
	points := []mgl64.Vec3{
		{0.3, 0.4, 0.5},
		{-0.7, 0.2, 0.1},
		{0.1, 0.9, -0.3},
		{1.1, 0.05, 0.2},
		{0.6, -0.6, 0.6},
	}
	for _, p := range points {
		mirrored := mgl64.Vec3{p.X(), -p.Y(), p.Z()}
		d1, r1 := Mandelbulb.Distance(p)
		d2, r2 := Mandelbulb.Distance(mirrored)
		if d1 != d2 || r1 != r2 {
			t.Errorf("Distance(%v) = (%v, %v), mirrored = (%v, %v)", p, d1, r1, d2, r2)
		}
	}
}

func TestBulbMarchMiss(t *testing.T) {
	p := DefaultParams(KindMandelbulb)
	p.CameraDistance = 1000
	cam := NewCamera(p)
	ray := cam.Ray(1, 1, 3, 3)

	hit := Mandelbulb.March(ray, p.MaxSteps)
	if hit.OK {
		t.Fatalf("far camera hit the surface at %v", hit.Pos)
	}
	if hit.Distance <= farLimit {
		t.Errorf("travelled %v, want beyond the far limit", hit.Distance)
	}
	if got := Mandelbulb.Pixel(cam, 1, 1, 3, 3, p.MaxSteps); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("miss pixel = %v, want opaque black", got)
	}
}

func TestBulbMarchHitHeadOn(t *testing.T) {
	p := DefaultParams(KindMandelbulb)
	cam := NewCamera(p)
	ray := cam.Ray(1, 1, 3, 3)

	hit := Mandelbulb.March(ray, p.MaxSteps)
	if !hit.OK {
		t.Fatalf("centre ray missed after %d steps, travelled %v", hit.Steps, hit.Distance)
	}
	if hit.Distance < 1 || hit.Distance > p.CameraDistance {
		t.Errorf("hit at distance %v, want between 1 and %v", hit.Distance, p.CameraDistance)
	}

	got := Mandelbulb.Shade(cam, ray, hit)
	if got.A != 255 || got == Background {
		t.Errorf("shaded hit = %v, want a lit opaque colour", got)
	}
}

func TestBulbNormalFarFieldIsRadial(t *testing.T) {
	n := Mandelbulb.Normal(mgl64.Vec3{3, 0, 0})
	if n.X() < 0.99 {
		t.Errorf("normal = %v, want close to +x", n)
	}
}

func TestBulbStepBudgetExhaustedIsMiss(t *testing.T) {
	cam := NewCamera(DefaultParams(KindMandelbulb))
	ray := cam.Ray(1, 1, 3, 3)
	hit := Mandelbulb.March(ray, 1)
	if hit.OK || hit.Steps != 1 {
		t.Errorf("one step budget gave %+v, want a miss after 1 step", hit)
	}
	if got := Mandelbulb.Shade(cam, ray, hit); got != Background {
		t.Errorf("shade = %v, want background", got)
	}
}
