package fractal

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestToPlane(t *testing.T) {
	tests := []struct {
		name           string
		px, py         int
		w, h           int
		zoom, pan, pay float64
		wantX, wantY   float64
	}{
		{"centre", 400, 300, 800, 600, 1, 0, 0, 0, 0},
		{"centre panned", 400, 300, 800, 600, 1, 0.5, -0.25, -0.5, 0.25},
		{"left edge spans 4", 0, 300, 800, 600, 1, 0, 0, -2, 0},
		{"height scaled by width", 400, 0, 800, 600, 1, 0, 0, 0, -1.5},
		{"zoomed", 0, 0, 800, 600, 4, 0, 0, -0.5, -0.375},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := ToPlane(tt.px, tt.py, tt.w, tt.h, tt.zoom, tt.pan, tt.pay)
			if !approx(x, tt.wantX, 1e-12) || !approx(y, tt.wantY, 1e-12) {
				t.Errorf("ToPlane = (%v, %v), want (%v, %v)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestToPlaneZeroZoomIsUnbounded(t *testing.T) {
	x, _ := ToPlane(0, 0, 800, 600, 0, 0, 0)
	if !math.IsInf(x, -1) {
		t.Errorf("x = %v, want -Inf", x)
	}
}

func TestUV(t *testing.T) {
	u, v := UV(0, 0, 4, 2)
	if u != -1.5 || v != 0.5 {
		t.Errorf("UV(0,0) = (%v, %v), want (-1.5, 0.5)", u, v)
	}
	u, v = UV(1, 1, 3, 3)
	if u != 0 || v != 0 {
		t.Errorf("UV(centre) = (%v, %v), want (0, 0)", u, v)
	}
}

func TestNewCameraDefaultBasis(t *testing.T) {
	cam := NewCamera(DefaultParams(KindMandelbulb))

	checks := []struct {
		name      string
		got, want mgl64.Vec3
	}{
		{"origin", cam.Origin, mgl64.Vec3{0, 0, -2.5}},
		{"forward", cam.Forward, mgl64.Vec3{0, 0, 1}},
		{"right", cam.Right, mgl64.Vec3{1, 0, 0}},
		{"up", cam.Up, mgl64.Vec3{0, 1, 0}},
	}
	for _, c := range checks {
		if !c.got.ApproxEqualThreshold(c.want, 1e-12) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestNewCameraRotationKeepsDistance(t *testing.T) {
	for _, angles := range [][2]float64{{0.3, 0.1}, {-1.2, 0.7}, {math.Pi, -0.4}, {2.5, 1.2}} {
		p := DefaultParams(KindMandelbulb)
		p.TargetX, p.TargetY = 0.2, -0.1
		p.Yaw, p.Pitch = angles[0], angles[1]
		cam := NewCamera(p)

		if d := cam.Origin.Sub(cam.Target).Len(); !approx(d, p.CameraDistance, 1e-12) {
			t.Errorf("yaw %v pitch %v: distance = %v, want %v", p.Yaw, p.Pitch, d, p.CameraDistance)
		}
		if dot := cam.Forward.Dot(cam.Right); !approx(dot, 0, 1e-12) {
			t.Errorf("yaw %v pitch %v: forward·right = %v", p.Yaw, p.Pitch, dot)
		}
		if dot := cam.Forward.Dot(cam.Up); !approx(dot, 0, 1e-12) {
			t.Errorf("yaw %v pitch %v: forward·up = %v", p.Yaw, p.Pitch, dot)
		}
	}
}

func TestNewCameraYaw(t *testing.T) {
	p := DefaultParams(KindMandelbulb)
	p.Yaw = math.Pi / 2
	cam := NewCamera(p)
	if !cam.Origin.ApproxEqualThreshold(mgl64.Vec3{2.5, 0, 0}, 1e-12) {
		t.Errorf("origin = %v, want (2.5, 0, 0)", cam.Origin)
	}
}

func TestCameraRayThroughCentre(t *testing.T) {
	cam := NewCamera(DefaultParams(KindMandelbulb))
	ray := cam.Ray(1, 1, 3, 3)
	if !ray.Dir.ApproxEqualThreshold(cam.Forward, 1e-12) {
		t.Errorf("centre ray dir = %v, want forward %v", ray.Dir, cam.Forward)
	}
	if l := cam.Ray(0, 0, 3, 3).Dir.Len(); !approx(l, 1, 1e-12) {
		t.Errorf("corner ray dir length = %v, want 1", l)
	}
}
