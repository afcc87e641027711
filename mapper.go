package fractal

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// planeSpan is the width of the visible plane at zoom 1.
const planeSpan = 4

// ToPlane maps pixel (px, py) of a width×height canvas to the complex plane.
// Both axes are scaled by the canvas width so the aspect ratio is preserved.
// A zoom of zero or below yields infinite or mirrored coordinates.
func ToPlane(px, py, width, height int, zoom, panX, panY float64) (x0, y0 float64) {
	scale := float64(width) * zoom
	x0 = (float64(px)-float64(width)/2)*planeSpan/scale - panX
	y0 = (float64(py)-float64(height)/2)*planeSpan/scale - panY
	return x0, y0
}

var worldUp = mgl64.Vec3{0, 1, 0}

// focalLength is the distance from the eye to the image plane in view units.
const focalLength = 1.5

// Ray is a half line in camera space; Dir is unit length.
type Ray struct {
	Origin, Dir mgl64.Vec3
}

// At returns the point t units along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Camera is a look-at view basis.
type Camera struct {
	Origin  mgl64.Vec3
	Target  mgl64.Vec3
	Forward mgl64.Vec3
	Right   mgl64.Vec3
	Up      mgl64.Vec3
}

// NewCamera places the eye CameraDistance away from the target, rotated by
// yaw in the x/z plane and then by pitch in the y/z plane.
// A pitch of ±π/2 makes forward parallel to the world up and the basis degenerate.
func NewCamera(p Params) Camera {
	target := mgl64.Vec3{p.TargetX, p.TargetY, 0}

	ox, oy, oz := 0.0, 0.0, -p.CameraDistance
	ox, oz = rotate2(ox, oz, p.Yaw)
	oy, oz = rotate2(oy, oz, p.Pitch)

	origin := target.Add(mgl64.Vec3{ox, oy, oz})
	forward := target.Sub(origin).Normalize()
	right := worldUp.Cross(forward).Normalize()
	up := forward.Cross(right)

	return Camera{
		Origin:  origin,
		Target:  target,
		Forward: forward,
		Right:   right,
		Up:      up,
	}
}

// rotate2 rotates (a, b) by angle radians.
func rotate2(a, b, angle float64) (float64, float64) {
	s, c := math.Sincos(angle)
	return a*c - b*s, a*s + b*c
}

// UV maps the centre of pixel (px, py) to [-aspect,aspect]×[-1,1] with +v pointing up.
func UV(px, py, width, height int) (u, v float64) {
	w, h := float64(width), float64(height)
	fx := float64(px) + 0.5
	fy := h - (float64(py) + 0.5)
	return (2*fx - w) / h, (2*fy - h) / h
}

// Ray returns the primary ray through pixel (px, py).
func (c Camera) Ray(px, py, width, height int) Ray {
	u, v := UV(px, py, width, height)
	dir := c.Right.Mul(u).Add(c.Up.Mul(v)).Add(c.Forward.Mul(focalLength)).Normalize()
	return Ray{Origin: c.Origin, Dir: dir}
}
