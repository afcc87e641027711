package fractal

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	hitThreshold = 0.001
	farLimit     = 20.0
	normalEps    = 0.001

	ambient      = 0.1
	specularExp  = 32
	specularGain = 0.5
	fogDensity   = 0.02
)

// Background is the colour of rays that miss the surface.
var Background = color.RGBA{A: 0xff}

// Bulb is the power-n bulb surface, n = 8 for the classic Mandelbulb.
type Bulb struct {
	Power      float64
	Iterations int
	Bailout    float64
}

// Mandelbulb is the power-8 bulb used by the Mandelbulb kind.
var Mandelbulb = Bulb{Power: 8, Iterations: 10, Bailout: 2}

// Distance estimates the distance from c to the surface. It also returns the
// orbit radius at bailout, which drives the surface colour.
func (b Bulb) Distance(c mgl64.Vec3) (dist, radius float64) {
	z := c
	dr := 1.0
	r := 0.0
	for range b.Iterations {
		r = z.Len()
		if r > b.Bailout {
			break
		}

		theta := math.Acos(z.Z()/r) * b.Power
		phi := math.Atan2(z.Y(), z.X()) * b.Power
		dr = math.Pow(r, b.Power-1)*b.Power*dr + 1

		zr := math.Pow(r, b.Power)
		sinTheta, cosTheta := math.Sincos(theta)
		sinPhi, cosPhi := math.Sincos(phi)
		z = mgl64.Vec3{
			sinTheta * cosPhi,
			sinTheta * sinPhi,
			cosTheta,
		}.Mul(zr).Add(c)
	}
	return 0.5 * math.Log(r) * r / dr, r
}

// Hit is the outcome of marching one ray.
type Hit struct {
	OK       bool
	Pos      mgl64.Vec3
	Distance float64 // travelled along the ray
	Radius   float64 // orbit radius at Pos
	Steps    int
}

// March steps along ray by the distance estimate until it comes closer than
// the hit threshold, travels beyond the far limit or runs out of steps.
func (b Bulb) March(ray Ray, maxSteps int) Hit {
	total := 0.0
	for step := range maxSteps {
		p := ray.At(total)
		d, r := b.Distance(p)
		if d < hitThreshold {
			return Hit{OK: true, Pos: p, Distance: total, Radius: r, Steps: step}
		}
		if total > farLimit {
			return Hit{Distance: total, Steps: step}
		}
		total += d
	}
	return Hit{Distance: total, Steps: maxSteps}
}

// Normal approximates the surface gradient at p by central differences.
func (b Bulb) Normal(p mgl64.Vec3) mgl64.Vec3 {
	de := func(q mgl64.Vec3) float64 {
		d, _ := b.Distance(q)
		return d
	}
	ex := mgl64.Vec3{normalEps, 0, 0}
	ey := mgl64.Vec3{0, normalEps, 0}
	ez := mgl64.Vec3{0, 0, normalEps}
	return mgl64.Vec3{
		de(p.Add(ex)) - de(p.Sub(ex)),
		de(p.Add(ey)) - de(p.Sub(ey)),
		de(p.Add(ez)) - de(p.Sub(ez)),
	}.Normalize()
}

// baseColor is a cosine palette a + b·cos(2π(t + d)) over the orbit radius.
func baseColor(radius float64) colorful.Color {
	t := radius * 0.5
	ch := func(phase float64) float64 {
		return 0.5 + 0.5*math.Cos(2*math.Pi*(t+phase))
	}
	return colorful.Color{R: ch(0), G: ch(0.33), B: ch(0.67)}
}

// Shade lights a hit with ambient, Lambert diffuse and Blinn specular terms
// from a light fixed above and to the right of the camera, then fades it into
// the background with distance. Misses are the background.
func (b Bulb) Shade(cam Camera, ray Ray, hit Hit) color.RGBA {
	if !hit.OK {
		return Background
	}

	n := b.Normal(hit.Pos)
	light := cam.Origin.Add(cam.Right.Mul(2)).Add(cam.Up.Mul(3))
	l := light.Sub(hit.Pos).Normalize()
	v := ray.Dir.Mul(-1)
	h := l.Add(v).Normalize()

	diffuse := math.Max(n.Dot(l), 0)
	specular := specularGain * math.Pow(math.Max(n.Dot(h), 0), specularExp)
	lighting := ambient + diffuse + specular

	base := baseColor(hit.Radius)
	lit := colorful.Color{R: base.R * lighting, G: base.G * lighting, B: base.B * lighting}

	fog := math.Exp(-fogDensity * hit.Distance * hit.Distance)
	bg, _ := colorful.MakeColor(Background)
	out := lit.Clamped().BlendRgb(bg, 1-fog)
	if !out.IsValid() {
		return Background
	}

	r, g, bl := out.RGB255()
	return color.RGBA{R: r, G: g, B: bl, A: 0xff}
}

// Pixel ray marches pixel (px, py) of a width×height frame seen from cam.
func (b Bulb) Pixel(cam Camera, px, py, width, height, maxSteps int) color.RGBA {
	ray := cam.Ray(px, py, width, height)
	return b.Shade(cam, ray, b.March(ray, maxSteps))
}
