package fractal

import (
	"image"
	"image/color"
	"iter"
	"math/rand/v2"
)

// Point is a position in canvas pixels.
type Point struct {
	X, Y float64
}

// Attractor is the chaos game for the Sierpinski triangle: the running point
// repeatedly jumps half way towards a randomly picked vertex.
type Attractor struct {
	Vertices [3]Point
	// Iterations is the number of jumps, Settle how many of the first ones are not plotted.
	Iterations int
	Settle     int
}

// NewAttractor spans the triangle over a width×height canvas.
func NewAttractor(width, height int) Attractor {
	w, h := float64(width), float64(height)
	return Attractor{
		Vertices: [3]Point{
			{X: w / 2, Y: 0},
			{X: 0, Y: h - 1},
			{X: w - 1, Y: h - 1},
		},
		Iterations: 75000,
		Settle:     20,
	}
}

// Step moves p to the midpoint between p and vertex v.
func (a Attractor) Step(p Point, v int) Point {
	t := a.Vertices[v]
	return Point{X: (p.X + t.X) / 2, Y: (p.Y + t.Y) / 2}
}

// Walk folds Step over a.Iterations random vertex picks starting at start and
// yields every intermediate point with its index. The running point lives only
// in the fold.
func (a Attractor) Walk(rng *rand.Rand, start Point) iter.Seq2[int, Point] {
	return func(yield func(int, Point) bool) {
		p := start
		for i := range a.Iterations {
			p = a.Step(p, rng.IntN(len(a.Vertices)))
			if !yield(i, p) {
				return
			}
		}
	}
}

// Draw plots the attractor onto img in col. Points of the settling period are
// skipped. A nil rng uses an unseeded source.
func (a Attractor) Draw(img *image.RGBA, rng *rand.Rand, col color.RGBA) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	b := img.Bounds()
	start := Point{
		X: float64(b.Min.X) + rng.Float64()*float64(b.Dx()),
		Y: float64(b.Min.Y) + rng.Float64()*float64(b.Dy()),
	}
	for i, p := range a.Walk(rng, start) {
		if i < a.Settle {
			continue
		}
		x, y := int(p.X), int(p.Y)
		if image.Pt(x, y).In(b) {
			img.SetRGBA(x, y, col)
		}
	}
}
