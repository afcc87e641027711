package fractal

import (
	"bytes"
	"image"
	"image/color"
	"math/rand/v2"
	"testing"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestAttractorStepIsMidpoint(t *testing.T) {
	a := NewAttractor(100, 80)
	got := a.Step(Point{X: 10, Y: 20}, 0)
	if want := (Point{X: 30, Y: 10}); got != want {
		t.Errorf("Step = %v, want %v", got, want)
	}
	got = a.Step(Point{X: 99, Y: 79}, 2)
	if want := (Point{X: 99, Y: 79}); got != want {
		t.Errorf("Step towards own vertex = %v, want %v", got, want)
	}
}

func TestAttractorWalkIsDeterministicWithSeed(t *testing.T) {
	a := NewAttractor(64, 48)
	a.Iterations = 500

	var first, second []Point
	for _, p := range a.Walk(seeded(7), Point{X: 5, Y: 5}) {
		first = append(first, p)
	}
	for _, p := range a.Walk(seeded(7), Point{X: 5, Y: 5}) {
		second = append(second, p)
	}
	if len(first) != a.Iterations {
		t.Fatalf("walk yielded %d points, want %d", len(first), a.Iterations)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("point %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestAttractorWalkStaysInTriangleBox(t *testing.T) {
	a := NewAttractor(64, 48)
	for i, p := range a.Walk(seeded(1), Point{X: 32, Y: 24}) {
		if p.X < 0 || p.X > 63 || p.Y < 0 || p.Y > 47 {
			t.Fatalf("point %d = %v left the canvas", i, p)
		}
	}
}

func TestAttractorWalkStopsEarly(t *testing.T) {
	a := NewAttractor(64, 48)
	n := 0
	for i := range a.Walk(seeded(1), Point{}) {
		n++
		if i == 9 {
			break
		}
	}
	if n != 10 {
		t.Errorf("visited %d points, want 10", n)
	}
}

func TestAttractorDraw(t *testing.T) {
	col := color.RGBA{10, 200, 30, 255}
	img := image.NewRGBA(image.Rect(0, 0, 120, 100))
	NewAttractor(120, 100).Draw(img, seeded(3), col)

	plotted := 0
	for y := range 100 {
		for x := range 120 {
			switch c := img.RGBAAt(x, y); c {
			case col:
				plotted++
			case color.RGBA{}:
			default:
				t.Fatalf("pixel (%d, %d) = %v", x, y, c)
			}
		}
	}
	if plotted < 500 {
		t.Errorf("only %d pixels plotted", plotted)
	}
	// The apex row of the triangle must stay mostly empty.
	if c := img.RGBAAt(0, 0); c == col {
		t.Errorf("corner (0, 0) outside the triangle was plotted")
	}
}

func TestAttractorSettleSkipsPoints(t *testing.T) {
	a := NewAttractor(50, 50)
	a.Iterations, a.Settle = 20, 20
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	a.Draw(img, seeded(5), color.RGBA{255, 255, 255, 255})
	for _, b := range img.Pix {
		if b != 0 {
			t.Fatal("points of the settling period were plotted")
		}
	}
}

func TestAttractorDrawSeedReproducible(t *testing.T) {
	render := func() []byte {
		img := image.NewRGBA(image.Rect(0, 0, 80, 60))
		NewAttractor(80, 60).Draw(img, seeded(11), color.RGBA{255, 0, 0, 255})
		return img.Pix
	}
	if !bytes.Equal(render(), render()) {
		t.Error("same seed produced different images")
	}
}
