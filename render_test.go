package fractal

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
)

func smallParams(kind Kind) Params {
	p := DefaultParams(kind)
	p.Width, p.Height = 40, 30
	p.MaxIterations = 50
	return p
}

func TestRenderTileUsesGlobalCoordinates(t *testing.T) {
	p := smallParams(KindMandelbrot)
	tile := image.Rect(10, 5, 30, 20)
	img, err := LocalRenderer{}.RenderTile(p, tile)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != tile {
		t.Fatalf("bounds = %v, want %v", img.Bounds(), tile)
	}
	for _, pt := range []image.Point{{10, 5}, {29, 19}, {20, 15}} {
		x0, y0 := ToPlane(pt.X, pt.Y, p.Width, p.Height, p.Zoom, p.PanX, p.PanY)
		want := Colorize(Escape(p, x0, y0), p.MaxIterations, p.Palette)
		if got := img.RGBAAt(pt.X, pt.Y); got != want {
			t.Errorf("pixel %v = %v, want %v", pt, got, want)
		}
	}
}

func TestRenderTileInteriorIsBlack(t *testing.T) {
	p := smallParams(KindMandelbrot)
	// The centre pixel maps to -0.5+0i, inside the main cardioid.
	img, err := LocalRenderer{}.RenderTile(p, image.Rect(0, 0, p.Width, p.Height))
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(20, 15); got != (color.RGBA{A: 255}) {
		t.Errorf("centre = %v, want black", got)
	}
}

func TestRenderTileParallelMatchesSerial(t *testing.T) {
	for _, kind := range []Kind{KindMandelbrot, KindJulia, KindBurningShip} {
		t.Run(kind.String(), func(t *testing.T) {
			p := smallParams(kind)
			tile := image.Rect(0, 0, p.Width, p.Height)
			serial, err := LocalRenderer{}.RenderTile(p, tile)
			if err != nil {
				t.Fatal(err)
			}
			parallel, err := LocalRenderer{Workers: 7}.RenderTile(p, tile)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(serial.Pix, parallel.Pix) {
				t.Error("parallel render differs from serial render")
			}
		})
	}
}

func TestRenderTileCallsHook(t *testing.T) {
	var seen []image.Rectangle
	lr := LocalRenderer{OnTileRender: func(r image.Rectangle) { seen = append(seen, r) }}
	tile := image.Rect(0, 0, 4, 4)
	if _, err := lr.RenderTile(smallParams(KindJulia), tile); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || seen[0] != tile {
		t.Errorf("hook saw %v", seen)
	}
}

func TestRenderTileRejectsAttractor(t *testing.T) {
	_, err := LocalRenderer{}.RenderTile(smallParams(KindSierpinski), image.Rect(0, 0, 4, 4))
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("err = %v, want ErrUnsupportedKind", err)
	}
}

func TestRenderMatchesTiles(t *testing.T) {
	p := smallParams(KindBurningShip)
	p.Width, p.Height = 150, 70 // not a multiple of the tile size
	img, err := LocalRenderer{Workers: 3}.Render(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 150, 70) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	whole, err := LocalRenderer{}.RenderTile(p, img.Bounds())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(img.Pix, whole.Pix) {
		t.Error("tiled render differs from a single tile")
	}
}

func TestRenderSierpinski(t *testing.T) {
	p := smallParams(KindSierpinski)
	p.Width, p.Height = 90, 80
	render := func() *image.RGBA {
		img, err := LocalRenderer{Rand: seeded(42)}.Render(context.Background(), p)
		if err != nil {
			t.Fatal(err)
		}
		return img
	}
	a, b := render(), render()
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("seeded renders differ")
	}
	want := p.Palette.Palette().At(0.5)
	plotted := 0
	for i := 0; i < len(a.Pix); i += 4 {
		c := color.RGBA{a.Pix[i], a.Pix[i+1], a.Pix[i+2], a.Pix[i+3]}
		switch c {
		case want:
			plotted++
		case Background:
		default:
			t.Fatalf("unexpected colour %v", c)
		}
	}
	if plotted == 0 {
		t.Error("nothing plotted")
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LocalRenderer{}.Render(ctx, smallParams(KindMandelbrot))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRenderEmptyCanvas(t *testing.T) {
	p := smallParams(KindMandelbrot)
	p.Width = 0
	if _, err := (LocalRenderer{}).Render(context.Background(), p); err == nil {
		t.Error("expected an error for an empty canvas")
	}
}

func TestRenderFrameFarCameraIsBackground(t *testing.T) {
	p := DefaultParams(KindMandelbulb)
	p.Width, p.Height = 8, 6
	p.CameraDistance = 1000
	dst := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	RenderFrame(p, dst)
	for y := range p.Height {
		for x := range p.Width {
			if got := dst.RGBAAt(x, y); got != Background {
				t.Fatalf("pixel (%d, %d) = %v, want background", x, y, got)
			}
		}
	}
}

func TestRenderBulbTilesMatchFrame(t *testing.T) {
	p := DefaultParams(KindMandelbulb)
	p.Width, p.Height = 12, 9
	p.MaxSteps = 40

	frame := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	RenderFrame(p, frame)

	img, err := LocalRenderer{Workers: 2}.Render(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(frame.Pix, img.Pix) {
		t.Error("tiled bulb differs from RenderFrame")
	}
}

func TestSplitTilesCoverExactly(t *testing.T) {
	r := image.Rect(3, 4, 203, 134)
	tiles := SplitTiles(r, 64, 64)
	area := 0
	for i, a := range tiles {
		if !a.In(r) {
			t.Errorf("tile %v outside %v", a, r)
		}
		area += a.Dx() * a.Dy()
		for _, b := range tiles[i+1:] {
			if a.Overlaps(b) {
				t.Errorf("tiles %v and %v overlap", a, b)
			}
		}
	}
	if area != r.Dx()*r.Dy() {
		t.Errorf("tiles cover %d pixels, want %d", area, r.Dx()*r.Dy())
	}
}

func TestSplitRowsDisjoint(t *testing.T) {
	for _, n := range []int{0, 1, 3, 7, 50} {
		r := image.Rect(0, 10, 5, 27)
		bands := splitRows(r, n)
		y := r.Min.Y
		for _, b := range bands {
			if b.Min.Y != y || b.Min.X != r.Min.X || b.Max.X != r.Max.X || b.Empty() {
				t.Fatalf("n=%d: band %v does not continue at y=%d", n, b, y)
			}
			y = b.Max.Y
		}
		if y != r.Max.Y {
			t.Errorf("n=%d: bands end at %d, want %d", n, y, r.Max.Y)
		}
	}
}
