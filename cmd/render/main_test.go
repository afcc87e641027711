package main

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	fractal "github.com/marben/dist_fractal"
)

func TestThumbPath(t *testing.T) {
	tests := map[string]string{
		"fractal.png": "fractal.thumb.png",
		"out/a.png":   "out/a.thumb.png",
		"noext":       "noext.thumb.png",
	}
	for in, want := range tests {
		if got := thumbPath(in); got != want {
			t.Errorf("thumbPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWritePNG(t *testing.T) {
	p := fractal.DefaultParams(fractal.KindJulia)
	p.Width, p.Height = 12, 8
	p.MaxIterations = 30
	img, err := fractal.LocalRenderer{}.Render(t.Context(), p)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "julia.png")
	if err := writePNG(path, img); err != nil {
		t.Fatalf("writePNG: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode written file: %v", err)
	}
	if got.Bounds() != img.Bounds() {
		t.Fatalf("bounds = %v, want %v", got.Bounds(), img.Bounds())
	}
	for _, pt := range []image.Point{{0, 0}, {5, 4}, {11, 7}} {
		r1, g1, b1, a1 := got.At(pt.X, pt.Y).RGBA()
		r2, g2, b2, a2 := img.At(pt.X, pt.Y).RGBA()
		if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
			t.Errorf("pixel %v differs after round trip through the file", pt)
		}
	}
}

func TestWritePNGMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "a.png")
	if err := writePNG(path, image.NewRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Error("writePNG into a missing directory succeeded")
	}
}
