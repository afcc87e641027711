package fractal

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"
)

// LocalRenderer renders tiles on this machine.
type LocalRenderer struct {
	// Workers is the number of goroutines sharing a tile. Each one owns a
	// disjoint band of rows. Zero or one renders in a single pass.
	Workers int

	// OnTileRender, if set, is called before every tile.
	OnTileRender func(tile image.Rectangle)

	// Rand drives the attractor. Nil means a fresh unseeded source per render.
	Rand *rand.Rand
}

var _ Renderer = LocalRenderer{}

// RenderTile implements Renderer for the per-pixel kinds.
func (lr LocalRenderer) RenderTile(p Params, tile image.Rectangle) (image.RGBA, error) {
	if !p.Kind.PerPixel() {
		return image.RGBA{}, fmt.Errorf("%w: %s cannot be rendered in tiles", ErrUnsupportedKind, p.Kind)
	}
	if lr.OnTileRender != nil {
		lr.OnTileRender(tile)
	}

	start := time.Now()
	img := image.NewRGBA(tile)
	shade := pixelFunc(p)

	bands := splitRows(tile, lr.Workers)
	if len(bands) <= 1 {
		fillRows(img, tile, shade)
	} else {
		var g errgroup.Group
		for _, band := range bands {
			g.Go(func() error {
				fillRows(img, band, shade)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return image.RGBA{}, err
		}
	}

	Logger().Debug("tile rendered", "kind", p.Kind, "tile", tile, "elapsed", time.Since(start))
	return *img, nil
}

// pixelFunc returns the colouring function of a per-pixel kind.
func pixelFunc(p Params) func(px, py int) color.RGBA {
	if p.Kind == KindMandelbulb {
		cam := NewCamera(p)
		return func(px, py int) color.RGBA {
			return Mandelbulb.Pixel(cam, px, py, p.Width, p.Height, p.MaxSteps)
		}
	}
	pal := p.Palette.Palette()
	return func(px, py int) color.RGBA {
		x0, y0 := ToPlane(px, py, p.Width, p.Height, p.Zoom, p.PanX, p.PanY)
		return pal.Color(Escape(p, x0, y0), p.MaxIterations)
	}
}

// fillRows writes every pixel of r into img.
func fillRows(img *image.RGBA, r image.Rectangle, shade func(px, py int) color.RGBA) {
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			img.SetRGBA(px, py, shade(px, py))
		}
	}
}

// splitRows cuts r into at most n horizontal bands of nearly equal height.
func splitRows(r image.Rectangle, n int) []image.Rectangle {
	h := r.Dy()
	if n <= 1 || h <= 1 {
		return []image.Rectangle{r}
	}
	if n > h {
		n = h
	}
	bands := make([]image.Rectangle, 0, n)
	y := r.Min.Y
	for i := range n {
		bh := h / n
		if i < h%n {
			bh++
		}
		bands = append(bands, image.Rect(r.Min.X, y, r.Max.X, y+bh))
		y += bh
	}
	return bands
}

// Render draws the whole p.Width×p.Height raster. Per-pixel kinds are rendered
// in row bands through lr, checking ctx between bands; the attractor is drawn
// in one pass.
func (lr LocalRenderer) Render(ctx context.Context, p Params) (*image.RGBA, error) {
	bounds := image.Rect(0, 0, p.Width, p.Height)
	if bounds.Empty() {
		return nil, fmt.Errorf("render %s: empty canvas %dx%d", p.Kind, p.Width, p.Height)
	}

	if p.Kind == KindSierpinski {
		img := image.NewRGBA(bounds)
		fill(img, Background)
		NewAttractor(p.Width, p.Height).Draw(img, lr.Rand, p.Palette.Palette().At(0.5))
		return img, nil
	}
	if !p.Kind.PerPixel() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, p.Kind)
	}

	img := image.NewRGBA(bounds)
	for _, band := range SplitTiles(bounds, p.Width, 64) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("render %s: %w", p.Kind, err)
		}
		tile, err := lr.RenderTile(p, band)
		if err != nil {
			return nil, fmt.Errorf("render tile %s: %w", band, err)
		}
		copyTile(img, &tile)
	}
	return img, nil
}

// RenderFrame draws one bulb frame for p into dst. It keeps no state between
// calls, so a host redraws continuously by calling it on every tick.
func RenderFrame(p Params, dst *image.RGBA) {
	cam := NewCamera(p)
	b := dst.Bounds()
	for py := b.Min.Y; py < b.Max.Y; py++ {
		for px := b.Min.X; px < b.Max.X; px++ {
			dst.SetRGBA(px, py, Mandelbulb.Pixel(cam, px, py, p.Width, p.Height, p.MaxSteps))
		}
	}
}

func fill(img *image.RGBA, c color.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
}

// copyTile copies tile into dst at the tile's own coordinates.
func copyTile(dst, tile *image.RGBA) {
	r := tile.Bounds().Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		copy(dst.Pix[dst.PixOffset(r.Min.X, y):dst.PixOffset(r.Max.X, y)],
			tile.Pix[tile.PixOffset(r.Min.X, y):tile.PixOffset(r.Max.X, y)])
	}
}

// SplitTiles splits r into tiles of size tileW × tileH.
// Tiles at the right and bottom edges are smaller if r is not divisible.
func SplitTiles(r image.Rectangle, tileW, tileH int) []image.Rectangle {
	if tileW <= 0 || tileH <= 0 {
		panic("tile dimensions must be positive")
	}

	w := r.Dx()
	h := r.Dy()

	var tiles []image.Rectangle

	for oy := 0; oy < h; oy += tileH {
		th := min(tileH, h-oy)
		for ox := 0; ox < w; ox += tileW {
			tw := min(tileW, w-ox)
			tiles = append(tiles, image.Rect(
				r.Min.X+ox,
				r.Min.Y+oy,
				r.Min.X+ox+tw,
				r.Min.Y+oy+th,
			))
		}
	}

	return tiles
}
