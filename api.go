package fractal

import (
	"image"
)

//go:generate go run github.com/marben/irpc/cmd/irpc $GOFILE

// ImgProvider hands out a fully rendered image.
type ImgProvider interface {
	GetImage() (image.RGBA, error)
}

// Renderer renders one tile of a width×height raster described by p.
// The returned image uses global coordinates (its bounds equal tile).
type Renderer interface {
	RenderTile(p Params, tile image.Rectangle) (image.RGBA, error)
}
