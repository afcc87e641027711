package fractal

import (
	"image"

	"golang.org/x/image/draw"
)

// Thumbnail scales src down to maxW pixels wide, keeping its aspect ratio.
// Images already narrower than maxW are returned unchanged.
func Thumbnail(src *image.RGBA, maxW int) *image.RGBA {
	b := src.Bounds()
	if maxW <= 0 || b.Dx() <= maxW {
		return src
	}
	h := max(1, b.Dy()*maxW/b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, maxW, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
