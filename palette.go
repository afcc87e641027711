package fractal

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// PaletteID names one of the built-in palettes. The zero value is the
// procedural rainbow, and so is every value outside the enumeration.
type PaletteID uint8

const (
	PaletteRainbow PaletteID = iota
	PaletteFire
	PaletteOcean
	PaletteForest
	PaletteSunset
	PaletteGrayscale
	PaletteElectric
	PaletteNeon

	paletteCount
)

var black = color.RGBA{A: 0xff}

// Palette maps a normalized iteration value to a colour. A palette with no
// stops is the procedural hue rotation.
type Palette struct {
	Name  string
	Stops []color.RGBA
}

var palettes = [paletteCount]Palette{
	PaletteRainbow: {Name: "rainbow"},
	PaletteFire: {Name: "fire", Stops: []color.RGBA{
		{32, 0, 0, 255}, {128, 0, 0, 255}, {255, 64, 0, 255},
		{255, 160, 0, 255}, {255, 255, 96, 255}, {255, 255, 255, 255},
	}},
	PaletteOcean: {Name: "ocean", Stops: []color.RGBA{
		{0, 16, 48, 255}, {0, 64, 128, 255}, {0, 128, 192, 255},
		{64, 192, 224, 255}, {224, 255, 255, 255},
	}},
	PaletteForest: {Name: "forest", Stops: []color.RGBA{
		{16, 32, 8, 255}, {34, 85, 34, 255}, {85, 139, 47, 255},
		{154, 205, 50, 255}, {240, 230, 140, 255},
	}},
	PaletteSunset: {Name: "sunset", Stops: []color.RGBA{
		{44, 0, 62, 255}, {128, 0, 96, 255}, {220, 40, 60, 255},
		{255, 120, 40, 255}, {255, 200, 80, 255}, {255, 240, 200, 255},
	}},
	PaletteGrayscale: {Name: "grayscale", Stops: []color.RGBA{
		{16, 16, 16, 255}, {80, 80, 80, 255}, {144, 144, 144, 255},
		{208, 208, 208, 255}, {255, 255, 255, 255},
	}},
	PaletteElectric: {Name: "electric", Stops: []color.RGBA{
		{0, 0, 32, 255}, {64, 0, 160, 255}, {0, 128, 255, 255},
		{0, 255, 255, 255}, {255, 255, 255, 255},
	}},
	PaletteNeon: {Name: "neon", Stops: []color.RGBA{
		{255, 0, 128, 255}, {128, 0, 255, 255}, {0, 255, 255, 255},
		{0, 255, 64, 255}, {255, 255, 0, 255},
	}},
}

// Palettes lists every palette in selection order.
var Palettes = []PaletteID{
	PaletteRainbow, PaletteFire, PaletteOcean, PaletteForest,
	PaletteSunset, PaletteGrayscale, PaletteElectric, PaletteNeon,
}

// Palette resolves the identifier. Unknown identifiers resolve to the rainbow.
func (id PaletteID) Palette() Palette {
	if id >= paletteCount {
		return palettes[PaletteRainbow]
	}
	return palettes[id]
}

func (id PaletteID) String() string {
	return id.Palette().Name
}

// Next cycles through the palettes.
func (id PaletteID) Next() PaletteID {
	return (id + 1) % paletteCount
}

// ParsePalette looks a palette up by name; unknown names give the rainbow.
func ParsePalette(name string) PaletteID {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, p := range palettes {
		if p.Name == name {
			return PaletteID(i)
		}
	}
	return PaletteRainbow
}

func (id PaletteID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *PaletteID) UnmarshalText(b []byte) error {
	*id = ParsePalette(string(b))
	return nil
}

// Colorize colours an iteration count with the palette id.
func Colorize(iter, maxIter int, id PaletteID) color.RGBA {
	return id.Palette().Color(iter, maxIter)
}

// Color returns black for bounded points and the palette colour at iter/maxIter otherwise.
func (p Palette) Color(iter, maxIter int) color.RGBA {
	if IsBounded(iter, maxIter) {
		return black
	}
	if len(p.Stops) == 0 {
		hue := math.Floor(360 * float64(iter) / float64(maxIter))
		return HSLToRGB(hue, 1, 0.5)
	}
	return p.At(float64(iter) / float64(maxIter))
}

// At samples the palette at value in [0, 1).
func (p Palette) At(value float64) color.RGBA {
	if len(p.Stops) == 0 {
		return HSLToRGB(math.Floor(360*value), 1, 0.5)
	}

	last := len(p.Stops) - 1
	colorIndex := value * float64(last)
	idx1 := int(math.Floor(colorIndex))
	idx2 := int(math.Ceil(colorIndex))
	if idx1 < 0 {
		return p.Stops[0]
	}
	if idx2 > last {
		return p.Stops[last]
	}
	frac := colorIndex - float64(idx1)

	c1, c2 := p.Stops[idx1], p.Stops[idx2]
	return color.RGBA{
		R: lerp8(c1.R, c2.R, frac),
		G: lerp8(c1.G, c2.G, frac),
		B: lerp8(c1.B, c2.B, frac),
		A: 0xff,
	}
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// HSLToRGB converts hue h in degrees, saturation s and lightness l in [0, 1].
// Out of range saturation or lightness and non-finite input give black.
func HSLToRGB(h, s, l float64) color.RGBA {
	if math.IsNaN(h) || math.IsInf(h, 0) || !(s >= 0 && s <= 1) || !(l >= 0 && l <= 1) {
		return black
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.RGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 0xff,
	}
}

// ParseHSL converts a CSS colour such as "hsl(120, 100%, 50%)".
// Anything it cannot read comes back as black.
func ParseHSL(s string) color.RGBA {
	h, sat, l, err := parseHSL(s)
	if err != nil {
		return black
	}
	return HSLToRGB(h, sat/100, l/100)
}

func parseHSL(s string) (h, sat, l float64, err error) {
	s = strings.TrimSpace(s)
	inner, ok := strings.CutPrefix(s, "hsl(")
	if !ok {
		return 0, 0, 0, fmt.Errorf("missing hsl( prefix in %q", s)
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return 0, 0, 0, fmt.Errorf("missing closing paren in %q", s)
	}
	parts := strings.Split(inner, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("want 3 components in %q, got %d", s, len(parts))
	}
	if h, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return 0, 0, 0, fmt.Errorf("hue: %w", err)
	}
	if sat, err = parsePercent(parts[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("saturation: %w", err)
	}
	if l, err = parsePercent(parts[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("lightness: %w", err)
	}
	return h, sat, l, nil
}

func parsePercent(s string) (float64, error) {
	v, ok := strings.CutSuffix(strings.TrimSpace(s), "%")
	if !ok {
		return 0, fmt.Errorf("%q is not a percentage", s)
	}
	return strconv.ParseFloat(v, 64)
}
