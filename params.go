package fractal

import (
	"errors"
	"fmt"
	"strings"
)

// Kind selects the fractal variant.
type Kind uint8

const (
	KindMandelbrot Kind = iota
	KindJulia
	KindBurningShip
	KindSierpinski
	KindMandelbulb
)

var ErrUnsupportedKind = errors.New("unsupported fractal kind")

var kindNames = [...]string{
	KindMandelbrot:  "mandelbrot",
	KindJulia:       "julia",
	KindBurningShip: "burningship",
	KindSierpinski:  "sierpinski",
	KindMandelbulb:  "mandelbulb",
}

// Kinds lists every variant in selection order.
var Kinds = []Kind{KindMandelbrot, KindJulia, KindBurningShip, KindSierpinski, KindMandelbulb}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind accepts the names printed by Kind.String, case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedKind, uint8(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// EscapeTime reports whether the kind is one of the per-pixel escape-time sets.
func (k Kind) EscapeTime() bool {
	return k == KindMandelbrot || k == KindJulia || k == KindBurningShip
}

// PerPixel reports whether every pixel can be evaluated independently,
// which is what tiled and parallel rendering rely on.
func (k Kind) PerPixel() bool {
	return k.EscapeTime() || k == KindMandelbulb
}

// Params is the immutable description of one frame.
// Fields other than Kind, Width and Height only matter to some kinds.
type Params struct {
	Kind   Kind `json:"kind"`
	Width  int  `json:"width"`
	Height int  `json:"height"`

	// 2D
	Zoom          float64   `json:"zoom"`
	MaxIterations int       `json:"maxIterations"`
	PanX          float64   `json:"panX"`
	PanY          float64   `json:"panY"`
	CReal         float64   `json:"cReal"`
	CImag         float64   `json:"cImag"`
	Palette       PaletteID `json:"palette"`

	// 3D, angles in radians
	CameraDistance float64 `json:"cameraDistance"`
	TargetX        float64 `json:"targetX"`
	TargetY        float64 `json:"targetY"`
	Pitch          float64 `json:"pitch"`
	Yaw            float64 `json:"yaw"`
	MaxSteps       int     `json:"maxSteps"`
}

// DefaultParams returns a sensible starting point for kind on an 800×600 canvas.
func DefaultParams(kind Kind) Params {
	p := Params{
		Kind:           kind,
		Width:          800,
		Height:         600,
		Zoom:           1,
		MaxIterations:  100,
		Palette:        PaletteRainbow,
		CameraDistance: 2.5,
		MaxSteps:       100,
	}
	switch kind {
	case KindMandelbrot:
		p.PanX = 0.5
	case KindJulia:
		p.CReal, p.CImag = -0.7, 0.27015
	case KindBurningShip:
		p.PanX, p.PanY = 0.5, 0.5
	case KindSierpinski:
		p.Palette = PaletteElectric
	}
	return p
}

// Validate checks the structural invariants: positive canvas, zoom and budgets.
// The engine itself never calls it; degenerate zoom values are rendered as is.
func (p Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("canvas %dx%d: dimensions must be positive", p.Width, p.Height)
	}
	if int(p.Kind) >= len(kindNames) {
		return fmt.Errorf("%w: %d", ErrUnsupportedKind, uint8(p.Kind))
	}
	switch {
	case p.Kind.EscapeTime() && !(p.Zoom > 0):
		return fmt.Errorf("zoom %v: must be positive", p.Zoom)
	case p.Kind.EscapeTime() && p.MaxIterations <= 0:
		return fmt.Errorf("maxIterations %d: must be positive", p.MaxIterations)
	case p.Kind == KindMandelbulb && p.MaxSteps <= 0:
		return fmt.Errorf("maxSteps %d: must be positive", p.MaxSteps)
	}
	return nil
}
