// Package cli holds the command-line flags shared by the binaries.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	fractal "github.com/marben/dist_fractal"
)

// ParamFlags collects the flags describing a frame. Flags left at their zero
// value keep the defaults of the selected kind (or of the settings file).
type ParamFlags struct {
	Settings string
	Kind     string
	Region   string
	Palette  string

	Width, Height int
	Zoom          float64
	Iterations    int
	PanX, PanY    float64
	CReal, CImag  float64

	Distance   float64
	Yaw, Pitch float64
	Steps      int

	set map[string]bool
}

// Register adds the frame flags to fs.
func Register(fs *flag.FlagSet) *ParamFlags {
	pf := &ParamFlags{}
	fs.StringVar(&pf.Settings, "settings", "", "load parameters from a settings file")
	fs.StringVar(&pf.Kind, "kind", "mandelbrot", "fractal: mandelbrot, julia, burningship, sierpinski, mandelbulb")
	fs.StringVar(&pf.Region, "region", "", "mandelbrot landmark: seahorse, elephant, spiral, triple, dragon, minispiral")
	fs.StringVar(&pf.Palette, "palette", "", "palette: rainbow, fire, ocean, forest, sunset, grayscale, electric, neon")
	fs.IntVar(&pf.Width, "width", 0, "canvas width in pixels")
	fs.IntVar(&pf.Height, "height", 0, "canvas height in pixels")
	fs.Float64Var(&pf.Zoom, "zoom", 0, "zoom factor")
	fs.IntVar(&pf.Iterations, "iter", 0, "iteration budget (2D)")
	fs.Float64Var(&pf.PanX, "panx", 0, "horizontal pan")
	fs.Float64Var(&pf.PanY, "pany", 0, "vertical pan")
	fs.Float64Var(&pf.CReal, "creal", 0, "julia constant, real part")
	fs.Float64Var(&pf.CImag, "cimag", 0, "julia constant, imaginary part")
	fs.Float64Var(&pf.Distance, "distance", 0, "camera distance (3D)")
	fs.Float64Var(&pf.Yaw, "yaw", 0, "camera yaw in radians (3D)")
	fs.Float64Var(&pf.Pitch, "pitch", 0, "camera pitch in radians (3D)")
	fs.IntVar(&pf.Steps, "steps", 0, "ray march step budget (3D)")
	return pf
}

// Params builds and validates the frame. fs must have been parsed.
func (pf *ParamFlags) Params(fs *flag.FlagSet) (fractal.Params, error) {
	pf.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { pf.set[f.Name] = true })

	var p fractal.Params
	switch {
	case pf.Settings != "":
		loaded, err := loadSettings(pf.Settings)
		if err != nil {
			return fractal.Params{}, err
		}
		p = loaded
		if pf.set["kind"] {
			kind, err := fractal.ParseKind(pf.Kind)
			if err != nil {
				return fractal.Params{}, err
			}
			p.Kind = kind
		}
	default:
		kind, err := fractal.ParseKind(pf.Kind)
		if err != nil {
			return fractal.Params{}, err
		}
		p = fractal.DefaultParams(kind)
	}

	if pf.Region != "" {
		r, err := fractal.LookupRegion(pf.Region)
		if err != nil {
			return fractal.Params{}, err
		}
		p = r.Apply(p)
	}
	if pf.Palette != "" {
		p.Palette = fractal.ParsePalette(pf.Palette)
	}

	setInt(pf.set["width"], &p.Width, pf.Width)
	setInt(pf.set["height"], &p.Height, pf.Height)
	setInt(pf.set["iter"], &p.MaxIterations, pf.Iterations)
	setInt(pf.set["steps"], &p.MaxSteps, pf.Steps)
	setFloat(pf.set["zoom"], &p.Zoom, pf.Zoom)
	setFloat(pf.set["panx"], &p.PanX, pf.PanX)
	setFloat(pf.set["pany"], &p.PanY, pf.PanY)
	setFloat(pf.set["creal"], &p.CReal, pf.CReal)
	setFloat(pf.set["cimag"], &p.CImag, pf.CImag)
	setFloat(pf.set["distance"], &p.CameraDistance, pf.Distance)
	setFloat(pf.set["yaw"], &p.Yaw, pf.Yaw)
	setFloat(pf.set["pitch"], &p.Pitch, pf.Pitch)

	if err := p.Validate(); err != nil {
		return fractal.Params{}, fmt.Errorf("invalid parameters: %w", err)
	}
	return p, nil
}

func setInt(set bool, dst *int, v int) {
	if set {
		*dst = v
	}
}

func setFloat(set bool, dst *float64, v float64) {
	if set {
		*dst = v
	}
}

func loadSettings(path string) (fractal.Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return fractal.Params{}, fmt.Errorf("open settings: %w", err)
	}
	defer f.Close()
	return fractal.LoadSettings(f)
}

// SaveSettings writes p to path, replacing the file.
func SaveSettings(path string, p fractal.Params) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create settings: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return fractal.SaveSettings(f, p)
}
