// viewer is an interactive window onto the fractal engine.
//
//	drag        pan (2D) or turn the bulb
//	wheel       zoom about the cursor
//	arrows      rotate the bulb
//	1-5         switch kind
//	P           next palette
//	+ / -       double or halve the iteration or step budget
//	S           save the current parameters to -save
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	fractal "github.com/marben/dist_fractal"
	"github.com/marben/dist_fractal/internal/cli"
	"github.com/marben/dist_fractal/internal/explore"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	fs := flag.NewFlagSet("viewer", flag.ExitOnError)
	save := fs.String("save", "fractal-settings.json", "settings file written by S")
	bulbDiv := fs.Int("bulb-div", 4, "the bulb is rendered at 1/n of the canvas resolution")
	verbose := fs.Bool("v", false, "log engine diagnostics")
	pf := cli.Register(fs)
	fs.Parse(os.Args[1:])

	if *verbose {
		fractal.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	p, err := pf.Params(fs)
	if err != nil {
		return err
	}

	g := &viewer{
		ex:       explore.New(p),
		renderer: fractal.LocalRenderer{Workers: runtime.NumCPU()},
		savePath: *save,
		bulbDiv:  max(*bulbDiv, 1),
	}
	ebiten.SetWindowTitle("fractal viewer")
	ebiten.SetWindowSize(p.Width, p.Height)
	ebiten.SetTPS(30)
	return ebiten.RunGame(g)
}

type viewer struct {
	ex       *explore.Explorer
	renderer fractal.LocalRenderer
	savePath string
	bulbDiv  int

	canvas   *ebiten.Image
	frame    *image.RGBA
	scale    float64
	elapsed  time.Duration
	status   string
	dragging bool
	lastX    int
	lastY    int
}

var kindKeys = map[ebiten.Key]fractal.Kind{
	ebiten.KeyDigit1: fractal.KindMandelbrot,
	ebiten.KeyDigit2: fractal.KindJulia,
	ebiten.KeyDigit3: fractal.KindBurningShip,
	ebiten.KeyDigit4: fractal.KindSierpinski,
	ebiten.KeyDigit5: fractal.KindMandelbulb,
}

func (g *viewer) Update() error {
	x, y := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.dragging = true
	case g.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		g.ex.Drag(float64(x-g.lastX), float64(y-g.lastY))
	default:
		g.dragging = false
	}
	g.lastX, g.lastY = x, y

	if _, wy := ebiten.Wheel(); wy != 0 {
		factor := explore.ZoomStep
		if wy < 0 {
			factor = 1 / factor
		}
		g.ex.ZoomAt(x, y, factor)
	}

	for key, kind := range kindKeys {
		if inpututil.IsKeyJustPressed(key) {
			g.ex.SetKind(kind)
		}
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.ex.Rotate(-explore.RotateStep, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.ex.Rotate(explore.RotateStep, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.ex.Rotate(0, explore.RotateStep)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.ex.Rotate(0, -explore.RotateStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.ex.NextPalette()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.ex.ScaleBudget(true)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.ex.ScaleBudget(false)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := cli.SaveSettings(g.savePath, g.ex.Params()); err != nil {
			g.status = err.Error()
		} else {
			g.status = "saved " + g.savePath
		}
	}
	return nil
}

func (g *viewer) Draw(screen *ebiten.Image) {
	p := g.ex.Params()
	dirty := g.ex.TakeDirty()

	switch {
	case p.Kind == fractal.KindMandelbulb:
		// the bulb is a stateless per-tick redraw at reduced resolution
		lo := p
		lo.Width, lo.Height = max(p.Width/g.bulbDiv, 1), max(p.Height/g.bulbDiv, 1)
		g.ensureFrame(lo.Width, lo.Height)
		start := time.Now()
		fractal.RenderFrame(lo, g.frame)
		g.elapsed = time.Since(start)
		g.canvas.WritePixels(g.frame.Pix)
		g.scale = float64(g.bulbDiv)
	case dirty || g.canvas == nil:
		start := time.Now()
		img, err := g.renderer.Render(context.Background(), p)
		if err != nil {
			ebitenutil.DebugPrint(screen, err.Error())
			return
		}
		g.elapsed = time.Since(start)
		g.ensureFrame(p.Width, p.Height)
		copy(g.frame.Pix, img.Pix)
		g.canvas.WritePixels(g.frame.Pix)
		g.scale = 1
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(g.scale, g.scale)
	screen.DrawImage(g.canvas, op)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s  %s  budget %d  %s  %.0f fps\n%s",
		p.Kind, p.Palette, g.ex.Budget(), g.elapsed.Round(time.Millisecond), ebiten.ActualFPS(), g.status))
}

// ensureFrame (re)allocates the pixel buffers for a w×h frame.
func (g *viewer) ensureFrame(w, h int) {
	if g.frame != nil && g.frame.Bounds().Dx() == w && g.frame.Bounds().Dy() == h {
		return
	}
	g.frame = image.NewRGBA(image.Rect(0, 0, w, h))
	if g.canvas != nil {
		g.canvas.Deallocate()
	}
	g.canvas = ebiten.NewImage(w, h)
}

func (g *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	p := g.ex.Params()
	return p.Width, p.Height
}
