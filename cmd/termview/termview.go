package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"time"

	"github.com/gdamore/tcell/v2"
	fractal "github.com/marben/dist_fractal"
	"github.com/marben/dist_fractal/internal/explore"
)

// halfBlock paints the upper pixel of a cell in the foreground colour and the
// lower one in the background colour.
const halfBlock = '▀'

type termView struct {
	screen   tcell.Screen
	ex       *explore.Explorer
	renderer fractal.LocalRenderer
	interval time.Duration

	loop     *fractal.Loop
	stopLoop context.CancelFunc
	status   string
}

func newTermView(s tcell.Screen, p fractal.Params, interval time.Duration) *termView {
	return &termView{
		screen:   s,
		ex:       explore.New(p),
		renderer: fractal.LocalRenderer{Workers: runtime.NumCPU()},
		interval: interval,
	}
}

// canvasSize is the pixel raster behind a cols×rows terminal. Each cell holds
// two pixels; the last row is the status line.
func canvasSize(cols, rows int) (w, h int) {
	return cols, 2 * max(rows-1, 0)
}

// run handles terminal events until q is pressed or ctx is done.
func (tv *termView) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer tv.stopAnimation()

	go func() {
		<-ctx.Done()
		tv.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	tv.resize()
	tv.refresh(ctx)
	for {
		ev := tv.screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			tv.screen.Sync()
			tv.resize()
		case *tcell.EventKey:
			if tv.handleKey(ev) {
				return nil
			}
		case *tcell.EventInterrupt:
			switch data := ev.Data().(type) {
			case *image.RGBA:
				// frames of a loop stopped by a kind switch may still be queued
				if tv.loop != nil {
					tv.draw(data)
				}
			case error:
				tv.status = data.Error()
				tv.drawStatus()
				tv.screen.Show()
			}
			continue
		}
		tv.refresh(ctx)
	}
}

func (tv *termView) resize() {
	tv.ex.Resize(canvasSize(tv.screen.Size()))
}

// handleKey applies one key press and reports whether the viewer should quit.
func (tv *termView) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		tv.arrow(-1, 0)
	case tcell.KeyRight:
		tv.arrow(1, 0)
	case tcell.KeyUp:
		tv.arrow(0, -1)
	case tcell.KeyDown:
		tv.arrow(0, 1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case '+', '=':
			tv.ex.Zoom(explore.ZoomStep)
		case '-':
			tv.ex.Zoom(1 / explore.ZoomStep)
		case 'k':
			tv.ex.NextKind()
		case 'p':
			tv.ex.NextPalette()
		case ']':
			tv.ex.ScaleBudget(true)
		case '[':
			tv.ex.ScaleBudget(false)
		}
	}
	return false
}

// arrow moves the view an eighth of the canvas, or turns the bulb.
func (tv *termView) arrow(dx, dy int) {
	p := tv.ex.Params()
	if p.Kind == fractal.KindMandelbulb {
		tv.ex.Rotate(float64(dx)*explore.RotateStep, float64(-dy)*explore.RotateStep)
		return
	}
	step := float64(max(p.Width/8, 1))
	tv.ex.Drag(-float64(dx)*step, -float64(dy)*step)
}

// refresh redraws after a change. 2D frames are rendered once; the bulb is
// handed to a frame loop that keeps redrawing it.
func (tv *termView) refresh(ctx context.Context) {
	if !tv.ex.TakeDirty() {
		tv.drawStatus()
		tv.screen.Show()
		return
	}

	p := tv.ex.Params()
	if p.Kind == fractal.KindMandelbulb {
		tv.animate(ctx, p)
		return
	}
	tv.stopAnimation()

	img, err := tv.renderer.Render(ctx, p)
	if err != nil {
		tv.status = err.Error()
		tv.drawStatus()
		tv.screen.Show()
		return
	}
	tv.status = ""
	tv.draw(img)
}

func (tv *termView) animate(ctx context.Context, p fractal.Params) {
	if tv.loop != nil {
		tv.loop.SetParams(p)
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	tv.stopLoop = cancel
	tv.loop = fractal.NewLoop(p, tv.interval, func(frame *image.RGBA) error {
		// a full event queue drops the frame
		tv.screen.PostEvent(tcell.NewEventInterrupt(frame))
		return nil
	})
	loop := tv.loop
	go func() {
		if err := loop.Run(ctx); err != nil {
			tv.screen.PostEvent(tcell.NewEventInterrupt(err))
		}
	}()
}

func (tv *termView) stopAnimation() {
	if tv.stopLoop != nil {
		tv.stopLoop()
	}
	tv.loop, tv.stopLoop = nil, nil
}

// draw paints img two pixels per cell.
func (tv *termView) draw(img *image.RGBA) {
	cols, rows := tv.screen.Size()
	for y := 0; y < rows-1; y++ {
		for x := 0; x < cols; x++ {
			style := tcell.StyleDefault.
				Foreground(cellColor(img.RGBAAt(x, 2*y))).
				Background(cellColor(img.RGBAAt(x, 2*y+1)))
			tv.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
	tv.drawStatus()
	tv.screen.Show()
}

func cellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (tv *termView) drawStatus() {
	cols, rows := tv.screen.Size()
	if rows == 0 {
		return
	}
	p := tv.ex.Params()
	line := tv.status
	if line == "" {
		line = fmt.Sprintf("%s %s budget %d | arrows move  +/- zoom  [/] budget  k kind  p palette  q quit",
			p.Kind, p.Palette, tv.ex.Budget())
	}

	style := tcell.StyleDefault.Reverse(true)
	runes := []rune(line)
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		tv.screen.SetContent(x, rows-1, r, nil, style)
	}
}
