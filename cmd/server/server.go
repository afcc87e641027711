package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	fractal "github.com/marben/dist_fractal"
	"github.com/marben/dist_fractal/internal/cli"
	"github.com/marben/irpc"
)

// main is the entry point for the fractal server.
// Note: tiles are rendered by connected workers; the server only coordinates and distributes work.
func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "http listen address")
	frameInterval := fs.Duration("frame-interval", 100*time.Millisecond, "delay between bulb frames on /frames")
	frameWidth := fs.Int("frame-width", 320, "bulb frame width on /frames")
	frameHeight := fs.Int("frame-height", 240, "bulb frame height on /frames")
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
	if *frameInterval <= 0 {
		return fmt.Errorf("-frame-interval %v: must be positive", *frameInterval)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The attractor is one sequential walk, so it is drawn here instead of on workers.
	var iws *imgWorkScheduler
	if p.Kind.PerPixel() {
		iws = newImgWorkScheduler(p)
	} else {
		img, err := fractal.LocalRenderer{}.Render(ctx, p)
		if err != nil {
			return fmt.Errorf("render %s: %w", p.Kind, err)
		}
		iws = newFinishedScheduler(p, img)
	}
	log.Printf("rendering %s %dx%d", p.Kind, p.Width, p.Height)

	bulb := fractal.DefaultParams(fractal.KindMandelbulb)
	bulb.Width, bulb.Height = *frameWidth, *frameHeight
	if p.Kind == fractal.KindMandelbulb {
		bulb = p
		bulb.Width, bulb.Height = *frameWidth, *frameHeight
	}

	websocketListener, httpServer := webServer(ctx, *addr, iws, frameConfig{params: bulb, interval: *frameInterval})

	irpcServer := newIrpcServer(iws)

	// httpServer serves the image, progress and frame stream along with the worker endpoint
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("httpServer: %v", err)
		}
	}()
	go func() {
		// the listener closes with ctx, possibly before irpcServer.Close
		err := irpcServer.Serve(websocketListener)
		if !errors.Is(err, irpc.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			log.Fatalf("server.Serve ws: %v", err)
		}
	}()

	log.Printf("server waiting for workers on ws://localhost%s/ws", *addr)
	<-ctx.Done()
	log.Printf("shutting down")

	if err := irpcServer.Close(); err != nil {
		log.Printf("close irpc server: %v", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// newIrpcServer puts every connected worker to work on iws and serves
// the finished image to cli clients.
func newIrpcServer(iws *imgWorkScheduler) *irpc.Server {
	// irpc server with onConnect hook to plug workers into rendering
	irpcServer := irpc.NewServer(irpc.WithOnConnect(func(ep *irpc.Endpoint) {
		go func() {
			log.Printf("got connection from: %s", ep.RemoteAddr())

			// Each worker provides fractal.Renderer so we can use it to render tiles of the full image
			rendererIrpcClient, err := fractal.NewRendererIrpcClient(ep)
			if err != nil {
				log.Printf("err: new Rendering client: %v", err)
				return
			}
			if err := iws.addRenderer(rendererIrpcClient); err != nil {
				log.Printf("err: render on worker %q: %v", ep.RemoteAddr(), err)
			}
		}()
	}))

	// cli clients fetch the finished image through ImgProvider, backed by the same scheduler
	irpcServer.AddService(fractal.NewImgProviderIrpcService(iws))
	return irpcServer
}
