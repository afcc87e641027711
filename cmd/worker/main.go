// worker connects to the fractal server and renders tiles on this machine
// until the server closes the connection.
package main

import (
	"context"
	"errors"
	"flag"
	"image"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	fractal "github.com/marben/dist_fractal"
	"github.com/marben/irpc"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	url := flag.String("url", "ws://localhost:8080/ws", "server worker endpoint")
	workers := flag.Int("workers", runtime.NumCPU(), "goroutines per tile")
	verbose := flag.Bool("v", false, "log engine diagnostics")
	flag.Parse()

	if *verbose {
		fractal.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// the renderer service is called from the server to render tiles
	renderer := fractal.LocalRenderer{
		Workers:      *workers,
		OnTileRender: func(tile image.Rectangle) { log.Printf("rendering tile: %s", tile) },
	}
	log.Printf("connecting to %s", *url)
	ep, err := fractal.Dial(ctx, *url, fractal.NewRendererIrpcService(renderer))
	if err != nil {
		return err
	}
	defer ep.Close()

	select {
	case <-ctx.Done():
		return nil
	case <-ep.Context().Done():
	}
	if cause := context.Cause(ep.Context()); !errors.Is(cause, irpc.ErrEndpointClosedByCounterpart) {
		return cause
	}
	log.Printf("server closed the connection")
	return nil
}
