// cliclient is a CLI client for the distributed fractal renderer.
// It lends this machine's CPU to the server, waits for the fully rendered image and saves it as a PNG file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"os/signal"
	"runtime"

	fractal "github.com/marben/dist_fractal"
	"github.com/marben/irpc/irpcgen"
)

func main() {
	log.Printf("Starting CLI client...")
	if err := run(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func run() error {
	server := flag.String("server", "localhost:8080", "server host:port")
	out := flag.String("out", "fractal.png", "output file")
	thumb := flag.Int("thumb", 0, "if > 0, save a thumbnail of this width instead")
	render := flag.Bool("render", true, "render tiles for the server while waiting")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Step 1: offer our CPU to the server, unless asked to only wait
	var services []irpcgen.Service
	if *render {
		renderer := fractal.LocalRenderer{
			Workers:      runtime.NumCPU(),
			OnTileRender: func(tile image.Rectangle) { log.Printf("Rendering tile: %s", tile) },
		}
		services = append(services, fractal.NewRendererIrpcService(renderer))
	}

	// Step 2: connect to the server
	wsURL := "ws://" + *server + "/ws"
	log.Printf("Connecting to %s...", wsURL)
	ep, err := fractal.Dial(ctx, wsURL, services...)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer ep.Close()

	// Step 3: request the fully rendered image from the server
	client, err := fractal.NewImgProviderIrpcClient(ep)
	if err != nil {
		return fmt.Errorf("failed to create ImgProvider client: %w", err)
	}
	log.Printf("Requesting fully rendered image from server...")
	img, err := client.GetImage()
	if err != nil {
		return fmt.Errorf("client.GetImage: %w", err)
	}

	var result image.Image = &img
	if *thumb > 0 {
		result = fractal.Thumbnail(&img, *thumb)
	}

	// Step 4: save the rendered image to a PNG file
	log.Printf("Saving rendered image to %q...", *out)
	if err := savePNG(*out, result); err != nil {
		return err
	}
	log.Printf("Fully rendered image saved to %q", *out)
	return nil
}

func savePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}
