// render draws one frame on this machine and writes it as PNG.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	fractal "github.com/marben/dist_fractal"
	"github.com/marben/dist_fractal/internal/cli"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	out := fs.String("out", "fractal.png", "output file")
	thumb := fs.Int("thumb", 0, "if > 0, also write a thumbnail of this width next to -out")
	seed := fs.Uint64("seed", 0, "attractor seed; 0 picks a random one")
	save := fs.String("save", "", "write the effective parameters to this settings file")
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
	if *save != "" {
		if err := cli.SaveSettings(*save, p); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lr := fractal.LocalRenderer{Workers: runtime.NumCPU()}
	if *seed != 0 {
		lr.Rand = rand.New(rand.NewPCG(*seed, *seed))
	}

	start := time.Now()
	img, err := lr.Render(ctx, p)
	if err != nil {
		return err
	}
	log.Printf("rendered %s %dx%d in %s", p.Kind, p.Width, p.Height, time.Since(start))

	if err := writePNG(*out, img); err != nil {
		return err
	}
	if *thumb > 0 {
		if err := writePNG(thumbPath(*out), fractal.Thumbnail(img, *thumb)); err != nil {
			return err
		}
	}
	return nil
}

func thumbPath(out string) string {
	return strings.TrimSuffix(out, ".png") + ".thumb.png"
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close %s: %w", path, cerr))
		}
		if err == nil {
			log.Printf("saved %q", path)
		}
	}()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
