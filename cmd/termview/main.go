// termview previews the fractal engine in a truecolor terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/marben/dist_fractal/internal/cli"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	fs := flag.NewFlagSet("termview", flag.ExitOnError)
	interval := fs.Duration("frame-interval", 150*time.Millisecond, "delay between bulb frames")
	pf := cli.Register(fs)
	fs.Parse(os.Args[1:])

	p, err := pf.Params(fs)
	if err != nil {
		return err
	}
	if *interval <= 0 {
		return fmt.Errorf("-frame-interval %v: must be positive", *interval)
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("new screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer s.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return newTermView(s, p, *interval).run(ctx)
}
