package main

import (
	"context"
	"image"
	"log"
	"sync"

	fractal "github.com/marben/dist_fractal"
	"golang.org/x/image/draw"
)

const tileSize = 64

type imgWorkScheduler struct {
	workers int
	params  fractal.Params
	img     *image.RGBA

	ctx       context.Context
	ctxCancel context.CancelFunc

	totalPixels    int
	finishedPixels int

	unstarted map[image.Rectangle]struct{}
	inProcess map[image.Rectangle]struct{}
	finished  map[image.Rectangle]struct{}
	m         sync.Mutex
}

func newImgWorkScheduler(p fractal.Params) *imgWorkScheduler {
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	allTilesSlice := fractal.SplitTiles(img.Bounds(), tileSize, tileSize)
	allTiles := make(map[image.Rectangle]struct{}, len(allTilesSlice))
	for _, t := range allTilesSlice {
		allTiles[t] = struct{}{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &imgWorkScheduler{
		params:      p,
		img:         img,
		unstarted:   allTiles,
		inProcess:   make(map[image.Rectangle]struct{}),
		finished:    make(map[image.Rectangle]struct{}),
		totalPixels: p.Width * p.Height,
		ctx:         ctx,
		ctxCancel:   cancel,
	}
}

// newFinishedScheduler wraps an image rendered elsewhere, for kinds that
// cannot be split into tiles.
func newFinishedScheduler(p fractal.Params, img *image.RGBA) *imgWorkScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return &imgWorkScheduler{
		params:         p,
		img:            img,
		unstarted:      map[image.Rectangle]struct{}{},
		inProcess:      map[image.Rectangle]struct{}{},
		finished:       map[image.Rectangle]struct{}{img.Bounds(): {}},
		totalPixels:    p.Width * p.Height,
		finishedPixels: p.Width * p.Height,
		ctx:            ctx,
		ctxCancel:      cancel,
	}
}

func (iws *imgWorkScheduler) popTile() (tile image.Rectangle, found bool) {
	iws.m.Lock()
	defer iws.m.Unlock()

	// Get unstarted tile
	if len(iws.unstarted) > 0 {
		for tile = range iws.unstarted {
			break
		}
		delete(iws.unstarted, tile)

		// Move popped tile to currently processed tiles
		iws.inProcess[tile] = struct{}{}
		return tile, true
	}

	// If there is no unstarted tile, we work again on a started one
	if len(iws.inProcess) > 0 {
		for tile = range iws.inProcess {
			break
		}

		return tile, true
	}

	return image.Rectangle{}, false
}

// GetImage implements fractal.ImgProvider. It blocks until every tile is rendered.
func (iws *imgWorkScheduler) GetImage() (image.RGBA, error) {
	<-iws.ctx.Done()
	iws.m.Lock()
	defer iws.m.Unlock()
	return *iws.img, nil
}

var _ fractal.ImgProvider = (*imgWorkScheduler)(nil)

type progress struct {
	Kind        string  `json:"kind"`
	Finished    float32 `json:"finished"`
	TilesDone   int     `json:"tilesDone"`
	TilesTotal  int     `json:"tilesTotal"`
	Workers     int     `json:"workers"`
	Done        bool    `json:"done"`
	ImageWidth  int     `json:"imageWidth"`
	ImageHeight int     `json:"imageHeight"`
}

func (iws *imgWorkScheduler) progress() progress {
	iws.m.Lock()
	defer iws.m.Unlock()
	return progress{
		Kind:        iws.params.Kind.String(),
		Finished:    float32(iws.finishedPixels) / float32(iws.totalPixels),
		TilesDone:   len(iws.finished),
		TilesTotal:  len(iws.finished) + len(iws.inProcess) + len(iws.unstarted),
		Workers:     iws.workers,
		Done:        len(iws.unstarted) == 0 && len(iws.inProcess) == 0,
		ImageWidth:  iws.params.Width,
		ImageHeight: iws.params.Height,
	}
}

func (iws *imgWorkScheduler) tileFinished(tileImg image.RGBA) {
	rect := tileImg.Bounds()
	iws.m.Lock()
	defer iws.m.Unlock()

	_, found := iws.inProcess[rect]
	if !found {
		// another worker delivered this tile first
		return
	}

	draw.Draw(
		iws.img,
		rect,     // destination rectangle (global coords)
		&tileImg, // source image
		rect.Min, // source start
		draw.Src,
	)

	iws.finishedPixels += rect.Dx() * rect.Dy()
	delete(iws.inProcess, rect)
	iws.finished[rect] = struct{}{}
	log.Printf("finished: %f", float32(iws.finishedPixels)/float32(iws.totalPixels))

	if len(iws.unstarted) == 0 && len(iws.inProcess) == 0 {
		iws.ctxCancel()
	}
}

func (iws *imgWorkScheduler) incActiveWorkers() {
	iws.m.Lock()
	iws.workers++
	w := iws.workers
	iws.m.Unlock()

	log.Printf("workers: %d", w)
}

func (iws *imgWorkScheduler) decActiveWorkers() {
	iws.m.Lock()
	iws.workers--
	w := iws.workers
	iws.m.Unlock()

	log.Printf("workers: %d", w)
}

// addRenderer renders unfinished tiles on the provided Renderer until none are left.
// It can be called from multiple goroutines in parallel.
func (iws *imgWorkScheduler) addRenderer(renderer fractal.Renderer) error {
	iws.incActiveWorkers()
	defer iws.decActiveWorkers()

	for {
		tile, found := iws.popTile()
		if !found {
			return nil
		}
		tileImg, err := renderer.RenderTile(iws.params, tile)
		if err != nil {
			// the tile stays in process, so other workers pick it up again
			log.Printf("render of tile %s failed: %v", tile, err)
			return err
		}
		iws.tileFinished(tileImg)
	}
}
