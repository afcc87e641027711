// Package fractal renders escape-time fractals (Mandelbrot, Julia, Burning Ship),
// the Sierpinski attractor and a ray-marched power-8 bulb.
//
// The engine is pure: every render takes an immutable Params snapshot and fills a
// raster it owns for the duration of the pass. Tiles of a raster can be rendered
// locally (LocalRenderer) or on remote workers reached through the irpc clients
// generated from api.go, carried over a websocket (NewEndpoint, Dial). This is
// how cmd/server distributes work.
//
// The bulb is meant to be redrawn continuously: RenderFrame draws one frame and
// Loop re-invokes it on every tick until its context is cancelled.
package fractal
