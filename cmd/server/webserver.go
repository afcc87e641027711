package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	fractal "github.com/marben/dist_fractal"
)

// webServer serves the rendered image, progress and the bulb frame stream,
// and hands websocket connections on /ws to the returned listener.
func webServer(ctx context.Context, addr string, iws *imgWorkScheduler, frames frameConfig) (*WebsocketListener, *http.Server) {
	l := NewWSListener(ctx, addr+"/ws")
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", websocketHandler(l))
	mux.HandleFunc("/frames", framesHandler(frames))
	mux.HandleFunc("/image.png", imageHandler(iws, 0))
	mux.HandleFunc("/thumb.png", imageHandler(iws, 256))
	mux.HandleFunc("/progress", progressHandler(iws))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("listening on http://localhost%s", addr)
	return l, srv
}

// websocketHandler handles the http ws endpoint
// if websocket is succesfully initialized it is passed to WebsocketListener so it can be accepted
func websocketHandler(l *WebsocketListener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			log.Println(err)
			return
		}

		select {
		case l.ch <- c:
		case <-l.ctx.Done():
			c.Close(websocket.StatusGoingAway, "server shutting down")
		}
	}
}

type frameConfig struct {
	params   fractal.Params
	interval time.Duration
}

// framesHandler streams bulb frames to the client until it disconnects.
func framesHandler(cfg frameConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
		if err != nil {
			log.Println(err)
			return
		}
		defer c.CloseNow()

		log.Printf("frame stream to %s started", r.RemoteAddr)
		loop := fractal.NewLoop(cfg.params, cfg.interval, nil)
		if err := fractal.StreamFrames(r.Context(), c, loop); err != nil {
			log.Printf("frame stream to %s: %v", r.RemoteAddr, err)
			return
		}
		log.Printf("frame stream to %s ended after %d frames", r.RemoteAddr, loop.Frames())
	}
}

// imageHandler waits for the render to finish and serves it as PNG,
// scaled down to maxW when maxW > 0.
func imageHandler(iws *imgWorkScheduler, maxW int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-iws.ctx.Done():
		case <-r.Context().Done():
			return
		}
		img, err := iws.GetImage()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		var out image.Image = &img
		if maxW > 0 {
			out = fractal.Thumbnail(&img, maxW)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, out); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if _, err := w.Write(buf.Bytes()); err != nil {
			log.Printf("write image: %v", err)
		}
	}
}

func progressHandler(iws *imgWorkScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(iws.progress()); err != nil {
			log.Printf("write progress: %v", err)
		}
	}
}

// WebsocketListener implements net.Listener over the connections accepted
// by websocketHandler. Each one carries irpc traffic in binary messages.
type WebsocketListener struct {
	ch     chan *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	addr   wsAddr
}

var _ net.Listener = (*WebsocketListener)(nil)

func NewWSListener(ctx context.Context, addr string) *WebsocketListener {
	ctx, cancel := context.WithCancel(ctx)
	return &WebsocketListener{
		ch:     make(chan *websocket.Conn),
		ctx:    ctx,
		cancel: cancel,
		addr:   wsAddr{addr: addr},
	}
}

func (l *WebsocketListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.ch:
		return websocket.NetConn(l.ctx, c, websocket.MessageBinary), nil
	case <-l.ctx.Done():
		if context.Cause(l.ctx) == context.Canceled {
			return nil, net.ErrClosed
		}
		return nil, context.Cause(l.ctx)
	}
}

func (l *WebsocketListener) Addr() net.Addr {
	return l.addr
}

func (l *WebsocketListener) Close() error {
	l.cancel()
	return nil
}

// wsAddr implements net.Addr
type wsAddr struct {
	addr string
}

func (a wsAddr) Network() string {
	return "ws"
}

func (a wsAddr) String() string {
	return a.addr
}
