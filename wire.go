package fractal

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"net"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/marben/irpc"
	"github.com/marben/irpc/irpcgen"
	"golang.org/x/sync/errgroup"
)

// maxMessageSize bounds a single websocket message on the frame stream; a 1920×1080 frame fits.
const maxMessageSize = 16 << 20

// NewEndpoint runs an irpc endpoint over a websocket connection, offering
// services to the peer. The connection carries binary messages only and
// lives until ctx is done or the endpoint is closed.
func NewEndpoint(ctx context.Context, c *websocket.Conn, services ...irpcgen.Service) *irpc.Endpoint {
	return endpointOver(websocket.NetConn(ctx, c, websocket.MessageBinary), services...)
}

func endpointOver(conn net.Conn, services ...irpcgen.Service) *irpc.Endpoint {
	return irpc.NewEndpoint(conn,
		irpc.WithEndpointServices(services...),
		irpc.WithLocalAddress(conn.LocalAddr()),
		irpc.WithRemoteAddress(conn.RemoteAddr()),
	)
}

// Dial connects to a server's websocket endpoint at url.
// The server reaches services through the returned endpoint; the caller
// reaches the server's services by wrapping it in a generated client.
func Dial(ctx context.Context, url string, services ...irpcgen.Service) (*irpc.Endpoint, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	ep := NewEndpoint(ctx, c, services...)
	Logger().Info("connected", "url", url)
	return ep, nil
}

// StreamFrames runs loop and sends each frame over conn as a binary PNG
// message. Text messages from the peer are decoded as JSON on top of the
// loop's current snapshot, so a message may carry only the fields it changes.
// Updates that fail validation are dropped and the stream goes on.
// It returns when ctx is done or either direction fails.
func StreamFrames(ctx context.Context, conn *websocket.Conn, loop *Loop) error {
	conn.SetReadLimit(maxMessageSize)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop.Present = func(frame *image.RGBA) error {
		var buf bytes.Buffer
		if err := png.Encode(&buf, frame); err != nil {
			return fmt.Errorf("encode frame: %w", err)
		}
		return conn.Write(ctx, websocket.MessageBinary, buf.Bytes())
	}

	var g errgroup.Group
	g.Go(func() error {
		defer cancel()
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		for {
			p := loop.Params()
			if err := wsjson.Read(ctx, conn, &p); err != nil {
				if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
					return nil
				}
				return fmt.Errorf("read params: %w", err)
			}
			if err := p.Validate(); err != nil {
				Logger().Warn("camera update dropped", "err", err)
				continue
			}
			loop.SetParams(p)
		}
	})
	return g.Wait()
}

// ReadFrame receives one frame sent by StreamFrames.
func ReadFrame(ctx context.Context, conn *websocket.Conn) (image.Image, error) {
	typ, data, err := conn.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	if typ != websocket.MessageBinary {
		return nil, fmt.Errorf("read frame: unexpected %s message", typ)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return img, nil
}
