package enginesdk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	wsClientChannelSize = 256
	wsClientPingPeriod  = 15 * time.Second
	wsClientPingTimeout = 5 * time.Second
)

// wsClient wraps a single live WebSocket connection to the engine. The stream
// is one-way, the engine pushes status frames and the client only pings.
type wsClient struct {
	conn      *websocket.Conn
	updates   chan *StatusUpdate // frames received from the websocket
	closed    chan struct{}      // websocket is closed
	closing   chan struct{}      // websocket is closing
	closeOnce sync.Once          // closeOnce ensures the connection is closed only once
	wg        sync.WaitGroup     // waitGroup for the read and ping loops
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		conn:    conn,
		updates: make(chan *StatusUpdate, wsClientChannelSize),
		closed:  make(chan struct{}),
		closing: make(chan struct{}),
	}
}

func (c *wsClient) Start(ctx context.Context) {
	c.wg.Add(2)
	go c.readLoop(ctx)
	go c.pingLoop(ctx)
}

func (c *wsClient) Close() {
	c.closeConnection(websocket.StatusNormalClosure, "shutdown")
	// wait for both loops to finish
	c.wg.Wait()
}

func (c *wsClient) closeConnection(status websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		// trigger internal close
		close(c.closing)
		c.conn.Close(status, reason)

		// wait for both loops to finish
		c.wg.Wait()

		// trigger client close
		close(c.closed)
		close(c.updates)
	})
}

func (c *wsClient) readLoop(ctx context.Context) {
	defer func() {
		slog.Debug("socket reader shutdown")
		c.wg.Done()
		c.closeConnection(websocket.StatusNormalClosure, "shutdown")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		default:
			// Continue with read attempt
		}

		_, raw, err := c.conn.Read(ctx)
		if err != nil {
			if !isWSExpectedCloseError(err) {
				slog.Warn("socket RECV", "error", err)
			}
			return
		}

		var update StatusUpdate
		if uerr := jsonUnmarshal(raw, &update); uerr != nil {
			slog.Warn("socket RECV decode", "error", uerr)
			continue
		}

		select {
		case <-c.closing:
			return

		case c.updates <- &update:
			// do nothing

		default:
			slog.Warn("socket RECV buffer full", "dropped", update.Status)
		}
	}
}

func (c *wsClient) pingLoop(ctx context.Context) {
	pingTicker := time.NewTicker(wsClientPingPeriod)
	defer func() {
		slog.Debug("socket pinger shutdown")
		pingTicker.Stop()
		c.wg.Done()
		c.closeConnection(websocket.StatusNormalClosure, "shutdown")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-c.closing:
			return

		case <-pingTicker.C:
			// Send ping to keep connection alive
			ctxPing, cancel := context.WithTimeout(ctx, wsClientPingTimeout)
			err := c.conn.Ping(ctxPing)
			cancel()

			if err != nil {
				slog.Error("socket PING", "error", err)
				return
			}
		}
	}
}

// isWSExpectedCloseError returns true if the error is an expected connection closure
func isWSExpectedCloseError(err error) bool {
	// Check for normal close scenarios
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
		return true
	}

	// Check for common network errors
	return errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, net.ErrClosed)
}
