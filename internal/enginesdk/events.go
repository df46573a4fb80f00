package enginesdk

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/imroc/req/v3"
)

const (
	eventsBufferSize        = 16
	eventsReconnectDelay    = 1 * time.Second
	eventsMaxReconnectDelay = 8 * time.Second
	eventsReconnectTimeout  = 10 * time.Second
	wsClientMaxMessageSize  = 64 * 1024 // status frames are tiny
	eventsPath              = "/api/v1/sync/events"
)

// EventsAPI streams live status updates from the engine over a WebSocket.
type EventsAPI struct {
	client           *req.Client
	wsClient         *wsClient
	updates          chan *StatusUpdate
	ctx              context.Context
	cancel           context.CancelFunc
	mu               sync.RWMutex
	connected        bool
	reconnectAttempt int
}

// newEventsAPI creates a new EventsAPI instance
func newEventsAPI(client *req.Client) *EventsAPI {
	ctx, cancel := context.WithCancel(context.Background())

	return &EventsAPI{
		client:  client,
		ctx:     ctx,
		cancel:  cancel,
		updates: make(chan *StatusUpdate, eventsBufferSize),
	}
}

// Connect initiates a WebSocket connection
func (e *EventsAPI) Connect(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.connected && e.wsClient != nil {
		return nil
	}

	wsClient, err := e.connectLocked(ctx)
	if err != nil {
		return fmt.Errorf("sdk: events: connect failed: %w", err)
	}

	go e.manageConnection(wsClient)
	return nil
}

// IsConnected returns the current connection status
func (e *EventsAPI) IsConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.connected
}

// Get returns a channel for receiving status updates
func (e *EventsAPI) Get() <-chan *StatusUpdate {
	return e.updates
}

// Close terminates the WebSocket connection and cleans up
func (e *EventsAPI) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancel()

	if e.wsClient != nil {
		e.wsClient.Close()
		e.wsClient = nil
	}

	e.connected = false
	slog.Info("engine events closed")
}

// connectLocked creates a new WebSocket connection (must be called with lock held)
func (e *EventsAPI) connectLocked(ctx context.Context) (*wsClient, error) {
	// Clean up any existing connection
	if e.wsClient != nil {
		e.wsClient.Close()
		e.wsClient = nil
		e.connected = false
	}

	url, err := e.fullURL()
	if err != nil {
		return nil, fmt.Errorf("sdk: events: failed to get full url: %w", err)
	}

	// Dial with the same headers as the HTTP client, auth token included
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: e.client.Headers.Clone(),
	})
	if err != nil {
		return nil, fmt.Errorf("sdk: events: failed to connect to %s: %w", url, err)
	}
	conn.SetReadLimit(wsClientMaxMessageSize)

	// Create and start client
	wsClient := newWSClient(conn)
	wsClient.Start(e.ctx)

	e.wsClient = wsClient
	e.connected = true

	slog.Info("engine events connected")
	return wsClient, nil
}

// manageConnection handles the WebSocket connection lifecycle
func (e *EventsAPI) manageConnection(wsClient *wsClient) {
	go e.consumeUpdates(wsClient)

	select {
	case <-wsClient.closed:
		slog.Info("engine events disconnected, will reconnect")

		e.mu.Lock()
		if e.wsClient == wsClient {
			e.wsClient = nil
			e.connected = false
			e.reconnectAttempt = 0
		}
		e.mu.Unlock()

		select {
		case <-e.ctx.Done():
			return
		default:
			e.reconnectWithBackoff()
		}

	case <-e.ctx.Done():
		return
	}
}

// consumeUpdates processes incoming frames from the websocket client
func (e *EventsAPI) consumeUpdates(wsClient *wsClient) {
	for {
		select {
		case <-e.ctx.Done():
			return

		case <-wsClient.closed:
			return

		case update, ok := <-wsClient.updates:
			if !ok {
				slog.Debug("engine events rx closed")
				return
			}

			slog.Debug("engine events rx", "status", update.Status)

			select {
			case e.updates <- update:
				// Successfully delivered
			default:
				slog.Warn("engine events rx buffer full. dropped", "status", update.Status)
			}
		}
	}
}

// reconnectWithBackoff attempts to reconnect with exponential backoff
func (e *EventsAPI) reconnectWithBackoff() {
	delay := eventsReconnectDelay

	for {
		e.reconnectAttempt++

		// Check if we've been cancelled
		select {
		case <-e.ctx.Done():
			return
		case <-time.After(delay):
			// Continue with reconnect
		}

		slog.Info("engine events attempting reconnection", "attempt", e.reconnectAttempt, "delay", delay)

		ctx, cancel := context.WithTimeout(e.ctx, eventsReconnectTimeout)

		e.mu.Lock()
		wsClient, err := e.connectLocked(ctx)
		e.mu.Unlock()

		cancel()

		if err == nil {
			go e.manageConnection(wsClient)
			return
		}

		// Add some jitter to the delay
		delay = min(delay*2, eventsMaxReconnectDelay)
		jitterFactor := 0.75 + (rand.Float64() * 0.5)
		delay = time.Duration(float64(delay) * jitterFactor)
	}
}

// fullURL builds the complete WebSocket URL
func (e *EventsAPI) fullURL() (string, error) {
	fullUrl, err := url.JoinPath(e.client.BaseURL, eventsPath)
	if err != nil {
		return "", fmt.Errorf("failed to join path: %w", err)
	}

	return toWebsocketURL(fullUrl), nil
}

// toWebsocketURL converts an HTTP URL to a WebSocket URL
func toWebsocketURL(url string) string {
	if strings.HasPrefix(url, "https://") {
		return "wss://" + url[8:]
	} else if strings.HasPrefix(url, "http://") {
		return "ws://" + url[7:]
	}
	return url
}
