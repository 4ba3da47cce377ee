package feed

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tOgg1/herald/internal/logging"
)

// Connection tuning.
var (
	writeWait    = 10 * time.Second    // time allowed to write a message to the peer
	pongWait     = 30 * time.Second    // time allowed to read the next pong
	pingInterval = (pongWait * 9) / 10 // ping cadence derived from pongWait
	egressSize   = 64                  // outbound envelope buffer
)

// envelope is the wire frame exchanged with the feed service.
type envelope struct {
	Op      string          `json:"op"`
	ID      string          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Path    string          `json:"path,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Focused *bool           `json:"focused,omitempty"`
}

const (
	opSubscribe = "subscribe"
	opRequest   = "request"
	opResponse  = "response"
	opEvent     = "event"
	opFocus     = "focus"
)

// WSClient is the websocket implementation of Client. A single Run
// call owns one connection session; registration methods may be called
// before or between sessions. Events for one path are dispatched in
// arrival order from the read loop.
type WSClient struct {
	url     string
	log     zerolog.Logger
	focused atomic.Bool

	mu            sync.Mutex
	conn          *websocket.Conn
	egress        chan envelope
	sessionDone   chan struct{}
	pending       map[string]chan envelope
	observers     map[string][]Handler
	eventHandlers []Handler
	onConnect     []func()
	onDisconnect  []func()
}

// NewWSClient creates a feed client for the given websocket URL.
func NewWSClient(url string) *WSClient {
	return &WSClient{
		url:       url,
		log:       logging.Component("feed"),
		observers: make(map[string][]Handler),
	}
}

// OnConnect registers a connection-established callback.
func (c *WSClient) OnConnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = append(c.onConnect, fn)
}

// OnDisconnect registers a connection-lost callback.
func (c *WSClient) OnDisconnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconnect = append(c.onDisconnect, fn)
}

// Observe subscribes to a resource path. When registered mid-session
// the subscription is sent immediately, otherwise on the next connect.
func (c *WSClient) Observe(path string, h Handler) {
	c.mu.Lock()
	c.observers[path] = append(c.observers[path], h)
	eg, done := c.egress, c.sessionDone
	c.mu.Unlock()

	if eg != nil {
		c.send(eg, done, envelope{Op: opSubscribe, Path: path})
	}
}

// OnEvent registers a handler for every raw path-tagged update.
func (c *WSClient) OnEvent(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eventHandlers = append(c.eventHandlers, h)
}

// IsFocused reports the last focus state pushed by the service.
func (c *WSClient) IsFocused() bool {
	return c.focused.Load()
}

// Run dials the feed and services the connection until it drops or ctx
// is cancelled. Reconnection policy belongs to the caller.
func (c *WSClient) Run(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrTransport, c.url, err)
	}

	done := make(chan struct{})
	eg := make(chan envelope, egressSize)

	c.mu.Lock()
	c.conn = conn
	c.egress = eg
	c.sessionDone = done
	c.pending = make(map[string]chan envelope)
	paths := make([]string, 0, len(c.observers))
	for p := range c.observers {
		paths = append(paths, p)
	}
	connectFns := append([]func(){}, c.onConnect...)
	c.mu.Unlock()

	go c.writePump(conn, eg, done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for _, p := range paths {
		c.send(eg, done, envelope{Op: opSubscribe, Path: p})
	}
	c.log.Info().Str("url", c.url).Msg("feed connected")
	for _, fn := range connectFns {
		fn()
	}

	readErr := c.readLoop(conn)
	c.teardown(conn, done)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return readErr
}

// readLoop dispatches inbound frames until the connection fails.
func (c *WSClient) readLoop(conn *websocket.Conn) error {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			return fmt.Errorf("%w: read: %v", ErrTransport, err)
		}

		switch env.Op {
		case opEvent:
			c.dispatch(env.Path, env.Data)
		case opResponse:
			c.mu.Lock()
			ch, ok := c.pending[env.ID]
			delete(c.pending, env.ID)
			c.mu.Unlock()
			if ok {
				ch <- env
			}
		case opFocus:
			if env.Focused != nil {
				c.focused.Store(*env.Focused)
			}
		default:
			c.log.Debug().Str("op", env.Op).Msg("ignoring unknown frame")
		}
	}
}

// dispatch delivers an event to path observers and raw event handlers.
// Handlers run on the read loop; anything slow must spawn its own task.
func (c *WSClient) dispatch(path string, data json.RawMessage) {
	c.mu.Lock()
	handlers := append([]Handler{}, c.observers[path]...)
	handlers = append(handlers, c.eventHandlers...)
	c.mu.Unlock()

	for _, h := range handlers {
		h(path, data)
	}
}

// writePump serializes outbound frames and keeps the connection alive.
func (c *WSClient) writePump(conn *websocket.Conn, eg chan envelope, done chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case env := <-eg:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				c.log.Debug().Err(err).Msg("write failed")
				conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				conn.Close()
				return
			}
		case <-done:
			return
		}
	}
}

// teardown ends the session: the connection is closed, every pending
// request fails with ErrTransport, and disconnect callbacks fire.
func (c *WSClient) teardown(conn *websocket.Conn, done chan struct{}) {
	conn.Close()
	close(done)

	c.mu.Lock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.conn = nil
	c.egress = nil
	c.sessionDone = nil
	disconnectFns := append([]func(){}, c.onDisconnect...)
	c.mu.Unlock()

	c.log.Warn().Str("url", c.url).Msg("feed disconnected")
	for _, fn := range disconnectFns {
		fn()
	}
}

// send enqueues an envelope unless the session is already gone.
func (c *WSClient) send(eg chan envelope, done chan struct{}, env envelope) bool {
	select {
	case eg <- env:
		return true
	case <-done:
		return false
	}
}

// request performs a correlated request/response round trip.
func (c *WSClient) request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var raw json.RawMessage
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		raw = b
	}

	id := uuid.NewString()
	ch := make(chan envelope, 1)

	c.mu.Lock()
	eg, done := c.egress, c.sessionDone
	if eg == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: not connected", ErrTransport)
	}
	c.pending[id] = ch
	c.mu.Unlock()

	env := envelope{Op: opRequest, ID: id, Method: method, Path: path, Body: raw}
	if !c.send(eg, done, env) {
		c.forget(id)
		return nil, fmt.Errorf("%w: connection lost", ErrTransport)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("%w: connection lost", ErrTransport)
		}
		if resp.Error != "" {
			return nil, fmt.Errorf("%w: %s %s: %s", ErrTransport, method, path, resp.Error)
		}
		return resp.Data, nil
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	}
}

// forget drops a pending request entry after a local abort.
func (c *WSClient) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Get fetches a JSON resource.
func (c *WSClient) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.request(ctx, "GET", path, nil)
}

// GetAsset fetches a binary asset. Asset responses carry the bytes as
// a base64 JSON string.
func (c *WSClient) GetAsset(ctx context.Context, path string) ([]byte, error) {
	data, err := c.request(ctx, "ASSET", path, nil)
	if err != nil {
		return nil, err
	}
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return nil, fmt.Errorf("%w: asset %s: not base64 payload", ErrTransport, path)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: asset %s: %v", ErrTransport, path, err)
	}
	return raw, nil
}

// Post sends a body to a path.
func (c *WSClient) Post(ctx context.Context, path string, body any) error {
	_, err := c.request(ctx, "POST", path, body)
	return err
}

// Put replaces the resource at a path.
func (c *WSClient) Put(ctx context.Context, path string, body any) error {
	_, err := c.request(ctx, "PUT", path, body)
	return err
}

// FocusMainWindow raises the client window.
func (c *WSClient) FocusMainWindow(ctx context.Context) error {
	return c.Post(ctx, PathFocusWindow, nil)
}
