// Package feed provides the client for the push-based event feed of
// the backing service: resource observation, raw event delivery, and
// request/response plus binary asset fetch primitives.
package feed

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrTransport indicates the feed is unreachable or a request failed
// in transit. It never crashes the engine; the triggering operation is
// simply abandoned.
var ErrTransport = errors.New("feed: transport failure")

// Handler receives the value at a feed path. Observe handlers get the
// latest full value on every change and an empty payload on
// disappearance; OnEvent handlers get every raw path-tagged update.
type Handler func(path string, data json.RawMessage)

// Client is the feed boundary consumed by the engine. Implementations
// deliver events for a given path in upstream emission order and do
// not buffer or reorder.
type Client interface {
	// OnConnect registers a callback fired after a session is established.
	OnConnect(fn func())

	// OnDisconnect registers a callback fired when the session drops.
	OnDisconnect(fn func())

	// Observe subscribes to a named resource path.
	Observe(path string, h Handler)

	// OnEvent registers a handler for every raw update on the feed.
	OnEvent(h Handler)

	// Get performs a request/response fetch of a JSON resource.
	Get(ctx context.Context, path string) (json.RawMessage, error)

	// GetAsset fetches a raw binary asset.
	GetAsset(ctx context.Context, path string) ([]byte, error)

	// Post sends a body to a path.
	Post(ctx context.Context, path string, body any) error

	// Put replaces the resource at a path.
	Put(ctx context.Context, path string, body any) error

	// IsFocused reports whether the client application window has focus.
	IsFocused() bool

	// FocusMainWindow raises the client application window.
	FocusMainWindow(ctx context.Context) error
}
