package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tOgg1/herald/internal/feed"
)

// sinkCall records one notification action.
type sinkCall struct {
	Op   string // show_invitation, hide_invitation, show_chat, hide_chats, clear_all
	ID   string
	Icon string
	Name string
	Body string
}

// fakeSink records every action the engine emits.
type fakeSink struct {
	mu    sync.Mutex
	calls []sinkCall
}

func (s *fakeSink) ShowInvitation(id, iconPath, fromName, label string) {
	s.record(sinkCall{Op: "show_invitation", ID: id, Icon: iconPath, Name: fromName, Body: label})
}

func (s *fakeSink) HideInvitation(id string) {
	s.record(sinkCall{Op: "hide_invitation", ID: id})
}

func (s *fakeSink) ShowChat(conversationID, iconPath, name, body string) {
	s.record(sinkCall{Op: "show_chat", ID: conversationID, Icon: iconPath, Name: name, Body: body})
}

func (s *fakeSink) HideChats(conversationID string) {
	s.record(sinkCall{Op: "hide_chats", ID: conversationID})
}

func (s *fakeSink) ClearAll() {
	s.record(sinkCall{Op: "clear_all"})
}

func (s *fakeSink) record(c sinkCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

func (s *fakeSink) all() []sinkCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sinkCall{}, s.calls...)
}

func (s *fakeSink) ops(op string) []sinkCall {
	var out []sinkCall
	for _, c := range s.all() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// fakeIcons resolves icons locally, optionally failing.
type fakeIcons struct {
	err error
}

func (f *fakeIcons) ResolveIconPath(ctx context.Context, subjectName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "/icons/" + subjectName + ".png", nil
}

// fakeGetter serves canned JSON payloads by path.
type fakeGetter struct {
	mu       sync.Mutex
	payloads map[string]string
	failing  map[string]bool
}

func newFakeGetter() *fakeGetter {
	return &fakeGetter{
		payloads: make(map[string]string),
		failing:  make(map[string]bool),
	}
}

func (g *fakeGetter) set(path, payload string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payloads[path] = payload
}

func (g *fakeGetter) fail(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failing[path] = true
}

func (g *fakeGetter) Get(ctx context.Context, path string) (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failing[path] {
		return nil, fmt.Errorf("%w: forced failure", feed.ErrTransport)
	}
	payload, ok := g.payloads[path]
	if !ok {
		return nil, fmt.Errorf("%w: no payload for %s", feed.ErrTransport, path)
	}
	return json.RawMessage(payload), nil
}

// fakeFeed is a minimal feed.Client for engine wiring tests. Events
// are delivered synchronously from the test goroutine.
type fakeFeed struct {
	*fakeGetter
	focused       bool
	observers     map[string][]feed.Handler
	eventHandlers []feed.Handler
	onConnect     []func()
	onDisconnect  []func()
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		fakeGetter: newFakeGetter(),
		observers:  make(map[string][]feed.Handler),
	}
}

func (f *fakeFeed) OnConnect(fn func()) { f.onConnect = append(f.onConnect, fn) }
func (f *fakeFeed) OnDisconnect(fn func()) { f.onDisconnect = append(f.onDisconnect, fn) }

func (f *fakeFeed) Observe(path string, h feed.Handler) {
	f.observers[path] = append(f.observers[path], h)
}

func (f *fakeFeed) OnEvent(h feed.Handler) {
	f.eventHandlers = append(f.eventHandlers, h)
}

func (f *fakeFeed) GetAsset(ctx context.Context, path string) ([]byte, error) {
	return []byte("png"), nil
}

func (f *fakeFeed) Post(ctx context.Context, path string, body any) error { return nil }
func (f *fakeFeed) Put(ctx context.Context, path string, body any) error { return nil }
func (f *fakeFeed) IsFocused() bool { return f.focused }
func (f *fakeFeed) FocusMainWindow(ctx context.Context) error { return nil }

func (f *fakeFeed) connect() {
	for _, fn := range f.onConnect {
		fn()
	}
}

func (f *fakeFeed) disconnect() {
	for _, fn := range f.onDisconnect {
		fn()
	}
}

func (f *fakeFeed) emit(path, payload string) {
	data := json.RawMessage(payload)
	for _, h := range f.observers[path] {
		h(path, data)
	}
	for _, h := range f.eventHandlers {
		h(path, data)
	}
}
