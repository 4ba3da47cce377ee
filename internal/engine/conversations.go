package engine

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tOgg1/herald/internal/feed"
	"github.com/tOgg1/herald/internal/logging"
	"github.com/tOgg1/herald/internal/model"
	"github.com/tOgg1/herald/internal/notify"
)

// IconResolver resolves a subject name to a local icon file.
type IconResolver interface {
	ResolveIconPath(ctx context.Context, subjectName string) (string, error)
}

// ConversationWatcher turns per-conversation updates into message
// notifications. A per-conversation unread watermark detects forward
// progress; the active conversation suppresses notifications unless
// the whole client window is unfocused and someone else wrote.
type ConversationWatcher struct {
	session *SessionState
	icons   IconResolver
	sink    notify.Sink
	focused func() bool
	log     zerolog.Logger

	mu         sync.Mutex
	watermarks map[string]int
}

// NewConversationWatcher creates a watcher. focused reports whether
// the client application window currently has focus.
func NewConversationWatcher(session *SessionState, icons IconResolver, sink notify.Sink, focused func() bool) *ConversationWatcher {
	return &ConversationWatcher{
		session:    session,
		icons:      icons,
		sink:       sink,
		focused:    focused,
		log:        logging.Component("conversations"),
		watermarks: make(map[string]int),
	}
}

// HandleEvent processes one raw feed update. Non-conversation paths,
// reserved control resources, empty payloads, and updates without a
// last message are no-ops. The watermark moves to the reported unread
// count whether or not a notification is shown; it is a cursor, not a
// shown flag.
func (w *ConversationWatcher) HandleEvent(ctx context.Context, path string, data json.RawMessage) {
	id, ok := feed.ConversationID(path)
	if !ok || feed.ReservedConversationID(id) {
		return
	}
	if model.EmptyPayload(data) {
		return
	}

	conv, err := model.ParseConversation(data)
	if err != nil {
		w.log.Debug().Err(err).Str("path", path).Msg("rejecting malformed update")
		return
	}
	if conv.LastMessage == nil {
		return
	}
	if !conv.Type.Notifiable() {
		return
	}

	w.mu.Lock()
	prior := w.watermarks[id]
	w.watermarks[id] = conv.UnreadMessageCount
	w.mu.Unlock()

	active := w.session.ActiveConversation()
	backgroundProgress := prior < conv.UnreadMessageCount && id != active
	unfocusedActive := !w.focused() && id == active && conv.LastMessage.FromID != w.session.LocalUser()
	if !backgroundProgress && !unfocusedActive {
		return
	}

	iconPath, err := w.icons.ResolveIconPath(ctx, conv.Name)
	if err != nil {
		w.log.Debug().Err(err).Str("conversation_id", id).Msg("skipping notification")
		return
	}
	w.sink.ShowChat(id, iconPath, conv.Name, conv.LastMessage.Body)
}

// Watermark returns the last-observed unread count for a conversation,
// zero when never observed.
func (w *ConversationWatcher) Watermark(conversationID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watermarks[conversationID]
}
