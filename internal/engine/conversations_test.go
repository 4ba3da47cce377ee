package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func convPayload(typ string, unread int, fromID int64, body string) string {
	return fmt.Sprintf(`{"id":"c1","type":%q,"name":"Ari","unreadMessageCount":%d,"lastMessage":{"body":%q,"fromId":%d}}`,
		typ, unread, body, fromID)
}

func newWatcher(focused bool) (*ConversationWatcher, *SessionState, *fakeSink) {
	session := NewSessionState()
	sink := &fakeSink{}
	w := NewConversationWatcher(session, &fakeIcons{}, sink, func() bool { return focused })
	return w, session, sink
}

func handle(w *ConversationWatcher, id, payload string) {
	w.HandleEvent(context.Background(), "/chat/v1/conversations/"+id, json.RawMessage(payload))
}

func TestWatcher_NewMessageInBackgroundConversation(t *testing.T) {
	w, _, sink := newWatcher(true)

	handle(w, "c1", convPayload("chat", 1, 42, "hey"))

	shows := sink.ops("show_chat")
	require.Len(t, shows, 1)
	assert.Equal(t, "c1", shows[0].ID)
	assert.Equal(t, "/icons/Ari.png", shows[0].Icon)
	assert.Equal(t, "Ari", shows[0].Name)
	assert.Equal(t, "hey", shows[0].Body)
	assert.Equal(t, 1, w.Watermark("c1"))
}

func TestWatcher_SameCountDoesNotRenotify(t *testing.T) {
	w, _, sink := newWatcher(true)

	handle(w, "c1", convPayload("chat", 1, 42, "hey"))
	handle(w, "c1", convPayload("chat", 1, 42, "hey"))

	assert.Len(t, sink.ops("show_chat"), 1)
	assert.Equal(t, 1, w.Watermark("c1"))
}

func TestWatcher_DecreasedCountDoesNotNotifyButMovesWatermark(t *testing.T) {
	w, _, sink := newWatcher(true)

	handle(w, "c1", convPayload("chat", 3, 42, "a"))
	handle(w, "c1", convPayload("chat", 1, 42, "b"))

	assert.Len(t, sink.ops("show_chat"), 1)
	// The watermark follows the latest event even backwards; it is a
	// cursor, not a high-water mark.
	assert.Equal(t, 1, w.Watermark("c1"))

	// The cursor move means the next increase past 1 notifies again.
	handle(w, "c1", convPayload("chat", 2, 42, "c"))
	assert.Len(t, sink.ops("show_chat"), 2)
}

func TestWatcher_ActiveConversationSuppressed(t *testing.T) {
	w, session, sink := newWatcher(true)
	session.SetActiveConversation("c1")

	handle(w, "c1", convPayload("chat", 5, 42, "hey"))

	assert.Empty(t, sink.ops("show_chat"))
	assert.Equal(t, 5, w.Watermark("c1"))
}

func TestWatcher_UnfocusedActiveConversationNotifies(t *testing.T) {
	w, session, sink := newWatcher(false)
	session.SetActiveConversation("c1")
	session.SetLocalUser(7)

	// Someone else writes into the active conversation while the
	// client window is backgrounded.
	handle(w, "c1", convPayload("chat", 1, 42, "hey"))
	require.Len(t, sink.ops("show_chat"), 1)

	// The local user's own message never notifies.
	handle(w, "c1", convPayload("chat", 2, 7, "me"))
	assert.Len(t, sink.ops("show_chat"), 1)
}

func TestWatcher_FocusedActiveConversationStaysQuiet(t *testing.T) {
	w, session, sink := newWatcher(true)
	session.SetActiveConversation("c1")
	session.SetLocalUser(7)

	handle(w, "c1", convPayload("chat", 1, 42, "hey"))
	assert.Empty(t, sink.ops("show_chat"))
}

func TestWatcher_RejectsNonNotifiableKinds(t *testing.T) {
	w, _, sink := newWatcher(true)

	handle(w, "c1", convPayload("system", 4, 42, "maintenance"))
	assert.Empty(t, sink.all())
}

func TestWatcher_ClubConversationsNotify(t *testing.T) {
	w, _, sink := newWatcher(true)

	handle(w, "c1", convPayload("club", 1, 42, "club msg"))
	assert.Len(t, sink.ops("show_chat"), 1)
}

func TestWatcher_RejectsReservedAndMalformed(t *testing.T) {
	w, _, sink := newWatcher(true)

	handle(w, "active", convPayload("chat", 1, 42, "x"))
	handle(w, "notify", convPayload("chat", 1, 42, "x"))
	w.HandleEvent(context.Background(), "/chat/v1/session", json.RawMessage(convPayload("chat", 1, 42, "x")))
	handle(w, "c1", "")
	handle(w, "c1", "null")
	handle(w, "c1", `{"id":"c1","type":"chat","unreadMessageCount":1}`) // no lastMessage
	handle(w, "c1", `not json`)

	assert.Empty(t, sink.all())
	assert.Zero(t, w.Watermark("active"))
	assert.Zero(t, w.Watermark("c1"))
}

func TestWatcher_EnrichmentFailureSkipsNotificationOnly(t *testing.T) {
	session := NewSessionState()
	sink := &fakeSink{}
	w := NewConversationWatcher(session, &fakeIcons{err: ErrLookup}, sink, func() bool { return true })

	handle(w, "c1", convPayload("chat", 2, 42, "hey"))

	assert.Empty(t, sink.all())
	// Bookkeeping still completed; the session does not desynchronize.
	assert.Equal(t, 2, w.Watermark("c1"))
}
