package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/herald/internal/feed"
)

func newEngine(t *testing.T) (*Engine, *fakeFeed, *fakeSink) {
	t.Helper()
	client := newFakeFeed()
	sink := &fakeSink{}
	e := New(client, sink, &fakeIcons{})
	e.Start()
	return e, client, sink
}

func TestEngine_ConnectClearsSink(t *testing.T) {
	e, client, sink := newEngine(t)

	client.connect()
	assert.True(t, e.Session().Connected())
	assert.Len(t, sink.ops("clear_all"), 1)
}

func TestEngine_DisconnectResetsSessionAndClears(t *testing.T) {
	e, client, sink := newEngine(t)

	client.connect()
	client.emit(feed.PathSession, `{"summonerId":7,"displayName":"Me","profileIconId":1}`)
	client.emit(feed.PathActiveConversation, `{"id":"c1"}`)

	client.disconnect()
	assert.False(t, e.Session().Connected())
	assert.Equal(t, UnknownUserID, e.Session().LocalUser())
	assert.Empty(t, e.Session().ActiveConversation())
	assert.Len(t, sink.ops("clear_all"), 2)
}

func TestEngine_SessionTracksLocalUser(t *testing.T) {
	e, client, _ := newEngine(t)

	client.emit(feed.PathSession, `{"summonerId":7,"displayName":"Me","profileIconId":1}`)
	assert.Equal(t, int64(7), e.Session().LocalUser())

	client.emit(feed.PathSession, "null")
	assert.Equal(t, UnknownUserID, e.Session().LocalUser())
}

func TestEngine_ActiveConversationEmitsOneHideAll(t *testing.T) {
	e, client, sink := newEngine(t)

	client.emit(feed.PathActiveConversation, `{"id":"c1"}`)
	assert.Equal(t, "c1", e.Session().ActiveConversation())

	hides := sink.ops("hide_chats")
	require.Len(t, hides, 1)
	assert.Equal(t, "c1", hides[0].ID)
}

func TestEngine_EmptyActiveConversationClearsWithoutHide(t *testing.T) {
	e, client, sink := newEngine(t)

	client.emit(feed.PathActiveConversation, `{"id":"c1"}`)
	client.emit(feed.PathActiveConversation, "null")

	assert.Empty(t, e.Session().ActiveConversation())
	assert.Len(t, sink.ops("hide_chats"), 1)
}

func TestEngine_ActiveConversationSuppressesShows(t *testing.T) {
	_, client, sink := newEngine(t)
	client.focused = true

	client.emit(feed.PathActiveConversation, `{"id":"c1"}`)
	client.emit("/chat/v1/conversations/c1",
		`{"id":"c1","type":"chat","name":"Ari","unreadMessageCount":3,"lastMessage":{"body":"hi","fromId":42}}`)

	// Conversation events run on their own task.
	assert.Never(t, func() bool {
		return len(sink.ops("show_chat")) > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestEngine_BackgroundConversationNotifies(t *testing.T) {
	_, client, sink := newEngine(t)
	client.focused = true

	client.emit("/chat/v1/conversations/c2",
		`{"id":"c2","type":"chat","name":"Ari","unreadMessageCount":1,"lastMessage":{"body":"hi","fromId":42}}`)

	require.Eventually(t, func() bool {
		return len(sink.ops("show_chat")) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "c2", sink.ops("show_chat")[0].ID)
}

func TestEngine_InvitationSnapshotFlows(t *testing.T) {
	_, client, sink := newEngine(t)
	client.set("/queues/v1/420", `{"id":420,"mapId":11,"shortName":"Ranked Solo"}`)
	client.set("/maps/v1/11", `{"id":11,"name":"Summoner's Rift"}`)

	client.emit(feed.PathPendingInvitations,
		`[{"invitationId":"a","canAcceptInvitation":true,"state":"Pending","fromSummonerName":"Ari","gameConfig":{"queueId":420}}]`)

	require.Eventually(t, func() bool {
		return len(sink.ops("show_invitation")) == 1
	}, time.Second, 5*time.Millisecond)

	client.emit(feed.PathPendingInvitations, "null")
	require.Eventually(t, func() bool {
		hides := sink.ops("hide_invitation")
		return len(hides) == 1 && hides[0].ID == "a"
	}, time.Second, 5*time.Millisecond)
}

func TestSessionState_Lifecycle(t *testing.T) {
	s := NewSessionState()
	assert.Equal(t, UnknownUserID, s.LocalUser())
	assert.Empty(t, s.ActiveConversation())
	assert.False(t, s.Connected())

	s.SetConnected(true)
	s.SetLocalUser(9)
	s.SetActiveConversation("c3")

	s.Reset()
	assert.False(t, s.Connected())
	assert.Equal(t, UnknownUserID, s.LocalUser())
	assert.Empty(t, s.ActiveConversation())
}
