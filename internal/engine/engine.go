package engine

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/tOgg1/herald/internal/feed"
	"github.com/tOgg1/herald/internal/logging"
	"github.com/tOgg1/herald/internal/model"
	"github.com/tOgg1/herald/internal/notify"
)

// Engine wires the feed to the reconcilers. Each feed event is
// processed by a short-lived task of its own; enrichment may suspend
// one task while later events complete, so effects across independent
// subjects may reorder. That is the accepted consistency model of the
// upstream feed.
type Engine struct {
	feed          feed.Client
	sink          notify.Sink
	session       *SessionState
	invitations   *InvitationReconciler
	conversations *ConversationWatcher
	log           zerolog.Logger
}

// New assembles an engine around a feed client, a notification sink,
// and an icon resolver.
func New(client feed.Client, sink notify.Sink, icons IconResolver) *Engine {
	session := NewSessionState()
	return &Engine{
		feed:          client,
		sink:          sink,
		session:       session,
		invitations:   NewInvitationReconciler(client, icons, sink),
		conversations: NewConversationWatcher(session, icons, sink, client.IsFocused),
		log:           logging.Component("engine"),
	}
}

// Start registers every feed subscription. Call once before the feed
// client connects.
func (e *Engine) Start() {
	e.feed.OnConnect(e.handleConnect)
	e.feed.OnDisconnect(e.handleDisconnect)
	e.feed.Observe(feed.PathSession, e.handleSession)
	e.feed.Observe(feed.PathActiveConversation, e.handleActiveConversation)
	e.feed.Observe(feed.PathPendingInvitations, e.handleInvitations)
	e.feed.OnEvent(e.handleRawEvent)
}

// Session exposes the engine-owned session state.
func (e *Engine) Session() *SessionState {
	return e.session
}

// handleConnect resets the sink: after a reconnect no assumption about
// prior local state matching remote state holds.
func (e *Engine) handleConnect() {
	e.session.SetConnected(true)
	e.sink.ClearAll()
}

func (e *Engine) handleDisconnect() {
	e.session.Reset()
	e.sink.ClearAll()
}

// handleSession tracks the local user's identity.
func (e *Engine) handleSession(path string, data json.RawMessage) {
	if model.EmptyPayload(data) {
		e.session.ClearLocalUser()
		return
	}
	player, err := model.ParsePlayer(data)
	if err != nil {
		e.log.Debug().Err(err).Msg("rejecting malformed session payload")
		return
	}
	e.session.SetLocalUser(player.ID)
}

// handleActiveConversation tracks UI conversation selection. Selecting
// a conversation dismisses its pending notifications.
func (e *Engine) handleActiveConversation(path string, data json.RawMessage) {
	active, err := model.ParseActiveConversation(data)
	if err != nil {
		e.log.Debug().Err(err).Msg("rejecting malformed active-conversation payload")
		return
	}
	if active == nil || active.ID == "" {
		e.session.ClearActiveConversation()
		return
	}
	e.session.SetActiveConversation(active.ID)
	e.sink.HideChats(active.ID)
}

// handleInvitations reconciles a full invitation snapshot. A vanished
// resource counts as the empty snapshot, hiding everything previously
// shown.
func (e *Engine) handleInvitations(path string, data json.RawMessage) {
	var invitations []model.Invitation
	if !model.EmptyPayload(data) {
		var err error
		invitations, err = model.ParseInvitations(data)
		if err != nil {
			e.log.Debug().Err(err).Msg("rejecting malformed invitation snapshot")
			return
		}
	}
	go e.invitations.Apply(context.Background(), invitations)
}

// handleRawEvent routes per-conversation updates to the watcher, each
// on its own task so a suspended enrichment never stalls the feed.
func (e *Engine) handleRawEvent(path string, data json.RawMessage) {
	if _, ok := feed.ConversationID(path); !ok {
		return
	}
	go e.conversations.HandleEvent(context.Background(), path, data)
}
