// Package activation parses the tokenized action strings attached to
// notifications and dispatches them back into the feed.
package activation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tOgg1/herald/internal/feed"
	"github.com/tOgg1/herald/internal/logging"
)

// Action names.
const (
	ActionFocus     = "focus"
	ActionFocusChat = "focus_chat"
	ActionInvite    = "invite"
	ActionReply     = "reply"
)

// Invitation verdicts.
const (
	VerdictAccept  = "accept"
	VerdictDecline = "decline"
)

// Activation is a parsed user-activation callback.
type Activation struct {
	// Action is one of the Action constants.
	Action string

	// ConversationID is set for focus_chat and reply.
	ConversationID string

	// InvitationID and Verdict are set for invite.
	InvitationID string
	Verdict      string

	// Content is the reply body, taken from the "content" field.
	Content string
}

// Parse decodes an "action|arg1|arg2|..." token string plus free-form
// key/value fields into an Activation.
func Parse(action string, fields map[string]string) (Activation, error) {
	tokens := strings.Split(action, "|")

	switch tokens[0] {
	case ActionFocus:
		return Activation{Action: ActionFocus}, nil

	case ActionFocusChat:
		if len(tokens) != 2 || tokens[1] == "" {
			return Activation{}, fmt.Errorf("focus_chat: want conversation id, got %q", action)
		}
		return Activation{Action: ActionFocusChat, ConversationID: tokens[1]}, nil

	case ActionInvite:
		if len(tokens) != 3 || tokens[1] == "" {
			return Activation{}, fmt.Errorf("invite: want id and verdict, got %q", action)
		}
		if tokens[2] != VerdictAccept && tokens[2] != VerdictDecline {
			return Activation{}, fmt.Errorf("invite: unknown verdict %q", tokens[2])
		}
		return Activation{Action: ActionInvite, InvitationID: tokens[1], Verdict: tokens[2]}, nil

	case ActionReply:
		if len(tokens) != 2 || tokens[1] == "" {
			return Activation{}, fmt.Errorf("reply: want conversation id, got %q", action)
		}
		content, ok := fields["content"]
		if !ok || content == "" {
			return Activation{}, fmt.Errorf("reply: missing content field")
		}
		return Activation{Action: ActionReply, ConversationID: tokens[1], Content: content}, nil

	default:
		return Activation{}, fmt.Errorf("unknown action %q", tokens[0])
	}
}

// Dispatcher turns activations into feed calls.
type Dispatcher struct {
	feed feed.Client
	log  zerolog.Logger
}

// NewDispatcher creates a dispatcher bound to a feed client.
func NewDispatcher(client feed.Client) *Dispatcher {
	return &Dispatcher{
		feed: client,
		log:  logging.Component("activation"),
	}
}

// Dispatch executes a parsed activation against the feed.
func (d *Dispatcher) Dispatch(ctx context.Context, a Activation) error {
	switch a.Action {
	case ActionFocus:
		return d.feed.FocusMainWindow(ctx)

	case ActionFocusChat:
		if err := d.feed.FocusMainWindow(ctx); err != nil {
			return err
		}
		body := map[string]string{"id": a.ConversationID}
		return d.feed.Put(ctx, feed.PathActiveConversation, body)

	case ActionInvite:
		return d.feed.Post(ctx, feed.InvitationVerdictPath(a.InvitationID, a.Verdict), nil)

	case ActionReply:
		body := map[string]string{"body": a.Content}
		return d.feed.Post(ctx, feed.ConversationMessagesPath(a.ConversationID), body)

	default:
		return fmt.Errorf("unknown action %q", a.Action)
	}
}
