package feed

import (
	"fmt"
	"strings"
)

// Resource paths on the feed. The conversations prefix multiplexes the
// per-conversation resources and two reserved control resources.
const (
	PathSession            = "/chat/v1/session"
	PathPendingInvitations = "/invitations/v1/pending"
	PathActiveConversation = "/chat/v1/conversations/active"
	PathFocusWindow        = "/window/v1/focus"

	conversationsPrefix = "/chat/v1/conversations/"
)

// Reserved pseudo-identifiers inside the conversations path space.
// "active" is the active-conversation control resource, "notify" the
// aggregate unread resource; neither is a real conversation.
const (
	ConversationIDActive = "active"
	ConversationIDNotify = "notify"
)

// ConversationID extracts the conversation identifier from a
// per-conversation update path. Returns false for any other path shape,
// including nested sub-resources.
func ConversationID(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, conversationsPrefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

// ReservedConversationID reports whether id names a control resource
// rather than a conversation.
func ReservedConversationID(id string) bool {
	return id == ConversationIDActive || id == ConversationIDNotify
}

// PlayerPath is the lookup path for a player record by display name.
func PlayerPath(name string) string {
	return "/players/v1/by-name/" + name
}

// QueuePath is the lookup path for queue metadata.
func QueuePath(queueID int64) string {
	return fmt.Sprintf("/queues/v1/%d", queueID)
}

// MapPath is the lookup path for map metadata.
func MapPath(mapID int64) string {
	return fmt.Sprintf("/maps/v1/%d", mapID)
}

// IconAssetPath is the binary asset path for a profile icon.
func IconAssetPath(iconID int) string {
	return fmt.Sprintf("/assets/v1/profile-icons/%d.png", iconID)
}

// InvitationVerdictPath is the action path accepting or declining an
// invitation. verdict is "accept" or "decline".
func InvitationVerdictPath(invitationID, verdict string) string {
	return fmt.Sprintf("/invitations/v1/%s/%s", invitationID, verdict)
}

// ConversationMessagesPath is the post path for sending a message.
func ConversationMessagesPath(conversationID string) string {
	return conversationsPrefix + conversationID + "/messages"
}
