// Package notify is the notification-presentation boundary. The
// engine's show/hide decisions land here; delivery to the OS is
// delegated to a pluggable backend.
package notify

// Sink consumes the engine's notification decisions. Hide operations
// are guaranteed no-ops when the target is not currently shown.
type Sink interface {
	// ShowInvitation displays (or replaces) the notification for a
	// pending invitation.
	ShowInvitation(id, iconPath, fromName, label string)

	// HideInvitation withdraws an invitation notification.
	HideInvitation(id string)

	// ShowChat displays (or replaces) the message notification for a
	// conversation.
	ShowChat(conversationID, iconPath, name, body string)

	// HideChats withdraws all notifications for a conversation.
	HideChats(conversationID string)

	// ClearAll withdraws every notification.
	ClearAll()
}
