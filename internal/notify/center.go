package notify

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/tOgg1/herald/internal/logging"
)

// NotificationKind distinguishes the two notification families.
type NotificationKind string

const (
	KindInvitation NotificationKind = "invitation"
	KindChat       NotificationKind = "chat"
)

// Notification is a single deliverable notification.
type Notification struct {
	// Kind is the notification family.
	Kind NotificationKind

	// Key identifies the notification within its family (invitation
	// id or conversation id).
	Key string

	// IconPath is a local file path for the notification icon.
	IconPath string

	// Title is the notification headline.
	Title string

	// Body is the notification text.
	Body string
}

// Center is the in-process Sink. It tracks what is currently visible
// so that hiding something never shown, or already hidden, touches
// neither the backend nor observable state.
type Center struct {
	backend Backend
	log     zerolog.Logger

	mu      sync.Mutex
	visible map[string]Notification
}

// NewCenter creates a notification center delivering through backend.
func NewCenter(backend Backend) *Center {
	return &Center{
		backend: backend,
		log:     logging.Component("notify"),
		visible: make(map[string]Notification),
	}
}

// key namespaces a notification id by its family.
func key(kind NotificationKind, id string) string {
	return string(kind) + "/" + id
}

// ShowInvitation displays the notification for a pending invitation.
func (c *Center) ShowInvitation(id, iconPath, fromName, label string) {
	c.show(Notification{
		Kind:     KindInvitation,
		Key:      id,
		IconPath: iconPath,
		Title:    fromName,
		Body:     label,
	})
}

// HideInvitation withdraws an invitation notification. No-op when the
// invitation is not shown.
func (c *Center) HideInvitation(id string) {
	c.hide(KindInvitation, id)
}

// ShowChat displays the message notification for a conversation. A
// later show for the same conversation replaces the earlier one.
func (c *Center) ShowChat(conversationID, iconPath, name, body string) {
	c.show(Notification{
		Kind:     KindChat,
		Key:      conversationID,
		IconPath: iconPath,
		Title:    name,
		Body:     body,
	})
}

// HideChats withdraws all notifications for a conversation.
func (c *Center) HideChats(conversationID string) {
	c.hide(KindChat, conversationID)
}

// ClearAll withdraws every notification.
func (c *Center) ClearAll() {
	c.mu.Lock()
	n := len(c.visible)
	c.visible = make(map[string]Notification)
	c.mu.Unlock()

	if err := c.backend.CloseAll(); err != nil {
		c.log.Warn().Err(err).Msg("backend close-all failed")
	}
	c.log.Debug().Int("cleared", n).Msg("cleared notifications")
}

func (c *Center) show(n Notification) {
	k := key(n.Kind, n.Key)

	c.mu.Lock()
	c.visible[k] = n
	c.mu.Unlock()

	if err := c.backend.Show(n); err != nil {
		c.log.Warn().Err(err).Str("key", k).Msg("backend show failed")
	}
}

func (c *Center) hide(kind NotificationKind, id string) {
	k := key(kind, id)

	c.mu.Lock()
	_, shown := c.visible[k]
	delete(c.visible, k)
	c.mu.Unlock()

	if !shown {
		return
	}
	if err := c.backend.Close(k); err != nil {
		c.log.Warn().Err(err).Str("key", k).Msg("backend close failed")
	}
}

// Visible returns a snapshot of the currently shown notifications,
// keyed by family-namespaced id.
func (c *Center) Visible() map[string]Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]Notification, len(c.visible))
	for k, n := range c.visible {
		out[k] = n
	}
	return out
}
