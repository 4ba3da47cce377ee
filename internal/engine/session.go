// Package engine reconciles feed state into notification decisions:
// invitation-snapshot diffing, unread-watermark message detection, and
// the session state shared between them.
package engine

import "sync"

// UnknownUserID marks the local user id before the session resource
// has been observed.
const UnknownUserID int64 = -1

// SessionState is the process-scoped mutable state shared by the
// reconcilers: the active conversation, the local user's own id, and
// connection status. Owned exclusively by the engine; populated
// incrementally after connect and reset on disconnect.
type SessionState struct {
	mu                   sync.RWMutex
	activeConversationID string
	localUserID          int64
	connected            bool
}

// NewSessionState creates an empty session.
func NewSessionState() *SessionState {
	return &SessionState{localUserID: UnknownUserID}
}

// SetConnected records connection status.
func (s *SessionState) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
}

// Connected reports connection status.
func (s *SessionState) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// SetActiveConversation records the conversation selected in the
// client UI.
func (s *SessionState) SetActiveConversation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeConversationID = id
}

// ClearActiveConversation marks no conversation as active.
func (s *SessionState) ClearActiveConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeConversationID = ""
}

// ActiveConversation returns the active conversation id, empty when
// none is active.
func (s *SessionState) ActiveConversation() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeConversationID
}

// SetLocalUser records the local user's id.
func (s *SessionState) SetLocalUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.localUserID = id
}

// ClearLocalUser unsets the local user's id.
func (s *SessionState) ClearLocalUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.localUserID = UnknownUserID
}

// LocalUser returns the local user's id, UnknownUserID when unset.
func (s *SessionState) LocalUser() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localUserID
}

// Reset clears the session after a disconnect. Identity fields are
// refreshed by the feed before any event can legitimately reference
// them, but clearing keeps the reconnect path independent of stale
// state.
func (s *SessionState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	s.activeConversationID = ""
	s.localUserID = UnknownUserID
}
