package model

import (
	"encoding/json"
	"fmt"
)

// InvitationState is the lifecycle state of a pending group invite.
type InvitationState string

const (
	InvitationStatePending  InvitationState = "Pending"
	InvitationStateAccepted InvitationState = "Accepted"
	InvitationStateDeclined InvitationState = "Declined"
	InvitationStateKicked   InvitationState = "Kicked"
)

// Invitation is one entry of the pending-invitation snapshot. An
// invitation never gets an explicit deletion event; absence from a
// later snapshot is the removal signal.
type Invitation struct {
	// ID uniquely identifies the invite.
	ID string `json:"invitationId"`

	// CanAccept reports whether the invite is currently acceptable.
	CanAccept bool `json:"canAcceptInvitation"`

	// State is the invite lifecycle state.
	State InvitationState `json:"state"`

	// FromName is the display name of the inviting player.
	FromName string `json:"fromSummonerName"`

	// GameConfig references queue metadata needed only for display.
	GameConfig GameConfig `json:"gameConfig"`
}

// GameConfig carries the queue reference embedded in an invitation.
type GameConfig struct {
	QueueID int64 `json:"queueId"`
}

// Displayable reports whether the invite should currently be shown
// to the user.
func (i *Invitation) Displayable() bool {
	return i.CanAccept && i.State == InvitationStatePending
}

// ParseInvitations decodes a full invitation snapshot. Entries without
// an id are rejected: the id keys both the notification and the
// snapshot diff.
func ParseInvitations(data json.RawMessage) ([]Invitation, error) {
	var invites []Invitation
	if err := json.Unmarshal(data, &invites); err != nil {
		return nil, fmt.Errorf("decode invitations: %w", err)
	}
	for idx, inv := range invites {
		if inv.ID == "" {
			return nil, fmt.Errorf("invitation[%d]: missing invitationId", idx)
		}
	}
	return invites, nil
}
