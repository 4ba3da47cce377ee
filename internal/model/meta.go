package model

import (
	"encoding/json"
	"fmt"
)

// Queue is queue metadata resolved during invitation enrichment.
type Queue struct {
	ID        int64  `json:"id"`
	MapID     int64  `json:"mapId"`
	ShortName string `json:"shortName"`
}

// GameMap is map metadata resolved from a queue's map reference.
type GameMap struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Player is the player record behind a display name. Also the payload
// of the session resource describing the local user.
type Player struct {
	ID            int64  `json:"summonerId"`
	DisplayName   string `json:"displayName"`
	ProfileIconID int    `json:"profileIconId"`
}

// ParseQueue decodes queue metadata.
func ParseQueue(data json.RawMessage) (*Queue, error) {
	var q Queue
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("decode queue: %w", err)
	}
	return &q, nil
}

// ParseGameMap decodes map metadata.
func ParseGameMap(data json.RawMessage) (*GameMap, error) {
	var m GameMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode map: %w", err)
	}
	return &m, nil
}

// ParsePlayer decodes a player record.
func ParsePlayer(data json.RawMessage) (*Player, error) {
	var p Player
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return &p, nil
}

// ActiveConversation is the control resource naming the conversation
// currently selected in the client UI.
type ActiveConversation struct {
	ID string `json:"id"`
}

// ParseActiveConversation decodes the active-conversation control
// resource. An empty or null payload means no conversation is active.
func ParseActiveConversation(data json.RawMessage) (*ActiveConversation, error) {
	if EmptyPayload(data) {
		return nil, nil
	}
	var a ActiveConversation
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode active conversation: %w", err)
	}
	return &a, nil
}

// EmptyPayload reports whether a raw feed payload carries no value.
// Observe handlers receive such payloads when a resource disappears.
func EmptyPayload(data json.RawMessage) bool {
	return len(data) == 0 || string(data) == "null"
}
