package model

import (
	"strings"
	"time"
)

// SessionView is a point-in-time copy of a session and its players.
type SessionView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Players       []Player  `json:"players"`
	EstimateCount int       `json:"estimateCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// StartSessionRequest represents a request to start a session.
// PlayerID and PlayerName are optional and make the starter join right away.
type StartSessionRequest struct {
	ID         string
	Name       string
	PlayerID   string
	PlayerName string
}

// Normalize trims the request fields in place.
func (r *StartSessionRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.PlayerID = strings.TrimSpace(r.PlayerID)
	r.PlayerName = strings.TrimSpace(r.PlayerName)
}

// Validate validates the start session request.
func (r *StartSessionRequest) Validate() error {
	if r.Name == "" {
		return ErrSessionNameRequired
	}
	if r.PlayerID != "" && r.PlayerName == "" {
		return ErrPlayerNameRequired
	}
	return nil
}

// HasPlayer reports whether the starter asked to join the session.
func (r *StartSessionRequest) HasPlayer() bool {
	return r.PlayerID != ""
}

// JoinRequest identifies a player joining a session.
type JoinRequest struct {
	PlayerID   string
	PlayerName string
}

// Normalize trims the request fields in place.
func (r *JoinRequest) Normalize() {
	r.PlayerID = strings.TrimSpace(r.PlayerID)
	r.PlayerName = strings.TrimSpace(r.PlayerName)
}

// Validate validates the join request.
func (r *JoinRequest) Validate() error {
	if r.PlayerID == "" {
		return ErrPlayerIDRequired
	}
	if r.PlayerName == "" {
		return ErrPlayerNameRequired
	}
	return nil
}
