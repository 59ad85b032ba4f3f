package model

// Broadcast event names.
const (
	EventPlayerJoined = "player-joined"
	EventPlayerLeft   = "player-left"
	EventSetEstimate  = "set-estimate"
	EventReveal       = "reveal"
	EventClear        = "clear"
)

// Player is the payload shape of player events and session views.
// A nil Estimate means the player has not voted.
type Player struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Estimate *float64 `json:"estimate"`
}

// HasEstimate reports whether the player has voted.
func (p Player) HasEstimate() bool {
	return p.Estimate != nil
}

// Float returns a pointer to v, for building estimates inline.
func Float(v float64) *float64 {
	return &v
}
