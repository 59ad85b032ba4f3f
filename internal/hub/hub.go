// Package hub fans session state changes out to the players' channels.
package hub

import (
	"log"

	"github.com/planning-poker/backend/internal/model"
	"github.com/planning-poker/backend/internal/session"
	"github.com/planning-poker/backend/internal/stream"
)

// Recorder observes every event after it has been fanned out.
type Recorder interface {
	Record(sessionID, event string, data any)
}

// Hub turns session mutations into events for every connected peer.
// All work for a session happens inside session.Update, so a mutation and
// the broadcast describing it never interleave with another action on the
// same session.
type Hub struct {
	recorder Recorder
}

// NewHub creates a new Hub. The recorder may be nil.
func NewHub(recorder Recorder) *Hub {
	return &Hub{recorder: recorder}
}

// Broadcast sends an event to every attached channel in the session except
// the excluded player. An empty exclude sends to everyone.
func (h *Hub) Broadcast(s *session.Session, event string, data any, exclude string) {
	s.Update(func(r *session.Roster) {
		h.broadcastLocked(s, r, event, data, exclude)
	})
}

// broadcastLocked must run inside s.Update. Pushes never block, so one
// broken channel only loses its own copy of the event.
func (h *Hub) broadcastLocked(s *session.Session, r *session.Roster, event string, data any, exclude string) {
	delivered := 0
	for _, p := range r.Players() {
		if p.ID == exclude || p.Channel == nil {
			continue
		}
		if !p.Channel.Push(event, data) {
			log.Printf("Dropped %s event (session=%s, player=%s)", event, s.ID, p.ID)
			continue
		}
		delivered++
	}

	if h.recorder != nil {
		h.recorder.Record(s.ID, event, data)
	}
	log.Printf("Broadcast %s to session %s (%d channels)", event, s.ID, delivered)
}

// Attach resolves or creates the player, makes ch its channel and tells the
// other players it joined. A channel the player held before is closed and
// can no longer receive events. Closing ch detaches the player.
func (h *Hub) Attach(s *session.Session, playerID, playerName string, ch stream.Channel) model.Player {
	var view model.Player
	var previous stream.Channel

	s.Update(func(r *session.Roster) {
		p := r.AddOrGet(playerID, playerName)
		previous = p.Channel
		p.Channel = ch
		view = p.View()
		h.broadcastLocked(s, r, model.EventPlayerJoined, view, playerID)
	})

	if previous != nil && previous != ch {
		previous.Close()
	}

	// Registered outside Update: an already closed channel fires at once.
	ch.OnClosed(func() {
		h.detachChannel(s, playerID, ch)
	})

	log.Printf("Player attached (session=%s, player=%s)", s.ID, playerID)
	return view
}

// Detach removes the player and tells the remaining players it left. It
// reports whether a player was removed; a second call is a no-op.
func (h *Hub) Detach(s *session.Session, playerID string) bool {
	return h.detachChannel(s, playerID, nil)
}

// detachChannel removes the player only while ch is still its channel, so a
// replaced channel closing late cannot remove a reconnected player. A nil ch
// removes unconditionally.
func (h *Hub) detachChannel(s *session.Session, playerID string, ch stream.Channel) bool {
	removed := false

	s.Update(func(r *session.Roster) {
		p := r.Find(playerID)
		if p == nil {
			return
		}
		if ch != nil && p.Channel != ch {
			return
		}
		left, err := r.Remove(playerID)
		if err != nil {
			return
		}
		left.Channel = nil
		removed = true
		h.broadcastLocked(s, r, model.EventPlayerLeft, left.View(), "")
	})

	if removed {
		log.Printf("Player detached (session=%s, player=%s)", s.ID, playerID)
	}
	return removed
}

// SetEstimate stores the player's estimate, with toggle-off semantics, and
// tells the other players. It reports false if the player is absent.
func (h *Hub) SetEstimate(s *session.Session, playerID string, value *float64) (model.Player, bool) {
	var view model.Player
	found := false

	s.Update(func(r *session.Roster) {
		p := r.SetEstimate(playerID, value)
		if p == nil {
			return
		}
		found = true
		view = p.View()
		h.broadcastLocked(s, r, model.EventSetEstimate, view, playerID)
	})

	return view, found
}

// Reveal tells every player to show the estimates. It returns the estimates
// as they stood at the moment of the reveal.
func (h *Hub) Reveal(s *session.Session) []model.Player {
	var snapshot []model.Player

	s.Update(func(r *session.Roster) {
		snapshot = r.Views()
		h.broadcastLocked(s, r, model.EventReveal, nil, "")
	})

	return snapshot
}

// Clear resets every estimate and tells every player.
func (h *Hub) Clear(s *session.Session) {
	s.Update(func(r *session.Roster) {
		r.ClearAll()
		h.broadcastLocked(s, r, model.EventClear, nil, "")
	})
}
