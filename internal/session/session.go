package session

import (
	"sync"
	"time"

	"github.com/planning-poker/backend/internal/model"
	"github.com/planning-poker/backend/internal/stream"
)

// Player is a session participant together with its attached channel.
type Player struct {
	ID       string
	Name     string
	Estimate *float64
	Channel  stream.Channel
}

// View returns the payload shape of the player.
func (p *Player) View() model.Player {
	var estimate *float64
	if p.Estimate != nil {
		v := *p.Estimate
		estimate = &v
	}
	return model.Player{ID: p.ID, Name: p.Name, Estimate: estimate}
}

// Session is an estimation room. Its players are only reachable through
// Update, which serializes every mutation and read-then-broadcast sequence.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time

	mu     sync.Mutex
	roster Roster
}

func newSession(id, name string) *Session {
	return &Session{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now(),
	}
}

// Update runs fn with exclusive access to the session's players.
// fn must not block and must not call back into the session.
func (s *Session) Update(fn func(r *Roster)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.roster)
}

// View returns a snapshot of the session.
func (s *Session) View() model.SessionView {
	view := model.SessionView{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
	}
	s.Update(func(r *Roster) {
		view.Players = r.Views()
		view.EstimateCount = r.EstimateCount()
	})
	return view
}

// Roster is the ordered player list of a session, in join order.
// It is not safe for concurrent use; access it through Session.Update.
type Roster struct {
	players []*Player
}

// AddOrGet returns the player with id, or appends a new player without
// estimate or channel.
func (r *Roster) AddOrGet(id, name string) *Player {
	if p := r.Find(id); p != nil {
		return p
	}
	p := &Player{ID: id, Name: name}
	r.players = append(r.players, p)
	return p
}

// Find returns the player with id, or nil.
func (r *Roster) Find(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Remove removes and returns the player with id.
func (r *Roster) Remove(id string) (*Player, error) {
	for i, p := range r.players {
		if p.ID == id {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return p, nil
		}
	}
	return nil, model.ErrPlayerNotFound
}

// SetEstimate sets the player's estimate. Setting the value the player
// already holds clears it, and a nil value clears it as well. It returns
// nil if the player is absent.
func (r *Roster) SetEstimate(id string, value *float64) *Player {
	p := r.Find(id)
	if p == nil {
		return nil
	}
	if value == nil || (p.Estimate != nil && *p.Estimate == *value) {
		p.Estimate = nil
		return p
	}
	v := *value
	p.Estimate = &v
	return p
}

// ClearAll removes every player's estimate.
func (r *Roster) ClearAll() {
	for _, p := range r.players {
		p.Estimate = nil
	}
}

// EstimateCount returns the number of players who have voted.
func (r *Roster) EstimateCount() int {
	n := 0
	for _, p := range r.players {
		if p.Estimate != nil {
			n++
		}
	}
	return n
}

// Players returns the players in join order. The slice is a copy; the
// players are not.
func (r *Roster) Players() []*Player {
	out := make([]*Player, len(r.players))
	copy(out, r.players)
	return out
}

// Views returns the payload shape of every player in join order.
func (r *Roster) Views() []model.Player {
	out := make([]model.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.View())
	}
	return out
}

// Len returns the number of players.
func (r *Roster) Len() int {
	return len(r.players)
}
