// Package poker is the request surface of the estimation server: it turns
// inbound actions into registry mutations and hub broadcasts.
package poker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/planning-poker/backend/internal/hub"
	"github.com/planning-poker/backend/internal/model"
	"github.com/planning-poker/backend/internal/session"
	"github.com/planning-poker/backend/internal/stream"
)

// RoundStore persists revealed rounds.
type RoundStore interface {
	Create(ctx context.Context, round *model.Round) error
	ListBySession(ctx context.Context, sessionID string) ([]*model.Round, error)
}

// Service owns the session registry and the hub for the server's lifetime.
type Service struct {
	registry *session.Registry
	hub      *hub.Hub
	rounds   RoundStore
	deck     []float64
}

// Config holds configuration for the service.
type Config struct {
	// Deck lists the accepted estimates. Empty means model.DefaultDeck.
	Deck []float64
}

// NewService creates a new Service. rounds may be nil to disable history.
func NewService(registry *session.Registry, h *hub.Hub, rounds RoundStore, config Config) (*Service, error) {
	deck := config.Deck
	if len(deck) == 0 {
		deck = model.DefaultDeck
	}
	if err := model.ValidateDeck(deck); err != nil {
		return nil, err
	}

	return &Service{
		registry: registry,
		hub:      h,
		rounds:   rounds,
		deck:     append([]float64(nil), deck...),
	}, nil
}

// Deck returns the accepted estimates.
func (s *Service) Deck() []float64 {
	return append([]float64(nil), s.deck...)
}

// StartSession creates the session if its id is new and returns it. An empty
// id gets a generated one. When the request names a player, that player
// joins the session.
func (s *Service) StartSession(ctx context.Context, req model.StartSessionRequest) (model.SessionView, bool, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.SessionView{}, false, err
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	sess, created, err := s.registry.CreateIfAbsent(req.ID, req.Name)
	if err != nil {
		return model.SessionView{}, false, err
	}

	if req.HasPlayer() {
		sess.Update(func(r *session.Roster) {
			r.AddOrGet(req.PlayerID, req.PlayerName)
		})
	}

	if created {
		log.Printf("Session started (session=%s, name=%q)", sess.ID, sess.Name)
	}
	return sess.View(), created, nil
}

// JoinSession returns the session's name and current players.
func (s *Service) JoinSession(ctx context.Context, sessionID string) (model.SessionView, error) {
	sess, err := s.registry.Find(sessionID)
	if err != nil {
		return model.SessionView{}, err
	}
	return sess.View(), nil
}

// AddPlayer registers a player in the session without a stream. Peers learn
// about the player once its stream attaches.
func (s *Service) AddPlayer(ctx context.Context, sessionID string, req model.JoinRequest) (model.SessionView, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.SessionView{}, err
	}

	sess, err := s.registry.Find(sessionID)
	if err != nil {
		return model.SessionView{}, err
	}

	sess.Update(func(r *session.Roster) {
		r.AddOrGet(req.PlayerID, req.PlayerName)
	})
	return sess.View(), nil
}

// AttachPlayer attaches ch as the player's stream and announces the player
// to its peers. Closing ch removes the player from the session.
func (s *Service) AttachPlayer(ctx context.Context, sessionID string, req model.JoinRequest, ch stream.Channel) (model.Player, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.Player{}, err
	}

	sess, err := s.registry.Find(sessionID)
	if err != nil {
		return model.Player{}, err
	}

	return s.hub.Attach(sess, req.PlayerID, req.PlayerName, ch), nil
}

// SetEstimate sets or clears a player's estimate. Setting the value the
// player already holds clears it. An absent player is ignored.
func (s *Service) SetEstimate(ctx context.Context, sessionID, playerID string, value *float64) error {
	if value != nil && !model.InDeck(s.deck, *value) {
		return fmt.Errorf("%w: %v", model.ErrInvalidEstimate, *value)
	}

	sess, err := s.registry.Find(sessionID)
	if err != nil {
		return err
	}

	if _, ok := s.hub.SetEstimate(sess, playerID, value); !ok {
		log.Printf("Ignoring estimate for absent player (session=%s, player=%s)", sessionID, playerID)
	}
	return nil
}

// Reveal tells every player to show the estimates and stores the round.
// A failure to store the round is logged; the reveal has already happened.
func (s *Service) Reveal(ctx context.Context, sessionID string) (*model.Round, error) {
	sess, err := s.registry.Find(sessionID)
	if err != nil {
		return nil, err
	}

	snapshot := s.hub.Reveal(sess)
	round := model.NewRound(uuid.New().String(), sess.ID, sess.Name, snapshot, time.Now())

	if s.rounds != nil {
		if err := s.rounds.Create(ctx, round); err != nil {
			log.Printf("Failed to store round (session=%s): %v", sessionID, err)
		}
	}
	return round, nil
}

// Clear resets every estimate in the session.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	sess, err := s.registry.Find(sessionID)
	if err != nil {
		return err
	}
	s.hub.Clear(sess)
	return nil
}

// Rounds returns the revealed rounds of a session, oldest first.
func (s *Service) Rounds(ctx context.Context, sessionID string) ([]*model.Round, error) {
	if _, err := s.registry.Find(sessionID); err != nil {
		return nil, err
	}
	if s.rounds == nil {
		return []*model.Round{}, nil
	}

	rounds, err := s.rounds.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

// SessionExists reports whether the session is registered.
func (s *Service) SessionExists(sessionID string) bool {
	_, err := s.registry.Find(sessionID)
	return err == nil
}
