package model

import "errors"

var (
	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")

	// ErrPlayerNotFound is returned when a player is not part of a session.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrSessionNameRequired is returned when a start request is missing the session name.
	ErrSessionNameRequired = errors.New("session name is required")

	// ErrPlayerIDRequired is returned when a player id is missing.
	ErrPlayerIDRequired = errors.New("player id is required")

	// ErrPlayerNameRequired is returned when a player name is missing.
	ErrPlayerNameRequired = errors.New("player name is required")

	// ErrInvalidEstimate is returned when an estimate is not part of the deck.
	ErrInvalidEstimate = errors.New("estimate is not part of the deck")

	// ErrInvalidDeck is returned when a configured deck cannot be used.
	ErrInvalidDeck = errors.New("invalid estimate deck")

	// ErrSessionLimit is returned when the maximum number of sessions is reached.
	ErrSessionLimit = errors.New("session limit exceeded")
)

// IsValidation reports whether err is caused by invalid caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrSessionNameRequired) ||
		errors.Is(err, ErrPlayerIDRequired) ||
		errors.Is(err, ErrPlayerNameRequired) ||
		errors.Is(err, ErrInvalidEstimate)
}
