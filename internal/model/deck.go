package model

import "fmt"

// DefaultDeck is the modified fibonacci deck offered to players.
var DefaultDeck = []float64{0, 0.5, 1, 2, 3, 5, 8, 13, 20, 40, 100}

// ValidateDeck checks that a deck is usable: non-empty, non-negative and
// free of duplicates.
func ValidateDeck(deck []float64) error {
	if len(deck) == 0 {
		return fmt.Errorf("%w: deck is empty", ErrInvalidDeck)
	}
	seen := make(map[float64]bool, len(deck))
	for _, v := range deck {
		if v < 0 {
			return fmt.Errorf("%w: negative value %v", ErrInvalidDeck, v)
		}
		if seen[v] {
			return fmt.Errorf("%w: duplicate value %v", ErrInvalidDeck, v)
		}
		seen[v] = true
	}
	return nil
}

// InDeck reports whether v is one of the card values.
func InDeck(deck []float64, v float64) bool {
	for _, card := range deck {
		if card == v {
			return true
		}
	}
	return false
}
