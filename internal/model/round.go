package model

import (
	"encoding/json"
	"time"
)

// Round is the record of one reveal: the estimates every player held when
// the cards were turned over.
type Round struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	SessionName string    `json:"sessionName"`
	Estimates   []Player  `json:"estimates"`
	VoteCount   int       `json:"voteCount"`
	Average     *float64  `json:"average,omitempty"`
	Consensus   bool      `json:"consensus"`
	RevealedAt  time.Time `json:"revealedAt"`
}

// NewRound builds a round from a players snapshot and computes its statistics.
func NewRound(id, sessionID, sessionName string, players []Player, revealedAt time.Time) *Round {
	r := &Round{
		ID:          id,
		SessionID:   sessionID,
		SessionName: sessionName,
		Estimates:   players,
		RevealedAt:  revealedAt,
	}
	if r.Estimates == nil {
		r.Estimates = []Player{}
	}

	var sum float64
	var first *float64
	r.Consensus = true
	for _, p := range players {
		if p.Estimate == nil {
			continue
		}
		r.VoteCount++
		sum += *p.Estimate
		if first == nil {
			first = p.Estimate
		} else if *first != *p.Estimate {
			r.Consensus = false
		}
	}

	if r.VoteCount == 0 {
		r.Consensus = false
		return r
	}
	avg := sum / float64(r.VoteCount)
	r.Average = &avg
	return r
}

// EstimatesToJSON converts the estimates snapshot to a JSON string for storage.
func (r *Round) EstimatesToJSON() (string, error) {
	data, err := json.Marshal(r.Estimates)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// EstimatesFromJSON parses a JSON string into the estimates snapshot.
func (r *Round) EstimatesFromJSON(data string) error {
	if data == "" {
		r.Estimates = []Player{}
		return nil
	}
	return json.Unmarshal([]byte(data), &r.Estimates)
}
