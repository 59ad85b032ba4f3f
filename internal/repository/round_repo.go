// Package repository provides data access for revealed rounds.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/planning-poker/backend/internal/model"
)

// RoundRepository provides data access for rounds.
type RoundRepository struct {
	db *sql.DB
}

// NewRoundRepository creates a new RoundRepository.
func NewRoundRepository(db *sql.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

// Create inserts a new round into the database.
func (r *RoundRepository) Create(ctx context.Context, round *model.Round) error {
	estimatesJSON, err := round.EstimatesToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize estimates: %w", err)
	}

	query := `
		INSERT INTO rounds (id, session_id, session_name, estimates, vote_count, average, consensus, revealed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		round.ID,
		round.SessionID,
		round.SessionName,
		estimatesJSON,
		round.VoteCount,
		round.Average,
		round.Consensus,
		round.RevealedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}

	return nil
}

// ListBySession retrieves the rounds of a session, oldest first.
func (r *RoundRepository) ListBySession(ctx context.Context, sessionID string) ([]*model.Round, error) {
	query := `
		SELECT id, session_id, session_name, estimates, vote_count, average, consensus, revealed_at
		FROM rounds
		WHERE session_id = ?
		ORDER BY revealed_at ASC, rowid ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	rounds := []*model.Round{}
	for rows.Next() {
		round := &model.Round{}
		var estimatesJSON string
		var average sql.NullFloat64

		err := rows.Scan(
			&round.ID,
			&round.SessionID,
			&round.SessionName,
			&estimatesJSON,
			&round.VoteCount,
			&average,
			&round.Consensus,
			&round.RevealedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}

		if err := round.EstimatesFromJSON(estimatesJSON); err != nil {
			return nil, fmt.Errorf("failed to parse estimates: %w", err)
		}

		if average.Valid {
			avg := average.Float64
			round.Average = &avg
		}

		rounds = append(rounds, round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rounds: %w", err)
	}

	return rounds, nil
}

// CountBySession returns the number of rounds revealed in a session.
func (r *RoundRepository) CountBySession(ctx context.Context, sessionID string) (int, error) {
	query := `SELECT COUNT(*) FROM rounds WHERE session_id = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rounds: %w", err)
	}

	return count, nil
}
