package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/JoshuaAmmons/econ-games/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OutcomeRepository struct {
	db *pgxpool.Pool
}

func NewOutcomeRepository(db *pgxpool.Pool) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

// Record inserts the outcome only if none exists for the (round, player)
// pair and reports whether the row was inserted. The unique constraint
// is what makes resolution at-most-once across processes.
func (r *OutcomeRepository) Record(ctx context.Context, o *domain.Outcome) (bool, error) {
	detailsJSON, err := json.Marshal(o.Details)
	if err != nil {
		return false, err
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO outcomes (round_id, player_id, profit, details)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (round_id, player_id) DO NOTHING
		 RETURNING id, created_at`,
		o.RoundID,
		o.PlayerID,
		o.Profit,
		detailsJSON,
	).Scan(&o.ID, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil // a row already existed
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *OutcomeRepository) ListByRound(ctx context.Context, roundID int64) ([]*domain.Outcome, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, round_id, player_id, profit, details, created_at
		 FROM outcomes
		 WHERE round_id = $1
		 ORDER BY player_id`,
		roundID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOutcomes(rows)
}

// ListBySession returns every outcome of a session in (round, player)
// order, for export.
func (r *OutcomeRepository) ListBySession(ctx context.Context, sessionID int64) ([]*domain.Outcome, error) {
	rows, err := r.db.Query(ctx,
		`SELECT o.id, o.round_id, o.player_id, o.profit, o.details, o.created_at
		 FROM outcomes o
		 JOIN rounds r ON r.id = o.round_id
		 WHERE r.session_id = $1
		 ORDER BY r.number, o.player_id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOutcomes(rows)
}

func scanOutcomes(rows pgx.Rows) ([]*domain.Outcome, error) {
	var res []*domain.Outcome
	for rows.Next() {
		var o domain.Outcome
		var detailsJSON []byte
		if err := rows.Scan(&o.ID, &o.RoundID, &o.PlayerID, &o.Profit, &detailsJSON, &o.CreatedAt); err != nil {
			return nil, err
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &o.Details); err != nil {
				return nil, err
			}
		}
		res = append(res, &o)
	}
	return res, rows.Err()
}
