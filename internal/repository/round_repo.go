package repository

import (
	"context"
	"errors"

	"github.com/JoshuaAmmons/econ-games/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoundRepository struct {
	db *pgxpool.Pool
}

func NewRoundRepository(db *pgxpool.Pool) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) Create(ctx context.Context, round *domain.Round) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO rounds (session_id, number, status)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		round.SessionID,
		round.Number,
		round.Status,
	).Scan(&round.ID)
}

func (r *RoundRepository) GetByID(ctx context.Context, id int64) (*domain.Round, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, session_id, number, status, started_at, ended_at
		 FROM rounds
		 WHERE id = $1`,
		id,
	))
}

// GetActive returns the session's single active round, if any.
func (r *RoundRepository) GetActive(ctx context.Context, sessionID int64) (*domain.Round, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, session_id, number, status, started_at, ended_at
		 FROM rounds
		 WHERE session_id = $1 AND status = $2`,
		sessionID, domain.RoundActive,
	))
}

func (r *RoundRepository) ListBySession(ctx context.Context, sessionID int64) ([]*domain.Round, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, number, status, started_at, ended_at
		 FROM rounds
		 WHERE session_id = $1
		 ORDER BY number`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Round
	for rows.Next() {
		round, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, round)
	}
	return res, rows.Err()
}

func (r *RoundRepository) Start(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE rounds SET status = $1, started_at = now() WHERE id = $2`,
		domain.RoundActive, id,
	)
	return err
}

// Complete flips an active round to completed and reports whether this
// call made the transition. Only the caller that wins the flip may
// advance the session, so concurrent end-round triggers stay safe.
func (r *RoundRepository) Complete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE rounds SET status = $1, ended_at = now() WHERE id = $2 AND status = $3`,
		domain.RoundCompleted, id, domain.RoundActive,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RoundRepository) scanOne(row pgx.Row) (*domain.Round, error) {
	var round domain.Round
	if err := row.Scan(
		&round.ID,
		&round.SessionID,
		&round.Number,
		&round.Status,
		&round.StartedAt,
		&round.EndedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &round, nil
}
