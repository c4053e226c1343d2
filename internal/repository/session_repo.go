package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/JoshuaAmmons/econ-games/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	cfgJSON, err := json.Marshal(s.Config)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO sessions (code, game_type, config, num_rounds, round_seconds, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		s.Code,
		s.GameType,
		cfgJSON,
		s.NumRounds,
		s.RoundSeconds,
		s.Status,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, code, game_type, config, num_rounds, round_seconds, status, current_round, created_at
		 FROM sessions
		 WHERE id = $1`,
		id,
	))
}

func (r *SessionRepository) GetByCode(ctx context.Context, code string) (*domain.Session, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, code, game_type, config, num_rounds, round_seconds, status, current_round, created_at
		 FROM sessions
		 WHERE code = $1`,
		code,
	))
}

func (r *SessionRepository) List(ctx context.Context) ([]*domain.Session, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, code, game_type, config, num_rounds, round_seconds, status, current_round, created_at
		 FROM sessions
		 ORDER BY created_at DESC
		 LIMIT 200`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Session
	for rows.Next() {
		s, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// SetStatus advances the session's lifecycle and round pointer.
func (r *SessionRepository) SetStatus(ctx context.Context, id int64, status domain.SessionStatus, currentRound int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE sessions SET status = $1, current_round = $2 WHERE id = $3`,
		status, currentRound, id,
	)
	return err
}

func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (r *SessionRepository) scanOne(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	var cfgJSON []byte
	if err := row.Scan(
		&s.ID,
		&s.Code,
		&s.GameType,
		&cfgJSON,
		&s.NumRounds,
		&s.RoundSeconds,
		&s.Status,
		&s.CurrentRound,
		&s.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(cfgJSON) > 0 {
		if err := json.Unmarshal(cfgJSON, &s.Config); err != nil {
			return nil, err
		}
	}
	return &s, nil
}
