package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/JoshuaAmmons/econ-games/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlayerRepository struct {
	db *pgxpool.Pool
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Create(ctx context.Context, p *domain.Player) error {
	stateJSON, err := json.Marshal(p.State)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO players (session_id, name, role, valuation, state, active, is_bot)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		p.SessionID,
		p.Name,
		p.Role,
		p.Valuation,
		stateJSON,
		p.Active,
		p.IsBot,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*domain.Player, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, session_id, name, COALESCE(role, ''), valuation, profit, state, active, is_bot, created_at
		 FROM players
		 WHERE id = $1`,
		id,
	))
}

// ListBySession returns the roster in join order. Engines rely on this
// order for role rotation, so it must be stable.
func (r *PlayerRepository) ListBySession(ctx context.Context, sessionID int64) ([]*domain.Player, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, name, COALESCE(role, ''), valuation, profit, state, active, is_bot, created_at
		 FROM players
		 WHERE session_id = $1
		 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Player
	for rows.Next() {
		p, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// Update persists role, private values and per-game state. Profit is
// excluded: it only ever moves through AddProfit.
func (r *PlayerRepository) Update(ctx context.Context, p *domain.Player) error {
	stateJSON, err := json.Marshal(p.State)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`UPDATE players
		 SET role = $1, valuation = $2, state = $3, active = $4, is_bot = $5
		 WHERE id = $6`,
		p.Role, p.Valuation, stateJSON, p.Active, p.IsBot, p.ID,
	)
	return err
}

// AddProfit credits one round's earnings to the cumulative balance.
func (r *PlayerRepository) AddProfit(ctx context.Context, playerID int64, delta float64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE players SET profit = profit + $1 WHERE id = $2`,
		delta, playerID,
	)
	return err
}

func (r *PlayerRepository) scanOne(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	var stateJSON []byte
	if err := row.Scan(
		&p.ID,
		&p.SessionID,
		&p.Name,
		&p.Role,
		&p.Valuation,
		&p.Profit,
		&stateJSON,
		&p.Active,
		&p.IsBot,
		&p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(stateJSON) > 0 {
		if err := json.Unmarshal(stateJSON, &p.State); err != nil {
			return nil, err
		}
	}
	return &p, nil
}
