package repository

import (
	"context"
	"encoding/json"

	"github.com/JoshuaAmmons/econ-games/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SubmissionRepository struct {
	db *pgxpool.Pool
}

func NewSubmissionRepository(db *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	dataJSON, err := json.Marshal(s.Data)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO submissions (round_id, player_id, kind, value, data)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		s.RoundID,
		s.PlayerID,
		s.Kind,
		s.Value,
		dataJSON,
	).Scan(&s.ID, &s.CreatedAt)
}

// ListByRound returns submissions in arrival order. Replay correctness
// depends on this ordering.
func (r *SubmissionRepository) ListByRound(ctx context.Context, roundID int64) ([]*domain.Submission, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, round_id, player_id, kind, value, data, created_at
		 FROM submissions
		 WHERE round_id = $1
		 ORDER BY id`,
		roundID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Submission
	for rows.Next() {
		var s domain.Submission
		var dataJSON []byte
		if err := rows.Scan(&s.ID, &s.RoundID, &s.PlayerID, &s.Kind, &s.Value, &dataJSON, &s.CreatedAt); err != nil {
			return nil, err
		}
		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &s.Data); err != nil {
				return nil, err
			}
		}
		res = append(res, &s)
	}
	return res, rows.Err()
}
