package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"codecoach/internal/common"
)

// WeaknessRepository keeps the latest weakness list per user. Upsert
// replaces the previous list.
type WeaknessRepository interface {
	Upsert(ctx context.Context, userID string, weaknesses []string) error
	Get(ctx context.Context, userID string) ([]string, error)
}

type sqlWeaknessRepository struct {
	db *sql.DB
}

func NewWeaknessRepository(db *sql.DB) WeaknessRepository {
	return &sqlWeaknessRepository{db: db}
}

func (r *sqlWeaknessRepository) Upsert(ctx context.Context, userID string, weaknesses []string) error {
	if weaknesses == nil {
		weaknesses = []string{}
	}
	encoded, err := json.Marshal(weaknesses)
	if err != nil {
		return fmt.Errorf("sqlWeaknessRepository.Upsert: %w", err)
	}

	query := `INSERT INTO weakness (user_id, weaknesses, updated_at)
	          VALUES ($1, $2, CURRENT_TIMESTAMP)
	          ON CONFLICT (user_id) DO UPDATE SET
	              weaknesses = excluded.weaknesses,
	              updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, query, userID, string(encoded)); err != nil {
		return fmt.Errorf("sqlWeaknessRepository.Upsert: %w", err)
	}
	return nil
}

func (r *sqlWeaknessRepository) Get(ctx context.Context, userID string) ([]string, error) {
	var raw string
	query := `SELECT weaknesses FROM weakness WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlWeaknessRepository.Get: %w", err)
	}

	weaknesses := []string{}
	if err := json.Unmarshal([]byte(raw), &weaknesses); err != nil {
		return nil, fmt.Errorf("sqlWeaknessRepository.Get: decode: %w", err)
	}
	return weaknesses, nil
}
