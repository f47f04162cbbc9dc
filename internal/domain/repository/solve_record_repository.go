package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// SolveRecordRepository records which questions a user has fully solved.
type SolveRecordRepository interface {
	// InsertSolved is a no-op when the pair is already recorded.
	InsertSolved(ctx context.Context, userID, questionID string) error
	CountSolved(ctx context.Context, userID string) (int, error)
	ListSolvedIDs(ctx context.Context, userID string) ([]string, error)
}

type sqlSolveRecordRepository struct {
	db *sql.DB
}

func NewSolveRecordRepository(db *sql.DB) SolveRecordRepository {
	return &sqlSolveRecordRepository{db: db}
}

func (r *sqlSolveRecordRepository) InsertSolved(ctx context.Context, userID, questionID string) error {
	query := `INSERT INTO solved_questions (id, user_id, question_id)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, question_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, questionID); err != nil {
		return fmt.Errorf("sqlSolveRecordRepository.InsertSolved: %w", err)
	}
	return nil
}

func (r *sqlSolveRecordRepository) CountSolved(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM solved_questions WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlSolveRecordRepository.CountSolved: %w", err)
	}
	return count, nil
}

func (r *sqlSolveRecordRepository) ListSolvedIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT question_id FROM solved_questions WHERE user_id = $1 ORDER BY solved_at, question_id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlSolveRecordRepository.ListSolvedIDs: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlSolveRecordRepository.ListSolvedIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlSolveRecordRepository.ListSolvedIDs rows: %w", err)
	}
	return ids, nil
}
