package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"codecoach/internal/common"
	"codecoach/internal/domain/model"
)

// QuestionRepository is the read side used by question selection plus the
// upsert used by the seeder.
type QuestionRepository interface {
	ListByDifficulty(ctx context.Context, tier model.Difficulty) ([]model.Question, error)
	FindByID(ctx context.Context, id string) (*model.Question, error)
	// Upsert matches on slug. q.ID is set to the stored id.
	Upsert(ctx context.Context, q *model.Question) error
}

type sqlQuestionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) QuestionRepository {
	return &sqlQuestionRepository{db: db}
}

const questionColumns = `id, slug, title, description, constraints, topic, difficulty, test_cases`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuestion(s rowScanner) (*model.Question, error) {
	var (
		q         model.Question
		testCases string
	)
	if err := s.Scan(&q.ID, &q.Slug, &q.Title, &q.Description, &q.Constraints, &q.Topic, &q.Difficulty, &testCases); err != nil {
		return nil, err
	}
	if testCases != "" {
		if err := json.Unmarshal([]byte(testCases), &q.TestCases); err != nil {
			return nil, fmt.Errorf("decode test_cases of %s: %w", q.ID, err)
		}
	}
	return &q, nil
}

func (r *sqlQuestionRepository) ListByDifficulty(ctx context.Context, tier model.Difficulty) ([]model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE difficulty = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, int(tier))
	if err != nil {
		return nil, fmt.Errorf("sqlQuestionRepository.ListByDifficulty: %w", err)
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlQuestionRepository.ListByDifficulty scan: %w", err)
		}
		questions = append(questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlQuestionRepository.ListByDifficulty rows: %w", err)
	}
	return questions, nil
}

func (r *sqlQuestionRepository) FindByID(ctx context.Context, id string) (*model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	q, err := scanQuestion(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlQuestionRepository.FindByID: %w", err)
	}
	return q, nil
}

func (r *sqlQuestionRepository) Upsert(ctx context.Context, q *model.Question) error {
	testCases := q.TestCases
	if testCases == nil {
		testCases = []model.TestCase{}
	}
	encoded, err := json.Marshal(testCases)
	if err != nil {
		return fmt.Errorf("sqlQuestionRepository.Upsert: encode test cases: %w", err)
	}

	query := `INSERT INTO questions (id, slug, title, description, constraints, topic, difficulty, test_cases)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (slug) DO UPDATE SET
	              title = excluded.title,
	              description = excluded.description,
	              constraints = excluded.constraints,
	              topic = excluded.topic,
	              difficulty = excluded.difficulty,
	              test_cases = excluded.test_cases
	          RETURNING id`

	var id string
	err = r.db.QueryRowContext(ctx, query,
		q.ID, q.Slug, q.Title, q.Description, q.Constraints, q.Topic, int(q.Difficulty), string(encoded),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("sqlQuestionRepository.Upsert: %w", err)
	}
	q.ID = id
	return nil
}
