package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"codecoach/internal/common"
	"codecoach/internal/domain/model"
	"codecoach/internal/platform/cache"
	"codecoach/internal/platform/config"
	"codecoach/internal/platform/database"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureSchema(context.Background(), db))
	return db
}

func seedQuestion(t *testing.T, repo QuestionRepository, id, slug string, tier model.Difficulty) *model.Question {
	t.Helper()
	q := &model.Question{
		ID:          id,
		Slug:        slug,
		Title:       slug,
		Description: "desc " + slug,
		Constraints: "1 <= n <= 10",
		Difficulty:  tier,
		TestCases:   []model.TestCase{{Input: "1", Output: "1"}},
	}
	require.NoError(t, repo.Upsert(context.Background(), q))
	return q
}

func TestSolveRecordRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewSolveRecordRepository(db)
	ctx := context.Background()

	count, err := repo.CountSolved(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, count)

	ids, err := repo.ListSolvedIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repo.InsertSolved(ctx, "u1", "q1"))
	require.NoError(t, repo.InsertSolved(ctx, "u1", "q2"))
	require.NoError(t, repo.InsertSolved(ctx, "u2", "q1"))

	t.Run("duplicate solve is a no-op", func(t *testing.T) {
		require.NoError(t, repo.InsertSolved(ctx, "u1", "q1"))
		count, err := repo.CountSolved(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("ids are per user", func(t *testing.T) {
		ids, err := repo.ListSolvedIDs(ctx, "u1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"q1", "q2"}, ids)

		ids, err = repo.ListSolvedIDs(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, []string{"q1"}, ids)
	})
}

func TestQuestionRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()

	seedQuestion(t, repo, "q1", "two-sum", model.DifficultyEasy)
	seedQuestion(t, repo, "q2", "reverse-string", model.DifficultyEasy)
	seedQuestion(t, repo, "q3", "lru-cache", model.DifficultyHard)

	t.Run("list by difficulty", func(t *testing.T) {
		easy, err := repo.ListByDifficulty(ctx, model.DifficultyEasy)
		require.NoError(t, err)
		require.Len(t, easy, 2)
		assert.Equal(t, "q1", easy[0].ID)
		assert.Equal(t, []model.TestCase{{Input: "1", Output: "1"}}, easy[0].TestCases)

		medium, err := repo.ListByDifficulty(ctx, model.DifficultyMedium)
		require.NoError(t, err)
		assert.NotNil(t, medium)
		assert.Empty(t, medium)
	})

	t.Run("find by id", func(t *testing.T) {
		q, err := repo.FindByID(ctx, "q3")
		require.NoError(t, err)
		assert.Equal(t, "lru-cache", q.Slug)
		assert.Equal(t, model.DifficultyHard, q.Difficulty)

		_, err = repo.FindByID(ctx, "nope")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("upsert by slug keeps id", func(t *testing.T) {
		q := &model.Question{ID: "other-id", Slug: "two-sum", Title: "Two Sum v2", Difficulty: model.DifficultyMedium}
		require.NoError(t, repo.Upsert(ctx, q))
		assert.Equal(t, "q1", q.ID)

		stored, err := repo.FindByID(ctx, "q1")
		require.NoError(t, err)
		assert.Equal(t, "Two Sum v2", stored.Title)
		assert.Equal(t, model.DifficultyMedium, stored.Difficulty)
		assert.Empty(t, stored.TestCases)
	})
}

func TestWeaknessRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewWeaknessRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, repo.Upsert(ctx, "u1", []string{"recursion", "off-by-one"}))
	require.NoError(t, repo.Upsert(ctx, "u1", []string{"dynamic programming"}))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"dynamic programming"}, got)

	require.NoError(t, repo.Upsert(ctx, "u2", nil))
	got, err = repo.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got)
}

type countingQuestionRepo struct {
	QuestionRepository
	listCalls int
}

func (r *countingQuestionRepo) ListByDifficulty(ctx context.Context, tier model.Difficulty) ([]model.Question, error) {
	r.listCalls++
	return r.QuestionRepository.ListByDifficulty(ctx, tier)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, interface{}) error { return errors.New("redis down") }
func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("redis down")
}
func (brokenCache) Delete(context.Context, ...string) error { return errors.New("redis down") }

func TestCachedQuestionRepository(t *testing.T) {
	db := newTestDB(t)
	inner := &countingQuestionRepo{QuestionRepository: NewQuestionRepository(db)}
	ctx := context.Background()

	repo := NewCachedQuestionRepository(inner, cache.NewMemoryCache(), time.Minute, zerolog.Nop())
	seedQuestion(t, repo, "q1", "two-sum", model.DifficultyEasy)

	for i := 0; i < 3; i++ {
		qs, err := repo.ListByDifficulty(ctx, model.DifficultyEasy)
		require.NoError(t, err)
		require.Len(t, qs, 1)
	}
	assert.Equal(t, 1, inner.listCalls)

	t.Run("upsert invalidates", func(t *testing.T) {
		seedQuestion(t, repo, "q2", "three-sum", model.DifficultyEasy)
		qs, err := repo.ListByDifficulty(ctx, model.DifficultyEasy)
		require.NoError(t, err)
		assert.Len(t, qs, 2)
		assert.Equal(t, 2, inner.listCalls)
	})

	t.Run("cache failures fall through", func(t *testing.T) {
		broken := NewCachedQuestionRepository(inner, brokenCache{}, time.Minute, zerolog.Nop())
		qs, err := broken.ListByDifficulty(ctx, model.DifficultyEasy)
		require.NoError(t, err)
		assert.Len(t, qs, 2)

		require.NoError(t, broken.Upsert(ctx, &model.Question{ID: "q9", Slug: "x", Title: "X", Difficulty: model.DifficultyHard}))
	})
}

func TestNewQuestionStore(t *testing.T) {
	db := newTestDB(t)

	_, cached := NewQuestionStore(db, nil, time.Minute, zerolog.Nop()).(*CachedQuestionRepository)
	assert.False(t, cached)

	_, cached = NewQuestionStore(db, cache.NewMemoryCache(), 0, zerolog.Nop()).(*CachedQuestionRepository)
	assert.False(t, cached)

	_, cached = NewQuestionStore(db, cache.NewMemoryCache(), time.Minute, zerolog.Nop()).(*CachedQuestionRepository)
	assert.True(t, cached)
}
