package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"codecoach/internal/domain/model"
	"codecoach/internal/platform/cache"

	"github.com/rs/zerolog"
)

// CachedQuestionRepository is a read-through cache over the question pool of
// each tier. Cache failures fall back to the inner repository.
type CachedQuestionRepository struct {
	inner QuestionRepository
	cache cache.Cache
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCachedQuestionRepository(inner QuestionRepository, c cache.Cache, ttl time.Duration, log zerolog.Logger) *CachedQuestionRepository {
	return &CachedQuestionRepository{inner: inner, cache: c, ttl: ttl, log: log}
}

// NewQuestionStore is the question repository every process builds. With a
// cache and a positive ttl, reads go through the tier cache and writes
// invalidate it, so a seeder sharing the cache refreshes what the server sees.
func NewQuestionStore(db *sql.DB, c cache.Cache, ttl time.Duration, log zerolog.Logger) QuestionRepository {
	store := NewQuestionRepository(db)
	if c == nil || ttl <= 0 {
		return store
	}
	return NewCachedQuestionRepository(store, c, ttl, log)
}

func tierKey(tier model.Difficulty) string {
	return fmt.Sprintf("questions:tier:%d", tier)
}

func (r *CachedQuestionRepository) ListByDifficulty(ctx context.Context, tier model.Difficulty) ([]model.Question, error) {
	key := tierKey(tier)

	var cached []model.Question
	err := r.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		r.log.Warn().Err(err).Str("key", key).Msg("question cache read failed")
	}

	questions, err := r.inner.ListByDifficulty(ctx, tier)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, questions, r.ttl); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("question cache write failed")
	}
	return questions, nil
}

func (r *CachedQuestionRepository) FindByID(ctx context.Context, id string) (*model.Question, error) {
	return r.inner.FindByID(ctx, id)
}

// Upsert drops every tier key since an updated question may have moved tier.
func (r *CachedQuestionRepository) Upsert(ctx context.Context, q *model.Question) error {
	if err := r.inner.Upsert(ctx, q); err != nil {
		return err
	}
	keys := []string{tierKey(model.DifficultyEasy), tierKey(model.DifficultyMedium), tierKey(model.DifficultyHard)}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.log.Warn().Err(err).Msg("question cache invalidation failed")
	}
	return nil
}
