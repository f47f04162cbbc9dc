package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"codecoach/internal/common"
	"codecoach/internal/domain/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierForSolvedCount(t *testing.T) {
	tests := []struct {
		solved int
		want   model.Difficulty
	}{
		{0, model.DifficultyEasy},
		{10, model.DifficultyEasy},
		{11, model.DifficultyMedium},
		{15, model.DifficultyMedium},
		{16, model.DifficultyHard},
		{20, model.DifficultyHard},
		{500, model.DifficultyHard},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.solved), func(t *testing.T) {
			assert.Equal(t, tt.want, TierForSolvedCount(tt.solved))
		})
	}
}

func questions(tier model.Difficulty, ids ...string) []model.Question {
	out := make([]model.Question, len(ids))
	for i, id := range ids {
		out[i] = model.Question{ID: id, Title: "title " + id, Difficulty: tier}
	}
	return out
}

// solvedN gives the user n solved ids named s0..s(n-1) plus extra.
func solvedN(repo *fakeSolveRepo, user string, n int, extra ...string) {
	for i := 0; i < n; i++ {
		repo.solved[user] = append(repo.solved[user], fmt.Sprintf("s%d", i))
	}
	repo.solved[user] = append(repo.solved[user], extra...)
}

func TestSelectNext_UsesTierOfSolvedCount(t *testing.T) {
	qs := &fakeQuestionRepo{byTier: map[model.Difficulty][]model.Question{
		model.DifficultyEasy:   questions(model.DifficultyEasy, "e1"),
		model.DifficultyMedium: questions(model.DifficultyMedium, "m1"),
		model.DifficultyHard:   questions(model.DifficultyHard, "h1"),
	}}

	tests := []struct {
		solved int
		want   string
	}{
		{0, "e1"},
		{10, "e1"},
		{11, "m1"},
		{15, "m1"},
		{16, "h1"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.solved), func(t *testing.T) {
			solves := newFakeSolveRepo()
			solvedN(solves, "u1", tt.solved)
			svc := NewQuestionService(qs, solves, zerolog.Nop())

			q, err := svc.SelectNext(context.Background(), "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.ID)
		})
	}
}

func TestSelectNext_SkipsSolvedQuestion(t *testing.T) {
	qs := &fakeQuestionRepo{byTier: map[model.Difficulty][]model.Question{
		model.DifficultyHard: questions(model.DifficultyHard, "Q1", "Q2"),
	}}
	solves := newFakeSolveRepo()
	solvedN(solves, "u1", 19, "Q1")
	svc := NewQuestionService(qs, solves, zerolog.Nop())

	for i := 0; i < 50; i++ {
		q, err := svc.SelectNext(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, "Q2", q.ID)
	}
}

func TestSelectNext_PicksAmongCandidates(t *testing.T) {
	qs := &fakeQuestionRepo{byTier: map[model.Difficulty][]model.Question{
		model.DifficultyEasy: questions(model.DifficultyEasy, "a", "b", "c", "d"),
	}}
	solves := newFakeSolveRepo()
	solves.solved["u1"] = []string{"b"}
	svc := NewQuestionService(qs, solves, zerolog.Nop())

	var sizes []int
	svc.pick = func(n int) int {
		sizes = append(sizes, n)
		return n - 1
	}

	q, err := svc.SelectNext(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "d", q.ID)
	assert.Equal(t, []int{3}, sizes)
}

func TestSelectNext_CoversEveryCandidate(t *testing.T) {
	qs := &fakeQuestionRepo{byTier: map[model.Difficulty][]model.Question{
		model.DifficultyEasy: questions(model.DifficultyEasy, "a", "b", "c"),
	}}
	svc := NewQuestionService(qs, newFakeSolveRepo(), zerolog.Nop())

	seen := map[string]int{}
	for i := 0; i < 300; i++ {
		q, err := svc.SelectNext(context.Background(), "u1")
		require.NoError(t, err)
		seen[q.ID]++
	}
	assert.Len(t, seen, 3)
	for id, n := range seen {
		assert.Greater(t, n, 50, id)
	}
}

func TestSelectNext_NotFound(t *testing.T) {
	t.Run("empty tier", func(t *testing.T) {
		qs := &fakeQuestionRepo{byTier: map[model.Difficulty][]model.Question{
			model.DifficultyEasy: questions(model.DifficultyEasy, "e1"),
		}}
		solves := newFakeSolveRepo()
		solvedN(solves, "u1", 12)
		svc := NewQuestionService(qs, solves, zerolog.Nop())

		q, err := svc.SelectNext(context.Background(), "u1")
		assert.Nil(t, q)
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.Equal(t, []model.Difficulty{model.DifficultyMedium}, qs.listCalls)
	})

	t.Run("everything solved", func(t *testing.T) {
		qs := &fakeQuestionRepo{byTier: map[model.Difficulty][]model.Question{
			model.DifficultyEasy: questions(model.DifficultyEasy, "e1", "e2"),
		}}
		solves := newFakeSolveRepo()
		solves.solved["u1"] = []string{"e1", "e2"}
		svc := NewQuestionService(qs, solves, zerolog.Nop())

		q, err := svc.SelectNext(context.Background(), "u1")
		assert.Nil(t, q)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestSelectNext_Errors(t *testing.T) {
	svc := NewQuestionService(&fakeQuestionRepo{}, newFakeSolveRepo(), zerolog.Nop())
	_, err := svc.SelectNext(context.Background(), " ")
	assert.ErrorIs(t, err, common.ErrValidation)

	dbErr := errors.New("db down")
	solves := newFakeSolveRepo()
	solves.countErr = dbErr
	svc = NewQuestionService(&fakeQuestionRepo{}, solves, zerolog.Nop())
	_, err = svc.SelectNext(context.Background(), "u1")
	assert.ErrorIs(t, err, dbErr)
	assert.False(t, errors.Is(err, common.ErrNotFound))
}

func TestProgress(t *testing.T) {
	solves := newFakeSolveRepo()
	solvedN(solves, "u1", 11)
	svc := NewQuestionService(&fakeQuestionRepo{}, solves, zerolog.Nop())

	p, err := svc.Progress(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, 11, p.SolvedCount)
	assert.Equal(t, model.DifficultyMedium, p.Tier)
	assert.Len(t, p.SolvedQuestionIDs, 11)

	p, err = svc.Progress(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, p.SolvedCount)
	assert.Equal(t, model.DifficultyEasy, p.Tier)
	assert.Empty(t, p.SolvedQuestionIDs)

	_, err = svc.Progress(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestGet(t *testing.T) {
	qs := &fakeQuestionRepo{byTier: map[model.Difficulty][]model.Question{
		model.DifficultyEasy: questions(model.DifficultyEasy, "e1"),
	}}
	svc := NewQuestionService(qs, newFakeSolveRepo(), zerolog.Nop())

	q, err := svc.Get(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "title e1", q.Title)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrValidation)
}
