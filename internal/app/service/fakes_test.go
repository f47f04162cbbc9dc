package service

import (
	"context"
	"sync"

	"codecoach/internal/common"
	"codecoach/internal/domain/model"
	"codecoach/internal/platform/sandbox"
)

type fakeExecutor struct {
	mu    sync.Mutex
	calls []sandbox.Request
	run   func(req sandbox.Request) (string, error)
}

func (f *fakeExecutor) Execute(ctx context.Context, req sandbox.Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.run(req)
}

func (f *fakeExecutor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSolveRepo struct {
	mu        sync.Mutex
	solved    map[string][]string
	inserts   int
	insertErr error
	countErr  error
}

func newFakeSolveRepo() *fakeSolveRepo {
	return &fakeSolveRepo{solved: map[string][]string{}}
}

func (f *fakeSolveRepo) InsertSolved(ctx context.Context, userID, questionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, id := range f.solved[userID] {
		if id == questionID {
			return nil
		}
	}
	f.solved[userID] = append(f.solved[userID], questionID)
	return nil
}

func (f *fakeSolveRepo) CountSolved(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.solved[userID]), nil
}

func (f *fakeSolveRepo) ListSolvedIDs(ctx context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.solved[userID]...), nil
}

type fakeQuestionRepo struct {
	byTier    map[model.Difficulty][]model.Question
	listCalls []model.Difficulty
}

func (f *fakeQuestionRepo) ListByDifficulty(ctx context.Context, tier model.Difficulty) ([]model.Question, error) {
	f.listCalls = append(f.listCalls, tier)
	return f.byTier[tier], nil
}

func (f *fakeQuestionRepo) FindByID(ctx context.Context, id string) (*model.Question, error) {
	for _, qs := range f.byTier {
		for _, q := range qs {
			if q.ID == id {
				return &q, nil
			}
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeQuestionRepo) Upsert(ctx context.Context, q *model.Question) error {
	if f.byTier == nil {
		f.byTier = map[model.Difficulty][]model.Question{}
	}
	f.byTier[q.Difficulty] = append(f.byTier[q.Difficulty], *q)
	return nil
}

type fakeWeaknessRepo struct {
	stored    map[string][]string
	upsertErr error
}

func (f *fakeWeaknessRepo) Upsert(ctx context.Context, userID string, weaknesses []string) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.stored == nil {
		f.stored = map[string][]string{}
	}
	f.stored[userID] = weaknesses
	return nil
}

func (f *fakeWeaknessRepo) Get(ctx context.Context, userID string) ([]string, error) {
	w, ok := f.stored[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return w, nil
}
