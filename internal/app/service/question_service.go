package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"codecoach/internal/common"
	"codecoach/internal/domain/model"
	"codecoach/internal/domain/repository"

	"github.com/rs/zerolog"
)

// TierForSolvedCount maps a solved count to a difficulty tier. The tier 3
// check must run before the tier 2 one.
func TierForSolvedCount(solved int) model.Difficulty {
	switch {
	case solved > 15:
		return model.DifficultyHard
	case solved > 10:
		return model.DifficultyMedium
	default:
		return model.DifficultyEasy
	}
}

type QuestionService struct {
	questions repository.QuestionRepository
	solves    repository.SolveRecordRepository
	pick      func(n int) int
	log       zerolog.Logger
}

func NewQuestionService(questions repository.QuestionRepository, solves repository.SolveRecordRepository, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questions: questions,
		solves:    solves,
		pick:      rand.IntN,
		log:       log,
	}
}

// SelectNext returns a random unsolved question at the user's tier. It only
// reads.
func (s *QuestionService) SelectNext(ctx context.Context, userID string) (*model.Question, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.MissingField("user_id")
	}

	count, err := s.solves.CountSolved(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count solved questions: %w", err)
	}
	tier := TierForSolvedCount(count)

	pool, err := s.questions.ListByDifficulty(ctx, tier)
	if err != nil {
		return nil, fmt.Errorf("list questions for tier %d: %w", tier, err)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("no questions defined for tier %d: %w", tier, common.ErrNotFound)
	}

	solvedIDs, err := s.solves.ListSolvedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list solved questions: %w", err)
	}
	solved := make(map[string]struct{}, len(solvedIDs))
	for _, id := range solvedIDs {
		solved[id] = struct{}{}
	}

	candidates := make([]model.Question, 0, len(pool))
	for _, q := range pool {
		if _, done := solved[q.ID]; !done {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no unsolved questions left at tier %d: %w", tier, common.ErrNotFound)
	}

	chosen := candidates[s.pick(len(candidates))]
	s.log.Debug().
		Str("user_id", userID).
		Int("solved", count).
		Int("tier", int(tier)).
		Int("candidates", len(candidates)).
		Str("question_id", chosen.ID).
		Msg("selected next question")
	return &chosen, nil
}

func (s *QuestionService) Get(ctx context.Context, id string) (*model.Question, error) {
	if strings.TrimSpace(id) == "" {
		return nil, common.MissingField("question_id")
	}
	q, err := s.questions.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("question %s: %w", id, err)
	}
	return q, nil
}

func (s *QuestionService) Progress(ctx context.Context, userID string) (*model.UserProgress, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.MissingField("user_id")
	}

	ids, err := s.solves.ListSolvedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list solved questions: %w", err)
	}
	return &model.UserProgress{
		UserID:            userID,
		SolvedCount:       len(ids),
		Tier:              TierForSolvedCount(len(ids)),
		SolvedQuestionIDs: ids,
	}, nil
}
