package service

import (
	"context"
	"strings"
	"sync"

	"codecoach/internal/common"
	"codecoach/internal/domain/model"
	"codecoach/internal/domain/repository"
	"codecoach/internal/platform/sandbox"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"
)

type GradeRequest struct {
	Language   string           `json:"language"`
	Version    string           `json:"version"`
	SourceCode string           `json:"source_code"`
	TestCases  []model.TestCase `json:"testCases"`
}

type SubmitRequest struct {
	GradeRequest
	UserID     string `json:"user_id"`
	QuestionID string `json:"question_id"`
}

// GradingService runs a submission against its test cases and records a
// solve when every case passes.
type GradingService struct {
	executor sandbox.Executor
	solves   repository.SolveRecordRepository
	pool     *workerpool.WorkerPool // nil runs cases one after another
	log      zerolog.Logger
}

func NewGradingService(
	executor sandbox.Executor,
	solves repository.SolveRecordRepository,
	pool *workerpool.WorkerPool,
	log zerolog.Logger,
) *GradingService {
	return &GradingService{
		executor: executor,
		solves:   solves,
		pool:     pool,
		log:      log,
	}
}

func (r GradeRequest) validate() error {
	if strings.TrimSpace(r.Language) == "" {
		return common.MissingField("language")
	}
	if strings.TrimSpace(r.SourceCode) == "" {
		return common.MissingField("source_code")
	}
	if len(r.TestCases) == 0 {
		return common.MissingField("testCases")
	}
	return nil
}

// Grade never records anything. Results keep the order of req.TestCases.
// The first sandbox failure aborts grading with an *common.ExecutionError.
func (s *GradingService) Grade(ctx context.Context, req GradeRequest) (*model.SubmissionOutcome, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var (
		results []model.TestResult
		err     error
	)
	if s.pool == nil || len(req.TestCases) == 1 {
		results, err = s.runSequential(ctx, req)
	} else {
		results, err = s.runParallel(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	outcome := &model.SubmissionOutcome{Total: len(results), Results: results}
	for _, r := range results {
		if r.Passed {
			outcome.PassedCount++
		}
	}
	outcome.AllPassed = outcome.PassedCount == outcome.Total
	return outcome, nil
}

// Submit grades and, only when every case passed, makes exactly one attempt
// to record the solve. A failed attempt returns *common.PersistenceError
// carrying the outcome.
func (s *GradingService) Submit(ctx context.Context, req SubmitRequest) (*model.SubmissionOutcome, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, common.MissingField("user_id")
	}
	if strings.TrimSpace(req.QuestionID) == "" {
		return nil, common.MissingField("question_id")
	}

	outcome, err := s.Grade(ctx, req.GradeRequest)
	if err != nil {
		return nil, err
	}

	if !outcome.AllPassed {
		s.log.Info().
			Str("user_id", req.UserID).
			Str("question_id", req.QuestionID).
			Int("passed", outcome.PassedCount).
			Int("total", outcome.Total).
			Msg("submission graded")
		return outcome, nil
	}

	if err := s.solves.InsertSolved(ctx, req.UserID, req.QuestionID); err != nil {
		s.log.Error().Err(err).
			Str("user_id", req.UserID).
			Str("question_id", req.QuestionID).
			Msg("failed to record solved question")
		return nil, &common.PersistenceError{Op: "record solved question", Outcome: outcome, Err: err}
	}

	s.log.Info().
		Str("user_id", req.UserID).
		Str("question_id", req.QuestionID).
		Int("total", outcome.Total).
		Msg("question solved")
	return outcome, nil
}

func (s *GradingService) runCase(ctx context.Context, req GradeRequest, i int) (model.TestResult, error) {
	tc := req.TestCases[i]
	out, err := s.executor.Execute(ctx, sandbox.Request{
		Language: req.Language,
		Version:  req.Version,
		Source:   req.SourceCode,
		Stdin:    tc.Input,
	})
	if err != nil {
		return model.TestResult{}, &common.ExecutionError{Index: i, Input: tc.Input, Err: err}
	}

	actual := strings.TrimSpace(out)
	expected := strings.TrimSpace(tc.Output)
	return model.TestResult{
		Input:    tc.Input,
		Output:   actual,
		Expected: expected,
		Passed:   actual == expected,
	}, nil
}

func (s *GradingService) runSequential(ctx context.Context, req GradeRequest) ([]model.TestResult, error) {
	results := make([]model.TestResult, 0, len(req.TestCases))
	for i := range req.TestCases {
		res, err := s.runCase(ctx, req, i)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// runParallel shares the service pool across requests. Each case writes its
// own slot, so order does not depend on completion order.
func (s *GradingService) runParallel(ctx context.Context, req GradeRequest) ([]model.TestResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	results := make([]model.TestResult, len(req.TestCases))
	for i := range req.TestCases {
		wg.Add(1)
		s.pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				fail(&common.ExecutionError{Index: i, Input: req.TestCases[i].Input, Err: err})
				return
			}
			res, err := s.runCase(ctx, req, i)
			if err != nil {
				fail(err)
				return
			}
			results[i] = res
		})
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
