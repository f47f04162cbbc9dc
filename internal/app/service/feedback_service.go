package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"codecoach/internal/common"
	"codecoach/internal/domain/model"
	"codecoach/internal/domain/repository"
	"codecoach/internal/platform/llm"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const feedbackSystemPrompt = "You are a helpful assistant that only replies in JSON."

type QuestionContext struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Constraints string `json:"constraints"`
}

// AnalyzedTestResult is a test result as reported by the client.
type AnalyzedTestResult struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	ActualOutput   string `json:"actual_output"`
	Passed         bool   `json:"passed"`
}

type AnalyzeRequest struct {
	Code               string               `json:"code"`
	Language           string               `json:"language"`
	Question           QuestionContext      `json:"question"`
	TestResults        []AnalyzedTestResult `json:"testResults"`
	Attempts           int                  `json:"attempts"`
	TimeSpentInSeconds int                  `json:"timeSpentInSeconds"`
	PreviousWeaknesses []string             `json:"previousWeaknesses"`
	UserID             string               `json:"user_id"`
}

type FeedbackOptions struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type FeedbackService struct {
	provider   llm.Provider
	weaknesses repository.WeaknessRepository
	opts       FeedbackOptions
	log        zerolog.Logger
}

func NewFeedbackService(provider llm.Provider, weaknesses repository.WeaknessRepository, opts FeedbackOptions, log zerolog.Logger) *FeedbackService {
	return &FeedbackService{
		provider:   provider,
		weaknesses: weaknesses,
		opts:       opts,
		log:        log,
	}
}

// Analyze asks the completion service for mentor feedback and stores the
// returned weaknesses for the user, replacing any earlier list. Storing is
// best effort: a failure is logged and the feedback is still returned.
func (s *FeedbackService) Analyze(ctx context.Context, req AnalyzeRequest) (*model.ParsedFeedback, error) {
	if strings.TrimSpace(req.Code) == "" {
		return nil, common.MissingField("code")
	}
	if strings.TrimSpace(req.Language) == "" {
		return nil, common.MissingField("language")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, common.MissingField("user_id")
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	resp, err := s.provider.Complete(ctx, llm.Request{
		System:      feedbackSystemPrompt,
		Prompt:      buildFeedbackPrompt(req),
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		var invalid *llm.ErrInvalidResponse
		if errors.As(err, &invalid) {
			return nil, &common.UpstreamFormatError{Err: err}
		}
		return nil, fmt.Errorf("completion request: %w: %w", common.ErrServiceUnavailable, err)
	}

	feedback, err := parseFeedback(resp.Text)
	if err != nil {
		s.log.Warn().Err(err).Str("model", resp.Model).Msg("unparsable completion reply")
		return nil, err
	}

	if err := s.weaknesses.Upsert(ctx, req.UserID, feedback.Weaknesses); err != nil {
		s.log.Error().Err(err).Str("user_id", req.UserID).Msg("failed to store weaknesses")
	} else {
		s.log.Info().Str("user_id", req.UserID).Int("count", len(feedback.Weaknesses)).Msg("weaknesses saved")
	}

	return feedback, nil
}

// Weaknesses returns the stored list, empty when the user has none yet.
func (s *FeedbackService) Weaknesses(ctx context.Context, userID string) (*model.UserWeaknesses, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.MissingField("user_id")
	}

	list, err := s.weaknesses.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("load weaknesses: %w", err)
		}
		list = []string{}
	}
	return &model.UserWeaknesses{UserID: userID, Weaknesses: list}, nil
}

func buildFeedbackPrompt(req AnalyzeRequest) string {
	var b strings.Builder

	b.WriteString("You are an expert coding mentor helping analyze student code.\n\n")
	b.WriteString("Here is a coding problem:\n")
	fmt.Fprintf(&b, "- Title: %s\n", req.Question.Title)
	fmt.Fprintf(&b, "- Description: %s\n", req.Question.Description)
	fmt.Fprintf(&b, "- Constraints: %s\n\n", req.Question.Constraints)

	fmt.Fprintf(&b, "Student wrote this code in %s:\n```%s\n%s\n```\n\n", req.Language, req.Language, req.Code)

	b.WriteString("Here are the test case results:\n")
	for i, r := range req.TestResults {
		fmt.Fprintf(&b, "Test %d: input = %s, expected = %s, actual = %s, passed = %t\n",
			i+1, r.Input, r.ExpectedOutput, r.ActualOutput, r.Passed)
	}

	b.WriteString("\nAdditional metadata:\n")
	fmt.Fprintf(&b, "- Number of attempts: %d\n", req.Attempts)
	fmt.Fprintf(&b, "- Time spent: %d seconds\n\n", req.TimeSpentInSeconds)

	if len(req.PreviousWeaknesses) == 0 {
		b.WriteString("This is the user's first question.\n\n")
	} else {
		b.WriteString("The student had the following previous weaknesses:\n")
		for _, w := range req.PreviousWeaknesses {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("Evaluate whether these have been improved upon. Add any new weaknesses if found.\n\n")
	}

	b.WriteString(`Analyze the student's code:
1. Identify mistakes.
2. Suggest improvements.
3. Mention any new or persistent weaknesses.
4. Return a JSON response in the format:
   {
     "feedback": "Detailed feedback here...",
     "weaknesses": ["weakness1", "weakness2"]
   }
`)
	return b.String()
}

var feedbackSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	def := map[string]any{
		"type":     "object",
		"required": []any{"feedback", "weaknesses"},
		"properties": map[string]any{
			"feedback": map[string]any{"type": "string"},
			"weaknesses": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	}

	c := jsonschema.NewCompiler()
	const url = "schema://parsed-feedback.json"
	if err := c.AddResource(url, def); err != nil {
		return nil, err
	}
	return c.Compile(url)
})

// parseFeedback reads the first JSON value starting at the first '{' of the
// reply. Models often wrap the object in prose.
func parseFeedback(text string) (*model.ParsedFeedback, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, &common.UpstreamFormatError{Raw: text, Err: errors.New("no JSON object in reply")}
	}

	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&raw); err != nil {
		return nil, &common.UpstreamFormatError{Raw: text, Err: err}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &common.UpstreamFormatError{Raw: text, Err: err}
	}

	schema, err := feedbackSchema()
	if err != nil {
		return nil, fmt.Errorf("compile feedback schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, &common.UpstreamFormatError{Raw: text, Err: err}
	}

	var feedback model.ParsedFeedback
	if err := json.Unmarshal(raw, &feedback); err != nil {
		return nil, &common.UpstreamFormatError{Raw: text, Err: err}
	}
	return &feedback, nil
}
