package model

// TestCase is one stdin/expected-stdout pair supplied with a submission.
type TestCase struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"` // Expected
}

type TestResult struct {
	Input    string `json:"input"`
	Output   string `json:"output"`   // Actual, trimmed
	Expected string `json:"expected"` // Trimmed
	Passed   bool   `json:"passed"`
}

// SubmissionOutcome aggregates one grading run. Results are in test case order
// and AllPassed holds iff PassedCount == Total.
type SubmissionOutcome struct {
	PassedCount int          `json:"passedCount"`
	Total       int          `json:"total"`
	AllPassed   bool         `json:"allPassed"`
	Results     []TestResult `json:"results"`
}

type SolvedRecord struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	QuestionID string `json:"question_id"`
}
