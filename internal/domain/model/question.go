package model

// Difficulty is the tier a question belongs to. Tier 1 is the easiest.
type Difficulty int

const (
	DifficultyEasy   Difficulty = 1
	DifficultyMedium Difficulty = 2
	DifficultyHard   Difficulty = 3
)

func (d Difficulty) Valid() bool {
	return d >= DifficultyEasy && d <= DifficultyHard
}

type Question struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Constraints string     `json:"constraints"`
	Topic       string     `json:"topic,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
	TestCases   []TestCase `json:"test_cases,omitempty"` // Public cases the client submits against
}
