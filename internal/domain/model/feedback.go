package model

// ParsedFeedback is the structured reply expected from the completion service.
type ParsedFeedback struct {
	Feedback   string   `json:"feedback"`
	Weaknesses []string `json:"weaknesses"`
}

type UserWeaknesses struct {
	UserID     string   `json:"user_id"`
	Weaknesses []string `json:"weaknesses"`
}
