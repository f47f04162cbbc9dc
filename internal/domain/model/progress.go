package model

type UserProgress struct {
	UserID            string     `json:"user_id"`
	SolvedCount       int        `json:"solved_count"`
	Tier              Difficulty `json:"tier"`
	SolvedQuestionIDs []string   `json:"solved_question_ids"`
}
