// Package grading fetches raw form responses and scores them, either
// from the service's own quiz-mode grading payload or through a manual
// fallback ladder that always resolves to some score.
package grading

// QuestionRef is the collector's view of one form question.
type QuestionRef struct {
	QuestionID string  `json:"question_id"`
	Title      string  `json:"title"`
	Points     float64 `json:"points"`
	Identity   bool    `json:"identity"` // student-name / roll-number field
	Index      int     `json:"index"`    // position within the form
}

// Answer is one respondent's graded answer to one question.
type Answer struct {
	QuestionID string  `json:"question_id"`
	Question   string  `json:"question"`
	Value      string  `json:"value"`
	Correct    bool    `json:"is_correct"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"max_score"`
}

// Response aggregates one respondent's answers and rollups.
type Response struct {
	Name        string   `json:"name"`
	RollNumber  string   `json:"roll_number"`
	Email       string   `json:"email,omitempty"`
	Answers     []Answer `json:"answers"`
	TotalScore  float64  `json:"total_score"`
	MaxPossible float64  `json:"max_possible"`
	Percentage  int      `json:"percentage"`
}

// Result is the outcome of grading a single answer.
type Result struct {
	Score   float64
	Max     float64
	Correct bool
}

// GradedForm is the full output of a collection pass.
type GradedForm struct {
	FormID    string                 `json:"form_id"`
	Title     string                 `json:"title"`
	QuizMode  bool                   `json:"quiz_mode"`
	Questions map[string]QuestionRef `json:"questions"`
	Order     []string               `json:"order"` // question ids in form order
	Responses []Response             `json:"responses"`
}
