package quiz

import (
	"fmt"
	"strings"
	"time"
)

type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeTrueFalse      QuestionType = "true_false"
	TypeShortAnswer    QuestionType = "short_answer"
	TypeEssay          QuestionType = "essay"
)

// Weight returns the fixed point value for a question type.
func Weight(t QuestionType) int {
	switch t {
	case TypeShortAnswer:
		return 2
	case TypeEssay:
		return 5
	default: // multiple_choice, true_false
		return 1
	}
}

// PlaceholderAnswer is substituted when the model omits a short_answer
// key. The quiz is still publishable; the repair is surfaced to the
// caller so the teacher can fix the key before grading.
const PlaceholderAnswer = "ANSWER PENDING TEACHER REVIEW"

// Question is a tagged union over the four supported variants. Only the
// fields of the active variant are meaningful.
type Question struct {
	ID   string       `json:"id"`
	Type QuestionType `json:"type"`
	Text string       `json:"question"`

	Options     []string `json:"options,omitempty"` // multiple_choice: 4 labeled options
	Correct     string   `json:"correct,omitempty"` // multiple_choice: "A".."D"
	AnswerBool  *bool    `json:"answer_bool,omitempty"`
	Answer      string   `json:"answer,omitempty"` // short_answer expected answer
	Explanation string   `json:"explanation,omitempty"`

	Points   int  `json:"points"`
	Repaired bool `json:"repaired,omitempty"`
}

type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	Repaired    bool       `json:"repaired,omitempty"`
	Warnings    []string   `json:"warnings,omitempty"`
	CreatedAt   int64      `json:"created_at,omitempty"`
}

// Validate checks the variant's required fields. A short_answer question
// missing its expected answer returns ErrMissingAnswer so callers can
// repair instead of reject.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question %s: empty text", q.ID)
	}
	switch q.Type {
	case TypeMultipleChoice:
		if len(q.Options) != 4 {
			return fmt.Errorf("question %s: multiple_choice needs 4 options, got %d", q.ID, len(q.Options))
		}
		c := strings.ToUpper(strings.TrimSpace(q.Correct))
		if len(c) != 1 || c[0] < 'A' || c[0] > 'D' {
			return fmt.Errorf("question %s: correct label %q not in A-D", q.ID, q.Correct)
		}
		q.Correct = c
	case TypeTrueFalse:
		if q.AnswerBool == nil {
			return fmt.Errorf("question %s: true_false needs a boolean answer", q.ID)
		}
	case TypeShortAnswer:
		if strings.TrimSpace(q.Answer) == "" {
			return fmt.Errorf("question %s: %w", q.ID, ErrMissingAnswer)
		}
	case TypeEssay:
		// nothing checkable
	default:
		return fmt.Errorf("question %s: %w: %q", q.ID, ErrUnknownType, q.Type)
	}
	return nil
}

// CorrectOption returns the full option text matching the correct label,
// e.g. "A" -> "A. Paris". Empty when not a multiple_choice question.
func (q *Question) CorrectOption() string {
	if q.Type != TypeMultipleChoice {
		return ""
	}
	for _, opt := range q.Options {
		if strings.HasPrefix(strings.TrimSpace(opt), q.Correct+".") ||
			strings.TrimSpace(opt) == q.Correct {
			return opt
		}
	}
	return q.Correct
}

// Validate enforces the quiz-level invariants: at least one question and
// a non-empty title (synthesized when absent).
func (z *Quiz) Validate() error {
	if len(z.Questions) == 0 {
		return ErrNoQuestions
	}
	if strings.TrimSpace(z.Title) == "" {
		z.Title = defaultTitle(z.Questions)
	}
	for i := range z.Questions {
		if err := z.Questions[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RepairShortAnswers substitutes the placeholder for every short_answer
// question missing its key and marks quiz and question as repaired.
func (z *Quiz) RepairShortAnswers() {
	for i := range z.Questions {
		q := &z.Questions[i]
		if q.Type == TypeShortAnswer && strings.TrimSpace(q.Answer) == "" {
			q.Answer = PlaceholderAnswer
			q.Repaired = true
			z.Repaired = true
			z.Warnings = append(z.Warnings,
				fmt.Sprintf("question %d: missing short-answer key, placeholder substituted", i+1))
		}
	}
}

func defaultTitle(qs []Question) string {
	if len(qs) > 0 {
		text := strings.TrimSpace(qs[0].Text)
		if len(text) > 48 {
			text = text[:48]
		}
		if text != "" {
			return "Quiz: " + text
		}
	}
	return "Quiz " + time.Now().Format("2006-01-02 15:04")
}
