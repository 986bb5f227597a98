package quiz

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/classpilot/classpilot-api/internal/llm"
)

// ContentWindow bounds how much source text rides along in the prompt.
const ContentWindow = 3000

type GenerateRequest struct {
	SourceText   string
	NumQuestions int
	Types        []QuestionType
	Difficulty   string
}

// Generator turns extracted document text into a structured Quiz,
// tolerating malformed model output via bounded retry.
type Generator struct {
	model llm.TextModel
}

func NewGenerator(model llm.TextModel) *Generator {
	return &Generator{model: model}
}

// Generate asks the model for a quiz and parses the reply. On total
// parse/validation failure it retries once with a reduced question count
// (max(3, N-2)); if both attempts fail the error is surfaced, never an
// empty quiz as success.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*Quiz, error) {
	if req.NumQuestions <= 0 {
		req.NumQuestions = 5
	}
	if len(req.Types) == 0 {
		return nil, fmt.Errorf("at least one question type required")
	}

	z, err := g.attempt(ctx, req)
	if err == nil {
		return z, nil
	}
	log.Printf("quiz generation attempt failed: %v; retrying with reduced count", err)

	reduced := req
	reduced.NumQuestions = req.NumQuestions - 2
	if reduced.NumQuestions < 3 {
		reduced.NumQuestions = 3
	}
	z, err2 := g.attempt(ctx, reduced)
	if err2 != nil {
		return nil, fmt.Errorf("quiz generation failed twice: %v; %w", err, err2)
	}
	return z, nil
}

func (g *Generator) attempt(ctx context.Context, req GenerateRequest) (*Quiz, error) {
	reply, err := g.model.Complete(ctx, buildPrompt(req))
	if err != nil {
		return nil, err
	}

	var wire wireQuiz
	if err := llm.ExtractObject(reply, &wire); err != nil {
		return nil, fmt.Errorf("parse model reply: %w", err)
	}

	allowed := map[QuestionType]bool{}
	for _, t := range req.Types {
		allowed[t] = true
	}

	z := &Quiz{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(wire.Title),
		Description: strings.TrimSpace(wire.Description),
		CreatedAt:   time.Now().Unix(),
	}
	for _, wq := range wire.Questions {
		q, err := wq.toQuestion()
		if err != nil {
			z.Warnings = append(z.Warnings, fmt.Sprintf("dropped question %q: %v", clip(wq.Question, 40), err))
			continue
		}
		if !allowed[q.Type] {
			z.Warnings = append(z.Warnings, fmt.Sprintf("dropped question of disallowed type %q", q.Type))
			continue
		}
		z.Questions = append(z.Questions, q)
	}

	// Fewer questions than requested is the model's responsibility and
	// accepted; zero is a failure.
	z.RepairShortAnswers()
	if err := z.Validate(); err != nil {
		return nil, err
	}
	return z, nil
}

type wireQuiz struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []wireQuestion `json:"questions"`
}

type wireQuestion struct {
	Type        string      `json:"type"`
	Question    string      `json:"question"`
	Options     []string    `json:"options"`
	Correct     string      `json:"correct"`
	Answer      interface{} `json:"answer"` // bool for true_false, string for short_answer
	Explanation string      `json:"explanation"`
}

func (wq wireQuestion) toQuestion() (Question, error) {
	q := Question{
		ID:          uuid.NewString(),
		Type:        QuestionType(strings.ToLower(strings.TrimSpace(wq.Type))),
		Text:        strings.TrimSpace(wq.Question),
		Options:     wq.Options,
		Correct:     wq.Correct,
		Explanation: wq.Explanation,
	}
	switch v := wq.Answer.(type) {
	case bool:
		b := v
		q.AnswerBool = &b
	case string:
		if q.Type == TypeTrueFalse {
			b := strings.EqualFold(strings.TrimSpace(v), "true")
			q.AnswerBool = &b
		} else {
			q.Answer = strings.TrimSpace(v)
		}
	}
	q.Points = Weight(q.Type)

	// Repairable omissions pass through; everything else rejects here.
	if err := q.Validate(); err != nil {
		if q.Type == TypeShortAnswer && strings.TrimSpace(q.Answer) == "" {
			return q, nil
		}
		return Question{}, err
	}
	return q, nil
}

func buildPrompt(req GenerateRequest) string {
	source := req.SourceText
	if len(source) > ContentWindow {
		source = source[:ContentWindow]
	}

	types := make([]string, 0, len(req.Types))
	for _, t := range req.Types {
		types = append(types, string(t))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Create %d quiz questions from the content below.\n", req.NumQuestions)
	fmt.Fprintf(&sb, "Use only these question types: %s.\n", strings.Join(types, ", "))
	if req.Difficulty != "" {
		fmt.Fprintf(&sb, "Difficulty level: %s.\n", req.Difficulty)
	}
	sb.WriteString(`Respond ONLY with valid JSON in this exact shape (no explanation, no markdown):

{
  "title": "Quiz title reflecting the content",
  "description": "One-sentence description",
  "questions": [
    {
      "type": "multiple_choice",
      "question": "What is the capital of France?",
      "options": ["A. Paris", "B. Berlin", "C. Madrid", "D. Rome"],
      "correct": "A",
      "explanation": "Paris is the capital of France."
    },
    {"type": "true_false", "question": "The sky is green.", "answer": false},
    {"type": "short_answer", "question": "Name the largest planet.", "answer": "Jupiter"},
    {"type": "essay", "question": "Discuss the causes of World War I."}
  ]
}

Rules:
- multiple_choice: exactly 4 options labeled "A." through "D.", "correct" is the single letter.
- true_false: "answer" is a JSON boolean.
- short_answer: "answer" is required and must be a short expected answer string.
- essay: no answer field.
- Point weights are fixed: multiple_choice 1, true_false 1, short_answer 2, essay 5. Do not include points.

Content:
`)
	sb.WriteString(source)
	return sb.String()
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
