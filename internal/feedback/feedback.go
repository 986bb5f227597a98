// Package feedback turns one respondent's scoring data into a short
// natural-language message. Synthesis never fails its caller: on any
// model or parse failure a deterministic template is substituted.
package feedback

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/classpilot/classpilot-api/internal/grading"
	"github.com/classpilot/classpilot-api/internal/llm"
)

type Feedback struct {
	ScoreString string `json:"score_string"` // "earned/possible"
	Percentage  int    `json:"percentage"`
	Message     string `json:"message"`
}

type Synthesizer struct {
	model llm.TextModel
}

func NewSynthesizer(model llm.TextModel) *Synthesizer {
	return &Synthesizer{model: model}
}

func (s *Synthesizer) Synthesize(ctx context.Context, resp grading.Response) Feedback {
	fb := Feedback{
		ScoreString: scoreString(resp),
		Percentage:  resp.Percentage,
	}

	if len(resp.Answers) == 0 {
		fb.Message = fallbackMessage(resp)
		return fb
	}

	reply, err := s.model.Complete(ctx, buildPrompt(resp))
	if err != nil {
		log.Printf("feedback synthesis for %s: %v", resp.Name, err)
		fb.Message = fallbackMessage(resp)
		return fb
	}

	var wire struct {
		Score   string `json:"score"`
		Message string `json:"message"`
	}
	if err := llm.ExtractObject(reply, &wire); err != nil || strings.TrimSpace(wire.Message) == "" {
		fb.Message = fallbackMessage(resp)
		return fb
	}
	fb.Message = strings.TrimSpace(wire.Message)
	return fb
}

func buildPrompt(resp grading.Response) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a short, encouraging feedback message (2-3 sentences) for this student's quiz result.\n")
	fmt.Fprintf(&sb, "Student: %s (roll number %s)\n", resp.Name, resp.RollNumber)
	fmt.Fprintf(&sb, "Score: %s (%d%%)\n\nPer-question results:\n", scoreString(resp), resp.Percentage)
	// Identity fields are already stripped; Answers holds quiz questions only.
	for i, a := range resp.Answers {
		fmt.Fprintf(&sb, "%d. %q answered %q -> %.1f/%.1f (correct=%t)\n",
			i+1, a.Question, a.Value, a.Score, a.MaxScore, a.Correct)
	}
	sb.WriteString(`
Respond ONLY with a JSON object in this shape:
{"score": "<earned>/<possible>", "message": "<the feedback message>"}
`)
	return sb.String()
}

func fallbackMessage(resp grading.Response) string {
	return fmt.Sprintf("You scored %s (%d%%). Keep practicing and review the questions you missed.",
		scoreString(resp), resp.Percentage)
}

func scoreString(resp grading.Response) string {
	return fmt.Sprintf("%s/%s", trimFloat(resp.TotalScore), trimFloat(resp.MaxPossible))
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.1f", f)
	s = strings.TrimSuffix(s, ".0")
	return s
}
