package quiz_test

import (
	"context"
	"strings"
	"testing"

	"github.com/classpilot/classpilot-api/internal/quiz"
)

// fakeModel replays canned replies in order, recording the prompts.
type fakeModel struct {
	replies []string
	err     error
	prompts []string
}

func (f *fakeModel) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	i := len(f.prompts) - 1
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	return f.replies[i], nil
}

const goodReply = "```json\n" + `{
  "title": "Geography Basics",
  "description": "A short geography quiz",
  "questions": [
    {"type": "multiple_choice", "question": "What is the capital of France?",
     "options": ["A. Paris", "B. Berlin", "C. Madrid", "D. Rome"], "correct": "A",
     "explanation": "Paris is the capital of France."},
    {"type": "true_false", "question": "The equator passes through Africa.", "answer": true},
    {"type": "short_answer", "question": "Name the longest river.", "answer": "The Nile"},
    {"type": "essay", "question": "Discuss the factors that affect climate."}
  ]
}` + "\n```"

func allTypes() []quiz.QuestionType {
	return []quiz.QuestionType{
		quiz.TypeMultipleChoice, quiz.TypeTrueFalse, quiz.TypeShortAnswer, quiz.TypeEssay,
	}
}

func TestGenerate_ParsesFencedReply(t *testing.T) {
	m := &fakeModel{replies: []string{goodReply}}
	gen := quiz.NewGenerator(m)

	z, err := gen.Generate(context.Background(), quiz.GenerateRequest{
		SourceText: "Geography source text.", NumQuestions: 4, Types: allTypes(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if z.Title != "Geography Basics" || len(z.Questions) != 4 {
		t.Fatalf("got title %q, %d questions", z.Title, len(z.Questions))
	}
	if len(m.prompts) != 1 {
		t.Fatalf("expected single model call, got %d", len(m.prompts))
	}

	weights := []int{1, 1, 2, 5}
	for i, q := range z.Questions {
		if q.Points != weights[i] {
			t.Fatalf("question %d points = %d, want %d", i, q.Points, weights[i])
		}
	}
	if z.Questions[1].AnswerBool == nil || !*z.Questions[1].AnswerBool {
		t.Fatalf("true_false answer lost: %+v", z.Questions[1])
	}
}

func TestGenerate_RepairsMissingShortAnswerKey(t *testing.T) {
	reply := `{"title": "T", "questions": [
		{"type": "short_answer", "question": "Name the largest planet."}
	]}`
	m := &fakeModel{replies: []string{reply}}
	gen := quiz.NewGenerator(m)

	z, err := gen.Generate(context.Background(), quiz.GenerateRequest{
		SourceText: "planets", Types: []quiz.QuestionType{quiz.TypeShortAnswer},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := z.Questions[0]
	if q.Answer != quiz.PlaceholderAnswer || !q.Repaired || !z.Repaired {
		t.Fatalf("repair not applied: %+v", q)
	}
	if len(z.Warnings) == 0 {
		t.Fatalf("expected a repair warning")
	}
}

func TestGenerate_DropsDisallowedTypes(t *testing.T) {
	m := &fakeModel{replies: []string{goodReply}}
	gen := quiz.NewGenerator(m)

	z, err := gen.Generate(context.Background(), quiz.GenerateRequest{
		SourceText: "text", Types: []quiz.QuestionType{quiz.TypeMultipleChoice},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(z.Questions) != 1 || z.Questions[0].Type != quiz.TypeMultipleChoice {
		t.Fatalf("expected only the multiple_choice question, got %+v", z.Questions)
	}
	if len(z.Warnings) != 3 {
		t.Fatalf("expected 3 drop warnings, got %v", z.Warnings)
	}
}

func TestGenerate_RetriesWithReducedCount(t *testing.T) {
	m := &fakeModel{replies: []string{"I cannot help with that.", goodReply}}
	gen := quiz.NewGenerator(m)

	z, err := gen.Generate(context.Background(), quiz.GenerateRequest{
		SourceText: "text", NumQuestions: 10, Types: allTypes(),
	})
	if err != nil {
		t.Fatalf("expected retry to recover: %v", err)
	}
	if z == nil || len(z.Questions) == 0 {
		t.Fatalf("empty quiz after successful retry")
	}
	if len(m.prompts) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(m.prompts))
	}
	if !strings.Contains(m.prompts[0], "Create 10 quiz questions") {
		t.Fatalf("first prompt missing requested count")
	}
	if !strings.Contains(m.prompts[1], "Create 8 quiz questions") {
		t.Fatalf("retry prompt should ask for N-2 questions: %s", firstLine(m.prompts[1]))
	}
}

func TestGenerate_ReducedCountFloorsAtThree(t *testing.T) {
	m := &fakeModel{replies: []string{"no json here", goodReply}}
	gen := quiz.NewGenerator(m)

	_, err := gen.Generate(context.Background(), quiz.GenerateRequest{
		SourceText: "text", NumQuestions: 4, Types: allTypes(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(m.prompts[1], "Create 3 quiz questions") {
		t.Fatalf("retry count should floor at 3: %s", firstLine(m.prompts[1]))
	}
}

func TestGenerate_FailsAfterTwoBadReplies(t *testing.T) {
	m := &fakeModel{replies: []string{"garbage", "still garbage"}}
	gen := quiz.NewGenerator(m)

	_, err := gen.Generate(context.Background(), quiz.GenerateRequest{
		SourceText: "text", Types: allTypes(),
	})
	if err == nil {
		t.Fatalf("expected error after two unparseable replies")
	}
	if len(m.prompts) != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", len(m.prompts))
	}
}

func TestGenerate_RequiresQuestionTypes(t *testing.T) {
	gen := quiz.NewGenerator(&fakeModel{replies: []string{goodReply}})
	if _, err := gen.Generate(context.Background(), quiz.GenerateRequest{SourceText: "t"}); err == nil {
		t.Fatalf("expected error without question types")
	}
}

func TestGenerate_ClipsContentWindow(t *testing.T) {
	m := &fakeModel{replies: []string{goodReply}}
	gen := quiz.NewGenerator(m)

	long := strings.Repeat("x", quiz.ContentWindow+500)
	if _, err := gen.Generate(context.Background(), quiz.GenerateRequest{
		SourceText: long, Types: allTypes(),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(m.prompts[0], long) {
		t.Fatalf("full source text leaked into the prompt")
	}
	if !strings.Contains(m.prompts[0], long[:quiz.ContentWindow]) {
		t.Fatalf("clipped source text missing from the prompt")
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
