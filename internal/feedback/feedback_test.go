package feedback_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/classpilot/classpilot-api/internal/feedback"
	"github.com/classpilot/classpilot-api/internal/grading"
)

type fakeModel struct {
	reply string
	err   error
	calls int
}

func (f *fakeModel) Complete(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func sampleResponse() grading.Response {
	return grading.Response{
		Name:       "Asha Rao",
		RollNumber: "17",
		Answers: []grading.Answer{
			{Question: "What is the capital of France?", Value: "A. Paris", Score: 1, MaxScore: 1, Correct: true},
			{Question: "Name the longest river.", Value: "The Amazon", Score: 0, MaxScore: 2},
		},
		TotalScore:  1,
		MaxPossible: 3,
		Percentage:  33,
	}
}

func TestSynthesize_UsesModelMessage(t *testing.T) {
	m := &fakeModel{reply: `{"score": "1/3", "message": "Good start; review the river question."}`}
	s := feedback.NewSynthesizer(m)

	fb := s.Synthesize(context.Background(), sampleResponse())
	if fb.Message != "Good start; review the river question." {
		t.Fatalf("message = %q", fb.Message)
	}
	if fb.ScoreString != "1/3" || fb.Percentage != 33 {
		t.Fatalf("score fields wrong: %+v", fb)
	}
}

func TestSynthesize_ModelErrorFallsBack(t *testing.T) {
	m := &fakeModel{err: errors.New("rate limited")}
	s := feedback.NewSynthesizer(m)

	fb := s.Synthesize(context.Background(), sampleResponse())
	if !strings.Contains(fb.Message, "You scored 1/3 (33%)") {
		t.Fatalf("fallback message wrong: %q", fb.Message)
	}
}

func TestSynthesize_UnparseableReplyFallsBack(t *testing.T) {
	m := &fakeModel{reply: "I am sorry, I cannot produce feedback."}
	s := feedback.NewSynthesizer(m)

	fb := s.Synthesize(context.Background(), sampleResponse())
	if !strings.Contains(fb.Message, "You scored") {
		t.Fatalf("fallback message wrong: %q", fb.Message)
	}
}

func TestSynthesize_EmptyAnswersSkipsModel(t *testing.T) {
	m := &fakeModel{reply: `{"message": "should not be used"}`}
	s := feedback.NewSynthesizer(m)

	fb := s.Synthesize(context.Background(), grading.Response{Name: "Ben"})
	if m.calls != 0 {
		t.Fatalf("model should not be called for an empty response")
	}
	if fb.ScoreString != "0/0" {
		t.Fatalf("score string = %q", fb.ScoreString)
	}
}

func TestSynthesize_FractionalScoreString(t *testing.T) {
	s := feedback.NewSynthesizer(&fakeModel{err: errors.New("down")})
	fb := s.Synthesize(context.Background(), grading.Response{
		Answers:     []grading.Answer{{Score: 2.5, MaxScore: 5}},
		TotalScore:  2.5,
		MaxPossible: 5,
		Percentage:  50,
	})
	if fb.ScoreString != "2.5/5" {
		t.Fatalf("score string = %q", fb.ScoreString)
	}
}
