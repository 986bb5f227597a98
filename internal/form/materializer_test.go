package form_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/classpilot/classpilot-api/internal/form"
	"github.com/classpilot/classpilot-api/internal/gworkspace/forms"
	"github.com/classpilot/classpilot-api/internal/quiz"
)

// fakeFormsAPI simulates the remote form service, applying batchUpdate
// requests to an in-memory Form the way the real service would.
type fakeFormsAPI struct {
	form         forms.Form
	createErr    error
	quizModeErr  error // fail UpdateSettings when set
	gradingFails map[int]bool
	ignoreQuiz   bool // accept the setting call but never apply it

	batchCalls [][]forms.Request
}

func newFakeFormsAPI() *fakeFormsAPI {
	return &fakeFormsAPI{gradingFails: map[int]bool{}}
}

func (f *fakeFormsAPI) Create(_ context.Context, info forms.Info) (forms.Form, error) {
	if f.createErr != nil {
		return forms.Form{}, f.createErr
	}
	f.form = forms.Form{
		FormID:       "form-1",
		Info:         info,
		ResponderURI: "https://docs.google.com/forms/d/form-1/viewform",
	}
	return f.form, nil
}

func (f *fakeFormsAPI) Get(_ context.Context, formID string) (forms.Form, error) {
	if formID != f.form.FormID {
		return forms.Form{}, fmt.Errorf("form %q not found", formID)
	}
	return f.form, nil
}

func (f *fakeFormsAPI) BatchUpdate(_ context.Context, formID string, requests []forms.Request) error {
	if formID != f.form.FormID {
		return fmt.Errorf("form %q not found", formID)
	}
	f.batchCalls = append(f.batchCalls, requests)
	for _, req := range requests {
		switch {
		case req.CreateItem != nil:
			item := req.CreateItem.Item
			item.ItemID = fmt.Sprintf("item-%d", req.CreateItem.Location.Index)
			if item.QuestionItem != nil {
				item.QuestionItem.Question.QuestionID = fmt.Sprintf("q-%d", req.CreateItem.Location.Index)
			}
			f.form.Items = append(f.form.Items, item)
		case req.UpdateItem != nil:
			idx := req.UpdateItem.Location.Index
			if f.gradingFails[idx] {
				return fmt.Errorf("grading rejected at index %d", idx)
			}
			if idx < len(f.form.Items) && f.form.Items[idx].QuestionItem != nil {
				f.form.Items[idx].QuestionItem.Question.Grading = req.UpdateItem.Item.QuestionItem.Question.Grading
			}
		case req.UpdateFormInfo != nil:
			f.form.Info.Description = req.UpdateFormInfo.Info.Description
		case req.UpdateSettings != nil:
			if f.quizModeErr != nil {
				return f.quizModeErr
			}
			if !f.ignoreQuiz {
				f.form.Settings = req.UpdateSettings.Settings
			}
		}
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

func sampleQuiz() *quiz.Quiz {
	return &quiz.Quiz{
		ID:          "quiz-1",
		Title:       "Geography Basics",
		Description: "A short geography quiz",
		Questions: []quiz.Question{
			{ID: "a", Type: quiz.TypeMultipleChoice, Text: "What is the capital of France?",
				Options: []string{"A. Paris", "B. Berlin", "C. Madrid", "D. Rome"}, Correct: "A", Points: 1},
			{ID: "b", Type: quiz.TypeTrueFalse, Text: "The equator passes through Africa.",
				AnswerBool: boolPtr(true), Points: 1},
			{ID: "c", Type: quiz.TypeShortAnswer, Text: "Name the longest river.", Answer: "The Nile", Points: 2},
			{ID: "d", Type: quiz.TypeEssay, Text: "Discuss the factors that affect climate.", Points: 5},
		},
	}
}

func TestMaterialize_LayoutAndGrading(t *testing.T) {
	api := newFakeFormsAPI()
	mat := form.NewMaterializer(api)

	pf, err := mat.Materialize(context.Background(), sampleQuiz())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pf.FormID != "form-1" || pf.ResponderURL == "" {
		t.Fatalf("published form incomplete: %+v", pf)
	}
	if !pf.QuizMode {
		t.Fatalf("quiz mode should be enabled, warnings: %v", pf.Warnings)
	}

	// Two identity fields then the four questions.
	if len(api.form.Items) != 6 {
		t.Fatalf("expected 6 items, got %d", len(api.form.Items))
	}
	if api.form.Items[0].Title != form.StudentNameTitle || api.form.Items[1].Title != form.RollNumberTitle {
		t.Fatalf("identity fields not first: %q, %q", api.form.Items[0].Title, api.form.Items[1].Title)
	}
	for i := 0; i < 2; i++ {
		if !api.form.Items[i].QuestionItem.Question.Required {
			t.Fatalf("identity field %d not required", i)
		}
		if api.form.Items[i].QuestionItem.Question.Grading != nil {
			t.Fatalf("identity field %d should carry no grading", i)
		}
	}

	// Grading metadata on every question item, correct answers where a
	// deterministic key exists.
	mc := api.form.Items[2].QuestionItem.Question.Grading
	if mc == nil || mc.PointValue != 1 || mc.CorrectAnswers.Answers[0].Value != "A. Paris" {
		t.Fatalf("multiple_choice grading wrong: %+v", mc)
	}
	tf := api.form.Items[3].QuestionItem.Question.Grading
	if tf == nil || tf.CorrectAnswers.Answers[0].Value != "True" {
		t.Fatalf("true_false grading wrong: %+v", tf)
	}
	essay := api.form.Items[5].QuestionItem.Question.Grading
	if essay == nil || essay.PointValue != 5 || essay.CorrectAnswers != nil {
		t.Fatalf("essay should have points but no answer key: %+v", essay)
	}
}

func TestMaterialize_NoQuestionsHardFails(t *testing.T) {
	mat := form.NewMaterializer(newFakeFormsAPI())
	_, err := mat.Materialize(context.Background(), &quiz.Quiz{Title: "Empty"})
	if !errors.Is(err, quiz.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestMaterialize_QuizModeFailureDegrades(t *testing.T) {
	api := newFakeFormsAPI()
	api.quizModeErr = errors.New("service rejected settings")
	mat := form.NewMaterializer(api)

	pf, err := mat.Materialize(context.Background(), sampleQuiz())
	if err != nil {
		t.Fatalf("quiz-mode failure must not fail materialization: %v", err)
	}
	if pf.QuizMode {
		t.Fatalf("quiz mode should be reported off")
	}
	if pf.ResponderURL == "" {
		t.Fatalf("responder URL must survive the degradation")
	}
	found := false
	for _, w := range pf.Warnings {
		if strings.Contains(w, "quiz mode not enabled") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected quiz-mode warning, got %v", pf.Warnings)
	}
}

func TestMaterialize_QuizModeSilentlyIgnored(t *testing.T) {
	api := newFakeFormsAPI()
	api.ignoreQuiz = true // service accepts the call but never applies it
	mat := form.NewMaterializer(api)

	pf, err := mat.Materialize(context.Background(), sampleQuiz())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pf.QuizMode {
		t.Fatalf("setting was ignored throughout; quiz mode should be off")
	}
	found := false
	for _, w := range pf.Warnings {
		if strings.Contains(w, "quiz mode not enabled") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected quiz-mode warning, got %v", pf.Warnings)
	}
}

func TestMaterialize_CleanServiceNoWarnings(t *testing.T) {
	mat := form.NewMaterializer(newFakeFormsAPI())
	pf, err := mat.Materialize(context.Background(), sampleQuiz())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pf.QuizMode || len(pf.Warnings) != 0 {
		t.Fatalf("clean service should yield quiz mode with no warnings: %+v", pf)
	}
}

func TestMaterialize_GradingFailureIsolated(t *testing.T) {
	api := newFakeFormsAPI()
	api.gradingFails[3] = true // the true_false item
	mat := form.NewMaterializer(api)

	pf, err := mat.Materialize(context.Background(), sampleQuiz())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.form.Items[2].QuestionItem.Question.Grading == nil {
		t.Fatalf("grading before the failing item should be attached")
	}
	if api.form.Items[3].QuestionItem.Question.Grading != nil {
		t.Fatalf("failing item should carry no grading")
	}
	if api.form.Items[4].QuestionItem.Question.Grading == nil {
		t.Fatalf("grading after the failing item should be attached")
	}
	found := false
	for _, w := range pf.Warnings {
		if strings.Contains(w, "grading not attached for question 2") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected isolated grading warning, got %v", pf.Warnings)
	}
}

func TestMaterialize_PlaceholderShortAnswerGetsNoKey(t *testing.T) {
	api := newFakeFormsAPI()
	mat := form.NewMaterializer(api)

	z := &quiz.Quiz{
		ID:    "quiz-2",
		Title: "Repair Case",
		Questions: []quiz.Question{
			{ID: "a", Type: quiz.TypeShortAnswer, Text: "Name the largest planet.", Points: 2},
		},
	}
	if _, err := mat.Materialize(context.Background(), z); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := api.form.Items[2].QuestionItem.Question.Grading
	if g == nil || g.PointValue != 2 {
		t.Fatalf("repaired question should still carry points: %+v", g)
	}
	if g.CorrectAnswers != nil {
		t.Fatalf("placeholder answer must not become a grading key")
	}
}
