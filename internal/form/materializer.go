// Package form renders a validated Quiz into a fillable Google Form with
// identity fields, per-question grading keys and a best-effort quiz-mode
// setting.
package form

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/classpilot/classpilot-api/internal/gworkspace/forms"
	"github.com/classpilot/classpilot-api/internal/quiz"
)

// FormsAPI is the slice of the forms service the materializer uses.
type FormsAPI interface {
	Create(ctx context.Context, info forms.Info) (forms.Form, error)
	Get(ctx context.Context, formID string) (forms.Form, error)
	BatchUpdate(ctx context.Context, formID string, requests []forms.Request) error
}

const (
	StudentNameTitle = "Student Name"
	RollNumberTitle  = "Roll Number"
)

type Materializer struct {
	api FormsAPI
}

func NewMaterializer(api FormsAPI) *Materializer {
	return &Materializer{api: api}
}

// Materialize publishes the quiz as a new form. Each call creates a new,
// independent artifact. The responder URL is returned whenever form
// creation succeeded, even if later steps degrade; every degradation is
// recorded as a warning rather than masked.
func (m *Materializer) Materialize(ctx context.Context, z *quiz.Quiz) (quiz.PublishedForm, error) {
	if z == nil || len(z.Questions) == 0 {
		return quiz.PublishedForm{}, quiz.ErrNoQuestions
	}
	// Auto-repair is supposed to happen at generation time; re-running it
	// here keeps the invariant when a quiz arrives from storage unrepaired.
	z.RepairShortAnswers()
	if err := z.Validate(); err != nil {
		return quiz.PublishedForm{}, fmt.Errorf("quiz not publishable: %w", err)
	}

	pf := quiz.PublishedForm{QuizID: z.ID}

	// Title doubles as the storage document name so the artifact never
	// shows up as "Untitled form" in Drive.
	created, err := m.api.Create(ctx, forms.Info{Title: z.Title, DocumentTitle: z.Title})
	if err != nil {
		return quiz.PublishedForm{}, fmt.Errorf("create form: %w", err)
	}
	pf.FormID = created.FormID
	pf.ResponderURL = created.ResponderURI

	if z.Description != "" {
		err := m.api.BatchUpdate(ctx, pf.FormID, []forms.Request{{
			UpdateFormInfo: &forms.UpdateFormInfoRequest{
				Info:       forms.Info{Description: z.Description},
				UpdateMask: "description",
			},
		}})
		if err != nil {
			log.Printf("form %s: attach description: %v", pf.FormID, err)
			pf.Warnings = append(pf.Warnings, "description could not be attached")
		}
	}

	quizModeErr := m.enableQuizMode(ctx, pf.FormID)

	if err := m.api.BatchUpdate(ctx, pf.FormID, itemRequests(z)); err != nil {
		pf.Warnings = append(pf.Warnings, fmt.Sprintf("question items could not be created: %v", err))
		return pf, nil
	}

	// Grading metadata needs item ids, so re-read the form, then attach
	// keys one item at a time: batch attachment is observed to fail
	// non-atomically, and a single failure must not take down the rest.
	current, err := m.api.Get(ctx, pf.FormID)
	if err != nil {
		pf.Warnings = append(pf.Warnings, fmt.Sprintf("form re-read failed, grading keys not attached: %v", err))
		return pf, nil
	}
	m.attachGrading(ctx, &pf, z, current)

	// Verify quiz mode actually stuck; the external service may accept
	// the setting call and silently ignore it. One extra attempt, then a
	// warning requiring manual operator follow-up.
	pf.QuizMode = isQuizMode(current)
	if !pf.QuizMode {
		if quizModeErr == nil {
			quizModeErr = errors.New("setting did not persist")
		}
		if retryErr := m.enableQuizMode(ctx, pf.FormID); retryErr == nil {
			if again, err := m.api.Get(ctx, pf.FormID); err == nil {
				pf.QuizMode = isQuizMode(again)
			}
		}
	}
	if !pf.QuizMode {
		pf.Warnings = append(pf.Warnings, fmt.Sprintf(
			"quiz mode not enabled (%v); automatic grading unavailable, enable it manually", quizModeErr))
	}

	return pf, nil
}

func (m *Materializer) enableQuizMode(ctx context.Context, formID string) error {
	return m.api.BatchUpdate(ctx, formID, []forms.Request{{
		UpdateSettings: &forms.UpdateSettingsRequest{
			Settings:   forms.Settings{QuizSettings: &forms.QuizSettings{IsQuiz: true}},
			UpdateMask: "quizSettings.isQuiz",
		},
	}})
}

// itemRequests lays out the form: two required identity fields first,
// then the quiz questions in order. N questions yield N+2 items.
func itemRequests(z *quiz.Quiz) []forms.Request {
	reqs := make([]forms.Request, 0, len(z.Questions)+2)
	add := func(index int, item forms.Item) {
		reqs = append(reqs, forms.Request{CreateItem: &forms.CreateItemRequest{
			Item:     item,
			Location: forms.Location{Index: index},
		}})
	}

	add(0, textItem(StudentNameTitle, true, false))
	add(1, textItem(RollNumberTitle, true, false))

	for i, q := range z.Questions {
		add(i+2, questionItem(q))
	}
	return reqs
}

func textItem(title string, required, paragraph bool) forms.Item {
	return forms.Item{
		Title: title,
		QuestionItem: &forms.QuestionItem{Question: forms.Question{
			Required:     required,
			TextQuestion: &forms.TextQuestion{Paragraph: paragraph},
		}},
	}
}

func questionItem(q quiz.Question) forms.Item {
	item := forms.Item{Title: q.Text}
	switch q.Type {
	case quiz.TypeMultipleChoice:
		opts := make([]forms.Option, 0, len(q.Options))
		for _, o := range q.Options {
			opts = append(opts, forms.Option{Value: o})
		}
		item.QuestionItem = &forms.QuestionItem{Question: forms.Question{
			ChoiceQuestion: &forms.ChoiceQuestion{Type: "RADIO", Options: opts, Shuffle: true},
		}}
	case quiz.TypeTrueFalse:
		item.QuestionItem = &forms.QuestionItem{Question: forms.Question{
			ChoiceQuestion: &forms.ChoiceQuestion{
				Type:    "RADIO",
				Options: []forms.Option{{Value: "True"}, {Value: "False"}},
				Shuffle: false,
			},
		}}
	case quiz.TypeShortAnswer:
		item.QuestionItem = &forms.QuestionItem{Question: forms.Question{
			TextQuestion: &forms.TextQuestion{Paragraph: false},
		}}
	case quiz.TypeEssay:
		item.QuestionItem = &forms.QuestionItem{Question: forms.Question{
			TextQuestion: &forms.TextQuestion{Paragraph: true},
		}}
	}
	return item
}

// attachGrading adds point values and, where a deterministic key exists,
// the correct answer. Failures are isolated per question.
func (m *Materializer) attachGrading(ctx context.Context, pf *quiz.PublishedForm, z *quiz.Quiz, current forms.Form) {
	items := questionItems(current)
	if len(items) < len(z.Questions) {
		pf.Warnings = append(pf.Warnings, fmt.Sprintf(
			"form has %d question items for %d quiz questions; grading keys skipped", len(items), len(z.Questions)))
		return
	}

	for i, q := range z.Questions {
		item := items[i]
		grading := &forms.Grading{PointValue: q.Points}
		if key := answerKey(q); key != "" {
			grading.CorrectAnswers = &forms.CorrectAnswers{Answers: []forms.Answer{{Value: key}}}
		}

		// QuestionItem is a pointer; copy it so a rejected update does
		// not leak grading into the form snapshot.
		updated := item
		qi := *item.QuestionItem
		qi.Question.Grading = grading
		updated.QuestionItem = &qi
		err := m.api.BatchUpdate(ctx, pf.FormID, []forms.Request{{
			UpdateItem: &forms.UpdateItemRequest{
				Item:       updated,
				Location:   forms.Location{Index: i + 2},
				UpdateMask: "questionItem.question.grading",
			},
		}})
		if err != nil {
			log.Printf("form %s: grading for question %d: %v", pf.FormID, i+1, err)
			pf.Warnings = append(pf.Warnings, fmt.Sprintf("grading not attached for question %d: %v", i+1, err))
		}
	}
}

// answerKey returns the deterministic correct answer for a question, or
// "" when none exists (essay, or a placeholder-repaired short answer).
func answerKey(q quiz.Question) string {
	switch q.Type {
	case quiz.TypeMultipleChoice:
		return q.CorrectOption()
	case quiz.TypeTrueFalse:
		if q.AnswerBool != nil && *q.AnswerBool {
			return "True"
		}
		return "False"
	case quiz.TypeShortAnswer:
		if q.Answer != quiz.PlaceholderAnswer {
			return q.Answer
		}
	}
	return ""
}

// questionItems filters out the two identity fields, returning the quiz
// question items in form order.
func questionItems(f forms.Form) []forms.Item {
	var out []forms.Item
	for i, it := range f.Items {
		if i < 2 {
			continue
		}
		if it.QuestionItem == nil {
			continue
		}
		out = append(out, it)
	}
	return out
}

func isQuizMode(f forms.Form) bool {
	return f.Settings.QuizSettings != nil && f.Settings.QuizSettings.IsQuiz
}
