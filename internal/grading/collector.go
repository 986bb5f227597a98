package grading

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/classpilot/classpilot-api/internal/gworkspace/forms"
)

// FormsAPI is the slice of the forms service the collector uses.
type FormsAPI interface {
	Get(ctx context.Context, formID string) (forms.Form, error)
	ListResponses(ctx context.Context, formID string) ([]forms.FormResponse, error)
}

type Collector struct {
	api    FormsAPI
	manual *ManualGrader
}

func NewCollector(api FormsAPI, manual *ManualGrader) *Collector {
	if manual == nil {
		manual = NewManualGrader()
	}
	return &Collector{api: api, manual: manual}
}

// Collect fetches the form definition and its responses and grades every
// answer. The pass is stateless: nothing is cached, and re-running it on
// an unchanged set of raw responses yields identical totals.
func (c *Collector) Collect(ctx context.Context, formID string) (*GradedForm, error) {
	f, err := c.api.Get(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("fetch form: %w", err)
	}
	raw, err := c.api.ListResponses(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("fetch responses: %w", err)
	}

	g := &GradedForm{
		FormID:    formID,
		Title:     f.Info.Title,
		QuizMode:  f.Settings.QuizSettings != nil && f.Settings.QuizSettings.IsQuiz,
		Questions: map[string]QuestionRef{},
	}
	c.indexQuestions(g, f)

	// Zero responses is a normal outcome, not an error.
	g.Responses = make([]Response, 0, len(raw))
	for _, rr := range raw {
		g.Responses = append(g.Responses, c.gradeResponse(g, rr))
	}
	return g, nil
}

// indexQuestions builds the question map. The first two question items
// are tagged as the identity fields by position, not by title match, so
// a quiz question that happens to contain "name" is never mis-tagged.
// Known fragility: if the forms service reorders the identity fields the
// tagging is wrong; the materializer always places them at 0 and 1.
func (c *Collector) indexQuestions(g *GradedForm, f forms.Form) {
	qIndex := 0
	for _, item := range f.Items {
		if item.QuestionItem == nil {
			continue
		}
		q := item.QuestionItem.Question
		ref := QuestionRef{
			QuestionID: q.QuestionID,
			Title:      item.Title,
			Identity:   qIndex < 2,
			Index:      qIndex,
		}
		if !ref.Identity {
			if q.Grading != nil && q.Grading.PointValue > 0 {
				ref.Points = float64(q.Grading.PointValue)
			} else {
				ref.Points = fallbackPoints(item.Title)
			}
		}
		g.Questions[ref.QuestionID] = ref
		g.Order = append(g.Order, ref.QuestionID)
		qIndex++
	}
}

// fallbackPoints resolves a weight for forms published without grading
// metadata: the demo tables first, then a default weight of 1.
func fallbackPoints(title string) float64 {
	norm := normalize(title)
	for _, e := range demoAnswerTable {
		if strings.Contains(norm, e.questionContains) {
			return e.points
		}
	}
	for _, e := range demoKeywordEntries {
		if strings.Contains(norm, e.questionContains) {
			return e.points
		}
	}
	return 1
}

func (c *Collector) gradeResponse(g *GradedForm, rr forms.FormResponse) Response {
	resp := Response{
		Name:       "Unknown",
		RollNumber: "N/A",
		Email:      rr.RespondentEmail,
	}

	for _, qid := range g.Order {
		ref := g.Questions[qid]
		value := answerText(rr, qid)

		if ref.Identity {
			switch ref.Index {
			case 0:
				if value != "" {
					resp.Name = value
				}
			case 1:
				if value != "" {
					resp.RollNumber = value
				}
			}
			continue
		}

		ans := Answer{
			QuestionID: qid,
			Question:   ref.Title,
			Value:      value,
			MaxScore:   ref.Points,
		}
		switch {
		case g.QuizMode && serviceGrade(rr, qid) != nil:
			gr := serviceGrade(rr, qid)
			ans.Score = gr.Score
			ans.Correct = gr.Correct
		case value != "":
			res := c.manual.Grade(ref, value)
			ans.Score = res.Score
			ans.Correct = res.Correct
		}

		resp.Answers = append(resp.Answers, ans)
		resp.TotalScore += ans.Score
		resp.MaxPossible += ans.MaxScore
	}

	if resp.MaxPossible > 0 {
		resp.Percentage = int(math.Round(100 * resp.TotalScore / resp.MaxPossible))
	}
	return resp
}

func serviceGrade(rr forms.FormResponse, qid string) *forms.Grade {
	if a, ok := rr.Answers[qid]; ok {
		return a.Grade
	}
	return nil
}

func answerText(rr forms.FormResponse, qid string) string {
	a, ok := rr.Answers[qid]
	if !ok || a.TextAnswers == nil {
		return ""
	}
	parts := make([]string, 0, len(a.TextAnswers.Answers))
	for _, v := range a.TextAnswers.Answers {
		if s := strings.TrimSpace(v.Value); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
