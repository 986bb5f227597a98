// Package report shapes a grading pass into the tabular result surfaced
// to the teacher, with CSV export and direct form links.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/classpilot/classpilot-api/internal/feedback"
	"github.com/classpilot/classpilot-api/internal/grading"
)

type Row struct {
	Name        string `json:"name"`
	RollNumber  string `json:"roll_number"`
	ScoreString string `json:"score_string"`
	Percentage  int    `json:"percentage"`
	Feedback    string `json:"feedback"`
}

type Links struct {
	View      string `json:"view"`
	Edit      string `json:"edit"`
	Responses string `json:"responses"`
}

type Report struct {
	FormID   string `json:"form_id"`
	Title    string `json:"title"`
	QuizMode bool   `json:"quiz_mode"`
	Links    Links  `json:"links"`
	Rows     []Row  `json:"rows"`
}

// Build assembles the report, synthesizing feedback per respondent.
func Build(ctx context.Context, g *grading.GradedForm, synth *feedback.Synthesizer) *Report {
	r := &Report{
		FormID:   g.FormID,
		Title:    g.Title,
		QuizMode: g.QuizMode,
		Links:    FormLinks(g.FormID),
		Rows:     make([]Row, 0, len(g.Responses)),
	}
	for _, resp := range g.Responses {
		fb := synth.Synthesize(ctx, resp)
		r.Rows = append(r.Rows, Row{
			Name:        resp.Name,
			RollNumber:  resp.RollNumber,
			ScoreString: fb.ScoreString,
			Percentage:  fb.Percentage,
			Feedback:    fb.Message,
		})
	}
	return r
}

func FormLinks(formID string) Links {
	base := "https://docs.google.com/forms/d/" + formID
	return Links{
		View:      base + "/viewform",
		Edit:      base + "/edit",
		Responses: base + "/edit#responses",
	}
}

// WriteCSV emits the rows in a spreadsheet-friendly shape.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "roll_number", "score", "percentage", "feedback"}); err != nil {
		return err
	}
	for _, row := range r.Rows {
		rec := []string{
			row.Name,
			row.RollNumber,
			row.ScoreString,
			strconv.Itoa(row.Percentage),
			row.Feedback,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
