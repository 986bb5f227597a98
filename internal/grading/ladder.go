package grading

import "strings"

// The manual fallback ladder grades answers when the form is not in quiz
// mode. Rungs are tried in order; the final rung always resolves, so
// every answered question receives some score. Given the same question
// text and answer the ladder always assigns the same score.
type Rung interface {
	// Grade returns ok=false to pass the question to the next rung.
	Grade(q QuestionRef, answer string) (Result, bool)
}

type ManualGrader struct {
	rungs []Rung
}

// NewManualGrader installs the default ladder:
// exact table -> keyword heuristic -> generic table -> partial credit.
func NewManualGrader() *ManualGrader {
	return &ManualGrader{rungs: []Rung{
		exactTableRung{table: demoAnswerTable},
		keywordRung{entries: demoKeywordEntries},
		genericTableRung{table: genericAnswerTable},
		partialCreditRung{},
	}}
}

func (g *ManualGrader) Grade(q QuestionRef, answer string) Result {
	for _, r := range g.rungs {
		if res, ok := r.Grade(q, answer); ok {
			return res
		}
	}
	// Unreachable: partialCreditRung always resolves.
	return Result{Max: q.Points}
}

// exactTableRung matches a question against a closed lookup table keyed
// on distinctive substrings of the question text. The table covers a
// fixed demonstration quiz only; it is not a general grading engine.
type exactTableRung struct {
	table []tableEntry
}

type tableEntry struct {
	questionContains string
	expected         string
	points           float64
}

func (r exactTableRung) Grade(q QuestionRef, answer string) (Result, bool) {
	titleNorm := normalize(q.Title)
	for _, e := range r.table {
		if !strings.Contains(titleNorm, e.questionContains) {
			continue
		}
		max := q.Points
		if max == 0 {
			max = e.points
		}
		res := Result{Max: max}
		if normalize(answer) == normalize(e.expected) {
			res.Score = max
			res.Correct = true
		}
		return res, true
	}
	return Result{}, false
}

// keywordRung covers one specific open-ended "list the factors" style
// question: score = min(count of recognized keyword hits, max points).
type keywordRung struct {
	entries []keywordEntry
}

type keywordEntry struct {
	questionContains string
	keywords         []string
	points           float64
}

func (r keywordRung) Grade(q QuestionRef, answer string) (Result, bool) {
	titleNorm := normalize(q.Title)
	for _, e := range r.entries {
		if !strings.Contains(titleNorm, e.questionContains) {
			continue
		}
		max := q.Points
		if max == 0 {
			max = e.points
		}
		ansNorm := normalize(answer)
		hits := 0.0
		for _, kw := range e.keywords {
			if strings.Contains(ansNorm, normalize(kw)) {
				hits++
			}
		}
		score := hits
		if score > max {
			score = max
		}
		return Result{Score: score, Max: max, Correct: score == max && max > 0}, true
	}
	return Result{}, false
}

// genericTableRung matches the answer itself against known phrase ->
// expected-answer pairs, independent of the question text.
type genericTableRung struct {
	table map[string]string // normalized phrase -> normalized expected
}

func (r genericTableRung) Grade(q QuestionRef, answer string) (Result, bool) {
	ansNorm := normalize(answer)
	for phrase, expected := range r.table {
		if !strings.Contains(normalize(q.Title), phrase) {
			continue
		}
		res := Result{Max: q.Points}
		if ansNorm == expected {
			res.Score = q.Points
			res.Correct = true
		}
		return res, true
	}
	return Result{}, false
}

// partialCreditRung is the terminal rung: half the question's weight,
// never left unscored.
type partialCreditRung struct{}

func (partialCreditRung) Grade(q QuestionRef, answer string) (Result, bool) {
	if strings.TrimSpace(answer) == "" {
		return Result{Max: q.Points}, true
	}
	return Result{Score: q.Points / 2, Max: q.Points}, true
}
