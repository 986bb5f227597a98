package quiz

import "errors"

var (
	ErrNoQuestions   = errors.New("quiz has no questions")
	ErrMissingAnswer = errors.New("short_answer question missing expected answer")
	ErrUnknownType   = errors.New("unknown question type")
)
