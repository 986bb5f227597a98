package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/classpilot/classpilot-api/internal/form"
	"github.com/classpilot/classpilot-api/internal/quiz"
)

type generateQuizReq struct {
	Text         string   `json:"text"`
	NumQuestions int      `json:"num_questions"`
	Types        []string `json:"types"`
	Difficulty   string   `json:"difficulty,omitempty"`
}

// POST /quizzes/generate
func GenerateQuizHandler(gen *quiz.Generator, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateQuizReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			http.Error(w, "text required", http.StatusBadRequest)
			return
		}
		types := make([]quiz.QuestionType, 0, len(req.Types))
		for _, t := range req.Types {
			types = append(types, quiz.QuestionType(strings.ToLower(strings.TrimSpace(t))))
		}
		if len(types) == 0 {
			types = []quiz.QuestionType{
				quiz.TypeMultipleChoice, quiz.TypeTrueFalse, quiz.TypeShortAnswer, quiz.TypeEssay,
			}
		}

		z, err := gen.Generate(r.Context(), quiz.GenerateRequest{
			SourceText:   req.Text,
			NumQuestions: req.NumQuestions,
			Types:        types,
			Difficulty:   req.Difficulty,
		})
		if err != nil {
			http.Error(w, "generate: "+err.Error(), http.StatusBadGateway)
			return
		}
		if err := store.PutQuiz(r.Context(), z); err != nil {
			http.Error(w, "store quiz: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(z)
	}
}

// GET /quizzes/{quizID}
func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "quizID"))
		if id == "" {
			http.Error(w, "quizID required", http.StatusBadRequest)
			return
		}
		z, err := store.GetQuiz(r.Context(), id)
		if err != nil {
			if errors.Is(err, quiz.ErrNotFound) {
				http.Error(w, "quiz not found", http.StatusNotFound)
				return
			}
			http.Error(w, "get quiz: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(z)
	}
}

// POST /quizzes/{quizID}/materialize
func MaterializeQuizHandler(store quiz.Store, mat *form.Materializer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "quizID"))
		if id == "" {
			http.Error(w, "quizID required", http.StatusBadRequest)
			return
		}
		z, err := store.GetQuiz(r.Context(), id)
		if err != nil {
			if errors.Is(err, quiz.ErrNotFound) {
				http.Error(w, "quiz not found", http.StatusNotFound)
				return
			}
			http.Error(w, "get quiz: "+err.Error(), http.StatusInternalServerError)
			return
		}
		pf, err := mat.Materialize(r.Context(), z)
		if err != nil {
			if errors.Is(err, quiz.ErrNoQuestions) {
				http.Error(w, "quiz has no questions", http.StatusUnprocessableEntity)
				return
			}
			http.Error(w, "materialize: "+err.Error(), http.StatusBadGateway)
			return
		}
		if err := store.PutPublishedForm(r.Context(), pf); err != nil {
			http.Error(w, "store form: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(pf)
	}
}

// GET /quizzes/{quizID}/forms
func ListQuizFormsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "quizID"))
		if id == "" {
			http.Error(w, "quizID required", http.StatusBadRequest)
			return
		}
		fs, err := store.ListPublishedForms(r.Context(), id)
		if err != nil {
			http.Error(w, "list forms: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if fs == nil {
			fs = []quiz.PublishedForm{}
		}
		_ = json.NewEncoder(w).Encode(fs)
	}
}
