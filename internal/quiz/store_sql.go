package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// PublishedForm records the external form artifact a quiz was rendered
// into. QuizMode is a desired, not guaranteed, post-condition.
type PublishedForm struct {
	FormID       string   `json:"form_id"`
	QuizID       string   `json:"quiz_id"`
	ResponderURL string   `json:"responder_url"`
	QuizMode     bool     `json:"quiz_mode"`
	Warnings     []string `json:"warnings,omitempty"`
	CreatedAt    int64    `json:"created_at,omitempty"`
}

type Store interface {
	PutQuiz(ctx context.Context, z *Quiz) error
	GetQuiz(ctx context.Context, id string) (*Quiz, error)
	PutPublishedForm(ctx context.Context, f PublishedForm) error
	GetPublishedForm(ctx context.Context, formID string) (PublishedForm, error)
	ListPublishedForms(ctx context.Context, quizID string) ([]PublishedForm, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutQuiz(ctx context.Context, z *Quiz) error {
	qj, err := json.Marshal(z.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (id,title,description,questions_json,repaired,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
		questions_json=EXCLUDED.questions_json, repaired=EXCLUDED.repaired`,
		z.ID, z.Title, z.Description, string(qj), z.Repaired, time.Now().Unix())
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (*Quiz, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,description,questions_json,repaired,created_at FROM quizzes WHERE id=$1`, id)
	var z Quiz
	var qjson string
	if err := row.Scan(&z.ID, &z.Title, &z.Description, &qjson, &z.Repaired, &z.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(qjson), &z.Questions); err != nil {
		return nil, err
	}
	return &z, nil
}

func (s *SQLStore) PutPublishedForm(ctx context.Context, f PublishedForm) error {
	wj, err := json.Marshal(f.Warnings)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO published_forms (form_id,quiz_id,responder_url,quiz_mode,warnings_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (form_id) DO UPDATE SET quiz_mode=EXCLUDED.quiz_mode, warnings_json=EXCLUDED.warnings_json`,
		f.FormID, f.QuizID, f.ResponderURL, f.QuizMode, string(wj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetPublishedForm(ctx context.Context, formID string) (PublishedForm, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT form_id,quiz_id,responder_url,quiz_mode,warnings_json,created_at FROM published_forms WHERE form_id=$1`, formID)
	return scanForm(row)
}

func (s *SQLStore) ListPublishedForms(ctx context.Context, quizID string) ([]PublishedForm, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT form_id,quiz_id,responder_url,quiz_mode,warnings_json,created_at FROM published_forms WHERE quiz_id=$1 ORDER BY created_at DESC`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PublishedForm
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanForm(row scanner) (PublishedForm, error) {
	var f PublishedForm
	var wjson string
	if err := row.Scan(&f.FormID, &f.QuizID, &f.ResponderURL, &f.QuizMode, &wjson, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PublishedForm{}, ErrNotFound
		}
		return PublishedForm{}, err
	}
	if err := json.Unmarshal([]byte(wjson), &f.Warnings); err != nil {
		f.Warnings = nil
	}
	return f, nil
}
