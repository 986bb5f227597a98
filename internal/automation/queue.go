package automation

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// SummaryJob is one pending post-class summary. Delivery is
// at-least-once: a job is marked done only after every external post
// succeeded, so a crash mid-delivery means a reattempt (and possibly a
// duplicate notification) on the next pass.
type SummaryJob struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	CourseID  string `json:"course_id"`
	MeetID    string `json:"meet_id,omitempty"`
	DueAt     int64  `json:"summary_time"`
	Status    string `json:"status"`
	Attempts  int    `json:"attempts"`
	LastError string `json:"last_error,omitempty"`
}

const (
	JobPending = "pending"
	JobDone    = "done"
)

// Queue is the durable summary-job ledger.
type Queue interface {
	Enqueue(ctx context.Context, job SummaryJob) error
	Due(ctx context.Context, now time.Time) ([]SummaryJob, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, lastError string) error
	Pending(ctx context.Context) (int, error)
}

type SQLQueue struct {
	db *sql.DB
}

func NewSQLQueue(db *sql.DB) *SQLQueue { return &SQLQueue{db: db} }

func (q *SQLQueue) Enqueue(ctx context.Context, job SummaryJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO summary_jobs (id,event_id,course_id,meet_id,due_at,status,created_at)
		 VALUES ($1,$2,$3,$4,$5,'pending',$6)`,
		job.ID, job.EventID, job.CourseID, job.MeetID, job.DueAt, time.Now().Unix())
	return err
}

func (q *SQLQueue) Due(ctx context.Context, now time.Time) ([]SummaryJob, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id,event_id,course_id,meet_id,due_at,status,attempts,last_error
		 FROM summary_jobs WHERE status='pending' AND due_at<=$1 ORDER BY due_at`,
		now.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SummaryJob
	for rows.Next() {
		var j SummaryJob
		if err := rows.Scan(&j.ID, &j.EventID, &j.CourseID, &j.MeetID, &j.DueAt,
			&j.Status, &j.Attempts, &j.LastError); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// MarkDone is the atomic completion step; guarding on status keeps a
// concurrent duplicate pass from resurrecting a finished job.
func (q *SQLQueue) MarkDone(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE summary_jobs SET status='done', last_error='' WHERE id=$1 AND status='pending'`, id)
	return err
}

func (q *SQLQueue) MarkFailed(ctx context.Context, id, lastError string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE summary_jobs SET attempts=attempts+1, last_error=$1 WHERE id=$2 AND status='pending'`,
		lastError, id)
	return err
}

func (q *SQLQueue) Pending(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM summary_jobs WHERE status='pending'`).Scan(&n)
	return n, err
}
