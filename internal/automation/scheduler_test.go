package automation_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/classpilot/classpilot-api/internal/automation"
	"github.com/classpilot/classpilot-api/internal/gworkspace/calendar"
	"github.com/classpilot/classpilot-api/internal/gworkspace/classroom"
	"github.com/classpilot/classpilot-api/internal/gworkspace/drive"
)

/* ---- fakes for the scheduler's collaborators ---- */

type fakeCal struct {
	events []calendar.Event
}

func (f *fakeCal) ListUpcoming(context.Context, time.Time, time.Duration, int) ([]calendar.Event, error) {
	return f.events, nil
}

type fakeClasses struct {
	announceErr   error
	announcements []string
	students      []classroom.Student
}

func (f *fakeClasses) ListStudents(context.Context, string) ([]classroom.Student, error) {
	return f.students, nil
}

func (f *fakeClasses) PostAnnouncement(_ context.Context, _ string, text string) error {
	if f.announceErr != nil {
		return f.announceErr
	}
	f.announcements = append(f.announcements, text)
	return nil
}

type fakeMail struct {
	sent [][]string
}

func (f *fakeMail) Send(_ context.Context, recipients []string, _, _ string) ([]string, error) {
	f.sent = append(f.sent, recipients)
	return nil, nil
}

type fakeDrive struct {
	files []drive.File
}

func (f *fakeDrive) FindRecordings(context.Context, string) ([]drive.File, error) {
	return f.files, nil
}

type fakeSummaryModel struct{}

func (fakeSummaryModel) Complete(context.Context, string) (string, error) {
	return "Covered map reading and climate zones. Homework: chapter 4.", nil
}

// memQueue is an in-memory Queue for tests that do not need SQL.
type memQueue struct {
	mu   sync.Mutex
	jobs map[string]*automation.SummaryJob
}

func newMemQueue() *memQueue {
	return &memQueue{jobs: map[string]*automation.SummaryJob{}}
}

func (q *memQueue) Enqueue(_ context.Context, job automation.SummaryJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job.ID == "" {
		job.ID = "job-" + time.Now().Format("150405.000000000")
	}
	job.Status = automation.JobPending
	q.jobs[job.ID] = &job
	return nil
}

func (q *memQueue) Due(_ context.Context, now time.Time) ([]automation.SummaryJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []automation.SummaryJob
	for _, j := range q.jobs {
		if j.Status == automation.JobPending && j.DueAt <= now.Unix() {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (q *memQueue) MarkDone(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if j, ok := q.jobs[id]; ok && j.Status == automation.JobPending {
		j.Status = automation.JobDone
	}
	return nil
}

func (q *memQueue) MarkFailed(_ context.Context, id, lastError string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if j, ok := q.jobs[id]; ok && j.Status == automation.JobPending {
		j.Attempts++
		j.LastError = lastError
	}
	return nil
}

func (q *memQueue) Pending(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, j := range q.jobs {
		if j.Status == automation.JobPending {
			n++
		}
	}
	return n, nil
}

/* ---- tests ---- */

func courseEvent(id, summary, courseID string) calendar.Event {
	return calendar.Event{
		ID:      id,
		Summary: summary,
		ExtendedProperties: &calendar.ExtendedProperties{
			Private: map[string]string{calendar.CourseIDProperty: courseID},
		},
	}
}

func roster(emails ...string) []classroom.Student {
	out := make([]classroom.Student, 0, len(emails))
	for _, e := range emails {
		var s classroom.Student
		s.Profile.EmailAddress = e
		out = append(out, s)
	}
	return out
}

func newTestScheduler(cal *fakeCal, classes *fakeClasses, mail *fakeMail, dr *fakeDrive, q automation.Queue) *automation.Scheduler {
	return automation.NewScheduler(automation.Config{
		PollInterval:     time.Minute,
		ReminderLeadTime: 15 * time.Minute,
		SummaryDelay:     10 * time.Minute,
	}, cal, classes, mail, dr, fakeSummaryModel{}, q)
}

func TestRunOnce_SendsReminderOnce(t *testing.T) {
	cal := &fakeCal{events: []calendar.Event{
		courseEvent("ev1", "Geography 101", "course-1"),
		{ID: "ev2", Summary: "Dentist"}, // no course marker, ignored
	}}
	classes := &fakeClasses{students: roster("a@school.edu", "b@school.edu")}
	mail := &fakeMail{}
	s := newTestScheduler(cal, classes, mail, &fakeDrive{}, newMemQueue())

	s.RunOnce()
	s.RunOnce()

	if len(classes.announcements) != 1 {
		t.Fatalf("expected exactly one reminder announcement, got %d", len(classes.announcements))
	}
	if !strings.Contains(classes.announcements[0], "Geography 101") {
		t.Fatalf("reminder text wrong: %q", classes.announcements[0])
	}
	if len(mail.sent) != 1 || len(mail.sent[0]) != 2 {
		t.Fatalf("roster email wrong: %+v", mail.sent)
	}

	st := s.Status(context.Background())
	if st.RemindersSent != 1 {
		t.Fatalf("status reminders = %d, want 1", st.RemindersSent)
	}
}

func TestRunOnce_FailedReminderRetriesNextPass(t *testing.T) {
	cal := &fakeCal{events: []calendar.Event{
		courseEvent("ev1", "Geography 101", "course-1"),
	}}
	classes := &fakeClasses{announceErr: errors.New("503"), students: roster("a@school.edu")}
	s := newTestScheduler(cal, classes, &fakeMail{}, &fakeDrive{}, newMemQueue())

	s.RunOnce()
	if len(classes.announcements) != 0 {
		t.Fatalf("failed announcement should not count as sent")
	}

	// Service recovers while the class is still upcoming.
	classes.announceErr = nil
	s.RunOnce()
	if len(classes.announcements) != 1 {
		t.Fatalf("reminder should be retried after a failed pass, got %d", len(classes.announcements))
	}

	// And still only once after that.
	s.RunOnce()
	if len(classes.announcements) != 1 {
		t.Fatalf("retried reminder must not repeat, got %d", len(classes.announcements))
	}
}

func TestRunOnce_DeliversDueSummary(t *testing.T) {
	classes := &fakeClasses{students: roster("a@school.edu")}
	mail := &fakeMail{}
	dr := &fakeDrive{files: []drive.File{{ID: "rec1", WebViewLink: "https://drive.google.com/rec1"}}}
	q := newMemQueue()
	s := newTestScheduler(&fakeCal{}, classes, mail, dr, q)

	if err := s.ScheduleSummary(context.Background(), "ev1", "course-1", "meet-1",
		time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("schedule summary: %v", err)
	}
	s.RunOnce()

	if len(classes.announcements) != 1 {
		t.Fatalf("expected summary announcement, got %d", len(classes.announcements))
	}
	if !strings.Contains(classes.announcements[0], "Class Summary") ||
		!strings.Contains(classes.announcements[0], "https://drive.google.com/rec1") {
		t.Fatalf("summary text wrong: %q", classes.announcements[0])
	}

	if n, _ := q.Pending(context.Background()); n != 0 {
		t.Fatalf("delivered job should be done, %d pending", n)
	}
	if st := s.Status(context.Background()); st.SummariesSent != 1 {
		t.Fatalf("status summaries = %d, want 1", st.SummariesSent)
	}
}

func TestRunOnce_SummaryNotDueYet(t *testing.T) {
	q := newMemQueue()
	classes := &fakeClasses{}
	s := newTestScheduler(&fakeCal{}, classes, &fakeMail{}, &fakeDrive{}, q)

	// Class ends in an hour; the summary is due after end + delay.
	_ = s.ScheduleSummary(context.Background(), "ev1", "course-1", "", time.Now().Add(time.Hour))
	s.RunOnce()

	if len(classes.announcements) != 0 {
		t.Fatalf("summary delivered early")
	}
	if n, _ := q.Pending(context.Background()); n != 1 {
		t.Fatalf("job should still be pending, got %d", n)
	}
}

func TestRunOnce_FailedDeliveryStaysQueued(t *testing.T) {
	q := newMemQueue()
	classes := &fakeClasses{announceErr: errors.New("503")}
	s := newTestScheduler(&fakeCal{}, classes, &fakeMail{}, &fakeDrive{}, q)

	_ = s.ScheduleSummary(context.Background(), "ev1", "course-1", "", time.Now().Add(-time.Hour))
	s.RunOnce()

	if n, _ := q.Pending(context.Background()); n != 1 {
		t.Fatalf("failed job must stay pending, got %d", n)
	}
	due, _ := q.Due(context.Background(), time.Now())
	if len(due) != 1 || due[0].Attempts != 1 || due[0].LastError == "" {
		t.Fatalf("failure bookkeeping wrong: %+v", due)
	}

	// Service recovers; next pass delivers.
	classes.announceErr = nil
	s.RunOnce()
	if n, _ := q.Pending(context.Background()); n != 0 {
		t.Fatalf("recovered job should be done, got %d pending", n)
	}
}
