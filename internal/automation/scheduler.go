// Package automation runs the single background polling loop: class
// reminders shortly before start time and AI summaries after class end.
// The Scheduler is an explicit service object constructed once at
// process start and handed to both the HTTP path and the loop; there is
// no package-level state.
package automation

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/classpilot/classpilot-api/internal/gworkspace/calendar"
	"github.com/classpilot/classpilot-api/internal/gworkspace/classroom"
	"github.com/classpilot/classpilot-api/internal/gworkspace/drive"
	"github.com/classpilot/classpilot-api/internal/llm"
)

type CalendarAPI interface {
	ListUpcoming(ctx context.Context, from time.Time, window time.Duration, max int) ([]calendar.Event, error)
}

type ClassroomAPI interface {
	ListStudents(ctx context.Context, courseID string) ([]classroom.Student, error)
	PostAnnouncement(ctx context.Context, courseID, text string) error
}

type MailAPI interface {
	Send(ctx context.Context, recipients []string, subject, htmlBody string) ([]string, error)
}

type DriveAPI interface {
	FindRecordings(ctx context.Context, meetingID string) ([]drive.File, error)
}

// TranscriptProvider fetches a transcript for a recording. The real Meet
// transcript surface needs an enterprise plan; the default provider
// returns a placeholder so the summary pipeline stays exercisable.
type TranscriptProvider interface {
	Transcript(ctx context.Context, recordingID string) (string, error)
}

type placeholderTranscripts struct{}

func (placeholderTranscripts) Transcript(_ context.Context, recordingID string) (string, error) {
	return "Transcript unavailable for recording " + recordingID + "; summarize from the session topic.", nil
}

type Config struct {
	PollInterval     time.Duration
	ReminderLeadTime time.Duration
	SummaryDelay     time.Duration
}

type Status struct {
	Running       bool      `json:"running"`
	LastPass      time.Time `json:"last_pass"`
	RemindersSent int       `json:"reminders_sent"`
	SummariesSent int       `json:"summaries_sent"`
	PendingJobs   int       `json:"pending_jobs"`
	LastError     string    `json:"last_error,omitempty"`
}

type Scheduler struct {
	cfg         Config
	cal         CalendarAPI
	classes     ClassroomAPI
	mail        MailAPI
	recordings  DriveAPI
	transcripts TranscriptProvider
	model       llm.TextModel
	queue       Queue
	now         func() time.Time

	cron *cron.Cron

	mu       sync.Mutex
	reminded map[string]bool // event ids already reminded this process
	status   Status
}

func NewScheduler(cfg Config, cal CalendarAPI, classes ClassroomAPI, mail MailAPI,
	recordings DriveAPI, model llm.TextModel, queue Queue) *Scheduler {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Minute
	}
	if cfg.ReminderLeadTime <= 0 {
		cfg.ReminderLeadTime = 15 * time.Minute
	}
	if cfg.SummaryDelay <= 0 {
		cfg.SummaryDelay = 10 * time.Minute
	}
	return &Scheduler{
		cfg:         cfg,
		cal:         cal,
		classes:     classes,
		mail:        mail,
		recordings:  recordings,
		transcripts: placeholderTranscripts{},
		model:       model,
		queue:       queue,
		now:         time.Now,
		reminded:    map[string]bool{},
	}
}

// Start launches the polling loop. Calling Start twice is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}
	s.cron = cron.New()
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.cfg.PollInterval), s.RunOnce)
	if err != nil {
		s.cron = nil
		return err
	}
	s.cron.Start()
	s.status.Running = true
	log.Printf("automation: polling every %s", s.cfg.PollInterval)
	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
		s.status.Running = false
	}
}

func (s *Scheduler) Status(ctx context.Context) Status {
	s.mu.Lock()
	st := s.status
	s.mu.Unlock()
	if n, err := s.queue.Pending(ctx); err == nil {
		st.PendingJobs = n
	}
	return st
}

// ScheduleSummary enqueues a post-class summary job for an event,
// replacing the original file-as-queue ledger with the durable queue.
func (s *Scheduler) ScheduleSummary(ctx context.Context, eventID, courseID, meetID string, classEnd time.Time) error {
	return s.queue.Enqueue(ctx, SummaryJob{
		EventID:  eventID,
		CourseID: courseID,
		MeetID:   meetID,
		DueAt:    classEnd.Add(s.cfg.SummaryDelay).Unix(),
	})
}

// RunOnce executes one polling pass. It is also invoked directly by the
// status endpoint's "kick" action and by tests.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var lastErr string
	if err := s.sendReminders(ctx); err != nil {
		lastErr = err.Error()
		log.Printf("automation: reminders: %v", err)
	}
	if err := s.deliverSummaries(ctx); err != nil {
		lastErr = err.Error()
		log.Printf("automation: summaries: %v", err)
	}

	s.mu.Lock()
	s.status.LastPass = s.now()
	s.status.LastError = lastErr
	s.mu.Unlock()
}

func (s *Scheduler) sendReminders(ctx context.Context) error {
	events, err := s.cal.ListUpcoming(ctx, s.now(), s.cfg.ReminderLeadTime, 50)
	if err != nil {
		return fmt.Errorf("list upcoming: %w", err)
	}
	for _, ev := range events {
		courseID := ev.CourseID()
		if courseID == "" {
			continue
		}
		s.mu.Lock()
		seen := s.reminded[ev.ID]
		s.mu.Unlock()
		if seen {
			continue
		}

		msg := fmt.Sprintf("Reminder: %s starts soon.", ev.Summary)
		if ev.HangoutLink != "" {
			msg += " Meeting link: " + ev.HangoutLink
		}
		// Mark only after delivery so a failed reminder is retried on
		// the next pass while the class is still upcoming.
		if err := s.notifyCourse(ctx, courseID, "Class Reminder", msg); err != nil {
			log.Printf("automation: reminder for event %s: %v", ev.ID, err)
			continue
		}
		s.mu.Lock()
		s.reminded[ev.ID] = true
		s.status.RemindersSent++
		s.mu.Unlock()
	}
	return nil
}

func (s *Scheduler) deliverSummaries(ctx context.Context) error {
	jobs, err := s.queue.Due(ctx, s.now())
	if err != nil {
		return fmt.Errorf("queue due: %w", err)
	}
	for _, job := range jobs {
		if err := s.deliverSummary(ctx, job); err != nil {
			log.Printf("automation: summary job %s: %v", job.ID, err)
			_ = s.queue.MarkFailed(ctx, job.ID, err.Error())
			continue
		}
		if err := s.queue.MarkDone(ctx, job.ID); err != nil {
			return fmt.Errorf("mark done %s: %w", job.ID, err)
		}
		s.mu.Lock()
		s.status.SummariesSent++
		s.mu.Unlock()
	}
	return nil
}

func (s *Scheduler) deliverSummary(ctx context.Context, job SummaryJob) error {
	transcript := ""
	recordingLink := ""
	if job.MeetID != "" {
		if files, err := s.recordings.FindRecordings(ctx, job.MeetID); err == nil && len(files) > 0 {
			recordingLink = files[0].WebViewLink
			if t, err := s.transcripts.Transcript(ctx, files[0].ID); err == nil {
				transcript = t
			}
		}
	}

	prompt := fmt.Sprintf(`Generate a concise class summary.
Include the main topics covered, key points discussed, and action items for students.

Transcript:
%s`, clip(transcript, 3000))
	summary, err := s.model.Complete(ctx, prompt)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	text := "Class Summary\n\n" + summary
	if recordingLink != "" {
		text += "\n\nRecording: " + recordingLink
	}
	return s.notifyCourse(ctx, job.CourseID, "Class Summary", text)
}

// notifyCourse posts an announcement and emails the roster; both must
// succeed for the notification to count as delivered.
func (s *Scheduler) notifyCourse(ctx context.Context, courseID, subject, message string) error {
	if err := s.classes.PostAnnouncement(ctx, courseID, message); err != nil {
		return fmt.Errorf("announcement: %w", err)
	}
	students, err := s.classes.ListStudents(ctx, courseID)
	if err != nil {
		return fmt.Errorf("roster: %w", err)
	}
	recipients := make([]string, 0, len(students))
	for _, st := range students {
		if st.Profile.EmailAddress != "" {
			recipients = append(recipients, st.Profile.EmailAddress)
		}
	}
	if len(recipients) == 0 {
		return nil
	}
	if failed, err := s.mail.Send(ctx, recipients, subject, htmlBody(subject, message)); err != nil {
		return fmt.Errorf("mail (%d failed): %w", len(failed), err)
	}
	return nil
}

func htmlBody(subject, message string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>%s</h2>
  <div style="padding: 15px; background-color: #f8f9fa; border-radius: 8px;"><p>%s</p></div>
  <p style="color: #5f6368; font-size: 12px;">This is an automated message from your course.</p>
</div>`, subject, message)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
