package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/classpilot/classpilot-api/internal/automation"
	"github.com/classpilot/classpilot-api/internal/gworkspace/calendar"
)

// CalendarAPI is the slice of the calendar service these handlers use.
type CalendarAPI interface {
	CreateEvent(ctx context.Context, ev calendar.Event, withMeet bool) (calendar.Event, error)
	ListUpcoming(ctx context.Context, from time.Time, window time.Duration, max int) ([]calendar.Event, error)
}

type scheduleClassReq struct {
	CourseID    string   `json:"course_id"`
	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	Start       string   `json:"start"` // RFC3339
	End         string   `json:"end"`   // RFC3339
	TimeZone    string   `json:"time_zone,omitempty"`
	WithMeet    bool     `json:"with_meet"`
	WeeklyDays  []string `json:"weekly_days,omitempty"`  // "monday", "wednesday", ...
	RepeatUntil string   `json:"repeat_until,omitempty"` // RFC3339, required with weekly_days
}

// POST /schedule/class
//
// Creates the calendar event (optionally with a Meet link and weekly
// recurrence) tagged with the course id, and enqueues the post-class
// summary job when automation is wired.
func ScheduleClassHandler(api CalendarAPI, sched *automation.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduleClassReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Summary) == "" || strings.TrimSpace(req.CourseID) == "" {
			http.Error(w, "summary and course_id required", http.StatusBadRequest)
			return
		}
		start, err := time.Parse(time.RFC3339, req.Start)
		if err != nil {
			http.Error(w, "start must be RFC3339", http.StatusBadRequest)
			return
		}
		end, err := time.Parse(time.RFC3339, req.End)
		if err != nil {
			http.Error(w, "end must be RFC3339", http.StatusBadRequest)
			return
		}
		if !end.After(start) {
			http.Error(w, "end must be after start", http.StatusBadRequest)
			return
		}

		ev := calendar.Event{
			Summary:     req.Summary,
			Description: req.Description,
			Start:       calendar.EventTime{DateTime: req.Start, TimeZone: req.TimeZone},
			End:         calendar.EventTime{DateTime: req.End, TimeZone: req.TimeZone},
			ExtendedProperties: &calendar.ExtendedProperties{
				Private: map[string]string{calendar.CourseIDProperty: req.CourseID},
			},
		}

		if len(req.WeeklyDays) > 0 {
			days, err := parseWeekdays(req.WeeklyDays)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			until, err := time.Parse(time.RFC3339, req.RepeatUntil)
			if err != nil {
				http.Error(w, "repeat_until must be RFC3339 when weekly_days is set", http.StatusBadRequest)
				return
			}
			ev.Recurrence = []string{calendar.WeeklyRecurrence(days, until)}
		}

		created, err := api.CreateEvent(r.Context(), ev, req.WithMeet)
		if err != nil {
			http.Error(w, "create event: "+err.Error(), http.StatusBadGateway)
			return
		}

		if sched != nil {
			meetID := ""
			if created.ConferenceData != nil {
				meetID = created.ConferenceData.ConferenceID
			}
			if err := sched.ScheduleSummary(r.Context(), created.ID, req.CourseID, meetID, end); err != nil {
				// The class is scheduled; a lost summary job is an
				// operational warning, not a request failure.
				log.Printf("schedule summary for event %s: %v", created.ID, err)
			}
		}

		_ = json.NewEncoder(w).Encode(created)
	}
}

// GET /schedule/upcoming?hours=24
func ListUpcomingHandler(api CalendarAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window := 24 * time.Hour
		if h := r.URL.Query().Get("hours"); h != "" {
			d, err := time.ParseDuration(h + "h")
			if err != nil || d <= 0 {
				http.Error(w, "hours must be a positive number", http.StatusBadRequest)
				return
			}
			window = d
		}
		events, err := api.ListUpcoming(r.Context(), time.Now(), window, 100)
		if err != nil {
			http.Error(w, "list events: "+err.Error(), http.StatusBadGateway)
			return
		}
		if events == nil {
			events = []calendar.Event{}
		}
		_ = json.NewEncoder(w).Encode(events)
	}
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	byName := map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday,
		"friday": time.Friday, "saturday": time.Saturday,
	}
	out := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		d, ok := byName[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, &badWeekdayError{n}
		}
		out = append(out, d)
	}
	return out, nil
}

type badWeekdayError struct{ name string }

func (e *badWeekdayError) Error() string { return "unknown weekday " + e.name }
