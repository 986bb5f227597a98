package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/classpilot/classpilot-api/internal/gworkspace/classroom"
)

// ClassroomAPI is the slice of the classroom service these handlers use.
type ClassroomAPI interface {
	ListCourses(ctx context.Context) ([]classroom.Course, error)
	CreateCourse(ctx context.Context, course classroom.Course) (classroom.Course, error)
	AddTeacher(ctx context.Context, courseID, email string) error
	AddStudent(ctx context.Context, courseID, email string) error
	ListStudents(ctx context.Context, courseID string) ([]classroom.Student, error)
	CreateCourseWork(ctx context.Context, courseID string, cw classroom.CourseWork) (classroom.CourseWork, error)
	PostAnnouncement(ctx context.Context, courseID, text string) error
}

// MailAPI sends the roster welcome email during course setup.
type MailAPI interface {
	Send(ctx context.Context, recipients []string, subject, htmlBody string) ([]string, error)
}

// GET /courses
func ListCoursesHandler(api ClassroomAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courses, err := api.ListCourses(r.Context())
		if err != nil {
			http.Error(w, "list courses: "+err.Error(), http.StatusBadGateway)
			return
		}
		if courses == nil {
			courses = []classroom.Course{}
		}
		_ = json.NewEncoder(w).Encode(courses)
	}
}

type createCourseReq struct {
	Name        string   `json:"name"`
	Section     string   `json:"section,omitempty"`
	Description string   `json:"description,omitempty"`
	Room        string   `json:"room,omitempty"`
	Teachers    []string `json:"teachers,omitempty"` // co-teacher emails
	Students    []string `json:"students,omitempty"`
	Welcome     string   `json:"welcome,omitempty"` // welcome announcement text
}

type createCourseResp struct {
	Course   classroom.Course `json:"course"`
	Warnings []string         `json:"warnings,omitempty"`
}

// POST /courses
//
// Creates the course and, best-effort, enrolls the given teachers and
// students, posts a welcome announcement and emails the roster. Only the
// course creation itself is fatal; enrollment and notification problems
// surface as warnings.
func CreateCourseHandler(api ClassroomAPI, mail MailAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCourseReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}

		created, err := api.CreateCourse(r.Context(), classroom.Course{
			Name:        req.Name,
			Section:     req.Section,
			Description: req.Description,
			Room:        req.Room,
		})
		if err != nil {
			http.Error(w, "create course: "+err.Error(), http.StatusBadGateway)
			return
		}

		resp := createCourseResp{Course: created}
		warn := func(format string, args ...any) {
			msg := fmt.Sprintf(format, args...)
			log.Printf("course %s: %s", created.ID, msg)
			resp.Warnings = append(resp.Warnings, msg)
		}

		for _, email := range req.Teachers {
			if err := api.AddTeacher(r.Context(), created.ID, email); err != nil {
				warn("add teacher %s: %v", email, err)
			}
		}
		for _, email := range req.Students {
			if err := api.AddStudent(r.Context(), created.ID, email); err != nil {
				warn("add student %s: %v", email, err)
			}
		}

		if req.Welcome != "" {
			if err := api.PostAnnouncement(r.Context(), created.ID, req.Welcome); err != nil {
				warn("welcome announcement: %v", err)
			}
			if len(req.Students) > 0 && mail != nil {
				subject := "Welcome to " + created.Name
				if failed, err := mail.Send(r.Context(), req.Students, subject, welcomeBody(created, req.Welcome)); err != nil {
					warn("welcome email (%d failed): %v", len(failed), err)
				}
			}
		}

		_ = json.NewEncoder(w).Encode(resp)
	}
}

func welcomeBody(c classroom.Course, welcome string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Welcome to %s</h2>
  <div style="padding: 15px; background-color: #f8f9fa; border-radius: 8px;"><p>%s</p></div>
  <p style="color: #5f6368; font-size: 12px;">This is an automated message from your course.</p>
</div>`, c.Name, welcome)
}

// GET /courses/{courseID}/students
func ListStudentsHandler(api ClassroomAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := strings.TrimSpace(chi.URLParam(r, "courseID"))
		if courseID == "" {
			http.Error(w, "courseID required", http.StatusBadRequest)
			return
		}
		students, err := api.ListStudents(r.Context(), courseID)
		if err != nil {
			http.Error(w, "list students: "+err.Error(), http.StatusBadGateway)
			return
		}
		if students == nil {
			students = []classroom.Student{}
		}
		_ = json.NewEncoder(w).Encode(students)
	}
}

type createCourseWorkReq struct {
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	MaxPoints   float64              `json:"max_points,omitempty"`
	DueDate     *classroom.Date      `json:"due_date,omitempty"`
	DueTime     *classroom.TimeOfDay `json:"due_time,omitempty"`
}

// POST /courses/{courseID}/coursework
func CreateCourseWorkHandler(api ClassroomAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := strings.TrimSpace(chi.URLParam(r, "courseID"))
		if courseID == "" {
			http.Error(w, "courseID required", http.StatusBadRequest)
			return
		}
		var req createCourseWorkReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		created, err := api.CreateCourseWork(r.Context(), courseID, classroom.CourseWork{
			Title:       req.Title,
			Description: req.Description,
			WorkType:    "ASSIGNMENT",
			State:       "PUBLISHED",
			MaxPoints:   req.MaxPoints,
			DueDate:     req.DueDate,
			DueTime:     req.DueTime,
		})
		if err != nil {
			http.Error(w, "create coursework: "+err.Error(), http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(created)
	}
}

// POST /courses/{courseID}/announcements  { "text": "..." }
func PostAnnouncementHandler(api ClassroomAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := strings.TrimSpace(chi.URLParam(r, "courseID"))
		if courseID == "" {
			http.Error(w, "courseID required", http.StatusBadRequest)
			return
		}
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			http.Error(w, "text required", http.StatusBadRequest)
			return
		}
		if err := api.PostAnnouncement(r.Context(), courseID, req.Text); err != nil {
			http.Error(w, "post announcement: "+err.Error(), http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
