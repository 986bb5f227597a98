// Package classroom is a Google Classroom API v1 client, trimmed to the
// course, roster, coursework and announcement calls this service makes.
package classroom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const DefaultBaseURL = "https://classroom.googleapis.com"

type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func NewClient(hc *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{HTTP: hc, BaseURL: baseURL}
}

type Course struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Section     string `json:"section,omitempty"`
	Description string `json:"description,omitempty"`
	Room        string `json:"room,omitempty"`
	OwnerID     string `json:"ownerId,omitempty"`
}

type Student struct {
	UserID  string `json:"userId"`
	Profile struct {
		Name struct {
			FullName string `json:"fullName"`
		} `json:"name"`
		EmailAddress string `json:"emailAddress"`
	} `json:"profile,omitempty"`
}

// Date/TimeOfDay follow the Classroom coursework due-date convention.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type TimeOfDay struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

type CourseWork struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	WorkType    string     `json:"workType"`
	State       string     `json:"state"`
	MaxPoints   float64    `json:"maxPoints,omitempty"`
	DueDate     *Date      `json:"dueDate,omitempty"`
	DueTime     *TimeOfDay `json:"dueTime,omitempty"`
}

func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	var out struct {
		Courses []Course `json:"courses"`
	}
	if err := c.get(ctx, "/v1/courses", &out); err != nil {
		return nil, err
	}
	return out.Courses, nil
}

func (c *Client) CreateCourse(ctx context.Context, course Course) (Course, error) {
	if course.OwnerID == "" {
		course.OwnerID = "me"
	}
	var created Course
	if err := c.post(ctx, "/v1/courses", course, &created); err != nil {
		return Course{}, err
	}
	return created, nil
}

func (c *Client) AddTeacher(ctx context.Context, courseID, email string) error {
	return c.post(ctx, "/v1/courses/"+courseID+"/teachers", map[string]string{"userId": email}, nil)
}

func (c *Client) AddStudent(ctx context.Context, courseID, email string) error {
	return c.post(ctx, "/v1/courses/"+courseID+"/students", map[string]string{"userId": email}, nil)
}

func (c *Client) ListStudents(ctx context.Context, courseID string) ([]Student, error) {
	var out struct {
		Students []Student `json:"students"`
	}
	if err := c.get(ctx, "/v1/courses/"+courseID+"/students", &out); err != nil {
		return nil, err
	}
	return out.Students, nil
}

func (c *Client) CreateCourseWork(ctx context.Context, courseID string, cw CourseWork) (CourseWork, error) {
	var created CourseWork
	if err := c.post(ctx, "/v1/courses/"+courseID+"/courseWork", cw, &created); err != nil {
		return CourseWork{}, err
	}
	return created, nil
}

func (c *Client) PostAnnouncement(ctx context.Context, courseID, text string) error {
	return c.post(ctx, "/v1/courses/"+courseID+"/announcements", map[string]string{"text": text}, nil)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	buf, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("classroom: %s: %s", path, resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
