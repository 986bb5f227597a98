// Package calendar is a Google Calendar API v3 client covering event
// creation (optionally recurring, optionally with a Meet conference) and
// upcoming-event listing with a course-id marker convention.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const DefaultBaseURL = "https://www.googleapis.com/calendar/v3"

// CourseIDProperty is the extendedProperties key that ties a calendar
// event back to its Classroom course.
const CourseIDProperty = "classpilotCourseId"

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

type EventTime struct {
	DateTime string `json:"dateTime,omitempty"` // RFC3339
	TimeZone string `json:"timeZone,omitempty"`
}

type ConferenceData struct {
	CreateRequest *struct {
		RequestID string `json:"requestId"`
	} `json:"createRequest,omitempty"`
	ConferenceID string `json:"conferenceId,omitempty"`
}

type ExtendedProperties struct {
	Private map[string]string `json:"private,omitempty"`
}

type Event struct {
	ID                 string              `json:"id,omitempty"`
	Summary            string              `json:"summary,omitempty"`
	Description        string              `json:"description,omitempty"`
	Start              EventTime           `json:"start"`
	End                EventTime           `json:"end"`
	Recurrence         []string            `json:"recurrence,omitempty"`
	ConferenceData     *ConferenceData     `json:"conferenceData,omitempty"`
	ExtendedProperties *ExtendedProperties `json:"extendedProperties,omitempty"`
	HangoutLink        string              `json:"hangoutLink,omitempty"`
}

// CourseID returns the embedded course marker, or "".
func (e Event) CourseID() string {
	if e.ExtendedProperties == nil {
		return ""
	}
	return e.ExtendedProperties.Private[CourseIDProperty]
}

// CreateEvent inserts an event on the primary calendar. withMeet requests
// a generated Meet conference link (conferenceDataVersion=1).
func (c *Client) CreateEvent(ctx context.Context, ev Event, withMeet bool) (Event, error) {
	u := c.BaseURL + "/calendars/primary/events"
	if withMeet {
		u += "?conferenceDataVersion=1"
		if ev.ConferenceData == nil {
			ev.ConferenceData = &ConferenceData{}
		}
		if ev.ConferenceData.CreateRequest == nil {
			ev.ConferenceData.CreateRequest = &struct {
				RequestID string `json:"requestId"`
			}{RequestID: "meet-" + strconv.FormatInt(time.Now().UnixNano(), 36)}
		}
	}
	body, _ := json.Marshal(ev)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return Event{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Event{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return Event{}, fmt.Errorf("calendar: create event: %s", resp.Status)
	}
	var created Event
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return Event{}, err
	}
	return created, nil
}

// ListUpcoming returns events starting within the window, expanded from
// recurrences and sorted by start time.
func (c *Client) ListUpcoming(ctx context.Context, from time.Time, window time.Duration, max int) ([]Event, error) {
	q := url.Values{}
	q.Set("timeMin", from.UTC().Format(time.RFC3339))
	q.Set("timeMax", from.Add(window).UTC().Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")
	if max > 0 {
		q.Set("maxResults", strconv.Itoa(max))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/calendars/primary/events?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("calendar: list events: %s", resp.Status)
	}
	var out struct {
		Items []Event `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// WeeklyRecurrence builds an RRULE for the given weekdays until the end
// date, e.g. RRULE:FREQ=WEEKLY;BYDAY=MO,WE;UNTIL=20250630T000000Z.
func WeeklyRecurrence(days []time.Weekday, until time.Time) string {
	abbr := map[time.Weekday]string{
		time.Monday: "MO", time.Tuesday: "TU", time.Wednesday: "WE",
		time.Thursday: "TH", time.Friday: "FR", time.Saturday: "SA", time.Sunday: "SU",
	}
	byday := ""
	for i, d := range days {
		if i > 0 {
			byday += ","
		}
		byday += abbr[d]
	}
	return fmt.Sprintf("RRULE:FREQ=WEEKLY;BYDAY=%s;UNTIL=%s",
		byday, until.UTC().Format("20060102T150405Z"))
}
