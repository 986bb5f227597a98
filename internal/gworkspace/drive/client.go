// Package drive covers the single Drive API v3 call the summary pipeline
// needs: locating a meeting recording by name.
package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const DefaultBaseURL = "https://www.googleapis.com/drive/v3"

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

type File struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WebViewLink string `json:"webViewLink,omitempty"`
}

// FindRecordings searches for video files whose name contains the meeting
// id (Meet drops recordings into Drive under the conference name).
func (c *Client) FindRecordings(ctx context.Context, meetingID string) ([]File, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("name contains '%s' and mimeType contains 'video/'", meetingID))
	q.Set("fields", "files(id, name, webViewLink)")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/files?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("drive: list files: %s", resp.Status)
	}
	var out struct {
		Files []File `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Files, nil
}
