package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const DefaultBaseURL = "https://forms.googleapis.com"

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

// Create makes an empty form carrying only Info; items are attached via
// BatchUpdate afterwards (the API rejects items at creation time).
func (c *Client) Create(ctx context.Context, info Info) (Form, error) {
	body, _ := json.Marshal(Form{Info: info})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/forms", bytes.NewReader(body))
	if err != nil {
		return Form{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Form{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return Form{}, httpErr("create form", resp)
	}
	var f Form
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return Form{}, err
	}
	return f, nil
}

func (c *Client) Get(ctx context.Context, formID string) (Form, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/forms/"+formID, nil)
	if err != nil {
		return Form{}, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Form{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return Form{}, httpErr("get form", resp)
	}
	var f Form
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return Form{}, err
	}
	return f, nil
}

func (c *Client) BatchUpdate(ctx context.Context, formID string, requests []Request) error {
	body, _ := json.Marshal(map[string]any{"requests": requests})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/v1/forms/"+formID+":batchUpdate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return httpErr("batch update", resp)
	}
	return nil
}

func (c *Client) ListResponses(ctx context.Context, formID string) ([]FormResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/v1/forms/"+formID+"/responses", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, httpErr("list responses", resp)
	}
	var out struct {
		Responses []FormResponse `json:"responses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parse responses: %w", err)
	}
	return out.Responses, nil
}

func httpErr(op string, resp *http.Response) error {
	return fmt.Errorf("forms: %s: %s", op, resp.Status)
}
