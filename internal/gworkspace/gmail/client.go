// Package gmail sends HTML mail through the Gmail API's raw-message
// endpoint (base64url-encoded RFC 822).
package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const DefaultBaseURL = "https://gmail.googleapis.com"

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

// Send delivers one HTML message per recipient and returns the addresses
// that failed, alongside the first error encountered.
func (c *Client) Send(ctx context.Context, recipients []string, subject, htmlBody string) (failed []string, err error) {
	for _, to := range recipients {
		if !strings.Contains(to, "@") {
			failed = append(failed, to)
			if err == nil {
				err = fmt.Errorf("gmail: invalid recipient %q", to)
			}
			continue
		}
		if sendErr := c.sendOne(ctx, to, subject, htmlBody); sendErr != nil {
			failed = append(failed, to)
			if err == nil {
				err = sendErr
			}
		}
	}
	return failed, err
}

func (c *Client) sendOne(ctx context.Context, to, subject, htmlBody string) error {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(htmlBody)

	raw := base64.URLEncoding.EncodeToString(msg.Bytes())
	body, _ := json.Marshal(map[string]string{"raw": raw})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/gmail/v1/users/me/messages/send", bytes.NewReader(body))
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
		return fmt.Errorf("gmail: send to %s: %s", to, resp.Status)
	}
	return nil
}
