// Package gworkspace provides thin REST clients for the Google Workspace
// surfaces this service consumes (Forms, Classroom, Calendar, Gmail,
// Drive). Payload models are trimmed to the fields we use.
package gworkspace

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Credentials hold an offline refresh-token grant. The interactive
// consent flow that produced the refresh token is out of scope.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string // override for tests
}

const defaultTokenURL = "https://oauth2.googleapis.com/token"

// NewHTTPClient returns an http.Client that injects and refreshes the
// bearer token on every request.
func NewHTTPClient(ctx context.Context, c Credentials) (*http.Client, error) {
	if c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "" {
		return nil, fmt.Errorf("gworkspace: incomplete credentials")
	}
	tokenURL := c.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	conf := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
	hc := conf.Client(ctx, &oauth2.Token{RefreshToken: c.RefreshToken})
	hc.Timeout = 30 * time.Second
	return hc, nil
}
