package turnstile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultVerifyURL is the siteverify endpoint of the challenge provider
const DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// RequestTimeout bounds every verification call
const RequestTimeout = 10 * time.Second

// Local verification failures that never reach the provider
const (
	ErrMissingToken  = "missing token"
	ErrNotConfigured = "not configured"
)

// Outcome is the verdict of a verification call.
//
// Error is set for local and transport failures; ErrorCodes carries the provider's diagnostics.
type Outcome struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts,omitempty"`
	Hostname    string   `json:"hostname,omitempty"`
	ErrorCodes  []string `json:"error-codes,omitempty"`
	Action      string   `json:"action,omitempty"`
	CData       string   `json:"cdata,omitempty"`
	Error       string   `json:"-"`
}

// Client verifies challenge tokens with the provider
type Client struct {
	SecretKey string
	VerifyURL string
	HTTP      *http.Client
}

// New creates a client for the given secret key and verification endpoint.
//
// An empty verifyURL selects DefaultVerifyURL.
func New(secretKey, verifyURL string) *Client {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	return &Client{
		SecretKey: secretKey,
		VerifyURL: verifyURL,
		HTTP: &http.Client{
			Timeout: RequestTimeout,
		},
	}
}

// Verify checks a challenge token, optionally bound to the caller's IP.
//
// It never returns an error: every failure is reported as an unsuccessful Outcome.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) Outcome {
	if token == "" {
		return Outcome{Error: ErrMissingToken}
	}
	if c.SecretKey == "" {
		return Outcome{Error: ErrNotConfigured}
	}

	form := url.Values{}
	form.Set("secret", c.SecretKey)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Outcome{Error: fmt.Sprintf("verification request failed: %v", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Outcome{Error: fmt.Sprintf("verification request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return Outcome{Error: fmt.Sprintf("verification response unreadable: %v", err)}
	}

	var out Outcome
	if err := json.Unmarshal(body, &out); err != nil {
		return Outcome{Error: fmt.Sprintf("verification response malformed (status %d): %v", resp.StatusCode, err)}
	}
	return out
}
