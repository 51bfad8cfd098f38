// Package mailer delivers transactional email through the Resend REST API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrMissingAPIKey is returned when RESEND_API_KEY is not configured. Like the
// other collaborator credentials this is checked per send, so a missing key
// fails one job instead of the process.
var ErrMissingAPIKey = errors.New("resend api key is not configured")

const defaultBaseURL = "https://api.resend.com"

// Config captures the subset of Resend behaviour the pipeline needs.
type Config struct {
	APIKey    string
	FromEmail string
	BaseURL   string
	Timeout   time.Duration
	Client    *http.Client
}

// Client posts emails to the Resend API and returns the delivery receipt id.
type Client struct {
	apiKey    string
	fromEmail string
	baseURL   string
	client    *http.Client
}

// NewClient builds a Resend client. An empty API key is allowed and surfaces
// as ErrMissingAPIKey on Send.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:    cfg.APIKey,
		fromEmail: cfg.FromEmail,
		baseURL:   baseURL,
		client:    hc,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Send dispatches one plain-text email and returns the receipt identifier.
func (c *Client) Send(ctx context.Context, to, subject, text string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(sendRequest{
		From:    c.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return "", fmt.Errorf("encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read email response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return "", fmt.Errorf("resend rejected send (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("resend rejected send (status %d)", resp.StatusCode)
	}

	var result sendResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode email receipt: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("resend returned no receipt id")
	}
	return result.ID, nil
}
