package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

var e164Pattern = regexp.MustCompile(`^\+\d{10,15}$`)

// Client is a thin HTTP client for an SMS gateway. It does one thing: POST a
// message to the provider. Retry and business policy live with the caller.
type Client struct {
	baseURL string
	from    string
	client  *http.Client
}

// New creates an SMS client for the gateway at baseURL. from is the sender
// number presented to recipients.
func New(baseURL, from string) *Client {
	return &Client{
		baseURL: baseURL,
		from:    from,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	To   string `json:"to"`
	From string `json:"from,omitempty"`
	Body string `json:"body"`
}

// Send dispatches body to the E.164 number to.
func (c *Client) Send(ctx context.Context, to, body string) error {
	if !e164Pattern.MatchString(to) {
		return fmt.Errorf("invalid recipient number %q: must be E.164", to)
	}

	payload, err := json.Marshal(sendRequest{To: to, From: c.from, Body: body})
	if err != nil {
		return fmt.Errorf("marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, msg)
	}
	return nil
}
