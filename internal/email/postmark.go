package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"
)

const defaultAPIURL = "https://api.postmarkapp.com/email"

// ErrNotConfigured is returned by senders when no server token is set.
var ErrNotConfigured = errors.New("email client not configured: missing server token")

// Client sends transactional mail through Postmark.
type Client struct {
	serverToken string
	fromEmail   string
	baseURL     string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIURL points the client at another Postmark-compatible endpoint.
func WithAPIURL(u string) Option {
	return func(cl *Client) {
		cl.apiURL = u
	}
}

func NewClient(serverToken, fromEmail, baseURL string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		baseURL:     baseURL,
		apiURL:      defaultAPIURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
	Tag      string `json:"Tag,omitempty"`
}

// SendInvitation tells toEmail that inviterName invited them to
// householdName.
func (c *Client) SendInvitation(ctx context.Context, toEmail, householdName, inviterName string) error {
	link := c.baseURL + "/invitations"
	subject := fmt.Sprintf("You've been invited to %s", householdName)
	textBody := fmt.Sprintf(
		"%s invited you to join %s.\n\nSign in to accept or decline the invitation:\n\n%s",
		inviterName, householdName, link,
	)
	htmlBody := fmt.Sprintf(
		`<p>%s invited you to join <strong>%s</strong>.</p><p><a href="%s">Accept or decline the invitation</a></p>`,
		html.EscapeString(inviterName), html.EscapeString(householdName), link,
	)
	return c.send(ctx, postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
		Tag:      "invitation",
	})
}

// SendWelcome greets a newly registered user.
func (c *Client) SendWelcome(ctx context.Context, toEmail, name string) error {
	textBody := fmt.Sprintf("Hi %s,\n\nyour account is ready. Sign in at %s to create or join a household.", name, c.baseURL)
	htmlBody := fmt.Sprintf(
		`<p>Hi %s,</p><p>your account is ready. <a href="%s">Sign in</a> to create or join a household.</p>`,
		html.EscapeString(name), c.baseURL,
	)
	return c.send(ctx, postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  "Welcome to Householder",
		HtmlBody: htmlBody,
		TextBody: textBody,
		Tag:      "welcome",
	})
}

func (c *Client) send(ctx context.Context, payload postmarkEmail) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
