// Package notify talks to the notification sink — the third-party email
// provider (Resend) that delivers welcome emails and keeps the mailing-list
// audience in sync.
//
// The provider has no official Go SDK, but its API is two JSON POSTs, so a
// small typed client over net/http is all we need. The Sink interface keeps
// everything above this file unaware of which provider is behind it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sink is the notification capability consumed by the account workflow.
//
// Both operations are side effects against a third-party service. Callers
// that care about delivery check the returned error; the account workflow
// deliberately does NOT (see Notifier) — a failed welcome email must never
// block or roll back account creation.
type Sink interface {
	// SendWelcomeEmail delivers the templated welcome message.
	SendWelcomeEmail(ctx context.Context, email, displayName string) error

	// UpsertContact adds or updates an entry in the mailing-list audience.
	UpsertContact(ctx context.Context, email, firstName, lastName string, unsubscribed bool) error
}

const defaultBaseURL = "https://api.resend.com"

// Client is a Resend API client implementing Sink.
//
// Construct it once at startup and inject it — there is no package-level
// singleton. The zero value is not usable; use NewClient.
type Client struct {
	apiKey     string
	audienceID string // mailing-list audience for UpsertContact
	from       string // e.g. `Shrit <shrit@forgezone.dev>`
	baseURL    string
	httpClient *http.Client
}

var _ Sink = (*Client)(nil)

// NewClient creates a Resend client.
//
// The 10-second timeout bounds every call: the sink sits on the response
// path of first sign-ins, and a hung email provider must not hold a request
// open indefinitely.
func NewClient(apiKey, audienceID, from string) *Client {
	return &Client{
		apiKey:     apiKey,
		audienceID: audienceID,
		from:       from,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientForTest creates a client pointed at a test server (httptest).
func NewClientForTest(apiKey, audienceID, from, baseURL string) *Client {
	c := NewClient(apiKey, audienceID, from)
	c.baseURL = baseURL
	return c
}

// sendEmailRequest is the body of POST /emails.
// https://resend.com/docs/api-reference/emails/send-email
type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// contactRequest is the body of POST /audiences/{id}/contacts.
// Resend creates or updates the contact keyed by email.
type contactRequest struct {
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Unsubscribed bool   `json:"unsubscribed"`
}

// SendWelcomeEmail renders the welcome template for displayName and posts it.
func (c *Client) SendWelcomeEmail(ctx context.Context, email, displayName string) error {
	html, err := renderWelcomeEmail(displayName)
	if err != nil {
		return fmt.Errorf("notify: rendering welcome email: %w", err)
	}

	return c.post(ctx, "/emails", sendEmailRequest{
		From:    c.from,
		To:      []string{email},
		Subject: "Welcome Builder!",
		HTML:    html,
	})
}

// UpsertContact creates or updates the mailing-list entry for email.
func (c *Client) UpsertContact(ctx context.Context, email, firstName, lastName string, unsubscribed bool) error {
	path := fmt.Sprintf("/audiences/%s/contacts", c.audienceID)
	return c.post(ctx, path, contactRequest{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Unsubscribed: unsubscribed,
	})
}

// post marshals body and POSTs it with the bearer token.
//
// Any non-2xx status is an error. We read a little of the response body into
// the error message — Resend returns JSON error details that make the log
// line actually useful — but cap it so a misbehaving server can't balloon
// our logs.
func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("notify: marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notify: %s returned status %d: %s", path, resp.StatusCode, detail)
	}

	return nil
}
