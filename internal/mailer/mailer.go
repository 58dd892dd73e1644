// Package mailer delivers reminder emails through an HTTP mail API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventsdhaka/discovery/internal/models"
	"github.com/eventsdhaka/discovery/internal/reminder"
)

const sendPath = "/emails"

type message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

// Client posts messages to the mail API. With no base URL configured it
// only logs what it would have sent.
type Client struct {
	baseURL  string
	apiKey   string
	from     string
	siteHost string
	hc       *http.Client
	log      zerolog.Logger
}

func New(baseURL, apiKey, from, siteHost string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   apiKey,
		from:     from,
		siteHost: siteHost,
		hc:       &http.Client{Timeout: 10 * time.Second},
		log:      log.With().Str("component", "mailer").Logger(),
	}
}

func (c *Client) SendReminder(ctx context.Context, email reminder.Email) error {
	msg := c.compose(email)

	if c.baseURL == "" {
		c.log.Info().
			Str("to", email.To).
			Str("lead", string(email.Lead)).
			Str("subject", msg.Subject).
			Msg("mail api not configured, reminder logged only")
		return nil
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("SendReminder: json.Marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("SendReminder: http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("SendReminder: hc.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rbody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("SendReminder: resp.StatusCode: %d, resp.Body: %s", resp.StatusCode, rbody)
	}
	return nil
}

// compose renders the reminder with the start time shown in the
// subscriber's timezone.
func (c *Client) compose(email reminder.Email) message {
	loc, err := time.LoadLocation(email.Timezone)
	if err != nil {
		loc, _ = time.LoadLocation(models.DefaultTimezone)
		if loc == nil {
			loc = time.UTC
		}
	}
	when := email.StartsAt.In(loc).Format("Mon, 02 Jan 2006 at 3:04 PM MST")

	relative := "tomorrow"
	if email.Lead == models.Lead3h {
		relative = "in 3 hours"
	}
	subject := fmt.Sprintf("Reminder: %s %s", email.EventTitle, relative)

	link := ""
	if c.siteHost != "" && email.EventSlug != "" {
		link = "https://" + c.siteHost + "/events/" + email.EventSlug
	}

	var text strings.Builder
	fmt.Fprintf(&text, "%s starts %s.\n\nWhen: %s\n", email.EventTitle, relative, when)
	if email.Venue != "" {
		fmt.Fprintf(&text, "Where: %s\n", email.Venue)
	}
	if link != "" {
		fmt.Fprintf(&text, "\nDetails: %s\n", link)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "<p><strong>%s</strong> starts %s.</p>", html.EscapeString(email.EventTitle), relative)
	fmt.Fprintf(&body, "<p>When: %s</p>", html.EscapeString(when))
	if email.Venue != "" {
		fmt.Fprintf(&body, "<p>Where: %s</p>", html.EscapeString(email.Venue))
	}
	if link != "" {
		fmt.Fprintf(&body, `<p><a href="%s">View event</a></p>`, html.EscapeString(link))
	}

	return message{
		From:    c.from,
		To:      []string{email.To},
		Subject: subject,
		HTML:    body.String(),
		Text:    text.String(),
	}
}
