package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Client sends transactional email through Resend
type Client struct {
	resend *resend.Client
	from   string
}

// NewClient creates a new mail client
func NewClient(apiKey, from string) *Client {
	return &Client{
		resend: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send dispatches a single HTML email
func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	if _, err := c.resend.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
