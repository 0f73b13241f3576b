package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/noah-isme/civic-desk-api/pkg/config"
)

// ResendSender delivers mail through the Resend HTTP API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender builds a sender using the configured API key.
func NewResendSender(cfg config.MailConfig) *ResendSender {
	return &ResendSender{client: resend.NewClient(cfg.ResendAPIKey), from: fromHeader(cfg)}
}

// Send submits the message to Resend.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if _, err := s.client.Emails.Send(params); err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}
