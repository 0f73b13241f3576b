package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-desk-api/pkg/config"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers email messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New selects the driver named in the mail configuration.
func New(cfg config.MailConfig, logger *zap.Logger) (Sender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case config.MailDriverSMTP:
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("smtp driver requires SMTP_HOST")
		}
		return NewSMTPSender(cfg), nil
	case config.MailDriverResend:
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("resend driver requires RESEND_API_KEY")
		}
		return NewResendSender(cfg), nil
	case "", config.MailDriverLog:
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}

func fromHeader(cfg config.MailConfig) string {
	if cfg.FromName == "" {
		return cfg.FromAddress
	}
	return fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender builds a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the envelope of the message.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info("email suppressed", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
