package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-desk-api/pkg/config"
)

func TestNewSelectsDriver(t *testing.T) {
	sender, err := New(config.MailConfig{Driver: config.MailDriverLog}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, sender)

	sender, err = New(config.MailConfig{Driver: config.MailDriverSMTP, SMTPHost: "smtp.example", SMTPPort: 587, FromAddress: "desk@example.org"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, sender)

	sender, err = New(config.MailConfig{Driver: config.MailDriverResend, ResendAPIKey: "re_test"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ResendSender{}, sender)
}

func TestNewRejectsIncompleteDrivers(t *testing.T) {
	_, err := New(config.MailConfig{Driver: config.MailDriverSMTP}, nil)
	assert.Error(t, err)

	_, err = New(config.MailConfig{Driver: config.MailDriverResend}, nil)
	assert.Error(t, err)

	_, err = New(config.MailConfig{Driver: "pigeon"}, nil)
	assert.Error(t, err)
}

func TestFromHeader(t *testing.T) {
	assert.Equal(t, "desk@example.org", fromHeader(config.MailConfig{FromAddress: "desk@example.org"}))
	assert.Equal(t, "Desk <desk@example.org>", fromHeader(config.MailConfig{FromAddress: "desk@example.org", FromName: "Desk"}))
}

func TestLogSenderNeverFails(t *testing.T) {
	assert.NoError(t, NewLogSender(nil).Send(context.Background(), Message{To: "a@example.org", Subject: "hi"}))
}
