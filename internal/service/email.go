package service

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// EmailSender delivers one message to one recipient. Implementations own
// their transport configuration.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSettings configures the SMTP email sender.
type SMTPSettings struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// SMTPEmailSender delivers mail through a plain-auth SMTP relay.
type SMTPEmailSender struct {
	settings SMTPSettings
	logger   zerolog.Logger
}

// NewSMTPEmailSender constructs an SMTP-backed sender.
func NewSMTPEmailSender(settings SMTPSettings, logger zerolog.Logger) *SMTPEmailSender {
	return &SMTPEmailSender{
		settings: settings,
		logger:   logger.With().Str("component", "smtp_email_sender").Logger(),
	}
}

// Send delivers the message. The context is accepted for interface symmetry;
// net/smtp does not support cancellation mid-send.
func (s *SMTPEmailSender) Send(_ context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.settings.Host, s.settings.Port)
	auth := smtp.PlainAuth("", s.settings.Username, s.settings.Password, s.settings.Host)

	from := s.settings.FromEmail
	if s.settings.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.settings.FromName, s.settings.FromEmail)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(addr, auth, s.settings.FromEmail, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debug().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

// LogEmailSender logs messages instead of delivering them. Used in
// development and tests when no SMTP relay is configured.
type LogEmailSender struct {
	logger zerolog.Logger
}

// NewLogEmailSender constructs a logging sender.
func NewLogEmailSender(logger zerolog.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger.With().Str("component", "log_email_sender").Logger()}
}

// Send logs the message and reports success.
func (l *LogEmailSender) Send(_ context.Context, to, subject, _ string) error {
	l.logger.Info().Str("to", to).Str("subject", subject).Msg("email delivery skipped (log sender)")
	return nil
}
