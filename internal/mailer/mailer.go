package mailer

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// EmailSender delivers a single email message.
type EmailSender interface {
	Send(to, subject, body string) error
}

// Compile-time check to ensure SMTPSender implements EmailSender
var _ EmailSender = (*SMTPSender)(nil)

// SMTPConfig holds SMTP server settings.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Sender   string
}

// SMTPSender sends email over plain SMTP with optional AUTH.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

// NewSMTPSender creates an SMTPSender.
func NewSMTPSender(cfg SMTPConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		logger: logger.Named("SMTPSender"),
	}
}

// Send delivers the message. The body is sent as plain text.
func (s *SMTPSender) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)

	msg := []byte("From: " + s.cfg.Sender + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
		"\r\n" +
		body + "\r\n")

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.Sender, []string{to}, msg); err != nil {
		s.logger.Error("Failed to send email", zap.Error(err), zap.String("to", to), zap.String("subject", subject))
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
