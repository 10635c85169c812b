package notify

import (
	"context"
	"fmt"
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"

	"github.com/auditlens/seo-audit/internal/logging"
)

// SMTPConfig holds email transport configuration.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewSMTPConfig creates SMTP configuration from environment variables.
func NewSMTPConfig() *SMTPConfig {
	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "audits@localhost"
	}
	return &SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     from,
	}
}

// SMTPSender implements EmailSender over SMTP.
type SMTPSender struct {
	cfg *SMTPConfig
	log *logging.Logger
}

// NewSMTPSender creates a new email sender.
func NewSMTPSender(cfg *SMTPConfig) *SMTPSender {
	if cfg == nil {
		cfg = NewSMTPConfig()
	}
	return &SMTPSender{
		cfg: cfg,
		log: logging.Default().WithComponent("email"),
	}
}

// Email sends an HTML message. When no SMTP host is configured the message
// is logged and dropped instead of failing the caller.
func (s *SMTPSender) Email(ctx context.Context, recipients []string, subject, htmlBody string) error {
	if s.cfg.Host == "" {
		s.log.Info("SMTP not configured, skipping email", "subject", subject, "recipients", recipients)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Info("email sent", "subject", subject, "recipients", len(recipients))
	return nil
}
