// Package mailer abstracts transactional email delivery. Callers treat
// sends as fire-and-forget: a failure is returned for logging, never
// propagated to the user-facing operation.
package mailer

import (
	"go.uber.org/zap"

	"github.com/example/veloria/internal/config"
)

// Service delivers a single transactional email.
type Service interface {
	Send(toEmail, toName, subject, text, html string) error
}

// FromConfig selects the configured delivery channel: MailerSend when an
// API key is present, SMTP when a host is set, otherwise the log-only dev
// mailer.
func FromConfig(cfg *config.Config, log *zap.Logger) Service {
	if cfg.MailerSendAPIKey != "" && cfg.MailFromEmail != "" {
		return NewMailerSend(cfg.MailerSendAPIKey, cfg.MailFromName, cfg.MailFromEmail)
	}
	if cfg.SMTPHost != "" {
		return NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.MailFromEmail, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
	}
	log.Warn("no mail channel configured, emails will only be logged")
	return NewDev(log)
}

// Dev logs messages instead of delivering them.
type Dev struct {
	log *zap.Logger
}

// NewDev constructs the log-only mailer.
func NewDev(log *zap.Logger) *Dev {
	return &Dev{log: log}
}

func (d *Dev) Send(toEmail, toName, subject, text, html string) error {
	d.log.Info("dev mailer",
		zap.String("to", toEmail),
		zap.String("subject", subject),
		zap.String("text", text))
	return nil
}
