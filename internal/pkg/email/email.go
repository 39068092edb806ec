package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/simha10/SAMS-sub000/internal/config"
	"github.com/simha10/SAMS-sub000/internal/domain/notification"
)

const maxRetries = 3

type smtpNotifier struct {
	cfg config.SMTPConfig
}

// NewNotifier returns a notification.Notifier backed by plain SMTP.
func NewNotifier(cfg config.SMTPConfig) notification.Notifier {
	return &smtpNotifier{cfg: cfg}
}

// Send delivers a plain-text message. When SMTP is not configured the
// message is logged and dropped so local environments stay quiet.
func (s *smtpNotifier) Send(ctx context.Context, recipient, subject, message string) error {
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", recipient, "subject", subject)
		return nil
	}

	headers := fmt.Sprintf("From: %s\r\n", s.cfg.From)
	headers += fmt.Sprintf("To: %s\r\n", recipient)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/plain; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	payload := []byte(headers + message)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := smtp.SendMail(addr, auth, s.cfg.From, []string{recipient}, payload)
		if err == nil {
			slog.Info("Email sent successfully", "to", recipient, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", recipient,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Wait before retrying (exponential backoff: 1s, 2s, 4s)
		if attempt < maxRetries {
			time.Sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
