// Package smtp delivers per-recipient certificate notifications over SMTP.
package smtp

import (
	"context"
	"fmt"
	"log/slog"

	gomail "gopkg.in/gomail.v2"

	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewMailer(cfg MailerConfig, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (m *Mailer) Send(ctx context.Context, message ports.DeliveryMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", message.RecipientEmail)
	mail.SetHeader("Subject", "Your certificate is ready")
	mail.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour certificate of participation is ready. You can download it here:\n\n%s\n\nThank you for joining us.",
		message.RecipientName,
		message.StorageURL,
	))

	if err := m.dialer.DialAndSend(mail); err != nil {
		m.logger.Error("certificate notification send failed",
			"event", "certificate_notification_send_failed",
			"module", "community-engagement/certificate-service",
			"layer", "adapter",
			"activity_id", message.ActivityID,
			"recipient_email", message.RecipientEmail,
			"error", err.Error(),
		)
		return fmt.Errorf("smtp mailer: send to %s: %w", message.RecipientEmail, err)
	}
	return nil
}

// LogMailer logs notifications instead of sending them. Intended for
// development and testing.
type LogMailer struct {
	Logger *slog.Logger
}

func (l LogMailer) Send(_ context.Context, message ports.DeliveryMessage) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("certificate notification logged",
		"event", "certificate_notification_logged",
		"module", "community-engagement/certificate-service",
		"layer", "adapter",
		"activity_id", message.ActivityID,
		"recipient_email", message.RecipientEmail,
		"storage_url", message.StorageURL,
	)
	return nil
}

var _ ports.Mailer = (*Mailer)(nil)
var _ ports.Mailer = LogMailer{}
