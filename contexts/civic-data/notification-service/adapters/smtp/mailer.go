package smtp

import (
	"context"
	"log/slog"

	"openknesset/contexts/civic-data/notification-service/domain/entities"
	"openknesset/contexts/civic-data/notification-service/ports"

	gomail "gopkg.in/gomail.v2"
)

// Mailer delivers digest emails over SMTP, one message per recipient with a
// plain-text body and an HTML alternative.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

func NewMailer(host string, port int, username string, password string, from string, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		logger: logger,
	}
}

func (m *Mailer) Send(ctx context.Context, email entities.DigestEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", email.To)
	message.SetHeader("Subject", email.Subject)
	message.SetBody("text/plain", email.TextBody)
	message.AddAlternative("text/html", email.HTMLBody)

	if err := m.dialer.DialAndSend(message); err != nil {
		m.logger.Error("digest email delivery failed",
			"event", "notification_email_send_failed",
			"module", "civic-data/notification-service",
			"layer", "adapter",
			"error", err.Error(),
		)
		return err
	}
	return nil
}

var _ ports.Mailer = (*Mailer)(nil)
