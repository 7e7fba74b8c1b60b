package notifiers

import (
	"context"
	"fmt"

	"github.com/ilindan-dev/seq-chat-bridge/internal/config"
	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// ProviderEmail is the name of the email provider.
const ProviderEmail = "email"

const defaultEmailSubject = "Seq event"

// EmailNotifier sends notifications as HTML mail to a single address.
type EmailNotifier struct {
	dialer  *gomail.Dialer
	from    string
	to      string
	subject string
	logger  zerolog.Logger
}

// NewEmailNotifier creates a new instance of EmailNotifier.
func NewEmailNotifier(cfg config.EmailConfig, logger *zerolog.Logger) *EmailNotifier {
	subject := cfg.Subject
	if subject == "" {
		subject = defaultEmailSubject
	}
	return &EmailNotifier{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		to:      cfg.To,
		subject: subject,
		logger:  logger.With().Str("component", "email_notifier").Logger(),
	}
}

// Name implements the Notifier interface.
func (n *EmailNotifier) Name() string { return ProviderEmail }

// Send implements the Notifier interface for email.
func (n *EmailNotifier) Send(_ context.Context, notification *model.Notification) error {
	m := n.compose(notification)

	// DialAndSend opens a connection, sends the email, and closes it.
	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("email: failed to send to %s: %w", n.to, err)
	}

	n.logger.Debug().Str("event_id", notification.EventID).Str("recipient", n.to).Msg("email sent")
	return nil
}

func (n *EmailNotifier) compose(notification *model.Notification) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", fmt.Sprintf("%s %s", n.subject, notification.EventID))
	if notification.Notify {
		m.SetHeader("X-Priority", "1")
	}
	m.SetBody("text/html", notification.Message)
	return m
}
