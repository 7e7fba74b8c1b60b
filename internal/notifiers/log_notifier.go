package notifiers

import (
	"context"

	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
	"github.com/rs/zerolog"
)

// ProviderLog is the name of the log-only provider.
const ProviderLog = "log_only"

// LogNotifier is a mock notifier that implements the Notifier interface.
// It logs the composed notification instead of sending it, which is useful
// for development and for trying out message templates.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a new instance of LogNotifier.
func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger.With().Str("component", "log_notifier").Logger(),
	}
}

// Name implements the Notifier interface.
func (n *LogNotifier) Name() string { return ProviderLog }

// Send implements the Notifier interface.
func (n *LogNotifier) Send(_ context.Context, notification *model.Notification) error {
	n.logger.Info().
		Str("event_id", notification.EventID).
		Str("color", notification.Color).
		Bool("notify", notification.Notify).
		Str("message", notification.Message).
		Msg(">>> MOCK SEND: notification composed")
	return nil
}
