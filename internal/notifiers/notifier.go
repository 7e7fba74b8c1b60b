package notifiers

import (
	"context"

	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
)

// Notifier defines the interface for a chat provider that delivers one composed notification.
// Exactly one provider is active at a time; there is no fan-out.
type Notifier interface {
	// Send delivers the notification once, without retrying.
	Send(ctx context.Context, n *model.Notification) error
	// Name identifies the provider in logs and delivery records.
	Name() string
}
