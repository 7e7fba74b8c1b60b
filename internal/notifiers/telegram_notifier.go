package notifiers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ilindan-dev/seq-chat-bridge/internal/config"
	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
	"github.com/rs/zerolog"
)

// ProviderTelegram is the name of the Telegram provider.
const ProviderTelegram = "telegram"

// TelegramNotifier sends notifications to a single Telegram chat via a bot.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegramNotifier creates a new instance of TelegramNotifier.
func NewTelegramNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot api: %w", err)
	}
	return &TelegramNotifier{
		bot:    bot,
		chatID: cfg.ChatID,
		logger: logger.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// Name implements the Notifier interface.
func (n *TelegramNotifier) Name() string { return ProviderTelegram }

// Send implements the Notifier interface for Telegram.
// Messages are sent with HTML parse mode, which understands the <strong> and <a> tags templates produce.
func (n *TelegramNotifier) Send(_ context.Context, notification *model.Notification) error {
	msg := tgbotapi.NewMessage(n.chatID, notification.Message)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableNotification = !notification.Notify

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: failed to send message to chat %d: %w", n.chatID, err)
	}

	n.logger.Debug().Str("event_id", notification.EventID).Int64("chat_id", n.chatID).Msg("telegram message sent")
	return nil
}
