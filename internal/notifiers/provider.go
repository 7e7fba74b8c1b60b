package notifiers

import (
	"fmt"

	"github.com/ilindan-dev/seq-chat-bridge/internal/config"
	"github.com/rs/zerolog"
)

// NewNotifier selects the single chat provider named by the configuration.
func NewNotifier(cfg *config.Config, logger *zerolog.Logger) (Notifier, error) {
	log := logger.With().Str("component", "notifier_factory").Logger()
	provider := cfg.Notifier.Provider
	if provider == "" {
		provider = ProviderHipChat
	}
	log.Info().Str("provider", provider).Msg("initializing notifier")

	switch provider {
	case ProviderHipChat:
		return NewHipChatNotifier(cfg.Chat, nil, logger), nil
	case ProviderLog:
		return NewLogNotifier(logger), nil
	case ProviderEmail:
		if cfg.Notifier.Email.Host == "" || cfg.Notifier.Email.To == "" {
			return nil, fmt.Errorf("email provider requires notifier.email.host and notifier.email.to")
		}
		return NewEmailNotifier(cfg.Notifier.Email, logger), nil
	case ProviderTelegram:
		if cfg.Notifier.Telegram.BotToken == "" {
			return nil, fmt.Errorf("telegram provider requires notifier.telegram.bot_token")
		}
		tg, err := NewTelegramNotifier(cfg.Notifier.Telegram, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telegram notifier: %w", err)
		}
		return tg, nil
	default:
		return nil, fmt.Errorf("unknown notifier provider %q", provider)
	}
}
