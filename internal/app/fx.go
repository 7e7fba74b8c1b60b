package app

import (
	"context"
	"net/http"

	"github.com/ilindan-dev/seq-chat-bridge/internal/config"
	"github.com/ilindan-dev/seq-chat-bridge/internal/consumer"
	deliveryHTTP "github.com/ilindan-dev/seq-chat-bridge/internal/delivery/http"
	"github.com/ilindan-dev/seq-chat-bridge/internal/logger"
	"github.com/ilindan-dev/seq-chat-bridge/internal/notifiers"
	"github.com/ilindan-dev/seq-chat-bridge/internal/service"
	"github.com/ilindan-dev/seq-chat-bridge/internal/storage/rabbitmq"
	"github.com/ilindan-dev/seq-chat-bridge/internal/template"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// CommonModule provides dependencies that are shared between the API and Worker applications.
var CommonModule = fx.Options(
	fx.Provide(
		// Core components
		config.NewConfig,
		logger.NewLogger,

		// Storage Layer
		newDeliveryJournal,

		// Delivery path
		template.NewResolver,
		notifiers.NewNotifier,
		service.NewDispatcher,
	),

	// Let in-flight deliveries finish before the process exits.
	fx.Invoke(func(dispatcher *service.Dispatcher, log *zerolog.Logger, lc fx.Lifecycle) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if err := dispatcher.Wait(ctx); err != nil {
					log.Warn().Err(err).Msg("shutting down with deliveries still in flight")
				}
				return nil
			},
		})
	}),
)

// APIModule defines the Fx module for the HTTP ingestion application.
var APIModule = fx.Options(
	CommonModule, // Include all shared components
	fx.Provide(
		// API-specific components
		deliveryHTTP.NewHandlers,
		deliveryHTTP.NewServer,
	),

	fx.Invoke(func(server *deliveryHTTP.Server, log *zerolog.Logger, lc fx.Lifecycle) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.Fatal().Err(err).Msg("http server failed")
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
		})
	}),
)

// WorkerModule defines the Fx module for the broker ingestion application.
// The RabbitMQ consumer runs when rabbitmq.dsn is set, the Kafka consumer when kafka.brokers is set.
var WorkerModule = fx.Options(
	CommonModule, // Include all shared components
	fx.Invoke(startAMQPConsumer),
	fx.Invoke(startKafkaConsumer),
)

func startAMQPConsumer(cfg *config.Config, log *zerolog.Logger, dispatcher *service.Dispatcher, lc fx.Lifecycle) error {
	if cfg.RabbitMQ.DSN == "" {
		log.Info().Msg("rabbitmq consumer disabled")
		return nil
	}

	conn, err := rabbitmq.NewConnection(cfg)
	if err != nil {
		return err
	}
	c := consumer.New(cfg, log, conn, dispatcher)
	if err := c.Setup(); err != nil {
		_ = conn.Close()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				c.Start(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return conn.Close()
		},
	})
	return nil
}

func startKafkaConsumer(cfg *config.Config, log *zerolog.Logger, dispatcher *service.Dispatcher, lc fx.Lifecycle) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info().Msg("kafka consumer disabled")
		return
	}

	c := consumer.NewKafkaConsumer(consumer.NewKafkaReader(cfg.Kafka), dispatcher, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				c.Start(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return c.Close()
		},
	})
}
