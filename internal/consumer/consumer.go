package consumer

import (
	"context"
	"fmt"
	"sync"

	"github.com/ilindan-dev/seq-chat-bridge/internal/config"
	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
	"github.com/ilindan-dev/seq-chat-bridge/internal/storage/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// defaultWorkerCount is the default number of worker goroutines in the pool.
const defaultWorkerCount = 2

// EventDeliverer is the inbound delivery entry point. Deliver must not block
// on the outcome of the delivery.
type EventDeliverer interface {
	Deliver(e model.Event)
}

// Consumer listens to a RabbitMQ queue and hands events to the deliverer using a pool of workers.
type Consumer struct {
	cfg         config.RabbitMQConfig
	logger      zerolog.Logger
	conn        *amqp.Connection // Raw connection to create channels for each worker.
	deliverer   EventDeliverer
	workerCount int
}

// New creates a new instance of Consumer.
func New(
	cfg *config.Config,
	logger *zerolog.Logger,
	conn *amqp.Connection,
	deliverer EventDeliverer,
) *Consumer {
	workers := cfg.RabbitMQ.Workers
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	return &Consumer{
		cfg:         cfg.RabbitMQ,
		logger:      logger.With().Str("component", "amqp_consumer").Logger(),
		conn:        conn,
		deliverer:   deliverer,
		workerCount: workers,
	}
}

// Setup declares the exchange and queue the workers consume from.
func (c *Consumer) Setup() error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := rabbitmq.SetupTopology(ch, c.cfg.Exchange, c.cfg.Queue); err != nil {
		return fmt.Errorf("rabbitmq: %w", err)
	}
	c.logger.Info().Str("exchange", c.cfg.Exchange).Str("queue", c.cfg.Queue).Msg("rabbitmq topology ready")
	return nil
}

// Start launches the worker pool to process messages from the queue.
// This is a blocking method that will run until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info().Int("count", c.workerCount).Msg("Starting worker pool")
	var wg sync.WaitGroup

	for i := 0; i < c.workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.runWorker(ctx, workerID)
		}(i + 1)
	}

	wg.Wait()
	c.logger.Info().Msg("Consumer stopped")
}

// runWorker contains the main logic for a single worker goroutine.
func (c *Consumer) runWorker(ctx context.Context, workerID int) {
	logger := c.logger.With().Int("worker_id", workerID).Logger()

	ch, err := c.conn.Channel()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open channel for worker")
		return
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error().Err(err).Msg("Failed to set QoS")
		return
	}

	msgs, err := ch.ConsumeWithContext(
		ctx,
		c.cfg.Queue,
		fmt.Sprintf("worker-%d", workerID), // A unique consumer tag.
		false,                              // autoAck: false. We acknowledge once the event is handed over.
		false,                              // exclusive
		false,                              // noLocal
		false,                              // noWait
		nil,                                // args
	)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to register a consumer")
		return
	}

	logger.Info().Msg("Worker is waiting for events")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Worker stopping due to context cancellation")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Warn().Msg("Message channel closed by RabbitMQ, worker stopping")
				return
			}
			c.handleMessage(msg, logger)
		}
	}
}

// handleMessage decodes one message and hands the event over.
// Undecodable messages are rejected without requeue; nothing is retried.
func (c *Consumer) handleMessage(msg amqp.Delivery, logger zerolog.Logger) {
	event, err := model.DecodeEvent(msg.Body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to decode event, rejecting")
		_ = msg.Nack(false, false)
		return
	}

	logger.Debug().Str("event_id", event.ID).Str("level", event.Level.String()).Msg("Event received")
	c.deliverer.Deliver(*event)
	_ = msg.Ack(false)
}
