package consumer

import (
	"context"
	"errors"

	"github.com/ilindan-dev/seq-chat-bridge/internal/config"
	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// MessageReader is the subset of *kafka.Reader used by KafkaConsumer.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer reads events from a Kafka topic and hands them to the deliverer.
type KafkaConsumer struct {
	reader    MessageReader
	deliverer EventDeliverer
	logger    zerolog.Logger
}

// NewKafkaReader creates a consumer-group reader for the configured topic.
func NewKafkaReader(cfg config.KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
}

// NewKafkaConsumer creates a new instance of KafkaConsumer.
func NewKafkaConsumer(reader MessageReader, deliverer EventDeliverer, logger *zerolog.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		reader:    reader,
		deliverer: deliverer,
		logger:    logger.With().Str("component", "kafka_consumer").Logger(),
	}
}

// Start reads messages until ctx is cancelled or the reader is closed.
func (c *KafkaConsumer) Start(ctx context.Context) {
	c.logger.Info().Msg("Kafka consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info().Msg("Kafka consumer stopping due to context cancellation")
			} else {
				c.logger.Error().Err(err).Msg("Failed to fetch message, consumer stopping")
			}
			return
		}

		c.handleMessage(ctx, msg)
	}
}

// handleMessage hands a decoded event over and commits the offset.
// Undecodable messages are skipped.
func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	logger := c.logger.With().Int("partition", msg.Partition).Int64("offset", msg.Offset).Logger()

	event, err := model.DecodeEvent(msg.Value)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to decode event, skipping")
	} else {
		logger.Debug().Str("event_id", event.ID).Msg("Event received")
		c.deliverer.Deliver(*event)
	}

	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Msg("Failed to commit message")
	}
}

// Close closes the underlying reader.
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
