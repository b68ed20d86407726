// Package mq provides a thin kafka-go producer used to publish domain events
// and SLA alerts as JSON messages.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lexmigra/caseops/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Config holds producer settings.
type Config struct {
	Brokers      []string
	MaxRetries   int
	RetryBackoff int
}

// Producer publishes JSON messages to Kafka.
type Producer struct {
	writer *kafka.Writer
	config Config
}

// NewProducer builds a producer that waits for full-ISR acknowledgement.
func NewProducer(cfg Config) (*Producer, error) {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		AllowAutoTopicCreation: true,
		Compression:            kafka.Gzip,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            cfg.MaxRetries,
		WriteBackoffMin:        time.Duration(cfg.RetryBackoff) * time.Millisecond,
		WriteBackoffMax:        time.Duration(cfg.RetryBackoff*10) * time.Millisecond,
	}

	logger.Info(context.Background(), "kafka producer created", "brokers", cfg.Brokers)
	return &Producer{writer: writer, config: cfg}, nil
}

// Publish marshals value to JSON and publishes it on topic keyed by key. It
// satisfies the domain event publisher interfaces.
func (p *Producer) Publish(ctx context.Context, topic string, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error(ctx, "failed to send kafka message",
			"topic", topic,
			"key", key,
			"error", err,
		)
		return err
	}

	logger.Debug(ctx, "kafka message sent", "topic", topic, "key", key)
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
