package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes one consumed message. A returned error makes the
// consumer retry the same message, with backoff, until it succeeds or the
// context is cancelled. Handlers that want to drop a message return nil.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer reads a single topic as part of a consumer group.
type Consumer struct {
	reader     messageReader
	logger     *zap.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewConsumer creates a new Consumer for topic within groupID.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newConsumer(reader, logger)
}

func newConsumer(reader messageReader, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader:     reader,
		logger:     logger,
		minBackoff: 200 * time.Millisecond,
		maxBackoff: 10 * time.Second,
	}
}

// Consume fetches messages until ctx is cancelled. Commits are per partition
// offset, so a message is committed only after the handler accepts it and
// nothing behind it is fetched until then.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	fetchFailures := 0
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return err
			}
			c.logger.Error("failed to fetch message", zap.Error(err))
			if err := c.sleep(ctx, fetchFailures); err != nil {
				return err
			}
			fetchFailures++
			continue
		}
		fetchFailures = 0

		if err := c.handle(ctx, handler, msg); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("failed to commit message", zap.Error(err))
		}
	}
}

// handle runs handler on msg until it succeeds. It only fails when ctx is done.
func (c *Consumer) handle(ctx context.Context, handler MessageHandler, msg kafkago.Message) error {
	for attempt := 0; ; attempt++ {
		err := handler(ctx, msg)
		if err == nil {
			return nil
		}
		c.logger.Warn("message handler failed, retrying",
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		if err := c.sleep(ctx, attempt); err != nil {
			return err
		}
	}
}

func (c *Consumer) sleep(ctx context.Context, attempt int) error {
	d := c.minBackoff
	for i := 0; i < attempt && d < c.maxBackoff; i++ {
		d *= 2
	}
	if d > c.maxBackoff {
		d = c.maxBackoff
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
