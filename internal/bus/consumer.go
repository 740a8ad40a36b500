package bus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message is a single consumed stream entry. Data holds the JSON payload
// as published; callers unmarshal into their own type.
type Message struct {
	ID        string
	StreamKey string
	Data      []byte
}

// Consumer reads messages from Redis Streams through a consumer group
type Consumer struct {
	redis      *redis.Client
	consumerID string
	groupName  string
	batchSize  int64
	blockTime  time.Duration
}

// NewConsumer creates a stream consumer belonging to the named group
func NewConsumer(redisClient *redis.Client, consumerID, groupName string) *Consumer {
	return &Consumer{
		redis:      redisClient,
		consumerID: consumerID,
		groupName:  groupName,
		batchSize:  100,
		blockTime:  5 * time.Second,
	}
}

// Consume reads messages from the given streams until the context is
// cancelled. Messages and read errors are delivered on the returned
// channels; both close when consumption stops.
func (c *Consumer) Consume(ctx context.Context, streamKeys ...string) (<-chan Message, <-chan error) {
	messageCh := make(chan Message, c.batchSize)
	errorCh := make(chan error, 1)

	go func() {
		defer close(messageCh)
		defer close(errorCh)

		for _, key := range streamKeys {
			if err := c.createConsumerGroup(ctx, key); err != nil {
				errorCh <- fmt.Errorf("failed to create consumer group on %s: %w", key, err)
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			default:
				messages, err := c.readMessages(ctx, streamKeys)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					select {
					case errorCh <- fmt.Errorf("error reading messages: %w", err):
					default:
					}
					time.Sleep(time.Second)
					continue
				}

				for _, msg := range messages {
					select {
					case messageCh <- msg:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return messageCh, errorCh
}

// readMessages reads one batch across all subscribed streams
func (c *Consumer) readMessages(ctx context.Context, streamKeys []string) ([]Message, error) {
	// XREADGROUP wants all keys first, then one ">" per key
	args := make([]string, 0, len(streamKeys)*2)
	args = append(args, streamKeys...)
	for range streamKeys {
		args = append(args, ">")
	}

	streams, err := c.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.groupName,
		Consumer: c.consumerID,
		Streams:  args,
		Count:    c.batchSize,
		Block:    c.blockTime,
	}).Result()

	if err != nil {
		if err == redis.Nil {
			// No new messages, not an error
			return nil, nil
		}
		return nil, err
	}

	var messages []Message
	for _, stream := range streams {
		for _, xmsg := range stream.Messages {
			data, ok := xmsg.Values["data"].(string)
			if !ok {
				// Malformed entry, drop it without redelivery
				c.Ack(context.Background(), stream.Stream, xmsg.ID)
				continue
			}

			messages = append(messages, Message{
				ID:        xmsg.ID,
				StreamKey: stream.Stream,
				Data:      []byte(data),
			})
		}
	}

	return messages, nil
}

// Ack acknowledges a processed message
func (c *Consumer) Ack(ctx context.Context, streamKey, messageID string) error {
	return c.redis.XAck(ctx, streamKey, c.groupName, messageID).Err()
}

// createConsumerGroup creates the group if it doesn't already exist
func (c *Consumer) createConsumerGroup(ctx context.Context, streamKey string) error {
	err := c.redis.XGroupCreateMkStream(ctx, streamKey, c.groupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}
