package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher writes JSON payloads to Redis Streams
type Publisher struct {
	redis  *redis.Client
	maxLen int64
}

// NewPublisher creates a stream publisher. maxLen caps each stream's length
// (approximate trimming); zero means unbounded.
func NewPublisher(redisClient *redis.Client, maxLen int64) *Publisher {
	return &Publisher{
		redis:  redisClient,
		maxLen: maxLen,
	}
}

// Publish marshals the payload and appends it to the stream
func (p *Publisher) Publish(ctx context.Context, streamKey string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling payload: %w", err)
	}

	err = p.redis.XAdd(ctx, p.addArgs(streamKey, data)).Err()
	if err != nil {
		return fmt.Errorf("error publishing to stream %s: %w", streamKey, err)
	}

	return nil
}

// PublishBatch appends multiple payloads to a stream in a single pipeline
func (p *Publisher) PublishBatch(ctx context.Context, streamKey string, payloads []interface{}) error {
	if len(payloads) == 0 {
		return nil
	}

	pipe := p.redis.Pipeline()
	for _, payload := range payloads {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("[Publisher] error marshaling payload: %v\n", err)
			continue
		}
		pipe.XAdd(ctx, p.addArgs(streamKey, data))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error executing publish pipeline: %w", err)
	}

	return nil
}

func (p *Publisher) addArgs(streamKey string, data []byte) *redis.XAddArgs {
	args := &redis.XAddArgs{
		Stream: streamKey,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	return args
}
