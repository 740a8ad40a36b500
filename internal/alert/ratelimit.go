package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBucket rate-limits outbound alerts using a Redis counter that
// refills to max once per period
type TokenBucket struct {
	client       *redis.Client
	key          string
	maxTokens    int
	refillPeriod time.Duration
}

// NewTokenBucket creates a limiter allowing maxTokens alerts per minute
func NewTokenBucket(client *redis.Client, maxTokens int) *TokenBucket {
	return &TokenBucket{
		client:       client,
		key:          "alert:ratelimit:tokens",
		maxTokens:    maxTokens,
		refillPeriod: time.Minute,
	}
}

// Allow consumes a token if one is available
func (tb *TokenBucket) Allow(ctx context.Context) (bool, error) {
	if err := tb.initialize(ctx); err != nil {
		return false, err
	}

	tokens, err := tb.client.Decr(ctx, tb.key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to decrement tokens: %w", err)
	}

	if tokens < 0 {
		// Went negative: put the token back and refuse
		tb.client.Incr(ctx, tb.key)
		return false, nil
	}

	return true, nil
}

func (tb *TokenBucket) initialize(ctx context.Context) error {
	exists, err := tb.client.Exists(ctx, tb.key).Result()
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if exists == 0 {
		if err := tb.client.Set(ctx, tb.key, tb.maxTokens, 0).Err(); err != nil {
			return fmt.Errorf("failed to initialize bucket: %w", err)
		}
		go tb.refillLoop(context.Background())
	}

	return nil
}

func (tb *TokenBucket) refillLoop(ctx context.Context) {
	ticker := time.NewTicker(tb.refillPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := tb.client.Set(ctx, tb.key, tb.maxTokens, 0).Err(); err != nil {
				fmt.Printf("[Alerts] error refilling token bucket: %v\n", err)
			}
		}
	}
}

// Tokens returns the current token count
func (tb *TokenBucket) Tokens(ctx context.Context) (int, error) {
	tokens, err := tb.client.Get(ctx, tb.key).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get tokens: %w", err)
	}
	return tokens, nil
}

// Reset restores the bucket to max tokens
func (tb *TokenBucket) Reset(ctx context.Context) error {
	return tb.client.Set(ctx, tb.key, tb.maxTokens, 0).Err()
}
