package alert

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/models"
	"github.com/redis/go-redis/v9"
)

// Deduplicator suppresses repeat alerts for the same opportunity using
// Redis keys with a TTL
type Deduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeduplicator creates a deduplicator with the given suppression window
func NewDeduplicator(client *redis.Client, ttl time.Duration) *Deduplicator {
	return &Deduplicator{
		client: client,
		ttl:    ttl,
	}
}

// ShouldAlert returns true if this opportunity hasn't been alerted within
// the TTL window, and marks it as alerted
func (d *Deduplicator) ShouldAlert(ctx context.Context, opp models.Opportunity) (bool, error) {
	dedupKey := dedupKey(opp)

	exists, err := d.client.Exists(ctx, dedupKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check dedup key: %w", err)
	}
	if exists > 0 {
		return false, nil
	}

	if err := d.client.Set(ctx, dedupKey, "1", d.ttl).Err(); err != nil {
		return false, fmt.Errorf("failed to set dedup key: %w", err)
	}

	return true, nil
}

// Clear removes the suppression entry for an opportunity
func (d *Deduplicator) Clear(ctx context.Context, opp models.Opportunity) error {
	return d.client.Del(ctx, dedupKey(opp)).Err()
}

// dedupKey is deterministic per event, market, type, and book set, so the
// same opportunity re-detected across polls maps to one key
func dedupKey(opp models.Opportunity) string {
	bookKeys := make([]string, 0, len(opp.Legs))
	for _, leg := range opp.Legs {
		bookKeys = append(bookKeys, leg.BookKey)
	}
	sort.Strings(bookKeys)

	hash := sha256.Sum256([]byte(strings.Join(bookKeys, ",")))
	booksHash := fmt.Sprintf("%x", hash[:8])

	return fmt.Sprintf("alert:dedup:%s:%s:%s:%s", opp.EventID, opp.MarketKey, opp.OpportunityType, booksHash)
}
