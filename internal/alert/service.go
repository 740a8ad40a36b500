package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/BTheCoderr/theRounders/internal/bus"
	"github.com/BTheCoderr/theRounders/pkg/models"
)

// Notifier delivers an alert for one opportunity
type Notifier interface {
	SendAlert(ctx context.Context, opp models.Opportunity) error
}

// Service consumes detected opportunities and pushes the ones worth
// interrupting someone for through the notifier
type Service struct {
	consumer *bus.Consumer
	filter   *Filter
	dedup    *Deduplicator
	limiter  *TokenBucket
	notifier Notifier

	mu          sync.Mutex
	received    int64
	sent        int64
	filtered    int64
	deduped     int64
	rateLimited int64
}

// NewService wires the alert pipeline
func NewService(consumer *bus.Consumer, filter *Filter, dedup *Deduplicator, limiter *TokenBucket, notifier Notifier) *Service {
	return &Service{
		consumer: consumer,
		filter:   filter,
		dedup:    dedup,
		limiter:  limiter,
		notifier: notifier,
	}
}

// Start consumes the opportunities stream until the context is cancelled
func (s *Service) Start(ctx context.Context) error {
	messageCh, errorCh := s.consumer.Consume(ctx, bus.OpportunitiesStream)
	fmt.Printf("✓ Alert service consuming %s\n", bus.OpportunitiesStream)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errorCh:
			if !ok {
				return nil
			}
			fmt.Printf("[Alerts] consumer error: %v\n", err)

		case msg, ok := <-messageCh:
			if !ok {
				return nil
			}
			s.processMessage(ctx, msg)
		}
	}
}

func (s *Service) processMessage(ctx context.Context, msg bus.Message) {
	s.count(&s.received)

	var opp models.Opportunity
	if err := json.Unmarshal(msg.Data, &opp); err != nil {
		fmt.Printf("[Alerts] error parsing opportunity %s: %v\n", msg.ID, err)
		s.ack(ctx, msg)
		return
	}

	if ok, reason := s.filter.ShouldAlert(opp); !ok {
		s.count(&s.filtered)
		fmt.Printf("[Alerts] skipped %s/%s: %s\n", opp.EventID, opp.MarketKey, reason)
		s.ack(ctx, msg)
		return
	}

	fresh, err := s.dedup.ShouldAlert(ctx, opp)
	if err != nil {
		fmt.Printf("[Alerts] dedup check failed: %v\n", err)
		s.ack(ctx, msg)
		return
	}
	if !fresh {
		s.count(&s.deduped)
		s.ack(ctx, msg)
		return
	}

	allowed, err := s.limiter.Allow(ctx)
	if err != nil {
		fmt.Printf("[Alerts] rate limit check failed: %v\n", err)
		s.ack(ctx, msg)
		return
	}
	if !allowed {
		s.count(&s.rateLimited)
		fmt.Printf("[Alerts] rate limited, dropping alert for %s/%s\n", opp.EventID, opp.MarketKey)
		s.ack(ctx, msg)
		return
	}

	if err := s.notifier.SendAlert(ctx, opp); err != nil {
		fmt.Printf("❌ [Alerts] send failed: %v\n", err)
		s.ack(ctx, msg)
		return
	}

	s.count(&s.sent)
	s.ack(ctx, msg)
}

func (s *Service) ack(ctx context.Context, msg bus.Message) {
	if err := s.consumer.Ack(ctx, msg.StreamKey, msg.ID); err != nil {
		fmt.Printf("[Alerts] error acking message %s: %v\n", msg.ID, err)
	}
}

func (s *Service) count(counter *int64) {
	s.mu.Lock()
	*counter++
	s.mu.Unlock()
}

// Metrics reports pipeline counters
func (s *Service) Metrics() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]int64{
		"received":     s.received,
		"sent":         s.sent,
		"filtered":     s.filtered,
		"deduped":      s.deduped,
		"rate_limited": s.rateLimited,
	}
}
