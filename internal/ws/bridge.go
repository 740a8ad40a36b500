package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BTheCoderr/theRounders/internal/bus"
	"github.com/BTheCoderr/theRounders/internal/snapshot"
	"github.com/BTheCoderr/theRounders/pkg/models"
)

// Bridge consumes normalized odds and opportunity streams, keeps the
// snapshot cache current, and relays everything to the hub
type Bridge struct {
	consumer *bus.Consumer
	hub      *Hub
	cache    *snapshot.Cache
}

// NewBridge wires stream consumption to the hub and snapshot cache.
// cache may be nil when no REST snapshot is served.
func NewBridge(consumer *bus.Consumer, hub *Hub, cache *snapshot.Cache) *Bridge {
	return &Bridge{
		consumer: consumer,
		hub:      hub,
		cache:    cache,
	}
}

// Start consumes until the context is cancelled
func (b *Bridge) Start(ctx context.Context, sportKeys []string) error {
	streamKeys := make([]string, 0, len(sportKeys)+1)
	for _, sportKey := range sportKeys {
		streamKeys = append(streamKeys, bus.NormalizedOddsStream(sportKey))
	}
	streamKeys = append(streamKeys, bus.OpportunitiesStream)

	messageCh, errorCh := b.consumer.Consume(ctx, streamKeys...)
	fmt.Printf("✓ WebSocket bridge consuming %d streams\n", len(streamKeys))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errorCh:
			if !ok {
				return nil
			}
			fmt.Printf("[WS] consumer error: %v\n", err)

		case msg, ok := <-messageCh:
			if !ok {
				return nil
			}
			b.processMessage(ctx, msg)
		}
	}
}

func (b *Bridge) processMessage(ctx context.Context, msg bus.Message) {
	defer func() {
		if err := b.consumer.Ack(ctx, msg.StreamKey, msg.ID); err != nil {
			fmt.Printf("[WS] error acking message %s: %v\n", msg.ID, err)
		}
	}()

	if msg.StreamKey == bus.OpportunitiesStream {
		var opp models.Opportunity
		if err := json.Unmarshal(msg.Data, &opp); err != nil {
			fmt.Printf("[WS] error parsing opportunity %s: %v\n", msg.ID, err)
			return
		}
		b.hub.BroadcastOpportunity(opp)
		return
	}

	var odds models.NormalizedOdds
	if err := json.Unmarshal(msg.Data, &odds); err != nil {
		fmt.Printf("[WS] error parsing odds %s: %v\n", msg.ID, err)
		return
	}

	if b.cache != nil {
		b.cache.UpdateOdds(odds)
	}
	b.hub.BroadcastOdds(odds)
}
