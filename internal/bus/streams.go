// Package bus moves odds and opportunities between pipeline stages over
// Redis Streams. Each stage reads its input stream through a consumer group
// and publishes its output downstream.
package bus

import "fmt"

// Stream key layout:
//   odds.raw.{sport_key}         poller -> normalizer
//   odds.normalized.{sport_key}  normalizer -> detector
//   opportunities.detected       detector -> alerts, websocket, store
const OpportunitiesStream = "opportunities.detected"

// RawOddsStream returns the raw odds stream key for a sport
func RawOddsStream(sportKey string) string {
	return fmt.Sprintf("odds.raw.%s", sportKey)
}

// NormalizedOddsStream returns the normalized odds stream key for a sport
func NormalizedOddsStream(sportKey string) string {
	return fmt.Sprintf("odds.normalized.%s", sportKey)
}
