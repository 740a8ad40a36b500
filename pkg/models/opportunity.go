package models

import "time"

// OpportunityType defines the type of betting opportunity
type OpportunityType string

const (
	OpportunityTypeEdge   OpportunityType = "edge"   // Single +EV bet
	OpportunityTypeMiddle OpportunityType = "middle" // Both sides of market are +EV
	OpportunityTypeScalp  OpportunityType = "scalp"  // Guaranteed profit (arbitrage)
	OpportunityTypeSteam  OpportunityType = "steam"  // Sharp money moving a line across books
)

// Opportunity represents a detected betting opportunity
type Opportunity struct {
	// Core fields
	OpportunityType OpportunityType `json:"opportunity_type"`
	SportKey        string          `json:"sport_key"`
	EventID         string          `json:"event_id"`
	MarketKey       string          `json:"market_key"`
	EdgePercent     float64         `json:"edge_pct"`
	FairPrice       *int            `json:"fair_price,omitempty"` // American odds

	// Steam-specific signal strength (0-100), nil for other types
	SharpConfidence *float64 `json:"sharp_confidence,omitempty"`

	// Metadata
	DetectedAt     time.Time `json:"detected_at"`
	DataAgeSeconds int       `json:"data_age_seconds"`

	// Legs
	Legs []OpportunityLeg `json:"legs"`

	// Database ID (populated after write)
	ID int64 `json:"id,omitempty"`
}

// OpportunityLeg represents a single betting leg within an opportunity
type OpportunityLeg struct {
	BookKey        string   `json:"book_key"`
	OutcomeName    string   `json:"outcome_name"`
	Price          int      `json:"price"`                  // American odds
	Point          *float64 `json:"point,omitempty"`        // For spreads/totals
	Stake          *float64 `json:"stake,omitempty"`        // Recommended stake (scalps)
	LegEdgePercent *float64 `json:"leg_edge_pct,omitempty"` // Edge for this specific leg
}
