package models

import "time"

// RawOdds represents a single price quote from a sportsbook before normalization
type RawOdds struct {
	EventID          string    `json:"event_id"`
	SportKey         string    `json:"sport_key"`
	MarketKey        string    `json:"market_key"`
	BookKey          string    `json:"book_key"`
	OutcomeName      string    `json:"outcome_name"`
	Price            int       `json:"price"`           // American odds
	Point            *float64  `json:"point,omitempty"` // For spreads/totals
	VendorLastUpdate time.Time `json:"vendor_last_update"`
	ReceivedAt       time.Time `json:"received_at"`
}

// Event represents a sporting event
type Event struct {
	EventID      string    `json:"event_id"`
	SportKey     string    `json:"sport_key"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
	EventStatus  string    `json:"event_status"` // upcoming, live, completed, cancelled
}

// NormalizedOdds represents odds after normalization with fair prices and edges
type NormalizedOdds struct {
	RawOdds

	DecimalOdds        float64  `json:"decimal_odds"`        // Converted from American
	ImpliedProbability float64  `json:"implied_probability"` // 1 / decimal
	NoVigProbability   *float64 `json:"novig_probability"`   // After vig removal (two-way markets)
	FairPrice          *int     `json:"fair_price"`          // American odds equivalent of fair probability
	Edge               *float64 `json:"edge"`                // Percentage edge vs fair price

	// Sharp consensus (for soft books)
	SharpConsensus *float64 `json:"sharp_consensus"`

	// Market classification
	MarketType string `json:"market_type"` // two_way, three_way, props
	VigMethod  string `json:"vig_method"`  // multiplicative, additive

	NormalizedAt      time.Time `json:"normalized_at"`
	ProcessingLatency int64     `json:"processing_latency_ms"`
}

// LineMovement is a single observed price change for an outcome at a book
type LineMovement struct {
	ID          int64     `json:"id,omitempty"`
	EventID     string    `json:"event_id"`
	SportKey    string    `json:"sport_key"`
	MarketKey   string    `json:"market_key"`
	BookKey     string    `json:"book_key"`
	OutcomeName string    `json:"outcome_name"`
	Price       int       `json:"price"`
	Point       *float64  `json:"point,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// ClosingLine is the final price captured before an event goes live
type ClosingLine struct {
	EventID      string    `json:"event_id"`
	MarketKey    string    `json:"market_key"`
	BookKey      string    `json:"book_key"`
	OutcomeName  string    `json:"outcome_name"`
	ClosingPrice int       `json:"closing_price"`
	Point        *float64  `json:"point,omitempty"`
	ClosedAt     time.Time `json:"closed_at"`
}

// MarketType defines the type of betting market
type MarketType string

const (
	MarketTypeTwoWay   MarketType = "two_way"   // spreads, totals
	MarketTypeThreeWay MarketType = "three_way" // moneyline with draw
	MarketTypeProps    MarketType = "props"     // player props
)

// VigMethod defines how to remove vig
type VigMethod string

const (
	VigMethodMultiplicative VigMethod = "multiplicative" // Two-way markets
	VigMethodAdditive       VigMethod = "additive"       // Three-way markets
	VigMethodNone           VigMethod = "none"           // Props (book-vs-book comparison)
)

// BookType classifies sportsbooks
type BookType string

const (
	BookTypeSharp BookType = "sharp" // Pinnacle, Circa, Bookmaker
	BookTypeSoft  BookType = "soft"  // FanDuel, DraftKings, etc.
)

// Book represents a sportsbook with its classification
type Book struct {
	BookKey     string   `json:"book_key"`
	DisplayName string   `json:"display_name"`
	BookType    BookType `json:"book_type"`
	Active      bool     `json:"active"`
}
