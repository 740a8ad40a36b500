package models

import "time"

// BetResult is the settlement outcome of a bet
type BetResult string

const (
	BetResultPending BetResult = "pending"
	BetResultWin     BetResult = "win"
	BetResultLoss    BetResult = "loss"
	BetResultPush    BetResult = "push"
	BetResultVoid    BetResult = "void"
)

// Bet represents a tracked wager, real or paper
type Bet struct {
	ID            int64      `json:"id"`
	ExternalRef   string     `json:"external_ref"` // UUID for client correlation
	SportKey      string     `json:"sport_key"`
	EventID       string     `json:"event_id"`
	MarketKey     string     `json:"market_key"`
	BookKey       string     `json:"book_key"`
	OutcomeName   string     `json:"outcome_name"`
	Price         int        `json:"price"` // American odds at placement
	Point         *float64   `json:"point,omitempty"`
	Stake         float64    `json:"stake"`
	PaperTrade    bool       `json:"paper_trade"`
	OpportunityID *int64     `json:"opportunity_id,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Result        BetResult  `json:"result"`
	ProfitLoss    *float64   `json:"profit_loss,omitempty"`
	SteamMove     bool       `json:"steam_move"` // Placed on a steam signal
	PlacedAt      time.Time  `json:"placed_at"`
	SettledAt     *time.Time `json:"settled_at,omitempty"`
}

// BetPerformance records closing-line value for a settled or pending bet
type BetPerformance struct {
	BetID            int64     `json:"bet_id"`
	ClosingLinePrice int       `json:"closing_line_price"`
	CLVCents         float64   `json:"clv_cents"`
	HoldTimeSeconds  int       `json:"hold_time_seconds"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// BetSummary aggregates bet-tracking performance
type BetSummary struct {
	TotalBets       int     `json:"total_bets"`
	PendingBets     int     `json:"pending_bets"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	Pushes          int     `json:"pushes"`
	WinRate         float64 `json:"win_rate"`
	TotalStaked     float64 `json:"total_staked"`
	TotalProfitLoss float64 `json:"total_profit_loss"`
	ROI             float64 `json:"roi"`
	AvgCLV          float64 `json:"avg_clv"`
	PositiveCLVRate float64 `json:"positive_clv_rate"`
	TrackedCLV      int     `json:"tracked_clv"` // Bets with a recorded closing line
}

// Settings holds user-tunable dashboard settings persisted in the store
type Settings struct {
	PaperTrading  bool    `json:"paper_trading"`
	DefaultStake  float64 `json:"default_stake"`
	Bankroll      float64 `json:"bankroll"`
	KellyFraction float64 `json:"kelly_fraction"`
	MinEdgePct    float64 `json:"min_edge_pct"`
}
