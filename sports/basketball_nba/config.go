package basketball_nba

import "github.com/BTheCoderr/theRounders/pkg/models"

// Config contains NBA-specific normalization configuration
type Config struct {
	SportKey    string
	DisplayName string

	// Sharp books for consensus, ordered by reliability
	SharpBooks []string

	TwoWayMarkets []string
	PropsMarkets  []string

	// Edge thresholds
	MinEdgeForAlert float64
	SignificantEdge float64
}

// DefaultConfig returns the standard NBA normalization configuration
func DefaultConfig() *Config {
	return &Config{
		SportKey:    "basketball_nba",
		DisplayName: "NBA Basketball",

		// Pinnacle: lowest margins, fastest to move, high limits
		// Circa: Vegas sharp book
		// Bookmaker: sharp offshore book
		SharpBooks: []string{
			"pinnacle",
			"circa",
			"bookmaker",
		},

		// NBA has no draws, so moneyline is a plain two-way market
		// and gets the same multiplicative vig removal as spreads/totals
		TwoWayMarkets: []string{
			"h2h",
			"spreads",
			"totals",
		},

		PropsMarkets: []string{
			"player_points",
			"player_rebounds",
			"player_assists",
			"player_threes",
			"player_points_rebounds_assists",
			"player_steals",
			"player_blocks",
			"player_double_double",
			"player_triple_double",
		},

		MinEdgeForAlert: 0.01,
		SignificantEdge: 0.02,
	}
}

// GetMarketType returns the market type for a market key
func (c *Config) GetMarketType(marketKey string) models.MarketType {
	for _, m := range c.TwoWayMarkets {
		if m == marketKey {
			return models.MarketTypeTwoWay
		}
	}
	for _, m := range c.PropsMarkets {
		if m == marketKey {
			return models.MarketTypeProps
		}
	}

	// Unknown markets are treated as props: book-vs-book comparison only
	return models.MarketTypeProps
}

// IsSharpBook checks if a book is in the sharp list
func (c *Config) IsSharpBook(bookKey string) bool {
	for _, sharp := range c.SharpBooks {
		if sharp == bookKey {
			return true
		}
	}
	return false
}
