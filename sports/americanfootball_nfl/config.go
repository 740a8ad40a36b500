package americanfootball_nfl

import "github.com/BTheCoderr/theRounders/pkg/models"

// Config contains NFL-specific normalization configuration
type Config struct {
	SportKey    string
	DisplayName string

	SharpBooks []string

	TwoWayMarkets []string
	PropsMarkets  []string

	// Key numbers where spreads land most often. Middles that straddle one
	// of these are worth far more than their width suggests.
	KeySpreadNumbers []float64

	MinEdgeForAlert float64
	SignificantEdge float64
}

// DefaultConfig returns the standard NFL normalization configuration
func DefaultConfig() *Config {
	return &Config{
		SportKey:    "americanfootball_nfl",
		DisplayName: "NFL Football",

		SharpBooks: []string{
			"pinnacle",
			"circa",
			"bookmaker",
		},

		TwoWayMarkets: []string{
			"h2h",
			"spreads",
			"totals",
		},

		PropsMarkets: []string{
			"player_pass_yds",
			"player_pass_tds",
			"player_rush_yds",
			"player_reception_yds",
			"player_receptions",
			"player_anytime_td",
		},

		// 3 and 7 dominate NFL margins; 6, 10 and 14 matter less but still land
		KeySpreadNumbers: []float64{3, 6, 7, 10, 14},

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
