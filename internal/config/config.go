package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Default values materialized by the deployment bootstrap. The service and
// the bootstrap must agree on these byte-for-byte.
const (
	DefaultDBPath         = "data/betting.db"
	DefaultPaperTrading   = true
	DefaultStake          = 100.0
	DefaultUpdateInterval = 60 // seconds
)

// DefaultEnabledBooks is the fixed book list the dashboard monitors out of the box.
var DefaultEnabledBooks = []string{"DraftKings", "FanDuel", "BetMGM", "Caesars", "PointsBet"}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	URL      string
	Password string
}

// DatabaseConfig selects the bet-tracking store backend.
// SQLite at Path by default; Postgres when URL is set.
type DatabaseConfig struct {
	Path string // SQLite file path (DB_PATH)
	URL  string // Postgres DSN (DATABASE_URL), optional
}

// OddsAPIConfig holds The Odds API client configuration
type OddsAPIConfig struct {
	APIKey             string
	SportsDataAPIKey   string
	FootballDataAPIKey string
	BaseURL            string
	Regions            string
	MinRequestInterval int // seconds between requests
}

// PollerConfig holds ingestion poller configuration
type PollerConfig struct {
	Sports         []string
	UpdateInterval int // seconds
	EnabledBooks   []string
}

// DetectorConfig holds opportunity detection thresholds
type DetectorConfig struct {
	MinEdgePct        float64
	MaxDataAgeSeconds int
	EnableMiddles     bool
	EnableScalps      bool
	EnabledMarkets    []string
	SharpBooks        []string

	// Steam detection
	SteamWindowMinutes  int
	SteamMoveThreshold  float64 // Minimum American-odds movement (cents)
	SteamMinBooks       int     // Books that must move together
	PublicFadeThreshold float64 // Public % for reverse line movement
}

// KellyConfig holds stake-sizing configuration
type KellyConfig struct {
	DefaultBankroll float64
	Fraction        float64
	MinEdge         float64 // decimal, e.g. 0.01
	MaxPct          float64 // decimal, e.g. 0.10
}

// AlertConfig holds alerting configuration
type AlertConfig struct {
	SlackWebhookURL   string
	MinEdgePct        float64
	MaxDataAgeSeconds int
	DedupTTLMinutes   int
	MaxAlertsPerMin   int
}

// StreamConfig names the Redis streams and consumer identity
type StreamConfig struct {
	ConsumerGroup string
	ConsumerID    string
}

// BettingConfig holds bet-tracking behavior
type BettingConfig struct {
	PaperTrading bool
	DefaultStake float64
}

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Database DatabaseConfig
	OddsAPI  OddsAPIConfig
	Poller   PollerConfig
	Detector DetectorConfig
	Kelly    KellyConfig
	Alert    AlertConfig
	Stream   StreamConfig
	Betting  BettingConfig
}

// Load reads configuration from a .env file (when present) and the
// environment. Environment variables win over .env values.
func Load() *Config {
	// Missing .env is fine; the bootstrap writes one in deployment
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Addr:        getEnv("SERVER_ADDR", ":8080"),
			CORSOrigins: getEnvStringSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", DefaultDBPath),
			URL:  os.Getenv("DATABASE_URL"),
		},
		OddsAPI: OddsAPIConfig{
			APIKey:             os.Getenv("ODDS_API_KEY"),
			SportsDataAPIKey:   os.Getenv("SPORTSDATA_API_KEY"),
			FootballDataAPIKey: os.Getenv("FOOTBALL_DATA_KEY"),
			BaseURL:            getEnv("ODDS_API_BASE_URL", "https://api.the-odds-api.com/v4"),
			Regions:            getEnv("ODDS_API_REGIONS", "us"),
			MinRequestInterval: getEnvInt("ODDS_API_MIN_INTERVAL", 5),
		},
		Poller: PollerConfig{
			Sports:         getEnvStringSlice("SPORTS", []string{"basketball_nba"}),
			UpdateInterval: getEnvInt("UPDATE_INTERVAL", DefaultUpdateInterval),
			EnabledBooks:   getEnvStringSlice("ENABLED_BOOKS", DefaultEnabledBooks),
		},
		Detector: DetectorConfig{
			MinEdgePct:          getEnvFloat("MIN_EDGE_PCT", 0.01),
			MaxDataAgeSeconds:   getEnvInt("MAX_DATA_AGE_SECONDS", 120),
			EnableMiddles:       getEnvBool("ENABLE_MIDDLES", true),
			EnableScalps:        getEnvBool("ENABLE_SCALPS", true),
			EnabledMarkets:      getEnvStringSlice("ENABLED_MARKETS", []string{"h2h", "spreads", "totals"}),
			SharpBooks:          getEnvStringSlice("SHARP_BOOKS", []string{"pinnacle"}),
			SteamWindowMinutes:  getEnvInt("STEAM_WINDOW_MINUTES", 5),
			SteamMoveThreshold:  getEnvFloat("STEAM_MOVE_THRESHOLD", 10),
			SteamMinBooks:       getEnvInt("STEAM_MIN_BOOKS", 2),
			PublicFadeThreshold: getEnvFloat("PUBLIC_FADE_THRESHOLD", 60.0),
		},
		Kelly: KellyConfig{
			DefaultBankroll: getEnvFloat("DEFAULT_BANKROLL", 10000.0),
			Fraction:        getEnvFloat("KELLY_DEFAULT_FRACTION", 0.25),
			MinEdge:         getEnvFloat("KELLY_MIN_EDGE_PCT", 1.0) / 100.0,
			MaxPct:          getEnvFloat("KELLY_MAX_PCT", 10.0) / 100.0,
		},
		Alert: AlertConfig{
			SlackWebhookURL:   os.Getenv("SLACK_WEBHOOK_URL"),
			MinEdgePct:        getEnvFloat("ALERT_MIN_EDGE_PCT", 2.0),
			MaxDataAgeSeconds: getEnvInt("ALERT_MAX_DATA_AGE_SECONDS", 300),
			DedupTTLMinutes:   getEnvInt("ALERT_DEDUP_TTL_MINUTES", 15),
			MaxAlertsPerMin:   getEnvInt("ALERT_MAX_PER_MINUTE", 10),
		},
		Stream: StreamConfig{
			ConsumerGroup: getEnv("CONSUMER_GROUP", "rounders"),
			ConsumerID:    getEnv("CONSUMER_ID", "rounders-1"),
		},
		Betting: BettingConfig{
			PaperTrading: getEnvBool("PAPER_TRADING", DefaultPaperTrading),
			DefaultStake: getEnvFloat("DEFAULT_STAKE", DefaultStake),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvStringSlice parses a comma-separated list. The bootstrap writes
// ENABLED_BOOKS as a bracketed JSON-style literal, so brackets and quotes
// are stripped from each element.
func getEnvStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			out = append(out, part)
		}
	}

	if len(out) == 0 {
		return defaultValue
	}
	return out
}
