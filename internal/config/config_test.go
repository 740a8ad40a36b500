package config_test

import (
	"os"
	"testing"

	"github.com/BTheCoderr/theRounders/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg := config.Load()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default server addr ':8080', got '%s'", cfg.Server.Addr)
	}

	if cfg.Database.Path != "data/betting.db" {
		t.Errorf("Expected default DB path 'data/betting.db', got '%s'", cfg.Database.Path)
	}

	if cfg.Database.URL != "" {
		t.Errorf("Expected empty DATABASE_URL by default, got '%s'", cfg.Database.URL)
	}

	if !cfg.Betting.PaperTrading {
		t.Error("Expected paper trading enabled by default")
	}

	if cfg.Betting.DefaultStake != 100 {
		t.Errorf("Expected default stake 100, got %f", cfg.Betting.DefaultStake)
	}

	if cfg.Poller.UpdateInterval != 60 {
		t.Errorf("Expected update interval 60, got %d", cfg.Poller.UpdateInterval)
	}

	wantBooks := []string{"DraftKings", "FanDuel", "BetMGM", "Caesars", "PointsBet"}
	if len(cfg.Poller.EnabledBooks) != len(wantBooks) {
		t.Fatalf("Expected %d enabled books, got %d", len(wantBooks), len(cfg.Poller.EnabledBooks))
	}
	for i, want := range wantBooks {
		if cfg.Poller.EnabledBooks[i] != want {
			t.Errorf("Book %d: expected '%s', got '%s'", i, want, cfg.Poller.EnabledBooks[i])
		}
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	os.Setenv("SERVER_ADDR", ":9090")
	os.Setenv("REDIS_URL", "redis.example.com:6379")
	os.Setenv("DB_PATH", "/tmp/test.db")
	os.Setenv("PAPER_TRADING", "false")
	os.Setenv("DEFAULT_STAKE", "250")
	os.Setenv("UPDATE_INTERVAL", "30")
	os.Setenv("SPORTS", "basketball_nba,americanfootball_nfl")
	defer os.Clearenv()

	cfg := config.Load()

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected server addr ':9090', got '%s'", cfg.Server.Addr)
	}

	if cfg.Redis.URL != "redis.example.com:6379" {
		t.Errorf("Expected redis URL 'redis.example.com:6379', got '%s'", cfg.Redis.URL)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Expected DB path '/tmp/test.db', got '%s'", cfg.Database.Path)
	}

	if cfg.Betting.PaperTrading {
		t.Error("Expected paper trading disabled")
	}

	if cfg.Betting.DefaultStake != 250 {
		t.Errorf("Expected default stake 250, got %f", cfg.Betting.DefaultStake)
	}

	if cfg.Poller.UpdateInterval != 30 {
		t.Errorf("Expected update interval 30, got %d", cfg.Poller.UpdateInterval)
	}

	if len(cfg.Poller.Sports) != 2 {
		t.Fatalf("Expected 2 sports, got %d", len(cfg.Poller.Sports))
	}
}

func TestLoad_EnabledBooksWhitespace(t *testing.T) {
	os.Clearenv()
	os.Setenv("ENABLED_BOOKS", " DraftKings , FanDuel ,, BetMGM ")
	defer os.Clearenv()

	cfg := config.Load()

	want := []string{"DraftKings", "FanDuel", "BetMGM"}
	if len(cfg.Poller.EnabledBooks) != len(want) {
		t.Fatalf("Expected %d books (empty filtered), got %d", len(want), len(cfg.Poller.EnabledBooks))
	}

	for i, w := range want {
		if cfg.Poller.EnabledBooks[i] != w {
			t.Errorf("Book %d: expected '%s', got '%s'", i, w, cfg.Poller.EnabledBooks[i])
		}
	}
}

func TestLoad_EnabledBooksBracketedForm(t *testing.T) {
	// The deployment bootstrap writes the book list as a JSON-style literal
	os.Clearenv()
	os.Setenv("ENABLED_BOOKS", `["DraftKings","FanDuel","BetMGM","Caesars","PointsBet"]`)
	defer os.Clearenv()

	cfg := config.Load()

	want := []string{"DraftKings", "FanDuel", "BetMGM", "Caesars", "PointsBet"}
	if len(cfg.Poller.EnabledBooks) != len(want) {
		t.Fatalf("Expected %d books, got %d: %v", len(want), len(cfg.Poller.EnabledBooks), cfg.Poller.EnabledBooks)
	}

	for i, w := range want {
		if cfg.Poller.EnabledBooks[i] != w {
			t.Errorf("Book %d: expected '%s', got '%s'", i, w, cfg.Poller.EnabledBooks[i])
		}
	}
}

func TestLoad_KellyPercentConversion(t *testing.T) {
	os.Clearenv()
	os.Setenv("KELLY_MIN_EDGE_PCT", "2.0")
	os.Setenv("KELLY_MAX_PCT", "5.0")
	defer os.Clearenv()

	cfg := config.Load()

	if cfg.Kelly.MinEdge != 0.02 {
		t.Errorf("Expected min edge 0.02, got %f", cfg.Kelly.MinEdge)
	}

	if cfg.Kelly.MaxPct != 0.05 {
		t.Errorf("Expected max pct 0.05, got %f", cfg.Kelly.MaxPct)
	}
}
