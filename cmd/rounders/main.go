package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BTheCoderr/theRounders/internal/alert"
	"github.com/BTheCoderr/theRounders/internal/bus"
	"github.com/BTheCoderr/theRounders/internal/clv"
	"github.com/BTheCoderr/theRounders/internal/config"
	"github.com/BTheCoderr/theRounders/internal/detector"
	"github.com/BTheCoderr/theRounders/internal/handlers"
	"github.com/BTheCoderr/theRounders/internal/normalizer"
	"github.com/BTheCoderr/theRounders/internal/oddsapi"
	"github.com/BTheCoderr/theRounders/internal/poller"
	"github.com/BTheCoderr/theRounders/internal/ratings"
	"github.com/BTheCoderr/theRounders/internal/registry"
	"github.com/BTheCoderr/theRounders/internal/settler"
	"github.com/BTheCoderr/theRounders/internal/snapshot"
	"github.com/BTheCoderr/theRounders/internal/store"
	"github.com/BTheCoderr/theRounders/internal/ws"
	"github.com/BTheCoderr/theRounders/pkg/models"
	"github.com/BTheCoderr/theRounders/sports/americanfootball_nfl"
	"github.com/BTheCoderr/theRounders/sports/basketball_nba"
)

const (
	ratingsCronSpec = "0 4 * * *" // nightly, after west-coast games settle
	clvInterval     = 10 * time.Minute
	streamMaxLen    = 10000
)

func main() {
	fmt.Println("=== theRounders Betting Dashboard ===")

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		fmt.Printf("❌ Failed to connect to Redis: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Connected to Redis")

	// Store (SQLite by default, Postgres when DATABASE_URL is set)
	st, err := store.Open(cfg.Database.Path, cfg.Database.URL)
	if err != nil {
		fmt.Printf("❌ Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()
	fmt.Printf("✓ Store ready (%s)\n", st.Driver())

	// Sport normalizers
	reg := registry.NewNormalizerRegistry()
	if err := reg.Register(basketball_nba.NewNormalizer()); err != nil {
		fmt.Printf("❌ Failed to register NBA normalizer: %v\n", err)
		os.Exit(1)
	}
	if err := reg.Register(americanfootball_nfl.NewNormalizer()); err != nil {
		fmt.Printf("❌ Failed to register NFL normalizer: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Registered %d sport normalizers\n", reg.Count())

	sportKeys := activeSports(cfg.Poller.Sports, reg)
	if len(sportKeys) == 0 {
		fmt.Println("❌ No configured sport has a registered normalizer")
		os.Exit(1)
	}

	publisher := bus.NewPublisher(redisClient, streamMaxLen)
	cache := snapshot.NewCache()

	// Each stage gets its own consumer group so every stage sees every
	// message; CONSUMER_GROUP namespaces them per deployment
	group := func(stage string) string { return cfg.Stream.ConsumerGroup + "." + stage }

	// Odds ingestion
	oddsClient := oddsapi.New(cfg.OddsAPI.APIKey, cfg.OddsAPI.BaseURL, cfg.OddsAPI.Regions,
		cfg.Poller.EnabledBooks, cfg.OddsAPI.MinRequestInterval)
	oddsPoller := poller.New(oddsClient, publisher, st, cache, sportKeys,
		cfg.Detector.EnabledMarkets, time.Duration(cfg.Poller.UpdateInterval)*time.Second)

	// Normalization
	processor := normalizer.NewProcessor(
		bus.NewConsumer(redisClient, cfg.Stream.ConsumerID, group("normalizer")),
		publisher, reg, st)

	// Detection
	detectorConfig := detector.Config{
		MinEdgePercent:      cfg.Detector.MinEdgePct,
		MaxDataAgeSeconds:   cfg.Detector.MaxDataAgeSeconds,
		EnableMiddles:       cfg.Detector.EnableMiddles,
		EnableScalps:        cfg.Detector.EnableScalps,
		EnabledMarkets:      cfg.Detector.EnabledMarkets,
		DefaultStake:        cfg.Betting.DefaultStake,
		SteamWindow:         time.Duration(cfg.Detector.SteamWindowMinutes) * time.Minute,
		SteamMoveThreshold:  cfg.Detector.SteamMoveThreshold,
		SteamMinBooks:       cfg.Detector.SteamMinBooks,
		PublicFadeThreshold: cfg.Detector.PublicFadeThreshold,
	}
	engine := detector.NewEngine(
		bus.NewConsumer(redisClient, cfg.Stream.ConsumerID, group("detector")),
		publisher, st, detectorConfig,
		detector.NewSharpBooks(cfg.Detector.SharpBooks))

	// Power ratings fed by settlement
	ratingsEngine, err := ratings.NewEngine(ctx, st, sportKeys)
	if err != nil {
		fmt.Printf("❌ Failed to load ratings: %v\n", err)
		os.Exit(1)
	}
	ratingsCron, err := ratingsEngine.StartCron(ratingsCronSpec)
	if err != nil {
		fmt.Printf("❌ Failed to schedule rating recompute: %v\n", err)
		os.Exit(1)
	}
	defer ratingsCron.Stop()

	// Closing-line value
	clvCalc := clv.NewCalculator(st)

	// Settlement, feeding ratings and CLV
	betSettler := settler.New(st, oddsClient,
		time.Duration(cfg.Poller.UpdateInterval)*time.Second*5, ratingsEngine, clvCalc)

	// WebSocket fan-out
	hub := ws.NewHub()
	bridge := ws.NewBridge(
		bus.NewConsumer(redisClient, cfg.Stream.ConsumerID, group("ws-bridge")),
		hub, cache)

	// Alerts (optional, needs a webhook)
	var alertService *alert.Service
	if cfg.Alert.SlackWebhookURL != "" {
		notifier := alert.NewSlackNotifier(cfg.Alert.SlackWebhookURL)
		alertService = alert.NewService(
			bus.NewConsumer(redisClient, cfg.Stream.ConsumerID, group("alerts")),
			alert.NewFilter(cfg.Alert.MinEdgePct, cfg.Alert.MaxDataAgeSeconds),
			alert.NewDeduplicator(redisClient, time.Duration(cfg.Alert.DedupTTLMinutes)*time.Minute),
			alert.NewTokenBucket(redisClient, cfg.Alert.MaxAlertsPerMin),
			notifier)
		if err := notifier.SendStartup(ctx, cfg.Alert.MinEdgePct, cfg.Alert.MaxDataAgeSeconds, cfg.Alert.MaxAlertsPerMin); err != nil {
			fmt.Printf("[Alerts] startup notification failed: %v\n", err)
		}
	} else {
		fmt.Println("  Slack alerts disabled (no SLACK_WEBHOOK_URL)")
	}

	// HTTP API
	defaults := models.Settings{
		PaperTrading:  cfg.Betting.PaperTrading,
		DefaultStake:  cfg.Betting.DefaultStake,
		Bankroll:      cfg.Kelly.DefaultBankroll,
		KellyFraction: cfg.Kelly.Fraction,
		MinEdgePct:    cfg.Kelly.MinEdge * 100,
	}
	api := handlers.New(st, cache, ratingsEngine, clvCalc, defaults,
		cfg.Server.CORSOrigins, ws.NewHandler(ctx, hub))
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.Router(),
	}

	// Start everything
	errChan := make(chan error, 4)

	go hub.Run(ctx)
	go func() { errChan <- bridge.Start(ctx, sportKeys) }()
	go func() { errChan <- processor.Start(ctx) }()
	go func() { errChan <- engine.Start(ctx, sportKeys) }()
	go oddsPoller.Start(ctx)
	go betSettler.Start(ctx)
	go runCLVLoop(ctx, clvCalc)
	if alertService != nil {
		go func() { errChan <- alertService.Start(ctx) }()
	}
	go reportMetrics(ctx, processor, engine, oddsPoller, hub)

	go func() {
		fmt.Printf("✓ API listening on %s\n", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	fmt.Printf("✓ Dashboard running: sports=%v markets=%v interval=%ds\n",
		sportKeys, cfg.Detector.EnabledMarkets, cfg.Poller.UpdateInterval)

	// Wait for shutdown signal or fatal error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		fmt.Printf("\n⚠️  Received signal: %v\n", sig)
	case err := <-errChan:
		if err != nil && err != context.Canceled {
			fmt.Printf("❌ Fatal error: %v\n", err)
		}
	}

	fmt.Println("🛑 Shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("⚠️  Error shutting down HTTP server: %v\n", err)
	}

	if err := redisClient.Close(); err != nil {
		fmt.Printf("⚠️  Error closing Redis: %v\n", err)
	}

	fmt.Println("✓ Shutdown complete")
}

// activeSports keeps only configured sports that have a normalizer
func activeSports(configured []string, reg *registry.NormalizerRegistry) []string {
	var keys []string
	for _, sportKey := range configured {
		if _, ok := reg.Get(sportKey); ok {
			keys = append(keys, sportKey)
			continue
		}
		fmt.Printf("⚠️  Skipping sport %s: no normalizer registered\n", sportKey)
	}
	return keys
}

// runCLVLoop periodically scores pending bets against captured closing lines
func runCLVLoop(ctx context.Context, calc *clv.Calculator) {
	ticker := time.NewTicker(clvInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := calc.ProcessPending(ctx); err != nil {
				fmt.Printf("[CLV] scoring pass failed: %v\n", err)
			}
		}
	}
}

func reportMetrics(ctx context.Context, processor *normalizer.Processor, engine *detector.Engine, oddsPoller *poller.Poller, hub *ws.Hub) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processed, procErrors := processor.Metrics()
			detected, detectErrors := engine.Metrics()
			polls, pollErrors := oddsPoller.Metrics()
			fmt.Printf("📊 Metrics: polls=%d normalized=%d detected=%d ws_clients=%d errors=%d/%d/%d\n",
				polls, processed, detected, hub.ClientCount(),
				pollErrors, procErrors, detectErrors)
		}
	}
}
