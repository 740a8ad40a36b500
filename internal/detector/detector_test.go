package detector_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/BTheCoderr/theRounders/internal/detector"
	"github.com/BTheCoderr/theRounders/pkg/models"
)

func floatPtr(f float64) *float64 { return &f }

func testConfig() detector.Config {
	return detector.Config{
		MinEdgePercent:     0.02,
		MaxDataAgeSeconds:  60,
		EnableMiddles:      true,
		EnableScalps:       true,
		EnabledMarkets:     []string{"h2h", "spreads", "totals"},
		DefaultStake:       100,
		SteamWindow:        30 * time.Minute,
		SteamMoveThreshold: 10,
		SteamMinBooks:      2,
	}
}

func quote(bookKey, outcome string, price int, point *float64) models.NormalizedOdds {
	implied := impliedProb(price)
	return models.NormalizedOdds{
		RawOdds: models.RawOdds{
			EventID:     "evt1",
			SportKey:    "basketball_nba",
			MarketKey:   "h2h",
			BookKey:     bookKey,
			OutcomeName: outcome,
			Price:       price,
			Point:       point,
			ReceivedAt:  time.Now(),
		},
		DecimalOdds:        decimalOdds(price),
		ImpliedProbability: implied,
	}
}

func decimalOdds(price int) float64 {
	if price > 0 {
		return float64(price)/100 + 1
	}
	return 100/float64(-price) + 1
}

func impliedProb(price int) float64 {
	return 1 / decimalOdds(price)
}

func TestEdgeDetector(t *testing.T) {
	sharp := detector.NewSharpBooks([]string{"pinnacle"})
	d := detector.NewEdgeDetector(testConfig(), sharp)

	// Pinnacle -105 implies 51.2%; DraftKings +100 implies 50% = +2.44% edge
	odds := quote("draftkings", "Boston Celtics", 100, nil)
	market := []models.NormalizedOdds{
		odds,
		quote("pinnacle", "Boston Celtics", -105, nil),
	}

	opps, err := d.Detect(context.Background(), odds, market)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}

	opp := opps[0]
	if opp.OpportunityType != models.OpportunityTypeEdge {
		t.Errorf("expected edge type, got %s", opp.OpportunityType)
	}
	if math.Abs(opp.EdgePercent-2.44) > 0.05 {
		t.Errorf("expected edge ~2.44%%, got %.2f", opp.EdgePercent)
	}
	if len(opp.Legs) != 1 || opp.Legs[0].BookKey != "draftkings" {
		t.Errorf("unexpected legs: %+v", opp.Legs)
	}
	if opp.FairPrice == nil {
		t.Error("expected fair price")
	}
}

func TestEdgeDetectorSkipsSharpBooks(t *testing.T) {
	sharp := detector.NewSharpBooks([]string{"pinnacle"})
	d := detector.NewEdgeDetector(testConfig(), sharp)

	odds := quote("pinnacle", "Boston Celtics", 100, nil)
	market := []models.NormalizedOdds{
		odds,
		quote("circa", "Boston Celtics", -120, nil),
	}

	opps, err := d.Detect(context.Background(), odds, market)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("expected no opportunities at a sharp book, got %d", len(opps))
	}
}

func TestEdgeDetectorBelowThreshold(t *testing.T) {
	sharp := detector.NewSharpBooks([]string{"pinnacle"})
	d := detector.NewEdgeDetector(testConfig(), sharp)

	// Pinnacle -102 vs DraftKings +100: ~1% edge, under the 2% floor
	odds := quote("draftkings", "Boston Celtics", 100, nil)
	market := []models.NormalizedOdds{
		odds,
		quote("pinnacle", "Boston Celtics", -102, nil),
	}

	opps, err := d.Detect(context.Background(), odds, market)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("expected no opportunities below threshold, got %d", len(opps))
	}
}

func TestEdgeDetectorStaleData(t *testing.T) {
	sharp := detector.NewSharpBooks([]string{"pinnacle"})
	d := detector.NewEdgeDetector(testConfig(), sharp)

	odds := quote("draftkings", "Boston Celtics", 100, nil)
	odds.ReceivedAt = time.Now().Add(-5 * time.Minute)
	market := []models.NormalizedOdds{
		odds,
		quote("pinnacle", "Boston Celtics", -110, nil),
	}

	opps, err := d.Detect(context.Background(), odds, market)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("expected no opportunities on stale data, got %d", len(opps))
	}
}

func TestScalpDetector(t *testing.T) {
	d := detector.NewScalpDetector(testConfig())

	// +105 on both sides at different books: 2.44% guaranteed margin
	odds := quote("draftkings", "Boston Celtics", 105, nil)
	market := []models.NormalizedOdds{
		odds,
		quote("fanduel", "Denver Nuggets", 105, nil),
	}

	opps, err := d.Detect(context.Background(), odds, market)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("expected 1 scalp, got %d", len(opps))
	}

	opp := opps[0]
	if opp.OpportunityType != models.OpportunityTypeScalp {
		t.Errorf("expected scalp type, got %s", opp.OpportunityType)
	}
	if math.Abs(opp.EdgePercent-2.44) > 0.05 {
		t.Errorf("expected margin ~2.44%%, got %.2f", opp.EdgePercent)
	}
	if len(opp.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(opp.Legs))
	}

	// Equal prices split the stake evenly
	for _, leg := range opp.Legs {
		if leg.Stake == nil {
			t.Fatal("expected stake on scalp leg")
		}
		if math.Abs(*leg.Stake-50.0) > 0.01 {
			t.Errorf("expected stake 50.00, got %.2f", *leg.Stake)
		}
	}
}

func TestScalpDetectorNoArbitrage(t *testing.T) {
	d := detector.NewScalpDetector(testConfig())

	// -110 both sides never arbs
	odds := quote("draftkings", "Boston Celtics", -110, nil)
	market := []models.NormalizedOdds{
		odds,
		quote("fanduel", "Denver Nuggets", -110, nil),
	}

	opps, err := d.Detect(context.Background(), odds, market)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("expected no scalps at -110/-110, got %d", len(opps))
	}
}

func TestScalpDetectorMismatchedSpreads(t *testing.T) {
	d := detector.NewScalpDetector(testConfig())

	odds := quote("draftkings", "Boston Celtics", 105, floatPtr(-4.5))
	odds.MarketKey = "spreads"
	other := quote("fanduel", "Denver Nuggets", 105, floatPtr(5.5))
	other.MarketKey = "spreads"

	opps, err := d.Detect(context.Background(), odds, []models.NormalizedOdds{odds, other})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("mismatched spread points are not a scalp, got %d", len(opps))
	}
}

func TestMiddleDetector(t *testing.T) {
	sharp := detector.NewSharpBooks([]string{"pinnacle"})
	d := detector.NewMiddleDetector(testConfig(), sharp)

	point1 := floatPtr(-4.5)
	point2 := floatPtr(4.5)

	odds := quote("draftkings", "Boston Celtics", 105, point1)
	odds.MarketKey = "spreads"

	side2 := quote("fanduel", "Denver Nuggets", 105, point2)
	side2.MarketKey = "spreads"

	sharpSide1 := quote("pinnacle", "Boston Celtics", -110, point1)
	sharpSide1.MarketKey = "spreads"
	sharpSide2 := quote("pinnacle", "Denver Nuggets", -110, point2)
	sharpSide2.MarketKey = "spreads"

	market := []models.NormalizedOdds{odds, side2, sharpSide1, sharpSide2}

	opps, err := d.Detect(context.Background(), odds, market)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("expected 1 middle, got %d", len(opps))
	}

	opp := opps[0]
	if opp.OpportunityType != models.OpportunityTypeMiddle {
		t.Errorf("expected middle type, got %s", opp.OpportunityType)
	}
	if len(opp.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(opp.Legs))
	}

	// Both legs at +105 vs a 52.4% consensus: ~7.4% edge each
	if math.Abs(opp.EdgePercent-7.38) > 0.2 {
		t.Errorf("expected avg edge ~7.38%%, got %.2f", opp.EdgePercent)
	}
}

func TestMiddleDetectorWrongMarket(t *testing.T) {
	sharp := detector.NewSharpBooks([]string{"pinnacle"})
	d := detector.NewMiddleDetector(testConfig(), sharp)

	odds := quote("draftkings", "Boston Celtics", 105, nil) // h2h
	opps, err := d.Detect(context.Background(), odds, []models.NormalizedOdds{odds})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("middles only apply to pointed markets, got %d", len(opps))
	}
}

// fakeHistory serves canned line movements per book
type fakeHistory struct {
	moves map[string][]models.LineMovement
}

func (f *fakeHistory) LineHistory(ctx context.Context, eventID, marketKey, bookKey, outcomeName string, since time.Time) ([]models.LineMovement, error) {
	return f.moves[bookKey], nil
}

func steamHistory(bookKey string, first, last int) []models.LineMovement {
	now := time.Now()
	return []models.LineMovement{
		{BookKey: bookKey, Price: first, RecordedAt: now.Add(-20 * time.Minute)},
		{BookKey: bookKey, Price: last, RecordedAt: now.Add(-time.Minute)},
	}
}

func TestSteamDetector(t *testing.T) {
	sharp := detector.NewSharpBooks([]string{"pinnacle"})
	history := &fakeHistory{moves: map[string][]models.LineMovement{
		"pinnacle": steamHistory("pinnacle", -105, -120),
		"betmgm":   steamHistory("betmgm", -105, -118),
	}}
	d := detector.NewSteamDetector(testConfig(), sharp, history)

	// DraftKings hasn't moved while Pinnacle and BetMGM shortened the Celtics
	odds := quote("draftkings", "Boston Celtics", -105, nil)
	market := []models.NormalizedOdds{
		odds,
		quote("pinnacle", "Boston Celtics", -120, nil),
		quote("betmgm", "Boston Celtics", -118, nil),
	}

	opps, err := d.Detect(context.Background(), odds, market)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("expected 1 steam signal, got %d", len(opps))
	}

	opp := opps[0]
	if opp.OpportunityType != models.OpportunityTypeSteam {
		t.Errorf("expected steam type, got %s", opp.OpportunityType)
	}
	if opp.SharpConfidence == nil {
		t.Fatal("expected sharp confidence")
	}
	// Sharp book in the move guarantees at least base + sharp bonus
	if *opp.SharpConfidence < 55 {
		t.Errorf("expected confidence >= 55, got %.1f", *opp.SharpConfidence)
	}
	if *opp.SharpConfidence > 100 {
		t.Errorf("confidence must cap at 100, got %.1f", *opp.SharpConfidence)
	}
	if opp.EdgePercent <= 0 {
		t.Errorf("expected positive edge on the stale quote, got %.2f", opp.EdgePercent)
	}

	// Same window: signal fires only once
	again, err := d.Detect(context.Background(), odds, market)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("expected steam signal to be suppressed inside the window, got %d", len(again))
	}
}

func TestSteamDetectorTooFewBooks(t *testing.T) {
	sharp := detector.NewSharpBooks([]string{"pinnacle"})
	history := &fakeHistory{moves: map[string][]models.LineMovement{
		"pinnacle": steamHistory("pinnacle", -105, -120),
	}}
	d := detector.NewSteamDetector(testConfig(), sharp, history)

	odds := quote("draftkings", "Boston Celtics", -105, nil)
	market := []models.NormalizedOdds{
		odds,
		quote("pinnacle", "Boston Celtics", -120, nil),
	}

	opps, err := d.Detect(context.Background(), odds, market)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("one moving book is not steam, got %d", len(opps))
	}
}

func TestSteamDetectorMovedBookNotSignalled(t *testing.T) {
	sharp := detector.NewSharpBooks([]string{"pinnacle"})
	history := &fakeHistory{moves: map[string][]models.LineMovement{
		"pinnacle": steamHistory("pinnacle", -105, -120),
		"betmgm":   steamHistory("betmgm", -105, -118),
	}}
	d := detector.NewSteamDetector(testConfig(), sharp, history)

	// The quote comes from a book that already moved: no stale price to hit
	odds := quote("betmgm", "Boston Celtics", -118, nil)
	market := []models.NormalizedOdds{
		odds,
		quote("pinnacle", "Boston Celtics", -120, nil),
	}

	opps, err := d.Detect(context.Background(), odds, market)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("expected no signal for a book that already moved, got %d", len(opps))
	}
}
