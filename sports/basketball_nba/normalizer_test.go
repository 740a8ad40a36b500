package basketball_nba_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/BTheCoderr/theRounders/pkg/models"
	"github.com/BTheCoderr/theRounders/sports/basketball_nba"
)

func floatPtr(f float64) *float64 { return &f }

func rawOdds(bookKey, outcome string, price int, point *float64) models.RawOdds {
	return models.RawOdds{
		EventID:          "evt1",
		SportKey:         "basketball_nba",
		MarketKey:        "spreads",
		BookKey:          bookKey,
		OutcomeName:      outcome,
		Price:            price,
		Point:            point,
		VendorLastUpdate: time.Now(),
		ReceivedAt:       time.Now(),
	}
}

func TestNormalizerIdentity(t *testing.T) {
	n := basketball_nba.NewNormalizer()

	if n.GetSportKey() != "basketball_nba" {
		t.Errorf("expected sport key basketball_nba, got %s", n.GetSportKey())
	}
	if n.GetDisplayName() != "NBA Basketball" {
		t.Errorf("unexpected display name %s", n.GetDisplayName())
	}
	if !n.IsSharpBook("pinnacle") {
		t.Error("expected pinnacle to be sharp")
	}
	if n.IsSharpBook("draftkings") {
		t.Error("expected draftkings to be soft")
	}
}

func TestMarketClassification(t *testing.T) {
	n := basketball_nba.NewNormalizer()

	tests := []struct {
		marketKey string
		want      models.MarketType
	}{
		{"h2h", models.MarketTypeTwoWay},
		{"spreads", models.MarketTypeTwoWay},
		{"totals", models.MarketTypeTwoWay},
		{"player_points", models.MarketTypeProps},
		{"something_unknown", models.MarketTypeProps},
	}

	for _, tt := range tests {
		t.Run(tt.marketKey, func(t *testing.T) {
			if got := n.GetMarketType(tt.marketKey); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNormalizeTwoWayVigRemoval(t *testing.T) {
	n := basketball_nba.NewNormalizer()

	raw := rawOdds("draftkings", "Boston Celtics", -110, floatPtr(-4.5))
	market := []models.RawOdds{
		rawOdds("draftkings", "Denver Nuggets", -110, floatPtr(4.5)),
	}

	normalized, err := n.Normalize(context.Background(), raw, market)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	// -110 both sides: implied 0.5238, fair 0.5
	if math.Abs(normalized.ImpliedProbability-0.5238) > 0.001 {
		t.Errorf("expected implied prob ~0.5238, got %.4f", normalized.ImpliedProbability)
	}
	if normalized.NoVigProbability == nil {
		t.Fatal("expected no-vig probability")
	}
	if math.Abs(*normalized.NoVigProbability-0.5) > 0.0001 {
		t.Errorf("expected fair prob 0.5, got %.4f", *normalized.NoVigProbability)
	}
	if normalized.FairPrice == nil || *normalized.FairPrice != 100 {
		t.Errorf("expected fair price +100, got %v", normalized.FairPrice)
	}

	// Paying full vig: edge should be negative
	if normalized.Edge == nil {
		t.Fatal("expected edge")
	}
	if *normalized.Edge >= 0 {
		t.Errorf("expected negative edge at -110/-110, got %.4f", *normalized.Edge)
	}

	if normalized.MarketType != string(models.MarketTypeTwoWay) {
		t.Errorf("expected two_way, got %s", normalized.MarketType)
	}
	if normalized.VigMethod != string(models.VigMethodMultiplicative) {
		t.Errorf("expected multiplicative, got %s", normalized.VigMethod)
	}
}

func TestNormalizeSharpConsensusEdge(t *testing.T) {
	n := basketball_nba.NewNormalizer()

	// Soft book hangs +100 while Pinnacle prices the same side -105
	raw := rawOdds("draftkings", "Boston Celtics", 100, floatPtr(-4.5))
	market := []models.RawOdds{
		rawOdds("pinnacle", "Boston Celtics", -105, floatPtr(-4.5)),
	}

	normalized, err := n.Normalize(context.Background(), raw, market)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if normalized.SharpConsensus == nil {
		t.Fatal("expected sharp consensus")
	}
	wantConsensus := 105.0 / 205.0
	if math.Abs(*normalized.SharpConsensus-wantConsensus) > 0.0001 {
		t.Errorf("expected consensus %.4f, got %.4f", wantConsensus, *normalized.SharpConsensus)
	}

	// Edge vs consensus: 0.5122/0.5 - 1 = +2.44%
	if normalized.Edge == nil {
		t.Fatal("expected edge")
	}
	if math.Abs(*normalized.Edge-0.0244) > 0.001 {
		t.Errorf("expected edge ~0.0244, got %.4f", *normalized.Edge)
	}
}

func TestNormalizeSharpBookSkipsConsensus(t *testing.T) {
	n := basketball_nba.NewNormalizer()

	raw := rawOdds("pinnacle", "Boston Celtics", -110, floatPtr(-4.5))
	market := []models.RawOdds{
		rawOdds("circa", "Boston Celtics", -112, floatPtr(-4.5)),
	}

	normalized, err := n.Normalize(context.Background(), raw, market)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if normalized.SharpConsensus != nil {
		t.Error("sharp book quote should not carry a consensus")
	}
}

func TestNormalizeMissingOppositeSide(t *testing.T) {
	n := basketball_nba.NewNormalizer()

	raw := rawOdds("draftkings", "Boston Celtics", -110, floatPtr(-4.5))

	normalized, err := n.Normalize(context.Background(), raw, nil)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if normalized.NoVigProbability != nil {
		t.Error("expected nil no-vig probability without the opposite side")
	}
	if normalized.FairPrice != nil {
		t.Error("expected nil fair price without the opposite side")
	}
	// Implied probability is always computable
	if normalized.ImpliedProbability == 0 {
		t.Error("expected implied probability to be set")
	}
}

func TestNormalizeTotalsMatchesSamePoint(t *testing.T) {
	n := basketball_nba.NewNormalizer()

	raw := models.RawOdds{
		EventID: "evt1", SportKey: "basketball_nba", MarketKey: "totals",
		BookKey: "draftkings", OutcomeName: "Over", Price: -110, Point: floatPtr(224.5),
	}
	market := []models.RawOdds{
		{EventID: "evt1", SportKey: "basketball_nba", MarketKey: "totals",
			BookKey: "draftkings", OutcomeName: "Under", Price: -110, Point: floatPtr(224.5)},
	}

	normalized, err := n.Normalize(context.Background(), raw, market)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if normalized.NoVigProbability == nil {
		t.Fatal("expected vig removal against the Under at the same total")
	}
	if math.Abs(*normalized.NoVigProbability-0.5) > 0.0001 {
		t.Errorf("expected fair prob 0.5, got %.4f", *normalized.NoVigProbability)
	}
}

func TestNormalizeInvalidPrice(t *testing.T) {
	n := basketball_nba.NewNormalizer()

	raw := rawOdds("draftkings", "Boston Celtics", 0, nil)
	if _, err := n.Normalize(context.Background(), raw, nil); err == nil {
		t.Error("expected error for zero price")
	}
}
