package oddsmath_test

import (
	"math"
	"testing"

	"github.com/BTheCoderr/theRounders/pkg/oddsmath"
)

func TestKelly(t *testing.T) {
	tests := []struct {
		name     string
		winProb  float64
		american int
		want     float64
	}{
		// f = (b*p - q) / b
		{"55% at +100", 0.55, 100, 0.10},
		{"60% at +100", 0.60, 100, 0.20},
		{"55% at -110", 0.55, -110, 0.055},
		{"30% at +300", 0.30, 300, 0.0667},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := oddsmath.Kelly(tt.winProb, tt.american)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Kelly(%f, %d) = %f, want %f", tt.winProb, tt.american, got, tt.want)
			}
		})
	}
}

func TestKelly_NoEdge(t *testing.T) {
	// 50% at -110 is -EV; Kelly must refuse
	if _, err := oddsmath.Kelly(0.50, -110); err == nil {
		t.Error("expected error for negative Kelly but got none")
	}
}

func TestFractionalKelly(t *testing.T) {
	// Full Kelly is 0.20 at 60%/+100; quarter Kelly is 0.05
	got, err := oddsmath.FractionalKelly(0.60, 100, 0.25, 0.10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(got-0.05) > 0.0001 {
		t.Errorf("FractionalKelly = %f, want 0.05", got)
	}
}

func TestFractionalKelly_Cap(t *testing.T) {
	// Full Kelly 0.20, half Kelly 0.10, capped at 0.05
	got, err := oddsmath.FractionalKelly(0.60, 100, 0.50, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != 0.05 {
		t.Errorf("FractionalKelly = %f, want cap 0.05", got)
	}
}

func TestIsArbitrage(t *testing.T) {
	tests := []struct {
		name       string
		prices     []int
		wantArb    bool
		wantMargin float64
	}{
		{"+105/+105 is an arb", []int{105, 105}, true, 2.44},
		{"-110/-110 is not", []int{-110, -110}, false, 0},
		{"+100/-105 is not", []int{100, -105}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isArb, margin, err := oddsmath.IsArbitrage(tt.prices)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if isArb != tt.wantArb {
				t.Errorf("IsArbitrage(%v) = %t, want %t", tt.prices, isArb, tt.wantArb)
			}

			if tt.wantArb && math.Abs(margin-tt.wantMargin) > 0.01 {
				t.Errorf("margin = %f, want %f", margin, tt.wantMargin)
			}
		})
	}
}

func TestArbitrageStakes(t *testing.T) {
	stakes, err := oddsmath.ArbitrageStakes(1000, []int{105, 105})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stakes) != 2 {
		t.Fatalf("expected 2 stakes, got %d", len(stakes))
	}

	// Symmetric prices split evenly
	if math.Abs(stakes[0]-stakes[1]) > 0.01 {
		t.Errorf("expected even split, got %v", stakes)
	}

	// Stakes sum to the total
	if math.Abs((stakes[0]+stakes[1])-1000) > 0.01 {
		t.Errorf("stakes sum to %f, want 1000", stakes[0]+stakes[1])
	}

	// Payout is equal either way and exceeds the total stake
	payout := stakes[0] * 2.05
	if payout <= 1000 {
		t.Errorf("arbitrage payout %f does not exceed stake", payout)
	}
}

func TestEVDollar(t *testing.T) {
	// $100 at +100 with 55% fair probability: EV = 0.55*100 - 0.45*100 = $10
	ev, err := oddsmath.EVDollar(100, 100, 0.55)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(ev-10.0) > 0.001 {
		t.Errorf("EVDollar = %f, want 10.0", ev)
	}
}
