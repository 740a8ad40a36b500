// Package kelly sizes stakes for detected opportunities using the Kelly
// criterion for +EV bets and proportional splits for arbitrage.
package kelly

import (
	"fmt"
	"math"

	"github.com/BTheCoderr/theRounders/pkg/models"
	"github.com/BTheCoderr/theRounders/pkg/oddsmath"
)

// Params control stake sizing
type Params struct {
	Bankroll      float64
	KellyFraction float64 // e.g. 0.25 for quarter Kelly
	MinEdge       float64 // decimal, e.g. 0.02
	MaxStakePct   float64 // cap per bet as fraction of bankroll
	ScalpStake    float64 // total stake to split across scalp legs
}

// Recommendation is a sized betting plan for one opportunity
type Recommendation struct {
	Type             models.OpportunityType `json:"type"`
	TotalStake       float64                `json:"total_stake"`
	GuaranteedProfit *float64               `json:"guaranteed_profit,omitempty"`
	ProfitPercent    *float64               `json:"profit_pct,omitempty"`
	Legs             []LegPlan              `json:"legs"`
	BestCase         string                 `json:"best_case,omitempty"`
	WorstCase        string                 `json:"worst_case,omitempty"`
	Instructions     string                 `json:"instructions,omitempty"`
	Confidence       string                 `json:"confidence,omitempty"`
	Warnings         []string               `json:"warnings"`
}

// LegPlan is the stake recommendation for a single leg
type LegPlan struct {
	Book            string   `json:"book"`
	Outcome         string   `json:"outcome"`
	Stake           float64  `json:"stake"`
	PotentialReturn *float64 `json:"potential_return,omitempty"`
	FullKelly       *float64 `json:"full_kelly,omitempty"`
	EdgePercent     *float64 `json:"edge_pct,omitempty"`
	Explanation     string   `json:"explanation"`
}

// Recommend sizes an opportunity according to its type. Edge and steam bets
// get fractional Kelly sizing, middles get independent Kelly per side, and
// scalps get the stake split that equalizes returns.
func Recommend(opp models.Opportunity, params Params) (*Recommendation, error) {
	if params.Bankroll <= 0 {
		return nil, fmt.Errorf("bankroll must be positive")
	}

	switch opp.OpportunityType {
	case models.OpportunityTypeEdge, models.OpportunityTypeSteam:
		return edgeStake(opp, params)
	case models.OpportunityTypeMiddle:
		return middleStakes(opp, params)
	case models.OpportunityTypeScalp:
		return scalpStakes(opp, params)
	default:
		return nil, fmt.Errorf("unknown opportunity type: %s", opp.OpportunityType)
	}
}

func edgeStake(opp models.Opportunity, params Params) (*Recommendation, error) {
	if len(opp.Legs) != 1 {
		return nil, fmt.Errorf("%s bet must have exactly 1 leg, got %d", opp.OpportunityType, len(opp.Legs))
	}

	leg := opp.Legs[0]
	edgePercent := opp.EdgePercent

	if edgePercent < params.MinEdge*100 {
		return nil, fmt.Errorf("edge %.2f%% is below minimum %.1f%%", edgePercent, params.MinEdge*100)
	}

	fairProb, err := fairProbability(leg.Price, edgePercent)
	if err != nil {
		return nil, err
	}

	fullKelly, err := oddsmath.Kelly(fairProb, leg.Price)
	if err != nil {
		return nil, err
	}
	sizedKelly, err := oddsmath.FractionalKelly(fairProb, leg.Price, params.KellyFraction, params.MaxStakePct)
	if err != nil {
		return nil, err
	}

	fullStake := round(params.Bankroll * fullKelly)
	stake := round(params.Bankroll * sizedKelly)

	confidence := "medium"
	switch {
	case edgePercent > 5.0:
		confidence = "high"
	case edgePercent < 2.0:
		confidence = "low"
	}

	var warnings []string
	if edgePercent < 2.0 {
		warnings = append(warnings, "Edge is below 2% - consider passing")
	}
	if stake > params.Bankroll*0.05 {
		warnings = append(warnings, "Recommended bet is >5% of bankroll - high variance")
	}
	if opp.OpportunityType == models.OpportunityTypeSteam {
		warnings = append(warnings, "Steam edge is inferred from sharp movement - verify the line is still available")
	}

	return &Recommendation{
		Type:       opp.OpportunityType,
		TotalStake: stake,
		Legs: []LegPlan{{
			Book:        leg.BookKey,
			Outcome:     fmt.Sprintf("%s @ %+d", leg.OutcomeName, leg.Price),
			Stake:       stake,
			FullKelly:   &fullStake,
			EdgePercent: &edgePercent,
			Explanation: fmt.Sprintf("1/%.0f Kelly sizing", 1.0/params.KellyFraction),
		}},
		Confidence: confidence,
		Warnings:   warnings,
	}, nil
}

func middleStakes(opp models.Opportunity, params Params) (*Recommendation, error) {
	if len(opp.Legs) != 2 {
		return nil, fmt.Errorf("middle bet must have exactly 2 legs, got %d", len(opp.Legs))
	}

	legs := make([]LegPlan, 2)
	totalStake := 0.0

	// Each side is independently +EV, so each gets its own Kelly stake
	for i, leg := range opp.Legs {
		edgePercent := opp.EdgePercent / 2.0
		if leg.LegEdgePercent != nil {
			edgePercent = *leg.LegEdgePercent
		}

		if edgePercent < params.MinEdge*100 {
			return nil, fmt.Errorf("leg %d edge %.2f%% is below minimum %.1f%%", i+1, edgePercent, params.MinEdge*100)
		}

		fairProb, err := fairProbability(leg.Price, edgePercent)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i+1, err)
		}

		fullKelly, err := oddsmath.Kelly(fairProb, leg.Price)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i+1, err)
		}
		sizedKelly, err := oddsmath.FractionalKelly(fairProb, leg.Price, params.KellyFraction, params.MaxStakePct)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i+1, err)
		}

		fullStake := round(params.Bankroll * fullKelly)
		stake := round(params.Bankroll * sizedKelly)
		totalStake += stake

		legEdge := edgePercent
		legs[i] = LegPlan{
			Book:        leg.BookKey,
			Outcome:     fmt.Sprintf("%s @ %+d", leg.OutcomeName, leg.Price),
			Stake:       stake,
			FullKelly:   &fullStake,
			EdgePercent: &legEdge,
			Explanation: fmt.Sprintf("1/%.0f Kelly for %s", 1.0/params.KellyFraction, leg.OutcomeName),
		}
	}

	var warnings []string
	if opp.EdgePercent < 2.0 {
		warnings = append(warnings, "Combined edge <2% - consider passing")
	}
	if totalStake > params.Bankroll*0.10 {
		warnings = append(warnings, "Total position is >10% of bankroll")
	}

	return &Recommendation{
		Type:         models.OpportunityTypeMiddle,
		TotalStake:   round(totalStake),
		Legs:         legs,
		BestCase:     "Both win if the final lands in the middle window",
		WorstCase:    "One side wins (still +EV)",
		Instructions: "Bet both sides independently",
		Warnings:     warnings,
	}, nil
}

func scalpStakes(opp models.Opportunity, params Params) (*Recommendation, error) {
	if len(opp.Legs) < 2 {
		return nil, fmt.Errorf("scalp requires at least 2 legs, got %d", len(opp.Legs))
	}

	totalStake := params.ScalpStake
	if totalStake <= 0 {
		totalStake = params.Bankroll * params.MaxStakePct
	}

	prices := make([]int, len(opp.Legs))
	for i, leg := range opp.Legs {
		prices[i] = leg.Price
	}

	isArb, margin, err := oddsmath.IsArbitrage(prices)
	if err != nil {
		return nil, err
	}
	if !isArb {
		return nil, fmt.Errorf("no arbitrage exists across legs")
	}

	stakes, err := oddsmath.ArbitrageStakes(totalStake, prices)
	if err != nil {
		return nil, err
	}

	// Any leg's return works; stakes were chosen to equalize them
	firstDecimal, err := oddsmath.AmericanToDecimal(prices[0])
	if err != nil {
		return nil, err
	}
	potentialReturn := round(stakes[0] * firstDecimal)
	guaranteedProfit := round(potentialReturn - totalStake)

	legs := make([]LegPlan, len(opp.Legs))
	for i, leg := range opp.Legs {
		decimal, err := oddsmath.AmericanToDecimal(leg.Price)
		if err != nil {
			return nil, err
		}
		legReturn := round(stakes[i] * decimal)
		legs[i] = LegPlan{
			Book:            leg.BookKey,
			Outcome:         fmt.Sprintf("%s @ %+d", leg.OutcomeName, leg.Price),
			Stake:           round(stakes[i]),
			PotentialReturn: &legReturn,
			Explanation:     fmt.Sprintf("Stake to guarantee $%.2f profit", guaranteedProfit),
		}
	}

	profitPercent := margin
	var warnings []string
	if profitPercent < 1.0 {
		warnings = append(warnings, "Low profit margin - consider transaction costs")
	}
	if totalStake > 1000 {
		warnings = append(warnings, "Book limits may prevent the full stake")
	}

	return &Recommendation{
		Type:             models.OpportunityTypeScalp,
		TotalStake:       totalStake,
		GuaranteedProfit: &guaranteedProfit,
		ProfitPercent:    &profitPercent,
		Legs:             legs,
		Instructions:     "Place all legs simultaneously for guaranteed profit",
		Warnings:         warnings,
	}, nil
}

// fairProbability back-solves the fair win probability from an edge over
// the offered price: edge = fair/implied - 1
func fairProbability(price int, edgePercent float64) (float64, error) {
	implied, err := oddsmath.AmericanToImpliedProbability(price)
	if err != nil {
		return 0, err
	}
	fair := (edgePercent/100 + 1.0) * implied
	if fair >= 1.0 {
		return 0, fmt.Errorf("invalid fair probability %.4f", fair)
	}
	return fair, nil
}

func round(val float64) float64 {
	return math.Round(val*100) / 100
}
