package oddsmath

import (
	"fmt"
	"math"
)

// TwoWayMarket represents a two-outcome market with implied probabilities.
type TwoWayMarket struct {
	Prob1 float64 // Probability of outcome 1 (e.g., Over, home team)
	Prob2 float64 // Probability of outcome 2 (e.g., Under, away team)
}

// RemoveVigMultiplicative removes vig from a two-way market by normalizing
// each implied probability against the overround. This is the standard
// method for spreads, totals and two-outcome moneylines.
//
// Example: -110 / -110 implies 52.38% / 52.38% (4.76% vig); fair is 50/50.
func RemoveVigMultiplicative(prob1, prob2 float64) (fair1, fair2 float64, err error) {
	if prob1 <= 0 || prob1 >= 1 || prob2 <= 0 || prob2 >= 1 {
		return 0, 0, fmt.Errorf("probabilities must be between 0 and 1")
	}

	totalProb := prob1 + prob2
	if totalProb <= 1.0 {
		return 0, 0, fmt.Errorf("no vig detected: probabilities sum to <= 1.0")
	}

	fair1 = prob1 / totalProb
	fair2 = prob2 / totalProb

	return fair1, fair2, nil
}

// RemoveVigAdditive removes vig from markets with three or more outcomes
// (soccer moneylines with a draw) by subtracting an equal share of the
// overround from each outcome.
func RemoveVigAdditive(probabilities []float64) ([]float64, error) {
	if len(probabilities) < 2 {
		return nil, fmt.Errorf("need at least 2 outcomes")
	}

	totalProb := 0.0
	for _, prob := range probabilities {
		if prob <= 0 || prob >= 1 {
			return nil, fmt.Errorf("all probabilities must be between 0 and 1")
		}
		totalProb += prob
	}

	if totalProb <= 1.0 {
		return nil, fmt.Errorf("no vig detected: probabilities sum to <= 1.0")
	}

	vigPerOutcome := (totalProb - 1.0) / float64(len(probabilities))

	fairProbs := make([]float64, len(probabilities))
	for i, prob := range probabilities {
		fairProbs[i] = prob - vigPerOutcome
	}

	return fairProbs, nil
}

// SharpConsensus averages the no-vig probabilities of two-way markets across
// sharp books. The result approximates the true market probability.
func SharpConsensus(sharpMarkets []TwoWayMarket) (consensus1, consensus2 float64, err error) {
	if len(sharpMarkets) == 0 {
		return 0, 0, fmt.Errorf("no sharp books provided")
	}

	var sumFair1, sumFair2 float64
	for _, market := range sharpMarkets {
		fair1, fair2, err := RemoveVigMultiplicative(market.Prob1, market.Prob2)
		if err != nil {
			return 0, 0, fmt.Errorf("error removing vig from sharp book: %w", err)
		}
		sumFair1 += fair1
		sumFair2 += fair2
	}

	n := float64(len(sharpMarkets))
	return sumFair1 / n, sumFair2 / n, nil
}

// VigPercentage returns the overround of a market as a percentage.
// 52.38% + 52.38% → 4.76
func VigPercentage(probabilities []float64) (float64, error) {
	if len(probabilities) == 0 {
		return 0, fmt.Errorf("no probabilities provided")
	}

	totalProb := 0.0
	for _, prob := range probabilities {
		if prob <= 0 || prob >= 1 {
			return 0, fmt.Errorf("all probabilities must be between 0 and 1")
		}
		totalProb += prob
	}

	if totalProb <= 1.0 {
		return 0, nil
	}

	return (totalProb - 1.0) * 100.0, nil
}

// RoundProbability rounds a probability to the nearest 0.01%.
func RoundProbability(probability float64) float64 {
	return math.Round(probability*10000) / 10000
}
