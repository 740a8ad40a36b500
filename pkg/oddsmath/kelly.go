package oddsmath

import "fmt"

// Kelly calculates the full Kelly Criterion fraction of bankroll to stake.
//
//	f = (b·p - q) / b
//
// where b is net decimal odds, p the win probability and q = 1-p.
// Returns an error when the bet has no edge (f <= 0).
func Kelly(winProbability float64, americanOdds int) (float64, error) {
	if winProbability <= 0 || winProbability >= 1 {
		return 0, fmt.Errorf("win probability must be between 0 and 1")
	}

	decimal, err := AmericanToDecimal(americanOdds)
	if err != nil {
		return 0, err
	}

	b := decimal - 1.0
	p := winProbability
	q := 1.0 - winProbability

	kelly := (b*p - q) / b
	if kelly <= 0 {
		return 0, fmt.Errorf("negative Kelly: %.4f (no edge)", kelly)
	}

	return kelly, nil
}

// FractionalKelly applies a Kelly fraction and caps the result at maxPct
// of bankroll. Fractional sizing reduces variance at the cost of growth.
func FractionalKelly(winProbability float64, americanOdds int, fraction, maxPct float64) (float64, error) {
	if fraction <= 0 || fraction > 1.0 {
		return 0, fmt.Errorf("kelly fraction must be between 0 and 1")
	}

	full, err := Kelly(winProbability, americanOdds)
	if err != nil {
		return 0, err
	}

	sized := full * fraction
	if maxPct > 0 && sized > maxPct {
		sized = maxPct
	}

	return sized, nil
}
