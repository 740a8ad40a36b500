package oddsmath

import "fmt"

// Edge calculates the percentage edge of offered odds against a fair probability.
// Edge = (fair / implied) - 1; positive means +EV.
func Edge(fairProbability, impliedProbability float64) (float64, error) {
	if fairProbability <= 0 || fairProbability >= 1 {
		return 0, fmt.Errorf("fair probability must be between 0 and 1")
	}

	if impliedProbability <= 0 || impliedProbability >= 1 {
		return 0, fmt.Errorf("implied probability must be between 0 and 1")
	}

	return (fairProbability / impliedProbability) - 1.0, nil
}

// EVDollar calculates expected value in dollars for a stake at offered odds.
// EV = (P(win) × net win) - (P(lose) × stake)
func EVDollar(stake float64, offeredOdds int, fairProbability float64) (float64, error) {
	decimal, err := AmericanToDecimal(offeredOdds)
	if err != nil {
		return 0, err
	}

	winAmount := stake*decimal - stake
	loseProb := 1.0 - fairProbability

	return (fairProbability * winAmount) - (loseProb * stake), nil
}

// IsArbitrage reports whether best prices on every outcome of a market
// guarantee a profit. An arbitrage exists when the sum of inverse decimal
// odds is below 1; the second return value is the profit margin percentage.
func IsArbitrage(prices []int) (bool, float64, error) {
	if len(prices) < 2 {
		return false, 0, fmt.Errorf("need at least 2 outcomes")
	}

	inverseSum := 0.0
	for _, price := range prices {
		decimal, err := AmericanToDecimal(price)
		if err != nil {
			return false, 0, err
		}
		inverseSum += 1.0 / decimal
	}

	if inverseSum >= 1.0 {
		return false, 0, nil
	}

	return true, (1.0 - inverseSum) * 100.0, nil
}

// ArbitrageStakes splits a total stake across outcomes so every outcome
// returns the same payout: stake_i = total / (decimal_i × Σ 1/decimal).
func ArbitrageStakes(totalStake float64, prices []int) ([]float64, error) {
	if totalStake <= 0 {
		return nil, fmt.Errorf("total stake must be positive")
	}

	decimals := make([]float64, len(prices))
	inverseSum := 0.0
	for i, price := range prices {
		decimal, err := AmericanToDecimal(price)
		if err != nil {
			return nil, err
		}
		decimals[i] = decimal
		inverseSum += 1.0 / decimal
	}

	stakes := make([]float64, len(prices))
	for i, decimal := range decimals {
		stakes[i] = totalStake / (decimal * inverseSum)
	}

	return stakes, nil
}
