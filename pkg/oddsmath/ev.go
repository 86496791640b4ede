package oddsmath

import "fmt"

// ExpectedValuePercent computes expected value per unit risked, as a
// percentage, for a bet with win probability p at the given American price.
//
// For -110 the bettor risks 110 to win 100; for +150, risks 100 to win 150.
func ExpectedValuePercent(p float64, price int) (float64, error) {
	if p <= 0 || p >= 1 {
		return 0, fmt.Errorf("invalid probability: must be between 0 and 1")
	}
	if price == 0 {
		return 0, fmt.Errorf("invalid American odds: cannot be 0")
	}

	var win, loss float64
	if price > 0 {
		win = float64(price)
		loss = 100.0
	} else {
		win = 100.0
		loss = float64(-price)
	}

	ev := p*win - (1.0-p)*loss
	return ev / loss * 100.0, nil
}

// KellyFraction computes the full Kelly criterion stake fraction
// f* = (b·p − q) / b, where b is net decimal odds. Returns 0 when the bet
// has no positive expectation.
func KellyFraction(p float64, price int) (float64, error) {
	if p <= 0 || p >= 1 {
		return 0, fmt.Errorf("invalid probability: must be between 0 and 1")
	}

	decimal, err := AmericanToDecimal(price)
	if err != nil {
		return 0, err
	}

	b := decimal - 1.0
	if b <= 0 {
		return 0, fmt.Errorf("invalid net odds: %.4f", b)
	}

	kelly := (b*p - (1.0 - p)) / b
	if kelly < 0 {
		return 0, nil
	}

	return kelly, nil
}
