package oddsmath

import "fmt"

// RemoveVigTwoWay strips the bookmaker's overround from a two-way market
// using the multiplicative method and returns fair probabilities plus the
// market hold.
//
// Example: -110 / -110 → 52.38% + 52.38% = 104.76% raw, 50% / 50% fair,
// 4.76% hold.
func RemoveVigTwoWay(priceA, priceB int) (fairA, fairB, hold float64, err error) {
	probA, err := AmericanToImpliedProbability(priceA)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid price A: %w", err)
	}

	probB, err := AmericanToImpliedProbability(priceB)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid price B: %w", err)
	}

	total := probA + probB
	if total <= 0 {
		return 0, 0, 0, fmt.Errorf("degenerate market: probabilities sum to %.4f", total)
	}

	fairA = probA / total
	fairB = probB / total
	if total > 1.0 {
		hold = total - 1.0
	}

	return fairA, fairB, hold, nil
}
