package models

// BetType identifies one of the six independent markets.
type BetType string

const (
	BetTypeSpread      BetType = "SPREAD"
	BetTypeTotal       BetType = "TOTAL"
	BetTypeMoneyline   BetType = "MONEYLINE"
	BetTypeSpread1H    BetType = "SPREAD_1H"
	BetTypeTotal1H     BetType = "TOTAL_1H"
	BetTypeMoneyline1H BetType = "MONEYLINE_1H"
)

// AllBetTypes lists every market the engine predicts, in prediction order.
var AllBetTypes = []BetType{
	BetTypeSpread, BetTypeTotal, BetTypeMoneyline,
	BetTypeSpread1H, BetTypeTotal1H, BetTypeMoneyline1H,
}

// IsFirstHalf reports whether the market covers the first-half segment.
func (b BetType) IsFirstHalf() bool {
	return b == BetTypeSpread1H || b == BetTypeTotal1H || b == BetTypeMoneyline1H
}

// IsSpread reports whether the market is a point-spread market.
func (b BetType) IsSpread() bool {
	return b == BetTypeSpread || b == BetTypeSpread1H
}

// IsTotal reports whether the market is a total-points market.
func (b BetType) IsTotal() bool {
	return b == BetTypeTotal || b == BetTypeTotal1H
}

// IsMoneyline reports whether the market is a moneyline market.
func (b BetType) IsMoneyline() bool {
	return b == BetTypeMoneyline || b == BetTypeMoneyline1H
}

// Pick is the side of a market a recommendation is on.
type Pick string

const (
	PickHome  Pick = "HOME"
	PickAway  Pick = "AWAY"
	PickOver  Pick = "OVER"
	PickUnder Pick = "UNDER"
)

// MarketOdds is the bookmaker consensus for one game. All spreads are from
// the HOME team's perspective: negative spread = home favored. Absent lines
// are nil; the engine degrades to "no recommendation" for that market only.
type MarketOdds struct {
	// Full game
	Spread          *float64 `json:"spread,omitempty"`
	SpreadHomePrice *int     `json:"spread_home_price,omitempty"`
	SpreadAwayPrice *int     `json:"spread_away_price,omitempty"`
	Total           *float64 `json:"total,omitempty"`
	OverPrice       *int     `json:"over_price,omitempty"`
	UnderPrice      *int     `json:"under_price,omitempty"`
	MoneylineHome   *int     `json:"moneyline_home,omitempty"`
	MoneylineAway   *int     `json:"moneyline_away,omitempty"`

	// First half
	Spread1H          *float64 `json:"spread_1h,omitempty"`
	Spread1HHomePrice *int     `json:"spread_1h_home_price,omitempty"`
	Spread1HAwayPrice *int     `json:"spread_1h_away_price,omitempty"`
	Total1H           *float64 `json:"total_1h,omitempty"`
	OverPrice1H       *int     `json:"over_price_1h,omitempty"`
	UnderPrice1H      *int     `json:"under_price_1h,omitempty"`
	Moneyline1HHome   *int     `json:"moneyline_1h_home,omitempty"`
	Moneyline1HAway   *int     `json:"moneyline_1h_away,omitempty"`

	// Sharp book reference lines (Pinnacle/Circa), when captured upstream
	SharpSpread *float64 `json:"sharp_spread,omitempty"`
	SharpTotal  *float64 `json:"sharp_total,omitempty"`
}

// Line returns the consensus line for a spread or total market, or nil when
// the market is not offered. Moneyline markets have prices, not lines.
func (m MarketOdds) Line(bt BetType) *float64 {
	switch bt {
	case BetTypeSpread:
		return m.Spread
	case BetTypeTotal:
		return m.Total
	case BetTypeSpread1H:
		return m.Spread1H
	case BetTypeTotal1H:
		return m.Total1H
	}
	return nil
}

// Prices returns the American odds pair (side for HOME/OVER, side for
// AWAY/UNDER) for a market. Either pointer may be nil.
func (m MarketOdds) Prices(bt BetType) (*int, *int) {
	switch bt {
	case BetTypeSpread:
		return m.SpreadHomePrice, m.SpreadAwayPrice
	case BetTypeTotal:
		return m.OverPrice, m.UnderPrice
	case BetTypeMoneyline:
		return m.MoneylineHome, m.MoneylineAway
	case BetTypeSpread1H:
		return m.Spread1HHomePrice, m.Spread1HAwayPrice
	case BetTypeTotal1H:
		return m.OverPrice1H, m.UnderPrice1H
	case BetTypeMoneyline1H:
		return m.Moneyline1HHome, m.Moneyline1HAway
	}
	return nil, nil
}
