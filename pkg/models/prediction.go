package models

import (
	"time"

	"github.com/google/uuid"
)

// MarketPrediction is a single market's model output. Value is a line for
// spread/total markets and American odds for moneyline markets. Sigma is the
// standard deviation used for probability conversion. WinProb is set for
// spread and moneyline markets only.
type MarketPrediction struct {
	BetType    BetType  `json:"bet_type"`
	Value      float64  `json:"value"`
	Confidence float64  `json:"confidence"` // 0..market ceiling
	Sigma      float64  `json:"sigma"`
	WinProb    *float64 `json:"win_prob,omitempty"` // home-side probability

	// Edge vs market, nil when the market line was absent
	Edge *float64 `json:"edge,omitempty"`
}

// GamePrediction bundles the six independent market predictions for a game.
type GamePrediction struct {
	GameID       uuid.UUID `json:"game_id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`

	// Full game
	Spread    MarketPrediction `json:"spread"`
	Total     MarketPrediction `json:"total"`
	Moneyline MarketPrediction `json:"moneyline"` // home-side American odds

	// First half
	Spread1H    MarketPrediction `json:"spread_1h"`
	Total1H     MarketPrediction `json:"total_1h"`
	Moneyline1H MarketPrediction `json:"moneyline_1h"`

	// Implied scores derived from spread+total for consistency
	HomeScore   float64 `json:"home_score"`
	AwayScore   float64 `json:"away_score"`
	HomeScore1H float64 `json:"home_score_1h"`
	AwayScore1H float64 `json:"away_score_1h"`

	ModelVersion string    `json:"model_version"`
	CreatedAt    time.Time `json:"created_at"`
}

// Market returns the prediction for a bet type.
func (p *GamePrediction) Market(bt BetType) MarketPrediction {
	switch bt {
	case BetTypeSpread:
		return p.Spread
	case BetTypeTotal:
		return p.Total
	case BetTypeMoneyline:
		return p.Moneyline
	case BetTypeSpread1H:
		return p.Spread1H
	case BetTypeTotal1H:
		return p.Total1H
	case BetTypeMoneyline1H:
		return p.Moneyline1H
	}
	return MarketPrediction{}
}

// SetMarket replaces the prediction for a bet type.
func (p *GamePrediction) SetMarket(bt BetType, mp MarketPrediction) {
	switch bt {
	case BetTypeSpread:
		p.Spread = mp
	case BetTypeTotal:
		p.Total = mp
	case BetTypeMoneyline:
		p.Moneyline = mp
	case BetTypeSpread1H:
		p.Spread1H = mp
	case BetTypeTotal1H:
		p.Total1H = mp
	case BetTypeMoneyline1H:
		p.Moneyline1H = mp
	}
}

// GameSnapshot is the engine's input record for one game: both teams'
// ratings plus the current market consensus. Published by the ratings and
// odds collaborators onto the games stream; the engine never mutates it.
type GameSnapshot struct {
	GameID       uuid.UUID   `json:"game_id"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	CommenceTime time.Time   `json:"commence_time"`
	IsNeutral    bool        `json:"is_neutral"`
	HomeRatings  TeamRatings `json:"home_ratings"`
	AwayRatings  TeamRatings `json:"away_ratings"`
	Odds         *MarketOdds `json:"odds,omitempty"`
	RatingDate   string      `json:"rating_date,omitempty"`
}
