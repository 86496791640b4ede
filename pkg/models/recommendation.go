package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BetTier buckets the final unit count into sizing tiers.
type BetTier string

const (
	BetTierStandard BetTier = "standard"
	BetTierMedium   BetTier = "medium"
	BetTierMax      BetTier = "max"
)

// BettingRecommendation is a sized bet. Only produced when edge, confidence
// and EV all clear the market's configured thresholds.
type BettingRecommendation struct {
	GameID       uuid.UUID `json:"game_id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`

	BetType BetType `json:"bet_type"`
	Pick    Pick    `json:"pick"`
	Line    float64 `json:"line"` // market line from the pick's perspective

	// Edge analysis
	ModelLine  float64 `json:"model_line"`
	MarketLine float64 `json:"market_line"`
	Edge       float64 `json:"edge"` // points, or probability for moneylines
	Confidence float64 `json:"confidence"`

	// Expected value
	EVPercent   float64  `json:"ev_percent"`
	WinProb     float64  `json:"win_prob"`    // model probability for the pick
	MarketProb  float64  `json:"market_prob"` // implied by the pick's price
	PickPrice   int      `json:"pick_price"`  // American odds for the pick side
	MarketNoVig *float64 `json:"market_prob_novig,omitempty"`
	MarketHold  *float64 `json:"market_hold_percent,omitempty"`

	// Kelly sizing
	KellyFraction    float64 `json:"kelly_fraction"` // bankroll fraction after the safety divisor
	RecommendedUnits float64 `json:"recommended_units"`
	BetTier          BetTier `json:"bet_tier"`

	Warnings []string `json:"warnings,omitempty"`

	// Closing line value, filled in by the settlement collaborator after the
	// line closes. The engine itself never writes these.
	ClosingLine           *float64   `json:"closing_line,omitempty"`
	ClosingLineCapturedAt *time.Time `json:"closing_line_captured_at,omitempty"`
	CLV                   *float64   `json:"clv,omitempty"`

	ModelVersion string    `json:"model_version"`
	CreatedAt    time.Time `json:"created_at"`
}

// CalculateCLV records closing line value from the pick's perspective.
// Positive CLV means the bet got a better number than the close.
func (r *BettingRecommendation) CalculateCLV(closingLine float64, capturedAt time.Time) {
	r.ClosingLine = &closingLine
	r.ClosingLineCapturedAt = &capturedAt

	var clv float64
	switch r.Pick {
	case PickHome:
		// Bet HOME -3, closed -5: the market moved toward us, +2.
		clv = r.MarketLine - closingLine
	case PickAway:
		clv = closingLine - r.MarketLine
	case PickOver:
		clv = closingLine - r.MarketLine
	case PickUnder:
		clv = r.MarketLine - closingLine
	}
	r.CLV = &clv
}

// Summary renders a one-line human-readable description of the bet.
func (r *BettingRecommendation) Summary() string {
	period := "FG"
	if r.BetType.IsFirstHalf() {
		period = "1H"
	}

	line := fmt.Sprintf("%.1f", r.Line)
	if r.BetType.IsSpread() {
		line = fmt.Sprintf("%+.1f", r.Line)
	}

	return fmt.Sprintf("%s @ %s | %s %s %s %s | edge=%.2f ev=%+.1f%% | %s (%.1fu)",
		r.AwayTeam, r.HomeTeam, period, r.BetType, r.Pick, line,
		r.Edge, r.EVPercent, r.BetTier, r.RecommendedUnits)
}
