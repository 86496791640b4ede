package predictor

import (
	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/oddsmath"
)

// MoneylineConverter derives a moneyline market from its segment's spread
// model output. The spread already encodes the expected margin; the
// moneyline only re-expresses it as an outright win probability at a wider
// sigma, since half and game outcomes are noisier than covers.
type MoneylineConverter struct {
	cfg        MoneylineConfig
	confidence *ConfidenceScorer
}

// NewMoneylineConverter builds a converter for one moneyline market.
func NewMoneylineConverter(cfg MoneylineConfig, confidence *ConfidenceScorer) *MoneylineConverter {
	return &MoneylineConverter{cfg: cfg, confidence: confidence}
}

// BetType identifies the moneyline market this converter produces.
func (c *MoneylineConverter) BetType() models.BetType {
	return c.cfg.BetType
}

// FromSpread converts a spread prediction and the raw game sigma into the
// home-side moneyline market. Value is American odds for the home team.
func (c *MoneylineConverter) FromSpread(spread models.MarketPrediction, gameSigma float64, home, away models.TeamRatings) models.MarketPrediction {
	sigma := gameSigma * c.cfg.SigmaScale
	homeProb := WinProbability(spread.Value, sigma)

	// homeProb is clamped to (0, 1) by WinProbability, so the conversion
	// cannot fail.
	american, _ := oddsmath.ProbabilityToAmerican(homeProb)

	return models.MarketPrediction{
		BetType:    c.cfg.BetType,
		Value:      float64(american),
		Confidence: round3(c.confidence.Score(c.cfg.Confidence, home, away, sigma)),
		Sigma:      round2(sigma),
		WinProb:    models.Float64(round3(homeProb)),
	}
}
