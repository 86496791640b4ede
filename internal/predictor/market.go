package predictor

import (
	"fmt"
	"math"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
)

// SegmentMarketModel is one independently calibrated line market: a spread
// or a total over a game segment. The four line markets are four instances
// of this type with their own constants, never derived from each other. A
// spread model and a total model over the same segment will disagree
// slightly about implied scores, and that is intentional: each market is
// calibrated against its own closing lines.
type SegmentMarketModel struct {
	cfg        SegmentModelConfig
	matchup    *MatchupCalculator
	variance   *VarianceEstimator
	confidence *ConfidenceScorer
}

// NewSegmentMarketModel wires one market model from its config and the
// shared calculators. Returns an error when the config's bet type is a
// moneyline, which this model cannot produce.
func NewSegmentMarketModel(
	cfg SegmentModelConfig,
	matchup *MatchupCalculator,
	variance *VarianceEstimator,
	confidence *ConfidenceScorer,
) (*SegmentMarketModel, error) {
	if cfg.BetType.IsMoneyline() {
		return nil, fmt.Errorf("segment market model cannot produce moneyline market %s", cfg.BetType)
	}
	return &SegmentMarketModel{
		cfg:        cfg,
		matchup:    matchup,
		variance:   variance,
		confidence: confidence,
	}, nil
}

// BetType identifies the market this model predicts.
func (m *SegmentMarketModel) BetType() models.BetType {
	return m.cfg.BetType
}

// Predict produces this market's line for the matchup. Inputs must already
// be validated; Predict itself never errors. isNeutral zeroes the home
// court constant, nothing else.
func (m *SegmentMarketModel) Predict(home, away models.TeamRatings, isNeutral bool) models.MarketPrediction {
	homeScore, awayScore := m.scores(home, away)

	hca := m.cfg.HomeCourtAdvantage
	if isNeutral {
		hca = 0
	}

	var value float64
	if m.cfg.BetType.IsSpread() {
		// Home-perspective line: negative means home favored.
		value = -((homeScore - awayScore) + hca) + m.cfg.Calibration
	} else {
		value = homeScore + awayScore + hca + m.cfg.Calibration
	}

	sigma := m.variance.GameSigma(home, away)
	if m.cfg.BetType.IsFirstHalf() {
		sigma = m.variance.FirstHalfSigma(sigma)
	}
	sigma *= m.cfg.SigmaScale

	pred := models.MarketPrediction{
		BetType:    m.cfg.BetType,
		Value:      round1(value),
		Confidence: round3(m.confidence.Score(m.cfg.Confidence, home, away, sigma)),
		Sigma:      round2(sigma),
	}
	if m.cfg.BetType.IsSpread() {
		wp := WinProbability(value, sigma)
		pred.WinProb = models.Float64(round3(wp))
	}
	return pred
}

// scores computes the segment's expected points for both teams using the
// multiplicative efficiency model with matchup adjustments folded into the
// per-possession efficiencies.
func (m *SegmentMarketModel) scores(home, away models.TeamRatings) (float64, float64) {
	avgTempo := (home.Tempo + away.Tempo) / 2 * m.cfg.TempoFraction

	homeEff := home.AdjOff * away.AdjDef / 100 * m.cfg.EfficiencyScale
	awayEff := away.AdjOff * home.AdjDef / 100 * m.cfg.EfficiencyScale

	adj := m.matchup.Calculate(home, away).Total() * m.cfg.MatchupScale
	homeEff += adj
	awayEff -= adj

	return homeEff * avgTempo / 100, awayEff * avgTempo / 100
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
