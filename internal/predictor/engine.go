package predictor

import (
	"fmt"
	"time"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
)

// Engine runs the six independent market models for a game. It is pure
// given its config: identical snapshots produce identical predictions,
// with the rolling-history blender as the only mutable state.
//
// Independence is the core design rule: the four line markets never read
// each other's output, and the two moneylines derive only from their own
// segment's spread. A calibration change to one market cannot move another.
type Engine struct {
	cfg Config

	spreadFG *SegmentMarketModel
	totalFG  *SegmentMarketModel
	spreadH1 *SegmentMarketModel
	totalH1  *SegmentMarketModel

	moneylineFG *MoneylineConverter
	moneylineH1 *MoneylineConverter

	variance *VarianceEstimator
	history  *History
}

// New validates the configuration and wires the market models. A bad
// config, including an unknown backend, is fatal here rather than at first
// prediction.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	matchup := NewMatchupCalculator(cfg.Matchup, cfg.League)
	variance := NewVarianceEstimator(cfg.Variance, cfg.League)
	confidence := NewConfidenceScorer(cfg.League, cfg.Variance)

	e := &Engine{cfg: cfg, variance: variance}

	var err error
	if e.spreadFG, err = NewSegmentMarketModel(cfg.SpreadFG, matchup, variance, confidence); err != nil {
		return nil, fmt.Errorf("full-game spread model: %w", err)
	}
	if e.totalFG, err = NewSegmentMarketModel(cfg.TotalFG, matchup, variance, confidence); err != nil {
		return nil, fmt.Errorf("full-game total model: %w", err)
	}
	if e.spreadH1, err = NewSegmentMarketModel(cfg.SpreadH1, matchup, variance, confidence); err != nil {
		return nil, fmt.Errorf("first-half spread model: %w", err)
	}
	if e.totalH1, err = NewSegmentMarketModel(cfg.TotalH1, matchup, variance, confidence); err != nil {
		return nil, fmt.Errorf("first-half total model: %w", err)
	}

	e.moneylineFG = NewMoneylineConverter(cfg.MoneylineFG, confidence)
	e.moneylineH1 = NewMoneylineConverter(cfg.MoneylineH1, confidence)

	if cfg.History.Enabled {
		e.history = NewHistory(cfg.History.Window)
	}

	return e, nil
}

// Name returns the backend identifier.
func (e *Engine) Name() string {
	return e.cfg.Backend
}

// ModelVersion returns the calibration version stamped on predictions.
func (e *Engine) ModelVersion() string {
	return e.cfg.ModelVersion
}

// History exposes the rolling blender for inspection. Nil when blending is
// disabled.
func (e *Engine) History() *History {
	return e.history
}

// Predict generates all six market predictions for a snapshot. Ratings
// outside plausible bounds reject the whole game with InvalidInputError;
// market odds are not consulted here at all, so odds-free snapshots
// predict normally.
func (e *Engine) Predict(snap models.GameSnapshot) (*models.GamePrediction, error) {
	if err := snap.HomeRatings.Validate(); err != nil {
		return nil, fmt.Errorf("home ratings for %s: %w", snap.HomeTeam, err)
	}
	if err := snap.AwayRatings.Validate(); err != nil {
		return nil, fmt.Errorf("away ratings for %s: %w", snap.AwayTeam, err)
	}

	home, away := snap.HomeRatings, snap.AwayRatings

	spreadFG := e.spreadFG.Predict(home, away, snap.IsNeutral)
	totalFG := e.totalFG.Predict(home, away, snap.IsNeutral)
	spreadH1 := e.spreadH1.Predict(home, away, snap.IsNeutral)
	totalH1 := e.totalH1.Predict(home, away, snap.IsNeutral)

	if e.history != nil {
		spreadFG = e.blend(snap, spreadFG)
		totalFG = e.blend(snap, totalFG)
		spreadH1 = e.blend(snap, spreadH1)
		totalH1 = e.blend(snap, totalH1)
	}

	gameSigma := e.variance.GameSigma(home, away)
	moneylineFG := e.moneylineFG.FromSpread(spreadFG, gameSigma, home, away)
	moneylineH1 := e.moneylineH1.FromSpread(spreadH1, gameSigma, home, away)

	pred := &models.GamePrediction{
		GameID:       snap.GameID,
		HomeTeam:     snap.HomeTeam,
		AwayTeam:     snap.AwayTeam,
		CommenceTime: snap.CommenceTime,

		Spread:    spreadFG,
		Total:     totalFG,
		Moneyline: moneylineFG,

		Spread1H:    spreadH1,
		Total1H:     totalH1,
		Moneyline1H: moneylineH1,

		ModelVersion: e.cfg.ModelVersion,
		CreatedAt:    time.Now().UTC(),
	}

	// Implied scores come from each segment's own spread/total pair. With
	// spread = -(margin + hca), home = (total - spread) / 2 recovers the
	// home-court-adjusted expected score.
	pred.HomeScore = round1((totalFG.Value - spreadFG.Value) / 2)
	pred.AwayScore = round1((totalFG.Value + spreadFG.Value) / 2)
	pred.HomeScore1H = round1((totalH1.Value - spreadH1.Value) / 2)
	pred.AwayScore1H = round1((totalH1.Value + spreadH1.Value) / 2)

	return pred, nil
}

// blend mixes the fresh prediction with the rolling mean of prior
// predictions for the same game and market, records the fresh value, and
// recomputes the probability for spread markets from the blended line.
func (e *Engine) blend(snap models.GameSnapshot, mp models.MarketPrediction) models.MarketPrediction {
	blended := e.history.Blend(snap.GameID, mp.BetType, mp.Value, e.cfg.History.Weight)
	e.history.Append(snap.GameID, mp.BetType, mp.Value)

	if blended == mp.Value {
		return mp
	}
	mp.Value = round1(blended)
	if mp.BetType.IsSpread() {
		mp.WinProb = models.Float64(round3(WinProbability(mp.Value, mp.Sigma)))
	}
	return mp
}
