package predictor

import (
	"math"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
)

// Win probabilities are clamped away from 0 and 1: a 99%+ model probability
// says more about model overconfidence than about the game.
const (
	minWinProb = 0.01
	maxWinProb = 0.99
)

// VarianceEstimator produces a game-specific margin sigma instead of a
// single league-wide constant. Three-point dependent teams and pace
// mismatches both widen outcome distributions.
type VarianceEstimator struct {
	cfg    VarianceConfig
	league LeagueAverages
}

// NewVarianceEstimator builds an estimator from variance parameters and
// league baselines.
func NewVarianceEstimator(cfg VarianceConfig, league LeagueAverages) *VarianceEstimator {
	return &VarianceEstimator{cfg: cfg, league: league}
}

// GameSigma estimates the full-game margin standard deviation for this
// matchup, clamped to [MinSigma, MaxSigma]. Missing shooting-profile fields
// fall back to league average, leaving the base sigma unchanged.
func (e *VarianceEstimator) GameSigma(home, away models.TeamRatings) float64 {
	sigma := e.cfg.BaseSigma

	home3PR := models.OrDefault(home.ThreePtRate, e.league.ThreePtRate)
	away3PR := models.OrDefault(away.ThreePtRate, e.league.ThreePtRate)
	avg3PR := (home3PR + away3PR) / 2
	sigma += (avg3PR - e.league.ThreePtRate) * e.cfg.ThreePtFactor

	tempoDiff := math.Abs(home.Tempo - away.Tempo)
	sigma += tempoDiff * e.cfg.PaceFactor

	return clamp(sigma, e.cfg.MinSigma, e.cfg.MaxSigma)
}

// FirstHalfSigma scales a full-game sigma for a first-half market. Halves
// are noisier per point than full games.
func (e *VarianceEstimator) FirstHalfSigma(gameSigma float64) float64 {
	return gameSigma * e.cfg.FirstHalfMultiplier
}

// WinProbability converts a home-perspective spread to the home team's win
// probability assuming a normal margin distribution with the given sigma.
// Negative spreads (home favored) map above 0.50.
func WinProbability(spread, sigma float64) float64 {
	if sigma <= 0 {
		if spread < 0 {
			return maxWinProb
		}
		return minWinProb
	}
	z := -spread / sigma
	p := 0.5 * (1 + math.Erf(z/math.Sqrt2))
	return clamp(p, minWinProb, maxWinProb)
}

// CoverProbability converts a point edge to the probability the bet covers,
// using the same normal-margin assumption as WinProbability.
func CoverProbability(edge, sigma float64) float64 {
	if sigma <= 0 {
		sigma = 1
	}
	p := 0.5 * (1 + math.Erf(edge/(sigma*math.Sqrt2)))
	return clamp(p, minWinProb, maxWinProb)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
