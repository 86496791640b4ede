package predictor

import (
	"math"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
)

// ConfidenceScorer rates data quality and matchup legibility for a single
// market. The score is not a win probability: it measures how much the
// model's inputs can be trusted for this particular game, and downstream it
// gates and sizes recommendations.
type ConfidenceScorer struct {
	league   LeagueAverages
	variance VarianceConfig
}

// NewConfidenceScorer builds a scorer sharing the engine's league baselines
// and variance bounds.
func NewConfidenceScorer(league LeagueAverages, variance VarianceConfig) *ConfidenceScorer {
	return &ConfidenceScorer{league: league, variance: variance}
}

// Score computes the market confidence from the per-market base plus
// bounded increments, clamped to the market's [floor, ceiling]. Every
// increment is individually capped so no single signal can saturate the
// score.
func (s *ConfidenceScorer) Score(cfg ConfidenceConfig, home, away models.TeamRatings, sigma float64) float64 {
	conf := cfg.Base

	conf += s.rankIncrement(home, away)
	conf += s.efficiencyIncrement(home, away)
	conf += s.qualityIncrement(home, away)
	conf += s.completenessIncrement(home, away)
	conf += s.varianceIncrement(sigma)
	conf += s.styleIncrement(home, away)

	return clamp(conf, cfg.Floor, cfg.Ceiling)
}

// rankIncrement rewards well-ranked teams: their ratings rest on stronger
// schedules and more settled rotations.
func (s *ConfidenceScorer) rankIncrement(home, away models.TeamRatings) float64 {
	avgRank := float64(home.Rank+away.Rank) / 2
	switch {
	case avgRank < 25:
		return 0.06
	case avgRank < 50:
		return 0.04
	case avgRank < 100:
		return 0.02
	case avgRank > 250:
		return -0.04
	}
	return 0
}

// efficiencyIncrement rewards a clear net-rating separation between the
// teams. Coin-flip matchups earn nothing.
func (s *ConfidenceScorer) efficiencyIncrement(home, away models.TeamRatings) float64 {
	diff := math.Abs(home.NetRating() - away.NetRating())
	switch {
	case diff > 15:
		return 0.05
	case diff > 10:
		return 0.03
	}
	return 0
}

// qualityIncrement reads the barthag differential as a talent-gap signal,
// capped well below the efficiency increment since it overlaps with it.
func (s *ConfidenceScorer) qualityIncrement(home, away models.TeamRatings) float64 {
	if home.Barthag == nil || away.Barthag == nil {
		return 0
	}
	diff := math.Abs(*home.Barthag - *away.Barthag)
	return math.Min(0.04, diff*0.10)
}

// completenessIncrement rewards full Four-Factors coverage on both teams.
// Without it the matchup adjustments degrade to league-average no-ops.
func (s *ConfidenceScorer) completenessIncrement(home, away models.TeamRatings) float64 {
	if home.HasFourFactors() && away.HasFourFactors() {
		return 0.04
	}
	return 0
}

// varianceIncrement shifts confidence with estimated game sigma: tight
// distributions earn up to +0.03, wide ones cost up to -0.03.
func (s *ConfidenceScorer) varianceIncrement(sigma float64) float64 {
	span := s.variance.MaxSigma - s.variance.MinSigma
	if span <= 0 {
		return 0
	}
	mid := (s.variance.MaxSigma + s.variance.MinSigma) / 2
	frac := (mid - clamp(sigma, s.variance.MinSigma, s.variance.MaxSigma)) / (span / 2)
	return frac * 0.03
}

// styleIncrement rewards stylistically similar teams. Big tempo or
// shooting-profile mismatches make segment scoring harder to project.
func (s *ConfidenceScorer) styleIncrement(home, away models.TeamRatings) float64 {
	tempoDiff := math.Abs(home.Tempo - away.Tempo)
	home3PR := models.OrDefault(home.ThreePtRate, s.league.ThreePtRate)
	away3PR := models.OrDefault(away.ThreePtRate, s.league.ThreePtRate)
	threeDiff := math.Abs(home3PR - away3PR)

	consistency := 1 - math.Min(1, (tempoDiff/20+threeDiff/20)/2)
	return (consistency - 0.5) * 0.04
}
