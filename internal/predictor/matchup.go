package predictor

import (
	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
)

// MatchupAdjustment is the Four-Factors interaction output, in points of
// home-team margin. Positive values favor the home team.
type MatchupAdjustment struct {
	Rebound  float64 `json:"rebound"`
	Turnover float64 `json:"turnover"`
}

// Total is the combined margin adjustment in points.
func (a MatchupAdjustment) Total() float64 {
	return a.Rebound + a.Turnover
}

// MatchupCalculator computes style-interaction adjustments that raw
// efficiency numbers miss: a great offensive rebounding team facing a poor
// defensive rebounding team generates extra possessions the adjusted
// efficiencies don't capture.
type MatchupCalculator struct {
	cfg    MatchupConfig
	league LeagueAverages
}

// NewMatchupCalculator builds a calculator from league baselines and
// interaction weights.
func NewMatchupCalculator(cfg MatchupConfig, league LeagueAverages) *MatchupCalculator {
	return &MatchupCalculator{cfg: cfg, league: league}
}

// Calculate returns the matchup adjustment for home vs away. Missing
// Four-Factor fields fall back to the league average, which zeroes that
// team's contribution to the edge rather than rejecting the game.
func (c *MatchupCalculator) Calculate(home, away models.TeamRatings) MatchupAdjustment {
	return MatchupAdjustment{
		Rebound:  c.reboundAdjustment(home, away),
		Turnover: c.turnoverAdjustment(home, away),
	}
}

// reboundAdjustment measures each offense's rebounding against the opposing
// defense's rebounding, relative to league baselines. A home ORB% above
// average against an away DRB% below average compounds into extra home
// possessions.
func (c *MatchupCalculator) reboundAdjustment(home, away models.TeamRatings) float64 {
	homeORB := models.OrDefault(home.ORB, c.league.ORBPct)
	homeDRB := models.OrDefault(home.DRB, c.league.DRBPct)
	awayORB := models.OrDefault(away.ORB, c.league.ORBPct)
	awayDRB := models.OrDefault(away.DRB, c.league.DRBPct)

	homeEdge := (homeORB - c.league.ORBPct) - (c.league.DRBPct - awayDRB)
	awayEdge := (awayORB - c.league.ORBPct) - (c.league.DRBPct - homeDRB)

	return (homeEdge - awayEdge) * c.cfg.ReboundWeight
}

// turnoverAdjustment measures each offense's ball security against the
// opposing defense's turnover pressure, relative to the league baseline.
func (c *MatchupCalculator) turnoverAdjustment(home, away models.TeamRatings) float64 {
	homeTOR := models.OrDefault(home.TOR, c.league.TORPct)
	homeTORD := models.OrDefault(home.TORD, c.league.TORPct)
	awayTOR := models.OrDefault(away.TOR, c.league.TORPct)
	awayTORD := models.OrDefault(away.TORD, c.league.TORPct)

	homeEdge := (awayTORD - c.league.TORPct) - (homeTOR - c.league.TORPct)
	awayEdge := (homeTORD - c.league.TORPct) - (awayTOR - c.league.TORPct)

	return (homeEdge - awayEdge) * c.cfg.TurnoverWeight
}
