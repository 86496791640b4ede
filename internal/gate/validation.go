// Package gate runs pre-prediction input checks: hard errors reject a game,
// soft warnings travel with it. The spread sign convention is home
// perspective, negative = home favored; a flipped sign upstream corrupts
// every downstream recommendation, so the gate cross-checks it against the
// ratings-implied favorite.
package gate

import (
	"fmt"
	"math"
	"time"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
)

// Config bounds the gate's plausibility checks.
type Config struct {
	// Quality gap (net rating points) above which a market spread favoring
	// the other side draws a sign-convention warning.
	SignCheckQualityGap float64

	// Absolute spread above this is flagged as suspicious.
	MaxPlausibleSpread float64

	// Full-game total plausibility band.
	MinPlausibleTotal float64
	MaxPlausibleTotal float64

	// Ratings older than this draw a staleness warning.
	MaxRatingsAge time.Duration
}

// Gate validates game snapshots before prediction.
type Gate struct {
	cfg Config
}

// New builds a gate from config.
func New(cfg Config) *Gate {
	return &Gate{cfg: cfg}
}

// Validate checks one snapshot. The returned error is a hard rejection
// (ratings outside physical bounds); warnings are advisory and never block
// prediction. Missing odds only warn: the engine predicts without them.
func (g *Gate) Validate(snap models.GameSnapshot) ([]string, error) {
	if err := snap.HomeRatings.Validate(); err != nil {
		return nil, fmt.Errorf("home ratings: %w", err)
	}
	if err := snap.AwayRatings.Validate(); err != nil {
		return nil, fmt.Errorf("away ratings: %w", err)
	}

	var warnings []string
	warnings = append(warnings, g.checkOddsPresence(snap)...)
	warnings = append(warnings, g.checkSpreadConvention(snap)...)
	warnings = append(warnings, g.checkTotals(snap)...)
	warnings = append(warnings, g.checkReboundRates(snap)...)
	warnings = append(warnings, g.checkFreshness(snap)...)

	return warnings, nil
}

func (g *Gate) checkOddsPresence(snap models.GameSnapshot) []string {
	if snap.Odds == nil {
		return []string{"no market odds on snapshot, predictions only, no recommendations"}
	}
	var warnings []string
	if snap.Odds.Spread == nil && snap.Odds.Total == nil {
		warnings = append(warnings, "no full-game spread or total, recommendations limited to offered markets")
	}
	if snap.Odds.Spread != nil && (snap.Odds.SpreadHomePrice == nil || snap.Odds.SpreadAwayPrice == nil) {
		warnings = append(warnings, "spread prices missing, default -110 juice will apply")
	}
	return warnings
}

// checkSpreadConvention flags market spreads whose sign disagrees with the
// ratings-implied favorite when the quality gap is large. A warning, not a
// rejection: mid-major lines genuinely diverge from efficiency ratings.
func (g *Gate) checkSpreadConvention(snap models.GameSnapshot) []string {
	if snap.Odds == nil || snap.Odds.Spread == nil {
		return nil
	}
	spread := *snap.Odds.Spread

	var warnings []string
	if math.Abs(spread) > g.cfg.MaxPlausibleSpread {
		warnings = append(warnings, fmt.Sprintf(
			"market spread %.1f is unusually large (limit %.0f)", spread, g.cfg.MaxPlausibleSpread))
	}

	qualityDiff := snap.HomeRatings.NetRating() - snap.AwayRatings.NetRating()
	expectedHomeFavored := qualityDiff > 0
	actualHomeFavored := spread < 0

	if expectedHomeFavored != actualHomeFavored && math.Abs(qualityDiff) > g.cfg.SignCheckQualityGap {
		side := "away"
		if expectedHomeFavored {
			side = "home"
		}
		warnings = append(warnings, fmt.Sprintf(
			"spread sign may be flipped: ratings favor %s by %.1f but market spread is %.1f",
			side, math.Abs(qualityDiff), spread))
	}

	return warnings
}

func (g *Gate) checkTotals(snap models.GameSnapshot) []string {
	if snap.Odds == nil {
		return nil
	}

	var warnings []string
	if t := snap.Odds.Total; t != nil && (*t < g.cfg.MinPlausibleTotal || *t > g.cfg.MaxPlausibleTotal) {
		warnings = append(warnings, fmt.Sprintf(
			"market total %.1f outside plausible band [%.0f, %.0f]",
			*t, g.cfg.MinPlausibleTotal, g.cfg.MaxPlausibleTotal))
	}
	if t := snap.Odds.Total1H; t != nil && (*t < g.cfg.MinPlausibleTotal/2-10 || *t > g.cfg.MaxPlausibleTotal/2+10) {
		warnings = append(warnings, fmt.Sprintf("first-half total %.1f looks implausible", *t))
	}
	return warnings
}

// checkReboundRates verifies the ORB/DRB identity: a team's offensive
// rebound rate plus the opponent-average defensive rebound rate should sit
// near 100.
func (g *Gate) checkReboundRates(snap models.GameSnapshot) []string {
	var warnings []string
	for _, tr := range []models.TeamRatings{snap.HomeRatings, snap.AwayRatings} {
		if tr.ORB == nil || tr.DRB == nil {
			continue
		}
		// ORB and DRB are rates against average opposition, so the pair
		// should roughly complement.
		if sum := *tr.ORB + *tr.DRB; sum < 80 || sum > 120 {
			warnings = append(warnings, fmt.Sprintf(
				"%s rebound rates do not complement (orb %.1f + drb %.1f = %.1f)",
				tr.TeamName, *tr.ORB, *tr.DRB, sum))
		}
	}
	return warnings
}

func (g *Gate) checkFreshness(snap models.GameSnapshot) []string {
	if snap.RatingDate == "" {
		return []string{"ratings date unknown, cannot verify freshness"}
	}
	ratingDate, err := time.Parse("2006-01-02", snap.RatingDate)
	if err != nil {
		return []string{fmt.Sprintf("unparseable ratings date %q", snap.RatingDate)}
	}
	if age := time.Since(ratingDate); age > g.cfg.MaxRatingsAge {
		return []string{fmt.Sprintf(
			"ratings are %.0f hours old (max %.0f)", age.Hours(), g.cfg.MaxRatingsAge.Hours())}
	}
	return nil
}
