package models

import "fmt"

// Plausible physical bounds for core rating fields. Ratings outside these
// ranges are rejected rather than clamped: clamped garbage-in produces
// confidently-wrong recommendations downstream.
const (
	MinEfficiency = 70.0
	MaxEfficiency = 140.0
	MinTempo      = 55.0
	MaxTempo      = 85.0
)

// TeamRatings holds one team's adjusted efficiency profile for a rating date.
// All efficiency values are points per 100 possessions, tempo is possessions
// per 40 minutes. Four-Factor fields are optional pointers: when absent the
// engine substitutes the configured league average instead of erroring.
type TeamRatings struct {
	TeamName string `json:"team_name"`

	// Core efficiency metrics (required)
	AdjOff float64 `json:"adj_off"`
	AdjDef float64 `json:"adj_def"`
	Tempo  float64 `json:"tempo"`
	Rank   int     `json:"rank"`

	// Four Factors - shooting
	EFG  *float64 `json:"efg,omitempty"`
	EFGD *float64 `json:"efgd,omitempty"`

	// Four Factors - turnovers (committed / forced)
	TOR  *float64 `json:"tor,omitempty"`
	TORD *float64 `json:"tord,omitempty"`

	// Four Factors - rebounding
	ORB *float64 `json:"orb,omitempty"`
	DRB *float64 `json:"drb,omitempty"`

	// Four Factors - free throws
	FTR  *float64 `json:"ftr,omitempty"`
	FTRD *float64 `json:"ftrd,omitempty"`

	// Shooting profile
	ThreePtRate  *float64 `json:"three_pt_rate,omitempty"`
	ThreePtRateD *float64 `json:"three_pt_rate_d,omitempty"`

	// Quality metrics
	Barthag *float64 `json:"barthag,omitempty"` // expected win % vs average opponent
	WAB     *float64 `json:"wab,omitempty"`     // wins above bubble
}

// NetRating returns the net efficiency rating (higher = better).
func (t TeamRatings) NetRating() float64 {
	return t.AdjOff - t.AdjDef
}

// HasFourFactors reports whether the full Four-Factors profile is present.
func (t TeamRatings) HasFourFactors() bool {
	return t.EFG != nil && t.TOR != nil && t.ORB != nil && t.FTR != nil
}

// Validate checks required fields against plausible physical bounds.
// Missing Four-Factor fields are fine (league-average fallback applies);
// out-of-range core efficiency or tempo is a caller error.
func (t TeamRatings) Validate() error {
	if t.TeamName == "" {
		return &InvalidInputError{Field: "team_name", Reason: "required"}
	}
	if t.AdjOff < MinEfficiency || t.AdjOff > MaxEfficiency {
		return &InvalidInputError{
			Field:  "adj_off",
			Value:  t.AdjOff,
			Reason: fmt.Sprintf("outside plausible range [%.0f, %.0f]", MinEfficiency, MaxEfficiency),
		}
	}
	if t.AdjDef < MinEfficiency || t.AdjDef > MaxEfficiency {
		return &InvalidInputError{
			Field:  "adj_def",
			Value:  t.AdjDef,
			Reason: fmt.Sprintf("outside plausible range [%.0f, %.0f]", MinEfficiency, MaxEfficiency),
		}
	}
	if t.Tempo < MinTempo || t.Tempo > MaxTempo {
		return &InvalidInputError{
			Field:  "tempo",
			Value:  t.Tempo,
			Reason: fmt.Sprintf("outside plausible range [%.0f, %.0f]", MinTempo, MaxTempo),
		}
	}
	return nil
}

// Float64 returns a pointer to v. Convenience for building optional fields.
func Float64(v float64) *float64 {
	return &v
}

// OrDefault dereferences an optional rating field, substituting the league
// average when the field is absent.
func OrDefault(v *float64, leagueAvg float64) float64 {
	if v == nil {
		return leagueAvg
	}
	return *v
}
