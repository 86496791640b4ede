package recommend

import (
	"math"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/oddsmath"
)

// SizingConfig controls stake sizing from Kelly through final units.
type SizingConfig struct {
	// KellyDivisor is the safety divisor on the full Kelly stake.
	// 4 (quarter-Kelly) is the standard setting.
	KellyDivisor float64

	// MaxKellyFraction caps the post-divisor bankroll fraction.
	MaxKellyFraction float64

	// UnitsPerBankroll maps bankroll fraction to betting units: a full
	// MaxKellyFraction stake at neutral multipliers lands near MaxUnits.
	UnitsPerBankroll float64

	// Multiplier caps. Edge and confidence ratios above the threshold
	// scale the stake up, but never past these.
	EdgeMultiplierCap       float64
	ConfidenceMultiplierCap float64

	MinUnits float64
	MaxUnits float64

	// Tier breakpoints on final units.
	MediumUnits  float64
	MaxTierUnits float64
}

// StakeSizer converts a pick probability and price into fractional-Kelly
// units.
type StakeSizer struct {
	cfg SizingConfig
}

// NewStakeSizer builds a sizer from config.
func NewStakeSizer(cfg SizingConfig) *StakeSizer {
	return &StakeSizer{cfg: cfg}
}

// Stake is the sizing output: the capped fractional-Kelly bankroll share
// and the final unit count after multipliers and clamping.
type Stake struct {
	KellyFraction float64
	Units         float64
}

// Size computes the stake for a bet with win probability p at the given
// American price. edgeRatio and confRatio are the pick's edge and
// confidence divided by their market minimums; both scale the stake and
// both are capped.
func (s *StakeSizer) Size(p float64, price int, edgeRatio, confRatio float64) (Stake, error) {
	full, err := oddsmath.KellyFraction(p, price)
	if err != nil {
		return Stake{}, err
	}

	fraction := full / s.cfg.KellyDivisor
	if fraction > s.cfg.MaxKellyFraction {
		fraction = s.cfg.MaxKellyFraction
	}

	edgeMult := math.Min(s.cfg.EdgeMultiplierCap, math.Max(0, edgeRatio))
	confMult := math.Min(s.cfg.ConfidenceMultiplierCap, math.Max(0, confRatio))

	units := fraction * s.cfg.UnitsPerBankroll * edgeMult * confMult
	if units < s.cfg.MinUnits {
		units = s.cfg.MinUnits
	}
	if units > s.cfg.MaxUnits {
		units = s.cfg.MaxUnits
	}

	return Stake{
		KellyFraction: math.Round(fraction*10000) / 10000,
		Units:         math.Round(units*100) / 100,
	}, nil
}

// Tier assigns the bet-size tier from final units using the configured
// breakpoints.
func (s *StakeSizer) Tier(units float64) models.BetTier {
	switch {
	case units >= s.cfg.MaxTierUnits:
		return models.BetTierMax
	case units >= s.cfg.MediumUnits:
		return models.BetTierMedium
	default:
		return models.BetTierStandard
	}
}
