package predictor

import (
	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
)

// BackendAnalytic is the closed-form efficiency model. It is the only
// backend this service ships; the key exists so deployments that typo the
// env var fail at startup instead of silently running the wrong model.
const BackendAnalytic = "analytic"

// LeagueAverages are the substitution values for absent Four-Factor fields
// and the baselines matchup edges are measured against.
type LeagueAverages struct {
	Tempo        float64 // possessions per 40 minutes
	Efficiency   float64 // points per 100 possessions
	ORBPct       float64 // offensive rebound %
	DRBPct       float64 // defensive rebound % (100 - ORBPct)
	TORPct       float64 // turnover % (committed and forced baseline)
	FTRate       float64 // free throw rate
	ThreePtRate  float64 // 3PA / FGA %
	EFGPct       float64 // effective FG%
	BarthagSigma float64 // spread points per unit of barthag differential
}

// MatchupConfig weights the Four-Factors interaction terms.
type MatchupConfig struct {
	ReboundWeight  float64 // points per % of net offensive-rebound edge
	TurnoverWeight float64 // points per % of net turnover edge
}

// VarianceConfig parameterizes the dynamic game-sigma model.
type VarianceConfig struct {
	BaseSigma           float64
	ThreePtFactor       float64 // sigma points per % of 3PR above league average
	PaceFactor          float64 // sigma points per possession of tempo mismatch
	MinSigma            float64
	MaxSigma            float64
	FirstHalfMultiplier float64
}

// ConfidenceConfig is the per-market base and ceiling for the scorer.
// Ceilings differ by market: full-game spreads are the best-calibrated
// market, first-half totals the noisiest.
type ConfidenceConfig struct {
	Base    float64
	Floor   float64
	Ceiling float64
}

// SegmentModelConfig parameterizes one spread or total market model. Each
// of the four line markets gets its own instance with independently tuned
// constants; nothing is shared or derived between markets.
type SegmentModelConfig struct {
	BetType models.BetType

	// Points added to the home margin (spreads) or to the combined score
	// (totals) for home court. Zeroed at neutral sites.
	HomeCourtAdvantage float64

	// Additive offset applied after the raw model output, from backtest
	// calibration against closing lines.
	Calibration float64

	// Segment scaling. Full-game markets run at 1.0 / 1.0; first-half
	// markets run a tempo fraction near 0.48 and a small efficiency
	// discount for early-game defensive intensity.
	TempoFraction   float64
	EfficiencyScale float64

	// Scale on the matchup adjustments. First-half markets damp them
	// because rotations haven't settled.
	MatchupScale float64

	// Scale on the estimated game sigma for this market's probability
	// conversion. Totals carry slightly lower dispersion than margins.
	SigmaScale float64

	Confidence ConfidenceConfig
}

// MoneylineConfig parameterizes a moneyline converter. Moneylines are not
// modeled directly: they are derived from the corresponding spread model's
// margin and the game sigma.
type MoneylineConfig struct {
	BetType    models.BetType
	SigmaScale float64 // widened for first-half outcomes
	Confidence ConfidenceConfig
}

// HistoryConfig controls the rolling-history blend of successive
// predictions for the same game. Disabled by default: blending trades
// responsiveness to ratings updates for line stability.
type HistoryConfig struct {
	Enabled bool
	Window  int     // ring buffer capacity per game+market
	Weight  float64 // share of the rolling mean in the blended value, 0..1
}

// Config is the full engine configuration. Built once at startup from the
// sport config; the engine never mutates it.
type Config struct {
	Backend      string
	ModelVersion string

	League   LeagueAverages
	Matchup  MatchupConfig
	Variance VarianceConfig

	SpreadFG SegmentModelConfig
	TotalFG  SegmentModelConfig
	SpreadH1 SegmentModelConfig
	TotalH1  SegmentModelConfig

	MoneylineFG MoneylineConfig
	MoneylineH1 MoneylineConfig

	History HistoryConfig
}

// Validate rejects configurations that would produce garbage predictions.
// Called from New; failures are fatal at startup.
func (c Config) Validate() error {
	if c.Backend != BackendAnalytic {
		return &models.ConfigurationError{
			Key:    "prediction_backend",
			Reason: "unknown backend " + c.Backend + ", only " + BackendAnalytic + " is supported",
		}
	}
	if c.Variance.MinSigma <= 0 || c.Variance.MaxSigma < c.Variance.MinSigma {
		return &models.ConfigurationError{
			Key:    "variance_sigma_bounds",
			Reason: "require 0 < min_sigma <= max_sigma",
		}
	}
	for _, mc := range []SegmentModelConfig{c.SpreadFG, c.TotalFG, c.SpreadH1, c.TotalH1} {
		if mc.TempoFraction <= 0 || mc.TempoFraction > 1 {
			return &models.ConfigurationError{
				Key:    string(mc.BetType) + "_tempo_fraction",
				Reason: "must be in (0, 1]",
			}
		}
		if mc.EfficiencyScale <= 0 {
			return &models.ConfigurationError{
				Key:    string(mc.BetType) + "_efficiency_scale",
				Reason: "must be positive",
			}
		}
		if err := mc.Confidence.validate(string(mc.BetType)); err != nil {
			return err
		}
	}
	for _, mc := range []MoneylineConfig{c.MoneylineFG, c.MoneylineH1} {
		if err := mc.Confidence.validate(string(mc.BetType)); err != nil {
			return err
		}
	}
	if c.History.Enabled {
		if c.History.Window < 1 {
			return &models.ConfigurationError{
				Key:    "history_window",
				Reason: "must be >= 1 when history blending is enabled",
			}
		}
		if c.History.Weight < 0 || c.History.Weight > 1 {
			return &models.ConfigurationError{
				Key:    "history_weight",
				Reason: "must be in [0, 1]",
			}
		}
	}
	return nil
}

func (cc ConfidenceConfig) validate(market string) error {
	if cc.Floor < 0 || cc.Ceiling > 1 || cc.Floor > cc.Ceiling {
		return &models.ConfigurationError{
			Key:    market + "_confidence_bounds",
			Reason: "require 0 <= floor <= ceiling <= 1",
		}
	}
	if cc.Base < cc.Floor || cc.Base > cc.Ceiling {
		return &models.ConfigurationError{
			Key:    market + "_confidence_base",
			Reason: "base must sit inside [floor, ceiling]",
		}
	}
	return nil
}
