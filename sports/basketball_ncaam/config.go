// Package basketball_ncaam carries the NCAAM calibration: every model and
// policy constant, each independently overridable by environment variable.
// No two markets share a constant; re-coupling markets through a shared
// default has caused calibration bugs before and is deliberately impossible
// here.
package basketball_ncaam

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/internal/gate"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/internal/predictor"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/internal/recommend"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
)

// ModelVersion is stamped on every prediction and persisted row.
const ModelVersion = "ncaam-v6.2"

// EngineConfig builds the predictor configuration with NCAAM defaults and
// environment overrides.
func EngineConfig() predictor.Config {
	return predictor.Config{
		Backend:      getEnvString("PREDICTION_BACKEND", predictor.BackendAnalytic),
		ModelVersion: getEnvString("MODEL_VERSION", ModelVersion),

		League: predictor.LeagueAverages{
			Tempo:       getEnvFloat("LEAGUE_AVG_TEMPO", 68.5),
			Efficiency:  getEnvFloat("LEAGUE_AVG_EFFICIENCY", 106.0),
			ORBPct:      getEnvFloat("LEAGUE_AVG_ORB_PCT", 28.0),
			DRBPct:      getEnvFloat("LEAGUE_AVG_DRB_PCT", 72.0),
			TORPct:      getEnvFloat("LEAGUE_AVG_TOR_PCT", 20.0),
			FTRate:      getEnvFloat("LEAGUE_AVG_FT_RATE", 32.0),
			ThreePtRate: getEnvFloat("LEAGUE_AVG_3PT_RATE", 35.0),
			EFGPct:      getEnvFloat("LEAGUE_AVG_EFG_PCT", 50.0),
		},

		Matchup: predictor.MatchupConfig{
			ReboundWeight:  getEnvFloat("MATCHUP_REBOUND_WEIGHT", 0.15),
			TurnoverWeight: getEnvFloat("MATCHUP_TURNOVER_WEIGHT", 0.10),
		},

		Variance: predictor.VarianceConfig{
			BaseSigma:           getEnvFloat("VARIANCE_BASE_SIGMA", 11.0),
			ThreePtFactor:       getEnvFloat("VARIANCE_3PT_FACTOR", 0.15),
			PaceFactor:          getEnvFloat("VARIANCE_PACE_FACTOR", 0.10),
			MinSigma:            getEnvFloat("VARIANCE_MIN_SIGMA", 9.0),
			MaxSigma:            getEnvFloat("VARIANCE_MAX_SIGMA", 14.0),
			FirstHalfMultiplier: getEnvFloat("VARIANCE_1H_MULTIPLIER", 1.15),
		},

		SpreadFG: predictor.SegmentModelConfig{
			BetType:            models.BetTypeSpread,
			HomeCourtAdvantage: getEnvFloat("SPREAD_FG_HCA", 3.0),
			Calibration:        getEnvFloat("SPREAD_FG_CALIBRATION", 0.0),
			TempoFraction:      getEnvFloat("SPREAD_FG_TEMPO_FRACTION", 1.0),
			EfficiencyScale:    getEnvFloat("SPREAD_FG_EFFICIENCY_SCALE", 1.0),
			MatchupScale:       getEnvFloat("SPREAD_FG_MATCHUP_SCALE", 1.0),
			SigmaScale:         getEnvFloat("SPREAD_FG_SIGMA_SCALE", 1.0),
			Confidence: predictor.ConfidenceConfig{
				Base:    getEnvFloat("SPREAD_FG_CONFIDENCE_BASE", 0.70),
				Floor:   getEnvFloat("SPREAD_FG_CONFIDENCE_FLOOR", 0.30),
				Ceiling: getEnvFloat("SPREAD_FG_CONFIDENCE_CEILING", 0.95),
			},
		},

		TotalFG: predictor.SegmentModelConfig{
			BetType:            models.BetTypeTotal,
			HomeCourtAdvantage: getEnvFloat("TOTAL_FG_HCA", 0.9),
			Calibration:        getEnvFloat("TOTAL_FG_CALIBRATION", 7.0),
			TempoFraction:      getEnvFloat("TOTAL_FG_TEMPO_FRACTION", 1.0),
			EfficiencyScale:    getEnvFloat("TOTAL_FG_EFFICIENCY_SCALE", 1.0),
			MatchupScale:       getEnvFloat("TOTAL_FG_MATCHUP_SCALE", 1.0),
			SigmaScale:         getEnvFloat("TOTAL_FG_SIGMA_SCALE", 0.80),
			Confidence: predictor.ConfidenceConfig{
				Base:    getEnvFloat("TOTAL_FG_CONFIDENCE_BASE", 0.65),
				Floor:   getEnvFloat("TOTAL_FG_CONFIDENCE_FLOOR", 0.30),
				Ceiling: getEnvFloat("TOTAL_FG_CONFIDENCE_CEILING", 0.85),
			},
		},

		SpreadH1: predictor.SegmentModelConfig{
			BetType:            models.BetTypeSpread1H,
			HomeCourtAdvantage: getEnvFloat("SPREAD_1H_HCA", 1.5),
			Calibration:        getEnvFloat("SPREAD_1H_CALIBRATION", 0.0),
			TempoFraction:      getEnvFloat("SPREAD_1H_TEMPO_FRACTION", 0.48),
			EfficiencyScale:    getEnvFloat("SPREAD_1H_EFFICIENCY_SCALE", 0.98),
			MatchupScale:       getEnvFloat("SPREAD_1H_MATCHUP_SCALE", 0.80),
			SigmaScale:         getEnvFloat("SPREAD_1H_SIGMA_SCALE", 1.0),
			Confidence: predictor.ConfidenceConfig{
				Base:    getEnvFloat("SPREAD_1H_CONFIDENCE_BASE", 0.62),
				Floor:   getEnvFloat("SPREAD_1H_CONFIDENCE_FLOOR", 0.30),
				Ceiling: getEnvFloat("SPREAD_1H_CONFIDENCE_CEILING", 0.80),
			},
		},

		TotalH1: predictor.SegmentModelConfig{
			BetType:            models.BetTypeTotal1H,
			HomeCourtAdvantage: getEnvFloat("TOTAL_1H_HCA", 0.45),
			Calibration:        getEnvFloat("TOTAL_1H_CALIBRATION", 2.7),
			TempoFraction:      getEnvFloat("TOTAL_1H_TEMPO_FRACTION", 0.48),
			EfficiencyScale:    getEnvFloat("TOTAL_1H_EFFICIENCY_SCALE", 0.98),
			MatchupScale:       getEnvFloat("TOTAL_1H_MATCHUP_SCALE", 0.80),
			SigmaScale:         getEnvFloat("TOTAL_1H_SIGMA_SCALE", 0.85),
			Confidence: predictor.ConfidenceConfig{
				Base:    getEnvFloat("TOTAL_1H_CONFIDENCE_BASE", 0.58),
				Floor:   getEnvFloat("TOTAL_1H_CONFIDENCE_FLOOR", 0.30),
				Ceiling: getEnvFloat("TOTAL_1H_CONFIDENCE_CEILING", 0.72),
			},
		},

		MoneylineFG: predictor.MoneylineConfig{
			BetType:    models.BetTypeMoneyline,
			SigmaScale: getEnvFloat("MONEYLINE_FG_SIGMA_SCALE", 1.0),
			Confidence: predictor.ConfidenceConfig{
				Base:    getEnvFloat("MONEYLINE_FG_CONFIDENCE_BASE", 0.68),
				Floor:   getEnvFloat("MONEYLINE_FG_CONFIDENCE_FLOOR", 0.30),
				Ceiling: getEnvFloat("MONEYLINE_FG_CONFIDENCE_CEILING", 0.90),
			},
		},

		MoneylineH1: predictor.MoneylineConfig{
			BetType:    models.BetTypeMoneyline1H,
			SigmaScale: getEnvFloat("MONEYLINE_1H_SIGMA_SCALE", 1.10),
			Confidence: predictor.ConfidenceConfig{
				Base:    getEnvFloat("MONEYLINE_1H_CONFIDENCE_BASE", 0.60),
				Floor:   getEnvFloat("MONEYLINE_1H_CONFIDENCE_FLOOR", 0.30),
				Ceiling: getEnvFloat("MONEYLINE_1H_CONFIDENCE_CEILING", 0.78),
			},
		},

		History: predictor.HistoryConfig{
			Enabled: getEnvBool("HISTORY_BLEND_ENABLED", false),
			Window:  getEnvInt("HISTORY_BLEND_WINDOW", 5),
			Weight:  getEnvFloat("HISTORY_BLEND_WEIGHT", 0.30),
		},
	}
}

// RecommenderConfig builds the recommendation policy with NCAAM defaults.
func RecommenderConfig() recommend.Config {
	return recommend.Config{
		Thresholds: map[models.BetType]recommend.MarketThresholds{
			models.BetTypeSpread: {
				MinEdge:       getEnvFloat("SPREAD_FG_MIN_EDGE", 2.0),
				MinConfidence: getEnvFloat("SPREAD_FG_MIN_CONFIDENCE", 0.60),
			},
			models.BetTypeTotal: {
				MinEdge:       getEnvFloat("TOTAL_FG_MIN_EDGE", 3.0),
				MinConfidence: getEnvFloat("TOTAL_FG_MIN_CONFIDENCE", 0.60),
			},
			models.BetTypeMoneyline: {
				MinEdge:       getEnvFloat("MONEYLINE_FG_MIN_EDGE", 0.04),
				MinConfidence: getEnvFloat("MONEYLINE_FG_MIN_CONFIDENCE", 0.62),
			},
			models.BetTypeSpread1H: {
				MinEdge:       getEnvFloat("SPREAD_1H_MIN_EDGE", 3.5),
				MinConfidence: getEnvFloat("SPREAD_1H_MIN_CONFIDENCE", 0.60),
			},
			models.BetTypeTotal1H: {
				MinEdge:       getEnvFloat("TOTAL_1H_MIN_EDGE", 2.0),
				MinConfidence: getEnvFloat("TOTAL_1H_MIN_CONFIDENCE", 0.60),
			},
			models.BetTypeMoneyline1H: {
				MinEdge:       getEnvFloat("MONEYLINE_1H_MIN_EDGE", 0.05),
				MinConfidence: getEnvFloat("MONEYLINE_1H_MIN_CONFIDENCE", 0.62),
			},
		},

		EVGatingEnabled:  getEnvBool("EV_GATING_ENABLED", true),
		MinEVPercent:     getEnvFloat("MIN_EV_PERCENT", 0.0),
		DefaultLinePrice: getEnvInt("DEFAULT_LINE_PRICE", -110),
		BestPerGame:      getEnvBool("BEST_PER_GAME_ONLY", false),

		Sizing: recommend.SizingConfig{
			KellyDivisor:            getEnvFloat("KELLY_DIVISOR", 4.0),
			MaxKellyFraction:        getEnvFloat("MAX_KELLY_FRACTION", 0.25),
			UnitsPerBankroll:        getEnvFloat("UNITS_PER_BANKROLL", 10.0),
			EdgeMultiplierCap:       getEnvFloat("EDGE_MULTIPLIER_CAP", 2.0),
			ConfidenceMultiplierCap: getEnvFloat("CONFIDENCE_MULTIPLIER_CAP", 1.25),
			MinUnits:                getEnvFloat("MIN_BET_UNITS", 0.5),
			MaxUnits:                getEnvFloat("MAX_BET_UNITS", 3.0),
			MediumUnits:             getEnvFloat("TIER_MEDIUM_UNITS", 1.5),
			MaxTierUnits:            getEnvFloat("TIER_MAX_UNITS", 2.5),
		},
	}
}

// GateConfig builds the validation gate bounds.
func GateConfig() gate.Config {
	return gate.Config{
		SignCheckQualityGap: getEnvFloat("GATE_SIGN_CHECK_QUALITY_GAP", 5.0),
		MaxPlausibleSpread:  getEnvFloat("GATE_MAX_PLAUSIBLE_SPREAD", 40.0),
		MinPlausibleTotal:   getEnvFloat("GATE_MIN_PLAUSIBLE_TOTAL", 100.0),
		MaxPlausibleTotal:   getEnvFloat("GATE_MAX_PLAUSIBLE_TOTAL", 200.0),
		MaxRatingsAge:       time.Duration(getEnvInt("GATE_MAX_RATINGS_AGE_HOURS", 48)) * time.Hour,
	}
}

// SharpBooks returns the bookmaker keys treated as the sharp benchmark.
func SharpBooks() []string {
	return getEnvStringSlice("SHARP_BOOKS", []string{"pinnacle", "circa", "bookmaker"})
}

// Helper functions for environment variable parsing

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
