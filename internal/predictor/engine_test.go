package predictor_test

import (
	"errors"
	"math"
	"testing"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/internal/predictor"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
	"github.com/google/uuid"
)

// testConfig is the NCAAM calibration pinned to fixed values so the tests
// stay hermetic against env overrides.
func testConfig() predictor.Config {
	return predictor.Config{
		Backend:      predictor.BackendAnalytic,
		ModelVersion: "test",

		League: predictor.LeagueAverages{
			Tempo:       68.5,
			Efficiency:  106.0,
			ORBPct:      28.0,
			DRBPct:      72.0,
			TORPct:      20.0,
			FTRate:      32.0,
			ThreePtRate: 35.0,
			EFGPct:      50.0,
		},
		Matchup: predictor.MatchupConfig{
			ReboundWeight:  0.15,
			TurnoverWeight: 0.10,
		},
		Variance: predictor.VarianceConfig{
			BaseSigma:           11.0,
			ThreePtFactor:       0.15,
			PaceFactor:          0.10,
			MinSigma:            9.0,
			MaxSigma:            14.0,
			FirstHalfMultiplier: 1.15,
		},

		SpreadFG: predictor.SegmentModelConfig{
			BetType:            models.BetTypeSpread,
			HomeCourtAdvantage: 3.0,
			TempoFraction:      1.0,
			EfficiencyScale:    1.0,
			MatchupScale:       1.0,
			SigmaScale:         1.0,
			Confidence:         predictor.ConfidenceConfig{Base: 0.70, Floor: 0.30, Ceiling: 0.95},
		},
		TotalFG: predictor.SegmentModelConfig{
			BetType:            models.BetTypeTotal,
			HomeCourtAdvantage: 0.9,
			Calibration:        7.0,
			TempoFraction:      1.0,
			EfficiencyScale:    1.0,
			MatchupScale:       1.0,
			SigmaScale:         0.80,
			Confidence:         predictor.ConfidenceConfig{Base: 0.65, Floor: 0.30, Ceiling: 0.85},
		},
		SpreadH1: predictor.SegmentModelConfig{
			BetType:            models.BetTypeSpread1H,
			HomeCourtAdvantage: 1.5,
			TempoFraction:      0.48,
			EfficiencyScale:    0.98,
			MatchupScale:       0.80,
			SigmaScale:         1.0,
			Confidence:         predictor.ConfidenceConfig{Base: 0.62, Floor: 0.30, Ceiling: 0.80},
		},
		TotalH1: predictor.SegmentModelConfig{
			BetType:            models.BetTypeTotal1H,
			HomeCourtAdvantage: 0.45,
			Calibration:        2.7,
			TempoFraction:      0.48,
			EfficiencyScale:    0.98,
			MatchupScale:       0.80,
			SigmaScale:         0.85,
			Confidence:         predictor.ConfidenceConfig{Base: 0.58, Floor: 0.30, Ceiling: 0.72},
		},

		MoneylineFG: predictor.MoneylineConfig{
			BetType:    models.BetTypeMoneyline,
			SigmaScale: 1.0,
			Confidence: predictor.ConfidenceConfig{Base: 0.68, Floor: 0.30, Ceiling: 0.90},
		},
		MoneylineH1: predictor.MoneylineConfig{
			BetType:    models.BetTypeMoneyline1H,
			SigmaScale: 1.10,
			Confidence: predictor.ConfidenceConfig{Base: 0.60, Floor: 0.30, Ceiling: 0.78},
		},
	}
}

func leagueAverageRatings(name string, rank int) models.TeamRatings {
	return models.TeamRatings{
		TeamName:    name,
		AdjOff:      106.0,
		AdjDef:      106.0,
		Tempo:       68.5,
		Rank:        rank,
		EFG:         models.Float64(50.0),
		EFGD:        models.Float64(50.0),
		TOR:         models.Float64(20.0),
		TORD:        models.Float64(20.0),
		ORB:         models.Float64(28.0),
		DRB:         models.Float64(72.0),
		FTR:         models.Float64(32.0),
		FTRD:        models.Float64(32.0),
		ThreePtRate: models.Float64(35.0),
		Barthag:     models.Float64(0.500),
	}
}

func snapshot(home, away models.TeamRatings, neutral bool) models.GameSnapshot {
	return models.GameSnapshot{
		GameID:      uuid.New(),
		HomeTeam:    home.TeamName,
		AwayTeam:    away.TeamName,
		IsNeutral:   neutral,
		HomeRatings: home,
		AwayRatings: away,
	}
}

func newEngine(t *testing.T) *predictor.Engine {
	t.Helper()
	engine, err := predictor.New(testConfig())
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	return engine
}

func TestUnknownBackendFailsStartup(t *testing.T) {
	cfg := testConfig()
	cfg.Backend = "ensemble_v2"

	_, err := predictor.New(cfg)
	if err == nil {
		t.Fatal("expected configuration error for unknown backend")
	}

	var confErr *models.ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
}

func TestIdenticalTeamsSpreadIsHomeCourt(t *testing.T) {
	engine := newEngine(t)

	home := leagueAverageRatings("Home State", 100)
	away := leagueAverageRatings("Away Tech", 100)

	pred, err := engine.Predict(snapshot(home, away, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Identical teams: the margin reduces to home court alone.
	if math.Abs(pred.Spread.Value-(-3.0)) > 0.05 {
		t.Errorf("spread = %.2f, want -3.0", pred.Spread.Value)
	}

	// 106 * 106 / 100 = 112.36 points per 100 possessions each way;
	// 112.36 * 68.5 / 100 = 76.97 points per team, plus HCA and calibration.
	wantTotal := 2*76.9666 + 0.9 + 7.0
	if math.Abs(pred.Total.Value-wantTotal) > 0.15 {
		t.Errorf("total = %.2f, want %.2f", pred.Total.Value, wantTotal)
	}

	// All style and quality increments are neutral except Four Factors
	// completeness, so confidence sits just above base.
	if pred.Spread.Confidence < 0.70 || pred.Spread.Confidence > 0.80 {
		t.Errorf("spread confidence = %.3f, want near base 0.70", pred.Spread.Confidence)
	}

	// League-average shooting and matched tempo leave sigma at base.
	if math.Abs(pred.Spread.Sigma-11.0) > 0.01 {
		t.Errorf("sigma = %.2f, want base 11.0", pred.Spread.Sigma)
	}

	// Home favorite at -3 converts to a moneyline below -100.
	if pred.Moneyline.Value >= -100 {
		t.Errorf("moneyline = %.0f, want < -100 for a home favorite", pred.Moneyline.Value)
	}
	if wp := *pred.Moneyline.WinProb; wp <= 0.5 || wp >= 0.7 {
		t.Errorf("moneyline win prob = %.3f, want in (0.5, 0.7)", wp)
	}
}

func TestReproducibility(t *testing.T) {
	engine := newEngine(t)

	home := leagueAverageRatings("Home State", 40)
	home.AdjOff = 112.3
	away := leagueAverageRatings("Away Tech", 80)
	away.AdjDef = 101.7
	snap := snapshot(home, away, false)

	first, err := engine.Predict(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := engine.Predict(snap)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, bt := range models.AllBetTypes {
			a, b := first.Market(bt), again.Market(bt)
			if a.Value != b.Value || a.Confidence != b.Confidence || a.Sigma != b.Sigma {
				t.Fatalf("%s prediction not reproducible: %+v vs %+v", bt, a, b)
			}
		}
	}
}

func TestNeutralSiteRemovesHomeCourt(t *testing.T) {
	engine := newEngine(t)

	home := leagueAverageRatings("Home State", 30)
	home.AdjOff = 114.0
	away := leagueAverageRatings("Away Tech", 60)
	away.AdjOff = 109.5

	atHome, err := engine.Predict(snapshot(home, away, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	neutral, err := engine.Predict(snapshot(home, away, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// spread(neutral) == spread(home) + HCA, within line rounding
	if diff := neutral.Spread.Value - (atHome.Spread.Value + 3.0); math.Abs(diff) > 0.11 {
		t.Errorf("FG spread neutral invariant off by %.2f", diff)
	}
	if diff := neutral.Spread1H.Value - (atHome.Spread1H.Value + 1.5); math.Abs(diff) > 0.11 {
		t.Errorf("1H spread neutral invariant off by %.2f", diff)
	}
	if diff := neutral.Total.Value - (atHome.Total.Value - 0.9); math.Abs(diff) > 0.11 {
		t.Errorf("FG total neutral invariant off by %.2f", diff)
	}
}

func TestFavoriteMonotonicity(t *testing.T) {
	engine := newEngine(t)

	strong := leagueAverageRatings("Strong U", 5)
	strong.AdjOff = 120.0
	strong.AdjDef = 95.0

	weak := leagueAverageRatings("Weak College", 300)
	weak.AdjOff = 98.0
	weak.AdjDef = 108.0

	strongHome, err := engine.Predict(snapshot(strong, weak, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	weakHome, err := engine.Predict(snapshot(weak, strong, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strongHome.Spread.Value >= -10 {
		t.Errorf("strong home spread = %.1f, want strongly negative", strongHome.Spread.Value)
	}
	if weakHome.Spread.Value <= 10 {
		t.Errorf("weak home spread = %.1f, want strongly positive", weakHome.Spread.Value)
	}

	if *strongHome.Moneyline.WinProb <= *weakHome.Moneyline.WinProb {
		t.Error("favorite win probability should exceed underdog's")
	}
}

func TestMarketIndependence(t *testing.T) {
	// Changing one market's calibration must not move any other market.
	base := newEngine(t)

	cfg := testConfig()
	cfg.TotalFG.Calibration += 4.0
	bumped, err := predictor.New(cfg)
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}

	home := leagueAverageRatings("Home State", 50)
	away := leagueAverageRatings("Away Tech", 90)
	snap := snapshot(home, away, false)

	basePred, err := base.Predict(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bumpedPred, err := bumped.Predict(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bumpedPred.Total.Value == basePred.Total.Value {
		t.Error("total calibration bump had no effect")
	}
	for _, bt := range []models.BetType{
		models.BetTypeSpread, models.BetTypeMoneyline,
		models.BetTypeSpread1H, models.BetTypeTotal1H, models.BetTypeMoneyline1H,
	} {
		if bumpedPred.Market(bt).Value != basePred.Market(bt).Value {
			t.Errorf("%s moved when only the FG total calibration changed", bt)
		}
	}
}

func TestBoundsAcrossRatingsGrid(t *testing.T) {
	engine := newEngine(t)
	cfg := testConfig()

	for _, off := range []float64{85, 100, 115, 130} {
		for _, def := range []float64{85, 100, 115, 130} {
			for _, tempo := range []float64{58, 66, 74, 82} {
				home := leagueAverageRatings("Home State", 120)
				home.AdjOff, home.AdjDef, home.Tempo = off, def, tempo
				away := leagueAverageRatings("Away Tech", 180)

				pred, err := engine.Predict(snapshot(home, away, false))
				if err != nil {
					t.Fatalf("unexpected error for off=%v def=%v tempo=%v: %v", off, def, tempo, err)
				}

				for _, bt := range models.AllBetTypes {
					mp := pred.Market(bt)
					if mp.Confidence < 0 || mp.Confidence > 1 {
						t.Errorf("%s confidence %.3f out of [0,1]", bt, mp.Confidence)
					}
					if mp.WinProb != nil && (*mp.WinProb < 0.01 || *mp.WinProb > 0.99) {
						t.Errorf("%s win prob %.3f out of [0.01, 0.99]", bt, *mp.WinProb)
					}
				}

				sigma := pred.Spread.Sigma
				if sigma < cfg.Variance.MinSigma || sigma > cfg.Variance.MaxSigma {
					t.Errorf("FG spread sigma %.2f out of [%.1f, %.1f]",
						sigma, cfg.Variance.MinSigma, cfg.Variance.MaxSigma)
				}
			}
		}
	}
}

func TestInvalidRatingsRejected(t *testing.T) {
	engine := newEngine(t)

	tests := []struct {
		name   string
		mutate func(*models.TeamRatings)
	}{
		{"efficiency too low", func(r *models.TeamRatings) { r.AdjOff = 50 }},
		{"efficiency too high", func(r *models.TeamRatings) { r.AdjDef = 160 }},
		{"tempo too low", func(r *models.TeamRatings) { r.Tempo = 40 }},
		{"tempo too high", func(r *models.TeamRatings) { r.Tempo = 95 }},
		{"missing team name", func(r *models.TeamRatings) { r.TeamName = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := leagueAverageRatings("Home State", 100)
			away := leagueAverageRatings("Away Tech", 100)
			tt.mutate(&home)

			_, err := engine.Predict(snapshot(home, away, false))
			if err == nil {
				t.Fatal("expected InvalidInputError")
			}

			var invalid *models.InvalidInputError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidInputError, got %T: %v", err, err)
			}
		})
	}
}

func TestMissingFourFactorsStillPredicts(t *testing.T) {
	engine := newEngine(t)

	// Core fields only: every optional field absent
	home := models.TeamRatings{TeamName: "Home State", AdjOff: 110, AdjDef: 102, Tempo: 67, Rank: 40}
	away := models.TeamRatings{TeamName: "Away Tech", AdjOff: 104, AdjDef: 105, Tempo: 70, Rank: 120}

	pred, err := engine.Predict(snapshot(home, away, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pred.Spread.Value >= 0 {
		t.Errorf("spread = %.1f, want home favored", pred.Spread.Value)
	}
}

func TestHistoryBlendSmoothsSuccessivePredictions(t *testing.T) {
	cfg := testConfig()
	cfg.History = predictor.HistoryConfig{Enabled: true, Window: 5, Weight: 0.5}
	engine, err := predictor.New(cfg)
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}

	home := leagueAverageRatings("Home State", 50)
	away := leagueAverageRatings("Away Tech", 90)
	snap := snapshot(home, away, false)

	first, err := engine.Predict(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Ratings move sharply between snapshots; the blend should land the
	// second prediction between the old and the new raw values.
	snap.HomeRatings.AdjOff = 112.0
	second, err := engine.Predict(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfgRaw := testConfig()
	rawEngine, err := predictor.New(cfgRaw)
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	raw, err := rawEngine.Predict(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lo := math.Min(first.Spread.Value, raw.Spread.Value)
	hi := math.Max(first.Spread.Value, raw.Spread.Value)
	if second.Spread.Value <= lo || second.Spread.Value >= hi {
		t.Errorf("blended spread %.1f not between prior %.1f and raw %.1f",
			second.Spread.Value, first.Spread.Value, raw.Spread.Value)
	}
}
