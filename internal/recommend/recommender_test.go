package recommend_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/internal/recommend"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
	"github.com/google/uuid"
)

func testPolicy() recommend.Config {
	return recommend.Config{
		Thresholds: map[models.BetType]recommend.MarketThresholds{
			models.BetTypeSpread:      {MinEdge: 2.0, MinConfidence: 0.60},
			models.BetTypeTotal:       {MinEdge: 3.0, MinConfidence: 0.60},
			models.BetTypeMoneyline:   {MinEdge: 0.04, MinConfidence: 0.62},
			models.BetTypeSpread1H:    {MinEdge: 3.5, MinConfidence: 0.60},
			models.BetTypeTotal1H:     {MinEdge: 2.0, MinConfidence: 0.60},
			models.BetTypeMoneyline1H: {MinEdge: 0.05, MinConfidence: 0.62},
		},
		DefaultLinePrice: -110,
		Sizing: recommend.SizingConfig{
			KellyDivisor:            4,
			MaxKellyFraction:        0.25,
			UnitsPerBankroll:        10,
			EdgeMultiplierCap:       2.0,
			ConfidenceMultiplierCap: 1.25,
			MinUnits:                0.5,
			MaxUnits:                3.0,
			MediumUnits:             1.5,
			MaxTierUnits:            2.5,
		},
	}
}

func intPtr(v int) *int { return &v }

func spreadPrediction(value, confidence, sigma float64) *models.GamePrediction {
	return &models.GamePrediction{
		GameID:       uuid.New(),
		HomeTeam:     "Duke",
		AwayTeam:     "Kansas",
		CommenceTime: time.Now().Add(6 * time.Hour),
		Spread: models.MarketPrediction{
			BetType:    models.BetTypeSpread,
			Value:      value,
			Confidence: confidence,
			Sigma:      sigma,
		},
		ModelVersion: "test-v1",
	}
}

func spreadOdds(line float64, homePrice, awayPrice *int) *models.MarketOdds {
	return &models.MarketOdds{
		Spread:          models.Float64(line),
		SpreadHomePrice: homePrice,
		SpreadAwayPrice: awayPrice,
	}
}

// Model -9.0 against a -6.0 market at -110 both ways is the canonical
// qualifying spread bet: 3 points of home value.
func TestSpreadRecommendation(t *testing.T) {
	r := recommend.NewRecommender(testPolicy())

	pred := spreadPrediction(-9.0, 0.70, 11.0)
	odds := spreadOdds(-6.0, intPtr(-110), intPtr(-110))

	recs := r.Recommend(pred, odds)
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	rec := recs[0]

	if rec.BetType != models.BetTypeSpread {
		t.Errorf("BetType = %s, want SPREAD", rec.BetType)
	}
	if rec.Pick != models.PickHome {
		t.Errorf("Pick = %s, want HOME", rec.Pick)
	}
	if rec.Edge != 3.0 {
		t.Errorf("Edge = %v, want 3.0", rec.Edge)
	}
	if rec.Line != -6.0 {
		t.Errorf("Line = %v, want -6.0 (home perspective)", rec.Line)
	}
	if rec.PickPrice != -110 {
		t.Errorf("PickPrice = %d, want -110", rec.PickPrice)
	}

	// Cover probability shrunk by confidence: 0.5 + (phi(3/11)-0.5)*0.70
	if math.Abs(rec.WinProb-0.575) > 0.001 {
		t.Errorf("WinProb = %v, want 0.575", rec.WinProb)
	}
	if math.Abs(rec.EVPercent-9.82) > 0.05 {
		t.Errorf("EVPercent = %v, want ~9.82", rec.EVPercent)
	}

	// Quarter Kelly of 0.575 at -110, then the half-unit floor
	if math.Abs(rec.KellyFraction-0.027) > 0.0005 {
		t.Errorf("KellyFraction = %v, want 0.027", rec.KellyFraction)
	}
	if rec.KellyFraction > 0.25 {
		t.Errorf("KellyFraction = %v exceeds the 0.25 cap", rec.KellyFraction)
	}
	if rec.RecommendedUnits != 0.5 {
		t.Errorf("RecommendedUnits = %v, want 0.5 (floor)", rec.RecommendedUnits)
	}
	if rec.BetTier != models.BetTierStandard {
		t.Errorf("BetTier = %s, want standard", rec.BetTier)
	}

	// Equal juice removes to a coin flip
	if rec.MarketNoVig == nil || math.Abs(*rec.MarketNoVig-0.5) > 0.0001 {
		t.Errorf("MarketNoVig = %v, want 0.5", rec.MarketNoVig)
	}
}

func TestAwayPickFlipsLine(t *testing.T) {
	r := recommend.NewRecommender(testPolicy())

	// Model -2.0 against a -6.0 market: 4 points of away value.
	pred := spreadPrediction(-2.0, 0.70, 11.0)
	odds := spreadOdds(-6.0, intPtr(-110), intPtr(-110))

	recs := r.Recommend(pred, odds)
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	rec := recs[0]

	if rec.Pick != models.PickAway {
		t.Errorf("Pick = %s, want AWAY", rec.Pick)
	}
	if rec.Edge != 4.0 {
		t.Errorf("Edge = %v, want 4.0", rec.Edge)
	}
	if rec.Line != 6.0 {
		t.Errorf("Line = %v, want +6.0 from the away perspective", rec.Line)
	}
}

func TestEdgeBelowThresholdRejected(t *testing.T) {
	r := recommend.NewRecommender(testPolicy())

	// Only 1 point of disagreement against a 2 point minimum.
	pred := spreadPrediction(-7.0, 0.70, 11.0)
	odds := spreadOdds(-6.0, intPtr(-110), intPtr(-110))

	if recs := r.Recommend(pred, odds); len(recs) != 0 {
		t.Errorf("got %d recommendations below the edge threshold, want 0", len(recs))
	}
}

func TestConfidenceBelowThresholdRejected(t *testing.T) {
	r := recommend.NewRecommender(testPolicy())

	pred := spreadPrediction(-9.0, 0.55, 11.0)
	odds := spreadOdds(-6.0, intPtr(-110), intPtr(-110))

	if recs := r.Recommend(pred, odds); len(recs) != 0 {
		t.Errorf("got %d recommendations below the confidence threshold, want 0", len(recs))
	}
}

func TestNoLinesNoRecommendations(t *testing.T) {
	r := recommend.NewRecommender(testPolicy())

	pred := spreadPrediction(-9.0, 0.70, 11.0)

	if recs := r.Recommend(pred, &models.MarketOdds{}); len(recs) != 0 {
		t.Errorf("got %d recommendations with no market lines, want 0", len(recs))
	}
	if recs := r.Recommend(pred, nil); recs != nil {
		t.Errorf("got %v recommendations with nil odds, want none", recs)
	}
}

func TestEVGatingRejectsNegativeEV(t *testing.T) {
	cfg := testPolicy()
	cfg.EVGatingEnabled = true
	cfg.MinEVPercent = 0
	r := recommend.NewRecommender(cfg)

	// 3 points of edge, but -250 juice prices the pick well past the model
	// probability.
	pred := spreadPrediction(-9.0, 0.70, 11.0)
	odds := spreadOdds(-6.0, intPtr(-250), intPtr(110))

	if recs := r.Recommend(pred, odds); len(recs) != 0 {
		t.Errorf("got %d recommendations with negative EV, want 0", len(recs))
	}
}

// With EV gating off, the zero Kelly stake still stops the bet: the unit
// floor must never manufacture a position with no expectation.
func TestZeroKellyReturnsNothing(t *testing.T) {
	cfg := testPolicy()
	cfg.EVGatingEnabled = false
	r := recommend.NewRecommender(cfg)

	pred := spreadPrediction(-9.0, 0.70, 11.0)
	odds := spreadOdds(-6.0, intPtr(-250), intPtr(110))

	if recs := r.Recommend(pred, odds); len(recs) != 0 {
		t.Errorf("got %d recommendations with zero Kelly, want 0", len(recs))
	}
}

func TestUnpricedSpreadDefaultsToStandardJuice(t *testing.T) {
	r := recommend.NewRecommender(testPolicy())

	pred := spreadPrediction(-9.0, 0.70, 11.0)
	odds := spreadOdds(-6.0, nil, nil)

	recs := r.Recommend(pred, odds)
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	rec := recs[0]

	if rec.PickPrice != -110 {
		t.Errorf("PickPrice = %d, want the -110 default", rec.PickPrice)
	}
	found := false
	for _, w := range rec.Warnings {
		if strings.Contains(w, "-110") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a default-price warning, got %v", rec.Warnings)
	}
	if rec.MarketNoVig != nil {
		t.Errorf("MarketNoVig = %v, want nil without listed prices", *rec.MarketNoVig)
	}
}

func TestMoneylineRecommendation(t *testing.T) {
	r := recommend.NewRecommender(testPolicy())

	pred := spreadPrediction(-9.0, 0.70, 11.0)
	pred.Moneyline = models.MarketPrediction{
		BetType:    models.BetTypeMoneyline,
		Value:      150,
		Confidence: 0.68,
		Sigma:      11.0,
		WinProb:    models.Float64(0.46),
	}
	odds := &models.MarketOdds{
		MoneylineHome: intPtr(150),
		MoneylineAway: intPtr(-170),
	}

	recs := r.Recommend(pred, odds)
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	rec := recs[0]

	if rec.BetType != models.BetTypeMoneyline {
		t.Errorf("BetType = %s, want MONEYLINE", rec.BetType)
	}
	// Fair home probability at +150/-170 is ~0.388; the model's 0.46 is a
	// ~0.07 probability edge on the home side.
	if rec.Pick != models.PickHome {
		t.Errorf("Pick = %s, want HOME", rec.Pick)
	}
	if math.Abs(rec.Edge-0.07) > 0.005 {
		t.Errorf("Edge = %v, want ~0.07", rec.Edge)
	}
	if rec.PickPrice != 150 {
		t.Errorf("PickPrice = %d, want 150", rec.PickPrice)
	}
	if math.Abs(rec.WinProb-0.46) > 0.0001 {
		t.Errorf("WinProb = %v, want 0.46 (model probability, no shrinkage)", rec.WinProb)
	}
	if math.Abs(rec.EVPercent-15.0) > 0.01 {
		t.Errorf("EVPercent = %v, want 15.0", rec.EVPercent)
	}
	if math.Abs(rec.KellyFraction-0.025) > 0.0001 {
		t.Errorf("KellyFraction = %v, want 0.025", rec.KellyFraction)
	}
}

func TestMoneylineNeverDefaultsPrice(t *testing.T) {
	r := recommend.NewRecommender(testPolicy())

	pred := spreadPrediction(-9.0, 0.70, 11.0)
	pred.Moneyline = models.MarketPrediction{
		BetType:    models.BetTypeMoneyline,
		Value:      -300,
		Confidence: 0.68,
		Sigma:      11.0,
		WinProb:    models.Float64(0.75),
	}
	// One-sided moneyline: no fair price to beat.
	odds := &models.MarketOdds{MoneylineHome: intPtr(-200)}

	if recs := r.Recommend(pred, odds); len(recs) != 0 {
		t.Errorf("got %d recommendations from a one-sided moneyline, want 0", len(recs))
	}
}

func TestBestPerGameKeepsStrongestBet(t *testing.T) {
	cfg := testPolicy()
	cfg.BestPerGame = true
	r := recommend.NewRecommender(cfg)

	pred := spreadPrediction(-9.0, 0.70, 11.0)
	pred.Total = models.MarketPrediction{
		BetType:    models.BetTypeTotal,
		Value:      165.0,
		Confidence: 0.65,
		Sigma:      8.8,
	}
	odds := &models.MarketOdds{
		Spread:          models.Float64(-6.0),
		SpreadHomePrice: intPtr(-110),
		SpreadAwayPrice: intPtr(-110),
		Total:           models.Float64(158.0),
		OverPrice:       intPtr(-110),
		UnderPrice:      intPtr(-110),
	}

	recs := r.Recommend(pred, odds)
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations with best-per-game, want 1", len(recs))
	}
	// Spread: 3/2.0 * 0.70 = 1.05. Total: 7/3.0 * 0.65 = 1.52.
	if recs[0].BetType != models.BetTypeTotal {
		t.Errorf("kept %s, want the higher scored TOTAL", recs[0].BetType)
	}
	if recs[0].Pick != models.PickOver {
		t.Errorf("Pick = %s, want OVER", recs[0].Pick)
	}
}

func TestLargeEdgeHitsMaxTier(t *testing.T) {
	r := recommend.NewRecommender(testPolicy())

	// 10 points of edge at high confidence saturates both multipliers and
	// the unit ceiling.
	pred := spreadPrediction(-16.0, 0.95, 11.0)
	odds := spreadOdds(-6.0, intPtr(-110), intPtr(-110))

	recs := r.Recommend(pred, odds)
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	rec := recs[0]

	if rec.RecommendedUnits != 3.0 {
		t.Errorf("RecommendedUnits = %v, want the 3.0 ceiling", rec.RecommendedUnits)
	}
	if rec.BetTier != models.BetTierMax {
		t.Errorf("BetTier = %s, want max", rec.BetTier)
	}
	if rec.KellyFraction > 0.25 {
		t.Errorf("KellyFraction = %v exceeds the 0.25 cap", rec.KellyFraction)
	}
}

func TestSharpDisagreementWarning(t *testing.T) {
	r := recommend.NewRecommender(testPolicy())

	pred := spreadPrediction(-9.0, 0.70, 11.0)
	odds := spreadOdds(-6.0, intPtr(-110), intPtr(-110))
	// Sharp reference sits at -5.5: the consensus -6.0 is half a point worse
	// for a HOME bet.
	odds.SharpSpread = models.Float64(-5.5)

	recs := r.Recommend(pred, odds)
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}

	found := false
	for _, w := range recs[0].Warnings {
		if strings.Contains(w, "sharp") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a sharp disagreement warning, got %v", recs[0].Warnings)
	}
}

func TestSharpAgreementNoWarning(t *testing.T) {
	r := recommend.NewRecommender(testPolicy())

	pred := spreadPrediction(-9.0, 0.70, 11.0)
	odds := spreadOdds(-6.0, intPtr(-110), intPtr(-110))
	// Sharp is a better number for HOME than the consensus.
	odds.SharpSpread = models.Float64(-6.5)

	recs := r.Recommend(pred, odds)
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	for _, w := range recs[0].Warnings {
		if strings.Contains(w, "sharp") {
			t.Errorf("unexpected sharp warning: %q", w)
		}
	}
}

func TestStakeSizerCapsFraction(t *testing.T) {
	sizer := recommend.NewStakeSizer(recommend.SizingConfig{
		KellyDivisor:            1,
		MaxKellyFraction:        0.25,
		UnitsPerBankroll:        10,
		EdgeMultiplierCap:       2.0,
		ConfidenceMultiplierCap: 1.25,
		MinUnits:                0.5,
		MaxUnits:                3.0,
		MediumUnits:             1.5,
		MaxTierUnits:            2.5,
	})

	// Full Kelly of 0.85 at +300 is 0.80 of bankroll; the cap holds it at
	// 0.25 regardless of divisor.
	stake, err := sizer.Size(0.85, 300, 1, 1)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if stake.KellyFraction != 0.25 {
		t.Errorf("KellyFraction = %v, want the 0.25 cap", stake.KellyFraction)
	}
	if stake.Units != 2.5 {
		t.Errorf("Units = %v, want 2.5", stake.Units)
	}
}

func TestTierBreakpoints(t *testing.T) {
	sizer := recommend.NewStakeSizer(testPolicy().Sizing)

	tests := []struct {
		units float64
		want  models.BetTier
	}{
		{0.5, models.BetTierStandard},
		{1.49, models.BetTierStandard},
		{1.5, models.BetTierMedium},
		{2.49, models.BetTierMedium},
		{2.5, models.BetTierMax},
		{3.0, models.BetTierMax},
	}
	for _, tt := range tests {
		if got := sizer.Tier(tt.units); got != tt.want {
			t.Errorf("Tier(%v) = %s, want %s", tt.units, got, tt.want)
		}
	}
}
