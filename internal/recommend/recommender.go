package recommend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/oddsmath"
)

// Pick probabilities are bounded hard before Kelly sizing. Model cover
// probabilities outside this band say more about miscalibration than about
// the bet, and unbounded Kelly on them produces ruinous stakes.
const (
	minPickProb = 0.15
	maxPickProb = 0.85
)

// MarketThresholds gate one market's recommendations. MinEdge is in points
// for line markets and probability for moneylines.
type MarketThresholds struct {
	MinEdge       float64
	MinConfidence float64
}

// Config is the full recommendation policy.
type Config struct {
	Thresholds map[models.BetType]MarketThresholds

	// EV gating: when enabled, a bet whose probability-implied expected
	// value sits below MinEVPercent is rejected regardless of point edge.
	EVGatingEnabled bool
	MinEVPercent    float64

	// Price assumed for a spread/total side when the book sent a line
	// without prices. Standard juice.
	DefaultLinePrice int

	// BestPerGame keeps only the highest edge*confidence recommendation
	// per game instead of surfacing every qualifying market.
	BestPerGame bool

	Sizing SizingConfig
}

// Recommender turns annotated predictions plus market odds into sized
// betting recommendations. Terminal state per market is either a
// recommendation or nothing: there are no partial or advisory outputs.
type Recommender struct {
	cfg   Config
	edges *EdgeCalculator
	sizer *StakeSizer
}

// NewRecommender builds a recommender. Markets missing from
// cfg.Thresholds never produce recommendations.
func NewRecommender(cfg Config) *Recommender {
	return &Recommender{
		cfg:   cfg,
		edges: NewEdgeCalculator(),
		sizer: NewStakeSizer(cfg.Sizing),
	}
}

// Recommend evaluates all six markets for a game. Markets without lines,
// below thresholds, or failing EV gating are silently skipped; the engine
// degrades to no recommendation rather than guessing.
func (r *Recommender) Recommend(pred *models.GamePrediction, odds *models.MarketOdds) []*models.BettingRecommendation {
	if pred == nil || odds == nil {
		return nil
	}

	var recs []*models.BettingRecommendation
	for _, bt := range models.AllBetTypes {
		rec := r.evaluate(bt, pred, *odds)
		if rec != nil {
			recs = append(recs, rec)
		}
	}

	if r.cfg.BestPerGame && len(recs) > 1 {
		sort.Slice(recs, func(i, j int) bool {
			return r.score(recs[i]) > r.score(recs[j])
		})
		recs = recs[:1]
	}

	return recs
}

// evaluate runs the decision sequence for one market: edge, thresholds,
// EV gate, Kelly sizing, tiering. Any rejection returns nil.
func (r *Recommender) evaluate(bt models.BetType, pred *models.GamePrediction, odds models.MarketOdds) *models.BettingRecommendation {
	thresholds, ok := r.cfg.Thresholds[bt]
	if !ok {
		return nil
	}

	mp := pred.Market(bt)
	edge, err := r.edges.Calculate(mp, odds)
	if err != nil {
		return nil
	}

	if edge.Value < thresholds.MinEdge || mp.Confidence < thresholds.MinConfidence {
		return nil
	}

	price, priceWasDefault := r.pickPrice(bt, edge.Pick, odds)
	if price == 0 {
		return nil
	}

	pickProb := r.pickProbability(mp, *edge)

	evPercent, err := oddsmath.ExpectedValuePercent(pickProb, price)
	if err != nil {
		return nil
	}
	if r.cfg.EVGatingEnabled && evPercent < r.cfg.MinEVPercent {
		return nil
	}

	edgeRatio := 1.0
	if thresholds.MinEdge > 0 {
		edgeRatio = edge.Value / thresholds.MinEdge
	}
	confRatio := 1.0
	if thresholds.MinConfidence > 0 {
		confRatio = mp.Confidence / thresholds.MinConfidence
	}

	stake, err := r.sizer.Size(pickProb, price, edgeRatio, confRatio)
	if err != nil {
		return nil
	}
	if stake.KellyFraction <= 0 {
		// No positive expectation at this price; the unit floor must not
		// manufacture a stake for it.
		return nil
	}

	rec := &models.BettingRecommendation{
		GameID:       pred.GameID,
		HomeTeam:     pred.HomeTeam,
		AwayTeam:     pred.AwayTeam,
		CommenceTime: pred.CommenceTime,

		BetType: bt,
		Pick:    edge.Pick,

		ModelLine:  mp.Value,
		Edge:       round2(edge.Value),
		Confidence: mp.Confidence,

		EVPercent:   round2(evPercent),
		WinProb:     round3(pickProb),
		PickPrice:   price,
		MarketNoVig: edge.MarketProb,
		MarketHold:  edge.MarketHold,

		KellyFraction:    stake.KellyFraction,
		RecommendedUnits: stake.Units,
		BetTier:          r.sizer.Tier(stake.Units),

		ModelVersion: pred.ModelVersion,
		CreatedAt:    time.Now().UTC(),
	}

	if line := odds.Line(bt); line != nil {
		rec.MarketLine = *line
		rec.Line = pickLine(edge.Pick, *line)
	}
	if prob, err := oddsmath.AmericanToImpliedProbability(price); err == nil {
		rec.MarketProb = round3(prob)
	}
	if priceWasDefault {
		rec.Warnings = append(rec.Warnings, "no listed price for pick side, assumed standard -110 juice")
	}
	if w := sharpDisagreement(bt, edge.Pick, odds); w != "" {
		rec.Warnings = append(rec.Warnings, w)
	}

	return rec
}

// sharpDisagreement warns when the consensus number is materially worse for
// the pick than the sharp reference line, meaning the sharp side of the
// market has already moved against this bet.
func sharpDisagreement(bt models.BetType, pick models.Pick, odds models.MarketOdds) string {
	var sharp, consensus *float64
	switch {
	case bt == models.BetTypeSpread:
		sharp, consensus = odds.SharpSpread, odds.Spread
	case bt == models.BetTypeTotal:
		sharp, consensus = odds.SharpTotal, odds.Total
	default:
		return ""
	}
	if sharp == nil || consensus == nil {
		return ""
	}

	// Positive diff = consensus number is higher than sharp.
	diff := *consensus - *sharp
	var worseBy float64
	switch pick {
	case models.PickHome, models.PickUnder:
		// HOME wants a higher (less negative) spread, UNDER a higher total:
		// a consensus below sharp is the worse number.
		worseBy = -diff
	case models.PickAway, models.PickOver:
		worseBy = diff
	}
	if worseBy >= 0.5 {
		return fmt.Sprintf("consensus line is %.1f worse than sharp reference %.1f", worseBy, *sharp)
	}
	return ""
}

// pickProbability is the win probability used for EV and Kelly. For line
// markets it is the cover probability implied by the point edge and the
// market's sigma, shrunk toward a coin flip by confidence; moneylines use
// the model win probability for the pick directly. Both are clamped hard.
func (r *Recommender) pickProbability(mp models.MarketPrediction, edge Edge) float64 {
	var p float64
	if mp.BetType.IsMoneyline() {
		wp := 0.5
		if mp.WinProb != nil {
			wp = *mp.WinProb
		}
		if edge.Pick == models.PickAway {
			wp = 1 - wp
		}
		p = wp
	} else {
		sigma := mp.Sigma
		if sigma <= 0 {
			sigma = 1
		}
		coverProb := 0.5 * (1 + math.Erf(edge.Value/(sigma*math.Sqrt2)))
		p = 0.5 + (coverProb-0.5)*mp.Confidence
	}

	if p < minPickProb {
		return minPickProb
	}
	if p > maxPickProb {
		return maxPickProb
	}
	return p
}

// pickPrice resolves the American price for the pick side, substituting
// the default line price for spread/total sides the book sent without
// prices. Moneyline picks never default: the price is the market.
func (r *Recommender) pickPrice(bt models.BetType, pick models.Pick, odds models.MarketOdds) (int, bool) {
	homeSide, awaySide := odds.Prices(bt)

	side := homeSide
	if pick == models.PickAway || pick == models.PickUnder {
		side = awaySide
	}

	if side != nil {
		return *side, false
	}
	if bt.IsMoneyline() {
		return 0, false
	}
	return r.cfg.DefaultLinePrice, true
}

// pickLine expresses the market line from the pick's perspective: AWAY
// flips the home-perspective spread, totals keep the posted number.
func pickLine(pick models.Pick, marketLine float64) float64 {
	if pick == models.PickAway {
		return -marketLine
	}
	return marketLine
}

// score orders recommendations for best-per-game selection. Edges are
// normalized by their market's minimum so point edges and probability
// edges compare on the same scale.
func (r *Recommender) score(rec *models.BettingRecommendation) float64 {
	edge := rec.Edge
	if t, ok := r.cfg.Thresholds[rec.BetType]; ok && t.MinEdge > 0 {
		edge = rec.Edge / t.MinEdge
	}
	return edge * rec.Confidence
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
