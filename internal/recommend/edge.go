package recommend

import (
	"math"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/oddsmath"
)

// Edge is one market's disagreement between model and market, oriented so
// the magnitude is always the value on the pick side. For spread and total
// markets Value is in points; for moneylines it is a probability
// differential against the no-vig market price.
type Edge struct {
	BetType models.BetType
	Pick    models.Pick
	Value   float64

	// Market probability context, set for moneyline markets and for line
	// markets when both side prices were available.
	MarketProb *float64
	MarketHold *float64
}

// EdgeCalculator compares model predictions against market lines.
type EdgeCalculator struct{}

// NewEdgeCalculator builds a calculator. Stateless; a single instance
// serves all callers.
func NewEdgeCalculator() *EdgeCalculator {
	return &EdgeCalculator{}
}

// Calculate returns the edge for one market, or ErrMissingMarketData when
// the market is not offered. A positive home-side disagreement picks HOME,
// a model total above the market picks OVER.
func (c *EdgeCalculator) Calculate(pred models.MarketPrediction, odds models.MarketOdds) (*Edge, error) {
	if pred.BetType.IsMoneyline() {
		return c.moneylineEdge(pred, odds)
	}
	return c.lineEdge(pred, odds)
}

// lineEdge computes the point edge for a spread or total market. Spreads
// are home-perspective lines where lower is better for the home side, so a
// model line below the market is home value.
func (c *EdgeCalculator) lineEdge(pred models.MarketPrediction, odds models.MarketOdds) (*Edge, error) {
	line := odds.Line(pred.BetType)
	if line == nil {
		return nil, models.ErrMissingMarketData
	}

	var signed float64
	var pick models.Pick
	if pred.BetType.IsSpread() {
		signed = *line - pred.Value
		if signed >= 0 {
			pick = models.PickHome
		} else {
			pick = models.PickAway
		}
	} else {
		signed = pred.Value - *line
		if signed >= 0 {
			pick = models.PickOver
		} else {
			pick = models.PickUnder
		}
	}

	e := &Edge{
		BetType: pred.BetType,
		Pick:    pick,
		Value:   math.Abs(signed),
	}

	if homePrice, awayPrice := odds.Prices(pred.BetType); homePrice != nil && awayPrice != nil {
		fairHome, fairAway, hold, err := oddsmath.RemoveVigTwoWay(*homePrice, *awayPrice)
		if err == nil {
			fair := fairHome
			if pick == models.PickAway || pick == models.PickUnder {
				fair = fairAway
			}
			e.MarketProb = models.Float64(fair)
			e.MarketHold = models.Float64(hold)
		}
	}

	return e, nil
}

// moneylineEdge computes the probability differential between the model's
// win probability and the no-vig market probability. Both side prices are
// required: a one-sided moneyline has no fair price to beat.
func (c *EdgeCalculator) moneylineEdge(pred models.MarketPrediction, odds models.MarketOdds) (*Edge, error) {
	homePrice, awayPrice := odds.Prices(pred.BetType)
	if homePrice == nil || awayPrice == nil {
		return nil, models.ErrMissingMarketData
	}
	if pred.WinProb == nil {
		return nil, models.ErrMissingMarketData
	}

	fairHome, fairAway, hold, err := oddsmath.RemoveVigTwoWay(*homePrice, *awayPrice)
	if err != nil {
		return nil, models.ErrMissingMarketData
	}

	homeEdge := *pred.WinProb - fairHome
	e := &Edge{
		BetType:    pred.BetType,
		MarketHold: models.Float64(hold),
	}
	if homeEdge >= 0 {
		e.Pick = models.PickHome
		e.Value = homeEdge
		e.MarketProb = models.Float64(fairHome)
	} else {
		e.Pick = models.PickAway
		e.Value = (1 - *pred.WinProb) - fairAway
		e.MarketProb = models.Float64(fairAway)
	}
	if e.Value < 0 {
		e.Value = 0
	}

	return e, nil
}

// Annotate stamps each market prediction's Edge field from the odds.
// Markets without a line keep a nil edge, other markets proceed
// independently. Spread and total edges keep the home/over sign convention:
// positive favors HOME or OVER.
func (c *EdgeCalculator) Annotate(pred *models.GamePrediction, odds *models.MarketOdds) {
	if odds == nil {
		return
	}
	for _, bt := range models.AllBetTypes {
		mp := pred.Market(bt)
		e, err := c.Calculate(mp, *odds)
		if err != nil {
			continue
		}
		signed := e.Value
		if e.Pick == models.PickAway || e.Pick == models.PickUnder {
			signed = -signed
		}
		if bt.IsMoneyline() {
			mp.Edge = models.Float64(math.Round(signed*1000) / 1000)
		} else {
			mp.Edge = models.Float64(math.Round(signed*10) / 10)
		}
		pred.SetMarket(bt, mp)
	}
}
