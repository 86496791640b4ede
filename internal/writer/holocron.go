package writer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
)

// HolocronWriter persists predictions and recommendations to the Holocron
// database
type HolocronWriter struct {
	db *sql.DB
}

// NewHolocronWriter creates a new Holocron writer
func NewHolocronWriter(db *sql.DB) *HolocronWriter {
	return &HolocronWriter{
		db: db,
	}
}

// WritePrediction writes one game's six market predictions as a single row.
// Returns the prediction row ID on success
func (w *HolocronWriter) WritePrediction(ctx context.Context, pred *models.GamePrediction) error {
	query := `
		INSERT INTO predictions (
			game_id, home_team, away_team, commence_time,
			spread, spread_confidence, spread_sigma, spread_win_prob,
			total, total_confidence,
			moneyline, moneyline_win_prob,
			spread_1h, spread_1h_confidence, spread_1h_sigma, spread_1h_win_prob,
			total_1h, total_1h_confidence,
			moneyline_1h, moneyline_1h_win_prob,
			home_score, away_score, home_score_1h, away_score_1h,
			model_version, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		          $13, $14, $15, $16, $17, $18, $19, $20,
		          $21, $22, $23, $24, $25, $26)
		ON CONFLICT (game_id, model_version, created_at) DO NOTHING
	`

	_, err := w.db.ExecContext(
		ctx,
		query,
		pred.GameID,
		pred.HomeTeam,
		pred.AwayTeam,
		pred.CommenceTime,
		pred.Spread.Value,
		pred.Spread.Confidence,
		pred.Spread.Sigma,
		pred.Spread.WinProb,
		pred.Total.Value,
		pred.Total.Confidence,
		pred.Moneyline.Value,
		pred.Moneyline.WinProb,
		pred.Spread1H.Value,
		pred.Spread1H.Confidence,
		pred.Spread1H.Sigma,
		pred.Spread1H.WinProb,
		pred.Total1H.Value,
		pred.Total1H.Confidence,
		pred.Moneyline1H.Value,
		pred.Moneyline1H.WinProb,
		pred.HomeScore,
		pred.AwayScore,
		pred.HomeScore1H,
		pred.AwayScore1H,
		pred.ModelVersion,
		pred.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}

	return nil
}

// WriteRecommendations writes a game's sized recommendations in one
// transaction, so a partially persisted slate never reaches the bot
func (w *HolocronWriter) WriteRecommendations(ctx context.Context, recs []*models.BettingRecommendation) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if commit doesn't happen

	query := `
		INSERT INTO recommendations (
			game_id, home_team, away_team, commence_time,
			bet_type, pick, line, model_line, market_line,
			edge, confidence, ev_percent, win_prob, market_prob,
			pick_price, market_prob_novig, market_hold,
			kelly_fraction, recommended_units, bet_tier,
			warnings, model_version, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		          $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	for _, rec := range recs {
		var warnings interface{}
		if len(rec.Warnings) > 0 {
			warnings = strings.Join(rec.Warnings, "; ")
		}

		_, err = tx.ExecContext(
			ctx,
			query,
			rec.GameID,
			rec.HomeTeam,
			rec.AwayTeam,
			rec.CommenceTime,
			string(rec.BetType),
			string(rec.Pick),
			rec.Line,
			rec.ModelLine,
			rec.MarketLine,
			rec.Edge,
			rec.Confidence,
			rec.EVPercent,
			rec.WinProb,
			rec.MarketProb,
			rec.PickPrice,
			rec.MarketNoVig,
			rec.MarketHold,
			rec.KellyFraction,
			rec.RecommendedUnits,
			string(rec.BetTier),
			warnings,
			rec.ModelVersion,
			rec.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert recommendation: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateClosingLine records a closing line against a recommendation and its
// computed CLV, written back by the settlement collaborator
func (w *HolocronWriter) UpdateClosingLine(ctx context.Context, rec *models.BettingRecommendation) error {
	if rec.ClosingLine == nil || rec.CLV == nil {
		return fmt.Errorf("recommendation has no closing line data")
	}

	query := `
		UPDATE recommendations
		SET closing_line = $1, closing_line_captured_at = $2, clv = $3
		WHERE game_id = $4 AND bet_type = $5 AND pick = $6
	`

	result, err := w.db.ExecContext(
		ctx,
		query,
		rec.ClosingLine,
		rec.ClosingLineCapturedAt,
		rec.CLV,
		rec.GameID,
		string(rec.BetType),
		string(rec.Pick),
	)
	if err != nil {
		return fmt.Errorf("failed to update closing line: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no recommendation found for game %s %s %s", rec.GameID, rec.BetType, rec.Pick)
	}

	return nil
}
