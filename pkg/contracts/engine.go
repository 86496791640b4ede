package contracts

import (
	"context"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
)

// PredictionBackend defines the interface for producing the six market
// predictions for a game
type PredictionBackend interface {
	// Predict generates all six market predictions from a game snapshot
	Predict(snapshot models.GameSnapshot) (*models.GamePrediction, error)

	// Name returns the backend identifier used in config and persistence
	Name() string

	// ModelVersion returns the calibration version string stamped on predictions
	ModelVersion() string
}

// RecommendationPolicy defines the interface for turning predictions plus
// market odds into sized betting recommendations
type RecommendationPolicy interface {
	// Recommend evaluates every market with both a prediction and a line,
	// returning zero or more sized recommendations
	Recommend(prediction *models.GamePrediction, odds *models.MarketOdds) []*models.BettingRecommendation
}

// PredictionWriter defines the interface for persisting engine output
type PredictionWriter interface {
	// WritePrediction persists one game's market predictions
	WritePrediction(ctx context.Context, prediction *models.GamePrediction) error

	// WriteRecommendations persists sized recommendations for a game
	WriteRecommendations(ctx context.Context, recommendations []*models.BettingRecommendation) error
}

// SnapshotValidator defines the interface for pre-prediction input checks
type SnapshotValidator interface {
	// Validate returns soft warnings and a hard error for a snapshot.
	// Warnings never block prediction; an error rejects the game.
	Validate(snapshot models.GameSnapshot) ([]string, error)
}
