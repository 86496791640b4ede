package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
	"github.com/redis/go-redis/v9"
)

// Stream keys published by the engine. Downstream consumers are the alert
// service, the bot and the ws-broadcaster.
const (
	PredictionsStream     = "predictions.generated"
	RecommendationsStream = "recommendations.generated"
)

// StreamPublisher publishes predictions and recommendations to Redis Streams
type StreamPublisher struct {
	client *redis.Client
	sport  string
}

// NewStreamPublisher creates a new stream publisher for one sport
func NewStreamPublisher(client *redis.Client, sport string) *StreamPublisher {
	return &StreamPublisher{
		client: client,
		sport:  sport,
	}
}

// PublishPrediction publishes a game prediction to the sport-specific and
// global prediction streams
func (p *StreamPublisher) PublishPrediction(ctx context.Context, pred *models.GamePrediction) error {
	payload, err := json.Marshal(pred)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}

	for _, streamKey := range []string{
		fmt.Sprintf("%s.%s", PredictionsStream, p.sport),
		PredictionsStream,
	} {
		_, err = p.client.XAdd(ctx, &redis.XAddArgs{
			Stream: streamKey,
			Values: map[string]interface{}{
				"prediction": string(payload),
			},
		}).Result()
		if err != nil {
			return fmt.Errorf("failed to publish to stream %s: %w", streamKey, err)
		}
	}

	return nil
}

// PublishRecommendation publishes a single sized recommendation
func (p *StreamPublisher) PublishRecommendation(ctx context.Context, rec *models.BettingRecommendation) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation: %w", err)
	}

	for _, streamKey := range []string{
		fmt.Sprintf("%s.%s", RecommendationsStream, p.sport),
		RecommendationsStream,
	} {
		_, err = p.client.XAdd(ctx, &redis.XAddArgs{
			Stream: streamKey,
			Values: map[string]interface{}{
				"recommendation": string(payload),
			},
		}).Result()
		if err != nil {
			return fmt.Errorf("failed to publish to stream %s: %w", streamKey, err)
		}
	}

	return nil
}

// PublishRecommendations publishes multiple recommendations
func (p *StreamPublisher) PublishRecommendations(ctx context.Context, recs []*models.BettingRecommendation) error {
	for _, rec := range recs {
		if err := p.PublishRecommendation(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
