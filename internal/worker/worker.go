package worker

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/internal/consumer"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/internal/publisher"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/internal/recommend"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"
)

// Worker drives the prediction pipeline: consume game snapshots, gate them,
// predict, annotate edges, recommend, persist, publish. One worker owns the
// whole pipeline so the history blender sees a single writer.
type Worker struct {
	consumer  *consumer.StreamConsumer
	publisher *publisher.StreamPublisher
	backend   contracts.PredictionBackend
	policy    contracts.RecommendationPolicy
	validator contracts.SnapshotValidator
	writer    contracts.PredictionWriter
	edges     *recommend.EdgeCalculator
	log       *logrus.Logger

	// Dedupe cache: last payload hash per game, so republished identical
	// snapshots don't burn writes.
	seen sync.Map // game ID string -> uint64

	predictedCount   int64
	recommendedCount int64
	skippedCount     int64
	errorCount       int64
}

// New creates a worker.
func New(
	streamConsumer *consumer.StreamConsumer,
	streamPublisher *publisher.StreamPublisher,
	backend contracts.PredictionBackend,
	policy contracts.RecommendationPolicy,
	validator contracts.SnapshotValidator,
	writer contracts.PredictionWriter,
	log *logrus.Logger,
) *Worker {
	return &Worker{
		consumer:  streamConsumer,
		publisher: streamPublisher,
		backend:   backend,
		policy:    policy,
		validator: validator,
		writer:    writer,
		edges:     recommend.NewEdgeCalculator(),
		log:       log,
	}
}

// Start consumes the snapshot stream until the context is cancelled.
func (w *Worker) Start(ctx context.Context, streamKey string) error {
	w.log.WithField("stream", streamKey).Info("prediction worker starting")

	messageCh, errorCh := w.consumer.ConsumeStream(ctx, streamKey)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-errorCh:
			if err != nil {
				w.log.WithError(err).Warn("stream error")
				atomic.AddInt64(&w.errorCount, 1)
			}

		case msg, ok := <-messageCh:
			if !ok {
				return nil
			}

			if err := w.processMessage(ctx, msg); err != nil {
				w.log.WithError(err).WithField("message_id", msg.ID).Error("failed to process snapshot")
				atomic.AddInt64(&w.errorCount, 1)
			}

			if err := w.consumer.AckMessage(ctx, msg.StreamKey, msg.ID); err != nil {
				w.log.WithError(err).WithField("message_id", msg.ID).Warn("failed to ack message")
			}
		}
	}
}

// processMessage runs one snapshot through the full pipeline.
func (w *Worker) processMessage(ctx context.Context, msg consumer.Message) error {
	snap := msg.Snapshot
	logger := w.log.WithFields(logrus.Fields{
		"game_id": snap.GameID,
		"home":    snap.HomeTeam,
		"away":    snap.AwayTeam,
	})

	if w.isDuplicate(msg) {
		atomic.AddInt64(&w.skippedCount, 1)
		logger.Debug("unchanged snapshot, skipping")
		return nil
	}

	warnings, err := w.validator.Validate(snap)
	if err != nil {
		return err
	}
	for _, warning := range warnings {
		logger.WithField("warning", warning).Warn("gate warning")
	}

	pred, err := w.backend.Predict(snap)
	if err != nil {
		return err
	}
	atomic.AddInt64(&w.predictedCount, 1)

	recs := w.recommended(pred, &snap)

	if err := w.writer.WritePrediction(ctx, pred); err != nil {
		return err
	}
	if err := w.writer.WriteRecommendations(ctx, recs); err != nil {
		return err
	}

	if err := w.publisher.PublishPrediction(ctx, pred); err != nil {
		return err
	}
	if err := w.publisher.PublishRecommendations(ctx, recs); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"spread":          pred.Spread.Value,
		"total":           pred.Total.Value,
		"recommendations": len(recs),
	}).Info("game processed")

	return nil
}

func (w *Worker) recommended(pred *models.GamePrediction, snap *models.GameSnapshot) []*models.BettingRecommendation {
	if snap.Odds == nil {
		return nil
	}
	w.edges.Annotate(pred, snap.Odds)
	recs := w.policy.Recommend(pred, snap.Odds)
	atomic.AddInt64(&w.recommendedCount, int64(len(recs)))
	return recs
}

// isDuplicate hashes the snapshot payload and compares it to the last one
// seen for the game.
func (w *Worker) isDuplicate(msg consumer.Message) bool {
	payload, err := json.Marshal(msg.Snapshot)
	if err != nil {
		return false
	}
	hash := xxhash.Sum64(payload)

	key := msg.Snapshot.GameID.String()
	if prev, ok := w.seen.Load(key); ok && prev.(uint64) == hash {
		return true
	}
	w.seen.Store(key, hash)
	return false
}

// Metrics returns the running counters.
func (w *Worker) Metrics() (predicted, recommended, skipped, errors int64) {
	return atomic.LoadInt64(&w.predictedCount),
		atomic.LoadInt64(&w.recommendedCount),
		atomic.LoadInt64(&w.skippedCount),
		atomic.LoadInt64(&w.errorCount)
}

// ReportMetrics logs the counters every interval until the context ends.
func (w *Worker) ReportMetrics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			predicted, recommended, skipped, errors := w.Metrics()
			w.log.WithFields(logrus.Fields{
				"predicted":   predicted,
				"recommended": recommended,
				"skipped":     skipped,
				"errors":      errors,
			}).Info("worker metrics")
		}
	}
}
