package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/internal/recommend"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	backend   contracts.PredictionBackend
	policy    contracts.RecommendationPolicy
	validator contracts.SnapshotValidator
	edges     *recommend.EdgeCalculator
}

// NewHandler creates a new handler
func NewHandler(
	backend contracts.PredictionBackend,
	policy contracts.RecommendationPolicy,
	validator contracts.SnapshotValidator,
) *Handler {
	return &Handler{
		backend:   backend,
		policy:    policy,
		validator: validator,
		edges:     recommend.NewEdgeCalculator(),
	}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":        "healthy",
		"service":       "prediction-engine",
		"backend":       h.backend.Name(),
		"model_version": h.backend.ModelVersion(),
	})
}

// PredictResponse wraps a prediction with the gate's warnings
type PredictResponse struct {
	Prediction *models.GamePrediction `json:"prediction"`
	Warnings   []string               `json:"warnings,omitempty"`
}

// Predict generates the six market predictions for a posted game snapshot
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	snap, warnings, ok := h.decodeSnapshot(w, r)
	if !ok {
		return
	}

	pred, err := h.backend.Predict(snap)
	if err != nil {
		respondPredictionError(w, err)
		return
	}

	if snap.Odds != nil {
		h.edges.Annotate(pred, snap.Odds)
	}

	respondJSON(w, http.StatusOK, PredictResponse{
		Prediction: pred,
		Warnings:   warnings,
	})
}

// RecommendResponse wraps recommendations with their prediction
type RecommendResponse struct {
	Prediction      *models.GamePrediction          `json:"prediction"`
	Recommendations []*models.BettingRecommendation `json:"recommendations"`
	Warnings        []string                        `json:"warnings,omitempty"`
}

// Recommend generates predictions plus sized recommendations for a snapshot
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	snap, warnings, ok := h.decodeSnapshot(w, r)
	if !ok {
		return
	}

	pred, err := h.backend.Predict(snap)
	if err != nil {
		respondPredictionError(w, err)
		return
	}

	var recs []*models.BettingRecommendation
	if snap.Odds != nil {
		h.edges.Annotate(pred, snap.Odds)
		recs = h.policy.Recommend(pred, snap.Odds)
	} else {
		warnings = append(warnings, "no odds supplied, recommendations skipped")
	}

	respondJSON(w, http.StatusOK, RecommendResponse{
		Prediction:      pred,
		Recommendations: recs,
		Warnings:        warnings,
	})
}

// decodeSnapshot parses and validates the request body. Gate warnings are
// returned to the caller alongside results; gate errors reject the request.
func (h *Handler) decodeSnapshot(w http.ResponseWriter, r *http.Request) (models.GameSnapshot, []string, bool) {
	var snap models.GameSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return snap, nil, false
	}

	warnings, err := h.validator.Validate(snap)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return snap, nil, false
	}

	return snap, warnings, true
}

// respondPredictionError maps engine errors to HTTP statuses: invalid
// inputs are the caller's fault, anything else is ours.
func respondPredictionError(w http.ResponseWriter, err error) {
	var invalid *models.InvalidInputError
	if errors.As(err, &invalid) {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
