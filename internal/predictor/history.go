package predictor

import (
	"sync"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/models"
	"github.com/google/uuid"
)

// History is the bounded rolling buffer of prior predicted values per
// game and market, used to blend successive predictions for the same game
// as ratings and lines update through the day. The engine is the single
// writer; readers get copies, never buffer internals.
type History struct {
	mu     sync.RWMutex
	window int
	rings  map[historyKey]*ring
}

type historyKey struct {
	gameID  uuid.UUID
	betType models.BetType
}

// ring is a fixed-capacity circular buffer. Full appends drop the oldest
// value.
type ring struct {
	values []float64
	head   int
	count  int
}

func newRing(capacity int) *ring {
	return &ring{values: make([]float64, capacity)}
}

func (r *ring) append(v float64) {
	if r.count < len(r.values) {
		r.values[(r.head+r.count)%len(r.values)] = v
		r.count++
		return
	}
	r.values[r.head] = v
	r.head = (r.head + 1) % len(r.values)
}

// snapshot returns the buffered values oldest-first in a fresh slice.
func (r *ring) snapshot() []float64 {
	out := make([]float64, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.values[(r.head+i)%len(r.values)]
	}
	return out
}

// NewHistory builds a history with the given per-market window.
func NewHistory(window int) *History {
	return &History{
		window: window,
		rings:  make(map[historyKey]*ring),
	}
}

// Append records a predicted value for a game and market, evicting the
// oldest entry once the window is full.
func (h *History) Append(gameID uuid.UUID, bt models.BetType, value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := historyKey{gameID: gameID, betType: bt}
	r, ok := h.rings[key]
	if !ok {
		r = newRing(h.window)
		h.rings[key] = r
	}
	r.append(value)
}

// Snapshot returns a copy of the buffered values for a game and market,
// oldest first. Returns nil when nothing has been recorded.
func (h *History) Snapshot(gameID uuid.UUID, bt models.BetType) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.rings[historyKey{gameID: gameID, betType: bt}]
	if !ok {
		return nil
	}
	return r.snapshot()
}

// Blend mixes the current prediction with the rolling mean of prior
// predictions: blended = current*(1-weight) + mean*weight. With an empty
// buffer the current value passes through unchanged.
func (h *History) Blend(gameID uuid.UUID, bt models.BetType, current, weight float64) float64 {
	prior := h.Snapshot(gameID, bt)
	if len(prior) == 0 {
		return current
	}

	var sum float64
	for _, v := range prior {
		sum += v
	}
	mean := sum / float64(len(prior))

	return current*(1-weight) + mean*weight
}

// Forget drops all buffered values for a game, for use once it goes live.
func (h *History) Forget(gameID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for key := range h.rings {
		if key.gameID == gameID {
			delete(h.rings, key)
		}
	}
}
