package models

import (
	"errors"
	"fmt"
)

// ErrMissingMarketData signals an absent market line. The engine recovers
// locally: the affected market gets no edge/recommendation, other markets
// for the same game proceed independently.
var ErrMissingMarketData = errors.New("missing market data")

// InvalidInputError is returned when ratings fields fall outside plausible
// physical bounds. Always surfaced to the caller - the prediction for the
// game is rejected, never silently clamped.
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s=%g (%s)", e.Field, e.Value, e.Reason)
}

// ConfigurationError is fatal at startup: an unrecognized backend or market
// constant must fail fast before any predictions are served.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s (%s)", e.Key, e.Reason)
}
