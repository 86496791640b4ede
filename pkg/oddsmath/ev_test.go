package oddsmath_test

import (
	"math"
	"testing"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/pkg/oddsmath"
)

func TestExpectedValuePercent(t *testing.T) {
	tests := []struct {
		name  string
		prob  float64
		price int
		want  float64
	}{
		// 0.55 * 100 - 0.45 * 110 = 5.5 per 110 risked
		{"Positive EV at -110", 0.55, -110, 5.0},
		// Break-even probability at -110 is 0.5238
		{"Break-even at -110", 0.5238, -110, 0.0},
		// 0.45 * 150 - 0.55 * 100 = 12.5 per 100 risked
		{"Positive EV underdog", 0.45, 150, 12.5},
		// Coin flip at -110 loses the juice
		{"Negative EV coin flip", 0.50, -110, -4.545},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := oddsmath.ExpectedValuePercent(tt.prob, tt.price)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if math.Abs(got-tt.want) > 0.05 {
				t.Errorf("ExpectedValuePercent(%f, %d) = %f, want %f", tt.prob, tt.price, got, tt.want)
			}
		})
	}
}

func TestKellyFraction(t *testing.T) {
	tests := []struct {
		name  string
		prob  float64
		price int
		want  float64
	}{
		// b = 0.9091: (0.9091*0.55 - 0.45) / 0.9091 = 0.055
		{"Small edge at -110", 0.55, -110, 0.055},
		// b = 1.5: (1.5*0.45 - 0.55) / 1.5 = 0.0833
		{"Underdog value +150", 0.45, 150, 0.0833},
		// No edge: Kelly floors at zero instead of going short
		{"Negative edge floors at zero", 0.50, -110, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := oddsmath.KellyFraction(tt.prob, tt.price)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("KellyFraction(%f, %d) = %f, want %f", tt.prob, tt.price, got, tt.want)
			}
		})
	}
}

func TestKellyFractionInvalidInputs(t *testing.T) {
	if _, err := oddsmath.KellyFraction(0, -110); err == nil {
		t.Error("expected error for probability 0")
	}
	if _, err := oddsmath.KellyFraction(0.5, 0); err == nil {
		t.Error("expected error for price 0")
	}
}
