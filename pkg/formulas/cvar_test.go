package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCVaR(t *testing.T) {
	tests := []struct {
		name       string
		returns    []float64
		confidence float64
		want       float64
	}{
		{
			name:       "95% confidence takes the worst 5%",
			returns:    []float64{-0.10, -0.05, -0.02, 0.0, 0.02, 0.05, 0.10, 0.15, 0.20, 0.25},
			confidence: 0.95,
			want:       -0.10,
		},
		{
			name:       "all negative returns",
			returns:    []float64{-0.20, -0.15, -0.10, -0.05, -0.02},
			confidence: 0.95,
			want:       -0.20,
		},
		{
			name:       "empty series",
			returns:    []float64{},
			confidence: 0.95,
			want:       0.0,
		},
		{
			name:       "single return",
			returns:    []float64{-0.07},
			confidence: 0.95,
			want:       -0.07,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateCVaR(tt.returns, tt.confidence), 1e-9)
		})
	}
}

func TestCalculatePortfolioCVaR(t *testing.T) {
	weights := []float64{0.5, 0.5}
	returns := [][]float64{
		{-0.10, -0.02},
		{0.02, 0.04},
		{-0.04, -0.06},
		{0.05, 0.01},
	}

	// Portfolio returns: -0.06, 0.03, -0.05, 0.03 -> worst 5% is -0.06.
	got := CalculatePortfolioCVaR(weights, returns, 0.95)
	assert.InDelta(t, -0.06, got, 1e-9)

	assert.Equal(t, 0.0, CalculatePortfolioCVaR(nil, returns, 0.95))
	assert.Equal(t, 0.0, CalculatePortfolioCVaR(weights, nil, 0.95))
}
