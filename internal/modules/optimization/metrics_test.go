package optimization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		n       int
		wantErr error
	}{
		{"valid equal weights", []float64{0.5, 0.5}, 2, nil},
		{"valid within tolerance", []float64{0.5, 0.5 + 5e-7}, 2, nil},
		{"wrong length", []float64{1.0}, 2, ErrDimensionMismatch},
		{"negative entry", []float64{1.5, -0.5}, 2, ErrInvalidWeights},
		{"sum too low", []float64{0.4, 0.4}, 2, ErrInvalidWeights},
		{"sum too high", []float64{0.7, 0.7}, 2, ErrInvalidWeights},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeights(tt.weights, tt.n)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestEvaluateWeights(t *testing.T) {
	m := testMoments()
	p, err := EvaluateWeights([]float64{0.4, 0.3, 0.3}, m, 0.04)
	require.NoError(t, err)

	wantRet := 0.4*0.15 + 0.3*0.08 + 0.3*0.02
	assert.InDelta(t, wantRet, p.ExpectedReturn, 1e-12)
	assert.Greater(t, p.Volatility, 0.0)
	assert.Greater(t, p.DiversificationRatio, 1.0)
}

func TestEvaluateWeightsSingleAsset(t *testing.T) {
	m := &MomentEstimate{
		Tickers: []string{"ONLY"},
		Mean:    []float64{0.10},
		Cov:     [][]float64{{0.04}},
	}
	p, err := EvaluateWeights([]float64{1.0}, m, 0.04)
	require.NoError(t, err)

	// One asset cannot diversify anything.
	assert.InDelta(t, 1.0, p.DiversificationRatio, 1e-12)
	assert.InDelta(t, 0.2, p.Volatility, 1e-12)
}

func TestEvaluateWeightsRejectsInvalid(t *testing.T) {
	m := testMoments()

	_, err := EvaluateWeights([]float64{0.5, 0.5}, m, 0.04)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = EvaluateWeights([]float64{0.8, 0.4, -0.2}, m, 0.04)
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestDiversificationRatioZeroVolatility(t *testing.T) {
	m := &MomentEstimate{
		Tickers: []string{"A", "B"},
		Mean:    []float64{0.1, 0.1},
		Cov:     [][]float64{{0, 0}, {0, 0}},
	}
	p, err := EvaluateWeights([]float64{0.5, 0.5}, m, 0.04)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.DiversificationRatio)
}

func TestAssetMetricsFor(t *testing.T) {
	m := testMoments()
	sample := &FrontierSample{
		MaxSharpe:     FrontierPoint{Weights: []float64{0.7, 0.2, 0.1}},
		MinVolatility: FrontierPoint{Weights: []float64{0.4, 0.4, 0.2}},
	}

	metrics := AssetMetricsFor(m, sample, 0.04)
	require.Len(t, metrics, 3)

	good := metrics["GOOD"]
	assert.Equal(t, 0.7, good.WeightMaxSharpe)
	assert.Equal(t, 0.4, good.WeightMinVol)
	assert.InDelta(t, 0.15, good.AnnualReturn, 1e-12)
	assert.InDelta(t, math.Sqrt(0.02), good.AnnualVolatility, 1e-12)
	assert.InDelta(t, (0.15-0.04)/math.Sqrt(0.02), good.SharpeRatio, 1e-12)
}

func TestFrontierSeriesFrom(t *testing.T) {
	sample := &FrontierSample{
		Points: []FrontierPoint{
			{ExpectedReturn: 0.1, Volatility: 0.2, SharpeRatio: 0.3},
			{ExpectedReturn: 0.05, Volatility: 0.1, SharpeRatio: 0.1},
		},
	}
	series := FrontierSeriesFrom(sample)
	assert.Equal(t, []float64{0.1, 0.05}, series.Returns)
	assert.Equal(t, []float64{0.2, 0.1}, series.Volatilities)
	assert.Equal(t, []float64{0.3, 0.1}, series.SharpeRatios)
}
