package optimization

import "errors"

// Typed failures surfaced by the optimization core. Callers match them
// with errors.Is; none of these are retried internally since every
// operation here is deterministic given valid input.
var (
	// ErrEmptyUniverse is returned when no assets were supplied.
	ErrEmptyUniverse = errors.New("asset universe is empty")

	// ErrInsufficientData is returned when too few aligned observations
	// exist to build returns or estimate moments.
	ErrInsufficientData = errors.New("insufficient price history")

	// ErrDimensionMismatch is returned when a weight vector or price
	// series does not match the asset universe length.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidWeights is returned for weight vectors with negative
	// entries or a sum outside 1 +/- WeightSumTolerance.
	ErrInvalidWeights = errors.New("invalid weights")

	// ErrInvalidInput is returned for bad sampler parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyReturnSeries is returned when a backtest receives no
	// realized returns.
	ErrEmptyReturnSeries = errors.New("empty return series")
)
