package backtest

import "errors"

var (
	// Configuration errors
	ErrInvalidCapital      = errors.New("initial capital must be positive")
	ErrInvalidRiskPerTrade = errors.New("risk per trade must be in (0, 1]")
	ErrInvalidMaxPositions = errors.New("max concurrent positions must be at least 1")

	// Input errors
	ErrSeriesLengthMismatch = errors.New("bar series and signal series lengths differ")
	ErrWarmUpExceedsSeries  = errors.New("warm-up exceeds series length")
	ErrNonFinitePrice       = errors.New("non-finite price encountered")
)
