package walkforward

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikeshrana/quant-research-platform/internal/backtest"
	"github.com/bikeshrana/quant-research-platform/internal/strategy"
	"github.com/bikeshrana/quant-research-platform/internal/testutil"
)

func TestOptimizer_Run_ProducesAggregatedWindows(t *testing.T) {
	bars := testutil.OscillatingBars("PETR4", 500, 100, 20, 40)
	engine := backtest.NewEngine(zerolog.Nop())
	opt := NewOptimizer(zerolog.Nop(), engine)

	cfg := Config{
		Window:             WindowConfig{TrainWindowDays: 120, TestWindowDays: 30, StepDays: 60},
		OptimizationMetric: TotalReturn,
		Sampler:            SamplerRandom,
		NTrials:            8,
		Workers:            2,
		Seed:               1,
		BacktestConfig:     backtest.DefaultConfig(),
	}

	report, err := opt.Run(context.Background(), strategy.MeanReversion{}, bars, cfg)
	require.NoError(t, err)
	assert.False(t, report.Cancelled)
	assert.Equal(t, "MeanReversion", report.StrategyName)
	assert.Equal(t, len(report.Windows), report.Aggregate.TotalWindows)
}

func TestOptimizer_Run_CancelledContextStopsEarly(t *testing.T) {
	bars := testutil.OscillatingBars("PETR4", 500, 100, 20, 40)
	engine := backtest.NewEngine(zerolog.Nop())
	opt := NewOptimizer(zerolog.Nop(), engine)

	cfg := Config{
		Window:             WindowConfig{TrainWindowDays: 120, TestWindowDays: 30, StepDays: 60},
		OptimizationMetric: TotalReturn,
		Sampler:            SamplerRandom,
		NTrials:            4,
		Workers:            1,
		Seed:               1,
		BacktestConfig:     backtest.DefaultConfig(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := opt.Run(ctx, strategy.MeanReversion{}, bars, cfg)
	require.NoError(t, err)
	assert.True(t, report.Cancelled)
}

func TestExtractMetric_MissingSharpeIsNotOK(t *testing.T) {
	_, ok := extractMetric(backtest.Metrics{}, SharpeRatio)
	assert.False(t, ok)
}

func TestExtractMetric_TotalReturnAlwaysOK(t *testing.T) {
	v, ok := extractMetric(backtest.Metrics{TotalReturnPct: 12.5}, TotalReturn)
	require.True(t, ok)
	assert.Equal(t, 12.5, v)
}

func TestNewSampler_DefaultsToTPE(t *testing.T) {
	s := newSampler("unknown", smallSpace(), 5, 1)
	_, ok := s.(*TPESampler)
	assert.True(t, ok)
}

func TestNewSampler_SelectsGridAndRandom(t *testing.T) {
	g := newSampler(SamplerGrid, smallSpace(), 5, 1)
	_, ok := g.(*GridSampler)
	assert.True(t, ok)

	r := newSampler(SamplerRandom, smallSpace(), 5, 1)
	_, ok = r.(*RandomSampler)
	assert.True(t, ok)
}
