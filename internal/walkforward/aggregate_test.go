package walkforward

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bikeshrana/quant-research-platform/internal/backtest"
)

func sharpePtr(v float64) *float64 { return &v }

func TestAggregate_EmptyWindowsYieldsZeroValue(t *testing.T) {
	a := aggregate(nil)
	assert.Equal(t, 0, a.TotalWindows)
	assert.Equal(t, 0.0, a.AvgTestReturn)
}

func TestAggregate_CountsPositiveAndNegativeWindows(t *testing.T) {
	windows := []WindowResult{
		{TestMetrics: backtest.Metrics{TotalReturnPct: 5}},
		{TestMetrics: backtest.Metrics{TotalReturnPct: -3}},
		{TestMetrics: backtest.Metrics{TotalReturnPct: 0}},
	}
	a := aggregate(windows)
	assert.Equal(t, 3, a.TotalWindows)
	assert.Equal(t, 1, a.PositiveWindows)
	assert.Equal(t, 1, a.NegativeWindows)
}

func TestAggregate_AvgTestReturnIsMeanOfWindowReturns(t *testing.T) {
	windows := []WindowResult{
		{TestMetrics: backtest.Metrics{TotalReturnPct: 10}},
		{TestMetrics: backtest.Metrics{TotalReturnPct: 20}},
	}
	a := aggregate(windows)
	assert.InDelta(t, 15, a.AvgTestReturn, 1e-9)
}

func TestAggregate_SharpeAggregationSkipsNilSharpes(t *testing.T) {
	windows := []WindowResult{
		{TestMetrics: backtest.Metrics{SharpeRatio: sharpePtr(1.5)}},
		{TestMetrics: backtest.Metrics{SharpeRatio: nil}},
		{TestMetrics: backtest.Metrics{SharpeRatio: sharpePtr(2.5)}},
	}
	a := aggregate(windows)
	assert.InDelta(t, 2.0, a.AvgTestSharpe, 1e-9)
}

func TestAggregate_SumsTotalTestTrades(t *testing.T) {
	windows := []WindowResult{
		{TestMetrics: backtest.Metrics{TotalTrades: 4}},
		{TestMetrics: backtest.Metrics{TotalTrades: 6}},
	}
	a := aggregate(windows)
	assert.Equal(t, 10, a.TotalTestTrades)
}
