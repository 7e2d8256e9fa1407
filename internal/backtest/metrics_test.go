package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMetrics_ProfitFactorSentinelWhenNoLosses(t *testing.T) {
	r := Result{
		InitialCapital: 10000,
		FinalCapital:   10500,
		Trades: []Trade{
			{NetPnL: 300, Commission: 1},
			{NetPnL: 200, Commission: 1},
		},
	}
	m := computeMetrics(r)
	require.NotNil(t, m.ProfitFactor)
	assert.Equal(t, 999.99, *m.ProfitFactor)
	assert.True(t, m.NoLosses)
}

func TestComputeMetrics_ProfitFactorIsGrossProfitOverLoss(t *testing.T) {
	r := Result{
		InitialCapital: 10000,
		FinalCapital:   10100,
		Trades: []Trade{
			{NetPnL: 300},
			{NetPnL: -200},
		},
	}
	m := computeMetrics(r)
	require.NotNil(t, m.ProfitFactor)
	assert.InDelta(t, 1.5, *m.ProfitFactor, 1e-9)
	assert.False(t, m.NoLosses)
}

func TestComputeMetrics_WinRateComputedFromTradeCount(t *testing.T) {
	r := Result{
		Trades: []Trade{{NetPnL: 10}, {NetPnL: -5}, {NetPnL: 20}, {NetPnL: -1}},
	}
	m := computeMetrics(r)
	require.NotNil(t, m.WinRate)
	assert.InDelta(t, 50.0, *m.WinRate, 1e-9)
}

func TestComputeMetrics_SharpeNilWithTooFewPoints(t *testing.T) {
	r := Result{EquityCurve: []EquityPoint{{Equity: 100}, {Equity: 101}}}
	m := computeMetrics(r)
	assert.Nil(t, m.SharpeRatio)
}

func TestComputeMetrics_SharpeNilWithZeroVariance(t *testing.T) {
	r := Result{
		Config: Config{AnnualizationFactor: 252},
		EquityCurve: []EquityPoint{
			{Equity: 100}, {Equity: 100}, {Equity: 100}, {Equity: 100},
		},
	}
	m := computeMetrics(r)
	assert.Nil(t, m.SharpeRatio)
}

func TestComputeMetrics_SharpeDefinedWithVaryingReturns(t *testing.T) {
	r := Result{
		Config: Config{AnnualizationFactor: 252},
		EquityCurve: []EquityPoint{
			{Equity: 100}, {Equity: 102}, {Equity: 101}, {Equity: 104}, {Equity: 103},
		},
	}
	m := computeMetrics(r)
	require.NotNil(t, m.SharpeRatio)
}

func TestComputeMetrics_MaxDrawdownTracksPeakToTrough(t *testing.T) {
	r := Result{
		EquityCurve: []EquityPoint{
			{Equity: 100}, {Equity: 120}, {Equity: 90}, {Equity: 110},
		},
	}
	m := computeMetrics(r)
	assert.InDelta(t, 30, m.MaxDrawdown, 1e-9)
	assert.InDelta(t, 25.0, m.MaxDrawdownPct, 1e-9)
}

func TestComputeMetrics_AvgTradeDurationAveragesHoldTimes(t *testing.T) {
	now := time.Now()
	r := Result{
		Trades: []Trade{
			{EntryTime: now, ExitTime: now.Add(2 * time.Hour)},
			{EntryTime: now, ExitTime: now.Add(4 * time.Hour)},
		},
	}
	m := computeMetrics(r)
	assert.Equal(t, 3*time.Hour, m.AvgTradeDuration)
}
