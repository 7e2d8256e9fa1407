package strategy

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikeshrana/quant-research-platform/internal/backtest"
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
	"github.com/bikeshrana/quant-research-platform/pkg/signal"
)

// hourlyBarAt builds one synthetic hourly bar with Low/High bracketing
// Close by a fixed spread, so pivot detection (which reads Low/High) tracks
// the shape of the Close series exactly.
func hourlyBarAt(base time.Time, i int, close float64) bar.Bar {
	return bar.Bar{
		Timestamp: base.Add(time.Duration(i) * time.Hour),
		Open:      close,
		High:      close + 1,
		Low:       close - 1,
		Close:     close,
		Volume:    1000,
	}
}

// wave3TrailingStopHourly builds a 53-bar hourly series hand-shaped to
// exercise one full Wave3 cycle: a first pivot low at index 20, an
// intervening pivot high at index 23 (high 106), a second, higher pivot low
// at index 30 (the ascending pair the entry condition requires), a breakout
// above the index-23 high at index 38 (the entry bar), a third, still-higher
// pivot low at index 45
// (confirmed at index 48, which ratchets the trailing stop up), and a
// crash through that trailing stop at index 51.
func wave3TrailingStopHourly(t *testing.T) bar.Series {
	t.Helper()
	base := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	closes := []float64{
		100.0, 100.1, 100.2, 100.3, 100.4, 100.5, 100.6, // 0-6: pre-warm-up padding
		100.7, 101, 102, 105, 102, 101, 100.7, // 7-13: pivot-high tent at 10
		100.55, 100.4, 100.2, // 14-16: ramp down
		100, 99, 98, 95, 98, 99, 105, // 17-23: pivot-low tent at 20, rising to the pivot high at 23
		99.625, 99.25, 98.875, // 24-26: ramp down
		98.5, 98, 97.5, 97, 97.5, 98, 98.5, // 27-33: ascending pivot-low tent at 30
		99, 101, 103, 105.5, // 34-37: breakout ramp
		107,                    // 38: entry bar, close breaks above the index-23 high (106)
		109, 111, 110, 109, 108, 106, 104, 106, 108, 109, // 39-48: pullback tent at 45 (confirmed at 48)
		110, 111, // 49-50: brief continuation
		95, 94, // 51-52: crash through the ratcheted stop
	}
	bars := make([]bar.Bar, len(closes))
	for i, c := range closes {
		bars[i] = hourlyBarAt(base, i, c)
	}
	s, err := bar.New("PETR4", "1h", bars)
	require.NoError(t, err)
	return s
}

// wave3UptrendDaily builds a daily context series that stays above its own
// long/short EMAs throughout the window the hourly series above covers, so
// the daily-context gate never blocks and the invalidation check never
// fires.
func wave3UptrendDaily(t *testing.T) bar.Series {
	t.Helper()
	base := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	n := 41
	bars := make([]bar.Bar, n)
	for i := 0; i < n; i++ {
		c := 90 + float64(i)
		bars[i] = bar.Bar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	s, err := bar.New("PETR4", "1d", bars)
	require.NoError(t, err)
	return s
}

func wave3ScenarioParams() Params {
	return Params{
		"ema_long":          5,
		"ema_short":         3,
		"min_gap_bars":      3,
		"risk_multiple":     1.0,
		"reward_multiple":   3.0,
		"pullback_band_pct": 500.0,
	}
}

func TestWave3_ComputeMulti_EntersOnAscendingPivotBreakout(t *testing.T) {
	w := Wave3{}
	hourly := wave3TrailingStopHourly(t)
	daily := wave3UptrendDaily(t)

	sigs, err := w.ComputeMulti(daily, hourly, wave3ScenarioParams())
	require.NoError(t, err)

	entries := 0
	for _, s := range sigs.All() {
		if s.Action == signal.EnterLong {
			entries++
			assert.Equal(t, 38, s.BarIndex)
			assert.InDelta(t, 107.0, s.RefPrice, 1e-9)
			assert.InDelta(t, 95.04, s.StopPrice, 1e-9)
			assert.InDelta(t, 142.88, s.TargetPrice, 1e-9)
		}
	}
	assert.Equal(t, 1, entries)
}

func TestWave3_ComputeMulti_TrailingStopRatchetsToNewerPivotLow(t *testing.T) {
	w := Wave3{}
	hourly := wave3TrailingStopHourly(t)
	daily := wave3UptrendDaily(t)

	sigs, err := w.ComputeMulti(daily, hourly, wave3ScenarioParams())
	require.NoError(t, err)

	// the first in-position bar already ratchets the entry stop (95.04, shaved
	// by risk_multiple*1%) up to the raw pivot-30 price (96) it was derived from
	assert.InDelta(t, 96.0, sigs.At(39).StopPrice, 1e-9)
	assert.InDelta(t, 96.0, sigs.At(40).StopPrice, 1e-9)
	assert.InDelta(t, 103.0, sigs.At(48).StopPrice, 1e-9) // the newer pivot-45 low confirms here
	assert.InDelta(t, 103.0, sigs.At(51).StopPrice, 1e-9) // holds through the crash bar
}

// TestWave3_TrailingStopExitsAtRatchetedLevel drives the same signal series
// through the Backtest Engine end to end: the exit must be a stop loss at
// the ratcheted level (103), not the position's original stop (95.04).
func TestWave3_TrailingStopExitsAtRatchetedLevel(t *testing.T) {
	w := Wave3{}
	hourly := wave3TrailingStopHourly(t)
	daily := wave3UptrendDaily(t)

	sigs, err := w.ComputeMulti(daily, hourly, wave3ScenarioParams())
	require.NoError(t, err)

	engine := backtest.NewEngine(zerolog.Nop())
	result, err := engine.Run("PETR4", hourly, sigs, backtest.DefaultConfig())
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, backtest.Long, trade.Side)
	assert.Equal(t, backtest.ExitStopLoss, trade.ExitReason)
	assert.InDelta(t, 107.0, trade.EntryPrice, 1e-9)
	assert.InDelta(t, 103.0, trade.ExitPrice, 1e-9)
	assert.Less(t, trade.NetPnL, 0.0) // still a loss, but smaller than hitting the original stop would have been
}
