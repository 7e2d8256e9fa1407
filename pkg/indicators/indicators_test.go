package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikeshrana/quant-research-platform/internal/testutil"
)

func TestSMA_WarmUpAndValue(t *testing.T) {
	bars := testutil.FlatBars("PETR4", 10, 20)
	s := SMA(bars, 5)
	assert.Equal(t, 4, s.WarmUp())
	assert.False(t, s.Defined(3))
	v, ok := s.At(4)
	require.True(t, ok)
	assert.InDelta(t, 20, v, 1e-9)
}

func TestSMA_InsufficientBars(t *testing.T) {
	bars := testutil.FlatBars("PETR4", 3, 20)
	s := SMA(bars, 5)
	for i := 0; i < 3; i++ {
		assert.False(t, s.Defined(i))
	}
}

func TestEMA_SeedMatchesSMA(t *testing.T) {
	bars := testutil.FlatBars("PETR4", 10, 50)
	ema := EMA(bars, 4)
	sma := SMA(bars, 4)
	seedEMA, okE := ema.At(3)
	seedSMA, okS := sma.At(3)
	require.True(t, okE)
	require.True(t, okS)
	assert.InDelta(t, seedSMA, seedEMA, 1e-9)
}

func TestEMA_FlatSeriesStaysFlat(t *testing.T) {
	bars := testutil.FlatBars("PETR4", 20, 30)
	ema := EMA(bars, 5)
	for i := 4; i < 20; i++ {
		v, ok := ema.At(i)
		require.True(t, ok)
		assert.InDelta(t, 30, v, 1e-9)
	}
}

func TestRSI_StrongUptrendIsHigh(t *testing.T) {
	bars := testutil.TrendingBars("PETR4", 30, 10, 1)
	rsi := RSI(bars, 14)
	v, ok := rsi.At(29)
	require.True(t, ok)
	assert.Greater(t, v, 70.0)
}

func TestRSI_NoLossesYieldsHundred(t *testing.T) {
	bars := testutil.TrendingBars("PETR4", 20, 10, 1)
	rsi := RSI(bars, 14)
	v, ok := rsi.At(14)
	require.True(t, ok)
	assert.Equal(t, 100.0, v)
}

func TestRSI_FlatSeriesIsFifty(t *testing.T) {
	bars := testutil.FlatBars("PETR4", 20, 10)
	rsi := RSI(bars, 14)
	v, ok := rsi.At(14)
	require.True(t, ok)
	assert.Equal(t, 50.0, v)
}

func TestATR_FlatSeriesIsTiny(t *testing.T) {
	bars := testutil.FlatBars("PETR4", 20, 10)
	atr := ATR(bars, 5)
	v, ok := atr.At(5)
	require.True(t, ok)
	assert.InDelta(t, 0, v, 1e-9)
}

func TestATR_WarmUp(t *testing.T) {
	bars := testutil.TrendingBars("PETR4", 20, 10, 1)
	atr := ATR(bars, 5)
	assert.Equal(t, 5, atr.WarmUp())
	assert.False(t, atr.Defined(4))
	assert.True(t, atr.Defined(5))
}

func TestMACD_HistogramWarmUp(t *testing.T) {
	bars := testutil.TrendingBars("PETR4", 60, 10, 0.5)
	m := MACD(bars, 12, 26, 9)
	expectedWarmUp := 26 - 1 + 9 - 1
	assert.Equal(t, expectedWarmUp, m.Histogram.WarmUp())
	_, ok := m.Histogram.At(expectedWarmUp - 1)
	assert.False(t, ok)
	_, ok = m.Histogram.At(expectedWarmUp)
	assert.True(t, ok)
}

func TestMACD_UptrendLineIsPositive(t *testing.T) {
	bars := testutil.TrendingBars("PETR4", 60, 10, 1)
	m := MACD(bars, 12, 26, 9)
	v, ok := m.MACD.At(59)
	require.True(t, ok)
	assert.Greater(t, v, 0.0)
}

func TestBollinger_FlatSeriesBandsCollapse(t *testing.T) {
	bars := testutil.FlatBars("PETR4", 20, 50)
	b := Bollinger(bars, 10, 2)
	upper, ok := b.Upper.At(19)
	require.True(t, ok)
	lower, ok := b.Lower.At(19)
	require.True(t, ok)
	assert.InDelta(t, 50, upper, 1e-9)
	assert.InDelta(t, 50, lower, 1e-9)
}

func TestBollinger_UpperAboveLower(t *testing.T) {
	bars := testutil.OscillatingBars("PETR4", 40, 100, 10, 8)
	b := Bollinger(bars, 10, 2)
	for i := 9; i < 40; i++ {
		u, ok := b.Upper.At(i)
		require.True(t, ok)
		l, ok := b.Lower.At(i)
		require.True(t, ok)
		assert.GreaterOrEqual(t, u, l)
	}
}

func TestADX_WarmUp(t *testing.T) {
	bars := testutil.TrendingBars("PETR4", 40, 10, 1)
	p := 5
	adx := ADX(bars, p)
	assert.Equal(t, p, adx.PlusDI.WarmUp())
	assert.Equal(t, 2*p, adx.ADX.WarmUp())
	assert.False(t, adx.ADX.Defined(2*p-1))
	assert.True(t, adx.ADX.Defined(2*p))
}

func TestADX_StrongTrendHasHighPlusDI(t *testing.T) {
	bars := testutil.TrendingBars("PETR4", 40, 10, 1)
	adx := ADX(bars, 5)
	plus, ok := adx.PlusDI.At(39)
	require.True(t, ok)
	minus, ok := adx.MinusDI.At(39)
	require.True(t, ok)
	assert.Greater(t, plus, minus)
}

func TestADX_InsufficientBarsYieldsAllUndefined(t *testing.T) {
	bars := testutil.FlatBars("PETR4", 5, 10)
	adx := ADX(bars, 5)
	for i := 0; i < 5; i++ {
		assert.False(t, adx.ADX.Defined(i))
	}
}
