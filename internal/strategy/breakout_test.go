package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikeshrana/quant-research-platform/internal/testutil"
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
	"github.com/bikeshrana/quant-research-platform/pkg/signal"
)

func TestBreakout_WarmUp(t *testing.T) {
	b := Breakout{}
	p := b.DefaultParams()
	assert.Equal(t, 20, b.WarmUp(p))
}

func TestBreakout_FlatSeriesNeverEnters(t *testing.T) {
	b := Breakout{}
	p := b.DefaultParams()
	bars := testutil.FlatBars("PETR4", 40, 50)
	sigs, err := b.Compute(bars, p)
	require.NoError(t, err)
	for _, s := range sigs.All() {
		assert.NotEqual(t, signal.EnterLong, s.Action)
	}
}

func TestBreakout_VolumeConfirmedCloseAboveRangeEnters(t *testing.T) {
	b := Breakout{}
	p := b.DefaultParams()
	p["lookback"] = 5

	t0 := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	bars := make([]bar.Bar, 10)
	for i := 0; i < 9; i++ {
		bars[i] = bar.Bar{Timestamp: t0.AddDate(0, 0, i), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000}
	}
	// breakout bar: closes above the trailing 5-bar high on elevated volume
	bars[9] = bar.Bar{Timestamp: t0.AddDate(0, 0, 9), Open: 100, High: 110, Low: 100, Close: 110, Volume: 5000}

	series, err := bar.New("PETR4", "1d", bars)
	require.NoError(t, err)

	sigs, err := b.Compute(series, p)
	require.NoError(t, err)
	assert.Equal(t, signal.EnterLong, sigs.At(9).Action)
}
