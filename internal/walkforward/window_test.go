package walkforward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikeshrana/quant-research-platform/pkg/bar"
)

func dailyBars(t *testing.T, n int) bar.Series {
	t.Helper()
	t0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]bar.Bar, n)
	for i := 0; i < n; i++ {
		bars[i] = bar.Bar{Timestamp: t0.AddDate(0, 0, i), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000}
	}
	s, err := bar.New("PETR4", "1d", bars)
	require.NoError(t, err)
	return s
}

func TestGenerateWindows_RollingProducesSequentialWindows(t *testing.T) {
	bars := dailyBars(t, 400)
	cfg := WindowConfig{TrainWindowDays: 90, TestWindowDays: 30, StepDays: 30}
	windows, dropped := generateWindows(bars, cfg, 0)

	require.NotEmpty(t, windows)
	for i := 1; i < len(windows); i++ {
		assert.Greater(t, windows[i].Train.Start, windows[i-1].Train.Start)
	}
	assert.Empty(t, dropped)
}

func TestGenerateWindows_AnchoredKeepsTrainStartFixed(t *testing.T) {
	bars := dailyBars(t, 400)
	cfg := WindowConfig{TrainWindowDays: 90, TestWindowDays: 30, StepDays: 30, Anchored: true}
	windows, _ := generateWindows(bars, cfg, 0)

	require.NotEmpty(t, windows)
	for _, w := range windows {
		assert.Equal(t, 0, w.Train.Start)
	}
	for i := 1; i < len(windows); i++ {
		assert.Greater(t, windows[i].Train.End, windows[i-1].Train.End)
	}
}

func TestGenerateWindows_DropsThinTrainWindows(t *testing.T) {
	bars := dailyBars(t, 100)
	cfg := WindowConfig{TrainWindowDays: 90, TestWindowDays: 5, StepDays: 10}
	_, dropped := generateWindows(bars, cfg, 100) // warm-up alone exceeds available train bars
	require.NotEmpty(t, dropped)
	assert.Equal(t, "insufficient train bars", dropped[0].Reason)
}

func TestGenerateWindows_EmptySeriesYieldsNothing(t *testing.T) {
	windows, dropped := generateWindows(bar.Series{}, WindowConfig{}, 0)
	assert.Nil(t, windows)
	assert.Nil(t, dropped)
}

func TestGenerateWindows_StopsOnceTestEndExceedsSeries(t *testing.T) {
	bars := dailyBars(t, 130)
	cfg := WindowConfig{TrainWindowDays: 90, TestWindowDays: 30, StepDays: 30}
	windows, _ := generateWindows(bars, cfg, 0)
	// only one full (train=90d, test=30d) window fits inside 130 days
	assert.Len(t, windows, 1)
}

func TestRange_Size(t *testing.T) {
	r := Range{Start: 5, End: 20}
	assert.Equal(t, 15, r.Size())
}
