package walkforward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenario_AnchoredWalkForwardWindowing pins the anchored walk-forward
// windowing case over 400 daily bars with a 100-day train window and a
// 50-day test window: every window's train range starts at bar 0, the test
// ranges are adjacent and non-overlapping, and the aggregate's window count
// matches the windows actually produced.
func TestScenario_AnchoredWalkForwardWindowing(t *testing.T) {
	bars := dailyBars(t, 400)
	cfg := WindowConfig{TrainWindowDays: 100, TestWindowDays: 50, Anchored: true}
	windows, dropped := generateWindows(bars, cfg, 0)

	require.Empty(t, dropped)
	// One bar per calendar day over a 400-bar span leaves room for six
	// complete 50-day test windows anchored after the initial 100-day train
	// window; the sixth, [day 350, day 400), ends on the last bar (399).
	require.Len(t, windows, 6)

	for _, w := range windows {
		assert.Equal(t, 0, w.Train.Start)
	}
	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].Test.End, windows[i].Test.Start)
	}
}
