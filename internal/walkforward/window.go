// Package walkforward implements the walk-forward optimizer: it slices a
// Bar Series into a sequence of (train, test) windows, runs a pluggable
// Sampler over each window's training slice to find parameters, evaluates
// the winner out-of-sample, and aggregates the results into a Report.
package walkforward

import (
	"time"

	"github.com/bikeshrana/quant-research-platform/internal/strategy"
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
)

// minBarsForStats is the default floor below which a window's train slice
// is considered too thin to optimize over, on top of the strategy's own
// warm-up requirement.
const minBarsForStats = 30

// WindowConfig controls window generation. Anchored, or StepDays == 0,
// selects anchored mode: every window's train range starts at the series'
// first bar.
type WindowConfig struct {
	TrainWindowDays int
	TestWindowDays  int
	StepDays        int
	Anchored        bool
}

// Range is a half-open bar-index range [Start, End) paired with the
// calendar bounds it was mapped from.
type Range struct {
	Start, End         int
	CalendarStart, CalendarEnd time.Time
}

// Size is the number of bars in the range.
func (r Range) Size() int { return r.End - r.Start }

// Window is one train/test pair produced by generateWindows.
type Window struct {
	ID    int
	Train Range
	Test  Range
}

// DroppedWindow records a window candidate excluded for insufficient bars.
type DroppedWindow struct {
	ID     int
	Reason string
}

// generateWindows maps the calendar arithmetic in WindowConfig onto bars'
// timestamps by binary search, dropping any window whose train slice has
// fewer than warmUp+minBarsForStats bars.
func generateWindows(bars bar.Series, cfg WindowConfig, warmUp int) ([]Window, []DroppedWindow) {
	n := bars.Len()
	if n == 0 {
		return nil, nil
	}
	t0 := bars.At(0).Timestamp
	tN := bars.At(n - 1).Timestamp

	trainLen := time.Duration(cfg.TrainWindowDays) * 24 * time.Hour
	testLen := time.Duration(cfg.TestWindowDays) * 24 * time.Hour
	step := time.Duration(cfg.StepDays) * 24 * time.Hour

	var windows []Window
	var dropped []DroppedWindow

	minTrainBars := warmUp + minBarsForStats

	// Test ranges are half-open, so a range is complete when its end lies no
	// further than one bar spacing past the last bar.
	horizon := tN
	if n > 1 {
		horizon = tN.Add(tN.Sub(bars.At(n - 2).Timestamp))
	}

	for k := 0; ; k++ {
		var trainStart, trainEnd time.Time
		if cfg.Anchored || cfg.StepDays <= 0 {
			trainStart = t0
			trainEnd = t0.Add(trainLen + time.Duration(k)*testLen)
		} else {
			trainStart = t0.Add(time.Duration(k) * step)
			trainEnd = trainStart.Add(trainLen)
		}
		testStart := trainEnd
		testEnd := testStart.Add(testLen)

		if testEnd.After(horizon) {
			break
		}

		train := mapRange(bars, trainStart, trainEnd)
		test := mapRange(bars, testStart, testEnd)

		id := k + 1
		if train.Size() < minTrainBars {
			dropped = append(dropped, DroppedWindow{ID: id, Reason: "insufficient train bars"})
			continue
		}
		if test.Size() == 0 {
			dropped = append(dropped, DroppedWindow{ID: id, Reason: "insufficient test bars"})
			continue
		}

		windows = append(windows, Window{ID: id, Train: train, Test: test})
	}

	return windows, dropped
}

// mapRange translates a calendar [from, to) range into a bar-index range
// via binary search: the first bar >= from, up to (not including) the
// first bar >= to.
func mapRange(bars bar.Series, from, to time.Time) Range {
	start := bars.IndexAtOrAfter(from)
	end := bars.IndexAtOrAfter(to)
	return Range{Start: start, End: end, CalendarStart: from, CalendarEnd: to}
}

// defaultWarmUp evaluates a strategy's warm-up at its default parameters,
// the figure window generation uses to size the train-bars floor.
func defaultWarmUp(s strategy.Strategy) int {
	return s.WarmUp(s.DefaultParams())
}
