// Package testutil provides synthetic bar-series builders shared by this
// repository's table-driven tests, mirroring the hand-rolled test fixture
// builders common across the retrieved strategy test suites (build*
// helpers that assemble a ready-to-use input instead of repeating
// boilerplate per test).
package testutil

import (
	"time"

	"github.com/bikeshrana/quant-research-platform/pkg/bar"
)

// baseTime anchors every synthetic series so tests are deterministic
// without depending on time.Now.
var baseTime = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

// FlatBars builds n daily bars with a constant price, useful for exercising
// warm-up behavior and zero-variance edge cases.
func FlatBars(symbol string, n int, price float64) bar.Series {
	bars := make([]bar.Bar, n)
	for i := 0; i < n; i++ {
		bars[i] = bar.Bar{
			Timestamp: baseTime.AddDate(0, 0, i),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    1000,
		}
	}
	series, err := bar.New(symbol, "1d", bars)
	if err != nil {
		panic(err) // constructed inputs are always valid; a panic here is a test bug
	}
	return series
}

// TrendingBars builds n daily bars whose close rises by step each bar,
// starting at start. High/Low bracket Open/Close by a fixed spread so
// Bar.Valid holds.
func TrendingBars(symbol string, n int, start, step float64) bar.Series {
	return buildFromCloses(symbol, n, func(i int) float64 { return start + step*float64(i) })
}

// OscillatingBars builds n daily bars whose close oscillates around mid
// with the given amplitude and period (in bars), useful for mean-reversion
// and divergence strategy tests.
func OscillatingBars(symbol string, n int, mid, amplitude float64, period int) bar.Series {
	return buildFromCloses(symbol, n, func(i int) float64 {
		phase := float64(i%period) / float64(period)
		return mid + amplitude*triangleWave(phase)
	})
}

func triangleWave(phase float64) float64 {
	if phase < 0.5 {
		return 4*phase - 1
	}
	return 3 - 4*phase
}

func buildFromCloses(symbol string, n int, closeAt func(i int) float64) bar.Series {
	bars := make([]bar.Bar, n)
	prevClose := closeAt(0)
	for i := 0; i < n; i++ {
		c := closeAt(i)
		o := prevClose
		hi := maxF(o, c) + 0.1
		lo := minF(o, c) - 0.1
		if lo < 0 {
			lo = 0
		}
		bars[i] = bar.Bar{
			Timestamp: baseTime.AddDate(0, 0, i),
			Open:      o,
			High:      hi,
			Low:       lo,
			Close:     c,
			Volume:    1000,
		}
		prevClose = c
	}
	series, err := bar.New(symbol, "1d", bars)
	if err != nil {
		panic(err)
	}
	return series
}

// SpikeBars builds n flat bars at base, except bar spikeAt whose low and
// high reach spikeLow and spikeHigh while its open and close stay at base,
// used to test stop/target priority within a single bar.
func SpikeBars(symbol string, n int, base float64, spikeAt int, spikeLow, spikeHigh float64) bar.Series {
	bars := make([]bar.Bar, n)
	for i := 0; i < n; i++ {
		if i == spikeAt {
			bars[i] = bar.Bar{
				Timestamp: baseTime.AddDate(0, 0, i),
				Open:      base,
				High:      spikeHigh,
				Low:       spikeLow,
				Close:     base,
				Volume:    1000,
			}
			continue
		}
		bars[i] = bar.Bar{
			Timestamp: baseTime.AddDate(0, 0, i),
			Open:      base,
			High:      base + 0.1,
			Low:       base - 0.1,
			Close:     base,
			Volume:    1000,
		}
	}
	series, err := bar.New(symbol, "1d", bars)
	if err != nil {
		panic(err)
	}
	return series
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
