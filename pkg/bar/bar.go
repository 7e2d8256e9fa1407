// Package bar defines the immutable Bar Series, the atomic input every
// indicator, strategy, and backtest run is built on.
package bar

import (
	"sort"
	"time"

	"github.com/bikeshrana/quant-research-platform/internal/quanterrors"
)

// Bar is a single OHLCV record. Timestamp is always UTC inside the core.
type Bar struct {
	Timestamp      time.Time
	Open           float64
	High           float64
	Low            float64
	Close          float64
	Volume         float64
	VolumeNotional float64 // optional; zero means unset
}

// Valid reports whether the bar's OHLC ordering holds. The constructor does
// not reject series on this; it is a diagnostic a caller may use to flag
// suspect data.
func (b Bar) Valid() bool {
	lo := b.Low
	hi := b.High
	return lo <= minF(b.Open, b.Close) && maxF(b.Open, b.Close) <= hi
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Series is a symbol-tagged, timeframe-tagged, ordered sequence of Bars with
// strictly increasing timestamps.
type Series struct {
	symbol    string
	timeframe string
	bars      []Bar
}

// New constructs a Series from a non-empty, chronologically ordered slice of
// Bars. It rejects non-monotonic timestamps and negative prices with an
// InvalidInput error; it does not enforce the low<=min(open,close) OHLC
// invariant, per the data model's explicit tolerance for that case.
func New(symbol, timeframe string, bars []Bar) (Series, error) {
	if len(bars) == 0 {
		return Series{}, quanterrors.New(quanterrors.InvalidInput, "bar series must be non-empty")
	}
	for i, b := range bars {
		if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 {
			return Series{}, quanterrors.New(quanterrors.InvalidInput, "bar %d has a negative price", i)
		}
		if b.Volume < 0 {
			return Series{}, quanterrors.New(quanterrors.InvalidInput, "bar %d has negative volume", i)
		}
		if i > 0 && !b.Timestamp.After(bars[i-1].Timestamp) {
			return Series{}, quanterrors.New(quanterrors.InvalidInput, "bar %d timestamp does not strictly increase", i)
		}
	}
	cp := make([]Bar, len(bars))
	copy(cp, bars)
	return Series{symbol: symbol, timeframe: timeframe, bars: cp}, nil
}

func (s Series) Len() int           { return len(s.bars) }
func (s Series) Symbol() string     { return s.symbol }
func (s Series) Timeframe() string  { return s.timeframe }
func (s Series) At(i int) Bar       { return s.bars[i] }
func (s Series) Bars() []Bar        { return s.bars }

// Closes returns the close prices as a plain slice, a convenience used
// throughout the indicator library.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Close
	}
	return out
}

// Slice returns the half-open index range [start, end) as a new Series
// sharing the same symbol/timeframe tags.
func (s Series) Slice(start, end int) Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.bars) {
		end = len(s.bars)
	}
	if start >= end {
		return Series{symbol: s.symbol, timeframe: s.timeframe, bars: nil}
	}
	return Series{symbol: s.symbol, timeframe: s.timeframe, bars: s.bars[start:end]}
}

// SliceByTime returns the bars with timestamp in [from, to], inclusive.
func (s Series) SliceByTime(from, to time.Time) Series {
	start := sort.Search(len(s.bars), func(i int) bool {
		return !s.bars[i].Timestamp.Before(from)
	})
	end := sort.Search(len(s.bars), func(i int) bool {
		return s.bars[i].Timestamp.After(to)
	})
	return s.Slice(start, end)
}

// IndexAtOrAfter returns the first index whose timestamp is >= t, or Len()
// if none qualifies. Used by the walk-forward window mapper to translate
// calendar ranges into bar-index ranges by binary search.
func (s Series) IndexAtOrAfter(t time.Time) int {
	return sort.Search(len(s.bars), func(i int) bool {
		return !s.bars[i].Timestamp.Before(t)
	})
}

// IndexAfter returns the first index whose timestamp is > t, or Len() if
// none qualifies.
func (s Series) IndexAfter(t time.Time) int {
	return sort.Search(len(s.bars), func(i int) bool {
		return s.bars[i].Timestamp.After(t)
	})
}
