package indicators

import "github.com/bikeshrana/quant-research-platform/pkg/bar"

// MACDResult holds the three MACD output lines, index-aligned to the input
// Bar Series.
type MACDResult struct {
	MACD      Series
	Signal    Series
	Histogram Series
}

// MACD computes the MACD line (EMA(fast) - EMA(slow)), its signal line
// (EMA(signal) of the MACD line), and their difference. Warm-up of the
// signal and histogram lines is slow+signal-2; warm-up of the MACD line
// alone is slow-1.
func MACD(s bar.Series, fast, slow, signal int) MACDResult {
	n := s.Len()
	fastEMA := EMA(s, fast)
	slowEMA := EMA(s, slow)

	macdLine := newSeries(n, slow-1)
	for i := slow - 1; i < n; i++ {
		fv, fok := fastEMA.At(i)
		sv, sok := slowEMA.At(i)
		if fok && sok {
			macdLine.set(i, fv-sv)
		}
	}

	signalLine := emaOfValues(macdLine.Values(), slow-1, signal)

	histWarmUp := slow - 1 + signal - 1
	hist := newSeries(n, histWarmUp)
	for i := histWarmUp; i < n; i++ {
		mv, mok := macdLine.At(i)
		sv, sok := signalLine.At(i)
		if mok && sok {
			hist.set(i, mv-sv)
		}
	}

	return MACDResult{MACD: macdLine, Signal: signalLine, Histogram: hist}
}
