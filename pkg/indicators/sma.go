package indicators

import "github.com/bikeshrana/quant-research-platform/pkg/bar"

// SMA computes the simple moving average of period p over close prices.
// Warm-up is p-1.
func SMA(s bar.Series, p int) Series {
	return smaOf(s.Closes(), p)
}

// SMAVolume computes the simple moving average of period p over volume,
// used by the Breakout and RSIDivergence strategies' volume-confirmation
// check.
func SMAVolume(s bar.Series, p int) Series {
	return smaOf(volumes(s.Bars()), p)
}

func smaOf(values []float64, p int) Series {
	n := len(values)
	out := newSeries(n, p-1)
	if p <= 0 || n < p {
		return out
	}
	sum := 0.0
	for i := 0; i < p; i++ {
		sum += values[i]
	}
	out.set(p-1, sum/float64(p))
	for i := p; i < n; i++ {
		sum += values[i] - values[i-p]
		out.set(i, sum/float64(p))
	}
	return out
}
