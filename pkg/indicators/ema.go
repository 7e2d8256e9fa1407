package indicators

import "github.com/bikeshrana/quant-research-platform/pkg/bar"

// EMA computes the exponential moving average of period p over close prices.
// Seed = simple average of the first p closes; thereafter
// ema_i = close_i*alpha + ema_{i-1}*(1-alpha) with alpha = 2/(p+1). Warm-up
// is p-1; index p-1 holds the seed.
func EMA(s bar.Series, p int) Series {
	n := s.Len()
	out := newSeries(n, p-1)
	if p <= 0 || n < p {
		return out
	}
	cl := s.Closes()
	seed, ok := sma(cl[:p], p)
	if !ok {
		return out
	}
	out.set(p-1, seed)
	alpha := 2.0 / (float64(p) + 1.0)
	prev := seed
	for i := p; i < n; i++ {
		v := cl[i]*alpha + prev*(1-alpha)
		out.set(i, v)
		prev = v
	}
	return out
}

// emaOfValues is the same recurrence applied to an arbitrary input series
// (e.g. the MACD line), rather than bar closes. validFrom is the first
// index of in that holds a defined value.
func emaOfValues(in []float64, validFrom, p int) Series {
	n := len(in)
	out := newSeries(n, validFrom+p-1)
	if p <= 0 || n-validFrom < p {
		return out
	}
	seed, ok := sma(in[validFrom:validFrom+p], p)
	if !ok {
		return out
	}
	seedIdx := validFrom + p - 1
	out.set(seedIdx, seed)
	alpha := 2.0 / (float64(p) + 1.0)
	prev := seed
	for i := seedIdx + 1; i < n; i++ {
		v := in[i]*alpha + prev*(1-alpha)
		out.set(i, v)
		prev = v
	}
	return out
}
