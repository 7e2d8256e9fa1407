package indicators

import "github.com/bikeshrana/quant-research-platform/pkg/bar"

// BollingerResult holds the three Bollinger Band output lines, index-aligned
// to the input Bar Series.
type BollingerResult struct {
	Middle Series
	Upper  Series
	Lower  Series
}

// Bollinger computes the middle band (SMA(p) of closes) and the upper/lower
// bands at middle +/- k standard deviations of the same trailing window.
// Warm-up is p-1.
func Bollinger(s bar.Series, p int, k float64) BollingerResult {
	n := s.Len()
	middle := SMA(s, p)
	upper := newSeries(n, p-1)
	lower := newSeries(n, p-1)
	if p <= 0 || n < p {
		return BollingerResult{Middle: middle, Upper: upper, Lower: lower}
	}
	cl := s.Closes()
	for i := p - 1; i < n; i++ {
		mean, ok := middle.At(i)
		if !ok {
			continue
		}
		window := cl[i-p+1 : i+1]
		sd := stdDev(window, mean)
		upper.set(i, mean+k*sd)
		lower.set(i, mean-k*sd)
	}
	return BollingerResult{Middle: middle, Upper: upper, Lower: lower}
}
