package indicators

import "github.com/bikeshrana/quant-research-platform/pkg/bar"

// ATR computes the Average True Range over period p using Wilder smoothing
// of the true range: TR_i = max(high-low, |high-prevClose|, |low-prevClose|).
// Warm-up is p.
func ATR(s bar.Series, p int) Series {
	n := s.Len()
	out := newSeries(n, p)
	if p <= 0 || n <= p {
		return out
	}
	bars := s.Bars()

	tr := make([]float64, n)
	for i := 1; i < n; i++ {
		tr[i] = trueRange(bars[i], bars[i-1])
	}

	var sum float64
	for i := 1; i <= p; i++ {
		sum += tr[i]
	}
	avg := sum / float64(p)
	out.set(p, avg)

	for i := p + 1; i < n; i++ {
		avg = (avg*float64(p-1) + tr[i]) / float64(p)
		out.set(i, avg)
	}
	return out
}

func trueRange(cur, prev bar.Bar) float64 {
	hl := cur.High - cur.Low
	hc := abs(cur.High - prev.Close)
	lc := abs(cur.Low - prev.Close)
	m := hl
	if hc > m {
		m = hc
	}
	if lc > m {
		m = lc
	}
	return m
}
