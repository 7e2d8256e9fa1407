package indicators

import "github.com/bikeshrana/quant-research-platform/pkg/bar"

// ADXResult holds the directional indicators and the trend-strength line
// derived from them, index-aligned to the input Bar Series.
type ADXResult struct {
	PlusDI  Series
	MinusDI Series
	ADX     Series
}

// ADX computes Wilder's Average Directional Index alongside +DI/-DI over
// period p. +DI and -DI share the same Wilder-smoothed true range and
// directional movement as ATR, so their warm-up is p, matching ATR's.
// ADX itself is a further Wilder smoothing of DX = 100*|+DI--DI|/(+DI+-DI)
// over the next p bars, so its warm-up is 2p.
func ADX(s bar.Series, p int) ADXResult {
	n := s.Len()
	plusDI := newSeries(n, p)
	minusDI := newSeries(n, p)
	adx := newSeries(n, 2*p)
	if p <= 0 || n <= 2*p {
		return ADXResult{PlusDI: plusDI, MinusDI: minusDI, ADX: adx}
	}
	bars := s.Bars()

	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		tr[i] = trueRange(bars[i], bars[i-1])
		upMove := bars[i].High - bars[i-1].High
		downMove := bars[i-1].Low - bars[i].Low
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}

	var trSum, plusSum, minusSum float64
	for i := 1; i <= p; i++ {
		trSum += tr[i]
		plusSum += plusDM[i]
		minusSum += minusDM[i]
	}

	dx := make([]float64, n)
	setDI := func(i int, trV, plusV, minusV float64) (float64, float64) {
		var pdi, mdi float64
		if trV != 0 {
			pdi = 100 * plusV / trV
			mdi = 100 * minusV / trV
		}
		plusDI.set(i, pdi)
		minusDI.set(i, mdi)
		if pdi+mdi != 0 {
			dx[i] = 100 * abs(pdi-mdi) / (pdi + mdi)
		}
		return pdi, mdi
	}
	setDI(p, trSum, plusSum, minusSum)

	for i := p + 1; i < n; i++ {
		trSum = trSum - trSum/float64(p) + tr[i]
		plusSum = plusSum - plusSum/float64(p) + plusDM[i]
		minusSum = minusSum - minusSum/float64(p) + minusDM[i]
		setDI(i, trSum, plusSum, minusSum)
	}

	var dxSum float64
	for i := p; i < 2*p; i++ {
		dxSum += dx[i]
	}
	avgDX := dxSum / float64(p)
	adx.set(2*p, avgDX)
	for i := 2*p + 1; i < n; i++ {
		avgDX = (avgDX*float64(p-1) + dx[i]) / float64(p)
		adx.set(i, avgDX)
	}

	return ADXResult{PlusDI: plusDI, MinusDI: minusDI, ADX: adx}
}
